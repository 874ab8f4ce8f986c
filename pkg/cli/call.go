package cli

import (
	"github.com/spf13/cobra"

	"github.com/getmockd/modelproxy/pkg/cli/internal/output"
	"github.com/getmockd/modelproxy/pkg/cli/internal/parse"
	"github.com/getmockd/modelproxy/pkg/dispatch"
)

func newCallCommand(g *globals) *cobra.Command {
	var cookie string

	cmd := &cobra.Command{
		Use:   "call <id> [key=value...]",
		Short: "Call one interface and print its result",
		Long: `Dispatch a single interface, live or mocked depending on its status, and
print the result. JSON results are printed indented, text results verbatim.

Set-Cookie values returned by a live backend are reported on stderr.`,
		Example: `  modelproxy call Shop.list
  modelproxy call Shop.get id=42 --cookie "sid=abc"
  modelproxy call Shop.search tag=a tag=b --status mock`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parse.Params(args[1:])
			if err != nil {
				return err
			}

			rt, log, err := g.runtime(cmd)
			if err != nil {
				return err
			}

			d, err := rt.Factory.Get(args[0])
			if err != nil {
				return err
			}
			log.Debug("calling interface", "interface", d.ID(), "state", d.State().String())

			resp, err := d.Do(cmd.Context(), dispatch.Params(params), cookie)
			if err != nil {
				return err
			}
			for _, c := range resp.SetCookie {
				cmd.PrintErrf("Set-Cookie: %s\n", c)
			}
			return output.Body(cmd.OutOrStdout(), resp.Body)
		},
	}

	cmd.Flags().StringVar(&cookie, "cookie", "", "Cookie header sent with the request")
	return cmd
}
