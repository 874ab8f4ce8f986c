package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/getmockd/modelproxy/pkg/cli/internal/output"
	"github.com/getmockd/modelproxy/pkg/pipeline"
)

func newRunCommand(g *globals) *cobra.Command {
	var cookie string

	cmd := &cobra.Command{
		Use:   "run <pipeline>",
		Short: "Run a pipeline document",
		Long: `Build a model from a pipeline document (YAML or JSON), enqueue its calls
and run them with the document's mode: then, all, paral or series.

The result is printed as JSON: {"mode": ..., "values": [...]}.`,
		Example: `  modelproxy run checkout.yaml
  modelproxy run checkout.yaml --cookie "sid=abc" --status mock`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := pipeline.Load(args[0])
			if err != nil {
				return fmt.Errorf("loading pipeline %s: %w", args[0], err)
			}
			if cookie != "" {
				doc.Cookie = cookie
			}

			rt, log, err := g.runtime(cmd)
			if err != nil {
				return err
			}

			result, err := doc.Run(cmd.Context(), rt)
			if err != nil {
				return err
			}
			log.Debug("pipeline finished", "pipeline", args[0], "mode", string(result.Mode), "values", len(result.Values))
			return output.JSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&cookie, "cookie", "", "Cookie header for every call (overrides the document)")
	return cmd
}
