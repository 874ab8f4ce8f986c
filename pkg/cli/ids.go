package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/getmockd/modelproxy/pkg/cli/internal/output"
	"github.com/getmockd/modelproxy/pkg/config"
)

// IDRow is one line of the ids listing.
type IDRow struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Method string `json:"method"`
	Mode   string `json:"mode"`
	URL    string `json:"url,omitempty"`
}

func newIDsCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "ids [prefix]",
		Short: "List configured interface ids",
		Long: `List the interface ids of the configuration in registration order.

A prefix such as "Shop." restricts the listing to ids starting with it.`,
		Example: `  modelproxy ids
  modelproxy ids Shop. --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, _, err := g.runtime(cmd)
			if err != nil {
				return err
			}

			ids := rt.Registry.IDs()
			if len(args) == 1 {
				ids = rt.Registry.IDsByPrefix(args[0])
			}

			rows := make([]IDRow, 0, len(ids))
			for _, id := range ids {
				p, _ := rt.Registry.Profile(id)
				row := IDRow{
					ID:     id,
					Status: p.Status,
					Method: strings.ToUpper(p.Method),
					Mode:   "live",
					URL:    p.URLs[p.Status],
				}
				if row.Method == "" {
					row.Method = config.MethodGet
				}
				if p.IsMock() {
					row.Mode = "mock"
					if p.IsRuleStatic {
						row.Mode = "mock (static)"
					}
				}
				rows = append(rows, row)
			}

			if g.jsonOutput {
				return output.JSON(cmd.OutOrStdout(), rows)
			}
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No interfaces found")
				return nil
			}

			w := output.Table(cmd.OutOrStdout())
			fmt.Fprintln(w, "ID\tSTATUS\tMETHOD\tMODE")
			for _, r := range rows {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.ID, r.Status, r.Method, r.Mode)
			}
			return w.Flush()
		},
	}
}
