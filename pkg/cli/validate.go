package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/getmockd/modelproxy/pkg/cli/internal/output"
	"github.com/getmockd/modelproxy/pkg/dispatch"
)

// ValidationResult is the JSON output of the validate command.
type ValidationResult struct {
	Valid      bool     `json:"valid"`
	Interfaces int      `json:"interfaces"`
	Mocked     int      `json:"mocked"`
	Errors     []string `json:"errors,omitempty"`
}

func newValidateCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the interface configuration and its rule files",
		Long: `Load the interface configuration, resolve a dispatcher for every interface
and read the rule file of every mocked interface.

Reports every problem found and exits non-zero when there is at least one.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, _, err := g.runtime(cmd)
			if err != nil {
				return err
			}

			settings, err := g.settings()
			if err != nil {
				return err
			}

			result := ValidationResult{Interfaces: rt.Registry.Len()}
			for _, id := range rt.Registry.IDs() {
				d, err := rt.Factory.Get(id)
				if err != nil {
					result.Errors = append(result.Errors, err.Error())
					continue
				}
				if d.State() == dispatch.StateLive {
					if d.Profile().Signed && settings.SigningKey == "" {
						output.Warn(cmd.ErrOrStderr(), "interface %s is signed but no signing key is configured", id)
					}
					continue
				}
				result.Mocked++
				if _, err := rt.Registry.Rule(id); err != nil {
					result.Errors = append(result.Errors, fmt.Sprintf("interface %s: %v", id, err))
				}
			}
			result.Valid = len(result.Errors) == 0

			if g.jsonOutput {
				if err := output.JSON(cmd.OutOrStdout(), result); err != nil {
					return err
				}
			} else {
				for _, e := range result.Errors {
					fmt.Fprintf(cmd.OutOrStdout(), "✗ %s\n", e)
				}
				if result.Valid {
					fmt.Fprintf(cmd.OutOrStdout(), "✓ %d interfaces valid (%d mocked)\n", result.Interfaces, result.Mocked)
				}
			}

			if !result.Valid {
				return fmt.Errorf("validation failed: %d error(s)", len(result.Errors))
			}
			return nil
		},
	}
}
