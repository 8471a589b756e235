package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"discount-audit/internal/usecase"
)

// NewRulesCmd creates the command that prints the effective rules in priority order.
func NewRulesCmd(root *RootArgs) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "Print the discount rules in evaluation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "#\tLABEL\tCEILING\tAPPLIES TO")
			for i, rule := range usecase.NewRuleSet(root.cfg.Rules).Rules() {
				fmt.Fprintf(w, "%d\t%s\t%s%%\t%s\n", i+1, rule.Label, rule.Ceiling, rule.Description)
			}
			return w.Flush()
		},
	}
}
