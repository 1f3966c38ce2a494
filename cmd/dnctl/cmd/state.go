package cmd

import (
	"github.com/spf13/cobra"
)

func stateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Show the reported deal IDs",
		Example: `  dnctl state
  dnctl state --server http://notifier:8080 --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := newClient().GetState(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), st)
			}
			return printState(cmd.OutOrStdout(), st)
		},
	}
}
