package cmd

import (
	"github.com/spf13/cobra"
)

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Trigger a report run and wait for it",
		Long: "Runs one report cycle on the server: fetches the deal filter, sends any\n" +
			"new deal IDs, and records them. Fails if a run is already in progress.",
		Example: `  dnctl run
  dnctl run --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := newClient().TriggerRun(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), res)
			}
			return printResult(cmd.OutOrStdout(), res)
		},
	}
}
