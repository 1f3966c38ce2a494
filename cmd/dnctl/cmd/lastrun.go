package cmd

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	apiclient "github.com/donaldgifford/deal-notifier/internal/api/client"
)

func lastRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "last-run",
		Short: "Show the most recent finished run",
		RunE: func(cmd *cobra.Command, _ []string) error {
			last, err := newClient().GetLastRun(cmd.Context())
			if apiclient.StatusOf(err) == http.StatusNotFound {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), "No run has finished yet.")
				return err
			}
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), last)
			}
			return printLastRun(cmd.OutOrStdout(), last)
		},
	}
}
