package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/deal-notifier/internal/engine"
	domain "github.com/donaldgifford/deal-notifier/pkg/types"
)

func stateCommand() *cobra.Command {
	stateRoot := &cobra.Command{
		Use:   "state",
		Short: "Inspect the recorded notification state",
	}
	stateRoot.AddCommand(stateShowCommand())
	return stateRoot
}

func stateShowCommand() *cobra.Command {
	var asJSON bool

	c := &cobra.Command{
		Use:   "show",
		Short: "Print the reported deal IDs",
		Example: `  deal-notifier state show
  deal-notifier state show --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}

			st, closeStore, err := newStore(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer closeStore()

			loaded, err := st.Load(cmd.Context())
			if err != nil {
				return domain.NewError(domain.KindStorage, "loading state", err)
			}

			if asJSON {
				return printStateJSON(cmd.OutOrStdout(), loaded)
			}
			return printState(cmd.OutOrStdout(), loaded)
		},
	}

	c.Flags().BoolVar(&asJSON, "json", false, "print the state document as JSON")
	return c
}

func printStateJSON(w io.Writer, st *domain.NotificationState) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(st)
}

func printState(w io.Writer, st *domain.NotificationState) error {
	ids := st.SentIDs.Sorted()

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "Reported:\t%d\n", len(ids))
	_, _ = fmt.Fprintf(tw, "Last batch:\t%d\n", st.LastBatchCount)
	if len(ids) > 0 {
		_, _ = fmt.Fprintf(tw, "IDs:\t%s\n", engine.JoinIDs(ids))
	}
	return tw.Flush()
}
