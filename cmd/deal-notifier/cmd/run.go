package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/deal-notifier/internal/config"
	"github.com/donaldgifford/deal-notifier/internal/state"
	domain "github.com/donaldgifford/deal-notifier/pkg/types"
)

type runOptions struct {
	dryRun    bool
	noPersist bool
	strict    bool
}

func runCommand() *cobra.Command {
	var opts runOptions

	c := &cobra.Command{
		Use:   "run",
		Short: "Run one report cycle and exit",
		Long: "Fetches the configured deal filter once, sends the new deal IDs to the\n" +
			"recipient, records them, and exits. Meant to be invoked by cron.\n\n" +
			"Configuration and storage failures exit non-zero. Fetch and delivery\n" +
			"failures are logged and exit zero unless --strict is set; the next run\n" +
			"retries them because nothing was recorded.",
		Example: `  deal-notifier run
  deal-notifier run --dry-run
  deal-notifier run --config config.yaml --strict`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runOnce(ctx, cfg, log, opts)
		},
	}

	c.Flags().BoolVar(&opts.dryRun, "dry-run", false,
		"fetch and diff, log the message, never send or record")
	c.Flags().BoolVar(&opts.noPersist, "no-persist", false,
		"send the message but leave the recorded state untouched")
	c.Flags().BoolVar(&opts.strict, "strict", false,
		"exit non-zero on fetch and delivery failures too")

	return c
}

func runOnce(ctx context.Context, cfg *config.Config, log *slog.Logger, opts runOptions) error {
	st, closeStore, err := newStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	if opts.noPersist {
		var mem *state.MemoryStore
		if mem, err = detachStore(ctx, st); err != nil {
			return err
		}
		st = mem
	}

	n, err := newNotifier(cfg, log)
	if err != nil {
		return err
	}

	rep := newReporter(cfg, newDealSource(cfg, log), n, st, log, opts.dryRun)

	res, err := rep.Run(ctx)
	if err != nil {
		return exitError(err, opts.strict)
	}

	if opts.noPersist && len(res.NewIDs) > 0 && !opts.dryRun {
		log.Warn("new deal IDs were sent but not recorded", "run_id", res.RunID, "new", len(res.NewIDs))
	}
	return nil
}

// exitError decides whether a failed run fails the process. Fetch and delivery
// failures leave state untouched, so the next scheduled run repeats the work.
func exitError(err error, strict bool) error {
	if strict {
		return err
	}
	switch domain.KindOf(err) {
	case domain.KindFetch, domain.KindDelivery:
		return nil
	default:
		return err
	}
}
