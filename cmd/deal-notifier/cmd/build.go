package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/donaldgifford/deal-notifier/internal/config"
	"github.com/donaldgifford/deal-notifier/internal/engine"
	"github.com/donaldgifford/deal-notifier/internal/notify"
	"github.com/donaldgifford/deal-notifier/internal/pipedrive"
	"github.com/donaldgifford/deal-notifier/internal/state"
	domain "github.com/donaldgifford/deal-notifier/pkg/types"
)

func newDealSource(cfg *config.Config, log *slog.Logger) *pipedrive.Client {
	p := cfg.Pipedrive
	return pipedrive.NewClient(p.APIToken,
		pipedrive.WithBaseURL(p.BaseURL),
		pipedrive.WithHTTPClient(&http.Client{Timeout: p.Timeout}),
		pipedrive.WithPageSize(p.PageSize),
		pipedrive.WithMaxPages(p.MaxPages),
		pipedrive.WithRateLimiter(pipedrive.NewRateLimiter(
			p.RateLimit.PerSecond,
			p.RateLimit.Burst,
			p.RateLimit.DailyLimit,
		)),
		pipedrive.WithLogger(log),
	)
}

func newNotifier(cfg *config.Config, log *slog.Logger) (notify.Notifier, error) {
	n := cfg.Notify
	httpClient := &http.Client{Timeout: n.Timeout}

	switch n.Backend {
	case config.BackendWhatsApp:
		return notify.NewWhatsAppNotifier(n.WhatsApp.Token, n.WhatsApp.PhoneNumberID,
			notify.WithWhatsAppAPIURL(n.WhatsApp.APIURL),
			notify.WithWhatsAppHTTPClient(httpClient),
		), nil
	case config.BackendDiscord:
		return notify.NewDiscordNotifier(n.Discord.WebhookURL, notify.WithHTTPClient(httpClient)), nil
	case config.BackendShoutrrr:
		s, err := notify.NewShoutrrrNotifier(n.Shoutrrr.URLs, notify.WithShoutrrrTimeout(n.Timeout))
		if err != nil {
			return nil, domain.NewError(domain.KindConfiguration, "building notifier", err)
		}
		return s, nil
	case config.BackendLog:
		return notify.NewLogNotifier(log), nil
	default:
		return nil, domain.NewError(domain.KindConfiguration, "building notifier",
			fmt.Errorf("unknown backend %q", n.Backend))
	}
}

// newStore opens the configured state store. The returned func releases it.
func newStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (state.Store, func(), error) {
	switch cfg.State.Backend {
	case config.StateBackendFile:
		log.Debug("using file state store", "path", cfg.State.Path)
		return state.NewFileStore(cfg.State.Path), func() {}, nil
	case config.StateBackendPostgres:
		pg, err := state.NewPostgresStore(ctx, cfg.State.DSN)
		if err != nil {
			return nil, nil, domain.NewError(domain.KindStorage, "connecting to state database", err)
		}
		if err := pg.Migrate(ctx); err != nil {
			pg.Close()
			return nil, nil, domain.NewError(domain.KindStorage, "migrating state database", err)
		}
		log.Debug("using postgres state store")
		return pg, pg.Close, nil
	default:
		return nil, nil, domain.NewError(domain.KindConfiguration, "opening state store",
			fmt.Errorf("unknown backend %q", cfg.State.Backend))
	}
}

// detachStore copies the persisted state into memory so a run can proceed
// without committing anything.
func detachStore(ctx context.Context, st state.Store) (*state.MemoryStore, error) {
	loaded, err := st.Load(ctx)
	if err != nil {
		return nil, domain.NewError(domain.KindStorage, "loading state", err)
	}
	return state.NewMemoryStore(state.WithSeed(loaded)), nil
}

func newReporter(
	cfg *config.Config,
	src pipedrive.DealSource,
	n notify.Notifier,
	st state.Store,
	log *slog.Logger,
	dryRun bool,
) *engine.Reporter {
	return engine.NewReporter(src, n, st, cfg.Pipedrive.FilterID, cfg.Notify.Recipient,
		engine.WithLogger(log),
		engine.WithLabel(cfg.Message.Label),
		engine.WithNotifyWhenEmpty(cfg.Message.ShouldNotifyWhenEmpty()),
		engine.WithDryRun(dryRun),
	)
}
