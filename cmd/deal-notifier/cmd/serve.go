package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/donaldgifford/deal-notifier/internal/api/handlers"
	"github.com/donaldgifford/deal-notifier/internal/api/middleware"
	"github.com/donaldgifford/deal-notifier/internal/config"
	"github.com/donaldgifford/deal-notifier/internal/engine"
	"github.com/donaldgifford/deal-notifier/internal/state"
	domain "github.com/donaldgifford/deal-notifier/pkg/types"
)

const shutdownTimeout = 10 * time.Second

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run report cycles on a schedule and serve the HTTP API",
		Long: "Runs report cycles on schedule.cron and serves health probes, Prometheus\n" +
			"metrics, and an API to trigger a run or inspect the recorded state.\n" +
			"Runs never overlap: a scheduled run is skipped while one is executing and\n" +
			"a manual trigger gets 409.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg, log)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	st, closeStore, err := newStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	n, err := newNotifier(cfg, log)
	if err != nil {
		return err
	}

	rep := newReporter(cfg, newDealSource(cfg, log), n, st, log, false)

	sched, err := engine.NewScheduler(rep, cfg.Schedule.Cron, engine.WithSchedulerLogger(log))
	if err != nil {
		return domain.NewError(domain.KindConfiguration, "creating scheduler", err)
	}

	e := newServer(cfg, st, sched, log)

	sched.Start()
	log.Info("scheduler started", "cron", cfg.Schedule.Cron, "next_run", sched.NextRun())

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", "addr", cfg.Server.Addr())
		if err := e.Start(cfg.Server.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutting down server", "error", err)
	}

	select {
	case <-sched.Stop().Done():
	case <-shutdownCtx.Done():
		log.Warn("run still in progress at shutdown deadline")
	}

	if serveErr != nil {
		return fmt.Errorf("running server: %w", serveErr)
	}

	log.Info("server stopped")
	return nil
}

// newServer wires probes, metrics, and the /api/v1 routes onto Echo.
func newServer(
	cfg *config.Config,
	st state.Store,
	trigger handlers.RunTrigger,
	log *slog.Logger,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	e.Use(
		middleware.RequestLog(log),
		middleware.Metrics(),
		middleware.Recovery(log),
	)

	pinger, _ := st.(state.Pinger)
	health := handlers.NewHealthHandler(pinger)
	e.GET("/healthz", health.Healthz)
	e.GET("/readyz", health.Readyz)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := humaecho.New(e, huma.DefaultConfig("deal-notifier", Version))
	handlers.RegisterRunRoutes(api, handlers.NewRunHandler(trigger))
	handlers.RegisterStateRoutes(api, handlers.NewStateHandler(st))

	return e
}
