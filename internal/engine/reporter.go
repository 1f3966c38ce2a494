// Package engine runs report cycles: load what was already sent, fetch the
// current deals, notify about the new ones, and record them.
package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/donaldgifford/deal-notifier/internal/metrics"
	"github.com/donaldgifford/deal-notifier/internal/notify"
	"github.com/donaldgifford/deal-notifier/internal/pipedrive"
	"github.com/donaldgifford/deal-notifier/internal/state"
	domain "github.com/donaldgifford/deal-notifier/pkg/types"
)

// Outcome describes how a successful run ended.
type Outcome string

// saveTimeout bounds the state save that follows a delivered report.
const saveTimeout = 30 * time.Second

// Run outcomes.
const (
	OutcomeReported   Outcome = "reported"
	OutcomeNothingNew Outcome = "nothing_new"
	OutcomeDryRun     Outcome = "dry_run"
)

// Result summarizes one run. It is returned alongside errors too, filled up
// to the failing step.
type Result struct {
	RunID          string          `json:"run_id"`
	Outcome        Outcome         `json:"outcome,omitempty"`
	Fetched        int             `json:"fetched"`
	NewIDs         []domain.DealID `json:"new_ids"`
	PreviouslySent int             `json:"previously_sent"`
	Message        string          `json:"message,omitempty"`
	Notified       bool            `json:"notified"`
	StartedAt      time.Time       `json:"started_at"`
	Duration       time.Duration   `json:"duration_ns"`
}

// Reporter performs report cycles against one filter and one recipient.
type Reporter struct {
	source    pipedrive.DealSource
	notifier  notify.Notifier
	store     state.Store
	filterID  string
	recipient string

	label           string
	notifyWhenEmpty bool
	dryRun          bool
	log             *slog.Logger
}

// ReporterOption configures the Reporter.
type ReporterOption func(*Reporter)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) ReporterOption {
	return func(r *Reporter) {
		r.log = l
	}
}

// WithLabel sets how identifiers are named in messages.
func WithLabel(label string) ReporterOption {
	return func(r *Reporter) {
		r.label = labelOrDefault(label)
	}
}

// WithNotifyWhenEmpty controls whether a "nothing new" notice is sent.
func WithNotifyWhenEmpty(v bool) ReporterOption {
	return func(r *Reporter) {
		r.notifyWhenEmpty = v
	}
}

// WithDryRun makes runs fetch and diff but never send or save.
func WithDryRun(v bool) ReporterOption {
	return func(r *Reporter) {
		r.dryRun = v
	}
}

// NewReporter creates a Reporter with injected dependencies.
func NewReporter(
	src pipedrive.DealSource,
	n notify.Notifier,
	s state.Store,
	filterID string,
	recipient string,
	opts ...ReporterOption,
) *Reporter {
	r := &Reporter{
		source:          src,
		notifier:        n,
		store:           s,
		filterID:        filterID,
		recipient:       recipient,
		label:           DefaultLabel,
		notifyWhenEmpty: true,
		log:             slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run performs one cycle. The state is saved only after the notifier
// accepted the message, so a failed delivery is retried by the next run.
// Returned errors are *domain.Error values classified by kind.
func (r *Reporter) Run(ctx context.Context) (*Result, error) {
	res := &Result{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}
	log := r.log.With("run_id", res.RunID, "filter_id", r.filterID)

	err := r.run(ctx, log, res)

	res.Duration = time.Since(res.StartedAt)
	metrics.RunDuration.Observe(res.Duration.Seconds())
	if err != nil {
		metrics.RunsTotal.WithLabelValues(domain.KindOf(err).String() + "_error").Inc()
		log.Error("run failed", "kind", domain.KindOf(err).String(), "error", err)
		return res, err
	}

	metrics.RunsTotal.WithLabelValues(string(res.Outcome)).Inc()
	metrics.LastSuccessTimestamp.SetToCurrentTime()
	log.Info("run complete",
		"outcome", res.Outcome,
		"fetched", res.Fetched,
		"new", len(res.NewIDs),
		"notified", res.Notified,
		"duration", res.Duration,
	)
	return res, nil
}

func (r *Reporter) run(ctx context.Context, log *slog.Logger, res *Result) error {
	prev, err := r.store.Load(ctx)
	if err != nil {
		return domain.NewError(domain.KindStorage, "loading state", err)
	}
	if prev == nil {
		prev = domain.NewNotificationState()
	}
	res.PreviouslySent = prev.SentIDs.Len()
	metrics.StateSentIDs.Set(float64(res.PreviouslySent))

	deals, err := r.source.FetchDeals(ctx, r.filterID)
	if err != nil {
		metrics.FetchErrorsTotal.Inc()
		return domain.NewError(domain.KindFetch, "fetching deals", err)
	}
	res.Fetched = len(deals)
	metrics.DealsFetched.Set(float64(len(deals)))

	res.NewIDs = NewIDs(deals, prev.SentIDs)
	log.Debug("diff computed",
		"fetched", res.Fetched,
		"previously_sent", res.PreviouslySent,
		"new", len(res.NewIDs),
	)

	if len(res.NewIDs) == 0 {
		return r.reportNothingNew(ctx, log, res)
	}

	res.Message = FormatMessage(r.label, res.NewIDs, prev.SentIDs.Len(), prev.LastBatchCount)

	if r.dryRun {
		res.Outcome = OutcomeDryRun
		log.Info("dry run, not sending", "message", res.Message)
		return nil
	}

	if err := r.send(ctx, res.Message); err != nil {
		return domain.NewError(domain.KindDelivery, "sending report", err)
	}
	res.Notified = true
	metrics.NewDealsTotal.Add(float64(len(res.NewIDs)))

	next := &domain.NotificationState{
		SentIDs:        prev.SentIDs.Union(domain.NewIDSet(res.NewIDs...)),
		LastBatchCount: len(res.NewIDs),
	}
	// The report is out, so a shutdown arriving now must not drop the record
	// of it.
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
	defer cancel()
	if err := r.store.Save(saveCtx, next); err != nil {
		metrics.StateSaveErrorsTotal.Inc()
		log.Error("report delivered but not recorded, the next run will repeat it",
			"new", len(res.NewIDs),
			"error", err,
		)
		return domain.NewError(domain.KindStorage, "saving state", err)
	}
	metrics.StateSentIDs.Set(float64(next.SentIDs.Len()))

	res.Outcome = OutcomeReported
	return nil
}

func (r *Reporter) reportNothingNew(ctx context.Context, log *slog.Logger, res *Result) error {
	res.Outcome = OutcomeNothingNew
	if !r.notifyWhenEmpty {
		log.Info("no new deals")
		return nil
	}

	res.Message = NothingNewMessage(r.label)
	if r.dryRun {
		res.Outcome = OutcomeDryRun
		log.Info("dry run, not sending", "message", res.Message)
		return nil
	}

	if err := r.send(ctx, res.Message); err != nil {
		return domain.NewError(domain.KindDelivery, "sending nothing-new notice", err)
	}
	res.Notified = true
	return nil
}

func (r *Reporter) send(ctx context.Context, text string) error {
	if err := r.notifier.Send(ctx, r.recipient, text); err != nil {
		metrics.NotificationFailuresTotal.Inc()
		return err
	}
	metrics.NotificationsSentTotal.Inc()
	return nil
}
