package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
)

// ErrRunInProgress is returned by Trigger when a run is already executing.
var ErrRunInProgress = errors.New("run already in progress")

// Runner performs one report cycle. *Reporter implements it.
type Runner interface {
	Run(ctx context.Context) (*Result, error)
}

// Trigger sources recorded with each run.
const (
	TriggerSchedule = "schedule"
	TriggerManual   = "manual"
)

// LastRun is the outcome of the most recent finished run.
type LastRun struct {
	Trigger    string
	Result     *Result
	Err        error
	FinishedAt time.Time
}

// Scheduler runs report cycles on a cron schedule and on demand. At most one
// run executes at a time within the process.
type Scheduler struct {
	cron    *cron.Cron
	runner  Runner
	spec    string
	entryID cron.EntryID
	log     *slog.Logger

	baseCtx context.Context
	cancel  context.CancelFunc

	running atomic.Bool

	mu   sync.RWMutex
	last *LastRun
}

// SchedulerOption configures the Scheduler.
type SchedulerOption func(*Scheduler)

// WithSchedulerLogger sets a custom logger.
func WithSchedulerLogger(l *slog.Logger) SchedulerOption {
	return func(s *Scheduler) {
		s.log = l
	}
}

// NewScheduler creates a Scheduler that runs r on the standard cron spec
// (e.g. "*/30 * * * *" or "@every 1h").
func NewScheduler(r Runner, spec string, opts ...SchedulerOption) (*Scheduler, error) {
	s := &Scheduler{
		runner: r,
		spec:   spec,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.cron = cron.New(cron.WithChain(
		cron.Recover(cronLogger{s.log}),
		cron.SkipIfStillRunning(cronLogger{s.log}),
	))
	s.baseCtx, s.cancel = context.WithCancel(context.Background())

	id, err := s.cron.AddFunc(spec, s.runScheduled)
	if err != nil {
		s.cancel()
		return nil, err
	}
	s.entryID = id

	return s, nil
}

// Start begins running scheduled cycles.
func (s *Scheduler) Start() {
	s.log.Info("scheduler started", "schedule", s.spec)
	s.cron.Start()
}

// Stop stops scheduling and cancels a scheduled run in flight. The returned
// context is done once running jobs have returned.
func (s *Scheduler) Stop() context.Context {
	s.log.Info("scheduler stopping")
	s.cancel()
	return s.cron.Stop()
}

// Entries returns the registered cron entries for inspection.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

// NextRun returns when the next scheduled run fires. It is zero before Start.
func (s *Scheduler) NextRun() time.Time {
	return s.cron.Entry(s.entryID).Next
}

// Running reports whether a run is executing.
func (s *Scheduler) Running() bool {
	return s.running.Load()
}

// Trigger runs a cycle now and waits for it. It returns ErrRunInProgress
// without running when another cycle is executing.
func (s *Scheduler) Trigger(ctx context.Context) (*Result, error) {
	return s.execute(ctx, TriggerManual)
}

// LastResult returns the most recent finished run, if any.
func (s *Scheduler) LastResult() (LastRun, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return LastRun{}, false
	}
	return *s.last, true
}

func (s *Scheduler) runScheduled() {
	if _, err := s.execute(s.baseCtx, TriggerSchedule); errors.Is(err, ErrRunInProgress) {
		s.log.Warn("scheduled run skipped, previous run still executing")
	}
}

func (s *Scheduler) execute(ctx context.Context, trigger string) (*Result, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer s.running.Store(false)

	s.log.Info("run starting", "trigger", trigger)
	res, err := s.runner.Run(ctx)

	s.mu.Lock()
	s.last = &LastRun{
		Trigger:    trigger,
		Result:     res,
		Err:        err,
		FinishedAt: time.Now(),
	}
	s.mu.Unlock()

	return res, err
}

// cronLogger adapts slog to cron's logger interface.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
