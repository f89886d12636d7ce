// Package scheduler fires the call lifecycle tick on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"scholarship-backend/config"
	"scholarship-backend/internal/domain"

	"github.com/robfig/cron/v3"
)

// Config holds trigger configuration.
type Config struct {
	// Spec is a six-field cron expression with seconds, e.g. "0 0 0 * * *".
	Spec     string
	Location *time.Location
}

// Trigger runs LifecycleUsecase.RunScheduledTick whenever Spec fires.
// A tick that is still running when the next one is due is skipped.
type Trigger struct {
	lifecycle domain.LifecycleUsecase
	cron      *cron.Cron
	config    Config
	logger    *slog.Logger

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

// NewTrigger validates the schedule and registers the tick job.
func NewTrigger(lifecycle domain.LifecycleUsecase, cfg Config, logger *slog.Logger) (*Trigger, error) {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	log := logger.With("component", "scheduler")
	cl := cronLogger{log}

	t := &Trigger{
		lifecycle: lifecycle,
		config:    cfg,
		logger:    log,
		ctx:       context.Background(),
	}
	t.cron = cron.New(
		cron.WithParser(config.CronParser),
		cron.WithLocation(cfg.Location),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	if _, err := t.cron.AddFunc(cfg.Spec, t.run); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", cfg.Spec, err)
	}
	return t, nil
}

// Start begins firing in the background. Ticks receive a context derived from ctx
// that is cancelled by Stop.
func (t *Trigger) Start(ctx context.Context) {
	t.mu.Lock()
	t.ctx, t.cancel = context.WithCancel(ctx)
	t.mu.Unlock()

	t.cron.Start()
	t.logger.Info("scheduler started", "spec", t.config.Spec, "location", t.config.Location.String(), "next_run", t.Next())
}

// Stop prevents further ticks, cancels a running one and waits for it to return.
func (t *Trigger) Stop() {
	t.mu.Lock()
	if t.cancel != nil {
		t.cancel()
	}
	t.mu.Unlock()

	<-t.cron.Stop().Done()
	t.logger.Info("scheduler stopped")
}

// Next reports when the tick fires next, or the zero time before Start.
func (t *Trigger) Next() time.Time {
	entries := t.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

func (t *Trigger) run() {
	t.mu.Lock()
	ctx := t.ctx
	t.mu.Unlock()

	outcome := t.lifecycle.RunScheduledTick(ctx)
	if outcome.Err != nil {
		t.logger.Error("scheduled tick failed", "attempts", outcome.Attempts, "error", outcome.Err)
	}
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error(msg, append(keysAndValues, "error", err)...)
}
