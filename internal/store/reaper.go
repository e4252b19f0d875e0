package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultReapSchedule runs the prune once a night.
const DefaultReapSchedule = "15 2 * * *"

// Reaper prunes old batch log records on a cron schedule.
type Reaper struct {
	logs      Pruner
	retention time.Duration
	cron      *cron.Cron
	now       func() time.Time
}

// NewReaper schedules removal of records older than retention. schedule is
// a five-field cron expression.
func NewReaper(logs Pruner, retention time.Duration, schedule string) (*Reaper, error) {
	if retention <= 0 {
		return nil, fmt.Errorf("log retention must be positive, got %s", retention)
	}

	r := &Reaper{logs: logs, retention: retention, now: time.Now}
	logger := cronLogger{}
	r.cron = cron.New(cron.WithLogger(logger), cron.WithChain(cron.SkipIfStillRunning(logger)))
	if _, err := r.cron.AddFunc(schedule, r.run); err != nil {
		return nil, fmt.Errorf("reap schedule %q: %w", schedule, err)
	}
	return r, nil
}

func (r *Reaper) Start() {
	r.cron.Start()
	slog.Info("batch log reaper started", "retention", r.retention)
}

// Stop halts the schedule and waits for a prune in progress.
func (r *Reaper) Stop() {
	<-r.cron.Stop().Done()
}

// RunOnce prunes now, outside the schedule.
func (r *Reaper) RunOnce(ctx context.Context) (int, error) {
	return r.logs.Prune(ctx, r.now().Add(-r.retention))
}

func (r *Reaper) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 4*time.Minute)
	defer cancel()

	n, err := r.RunOnce(ctx)
	if err != nil {
		slog.Warn("batch log prune failed", "err", err)
		return
	}
	if n > 0 {
		slog.Info("pruned batch log", "removed", n, "retention", r.retention)
	}
}

// cronLogger sends the scheduler's own messages to slog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.Error("cron: "+msg, append(keysAndValues, "err", err)...)
}
