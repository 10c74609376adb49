// Package scheduler runs the periodic data-quality sweep: it reports every
// opportunity record the ranking has to default around and prunes
// notifications that have aged out of the public panel.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Manoj-Murari/Our-Kandukur-StartUp/internal/ranking"
)

// Inspector lists the anomalies in the stored opportunities.
type Inspector interface {
	Inspect(ctx context.Context) ([]ranking.Anomaly, error)
}

// Pruner removes expired notifications.
type Pruner interface {
	Prune(ctx context.Context) (int64, error)
}

// Result summarises one sweep.
type Result struct {
	Anomalies []ranking.Anomaly `json:"anomalies"`
	Pruned    int64             `json:"pruned"`
}

// Scheduler wraps robfig/cron and owns the sweep job.
type Scheduler struct {
	cron      *cron.Cron
	spec      string
	inspector Inspector
	pruner    Pruner
	logger    *slog.Logger

	// initial tracks the sweep Start fires outside the cron loop.
	initial sync.WaitGroup
}

// New creates a Scheduler that sweeps every interval. Intervals below a
// minute are rounded up to one minute.
func New(inspector Inspector, pruner Pruner, interval time.Duration, logger *slog.Logger) *Scheduler {
	if interval < time.Minute {
		interval = time.Minute
	}
	cl := cronLogger{logger: logger}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		spec:      fmt.Sprintf("@every %s", interval),
		inspector: inspector,
		pruner:    pruner,
		logger:    logger,
	}
}

// Start registers the sweep and starts the cron loop. One sweep runs
// immediately so problems show up without waiting for the first tick; it goes
// through the same job chain, so it never overlaps a scheduled sweep.
func (s *Scheduler) Start(ctx context.Context) error {
	id, err := s.cron.AddFunc(s.spec, func() {
		if _, err := s.RunOnce(ctx); err != nil {
			s.logger.Error("sweep failed", slog.String("error", err.Error()))
		}
	})
	if err != nil {
		return fmt.Errorf("scheduler: adding sweep %q: %w", s.spec, err)
	}

	s.cron.Start()
	s.logger.Info("scheduler started", slog.String("spec", s.spec))

	job := s.cron.Entry(id).WrappedJob
	s.initial.Add(1)
	go func() {
		defer s.initial.Done()
		job.Run()
	}()
	return nil
}

// Stop stops the cron loop and waits for a running sweep, including the
// initial one, to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	stopped := s.cron.Stop()
	done := make(chan struct{})
	go func() {
		<-stopped.Done()
		s.initial.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timed out while a sweep was running")
	}
	s.logger.Info("scheduler stopped")
}

// RunOnce performs one sweep. Both steps run even if the first fails; the
// first error is returned.
func (s *Scheduler) RunOnce(ctx context.Context) (*Result, error) {
	start := time.Now()
	var (
		res      Result
		firstErr error
	)

	anomalies, err := s.inspector.Inspect(ctx)
	if err != nil {
		firstErr = fmt.Errorf("scheduler: inspecting opportunities: %w", err)
	}
	res.Anomalies = anomalies

	pruned, err := s.pruner.Prune(ctx)
	if err != nil && firstErr == nil {
		firstErr = fmt.Errorf("scheduler: pruning notifications: %w", err)
	}
	res.Pruned = pruned

	s.logger.Info("sweep complete",
		slog.Int("anomalies", len(res.Anomalies)),
		slog.Int64("pruned", res.Pruned),
		slog.Duration("duration", time.Since(start)),
	)
	return &res, firstErr
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append([]any{slog.String("error", err.Error())}, keysAndValues...)...)
}
