package strategy

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/rickgao/kalshi-mm/internal/journal"
)

// Cycle results.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

const flushTimeout = 5 * time.Second

// RunnerConfig holds loop timing.
type RunnerConfig struct {
	RefreshInterval time.Duration // Sleep after a successful cycle
	RetryInterval   time.Duration // Sleep after a failed cycle (0 = RefreshInterval)
}

// Runner drives a Strategy forever, one cycle at a time. It is the single
// place where cycle errors are absorbed.
type Runner struct {
	cfg      RunnerConfig
	strategy Strategy
	journal  journal.Journal
	recorder Recorder
	logger   *slog.Logger

	mu         sync.Mutex
	lastResult string
	lastCycle  time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRunner creates a Runner. j and rec may be nil.
func NewRunner(cfg RunnerConfig, s Strategy, j journal.Journal, rec Recorder, logger *slog.Logger) *Runner {
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = cfg.RefreshInterval
	}
	if j == nil {
		j = journal.Nop{}
	}
	if rec == nil {
		rec = nopRecorder{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		cfg:      cfg,
		strategy: s,
		journal:  j,
		recorder: rec,
		logger:   logger,
	}
}

// Run loops until ctx is cancelled. It never returns a cycle error.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Info("strategy runner started",
		"strategy", r.strategy.Name(),
		"refresh_interval", r.cfg.RefreshInterval,
		"retry_interval", r.cfg.RetryInterval,
	)

	for {
		wait := r.cfg.RefreshInterval
		if err := r.RunOnce(ctx); err != nil {
			wait = r.cfg.RetryInterval
		}

		select {
		case <-ctx.Done():
			r.logger.Info("strategy runner stopped", "strategy", r.strategy.Name())
			return nil
		case <-time.After(wait):
		}
	}
}

// RunOnce executes a single cycle, logs and records its outcome, and flushes
// the journal.
func (r *Runner) RunOnce(ctx context.Context) error {
	start := time.Now()
	name := r.strategy.Name()

	stats, err := r.strategy.Cycle(ctx)
	elapsed := time.Since(start)

	// Flush even when the cycle was cancelled.
	fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flushTimeout)
	if ferr := r.journal.Flush(fctx); ferr != nil {
		r.logger.Warn("journal flush failed", "error", ferr)
	}
	cancel()

	result := ResultOK
	if err != nil {
		result = ResultError
	}
	r.recorder.ObserveCycle(name, result, elapsed)

	r.mu.Lock()
	r.lastResult = result
	r.lastCycle = start
	r.mu.Unlock()

	if err != nil {
		if ctx.Err() == nil {
			r.logger.Error("strategy cycle failed",
				"strategy", name,
				"error", err,
				"retry_in", r.cfg.RetryInterval,
			)
		}
		return err
	}

	r.logger.Info("strategy cycle complete",
		"strategy", name,
		"markets", stats.Markets,
		"skipped", stats.Skipped,
		"submitted", stats.Submitted,
		"rejected", stats.Rejected,
		"duration", elapsed,
	)
	return nil
}

// Start runs the loop in a background goroutine.
func (r *Runner) Start(ctx context.Context) error {
	r.ctx, r.cancel = context.WithCancel(ctx)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.Run(r.ctx)
	}()

	return nil
}

// Stop cancels the loop and waits for the current cycle to finish.
func (r *Runner) Stop(ctx context.Context) error {
	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LastCycle returns the start time and result of the latest cycle.
func (r *Runner) LastCycle() (time.Time, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastCycle, r.lastResult
}
