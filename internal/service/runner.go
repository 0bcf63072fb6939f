package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mbeaver502/CyberLawBot/internal/model"
	"github.com/mbeaver502/CyberLawBot/internal/store"
)

// Phase names the engine's position in a cycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseShortening
	PhaseSelecting
	PhasePublishing
	PhaseSleeping
	PhaseTerminated
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseShortening:
		return "shortening"
	case PhaseSelecting:
		return "selecting"
	case PhasePublishing:
		return "publishing"
	case PhaseSleeping:
		return "sleeping"
	case PhaseTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// RunnerConfig tunes the publishing engine.
type RunnerConfig struct {
	// SleepInterval is the pause between cycles.
	SleepInterval time.Duration

	// MaxCycles bounds the run to roughly one working day of hourly cycles.
	MaxCycles int

	// ContinueOnShortenError keeps the shortening phase alive after a
	// failed row, skipping just that row. When false, the first failure
	// ends the phase for this cycle and the rows wait for the next one.
	ContinueOnShortenError bool
}

// Runner drives the hourly publish cycle: shorten any long links, post the
// oldest unpublished bill, sleep, repeat. Each cycle publishes at most one
// bill so the feed trickles instead of flooding.
type Runner struct {
	bills     *store.BillStore
	shortener *Shortener
	publisher *Publisher
	builder   *StatusBuilder
	sleeper   Sleeper
	logger    *slog.Logger
	cfg       RunnerConfig

	runID  string
	phase  Phase
	cycles int
}

// NewRunner creates a new Runner
func NewRunner(bills *store.BillStore, shortener *Shortener, publisher *Publisher,
	builder *StatusBuilder, sleeper Sleeper, logger *slog.Logger, cfg RunnerConfig) *Runner {
	if cfg.MaxCycles < 1 {
		cfg.MaxCycles = 1
	}
	return &Runner{
		bills:     bills,
		shortener: shortener,
		publisher: publisher,
		builder:   builder,
		sleeper:   sleeper,
		logger:    logger,
		cfg:       cfg,
		phase:     PhaseIdle,
	}
}

// Phase returns the engine's current phase.
func (r *Runner) Phase() Phase {
	return r.phase
}

// Cycles returns how many cycles have started.
func (r *Runner) Cycles() int {
	return r.cycles
}

// Run executes cycles until the cycle limit is reached or the context is
// canceled. Cancellation is a clean shutdown, not an error.
func (r *Runner) Run(ctx context.Context) error {
	r.runID = uuid.NewString()
	logger := r.logger.With("run_id", r.runID)

	logger.Info("*** start run ***")
	defer func() {
		r.phase = PhaseTerminated
		r.shortener.CloseIdleConnections()
		r.publisher.CloseIdleConnections()
		logger.Info("*** end run ***", "cycles", r.cycles)
	}()

	count, err := r.bills.CountBills(ctx)
	if err != nil {
		return fmt.Errorf("failed to count bills: %w", err)
	}
	logger.Info("table size", "rows", count)

	for {
		r.cycles++
		cycle := logger.With("cycle", r.cycles)

		r.shortenPhase(ctx, cycle)
		if ctx.Err() != nil {
			return nil
		}

		r.publishPhase(ctx, cycle)
		if ctx.Err() != nil {
			return nil
		}

		r.phase = PhaseSleeping
		cycle.Info("sleeping", "interval", r.cfg.SleepInterval.String())
		if err := r.sleeper.Sleep(ctx, r.cfg.SleepInterval); err != nil {
			return nil
		}

		if r.cycles >= r.cfg.MaxCycles {
			cycle.Info("cycle limit reached")
			return nil
		}
	}
}

// shortenPhase gives a short link to every stored bill that lacks one, in
// oldest-first order, while quota remains. A service refusal pins the quota
// and so retires the phase for the rest of the run; any other failure ends
// the phase for this cycle only, leaving the rows for the next one.
func (r *Runner) shortenPhase(ctx context.Context, logger *slog.Logger) {
	r.phase = PhaseShortening

	if r.shortener.Remaining() == 0 {
		logger.Debug("shortening quota exhausted, skipping phase", "used", r.shortener.Used())
		return
	}

	bills, err := r.bills.NeedingShortURL(ctx)
	if err != nil {
		logger.Error("failed to list bills needing short urls", "error", err)
		return
	}

	for idx := range bills {
		if ctx.Err() != nil {
			return
		}
		if r.shortener.Remaining() == 0 {
			logger.Info("shortening quota exhausted", "used", r.shortener.Used())
			return
		}

		bill := &bills[idx]
		name := fmt.Sprintf("%s %d", bill.Type, bill.Number)

		short, err := r.shortener.Shorten(ctx, bill.FullURL)
		if err != nil {
			var refusal *ShortenError
			if errors.As(err, &refusal) {
				logger.Error("shortening refused, quota pinned",
					"bill", name, "code", refusal.Code, "message", refusal.Message)
				return
			}

			logger.Warn("failed to shorten", "bill", name, "error", err)
			if r.cfg.ContinueOnShortenError {
				continue
			}
			return
		}

		bill.ShortURL = sql.NullString{String: short, Valid: true}
		if err := r.bills.Update(ctx, bill); err != nil {
			logger.Error("failed to store short url", "bill", name, "error", err)
			return
		}

		logger.Info("shortened", "bill", name, "short_url", short)
	}
}

// publishPhase posts the oldest shortened, unpublished bill. A rejected or
// failed post leaves the bill unpublished for the next cycle.
func (r *Runner) publishPhase(ctx context.Context, logger *slog.Logger) {
	r.phase = PhaseSelecting

	ok, err := r.publisher.VerifyCredentials(ctx)
	if err != nil {
		logger.Warn("failed to verify feed credentials", "error", err)
		return
	}
	if !ok {
		logger.Warn("feed credentials rejected, skipping publish")
		return
	}

	bill, err := r.bills.NextUnpublished(ctx)
	if err != nil {
		logger.Error("failed to select bill to publish", "error", err)
		return
	}
	if bill == nil {
		logger.Info("no bills ready to publish")
		return
	}

	status := r.builder.Build(bill)
	if status == "" {
		logger.Warn("nothing to render for bill, skipping publish", "bill", bill.ID)
		return
	}

	r.phase = PhasePublishing
	if err := r.publisher.Post(ctx, status); err != nil {
		var pe *PublishError
		if errors.As(err, &pe) {
			logger.Error("status rejected", "http_status", pe.StatusCode, "message", pe.Message)
		} else {
			logger.Error("failed to post status", "error", err)
		}
		return
	}

	if err := r.markPosted(ctx, bill); err != nil {
		logger.Error("failed to mark bill posted", "bill", bill.ID, "error", err)
		return
	}

	logger.Info("posted status", "bill", fmt.Sprintf("%s %d", bill.Type, bill.Number), "status", status)
}

func (r *Runner) markPosted(ctx context.Context, bill *model.BillRecord) error {
	bill.Posted = true
	return r.bills.Update(ctx, bill)
}
