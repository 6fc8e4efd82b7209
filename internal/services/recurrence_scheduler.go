package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"moneta/internal/core"
	mlog "moneta/internal/log"
	"moneta/internal/storage"
	"moneta/internal/timezone"
)

// RolloverPublisher announces a completed rollover. Publishing is best effort.
type RolloverPublisher interface {
	PublishBudgetRollover(ctx context.Context, predecessor, successor core.Budget) error
}

// SweepObserver records the outcome of every sweep.
type SweepObserver interface {
	ObserveSweep(duration time.Duration, rolledOver, failed int)
}

// SweepResult counts what one sweep did. Skipped covers budgets not yet expired
// and budgets that already have a successor.
type SweepResult struct {
	Checked    int
	RolledOver int
	Skipped    int
	Failed     int
}

// RecurrenceScheduler rolls expired recurring budgets over into their next period.
type RecurrenceScheduler struct {
	budgets   storage.BudgetStore
	tz        *timezone.Normalizer
	workers   int
	publisher RolloverPublisher
	observer  SweepObserver
}

type SchedulerOption func(*RecurrenceScheduler)

func WithPublisher(p RolloverPublisher) SchedulerOption {
	return func(s *RecurrenceScheduler) { s.publisher = p }
}

func WithObserver(o SweepObserver) SchedulerOption {
	return func(s *RecurrenceScheduler) { s.observer = o }
}

// WithWorkers bounds how many budgets are rolled over concurrently.
func WithWorkers(n int) SchedulerOption {
	return func(s *RecurrenceScheduler) {
		if n > 0 {
			s.workers = n
		}
	}
}

func NewRecurrenceScheduler(budgets storage.BudgetStore, tz *timezone.Normalizer, opts ...SchedulerOption) *RecurrenceScheduler {
	s := &RecurrenceScheduler{budgets: budgets, tz: tz, workers: 1}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type outcome int

const (
	outcomeSkipped outcome = iota
	outcomeRolledOver
)

// Sweep evaluates every recurring budget once. A failure on one budget is logged
// and counted and never stops the others. The returned error is non-nil only when
// the budgets could not be loaded or ctx was cancelled.
func (s *RecurrenceScheduler) Sweep(ctx context.Context) (SweepResult, error) {
	started := time.Now()
	now := s.tz.Now()

	budgets, err := s.budgets.ListRecurringBudgets(ctx)
	if err != nil {
		return SweepResult{}, fmt.Errorf("failed to load recurring budgets: %w", err)
	}

	slog.InfoContext(ctx, "Sweeping recurring budgets",
		"total_recurring", len(budgets),
		"now", now.Format(time.RFC3339))

	var rolled, skipped, failed atomic.Int64

	var g errgroup.Group
	g.SetLimit(s.workers)
	for _, b := range budgets {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			res, err := s.rollover(ctx, b, now)
			switch {
			case err != nil:
				failed.Add(1)
				slog.ErrorContext(ctx, "Failed to roll over budget",
					mlog.FieldBudgetID, b.ID,
					mlog.FieldUserID, b.UserID,
					"end_date", b.EndDate.Format(time.RFC3339),
					mlog.FieldError, err)
			case res == outcomeRolledOver:
				rolled.Add(1)
			default:
				skipped.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	result := SweepResult{
		Checked:    len(budgets),
		RolledOver: int(rolled.Load()),
		Skipped:    int(skipped.Load()),
		Failed:     int(failed.Load()),
	}
	if s.observer != nil {
		s.observer.ObserveSweep(time.Since(started), result.RolledOver, result.Failed)
	}

	slog.InfoContext(ctx, "Recurring budget sweep complete",
		"checked", result.Checked,
		"rolled_over", result.RolledOver,
		"skipped", result.Skipped,
		"failed", result.Failed,
		"duration_ms", time.Since(started).Milliseconds())

	return result, ctx.Err()
}

func (s *RecurrenceScheduler) rollover(ctx context.Context, b core.Budget, now time.Time) (outcome, error) {
	if !IsExpired(s.tz, b.EndDate, now) {
		return outcomeSkipped, nil
	}

	next := Successor(s.tz, b, now)
	if err := s.budgets.RolloverBudget(ctx, b.ID, &next); err != nil {
		if errors.Is(err, core.ErrAlreadyRolledOver) {
			// rolled over before, possibly by a concurrent sweep
			return outcomeSkipped, nil
		}
		return outcomeSkipped, err
	}

	slog.InfoContext(ctx, "Rolled over recurring budget",
		mlog.FieldPredecessor, b.ID,
		mlog.FieldSuccessor, next.ID,
		"start_date", next.StartDate.Format(time.RFC3339),
		"end_date", next.EndDate.Format(time.RFC3339))

	if s.publisher != nil {
		if err := s.publisher.PublishBudgetRollover(ctx, b, next); err != nil {
			slog.WarnContext(ctx, "Failed to publish budget rollover",
				mlog.FieldPredecessor, b.ID,
				mlog.FieldSuccessor, next.ID,
				mlog.FieldError, err)
		}
	}
	return outcomeRolledOver, nil
}

// Start registers the sweep on a cron schedule evaluated in the civil zone and
// blocks until ctx is done. A tick that fires while the previous sweep is still
// running is skipped. With runOnStartup one sweep runs before the first tick.
func (s *RecurrenceScheduler) Start(ctx context.Context, schedule string, runOnStartup bool) error {
	logger := mlog.NewCronLogger(slog.Default())
	c := cron.New(
		cron.WithLocation(s.tz.Location()),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	if _, err := c.AddFunc(schedule, func() { s.runSweep(ctx) }); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}

	if runOnStartup {
		s.runSweep(ctx)
	}

	c.Start()
	slog.InfoContext(ctx, "Recurrence scheduler started",
		"schedule", schedule,
		"timezone", s.tz.Location().String(),
		"workers", s.workers)

	<-ctx.Done()
	stopped := c.Stop()
	<-stopped.Done()
	slog.Info("Recurrence scheduler stopped")
	return nil
}

func (s *RecurrenceScheduler) runSweep(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := s.Sweep(ctx); err != nil {
		slog.ErrorContext(ctx, "Recurring budget sweep failed", mlog.FieldError, err)
	}
}
