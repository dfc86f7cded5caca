package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"quickshow/internal/entities"
)

type ChecksRepo interface {
	NextFireAt(ctx context.Context) (time.Time, bool, error)
	Due(ctx context.Context, now time.Time) ([]entities.ScheduledCheck, error)
	MarkDone(ctx context.Context, id uuid.UUID) error
}

type EventBus interface {
	Publish(ctx context.Context, event any) error
}

const (
	defaultRescanInterval = time.Minute
	defaultRetryInterval  = 5 * time.Second
)

// Runner drains the scheduled_checks table, publishing a CheckPayment
// event for each check whose fire time has passed. Checks are marked
// done only after the publish succeeds, which makes delivery
// at-least-once; the expiry handler tolerates duplicates.
//
// The runner sleeps until the earliest pending check and can be woken
// early via Wake when a new check lands with a nearer fire time. The
// rescan interval bounds how stale the sleep can get if a wake-up is
// ever missed.
type Runner struct {
	checks         ChecksRepo
	eventBus       EventBus
	logger         zerolog.Logger
	wake           chan struct{}
	rescanInterval time.Duration
	retryInterval  time.Duration
}

func NewRunner(checks ChecksRepo, eventBus EventBus, logger zerolog.Logger) *Runner {
	return &Runner{
		checks:         checks,
		eventBus:       eventBus,
		logger:         logger.With().Str("component", "payment_check_sweeper").Logger(),
		wake:           make(chan struct{}, 1),
		rescanInterval: defaultRescanInterval,
		retryInterval:  defaultRetryInterval,
	}
}

// Wake nudges the runner to re-read the schedule. Safe to call from any
// goroutine; never blocks.
func (r *Runner) Wake() {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

func (r *Runner) Run(ctx context.Context) error {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		wait, err := r.dispatchDue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			r.logger.Err(err).Msg("sweep failed, backing off")
			wait = r.retryInterval
		}

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(wait)

		select {
		case <-ctx.Done():
			return nil
		case <-r.wake:
		case <-timer.C:
		}
	}
}

// dispatchDue publishes every check that is due and returns how long to
// sleep before the next one.
func (r *Runner) dispatchDue(ctx context.Context) (time.Duration, error) {
	now := time.Now()

	due, err := r.checks.Due(ctx, now)
	if err != nil {
		return 0, err
	}

	for _, check := range due {
		err := r.eventBus.Publish(ctx, entities.CheckPayment_v1{
			Header:    entities.NewEventHeaderWithIdempotencyKey(check.ID.String()),
			BookingID: check.BookingID,
		})
		if err != nil {
			return 0, err
		}

		if err := r.checks.MarkDone(ctx, check.ID); err != nil {
			return 0, err
		}

		r.logger.Info().
			Str("booking_id", check.BookingID.String()).
			Msg("payment check dispatched")
	}

	next, ok, err := r.checks.NextFireAt(ctx)
	if err != nil {
		return 0, err
	}
	if !ok {
		return r.rescanInterval, nil
	}

	wait := time.Until(next)
	if wait < 0 {
		wait = 0
	}
	if wait > r.rescanInterval {
		wait = r.rescanInterval
	}
	return wait, nil
}
