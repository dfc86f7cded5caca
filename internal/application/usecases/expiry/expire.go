package expiry

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/google/uuid"

	"quickshow/internal/entities"
)

type BookingsRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Booking, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type ShowsRepo interface {
	ReleaseSeats(ctx context.Context, showID uuid.UUID, seats []string) error
}

type TransactionManager interface {
	Do(ctx context.Context, f func(ctx context.Context) error) error
}

// ExpireBookingUsecase releases the seats of a booking whose payment
// window has elapsed without settlement. Paid bookings are left alone,
// so a check that fires after a successful payment is a no-op.
type ExpireBookingUsecase struct {
	bookingsRepo BookingsRepo
	showsRepo    ShowsRepo
	trManager    TransactionManager
}

func NewExpireBookingUsecase(
	bookingsRepo BookingsRepo,
	showsRepo ShowsRepo,
	trManager TransactionManager,
) *ExpireBookingUsecase {
	return &ExpireBookingUsecase{
		bookingsRepo: bookingsRepo,
		showsRepo:    showsRepo,
		trManager:    trManager,
	}
}

func (u *ExpireBookingUsecase) Expire(ctx context.Context, bookingID uuid.UUID) error {
	return u.trManager.Do(ctx, func(ctx context.Context) error {
		booking, err := u.bookingsRepo.GetByID(ctx, bookingID)
		if err != nil {
			if errors.Is(err, entities.ErrBookingNotFound) {
				// Already expired by an earlier delivery of the same check.
				return nil
			}
			return fmt.Errorf("failed to get booking: %w", err)
		}

		if booking.IsPaid {
			log.FromContext(ctx).
				WithField("booking_id", bookingID).
				Info("booking paid within the window, keeping seats")
			return nil
		}

		// The delete only matches while the booking is still unpaid. A
		// settlement committing after the read above makes it a no-op,
		// and then the seats must stay held.
		deleted, err := u.bookingsRepo.Delete(ctx, bookingID)
		if err != nil {
			return fmt.Errorf("failed to delete booking: %w", err)
		}
		if !deleted {
			log.FromContext(ctx).
				WithField("booking_id", bookingID).
				Info("booking settled while expiring, keeping seats")
			return nil
		}

		if err := u.showsRepo.ReleaseSeats(ctx, booking.ShowID, booking.Seats); err != nil {
			return fmt.Errorf("failed to release seats: %w", err)
		}
		return nil
	})
}
