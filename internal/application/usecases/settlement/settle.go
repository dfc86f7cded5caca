package settlement

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/google/uuid"

	"quickshow/internal/entities"
)

type BookingsRepo interface {
	MarkPaid(ctx context.Context, id uuid.UUID) (bool, error)
}

type ConfirmationPublisher interface {
	PublishConfirmed(ctx context.Context, bookingID uuid.UUID) error
}

type TransactionManager interface {
	Do(ctx context.Context, f func(ctx context.Context) error) error
}

// SettlePaymentUsecase applies a verified payment notification to the
// booking it references. Marking the booking paid and publishing the
// confirmation event share a transaction through the outbox, and the
// paid flag transitions at most once, so gateway redeliveries never
// produce a second confirmation.
type SettlePaymentUsecase struct {
	bookingsRepo BookingsRepo
	publisher    ConfirmationPublisher
	trManager    TransactionManager
}

func NewSettlePaymentUsecase(
	bookingsRepo BookingsRepo,
	publisher ConfirmationPublisher,
	trManager TransactionManager,
) *SettlePaymentUsecase {
	return &SettlePaymentUsecase{
		bookingsRepo: bookingsRepo,
		publisher:    publisher,
		trManager:    trManager,
	}
}

func (u *SettlePaymentUsecase) Settle(ctx context.Context, notification entities.PaymentNotification) error {
	if !notification.Confirmed {
		log.FromContext(ctx).
			WithField("booking_id", notification.BookingID).
			Info("payment notification without a settled payment, ignoring")
		return nil
	}

	return u.trManager.Do(ctx, func(ctx context.Context) error {
		transitioned, err := u.bookingsRepo.MarkPaid(ctx, notification.BookingID)
		if err != nil {
			return fmt.Errorf("failed to mark booking paid: %w", err)
		}
		if !transitioned {
			// Already paid or already expired; either way there is
			// nothing left to confirm.
			return nil
		}

		return u.publisher.PublishConfirmed(ctx, notification.BookingID)
	})
}
