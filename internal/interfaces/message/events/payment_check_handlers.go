package events

import (
	"context"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"

	"quickshow/internal/entities"
)

func (h *Handler) CheckPaymentHandler() cqrs.EventHandler {
	return cqrs.NewEventHandler(
		"release_unpaid_booking_handler",
		func(ctx context.Context, payload *entities.CheckPayment_v1) error {
			log.FromContext(ctx).Info("Checking payment for booking: ", payload.BookingID)

			return h.expireService.Expire(ctx, payload.BookingID)
		},
	)
}
