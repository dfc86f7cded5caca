package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"

	"quickshow/internal/entities"
	"quickshow/internal/infrastructure/clients"
)

func (h *Handler) SendConfirmationHandler() cqrs.EventHandler {
	return cqrs.NewEventHandler(
		"send_booking_confirmation_handler",
		func(ctx context.Context, payload *entities.BookingConfirmed_v1) error {
			log.FromContext(ctx).Info("Sending booking confirmation for booking: ", payload.BookingID)

			details, err := h.bookings.GetDetails(ctx, payload.BookingID)
			if errors.Is(err, entities.ErrBookingNotFound) {
				log.FromContext(ctx).Warn("Confirmed booking no longer exists: ", payload.BookingID)
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to load booking details: %w", err)
			}

			return h.notificationsClient.SendBookingConfirmation(ctx, clients.BookingConfirmationMessage{
				DeduplicationID: payload.Header.IdempotencyKey,
				Email:           details.UserEmail,
				MovieTitle:      details.MovieTitle,
				ShowDate:        details.ShowStartTime.Format("Monday, 2 January 2006"),
				ShowTime:        details.ShowStartTime.Format("15:04"),
				Seats:           details.Seats,
				Amount:          details.Amount,
			})
		},
	)
}
