package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"quickshow/internal/entities"
	"quickshow/internal/infrastructure/clients"
)

// signatureTolerance bounds how old a signed notification may be before
// it is treated as a replay.
const signatureTolerance = 5 * time.Minute

// PaymentNotificationHandler receives the payment provider's webhook.
// Anything with a bad signature is rejected; anything signed but
// unusable (unknown event type, missing booking reference) is
// acknowledged and dropped, because the provider would otherwise retry
// it forever. Only settlement failures on our side return an error, so
// the provider redelivers exactly the notifications we failed to apply.
func (s *Server) PaymentNotificationHandler(c echo.Context) error {
	ctx := c.Request().Context()

	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return err
	}

	err = clients.VerifyNotificationSignature(
		payload,
		c.Request().Header.Get(clients.SignatureHeader),
		s.webhookSecret,
		signatureTolerance,
	)
	if errors.Is(err, entities.ErrBadSignature) {
		return c.JSON(http.StatusBadRequest, map[string]any{
			"received": false,
			"message":  "Invalid signature.",
		})
	}
	if err != nil {
		return err
	}

	notification, ok := s.normalizeNotification(ctx, payload)
	if !ok {
		return c.JSON(http.StatusOK, map[string]any{"received": true})
	}

	if err := s.settlementsService.Settle(ctx, notification); err != nil {
		// Non-2xx makes the provider redeliver.
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{"received": true})
}

// normalizeNotification maps the provider's two settlement shapes onto
// one internal notification. ok is false when the event carries nothing
// actionable and should simply be acknowledged.
func (s *Server) normalizeNotification(ctx context.Context, payload []byte) (entities.PaymentNotification, bool) {
	var event clients.WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		log.FromContext(ctx).Warn("undecodable payment notification, acking: ", err)
		return entities.PaymentNotification{}, false
	}

	switch event.Type {
	case clients.EventCheckoutSessionCompleted:
		var session clients.CheckoutSessionCompleted
		if err := json.Unmarshal(event.Data, &session); err != nil {
			log.FromContext(ctx).Warn("undecodable checkout session notification, acking: ", err)
			return entities.PaymentNotification{}, false
		}

		bookingID, ok := bookingIDFromMetadata(ctx, session.Metadata)
		if !ok {
			return entities.PaymentNotification{}, false
		}

		return entities.PaymentNotification{
			BookingID: bookingID,
			Confirmed: session.PaymentStatus == "paid",
		}, true

	case clients.EventPaymentIntentSucceeded:
		var intent clients.PaymentIntentSucceeded
		if err := json.Unmarshal(event.Data, &intent); err != nil {
			log.FromContext(ctx).Warn("undecodable payment intent notification, acking: ", err)
			return entities.PaymentNotification{}, false
		}

		if bookingID, ok := bookingIDFromMetadata(ctx, intent.Metadata); ok {
			return entities.PaymentNotification{BookingID: bookingID, Confirmed: true}, true
		}

		// Older checkout sessions predate intent-level metadata; fall
		// back to looking the session up by its payment intent.
		sessions, err := s.paymentSessions.SessionsByPaymentIntent(ctx, intent.ID)
		if err != nil {
			log.FromContext(ctx).Warn("failed to resolve sessions for payment intent, acking: ", err)
			return entities.PaymentNotification{}, false
		}
		for _, session := range sessions {
			if bookingID, ok := bookingIDFromMetadata(ctx, session.Metadata); ok {
				return entities.PaymentNotification{BookingID: bookingID, Confirmed: true}, true
			}
		}

		log.FromContext(ctx).
			WithField("payment_intent", intent.ID).
			Warn("payment intent with no booking reference, acking")
		return entities.PaymentNotification{}, false

	default:
		log.FromContext(ctx).
			WithField("event_type", event.Type).
			Info("ignoring payment notification of unhandled type")
		return entities.PaymentNotification{}, false
	}
}

func bookingIDFromMetadata(ctx context.Context, metadata map[string]string) (uuid.UUID, bool) {
	raw, ok := metadata[clients.MetadataBookingKey]
	if !ok || raw == "" {
		log.FromContext(ctx).Warn("payment notification without a booking id, acking")
		return uuid.Nil, false
	}

	bookingID, err := uuid.Parse(raw)
	if err != nil {
		log.FromContext(ctx).Warn("payment notification with a malformed booking id, acking: ", err)
		return uuid.Nil, false
	}

	return bookingID, true
}
