package entities

import (
	"time"

	"github.com/google/uuid"
)

// CheckoutSessionRequest describes the hosted checkout page the gateway
// should create. Metadata carries the booking id; it must be attached
// both at the session level and at the payment-intent level, because
// the gateway reports settlement in either shape.
type CheckoutSessionRequest struct {
	ItemName              string
	ItemDescription       string
	UnitAmount            int64 // minor currency units per seat
	Quantity              int
	SuccessURL            string
	CancelURL             string
	ExpiresAt             time.Time
	Metadata              map[string]string
	PaymentIntentMetadata map[string]string
}

type CheckoutSession struct {
	ID            string            `json:"id"`
	URL           string            `json:"url"`
	PaymentStatus string            `json:"payment_status"`
	Metadata      map[string]string `json:"metadata"`
}

// PaymentNotification is the normalized form of a gateway settlement
// notification, whatever shape it arrived in.
type PaymentNotification struct {
	BookingID uuid.UUID
	Confirmed bool
}
