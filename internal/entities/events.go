package entities

import (
	"github.com/google/uuid"
)

type Event interface {
	EventName() string
	IsInternal() bool
}

// BookingConfirmed_v1 is published exactly once per booking, on the
// unpaid -> paid transition.
type BookingConfirmed_v1 struct {
	Header    EventHeader `json:"header"`
	BookingID uuid.UUID   `json:"booking_id"`
}

func (BookingConfirmed_v1) EventName() string { return "booking.confirmed" }

func (BookingConfirmed_v1) IsInternal() bool { return false }

// CheckPayment_v1 is the delayed trigger for the expiry sweeper,
// published 10 minutes after the booking was created.
type CheckPayment_v1 struct {
	Header    EventHeader `json:"header"`
	BookingID uuid.UUID   `json:"booking_id"`
}

func (CheckPayment_v1) EventName() string { return "checkpayment" }

func (CheckPayment_v1) IsInternal() bool { return true }
