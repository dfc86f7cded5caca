package entities

import (
	"time"

	"github.com/google/uuid"
)

// Booking is one user's reservation of one or more seats for a show.
// It is created unpaid and either transitions to paid exactly once or
// is deleted by the expiry sweeper. A paid booking is never deleted.
type Booking struct {
	ID          uuid.UUID `json:"id"`
	UserID      string    `json:"user_id"`
	UserEmail   string    `json:"user_email"`
	ShowID      uuid.UUID `json:"show_id"`
	Seats       []string  `json:"seats"`
	Amount      float64   `json:"amount"`
	IsPaid      bool      `json:"is_paid"`
	PaymentLink string    `json:"payment_link"`
	CreatedAt   time.Time `json:"created_at"`
}

// BookingDetails is a booking joined with its show, as needed by the
// confirmation message.
type BookingDetails struct {
	Booking
	MovieTitle    string    `json:"movie_title"`
	ShowStartTime time.Time `json:"show_start_time"`
}
