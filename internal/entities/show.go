package entities

import (
	"time"

	"github.com/google/uuid"
)

// Show is a single scheduled screening. OccupiedSeats is the seat
// ledger: seat id -> id of the user holding it.
type Show struct {
	ID            uuid.UUID         `json:"id"`
	MovieTitle    string            `json:"movie_title"`
	StartTime     time.Time         `json:"start_time"`
	SeatPrice     float64           `json:"seat_price"`
	OccupiedSeats map[string]string `json:"occupied_seats"`
	IsActive      bool              `json:"is_active"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

func (s *Show) IsAvailable(seats []string) bool {
	for _, seat := range seats {
		if _, taken := s.OccupiedSeats[seat]; taken {
			return false
		}
	}
	return true
}
