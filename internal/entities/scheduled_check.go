package entities

import (
	"time"

	"github.com/google/uuid"
)

// ScheduledCheck is a pending payment check, durably stored so the
// sweeper fires at least once even across restarts.
type ScheduledCheck struct {
	ID        uuid.UUID `json:"id"`
	BookingID uuid.UUID `json:"booking_id"`
	FireAt    time.Time `json:"fire_at"`
}
