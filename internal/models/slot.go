package models

import (
	"time"

	"github.com/google/uuid"
)

// Slot is a bookable interview window owned by a single admin. StartTime and
// EndTime form a half-open interval [start, end).
type Slot struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	StartTime time.Time `gorm:"not null;index:idx_slot_owner_window,priority:2" json:"start_time"`
	EndTime   time.Time `gorm:"not null;index:idx_slot_owner_window,priority:3" json:"end_time"`
	Capacity  int       `gorm:"not null" json:"capacity"`
	CreatedBy uuid.UUID `gorm:"type:uuid;not null;index:idx_slot_owner_window,priority:1" json:"created_by"`
	Tags      []string  `gorm:"serializer:json" json:"tags"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AvailableSeats is the remaining-seats projection: capacity minus active
// bookings, clamped at zero.
func AvailableSeats(capacity int, activeBookings int64) int {
	remaining := capacity - int(activeBookings)
	if remaining < 0 {
		return 0
	}
	return remaining
}
