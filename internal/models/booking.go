package models

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	StatusBooked    BookingStatus = "BOOKED"
	StatusCancelled BookingStatus = "CANCELLED"
)

type Booking struct {
	ID          uuid.UUID     `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SlotID      uuid.UUID     `gorm:"type:uuid;not null;index" json:"slot_id"`
	CandidateID uuid.UUID     `gorm:"type:uuid;not null" json:"candidate_id"`
	Status      BookingStatus `gorm:"type:varchar(20);not null;default:'BOOKED'" json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`

	Slot *Slot `gorm:"foreignKey:SlotID" json:"slot,omitempty"`
}
