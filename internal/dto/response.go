package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/slotbook/slot-booking-service/internal/models"
	"github.com/slotbook/slot-booking-service/internal/service"
)

type UserResponse struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
}

type SlotResponse struct {
	ID             uuid.UUID `json:"id"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	Capacity       int       `json:"capacity"`
	AvailableSeats *int      `json:"available_seats,omitempty"`
	CreatedBy      uuid.UUID `json:"created_by"`
	Tags           []string  `json:"tags"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type BookingResponse struct {
	ID          uuid.UUID            `json:"id"`
	SlotID      uuid.UUID            `json:"slot_id"`
	CandidateID uuid.UUID            `json:"candidate_id"`
	Status      models.BookingStatus `json:"status"`
	CreatedAt   time.Time            `json:"created_at"`
	Slot        *SlotResponse        `json:"slot,omitempty"`
}

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

type ListResponse[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

type ErrorResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Errors  []string `json:"errors"`
}

func ToUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

func ToSlotResponse(s *models.Slot) SlotResponse {
	return SlotResponse{
		ID:        s.ID,
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
		Capacity:  s.Capacity,
		CreatedBy: s.CreatedBy,
		Tags:      s.Tags,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func ToSlotAvailabilityResponse(sa *service.SlotAvailability) SlotResponse {
	resp := ToSlotResponse(&sa.Slot)
	seats := sa.AvailableSeats()
	resp.AvailableSeats = &seats
	return resp
}

func ToBookingResponse(b *models.Booking) BookingResponse {
	resp := BookingResponse{
		ID:          b.ID,
		SlotID:      b.SlotID,
		CandidateID: b.CandidateID,
		Status:      b.Status,
		CreatedAt:   b.CreatedAt,
	}
	if b.Slot != nil {
		slot := ToSlotResponse(b.Slot)
		resp.Slot = &slot
	}
	return resp
}
