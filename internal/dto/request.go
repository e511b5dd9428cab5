package dto

import "time"

type CreateUserRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required,oneof=ADMIN CANDIDATE"`
}

type CreateSlotRequest struct {
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
	Capacity  int       `json:"capacity" validate:"required,gt=0"`
	Tags      []string  `json:"tags" validate:"omitempty,dive,required"`
}

type UpdateSlotRequest struct {
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
	Capacity  *int       `json:"capacity" validate:"omitempty,gt=0"`
	Tags      *[]string  `json:"tags" validate:"omitempty,dive,required"`
}

type CreateBookingRequest struct {
	SlotID string `json:"slot_id" validate:"required,uuid"`
}
