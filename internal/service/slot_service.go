package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/slotbook/slot-booking-service/internal/models"
	"github.com/slotbook/slot-booking-service/internal/repository"
	"github.com/slotbook/slot-booking-service/pkg/rabbitmq"
	"gorm.io/gorm"
)

var (
	ErrInvalidWindow         = errors.New("start_time must be before end_time")
	ErrSlotOverlap           = errors.New("slot overlaps with an existing slot")
	ErrNotSlotOwner          = errors.New("slot belongs to another admin")
	ErrCapacityBelowBookings = errors.New("capacity cannot be reduced below active bookings")
	ErrSlotHasBookings       = errors.New("slot has active bookings and cannot be deleted")
)

type CreateSlotInput struct {
	StartTime time.Time
	EndTime   time.Time
	Capacity  int
	Tags      []string
}

type UpdateSlotInput struct {
	StartTime *time.Time
	EndTime   *time.Time
	Capacity  *int
	Tags      *[]string
}

// SlotAvailability pairs a slot with its current active booking count, for
// the remaining-seats projection on read paths.
type SlotAvailability struct {
	Slot           models.Slot
	ActiveBookings int64
}

func (sa SlotAvailability) AvailableSeats() int {
	return models.AvailableSeats(sa.Slot.Capacity, sa.ActiveBookings)
}

type SlotService interface {
	CreateSlot(ctx context.Context, ownerID uuid.UUID, input CreateSlotInput) (*models.Slot, error)
	GetSlot(ctx context.Context, id uuid.UUID) (*SlotAvailability, error)
	ListSlots(ctx context.Context, filter repository.SlotFilter, availableOnly bool) ([]SlotAvailability, error)
	UpdateSlot(ctx context.Context, ownerID, slotID uuid.UUID, input UpdateSlotInput) (*models.Slot, error)
	DeleteSlot(ctx context.Context, ownerID, slotID uuid.UUID) error
}

type slotService struct {
	slotRepo    repository.SlotRepository
	bookingRepo repository.BookingRepository
	publisher   *rabbitmq.Publisher
}

func NewSlotService(slotRepo repository.SlotRepository, bookingRepo repository.BookingRepository, publisher *rabbitmq.Publisher) SlotService {
	return &slotService{
		slotRepo:    slotRepo,
		bookingRepo: bookingRepo,
		publisher:   publisher,
	}
}

// CreateSlot admits the window against the owner's existing slots and
// persists it in the same transaction. The advisory lock on the owner closes
// the race where two concurrent creations both pass the overlap check.
func (s *slotService) CreateSlot(ctx context.Context, ownerID uuid.UUID, input CreateSlotInput) (*models.Slot, error) {
	if !input.StartTime.Before(input.EndTime) {
		return nil, ErrInvalidWindow
	}

	slot := &models.Slot{
		StartTime: input.StartTime,
		EndTime:   input.EndTime,
		Capacity:  input.Capacity,
		CreatedBy: ownerID,
		Tags:      input.Tags,
	}

	err := s.slotRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.slotRepo.LockOwner(ctx, tx, ownerID); err != nil {
			return err
		}

		overlap, err := s.slotRepo.ExistsOverlapping(ctx, tx, ownerID, input.StartTime, input.EndTime, nil)
		if err != nil {
			return err
		}
		if overlap {
			return ErrSlotOverlap
		}

		return s.slotRepo.Create(ctx, tx, slot)
	})
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		_ = s.publisher.Publish("slot.created", slot)
	}
	return slot, nil
}

func (s *slotService) GetSlot(ctx context.Context, id uuid.UUID) (*SlotAvailability, error) {
	slot, err := s.slotRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}

	active, err := s.bookingRepo.CountActiveBySlot(ctx, s.bookingRepo.GetDB(), id)
	if err != nil {
		return nil, err
	}

	return &SlotAvailability{Slot: *slot, ActiveBookings: active}, nil
}

func (s *slotService) ListSlots(ctx context.Context, filter repository.SlotFilter, availableOnly bool) ([]SlotAvailability, error) {
	slots, err := s.slotRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(slots))
	for i, slot := range slots {
		ids[i] = slot.ID
	}
	counts, err := s.bookingRepo.CountActiveBySlots(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := make([]SlotAvailability, 0, len(slots))
	for _, slot := range slots {
		sa := SlotAvailability{Slot: slot, ActiveBookings: counts[slot.ID]}
		if availableOnly && sa.AvailableSeats() <= 0 {
			continue
		}
		result = append(result, sa)
	}
	return result, nil
}

// UpdateSlot applies a partial update. A changed window re-runs the admission
// check excluding the slot itself; a reduced capacity may not go below the
// current active booking count.
func (s *slotService) UpdateSlot(ctx context.Context, ownerID, slotID uuid.UUID, input UpdateSlotInput) (*models.Slot, error) {
	var result *models.Slot

	err := s.slotRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.slotRepo.LockOwner(ctx, tx, ownerID); err != nil {
			return err
		}

		slot, err := s.slotRepo.FindByIDForUpdate(ctx, tx, slotID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSlotNotFound
			}
			return err
		}
		if slot.CreatedBy != ownerID {
			return ErrNotSlotOwner
		}

		start, end := slot.StartTime, slot.EndTime
		if input.StartTime != nil {
			start = *input.StartTime
		}
		if input.EndTime != nil {
			end = *input.EndTime
		}
		windowChanged := !start.Equal(slot.StartTime) || !end.Equal(slot.EndTime)

		if windowChanged {
			if !start.Before(end) {
				return ErrInvalidWindow
			}
			overlap, err := s.slotRepo.ExistsOverlapping(ctx, tx, ownerID, start, end, &slotID)
			if err != nil {
				return err
			}
			if overlap {
				return ErrSlotOverlap
			}
		}

		if input.Capacity != nil && *input.Capacity != slot.Capacity {
			active, err := s.bookingRepo.CountActiveBySlot(ctx, tx, slotID)
			if err != nil {
				return err
			}
			if int64(*input.Capacity) < active {
				return ErrCapacityBelowBookings
			}
			slot.Capacity = *input.Capacity
		}

		slot.StartTime = start
		slot.EndTime = end
		if input.Tags != nil {
			slot.Tags = *input.Tags
		}

		if err := s.slotRepo.Save(ctx, tx, slot); err != nil {
			return err
		}
		result = slot
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		_ = s.publisher.Publish("slot.updated", result)
	}
	return result, nil
}

// DeleteSlot removes a slot, refusing while any BOOKED booking exists.
// Cancelled bookings keep their rows; the slot row alone is removed.
func (s *slotService) DeleteSlot(ctx context.Context, ownerID, slotID uuid.UUID) error {
	err := s.slotRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		slot, err := s.slotRepo.FindByIDForUpdate(ctx, tx, slotID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSlotNotFound
			}
			return err
		}
		if slot.CreatedBy != ownerID {
			return ErrNotSlotOwner
		}

		active, err := s.bookingRepo.CountActiveBySlot(ctx, tx, slotID)
		if err != nil {
			return err
		}
		if active > 0 {
			return ErrSlotHasBookings
		}

		return s.slotRepo.Delete(ctx, tx, slotID)
	})
	if err != nil {
		return err
	}

	if s.publisher != nil {
		_ = s.publisher.Publish("slot.deleted", map[string]string{"id": slotID.String()})
	}
	return nil
}
