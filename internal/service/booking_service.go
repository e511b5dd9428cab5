package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/slotbook/slot-booking-service/internal/models"
	"github.com/slotbook/slot-booking-service/internal/repository"
	"github.com/slotbook/slot-booking-service/pkg/rabbitmq"
	"gorm.io/gorm"
)

var (
	ErrSlotNotFound     = errors.New("slot not found")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrDuplicateBooking = errors.New("candidate already has an active booking for this slot")
	ErrCapacityExceeded = errors.New("slot capacity exceeded")
	ErrNotBookingOwner  = errors.New("cannot cancel someone else's booking")
)

type BookingService interface {
	CreateBooking(ctx context.Context, slotID, candidateID uuid.UUID) (*models.Booking, error)
	CancelBooking(ctx context.Context, bookingID, callerID uuid.UUID) (*models.Booking, error)
	ListMyBookings(ctx context.Context, candidateID uuid.UUID, filter repository.BookingFilter) ([]models.Booking, int64, error)
}

type bookingService struct {
	bookingRepo repository.BookingRepository
	slotRepo    repository.SlotRepository
	publisher   *rabbitmq.Publisher
}

func NewBookingService(bookingRepo repository.BookingRepository, slotRepo repository.SlotRepository, publisher *rabbitmq.Publisher) BookingService {
	return &bookingService{
		bookingRepo: bookingRepo,
		slotRepo:    slotRepo,
		publisher:   publisher,
	}
}

// CreateBooking admits a candidate into a slot. The whole check-then-insert
// sequence runs in one transaction holding a row lock on the slot, so two
// bookings racing for the last seat cannot both pass the capacity check. The
// partial unique index on active (slot, candidate) pairs backs up the
// duplicate check; a unique violation on commit is reported as a duplicate,
// not an internal error.
func (s *bookingService) CreateBooking(ctx context.Context, slotID, candidateID uuid.UUID) (*models.Booking, error) {
	var result *models.Booking

	err := s.bookingRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. Lock the slot row — serializes concurrent booking attempts
		slot, err := s.slotRepo.FindByIDForUpdate(ctx, tx, slotID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSlotNotFound
			}
			return err
		}

		// 2. Check double-booking
		_, err = s.bookingRepo.FindActiveBySlotAndCandidate(ctx, tx, slotID, candidateID)
		if err == nil {
			return ErrDuplicateBooking
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		// 3. Count active seats against capacity
		activeCount, err := s.bookingRepo.CountActiveBySlot(ctx, tx, slotID)
		if err != nil {
			return err
		}
		if activeCount >= int64(slot.Capacity) {
			return ErrCapacityExceeded
		}

		// 4. Create the booking
		booking := &models.Booking{
			SlotID:      slotID,
			CandidateID: candidateID,
			Status:      models.StatusBooked,
		}
		if err := s.bookingRepo.Create(ctx, tx, booking); err != nil {
			return err
		}
		result = booking
		return nil
	})
	if err != nil {
		// A concurrent transaction won the race between the duplicate check
		// and the insert; the unique index caught it.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateBooking
		}
		return nil, err
	}

	if s.publisher != nil {
		_ = s.publisher.Publish("booking.created", result)
	}
	return result, nil
}

// CancelBooking transitions a booking to CANCELLED. Cancelling an already
// cancelled booking is a no-op success.
func (s *bookingService) CancelBooking(ctx context.Context, bookingID, callerID uuid.UUID) (*models.Booking, error) {
	booking, err := s.bookingRepo.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	if booking.CandidateID != callerID {
		return nil, ErrNotBookingOwner
	}

	if booking.Status == models.StatusCancelled {
		return booking, nil
	}

	if err := s.bookingRepo.UpdateStatus(ctx, s.bookingRepo.GetDB(), bookingID, models.StatusCancelled); err != nil {
		return nil, err
	}
	booking.Status = models.StatusCancelled

	if s.publisher != nil {
		_ = s.publisher.Publish("booking.cancelled", booking)
	}
	return booking, nil
}

func (s *bookingService) ListMyBookings(ctx context.Context, candidateID uuid.UUID, filter repository.BookingFilter) ([]models.Booking, int64, error) {
	return s.bookingRepo.ListByCandidate(ctx, candidateID, filter)
}
