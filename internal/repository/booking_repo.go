package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/slotbook/slot-booking-service/internal/models"
	"gorm.io/gorm"
)

type BookingFilter struct {
	Status *models.BookingStatus
	From   *time.Time
	To     *time.Time
	Page   int
	Limit  int
}

type BookingRepository interface {
	Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	FindActiveBySlotAndCandidate(ctx context.Context, tx *gorm.DB, slotID, candidateID uuid.UUID) (*models.Booking, error)
	CountActiveBySlot(ctx context.Context, tx *gorm.DB, slotID uuid.UUID) (int64, error)
	CountActiveBySlots(ctx context.Context, slotIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	ListByCandidate(ctx context.Context, candidateID uuid.UUID, filter BookingFilter) ([]models.Booking, int64, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, bookingID uuid.UUID, status models.BookingStatus) error
	GetDB() *gorm.DB
}

type bookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *bookingRepository) Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error {
	return tx.WithContext(ctx).Create(booking).Error
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.WithContext(ctx).First(&booking, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) FindActiveBySlotAndCandidate(ctx context.Context, tx *gorm.DB, slotID, candidateID uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := tx.WithContext(ctx).
		Where("slot_id = ? AND candidate_id = ? AND status = ?", slotID, candidateID, models.StatusBooked).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) CountActiveBySlot(ctx context.Context, tx *gorm.DB, slotID uuid.UUID) (int64, error) {
	var count int64
	err := tx.WithContext(ctx).
		Model(&models.Booking{}).
		Where("slot_id = ? AND status = ?", slotID, models.StatusBooked).
		Count(&count).Error
	return count, err
}

// CountActiveBySlots returns the active booking count per slot in one grouped
// query; slots with no active bookings are absent from the map.
func (r *bookingRepository) CountActiveBySlots(ctx context.Context, slotIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(slotIDs))
	if len(slotIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		SlotID uuid.UUID
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Select("slot_id, count(*) as count").
		Where("slot_id IN ? AND status = ?", slotIDs, models.StatusBooked).
		Group("slot_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.SlotID] = row.Count
	}
	return counts, nil
}

func (r *bookingRepository) ListByCandidate(ctx context.Context, candidateID uuid.UUID, filter BookingFilter) ([]models.Booking, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Booking{}).Where("candidate_id = ?", candidateID)
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.From != nil {
		q = q.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("created_at <= ?", *filter.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var bookings []models.Booking
	err := q.Preload("Slot").
		Order("created_at DESC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&bookings).Error
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, tx *gorm.DB, bookingID uuid.UUID, status models.BookingStatus) error {
	return tx.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ?", bookingID).
		Update("status", status).Error
}

var _ BookingRepository = (*bookingRepository)(nil)
