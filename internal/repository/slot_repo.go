package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/slotbook/slot-booking-service/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SlotFilter struct {
	From *time.Time
	To   *time.Time
	Tag  string
}

type SlotRepository interface {
	Create(ctx context.Context, tx *gorm.DB, slot *models.Slot) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Slot, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Slot, error)
	List(ctx context.Context, filter SlotFilter) ([]models.Slot, error)
	Save(ctx context.Context, tx *gorm.DB, slot *models.Slot) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	ExistsOverlapping(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (bool, error)
	LockOwner(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID) error
	GetDB() *gorm.DB
}

type slotRepository struct {
	db *gorm.DB
}

func NewSlotRepository(db *gorm.DB) SlotRepository {
	return &slotRepository{db: db}
}

func (r *slotRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *slotRepository) Create(ctx context.Context, tx *gorm.DB, slot *models.Slot) error {
	return tx.WithContext(ctx).Create(slot).Error
}

func (r *slotRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Slot, error) {
	var slot models.Slot
	if err := r.db.WithContext(ctx).First(&slot, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &slot, nil
}

// FindByIDForUpdate acquires a row-level lock on the slot within the given
// transaction, serializing concurrent booking attempts against it.
func (r *slotRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Slot, error) {
	var slot models.Slot
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&slot, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &slot, nil
}

func (r *slotRepository) List(ctx context.Context, filter SlotFilter) ([]models.Slot, error) {
	q := r.db.WithContext(ctx).Model(&models.Slot{})
	if filter.From != nil {
		q = q.Where("end_time > ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("start_time < ?", *filter.To)
	}
	if filter.Tag != "" {
		// Tags are stored as a JSON array; @> matches a contained element.
		q = q.Where("tags::jsonb @> ?", fmt.Sprintf("%q", filter.Tag))
	}

	var slots []models.Slot
	if err := q.Order("start_time ASC").Find(&slots).Error; err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *slotRepository) Save(ctx context.Context, tx *gorm.DB, slot *models.Slot) error {
	return tx.WithContext(ctx).Save(slot).Error
}

func (r *slotRepository) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return tx.WithContext(ctx).Delete(&models.Slot{}, "id = ?", id).Error
}

// ExistsOverlapping reports whether the owner already has a slot whose
// half-open window [start_time, end_time) overlaps [start, end). A slot being
// updated excludes itself via excludeID.
func (r *slotRepository) ExistsOverlapping(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (bool, error) {
	q := tx.WithContext(ctx).Model(&models.Slot{}).
		Where("created_by = ? AND start_time < ? AND end_time > ?", ownerID, end, start)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// LockOwner takes a transaction-scoped advisory lock keyed by the owner, so
// two concurrent slot writes by the same admin cannot both pass the overlap
// check. Different owners do not contend.
func (r *slotRepository) LockOwner(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID) error {
	return tx.WithContext(ctx).
		Exec("SELECT pg_advisory_xact_lock(hashtextextended(?, 0))", ownerID.String()).Error
}

var _ SlotRepository = (*slotRepository)(nil)
