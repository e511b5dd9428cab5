package database

import (
	"log"

	"github.com/slotbook/slot-booking-service/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewPostgresDB(dsn string) *gorm.DB {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
		// Bookings reference slots but outlive them: cancelled bookings are
		// kept after their slot is deleted, so no FK constraint is created.
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Slot{}, &models.Booking{}); err != nil {
		log.Fatalf("failed to auto-migrate: %v", err)
	}

	// Partial unique index: a candidate can hold at most one active booking
	// per slot. Cancelled rows do not count, so rebooking after cancellation
	// is allowed.
	db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_booking_active
		ON bookings (slot_id, candidate_id)
		WHERE status = 'BOOKED'
	`)

	return db
}
