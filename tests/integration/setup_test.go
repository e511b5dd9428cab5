//go:build integration

package integration

import (
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/slotbook/slot-booking-service/internal/models"
	"github.com/slotbook/slot-booking-service/internal/repository"
	"github.com/slotbook/slot-booking-service/internal/service"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		getEnv("TEST_DB_HOST", "localhost"),
		getEnv("TEST_DB_PORT", "5434"),
		getEnv("TEST_DB_USER", "postgres"),
		getEnv("TEST_DB_PASSWORD", "postgres"),
		getEnv("TEST_DB_NAME", "slotbook_test_db"),
	)

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		log.Fatalf("failed to connect to test database: %v", err)
	}

	// Drop and recreate tables for clean state
	testDB.Exec("DROP TABLE IF EXISTS bookings")
	testDB.Exec("DROP TABLE IF EXISTS slots")
	testDB.Exec("DROP TABLE IF EXISTS users")

	if err := testDB.AutoMigrate(&models.User{}, &models.Slot{}, &models.Booking{}); err != nil {
		log.Fatalf("failed to auto-migrate test database: %v", err)
	}

	testDB.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_booking_active
		ON bookings (slot_id, candidate_id)
		WHERE status = 'BOOKED'
	`)

	code := m.Run()

	testDB.Exec("DROP TABLE IF EXISTS bookings")
	testDB.Exec("DROP TABLE IF EXISTS slots")
	testDB.Exec("DROP TABLE IF EXISTS users")

	os.Exit(code)
}

func cleanTables() {
	testDB.Exec("DELETE FROM bookings")
	testDB.Exec("DELETE FROM slots")
	testDB.Exec("DELETE FROM users")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// at builds a timestamp on a fixed reference day so window arithmetic in
// tests reads as clock times.
func at(hour, min int) time.Time {
	return time.Date(2026, 9, 1, hour, min, 0, 0, time.UTC)
}

func createTestSlot(t *testing.T, ownerID uuid.UUID, start, end time.Time, capacity int) *models.Slot {
	t.Helper()
	slot := &models.Slot{
		StartTime: start,
		EndTime:   end,
		Capacity:  capacity,
		CreatedBy: ownerID,
		Tags:      []string{"backend"},
	}
	require.NoError(t, testDB.Create(slot).Error)
	return slot
}

func newBookingService() service.BookingService {
	slotRepo := repository.NewSlotRepository(testDB)
	bookingRepo := repository.NewBookingRepository(testDB)
	return service.NewBookingService(bookingRepo, slotRepo, nil)
}

func newSlotService() service.SlotService {
	slotRepo := repository.NewSlotRepository(testDB)
	bookingRepo := repository.NewBookingRepository(testDB)
	return service.NewSlotService(slotRepo, bookingRepo, nil)
}
