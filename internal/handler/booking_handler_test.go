package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/slotbook/slot-booking-service/internal/dto"
	"github.com/slotbook/slot-booking-service/internal/models"
	"github.com/slotbook/slot-booking-service/internal/repository"
	"github.com/slotbook/slot-booking-service/internal/service"
	"github.com/stretchr/testify/assert"
)

// --- Mock BookingService ---

type mockBookingService struct {
	createFn func(ctx context.Context, slotID, candidateID uuid.UUID) (*models.Booking, error)
	cancelFn func(ctx context.Context, bookingID, callerID uuid.UUID) (*models.Booking, error)
	listFn   func(ctx context.Context, candidateID uuid.UUID, filter repository.BookingFilter) ([]models.Booking, int64, error)
}

func (m *mockBookingService) CreateBooking(ctx context.Context, slotID, candidateID uuid.UUID) (*models.Booking, error) {
	return m.createFn(ctx, slotID, candidateID)
}
func (m *mockBookingService) CancelBooking(ctx context.Context, bookingID, callerID uuid.UUID) (*models.Booking, error) {
	return m.cancelFn(ctx, bookingID, callerID)
}
func (m *mockBookingService) ListMyBookings(ctx context.Context, candidateID uuid.UUID, filter repository.BookingFilter) ([]models.Booking, int64, error) {
	return m.listFn(ctx, candidateID, filter)
}

// --- Helpers ---

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = dto.NewValidator()
	return e
}

func withCandidate(c echo.Context) *models.User {
	user := &models.User{ID: uuid.New(), Name: "Candidate", Role: models.RoleCandidate}
	c.Set("currentUser", user)
	return user
}

// --- Tests ---

func TestCreateBooking_Handler_Success(t *testing.T) {
	slotID := uuid.New()
	svc := &mockBookingService{
		createFn: func(ctx context.Context, sID, cID uuid.UUID) (*models.Booking, error) {
			return &models.Booking{
				ID:          uuid.New(),
				SlotID:      sID,
				CandidateID: cID,
				Status:      models.StatusBooked,
				CreatedAt:   time.Now(),
			}, nil
		},
	}

	e := newEcho()
	body := `{"slot_id":"` + slotID.String() + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	candidate := withCandidate(c)

	h := NewBookingHandler(svc)
	err := h.CreateBooking(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp dto.BookingResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, slotID, resp.SlotID)
	assert.Equal(t, candidate.ID, resp.CandidateID)
	assert.Equal(t, models.StatusBooked, resp.Status)
}

func TestCreateBooking_Handler_MissingSlotID(t *testing.T) {
	e := newEcho()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	withCandidate(c)

	h := NewBookingHandler(nil)
	err := h.CreateBooking(c)

	verrs, ok := err.(*dto.ValidationErrors)
	assert.True(t, ok)
	assert.Contains(t, verrs.Fields, "SlotID is required")
}

func TestCreateBooking_Handler_SlotNotFound(t *testing.T) {
	svc := &mockBookingService{
		createFn: func(ctx context.Context, sID, cID uuid.UUID) (*models.Booking, error) {
			return nil, service.ErrSlotNotFound
		},
	}

	e := newEcho()
	body := `{"slot_id":"` + uuid.NewString() + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	withCandidate(c)

	h := NewBookingHandler(svc)
	err := h.CreateBooking(c)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Code)
}

func TestCreateBooking_Handler_Duplicate(t *testing.T) {
	svc := &mockBookingService{
		createFn: func(ctx context.Context, sID, cID uuid.UUID) (*models.Booking, error) {
			return nil, service.ErrDuplicateBooking
		},
	}

	e := newEcho()
	body := `{"slot_id":"` + uuid.NewString() + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	withCandidate(c)

	h := NewBookingHandler(svc)
	err := h.CreateBooking(c)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusConflict, he.Code)
}

func TestCreateBooking_Handler_CapacityExceeded(t *testing.T) {
	svc := &mockBookingService{
		createFn: func(ctx context.Context, sID, cID uuid.UUID) (*models.Booking, error) {
			return nil, service.ErrCapacityExceeded
		},
	}

	e := newEcho()
	body := `{"slot_id":"` + uuid.NewString() + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	withCandidate(c)

	h := NewBookingHandler(svc)
	err := h.CreateBooking(c)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusConflict, he.Code)
}

func TestCancelBooking_Handler_Success(t *testing.T) {
	svc := &mockBookingService{
		cancelFn: func(ctx context.Context, bookingID, callerID uuid.UUID) (*models.Booking, error) {
			return &models.Booking{
				ID:          bookingID,
				SlotID:      uuid.New(),
				CandidateID: callerID,
				Status:      models.StatusCancelled,
			}, nil
		},
	}

	e := newEcho()
	bookingID := uuid.NewString()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/"+bookingID+"/cancel", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(bookingID)
	withCandidate(c)

	h := NewBookingHandler(svc)
	err := h.CancelBooking(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp dto.BookingResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.StatusCancelled, resp.Status)
}

func TestCancelBooking_Handler_NotFound(t *testing.T) {
	svc := &mockBookingService{
		cancelFn: func(ctx context.Context, bookingID, callerID uuid.UUID) (*models.Booking, error) {
			return nil, service.ErrBookingNotFound
		},
	}

	e := newEcho()
	bookingID := uuid.NewString()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/"+bookingID+"/cancel", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(bookingID)
	withCandidate(c)

	h := NewBookingHandler(svc)
	err := h.CancelBooking(c)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Code)
}

func TestCancelBooking_Handler_Forbidden(t *testing.T) {
	svc := &mockBookingService{
		cancelFn: func(ctx context.Context, bookingID, callerID uuid.UUID) (*models.Booking, error) {
			return nil, service.ErrNotBookingOwner
		},
	}

	e := newEcho()
	bookingID := uuid.NewString()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/"+bookingID+"/cancel", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(bookingID)
	withCandidate(c)

	h := NewBookingHandler(svc)
	err := h.CancelBooking(c)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusForbidden, he.Code)
}

func TestMyBookings_Handler_WithStatusFilter(t *testing.T) {
	var captured repository.BookingFilter
	svc := &mockBookingService{
		listFn: func(ctx context.Context, candidateID uuid.UUID, filter repository.BookingFilter) ([]models.Booking, int64, error) {
			captured = filter
			return []models.Booking{}, 0, nil
		},
	}

	e := newEcho()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/my?status=BOOKED&page=2&limit=5", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	withCandidate(c)

	h := NewBookingHandler(svc)
	err := h.MyBookings(c)

	assert.NoError(t, err)
	assert.NotNil(t, captured.Status)
	assert.Equal(t, models.StatusBooked, *captured.Status)
	assert.Equal(t, 2, captured.Page)
	assert.Equal(t, 5, captured.Limit)
}

func TestMyBookings_Handler_InvalidStatusFilter(t *testing.T) {
	e := newEcho()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/my?status=PENDING", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	withCandidate(c)

	h := NewBookingHandler(nil)
	err := h.MyBookings(c)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}
