package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/slotbook/slot-booking-service/internal/dto"
	"github.com/slotbook/slot-booking-service/internal/middleware"
	"github.com/slotbook/slot-booking-service/internal/models"
	"github.com/slotbook/slot-booking-service/internal/repository"
	"github.com/slotbook/slot-booking-service/internal/service"
)

type BookingHandler struct {
	svc service.BookingService
}

func NewBookingHandler(svc service.BookingService) *BookingHandler {
	return &BookingHandler{svc: svc}
}

func (h *BookingHandler) RegisterRoutes(e *echo.Echo, auth echo.MiddlewareFunc) {
	g := e.Group("/api/v1/bookings", auth, middleware.AllowRoles(models.RoleCandidate))
	g.POST("", h.CreateBooking)
	g.GET("/my", h.MyBookings)
	g.POST("/:id/cancel", h.CancelBooking)
}

func (h *BookingHandler) CreateBooking(c echo.Context) error {
	var req dto.CreateBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	slotID, err := uuid.Parse(req.SlotID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid slot id")
	}

	candidate := middleware.CurrentUser(c)
	booking, err := h.svc.CreateBooking(c.Request().Context(), slotID, candidate.ID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSlotNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrDuplicateBooking),
			errors.Is(err, service.ErrCapacityExceeded):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusCreated, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) MyBookings(c echo.Context) error {
	filter := repository.BookingFilter{}

	if s := c.QueryParam("status"); s != "" {
		status := models.BookingStatus(s)
		if status != models.StatusBooked && status != models.StatusCancelled {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid status filter")
		}
		filter.Status = &status
	}

	from, err := parseTimeParam(c, "from")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "from must be RFC3339")
	}
	to, err := parseTimeParam(c, "to")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "to must be RFC3339")
	}
	filter.From, filter.To = from, to
	filter.Page, filter.Limit = parsePagination(c)

	candidate := middleware.CurrentUser(c)
	bookings, total, err := h.svc.ListMyBookings(c.Request().Context(), candidate.ID, filter)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := make([]dto.BookingResponse, len(bookings))
	for i, b := range bookings {
		resp[i] = dto.ToBookingResponse(&b)
	}

	return c.JSON(http.StatusOK, dto.ListResponse[dto.BookingResponse]{
		Data:       resp,
		Pagination: dto.Pagination{Page: filter.Page, Limit: filter.Limit, Total: total},
	})
}

func (h *BookingHandler) CancelBooking(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid booking id")
	}

	candidate := middleware.CurrentUser(c)
	booking, err := h.svc.CancelBooking(c.Request().Context(), id, candidate.ID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBookingNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrNotBookingOwner):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}
