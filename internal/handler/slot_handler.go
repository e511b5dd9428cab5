package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/slotbook/slot-booking-service/internal/dto"
	"github.com/slotbook/slot-booking-service/internal/middleware"
	"github.com/slotbook/slot-booking-service/internal/models"
	"github.com/slotbook/slot-booking-service/internal/repository"
	"github.com/slotbook/slot-booking-service/internal/service"
)

type SlotHandler struct {
	svc service.SlotService
}

func NewSlotHandler(svc service.SlotService) *SlotHandler {
	return &SlotHandler{svc: svc}
}

func (h *SlotHandler) RegisterRoutes(e *echo.Echo, auth echo.MiddlewareFunc) {
	g := e.Group("/api/v1/slots", auth)
	g.POST("", h.CreateSlot, middleware.AllowRoles(models.RoleAdmin))
	g.GET("", h.ListSlots)
	g.GET("/:id", h.GetSlot)
	g.PATCH("/:id", h.UpdateSlot, middleware.AllowRoles(models.RoleAdmin))
	g.DELETE("/:id", h.DeleteSlot, middleware.AllowRoles(models.RoleAdmin))
}

func (h *SlotHandler) CreateSlot(c echo.Context) error {
	var req dto.CreateSlotRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	owner := middleware.CurrentUser(c)
	slot, err := h.svc.CreateSlot(c.Request().Context(), owner.ID, service.CreateSlotInput{
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Capacity:  req.Capacity,
		Tags:      req.Tags,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidWindow):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrSlotOverlap):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusCreated, dto.ToSlotResponse(slot))
}

func (h *SlotHandler) ListSlots(c echo.Context) error {
	filter := repository.SlotFilter{Tag: c.QueryParam("tag")}

	from, err := parseTimeParam(c, "from")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "from must be RFC3339")
	}
	to, err := parseTimeParam(c, "to")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "to must be RFC3339")
	}
	filter.From, filter.To = from, to

	availableOnly := c.QueryParam("available_only") == "true"

	slots, err := h.svc.ListSlots(c.Request().Context(), filter, availableOnly)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := make([]dto.SlotResponse, len(slots))
	for i := range slots {
		resp[i] = dto.ToSlotAvailabilityResponse(&slots[i])
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *SlotHandler) GetSlot(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid slot id")
	}

	sa, err := h.svc.GetSlot(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrSlotNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, dto.ToSlotAvailabilityResponse(sa))
}

func (h *SlotHandler) UpdateSlot(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid slot id")
	}

	var req dto.UpdateSlotRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	owner := middleware.CurrentUser(c)
	slot, err := h.svc.UpdateSlot(c.Request().Context(), owner.ID, id, service.UpdateSlotInput{
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Capacity:  req.Capacity,
		Tags:      req.Tags,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSlotNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrNotSlotOwner):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrInvalidWindow):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrSlotOverlap),
			errors.Is(err, service.ErrCapacityBelowBookings):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusOK, dto.ToSlotResponse(slot))
}

func (h *SlotHandler) DeleteSlot(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid slot id")
	}

	owner := middleware.CurrentUser(c)
	if err := h.svc.DeleteSlot(c.Request().Context(), owner.ID, id); err != nil {
		switch {
		case errors.Is(err, service.ErrSlotNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrNotSlotOwner):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrSlotHasBookings):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.NoContent(http.StatusNoContent)
}

func parseTimeParam(c echo.Context, name string) (*time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
