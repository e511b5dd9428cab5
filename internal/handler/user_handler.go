package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/slotbook/slot-booking-service/internal/dto"
	"github.com/slotbook/slot-booking-service/internal/models"
	"github.com/slotbook/slot-booking-service/internal/repository"
	"github.com/slotbook/slot-booking-service/internal/service"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 50
)

type UserHandler struct {
	svc service.UserService
}

func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

func (h *UserHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1/users")
	g.POST("", h.CreateUser)
	g.GET("", h.ListUsers)
}

func (h *UserHandler) CreateUser(c echo.Context) error {
	var req dto.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.svc.Register(c.Request().Context(), req.Name, req.Email, models.Role(req.Role))
	if err != nil {
		if errors.Is(err, service.ErrEmailExists) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, dto.ToUserResponse(user))
}

func (h *UserHandler) ListUsers(c echo.Context) error {
	filter := repository.UserFilter{Email: c.QueryParam("email")}

	if role := c.QueryParam("role"); role != "" {
		r := models.Role(role)
		if !r.Valid() {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid role filter")
		}
		filter.Role = &r
	}
	filter.Page, filter.Limit = parsePagination(c)

	users, total, err := h.svc.ListUsers(c.Request().Context(), filter)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := make([]dto.UserResponse, len(users))
	for i, u := range users {
		resp[i] = dto.ToUserResponse(&u)
	}

	return c.JSON(http.StatusOK, dto.ListResponse[dto.UserResponse]{
		Data:       resp,
		Pagination: dto.Pagination{Page: filter.Page, Limit: filter.Limit, Total: total},
	})
}

func parsePagination(c echo.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}
