package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/slotbook/slot-booking-service/internal/models"
	"github.com/slotbook/slot-booking-service/internal/repository"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type mockUserRepo struct {
	findByIDFn func(ctx context.Context, id uuid.UUID) (*models.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error { return nil }
func (m *mockUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return m.findByIDFn(ctx, id)
}
func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}
func (m *mockUserRepo) List(ctx context.Context, filter repository.UserFilter) ([]models.User, int64, error) {
	return nil, 0, nil
}

func okHandler(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func runRequest(repo repository.UserRepository, userID string, handler echo.HandlerFunc) (*httptest.ResponseRecorder, error) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if userID != "" {
		req.Header.Set("X-User-Id", userID)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	err := Auth(repo)(handler)(c)
	return rec, err
}

func TestAuth_MissingHeader(t *testing.T) {
	_, err := runRequest(&mockUserRepo{}, "", okHandler)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestAuth_MalformedID(t *testing.T) {
	_, err := runRequest(&mockUserRepo{}, "not-a-uuid", okHandler)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestAuth_UnknownUser(t *testing.T) {
	repo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.User, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}

	_, err := runRequest(repo, uuid.NewString(), okHandler)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestAuth_AttachesUser(t *testing.T) {
	userID := uuid.New()
	repo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*models.User, error) {
			return &models.User{ID: id, Role: models.RoleCandidate}, nil
		},
	}

	var seen *models.User
	rec, err := runRequest(repo, userID.String(), func(c echo.Context) error {
		seen = CurrentUser(c)
		return c.NoContent(http.StatusOK)
	})

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, seen)
	assert.Equal(t, userID, seen.ID)
}

func TestAllowRoles_Forbidden(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(userContextKey, &models.User{ID: uuid.New(), Role: models.RoleCandidate})

	err := AllowRoles(models.RoleAdmin)(okHandler)(c)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusForbidden, he.Code)
}

func TestAllowRoles_Allowed(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(userContextKey, &models.User{ID: uuid.New(), Role: models.RoleAdmin})

	err := AllowRoles(models.RoleAdmin)(okHandler)(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
}
