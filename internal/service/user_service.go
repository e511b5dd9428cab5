package service

import (
	"context"
	"errors"

	"github.com/slotbook/slot-booking-service/internal/models"
	"github.com/slotbook/slot-booking-service/internal/repository"
	"gorm.io/gorm"
)

var ErrEmailExists = errors.New("email already exists")

type UserService interface {
	Register(ctx context.Context, name, email string, role models.Role) (*models.User, error)
	ListUsers(ctx context.Context, filter repository.UserFilter) ([]models.User, int64, error)
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) Register(ctx context.Context, name, email string, role models.Role) (*models.User, error) {
	_, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil {
		return nil, ErrEmailExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user := &models.User{Name: name, Email: email, Role: role}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// Concurrent registration with the same email; the unique index wins.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context, filter repository.UserFilter) ([]models.User, int64, error) {
	return s.userRepo.List(ctx, filter)
}
