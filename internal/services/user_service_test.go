package services

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"gorm.io/gorm"

	"github.com/schoolsync/lms-service/internal/cache"
	"github.com/schoolsync/lms-service/internal/models"
	"github.com/schoolsync/lms-service/internal/utils"
	"github.com/schoolsync/lms-service/internal/validator"
)

func newTestUserService(repo *mockRepository) *userService {
	return &userService{
		repo:      repo,
		logger:    slog.New(slog.NewTextHandler(os.Stdout, nil)),
		validator: validator.NewBusinessValidator(),
		cache:     cache.NewCacheManager(nil),
	}
}

func TestUserService_Login(t *testing.T) {
	ctx := context.Background()

	hash, err := utils.HashPassword("secret1")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	stored := &models.User{ID: "u1", RollNumber: "R001", PasswordHash: hash, Role: models.RoleStudent}

	t.Run("valid credentials", func(t *testing.T) {
		repo := &mockRepository{
			user: &mockUserRepo{getByRollNumber: func(rollNumber string) (*models.User, error) {
				return stored, nil
			}},
		}
		s := newTestUserService(repo)
		user, err := s.Login(ctx, &models.LoginRequest{RollNumber: "R001", Password: "secret1"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if user.ID != "u1" {
			t.Errorf("expected u1, got %s", user.ID)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := &mockRepository{
			user: &mockUserRepo{getByRollNumber: func(rollNumber string) (*models.User, error) {
				return stored, nil
			}},
		}
		s := newTestUserService(repo)
		_, err := s.Login(ctx, &models.LoginRequest{RollNumber: "R001", Password: "wrong-pass"})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("unknown roll number is indistinguishable", func(t *testing.T) {
		repo := &mockRepository{
			user: &mockUserRepo{getByRollNumber: func(rollNumber string) (*models.User, error) {
				return nil, gorm.ErrRecordNotFound
			}},
		}
		s := newTestUserService(repo)
		_, err := s.Login(ctx, &models.LoginRequest{RollNumber: "R999", Password: "secret1"})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("missing fields fail validation", func(t *testing.T) {
		s := newTestUserService(nil)
		_, err := s.Login(ctx, &models.LoginRequest{})
		if !IsValidationError(err) {
			t.Errorf("expected validation error, got %v", err)
		}
	})
}

func TestUserService_CreateUser_Rules(t *testing.T) {
	ctx := context.Background()

	admin := &models.User{ID: "a1", Role: models.RoleAdmin}
	teacher := &models.User{ID: "t1", Role: models.RoleTeacher}

	validReq := func() *models.UserCreateRequest {
		cid := uint(1)
		return &models.UserCreateRequest{
			RollNumber: "R001",
			FullName:   "Student One",
			Email:      "one@school.test",
			Password:   "secret1",
			Role:       models.RoleStudent,
			ClassID:    &cid,
		}
	}

	t.Run("non-admin is denied", func(t *testing.T) {
		repo := &mockRepository{
			user: &mockUserRepo{getByID: func(id string) (*models.User, error) {
				return teacher, nil
			}},
		}
		s := newTestUserService(repo)
		_, err := s.CreateUser(ctx, "t1", validReq())
		if !IsPermissionError(err) {
			t.Errorf("expected permission error, got %v", err)
		}
	})

	t.Run("student without class is rejected", func(t *testing.T) {
		repo := &mockRepository{
			user: &mockUserRepo{getByID: func(id string) (*models.User, error) {
				return admin, nil
			}},
		}
		s := newTestUserService(repo)
		req := validReq()
		req.ClassID = nil
		_, err := s.CreateUser(ctx, "a1", req)
		var bre *BusinessRuleError
		if !errors.As(err, &bre) {
			t.Errorf("expected business rule error, got %v", err)
		}
	})
}
