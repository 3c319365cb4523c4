package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/schoolsync/lms-service/internal/cache"
	"github.com/schoolsync/lms-service/internal/models"
	"github.com/schoolsync/lms-service/internal/repositories"
	"github.com/schoolsync/lms-service/internal/utils"
	"github.com/schoolsync/lms-service/internal/validator"
)

type userService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.BusinessValidator
	cache     *cache.CacheManager
}

func NewUserService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, v *validator.BusinessValidator, cm *cache.CacheManager) UserService {
	return &userService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: v,
		cache:     cm,
	}
}

// Login verifies credentials by roll number. A missing user and a wrong
// password are indistinguishable to the caller.
func (s *userService) Login(ctx context.Context, req *models.LoginRequest) (*models.User, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	user, err := s.repo.User().GetByRollNumber(ctx, s.db, req.RollNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}

	s.logger.Info("User logged in", "user_id", user.ID, "role", user.Role)
	return user, nil
}

func (s *userService) CreateUser(ctx context.Context, actorID string, req *models.UserCreateRequest) (*models.User, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}
	if err := s.requireAdmin(ctx, actorID, "create", "user"); err != nil {
		return nil, err
	}
	if req.Role == models.RoleStudent && req.ClassID == nil {
		return nil, NewBusinessRuleError("student_class", "students must be assigned to a class")
	}

	exists, err := s.repo.User().ExistsByRollNumber(ctx, s.db, req.RollNumber, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check roll number: %w", err)
	}
	if exists {
		return nil, ErrDuplicateRollNumber
	}
	exists, err = s.repo.User().ExistsByEmail(ctx, s.db, req.Email, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, ErrDuplicateEmail
	}

	if req.ClassID != nil {
		if _, err := s.repo.Class().GetByID(ctx, s.db, *req.ClassID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrClassNotFound
			}
			return nil, fmt.Errorf("failed to get class: %w", err)
		}
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.New().String(),
		RollNumber:   req.RollNumber,
		FullName:     req.FullName,
		Email:        req.Email,
		Role:         req.Role,
		PasswordHash: hash,
		ClassID:      req.ClassID,
	}

	if err := s.repo.User().Create(ctx, s.db, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateRollNumber
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User created",
		"user_id", user.ID,
		"role", user.Role,
		"created_by", actorID)
	return user, nil
}

func (s *userService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, s.db, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *userService) UpdateUser(ctx context.Context, actorID, userID string, req *models.UserUpdateRequest) (*models.User, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	if actorID != userID {
		if err := s.requireAdmin(ctx, actorID, "update", "user"); err != nil {
			return nil, err
		}
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Email != nil && *req.Email != user.Email {
		exists, err := s.repo.User().ExistsByEmail(ctx, s.db, *req.Email, &userID)
		if err != nil {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
		if exists {
			return nil, ErrDuplicateEmail
		}
		user.Email = *req.Email
	}
	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.ClassID != nil {
		if _, err := s.repo.Class().GetByID(ctx, s.db, *req.ClassID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrClassNotFound
			}
			return nil, fmt.Errorf("failed to get class: %w", err)
		}
		user.ClassID = req.ClassID
	}
	if req.Password != nil {
		hash, err := utils.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.repo.User().Update(ctx, s.db, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

func (s *userService) DeleteUser(ctx context.Context, actorID, userID string) error {
	if err := s.requireAdmin(ctx, actorID, "delete", "user"); err != nil {
		return err
	}
	if actorID == userID {
		return NewBusinessRuleError("self_delete", "cannot delete your own account")
	}

	if _, err := s.GetUser(ctx, userID); err != nil {
		return err
	}
	if err := s.repo.User().Delete(ctx, s.db, userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.logger.Info("User deleted", "user_id", userID, "deleted_by", actorID)
	return nil
}

func (s *userService) ListUsers(ctx context.Context, filters *repositories.UserFilters) ([]*models.User, int64, error) {
	if filters == nil {
		filters = &repositories.UserFilters{}
	}
	users, total, err := s.repo.User().List(ctx, s.db, *filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// ===== DIRECTORY =====

func (s *userService) CreateClass(ctx context.Context, actorID string, req *models.ClassCreateRequest) (*models.Class, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}
	if err := s.requireAdmin(ctx, actorID, "create", "class"); err != nil {
		return nil, err
	}

	class := &models.Class{Name: req.Name, Description: req.Description}
	if err := s.repo.Class().Create(ctx, s.db, class); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, NewBusinessRuleError("class_name", "class name already exists")
		}
		return nil, fmt.Errorf("failed to create class: %w", err)
	}
	return class, nil
}

func (s *userService) ListClasses(ctx context.Context) ([]*models.Class, error) {
	classes, err := s.repo.Class().List(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("failed to list classes: %w", err)
	}
	return classes, nil
}

func (s *userService) CreateSubject(ctx context.Context, actorID string, req *models.SubjectCreateRequest) (*models.Subject, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}
	if err := s.requireAdmin(ctx, actorID, "create", "subject"); err != nil {
		return nil, err
	}

	if _, err := s.repo.Class().GetByID(ctx, s.db, req.ClassID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, fmt.Errorf("failed to get class: %w", err)
	}

	subject := &models.Subject{
		Name:        req.Name,
		Description: req.Description,
		ClassID:     req.ClassID,
	}
	if err := s.repo.Subject().Create(ctx, s.db, subject); err != nil {
		return nil, fmt.Errorf("failed to create subject: %w", err)
	}
	return subject, nil
}

func (s *userService) ListSubjects(ctx context.Context, classID uint) ([]*models.Subject, error) {
	subjects, err := s.repo.Subject().GetByClass(ctx, s.db, classID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}
	return subjects, nil
}

func (s *userService) AssignTeacher(ctx context.Context, actorID, teacherID string, subjectID uint) error {
	if err := s.requireAdmin(ctx, actorID, "assign", "teacher"); err != nil {
		return err
	}

	teacher, err := s.GetUser(ctx, teacherID)
	if err != nil {
		return err
	}
	if teacher.Role != models.RoleTeacher {
		return NewBusinessRuleError("teacher_role", "only teachers can be assigned to subjects")
	}

	if _, err := s.repo.Subject().GetByID(ctx, s.db, subjectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSubjectNotFound
		}
		return fmt.Errorf("failed to get subject: %w", err)
	}

	assigned, err := s.repo.Subject().IsTeacherAssigned(ctx, s.db, teacherID, subjectID)
	if err != nil {
		return fmt.Errorf("failed to check assignment: %w", err)
	}
	if assigned {
		return nil
	}

	if err := s.repo.Subject().AssignTeacher(ctx, s.db, teacherID, subjectID); err != nil {
		return fmt.Errorf("failed to assign teacher: %w", err)
	}

	s.logger.Info("Teacher assigned to subject",
		"teacher_id", teacherID,
		"subject_id", subjectID,
		"assigned_by", actorID)
	return nil
}

func (s *userService) CreateChapter(ctx context.Context, actorID string, req *models.ChapterCreateRequest) (*models.Chapter, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	actor, err := s.GetUser(ctx, actorID)
	if err != nil {
		return nil, err
	}
	switch actor.Role {
	case models.RoleAdmin:
	case models.RoleTeacher:
		assigned, err := s.repo.Subject().IsTeacherAssigned(ctx, s.db, actorID, req.SubjectID)
		if err != nil {
			return nil, fmt.Errorf("failed to check assignment: %w", err)
		}
		if !assigned {
			return nil, ErrSubjectNotFound
		}
	default:
		return nil, NewPermissionError(actorID, "create", "chapter")
	}

	if _, err := s.repo.Subject().GetByID(ctx, s.db, req.SubjectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubjectNotFound
		}
		return nil, fmt.Errorf("failed to get subject: %w", err)
	}

	chapter := &models.Chapter{
		Name:      req.Name,
		Position:  req.Position,
		SubjectID: req.SubjectID,
	}
	if err := s.repo.Chapter().Create(ctx, s.db, chapter); err != nil {
		return nil, fmt.Errorf("failed to create chapter: %w", err)
	}
	return chapter, nil
}

func (s *userService) ListChapters(ctx context.Context, subjectID uint) ([]*models.Chapter, error) {
	chapters, err := s.repo.Chapter().GetBySubject(ctx, s.db, subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chapters: %w", err)
	}
	return chapters, nil
}

func (s *userService) requireAdmin(ctx context.Context, actorID, action, resource string) error {
	actor, err := s.repo.User().GetByID(ctx, s.db, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewPermissionError(actorID, action, resource)
		}
		return fmt.Errorf("failed to get actor: %w", err)
	}
	if actor.Role != models.RoleAdmin {
		return NewPermissionError(actorID, action, resource)
	}
	return nil
}
