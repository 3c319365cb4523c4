package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/schoolsync/lms-service/internal/cache"
	"github.com/schoolsync/lms-service/internal/events"
	"github.com/schoolsync/lms-service/internal/models"
	"github.com/schoolsync/lms-service/internal/repositories"
	"github.com/schoolsync/lms-service/internal/storage"
	"github.com/schoolsync/lms-service/internal/validator"
)

// downloadURLExpiry bounds presigned links; clients re-request when stale.
const downloadURLExpiry = 15 * time.Minute

type contentService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.BusinessValidator
	cache     *cache.CacheManager
	storage   storage.Provider
	publisher events.Publisher
}

func NewContentService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, v *validator.BusinessValidator, cm *cache.CacheManager, provider storage.Provider, publisher events.Publisher) ContentService {
	return &contentService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: v,
		cache:     cm,
		storage:   provider,
		publisher: publisher,
	}
}

// Upload creates a content item under a chapter. When a file is attached it
// goes to the object store and the stored key becomes the item's location;
// otherwise the request must carry an external URL.
func (s *contentService) Upload(ctx context.Context, actorID string, req *models.ContentCreateRequest, file *multipart.FileHeader) (*models.ContentItem, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	if err := s.checkAuthorAccess(ctx, actorID, req.ChapterID); err != nil {
		return nil, err
	}

	item := &models.ContentItem{
		Title:     req.Title,
		Type:      req.Type,
		ChapterID: req.ChapterID,
		URL:       req.URL,
		CreatedBy: actorID,
	}

	if file != nil {
		if s.storage == nil {
			return nil, NewBusinessRuleError("storage_unavailable", "file uploads are not enabled")
		}
		key, err := s.storage.Upload(ctx, file, "content")
		if err != nil {
			return nil, fmt.Errorf("failed to store file: %w", err)
		}
		mimeType := file.Header.Get("Content-Type")
		item.URL = key
		item.StorageKey = &key
		item.MimeType = &mimeType
		item.SizeBytes = file.Size
	} else if req.URL == "" {
		return nil, NewBusinessRuleError("content_location", "either a file or a url is required")
	}

	if err := s.repo.Content().Create(ctx, s.db, item); err != nil {
		return nil, fmt.Errorf("failed to create content item: %w", err)
	}

	if err := s.cache.InvalidateContent(ctx, item.ChapterID); err != nil {
		s.logger.Warn("Failed to invalidate content cache", "chapter_id", item.ChapterID, "error", err)
	}

	s.logger.Info("Content item created",
		"content_id", item.ID,
		"chapter_id", item.ChapterID,
		"type", item.Type,
		"created_by", actorID)

	return item, nil
}

func (s *contentService) GetContent(ctx context.Context, contentID uint) (*models.ContentItem, error) {
	item, err := s.repo.Content().GetByID(ctx, s.db, contentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContentNotFound
		}
		return nil, fmt.Errorf("failed to get content item: %w", err)
	}
	return item, nil
}

// GetDownloadURL resolves the item's location: a presigned object-store link
// for uploaded files, the stored URL otherwise.
func (s *contentService) GetDownloadURL(ctx context.Context, contentID uint) (string, error) {
	item, err := s.GetContent(ctx, contentID)
	if err != nil {
		return "", err
	}

	if item.StorageKey == nil {
		return item.URL, nil
	}
	if s.storage == nil {
		return "", NewBusinessRuleError("storage_unavailable", "file downloads are not enabled")
	}

	url, err := s.storage.GetURL(ctx, *item.StorageKey, downloadURLExpiry)
	if err != nil {
		return "", fmt.Errorf("failed to presign download: %w", err)
	}
	return url, nil
}

func (s *contentService) ListByChapter(ctx context.Context, chapterID uint) ([]*models.ContentItem, error) {
	items, err := s.repo.Content().GetByChapters(ctx, s.db, []uint{chapterID}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list content: %w", err)
	}
	return items, nil
}

func (s *contentService) DeleteContent(ctx context.Context, actorID string, contentID uint) error {
	item, err := s.GetContent(ctx, contentID)
	if err != nil {
		return err
	}

	if item.CreatedBy != actorID {
		actor, err := s.repo.User().GetByID(ctx, s.db, actorID)
		if err != nil {
			return fmt.Errorf("failed to get actor: %w", err)
		}
		if actor.Role != models.RoleAdmin {
			return NewPermissionError(actorID, "delete", "content item")
		}
	}

	if err := s.repo.Content().Delete(ctx, s.db, contentID); err != nil {
		return fmt.Errorf("failed to delete content item: %w", err)
	}

	// Object-store cleanup is best effort; an orphaned object is harmless.
	if item.StorageKey != nil && s.storage != nil {
		if err := s.storage.Delete(ctx, *item.StorageKey); err != nil {
			s.logger.Warn("Failed to delete stored object",
				"content_id", contentID,
				"storage_key", *item.StorageKey,
				"error", err)
		}
	}

	if err := s.cache.InvalidateContent(ctx, item.ChapterID); err != nil {
		s.logger.Warn("Failed to invalidate content cache", "chapter_id", item.ChapterID, "error", err)
	}
	return nil
}

// RecordView folds one analytics ping into the student's view row: the view
// counter increments, time accumulates and completion never decreases.
func (s *contentService) RecordView(ctx context.Context, studentID string, contentID uint, req *models.ContentViewRequest) error {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return errs
	}

	if _, err := s.GetContent(ctx, contentID); err != nil {
		return err
	}

	if err := s.repo.ContentView().Upsert(ctx, s.db, studentID, contentID, req.TimeSpent, req.CompletionPct); err != nil {
		return fmt.Errorf("failed to record view: %w", err)
	}

	if err := s.cache.InvalidateStudentProgress(ctx, studentID); err != nil {
		s.logger.Warn("Failed to invalidate progress cache", "student_id", studentID, "error", err)
	}

	if s.publisher != nil {
		event := events.ContentViewedEvent{
			EventID:       uuid.New().String(),
			StudentID:     studentID,
			ContentItemID: contentID,
			TimeSpent:     req.TimeSpent,
			OccurredAt:    time.Now(),
		}
		if err := s.publisher.PublishContentViewed(event); err != nil {
			s.logger.Error("Failed to publish content viewed event",
				"content_id", contentID,
				"error", err)
		}
	}
	return nil
}

// checkAuthorAccess mirrors quiz authoring: resolve chapter → subject and
// require assignment for teachers.
func (s *contentService) checkAuthorAccess(ctx context.Context, actorID string, chapterID uint) error {
	chapter, err := s.repo.Chapter().GetByID(ctx, s.db, chapterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrChapterNotFound
		}
		return fmt.Errorf("failed to get chapter: %w", err)
	}

	actor, err := s.repo.User().GetByID(ctx, s.db, actorID)
	if err != nil {
		return fmt.Errorf("failed to get actor: %w", err)
	}
	switch actor.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleTeacher:
		assigned, err := s.repo.Subject().IsTeacherAssigned(ctx, s.db, actorID, chapter.SubjectID)
		if err != nil {
			return fmt.Errorf("failed to check subject assignment: %w", err)
		}
		if !assigned {
			return ErrSubjectNotFound
		}
		return nil
	default:
		return NewPermissionError(actorID, "upload", "content")
	}
}
