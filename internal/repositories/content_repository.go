package repositories

import (
	"context"

	"github.com/schoolsync/lms-service/internal/models"
	"gorm.io/gorm"
)

type ContentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, item *models.ContentItem) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ContentItem, error)
	Update(ctx context.Context, tx *gorm.DB, item *models.ContentItem) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	List(ctx context.Context, tx *gorm.DB, filters ContentFilters) ([]*models.ContentItem, int64, error)
	GetByChapters(ctx context.Context, tx *gorm.DB, chapterIDs []uint, excludeType *models.ContentType) ([]*models.ContentItem, error)
	GetIDsByChapters(ctx context.Context, tx *gorm.DB, chapterIDs []uint, excludeType *models.ContentType) ([]uint, error)
}

type ContentViewRepository interface {
	// Upsert increments the view counter and folds in the ping's time and
	// completion values for the (student, content) pair.
	Upsert(ctx context.Context, tx *gorm.DB, studentID string, contentID uint, timeSpent int, completionPct float64) error

	GetByStudent(ctx context.Context, tx *gorm.DB, studentID string, contentIDs []uint) ([]*models.ContentView, error)

	// GetStudentStats rolls up distinct-view count and mean completion for
	// one student over a content id set.
	GetStudentStats(ctx context.Context, tx *gorm.DB, studentID string, contentIDs []uint) (*ViewStats, error)
}
