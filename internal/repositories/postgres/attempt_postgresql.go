package postgres

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/schoolsync/lms-service/internal/cache"
	"github.com/schoolsync/lms-service/internal/models"
	"github.com/schoolsync/lms-service/internal/repositories"
)

type AttemptPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewAttemptPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.AttemptRepository {
	return &AttemptPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (a *AttemptPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return a.db
}

// Create relies on the (quiz_id, student_id) unique index; a duplicate
// insert comes back as gorm.ErrDuplicatedKey through TranslateError.
func (a *AttemptPostgreSQL) Create(ctx context.Context, tx *gorm.DB, attempt *models.QuizAttempt) error {
	db := a.getDB(tx)
	if err := db.WithContext(ctx).Create(attempt).Error; err != nil {
		return err
	}
	cache.InvalidateAttemptCache(ctx, a.cacheManager, attempt.QuizID, attempt.StudentID)
	return nil
}

func (a *AttemptPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.QuizAttempt, error) {
	db := a.getDB(tx)
	var attempt models.QuizAttempt
	if err := db.WithContext(ctx).First(&attempt, id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) GetByQuizAndStudent(ctx context.Context, tx *gorm.DB, quizID uint, studentID string) (*models.QuizAttempt, error) {
	db := a.getDB(tx)
	var attempt models.QuizAttempt
	err := db.WithContext(ctx).
		Where("quiz_id = ? AND student_id = ?", quizID, studentID).
		First(&attempt).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

// Finalize performs a guarded update so only one writer can move the row
// out of in_progress. RowsAffected == 0 means another submission already
// finalized it; that is reported as gorm.ErrRecordNotFound.
func (a *AttemptPostgreSQL) Finalize(ctx context.Context, tx *gorm.DB, attempt *models.QuizAttempt) error {
	db := a.getDB(tx)

	result := db.WithContext(ctx).
		Model(&models.QuizAttempt{}).
		Where("id = ? AND status = ?", attempt.ID, models.AttemptInProgress).
		Updates(map[string]interface{}{
			"status":       attempt.Status,
			"score":        attempt.Score,
			"total_marks":  attempt.TotalMarks,
			"percentage":   attempt.Percentage,
			"passed":       attempt.Passed,
			"answers":      attempt.Answers,
			"completed_at": attempt.CompletedAt,
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	cache.InvalidateAttemptCache(ctx, a.cacheManager, attempt.QuizID, attempt.StudentID)
	return nil
}

func (a *AttemptPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.AttemptFilters) ([]*models.QuizAttempt, int64, error) {
	db := a.getDB(tx)
	var attempts []*models.QuizAttempt
	var total int64

	query := db.WithContext(ctx).Model(&models.QuizAttempt{})
	query = a.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = a.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	if err := query.Preload("Quiz").Find(&attempts).Error; err != nil {
		return nil, 0, err
	}

	return attempts, total, nil
}

func (a *AttemptPostgreSQL) GetByStudent(ctx context.Context, tx *gorm.DB, studentID string, quizIDs []uint) ([]*models.QuizAttempt, error) {
	db := a.getDB(tx)
	query := db.WithContext(ctx).Where("student_id = ?", studentID)
	if len(quizIDs) > 0 {
		query = query.Where("quiz_id IN ?", quizIDs)
	}

	var attempts []*models.QuizAttempt
	if err := query.Preload("Quiz").Order("created_at DESC").Find(&attempts).Error; err != nil {
		return nil, err
	}
	return attempts, nil
}

func (a *AttemptPostgreSQL) GetStudentStats(ctx context.Context, tx *gorm.DB, studentID string, quizIDs []uint) (*repositories.AttemptStats, error) {
	if len(quizIDs) == 0 {
		return &repositories.AttemptStats{}, nil
	}

	db := a.getDB(tx)
	var stats repositories.AttemptStats
	err := db.WithContext(ctx).
		Model(&models.QuizAttempt{}).
		Select(`COUNT(*) as attempted,
			COALESCE(AVG(CASE WHEN total_marks > 0 THEN score::float / total_marks ELSE 0 END), 0) as avg_ratio`).
		Where("student_id = ? AND quiz_id IN ? AND status != ?", studentID, quizIDs, models.AttemptInProgress).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (a *AttemptPostgreSQL) GetSubjectStats(ctx context.Context, tx *gorm.DB, quizIDs []uint) (*repositories.SubjectAttemptStats, error) {
	if len(quizIDs) == 0 {
		return &repositories.SubjectAttemptStats{}, nil
	}

	db := a.getDB(tx)
	var stats repositories.SubjectAttemptStats
	err := db.WithContext(ctx).
		Model(&models.QuizAttempt{}).
		Select(`COUNT(*) as total_attempts,
			COUNT(DISTINCT student_id) as active_students,
			COALESCE(AVG(CASE WHEN total_marks > 0 THEN score::float / total_marks ELSE 0 END), 0) as avg_ratio`).
		Where("quiz_id IN ? AND status != ?", quizIDs, models.AttemptInProgress).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// GetStudentRatios orders by ratio descending with student id as the
// explicit tie-break, so rankings are stable across requests.
func (a *AttemptPostgreSQL) GetStudentRatios(ctx context.Context, tx *gorm.DB, quizIDs []uint) ([]repositories.StudentRatio, error) {
	if len(quizIDs) == 0 {
		return []repositories.StudentRatio{}, nil
	}

	db := a.getDB(tx)
	var ratios []repositories.StudentRatio
	err := db.WithContext(ctx).
		Model(&models.QuizAttempt{}).
		Select(`student_id,
			COALESCE(AVG(CASE WHEN total_marks > 0 THEN score::float / total_marks ELSE 0 END), 0) as avg_ratio`).
		Where("quiz_id IN ? AND status != ?", quizIDs, models.AttemptInProgress).
		Group("student_id").
		Order("avg_ratio DESC, student_id ASC").
		Scan(&ratios).Error
	if err != nil {
		return nil, err
	}
	return ratios, nil
}

func (a *AttemptPostgreSQL) CountByQuizAndStudent(ctx context.Context, tx *gorm.DB, quizID uint, studentID string) (int64, error) {
	db := a.getDB(tx)
	var count int64
	err := db.WithContext(ctx).
		Model(&models.QuizAttempt{}).
		Where("quiz_id = ? AND student_id = ?", quizID, studentID).
		Count(&count).Error
	return count, err
}

func (a *AttemptPostgreSQL) applyFilters(query *gorm.DB, filters repositories.AttemptFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.StudentID != nil {
		query = query.Where("student_id = ?", *filters.StudentID)
	}
	if len(filters.QuizIDs) > 0 {
		query = query.Where("quiz_id IN ?", filters.QuizIDs)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}
	return query
}
