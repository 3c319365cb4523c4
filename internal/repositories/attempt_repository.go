package repositories

import (
	"context"

	"github.com/schoolsync/lms-service/internal/models"
	"gorm.io/gorm"
)

type AttemptRepository interface {
	// Create inserts a new attempt row. The (quiz, student) unique index is
	// the source of truth for the attempt gate: a duplicate insert surfaces
	// as gorm.ErrDuplicatedKey and must not be retried.
	Create(ctx context.Context, tx *gorm.DB, attempt *models.QuizAttempt) error

	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.QuizAttempt, error)
	GetByQuizAndStudent(ctx context.Context, tx *gorm.DB, quizID uint, studentID string) (*models.QuizAttempt, error)

	// Finalize transitions an in-progress attempt to its terminal state and
	// writes the score fields. Returns gorm.ErrRecordNotFound when the row
	// was already finalized, so a concurrent double-submit loses cleanly.
	Finalize(ctx context.Context, tx *gorm.DB, attempt *models.QuizAttempt) error

	List(ctx context.Context, tx *gorm.DB, filters AttemptFilters) ([]*models.QuizAttempt, int64, error)
	GetByStudent(ctx context.Context, tx *gorm.DB, studentID string, quizIDs []uint) ([]*models.QuizAttempt, error)

	// GetStudentStats rolls up one student's completed attempts over a quiz
	// id set.
	GetStudentStats(ctx context.Context, tx *gorm.DB, studentID string, quizIDs []uint) (*AttemptStats, error)

	// GetSubjectStats rolls up every completed attempt over a quiz id set.
	GetSubjectStats(ctx context.Context, tx *gorm.DB, quizIDs []uint) (*SubjectAttemptStats, error)

	// GetStudentRatios returns per-student mean score ratios over a quiz id
	// set, for performer rankings.
	GetStudentRatios(ctx context.Context, tx *gorm.DB, quizIDs []uint) ([]StudentRatio, error)

	CountByQuizAndStudent(ctx context.Context, tx *gorm.DB, quizID uint, studentID string) (int64, error)
}
