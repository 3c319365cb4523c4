package repositories

import (
	"context"

	"github.com/schoolsync/lms-service/internal/models"
	"gorm.io/gorm"
)

type QuizRepository interface {
	Create(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Quiz, error)
	GetByIDWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*models.Quiz, error)
	Update(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	List(ctx context.Context, tx *gorm.DB, filters QuizFilters) ([]*models.Quiz, int64, error)
	GetByChapters(ctx context.Context, tx *gorm.DB, chapterIDs []uint) ([]*models.Quiz, error)
	GetIDsByChapters(ctx context.Context, tx *gorm.DB, chapterIDs []uint) ([]uint, error)
}

type QuestionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, question *models.Question) error
	CreateBatch(ctx context.Context, tx *gorm.DB, questions []*models.Question) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error)
	Update(ctx context.Context, tx *gorm.DB, question *models.Question) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// GetByQuiz returns the answer key ordered by position; the evaluator
	// scores against exactly this set.
	GetByQuiz(ctx context.Context, tx *gorm.DB, quizID uint) ([]*models.Question, error)
	CountByQuiz(ctx context.Context, tx *gorm.DB, quizID uint) (int64, error)
}
