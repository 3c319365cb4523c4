package postgres

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/schoolsync/lms-service/internal/cache"
	"github.com/schoolsync/lms-service/internal/models"
	"github.com/schoolsync/lms-service/internal/repositories"
)

type QuizPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewQuizPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.QuizRepository {
	return &QuizPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (q *QuizPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return q.db
}

func (q *QuizPostgreSQL) Create(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error {
	db := q.getDB(tx)
	return db.WithContext(ctx).Create(quiz).Error
}

func (q *QuizPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Quiz, error) {
	db := q.getDB(tx)
	cacheKey := fmt.Sprintf("id:%d", id)
	var quiz models.Quiz

	err := q.cacheManager.Quiz.CacheOrExecute(ctx, cacheKey, &quiz, cache.QuizCacheConfig.TTL, func() (interface{}, error) {
		var dbQuiz models.Quiz
		if err := db.WithContext(ctx).First(&dbQuiz, id).Error; err != nil {
			return nil, err
		}
		return &dbQuiz, nil
	})

	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (q *QuizPostgreSQL) GetByIDWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*models.Quiz, error) {
	db := q.getDB(tx)
	var quiz models.Quiz
	err := db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.position ASC")
		}).
		First(&quiz, id).Error
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (q *QuizPostgreSQL) Update(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error {
	db := q.getDB(tx)
	if err := db.WithContext(ctx).Save(quiz).Error; err != nil {
		return err
	}
	_ = q.cacheManager.InvalidateQuiz(ctx, quiz.ID)
	return nil
}

func (q *QuizPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := q.getDB(tx)
	if err := db.WithContext(ctx).Delete(&models.Quiz{}, id).Error; err != nil {
		return err
	}
	_ = q.cacheManager.InvalidateQuiz(ctx, id)
	return nil
}

func (q *QuizPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.QuizFilters) ([]*models.Quiz, int64, error) {
	db := q.getDB(tx)
	var quizzes []*models.Quiz
	var total int64

	query := db.WithContext(ctx).Model(&models.Quiz{})
	query = q.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = q.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	if err := query.Find(&quizzes).Error; err != nil {
		return nil, 0, err
	}

	return quizzes, total, nil
}

func (q *QuizPostgreSQL) GetByChapters(ctx context.Context, tx *gorm.DB, chapterIDs []uint) ([]*models.Quiz, error) {
	if len(chapterIDs) == 0 {
		return []*models.Quiz{}, nil
	}

	db := q.getDB(tx)
	var quizzes []*models.Quiz
	err := db.WithContext(ctx).
		Where("chapter_id IN ?", chapterIDs).
		Order("chapter_id ASC, created_at ASC").
		Find(&quizzes).Error
	if err != nil {
		return nil, err
	}
	return quizzes, nil
}

func (q *QuizPostgreSQL) GetIDsByChapters(ctx context.Context, tx *gorm.DB, chapterIDs []uint) ([]uint, error) {
	if len(chapterIDs) == 0 {
		return []uint{}, nil
	}

	db := q.getDB(tx)
	var ids []uint
	err := db.WithContext(ctx).
		Model(&models.Quiz{}).
		Where("chapter_id IN ?", chapterIDs).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (q *QuizPostgreSQL) applyFilters(query *gorm.DB, filters repositories.QuizFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.Type != nil {
		query = query.Where("type = ?", *filters.Type)
	}
	if filters.ChapterID != nil {
		query = query.Where("chapter_id = ?", *filters.ChapterID)
	}
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}
	return query
}

type QuestionPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewQuestionPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.QuestionRepository {
	return &QuestionPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (q *QuestionPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return q.db
}

func (q *QuestionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	db := q.getDB(tx)
	if err := db.WithContext(ctx).Create(question).Error; err != nil {
		return err
	}
	cache.SafeDelete(ctx, q.cacheManager.Quiz, fmt.Sprintf("questions:%d", question.QuizID))
	return nil
}

func (q *QuestionPostgreSQL) CreateBatch(ctx context.Context, tx *gorm.DB, questions []*models.Question) error {
	if len(questions) == 0 {
		return nil
	}
	db := q.getDB(tx)
	if err := db.WithContext(ctx).Create(&questions).Error; err != nil {
		return err
	}
	cache.SafeDelete(ctx, q.cacheManager.Quiz, fmt.Sprintf("questions:%d", questions[0].QuizID))
	return nil
}

func (q *QuestionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	db := q.getDB(tx)
	var question models.Question
	if err := db.WithContext(ctx).First(&question, id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (q *QuestionPostgreSQL) Update(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	db := q.getDB(tx)
	if err := db.WithContext(ctx).Save(question).Error; err != nil {
		return err
	}
	cache.SafeDelete(ctx, q.cacheManager.Quiz, fmt.Sprintf("questions:%d", question.QuizID))
	return nil
}

func (q *QuestionPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := q.getDB(tx)
	return db.WithContext(ctx).Delete(&models.Question{}, id).Error
}

func (q *QuestionPostgreSQL) GetByQuiz(ctx context.Context, tx *gorm.DB, quizID uint) ([]*models.Question, error) {
	db := q.getDB(tx)
	var questions []*models.Question
	err := db.WithContext(ctx).
		Where("quiz_id = ?", quizID).
		Order("position ASC").
		Find(&questions).Error
	if err != nil {
		return nil, err
	}
	return questions, nil
}

func (q *QuestionPostgreSQL) CountByQuiz(ctx context.Context, tx *gorm.DB, quizID uint) (int64, error) {
	db := q.getDB(tx)
	var count int64
	err := db.WithContext(ctx).
		Model(&models.Question{}).
		Where("quiz_id = ?", quizID).
		Count(&count).Error
	return count, err
}
