package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/schoolsync/lms-service/internal/cache"
	"github.com/schoolsync/lms-service/internal/models"
	"github.com/schoolsync/lms-service/internal/repositories"
)

type ContentPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewContentPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.ContentRepository {
	return &ContentPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (c *ContentPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return c.db
}

func (c *ContentPostgreSQL) Create(ctx context.Context, tx *gorm.DB, item *models.ContentItem) error {
	db := c.getDB(tx)
	if err := db.WithContext(ctx).Create(item).Error; err != nil {
		return err
	}
	_ = c.cacheManager.InvalidateContent(ctx, item.ChapterID)
	return nil
}

func (c *ContentPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ContentItem, error) {
	db := c.getDB(tx)
	cacheKey := fmt.Sprintf("id:%d", id)
	var item models.ContentItem

	err := c.cacheManager.Content.CacheOrExecute(ctx, cacheKey, &item, cache.ContentCacheConfig.TTL, func() (interface{}, error) {
		var dbItem models.ContentItem
		if err := db.WithContext(ctx).First(&dbItem, id).Error; err != nil {
			return nil, err
		}
		return &dbItem, nil
	})

	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *ContentPostgreSQL) Update(ctx context.Context, tx *gorm.DB, item *models.ContentItem) error {
	db := c.getDB(tx)
	if err := db.WithContext(ctx).Save(item).Error; err != nil {
		return err
	}
	cache.SafeDelete(ctx, c.cacheManager.Content, fmt.Sprintf("id:%d", item.ID))
	_ = c.cacheManager.InvalidateContent(ctx, item.ChapterID)
	return nil
}

func (c *ContentPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := c.getDB(tx)
	if err := db.WithContext(ctx).Delete(&models.ContentItem{}, id).Error; err != nil {
		return err
	}
	cache.SafeDelete(ctx, c.cacheManager.Content, fmt.Sprintf("id:%d", id))
	return nil
}

func (c *ContentPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.ContentFilters) ([]*models.ContentItem, int64, error) {
	db := c.getDB(tx)
	var items []*models.ContentItem
	var total int64

	query := db.WithContext(ctx).Model(&models.ContentItem{})
	query = c.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (c *ContentPostgreSQL) GetByChapters(ctx context.Context, tx *gorm.DB, chapterIDs []uint, excludeType *models.ContentType) ([]*models.ContentItem, error) {
	if len(chapterIDs) == 0 {
		return []*models.ContentItem{}, nil
	}

	db := c.getDB(tx)
	query := db.WithContext(ctx).Where("chapter_id IN ?", chapterIDs)
	if excludeType != nil {
		query = query.Where("type != ?", *excludeType)
	}

	var items []*models.ContentItem
	if err := query.Order("chapter_id ASC, created_at ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (c *ContentPostgreSQL) GetIDsByChapters(ctx context.Context, tx *gorm.DB, chapterIDs []uint, excludeType *models.ContentType) ([]uint, error) {
	if len(chapterIDs) == 0 {
		return []uint{}, nil
	}

	db := c.getDB(tx)
	query := db.WithContext(ctx).Model(&models.ContentItem{}).Where("chapter_id IN ?", chapterIDs)
	if excludeType != nil {
		query = query.Where("type != ?", *excludeType)
	}

	var ids []uint
	if err := query.Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (c *ContentPostgreSQL) applyFilters(query *gorm.DB, filters repositories.ContentFilters) *gorm.DB {
	if filters.Type != nil {
		query = query.Where("type = ?", *filters.Type)
	}
	if filters.ExcludeType != nil {
		query = query.Where("type != ?", *filters.ExcludeType)
	}
	if filters.ChapterID != nil {
		query = query.Where("chapter_id = ?", *filters.ChapterID)
	}
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}
	return query
}

type ContentViewPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewContentViewPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.ContentViewRepository {
	return &ContentViewPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (v *ContentViewPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return v.db
}

// Upsert folds one analytics ping into the (student, content) row. The
// completion percentage only moves forward so a rewatch never lowers it.
func (v *ContentViewPostgreSQL) Upsert(ctx context.Context, tx *gorm.DB, studentID string, contentID uint, timeSpent int, completionPct float64) error {
	db := v.getDB(tx)
	now := time.Now()

	view := models.ContentView{
		StudentID:      studentID,
		ContentItemID:  contentID,
		ViewCount:      1,
		TimeSpent:      timeSpent,
		CompletionPct:  completionPct,
		LastAccessedAt: now,
	}

	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "student_id"}, {Name: "content_item_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"view_count":       gorm.Expr("content_views.view_count + 1"),
			"time_spent":       gorm.Expr("content_views.time_spent + ?", timeSpent),
			"completion_pct":   gorm.Expr("GREATEST(content_views.completion_pct, ?)", completionPct),
			"last_accessed_at": now,
			"updated_at":       now,
		}),
	}).Create(&view).Error
	if err != nil {
		return err
	}

	_ = v.cacheManager.InvalidateStudentProgress(ctx, studentID)
	return nil
}

func (v *ContentViewPostgreSQL) GetByStudent(ctx context.Context, tx *gorm.DB, studentID string, contentIDs []uint) ([]*models.ContentView, error) {
	if len(contentIDs) == 0 {
		return []*models.ContentView{}, nil
	}

	db := v.getDB(tx)
	var views []*models.ContentView
	err := db.WithContext(ctx).
		Where("student_id = ? AND content_item_id IN ?", studentID, contentIDs).
		Find(&views).Error
	if err != nil {
		return nil, err
	}
	return views, nil
}

func (v *ContentViewPostgreSQL) GetStudentStats(ctx context.Context, tx *gorm.DB, studentID string, contentIDs []uint) (*repositories.ViewStats, error) {
	if len(contentIDs) == 0 {
		return &repositories.ViewStats{}, nil
	}

	db := v.getDB(tx)
	var stats repositories.ViewStats
	err := db.WithContext(ctx).
		Model(&models.ContentView{}).
		Select(`COUNT(DISTINCT content_item_id) as viewed,
			COALESCE(AVG(completion_pct), 0) as avg_completion,
			COALESCE(SUM(time_spent), 0) as total_seconds`).
		Where("student_id = ? AND content_item_id IN ?", studentID, contentIDs).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
