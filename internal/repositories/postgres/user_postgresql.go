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

type UserPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewUserPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.UserRepository {
	return &UserPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (u *UserPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return u.db
}

func (u *UserPostgreSQL) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	db := u.getDB(tx)
	return db.WithContext(ctx).Create(user).Error
}

func (u *UserPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error) {
	db := u.getDB(tx)
	cacheKey := fmt.Sprintf("id:%s", id)
	var user models.User

	err := u.cacheManager.User.CacheOrExecute(ctx, cacheKey, &user, cache.FastCacheConfig.TTL, func() (interface{}, error) {
		var dbUser models.User
		if err := db.WithContext(ctx).Preload("Class").First(&dbUser, "id = ?", id).Error; err != nil {
			return nil, err
		}
		return &dbUser, nil
	})

	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *UserPostgreSQL) GetByRollNumber(ctx context.Context, tx *gorm.DB, rollNumber string) (*models.User, error) {
	db := u.getDB(tx)
	var user models.User
	if err := db.WithContext(ctx).Preload("Class").First(&user, "roll_number = ?", rollNumber).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *UserPostgreSQL) Update(ctx context.Context, tx *gorm.DB, user *models.User) error {
	db := u.getDB(tx)
	if err := db.WithContext(ctx).Save(user).Error; err != nil {
		return err
	}
	cache.SafeDelete(ctx, u.cacheManager.User, fmt.Sprintf("id:%s", user.ID))
	return nil
}

func (u *UserPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	db := u.getDB(tx)
	if err := db.WithContext(ctx).Delete(&models.User{}, "id = ?", id).Error; err != nil {
		return err
	}
	cache.SafeDelete(ctx, u.cacheManager.User, fmt.Sprintf("id:%s", id))
	return nil
}

func (u *UserPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.UserFilters) ([]*models.User, int64, error) {
	db := u.getDB(tx)
	var users []*models.User
	var total int64

	query := db.WithContext(ctx).Model(&models.User{})
	query = u.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = u.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	if err := query.Preload("Class").Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (u *UserPostgreSQL) GetClassStudents(ctx context.Context, tx *gorm.DB, classID uint) ([]*models.User, error) {
	db := u.getDB(tx)
	var students []*models.User
	err := db.WithContext(ctx).
		Where("class_id = ? AND role = ?", classID, models.RoleStudent).
		Order("roll_number ASC").
		Find(&students).Error
	if err != nil {
		return nil, err
	}
	return students, nil
}

func (u *UserPostgreSQL) ExistsByRollNumber(ctx context.Context, tx *gorm.DB, rollNumber string, excludeID *string) (bool, error) {
	db := u.getDB(tx)
	query := db.WithContext(ctx).Model(&models.User{}).Where("roll_number = ?", rollNumber)
	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (u *UserPostgreSQL) ExistsByEmail(ctx context.Context, tx *gorm.DB, email string, excludeID *string) (bool, error) {
	db := u.getDB(tx)
	query := db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email)
	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (u *UserPostgreSQL) applyFilters(query *gorm.DB, filters repositories.UserFilters) *gorm.DB {
	if filters.Role != nil {
		query = query.Where("role = ?", *filters.Role)
	}
	if filters.ClassID != nil {
		query = query.Where("class_id = ?", *filters.ClassID)
	}
	if filters.Search != nil && *filters.Search != "" {
		pattern := "%" + *filters.Search + "%"
		query = query.Where("full_name ILIKE ? OR email ILIKE ? OR roll_number ILIKE ?", pattern, pattern, pattern)
	}
	return query
}
