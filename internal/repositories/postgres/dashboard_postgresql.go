package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/schoolsync/lms-service/internal/models"
	"github.com/schoolsync/lms-service/internal/repositories"
)

type dashboardRepository struct {
	db *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) repositories.DashboardRepository {
	return &dashboardRepository{db: db}
}

func (r *dashboardRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *dashboardRepository) GetDirectoryCounts(ctx context.Context, tx *gorm.DB) (*repositories.DirectoryCounts, error) {
	db := r.getDB(tx).WithContext(ctx)
	var counts repositories.DirectoryCounts

	if err := db.Model(&models.User{}).Count(&counts.Users).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleStudent).Count(&counts.Students).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleTeacher).Count(&counts.Teachers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Class{}).Count(&counts.Classes).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Subject{}).Count(&counts.Subjects).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.ContentItem{}).Count(&counts.Content).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Quiz{}).Count(&counts.Quizzes).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.QuizAttempt{}).Count(&counts.Attempts).Error; err != nil {
		return nil, err
	}

	return &counts, nil
}

func (r *dashboardRepository) GetTotalAttempts(ctx context.Context, tx *gorm.DB) (int64, error) {
	var count int64
	err := r.getDB(tx).WithContext(ctx).
		Model(&models.QuizAttempt{}).
		Where("status != ?", models.AttemptInProgress).
		Count(&count).Error
	return count, err
}

func (r *dashboardRepository) GetPassedAttempts(ctx context.Context, tx *gorm.DB) (int64, error) {
	var count int64
	err := r.getDB(tx).WithContext(ctx).
		Model(&models.QuizAttempt{}).
		Where("status != ? AND passed", models.AttemptInProgress).
		Count(&count).Error
	return count, err
}

func (r *dashboardRepository) GetAverageScore(ctx context.Context, tx *gorm.DB) (float64, error) {
	var avg float64
	err := r.getDB(tx).WithContext(ctx).
		Model(&models.QuizAttempt{}).
		Where("status != ? AND total_marks > 0", models.AttemptInProgress).
		Select("COALESCE(AVG(score::float / total_marks * 100), 0)").
		Scan(&avg).Error
	return avg, err
}
