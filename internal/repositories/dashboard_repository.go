package repositories

import (
	"context"

	"gorm.io/gorm"
)

// DashboardRepository backs the landing-dashboard counters.
type DashboardRepository interface {
	GetDirectoryCounts(ctx context.Context, tx *gorm.DB) (*DirectoryCounts, error)
	GetTotalAttempts(ctx context.Context, tx *gorm.DB) (int64, error)
	GetPassedAttempts(ctx context.Context, tx *gorm.DB) (int64, error)
	GetAverageScore(ctx context.Context, tx *gorm.DB) (float64, error)
}
