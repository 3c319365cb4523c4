package pkg

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/schoolsync/lms-service/internal/config"
	"github.com/schoolsync/lms-service/internal/models"
)

// InitDatabase opens the postgres connection and runs migrations.
// TranslateError is required: the attempt gate relies on unique violations
// surfacing as gorm.ErrDuplicatedKey.
func InitDatabase(cfg *config.Config) (*gorm.DB, error) {
	gormLogLevel := logger.Warn
	if cfg.Environment == "development" {
		gormLogLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{
		Logger:         logger.Default.LogMode(gormLogLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := migrate(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Class{},
		&models.User{},
		&models.Subject{},
		&models.TeacherSubject{},
		&models.Chapter{},
		&models.ContentItem{},
		&models.ContentView{},
		&models.Quiz{},
		&models.Question{},
		&models.QuizAttempt{},
	)
}
