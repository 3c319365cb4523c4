package repositories

import (
	"context"

	"github.com/schoolsync/lms-service/internal/models"
	"gorm.io/gorm"
)

// UserRepository covers the user directory: provisioning, lookup and the
// roster queries the aggregator depends on.
type UserRepository interface {
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error)
	GetByRollNumber(ctx context.Context, tx *gorm.DB, rollNumber string) (*models.User, error)
	Update(ctx context.Context, tx *gorm.DB, user *models.User) error
	Delete(ctx context.Context, tx *gorm.DB, id string) error

	List(ctx context.Context, tx *gorm.DB, filters UserFilters) ([]*models.User, int64, error)
	GetClassStudents(ctx context.Context, tx *gorm.DB, classID uint) ([]*models.User, error)

	ExistsByRollNumber(ctx context.Context, tx *gorm.DB, rollNumber string, excludeID *string) (bool, error)
	ExistsByEmail(ctx context.Context, tx *gorm.DB, email string, excludeID *string) (bool, error)
}

type ClassRepository interface {
	Create(ctx context.Context, tx *gorm.DB, class *models.Class) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Class, error)
	GetByName(ctx context.Context, tx *gorm.DB, name string) (*models.Class, error)
	Update(ctx context.Context, tx *gorm.DB, class *models.Class) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	List(ctx context.Context, tx *gorm.DB) ([]*models.Class, error)
}

type SubjectRepository interface {
	Create(ctx context.Context, tx *gorm.DB, subject *models.Subject) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Subject, error)
	Update(ctx context.Context, tx *gorm.DB, subject *models.Subject) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	GetByClass(ctx context.Context, tx *gorm.DB, classID uint) ([]*models.Subject, error)
	GetByTeacher(ctx context.Context, tx *gorm.DB, teacherID string) ([]*models.Subject, error)

	AssignTeacher(ctx context.Context, tx *gorm.DB, teacherID string, subjectID uint) error
	UnassignTeacher(ctx context.Context, tx *gorm.DB, teacherID string, subjectID uint) error
	IsTeacherAssigned(ctx context.Context, tx *gorm.DB, teacherID string, subjectID uint) (bool, error)
}

type ChapterRepository interface {
	Create(ctx context.Context, tx *gorm.DB, chapter *models.Chapter) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Chapter, error)
	Update(ctx context.Context, tx *gorm.DB, chapter *models.Chapter) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	GetBySubject(ctx context.Context, tx *gorm.DB, subjectID uint) ([]*models.Chapter, error)
	GetIDsBySubject(ctx context.Context, tx *gorm.DB, subjectID uint) ([]uint, error)
}
