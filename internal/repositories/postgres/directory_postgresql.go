package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/schoolsync/lms-service/internal/models"
	"github.com/schoolsync/lms-service/internal/repositories"
)

// ClassPostgreSQL, SubjectPostgreSQL and ChapterPostgreSQL back the static
// directory reference data. These are low-churn tables; no caching layer.

type ClassPostgreSQL struct {
	db *gorm.DB
}

func NewClassPostgreSQL(db *gorm.DB) repositories.ClassRepository {
	return &ClassPostgreSQL{db: db}
}

func (c *ClassPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return c.db
}

func (c *ClassPostgreSQL) Create(ctx context.Context, tx *gorm.DB, class *models.Class) error {
	return c.getDB(tx).WithContext(ctx).Create(class).Error
}

func (c *ClassPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Class, error) {
	var class models.Class
	if err := c.getDB(tx).WithContext(ctx).First(&class, id).Error; err != nil {
		return nil, err
	}
	return &class, nil
}

func (c *ClassPostgreSQL) GetByName(ctx context.Context, tx *gorm.DB, name string) (*models.Class, error) {
	var class models.Class
	if err := c.getDB(tx).WithContext(ctx).First(&class, "name = ?", name).Error; err != nil {
		return nil, err
	}
	return &class, nil
}

func (c *ClassPostgreSQL) Update(ctx context.Context, tx *gorm.DB, class *models.Class) error {
	return c.getDB(tx).WithContext(ctx).Save(class).Error
}

func (c *ClassPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	return c.getDB(tx).WithContext(ctx).Delete(&models.Class{}, id).Error
}

func (c *ClassPostgreSQL) List(ctx context.Context, tx *gorm.DB) ([]*models.Class, error) {
	var classes []*models.Class
	if err := c.getDB(tx).WithContext(ctx).Order("name ASC").Find(&classes).Error; err != nil {
		return nil, err
	}
	return classes, nil
}

type SubjectPostgreSQL struct {
	db *gorm.DB
}

func NewSubjectPostgreSQL(db *gorm.DB) repositories.SubjectRepository {
	return &SubjectPostgreSQL{db: db}
}

func (s *SubjectPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.db
}

func (s *SubjectPostgreSQL) Create(ctx context.Context, tx *gorm.DB, subject *models.Subject) error {
	return s.getDB(tx).WithContext(ctx).Create(subject).Error
}

func (s *SubjectPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Subject, error) {
	var subject models.Subject
	if err := s.getDB(tx).WithContext(ctx).Preload("Class").First(&subject, id).Error; err != nil {
		return nil, err
	}
	return &subject, nil
}

func (s *SubjectPostgreSQL) Update(ctx context.Context, tx *gorm.DB, subject *models.Subject) error {
	return s.getDB(tx).WithContext(ctx).Save(subject).Error
}

func (s *SubjectPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	return s.getDB(tx).WithContext(ctx).Delete(&models.Subject{}, id).Error
}

func (s *SubjectPostgreSQL) GetByClass(ctx context.Context, tx *gorm.DB, classID uint) ([]*models.Subject, error) {
	var subjects []*models.Subject
	err := s.getDB(tx).WithContext(ctx).
		Where("class_id = ?", classID).
		Order("name ASC").
		Find(&subjects).Error
	if err != nil {
		return nil, err
	}
	return subjects, nil
}

func (s *SubjectPostgreSQL) GetByTeacher(ctx context.Context, tx *gorm.DB, teacherID string) ([]*models.Subject, error) {
	var subjects []*models.Subject
	err := s.getDB(tx).WithContext(ctx).
		Joins("JOIN teacher_subjects ON teacher_subjects.subject_id = subjects.id").
		Where("teacher_subjects.teacher_id = ?", teacherID).
		Preload("Class").
		Order("subjects.name ASC").
		Find(&subjects).Error
	if err != nil {
		return nil, err
	}
	return subjects, nil
}

func (s *SubjectPostgreSQL) AssignTeacher(ctx context.Context, tx *gorm.DB, teacherID string, subjectID uint) error {
	assignment := models.TeacherSubject{TeacherID: teacherID, SubjectID: subjectID}
	return s.getDB(tx).WithContext(ctx).Create(&assignment).Error
}

func (s *SubjectPostgreSQL) UnassignTeacher(ctx context.Context, tx *gorm.DB, teacherID string, subjectID uint) error {
	return s.getDB(tx).WithContext(ctx).
		Where("teacher_id = ? AND subject_id = ?", teacherID, subjectID).
		Delete(&models.TeacherSubject{}).Error
}

func (s *SubjectPostgreSQL) IsTeacherAssigned(ctx context.Context, tx *gorm.DB, teacherID string, subjectID uint) (bool, error) {
	var count int64
	err := s.getDB(tx).WithContext(ctx).
		Model(&models.TeacherSubject{}).
		Where("teacher_id = ? AND subject_id = ?", teacherID, subjectID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

type ChapterPostgreSQL struct {
	db *gorm.DB
}

func NewChapterPostgreSQL(db *gorm.DB) repositories.ChapterRepository {
	return &ChapterPostgreSQL{db: db}
}

func (c *ChapterPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return c.db
}

func (c *ChapterPostgreSQL) Create(ctx context.Context, tx *gorm.DB, chapter *models.Chapter) error {
	return c.getDB(tx).WithContext(ctx).Create(chapter).Error
}

func (c *ChapterPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Chapter, error) {
	var chapter models.Chapter
	if err := c.getDB(tx).WithContext(ctx).First(&chapter, id).Error; err != nil {
		return nil, err
	}
	return &chapter, nil
}

func (c *ChapterPostgreSQL) Update(ctx context.Context, tx *gorm.DB, chapter *models.Chapter) error {
	return c.getDB(tx).WithContext(ctx).Save(chapter).Error
}

func (c *ChapterPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	return c.getDB(tx).WithContext(ctx).Delete(&models.Chapter{}, id).Error
}

func (c *ChapterPostgreSQL) GetBySubject(ctx context.Context, tx *gorm.DB, subjectID uint) ([]*models.Chapter, error) {
	var chapters []*models.Chapter
	err := c.getDB(tx).WithContext(ctx).
		Where("subject_id = ?", subjectID).
		Order("position ASC").
		Find(&chapters).Error
	if err != nil {
		return nil, err
	}
	return chapters, nil
}

func (c *ChapterPostgreSQL) GetIDsBySubject(ctx context.Context, tx *gorm.DB, subjectID uint) ([]uint, error) {
	var ids []uint
	err := c.getDB(tx).WithContext(ctx).
		Model(&models.Chapter{}).
		Where("subject_id = ?", subjectID).
		Order("position ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
