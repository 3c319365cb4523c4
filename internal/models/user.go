package models

import (
	"time"
)

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleTeacher UserRole = "teacher"
	RoleAdmin   UserRole = "admin"
)

type User struct {
	ID         string   `json:"id" gorm:"primaryKey;size:255"`
	RollNumber string   `json:"roll_number" gorm:"uniqueIndex;not null;size:50"`
	FullName   string   `json:"full_name" gorm:"not null;size:100"`
	Email      string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Role       UserRole `json:"role" gorm:"not null;index;size:20"`

	// Bcrypt hash, never serialized
	PasswordHash string `json:"-" gorm:"not null;size:255"`

	// Students only; teachers reach classes through subject assignments
	ClassID *uint  `json:"class_id" gorm:"index"`
	Class   *Class `json:"class,omitempty" gorm:"foreignKey:ClassID"`

	AvatarURL *string `json:"avatar_url" gorm:"size:500"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// TeacherSubject assigns a teacher to a subject (many-to-many).
type TeacherSubject struct {
	TeacherID string `json:"teacher_id" gorm:"primaryKey;size:255"`
	SubjectID uint   `json:"subject_id" gorm:"primaryKey"`

	CreatedAt time.Time `json:"created_at"`

	Teacher User    `json:"-" gorm:"foreignKey:TeacherID"`
	Subject Subject `json:"-" gorm:"foreignKey:SubjectID"`
}

func (TeacherSubject) TableName() string {
	return "teacher_subjects"
}
