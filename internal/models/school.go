package models

import (
	"time"
)

type Class struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Name        string  `json:"name" gorm:"uniqueIndex;not null;size:100"`
	Description *string `json:"description" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Students []User    `json:"students,omitempty" gorm:"foreignKey:ClassID"`
	Subjects []Subject `json:"subjects,omitempty" gorm:"foreignKey:ClassID"`
}

func (Class) TableName() string {
	return "classes"
}

type Subject struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Name        string  `json:"name" gorm:"not null;size:100"`
	Description *string `json:"description" gorm:"type:text"`
	ClassID     uint    `json:"class_id" gorm:"not null;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Class    Class     `json:"class,omitempty" gorm:"foreignKey:ClassID"`
	Chapters []Chapter `json:"chapters,omitempty" gorm:"foreignKey:SubjectID"`
}

func (Subject) TableName() string {
	return "subjects"
}

type Chapter struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	Name      string `json:"name" gorm:"not null;size:200"`
	Position  int    `json:"position" gorm:"not null;default:0"`
	SubjectID uint   `json:"subject_id" gorm:"not null;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Subject Subject `json:"subject,omitempty" gorm:"foreignKey:SubjectID"`
}

func (Chapter) TableName() string {
	return "chapters"
}
