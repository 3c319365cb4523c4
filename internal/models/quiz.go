package models

import (
	"time"

	"gorm.io/datatypes"
)

type QuizType string

const (
	QuizChapter QuizType = "chapter"
	QuizAnnual  QuizType = "annual"
)

type QuizStatus string

const (
	QuizDraft  QuizStatus = "draft"
	QuizActive QuizStatus = "active"
	QuizClosed QuizStatus = "closed"
)

type Quiz struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	Title     string     `json:"title" gorm:"not null;size:200"`
	Type      QuizType   `json:"type" gorm:"not null;default:chapter;size:20"`
	Status    QuizStatus `json:"status" gorm:"not null;default:draft;index;size:20"`
	ChapterID uint       `json:"chapter_id" gorm:"not null;index"`

	TimeLimit int        `json:"time_limit" gorm:"not null"` // minutes
	DueDate   *time.Time `json:"due_date"`

	CreatedBy string `json:"created_by" gorm:"not null;size:255;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Chapter   Chapter    `json:"chapter,omitempty" gorm:"foreignKey:ChapterID"`
	Questions []Question `json:"questions,omitempty" gorm:"foreignKey:QuizID"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

type Question struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	QuizID uint   `json:"quiz_id" gorm:"not null;index"`
	Text   string `json:"text" gorm:"not null;type:text"`

	// Ordered option texts, stored as a JSON array
	Options datatypes.JSON `json:"options" gorm:"type:jsonb;not null"`

	CorrectOption int `json:"-" gorm:"not null"` // index into Options, never serialized to students
	Marks         int `json:"marks" gorm:"not null;default:1"`
	Position      int `json:"position" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Quiz Quiz `json:"-" gorm:"foreignKey:QuizID"`
}

func (Question) TableName() string {
	return "questions"
}
