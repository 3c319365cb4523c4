package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptCompleted  AttemptStatus = "completed"
	AttemptTimedOut   AttemptStatus = "timed_out"
)

// AnswerMap maps a question id to the selected option index.
type AnswerMap map[uint]int

// QuizAttempt records one student's submission for one quiz. The composite
// unique index is the authoritative attempt gate: the database rejects a
// second row for the same (quiz, student) pair regardless of request
// interleaving.
type QuizAttempt struct {
	ID        uint          `json:"id" gorm:"primaryKey"`
	QuizID    uint          `json:"quiz_id" gorm:"not null;uniqueIndex:idx_quiz_student"`
	StudentID string        `json:"student_id" gorm:"not null;size:255;uniqueIndex:idx_quiz_student"`
	Status    AttemptStatus `json:"status" gorm:"not null;default:in_progress;index;size:20"`

	// Timing
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`

	// Scoring
	Score      int     `json:"score"`
	TotalMarks int     `json:"total_marks"`
	Percentage float64 `json:"percentage"`
	Passed     bool    `json:"passed"`

	// Raw submitted answer map kept verbatim for audit and review
	Answers datatypes.JSON `json:"answers" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Quiz    Quiz `json:"quiz,omitempty" gorm:"foreignKey:QuizID"`
	Student User `json:"-" gorm:"foreignKey:StudentID"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}

// SetAnswers serializes the answer map into the JSONB column.
func (a *QuizAttempt) SetAnswers(answers AnswerMap) error {
	raw, err := json.Marshal(answers)
	if err != nil {
		return err
	}
	a.Answers = datatypes.JSON(raw)
	return nil
}

// GetAnswers deserializes the stored answer map. A missing column yields an
// empty map, not an error.
func (a *QuizAttempt) GetAnswers() (AnswerMap, error) {
	if len(a.Answers) == 0 {
		return AnswerMap{}, nil
	}
	var answers AnswerMap
	if err := json.Unmarshal(a.Answers, &answers); err != nil {
		return nil, err
	}
	return answers, nil
}
