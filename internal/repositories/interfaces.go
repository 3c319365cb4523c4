package repositories

import (
	"time"

	"github.com/schoolsync/lms-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type UserFilters struct {
	Role      *models.UserRole `json:"role"`
	ClassID   *uint            `json:"class_id"`
	Search    *string          `json:"search"` // matches name, email, roll number
	Limit     int              `json:"limit"`
	Offset    int              `json:"offset"`
	SortBy    string           `json:"sort_by"`    // "created_at", "full_name", "roll_number"
	SortOrder string           `json:"sort_order"` // "asc", "desc"
}

type ContentFilters struct {
	Type        *models.ContentType `json:"type"`
	ExcludeType *models.ContentType `json:"exclude_type"`
	ChapterID   *uint               `json:"chapter_id"`
	CreatedBy   *string             `json:"created_by"`
	Limit       int                 `json:"limit"`
	Offset      int                 `json:"offset"`
}

type QuizFilters struct {
	Status    *models.QuizStatus `json:"status"`
	Type      *models.QuizType   `json:"type"`
	ChapterID *uint              `json:"chapter_id"`
	CreatedBy *string            `json:"created_by"`
	Limit     int                `json:"limit"`
	Offset    int                `json:"offset"`
	SortBy    string             `json:"sort_by"`
	SortOrder string             `json:"sort_order"`
}

type AttemptFilters struct {
	Status    *models.AttemptStatus `json:"status"`
	StudentID *string               `json:"student_id"`
	QuizIDs   []uint                `json:"quiz_ids"`
	DateFrom  *time.Time            `json:"date_from"`
	DateTo    *time.Time            `json:"date_to"`
	Limit     int                   `json:"limit"`
	Offset    int                   `json:"offset"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

// ===== SHARED AGGREGATE STRUCTS =====

// ViewStats is the per-student roll-up over a set of content item ids.
type ViewStats struct {
	Viewed        int     `json:"viewed"`
	AvgCompletion float64 `json:"avg_completion"`
	TotalSeconds  int     `json:"total_seconds"`
}

// AttemptStats is the per-student roll-up over a set of quiz ids.
type AttemptStats struct {
	Attempted int     `json:"attempted"`
	AvgRatio  float64 `json:"avg_ratio"` // mean of score/total_marks over completed attempts, 0..1
}

// SubjectAttemptStats is the subject-wide roll-up across every student.
type SubjectAttemptStats struct {
	TotalAttempts  int     `json:"total_attempts"`
	ActiveStudents int     `json:"active_students"` // distinct students with >= 1 completed attempt
	AvgRatio       float64 `json:"avg_ratio"`
}

// StudentRatio pairs a student with their mean score ratio, for rankings.
type StudentRatio struct {
	StudentID string  `json:"student_id"`
	AvgRatio  float64 `json:"avg_ratio"`
}

// DirectoryCounts backs the admin dashboard summary.
type DirectoryCounts struct {
	Users    int64 `json:"users"`
	Students int64 `json:"students"`
	Teachers int64 `json:"teachers"`
	Classes  int64 `json:"classes"`
	Subjects int64 `json:"subjects"`
	Content  int64 `json:"content"`
	Quizzes  int64 `json:"quizzes"`
	Attempts int64 `json:"attempts"`
}
