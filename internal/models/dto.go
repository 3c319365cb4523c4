package models

import (
	"time"
)

// ===== Auth / User requests =====

type LoginRequest struct {
	RollNumber string `json:"roll_number" validate:"required,max=50"`
	Password   string `json:"password" validate:"required,min=6,max=72"`
}

type UserCreateRequest struct {
	RollNumber string   `json:"roll_number" validate:"required,min=1,max=50"`
	FullName   string   `json:"full_name" validate:"required,min=1,max=100"`
	Email      string   `json:"email" validate:"required,email,max=255"`
	Password   string   `json:"password" validate:"required,min=6,max=72"`
	Role       UserRole `json:"role" validate:"required,user_role"`
	ClassID    *uint    `json:"class_id"`
}

type UserUpdateRequest struct {
	FullName *string `json:"full_name" validate:"omitempty,min=1,max=100"`
	Email    *string `json:"email" validate:"omitempty,email,max=255"`
	Password *string `json:"password" validate:"omitempty,min=6,max=72"`
	ClassID  *uint   `json:"class_id"`
}

// ===== Directory requests =====

type ClassCreateRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
}

type SubjectCreateRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	ClassID     uint    `json:"class_id" validate:"required"`
}

type TeacherAssignRequest struct {
	TeacherID string `json:"teacher_id" validate:"required"`
}

type ChapterCreateRequest struct {
	Name      string `json:"name" validate:"required,min=1,max=200"`
	Position  int    `json:"position" validate:"min=0"`
	SubjectID uint   `json:"subject_id" validate:"required"`
}

// ===== Content requests =====

// ContentCreateRequest arrives as multipart form data so a file can ride
// along; form tags drive the binding.
type ContentCreateRequest struct {
	Title     string      `json:"title" form:"title" validate:"required,min=1,max=200"`
	Type      ContentType `json:"type" form:"type" validate:"required,content_type"`
	ChapterID uint        `json:"chapter_id" form:"chapter_id" validate:"required"`
	URL       string      `json:"url" form:"url" validate:"omitempty,max=1000"`
}

// ContentViewRequest is the analytics ping sent while a student consumes
// a content item. All counters are cumulative deltas for this ping.
type ContentViewRequest struct {
	TimeSpent     int     `json:"time_spent" validate:"min=0,max=86400"` // seconds
	CompletionPct float64 `json:"completion_pct" validate:"min=0,max=100"`
}

// ===== Quiz requests =====

type QuestionCreateRequest struct {
	Text          string   `json:"text" validate:"required,min=1,max=2000"`
	Options       []string `json:"options" validate:"required,min=2,max=10,dive,required,max=500"`
	CorrectOption int      `json:"correct_option" validate:"min=0"`
	Marks         int      `json:"marks" validate:"required,question_marks"`
	Position      int      `json:"position" validate:"min=0"`
}

type QuizCreateRequest struct {
	Title     string                  `json:"title" validate:"required,quiz_title"`
	Type      QuizType                `json:"type" validate:"required,quiz_type"`
	ChapterID uint                    `json:"chapter_id" validate:"required"`
	TimeLimit int                     `json:"time_limit" validate:"required,quiz_time_limit"`
	DueDate   *time.Time              `json:"due_date" validate:"omitempty,future_date"`
	Questions []QuestionCreateRequest `json:"questions" validate:"omitempty,dive"`
}

type QuizUpdateRequest struct {
	Title     *string     `json:"title" validate:"omitempty,quiz_title"`
	Status    *QuizStatus `json:"status" validate:"omitempty,quiz_status"`
	TimeLimit *int        `json:"time_limit" validate:"omitempty,quiz_time_limit"`
	DueDate   *time.Time  `json:"due_date" validate:"omitempty,future_date"`
}

// QuizSubmitRequest carries the raw answer map; the student identity comes
// from the session, never from the body.
type QuizSubmitRequest struct {
	Answers AnswerMap `json:"answers" validate:"required"`
}

// SubmitResult is the evaluator output for one scored submission.
type SubmitResult struct {
	Score      int    `json:"score"`
	TotalMarks int    `json:"totalMarks"`
	Percentage int    `json:"percentage"`
	Passed     bool   `json:"passed"`
	Message    string `json:"message"`
}

// ===== Progress / analytics responses =====

type ContentProgress struct {
	Total         int `json:"total"`
	Viewed        int `json:"viewed"`
	Percentage    int `json:"percentage"`
	AvgCompletion int `json:"avg_completion"`
}

type QuizProgress struct {
	Total      int `json:"total"`
	Attempted  int `json:"attempted"`
	Percentage int `json:"percentage"`
	AvgScore   int `json:"avg_score"`
}

// SubjectProgress is one student's roll-up for one subject.
type SubjectProgress struct {
	SubjectID       uint            `json:"subject_id"`
	SubjectName     string          `json:"subject_name"`
	ContentProgress ContentProgress `json:"content_progress"`
	QuizProgress    QuizProgress    `json:"quiz_progress"`
}

// StudentPerformanceRow is one row of the flat per-student class table,
// used verbatim as CSV columns by the export feature.
type StudentPerformanceRow struct {
	StudentID        string `json:"student_id"`
	RollNumber       string `json:"roll_number"`
	FullName         string `json:"full_name"`
	Class            string `json:"class"`
	TotalContent     int    `json:"total_content"`
	ContentViewed    int    `json:"content_viewed"`
	ContentProgress  int    `json:"content_progress"`
	TotalQuizzes     int    `json:"total_quizzes"`
	QuizzesAttempted int    `json:"quizzes_attempted"`
	QuizProgress     int    `json:"quiz_progress"`
	AvgQuizScore     int    `json:"avg_quiz_score"`
	OverallProgress  int    `json:"overall_progress"`
}

type TopPerformer struct {
	StudentID  string `json:"student_id"`
	RollNumber string `json:"roll_number"`
	FullName   string `json:"full_name"`
	AvgScore   int    `json:"avg_score"`
}

// ClassPerformance is the teacher view for one assigned subject.
type ClassPerformance struct {
	SubjectID      uint                    `json:"subject_id"`
	SubjectName    string                  `json:"subject_name"`
	ClassName      string                  `json:"class_name"`
	TotalStudents  int                     `json:"total_students"`
	ActiveStudents int                     `json:"active_students"`
	EngagementRate int                     `json:"engagement_rate"`
	AvgQuizScore   int                     `json:"avg_quiz_score"`
	TopPerformers  []TopPerformer          `json:"top_performers"`
	Students       []StudentPerformanceRow `json:"students"`
}

// DashboardSummary backs the landing dashboards for all three roles; only
// the counters relevant to the caller's role are populated.
type DashboardSummary struct {
	TotalUsers    int64 `json:"total_users,omitempty"`
	TotalStudents int64 `json:"total_students,omitempty"`
	TotalTeachers int64 `json:"total_teachers,omitempty"`
	TotalClasses  int64 `json:"total_classes,omitempty"`
	TotalSubjects int64 `json:"total_subjects,omitempty"`
	TotalContent  int64 `json:"total_content,omitempty"`
	TotalQuizzes  int64 `json:"total_quizzes,omitempty"`
	TotalAttempts int64 `json:"total_attempts,omitempty"`
	AvgQuizScore  int   `json:"avg_quiz_score,omitempty"`
	PassRate      int   `json:"pass_rate,omitempty"`
}

// AttemptSummary is returned when listing a student's own attempts.
type AttemptSummary struct {
	AttemptID   uint       `json:"attempt_id"`
	QuizID      uint       `json:"quiz_id"`
	QuizTitle   string     `json:"quiz_title"`
	Score       int        `json:"score"`
	TotalMarks  int        `json:"total_marks"`
	Percentage  int        `json:"percentage"`
	Passed      bool       `json:"passed"`
	CompletedAt *time.Time `json:"completed_at"`
}
