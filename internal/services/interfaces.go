package services

import (
	"context"
	"mime/multipart"

	"github.com/schoolsync/lms-service/internal/models"
	"github.com/schoolsync/lms-service/internal/repositories"
)

// UserService manages accounts, authentication and the class directory.
type UserService interface {
	// Login verifies roll number and password and returns the user on success.
	Login(ctx context.Context, req *models.LoginRequest) (*models.User, error)

	CreateUser(ctx context.Context, actorID string, req *models.UserCreateRequest) (*models.User, error)
	GetUser(ctx context.Context, userID string) (*models.User, error)
	UpdateUser(ctx context.Context, actorID, userID string, req *models.UserUpdateRequest) (*models.User, error)
	DeleteUser(ctx context.Context, actorID, userID string) error
	ListUsers(ctx context.Context, filters *repositories.UserFilters) ([]*models.User, int64, error)

	CreateClass(ctx context.Context, actorID string, req *models.ClassCreateRequest) (*models.Class, error)
	ListClasses(ctx context.Context) ([]*models.Class, error)
	CreateSubject(ctx context.Context, actorID string, req *models.SubjectCreateRequest) (*models.Subject, error)
	ListSubjects(ctx context.Context, classID uint) ([]*models.Subject, error)
	AssignTeacher(ctx context.Context, actorID, teacherID string, subjectID uint) error
	CreateChapter(ctx context.Context, actorID string, req *models.ChapterCreateRequest) (*models.Chapter, error)
	ListChapters(ctx context.Context, subjectID uint) ([]*models.Chapter, error)
}

// ContentService manages learning material and view tracking.
type ContentService interface {
	Upload(ctx context.Context, actorID string, req *models.ContentCreateRequest, file *multipart.FileHeader) (*models.ContentItem, error)
	GetContent(ctx context.Context, contentID uint) (*models.ContentItem, error)
	GetDownloadURL(ctx context.Context, contentID uint) (string, error)
	ListByChapter(ctx context.Context, chapterID uint) ([]*models.ContentItem, error)
	DeleteContent(ctx context.Context, actorID string, contentID uint) error

	// RecordView upserts the student's view row for a content item.
	// Repeated views accumulate time and never lower completion.
	RecordView(ctx context.Context, studentID string, contentID uint, req *models.ContentViewRequest) error
}

// QuizService manages quiz authoring and lifecycle.
type QuizService interface {
	CreateQuiz(ctx context.Context, actorID string, req *models.QuizCreateRequest) (*models.Quiz, error)
	GetQuiz(ctx context.Context, actorID string, quizID uint) (*models.Quiz, error)
	UpdateQuiz(ctx context.Context, actorID string, quizID uint, req *models.QuizUpdateRequest) (*models.Quiz, error)
	PublishQuiz(ctx context.Context, actorID string, quizID uint) error
	CloseQuiz(ctx context.Context, actorID string, quizID uint) error
	ListByChapter(ctx context.Context, chapterID uint) ([]*models.Quiz, error)

	AddQuestion(ctx context.Context, actorID string, quizID uint, req *models.QuestionCreateRequest) (*models.Question, error)
	DeleteQuestion(ctx context.Context, actorID string, quizID, questionID uint) error
}

// EvaluatorService runs quiz attempts: start, submit, score and gate.
type EvaluatorService interface {
	// StartQuiz opens an in-progress attempt and returns the quiz with its
	// questions, correct options stripped by serialization.
	StartQuiz(ctx context.Context, studentID string, quizID uint) (*models.Quiz, *models.QuizAttempt, error)

	// Submit evaluates the answers, persists the finalized attempt and
	// returns the scored result. A second submission for the same quiz
	// and student fails with ErrAlreadyAttempted.
	Submit(ctx context.Context, studentID string, quizID uint, req *models.QuizSubmitRequest) (*models.SubmitResult, error)

	GetAttempt(ctx context.Context, actorID string, attemptID uint) (*models.QuizAttempt, error)
	ListStudentAttempts(ctx context.Context, studentID string) ([]*models.AttemptSummary, error)
}

// ProgressService aggregates per-student and per-class learning metrics.
type ProgressService interface {
	StudentProgress(ctx context.Context, actorID, studentID string) ([]*models.SubjectProgress, error)
	ClassPerformance(ctx context.Context, actorID string, subjectID uint) (*models.ClassPerformance, error)
	DashboardSummary(ctx context.Context, actorID string) (*models.DashboardSummary, error)
}

// ExportService renders class performance as downloadable files.
type ExportService interface {
	ExportClassPerformanceXLSX(ctx context.Context, actorID string, subjectID uint) ([]byte, string, error)
	ExportClassPerformanceCSV(ctx context.Context, actorID string, subjectID uint) ([]byte, string, error)
}

// ServiceManager wires services over shared infrastructure.
type ServiceManager interface {
	UserService() UserService
	ContentService() ContentService
	QuizService() QuizService
	EvaluatorService() EvaluatorService
	ProgressService() ProgressService
	ExportService() ExportService

	// Health and lifecycle.
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
