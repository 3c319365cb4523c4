package repositories

import "context"

// Repository aggregates every per-entity repository behind one handle.
type Repository interface {
	// Directory domain
	User() UserRepository
	Class() ClassRepository
	Subject() SubjectRepository
	Chapter() ChapterRepository

	// Content domain
	Content() ContentRepository
	ContentView() ContentViewRepository

	// Quiz domain
	Quiz() QuizRepository
	Question() QuestionRepository
	Attempt() AttemptRepository

	// Dashboard domain
	Dashboard() DashboardRepository

	// Transaction support
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager manages repository lifecycle.
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
