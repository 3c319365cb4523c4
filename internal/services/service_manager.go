package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/schoolsync/lms-service/internal/cache"
	"github.com/schoolsync/lms-service/internal/events"
	"github.com/schoolsync/lms-service/internal/repositories"
	"github.com/schoolsync/lms-service/internal/storage"
	"github.com/schoolsync/lms-service/internal/validator"
)

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	EnableDebugLogging bool
	LogLevel           slog.Level

	// Global settings
	DefaultTimeout time.Duration
}

// ServiceDependencies bundles the shared infrastructure every service is
// built over. Storage and Publisher may be nil; the owning services degrade
// to url-only content and dropped events respectively.
type ServiceDependencies struct {
	DB        *gorm.DB
	Repo      repositories.Repository
	Logger    *slog.Logger
	Validator *validator.BusinessValidator
	Cache     *cache.CacheManager
	Storage   storage.Provider
	Publisher events.Publisher
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	deps   ServiceDependencies
	config ServiceManagerConfig

	// Service instances
	userService      UserService
	contentService   ContentService
	quizService      QuizService
	evaluatorService EvaluatorService
	progressService  ProgressService
	exportService    ExportService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(deps ServiceDependencies, config ServiceManagerConfig) ServiceManager {
	return &serviceManager{
		deps:   deps,
		config: config,
	}
}

// NewDefaultServiceManager creates a service manager with default configuration
func NewDefaultServiceManager(deps ServiceDependencies) ServiceManager {
	return NewServiceManager(deps, ServiceManagerConfig{
		EnableDebugLogging: false,
		LogLevel:           slog.LevelInfo,
		DefaultTimeout:     30 * time.Second,
	})
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	if sm.deps.DB == nil || sm.deps.Repo == nil {
		return fmt.Errorf("database and repository are required")
	}

	sm.deps.Logger.Info("Initializing service manager")

	sm.userService = NewUserService(sm.deps.Repo, sm.deps.DB, sm.deps.Logger, sm.deps.Validator, sm.deps.Cache)
	sm.contentService = NewContentService(sm.deps.Repo, sm.deps.DB, sm.deps.Logger, sm.deps.Validator, sm.deps.Cache, sm.deps.Storage, sm.deps.Publisher)
	sm.quizService = NewQuizService(sm.deps.Repo, sm.deps.DB, sm.deps.Logger, sm.deps.Validator, sm.deps.Cache)
	sm.evaluatorService = NewEvaluatorService(sm.deps.Repo, sm.deps.DB, sm.deps.Logger, sm.deps.Validator, sm.deps.Cache, sm.deps.Publisher)
	sm.progressService = NewProgressService(sm.deps.Repo, sm.deps.DB, sm.deps.Logger, sm.deps.Cache)
	sm.exportService = NewExportService(sm.progressService, sm.deps.Logger)

	sm.initialized = true
	sm.deps.Logger.Info("Service manager initialized successfully")

	return nil
}

// Service getters

func (sm *serviceManager) UserService() UserService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.userService
}

func (sm *serviceManager) ContentService() ContentService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.contentService
}

func (sm *serviceManager) QuizService() QuizService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.quizService
}

func (sm *serviceManager) EvaluatorService() EvaluatorService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.evaluatorService
}

func (sm *serviceManager) ProgressService() ProgressService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.progressService
}

func (sm *serviceManager) ExportService() ExportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.exportService
}

// Health and lifecycle

func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.deps.Repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}
	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.deps.Logger.Info("Shutting down service manager")

	if sm.deps.Publisher != nil {
		if err := sm.deps.Publisher.Close(); err != nil {
			sm.deps.Logger.Error("Failed to close event publisher", "error", err)
		}
	}

	if err := sm.deps.Repo.Close(); err != nil {
		sm.deps.Logger.Error("Failed to close repository", "error", err)
	}

	sm.shutdown = true
	sm.deps.Logger.Info("Service manager shut down completed")

	return nil
}

// WithTimeout creates a context with the default timeout
func (sm *serviceManager) WithTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, sm.config.DefaultTimeout)
}
