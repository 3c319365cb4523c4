package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/schoolsync/lms-service/internal/config"
	"github.com/schoolsync/lms-service/internal/models"
	"github.com/schoolsync/lms-service/internal/repositories"
	"github.com/schoolsync/lms-service/internal/services"
	"github.com/schoolsync/lms-service/internal/utils"
)

type HandlerManager struct {
	userHandler     *UserHandler
	contentHandler  *ContentHandler
	quizHandler     *QuizHandler
	attemptHandler  *AttemptHandler
	progressHandler *ProgressHandler
	authMiddleware  *CasdoorAuthMiddleware
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	logger utils.Logger,
	casdoorConfig config.CasdoorConfig,
	userRepo repositories.UserRepository,
) *HandlerManager {
	authMiddleware := NewCasdoorAuthMiddleware(casdoorConfig, userRepo)

	return &HandlerManager{
		userHandler:     NewUserHandler(serviceManager.UserService(), logger),
		contentHandler:  NewContentHandler(serviceManager.ContentService(), logger),
		quizHandler:     NewQuizHandler(serviceManager.QuizService(), logger),
		attemptHandler:  NewAttemptHandler(serviceManager.EvaluatorService(), logger),
		progressHandler: NewProgressHandler(serviceManager.ProgressService(), serviceManager.ExportService(), logger),
		authMiddleware:  authMiddleware,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Public routes
	router.POST("/api/v1/auth/login", hm.userHandler.Login)

	// API v1 routes with authentication
	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.AuthMiddleware()) // Apply authentication to all API routes
	{
		// User and directory routes - Admins only for mutation
		users := v1.Group("/users")
		{
			users.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.userHandler.CreateUser)
			users.GET("", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin), hm.userHandler.ListUsers)
			users.GET("/:id", hm.userHandler.GetUser)
			users.PUT("/:id", hm.userHandler.UpdateUser)
			users.DELETE("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.userHandler.DeleteUser)
		}

		classes := v1.Group("/classes")
		{
			classes.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.userHandler.CreateClass)
			classes.GET("", hm.userHandler.ListClasses)
		}

		subjects := v1.Group("/subjects")
		{
			subjects.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.userHandler.CreateSubject)
			subjects.GET("", hm.userHandler.ListSubjects)
			subjects.POST("/:id/teachers", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.userHandler.AssignTeacher)
			subjects.GET("/:id/chapters", hm.userHandler.ListChapters)

			// Class performance roll-up and export - Teachers and Admins only
			subjects.GET("/:id/performance", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin), hm.progressHandler.GetClassPerformance)
			subjects.GET("/:id/performance/export", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin), hm.progressHandler.ExportClassPerformance)
		}

		chapters := v1.Group("/chapters")
		{
			chapters.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin), hm.userHandler.CreateChapter)
			chapters.GET("/:chapter_id/contents", hm.contentHandler.ListByChapter)
			chapters.GET("/:chapter_id/quizzes", hm.quizHandler.ListByChapter)
		}

		// Content routes
		contents := v1.Group("/contents")
		{
			contents.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin), hm.contentHandler.UploadContent)
			contents.GET("/:id", hm.contentHandler.GetContent)
			contents.GET("/:id/download", hm.contentHandler.GetDownloadURL)
			contents.DELETE("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin), hm.contentHandler.DeleteContent)

			// View tracking - Students only
			contents.POST("/:id/view", hm.authMiddleware.RequireRoleMiddleware(models.RoleStudent), hm.contentHandler.RecordView)
		}

		// Quiz routes
		quizzes := v1.Group("/quizzes")
		{
			// Authoring - Teachers and Admins only
			quizzes.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin), hm.quizHandler.CreateQuiz)
			quizzes.PUT("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin), hm.quizHandler.UpdateQuiz)
			quizzes.POST("/:id/publish", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin), hm.quizHandler.PublishQuiz)
			quizzes.POST("/:id/close", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin), hm.quizHandler.CloseQuiz)
			quizzes.POST("/:id/questions", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin), hm.quizHandler.AddQuestion)
			quizzes.DELETE("/:id/questions/:question_id", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin), hm.quizHandler.DeleteQuestion)

			// View - All authenticated users; students only see active quizzes
			quizzes.GET("/:id", hm.quizHandler.GetQuiz)

			// Attempts - Students only, no admin bypass: nobody else may
			// create attempt rows
			quizzes.POST("/:id/start", hm.authMiddleware.RequireExactRoleMiddleware(models.RoleStudent), hm.attemptHandler.StartQuiz)
			quizzes.POST("/:id/submit", hm.authMiddleware.RequireExactRoleMiddleware(models.RoleStudent), hm.attemptHandler.SubmitQuiz)
		}

		// Attempt routes
		attempts := v1.Group("/attempts")
		{
			attempts.GET("/:id", hm.attemptHandler.GetAttempt)
		}

		// Student routes - Students only
		students := v1.Group("/students")
		{
			students.GET("/me/attempts", hm.authMiddleware.RequireRoleMiddleware(models.RoleStudent), hm.attemptHandler.ListMyAttempts)
			students.GET("/me/progress", hm.authMiddleware.RequireRoleMiddleware(models.RoleStudent), hm.progressHandler.GetMyProgress)

			// Teachers and Admins can inspect any student
			students.GET("/:student_id/progress", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin), hm.progressHandler.GetStudentProgress)
		}

		// Dashboard - Admins only
		dashboard := v1.Group("/dashboard")
		dashboard.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin))
		{
			dashboard.GET("/summary", hm.progressHandler.GetDashboardSummary)
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "lms-service",
		})
	})
}
