package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/schoolsync/lms-service/internal/models"
	"github.com/schoolsync/lms-service/internal/services"
	"github.com/schoolsync/lms-service/internal/utils"
)

type QuizHandler struct {
	BaseHandler
	quizService services.QuizService
}

func NewQuizHandler(quizService services.QuizService, logger utils.Logger) *QuizHandler {
	return &QuizHandler{
		BaseHandler: NewBaseHandler(logger),
		quizService: quizService,
	}
}

// CreateQuiz creates a draft quiz, optionally with inline questions
// @Summary Create quiz
// @Tags quizzes
// @Accept json
// @Produce json
// @Param quiz body models.QuizCreateRequest true "Quiz data"
// @Success 201 {object} models.Quiz
// @Failure 400 {object} ErrorResponse
// @Router /quizzes [post]
func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	actorID := h.requireUserID(c)
	if actorID == "" {
		return
	}

	var req models.QuizCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Creating quiz", "chapter_id", req.ChapterID)

	quiz, err := h.quizService.CreateQuiz(c.Request.Context(), actorID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, quiz)
}

func (h *QuizHandler) GetQuiz(c *gin.Context) {
	quizID := h.parseIDParam(c, "id")
	if quizID == 0 {
		return
	}
	actorID := h.requireUserID(c)
	if actorID == "" {
		return
	}

	quiz, err := h.quizService.GetQuiz(c.Request.Context(), actorID, quizID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, quiz)
}

func (h *QuizHandler) UpdateQuiz(c *gin.Context) {
	quizID := h.parseIDParam(c, "id")
	if quizID == 0 {
		return
	}
	actorID := h.requireUserID(c)
	if actorID == "" {
		return
	}

	var req models.QuizUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Updating quiz", "quiz_id", quizID)

	quiz, err := h.quizService.UpdateQuiz(c.Request.Context(), actorID, quizID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, quiz)
}

// PublishQuiz moves a draft quiz to active
func (h *QuizHandler) PublishQuiz(c *gin.Context) {
	quizID := h.parseIDParam(c, "id")
	if quizID == 0 {
		return
	}
	actorID := h.requireUserID(c)
	if actorID == "" {
		return
	}

	h.LogRequest(c, "Publishing quiz", "quiz_id", quizID)

	if err := h.quizService.PublishQuiz(c.Request.Context(), actorID, quizID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "active"})
}

// CloseQuiz moves an active quiz to closed
func (h *QuizHandler) CloseQuiz(c *gin.Context) {
	quizID := h.parseIDParam(c, "id")
	if quizID == 0 {
		return
	}
	actorID := h.requireUserID(c)
	if actorID == "" {
		return
	}

	h.LogRequest(c, "Closing quiz", "quiz_id", quizID)

	if err := h.quizService.CloseQuiz(c.Request.Context(), actorID, quizID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "closed"})
}

func (h *QuizHandler) ListByChapter(c *gin.Context) {
	chapterID := h.parseIDParam(c, "chapter_id")
	if chapterID == 0 {
		return
	}

	quizzes, err := h.quizService.ListByChapter(c.Request.Context(), chapterID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: quizzes})
}

func (h *QuizHandler) AddQuestion(c *gin.Context) {
	quizID := h.parseIDParam(c, "id")
	if quizID == 0 {
		return
	}
	actorID := h.requireUserID(c)
	if actorID == "" {
		return
	}

	var req models.QuestionCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	question, err := h.quizService.AddQuestion(c.Request.Context(), actorID, quizID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, question)
}

func (h *QuizHandler) DeleteQuestion(c *gin.Context) {
	quizID := h.parseIDParam(c, "id")
	if quizID == 0 {
		return
	}
	questionID := h.parseIDParam(c, "question_id")
	if questionID == 0 {
		return
	}
	actorID := h.requireUserID(c)
	if actorID == "" {
		return
	}

	if err := h.quizService.DeleteQuestion(c.Request.Context(), actorID, quizID, questionID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
