package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/schoolsync/lms-service/internal/models"
	"github.com/schoolsync/lms-service/internal/services"
	"github.com/schoolsync/lms-service/internal/utils"
)

type AttemptHandler struct {
	BaseHandler
	evaluator services.EvaluatorService
}

func NewAttemptHandler(evaluator services.EvaluatorService, logger utils.Logger) *AttemptHandler {
	return &AttemptHandler{
		BaseHandler: NewBaseHandler(logger),
		evaluator:   evaluator,
	}
}

// startQuizResponse pairs the quiz (answer keys stripped by serialization)
// with the attempt timing the client timer runs against.
type startQuizResponse struct {
	Quiz    *models.Quiz        `json:"quiz"`
	Attempt *models.QuizAttempt `json:"attempt"`
}

// StartQuiz opens an attempt for the authenticated student
// @Summary Start a quiz attempt
// @Tags attempts
// @Produce json
// @Param id path uint true "Quiz ID"
// @Success 200 {object} startQuizResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /quizzes/{id}/start [post]
func (h *AttemptHandler) StartQuiz(c *gin.Context) {
	quizID := h.parseIDParam(c, "id")
	if quizID == 0 {
		return
	}

	studentID := h.requireUserID(c)
	if studentID == "" {
		return
	}

	h.LogRequest(c, "Starting quiz attempt", "quiz_id", quizID)

	quiz, attempt, err := h.evaluator.StartQuiz(c.Request.Context(), studentID, quizID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, startQuizResponse{Quiz: quiz, Attempt: attempt})
}

// SubmitQuiz scores the submitted answers
// @Summary Submit quiz answers
// @Tags attempts
// @Accept json
// @Produce json
// @Param id path uint true "Quiz ID"
// @Param submission body models.QuizSubmitRequest true "Answer map"
// @Success 200 {object} models.SubmitResult
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /quizzes/{id}/submit [post]
func (h *AttemptHandler) SubmitQuiz(c *gin.Context) {
	quizID := h.parseIDParam(c, "id")
	if quizID == 0 {
		return
	}

	studentID := h.requireUserID(c)
	if studentID == "" {
		return
	}

	var req models.QuizSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Submitting quiz attempt", "quiz_id", quizID)

	result, err := h.evaluator.Submit(c.Request.Context(), studentID, quizID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetAttempt returns one attempt; students only see their own.
func (h *AttemptHandler) GetAttempt(c *gin.Context) {
	attemptID := h.parseIDParam(c, "id")
	if attemptID == 0 {
		return
	}

	actorID := h.requireUserID(c)
	if actorID == "" {
		return
	}

	attempt, err := h.evaluator.GetAttempt(c.Request.Context(), actorID, attemptID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, attempt)
}

// ListMyAttempts returns the authenticated student's finished attempts.
func (h *AttemptHandler) ListMyAttempts(c *gin.Context) {
	studentID := h.requireUserID(c)
	if studentID == "" {
		return
	}

	attempts, err := h.evaluator.ListStudentAttempts(c.Request.Context(), studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: attempts})
}
