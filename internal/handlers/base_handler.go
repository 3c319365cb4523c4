package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/schoolsync/lms-service/internal/services"
	"github.com/schoolsync/lms-service/internal/utils"
	"github.com/schoolsync/lms-service/internal/validator"
)

type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type SuccessResponse struct {
	Data interface{} `json:"data"`
}

// BaseHandler carries the shared handler plumbing: logging and the mapping
// from service errors to HTTP responses.
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.FromContext(c, h.logger).Info(msg, args...)
}

// parseIDParam parses a numeric path parameter; it writes the 400 response
// itself and returns 0 on failure.
func (h *BaseHandler) parseIDParam(c *gin.Context, name string) uint {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid " + name + " parameter",
		})
		return 0
	}
	return uint(id)
}

// requireUserID extracts the authenticated user id set by the auth
// middleware; it writes the 401 response itself and returns "" on failure.
func (h *BaseHandler) requireUserID(c *gin.Context) string {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "User not authenticated",
		})
		return ""
	}
	id, ok := userID.(string)
	if !ok || id == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid user identity",
		})
		return ""
	}
	return id
}

// handleServiceError maps service errors onto the HTTP error taxonomy.
// Anything unrecognized is an internal error and is never echoed to the
// caller verbatim.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	var permissionErr *services.PermissionError
	var businessErr *services.BusinessRuleError

	switch {
	case errors.As(err, &validationErrs):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_failed",
			Message: "Request validation failed",
			Details: validationErrs,
		})
	case errors.Is(err, services.ErrAlreadyAttempted):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "already_attempted",
			Message: "You have already attempted this quiz",
		})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "invalid_credentials",
			Message: "Invalid roll number or password",
		})
	case errors.Is(err, services.ErrDuplicateRollNumber),
		errors.Is(err, services.ErrDuplicateEmail):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "duplicate",
			Message: err.Error(),
		})
	case errors.Is(err, services.ErrQuizNotActive),
		errors.Is(err, services.ErrQuizDueDatePassed),
		errors.Is(err, services.ErrQuizHasNoQuestions):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "quiz_unavailable",
			Message: err.Error(),
		})
	case services.IsNotFoundError(err):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: err.Error(),
		})
	case errors.As(err, &permissionErr):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: "You do not have access to this resource",
		})
	case errors.As(err, &businessErr):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   businessErr.Rule,
			Message: businessErr.Message,
		})
	default:
		utils.FromContext(c, h.logger).Error("Unhandled service error", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
	}
}
