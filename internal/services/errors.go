package services

import (
	"errors"
	"fmt"

	"github.com/schoolsync/lms-service/internal/validator"
)

// Sentinel errors returned by services; handlers map these to HTTP codes.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrClassNotFound   = errors.New("class not found")
	ErrSubjectNotFound = errors.New("subject not found")
	ErrChapterNotFound = errors.New("chapter not found")
	ErrContentNotFound = errors.New("content item not found")
	ErrQuizNotFound    = errors.New("quiz not found")
	ErrAttemptNotFound = errors.New("attempt not found")

	ErrQuizNotActive      = errors.New("quiz is not active")
	ErrQuizHasNoQuestions = errors.New("quiz has no questions")
	ErrQuizDueDatePassed  = errors.New("quiz due date has passed")

	// ErrAlreadyAttempted is the attempt-gate rejection: raised both by the
	// pre-check and by the storage-level unique constraint, which is the
	// authoritative signal.
	ErrAlreadyAttempted = errors.New("quiz already attempted")

	ErrInvalidCredentials  = errors.New("invalid roll number or password")
	ErrDuplicateRollNumber = errors.New("roll number already exists")
	ErrDuplicateEmail      = errors.New("email already exists")
)

// PermissionError indicates the caller lacks access to the resource.
type PermissionError struct {
	UserID   string
	Resource string
	Action   string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %s cannot %s %s", e.UserID, e.Action, e.Resource)
}

func NewPermissionError(userID, action, resource string) *PermissionError {
	return &PermissionError{UserID: userID, Action: action, Resource: resource}
}

// BusinessRuleError indicates a domain rule rejected the operation.
type BusinessRuleError struct {
	Rule    string
	Message string
}

func (e *BusinessRuleError) Error() string {
	return e.Message
}

func NewBusinessRuleError(rule, message string) *BusinessRuleError {
	return &BusinessRuleError{Rule: rule, Message: message}
}

// IsNotFoundError reports whether err is one of the not-found sentinels.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrClassNotFound) ||
		errors.Is(err, ErrSubjectNotFound) ||
		errors.Is(err, ErrChapterNotFound) ||
		errors.Is(err, ErrContentNotFound) ||
		errors.Is(err, ErrQuizNotFound) ||
		errors.Is(err, ErrAttemptNotFound)
}

// IsPermissionError reports whether err carries a PermissionError.
func IsPermissionError(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}

// IsValidationError reports whether err carries field validation errors.
func IsValidationError(err error) bool {
	var ve validator.ValidationErrors
	return errors.As(err, &ve)
}
