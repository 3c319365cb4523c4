package validator

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/schoolsync/lms-service/internal/models"
)

// ValidationError represents a business validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

// Validate validates a struct against its validate tags
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	var errs ValidationErrors

	err := bv.validate.Struct(s)
	if err != nil {
		for _, fieldErr := range err.(validator.ValidationErrors) {
			errs = append(errs, ValidationError{
				Field:   fieldErr.Field(),
				Message: bv.getErrorMessage(fieldErr),
				Value:   fieldErr.Value(),
				Rule:    fieldErr.Tag(),
			})
		}
	}

	return errs
}

// ValidateQuizCreate validates quiz creation business rules
func (bv *BusinessValidator) ValidateQuizCreate(req *models.QuizCreateRequest) ValidationErrors {
	var errs ValidationErrors

	errs = append(errs, bv.Validate(req)...)

	for i, q := range req.Questions {
		if q.CorrectOption < 0 || q.CorrectOption >= len(q.Options) {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("questions[%d].correct_option", i),
				Message: "must index an existing option",
				Value:   q.CorrectOption,
				Rule:    "business_logic",
			})
		}
	}

	return errs
}

// ValidateSubmission validates a quiz submission body
func (bv *BusinessValidator) ValidateSubmission(req *models.QuizSubmitRequest) ValidationErrors {
	var errs ValidationErrors

	if req.Answers == nil {
		errs = append(errs, ValidationError{
			Field:   "answers",
			Message: "is required",
			Rule:    "required",
		})
		return errs
	}

	for questionID, option := range req.Answers {
		if option < 0 {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("answers[%d]", questionID),
				Message: "option index cannot be negative",
				Value:   option,
				Rule:    "business_logic",
			})
		}
	}

	return errs
}

// ValidateQuizStatusTransition validates quiz status transitions
func (bv *BusinessValidator) ValidateQuizStatusTransition(current, next models.QuizStatus, questionCount int) ValidationErrors {
	var errs ValidationErrors

	allowedTransitions := map[models.QuizStatus][]models.QuizStatus{
		models.QuizDraft:  {models.QuizActive},
		models.QuizActive: {models.QuizClosed},
		models.QuizClosed: {models.QuizActive},
	}

	allowed := false
	for _, s := range allowedTransitions[current] {
		if next == s {
			allowed = true
			break
		}
	}

	if !allowed {
		errs = append(errs, ValidationError{
			Field:   "status",
			Message: fmt.Sprintf("cannot transition from %s to %s", current, next),
			Value:   next,
			Rule:    "status_transition",
		})
	}

	// Publishing requires at least one question
	if next == models.QuizActive && questionCount == 0 {
		errs = append(errs, ValidationError{
			Field:   "questions",
			Message: "quiz must have at least one question before publishing",
			Value:   questionCount,
			Rule:    "business_logic",
		})
	}

	return errs
}

// registerBusinessRules registers custom business rule validators
func (bv *BusinessValidator) registerBusinessRules() {
	bv.validate.RegisterValidation("user_role", func(fl validator.FieldLevel) bool {
		switch models.UserRole(fl.Field().String()) {
		case models.RoleStudent, models.RoleTeacher, models.RoleAdmin:
			return true
		}
		return false
	})

	bv.validate.RegisterValidation("content_type", func(fl validator.FieldLevel) bool {
		switch models.ContentType(fl.Field().String()) {
		case models.ContentTextbook, models.ContentPresentation, models.ContentVideo,
			models.ContentNote, models.ContentQuizMarker:
			return true
		}
		return false
	})

	bv.validate.RegisterValidation("quiz_type", func(fl validator.FieldLevel) bool {
		switch models.QuizType(fl.Field().String()) {
		case models.QuizChapter, models.QuizAnnual:
			return true
		}
		return false
	})

	bv.validate.RegisterValidation("quiz_status", func(fl validator.FieldLevel) bool {
		switch models.QuizStatus(fl.Field().String()) {
		case models.QuizDraft, models.QuizActive, models.QuizClosed:
			return true
		}
		return false
	})

	// Title validation (1-200 characters)
	bv.validate.RegisterValidation("quiz_title", func(fl validator.FieldLevel) bool {
		title := strings.TrimSpace(fl.Field().String())
		return len(title) >= 1 && len(title) <= 200
	})

	// Time limit validation (1-300 minutes)
	bv.validate.RegisterValidation("quiz_time_limit", func(fl validator.FieldLevel) bool {
		minutes := fl.Field().Int()
		return minutes >= 1 && minutes <= 300
	})

	// Marks validation (1-100 points)
	bv.validate.RegisterValidation("question_marks", func(fl validator.FieldLevel) bool {
		marks := fl.Field().Int()
		return marks >= 1 && marks <= 100
	})

	// Due date validation (must be in future)
	bv.validate.RegisterValidation("future_date", func(fl validator.FieldLevel) bool {
		field := fl.Field()

		if field.Kind() == reflect.Ptr && field.IsNil() {
			return true // Optional field
		}

		dueDate, ok := field.Interface().(time.Time)
		if !ok {
			return false
		}
		return dueDate.After(time.Now())
	})
}

// getErrorMessage returns user-friendly error messages
func (bv *BusinessValidator) getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s", err.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", err.Param())
	case "user_role":
		return "must be student, teacher or admin"
	case "content_type":
		return "must be a valid content type"
	case "quiz_type":
		return "must be chapter or annual"
	case "quiz_status":
		return "must be draft, active or closed"
	case "quiz_title":
		return "must be between 1 and 200 characters"
	case "quiz_time_limit":
		return "must be between 1 and 300 minutes"
	case "question_marks":
		return "must be between 1 and 100"
	case "future_date":
		return "must be in the future"
	default:
		return fmt.Sprintf("validation failed for rule '%s'", err.Tag())
	}
}
