package validator

import (
	"testing"
	"time"

	"github.com/schoolsync/lms-service/internal/models"
)

func TestValidateSubmission(t *testing.T) {
	bv := NewBusinessValidator()

	t.Run("nil answers rejected", func(t *testing.T) {
		errs := bv.ValidateSubmission(&models.QuizSubmitRequest{})
		if len(errs) != 1 || errs[0].Field != "answers" {
			t.Errorf("expected answers error, got %v", errs)
		}
	})

	t.Run("empty answer map is allowed", func(t *testing.T) {
		errs := bv.ValidateSubmission(&models.QuizSubmitRequest{Answers: models.AnswerMap{}})
		if len(errs) != 0 {
			t.Errorf("expected no errors, got %v", errs)
		}
	})

	t.Run("negative option index rejected", func(t *testing.T) {
		errs := bv.ValidateSubmission(&models.QuizSubmitRequest{Answers: models.AnswerMap{1: -1, 2: 0}})
		if len(errs) != 1 {
			t.Errorf("expected 1 error, got %v", errs)
		}
	})
}

func TestValidateQuizCreate(t *testing.T) {
	bv := NewBusinessValidator()

	valid := func() *models.QuizCreateRequest {
		due := time.Now().Add(24 * time.Hour)
		return &models.QuizCreateRequest{
			Title:     "Chapter 1 Quiz",
			Type:      models.QuizChapter,
			ChapterID: 1,
			TimeLimit: 15,
			DueDate:   &due,
			Questions: []models.QuestionCreateRequest{
				{Text: "2+2?", Options: []string{"3", "4"}, CorrectOption: 1, Marks: 1},
			},
		}
	}

	t.Run("valid request passes", func(t *testing.T) {
		if errs := bv.ValidateQuizCreate(valid()); len(errs) != 0 {
			t.Errorf("expected no errors, got %v", errs)
		}
	})

	t.Run("correct option must index an option", func(t *testing.T) {
		req := valid()
		req.Questions[0].CorrectOption = 2
		errs := bv.ValidateQuizCreate(req)
		if len(errs) != 1 || errs[0].Rule != "business_logic" {
			t.Errorf("expected business_logic error, got %v", errs)
		}
	})

	t.Run("time limit bounds", func(t *testing.T) {
		req := valid()
		req.TimeLimit = 500
		if errs := bv.ValidateQuizCreate(req); len(errs) == 0 {
			t.Error("expected time limit error")
		}
	})

	t.Run("due date must be in the future", func(t *testing.T) {
		req := valid()
		past := time.Now().Add(-time.Hour)
		req.DueDate = &past
		if errs := bv.ValidateQuizCreate(req); len(errs) == 0 {
			t.Error("expected due date error")
		}
	})
}

func TestValidateQuizStatusTransition(t *testing.T) {
	bv := NewBusinessValidator()

	tests := []struct {
		name          string
		current, next models.QuizStatus
		questionCount int
		wantErrs      int
	}{
		{"draft to active", models.QuizDraft, models.QuizActive, 3, 0},
		{"publish without questions", models.QuizDraft, models.QuizActive, 0, 1},
		{"draft to closed skips active", models.QuizDraft, models.QuizClosed, 3, 1},
		{"active to closed", models.QuizActive, models.QuizClosed, 3, 0},
		{"closed reopens", models.QuizClosed, models.QuizActive, 3, 0},
		{"active back to draft", models.QuizActive, models.QuizDraft, 3, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := bv.ValidateQuizStatusTransition(tt.current, tt.next, tt.questionCount)
			if len(errs) != tt.wantErrs {
				t.Errorf("expected %d errors, got %v", tt.wantErrs, errs)
			}
		})
	}
}

func TestValidateUserCreate(t *testing.T) {
	bv := NewBusinessValidator()

	t.Run("unknown role rejected", func(t *testing.T) {
		req := &models.UserCreateRequest{
			RollNumber: "R001",
			FullName:   "Student One",
			Email:      "one@school.test",
			Password:   "secret1",
			Role:       models.UserRole("proctor"),
		}
		errs := bv.Validate(req)
		if len(errs) != 1 || errs[0].Rule != "user_role" {
			t.Errorf("expected user_role error, got %v", errs)
		}
	})

	t.Run("short password rejected", func(t *testing.T) {
		req := &models.UserCreateRequest{
			RollNumber: "R001",
			FullName:   "Student One",
			Email:      "one@school.test",
			Password:   "abc",
			Role:       models.RoleStudent,
		}
		if errs := bv.Validate(req); len(errs) == 0 {
			t.Error("expected password error")
		}
	})
}
