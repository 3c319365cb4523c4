package services

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"gorm.io/gorm"

	"github.com/schoolsync/lms-service/internal/cache"
	"github.com/schoolsync/lms-service/internal/models"
	"github.com/schoolsync/lms-service/internal/validator"
)

func newTestQuizService(repo *mockRepository) *quizService {
	return &quizService{
		repo:      repo,
		logger:    slog.New(slog.NewTextHandler(os.Stdout, nil)),
		validator: validator.NewBusinessValidator(),
		cache:     cache.NewCacheManager(nil),
	}
}

func TestQuizService_GetQuiz_Visibility(t *testing.T) {
	ctx := context.Background()

	newRepo := func(quiz *models.Quiz, role models.UserRole) *mockRepository {
		return &mockRepository{
			quiz: &mockQuizRepo{getByIDWithQuestions: func(id uint) (*models.Quiz, error) {
				if quiz == nil {
					return nil, gorm.ErrRecordNotFound
				}
				return quiz, nil
			}},
			user: &mockUserRepo{getByID: func(id string) (*models.User, error) {
				return &models.User{ID: id, Role: role}, nil
			}},
		}
	}

	t.Run("missing quiz", func(t *testing.T) {
		s := newTestQuizService(newRepo(nil, models.RoleStudent))
		_, err := s.GetQuiz(ctx, "s1", 99)
		if !errors.Is(err, ErrQuizNotFound) {
			t.Errorf("expected ErrQuizNotFound, got %v", err)
		}
	})

	t.Run("student cannot see a draft", func(t *testing.T) {
		quiz := &models.Quiz{ID: 1, Status: models.QuizDraft}
		s := newTestQuizService(newRepo(quiz, models.RoleStudent))
		_, err := s.GetQuiz(ctx, "s1", 1)
		if !errors.Is(err, ErrQuizNotFound) {
			t.Errorf("expected ErrQuizNotFound, got %v", err)
		}
	})

	t.Run("student cannot see a closed quiz", func(t *testing.T) {
		quiz := &models.Quiz{ID: 1, Status: models.QuizClosed}
		s := newTestQuizService(newRepo(quiz, models.RoleStudent))
		_, err := s.GetQuiz(ctx, "s1", 1)
		if !errors.Is(err, ErrQuizNotFound) {
			t.Errorf("expected ErrQuizNotFound, got %v", err)
		}
	})

	t.Run("student sees an active quiz", func(t *testing.T) {
		quiz := &models.Quiz{ID: 1, Status: models.QuizActive}
		s := newTestQuizService(newRepo(quiz, models.RoleStudent))
		got, err := s.GetQuiz(ctx, "s1", 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.ID != 1 {
			t.Errorf("expected quiz 1, got %d", got.ID)
		}
	})

	t.Run("teacher sees a draft", func(t *testing.T) {
		quiz := &models.Quiz{ID: 1, Status: models.QuizDraft}
		s := newTestQuizService(newRepo(quiz, models.RoleTeacher))
		if _, err := s.GetQuiz(ctx, "t1", 1); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestQuizService_AddQuestion(t *testing.T) {
	ctx := context.Background()

	validReq := func() *models.QuestionCreateRequest {
		return &models.QuestionCreateRequest{
			Text:          "What is 2+2?",
			Options:       []string{"3", "4"},
			CorrectOption: 1,
			Marks:         2,
		}
	}

	t.Run("correct option must index an option", func(t *testing.T) {
		s := newTestQuizService(nil)
		req := validReq()
		req.CorrectOption = 2
		_, err := s.AddQuestion(ctx, "t1", 1, req)
		var bre *BusinessRuleError
		if !errors.As(err, &bre) {
			t.Fatalf("expected BusinessRuleError, got %v", err)
		}
	})

	t.Run("only draft quizzes accept questions", func(t *testing.T) {
		repo := &mockRepository{
			quiz: &mockQuizRepo{getByID: func(id uint) (*models.Quiz, error) {
				return &models.Quiz{ID: id, Status: models.QuizActive, CreatedBy: "t1"}, nil
			}},
		}
		s := newTestQuizService(repo)
		_, err := s.AddQuestion(ctx, "t1", 1, validReq())
		var bre *BusinessRuleError
		if !errors.As(err, &bre) {
			t.Fatalf("expected BusinessRuleError, got %v", err)
		}
		if bre.Rule != "quiz_locked" {
			t.Errorf("expected quiz_locked rule, got %q", bre.Rule)
		}
	})

	t.Run("non-creating teacher is rejected", func(t *testing.T) {
		repo := &mockRepository{
			quiz: &mockQuizRepo{getByID: func(id uint) (*models.Quiz, error) {
				return &models.Quiz{ID: id, Status: models.QuizDraft, CreatedBy: "t1"}, nil
			}},
			user: &mockUserRepo{getByID: func(id string) (*models.User, error) {
				return &models.User{ID: id, Role: models.RoleTeacher}, nil
			}},
		}
		s := newTestQuizService(repo)
		_, err := s.AddQuestion(ctx, "t2", 1, validReq())
		var pe *PermissionError
		if !errors.As(err, &pe) {
			t.Fatalf("expected PermissionError, got %v", err)
		}
	})

	t.Run("admin may edit another teacher's draft", func(t *testing.T) {
		var created *models.Question
		repo := &mockRepository{
			quiz: &mockQuizRepo{getByID: func(id uint) (*models.Quiz, error) {
				return &models.Quiz{ID: id, Status: models.QuizDraft, CreatedBy: "t1"}, nil
			}},
			user: &mockUserRepo{getByID: func(id string) (*models.User, error) {
				return &models.User{ID: id, Role: models.RoleAdmin}, nil
			}},
			question: &mockQuestionRepo{create: func(q *models.Question) error {
				created = q
				return nil
			}},
		}
		s := newTestQuizService(repo)
		question, err := s.AddQuestion(ctx, "a1", 1, validReq())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if created == nil || question.QuizID != 1 || question.Marks != 2 {
			t.Errorf("question not persisted as expected: %+v", question)
		}
	})
}

func TestQuizService_DeleteQuestion(t *testing.T) {
	ctx := context.Background()

	t.Run("question must belong to the quiz", func(t *testing.T) {
		repo := &mockRepository{
			quiz: &mockQuizRepo{getByID: func(id uint) (*models.Quiz, error) {
				return &models.Quiz{ID: id, Status: models.QuizDraft, CreatedBy: "t1"}, nil
			}},
			question: &mockQuestionRepo{getByID: func(id uint) (*models.Question, error) {
				return &models.Question{ID: id, QuizID: 7}, nil
			}},
		}
		s := newTestQuizService(repo)
		err := s.DeleteQuestion(ctx, "t1", 1, 5)
		if !errors.Is(err, ErrQuizNotFound) {
			t.Errorf("expected ErrQuizNotFound, got %v", err)
		}
	})

	t.Run("owned draft question is removed", func(t *testing.T) {
		var deleted uint
		repo := &mockRepository{
			quiz: &mockQuizRepo{getByID: func(id uint) (*models.Quiz, error) {
				return &models.Quiz{ID: id, Status: models.QuizDraft, CreatedBy: "t1"}, nil
			}},
			question: &mockQuestionRepo{
				getByID: func(id uint) (*models.Question, error) {
					return &models.Question{ID: id, QuizID: 1}, nil
				},
				delete: func(id uint) error {
					deleted = id
					return nil
				},
			},
		}
		s := newTestQuizService(repo)
		if err := s.DeleteQuestion(ctx, "t1", 1, 5); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if deleted != 5 {
			t.Errorf("expected question 5 deleted, got %d", deleted)
		}
	})
}

func TestQuizService_Transitions(t *testing.T) {
	ctx := context.Background()

	newRepo := func(quiz *models.Quiz, questionCount int64, updated **models.Quiz) *mockRepository {
		return &mockRepository{
			quiz: &mockQuizRepo{
				getByID: func(id uint) (*models.Quiz, error) { return quiz, nil },
				update: func(q *models.Quiz) error {
					*updated = q
					return nil
				},
			},
			question: &mockQuestionRepo{countByQuiz: func(quizID uint) (int64, error) {
				return questionCount, nil
			}},
		}
	}

	t.Run("publish requires at least one question", func(t *testing.T) {
		var updated *models.Quiz
		quiz := &models.Quiz{ID: 1, Status: models.QuizDraft, CreatedBy: "t1"}
		s := newTestQuizService(newRepo(quiz, 0, &updated))
		err := s.PublishQuiz(ctx, "t1", 1)
		if !IsValidationError(err) {
			t.Fatalf("expected validation error, got %v", err)
		}
		if updated != nil {
			t.Error("quiz must not be updated on a rejected transition")
		}
	})

	t.Run("publish activates a draft with questions", func(t *testing.T) {
		var updated *models.Quiz
		quiz := &models.Quiz{ID: 1, Status: models.QuizDraft, CreatedBy: "t1"}
		s := newTestQuizService(newRepo(quiz, 3, &updated))
		if err := s.PublishQuiz(ctx, "t1", 1); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if updated == nil || updated.Status != models.QuizActive {
			t.Errorf("expected active quiz persisted, got %+v", updated)
		}
	})

	t.Run("close rejects a draft", func(t *testing.T) {
		var updated *models.Quiz
		quiz := &models.Quiz{ID: 1, Status: models.QuizDraft, CreatedBy: "t1"}
		s := newTestQuizService(newRepo(quiz, 3, &updated))
		if err := s.CloseQuiz(ctx, "t1", 1); !IsValidationError(err) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("close ends an active quiz", func(t *testing.T) {
		var updated *models.Quiz
		quiz := &models.Quiz{ID: 1, Status: models.QuizActive, CreatedBy: "t1"}
		s := newTestQuizService(newRepo(quiz, 3, &updated))
		if err := s.CloseQuiz(ctx, "t1", 1); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if updated == nil || updated.Status != models.QuizClosed {
			t.Errorf("expected closed quiz persisted, got %+v", updated)
		}
	})
}
