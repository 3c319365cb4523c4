package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/schoolsync/lms-service/internal/cache"
	"github.com/schoolsync/lms-service/internal/models"
	"github.com/schoolsync/lms-service/internal/repositories"
	"github.com/schoolsync/lms-service/internal/validator"
)

type quizService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.BusinessValidator
	cache     *cache.CacheManager
}

func NewQuizService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, v *validator.BusinessValidator, cm *cache.CacheManager) QuizService {
	return &quizService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: v,
		cache:     cm,
	}
}

// CreateQuiz creates a draft quiz, with its questions when the request
// inlines them. The creator must teach the subject owning the chapter.
func (s *quizService) CreateQuiz(ctx context.Context, actorID string, req *models.QuizCreateRequest) (*models.Quiz, error) {
	if errs := s.validator.ValidateQuizCreate(req); len(errs) > 0 {
		return nil, errs
	}

	if err := s.checkChapterAccess(ctx, actorID, req.ChapterID); err != nil {
		return nil, err
	}

	quiz := &models.Quiz{
		Title:     req.Title,
		Type:      req.Type,
		Status:    models.QuizDraft,
		ChapterID: req.ChapterID,
		TimeLimit: req.TimeLimit,
		DueDate:   req.DueDate,
		CreatedBy: actorID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Quiz().Create(ctx, tx, quiz); err != nil {
			return fmt.Errorf("failed to create quiz: %w", err)
		}

		if len(req.Questions) == 0 {
			return nil
		}
		questions := make([]*models.Question, 0, len(req.Questions))
		for i, qr := range req.Questions {
			question, err := buildQuestion(quiz.ID, &qr, i)
			if err != nil {
				return err
			}
			questions = append(questions, question)
		}
		if err := s.repo.Question().CreateBatch(ctx, tx, questions); err != nil {
			return fmt.Errorf("failed to create questions: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Quiz created",
		"quiz_id", quiz.ID,
		"chapter_id", quiz.ChapterID,
		"questions", len(req.Questions),
		"created_by", actorID)

	return s.repo.Quiz().GetByIDWithQuestions(ctx, s.db, quiz.ID)
}

func (s *quizService) GetQuiz(ctx context.Context, actorID string, quizID uint) (*models.Quiz, error) {
	quiz, err := s.repo.Quiz().GetByIDWithQuestions(ctx, s.db, quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	actor, err := s.repo.User().GetByID(ctx, s.db, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get actor: %w", err)
	}

	// Students never see drafts or closed quizzes.
	if actor.Role == models.RoleStudent && quiz.Status != models.QuizActive {
		return nil, ErrQuizNotFound
	}

	return quiz, nil
}

func (s *quizService) UpdateQuiz(ctx context.Context, actorID string, quizID uint, req *models.QuizUpdateRequest) (*models.Quiz, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	quiz, err := s.getOwnedQuiz(ctx, actorID, quizID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		quiz.Title = *req.Title
	}
	if req.TimeLimit != nil {
		quiz.TimeLimit = *req.TimeLimit
	}
	if req.DueDate != nil {
		quiz.DueDate = req.DueDate
	}
	if req.Status != nil && *req.Status != quiz.Status {
		count, err := s.repo.Question().CountByQuiz(ctx, s.db, quizID)
		if err != nil {
			return nil, fmt.Errorf("failed to count questions: %w", err)
		}
		if errs := s.validator.ValidateQuizStatusTransition(quiz.Status, *req.Status, int(count)); len(errs) > 0 {
			return nil, errs
		}
		quiz.Status = *req.Status
	}

	if err := s.repo.Quiz().Update(ctx, s.db, quiz); err != nil {
		return nil, fmt.Errorf("failed to update quiz: %w", err)
	}

	cache.InvalidateQuizCache(ctx, s.cache, quizID, quiz.CreatedBy)
	return quiz, nil
}

func (s *quizService) PublishQuiz(ctx context.Context, actorID string, quizID uint) error {
	return s.transition(ctx, actorID, quizID, models.QuizActive)
}

func (s *quizService) CloseQuiz(ctx context.Context, actorID string, quizID uint) error {
	return s.transition(ctx, actorID, quizID, models.QuizClosed)
}

func (s *quizService) ListByChapter(ctx context.Context, chapterID uint) ([]*models.Quiz, error) {
	quizzes, err := s.repo.Quiz().GetByChapters(ctx, s.db, []uint{chapterID})
	if err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}
	return quizzes, nil
}

func (s *quizService) AddQuestion(ctx context.Context, actorID string, quizID uint, req *models.QuestionCreateRequest) (*models.Question, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}
	if req.CorrectOption < 0 || req.CorrectOption >= len(req.Options) {
		return nil, NewBusinessRuleError("correct_option_range", "correct option must index an existing option")
	}

	quiz, err := s.getOwnedQuiz(ctx, actorID, quizID)
	if err != nil {
		return nil, err
	}
	if quiz.Status != models.QuizDraft {
		return nil, NewBusinessRuleError("quiz_locked", "questions can only be added to draft quizzes")
	}

	question, err := buildQuestion(quizID, req, req.Position)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Question().Create(ctx, s.db, question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	cache.InvalidateQuizCache(ctx, s.cache, quizID, quiz.CreatedBy)
	return question, nil
}

func (s *quizService) DeleteQuestion(ctx context.Context, actorID string, quizID, questionID uint) error {
	quiz, err := s.getOwnedQuiz(ctx, actorID, quizID)
	if err != nil {
		return err
	}
	if quiz.Status != models.QuizDraft {
		return NewBusinessRuleError("quiz_locked", "questions can only be removed from draft quizzes")
	}

	question, err := s.repo.Question().GetByID(ctx, s.db, questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuizNotFound
		}
		return fmt.Errorf("failed to get question: %w", err)
	}
	if question.QuizID != quizID {
		return ErrQuizNotFound
	}

	if err := s.repo.Question().Delete(ctx, s.db, questionID); err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}

	cache.InvalidateQuizCache(ctx, s.cache, quizID, quiz.CreatedBy)
	return nil
}

// ===== HELPERS =====

func (s *quizService) transition(ctx context.Context, actorID string, quizID uint, next models.QuizStatus) error {
	quiz, err := s.getOwnedQuiz(ctx, actorID, quizID)
	if err != nil {
		return err
	}

	count, err := s.repo.Question().CountByQuiz(ctx, s.db, quizID)
	if err != nil {
		return fmt.Errorf("failed to count questions: %w", err)
	}
	if errs := s.validator.ValidateQuizStatusTransition(quiz.Status, next, int(count)); len(errs) > 0 {
		return errs
	}

	quiz.Status = next
	if err := s.repo.Quiz().Update(ctx, s.db, quiz); err != nil {
		return fmt.Errorf("failed to update quiz status: %w", err)
	}

	cache.InvalidateQuizCache(ctx, s.cache, quizID, quiz.CreatedBy)
	s.logger.Info("Quiz status changed",
		"quiz_id", quizID,
		"status", next,
		"actor_id", actorID)
	return nil
}

// getOwnedQuiz loads the quiz and verifies the actor may modify it: the
// creating teacher or an admin.
func (s *quizService) getOwnedQuiz(ctx context.Context, actorID string, quizID uint) (*models.Quiz, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, s.db, quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	if quiz.CreatedBy != actorID {
		actor, err := s.repo.User().GetByID(ctx, s.db, actorID)
		if err != nil {
			return nil, fmt.Errorf("failed to get actor: %w", err)
		}
		if actor.Role != models.RoleAdmin {
			return nil, NewPermissionError(actorID, "modify", "quiz")
		}
	}
	return quiz, nil
}

// checkChapterAccess resolves chapter → subject and requires the teacher to
// be assigned to that subject. Admins bypass the assignment check.
func (s *quizService) checkChapterAccess(ctx context.Context, actorID string, chapterID uint) error {
	chapter, err := s.repo.Chapter().GetByID(ctx, s.db, chapterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrChapterNotFound
		}
		return fmt.Errorf("failed to get chapter: %w", err)
	}

	actor, err := s.repo.User().GetByID(ctx, s.db, actorID)
	if err != nil {
		return fmt.Errorf("failed to get actor: %w", err)
	}
	switch actor.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleTeacher:
		assigned, err := s.repo.Subject().IsTeacherAssigned(ctx, s.db, actorID, chapter.SubjectID)
		if err != nil {
			return fmt.Errorf("failed to check subject assignment: %w", err)
		}
		if !assigned {
			return ErrSubjectNotFound
		}
		return nil
	default:
		return NewPermissionError(actorID, "author", "quiz")
	}
}

func buildQuestion(quizID uint, req *models.QuestionCreateRequest, position int) (*models.Question, error) {
	options, err := json.Marshal(req.Options)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize options: %w", err)
	}
	return &models.Question{
		QuizID:        quizID,
		Text:          req.Text,
		Options:       datatypes.JSON(options),
		CorrectOption: req.CorrectOption,
		Marks:         req.Marks,
		Position:      position,
	}, nil
}
