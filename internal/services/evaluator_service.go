package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/schoolsync/lms-service/internal/cache"
	"github.com/schoolsync/lms-service/internal/events"
	"github.com/schoolsync/lms-service/internal/models"
	"github.com/schoolsync/lms-service/internal/repositories"
	"github.com/schoolsync/lms-service/internal/validator"
)

// PassThreshold is the fixed pass mark in percent. It applies to every quiz;
// there is no per-quiz override.
const PassThreshold = 60

// submitGracePeriod absorbs clock skew and network latency between the
// client timer firing and the submission reaching the server.
const submitGracePeriod = 30 * time.Second

const (
	passMessage = "Congratulations! You passed the quiz."
	failMessage = "You did not pass. Review the chapter and try again next time."
)

type evaluatorService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.BusinessValidator
	cache     *cache.CacheManager
	publisher events.Publisher
}

func NewEvaluatorService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, v *validator.BusinessValidator, cm *cache.CacheManager, publisher events.Publisher) EvaluatorService {
	return &evaluatorService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: v,
		cache:     cm,
		publisher: publisher,
	}
}

// StartQuiz opens an in-progress attempt, pinning started_at on the server
// so the time limit cannot be stretched by the client. Starting the same
// quiz again while in progress resumes the existing attempt.
func (s *evaluatorService) StartQuiz(ctx context.Context, studentID string, quizID uint) (*models.Quiz, *models.QuizAttempt, error) {
	quiz, err := s.loadQuiz(ctx, quizID)
	if err != nil {
		return nil, nil, err
	}

	if quiz.Status != models.QuizActive {
		return nil, nil, ErrQuizNotActive
	}
	if len(quiz.Questions) == 0 {
		return nil, nil, ErrQuizHasNoQuestions
	}
	if quiz.DueDate != nil && time.Now().After(*quiz.DueDate) {
		return nil, nil, ErrQuizDueDatePassed
	}

	existing, err := s.repo.Attempt().GetByQuizAndStudent(ctx, s.db, quizID, studentID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, fmt.Errorf("failed to check existing attempt: %w", err)
	}
	if existing != nil {
		if existing.Status == models.AttemptInProgress {
			s.logger.Info("Resuming quiz attempt",
				"attempt_id", existing.ID,
				"quiz_id", quizID,
				"student_id", studentID)
			return quiz, existing, nil
		}
		return nil, nil, ErrAlreadyAttempted
	}

	attempt := &models.QuizAttempt{
		QuizID:    quizID,
		StudentID: studentID,
		Status:    models.AttemptInProgress,
		StartedAt: time.Now(),
	}

	if err := s.repo.Attempt().Create(ctx, s.db, attempt); err != nil {
		// Two concurrent starts race on the unique index; the loser picks
		// up the winner's row.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			existing, getErr := s.repo.Attempt().GetByQuizAndStudent(ctx, s.db, quizID, studentID)
			if getErr != nil {
				return nil, nil, fmt.Errorf("failed to resolve concurrent start: %w", getErr)
			}
			if existing.Status == models.AttemptInProgress {
				return quiz, existing, nil
			}
			return nil, nil, ErrAlreadyAttempted
		}
		return nil, nil, fmt.Errorf("failed to create attempt: %w", err)
	}

	s.logger.Info("Quiz attempt started",
		"attempt_id", attempt.ID,
		"quiz_id", quizID,
		"student_id", studentID,
		"time_limit_minutes", quiz.TimeLimit)

	return quiz, attempt, nil
}

// Submit scores the answers against the stored answer key and persists the
// finalized attempt. Exactly one finalized attempt can exist per (student,
// quiz) pair; the composite unique index backs the gate regardless of
// request interleaving.
func (s *evaluatorService) Submit(ctx context.Context, studentID string, quizID uint, req *models.QuizSubmitRequest) (*models.SubmitResult, error) {
	if errs := s.validator.ValidateSubmission(req); len(errs) > 0 {
		return nil, errs
	}

	quiz, err := s.loadQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if quiz.Status != models.QuizActive {
		return nil, ErrQuizNotActive
	}

	existing, err := s.repo.Attempt().GetByQuizAndStudent(ctx, s.db, quizID, studentID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing attempt: %w", err)
	}
	if existing != nil && existing.Status != models.AttemptInProgress {
		return nil, ErrAlreadyAttempted
	}

	answers := req.Answers
	status := models.AttemptCompleted

	// Server-side deadline: the stored start time is authoritative, the
	// client timer is only a trigger. Late submissions are persisted with
	// no answers counted.
	if existing != nil {
		deadline := existing.StartedAt.
			Add(time.Duration(quiz.TimeLimit) * time.Minute).
			Add(submitGracePeriod)
		if time.Now().After(deadline) {
			s.logger.Warn("Submission past deadline, scoring as timed out",
				"attempt_id", existing.ID,
				"quiz_id", quizID,
				"student_id", studentID)
			answers = models.AnswerMap{}
			status = models.AttemptTimedOut
		}
	}

	result, scored := s.score(quiz.Questions, answers)

	var attempt *models.QuizAttempt
	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		now := time.Now()

		if existing != nil {
			existing.Status = status
			existing.Score = scored.score
			existing.TotalMarks = scored.totalMarks
			existing.Percentage = float64(result.Percentage)
			existing.Passed = result.Passed
			existing.CompletedAt = &now
			if err := existing.SetAnswers(answers); err != nil {
				return fmt.Errorf("failed to serialize answers: %w", err)
			}
			if err := txRepo.Attempt().Finalize(ctx, nil, existing); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					// Another submission finalized the row first.
					return ErrAlreadyAttempted
				}
				return fmt.Errorf("failed to finalize attempt: %w", err)
			}
			attempt = existing
			return nil
		}

		// Direct submission without a prior start. The unique index is the
		// gate: a duplicate insert means another submission won the race.
		attempt = &models.QuizAttempt{
			QuizID:      quizID,
			StudentID:   studentID,
			Status:      status,
			StartedAt:   now,
			CompletedAt: &now,
			Score:       scored.score,
			TotalMarks:  scored.totalMarks,
			Percentage:  float64(result.Percentage),
			Passed:      result.Passed,
		}
		if err := attempt.SetAnswers(answers); err != nil {
			return fmt.Errorf("failed to serialize answers: %w", err)
		}
		if err := txRepo.Attempt().Create(ctx, nil, attempt); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyAttempted
			}
			return fmt.Errorf("failed to create attempt: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidateAttemptCache(ctx, s.cache, quizID, studentID)
	s.publishCompleted(attempt)

	s.logger.Info("Quiz attempt scored",
		"attempt_id", attempt.ID,
		"quiz_id", quizID,
		"student_id", studentID,
		"score", result.Score,
		"total_marks", result.TotalMarks,
		"percentage", result.Percentage,
		"passed", result.Passed)

	return result, nil
}

func (s *evaluatorService) GetAttempt(ctx context.Context, actorID string, attemptID uint) (*models.QuizAttempt, error) {
	attempt, err := s.repo.Attempt().GetByID(ctx, s.db, attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}

	if attempt.StudentID != actorID {
		actor, err := s.repo.User().GetByID(ctx, s.db, actorID)
		if err != nil {
			return nil, fmt.Errorf("failed to get actor: %w", err)
		}
		if actor.Role == models.RoleStudent {
			return nil, NewPermissionError(actorID, "view", "attempt")
		}
	}

	return attempt, nil
}

func (s *evaluatorService) ListStudentAttempts(ctx context.Context, studentID string) ([]*models.AttemptSummary, error) {
	attempts, err := s.repo.Attempt().GetByStudent(ctx, s.db, studentID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}

	summaries := make([]*models.AttemptSummary, 0, len(attempts))
	for _, a := range attempts {
		if a.Status == models.AttemptInProgress {
			continue
		}
		summaries = append(summaries, &models.AttemptSummary{
			AttemptID:   a.ID,
			QuizID:      a.QuizID,
			QuizTitle:   a.Quiz.Title,
			Score:       a.Score,
			TotalMarks:  a.TotalMarks,
			Percentage:  int(math.Round(a.Percentage)),
			Passed:      a.Passed,
			CompletedAt: a.CompletedAt,
		})
	}
	return summaries, nil
}

// ===== HELPERS =====

type scoreTotals struct {
	score      int
	totalMarks int
}

// score walks the answer key once. Unanswered questions count as incorrect;
// answer keys that match no question are ignored.
func (s *evaluatorService) score(questions []models.Question, answers models.AnswerMap) (*models.SubmitResult, scoreTotals) {
	totals := scoreTotals{}
	for _, q := range questions {
		totals.totalMarks += q.Marks
		if selected, ok := answers[q.ID]; ok && selected == q.CorrectOption {
			totals.score += q.Marks
		}
	}

	percentage := 0
	if totals.totalMarks > 0 {
		percentage = int(math.Round(float64(totals.score) / float64(totals.totalMarks) * 100))
	}

	passed := percentage >= PassThreshold
	message := failMessage
	if passed {
		message = passMessage
	}

	return &models.SubmitResult{
		Score:      totals.score,
		TotalMarks: totals.totalMarks,
		Percentage: percentage,
		Passed:     passed,
		Message:    message,
	}, totals
}

func (s *evaluatorService) loadQuiz(ctx context.Context, quizID uint) (*models.Quiz, error) {
	quiz, err := s.repo.Quiz().GetByIDWithQuestions(ctx, s.db, quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	return quiz, nil
}

func (s *evaluatorService) publishCompleted(attempt *models.QuizAttempt) {
	if s.publisher == nil {
		return
	}
	event := events.AttemptCompletedEvent{
		EventID:    uuid.New().String(),
		AttemptID:  attempt.ID,
		QuizID:     attempt.QuizID,
		StudentID:  attempt.StudentID,
		Score:      attempt.Score,
		TotalMarks: attempt.TotalMarks,
		Percentage: int(math.Round(attempt.Percentage)),
		Passed:     attempt.Passed,
		OccurredAt: time.Now(),
	}
	if err := s.publisher.PublishAttemptCompleted(event); err != nil {
		// Delivery is best effort; the request already succeeded.
		s.logger.Error("Failed to publish attempt completed event",
			"attempt_id", attempt.ID,
			"error", err)
	}
}
