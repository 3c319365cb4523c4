package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"gorm.io/gorm"

	"github.com/schoolsync/lms-service/internal/cache"
	"github.com/schoolsync/lms-service/internal/models"
	"github.com/schoolsync/lms-service/internal/repositories"
)

type progressService struct {
	repo   repositories.Repository
	db     *gorm.DB
	logger *slog.Logger
	cache  *cache.CacheManager
}

func NewProgressService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, cm *cache.CacheManager) ProgressService {
	return &progressService{
		repo:   repo,
		db:     db,
		logger: logger,
		cache:  cm,
	}
}

// StudentProgress recomputes per-subject completion for one student. Nothing
// is maintained incrementally; every call re-queries the store, with a short
// cache in front.
func (s *progressService) StudentProgress(ctx context.Context, actorID, studentID string) ([]*models.SubjectProgress, error) {
	if actorID != studentID {
		actor, err := s.repo.User().GetByID(ctx, s.db, actorID)
		if err != nil {
			return nil, fmt.Errorf("failed to get actor: %w", err)
		}
		if actor.Role == models.RoleStudent {
			return nil, NewPermissionError(actorID, "view", "student progress")
		}
	}

	var progress []*models.SubjectProgress
	cacheKey := fmt.Sprintf("student:%s", studentID)
	err := s.cache.Progress.CacheOrExecute(ctx, cacheKey, &progress, cache.ProgressCacheConfig.TTL, func() (interface{}, error) {
		return s.computeStudentProgress(ctx, studentID)
	})
	if err != nil {
		return nil, err
	}
	return progress, nil
}

func (s *progressService) computeStudentProgress(ctx context.Context, studentID string) ([]*models.SubjectProgress, error) {
	student, err := s.repo.User().GetByID(ctx, s.db, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	if student.Role != models.RoleStudent {
		return nil, NewBusinessRuleError("student_progress_role", "progress is only tracked for students")
	}
	if student.ClassID == nil {
		return []*models.SubjectProgress{}, nil
	}

	subjects, err := s.repo.Subject().GetByClass(ctx, s.db, *student.ClassID)
	if err != nil {
		return nil, fmt.Errorf("failed to get subjects: %w", err)
	}

	progress := make([]*models.SubjectProgress, 0, len(subjects))
	for _, subject := range subjects {
		scope, err := s.resolveSubjectScope(ctx, subject.ID)
		if err != nil {
			return nil, err
		}

		contentProgress, err := s.contentProgressFor(ctx, studentID, scope.contentIDs)
		if err != nil {
			return nil, err
		}
		quizProgress, err := s.quizProgressFor(ctx, studentID, scope.quizIDs)
		if err != nil {
			return nil, err
		}

		progress = append(progress, &models.SubjectProgress{
			SubjectID:       subject.ID,
			SubjectName:     subject.Name,
			ContentProgress: *contentProgress,
			QuizProgress:    *quizProgress,
		})
	}
	return progress, nil
}

// ClassPerformance recomputes the teacher view for one subject: the flat
// per-student table, the engagement roll-up and the top performers.
func (s *progressService) ClassPerformance(ctx context.Context, actorID string, subjectID uint) (*models.ClassPerformance, error) {
	actor, err := s.repo.User().GetByID(ctx, s.db, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get actor: %w", err)
	}
	if actor.Role == models.RoleStudent {
		return nil, NewPermissionError(actorID, "view", "class performance")
	}
	if actor.Role == models.RoleTeacher {
		assigned, err := s.repo.Subject().IsTeacherAssigned(ctx, s.db, actorID, subjectID)
		if err != nil {
			return nil, fmt.Errorf("failed to check subject assignment: %w", err)
		}
		// An unassigned subject is indistinguishable from a missing one.
		if !assigned {
			return nil, ErrSubjectNotFound
		}
	}

	var performance models.ClassPerformance
	cacheKey := fmt.Sprintf("subject:%d", subjectID)
	err = s.cache.Progress.CacheOrExecute(ctx, cacheKey, &performance, cache.ProgressCacheConfig.TTL, func() (interface{}, error) {
		return s.computeClassPerformance(ctx, subjectID)
	})
	if err != nil {
		return nil, err
	}
	return &performance, nil
}

func (s *progressService) computeClassPerformance(ctx context.Context, subjectID uint) (*models.ClassPerformance, error) {
	subject, err := s.repo.Subject().GetByID(ctx, s.db, subjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubjectNotFound
		}
		return nil, fmt.Errorf("failed to get subject: %w", err)
	}

	class, err := s.repo.Class().GetByID(ctx, s.db, subject.ClassID)
	if err != nil {
		return nil, fmt.Errorf("failed to get class: %w", err)
	}

	students, err := s.repo.User().GetClassStudents(ctx, s.db, subject.ClassID)
	if err != nil {
		return nil, fmt.Errorf("failed to get class students: %w", err)
	}

	scope, err := s.resolveSubjectScope(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	subjectStats, err := s.repo.Attempt().GetSubjectStats(ctx, s.db, scope.quizIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get subject stats: %w", err)
	}

	rows := make([]models.StudentPerformanceRow, 0, len(students))
	for _, student := range students {
		contentProgress, err := s.contentProgressFor(ctx, student.ID, scope.contentIDs)
		if err != nil {
			return nil, err
		}
		quizProgress, err := s.quizProgressFor(ctx, student.ID, scope.quizIDs)
		if err != nil {
			return nil, err
		}

		rows = append(rows, models.StudentPerformanceRow{
			StudentID:        student.ID,
			RollNumber:       student.RollNumber,
			FullName:         student.FullName,
			Class:            class.Name,
			TotalContent:     contentProgress.Total,
			ContentViewed:    contentProgress.Viewed,
			ContentProgress:  contentProgress.Percentage,
			TotalQuizzes:     quizProgress.Total,
			QuizzesAttempted: quizProgress.Attempted,
			QuizProgress:     quizProgress.Percentage,
			AvgQuizScore:     quizProgress.AvgScore,
			OverallProgress:  roundToInt(float64(contentProgress.Percentage+quizProgress.Percentage) / 2),
		})
	}

	topPerformers, err := s.topPerformers(ctx, scope.quizIDs, students)
	if err != nil {
		return nil, err
	}

	engagementRate := 0
	if len(students) > 0 {
		engagementRate = roundToInt(float64(subjectStats.ActiveStudents) / float64(len(students)) * 100)
	}

	return &models.ClassPerformance{
		SubjectID:      subject.ID,
		SubjectName:    subject.Name,
		ClassName:      class.Name,
		TotalStudents:  len(students),
		ActiveStudents: subjectStats.ActiveStudents,
		EngagementRate: engagementRate,
		AvgQuizScore:   roundToInt(subjectStats.AvgRatio * 100),
		TopPerformers:  topPerformers,
		Students:       rows,
	}, nil
}

// DashboardSummary populates the counters for the caller's role.
func (s *progressService) DashboardSummary(ctx context.Context, actorID string) (*models.DashboardSummary, error) {
	actor, err := s.repo.User().GetByID(ctx, s.db, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get actor: %w", err)
	}
	if actor.Role != models.RoleAdmin {
		return nil, NewPermissionError(actorID, "view", "dashboard summary")
	}

	counts, err := s.repo.Dashboard().GetDirectoryCounts(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("failed to get directory counts: %w", err)
	}

	avgScore, err := s.repo.Dashboard().GetAverageScore(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("failed to get average score: %w", err)
	}

	completed, err := s.repo.Dashboard().GetTotalAttempts(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("failed to get completed attempts: %w", err)
	}
	passed, err := s.repo.Dashboard().GetPassedAttempts(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("failed to get passed attempts: %w", err)
	}
	passRate := 0
	if completed > 0 {
		passRate = roundToInt(float64(passed) / float64(completed) * 100)
	}

	return &models.DashboardSummary{
		TotalUsers:    counts.Users,
		TotalStudents: counts.Students,
		TotalTeachers: counts.Teachers,
		TotalClasses:  counts.Classes,
		TotalSubjects: counts.Subjects,
		TotalContent:  counts.Content,
		TotalQuizzes:  counts.Quizzes,
		TotalAttempts: counts.Attempts,
		AvgQuizScore:  roundToInt(avgScore),
		PassRate:      passRate,
	}, nil
}

// ===== HELPERS =====

// subjectScope is the id universe one subject spans: its chapters, the
// non-quiz-marker content under them and the quizzes under them.
type subjectScope struct {
	chapterIDs []uint
	contentIDs []uint
	quizIDs    []uint
}

func (s *progressService) resolveSubjectScope(ctx context.Context, subjectID uint) (*subjectScope, error) {
	chapterIDs, err := s.repo.Chapter().GetIDsBySubject(ctx, s.db, subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get chapters: %w", err)
	}

	scope := &subjectScope{chapterIDs: chapterIDs}
	if len(chapterIDs) == 0 {
		return scope, nil
	}

	// Quiz markers are navigation placeholders, not learning material, so
	// they never count toward content totals.
	marker := models.ContentQuizMarker
	scope.contentIDs, err = s.repo.Content().GetIDsByChapters(ctx, s.db, chapterIDs, &marker)
	if err != nil {
		return nil, fmt.Errorf("failed to get content ids: %w", err)
	}

	scope.quizIDs, err = s.repo.Quiz().GetIDsByChapters(ctx, s.db, chapterIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz ids: %w", err)
	}
	return scope, nil
}

func (s *progressService) contentProgressFor(ctx context.Context, studentID string, contentIDs []uint) (*models.ContentProgress, error) {
	progress := &models.ContentProgress{Total: len(contentIDs)}
	if len(contentIDs) == 0 {
		return progress, nil
	}

	stats, err := s.repo.ContentView().GetStudentStats(ctx, s.db, studentID, contentIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get view stats: %w", err)
	}

	progress.Viewed = stats.Viewed
	progress.Percentage = roundToInt(float64(stats.Viewed) / float64(len(contentIDs)) * 100)
	progress.AvgCompletion = roundToInt(stats.AvgCompletion)
	return progress, nil
}

func (s *progressService) quizProgressFor(ctx context.Context, studentID string, quizIDs []uint) (*models.QuizProgress, error) {
	progress := &models.QuizProgress{Total: len(quizIDs)}
	if len(quizIDs) == 0 {
		return progress, nil
	}

	stats, err := s.repo.Attempt().GetStudentStats(ctx, s.db, studentID, quizIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get attempt stats: %w", err)
	}

	progress.Attempted = stats.Attempted
	progress.Percentage = roundToInt(float64(stats.Attempted) / float64(len(quizIDs)) * 100)
	progress.AvgScore = roundToInt(stats.AvgRatio * 100)
	return progress, nil
}

const topPerformerLimit = 5

func (s *progressService) topPerformers(ctx context.Context, quizIDs []uint, students []*models.User) ([]models.TopPerformer, error) {
	if len(quizIDs) == 0 {
		return []models.TopPerformer{}, nil
	}

	ratios, err := s.repo.Attempt().GetStudentRatios(ctx, s.db, quizIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get student ratios: %w", err)
	}

	byID := make(map[string]*models.User, len(students))
	for _, student := range students {
		byID[student.ID] = student
	}

	performers := make([]models.TopPerformer, 0, topPerformerLimit)
	for _, ratio := range ratios {
		student, ok := byID[ratio.StudentID]
		if !ok {
			continue
		}
		performers = append(performers, models.TopPerformer{
			StudentID:  student.ID,
			RollNumber: student.RollNumber,
			FullName:   student.FullName,
			AvgScore:   roundToInt(ratio.AvgRatio * 100),
		})
		if len(performers) == topPerformerLimit {
			break
		}
	}
	return performers, nil
}

func roundToInt(v float64) int {
	return int(math.Round(v))
}
