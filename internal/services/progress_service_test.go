package services

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/schoolsync/lms-service/internal/cache"
	"github.com/schoolsync/lms-service/internal/models"
	"github.com/schoolsync/lms-service/internal/repositories"
)

func newTestProgress(repo *mockRepository) *progressService {
	return &progressService{
		repo:   repo,
		logger: slog.New(slog.NewTextHandler(os.Stdout, nil)),
		cache:  cache.NewCacheManager(nil),
	}
}

func classID(id uint) *uint { return &id }

func TestProgressService_StudentProgress(t *testing.T) {
	ctx := context.Background()

	t.Run("student cannot view another student", func(t *testing.T) {
		repo := &mockRepository{
			user: &mockUserRepo{getByID: func(id string) (*models.User, error) {
				return &models.User{ID: id, Role: models.RoleStudent}, nil
			}},
		}
		s := newTestProgress(repo)
		_, err := s.StudentProgress(ctx, "s2", "s1")
		if !IsPermissionError(err) {
			t.Errorf("expected permission error, got %v", err)
		}
	})

	t.Run("progress only tracked for students", func(t *testing.T) {
		repo := &mockRepository{
			user: &mockUserRepo{getByID: func(id string) (*models.User, error) {
				return &models.User{ID: id, Role: models.RoleTeacher}, nil
			}},
		}
		s := newTestProgress(repo)
		_, err := s.StudentProgress(ctx, "t1", "t1")
		var bre *BusinessRuleError
		if !errors.As(err, &bre) {
			t.Errorf("expected business rule error, got %v", err)
		}
	})

	t.Run("student without class has empty progress", func(t *testing.T) {
		repo := &mockRepository{
			user: &mockUserRepo{getByID: func(id string) (*models.User, error) {
				return &models.User{ID: id, Role: models.RoleStudent}, nil
			}},
		}
		s := newTestProgress(repo)
		progress, err := s.StudentProgress(ctx, "s1", "s1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(progress) != 0 {
			t.Errorf("expected empty progress, got %d subjects", len(progress))
		}
	})

	t.Run("per-subject percentages", func(t *testing.T) {
		repo := &mockRepository{
			user: &mockUserRepo{getByID: func(id string) (*models.User, error) {
				return &models.User{ID: id, Role: models.RoleStudent, ClassID: classID(1)}, nil
			}},
			subject: &mockSubjectRepo{getByClass: func(cid uint) ([]*models.Subject, error) {
				return []*models.Subject{{ID: 10, Name: "Mathematics", ClassID: cid}}, nil
			}},
			chapter: &mockChapterRepo{getIDsBySubject: func(subjectID uint) ([]uint, error) {
				return []uint{1, 2}, nil
			}},
			content: &mockContentRepo{getIDsByChapters: func(chapterIDs []uint, excludeType *models.ContentType) ([]uint, error) {
				if excludeType == nil || *excludeType != models.ContentQuizMarker {
					t.Error("expected quiz markers to be excluded from content totals")
				}
				return []uint{100, 101, 102, 103}, nil
			}},
			quiz: &mockQuizRepo{getIDsByChapters: func(chapterIDs []uint) ([]uint, error) {
				return []uint{200, 201}, nil
			}},
			contentView: &mockContentViewRepo{getStudentStats: func(studentID string, contentIDs []uint) (*repositories.ViewStats, error) {
				return &repositories.ViewStats{Viewed: 3, AvgCompletion: 62.5}, nil
			}},
			attempt: &mockAttemptRepo{getStudentStats: func(studentID string, quizIDs []uint) (*repositories.AttemptStats, error) {
				return &repositories.AttemptStats{Attempted: 1, AvgRatio: 0.8}, nil
			}},
		}
		s := newTestProgress(repo)

		progress, err := s.StudentProgress(ctx, "s1", "s1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(progress) != 1 {
			t.Fatalf("expected 1 subject, got %d", len(progress))
		}

		subject := progress[0]
		if subject.SubjectID != 10 || subject.SubjectName != "Mathematics" {
			t.Errorf("unexpected subject: %+v", subject)
		}
		if subject.ContentProgress.Total != 4 || subject.ContentProgress.Viewed != 3 {
			t.Errorf("unexpected content counts: %+v", subject.ContentProgress)
		}
		// 3/4 = 75, avg completion 62.5 rounds to 63
		if subject.ContentProgress.Percentage != 75 || subject.ContentProgress.AvgCompletion != 63 {
			t.Errorf("unexpected content percentages: %+v", subject.ContentProgress)
		}
		// 1/2 = 50, ratio 0.8 -> 80
		if subject.QuizProgress.Percentage != 50 || subject.QuizProgress.AvgScore != 80 {
			t.Errorf("unexpected quiz percentages: %+v", subject.QuizProgress)
		}
	})

	t.Run("subject without chapters reports zeroes", func(t *testing.T) {
		repo := &mockRepository{
			user: &mockUserRepo{getByID: func(id string) (*models.User, error) {
				return &models.User{ID: id, Role: models.RoleStudent, ClassID: classID(1)}, nil
			}},
			subject: &mockSubjectRepo{getByClass: func(cid uint) ([]*models.Subject, error) {
				return []*models.Subject{{ID: 10, Name: "History", ClassID: cid}}, nil
			}},
			chapter: &mockChapterRepo{getIDsBySubject: func(subjectID uint) ([]uint, error) {
				return nil, nil
			}},
		}
		s := newTestProgress(repo)

		progress, err := s.StudentProgress(ctx, "s1", "s1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		subject := progress[0]
		if subject.ContentProgress.Total != 0 || subject.ContentProgress.Percentage != 0 {
			t.Errorf("expected zero content progress, got %+v", subject.ContentProgress)
		}
		if subject.QuizProgress.Total != 0 || subject.QuizProgress.Percentage != 0 {
			t.Errorf("expected zero quiz progress, got %+v", subject.QuizProgress)
		}
	})
}

func TestProgressService_ClassPerformance(t *testing.T) {
	ctx := context.Background()

	t.Run("students are denied", func(t *testing.T) {
		repo := &mockRepository{
			user: &mockUserRepo{getByID: func(id string) (*models.User, error) {
				return &models.User{ID: id, Role: models.RoleStudent}, nil
			}},
		}
		s := newTestProgress(repo)
		_, err := s.ClassPerformance(ctx, "s1", 10)
		if !IsPermissionError(err) {
			t.Errorf("expected permission error, got %v", err)
		}
	})

	t.Run("unassigned teacher sees not found", func(t *testing.T) {
		repo := &mockRepository{
			user: &mockUserRepo{getByID: func(id string) (*models.User, error) {
				return &models.User{ID: id, Role: models.RoleTeacher}, nil
			}},
			subject: &mockSubjectRepo{isTeacherAssigned: func(teacherID string, subjectID uint) (bool, error) {
				return false, nil
			}},
		}
		s := newTestProgress(repo)
		_, err := s.ClassPerformance(ctx, "t1", 10)
		if !errors.Is(err, ErrSubjectNotFound) {
			t.Errorf("expected ErrSubjectNotFound, got %v", err)
		}
	})

	t.Run("roll-up, engagement and top performers", func(t *testing.T) {
		students := []*models.User{
			{ID: "s1", RollNumber: "R001", FullName: "Student One", Role: models.RoleStudent},
			{ID: "s2", RollNumber: "R002", FullName: "Student Two", Role: models.RoleStudent},
			{ID: "s3", RollNumber: "R003", FullName: "Student Three", Role: models.RoleStudent},
		}
		repo := &mockRepository{
			user: &mockUserRepo{
				getByID: func(id string) (*models.User, error) {
					return &models.User{ID: id, Role: models.RoleAdmin}, nil
				},
				getClassStudents: func(cid uint) ([]*models.User, error) {
					return students, nil
				},
			},
			class: &mockClassRepo{getByID: func(id uint) (*models.Class, error) {
				return &models.Class{ID: id, Name: "Grade 8"}, nil
			}},
			subject: &mockSubjectRepo{getByID: func(id uint) (*models.Subject, error) {
				return &models.Subject{ID: id, Name: "Mathematics", ClassID: 1}, nil
			}},
			chapter: &mockChapterRepo{getIDsBySubject: func(subjectID uint) ([]uint, error) {
				return []uint{1}, nil
			}},
			content: &mockContentRepo{getIDsByChapters: func(chapterIDs []uint, excludeType *models.ContentType) ([]uint, error) {
				return []uint{100, 101}, nil
			}},
			quiz: &mockQuizRepo{getIDsByChapters: func(chapterIDs []uint) ([]uint, error) {
				return []uint{200}, nil
			}},
			contentView: &mockContentViewRepo{getStudentStats: func(studentID string, contentIDs []uint) (*repositories.ViewStats, error) {
				if studentID == "s1" {
					return &repositories.ViewStats{Viewed: 2, AvgCompletion: 100}, nil
				}
				return &repositories.ViewStats{}, nil
			}},
			attempt: &mockAttemptRepo{
				getStudentStats: func(studentID string, quizIDs []uint) (*repositories.AttemptStats, error) {
					if studentID == "s1" {
						return &repositories.AttemptStats{Attempted: 1, AvgRatio: 0.9}, nil
					}
					return &repositories.AttemptStats{}, nil
				},
				getSubjectStats: func(quizIDs []uint) (*repositories.SubjectAttemptStats, error) {
					return &repositories.SubjectAttemptStats{TotalAttempts: 1, ActiveStudents: 1, AvgRatio: 0.9}, nil
				},
				getStudentRatios: func(quizIDs []uint) ([]repositories.StudentRatio, error) {
					return []repositories.StudentRatio{
						{StudentID: "s1", AvgRatio: 0.9},
						{StudentID: "ghost", AvgRatio: 0.8},
					}, nil
				},
			},
		}
		s := newTestProgress(repo)

		perf, err := s.ClassPerformance(ctx, "admin", 10)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if perf.TotalStudents != 3 || perf.ActiveStudents != 1 {
			t.Errorf("unexpected student counts: %d/%d", perf.ActiveStudents, perf.TotalStudents)
		}
		// 1/3 = 33.33 -> 33
		if perf.EngagementRate != 33 {
			t.Errorf("expected engagement 33, got %d", perf.EngagementRate)
		}
		if perf.AvgQuizScore != 90 {
			t.Errorf("expected avg score 90, got %d", perf.AvgQuizScore)
		}

		if len(perf.Students) != 3 {
			t.Fatalf("expected 3 rows, got %d", len(perf.Students))
		}
		top := perf.Students[0]
		if top.ContentProgress != 100 || top.QuizProgress != 100 || top.OverallProgress != 100 {
			t.Errorf("unexpected top row: %+v", top)
		}
		idle := perf.Students[1]
		if idle.OverallProgress != 0 {
			t.Errorf("expected idle overall 0, got %d", idle.OverallProgress)
		}

		// Students no longer on the roster are dropped from the ranking.
		if len(perf.TopPerformers) != 1 {
			t.Fatalf("expected 1 top performer, got %d", len(perf.TopPerformers))
		}
		if perf.TopPerformers[0].StudentID != "s1" || perf.TopPerformers[0].AvgScore != 90 {
			t.Errorf("unexpected top performer: %+v", perf.TopPerformers[0])
		}
	})

	t.Run("top performers capped at five", func(t *testing.T) {
		students := make([]*models.User, 8)
		ratios := make([]repositories.StudentRatio, 8)
		for i := range students {
			id := string(rune('a' + i))
			students[i] = &models.User{ID: id, Role: models.RoleStudent}
			ratios[i] = repositories.StudentRatio{StudentID: id, AvgRatio: 1.0 - float64(i)*0.1}
		}
		repo := &mockRepository{
			user: &mockUserRepo{
				getByID: func(id string) (*models.User, error) {
					return &models.User{ID: id, Role: models.RoleAdmin}, nil
				},
				getClassStudents: func(cid uint) ([]*models.User, error) { return students, nil },
			},
			class: &mockClassRepo{getByID: func(id uint) (*models.Class, error) {
				return &models.Class{ID: id, Name: "Grade 8"}, nil
			}},
			subject: &mockSubjectRepo{getByID: func(id uint) (*models.Subject, error) {
				return &models.Subject{ID: id, Name: "Mathematics", ClassID: 1}, nil
			}},
			chapter: &mockChapterRepo{getIDsBySubject: func(subjectID uint) ([]uint, error) {
				return []uint{1}, nil
			}},
			content: &mockContentRepo{getIDsByChapters: func(chapterIDs []uint, excludeType *models.ContentType) ([]uint, error) {
				return nil, nil
			}},
			quiz: &mockQuizRepo{getIDsByChapters: func(chapterIDs []uint) ([]uint, error) {
				return []uint{200}, nil
			}},
			attempt: &mockAttemptRepo{
				getStudentStats: func(studentID string, quizIDs []uint) (*repositories.AttemptStats, error) {
					return &repositories.AttemptStats{}, nil
				},
				getSubjectStats: func(quizIDs []uint) (*repositories.SubjectAttemptStats, error) {
					return &repositories.SubjectAttemptStats{}, nil
				},
				getStudentRatios: func(quizIDs []uint) ([]repositories.StudentRatio, error) {
					return ratios, nil
				},
			},
		}
		s := newTestProgress(repo)

		perf, err := s.ClassPerformance(ctx, "admin", 10)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(perf.TopPerformers) != 5 {
			t.Errorf("expected 5 top performers, got %d", len(perf.TopPerformers))
		}
	})
}

func TestProgressService_DashboardSummary(t *testing.T) {
	ctx := context.Background()

	t.Run("non-admin is denied", func(t *testing.T) {
		repo := &mockRepository{
			user: &mockUserRepo{getByID: func(id string) (*models.User, error) {
				return &models.User{ID: id, Role: models.RoleTeacher}, nil
			}},
		}
		s := newTestProgress(repo)
		_, err := s.DashboardSummary(ctx, "t1")
		if !IsPermissionError(err) {
			t.Errorf("expected permission error, got %v", err)
		}
	})

	t.Run("admin sees counters", func(t *testing.T) {
		repo := &mockRepository{
			user: &mockUserRepo{getByID: func(id string) (*models.User, error) {
				return &models.User{ID: id, Role: models.RoleAdmin}, nil
			}},
			dashboard: &mockDashboardRepo{
				getDirectoryCounts: func() (*repositories.DirectoryCounts, error) {
					return &repositories.DirectoryCounts{
						Users: 42, Students: 30, Teachers: 10, Classes: 3,
						Subjects: 12, Content: 80, Quizzes: 25, Attempts: 310,
					}, nil
				},
				getTotalAttempts:  func() (int64, error) { return 300, nil },
				getPassedAttempts: func() (int64, error) { return 200, nil },
				getAverageScore:   func() (float64, error) { return 71.4, nil },
			},
		}
		s := newTestProgress(repo)

		summary, err := s.DashboardSummary(ctx, "admin")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if summary.TotalStudents != 30 || summary.TotalQuizzes != 25 || summary.TotalAttempts != 310 {
			t.Errorf("unexpected counters: %+v", summary)
		}
		if summary.TotalContent != 80 {
			t.Errorf("expected 80 content items, got %d", summary.TotalContent)
		}
		if summary.AvgQuizScore != 71 {
			t.Errorf("expected avg quiz score 71, got %d", summary.AvgQuizScore)
		}
		// 200 of 300 finalized attempts passed.
		if summary.PassRate != 67 {
			t.Errorf("expected pass rate 67, got %d", summary.PassRate)
		}
	})

	t.Run("no finalized attempts yields zero pass rate", func(t *testing.T) {
		repo := &mockRepository{
			user: &mockUserRepo{getByID: func(id string) (*models.User, error) {
				return &models.User{ID: id, Role: models.RoleAdmin}, nil
			}},
			dashboard: &mockDashboardRepo{
				getDirectoryCounts: func() (*repositories.DirectoryCounts, error) {
					return &repositories.DirectoryCounts{}, nil
				},
				getTotalAttempts:  func() (int64, error) { return 0, nil },
				getPassedAttempts: func() (int64, error) { return 0, nil },
				getAverageScore:   func() (float64, error) { return 0, nil },
			},
		}
		s := newTestProgress(repo)

		summary, err := s.DashboardSummary(ctx, "admin")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if summary.PassRate != 0 || summary.AvgQuizScore != 0 {
			t.Errorf("expected zeroed rates, got %+v", summary)
		}
	})
}

func TestRoundToInt(t *testing.T) {
	cases := []struct {
		in   float64
		want int
	}{
		{0, 0},
		{33.333, 33},
		{62.5, 63},
		{66.666, 67},
		{99.4, 99},
		{100, 100},
	}
	for _, tc := range cases {
		if got := roundToInt(tc.in); got != tc.want {
			t.Errorf("roundToInt(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
