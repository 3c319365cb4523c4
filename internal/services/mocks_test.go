package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/schoolsync/lms-service/internal/models"
	"github.com/schoolsync/lms-service/internal/repositories"
)

// Mock repositories for testing - minimal implementations. Embedding the
// interface leaves unstubbed methods panicking, which surfaces unexpected
// calls immediately.

type mockUserRepo struct {
	repositories.UserRepository
	getByID          func(id string) (*models.User, error)
	getByRollNumber  func(rollNumber string) (*models.User, error)
	getClassStudents func(classID uint) ([]*models.User, error)
}

func (m *mockUserRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error) {
	return m.getByID(id)
}

func (m *mockUserRepo) GetByRollNumber(ctx context.Context, tx *gorm.DB, rollNumber string) (*models.User, error) {
	return m.getByRollNumber(rollNumber)
}

func (m *mockUserRepo) GetClassStudents(ctx context.Context, tx *gorm.DB, classID uint) ([]*models.User, error) {
	return m.getClassStudents(classID)
}

type mockClassRepo struct {
	repositories.ClassRepository
	getByID func(id uint) (*models.Class, error)
}

func (m *mockClassRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Class, error) {
	return m.getByID(id)
}

type mockSubjectRepo struct {
	repositories.SubjectRepository
	getByID           func(id uint) (*models.Subject, error)
	getByClass        func(classID uint) ([]*models.Subject, error)
	isTeacherAssigned func(teacherID string, subjectID uint) (bool, error)
}

func (m *mockSubjectRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Subject, error) {
	return m.getByID(id)
}

func (m *mockSubjectRepo) GetByClass(ctx context.Context, tx *gorm.DB, classID uint) ([]*models.Subject, error) {
	return m.getByClass(classID)
}

func (m *mockSubjectRepo) IsTeacherAssigned(ctx context.Context, tx *gorm.DB, teacherID string, subjectID uint) (bool, error) {
	return m.isTeacherAssigned(teacherID, subjectID)
}

type mockChapterRepo struct {
	repositories.ChapterRepository
	getByID         func(id uint) (*models.Chapter, error)
	getIDsBySubject func(subjectID uint) ([]uint, error)
}

func (m *mockChapterRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Chapter, error) {
	return m.getByID(id)
}

func (m *mockChapterRepo) GetIDsBySubject(ctx context.Context, tx *gorm.DB, subjectID uint) ([]uint, error) {
	return m.getIDsBySubject(subjectID)
}

type mockContentRepo struct {
	repositories.ContentRepository
	getIDsByChapters func(chapterIDs []uint, excludeType *models.ContentType) ([]uint, error)
}

func (m *mockContentRepo) GetIDsByChapters(ctx context.Context, tx *gorm.DB, chapterIDs []uint, excludeType *models.ContentType) ([]uint, error) {
	return m.getIDsByChapters(chapterIDs, excludeType)
}

type mockContentViewRepo struct {
	repositories.ContentViewRepository
	getStudentStats func(studentID string, contentIDs []uint) (*repositories.ViewStats, error)
}

func (m *mockContentViewRepo) GetStudentStats(ctx context.Context, tx *gorm.DB, studentID string, contentIDs []uint) (*repositories.ViewStats, error) {
	return m.getStudentStats(studentID, contentIDs)
}

type mockQuizRepo struct {
	repositories.QuizRepository
	getByID              func(id uint) (*models.Quiz, error)
	getByIDWithQuestions func(id uint) (*models.Quiz, error)
	update               func(quiz *models.Quiz) error
	getIDsByChapters     func(chapterIDs []uint) ([]uint, error)
}

func (m *mockQuizRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Quiz, error) {
	return m.getByID(id)
}

func (m *mockQuizRepo) GetByIDWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*models.Quiz, error) {
	return m.getByIDWithQuestions(id)
}

func (m *mockQuizRepo) Update(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error {
	return m.update(quiz)
}

func (m *mockQuizRepo) GetIDsByChapters(ctx context.Context, tx *gorm.DB, chapterIDs []uint) ([]uint, error) {
	return m.getIDsByChapters(chapterIDs)
}

type mockQuestionRepo struct {
	repositories.QuestionRepository
	create      func(question *models.Question) error
	getByID     func(id uint) (*models.Question, error)
	delete      func(id uint) error
	countByQuiz func(quizID uint) (int64, error)
}

func (m *mockQuestionRepo) Create(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	return m.create(question)
}

func (m *mockQuestionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	return m.getByID(id)
}

func (m *mockQuestionRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	return m.delete(id)
}

func (m *mockQuestionRepo) CountByQuiz(ctx context.Context, tx *gorm.DB, quizID uint) (int64, error) {
	return m.countByQuiz(quizID)
}

type mockAttemptRepo struct {
	repositories.AttemptRepository
	getByQuizAndStudent func(quizID uint, studentID string) (*models.QuizAttempt, error)
	create              func(attempt *models.QuizAttempt) error
	finalize            func(attempt *models.QuizAttempt) error
	getByID             func(id uint) (*models.QuizAttempt, error)
	getByStudent        func(studentID string) ([]*models.QuizAttempt, error)
	getStudentStats     func(studentID string, quizIDs []uint) (*repositories.AttemptStats, error)
	getSubjectStats     func(quizIDs []uint) (*repositories.SubjectAttemptStats, error)
	getStudentRatios    func(quizIDs []uint) ([]repositories.StudentRatio, error)
}

func (m *mockAttemptRepo) GetByQuizAndStudent(ctx context.Context, tx *gorm.DB, quizID uint, studentID string) (*models.QuizAttempt, error) {
	return m.getByQuizAndStudent(quizID, studentID)
}

func (m *mockAttemptRepo) Create(ctx context.Context, tx *gorm.DB, attempt *models.QuizAttempt) error {
	return m.create(attempt)
}

func (m *mockAttemptRepo) Finalize(ctx context.Context, tx *gorm.DB, attempt *models.QuizAttempt) error {
	return m.finalize(attempt)
}

func (m *mockAttemptRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.QuizAttempt, error) {
	return m.getByID(id)
}

func (m *mockAttemptRepo) GetByStudent(ctx context.Context, tx *gorm.DB, studentID string, quizIDs []uint) ([]*models.QuizAttempt, error) {
	return m.getByStudent(studentID)
}

func (m *mockAttemptRepo) GetStudentStats(ctx context.Context, tx *gorm.DB, studentID string, quizIDs []uint) (*repositories.AttemptStats, error) {
	return m.getStudentStats(studentID, quizIDs)
}

func (m *mockAttemptRepo) GetSubjectStats(ctx context.Context, tx *gorm.DB, quizIDs []uint) (*repositories.SubjectAttemptStats, error) {
	return m.getSubjectStats(quizIDs)
}

func (m *mockAttemptRepo) GetStudentRatios(ctx context.Context, tx *gorm.DB, quizIDs []uint) ([]repositories.StudentRatio, error) {
	return m.getStudentRatios(quizIDs)
}

type mockDashboardRepo struct {
	repositories.DashboardRepository
	getDirectoryCounts func() (*repositories.DirectoryCounts, error)
	getTotalAttempts   func() (int64, error)
	getPassedAttempts  func() (int64, error)
	getAverageScore    func() (float64, error)
}

func (m *mockDashboardRepo) GetDirectoryCounts(ctx context.Context, tx *gorm.DB) (*repositories.DirectoryCounts, error) {
	return m.getDirectoryCounts()
}

func (m *mockDashboardRepo) GetTotalAttempts(ctx context.Context, tx *gorm.DB) (int64, error) {
	return m.getTotalAttempts()
}

func (m *mockDashboardRepo) GetPassedAttempts(ctx context.Context, tx *gorm.DB) (int64, error) {
	return m.getPassedAttempts()
}

func (m *mockDashboardRepo) GetAverageScore(ctx context.Context, tx *gorm.DB) (float64, error) {
	return m.getAverageScore()
}

type mockRepository struct {
	user        *mockUserRepo
	class       *mockClassRepo
	subject     *mockSubjectRepo
	chapter     *mockChapterRepo
	content     *mockContentRepo
	contentView *mockContentViewRepo
	quiz        *mockQuizRepo
	question    *mockQuestionRepo
	attempt     *mockAttemptRepo
	dashboard   *mockDashboardRepo
}

func (m *mockRepository) User() repositories.UserRepository               { return m.user }
func (m *mockRepository) Class() repositories.ClassRepository             { return m.class }
func (m *mockRepository) Subject() repositories.SubjectRepository         { return m.subject }
func (m *mockRepository) Chapter() repositories.ChapterRepository         { return m.chapter }
func (m *mockRepository) Content() repositories.ContentRepository         { return m.content }
func (m *mockRepository) ContentView() repositories.ContentViewRepository { return m.contentView }
func (m *mockRepository) Quiz() repositories.QuizRepository               { return m.quiz }
func (m *mockRepository) Question() repositories.QuestionRepository       { return m.question }
func (m *mockRepository) Attempt() repositories.AttemptRepository         { return m.attempt }
func (m *mockRepository) Dashboard() repositories.DashboardRepository     { return m.dashboard }
func (m *mockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}
func (m *mockRepository) Ping(ctx context.Context) error { return nil }
func (m *mockRepository) Close() error                   { return nil }
