package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/schoolsync/lms-service/internal/models"
)

// performanceColumns is the flat table header, shared verbatim between the
// CSV and workbook exports.
var performanceColumns = []string{
	"roll_number",
	"full_name",
	"class",
	"total_content",
	"content_viewed",
	"content_progress",
	"total_quizzes",
	"quizzes_attempted",
	"quiz_progress",
	"avg_quiz_score",
	"overall_progress",
}

type exportService struct {
	progress ProgressService
	logger   *slog.Logger
}

func NewExportService(progress ProgressService, logger *slog.Logger) ExportService {
	return &exportService{
		progress: progress,
		logger:   logger,
	}
}

// ExportClassPerformanceXLSX renders the per-student table as a workbook.
// Access control is delegated to the progress service.
func (s *exportService) ExportClassPerformanceXLSX(ctx context.Context, actorID string, subjectID uint) ([]byte, string, error) {
	performance, err := s.progress.ClassPerformance(ctx, actorID, subjectID)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("Failed to close workbook", "error", err)
		}
	}()

	const sheet = "Class Performance"
	f.SetSheetName("Sheet1", sheet)

	header := make([]interface{}, len(performanceColumns))
	for i, col := range performanceColumns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, "", fmt.Errorf("failed to write header row: %w", err)
	}

	for i, row := range performance.Students {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, "", fmt.Errorf("failed to compute cell name: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &[]interface{}{
			row.RollNumber,
			row.FullName,
			row.Class,
			row.TotalContent,
			row.ContentViewed,
			row.ContentProgress,
			row.TotalQuizzes,
			row.QuizzesAttempted,
			row.QuizProgress,
			row.AvgQuizScore,
			row.OverallProgress,
		}); err != nil {
			return nil, "", fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to serialize workbook: %w", err)
	}

	s.logger.Info("Class performance workbook exported",
		"subject_id", subjectID,
		"rows", len(performance.Students))

	return buf.Bytes(), s.exportFileName(performance, "xlsx"), nil
}

// ExportClassPerformanceCSV renders the same table as CSV, one row per
// student, columns in the header order above.
func (s *exportService) ExportClassPerformanceCSV(ctx context.Context, actorID string, subjectID uint) ([]byte, string, error) {
	performance, err := s.progress.ClassPerformance(ctx, actorID, subjectID)
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(performanceColumns); err != nil {
		return nil, "", fmt.Errorf("failed to write header row: %w", err)
	}
	for _, row := range performance.Students {
		if err := w.Write([]string{
			row.RollNumber,
			row.FullName,
			row.Class,
			strconv.Itoa(row.TotalContent),
			strconv.Itoa(row.ContentViewed),
			strconv.Itoa(row.ContentProgress),
			strconv.Itoa(row.TotalQuizzes),
			strconv.Itoa(row.QuizzesAttempted),
			strconv.Itoa(row.QuizProgress),
			strconv.Itoa(row.AvgQuizScore),
			strconv.Itoa(row.OverallProgress),
		}); err != nil {
			return nil, "", fmt.Errorf("failed to write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, "", fmt.Errorf("failed to flush csv: %w", err)
	}

	return buf.Bytes(), s.exportFileName(performance, "csv"), nil
}

func (s *exportService) exportFileName(performance *models.ClassPerformance, ext string) string {
	return fmt.Sprintf("class-performance-%s-%s-%s.%s",
		slugify(performance.ClassName),
		slugify(performance.SubjectName),
		time.Now().Format("2006-01-02"),
		ext)
}

func slugify(v string) string {
	out := make([]rune, 0, len(v))
	for _, r := range v {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			out = append(out, r)
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		case r == ' ' || r == '-' || r == '_':
			out = append(out, '-')
		}
	}
	return string(out)
}
