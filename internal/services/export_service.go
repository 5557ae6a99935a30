package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/examhub/exam-service/internal/models"
	"github.com/examhub/exam-service/internal/repositories"
	"gorm.io/gorm"
)

const (
	attemptsSheet = "Attempts"
	optionsSep    = "|"
)

var attemptHeaders = []interface{}{
	"ID", "Student Name", "Student Email", "Status", "Score", "Percentage", "Passed", "Started At", "Completed At",
}

// Spreadsheet columns recognised by ImportQuestions, matched case-insensitively
const (
	colQuestionText  = "question_text"
	colQuestionType  = "question_type"
	colMarks         = "marks"
	colOrder         = "order"
	colOptions       = "options"
	colCorrectAnswer = "correct_answer"
)

type exportService struct {
	repo   repositories.Repository
	db     *gorm.DB
	logger *slog.Logger
	exams  ExamService
}

func NewExportService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, exams ExamService) ExportService {
	return &exportService{
		repo:   repo,
		db:     db,
		logger: logger,
		exams:  exams,
	}
}

// ExportAttempts writes one xlsx row per attempt of the exam
func (s *exportService) ExportAttempts(ctx context.Context, examID uint, w io.Writer) error {
	if _, err := s.repo.Exam().GetByID(ctx, s.db, examID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrExamNotFound
		}
		return fmt.Errorf("failed to get exam: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), attemptsSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetSheetRow(attemptsSheet, "A1", &attemptHeaders); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetRowStyle(attemptsSheet, 1, 1, style)
	}

	row := 2
	for offset := 0; ; offset += maxAttemptLimit {
		attempts, err := s.repo.Attempt().ListByExam(ctx, s.db, examID, repositories.AttemptFilters{
			Limit:  maxAttemptLimit,
			Offset: offset,
		})
		if err != nil {
			return fmt.Errorf("failed to list attempts: %w", err)
		}

		for _, a := range attempts {
			cell, _ := excelize.CoordinatesToCellName(1, row)
			values := attemptRow(a)
			if err := f.SetSheetRow(attemptsSheet, cell, &values); err != nil {
				return fmt.Errorf("failed to write attempt %d: %w", a.ID, err)
			}
			row++
		}
		if len(attempts) < maxAttemptLimit {
			break
		}
	}

	s.logger.Info("Exported exam attempts", "exam_id", examID, "rows", row-2)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write spreadsheet: %w", err)
	}
	return nil
}

func attemptRow(a *models.ExamAttempt) []interface{} {
	return []interface{}{
		a.ID,
		a.StudentName,
		stringOrEmpty(a.StudentEmail),
		string(a.Status),
		floatOrEmpty(a.Score),
		floatOrEmpty(a.Percentage),
		boolOrEmpty(a.Passed),
		timeOrEmpty(a.StartedAt),
		timeOrEmpty(a.CompletedAt),
	}
}

// ImportQuestions reads the first sheet of an xlsx workbook and adds each row as a question
func (s *exportService) ImportQuestions(ctx context.Context, examID uint, r io.Reader) ([]*models.Question, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpreadsheet, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrInvalidSpreadsheet)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpreadsheet, err)
	}

	reqs, err := parseQuestionRows(rows)
	if err != nil {
		return nil, err
	}

	questions, err := s.exams.AddQuestions(ctx, examID, reqs)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Imported questions", "exam_id", examID, "count", len(questions))
	return questions, nil
}

func parseQuestionRows(rows [][]string) ([]models.QuestionCreateRequest, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: missing header row", ErrInvalidSpreadsheet)
	}

	columns := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{colQuestionText, colQuestionType} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("%w: missing %s column", ErrInvalidSpreadsheet, required)
		}
	}

	cell := func(row []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	reqs := make([]models.QuestionCreateRequest, 0, len(rows)-1)
	for n, row := range rows[1:] {
		line := n + 2
		text := cell(row, colQuestionText)
		if text == "" {
			continue
		}

		req := models.QuestionCreateRequest{
			QuestionText: text,
			QuestionType: models.QuestionType(strings.ToLower(cell(row, colQuestionType))),
		}

		if v := cell(row, colMarks); v != "" {
			marks, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: row %d: invalid marks %q", ErrInvalidSpreadsheet, line, v)
			}
			req.Marks = &marks
		}
		if v := cell(row, colOrder); v != "" {
			order, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("%w: row %d: invalid order %q", ErrInvalidSpreadsheet, line, v)
			}
			req.Order = order
		}
		if v := cell(row, colOptions); v != "" {
			for _, opt := range strings.Split(v, optionsSep) {
				if opt = strings.TrimSpace(opt); opt != "" {
					req.Options = append(req.Options, opt)
				}
			}
		}
		if v := cell(row, colCorrectAnswer); v != "" {
			req.CorrectAnswer = &v
		}

		reqs = append(reqs, req)
	}

	if len(reqs) == 0 {
		return nil, fmt.Errorf("%w: no question rows", ErrInvalidSpreadsheet)
	}
	return reqs, nil
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func floatOrEmpty(f *float64) interface{} {
	if f == nil {
		return ""
	}
	return *f
}

func boolOrEmpty(b *bool) string {
	if b == nil {
		return ""
	}
	if *b {
		return "yes"
	}
	return "no"
}

func timeOrEmpty(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
