package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/examhub/exam-service/internal/events"
	"github.com/examhub/exam-service/internal/grading"
	"github.com/examhub/exam-service/internal/models"
	"github.com/examhub/exam-service/internal/repositories"
	"github.com/examhub/exam-service/internal/validator"
	"gorm.io/gorm"
)

const (
	defaultAttemptLimit = 100
	maxAttemptLimit     = 1000
)

type attemptService struct {
	repo        repositories.Repository
	db          *gorm.DB
	logger      *slog.Logger
	validator   *validator.Validator
	publisher   events.EventPublisher
	reusePolicy AttemptReusePolicy
}

func NewAttemptService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher, reusePolicy AttemptReusePolicy) AttemptService {
	if reusePolicy == "" {
		reusePolicy = ReuseAnyInExam
	}
	return &attemptService{
		repo:        repo,
		db:          db,
		logger:      logger,
		validator:   validator,
		publisher:   publisher,
		reusePolicy: reusePolicy,
	}
}

// ===== CORE ATTEMPT OPERATIONS =====

// Start opens an attempt on a published exam, or hands back an in-progress one
// allowed by the reuse policy. The exam row stays locked while the check runs,
// so concurrent starts for one exam create at most one fresh attempt.
func (s *attemptService) Start(ctx context.Context, examID uint, req *StartAttemptRequest) (*models.ExamAttempt, error) {
	s.logger.Info("Starting exam attempt",
		"exam_id", examID,
		"student_name", req.StudentName)

	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	var (
		attempt *models.ExamAttempt
		reused  bool
	)
	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		exam, err := txRepo.Exam().GetByIDForUpdate(ctx, nil, examID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrExamNotFound
			}
			return fmt.Errorf("failed to get exam: %w", err)
		}
		if !exam.IsPublished {
			return ErrExamNotPublished
		}

		existing, err := s.findReusableAttempt(ctx, txRepo, examID, req)
		if err != nil {
			return err
		}
		if existing != nil {
			attempt = existing
			reused = true
			return nil
		}

		now := time.Now()
		attempt = &models.ExamAttempt{
			ExamID:       examID,
			StudentName:  req.StudentName,
			StudentEmail: req.StudentEmail,
			Status:       models.AttemptInProgress,
			StartedAt:    &now,
		}
		if err := txRepo.Attempt().Create(ctx, nil, attempt); err != nil {
			return fmt.Errorf("failed to create attempt: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start attempt: %w", err)
	}

	if attempt.Answers == nil {
		attempt.Answers = []models.Answer{}
	}

	if reused {
		s.logger.Info("Reusing in-progress attempt", "attempt_id", attempt.ID, "exam_id", examID)
	} else {
		s.logger.Info("Exam attempt started", "attempt_id", attempt.ID, "exam_id", examID)
	}

	publishEvent(ctx, s.publisher, s.logger, events.NewEvent(events.AttemptStarted, events.AttemptStartedData{
		AttemptID:   attempt.ID,
		ExamID:      examID,
		StudentName: attempt.StudentName,
		Reused:      reused,
	}))

	return attempt, nil
}

func (s *attemptService) findReusableAttempt(ctx context.Context, txRepo repositories.Repository, examID uint, req *StartAttemptRequest) (*models.ExamAttempt, error) {
	status := models.AttemptInProgress
	inProgress, err := txRepo.Attempt().ListByExam(ctx, nil, examID, repositories.AttemptFilters{Status: &status})
	if err != nil {
		return nil, fmt.Errorf("failed to list in-progress attempts: %w", err)
	}

	for _, a := range inProgress {
		switch s.reusePolicy {
		case ReuseSameStudent:
			if a.MatchesStudent(req.StudentName, req.StudentEmail) {
				return a, nil
			}
		default:
			return a, nil
		}
	}
	return nil, nil
}

// Submit grades the answers and completes the attempt in one transaction.
// Unknown question ids are skipped. A second submission fails with
// ErrAttemptAlreadySubmitted and writes nothing.
func (s *attemptService) Submit(ctx context.Context, attemptID uint, req *SubmitAttemptRequest) (*models.ExamAttempt, error) {
	s.logger.Info("Submitting exam attempt",
		"attempt_id", attemptID,
		"answers", len(req.Answers))

	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	var attempt *models.ExamAttempt
	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		current, err := txRepo.Attempt().GetByIDForUpdate(ctx, nil, attemptID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrAttemptNotFound
			}
			return fmt.Errorf("failed to get attempt: %w", err)
		}
		if current.IsCompleted() {
			return ErrAttemptAlreadySubmitted
		}

		exam, err := txRepo.Exam().GetWithQuestions(ctx, nil, current.ExamID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrExamNotFound
			}
			return fmt.Errorf("failed to get exam with questions: %w", err)
		}

		answers, marks := gradeSubmission(exam, current.ID, req.Answers)
		if err := txRepo.Answer().CreateBatch(ctx, nil, answers); err != nil {
			return fmt.Errorf("failed to save answers: %w", err)
		}

		summary := grading.Summarize(exam.TotalMarks, exam.PassingMarks, marks...)
		completedAt := time.Now()
		current.Status = models.AttemptCompleted
		current.Score = &summary.Score
		current.Percentage = &summary.Percentage
		current.Passed = &summary.Passed
		current.CompletedAt = &completedAt

		completed, err := txRepo.Attempt().Complete(ctx, nil, current)
		if err != nil {
			return err
		}
		if !completed {
			// Lost the race with another submission; roll back our answers
			return ErrAttemptAlreadySubmitted
		}

		current.Answers = make([]models.Answer, 0, len(answers))
		for _, a := range answers {
			current.Answers = append(current.Answers, *a)
		}
		attempt = current
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to submit attempt: %w", err)
	}

	s.logger.Info("Exam attempt submitted",
		"attempt_id", attempt.ID,
		"exam_id", attempt.ExamID,
		"score", *attempt.Score,
		"percentage", *attempt.Percentage,
		"passed", *attempt.Passed)

	publishEvent(ctx, s.publisher, s.logger, events.NewEvent(events.AttemptSubmitted, events.AttemptSubmittedData{
		AttemptID:  attempt.ID,
		ExamID:     attempt.ExamID,
		Score:      *attempt.Score,
		Percentage: *attempt.Percentage,
		Passed:     *attempt.Passed,
		Answered:   len(attempt.Answers),
	}))

	return attempt, nil
}

// gradeSubmission grades each submission against the exam's questions in submitted order
func gradeSubmission(exam *models.Exam, attemptID uint, submissions []AnswerSubmission) ([]*models.Answer, []float64) {
	answers := make([]*models.Answer, 0, len(submissions))
	marks := make([]float64, 0, len(submissions))

	for _, sub := range submissions {
		question, ok := exam.QuestionByID(sub.QuestionID)
		if !ok {
			continue
		}

		result := grading.Grade(question, sub.AnswerText)
		isCorrect := result.IsCorrect
		answers = append(answers, &models.Answer{
			AttemptID:     attemptID,
			QuestionID:    question.ID,
			AnswerText:    sub.AnswerText,
			IsCorrect:     &isCorrect,
			MarksObtained: result.MarksObtained,
		})
		marks = append(marks, result.MarksObtained)
	}
	return answers, marks
}

// ===== READ OPERATIONS =====

func (s *attemptService) GetByID(ctx context.Context, attemptID uint) (*models.ExamAttempt, error) {
	attempt, err := s.repo.Attempt().GetByIDWithAnswers(ctx, s.db, attemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	if attempt.Answers == nil {
		attempt.Answers = []models.Answer{}
	}
	return attempt, nil
}

// ListByExam never fails for a missing exam; it just returns no attempts. Each item
// carries the exam title and total marks.
func (s *attemptService) ListByExam(ctx context.Context, examID uint, skip, limit int) ([]*AttemptListItem, error) {
	skip, limit = normalizePage(skip, limit, defaultAttemptLimit, maxAttemptLimit)

	exam, err := s.repo.Exam().GetByID(ctx, s.db, examID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return []*AttemptListItem{}, nil
		}
		return nil, fmt.Errorf("failed to get exam: %w", err)
	}

	attempts, err := s.repo.Attempt().ListByExam(ctx, s.db, examID, repositories.AttemptFilters{
		Limit:  limit,
		Offset: skip,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}

	items := make([]*AttemptListItem, len(attempts))
	for i, attempt := range attempts {
		items[i] = &AttemptListItem{
			ExamAttempt: attempt,
			ExamTitle:   exam.Title,
			TotalMarks:  exam.TotalMarks,
		}
	}
	return items, nil
}

func (s *attemptService) Delete(ctx context.Context, attemptID uint) error {
	if err := s.repo.Attempt().Delete(ctx, s.db, attemptID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrAttemptNotFound
		}
		return fmt.Errorf("failed to delete attempt: %w", err)
	}

	s.logger.Info("Exam attempt deleted", "attempt_id", attemptID)
	return nil
}
