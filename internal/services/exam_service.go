package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/examhub/exam-service/internal/events"
	"github.com/examhub/exam-service/internal/models"
	"github.com/examhub/exam-service/internal/repositories"
	"github.com/examhub/exam-service/internal/validator"
	"gorm.io/gorm"
)

const (
	defaultExamLimit = 100
	maxExamLimit     = 1000
)

type examService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewExamService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) ExamService {
	return &examService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

// ===== EXAM OPERATIONS =====

func (s *examService) Create(ctx context.Context, req *models.ExamCreateRequest) (*models.Exam, error) {
	s.logger.Info("Creating exam", "title", req.Title, "questions", len(req.Questions))

	if err := s.validator.ValidateExamCreate(req); err != nil {
		return nil, err
	}

	exam := &models.Exam{
		Title:        req.Title,
		Description:  req.Description,
		Duration:     req.Duration,
		TotalMarks:   req.TotalMarks,
		PassingMarks: req.PassingMarks,
		IsPublished:  req.IsPublished,
		FolderID:     req.FolderID,
	}

	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := s.ensureFolder(ctx, txRepo, req.FolderID); err != nil {
			return err
		}
		if err := txRepo.Exam().Create(ctx, nil, exam); err != nil {
			return err
		}

		questions := make([]*models.Question, 0, len(req.Questions))
		for i := range req.Questions {
			questions = append(questions, questionFromRequest(exam.ID, &req.Questions[i]))
		}
		if err := txRepo.Question().CreateBatch(ctx, nil, questions); err != nil {
			return fmt.Errorf("failed to create questions: %w", err)
		}

		exam.Questions = make([]models.Question, 0, len(questions))
		for _, q := range questions {
			exam.Questions = append(exam.Questions, *q)
		}
		exam.QuestionsCount = len(questions)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create exam: %w", err)
	}

	s.logger.Info("Exam created", "exam_id", exam.ID)
	if exam.IsPublished {
		s.publishExam(ctx, exam)
	}
	return exam, nil
}

func (s *examService) GetByID(ctx context.Context, id uint) (*models.Exam, error) {
	exam, err := s.repo.Exam().GetWithQuestions(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("failed to get exam: %w", err)
	}
	if exam.Questions == nil {
		exam.Questions = []models.Question{}
	}
	return exam, nil
}

// GetPublic returns the test-taker view of a published exam
func (s *examService) GetPublic(ctx context.Context, id uint) (*models.PublicExam, error) {
	exam, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !exam.IsPublished {
		return nil, ErrExamNotPublished
	}
	public := exam.Public()
	return &public, nil
}

func (s *examService) List(ctx context.Context, filters repositories.ExamFilters) (*ExamListResponse, error) {
	filters.Offset, filters.Limit = normalizePage(filters.Offset, filters.Limit, defaultExamLimit, maxExamLimit)

	exams, total, err := s.repo.Exam().List(ctx, s.db, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list exams: %w", err)
	}
	if exams == nil {
		exams = []*models.Exam{}
	}

	return &ExamListResponse{
		Exams: exams,
		Total: total,
		Skip:  filters.Offset,
		Limit: filters.Limit,
	}, nil
}

func (s *examService) Update(ctx context.Context, id uint, req *models.ExamUpdateRequest) (*models.Exam, error) {
	s.logger.Info("Updating exam", "exam_id", id)

	exam, err := s.repo.Exam().GetByID(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("failed to get exam: %w", err)
	}

	if err := s.validator.ValidateExamUpdate(req, exam); err != nil {
		return nil, err
	}
	if err := s.ensureFolder(ctx, s.repo, req.FolderID); err != nil {
		return nil, err
	}

	wasPublished := exam.IsPublished
	applyExamUpdate(exam, req)

	if err := s.repo.Exam().Update(ctx, s.db, exam); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("failed to update exam: %w", err)
	}

	if !wasPublished && exam.IsPublished {
		s.publishExam(ctx, exam)
	}
	return s.GetByID(ctx, id)
}

func applyExamUpdate(exam *models.Exam, req *models.ExamUpdateRequest) {
	if req.Title != nil {
		exam.Title = *req.Title
	}
	if req.Description != nil {
		exam.Description = req.Description
	}
	if req.Duration != nil {
		exam.Duration = req.Duration
	}
	if req.TotalMarks != nil {
		exam.TotalMarks = *req.TotalMarks
	}
	if req.PassingMarks != nil {
		exam.PassingMarks = *req.PassingMarks
	}
	if req.IsPublished != nil {
		exam.IsPublished = *req.IsPublished
	}
	if req.FolderID != nil {
		exam.FolderID = req.FolderID
	}
}

// Delete removes the exam with its questions, attempts and answers
func (s *examService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Exam().Delete(ctx, s.db, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrExamNotFound
		}
		return fmt.Errorf("failed to delete exam: %w", err)
	}

	s.logger.Info("Exam deleted", "exam_id", id)
	return nil
}

// ===== QUESTION OPERATIONS =====

func (s *examService) AddQuestion(ctx context.Context, examID uint, req *models.QuestionCreateRequest) (*models.Question, error) {
	questions, err := s.AddQuestions(ctx, examID, []models.QuestionCreateRequest{*req})
	if err != nil {
		return nil, err
	}
	return questions[0], nil
}

// AddQuestions appends questions to an exam. Requests without an explicit order
// are placed after the exam's current last question.
func (s *examService) AddQuestions(ctx context.Context, examID uint, reqs []models.QuestionCreateRequest) ([]*models.Question, error) {
	s.logger.Info("Adding questions to exam", "exam_id", examID, "count", len(reqs))

	questions := make([]*models.Question, 0, len(reqs))
	var errs ValidationErrors
	for i := range reqs {
		q := questionFromRequest(examID, &reqs[i])
		if err := s.validator.ValidateStruct(&reqs[i]); err != nil {
			errs = append(errs, prefixFields(err, i, len(reqs))...)
			continue
		}
		if err := s.validator.ValidateQuestion(q); err != nil {
			errs = append(errs, prefixFields(err, i, len(reqs))...)
			continue
		}
		questions = append(questions, q)
	}
	if len(errs) > 0 {
		return nil, errs
	}

	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		exists, err := txRepo.Exam().ExistsByID(ctx, nil, examID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrExamNotFound
		}

		maxOrder, err := txRepo.Question().MaxOrder(ctx, nil, examID)
		if err != nil {
			return err
		}
		next := maxOrder + 1
		for _, q := range questions {
			if q.Order == 0 {
				q.Order = next
			}
			if q.Order >= next {
				next = q.Order + 1
			}
		}

		return txRepo.Question().CreateBatch(ctx, nil, questions)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add questions: %w", err)
	}
	return questions, nil
}

func (s *examService) ListQuestions(ctx context.Context, examID uint) ([]*models.Question, error) {
	exists, err := s.repo.Exam().ExistsByID(ctx, s.db, examID)
	if err != nil {
		return nil, fmt.Errorf("failed to check exam: %w", err)
	}
	if !exists {
		return nil, ErrExamNotFound
	}

	questions, err := s.repo.Question().GetByExam(ctx, s.db, examID)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	if questions == nil {
		questions = []*models.Question{}
	}
	return questions, nil
}

func (s *examService) UpdateQuestion(ctx context.Context, examID, questionID uint, req *models.QuestionUpdateRequest) (*models.Question, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	question, err := s.getExamQuestion(ctx, examID, questionID)
	if err != nil {
		return nil, err
	}

	if req.QuestionText != nil {
		question.QuestionText = *req.QuestionText
	}
	if req.QuestionType != nil {
		question.QuestionType = *req.QuestionType
	}
	if req.Marks != nil {
		question.Marks = *req.Marks
	}
	if req.Order != nil {
		question.Order = *req.Order
	}
	if req.Options != nil {
		question.Options = req.Options
	}
	if req.CorrectAnswer != nil {
		question.CorrectAnswer = req.CorrectAnswer
	}

	if err := s.validator.ValidateQuestion(question); err != nil {
		return nil, err
	}

	if err := s.repo.Question().Update(ctx, s.db, question); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to update question: %w", err)
	}
	return question, nil
}

func (s *examService) DeleteQuestion(ctx context.Context, examID, questionID uint) error {
	if _, err := s.getExamQuestion(ctx, examID, questionID); err != nil {
		return err
	}

	if err := s.repo.Question().Delete(ctx, s.db, questionID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("failed to delete question: %w", err)
	}

	s.logger.Info("Question deleted", "exam_id", examID, "question_id", questionID)
	return nil
}

// ===== HELPERS =====

// getExamQuestion loads a question and checks that it belongs to the exam
func (s *examService) getExamQuestion(ctx context.Context, examID, questionID uint) (*models.Question, error) {
	question, err := s.repo.Question().GetByID(ctx, s.db, questionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	if question.ExamID != examID {
		return nil, ErrQuestionNotFound
	}
	return question, nil
}

func (s *examService) ensureFolder(ctx context.Context, repo repositories.Repository, folderID *uint) error {
	if folderID == nil {
		return nil
	}
	if _, err := repo.Folder().GetByID(ctx, nil, *folderID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrFolderNotFound
		}
		return fmt.Errorf("failed to get folder: %w", err)
	}
	return nil
}

func (s *examService) publishExam(ctx context.Context, exam *models.Exam) {
	publishEvent(ctx, s.publisher, s.logger, events.NewEvent(events.ExamPublished, events.ExamPublishedData{
		ExamID: exam.ID,
		Title:  exam.Title,
	}))
}

func questionFromRequest(examID uint, req *models.QuestionCreateRequest) *models.Question {
	return &models.Question{
		ExamID:        examID,
		QuestionText:  req.QuestionText,
		QuestionType:  req.QuestionType,
		Marks:         req.MarksOrDefault(),
		Order:         req.Order,
		Options:       req.Options,
		CorrectAnswer: req.CorrectAnswer,
	}
}

// prefixFields scopes validation errors to questions[i] when validating a batch
func prefixFields(err error, index, batchSize int) ValidationErrors {
	errs := validator.ToValidationErrors(err)
	if batchSize == 1 {
		return errs
	}
	for i := range errs {
		errs[i].Field = fmt.Sprintf("questions[%d].%s", index, errs[i].Field)
	}
	return errs
}
