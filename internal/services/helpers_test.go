package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/examhub/exam-service/internal/events"
	"github.com/examhub/exam-service/internal/models"
	"github.com/examhub/exam-service/internal/validator"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr[T any](v T) *T {
	return &v
}

// testEnv wires the services over one fake repository
type testEnv struct {
	repo      *fakeRepo
	publisher *events.MockEventPublisher
	validator *validator.Validator
	exams     ExamService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := testLogger()
	env := &testEnv{
		repo:      newFakeRepo(),
		publisher: events.NewMockEventPublisher(logger),
		validator: validator.New(),
	}
	env.exams = NewExamService(env.repo, nil, logger, env.validator, env.publisher)
	return env
}

func (e *testEnv) attempts(policy AttemptReusePolicy) AttemptService {
	return NewAttemptService(e.repo, nil, testLogger(), e.validator, e.publisher, policy)
}

func (e *testEnv) eventTypes() []string {
	var types []string
	for _, ev := range e.publisher.GetPublishedEvents() {
		types = append(types, ev.Type)
	}
	return types
}

// createSampleExam creates a published exam worth 10 marks with passing mark 6:
// a 4-mark mcq with answer "4", a 3-mark true/false and a 3-mark essay.
func (e *testEnv) createSampleExam(t *testing.T, published bool) *models.Exam {
	t.Helper()
	exam, err := e.exams.Create(context.Background(), &models.ExamCreateRequest{
		Title:        "Arithmetic",
		TotalMarks:   10,
		PassingMarks: 6,
		IsPublished:  published,
		Questions: []models.QuestionCreateRequest{
			{QuestionText: "2 + 2 = ?", QuestionType: models.MultipleChoice, Marks: ptr(4.0), Options: []string{"3", "4", "5"}, CorrectAnswer: ptr("4")},
			{QuestionText: "1 is odd", QuestionType: models.TrueFalse, Marks: ptr(3.0), Order: 1, CorrectAnswer: ptr("true")},
			{QuestionText: "Explain addition", QuestionType: models.Essay, Marks: ptr(3.0), Order: 2, CorrectAnswer: ptr("any")},
		},
	})
	if err != nil {
		t.Fatalf("create exam: %v", err)
	}
	e.publisher.ClearEvents()
	return exam
}
