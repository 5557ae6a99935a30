package services

import (
	"context"
	"errors"
	"testing"

	"github.com/examhub/exam-service/internal/events"
	"github.com/examhub/exam-service/internal/models"
	"github.com/examhub/exam-service/internal/repositories"
)

func TestExamService_Create(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	exam, err := env.exams.Create(ctx, &models.ExamCreateRequest{
		Title:        "Biology",
		TotalMarks:   20,
		PassingMarks: 10,
		IsPublished:  true,
		Questions: []models.QuestionCreateRequest{
			{QuestionText: "Cells?", QuestionType: models.ShortAnswer},
			{QuestionText: "Pick one", QuestionType: models.MultipleChoice, Options: []string{"a", "b"}, CorrectAnswer: ptr("a")},
		},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if exam.ID == 0 || exam.QuestionsCount != 2 || len(exam.Questions) != 2 {
		t.Fatalf("unexpected exam %+v", exam)
	}
	if exam.Questions[0].Marks != 1 {
		t.Errorf("default marks = %v, want 1", exam.Questions[0].Marks)
	}
	for _, q := range exam.Questions {
		if q.ExamID != exam.ID {
			t.Errorf("question %d belongs to exam %d", q.ID, q.ExamID)
		}
	}

	if types := env.eventTypes(); len(types) != 1 || types[0] != events.ExamPublished {
		t.Errorf("events = %v, want [%s]", types, events.ExamPublished)
	}
}

func TestExamService_CreateValidation(t *testing.T) {
	tests := []struct {
		name      string
		req       models.ExamCreateRequest
		wantField string
	}{
		{
			name:      "missing title",
			req:       models.ExamCreateRequest{TotalMarks: 10},
			wantField: "title",
		},
		{
			name:      "passing above total",
			req:       models.ExamCreateRequest{Title: "x", TotalMarks: 5, PassingMarks: 6},
			wantField: "passing_marks",
		},
		{
			name:      "negative total",
			req:       models.ExamCreateRequest{Title: "x", TotalMarks: -1},
			wantField: "total_marks",
		},
		{
			name: "mcq without options",
			req: models.ExamCreateRequest{Title: "x", Questions: []models.QuestionCreateRequest{
				{QuestionText: "q", QuestionType: models.MultipleChoice, Options: []string{"only"}},
			}},
			wantField: "questions[0].options",
		},
		{
			name: "unknown question type",
			req: models.ExamCreateRequest{Title: "x", Questions: []models.QuestionCreateRequest{
				{QuestionText: "q", QuestionType: "matching"},
			}},
			wantField: "questions[0].question_type",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			_, err := env.exams.Create(context.Background(), &tt.req)

			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("Create() error = %v, want ValidationErrors", err)
			}
			found := false
			for _, e := range verrs {
				if e.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("no error for field %q in %+v", tt.wantField, verrs)
			}
		})
	}
}

func TestExamService_CreateInMissingFolder(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.exams.Create(context.Background(), &models.ExamCreateRequest{Title: "x", FolderID: ptr(uint(99))})
	if !errors.Is(err, ErrFolderNotFound) {
		t.Fatalf("Create() error = %v, want ErrFolderNotFound", err)
	}
	total, _, _ := env.repo.Exam().List(context.Background(), nil, repositories.ExamFilters{})
	if len(total) != 0 {
		t.Errorf("exam should not be stored, found %d", len(total))
	}
}

func TestExamService_GetAndPublic(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	published := env.createSampleExam(t, true)
	draft := env.createSampleExam(t, false)

	got, err := env.exams.GetByID(ctx, draft.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Questions[0].CorrectAnswer == nil {
		t.Error("full view should include correct answers")
	}

	public, err := env.exams.GetPublic(ctx, published.ID)
	if err != nil {
		t.Fatalf("GetPublic() error = %v", err)
	}
	if len(public.Questions) != 3 || public.Questions[0].Options[1] != "4" {
		t.Errorf("unexpected public view %+v", public)
	}

	if _, err := env.exams.GetPublic(ctx, draft.ID); !errors.Is(err, ErrExamNotPublished) {
		t.Errorf("GetPublic(draft) error = %v, want ErrExamNotPublished", err)
	}
	if _, err := env.exams.GetByID(ctx, 9999); !errors.Is(err, ErrExamNotFound) {
		t.Errorf("GetByID(missing) error = %v, want ErrExamNotFound", err)
	}
}

func TestExamService_List(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		env.createSampleExam(t, i%2 == 0)
	}

	tests := []struct {
		name      string
		filters   repositories.ExamFilters
		wantLen   int
		wantTotal int64
		wantLimit int
	}{
		{name: "defaults", wantLen: 3, wantTotal: 3, wantLimit: 100},
		{name: "published only", filters: repositories.ExamFilters{IsPublished: ptr(true)}, wantLen: 2, wantTotal: 2, wantLimit: 100},
		{name: "page", filters: repositories.ExamFilters{Offset: 2, Limit: 2}, wantLen: 1, wantTotal: 3, wantLimit: 2},
		{name: "limit clamp", filters: repositories.ExamFilters{Limit: 5000}, wantLen: 3, wantTotal: 3, wantLimit: 1000},
		{name: "past the end", filters: repositories.ExamFilters{Offset: 10}, wantLen: 0, wantTotal: 3, wantLimit: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := env.exams.List(ctx, tt.filters)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(resp.Exams) != tt.wantLen || resp.Total != tt.wantTotal || resp.Limit != tt.wantLimit {
				t.Errorf("got len=%d total=%d limit=%d, want %d %d %d",
					len(resp.Exams), resp.Total, resp.Limit, tt.wantLen, tt.wantTotal, tt.wantLimit)
			}
		})
	}
}

func TestExamService_Update(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	exam := env.createSampleExam(t, false)

	got, err := env.exams.Update(ctx, exam.ID, &models.ExamUpdateRequest{
		Title:       ptr("Arithmetic II"),
		IsPublished: ptr(true),
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got.Title != "Arithmetic II" || !got.IsPublished || got.TotalMarks != 10 {
		t.Errorf("unexpected exam %+v", got)
	}
	if len(got.Questions) != 3 {
		t.Errorf("questions = %d, want 3", len(got.Questions))
	}
	if types := env.eventTypes(); len(types) != 1 || types[0] != events.ExamPublished {
		t.Errorf("events = %v, want one exam.published", types)
	}

	// Already published: no second event
	if _, err := env.exams.Update(ctx, exam.ID, &models.ExamUpdateRequest{IsPublished: ptr(true)}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got := len(env.eventTypes()); got != 1 {
		t.Errorf("events = %d, want 1", got)
	}

	_, err = env.exams.Update(ctx, exam.ID, &models.ExamUpdateRequest{PassingMarks: ptr(11.0)})
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Errorf("Update() error = %v, want ValidationErrors", err)
	}

	if _, err := env.exams.Update(ctx, 9999, &models.ExamUpdateRequest{}); !errors.Is(err, ErrExamNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrExamNotFound", err)
	}
}

func TestExamService_DeleteCascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	exam := env.createSampleExam(t, true)

	attempt, err := env.attempts(ReuseAnyInExam).Start(ctx, exam.ID, &StartAttemptRequest{StudentName: "An"})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if err := env.exams.Delete(ctx, exam.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := env.attempts(ReuseAnyInExam).GetByID(ctx, attempt.ID); !errors.Is(err, ErrAttemptNotFound) {
		t.Errorf("attempt should be gone, got %v", err)
	}
	if err := env.exams.Delete(ctx, exam.ID); !errors.Is(err, ErrExamNotFound) {
		t.Errorf("second Delete() error = %v, want ErrExamNotFound", err)
	}
}

func TestExamService_AddQuestionsOrdering(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	exam := env.createSampleExam(t, false) // orders 0, 1, 2

	added, err := env.exams.AddQuestions(ctx, exam.ID, []models.QuestionCreateRequest{
		{QuestionText: "next", QuestionType: models.ShortAnswer},
		{QuestionText: "explicit", QuestionType: models.ShortAnswer, Order: 10},
		{QuestionText: "after explicit", QuestionType: models.Essay},
	})
	if err != nil {
		t.Fatalf("AddQuestions() error = %v", err)
	}

	wantOrders := []int{3, 10, 11}
	for i, q := range added {
		if q.Order != wantOrders[i] {
			t.Errorf("question %d order = %d, want %d", i, q.Order, wantOrders[i])
		}
	}

	single, err := env.exams.AddQuestion(ctx, exam.ID, &models.QuestionCreateRequest{QuestionText: "last", QuestionType: models.TrueFalse})
	if err != nil {
		t.Fatalf("AddQuestion() error = %v", err)
	}
	if single.Order != 12 {
		t.Errorf("order = %d, want 12", single.Order)
	}

	list, err := env.exams.ListQuestions(ctx, exam.ID)
	if err != nil {
		t.Fatalf("ListQuestions() error = %v", err)
	}
	if len(list) != 7 || list[len(list)-1].ID != single.ID {
		t.Errorf("unexpected question list, len %d", len(list))
	}
}

func TestExamService_AddQuestionsErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	exam := env.createSampleExam(t, false)

	_, err := env.exams.AddQuestions(ctx, 9999, []models.QuestionCreateRequest{{QuestionText: "q", QuestionType: models.Essay}})
	if !errors.Is(err, ErrExamNotFound) {
		t.Errorf("AddQuestions(missing exam) error = %v, want ErrExamNotFound", err)
	}

	_, err = env.exams.AddQuestions(ctx, exam.ID, []models.QuestionCreateRequest{
		{QuestionText: "ok", QuestionType: models.Essay},
		{QuestionText: "", QuestionType: models.Essay},
	})
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("AddQuestions() error = %v, want ValidationErrors", err)
	}
	if verrs[0].Field != "questions[1].question_text" {
		t.Errorf("field = %q, want questions[1].question_text", verrs[0].Field)
	}

	// Nothing from the rejected batch is stored
	list, _ := env.exams.ListQuestions(ctx, exam.ID)
	if len(list) != 3 {
		t.Errorf("questions = %d, want 3", len(list))
	}

	if _, err := env.exams.ListQuestions(ctx, 9999); !errors.Is(err, ErrExamNotFound) {
		t.Errorf("ListQuestions(missing) error = %v, want ErrExamNotFound", err)
	}
}

func TestExamService_UpdateAndDeleteQuestion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	exam := env.createSampleExam(t, false)
	other := env.createSampleExam(t, false)
	qID := exam.Questions[1].ID

	got, err := env.exams.UpdateQuestion(ctx, exam.ID, qID, &models.QuestionUpdateRequest{
		QuestionText:  ptr("2 is odd"),
		CorrectAnswer: ptr("false"),
	})
	if err != nil {
		t.Fatalf("UpdateQuestion() error = %v", err)
	}
	if got.QuestionText != "2 is odd" || *got.CorrectAnswer != "false" || got.Marks != 3 {
		t.Errorf("unexpected question %+v", got)
	}

	// Switching to mcq requires options
	_, err = env.exams.UpdateQuestion(ctx, exam.ID, qID, &models.QuestionUpdateRequest{QuestionType: ptr(models.MultipleChoice)})
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Errorf("UpdateQuestion() error = %v, want ValidationErrors", err)
	}

	tests := []struct {
		name   string
		examID uint
		qID    uint
	}{
		{name: "question of another exam", examID: other.ID, qID: qID},
		{name: "missing question", examID: exam.ID, qID: 9999},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := env.exams.UpdateQuestion(ctx, tt.examID, tt.qID, &models.QuestionUpdateRequest{}); !errors.Is(err, ErrQuestionNotFound) {
				t.Errorf("UpdateQuestion() error = %v, want ErrQuestionNotFound", err)
			}
			if err := env.exams.DeleteQuestion(ctx, tt.examID, tt.qID); !errors.Is(err, ErrQuestionNotFound) {
				t.Errorf("DeleteQuestion() error = %v, want ErrQuestionNotFound", err)
			}
		})
	}

	if err := env.exams.DeleteQuestion(ctx, exam.ID, qID); err != nil {
		t.Fatalf("DeleteQuestion() error = %v", err)
	}
	list, _ := env.exams.ListQuestions(ctx, exam.ID)
	if len(list) != 2 {
		t.Errorf("questions = %d, want 2", len(list))
	}
}
