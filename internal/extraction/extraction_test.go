package extraction

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/examhub/exam-service/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newFakeLLM serves chat completions whose message content is reply
func newFakeLLM(t *testing.T, status int, reply string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 1,
			"model":   "test-model",
			"choices": []map[string]interface{}{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]string{"role": "assistant", "content": reply},
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestService(url string) *Service {
	return NewService(Config{Enabled: true, APIKey: "test", BaseURL: url + "/v1", Model: "test-model"}, testLogger())
}

func TestExtractQuestionsDisabledUsesFallback(t *testing.T) {
	s := NewService(Config{Enabled: false}, testLogger())
	if s.Enabled() {
		t.Fatal("service should be disabled")
	}

	for _, qt := range models.QuestionTypes {
		t.Run(string(qt), func(t *testing.T) {
			res := s.ExtractQuestions(context.Background(), "Photosynthesis converts light", qt, 3, models.DifficultyEasy)
			if !res.Fallback {
				t.Error("Fallback = false, want true")
			}
			if len(res.Questions) != 3 {
				t.Fatalf("got %d questions, want 3", len(res.Questions))
			}
			for _, q := range res.Questions {
				if q.QuestionType != qt {
					t.Errorf("QuestionType = %s, want %s", q.QuestionType, qt)
				}
			}
		})
	}
}

func TestExtractQuestionsFromModel(t *testing.T) {
	reply := "```json\n" + `{"questions": [
		{"question_text": "Q1?", "options": ["A. x", "B. y", "C. z", "D. w"], "correct_answer": "B"},
		{"question_text": "Q2?", "options": ["A. x", "B. y", "C. z", "D. w"], "correct_answer": "A", "marks": 2},
		{"question_text": "Q3?", "options": ["A. x", "B. y", "C. z", "D. w"], "correct_answer": "C"}
	]}` + "\n```"
	srv := newFakeLLM(t, http.StatusOK, reply)

	res := newTestService(srv.URL).ExtractQuestions(context.Background(), "some document text", models.MultipleChoice, 2, "")
	if res.Fallback {
		t.Fatal("Fallback = true, want model output")
	}
	if len(res.Questions) != 2 {
		t.Fatalf("got %d questions, want 2", len(res.Questions))
	}
	if res.Questions[0].QuestionText != "Q1?" || *res.Questions[0].CorrectAnswer != "B" {
		t.Errorf("first question = %+v", res.Questions[0])
	}
	if res.Questions[0].Marks != 1 {
		t.Errorf("default marks = %v, want 1", res.Questions[0].Marks)
	}
	if res.Questions[1].Marks != 2 {
		t.Errorf("explicit marks = %v, want 2", res.Questions[1].Marks)
	}
	if res.Questions[0].Difficulty != models.DifficultyMedium {
		t.Errorf("Difficulty = %s, want medium", res.Questions[0].Difficulty)
	}
}

const fourShortAnswers = `{"questions": [
	{"question_text": "A?", "correct_answer": "a"},
	{"question_text": "B?", "correct_answer": "b"},
	{"question_text": "C?", "correct_answer": "c"},
	{"question_text": "D?", "correct_answer": "d"}
]}`

func TestExtractQuestionsFallsBack(t *testing.T) {
	tests := []struct {
		name   string
		status int
		reply  string
		text   string
	}{
		{name: "api error", status: http.StatusInternalServerError, text: "Cells divide by mitosis."},
		{name: "malformed json", status: http.StatusOK, reply: "not json at all", text: "Cells divide by mitosis."},
		{name: "too few questions", status: http.StatusOK, reply: `{"questions": [{"question_text": "only one"}]}`, text: "Cells divide by mitosis."},
		{name: "empty text", status: http.StatusOK, reply: fourShortAnswers, text: "   "},
		{name: "text under ten characters", status: http.StatusOK, reply: fourShortAnswers, text: "  too short "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newFakeLLM(t, tt.status, tt.reply)
			res := newTestService(srv.URL).ExtractQuestions(context.Background(), tt.text, models.ShortAnswer, 4, models.DifficultyHard)
			if !res.Fallback {
				t.Error("Fallback = false, want true")
			}
			if len(res.Questions) != 4 {
				t.Fatalf("got %d questions, want 4", len(res.Questions))
			}
			for _, q := range res.Questions {
				if q.QuestionType != models.ShortAnswer || q.Marks != 2 {
					t.Errorf("draft = %+v", q)
				}
			}
		})
	}
}

func TestFallbackDrafts(t *testing.T) {
	tests := []struct {
		qt      models.QuestionType
		marks   float64
		correct *string
		options int
	}{
		{models.MultipleChoice, 1, strPtr("A"), 4},
		{models.TrueFalse, 1, strPtr("Đúng"), 2},
		{models.ShortAnswer, 2, strPtr("Đáp án cho câu hỏi 1"), 0},
		{models.Essay, 5, nil, 0},
	}
	for _, tt := range tests {
		t.Run(string(tt.qt), func(t *testing.T) {
			drafts := Fallback("content", tt.qt, 2, models.DifficultyMedium)
			if len(drafts) != 2 {
				t.Fatalf("got %d drafts, want 2", len(drafts))
			}
			d := drafts[0]
			if d.Marks != tt.marks {
				t.Errorf("Marks = %v, want %v", d.Marks, tt.marks)
			}
			if len(d.Options) != tt.options {
				t.Errorf("Options = %v, want %d entries", d.Options, tt.options)
			}
			switch {
			case tt.correct == nil && d.CorrectAnswer != nil:
				t.Errorf("CorrectAnswer = %q, want nil", *d.CorrectAnswer)
			case tt.correct != nil && (d.CorrectAnswer == nil || *d.CorrectAnswer != *tt.correct):
				t.Errorf("CorrectAnswer = %v, want %q", d.CorrectAnswer, *tt.correct)
			}
		})
	}

	a := Fallback("same input", models.MultipleChoice, 3, models.DifficultyEasy)
	b := Fallback("same input", models.MultipleChoice, 3, models.DifficultyEasy)
	for i := range a {
		if a[i].QuestionText != b[i].QuestionText {
			t.Errorf("fallback is not deterministic at %d", i)
		}
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"```json\n[1]\n```", "[1]"},
		{"```\n{}\n```", "{}"},
		{"  {\"a\":1}  ", "{\"a\":1}"},
	}
	for _, tt := range tests {
		if got := stripCodeFence(tt.in); got != tt.want {
			t.Errorf("stripCodeFence(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBuildPromptTruncatesText(t *testing.T) {
	long := strings.Repeat("ж", maxPromptText+500)
	prompt := buildPrompt(long, models.TrueFalse, 5, models.DifficultyEasy)

	if strings.Count(prompt, "ж") != maxPromptText {
		t.Errorf("prompt carries %d characters of text, want %d", strings.Count(prompt, "ж"), maxPromptText)
	}
	if !strings.Contains(prompt, "5 câu hỏi loại true_false") {
		t.Error("prompt should name the count and question type")
	}
}

func TestParseDraftsBareArray(t *testing.T) {
	drafts, err := parseDrafts(`[{"question_text": "Essay?", "correct_answer": "x", "options": ["a"]}]`, models.Essay, models.DifficultyHard)
	if err != nil {
		t.Fatalf("parseDrafts() error = %v", err)
	}
	if len(drafts) != 1 {
		t.Fatalf("got %d drafts, want 1", len(drafts))
	}
	if drafts[0].CorrectAnswer != nil || drafts[0].Options != nil {
		t.Errorf("essay draft should carry no answer or options: %+v", drafts[0])
	}
	if drafts[0].Marks != 5 {
		t.Errorf("Marks = %v, want 5", drafts[0].Marks)
	}
}
