// Package extraction turns document text into question drafts using an
// OpenAI-compatible chat model, with a deterministic offline fallback.
package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	openai "github.com/sashabaranov/go-openai"

	"github.com/examhub/exam-service/internal/genai"
	"github.com/examhub/exam-service/internal/models"
)

const (
	// maxPromptText bounds how much document text is sent to the model
	maxPromptText = 4000

	// minReadableText is the shortest document text worth sending to the model
	minReadableText = 10
)

// Config carries the AI capability flag and client settings
type Config = genai.Config

// QuestionDraft is a candidate question produced from a document
type QuestionDraft struct {
	QuestionText  string                 `json:"question_text"`
	QuestionType  models.QuestionType    `json:"question_type"`
	Marks         float64                `json:"marks"`
	Difficulty    models.DifficultyLevel `json:"difficulty,omitempty"`
	Options       []string               `json:"options,omitempty"`
	CorrectAnswer *string                `json:"correct_answer,omitempty"`
	Explanation   string                 `json:"explanation,omitempty"`
}

// ToCreateRequest converts the draft into a request for adding it to an exam
func (d QuestionDraft) ToCreateRequest() models.QuestionCreateRequest {
	marks := d.Marks
	return models.QuestionCreateRequest{
		QuestionText:  d.QuestionText,
		QuestionType:  d.QuestionType,
		Marks:         &marks,
		Options:       d.Options,
		CorrectAnswer: d.CorrectAnswer,
	}
}

// Result is what ExtractQuestions hands back. Fallback is set when the drafts
// came from the local generator.
type Result struct {
	Questions []QuestionDraft `json:"questions"`
	Fallback  bool            `json:"fallback"`
}

type Service struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

// NewService builds the extractor. With cfg.Enabled false no client is created
// and every call uses the fallback generator.
func NewService(cfg Config, logger *slog.Logger) *Service {
	return &Service{client: genai.NewClient(cfg), model: cfg.Model, logger: logger}
}

func (s *Service) Enabled() bool {
	return s.client != nil
}

// readable reports whether text has enough content to extract questions from
func readable(text string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(text)) >= minReadableText
}

// ExtractQuestions always returns exactly count drafts of questionType.
// Text shorter than minReadableText and any failure of the model call fall
// back to generated placeholders.
func (s *Service) ExtractQuestions(ctx context.Context, text string, questionType models.QuestionType, count int, difficulty models.DifficultyLevel) Result {
	if count <= 0 {
		return Result{Questions: []QuestionDraft{}}
	}
	if difficulty == "" {
		difficulty = models.DifficultyMedium
	}

	if s.client == nil || !readable(text) {
		s.logger.Info("Using fallback question generator",
			"question_type", questionType,
			"count", count,
			"ai_enabled", s.Enabled(),
			"text_length", len(text))
		return Result{Questions: Fallback(text, questionType, count, difficulty), Fallback: true}
	}

	drafts, err := s.generate(ctx, text, questionType, count, difficulty)
	if err != nil {
		s.logger.Warn("Question extraction failed, using fallback",
			"question_type", questionType,
			"count", count,
			"error", err)
		return Result{Questions: Fallback(text, questionType, count, difficulty), Fallback: true}
	}
	return Result{Questions: drafts}
}

func (s *Service) generate(ctx context.Context, text string, questionType models.QuestionType, count int, difficulty models.DifficultyLevel) ([]QuestionDraft, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(text, questionType, count, difficulty)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.4,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM API call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("LLM returned no choices")
	}

	raw := resp.Choices[0].Message.Content
	s.logger.Debug("LLM extraction response", "raw", raw)

	drafts, err := parseDrafts(raw, questionType, difficulty)
	if err != nil {
		return nil, err
	}
	if len(drafts) < count {
		return nil, fmt.Errorf("LLM returned %d usable questions, want %d", len(drafts), count)
	}
	return drafts[:count], nil
}

// parseDrafts accepts {"questions": [...]} or a bare array, optionally inside a
// markdown code fence. Drafts without text are dropped.
func parseDrafts(raw string, questionType models.QuestionType, difficulty models.DifficultyLevel) ([]QuestionDraft, error) {
	body := stripCodeFence(raw)

	var drafts []QuestionDraft
	if strings.HasPrefix(body, "[") {
		if err := json.Unmarshal([]byte(body), &drafts); err != nil {
			return nil, fmt.Errorf("parse LLM response: %w", err)
		}
	} else {
		var envelope struct {
			Questions []QuestionDraft `json:"questions"`
		}
		if err := json.Unmarshal([]byte(body), &envelope); err != nil {
			return nil, fmt.Errorf("parse LLM response: %w", err)
		}
		drafts = envelope.Questions
	}

	out := make([]QuestionDraft, 0, len(drafts))
	for _, d := range drafts {
		if strings.TrimSpace(d.QuestionText) == "" {
			continue
		}
		d.QuestionType = questionType
		d.Difficulty = difficulty
		if d.Marks <= 0 {
			d.Marks = DefaultMarks(questionType)
		}
		if questionType == models.Essay {
			d.CorrectAnswer = nil
		}
		if questionType != models.MultipleChoice && questionType != models.TrueFalse {
			d.Options = nil
		}
		out = append(out, d)
	}
	return out, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

// DefaultMarks is the mark value given to generated questions of type t
func DefaultMarks(t models.QuestionType) float64 {
	switch t {
	case models.ShortAnswer:
		return 2
	case models.Essay:
		return 5
	default:
		return 1
	}
}
