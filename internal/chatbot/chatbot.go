// Package chatbot answers questions about using the exam service, through an
// OpenAI-compatible chat model or a keyword matched offline answer book.
package chatbot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/examhub/exam-service/internal/genai"
)

// maxHistory is how many earlier messages are replayed to the model
const maxHistory = 5

// Conversation roles accepted in the history
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Config carries the AI capability flag and client settings
type Config = genai.Config

// Message is one earlier turn of the conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Result is the reply text. Fallback is set when it came from the answer book.
type Result struct {
	Text     string
	Fallback bool
}

type Service struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

// NewService builds the assistant. With cfg.Enabled false every reply comes
// from the answer book.
func NewService(cfg Config, logger *slog.Logger) *Service {
	return &Service{client: genai.NewClient(cfg), model: cfg.Model, logger: logger}
}

func (s *Service) Enabled() bool {
	return s.client != nil
}

// Reply answers message in the context of the last few history entries. It
// never fails: model errors are logged and answered from the answer book.
func (s *Service) Reply(ctx context.Context, message string, history []Message) Result {
	if s.client == nil {
		return Result{Text: Fallback(message), Fallback: true}
	}

	text, err := s.complete(ctx, message, history)
	if err != nil {
		s.logger.Warn("Chatbot model call failed, using fallback", "error", err)
		return Result{Text: Fallback(message), Fallback: true}
	}
	return Result{Text: text}
}

func (s *Service) complete(ctx context.Context, message string, history []Message) (string, error) {
	if len(history) > maxHistory {
		history = history[len(history)-maxHistory:]
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: SystemContext()})
	for _, m := range history {
		role := openai.ChatMessageRoleUser
		if m.Role == RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: message})

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    s.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("model returned no choices")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("model returned an empty reply")
	}
	return text, nil
}

// SystemContext is the instruction sent ahead of every conversation
func SystemContext() string {
	return systemContext
}

const systemContext = `You are an AI assistant for Exam Hub, an exam management system.
You help users with:
- Creating and managing exams
- Understanding question types (MCQ, True/False, Short Answer, Essay)
- Taking exams and viewing results
- Organizing content with folders and files
- API usage and troubleshooting

Key features:
- Exam management: create, publish, update and delete exams
- Questions: MCQ and True/False are graded automatically by exact match
- Attempts: students take published exams and get their result on submit
- Folders: organize exams and files
- File upload: upload study material (PDF, DOCX, TXT, XLSX) and generate questions from it
- Dashboard: exam, folder, file and attempt counts with the average percentage

API endpoints (base path /api/v1):
- POST /api/v1/exams - Create exam
- GET /api/v1/exams - List exams
- POST /api/v1/exams/{id}/attempts - Start exam attempt
- POST /api/v1/attempts/{id}/submit - Submit exam
- POST /api/v1/folders - Create folder
- POST /api/v1/upload - Upload file
- GET /api/v1/dashboard/stats - View statistics

Be helpful, concise, and provide practical examples when relevant.`
