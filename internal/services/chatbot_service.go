package services

import (
	"context"
	"log/slog"

	"github.com/examhub/exam-service/internal/chatbot"
	"github.com/examhub/exam-service/internal/validator"
)

type chatbotService struct {
	logger    *slog.Logger
	validator *validator.Validator
	responder ChatResponder
}

func NewChatbotService(logger *slog.Logger, validator *validator.Validator, responder ChatResponder) ChatbotService {
	return &chatbotService{
		logger:    logger,
		validator: validator,
		responder: responder,
	}
}

// Query answers a message. Only invalid requests fail; model failures are
// answered from the offline answer book.
func (s *chatbotService) Query(ctx context.Context, req *ChatbotQueryRequest) (*ChatbotQueryResponse, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	history := make([]chatbot.Message, len(req.ConversationHistory))
	for i, m := range req.ConversationHistory {
		history[i] = chatbot.Message{Role: m.Role, Content: m.Content}
	}

	result := s.responder.Reply(ctx, req.Message, history)
	s.logger.Info("Chatbot query answered",
		"history", len(history),
		"fallback", result.Fallback)

	return &ChatbotQueryResponse{Response: result.Text, Fallback: result.Fallback}, nil
}

func (s *chatbotService) Context(ctx context.Context) *ChatbotContextResponse {
	text := chatbot.SystemContext()
	return &ChatbotContextResponse{
		Context:   text,
		Length:    len(text),
		Available: text != "",
		AIEnabled: s.responder.Enabled(),
	}
}
