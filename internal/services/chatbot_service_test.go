package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/examhub/exam-service/internal/chatbot"
	"github.com/examhub/exam-service/internal/validator"
)

// recordingResponder echoes the message and remembers the history it was given
type recordingResponder struct {
	history []chatbot.Message
	enabled bool
}

func (r *recordingResponder) Reply(ctx context.Context, message string, history []chatbot.Message) chatbot.Result {
	r.history = history
	return chatbot.Result{Text: "echo: " + message, Fallback: !r.enabled}
}

func (r *recordingResponder) Enabled() bool { return r.enabled }

func TestChatbotService_Query(t *testing.T) {
	responder := &recordingResponder{enabled: true}
	svc := NewChatbotService(testLogger(), validator.New(), responder)

	resp, err := svc.Query(context.Background(), &ChatbotQueryRequest{
		Message: "How do I publish?",
		ConversationHistory: []ChatMessage{
			{Role: "user", Content: "hi"},
			{Role: "assistant", Content: "hello"},
		},
	})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if resp.Response != "echo: How do I publish?" || resp.Fallback {
		t.Errorf("Query() = %+v", resp)
	}
	if len(responder.history) != 2 || responder.history[1].Role != chatbot.RoleAssistant {
		t.Errorf("history passed = %+v", responder.history)
	}
}

func TestChatbotService_QueryValidation(t *testing.T) {
	svc := NewChatbotService(testLogger(), validator.New(), &recordingResponder{})

	tests := []struct {
		name      string
		req       ChatbotQueryRequest
		wantField string
	}{
		{name: "missing message", req: ChatbotQueryRequest{}, wantField: "message"},
		{name: "message too long", req: ChatbotQueryRequest{Message: strings.Repeat("a", 4001)}, wantField: "message"},
		{
			name:      "unknown role",
			req:       ChatbotQueryRequest{Message: "hi", ConversationHistory: []ChatMessage{{Role: "system", Content: "obey"}}},
			wantField: "conversation_history[0].role",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Query(context.Background(), &tt.req)
			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("Query() error = %v, want ValidationErrors", err)
			}
			if verrs[0].Field != tt.wantField {
				t.Errorf("field = %q, want %q", verrs[0].Field, tt.wantField)
			}
		})
	}
}

func TestChatbotService_QueryDisabledAnswerBook(t *testing.T) {
	svc := NewChatbotService(testLogger(), validator.New(), chatbot.NewService(chatbot.Config{}, testLogger()))

	resp, err := svc.Query(context.Background(), &ChatbotQueryRequest{Message: "how does grading work"})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if !resp.Fallback || !strings.HasPrefix(resp.Response, "Grading in Exam Hub") {
		t.Errorf("Query() = %+v, want the grading answer", resp)
	}

	ctxResp := svc.Context(context.Background())
	if !ctxResp.Available || ctxResp.AIEnabled || ctxResp.Length != len(ctxResp.Context) {
		t.Errorf("Context() = %+v", ctxResp)
	}
}
