package services

import (
	"context"
	"testing"

	"github.com/examhub/exam-service/internal/chatbot"
	"github.com/examhub/exam-service/internal/extraction"
	"github.com/examhub/exam-service/internal/validator"
)

func TestServiceManager_Lifecycle(t *testing.T) {
	ctx := context.Background()
	logger := testLogger()

	bare := NewServiceManager(nil, newFakeRepo(), logger, validator.New(), ServiceManagerConfig{})
	if err := bare.Initialize(ctx); err == nil {
		t.Fatal("Initialize() without extractor should fail")
	}
	noChat := NewServiceManager(nil, newFakeRepo(), logger, validator.New(), ServiceManagerConfig{
		Extractor: extraction.NewService(extraction.Config{}, logger),
	})
	if err := noChat.Initialize(ctx); err == nil {
		t.Fatal("Initialize() without chat responder should fail")
	}
	if err := bare.HealthCheck(ctx); err == nil {
		t.Error("HealthCheck() before Initialize should fail")
	}
	func() {
		defer func() {
			if recover() == nil {
				t.Error("Exam() before Initialize should panic")
			}
		}()
		bare.Exam()
	}()

	sm := NewServiceManager(nil, newFakeRepo(), logger, validator.New(), ServiceManagerConfig{
		Extractor: extraction.NewService(extraction.Config{}, logger),
		Chatbot:   chatbot.NewService(chatbot.Config{}, logger),
		Upload:    UploadSettings{Dir: t.TempDir(), MaxSize: 1 << 20, AllowedExtensions: []string{".txt"}},
	})
	if err := sm.Initialize(ctx); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if sm.Exam() == nil || sm.Attempt() == nil || sm.Folder() == nil ||
		sm.Upload() == nil || sm.Dashboard() == nil || sm.Export() == nil || sm.Chatbot() == nil {
		t.Fatal("all services should be initialized")
	}
	if err := sm.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
	if err := sm.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
	if err := sm.HealthCheck(ctx); err == nil {
		t.Error("HealthCheck() after Shutdown should fail")
	}
}
