// Package events publishes domain events about exams and attempts.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	EventSource  = "exam-service"
	EventVersion = "1.0"
)

// Event types
const (
	AttemptStarted   = "attempt.started"
	AttemptSubmitted = "attempt.submitted"
	ExamPublished    = "exam.published"
)

type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

func NewEvent(eventType string, data interface{}) *Event {
	return &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    EventSource,
		Version:   EventVersion,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

type AttemptStartedData struct {
	AttemptID   uint   `json:"attempt_id"`
	ExamID      uint   `json:"exam_id"`
	StudentName string `json:"student_name"`
	Reused      bool   `json:"reused"`
}

type AttemptSubmittedData struct {
	AttemptID  uint    `json:"attempt_id"`
	ExamID     uint    `json:"exam_id"`
	Score      float64 `json:"score"`
	Percentage float64 `json:"percentage"`
	Passed     bool    `json:"passed"`
	Answered   int     `json:"answered"`
}

type ExamPublishedData struct {
	ExamID uint   `json:"exam_id"`
	Title  string `json:"title"`
}

// EventPublisher delivers events to interested consumers
type EventPublisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}
