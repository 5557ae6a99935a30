package models

import (
	"time"
)

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptCompleted  AttemptStatus = "completed"
)

type ExamAttempt struct {
	ID           uint          `json:"id" gorm:"primaryKey"`
	ExamID       uint          `json:"exam_id" gorm:"not null;index"`
	StudentName  string        `json:"student_name" gorm:"not null;size:255"`
	StudentEmail *string       `json:"student_email" gorm:"size:255"`
	Status       AttemptStatus `json:"status" gorm:"not null;default:in_progress;size:50;index"`

	// Scoring, NULL until the attempt is completed
	Score      *float64 `json:"score"`
	Percentage *float64 `json:"percentage"`
	Passed     *bool    `json:"passed"`

	// Timing
	StartedAt   *time.Time `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Answers []Answer `json:"answers" gorm:"foreignKey:AttemptID;constraint:OnDelete:CASCADE"`
}

func (a *ExamAttempt) IsCompleted() bool {
	return a.Status == AttemptCompleted
}

// MatchesStudent reports whether the attempt was started by the given identity.
// Email comparison treats a missing email as its own value.
func (a *ExamAttempt) MatchesStudent(name string, email *string) bool {
	if a.StudentName != name {
		return false
	}
	if a.StudentEmail == nil || email == nil {
		return a.StudentEmail == nil && email == nil
	}
	return *a.StudentEmail == *email
}

type Answer struct {
	ID            uint    `json:"id" gorm:"primaryKey"`
	AttemptID     uint    `json:"attempt_id" gorm:"not null;index"`
	QuestionID    uint    `json:"question_id" gorm:"not null;index"`
	AnswerText    *string `json:"answer_text" gorm:"type:text"`
	IsCorrect     *bool   `json:"is_correct"`
	MarksObtained float64 `json:"marks_obtained" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"created_at"`
}
