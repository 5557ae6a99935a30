package models

import (
	"time"

	"gorm.io/datatypes"
)

type QuestionType string

const (
	MultipleChoice QuestionType = "mcq"
	TrueFalse      QuestionType = "true_false"
	ShortAnswer    QuestionType = "short_answer"
	Essay          QuestionType = "essay"
)

// QuestionTypes lists every supported question type.
var QuestionTypes = []QuestionType{MultipleChoice, TrueFalse, ShortAnswer, Essay}

func (t QuestionType) IsValid() bool {
	for _, qt := range QuestionTypes {
		if t == qt {
			return true
		}
	}
	return false
}

type DifficultyLevel string

const (
	DifficultyEasy   DifficultyLevel = "easy"
	DifficultyMedium DifficultyLevel = "medium"
	DifficultyHard   DifficultyLevel = "hard"
)

type Question struct {
	ID            uint         `json:"id" gorm:"primaryKey"`
	ExamID        uint         `json:"exam_id" gorm:"not null;index"`
	QuestionText  string       `json:"question_text" gorm:"type:text;not null"`
	QuestionType  QuestionType `json:"question_type" gorm:"not null;size:50"`
	Marks         float64      `json:"marks" gorm:"not null;default:1"`
	Order         int          `json:"order" gorm:"not null;default:0"`
	CorrectAnswer *string      `json:"correct_answer" gorm:"type:text"`

	// Meaningful only for mcq
	Options datatypes.JSONSlice[string] `json:"options" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PublicQuestion is the test-taker view of a question; the reference answer is never exposed.
type PublicQuestion struct {
	ID           uint         `json:"id"`
	QuestionText string       `json:"question_text"`
	QuestionType QuestionType `json:"question_type"`
	Marks        float64      `json:"marks"`
	Order        int          `json:"order"`
	Options      []string     `json:"options"`
}

func (q *Question) Public() PublicQuestion {
	return PublicQuestion{
		ID:           q.ID,
		QuestionText: q.QuestionText,
		QuestionType: q.QuestionType,
		Marks:        q.Marks,
		Order:        q.Order,
		Options:      []string(q.Options),
	}
}
