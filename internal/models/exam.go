package models

import (
	"time"
)

type Exam struct {
	ID           uint    `json:"id" gorm:"primaryKey"`
	Title        string  `json:"title" gorm:"not null;size:255;index" validate:"required,min=1,max=255"`
	Description  *string `json:"description" gorm:"type:text"`
	Duration     *int    `json:"duration" validate:"omitempty,min=1"` // minutes, advisory only
	TotalMarks   float64 `json:"total_marks" gorm:"not null;default:0" validate:"min=0"`
	PassingMarks float64 `json:"passing_marks" gorm:"not null;default:0" validate:"min=0"`
	IsPublished  bool    `json:"is_published" gorm:"not null;default:false;index"`
	FolderID     *uint   `json:"folder_id" gorm:"index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Folder    *Folder       `json:"-" gorm:"foreignKey:FolderID;constraint:OnDelete:SET NULL"`
	Questions []Question    `json:"questions,omitempty" gorm:"foreignKey:ExamID;constraint:OnDelete:CASCADE"`
	Attempts  []ExamAttempt `json:"-" gorm:"foreignKey:ExamID;constraint:OnDelete:CASCADE"`

	// Computed fields (not stored)
	QuestionsCount int `json:"questions_count" gorm:"-"`
}

// QuestionByID returns the exam's question with the given id, if loaded.
func (e *Exam) QuestionByID(id uint) (*Question, bool) {
	for i := range e.Questions {
		if e.Questions[i].ID == id {
			return &e.Questions[i], true
		}
	}
	return nil, false
}
