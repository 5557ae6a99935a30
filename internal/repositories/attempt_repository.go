package repositories

import (
	"context"

	"github.com/examhub/exam-service/internal/models"
	"gorm.io/gorm"
)

// AttemptRepository interface for exam attempt operations
type AttemptRepository interface {
	Create(ctx context.Context, tx *gorm.DB, attempt *models.ExamAttempt) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ExamAttempt, error)
	GetByIDWithAnswers(ctx context.Context, tx *gorm.DB, id uint) (*models.ExamAttempt, error)

	// GetByIDForUpdate loads the attempt holding a row lock until the transaction ends
	GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.ExamAttempt, error)

	// Delete removes the attempt and its answers
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// ListByExam returns attempts in insertion order; a missing exam yields an empty list
	ListByExam(ctx context.Context, tx *gorm.DB, examID uint, filters AttemptFilters) ([]*models.ExamAttempt, error)

	// Complete moves an in-progress attempt to completed with its aggregates.
	// It reports false when the attempt was no longer in progress.
	Complete(ctx context.Context, tx *gorm.DB, attempt *models.ExamAttempt) (bool, error)
}

// AnswerRepository interface for submitted answers
type AnswerRepository interface {
	CreateBatch(ctx context.Context, tx *gorm.DB, answers []*models.Answer) error
	GetByAttempt(ctx context.Context, tx *gorm.DB, attemptID uint) ([]*models.Answer, error)
}
