package repositories

import (
	"context"

	"github.com/examhub/exam-service/internal/models"
	"gorm.io/gorm"
)

// ExamRepository interface for exam-specific operations
type ExamRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, exam *models.Exam) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Exam, error)
	Update(ctx context.Context, tx *gorm.DB, exam *models.Exam) error

	// Delete removes the exam together with its questions, attempts and answers
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// GetByIDForUpdate loads the exam holding a row lock until the transaction ends
	GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Exam, error)

	// GetWithQuestions loads the exam and its questions ordered by "order", then id
	GetWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*models.Exam, error)

	// Query operations
	List(ctx context.Context, tx *gorm.DB, filters ExamFilters) ([]*models.Exam, int64, error)
	ExistsByID(ctx context.Context, tx *gorm.DB, id uint) (bool, error)

	// DetachFolder clears folder_id on every exam in the folder
	DetachFolder(ctx context.Context, tx *gorm.DB, folderID uint) error
}

// QuestionRepository interface for question-specific operations
type QuestionRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, question *models.Question) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error)
	Update(ctx context.Context, tx *gorm.DB, question *models.Question) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// Bulk operations
	CreateBatch(ctx context.Context, tx *gorm.DB, questions []*models.Question) error

	// Exam-specific queries
	GetByExam(ctx context.Context, tx *gorm.DB, examID uint) ([]*models.Question, error)
	CountByExam(ctx context.Context, tx *gorm.DB, examID uint) (int64, error)
	MaxOrder(ctx context.Context, tx *gorm.DB, examID uint) (int, error)
}
