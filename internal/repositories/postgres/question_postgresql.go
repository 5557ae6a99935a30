package postgres

import (
	"context"
	"fmt"

	"github.com/examhub/exam-service/internal/cache"
	"github.com/examhub/exam-service/internal/models"
	"github.com/examhub/exam-service/internal/repositories"
	"gorm.io/gorm"
)

type QuestionPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewQuestionPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.QuestionRepository {
	return &QuestionPostgreSQL{db: db, cacheManager: cacheManager}
}

func (q *QuestionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	db := getDB(q.db, tx)
	if err := db.WithContext(ctx).Create(question).Error; err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}
	cache.InvalidateExamCache(ctx, q.cacheManager, question.ExamID)
	return nil
}

func (q *QuestionPostgreSQL) CreateBatch(ctx context.Context, tx *gorm.DB, questions []*models.Question) error {
	if len(questions) == 0 {
		return nil
	}

	db := getDB(q.db, tx)
	if err := db.WithContext(ctx).CreateInBatches(questions, 100).Error; err != nil {
		return fmt.Errorf("failed to create questions: %w", err)
	}

	seen := make(map[uint]bool)
	for _, question := range questions {
		if !seen[question.ExamID] {
			seen[question.ExamID] = true
			cache.InvalidateExamCache(ctx, q.cacheManager, question.ExamID)
		}
	}
	return nil
}

func (q *QuestionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	db := getDB(q.db, tx)
	var question models.Question
	if err := db.WithContext(ctx).First(&question, id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (q *QuestionPostgreSQL) Update(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	db := getDB(q.db, tx)
	result := db.WithContext(ctx).Model(question).Select(
		"question_text", "question_type", "marks", "order", "options", "correct_answer", "updated_at",
	).Updates(question)
	if result.Error != nil {
		return fmt.Errorf("failed to update question: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	cache.InvalidateExamCache(ctx, q.cacheManager, question.ExamID)
	return nil
}

func (q *QuestionPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := getDB(q.db, tx)
	var question models.Question
	if err := db.WithContext(ctx).Select("id", "exam_id").First(&question, id).Error; err != nil {
		return err
	}
	if err := db.WithContext(ctx).Delete(&models.Question{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}
	cache.InvalidateExamCache(ctx, q.cacheManager, question.ExamID)
	return nil
}

func (q *QuestionPostgreSQL) GetByExam(ctx context.Context, tx *gorm.DB, examID uint) ([]*models.Question, error) {
	db := getDB(q.db, tx)
	var questions []*models.Question
	if err := orderByPosition(db.WithContext(ctx).Where("exam_id = ?", examID)).
		Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("failed to get questions by exam: %w", err)
	}
	return questions, nil
}

func (q *QuestionPostgreSQL) CountByExam(ctx context.Context, tx *gorm.DB, examID uint) (int64, error) {
	db := getDB(q.db, tx)
	var count int64
	if err := db.WithContext(ctx).Model(&models.Question{}).Where("exam_id = ?", examID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count questions: %w", err)
	}
	return count, nil
}

func (q *QuestionPostgreSQL) MaxOrder(ctx context.Context, tx *gorm.DB, examID uint) (int, error) {
	db := getDB(q.db, tx)
	var maxOrder *int
	if err := db.WithContext(ctx).Model(&models.Question{}).
		Where("exam_id = ?", examID).
		Select(`MAX("order")`).
		Scan(&maxOrder).Error; err != nil {
		return 0, fmt.Errorf("failed to get max question order: %w", err)
	}
	if maxOrder == nil {
		return -1, nil
	}
	return *maxOrder, nil
}
