package postgres

import (
	"context"
	"fmt"

	"github.com/examhub/exam-service/internal/cache"
	"github.com/examhub/exam-service/internal/models"
	"github.com/examhub/exam-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Attempts are mutable until submitted, so they are never cached.
type AttemptPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewAttemptPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.AttemptRepository {
	return &AttemptPostgreSQL{db: db, cacheManager: cacheManager}
}

func (a *AttemptPostgreSQL) Create(ctx context.Context, tx *gorm.DB, attempt *models.ExamAttempt) error {
	db := getDB(a.db, tx)
	if err := db.WithContext(ctx).Omit("Answers").Create(attempt).Error; err != nil {
		return fmt.Errorf("failed to create attempt: %w", err)
	}
	cache.InvalidateStatsCache(ctx, a.cacheManager)
	return nil
}

func (a *AttemptPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ExamAttempt, error) {
	db := getDB(a.db, tx)
	var attempt models.ExamAttempt
	if err := db.WithContext(ctx).First(&attempt, id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) GetByIDWithAnswers(ctx context.Context, tx *gorm.DB, id uint) (*models.ExamAttempt, error) {
	db := getDB(a.db, tx)
	var attempt models.ExamAttempt
	if err := db.WithContext(ctx).
		Preload("Answers", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&attempt, id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.ExamAttempt, error) {
	db := getDB(a.db, tx)
	var attempt models.ExamAttempt
	if err := db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&attempt, id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := getDB(a.db, tx)
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("attempt_id = ?", id).Delete(&models.Answer{}).Error; err != nil {
			return fmt.Errorf("failed to delete answers: %w", err)
		}
		result := tx.Delete(&models.ExamAttempt{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete attempt: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	cache.InvalidateStatsCache(ctx, a.cacheManager)
	return nil
}

func (a *AttemptPostgreSQL) ListByExam(ctx context.Context, tx *gorm.DB, examID uint, filters repositories.AttemptFilters) ([]*models.ExamAttempt, error) {
	db := getDB(a.db, tx)
	attempts := []*models.ExamAttempt{}

	query := db.WithContext(ctx).Where("exam_id = ?", examID)
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	query = applyPagination(query.Order("id ASC"), filters.Limit, filters.Offset)

	if err := query.Find(&attempts).Error; err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	return attempts, nil
}

func (a *AttemptPostgreSQL) Complete(ctx context.Context, tx *gorm.DB, attempt *models.ExamAttempt) (bool, error) {
	db := getDB(a.db, tx)
	result := db.WithContext(ctx).Model(&models.ExamAttempt{}).
		Where("id = ? AND status = ?", attempt.ID, models.AttemptInProgress).
		Updates(map[string]interface{}{
			"status":       models.AttemptCompleted,
			"score":        attempt.Score,
			"percentage":   attempt.Percentage,
			"passed":       attempt.Passed,
			"completed_at": attempt.CompletedAt,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to complete attempt: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return false, nil
	}

	cache.InvalidateStatsCache(ctx, a.cacheManager)
	return true, nil
}

type AnswerPostgreSQL struct {
	db *gorm.DB
}

func NewAnswerPostgreSQL(db *gorm.DB) repositories.AnswerRepository {
	return &AnswerPostgreSQL{db: db}
}

// CreateBatch inserts answers in slice order so ids follow submission order
func (a *AnswerPostgreSQL) CreateBatch(ctx context.Context, tx *gorm.DB, answers []*models.Answer) error {
	if len(answers) == 0 {
		return nil
	}

	db := getDB(a.db, tx)
	if err := db.WithContext(ctx).Create(answers).Error; err != nil {
		return fmt.Errorf("failed to create answers: %w", err)
	}
	return nil
}

func (a *AnswerPostgreSQL) GetByAttempt(ctx context.Context, tx *gorm.DB, attemptID uint) ([]*models.Answer, error) {
	db := getDB(a.db, tx)
	answers := []*models.Answer{}
	if err := db.WithContext(ctx).
		Where("attempt_id = ?", attemptID).
		Order("id ASC").
		Find(&answers).Error; err != nil {
		return nil, fmt.Errorf("failed to get answers by attempt: %w", err)
	}
	return answers, nil
}
