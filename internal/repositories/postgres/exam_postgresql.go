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

type ExamPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager

	// inTx disables cached reads so grading always sees committed rows
	inTx bool
}

func NewExamPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.ExamRepository {
	return &ExamPostgreSQL{db: db, cacheManager: cacheManager}
}

func newTxExamPostgreSQL(tx *gorm.DB, cacheManager *cache.CacheManager) repositories.ExamRepository {
	return &ExamPostgreSQL{db: tx, cacheManager: cacheManager, inTx: true}
}

func (e *ExamPostgreSQL) Create(ctx context.Context, tx *gorm.DB, exam *models.Exam) error {
	db := getDB(e.db, tx)
	if err := db.WithContext(ctx).Create(exam).Error; err != nil {
		return fmt.Errorf("failed to create exam: %w", err)
	}
	cache.InvalidateStatsCache(ctx, e.cacheManager)
	return nil
}

func (e *ExamPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Exam, error) {
	db := getDB(e.db, tx)
	var exam models.Exam
	if err := db.WithContext(ctx).First(&exam, id).Error; err != nil {
		return nil, err
	}
	return &exam, nil
}

func (e *ExamPostgreSQL) GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Exam, error) {
	db := getDB(e.db, tx)
	var exam models.Exam
	if err := db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&exam, id).Error; err != nil {
		return nil, err
	}
	return &exam, nil
}

func (e *ExamPostgreSQL) GetWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*models.Exam, error) {
	db := getDB(e.db, tx)
	if tx != nil || e.inTx {
		return e.loadWithQuestions(ctx, db, id)
	}

	var exam models.Exam
	err := e.cacheManager.Exam.CacheOrExecute(ctx, cache.ExamKey(id), &exam, cache.ExamCacheConfig.TTL, func() (interface{}, error) {
		return e.loadWithQuestions(ctx, db, id)
	})
	if err != nil {
		return nil, err
	}
	return &exam, nil
}

func (e *ExamPostgreSQL) loadWithQuestions(ctx context.Context, db *gorm.DB, id uint) (*models.Exam, error) {
	var exam models.Exam
	if err := db.WithContext(ctx).
		Preload("Questions", orderByPosition).
		First(&exam, id).Error; err != nil {
		return nil, err
	}
	exam.QuestionsCount = len(exam.Questions)
	return &exam, nil
}

func (e *ExamPostgreSQL) Update(ctx context.Context, tx *gorm.DB, exam *models.Exam) error {
	db := getDB(e.db, tx)
	result := db.WithContext(ctx).Model(exam).Select(
		"title", "description", "duration", "total_marks", "passing_marks", "is_published", "folder_id", "updated_at",
	).Updates(exam)
	if result.Error != nil {
		return fmt.Errorf("failed to update exam: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	cache.InvalidateExamCache(ctx, e.cacheManager, exam.ID)
	return nil
}

func (e *ExamPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := getDB(e.db, tx)
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		attemptIDs := tx.Model(&models.ExamAttempt{}).Select("id").Where("exam_id = ?", id)
		if err := tx.Where("attempt_id IN (?)", attemptIDs).Delete(&models.Answer{}).Error; err != nil {
			return fmt.Errorf("failed to delete answers: %w", err)
		}
		if err := tx.Where("exam_id = ?", id).Delete(&models.ExamAttempt{}).Error; err != nil {
			return fmt.Errorf("failed to delete attempts: %w", err)
		}
		if err := tx.Where("exam_id = ?", id).Delete(&models.Question{}).Error; err != nil {
			return fmt.Errorf("failed to delete questions: %w", err)
		}
		result := tx.Delete(&models.Exam{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete exam: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	cache.InvalidateExamCache(ctx, e.cacheManager, id)
	return nil
}

func (e *ExamPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.ExamFilters) ([]*models.Exam, int64, error) {
	db := getDB(e.db, tx)
	var exams []*models.Exam
	var total int64

	query := db.WithContext(ctx).Model(&models.Exam{})
	query = applyExamFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count exams: %w", err)
	}

	query = applyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)
	if err := query.Find(&exams).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list exams: %w", err)
	}

	if err := e.fillQuestionCounts(ctx, db, exams); err != nil {
		return nil, 0, err
	}

	return exams, total, nil
}

func (e *ExamPostgreSQL) fillQuestionCounts(ctx context.Context, db *gorm.DB, exams []*models.Exam) error {
	if len(exams) == 0 {
		return nil
	}

	ids := make([]uint, len(exams))
	for i, exam := range exams {
		ids[i] = exam.ID
	}

	var rows []struct {
		ExamID uint
		Count  int
	}
	if err := db.WithContext(ctx).Model(&models.Question{}).
		Select("exam_id, COUNT(*) AS count").
		Where("exam_id IN ?", ids).
		Group("exam_id").
		Scan(&rows).Error; err != nil {
		return fmt.Errorf("failed to count questions: %w", err)
	}

	counts := make(map[uint]int, len(rows))
	for _, row := range rows {
		counts[row.ExamID] = row.Count
	}
	for _, exam := range exams {
		exam.QuestionsCount = counts[exam.ID]
	}
	return nil
}

func (e *ExamPostgreSQL) ExistsByID(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	db := getDB(e.db, tx)
	key := cache.ExamExistsKey(id)

	if tx == nil && !e.inTx {
		var exists bool
		if err := e.cacheManager.Exists.Get(ctx, key, &exists); err == nil {
			return exists, nil
		}
	}

	var count int64
	if err := db.WithContext(ctx).Model(&models.Exam{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check exam existence: %w", err)
	}

	exists := count > 0
	if exists {
		_ = e.cacheManager.Exists.Set(ctx, key, true, cache.ExistsCacheConfig.TTL)
	}
	return exists, nil
}

func (e *ExamPostgreSQL) DetachFolder(ctx context.Context, tx *gorm.DB, folderID uint) error {
	db := getDB(e.db, tx)
	if err := db.WithContext(ctx).Model(&models.Exam{}).
		Where("folder_id = ?", folderID).
		Update("folder_id", nil).Error; err != nil {
		return fmt.Errorf("failed to detach exams from folder: %w", err)
	}
	cache.InvalidateExamsCache(ctx, e.cacheManager)
	return nil
}
