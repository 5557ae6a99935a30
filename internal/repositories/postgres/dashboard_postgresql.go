package postgres

import (
	"context"
	"fmt"

	"github.com/examhub/exam-service/internal/models"
	"github.com/examhub/exam-service/internal/repositories"
	"gorm.io/gorm"
)

type DashboardPostgreSQL struct {
	db *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) repositories.DashboardRepository {
	return &DashboardPostgreSQL{db: db}
}

func (d *DashboardPostgreSQL) CountExams(ctx context.Context, tx *gorm.DB, published *bool) (int64, error) {
	db := getDB(d.db, tx)
	var count int64
	query := db.WithContext(ctx).Model(&models.Exam{})
	if published != nil {
		query = query.Where("is_published = ?", *published)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count exams: %w", err)
	}
	return count, nil
}

func (d *DashboardPostgreSQL) CountFolders(ctx context.Context, tx *gorm.DB) (int64, error) {
	db := getDB(d.db, tx)
	var count int64
	if err := db.WithContext(ctx).Model(&models.Folder{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count folders: %w", err)
	}
	return count, nil
}

func (d *DashboardPostgreSQL) CountFiles(ctx context.Context, tx *gorm.DB) (int64, error) {
	db := getDB(d.db, tx)
	var count int64
	if err := db.WithContext(ctx).Model(&models.File{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count files: %w", err)
	}
	return count, nil
}

func (d *DashboardPostgreSQL) CountAttempts(ctx context.Context, tx *gorm.DB, status *models.AttemptStatus) (int64, error) {
	db := getDB(d.db, tx)
	var count int64
	query := db.WithContext(ctx).Model(&models.ExamAttempt{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count attempts: %w", err)
	}
	return count, nil
}

func (d *DashboardPostgreSQL) AverageCompletedPercentage(ctx context.Context, tx *gorm.DB) (float64, error) {
	db := getDB(d.db, tx)
	var avg float64
	if err := db.WithContext(ctx).Model(&models.ExamAttempt{}).
		Select("COALESCE(AVG(percentage), 0)").
		Where("status = ? AND percentage IS NOT NULL", models.AttemptCompleted).
		Scan(&avg).Error; err != nil {
		return 0, fmt.Errorf("failed to average attempt percentage: %w", err)
	}
	return avg, nil
}
