package repositories

import (
	"context"

	"github.com/examhub/exam-service/internal/models"
	"gorm.io/gorm"
)

// DashboardRepository interface for dashboard analytics operations
type DashboardRepository interface {
	// CountExams counts exams, optionally restricted by publication state
	CountExams(ctx context.Context, tx *gorm.DB, published *bool) (int64, error)
	CountFolders(ctx context.Context, tx *gorm.DB) (int64, error)
	CountFiles(ctx context.Context, tx *gorm.DB) (int64, error)

	// CountAttempts counts attempts, optionally restricted by status
	CountAttempts(ctx context.Context, tx *gorm.DB, status *models.AttemptStatus) (int64, error)

	// AverageCompletedPercentage averages percentage over completed attempts, 0 when none
	AverageCompletedPercentage(ctx context.Context, tx *gorm.DB) (float64, error)
}
