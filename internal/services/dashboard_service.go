package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/examhub/exam-service/internal/cache"
	"github.com/examhub/exam-service/internal/models"
	"github.com/examhub/exam-service/internal/repositories"
	"gorm.io/gorm"
)

type dashboardService struct {
	repo   repositories.Repository
	db     *gorm.DB
	logger *slog.Logger
	cache  *cache.CacheManager
}

func NewDashboardService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, cacheManager *cache.CacheManager) DashboardService {
	if cacheManager == nil {
		cacheManager = cache.NewCacheManager(nil)
	}
	return &dashboardService{
		repo:   repo,
		db:     db,
		logger: logger,
		cache:  cacheManager,
	}
}

// GetStats returns the dashboard aggregates, served from the stats cache when warm
func (s *dashboardService) GetStats(ctx context.Context) (*models.DashboardStats, error) {
	s.logger.Info("Getting dashboard stats")

	var stats models.DashboardStats
	err := s.cache.Stats.CacheOrExecute(ctx, cache.DashboardKey, &stats, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
		return s.computeStats(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get dashboard stats: %w", err)
	}
	return &stats, nil
}

func (s *dashboardService) computeStats(ctx context.Context) (*models.DashboardStats, error) {
	dashboard := s.repo.Dashboard()
	published := true
	completed := models.AttemptCompleted

	totalExams, err := dashboard.CountExams(ctx, s.db, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count exams: %w", err)
	}

	publishedExams, err := dashboard.CountExams(ctx, s.db, &published)
	if err != nil {
		return nil, fmt.Errorf("failed to count published exams: %w", err)
	}

	totalFolders, err := dashboard.CountFolders(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("failed to count folders: %w", err)
	}

	totalFiles, err := dashboard.CountFiles(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("failed to count files: %w", err)
	}

	totalAttempts, err := dashboard.CountAttempts(ctx, s.db, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count attempts: %w", err)
	}

	completedAttempts, err := dashboard.CountAttempts(ctx, s.db, &completed)
	if err != nil {
		return nil, fmt.Errorf("failed to count completed attempts: %w", err)
	}

	average, err := dashboard.AverageCompletedPercentage(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("failed to get average percentage: %w", err)
	}

	return &models.DashboardStats{
		TotalExams:        totalExams,
		PublishedExams:    publishedExams,
		DraftExams:        totalExams - publishedExams,
		TotalFolders:      totalFolders,
		TotalFiles:        totalFiles,
		TotalAttempts:     totalAttempts,
		CompletedAttempts: completedAttempts,
		AveragePercentage: roundFloat(average, 2),
	}, nil
}

// roundFloat rounds for presentation only
func roundFloat(val float64, precision int) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}
