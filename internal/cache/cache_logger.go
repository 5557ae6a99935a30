package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeInvalidatePattern invalidates a pattern and logs instead of failing
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete deletes keys and logs instead of failing
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// ExamKey is the cache key of an exam with its questions
func ExamKey(examID uint) string {
	return fmt.Sprintf("id:%d:questions", examID)
}

// ExamExistsKey is the cache key of an exam existence check
func ExamExistsKey(examID uint) string {
	return fmt.Sprintf("exam:%d", examID)
}

// DashboardKey is the cache key of the dashboard aggregates
const DashboardKey = "dashboard"

// InvalidateExamCache drops every cached view of an exam and the dashboard aggregates
func InvalidateExamCache(ctx context.Context, cm *CacheManager, examID uint) {
	cm.invalidate(ctx, func(ctx context.Context) {
		SafeDelete(ctx, cm.Exam, ExamKey(examID))
		SafeDelete(ctx, cm.Exists, ExamExistsKey(examID))
		SafeDelete(ctx, cm.Stats, DashboardKey)
	})
}

// InvalidateExamsCache drops every cached exam
func InvalidateExamsCache(ctx context.Context, cm *CacheManager) {
	cm.invalidate(ctx, func(ctx context.Context) {
		SafeInvalidatePattern(ctx, cm.Exam, "*")
	})
}

// InvalidateStatsCache drops the dashboard aggregates
func InvalidateStatsCache(ctx context.Context, cm *CacheManager) {
	cm.invalidate(ctx, func(ctx context.Context) {
		SafeInvalidatePattern(ctx, cm.Stats, "*")
	})
}
