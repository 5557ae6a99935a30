package services

import (
	"context"
	"log/slog"

	"github.com/examhub/exam-service/internal/events"
)

// publishEvent delivers event when a publisher is configured. Failures are logged,
// never returned: the state change has already committed.
func publishEvent(ctx context.Context, publisher events.EventPublisher, logger *slog.Logger, event *events.Event) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		logger.Warn("Failed to publish event",
			"event_type", event.Type,
			"event_id", event.ID,
			"error", err)
	}
}

// normalizePage clamps skip/limit to the list endpoints' bounds
func normalizePage(skip, limit, defaultLimit, maxLimit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return skip, limit
}
