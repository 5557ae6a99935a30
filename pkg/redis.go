package pkg

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/examhub/exam-service/internal/config"
)

// NewRedisClient builds a client from REDIS_URL, e.g. redis://:password@localhost:6379/0
func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}
