package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/examhub/exam-service/internal/cache"
	"github.com/examhub/exam-service/internal/models"
	"github.com/examhub/exam-service/internal/repositories"
)

// PostgreSQLRepository implements the main Repository interface
type PostgreSQLRepository struct {
	db           *gorm.DB
	redisClient  *redis.Client
	cacheManager *cache.CacheManager

	// Repository instances
	exam      repositories.ExamRepository
	question  repositories.QuestionRepository
	attempt   repositories.AttemptRepository
	answer    repositories.AnswerRepository
	folder    repositories.FolderRepository
	file      repositories.FileRepository
	dashboard repositories.DashboardRepository
}

// RepositoryConfig holds configuration for repository initialization
type RepositoryConfig struct {
	DB          *gorm.DB
	RedisClient *redis.Client
}

// NewPostgreSQLRepository creates a repository with all sub-repositories
func NewPostgreSQLRepository(config RepositoryConfig) repositories.Repository {
	cacheManager := cache.NewCacheManager(config.RedisClient)

	repo := &PostgreSQLRepository{
		db:           config.DB,
		redisClient:  config.RedisClient,
		cacheManager: cacheManager,
	}
	repo.exam = NewExamPostgreSQL(config.DB, cacheManager)
	repo.wire(config.DB)

	return repo
}

func (r *PostgreSQLRepository) wire(db *gorm.DB) {
	r.question = NewQuestionPostgreSQL(db, r.cacheManager)
	r.attempt = NewAttemptPostgreSQL(db, r.cacheManager)
	r.answer = NewAnswerPostgreSQL(db)
	r.folder = NewFolderPostgreSQL(db, r.cacheManager)
	r.file = NewFilePostgreSQL(db, r.cacheManager)
	r.dashboard = NewDashboardRepository(db)
}

func (r *PostgreSQLRepository) Exam() repositories.ExamRepository {
	return r.exam
}

func (r *PostgreSQLRepository) Question() repositories.QuestionRepository {
	return r.question
}

func (r *PostgreSQLRepository) Attempt() repositories.AttemptRepository {
	return r.attempt
}

func (r *PostgreSQLRepository) Answer() repositories.AnswerRepository {
	return r.answer
}

func (r *PostgreSQLRepository) Folder() repositories.FolderRepository {
	return r.folder
}

func (r *PostgreSQLRepository) File() repositories.FileRepository {
	return r.file
}

func (r *PostgreSQLRepository) Dashboard() repositories.DashboardRepository {
	return r.dashboard
}

// WithTransaction executes fn against a repository bound to a single database transaction.
// Any error returned by fn rolls the transaction back. Cache invalidations issued by the
// transactional repositories run only after the commit succeeds.
func (r *PostgreSQLRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.cacheManager.RunDeferred(ctx, func(txCache *cache.CacheManager) error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			txRepo := &PostgreSQLRepository{
				db:           tx,
				redisClient:  r.redisClient,
				cacheManager: txCache,
			}
			txRepo.exam = newTxExamPostgreSQL(tx, txCache)
			txRepo.wire(tx)

			return fn(txRepo)
		})
	})
}

// Ping checks the health of database and cache connections
func (r *PostgreSQLRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if r.redisClient != nil {
		if err := r.cacheManager.HealthCheck(ctx); err != nil {
			return fmt.Errorf("cache ping failed: %w", err)
		}
	}

	return nil
}

// Close closes all connections
func (r *PostgreSQLRepository) Close() error {
	var errs []error

	sqlDB, err := r.db.DB()
	if err != nil {
		errs = append(errs, fmt.Errorf("failed to get database instance: %w", err))
	} else if err := sqlDB.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close database: %w", err))
	}

	if r.redisClient != nil {
		if err := r.redisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	return errors.Join(errs...)
}

// CacheStats returns cache statistics for monitoring
func (r *PostgreSQLRepository) CacheStats(ctx context.Context) (map[string]interface{}, error) {
	if r.redisClient == nil {
		return map[string]interface{}{"cache_enabled": false}, nil
	}

	stats := map[string]interface{}{"cache_enabled": true}
	counts, err := r.cacheManager.KeyCounts(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to get cache key counts: %w", err)
	}
	for prefix, count := range counts {
		stats[prefix+"count"] = count
	}

	return stats, nil
}

// AutoMigrate creates or updates the schema for every model
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Folder{},
		&models.File{},
		&models.Exam{},
		&models.Question{},
		&models.ExamAttempt{},
		&models.Answer{},
	)
}

// RepositoryManager implements the RepositoryManager interface
type RepositoryManager struct {
	config RepositoryConfig
	repo   repositories.Repository
}

func NewRepositoryManager(config RepositoryConfig) repositories.RepositoryManager {
	return &RepositoryManager{
		config: config,
	}
}

// Initialize verifies connections and builds the repository
func (rm *RepositoryManager) Initialize() error {
	if rm.config.DB == nil {
		return fmt.Errorf("database connection is required")
	}

	sqlDB, err := rm.config.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}

	if rm.config.RedisClient != nil {
		if err := rm.config.RedisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis connection failed: %w", err)
		}
	}

	rm.repo = NewPostgreSQLRepository(rm.config)

	return nil
}

func (rm *RepositoryManager) GetRepository() repositories.Repository {
	return rm.repo
}

func (rm *RepositoryManager) HealthCheck(ctx context.Context) error {
	if rm.repo == nil {
		return fmt.Errorf("repository not initialized")
	}

	return rm.repo.Ping(ctx)
}

func (rm *RepositoryManager) Shutdown(ctx context.Context) error {
	if rm.repo == nil {
		return nil
	}

	return rm.repo.Close()
}
