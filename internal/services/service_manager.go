package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/examhub/exam-service/internal/cache"
	"github.com/examhub/exam-service/internal/events"
	"github.com/examhub/exam-service/internal/repositories"
	"github.com/examhub/exam-service/internal/validator"
	"gorm.io/gorm"
)

// ServiceManagerConfig holds the collaborators and settings shared by the services
type ServiceManagerConfig struct {
	ReusePolicy AttemptReusePolicy
	Upload      UploadSettings

	Publisher    events.EventPublisher
	Extractor    QuestionExtractor
	Chatbot      ChatResponder
	CacheManager *cache.CacheManager
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	// Dependencies
	db        *gorm.DB
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	config    ServiceManagerConfig

	// Service instances
	examService      ExamService
	attemptService   AttemptService
	folderService    FolderService
	uploadService    UploadService
	dashboardService DashboardService
	exportService    ExportService
	chatbotService   ChatbotService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(db *gorm.DB, repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, config ServiceManagerConfig) ServiceManager {
	return &serviceManager{
		db:        db,
		repo:      repo,
		logger:    logger,
		validator: validator,
		config:    config,
	}
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	if err := sm.initializeServices(); err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully",
		"reuse_policy", sm.config.ReusePolicy,
		"events", sm.config.Publisher != nil)

	return nil
}

func (sm *serviceManager) initializeServices() error {
	if sm.config.Extractor == nil {
		return fmt.Errorf("question extractor is required")
	}
	if sm.config.Chatbot == nil {
		return fmt.Errorf("chat responder is required")
	}

	sm.examService = NewExamService(sm.repo, sm.db, sm.logger, sm.validator, sm.config.Publisher)
	sm.logger.Info("Exam service initialized")

	sm.attemptService = NewAttemptService(sm.repo, sm.db, sm.logger, sm.validator, sm.config.Publisher, sm.config.ReusePolicy)
	sm.logger.Info("Attempt service initialized")

	sm.folderService = NewFolderService(sm.repo, sm.db, sm.logger, sm.validator)
	sm.logger.Info("Folder service initialized")

	sm.uploadService = NewUploadService(sm.repo, sm.db, sm.logger, sm.validator, sm.config.Upload, sm.config.Extractor, sm.examService)
	sm.logger.Info("Upload service initialized")

	sm.dashboardService = NewDashboardService(sm.repo, sm.db, sm.logger, sm.config.CacheManager)
	sm.logger.Info("Dashboard service initialized")

	sm.exportService = NewExportService(sm.repo, sm.db, sm.logger, sm.examService)
	sm.logger.Info("Export service initialized")

	sm.chatbotService = NewChatbotService(sm.logger, sm.validator, sm.config.Chatbot)
	sm.logger.Info("Chatbot service initialized", "ai_enabled", sm.config.Chatbot.Enabled())

	return nil
}

// Service getters
func (sm *serviceManager) Exam() ExamService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.examService
}

func (sm *serviceManager) Attempt() AttemptService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.attemptService
}

func (sm *serviceManager) Folder() FolderService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.folderService
}

func (sm *serviceManager) Upload() UploadService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.uploadService
}

func (sm *serviceManager) Dashboard() DashboardService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.dashboardService
}

func (sm *serviceManager) Export() ExportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.exportService
}

func (sm *serviceManager) Chatbot() ChatbotService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.chatbotService
}

// Health and lifecycle
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}

	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if sm.config.Publisher != nil {
		if err := sm.config.Publisher.Close(); err != nil {
			sm.logger.Error("Failed to close event publisher", "error", err)
		}
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down completed")

	return nil
}
