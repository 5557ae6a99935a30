package repositories

import (
	"context"

	"github.com/examhub/exam-service/internal/models"
	"gorm.io/gorm"
)

// FolderRepository interface for folder operations
type FolderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, folder *models.Folder) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Folder, error)
	List(ctx context.Context, tx *gorm.DB, filters FolderFilters) ([]*models.Folder, int64, error)
	Update(ctx context.Context, tx *gorm.DB, folder *models.Folder) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
}

// FileRepository interface for uploaded file metadata
type FileRepository interface {
	Create(ctx context.Context, tx *gorm.DB, file *models.File) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.File, error)
	List(ctx context.Context, tx *gorm.DB, filters FileFilters) ([]*models.File, int64, error)
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// DetachFolder clears folder_id on every file in the folder
	DetachFolder(ctx context.Context, tx *gorm.DB, folderID uint) error
}
