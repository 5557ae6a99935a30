package postgres

import (
	"context"
	"fmt"

	"github.com/examhub/exam-service/internal/cache"
	"github.com/examhub/exam-service/internal/models"
	"github.com/examhub/exam-service/internal/repositories"
	"gorm.io/gorm"
)

type FolderPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewFolderPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.FolderRepository {
	return &FolderPostgreSQL{db: db, cacheManager: cacheManager}
}

func (f *FolderPostgreSQL) Create(ctx context.Context, tx *gorm.DB, folder *models.Folder) error {
	db := getDB(f.db, tx)
	if err := db.WithContext(ctx).Create(folder).Error; err != nil {
		return fmt.Errorf("failed to create folder: %w", err)
	}
	cache.InvalidateStatsCache(ctx, f.cacheManager)
	return nil
}

func (f *FolderPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Folder, error) {
	db := getDB(f.db, tx)
	var folder models.Folder
	if err := db.WithContext(ctx).First(&folder, id).Error; err != nil {
		return nil, err
	}
	if err := f.fillCounts(ctx, db, []*models.Folder{&folder}); err != nil {
		return nil, err
	}
	return &folder, nil
}

func (f *FolderPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.FolderFilters) ([]*models.Folder, int64, error) {
	db := getDB(f.db, tx)
	var folders []*models.Folder
	var total int64

	query := db.WithContext(ctx).Model(&models.Folder{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count folders: %w", err)
	}

	query = applyPaginationAndSort(query, "name", "asc", filters.Limit, filters.Offset)
	if err := query.Find(&folders).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list folders: %w", err)
	}

	if err := f.fillCounts(ctx, db, folders); err != nil {
		return nil, 0, err
	}
	return folders, total, nil
}

type folderCount struct {
	FolderID uint
	Count    int
}

func (f *FolderPostgreSQL) fillCounts(ctx context.Context, db *gorm.DB, folders []*models.Folder) error {
	if len(folders) == 0 {
		return nil
	}

	ids := make([]uint, len(folders))
	for i, folder := range folders {
		ids[i] = folder.ID
	}

	countBy := func(model interface{}) (map[uint]int, error) {
		var rows []folderCount
		if err := db.WithContext(ctx).Model(model).
			Select("folder_id, COUNT(*) AS count").
			Where("folder_id IN ?", ids).
			Group("folder_id").
			Scan(&rows).Error; err != nil {
			return nil, err
		}
		counts := make(map[uint]int, len(rows))
		for _, row := range rows {
			counts[row.FolderID] = row.Count
		}
		return counts, nil
	}

	exams, err := countBy(&models.Exam{})
	if err != nil {
		return fmt.Errorf("failed to count folder exams: %w", err)
	}
	files, err := countBy(&models.File{})
	if err != nil {
		return fmt.Errorf("failed to count folder files: %w", err)
	}

	for _, folder := range folders {
		folder.ExamsCount = exams[folder.ID]
		folder.FilesCount = files[folder.ID]
	}
	return nil
}

func (f *FolderPostgreSQL) Update(ctx context.Context, tx *gorm.DB, folder *models.Folder) error {
	db := getDB(f.db, tx)
	result := db.WithContext(ctx).Model(folder).Select("name", "description", "color", "updated_at").Updates(folder)
	if result.Error != nil {
		return fmt.Errorf("failed to update folder: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (f *FolderPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := getDB(f.db, tx)
	result := db.WithContext(ctx).Delete(&models.Folder{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete folder: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	cache.InvalidateStatsCache(ctx, f.cacheManager)
	return nil
}

type FilePostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewFilePostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.FileRepository {
	return &FilePostgreSQL{db: db, cacheManager: cacheManager}
}

func (f *FilePostgreSQL) Create(ctx context.Context, tx *gorm.DB, file *models.File) error {
	db := getDB(f.db, tx)
	if err := db.WithContext(ctx).Create(file).Error; err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	cache.InvalidateStatsCache(ctx, f.cacheManager)
	return nil
}

func (f *FilePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.File, error) {
	db := getDB(f.db, tx)
	var file models.File
	if err := db.WithContext(ctx).First(&file, id).Error; err != nil {
		return nil, err
	}
	return &file, nil
}

func (f *FilePostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.FileFilters) ([]*models.File, int64, error) {
	db := getDB(f.db, tx)
	var files []*models.File
	var total int64

	query := db.WithContext(ctx).Model(&models.File{})
	if filters.FolderID != nil {
		query = query.Where("folder_id = ?", *filters.FolderID)
	}
	if filters.FileType != "" {
		query = query.Where("file_type = ?", filters.FileType)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count files: %w", err)
	}

	query = applyPaginationAndSort(query, "created_at", "desc", filters.Limit, filters.Offset)
	if err := query.Find(&files).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list files: %w", err)
	}
	return files, total, nil
}

func (f *FilePostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := getDB(f.db, tx)
	result := db.WithContext(ctx).Delete(&models.File{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete file: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	cache.InvalidateStatsCache(ctx, f.cacheManager)
	return nil
}

func (f *FilePostgreSQL) DetachFolder(ctx context.Context, tx *gorm.DB, folderID uint) error {
	db := getDB(f.db, tx)
	if err := db.WithContext(ctx).Model(&models.File{}).
		Where("folder_id = ?", folderID).
		Update("folder_id", nil).Error; err != nil {
		return fmt.Errorf("failed to detach files from folder: %w", err)
	}
	return nil
}
