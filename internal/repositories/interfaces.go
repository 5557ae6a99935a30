package repositories

import (
	"errors"

	"github.com/examhub/exam-service/internal/models"
	"gorm.io/gorm"
)

// ===== SHARED FILTER STRUCTS =====

type ExamFilters struct {
	FolderID    *uint  `json:"folder_id"`
	IsPublished *bool  `json:"is_published"`
	Search      string `json:"search"`
	Limit       int    `json:"limit"`
	Offset      int    `json:"offset"`
	SortBy      string `json:"sort_by"`    // "created_at", "title", "id"
	SortOrder   string `json:"sort_order"` // "asc", "desc"
}

type AttemptFilters struct {
	Status *models.AttemptStatus `json:"status"`
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
}

type FolderFilters struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type FileFilters struct {
	FolderID *uint  `json:"folder_id"`
	FileType string `json:"file_type"`
	Limit    int    `json:"limit"`
	Offset   int    `json:"offset"`
}

// IsNotFoundError reports whether err was caused by a missing record
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
