package models

import (
	"time"
)

const DefaultFolderColor = "#3B82F6"

type Folder struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null;size:255"`
	Description *string   `json:"description" gorm:"type:text"`
	Color       string    `json:"color" gorm:"size:7;default:'#3B82F6'"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Computed fields (not stored)
	ExamsCount int `json:"exams_count" gorm:"-"`
	FilesCount int `json:"files_count" gorm:"-"`
}

type File struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	Filename         string    `json:"filename" gorm:"not null;size:255;uniqueIndex"`
	OriginalFilename string    `json:"original_filename" gorm:"not null;size:255"`
	FilePath         string    `json:"-" gorm:"not null;size:500"`
	FileType         string    `json:"file_type" gorm:"size:50"`
	FileSize         int64     `json:"file_size"`
	MimeType         *string   `json:"mime_type" gorm:"size:100"`
	FolderID         *uint     `json:"folder_id" gorm:"index"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	Folder *Folder `json:"-" gorm:"foreignKey:FolderID;constraint:OnDelete:SET NULL"`
}
