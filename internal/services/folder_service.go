package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/examhub/exam-service/internal/models"
	"github.com/examhub/exam-service/internal/repositories"
	"github.com/examhub/exam-service/internal/validator"
	"gorm.io/gorm"
)

const (
	defaultFolderLimit = 100
	maxFolderLimit     = 1000
)

type folderService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewFolderService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) FolderService {
	return &folderService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

func (s *folderService) Create(ctx context.Context, req *models.FolderCreateRequest) (*models.Folder, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	folder := &models.Folder{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
	}
	if folder.Color == "" {
		folder.Color = models.DefaultFolderColor
	}

	if err := s.repo.Folder().Create(ctx, s.db, folder); err != nil {
		return nil, fmt.Errorf("failed to create folder: %w", err)
	}

	s.logger.Info("Folder created", "folder_id", folder.ID, "name", folder.Name)
	return folder, nil
}

func (s *folderService) GetByID(ctx context.Context, id uint) (*models.Folder, error) {
	folder, err := s.repo.Folder().GetByID(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrFolderNotFound
		}
		return nil, fmt.Errorf("failed to get folder: %w", err)
	}
	return folder, nil
}

func (s *folderService) List(ctx context.Context, skip, limit int) (*FolderListResponse, error) {
	skip, limit = normalizePage(skip, limit, defaultFolderLimit, maxFolderLimit)

	folders, total, err := s.repo.Folder().List(ctx, s.db, repositories.FolderFilters{Limit: limit, Offset: skip})
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}
	if folders == nil {
		folders = []*models.Folder{}
	}
	return &FolderListResponse{Folders: folders, Total: total}, nil
}

func (s *folderService) Update(ctx context.Context, id uint, req *models.FolderUpdateRequest) (*models.Folder, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	folder, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		folder.Name = *req.Name
	}
	if req.Description != nil {
		folder.Description = req.Description
	}
	if req.Color != nil {
		folder.Color = *req.Color
	}

	if err := s.repo.Folder().Update(ctx, s.db, folder); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrFolderNotFound
		}
		return nil, fmt.Errorf("failed to update folder: %w", err)
	}
	return folder, nil
}

// Delete removes the folder; its exams and files stay, detached
func (s *folderService) Delete(ctx context.Context, id uint) error {
	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Exam().DetachFolder(ctx, nil, id); err != nil {
			return err
		}
		if err := txRepo.File().DetachFolder(ctx, nil, id); err != nil {
			return err
		}
		if err := txRepo.Folder().Delete(ctx, nil, id); err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrFolderNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete folder: %w", err)
	}

	s.logger.Info("Folder deleted", "folder_id", id)
	return nil
}
