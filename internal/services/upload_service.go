package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/examhub/exam-service/internal/extraction"
	"github.com/examhub/exam-service/internal/models"
	"github.com/examhub/exam-service/internal/repositories"
	"github.com/examhub/exam-service/internal/validator"
	"gorm.io/gorm"
)

const (
	defaultFileLimit    = 100
	maxFileLimit        = 1000
	defaultNumQuestions = 5
	defaultFileDirPerm  = 0o755
	defaultFilePerm     = 0o644
)

// UploadSettings controls where and what may be uploaded
type UploadSettings struct {
	Dir               string
	MaxSize           int64
	AllowedExtensions []string
}

func (u UploadSettings) allows(ext string) bool {
	for _, allowed := range u.AllowedExtensions {
		if strings.EqualFold(allowed, ext) {
			return true
		}
	}
	return false
}

type uploadService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	settings  UploadSettings
	extractor QuestionExtractor
	exams     ExamService
}

func NewUploadService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, settings UploadSettings, extractor QuestionExtractor, exams ExamService) UploadService {
	return &uploadService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		settings:  settings,
		extractor: extractor,
		exams:     exams,
	}
}

// Upload stores the content under a random name and records its metadata
func (s *uploadService) Upload(ctx context.Context, req *UploadFileRequest) (*models.File, error) {
	ext := strings.ToLower(filepath.Ext(req.Filename))
	if ext == "" || !s.settings.allows(ext) {
		return nil, fmt.Errorf("%w: %q, allowed: %s", ErrInvalidFileType, ext, strings.Join(s.settings.AllowedExtensions, ", "))
	}
	if req.Size > s.settings.MaxSize {
		return nil, ErrFileTooLarge
	}

	if req.FolderID != nil {
		if _, err := s.repo.Folder().GetByID(ctx, s.db, *req.FolderID); err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrFolderNotFound
			}
			return nil, fmt.Errorf("failed to get folder: %w", err)
		}
	}

	if err := os.MkdirAll(s.settings.Dir, defaultFileDirPerm); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	storedName := uuid.New().String() + ext
	path := filepath.Join(s.settings.Dir, storedName)
	size, err := s.writeFile(path, req.Content)
	if err != nil {
		return nil, err
	}

	file := &models.File{
		Filename:         storedName,
		OriginalFilename: filepath.Base(req.Filename),
		FilePath:         path,
		FileType:         strings.TrimPrefix(ext, "."),
		FileSize:         size,
		FolderID:         req.FolderID,
	}
	if req.ContentType != "" {
		contentType := req.ContentType
		file.MimeType = &contentType
	}

	if err := s.repo.File().Create(ctx, s.db, file); err != nil {
		s.removeStored(path)
		return nil, fmt.Errorf("failed to save file metadata: %w", err)
	}

	s.logger.Info("File uploaded",
		"file_id", file.ID,
		"original_filename", file.OriginalFilename,
		"size", size)
	return file, nil
}

// writeFile copies at most MaxSize bytes; anything larger is removed and rejected
func (s *uploadService) writeFile(path string, content io.Reader) (int64, error) {
	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, defaultFilePerm)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}

	size, err := io.Copy(out, io.LimitReader(content, s.settings.MaxSize+1))
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		s.removeStored(path)
		return 0, fmt.Errorf("failed to write file: %w", err)
	}
	if size > s.settings.MaxSize {
		s.removeStored(path)
		return 0, ErrFileTooLarge
	}
	return size, nil
}

func (s *uploadService) removeStored(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Error("Failed to remove stored file", "path", path, "error", err)
	}
}

func (s *uploadService) GetByID(ctx context.Context, id uint) (*models.File, error) {
	file, err := s.repo.File().GetByID(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to get file: %w", err)
	}
	return file, nil
}

func (s *uploadService) List(ctx context.Context, filters repositories.FileFilters) (*FileListResponse, error) {
	filters.Offset, filters.Limit = normalizePage(filters.Offset, filters.Limit, defaultFileLimit, maxFileLimit)

	files, total, err := s.repo.File().List(ctx, s.db, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	if files == nil {
		files = []*models.File{}
	}
	return &FileListResponse{Files: files, Total: total}, nil
}

// Delete drops the metadata row and the stored bytes
func (s *uploadService) Delete(ctx context.Context, id uint) error {
	file, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.File().Delete(ctx, s.db, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrFileNotFound
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}
	s.removeStored(file.FilePath)

	s.logger.Info("File deleted", "file_id", id)
	return nil
}

// ExtractQuestions generates drafts from a stored file and optionally adds them to an exam
func (s *uploadService) ExtractQuestions(ctx context.Context, fileID uint, req *ExtractQuestionsRequest) (*ExtractQuestionsResponse, error) {
	if req.NumQuestions == 0 {
		req.NumQuestions = defaultNumQuestions
	}
	if req.Difficulty == "" {
		req.Difficulty = models.DifficultyMedium
	}
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	file, err := s.GetByID(ctx, fileID)
	if err != nil {
		return nil, err
	}

	text, err := extraction.ReadText(file.FilePath)
	if err != nil {
		// Unreadable documents still produce drafts through the fallback
		s.logger.Warn("Failed to read file text", "file_id", fileID, "error", err)
		text = ""
	}

	s.logger.Info("Extracting questions",
		"file_id", fileID,
		"question_type", req.QuestionType,
		"num_questions", req.NumQuestions)

	result := s.extractor.ExtractQuestions(ctx, text, req.QuestionType, req.NumQuestions, req.Difficulty)
	resp := &ExtractQuestionsResponse{
		FileID:    fileID,
		Questions: result.Questions,
		Fallback:  result.Fallback,
	}

	if req.ExamID != nil {
		reqs := make([]models.QuestionCreateRequest, 0, len(result.Questions))
		for _, d := range result.Questions {
			reqs = append(reqs, d.ToCreateRequest())
		}
		saved, err := s.exams.AddQuestions(ctx, *req.ExamID, reqs)
		if err != nil {
			return nil, err
		}
		resp.Saved = saved
	}
	return resp, nil
}
