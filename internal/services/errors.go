package services

import (
	"errors"

	"github.com/examhub/exam-service/internal/validator"
)

// Common service errors
var (
	// Exam errors
	ErrExamNotFound     = errors.New("exam not found")
	ErrExamNotPublished = errors.New("exam not published")

	// Question errors
	ErrQuestionNotFound = errors.New("question not found")

	// Attempt errors
	ErrAttemptNotFound         = errors.New("attempt not found")
	ErrAttemptAlreadySubmitted = errors.New("attempt already completed")

	// Library errors
	ErrFolderNotFound     = errors.New("folder not found")
	ErrFileNotFound       = errors.New("file not found")
	ErrInvalidFileType    = errors.New("file type not allowed")
	ErrFileTooLarge       = errors.New("file exceeds maximum upload size")
	ErrInvalidSpreadsheet = errors.New("invalid spreadsheet")
)

// ValidationErrors is re-exported so handlers only depend on services
type ValidationErrors = validator.ValidationErrors

type ValidationError = validator.ValidationError

// IsNotFound reports whether err is one of the not-found sentinels
func IsNotFound(err error) bool {
	return errors.Is(err, ErrExamNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrAttemptNotFound) ||
		errors.Is(err, ErrFolderNotFound) ||
		errors.Is(err, ErrFileNotFound)
}

// IsInvalidState reports whether err rejects an operation because of the resource's state
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrExamNotPublished) ||
		errors.Is(err, ErrAttemptAlreadySubmitted)
}
