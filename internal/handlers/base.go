package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/examhub/exam-service/internal/services"
	"github.com/examhub/exam-service/internal/utils"
)

const (
	defaultSkip  = 0
	defaultLimit = 100
)

type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// BaseHandler carries what every handler needs: a logger and the shared helpers
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// LogRequest logs through the request-scoped logger so entries carry the request id
func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.GetLogger(c, h.logger).Info(msg, args...)
}

func (h *BaseHandler) RespondWithError(c *gin.Context, status int, message string, err error) {
	resp := ErrorResponse{Message: message}
	if err != nil {
		resp.Details = err.Error()
	}
	c.JSON(status, resp)
}

// parseIDParam returns the positive integer path parameter, or writes a 400 and returns 0
func (h *BaseHandler) parseIDParam(c *gin.Context, param string) uint {
	idStr := c.Param(param)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: "must be a positive integer",
		})
		return 0
	}
	return uint(id)
}

func (h *BaseHandler) parseIntQuery(c *gin.Context, param string, defaultValue int) int {
	valueStr := c.Query(param)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func (h *BaseHandler) parseUintQueryPtr(c *gin.Context, param string) *uint {
	valueStr := c.Query(param)
	if valueStr == "" {
		return nil
	}
	value, err := strconv.ParseUint(valueStr, 10, 32)
	if err != nil {
		return nil
	}
	id := uint(value)
	return &id
}

func (h *BaseHandler) parseBoolQueryPtr(c *gin.Context, param string) *bool {
	valueStr := c.Query(param)
	if valueStr == "" {
		return nil
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return nil
	}
	return &value
}

// parsePagination reads skip/limit; the services clamp them to their bounds
func (h *BaseHandler) parsePagination(c *gin.Context) (int, int) {
	return h.parseIntQuery(c, "skip", defaultSkip), h.parseIntQuery(c, "limit", defaultLimit)
}

// ===== ERROR HANDLING =====

func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	switch {
	case services.IsNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: notFoundMessage(err)})
	case errors.Is(err, services.ErrExamNotPublished):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Exam is not published"})
	case errors.Is(err, services.ErrAttemptAlreadySubmitted):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Attempt already completed"})
	case errors.Is(err, services.ErrInvalidFileType):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "File type not allowed", Details: err.Error()})
	case errors.Is(err, services.ErrFileTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Message: "File too large"})
	case errors.Is(err, services.ErrInvalidSpreadsheet):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid spreadsheet", Details: err.Error()})
	default:
		utils.GetLogger(c, h.logger).Error("Unhandled service error", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Internal server error"})
	}
}

func notFoundMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrExamNotFound):
		return "Exam not found"
	case errors.Is(err, services.ErrQuestionNotFound):
		return "Question not found"
	case errors.Is(err, services.ErrAttemptNotFound):
		return "Attempt not found"
	case errors.Is(err, services.ErrFolderNotFound):
		return "Folder not found"
	default:
		return "File not found"
	}
}
