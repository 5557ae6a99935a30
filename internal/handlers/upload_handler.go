package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/examhub/exam-service/internal/repositories"
	"github.com/examhub/exam-service/internal/services"
	"github.com/examhub/exam-service/internal/utils"
)

type UploadHandler struct {
	BaseHandler
	uploadService services.UploadService
}

func NewUploadHandler(uploadService services.UploadService, logger utils.Logger) *UploadHandler {
	return &UploadHandler{
		BaseHandler:   NewBaseHandler(logger),
		uploadService: uploadService,
	}
}

// UploadFile stores a document for later question extraction
// @Summary Upload file
// @Tags upload
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Document"
// @Param folder_id formData int false "Folder to file it under"
// @Success 201 {object} models.File
// @Failure 400 {object} ErrorResponse "Missing file or extension not allowed"
// @Failure 404 {object} ErrorResponse "Folder not found"
// @Failure 413 {object} ErrorResponse
// @Router /upload [post]
func (h *UploadHandler) UploadFile(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Missing file", err)
		return
	}

	req := &services.UploadFileRequest{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
	}
	if v := c.PostForm("folder_id"); v != "" {
		folderID, err := strconv.ParseUint(v, 10, 32)
		if err != nil || folderID == 0 {
			h.RespondWithError(c, http.StatusBadRequest, "Invalid folder_id", err)
			return
		}
		id := uint(folderID)
		req.FolderID = &id
	}

	content, err := fileHeader.Open()
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Unreadable file", err)
		return
	}
	defer content.Close()
	req.Content = content

	h.LogRequest(c, "Uploading file", "filename", fileHeader.Filename, "size", fileHeader.Size)

	file, err := h.uploadService.Upload(c.Request.Context(), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, file)
}

// ListFiles
// @Summary List uploaded files
// @Tags upload
// @Produce json
// @Param folder_id query int false "Only files in this folder"
// @Param skip query int false "Rows to skip"
// @Param limit query int false "Page size"
// @Success 200 {object} services.FileListResponse
// @Router /upload [get]
func (h *UploadHandler) ListFiles(c *gin.Context) {
	skip, limit := h.parsePagination(c)
	filters := repositories.FileFilters{
		FolderID: h.parseUintQueryPtr(c, "folder_id"),
		FileType: c.Query("file_type"),
		Offset:   skip,
		Limit:    limit,
	}

	resp, err := h.uploadService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetFile
// @Summary Get file metadata
// @Tags upload
// @Produce json
// @Param id path int true "File ID"
// @Success 200 {object} models.File
// @Failure 404 {object} ErrorResponse
// @Router /upload/{id} [get]
func (h *UploadHandler) GetFile(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	file, err := h.uploadService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, file)
}

// DeleteFile removes the metadata and the stored bytes
// @Summary Delete file
// @Tags upload
// @Param id path int true "File ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /upload/{id} [delete]
func (h *UploadHandler) DeleteFile(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting file", "file_id", id)

	if err := h.uploadService.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ExtractQuestions generates question drafts from a stored file
// @Summary Extract questions from file
// @Description Falls back to deterministic drafts when the model is disabled or fails. With exam_id the drafts are added to the exam.
// @Tags upload
// @Accept json
// @Produce json
// @Param id path int true "File ID"
// @Param request body services.ExtractQuestionsRequest true "Extraction options"
// @Success 200 {object} services.ExtractQuestionsResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /upload/{id}/extract-questions [post]
func (h *UploadHandler) ExtractQuestions(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.ExtractQuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	h.LogRequest(c, "Extracting questions", "file_id", id, "question_type", req.QuestionType)

	resp, err := h.uploadService.ExtractQuestions(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
