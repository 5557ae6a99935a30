package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/examhub/exam-service/internal/models"
	"github.com/examhub/exam-service/internal/services"
	"github.com/examhub/exam-service/internal/utils"
)

type FolderHandler struct {
	BaseHandler
	folderService services.FolderService
}

func NewFolderHandler(folderService services.FolderService, logger utils.Logger) *FolderHandler {
	return &FolderHandler{
		BaseHandler:   NewBaseHandler(logger),
		folderService: folderService,
	}
}

// CreateFolder
// @Summary Create folder
// @Tags folders
// @Accept json
// @Produce json
// @Param folder body models.FolderCreateRequest true "Folder data"
// @Success 201 {object} models.Folder
// @Failure 422 {object} ErrorResponse
// @Router /folders [post]
func (h *FolderHandler) CreateFolder(c *gin.Context) {
	h.LogRequest(c, "Creating folder")

	var req models.FolderCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	folder, err := h.folderService.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, folder)
}

// ListFolders
// @Summary List folders with exam and file counts
// @Tags folders
// @Produce json
// @Param skip query int false "Rows to skip"
// @Param limit query int false "Page size"
// @Success 200 {object} services.FolderListResponse
// @Router /folders [get]
func (h *FolderHandler) ListFolders(c *gin.Context) {
	skip, limit := h.parsePagination(c)

	resp, err := h.folderService.List(c.Request.Context(), skip, limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetFolder
// @Summary Get folder
// @Tags folders
// @Produce json
// @Param id path int true "Folder ID"
// @Success 200 {object} models.Folder
// @Failure 404 {object} ErrorResponse
// @Router /folders/{id} [get]
func (h *FolderHandler) GetFolder(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	folder, err := h.folderService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, folder)
}

// UpdateFolder
// @Summary Update folder
// @Tags folders
// @Accept json
// @Produce json
// @Param id path int true "Folder ID"
// @Param folder body models.FolderUpdateRequest true "Fields to change"
// @Success 200 {object} models.Folder
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /folders/{id} [put]
func (h *FolderHandler) UpdateFolder(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Updating folder", "folder_id", id)

	var req models.FolderUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	folder, err := h.folderService.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, folder)
}

// DeleteFolder deletes the folder; exams and files in it are kept and detached
// @Summary Delete folder
// @Tags folders
// @Param id path int true "Folder ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /folders/{id} [delete]
func (h *FolderHandler) DeleteFolder(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting folder", "folder_id", id)

	if err := h.folderService.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
