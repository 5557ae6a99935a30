package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/examhub/exam-service/internal/services"
	"github.com/examhub/exam-service/internal/utils"
)

type AttemptHandler struct {
	BaseHandler
	attemptService services.AttemptService
}

func NewAttemptHandler(attemptService services.AttemptService, logger utils.Logger) *AttemptHandler {
	return &AttemptHandler{
		BaseHandler:    NewBaseHandler(logger),
		attemptService: attemptService,
	}
}

// StartAttempt starts an attempt on a published exam
// @Summary Start exam attempt
// @Description Returns an in-progress attempt instead of creating one when the reuse policy allows it
// @Tags attempts
// @Accept json
// @Produce json
// @Param id path int true "Exam ID"
// @Param attempt body services.StartAttemptRequest true "Student identity"
// @Success 201 {object} models.ExamAttempt
// @Failure 400 {object} ErrorResponse "Exam not published"
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /exams/{id}/attempts [post]
func (h *AttemptHandler) StartAttempt(c *gin.Context) {
	examID := h.parseIDParam(c, "id")
	if examID == 0 {
		return
	}

	h.LogRequest(c, "Starting exam attempt", "exam_id", examID)

	var req services.StartAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	attempt, err := h.attemptService.Start(c.Request.Context(), examID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, attempt)
}

// SubmitAttempt grades the answers and completes the attempt
// @Summary Submit exam attempt
// @Tags attempts
// @Accept json
// @Produce json
// @Param id path int true "Attempt ID"
// @Param attempt body services.SubmitAttemptRequest true "Answers"
// @Success 200 {object} models.ExamAttempt
// @Failure 400 {object} ErrorResponse "Attempt already completed"
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /attempts/{id}/submit [post]
func (h *AttemptHandler) SubmitAttempt(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Submitting exam attempt", "attempt_id", id)

	var req services.SubmitAttemptRequest
	// An empty body submits no answers
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	attempt, err := h.attemptService.Submit(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, attempt)
}

// GetAttempt returns the attempt with its graded answers
// @Summary Get attempt
// @Tags attempts
// @Produce json
// @Param id path int true "Attempt ID"
// @Success 200 {object} models.ExamAttempt
// @Failure 404 {object} ErrorResponse
// @Router /attempts/{id} [get]
func (h *AttemptHandler) GetAttempt(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Getting attempt", "attempt_id", id)

	attempt, err := h.attemptService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, attempt)
}

// ListAttempts lists an exam's attempts in creation order
// @Summary List attempts of an exam
// @Tags attempts
// @Produce json
// @Param id path int true "Exam ID"
// @Param skip query int false "Rows to skip (default 0)"
// @Param limit query int false "Page size (default 100, max 1000)"
// @Success 200 {array} services.AttemptListItem
// @Router /exams/{id}/attempts [get]
func (h *AttemptHandler) ListAttempts(c *gin.Context) {
	examID := h.parseIDParam(c, "id")
	if examID == 0 {
		return
	}

	skip, limit := h.parsePagination(c)
	h.LogRequest(c, "Listing attempts", "exam_id", examID, "skip", skip, "limit", limit)

	attempts, err := h.attemptService.ListByExam(c.Request.Context(), examID, skip, limit)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, attempts)
}

// DeleteAttempt removes the attempt and its answers
// @Summary Delete attempt
// @Tags attempts
// @Param id path int true "Attempt ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /attempts/{id} [delete]
func (h *AttemptHandler) DeleteAttempt(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting attempt", "attempt_id", id)

	if err := h.attemptService.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
