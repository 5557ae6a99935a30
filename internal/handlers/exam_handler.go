package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/examhub/exam-service/internal/models"
	"github.com/examhub/exam-service/internal/repositories"
	"github.com/examhub/exam-service/internal/services"
	"github.com/examhub/exam-service/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ExamHandler struct {
	BaseHandler
	examService   services.ExamService
	exportService services.ExportService
}

func NewExamHandler(examService services.ExamService, exportService services.ExportService, logger utils.Logger) *ExamHandler {
	return &ExamHandler{
		BaseHandler:   NewBaseHandler(logger),
		examService:   examService,
		exportService: exportService,
	}
}

// CreateExam creates an exam, optionally with its questions
// @Summary Create exam
// @Tags exams
// @Accept json
// @Produce json
// @Param exam body models.ExamCreateRequest true "Exam data"
// @Success 201 {object} models.Exam
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Folder not found"
// @Failure 422 {object} ErrorResponse
// @Router /exams [post]
func (h *ExamHandler) CreateExam(c *gin.Context) {
	h.LogRequest(c, "Creating exam")

	var req models.ExamCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	exam, err := h.examService.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, exam)
}

// ListExams lists exams
// @Summary List exams
// @Tags exams
// @Produce json
// @Param skip query int false "Rows to skip (default 0)"
// @Param limit query int false "Page size (default 100, max 1000)"
// @Param folder_id query int false "Only exams in this folder"
// @Param is_published query bool false "Filter by publication state"
// @Param search query string false "Title contains"
// @Success 200 {object} services.ExamListResponse
// @Router /exams [get]
func (h *ExamHandler) ListExams(c *gin.Context) {
	h.LogRequest(c, "Listing exams")

	skip, limit := h.parsePagination(c)
	filters := repositories.ExamFilters{
		FolderID:    h.parseUintQueryPtr(c, "folder_id"),
		IsPublished: h.parseBoolQueryPtr(c, "is_published"),
		Search:      c.Query("search"),
		Offset:      skip,
		Limit:       limit,
		SortBy:      c.Query("sort_by"),
		SortOrder:   c.Query("sort_order"),
	}

	resp, err := h.examService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetExam returns the full exam including reference answers
// @Summary Get exam
// @Tags exams
// @Produce json
// @Param id path int true "Exam ID"
// @Success 200 {object} models.Exam
// @Failure 404 {object} ErrorResponse
// @Router /exams/{id} [get]
func (h *ExamHandler) GetExam(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Getting exam", "exam_id", id)

	exam, err := h.examService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, exam)
}

// GetPublicExam returns the test-taker view of a published exam
// @Summary Get public exam
// @Description Questions are returned without correct answers. Unpublished exams are rejected.
// @Tags exams
// @Produce json
// @Param id path int true "Exam ID"
// @Success 200 {object} models.PublicExam
// @Failure 400 {object} ErrorResponse "Exam not published"
// @Failure 404 {object} ErrorResponse
// @Router /exams/{id}/public [get]
func (h *ExamHandler) GetPublicExam(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Getting public exam", "exam_id", id)

	exam, err := h.examService.GetPublic(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, exam)
}

// UpdateExam applies a partial update
// @Summary Update exam
// @Tags exams
// @Accept json
// @Produce json
// @Param id path int true "Exam ID"
// @Param exam body models.ExamUpdateRequest true "Fields to change"
// @Success 200 {object} models.Exam
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /exams/{id} [put]
func (h *ExamHandler) UpdateExam(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Updating exam", "exam_id", id)

	var req models.ExamUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	exam, err := h.examService.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, exam)
}

// DeleteExam deletes an exam with its questions, attempts and answers
// @Summary Delete exam
// @Tags exams
// @Param id path int true "Exam ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /exams/{id} [delete]
func (h *ExamHandler) DeleteExam(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting exam", "exam_id", id)

	if err := h.examService.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ===== QUESTIONS =====

// AddQuestion adds one question to an exam
// @Summary Add question
// @Tags questions
// @Accept json
// @Produce json
// @Param id path int true "Exam ID"
// @Param question body models.QuestionCreateRequest true "Question data"
// @Success 201 {object} models.Question
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /exams/{id}/questions [post]
func (h *ExamHandler) AddQuestion(c *gin.Context) {
	examID := h.parseIDParam(c, "id")
	if examID == 0 {
		return
	}

	h.LogRequest(c, "Adding question", "exam_id", examID)

	var req models.QuestionCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	question, err := h.examService.AddQuestion(c.Request.Context(), examID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, question)
}

// AddQuestionsBatch adds several questions in one transaction
// @Summary Add questions (batch)
// @Tags questions
// @Accept json
// @Produce json
// @Param id path int true "Exam ID"
// @Param request body object{questions=[]models.QuestionCreateRequest} true "Questions"
// @Success 201 {array} models.Question
// @Router /exams/{id}/questions/batch [post]
func (h *ExamHandler) AddQuestionsBatch(c *gin.Context) {
	examID := h.parseIDParam(c, "id")
	if examID == 0 {
		return
	}

	var req struct {
		Questions []models.QuestionCreateRequest `json:"questions" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	h.LogRequest(c, "Adding questions (batch)", "exam_id", examID, "count", len(req.Questions))

	questions, err := h.examService.AddQuestions(c.Request.Context(), examID, req.Questions)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, questions)
}

// ListQuestions returns the exam's questions in display order
// @Summary List questions
// @Tags questions
// @Produce json
// @Param id path int true "Exam ID"
// @Success 200 {array} models.Question
// @Failure 404 {object} ErrorResponse
// @Router /exams/{id}/questions [get]
func (h *ExamHandler) ListQuestions(c *gin.Context) {
	examID := h.parseIDParam(c, "id")
	if examID == 0 {
		return
	}

	questions, err := h.examService.ListQuestions(c.Request.Context(), examID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, questions)
}

// UpdateQuestion
// @Summary Update question
// @Tags questions
// @Accept json
// @Produce json
// @Param id path int true "Exam ID"
// @Param question_id path int true "Question ID"
// @Param question body models.QuestionUpdateRequest true "Fields to change"
// @Success 200 {object} models.Question
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /exams/{id}/questions/{question_id} [put]
func (h *ExamHandler) UpdateQuestion(c *gin.Context) {
	examID := h.parseIDParam(c, "id")
	if examID == 0 {
		return
	}
	questionID := h.parseIDParam(c, "question_id")
	if questionID == 0 {
		return
	}

	h.LogRequest(c, "Updating question", "exam_id", examID, "question_id", questionID)

	var req models.QuestionUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	question, err := h.examService.UpdateQuestion(c.Request.Context(), examID, questionID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

// DeleteQuestion
// @Summary Delete question
// @Tags questions
// @Param id path int true "Exam ID"
// @Param question_id path int true "Question ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /exams/{id}/questions/{question_id} [delete]
func (h *ExamHandler) DeleteQuestion(c *gin.Context) {
	examID := h.parseIDParam(c, "id")
	if examID == 0 {
		return
	}
	questionID := h.parseIDParam(c, "question_id")
	if questionID == 0 {
		return
	}

	h.LogRequest(c, "Deleting question", "exam_id", examID, "question_id", questionID)

	if err := h.examService.DeleteQuestion(c.Request.Context(), examID, questionID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ===== IMPORT / EXPORT =====

// ImportQuestions creates questions from an uploaded xlsx sheet
// @Summary Import questions from xlsx
// @Description Header row must contain question_text and question_type; marks, order, options (| separated) and correct_answer are optional.
// @Tags questions
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Exam ID"
// @Param file formData file true "xlsx workbook"
// @Success 201 {array} models.Question
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /exams/{id}/questions/import [post]
func (h *ExamHandler) ImportQuestions(c *gin.Context) {
	examID := h.parseIDParam(c, "id")
	if examID == 0 {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Missing file", err)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Unreadable file", err)
		return
	}
	defer file.Close()

	h.LogRequest(c, "Importing questions", "exam_id", examID, "filename", fileHeader.Filename)

	questions, err := h.exportService.ImportQuestions(c.Request.Context(), examID, file)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, questions)
}

// ExportAttempts streams an xlsx workbook with one row per attempt
// @Summary Export attempts as xlsx
// @Tags attempts
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path int true "Exam ID"
// @Success 200 {file} file
// @Failure 404 {object} ErrorResponse
// @Router /exams/{id}/attempts/export [get]
func (h *ExamHandler) ExportAttempts(c *gin.Context) {
	examID := h.parseIDParam(c, "id")
	if examID == 0 {
		return
	}

	h.LogRequest(c, "Exporting attempts", "exam_id", examID)

	// Buffer first so a failure can still produce a JSON error
	var buf bytes.Buffer
	if err := h.exportService.ExportAttempts(c.Request.Context(), examID, &buf); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="exam-%d-attempts.xlsx"`, examID))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
