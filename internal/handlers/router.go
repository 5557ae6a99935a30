package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/examhub/exam-service/internal/services"
	"github.com/examhub/exam-service/internal/utils"
)

const serviceName = "exam-service"

type HandlerManager struct {
	serviceManager   services.ServiceManager
	logger           utils.Logger
	examHandler      *ExamHandler
	attemptHandler   *AttemptHandler
	folderHandler    *FolderHandler
	uploadHandler    *UploadHandler
	dashboardHandler *DashboardHandler
	chatbotHandler   *ChatbotHandler
}

func NewHandlerManager(serviceManager services.ServiceManager, logger utils.Logger) *HandlerManager {
	return &HandlerManager{
		serviceManager:   serviceManager,
		logger:           logger,
		examHandler:      NewExamHandler(serviceManager.Exam(), serviceManager.Export(), logger),
		attemptHandler:   NewAttemptHandler(serviceManager.Attempt(), logger),
		folderHandler:    NewFolderHandler(serviceManager.Folder(), logger),
		uploadHandler:    NewUploadHandler(serviceManager.Upload(), logger),
		dashboardHandler: NewDashboardHandler(serviceManager.Dashboard(), logger),
		chatbotHandler:   NewChatbotHandler(serviceManager.Chatbot(), logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.HealthCheck)

	v1 := router.Group("/api/v1")
	{
		exams := v1.Group("/exams")
		{
			exams.POST("", hm.examHandler.CreateExam)
			exams.GET("", hm.examHandler.ListExams)
			exams.GET("/:id", hm.examHandler.GetExam)
			exams.GET("/:id/public", hm.examHandler.GetPublicExam)
			exams.PUT("/:id", hm.examHandler.UpdateExam)
			exams.DELETE("/:id", hm.examHandler.DeleteExam)

			// Questions
			exams.POST("/:id/questions", hm.examHandler.AddQuestion)
			exams.POST("/:id/questions/batch", hm.examHandler.AddQuestionsBatch)
			exams.POST("/:id/questions/import", hm.examHandler.ImportQuestions)
			exams.GET("/:id/questions", hm.examHandler.ListQuestions)
			exams.PUT("/:id/questions/:question_id", hm.examHandler.UpdateQuestion)
			exams.DELETE("/:id/questions/:question_id", hm.examHandler.DeleteQuestion)

			// Attempts
			exams.POST("/:id/attempts", hm.attemptHandler.StartAttempt)
			exams.GET("/:id/attempts", hm.attemptHandler.ListAttempts)
			exams.GET("/:id/attempts/export", hm.examHandler.ExportAttempts)
		}

		attempts := v1.Group("/attempts")
		{
			attempts.GET("/:id", hm.attemptHandler.GetAttempt)
			attempts.POST("/:id/submit", hm.attemptHandler.SubmitAttempt)
			attempts.DELETE("/:id", hm.attemptHandler.DeleteAttempt)
		}

		folders := v1.Group("/folders")
		{
			folders.POST("", hm.folderHandler.CreateFolder)
			folders.GET("", hm.folderHandler.ListFolders)
			folders.GET("/:id", hm.folderHandler.GetFolder)
			folders.PUT("/:id", hm.folderHandler.UpdateFolder)
			folders.DELETE("/:id", hm.folderHandler.DeleteFolder)
		}

		upload := v1.Group("/upload")
		{
			upload.POST("", hm.uploadHandler.UploadFile)
			upload.GET("", hm.uploadHandler.ListFiles)
			upload.GET("/:id", hm.uploadHandler.GetFile)
			upload.DELETE("/:id", hm.uploadHandler.DeleteFile)
			upload.POST("/:id/extract-questions", hm.uploadHandler.ExtractQuestions)
		}

		dashboard := v1.Group("/dashboard")
		{
			dashboard.GET("/stats", hm.dashboardHandler.GetDashboardStats)
		}

		chat := v1.Group("/chatbot")
		{
			chat.POST("/query", hm.chatbotHandler.Query)
			chat.GET("/context", hm.chatbotHandler.GetContext)
		}
	}
}

// HealthCheck reports whether the services and the database are reachable
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health [get]
func (hm *HandlerManager) HealthCheck(c *gin.Context) {
	if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
		utils.GetLogger(c, hm.logger).Warn("Health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unhealthy",
			"service": serviceName,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
	})
}
