package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/examhub/exam-service/internal/services"
	"github.com/examhub/exam-service/internal/utils"
)

type ChatbotHandler struct {
	BaseHandler
	service services.ChatbotService
}

func NewChatbotHandler(service services.ChatbotService, logger utils.Logger) *ChatbotHandler {
	return &ChatbotHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// Query answers a usage question
// @Summary Ask the assistant
// @Description Answers with the chat model when configured, otherwise from the built-in answer book
// @Tags chatbot
// @Accept json
// @Produce json
// @Param query body services.ChatbotQueryRequest true "Message and recent conversation"
// @Success 200 {object} services.ChatbotQueryResponse
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /chatbot/query [post]
func (h *ChatbotHandler) Query(c *gin.Context) {
	var req services.ChatbotQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	h.LogRequest(c, "Chatbot query", "history", len(req.ConversationHistory))

	resp, err := h.service.Query(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetContext
// @Summary Assistant instruction context
// @Tags chatbot
// @Produce json
// @Success 200 {object} services.ChatbotContextResponse
// @Router /chatbot/context [get]
func (h *ChatbotHandler) GetContext(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Context(c.Request.Context()))
}
