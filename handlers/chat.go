package handlers

import (
	"errors"
	"net/http"

	"aeromed/models"
	"aeromed/services/assistant"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AssistantService is injected at startup.
var AssistantService assistant.Service

// ChatHandler processes one conversational turn against the dispatch
// assistant. The client sends the full transcript every request.
func ChatHandler(c *gin.Context) {
	logger := getLogger(c)

	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Invalid chat request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}
	if len(req.Messages) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "messages must not be empty"})
		return
	}
	if req.Messages[len(req.Messages)-1].Role != "user" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "last message must be from the user"})
		return
	}

	resp, err := AssistantService.ProcessTurn(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, assistant.ErrNoConvergence):
			logger.Error("Assistant did not converge", zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "The assistant could not complete this request. Please try rephrasing."})
		case errors.Is(err, assistant.ErrRetriesExhausted):
			logger.Error("Model rate limit exhausted", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "The assistant is temporarily overloaded. Please retry shortly."})
		default:
			logger.Error("Chat turn failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process chat turn"})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}
