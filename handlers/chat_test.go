package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"aeromed/models"
	"aeromed/services/assistant"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubAssistant struct {
	resp *models.ChatResponse
	err  error
	got  models.ChatRequest
}

func (s *stubAssistant) ProcessTurn(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	s.got = req
	return s.resp, s.err
}

func newChatRouter(stub *stubAssistant) *gin.Engine {
	gin.SetMode(gin.TestMode)
	AssistantService = stub
	router := gin.New()
	router.POST("/api/chat", ChatHandler)
	return router
}

func postChat(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("POST", "/api/chat", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestChatHandlerSuccess(t *testing.T) {
	stub := &stubAssistant{resp: &models.ChatResponse{
		SessionID: "sess-1",
		Content:   "Drone 5 can do it for £12.50.",
		ToolCalls: []models.ToolCallRecord{{Name: "plan_delivery_path", Status: models.ToolStatusCompleted}},
	}}
	router := newChatRouter(stub)

	w := postChat(router, `{"sessionId":"sess-1","messages":[{"role":"user","content":"schedule 2kg of blood"}]}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "sess-1")
	assert.Contains(t, w.Body.String(), "plan_delivery_path")
	assert.Equal(t, "schedule 2kg of blood", stub.got.Messages[0].Content)
}

func TestChatHandlerRejectsMalformedBody(t *testing.T) {
	router := newChatRouter(&stubAssistant{})

	w := postChat(router, `not json`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChatHandlerRejectsEmptyTranscript(t *testing.T) {
	router := newChatRouter(&stubAssistant{})

	w := postChat(router, `{"messages":[]}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "error")
}

func TestChatHandlerRejectsAssistantFinalMessage(t *testing.T) {
	router := newChatRouter(&stubAssistant{})

	w := postChat(router, `{"messages":[{"role":"assistant","content":"hi"}]}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChatHandlerNoConvergenceIsBadGateway(t *testing.T) {
	router := newChatRouter(&stubAssistant{err: assistant.ErrNoConvergence})

	w := postChat(router, `{"messages":[{"role":"user","content":"hi"}]}`)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "error")
}

func TestChatHandlerRateLimitExhaustionIsUnavailable(t *testing.T) {
	router := newChatRouter(&stubAssistant{err: assistant.ErrRetriesExhausted})

	w := postChat(router, `{"messages":[{"role":"user","content":"hi"}]}`)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
