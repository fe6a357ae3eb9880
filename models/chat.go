package models

// ChatMessage is one turn of the client-visible transcript.
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ChatRequest is the payload coming from the dashboard into /api/chat.
// The full transcript is sent every turn; SessionID keys the server-side
// conversation state and is minted when absent.
type ChatRequest struct {
	SessionID string        `json:"sessionId,omitempty"`
	Messages  []ChatMessage `json:"messages"`
}

// Tool call record statuses.
const (
	ToolStatusCompleted = "completed"
	ToolStatusError     = "error"
)

// ToolCallRecord is one tool invocation made during a turn, exposed to the
// dashboard and to the pending-delivery controller. Input is the structured
// arguments the model supplied; for a failed call Result carries {"error": msg}.
type ToolCallRecord struct {
	Name   string         `json:"name"`
	Input  map[string]any `json:"input"`
	Status string         `json:"status"`
	Result map[string]any `json:"result"`
}

// ChatResponse is what /api/chat returns for a successful turn.
type ChatResponse struct {
	SessionID string           `json:"sessionId"`
	Content   string           `json:"content"`
	ToolCalls []ToolCallRecord `json:"toolCalls"`
}
