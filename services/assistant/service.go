// File: services/assistant/service.go
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"aeromed/models"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProcessTurn runs one conversational turn: parse the newest user message,
// short-circuit into delivery materialization when it confirms a fresh plan,
// otherwise drive the model tool loop, then persist updated session state.
func (s *DefaultAssistantService) ProcessTurn(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	if len(req.Messages) == 0 {
		return nil, fmt.Errorf("messages must not be empty")
	}
	last := req.Messages[len(req.Messages)-1]
	if last.Role != "user" {
		return nil, fmt.Errorf("last message must be from the user")
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	state, err := s.States.Get(ctx, sessionID)
	if err != nil {
		// A dead session store degrades to a stateless turn rather than
		// refusing service.
		s.Logger.Warn("Could not load conversation state", zap.String("sessionId", sessionID), zap.Error(err))
		state = &models.ConversationState{}
	}

	if parsed := ParseDeliveryRequest(last.Content); parsed != nil {
		MergePending(state, parsed)
	}

	if IsConfirmation(last.Content) && state.Pending != nil && state.JustPlanned {
		return s.confirmPending(ctx, sessionID, state, req.Messages)
	}

	session := s.Sessions.NewSession(req.Messages[:len(req.Messages)-1])
	content, records, err := s.Loop.Run(ctx, session, []genai.Part{genai.Text(last.Content)})
	if err != nil {
		return nil, err
	}

	ApplyToolTrace(state, records)
	s.saveState(ctx, sessionID, state)

	return &models.ChatResponse{
		SessionID: sessionID,
		Content:   content,
		ToolCalls: records,
	}, nil
}

// confirmPending materializes the planned deliveries the user just agreed to.
func (s *DefaultAssistantService) confirmPending(ctx context.Context, sessionID string, state *models.ConversationState, messages []models.ChatMessage) (*models.ChatResponse, error) {
	var lastAssistant string
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "assistant" {
			lastAssistant = messages[i].Content
			break
		}
	}

	deliveries, err := Materialize(state, lastAssistant, time.Now())
	if err != nil {
		if errors.Is(err, ErrNoCost) || errors.Is(err, ErrNothingPlanned) {
			// The draft survives; the user can re-plan and confirm again.
			s.saveState(ctx, sessionID, state)
			return &models.ChatResponse{
				SessionID: sessionID,
				Content:   "I couldn't find a quoted cost for this plan, so nothing was scheduled. Please ask me to plan the delivery again before confirming.",
				ToolCalls: []models.ToolCallRecord{},
			}, nil
		}
		return nil, err
	}

	for _, delivery := range deliveries {
		if _, err := s.DeliveryRepo.Create(ctx, delivery); err != nil {
			s.Logger.Error("Failed to persist delivery",
				zap.Int64("deliveryId", delivery.ID),
				zap.Error(err))
			return nil, fmt.Errorf("failed to save delivery: %w", err)
		}
	}

	ClearPlan(state)
	if err := s.States.Clear(ctx, sessionID); err != nil {
		s.Logger.Warn("Could not clear conversation state", zap.String("sessionId", sessionID), zap.Error(err))
	}

	var lines []string
	var total float64
	for _, d := range deliveries {
		lines = append(lines, fmt.Sprintf("• %s — Drone %s, £%.2f (%s %s)",
			d.Location, d.AssignedDrone, d.Cost, d.Date, d.Time))
		total += d.Cost
	}
	content := fmt.Sprintf("✅ Delivery confirmed and scheduled!\n%s\nTotal cost: £%.2f",
		strings.Join(lines, "\n"), total)

	s.Logger.Info("Deliveries scheduled",
		zap.String("sessionId", sessionID),
		zap.Int("count", len(deliveries)))

	return &models.ChatResponse{
		SessionID: sessionID,
		Content:   content,
		ToolCalls: []models.ToolCallRecord{},
	}, nil
}

func (s *DefaultAssistantService) saveState(ctx context.Context, sessionID string, state *models.ConversationState) {
	if err := s.States.Set(ctx, sessionID, state); err != nil {
		s.Logger.Warn("Could not save conversation state", zap.String("sessionId", sessionID), zap.Error(err))
	}
}
