// File: services/assistant/interface.go
package assistant

import (
	"context"

	"aeromed/models"

	deliveryRepo "aeromed/database/repository/delivery"

	"go.uber.org/zap"
)

// SessionFactory opens model chat sessions seeded with prior transcript.
type SessionFactory interface {
	NewSession(history []models.ChatMessage) ModelSession
}

// Service handles one conversational turn end to end.
type Service interface {
	ProcessTurn(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error)
}

// DefaultAssistantService wires the model loop, the tool executor, the
// session state store, and the delivery repository into the turn controller.
type DefaultAssistantService struct {
	Sessions     SessionFactory
	Loop         *Loop
	States       StateStore
	DeliveryRepo deliveryRepo.DeliveryRepository
	Logger       *zap.Logger
}
