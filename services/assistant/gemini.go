// File: services/assistant/gemini.go
package assistant

import (
	"context"
	"fmt"

	"aeromed/models"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const systemInstruction = `You are the dispatch assistant for a medical drone delivery service covering the Edinburgh area. You help hospital staff schedule deliveries of medical supplies, blood products, and equipment between sites.

You have tools that talk to the live drone routing system. Use them instead of guessing:
- query_available_drones: check which drones can handle a set of deliveries
- plan_delivery_path: compute the actual route, cost, and flight time
- get_drone_details: look up one drone's capabilities
- find_drones_with_cooling: list drones with or without cooling
- explain_why_unavailable: diagnose why no drone fits a delivery

Workflow: when the user asks to schedule a delivery, first call query_available_drones, then plan_delivery_path with the same deliveries. Always report the total cost from the plan (formatted like "Total cost: £12.50") and which drone numbers are used, then ask the user to confirm. Never invent costs, drone IDs, or availability. If nothing is available, use explain_why_unavailable and relay the reasons. Temperatures: blood and vaccines need cooling. Keep answers short and practical.`

// GeminiSessionFactory builds chat sessions against a configured Gemini model
// with the dispatch tool catalogue attached.
type GeminiSessionFactory struct {
	model *genai.GenerativeModel
}

func NewGeminiSessionFactory(apiKey, modelName string, maxTokens int) *GeminiSessionFactory {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		panic(fmt.Sprintf("failed to create Gemini client: %v", err))
	}

	model := client.GenerativeModel(modelName)
	model.SetMaxOutputTokens(int32(maxTokens))
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemInstruction)},
	}
	model.Tools = ToolCatalogue()
	return &GeminiSessionFactory{model: model}
}

// NewSession opens a chat session seeded with the prior transcript. The
// caller sends the newest user message through the session itself.
func (f *GeminiSessionFactory) NewSession(history []models.ChatMessage) ModelSession {
	cs := f.model.StartChat()
	for _, msg := range history {
		role := "user"
		if msg.Role == "assistant" {
			role = "model"
		}
		cs.History = append(cs.History, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(msg.Content)},
		})
	}
	return cs
}
