// File: services/assistant/loop.go
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"aeromed/models"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
)

// maxToolRounds bounds the model round trips per turn so a looping model
// cannot hold a request open indefinitely.
const maxToolRounds = 5

// ErrNoConvergence is returned when the model is still requesting tools after
// the final round. This fails the whole turn.
var ErrNoConvergence = errors.New("model did not produce a final answer within the tool round limit")

// ToolRunner executes one named tool call.
type ToolRunner interface {
	Execute(ctx context.Context, name string, args map[string]any) (map[string]any, error)
}

// Loop drives the model/tool round trips for a single turn.
type Loop struct {
	model  *RetryingModelClient
	tools  ToolRunner
	logger *zap.Logger
}

func NewLoop(model *RetryingModelClient, tools ToolRunner, logger *zap.Logger) *Loop {
	return &Loop{model: model, tools: tools, logger: logger}
}

// Run sends the user parts and keeps feeding tool results back to the model
// until it answers in plain text, or the round budget runs out. The returned
// records list every tool call in execution order, failed ones included.
func (l *Loop) Run(ctx context.Context, session ModelSession, parts []genai.Part) (string, []models.ToolCallRecord, error) {
	var records []models.ToolCallRecord
	current := parts

	for round := 0; round < maxToolRounds; round++ {
		resp, err := l.model.Send(ctx, session, current...)
		if err != nil {
			return "", records, err
		}

		text, calls := splitResponse(resp)
		if len(calls) == 0 {
			return text, records, nil
		}

		l.logger.Info("Model requested tools",
			zap.Int("round", round+1),
			zap.Int("calls", len(calls)))

		outcomes := l.runToolCalls(ctx, calls)
		responses := make([]genai.Part, len(calls))
		for i, call := range calls {
			record := models.ToolCallRecord{
				Name:  call.Name,
				Input: call.Args,
			}
			if outcomes[i].err != nil {
				l.logger.Warn("Tool call failed",
					zap.String("tool", call.Name),
					zap.Error(outcomes[i].err))
				record.Status = models.ToolStatusError
				record.Result = map[string]any{"error": outcomes[i].err.Error()}
			} else {
				record.Status = models.ToolStatusCompleted
				record.Result = outcomes[i].value
			}
			records = append(records, record)
			responses[i] = genai.FunctionResponse{
				Name:     call.Name,
				Response: record.Result,
			}
		}
		current = responses
	}

	return "", records, ErrNoConvergence
}

type toolOutcome struct {
	value map[string]any
	err   error
}

// runToolCalls fans sibling calls out concurrently. One call failing or
// panicking never disturbs the others; each slot records its own outcome.
func (l *Loop) runToolCalls(ctx context.Context, calls []genai.FunctionCall) []toolOutcome {
	outcomes := make([]toolOutcome, len(calls))
	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(i int, call genai.FunctionCall) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					outcomes[i] = toolOutcome{err: fmt.Errorf("tool %s panicked: %v", call.Name, r)}
				}
			}()
			value, err := l.tools.Execute(ctx, call.Name, call.Args)
			outcomes[i] = toolOutcome{value: value, err: err}
		}(i, call)
	}
	wg.Wait()
	return outcomes
}

func splitResponse(resp *genai.GenerateContentResponse) (string, []genai.FunctionCall) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", nil
	}
	var text strings.Builder
	var calls []genai.FunctionCall
	for _, part := range resp.Candidates[0].Content.Parts {
		switch p := part.(type) {
		case genai.Text:
			text.WriteString(string(p))
		case genai.FunctionCall:
			calls = append(calls, p)
		}
	}
	return text.String(), calls
}
