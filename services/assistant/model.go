// File: services/assistant/model.go
package assistant

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
)

// ErrRetriesExhausted is returned when the model keeps rate-limiting past the
// configured retry budget.
var ErrRetriesExhausted = errors.New("model retries exhausted")

// ModelSession is one stateful chat session with the model. *genai.ChatSession
// satisfies it; tests substitute scripted fakes.
type ModelSession interface {
	SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// RetryingModelClient wraps session sends with exponential backoff on rate
// limits. Other errors pass through untouched.
type RetryingModelClient struct {
	maxRetries int
	baseDelay  time.Duration
	logger     *zap.Logger
	sleep      func(time.Duration)
}

func NewRetryingModelClient(maxRetries int, baseDelay time.Duration, logger *zap.Logger) *RetryingModelClient {
	return &RetryingModelClient{
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		logger:     logger,
		sleep:      time.Sleep,
	}
}

// Send delivers parts to the session, retrying up to maxRetries extra times
// when the model answers 429. The delay doubles each attempt.
func (c *RetryingModelClient) Send(ctx context.Context, session ModelSession, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	var lastErr error
	for attempt := 0; ; attempt++ {
		resp, err := session.SendMessage(ctx, parts...)
		if err == nil {
			return resp, nil
		}
		if !isRateLimited(err) {
			return nil, err
		}
		lastErr = err
		if attempt >= c.maxRetries {
			break
		}
		delay := c.baseDelay * time.Duration(1<<attempt)
		c.logger.Warn("Model rate limited, backing off",
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay))
		c.sleep(delay)
	}
	return nil, fmt.Errorf("%w: %v", ErrRetriesExhausted, lastErr)
}

func isRateLimited(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests
}
