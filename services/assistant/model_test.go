package assistant

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
)

type scriptedSession struct {
	responses []*genai.GenerateContentResponse
	errs      []error
	calls     int
	sent      [][]genai.Part
}

func (s *scriptedSession) SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	i := s.calls
	s.calls++
	s.sent = append(s.sent, parts)
	var resp *genai.GenerateContentResponse
	var err error
	if i < len(s.responses) {
		resp = s.responses[i]
	}
	if i < len(s.errs) {
		err = s.errs[i]
	}
	return resp, err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Role:  "model",
				Parts: []genai.Part{genai.Text(text)},
			},
		}},
	}
}

func rateLimitErr() error {
	return &googleapi.Error{Code: http.StatusTooManyRequests, Message: "quota exceeded"}
}

func newTestModelClient(maxRetries int, sleeps *[]time.Duration) *RetryingModelClient {
	c := NewRetryingModelClient(maxRetries, 100*time.Millisecond, zap.NewNop())
	c.sleep = func(d time.Duration) {
		*sleeps = append(*sleeps, d)
	}
	return c
}

func TestSendRetriesRateLimitsWithBackoff(t *testing.T) {
	var sleeps []time.Duration
	client := newTestModelClient(2, &sleeps)

	session := &scriptedSession{
		responses: []*genai.GenerateContentResponse{nil, nil, textResponse("done")},
		errs:      []error{rateLimitErr(), rateLimitErr(), nil},
	}

	resp, err := client.Send(context.Background(), session, genai.Text("hi"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text, _ := splitResponse(resp); text != "done" {
		t.Errorf("text = %q", text)
	}
	if session.calls != 3 {
		t.Errorf("calls = %d, want 3", session.calls)
	}
	if len(sleeps) != 2 || sleeps[0] != 100*time.Millisecond || sleeps[1] != 200*time.Millisecond {
		t.Errorf("sleeps = %v, want doubling backoff", sleeps)
	}
}

func TestSendGivesUpAfterRetryBudget(t *testing.T) {
	var sleeps []time.Duration
	client := newTestModelClient(2, &sleeps)

	session := &scriptedSession{
		errs: []error{rateLimitErr(), rateLimitErr(), rateLimitErr()},
	}

	_, err := client.Send(context.Background(), session, genai.Text("hi"))
	if !errors.Is(err, ErrRetriesExhausted) {
		t.Fatalf("err = %v, want ErrRetriesExhausted", err)
	}
	if session.calls != 3 {
		t.Errorf("calls = %d, want initial + 2 retries", session.calls)
	}
}

func TestSendDoesNotRetryOtherErrors(t *testing.T) {
	var sleeps []time.Duration
	client := newTestModelClient(2, &sleeps)

	fatal := &googleapi.Error{Code: http.StatusBadRequest, Message: "bad request"}
	session := &scriptedSession{errs: []error{fatal}}

	_, err := client.Send(context.Background(), session, genai.Text("hi"))
	if !errors.Is(err, fatal) {
		t.Fatalf("err = %v, want original error", err)
	}
	if session.calls != 1 {
		t.Errorf("calls = %d, want no retries", session.calls)
	}
	if len(sleeps) != 0 {
		t.Errorf("sleeps = %v, want none", sleeps)
	}
}
