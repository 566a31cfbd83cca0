package llm

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	openai "github.com/sashabaranov/go-openai"
)

// Generator is the opaque generative text backend: structured prompt in,
// text out. Implementations are best-effort and fallible; transient
// failures are distinguishable via IsTransient.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// transientError marks backend failures that a caller may retry.
type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// IsTransient reports whether the generation failure is a retryable
// backend condition (rate limit, upstream 5xx, timeout).
func IsTransient(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}

// OpenAIGenerator calls an OpenAI-compatible chat completion endpoint.
type OpenAIGenerator struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

var _ Generator = (*OpenAIGenerator)(nil)

type OpenAIOption func(*OpenAIGenerator)

// WithTimeout bounds the single generation round trip. The backend has no
// queueing guarantees, so an unbounded call can hang a synthesis forever.
func WithTimeout(d time.Duration) OpenAIOption {
	return func(g *OpenAIGenerator) { g.timeout = d }
}

func WithModel(model string) OpenAIOption {
	return func(g *OpenAIGenerator) { g.model = model }
}

// WithBaseURL points the client at an OpenAI-compatible gateway.
func WithBaseURL(apiKey, baseURL string) OpenAIOption {
	return func(g *OpenAIGenerator) {
		cfg := openai.DefaultConfig(apiKey)
		cfg.BaseURL = baseURL
		g.client = openai.NewClientWithConfig(cfg)
	}
}

func NewOpenAIGenerator(apiKey string, options ...OpenAIOption) (*OpenAIGenerator, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("openai api key is empty")
	}
	g := &OpenAIGenerator{
		client:  openai.NewClient(apiKey),
		model:   openai.GPT4oMini,
		timeout: 60 * time.Second,
	}
	for _, opt := range options {
		opt(g)
	}
	return g, nil
}

func (g *OpenAIGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return "", classifyError(err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("backend returned no choices")
	}
	text := resp.Choices[0].Message.Content
	if strings.TrimSpace(text) == "" {
		return "", errors.New("backend returned empty completion")
	}
	return text, nil
}

func classifyError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests,
			apiErr.HTTPStatusCode >= http.StatusInternalServerError:
			return &transientError{err: errors.Wrap(err, "generation backend")}
		}
		return errors.Wrap(err, "generation backend")
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &transientError{err: errors.Wrap(err, "generation timed out")}
	}
	return errors.Wrap(err, "generation backend")
}
