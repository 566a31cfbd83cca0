package llm

import (
	"context"
	"net/http"
	"testing"

	"github.com/pkg/errors"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/require"
)

func TestNewOpenAIGenerator_RequiresKey(t *testing.T) {
	_, err := NewOpenAIGenerator("")
	require.Error(t, err)

	g, err := NewOpenAIGenerator("test-key", WithModel("gpt-4o"))
	require.NoError(t, err)
	require.NotNil(t, g)
}

func TestIsTransient(t *testing.T) {
	rateLimited := classifyError(&openai.APIError{HTTPStatusCode: http.StatusTooManyRequests})
	require.True(t, IsTransient(rateLimited))

	upstream := classifyError(&openai.APIError{HTTPStatusCode: http.StatusBadGateway})
	require.True(t, IsTransient(upstream))

	badRequest := classifyError(&openai.APIError{HTTPStatusCode: http.StatusBadRequest})
	require.False(t, IsTransient(badRequest))

	timedOut := classifyError(context.DeadlineExceeded)
	require.True(t, IsTransient(timedOut))

	require.False(t, IsTransient(errors.New("plain failure")))
}
