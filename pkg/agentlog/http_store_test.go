package agentlog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHTTPStore_Messages(t *testing.T) {
	var gotPath, gotStart string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotStart = r.URL.Query().Get("start")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"messages": []map[string]any{
				{
					"role":       "assistant",
					"created_at": "2026-08-02T10:00:00Z",
					"tool_calls": []map[string]any{
						{"function": map[string]any{"name": "send_message", "arguments": `{"message":"hi"}`}},
					},
				},
				{
					"role":       "user",
					"text":       `{"type":"user_message","message":"hello","time":"t"}`,
					"created_at": "2026-08-02T09:59:00Z",
				},
			},
		})
	}))
	defer server.Close()

	store, err := NewHTTPStore(server.URL)
	require.NoError(t, err)

	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	entries, err := store.Messages(context.Background(), "agent-1", TimeWindow{Start: &start})
	require.NoError(t, err)
	require.Equal(t, "/v1/agents/agent-1/messages", gotPath)
	require.Equal(t, "2026-08-01T00:00:00Z", gotStart)

	require.Len(t, entries, 2)
	require.Equal(t, RoleAssistant, entries[0].Role)
	require.Len(t, entries[0].ToolCalls, 1)
	require.Equal(t, SendMessageTool, entries[0].ToolCalls[0].Name)
	require.Equal(t, RoleUser, entries[1].Role)
	require.Equal(t, time.Date(2026, 8, 2, 9, 59, 0, 0, time.UTC), entries[1].CreatedAt)
}

func TestHTTPStore_NotFoundIsAgentNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	store, err := NewHTTPStore(server.URL)
	require.NoError(t, err)

	_, err = store.Messages(context.Background(), "missing", TimeWindow{})
	require.ErrorIs(t, err, ErrAgentNotFound)
	_, err = store.Archival(context.Background(), "missing", TimeWindow{})
	require.ErrorIs(t, err, ErrAgentNotFound)
}

func TestHTTPStore_CreateAgent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "helper", body["name"])
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "agent-42"})
	}))
	defer server.Close()

	store, err := NewHTTPStore(server.URL, WithToken("secret"))
	require.NoError(t, err)

	id, err := store.CreateAgent(context.Background(), CreateAgentRequest{Name: "helper", Persona: "p", Human: "h"})
	require.NoError(t, err)
	require.Equal(t, "agent-42", id)
}

func TestHTTPStore_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	store, err := NewHTTPStore(server.URL)
	require.NoError(t, err)

	_, err = store.Messages(context.Background(), "agent-1", TimeWindow{})
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrAgentNotFound)
}

func TestMemoryStore_WindowFiltering(t *testing.T) {
	store := NewMemoryStore()
	id, err := store.CreateAgent(context.Background(), CreateAgentRequest{Name: "a"})
	require.NoError(t, err)

	old := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	store.Seed(id, []Entry{
		{Role: RoleUser, Text: "recent", CreatedAt: recent},
		{Role: RoleUser, Text: "old", CreatedAt: old},
	}, nil)

	cutoff := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	entries, err := store.Messages(context.Background(), id, TimeWindow{Start: &cutoff})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "recent", entries[0].Text)
}
