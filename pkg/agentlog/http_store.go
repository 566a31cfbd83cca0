package agentlog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// HTTPStore talks to a Letta-style agent runtime over its REST API.
type HTTPStore struct {
	baseURL string
	client  *http.Client
	token   string
	logger  zerolog.Logger
}

var _ Store = (*HTTPStore)(nil)

type HTTPStoreOption func(*HTTPStore)

func WithHTTPClient(c *http.Client) HTTPStoreOption {
	return func(s *HTTPStore) { s.client = c }
}

func WithToken(token string) HTTPStoreOption {
	return func(s *HTTPStore) { s.token = token }
}

func NewHTTPStore(baseURL string, options ...HTTPStoreOption) (*HTTPStore, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("agent runtime base URL is empty")
	}
	s := &HTTPStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  log.With().Str("component", "agentlog").Logger(),
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// wireMessage mirrors the runtime's message schema. Tool calls nest the
// function name and raw argument JSON the same way the OpenAI API does.
type wireMessage struct {
	Role      string `json:"role"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
	ToolCalls []struct {
		Function struct {
			Name      string `json:"name"`
			Arguments string `json:"arguments"`
		} `json:"function"`
	} `json:"tool_calls"`
}

func (m wireMessage) toEntry() Entry {
	e := Entry{Role: Role(m.Role), Text: m.Text}
	if ts, err := time.Parse(time.RFC3339, m.CreatedAt); err == nil {
		e.CreatedAt = ts
	}
	for _, tc := range m.ToolCalls {
		e.ToolCalls = append(e.ToolCalls, ToolCall{
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return e
}

func (s *HTTPStore) Messages(ctx context.Context, agentID string, window TimeWindow) ([]Entry, error) {
	if agentID == "" {
		return nil, ErrAgentNotFound
	}
	endpoint := fmt.Sprintf("%s/v1/agents/%s/messages", s.baseURL, url.PathEscape(agentID))
	var resp struct {
		Messages []wireMessage `json:"messages"`
	}
	if err := s.get(ctx, endpoint, window, &resp); err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		entries = append(entries, m.toEntry())
	}
	return entries, nil
}

func (s *HTTPStore) Archival(ctx context.Context, agentID string, window TimeWindow) ([]Passage, error) {
	if agentID == "" {
		return nil, ErrAgentNotFound
	}
	endpoint := fmt.Sprintf("%s/v1/agents/%s/archival-memory", s.baseURL, url.PathEscape(agentID))
	var resp struct {
		Passages []Passage `json:"passages"`
	}
	if err := s.get(ctx, endpoint, window, &resp); err != nil {
		return nil, err
	}
	return resp.Passages, nil
}

func (s *HTTPStore) CreateAgent(ctx context.Context, req CreateAgentRequest) (string, error) {
	endpoint := s.baseURL + "/v1/agents"
	body := map[string]any{
		"name": req.Name,
		"memory": map[string]string{
			"persona": req.Persona,
			"human":   req.Human,
		},
	}
	var resp struct {
		ID string `json:"id"`
	}
	if err := s.post(ctx, endpoint, body, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", errors.New("runtime returned empty agent id")
	}
	s.logger.Debug().Str("agent_name", req.Name).Str("agent_id", resp.ID).Msg("created agent")
	return resp.ID, nil
}

func (s *HTTPStore) SendMessage(ctx context.Context, agentID string, text string) ([]Entry, error) {
	if agentID == "" {
		return nil, ErrAgentNotFound
	}
	endpoint := fmt.Sprintf("%s/v1/agents/%s/messages", s.baseURL, url.PathEscape(agentID))
	body := map[string]any{
		"role":    string(RoleUser),
		"message": text,
	}
	var resp struct {
		Messages []wireMessage `json:"messages"`
	}
	if err := s.post(ctx, endpoint, body, &resp); err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		entries = append(entries, m.toEntry())
	}
	return entries, nil
}

func (s *HTTPStore) get(ctx context.Context, endpoint string, window TimeWindow, out any) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return errors.Wrap(err, "parse endpoint")
	}
	q := u.Query()
	if window.Start != nil {
		q.Set("start", window.Start.UTC().Format(time.RFC3339))
	}
	if window.End != nil {
		q.Set("end", window.End.UTC().Format(time.RFC3339))
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	return s.do(req, out)
}

func (s *HTTPStore) post(ctx context.Context, endpoint string, body any, out any) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, "encode request body")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(buf))
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	return s.do(req, out)
}

func (s *HTTPStore) do(req *http.Request, out any) error {
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "agent runtime request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return ErrAgentNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errors.Errorf("agent runtime returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode runtime response")
	}
	return nil
}
