package agentlog

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore is an in-process agent runtime holding logs in memory. It
// backs tests and offline operation; entries are kept newest-first so the
// read path matches the HTTP store's ordering contract.
type MemoryStore struct {
	mu       sync.RWMutex
	nextID   int
	entries  map[string][]Entry
	archival map[string][]Passage
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries:  map[string][]Entry{},
		archival: map[string][]Passage{},
	}
}

func (s *MemoryStore) CreateAgent(_ context.Context, _ CreateAgentRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := fmt.Sprintf("agent-%d", s.nextID)
	s.entries[id] = []Entry{}
	s.archival[id] = []Passage{}
	return id, nil
}

func (s *MemoryStore) Messages(_ context.Context, agentID string, window TimeWindow) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries, ok := s.entries[agentID]
	if !ok {
		return nil, ErrAgentNotFound
	}
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if inWindow(e.CreatedAt, window) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *MemoryStore) Archival(_ context.Context, agentID string, _ TimeWindow) ([]Passage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	passages, ok := s.archival[agentID]
	if !ok {
		return nil, ErrAgentNotFound
	}
	return append([]Passage(nil), passages...), nil
}

func (s *MemoryStore) SendMessage(_ context.Context, agentID string, text string) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, ok := s.entries[agentID]
	if !ok {
		return nil, ErrAgentNotFound
	}
	now := time.Now().UTC()
	userEntry := Entry{
		Role:      RoleUser,
		Text:      fmt.Sprintf(`{"type":"user_message","message":%q,"time":%q}`, text, now.Format("2006-01-02 15:04:05")),
		CreatedAt: now,
	}
	reply := Entry{
		Role: RoleAssistant,
		ToolCalls: []ToolCall{
			{Name: SendMessageTool, Arguments: fmt.Sprintf(`{"message":"Noted: %s"}`, text)},
		},
		CreatedAt: now,
	}
	// Newest-first.
	s.entries[agentID] = append([]Entry{reply, userEntry}, entries...)
	return []Entry{reply, userEntry}, nil
}

// Seed prepends entries (given newest-first) to an agent's log, creating
// the agent if needed.
func (s *MemoryStore) Seed(agentID string, entries []Entry, passages []Passage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[agentID] = append(append([]Entry(nil), entries...), s.entries[agentID]...)
	s.archival[agentID] = append(s.archival[agentID], passages...)
}

func inWindow(ts time.Time, w TimeWindow) bool {
	if w.Start != nil && ts.Before(*w.Start) {
		return false
	}
	if w.End != nil && !ts.Before(*w.End) {
		return false
	}
	return true
}
