package agentlog

import (
	"context"

	"github.com/pkg/errors"
)

// ErrAgentNotFound is returned when an agent handle does not resolve in the
// runtime. Callers treat the agent as contributing an empty history rather
// than failing the whole operation.
var ErrAgentNotFound = errors.New("agent not found")

// Store is the boundary to the external agent runtime's durable message
// logs. Messages are returned newest-first, as delivered by the runtime;
// archival passages come back in the runtime's default (recency-biased)
// order.
type Store interface {
	Messages(ctx context.Context, agentID string, window TimeWindow) ([]Entry, error)
	Archival(ctx context.Context, agentID string, window TimeWindow) ([]Passage, error)
	CreateAgent(ctx context.Context, req CreateAgentRequest) (string, error)
	SendMessage(ctx context.Context, agentID string, text string) ([]Entry, error)
}

// Reader pulls the combined message + archival view of a single agent.
type Reader struct {
	store Store
}

func NewReader(store Store) *Reader {
	return &Reader{store: store}
}

// Fetch returns the agent's recent entries and archival passages within the
// window. An unresolvable agent surfaces as ErrAgentNotFound; the group
// aggregator degrades that member to an empty contribution.
func (r *Reader) Fetch(ctx context.Context, agentID string, window TimeWindow) (AgentData, error) {
	entries, err := r.store.Messages(ctx, agentID, window)
	if err != nil {
		return AgentData{}, errors.Wrapf(err, "read messages for agent %s", agentID)
	}
	passages, err := r.store.Archival(ctx, agentID, window)
	if err != nil {
		return AgentData{}, errors.Wrapf(err, "read archival for agent %s", agentID)
	}
	return AgentData{Entries: entries, Passages: passages}, nil
}
