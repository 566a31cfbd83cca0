package aggregate

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/hearth-labs/hearth/pkg/agentlog"
	"github.com/hearth-labs/hearth/pkg/classify"
	"github.com/hearth-labs/hearth/pkg/directory"
)

type stubResolver struct {
	members map[string]string
	err     error
}

func (r *stubResolver) ResolveMembers(_ context.Context, _ string) (map[string]string, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.members, nil
}

func seedUserMessage(store *agentlog.MemoryStore, agentID, text string) {
	store.Seed(agentID, []agentlog.Entry{
		{
			Role:      agentlog.RoleUser,
			Text:      `{"type":"user_message","message":"` + text + `","time":"2026-08-01 09:00"}`,
			CreatedAt: time.Now(),
		},
	}, nil)
}

func TestAggregate_OneEntryPerMember(t *testing.T) {
	store := agentlog.NewMemoryStore()
	aliceID, err := store.CreateAgent(context.Background(), agentlog.CreateAgentRequest{Name: "alice-agent"})
	require.NoError(t, err)
	seedUserMessage(store, aliceID, "Buy milk (todo)")

	resolver := &stubResolver{members: map[string]string{
		"alice": aliceID,
		"bob":   "no-such-agent",
	}}
	agg, err := New(resolver, agentlog.NewReader(store))
	require.NoError(t, err)

	results, err := agg.Aggregate(context.Background(), "Smiths", agentlog.TimeWindow{}, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Len(t, results["alice"], 1)
	require.Equal(t, "Buy milk (todo)", results["alice"][0].Text)
	// Unresolvable agent degrades to an empty contribution, key kept.
	require.NotNil(t, results["bob"])
	require.Empty(t, results["bob"])
}

func TestAggregate_UnknownGroupIsFatal(t *testing.T) {
	resolver := &stubResolver{err: errors.Wrap(directory.ErrGroupUnknown, "group \"Nobody\"")}
	agg, err := New(resolver, agentlog.NewReader(agentlog.NewMemoryStore()))
	require.NoError(t, err)

	_, err = agg.Aggregate(context.Background(), "Nobody", agentlog.TimeWindow{}, nil)
	require.Error(t, err)
	require.ErrorIs(t, err, directory.ErrGroupUnknown)
}

func TestAggregate_FilterApplied(t *testing.T) {
	store := agentlog.NewMemoryStore()
	aliceID, err := store.CreateAgent(context.Background(), agentlog.CreateAgentRequest{Name: "alice-agent"})
	require.NoError(t, err)
	seedUserMessage(store, aliceID, "Buy milk (todo)")
	seedUserMessage(store, aliceID, "nice weather today")

	resolver := &stubResolver{members: map[string]string{"alice": aliceID}}
	agg, err := New(resolver, agentlog.NewReader(store))
	require.NoError(t, err)

	results, err := agg.Aggregate(context.Background(), "Smiths", agentlog.TimeWindow{}, classify.FilterActionable)
	require.NoError(t, err)
	require.Len(t, results["alice"], 1)
	require.Equal(t, "Buy milk (todo)", results["alice"][0].Text)
}

func TestAggregate_MemberWithEmptyHandle(t *testing.T) {
	resolver := &stubResolver{members: map[string]string{"ghost": ""}}
	agg, err := New(resolver, agentlog.NewReader(agentlog.NewMemoryStore()))
	require.NoError(t, err)

	results, err := agg.Aggregate(context.Background(), "Smiths", agentlog.TimeWindow{}, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Empty(t, results["ghost"])
}
