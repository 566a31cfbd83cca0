package artifact

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/hearth-labs/hearth/pkg/agentlog"
	"github.com/hearth-labs/hearth/pkg/aggregate"
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

// echoGenerator records the prompts it was handed and returns a canned
// reply, so tests can inspect the digest without a real backend.
type echoGenerator struct {
	lastSystem string
	lastUser   string
	reply      string
	err        error
	calls      int
}

func (g *echoGenerator) Generate(_ context.Context, systemPrompt, userPrompt string) (string, error) {
	g.calls++
	g.lastSystem = systemPrompt
	g.lastUser = userPrompt
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

type recordingNotifier struct {
	updates []string
}

func (n *recordingNotifier) ArtifactUpdated(group string, kind Kind) {
	n.updates = append(n.updates, group+"/"+string(kind))
}

func newSmithsFixture(t *testing.T) (*aggregate.Aggregator, *agentlog.MemoryStore, map[string]string) {
	t.Helper()
	store := agentlog.NewMemoryStore()
	ctx := context.Background()

	aliceID, err := store.CreateAgent(ctx, agentlog.CreateAgentRequest{Name: "alice-agent"})
	require.NoError(t, err)
	store.Seed(aliceID, []agentlog.Entry{
		{
			Role:      agentlog.RoleUser,
			Text:      `{"type":"user_message","message":"Buy milk (todo)","time":"2026-08-01 09:00"}`,
			CreatedAt: time.Now(),
		},
	}, nil)

	bobID, err := store.CreateAgent(ctx, agentlog.CreateAgentRequest{Name: "bob-agent"})
	require.NoError(t, err)

	members := map[string]string{"alice": aliceID, "bob": bobID}
	resolver := &stubResolver{members: members}
	agg, err := aggregate.New(resolver, agentlog.NewReader(store))
	require.NoError(t, err)
	return agg, store, members
}

func TestSynthesize_TodoSmithsScenario(t *testing.T) {
	agg, _, _ := newSmithsFixture(t)
	store := newTestStore(t)
	gen := &echoGenerator{reply: "- [ ] Buy milk\n- [ ] Walk the dog"}

	syn, err := NewSynthesizer(agg, store, gen)
	require.NoError(t, err)

	text, err := syn.Synthesize(context.Background(), "Smiths", KindTodo, "Walk the dog")
	require.NoError(t, err)

	// Digest fed to generation carries alice's line and the labeled new item.
	require.Contains(t, gen.lastUser, "Buy milk (todo)")
	require.Contains(t, gen.lastUser, "New item to be added: Walk the dog")
	require.Contains(t, gen.lastUser, "no more than 10 items")
	require.Contains(t, gen.lastSystem, "to-do list")

	// Header normalization prepends the canonical header to the stub reply.
	require.Equal(t, "## To-Do List for Smiths\n\n- [ ] Buy milk\n- [ ] Walk the dog", text)

	persisted, found, err := store.Load(context.Background(), "Smiths", KindTodo)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, text, persisted)
}

func TestSynthesize_TodoKeepsBackendHeader(t *testing.T) {
	agg, _, _ := newSmithsFixture(t)
	store := newTestStore(t)
	gen := &echoGenerator{reply: "## Chores\n- [ ] Buy milk"}

	syn, err := NewSynthesizer(agg, store, gen)
	require.NoError(t, err)

	text, err := syn.Synthesize(context.Background(), "Smiths", KindTodo, "")
	require.NoError(t, err)
	require.Equal(t, "## Chores\n- [ ] Buy milk", text)
}

func TestSynthesize_BulletinIncludesAllRecords(t *testing.T) {
	store := agentlog.NewMemoryStore()
	ctx := context.Background()
	aliceID, err := store.CreateAgent(ctx, agentlog.CreateAgentRequest{Name: "alice-agent"})
	require.NoError(t, err)
	store.Seed(aliceID, []agentlog.Entry{
		{
			Role:      agentlog.RoleUser,
			Text:      `{"type":"user_message","message":"nothing actionable here","time":"t"}`,
			CreatedAt: time.Now(),
		},
	}, nil)
	agg, err := aggregate.New(&stubResolver{members: map[string]string{"alice": aliceID}}, agentlog.NewReader(store))
	require.NoError(t, err)

	gen := &echoGenerator{reply: "board"}
	syn, err := NewSynthesizer(agg, newTestStore(t), gen)
	require.NoError(t, err)

	_, err = syn.Synthesize(ctx, "Smiths", KindBulletin, "")
	require.NoError(t, err)
	// No keyword filter on the bulletin pipeline.
	require.Contains(t, gen.lastUser, "nothing actionable here")
	require.Contains(t, gen.lastUser, "at most 2 items per user")
}

func TestSynthesize_PriorTextFeedsNextRun(t *testing.T) {
	agg, _, _ := newSmithsFixture(t)
	store := newTestStore(t)
	gen := &echoGenerator{reply: "- [ ] Buy milk"}
	syn, err := NewSynthesizer(agg, store, gen)
	require.NoError(t, err)

	ctx := context.Background()
	first, err := syn.Synthesize(ctx, "Smiths", KindTodo, "")
	require.NoError(t, err)
	require.NotContains(t, gen.lastUser, "Existing content:")

	_, err = syn.Synthesize(ctx, "Smiths", KindTodo, "")
	require.NoError(t, err)
	require.Contains(t, gen.lastUser, "Existing content:\n"+first)
	require.Contains(t, gen.lastUser, "update a concise")
}

func TestSynthesize_GenerationFailureNotPersisted(t *testing.T) {
	agg, _, _ := newSmithsFixture(t)
	store := newTestStore(t)
	gen := &echoGenerator{err: errors.New("backend down")}
	syn, err := NewSynthesizer(agg, store, gen)
	require.NoError(t, err)

	_, err = syn.Synthesize(context.Background(), "Smiths", KindTodo, "")
	require.Error(t, err)
	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)

	_, found, err := store.Load(context.Background(), "Smiths", KindTodo)
	require.NoError(t, err)
	require.False(t, found)
}

func TestSynthesize_UnknownGroupNothingPersisted(t *testing.T) {
	resolver := &stubResolver{err: errors.Wrap(directory.ErrGroupUnknown, "group \"Nobody\"")}
	agg, err := aggregate.New(resolver, agentlog.NewReader(agentlog.NewMemoryStore()))
	require.NoError(t, err)
	store := newTestStore(t)
	gen := &echoGenerator{reply: "should not run"}
	syn, err := NewSynthesizer(agg, store, gen)
	require.NoError(t, err)

	_, err = syn.Synthesize(context.Background(), "Nobody", KindBulletin, "")
	require.ErrorIs(t, err, directory.ErrGroupUnknown)
	require.Zero(t, gen.calls)

	_, found, err := store.Load(context.Background(), "Nobody", KindBulletin)
	require.NoError(t, err)
	require.False(t, found)
}

func TestSynthesize_MemberlessGroupProducesArtifact(t *testing.T) {
	agg, err := aggregate.New(&stubResolver{members: map[string]string{}}, agentlog.NewReader(agentlog.NewMemoryStore()))
	require.NoError(t, err)
	gen := &echoGenerator{reply: "empty board"}
	syn, err := NewSynthesizer(agg, newTestStore(t), gen)
	require.NoError(t, err)

	text, err := syn.Synthesize(context.Background(), "Empty", KindBulletin, "")
	require.NoError(t, err)
	require.Equal(t, "empty board", text)
}

func TestSynthesize_CancelledBeforeGeneration(t *testing.T) {
	agg, _, _ := newSmithsFixture(t)
	store := newTestStore(t)
	gen := &echoGenerator{reply: "ignored"}
	syn, err := NewSynthesizer(agg, store, gen)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = syn.Synthesize(ctx, "Smiths", KindTodo, "")
	require.Error(t, err)

	_, found, err := store.Load(context.Background(), "Smiths", KindTodo)
	require.NoError(t, err)
	require.False(t, found)
}

func TestSynthesize_NotifierToldAfterPersist(t *testing.T) {
	agg, _, _ := newSmithsFixture(t)
	notifier := &recordingNotifier{}
	gen := &echoGenerator{reply: "board"}
	syn, err := NewSynthesizer(agg, newTestStore(t), gen, WithNotifier(notifier))
	require.NoError(t, err)

	_, err = syn.Synthesize(context.Background(), "Smiths", KindBulletin, "")
	require.NoError(t, err)
	require.Equal(t, []string{"Smiths/bulletin"}, notifier.updates)
}
