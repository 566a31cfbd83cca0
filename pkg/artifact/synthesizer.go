package artifact

import (
	"context"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hearth-labs/hearth/pkg/agentlog"
	"github.com/hearth-labs/hearth/pkg/aggregate"
	"github.com/hearth-labs/hearth/pkg/classify"
	"github.com/hearth-labs/hearth/pkg/llm"
)

// GenerationError wraps a failed or unusable backend generation. It is
// propagated, never swallowed: returning malformed artifact text would be
// worse than surfacing the failure.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string { return "generation failed: " + e.Err.Error() }
func (e *GenerationError) Unwrap() error { return e.Err }

// Notifier is told about persisted artifact updates. Optional.
type Notifier interface {
	ArtifactUpdated(group string, kind Kind)
}

// Synthesizer reduces prior artifact state plus aggregated member records
// into a fresh artifact text through one constrained generation pass.
type Synthesizer struct {
	aggregator *aggregate.Aggregator
	store      Store
	generator  llm.Generator
	notifier   Notifier
	logger     zerolog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

type SynthesizerOption func(*Synthesizer)

func WithNotifier(n Notifier) SynthesizerOption {
	return func(s *Synthesizer) { s.notifier = n }
}

func NewSynthesizer(aggregator *aggregate.Aggregator, store Store, generator llm.Generator, options ...SynthesizerOption) (*Synthesizer, error) {
	if aggregator == nil {
		return nil, errors.New("aggregator is nil")
	}
	if store == nil {
		return nil, errors.New("artifact store is nil")
	}
	if generator == nil {
		return nil, errors.New("generator is nil")
	}
	s := &Synthesizer{
		aggregator: aggregator,
		store:      store,
		generator:  generator,
		logger:     log.With().Str("component", "artifact").Logger(),
		locks:      map[string]*sync.Mutex{},
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Synthesize runs the full pipeline for one (group, kind) slot: load prior
// text, aggregate member histories, build the digest, generate, normalize,
// persist. newItem may be empty. Nothing is persisted unless generation
// succeeds; cancellation before the backend call commits leaves the slot
// untouched. Writers for the same slot are serialized in process; across
// processes the store stays last-write-wins.
func (s *Synthesizer) Synthesize(ctx context.Context, group string, kind Kind, newItem string) (string, error) {
	unlock := s.lockKey(StorageKey(group, kind))
	defer unlock()

	prior, hasPrior, err := s.store.Load(ctx, group, kind)
	if err != nil {
		return "", err
	}

	var filter aggregate.RecordFilter
	if kind == KindTodo {
		filter = classify.FilterActionable
	}
	records, err := s.aggregator.Aggregate(ctx, group, agentlog.TimeWindow{}, filter)
	if err != nil {
		return "", err
	}

	digest := BuildDigest(DigestInput{
		Group:    group,
		Kind:     kind,
		Prior:    prior,
		HasPrior: hasPrior,
		Records:  records,
		NewItem:  newItem,
	})
	system, user := buildPrompts(kind, hasPrior, digest)

	if err := ctx.Err(); err != nil {
		return "", err
	}
	text, err := s.generator.Generate(ctx, system, user)
	if err != nil {
		return "", &GenerationError{Err: err}
	}
	text = s.normalize(group, kind, text)

	if err := s.store.Save(ctx, group, kind, text); err != nil {
		return "", err
	}
	if s.notifier != nil {
		s.notifier.ArtifactUpdated(group, kind)
	}
	s.logger.Debug().Str("group", group).Str("kind", string(kind)).
		Int("members", len(records)).Bool("had_prior", hasPrior).
		Msg("synthesized artifact")
	return text, nil
}

// normalize applies the one structural post-condition: a to-do artifact
// always starts with a Markdown header, whether or not the backend
// followed the instruction.
func (s *Synthesizer) normalize(group string, kind Kind, text string) string {
	if kind != KindTodo {
		return text
	}
	if strings.HasPrefix(text, "##") {
		return text
	}
	return "## To-Do List for " + group + "\n\n" + text
}

func (s *Synthesizer) lockKey(key string) func() {
	s.mu.Lock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l.Unlock
}
