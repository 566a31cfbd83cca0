package aggregate

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/hearth-labs/hearth/pkg/agentlog"
	"github.com/hearth-labs/hearth/pkg/classify"
)

// MemberResolver maps a group name to its members' agent handles. An
// unknown group must fail the call; that failure is the only fatal outcome
// of an aggregation.
type MemberResolver interface {
	ResolveMembers(ctx context.Context, group string) (map[string]string, error)
}

// RecordFilter optionally narrows a member's records before they enter the
// digest (the to-do pipeline plugs its keyword filter in here).
type RecordFilter func([]classify.Record) []classify.Record

// Aggregator fans the history reader out across a group's members and
// collects classified records per member.
type Aggregator struct {
	resolver MemberResolver
	reader   *agentlog.Reader
	logger   zerolog.Logger
}

func New(resolver MemberResolver, reader *agentlog.Reader) (*Aggregator, error) {
	if resolver == nil {
		return nil, errors.New("member resolver is nil")
	}
	if reader == nil {
		return nil, errors.New("history reader is nil")
	}
	return &Aggregator{
		resolver: resolver,
		reader:   reader,
		logger:   log.With().Str("component", "aggregate").Logger(),
	}, nil
}

// Aggregate returns exactly one entry per group member. Members are
// fetched and classified concurrently; a member whose agent cannot be
// resolved or read contributes an empty record slice instead of failing
// the group, and never cancels its siblings. Only an unresolvable group
// is fatal.
func (a *Aggregator) Aggregate(ctx context.Context, group string, window agentlog.TimeWindow, filter RecordFilter) (map[string][]classify.Record, error) {
	members, err := a.resolver.ResolveMembers(ctx, group)
	if err != nil {
		return nil, err
	}

	results := make(map[string][]classify.Record, len(members))
	var mu sync.Mutex

	eg, egCtx := errgroup.WithContext(ctx)
	for username, agentID := range members {
		username, agentID := username, agentID
		eg.Go(func() error {
			records := a.memberRecords(egCtx, username, agentID, window)
			if filter != nil {
				records = filter(records)
			}
			mu.Lock()
			results[username] = records
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (a *Aggregator) memberRecords(ctx context.Context, username, agentID string, window agentlog.TimeWindow) []classify.Record {
	if agentID == "" {
		a.logger.Warn().Str("username", username).Msg("member has no agent handle, contributing empty records")
		return []classify.Record{}
	}
	data, err := a.reader.Fetch(ctx, agentID, window)
	if err != nil {
		// Missing member data degrades gracefully to an empty contribution.
		a.logger.Warn().Err(err).Str("username", username).Str("agent_id", agentID).
			Msg("member history unavailable, contributing empty records")
		return []classify.Record{}
	}
	return classify.Classify(username, data)
}
