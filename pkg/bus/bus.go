package bus

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hearth-labs/hearth/pkg/artifact"
)

const artifactTopic = "artifact.updated"

// ArtifactUpdate announces that a group's artifact slot was overwritten.
type ArtifactUpdate struct {
	Group     string    `json:"group"`
	Kind      string    `json:"kind"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Bus is the in-process pub/sub channel for artifact updates. It satisfies
// artifact.Notifier on the publish side.
type Bus struct {
	pubsub *gochannel.GoChannel
	logger zerolog.Logger
}

var _ artifact.Notifier = (*Bus)(nil)

func New() *Bus {
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{}),
		logger: log.With().Str("component", "bus").Logger(),
	}
}

func (b *Bus) ArtifactUpdated(group string, kind artifact.Kind) {
	payload, err := json.Marshal(ArtifactUpdate{
		Group:     group,
		Kind:      string(kind),
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		b.logger.Error().Err(err).Msg("encode artifact update")
		return
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := b.pubsub.Publish(artifactTopic, msg); err != nil {
		b.logger.Error().Err(err).Str("group", group).Str("kind", string(kind)).
			Msg("publish artifact update")
	}
}

// Subscribe delivers decoded artifact updates until the context ends.
// Undecodable messages are acked and dropped.
func (b *Bus) Subscribe(ctx context.Context) (<-chan ArtifactUpdate, error) {
	msgs, err := b.pubsub.Subscribe(ctx, artifactTopic)
	if err != nil {
		return nil, err
	}
	out := make(chan ArtifactUpdate)
	go func() {
		defer close(out)
		for msg := range msgs {
			var update ArtifactUpdate
			if err := json.Unmarshal(msg.Payload, &update); err != nil {
				b.logger.Warn().Err(err).Msg("drop undecodable artifact update")
				msg.Ack()
				continue
			}
			select {
			case out <- update:
				msg.Ack()
			case <-ctx.Done():
				msg.Nack()
				return
			}
		}
	}()
	return out, nil
}

func (b *Bus) Close() error {
	return b.pubsub.Close()
}
