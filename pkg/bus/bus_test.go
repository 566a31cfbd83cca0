package bus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hearth-labs/hearth/pkg/artifact"
)

func TestBus_PublishSubscribe(t *testing.T) {
	b := New()
	t.Cleanup(func() { _ = b.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates, err := b.Subscribe(ctx)
	require.NoError(t, err)

	b.ArtifactUpdated("Smiths", artifact.KindTodo)

	select {
	case update := <-updates:
		require.Equal(t, "Smiths", update.Group)
		require.Equal(t, "todo", update.Kind)
		require.False(t, update.UpdatedAt.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("no artifact update received")
	}
}
