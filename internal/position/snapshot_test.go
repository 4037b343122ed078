package position

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRoundTrip(t *testing.T) {
	store, err := OpenSnapshotStore(filepath.Join(t.TempDir(), "portfolio.db"))
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	in := []Position{
		{
			Symbol: "GGAL", Quantity: 10, AvgPrice: 100, StopLoss: 95, TakeProfit: 120,
			Trailing: TrailingState{Active: true, HighWater: 110, Stop: 104.5},
			OpenedAt: time.Now().Truncate(time.Second),
		},
		{Symbol: "PAMP", Quantity: 5, AvgPrice: 50, OpenedAt: time.Now().Truncate(time.Second)},
	}
	require.NoError(t, store.Save(ctx, in))

	out, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "GGAL", out[0].Symbol)
	assert.True(t, out[0].Trailing.Active)
	assert.InDelta(t, 104.5, out[0].Trailing.Stop, 1e-9)
	assert.Equal(t, 5, out[1].Quantity)

	// Save replaces, never appends.
	require.NoError(t, store.Save(ctx, in[:1]))
	out, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, out, 1)
}
