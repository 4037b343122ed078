package bot

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradebot/internal/ledger"
	"tradebot/internal/strategy"
)

func newTuner(t *testing.T) (*Tuner, *ledger.Store, *strategy.FileStore) {
	t.Helper()
	dir := t.TempDir()
	store, err := ledger.NewStore(filepath.Join(dir, "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	params, err := strategy.NewFileStore(filepath.Join(dir, "params.yaml"))
	require.NoError(t, err)
	return NewTuner(store, params), store, params
}

func seedOutcomes(t *testing.T, store *ledger.Store, wins, losses int) {
	t.Helper()
	ctx := context.Background()
	i := 0
	add := func(net float64) {
		i++
		rec := &ledger.Record{
			TradeID:   fmt.Sprintf("t%d", i),
			Symbol:    "GGAL",
			Side:      ledger.SideSell,
			Quantity:  1,
			Price:     100,
			Status:    ledger.StatusFilled,
			Mode:      ledger.ModePaper,
			NetPnL:    &net,
			Timestamp: time.Now().Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, store.Append(ctx, rec))
	}
	for j := 0; j < wins; j++ {
		add(10)
	}
	for j := 0; j < losses; j++ {
		add(-10)
	}
}

func TestAdaptTightensOnLowWinRate(t *testing.T) {
	tuner, store, params := newTuner(t)
	seedOutcomes(t, store, 2, 8) // 20% win rate

	require.NoError(t, tuner.Adapt(context.Background()))

	p, err := params.Load()
	require.NoError(t, err)
	def := strategy.Defaults()
	assert.Equal(t, def.BuyThreshold+strategy.ThresholdStep, p.BuyThreshold)
	assert.Equal(t, def.SellThreshold-strategy.ThresholdStep, p.SellThreshold)
	assert.InDelta(t, 1-strategy.WeightStep, p.Weights["prediction"], 1e-9)
}

func TestAdaptLoosensOnHighWinRate(t *testing.T) {
	tuner, store, params := newTuner(t)
	seedOutcomes(t, store, 8, 2) // 80% win rate

	require.NoError(t, tuner.Adapt(context.Background()))

	p, err := params.Load()
	require.NoError(t, err)
	def := strategy.Defaults()
	assert.Equal(t, def.BuyThreshold-strategy.ThresholdStep, p.BuyThreshold)
	assert.InDelta(t, 1+strategy.WeightStep, p.Weights["sentiment"], 1e-9)
}

func TestAdaptNeutralBandNoChange(t *testing.T) {
	tuner, store, params := newTuner(t)
	seedOutcomes(t, store, 5, 5)

	require.NoError(t, tuner.Adapt(context.Background()))

	p, err := params.Load()
	require.NoError(t, err)
	assert.Equal(t, strategy.Defaults().BuyThreshold, p.BuyThreshold)
}

func TestAdaptNeedsSample(t *testing.T) {
	tuner, store, params := newTuner(t)
	seedOutcomes(t, store, 0, 3) // below the minimum sample

	require.NoError(t, tuner.Adapt(context.Background()))

	p, err := params.Load()
	require.NoError(t, err)
	assert.Equal(t, strategy.Defaults().BuyThreshold, p.BuyThreshold)
}

func TestAdaptNeverExceedsBounds(t *testing.T) {
	tuner, store, params := newTuner(t)
	seedOutcomes(t, store, 0, 10)

	start := strategy.Defaults()
	start.BuyThreshold = strategy.MaxBuyThreshold
	start.SellThreshold = strategy.MinSellThreshold
	require.NoError(t, params.Save(start))

	require.NoError(t, tuner.Adapt(context.Background()))

	p, err := params.Load()
	require.NoError(t, err)
	assert.Equal(t, strategy.MaxBuyThreshold, p.BuyThreshold)
	assert.Equal(t, strategy.MinSellThreshold, p.SellThreshold)
}
