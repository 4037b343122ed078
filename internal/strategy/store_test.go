package strategy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreMissingFileYieldsDefaults(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "params.yaml"))
	require.NoError(t, err)

	p, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, Defaults(), p)
}

func TestFileStoreRoundTrip(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "params.yaml"))
	require.NoError(t, err)

	p := Defaults()
	p.BuyThreshold = 34
	p.Weights = map[string]float64{"prediction": 0.8}
	require.NoError(t, s.Save(p))

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, 34, got.BuyThreshold)
	assert.InDelta(t, 0.8, got.Weights["prediction"], 1e-9)
}

func TestFileStoreClampsOnLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
buy_threshold: 500
sell_threshold: 10
risk_per_trade: 0.9
weights:
  prediction: 9.0
`), 0o644))

	s := &FileStore{Path: path}
	p, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, MaxBuyThreshold, p.BuyThreshold)
	assert.Equal(t, MaxSellThreshold, p.SellThreshold)
	assert.InDelta(t, Defaults().RiskPerTrade, p.RiskPerTrade, 1e-9)
	assert.InDelta(t, MaxWeight, p.Weights["prediction"], 1e-9)
}

func TestWeightDefault(t *testing.T) {
	p := Defaults()
	assert.InDelta(t, 1.0, p.Weight("anything"), 1e-9)
	p.Weights["macd"] = 0.6
	assert.InDelta(t, 0.6, p.Weight("macd"), 1e-9)
}
