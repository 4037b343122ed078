package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradebot/internal/analysis"
	"tradebot/internal/config"
	"tradebot/internal/strategy"
)

func riskCfg() config.RiskConfig {
	return config.RiskConfig{
		StopLossATRMultiplier:   1.5,
		TakeProfitATRMultiplier: 4.0,
	}
}

func TestSizeRiskBased(t *testing.T) {
	// price 100, ATR chosen so stop lands at 95: risk 2% of 10000 over a $5
	// per-share risk gives 40 shares.
	s := NewSizer(riskCfg())
	snap := &analysis.Snapshot{Symbol: "GGAL", Price: 100, ATR: 10.0 / 3.0, HasATR: true}

	p := strategy.Defaults()
	p.RiskPerTrade = 0.02
	p.MaxPositionFrac = 0.5

	m, err := s.Size(snap, 10000, p)
	require.NoError(t, err)
	assert.InDelta(t, 95, m.StopLoss, 1e-9)
	assert.InDelta(t, 100+4.0*10.0/3.0, m.TakeProfit, 1e-9)
	assert.Equal(t, 40, m.PositionSize)
	assert.InDelta(t, 200, m.RiskAmount, 1e-9)
}

func TestSizeCappedByPositionFraction(t *testing.T) {
	s := NewSizer(riskCfg())
	snap := &analysis.Snapshot{Symbol: "GGAL", Price: 100, ATR: 10.0 / 3.0, HasATR: true}

	p := strategy.Defaults()
	p.RiskPerTrade = 0.02
	p.MaxPositionFrac = 0.10 // max notional 1000 at price 100 -> 10 shares

	m, err := s.Size(snap, 10000, p)
	require.NoError(t, err)
	assert.Equal(t, 10, m.PositionSize)
}

func TestSizeCappedByCapital(t *testing.T) {
	s := NewSizer(riskCfg())
	snap := &analysis.Snapshot{Symbol: "GGAL", Price: 300, ATR: 1, HasATR: true}

	p := strategy.Defaults()
	p.RiskPerTrade = 0.5
	p.MaxPositionFrac = 1.0

	// risk-based qty would be 333, but only 3 shares are affordable.
	m, err := s.Size(snap, 1000, p)
	require.NoError(t, err)
	assert.Equal(t, 3, m.PositionSize)
}

func TestSizeNoATR(t *testing.T) {
	s := NewSizer(riskCfg())
	snap := &analysis.Snapshot{Symbol: "GGAL", Price: 100}

	_, err := s.Size(snap, 10000, strategy.Defaults())
	assert.ErrorIs(t, err, ErrRiskUnavailable)

	_, err = s.Size(nil, 10000, strategy.Defaults())
	assert.ErrorIs(t, err, ErrRiskUnavailable)
}

func TestSizeTooExpensive(t *testing.T) {
	s := NewSizer(riskCfg())
	snap := &analysis.Snapshot{Symbol: "GGAL", Price: 50000, ATR: 500, HasATR: true}

	_, err := s.Size(snap, 1000, strategy.Defaults())
	assert.ErrorIs(t, err, ErrRiskUnavailable)
}
