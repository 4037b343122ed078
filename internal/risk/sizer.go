package risk

import (
	"errors"
	"math"

	"tradebot/internal/analysis"
	"tradebot/internal/config"
	"tradebot/internal/strategy"
)

// ErrRiskUnavailable means the snapshot carries no usable volatility, so no
// protective levels can be derived. Callers must not enter without them.
var ErrRiskUnavailable = errors.New("risk: no volatility data for sizing")

// Metrics are the protective levels and size for one prospective entry.
type Metrics struct {
	StopLoss     float64
	TakeProfit   float64
	PositionSize int
	RiskAmount   float64
}

// Sizer converts price + ATR into stop/take levels and a quantity bounded by
// the per-trade risk fraction and the position caps.
type Sizer struct {
	cfg config.RiskConfig
}

func NewSizer(cfg config.RiskConfig) *Sizer {
	return &Sizer{cfg: cfg}
}

// Size computes entry metrics for a BUY. Quantity is risk-based:
//
//	qty = floor(capital * riskPerTrade / (price - stop))
//
// then capped so the notional never exceeds maxPositionFraction of capital,
// nor the capital itself.
func (s *Sizer) Size(snap *analysis.Snapshot, capital float64, p strategy.Parameters) (*Metrics, error) {
	if snap == nil || !snap.HasATR || snap.ATR <= 0 {
		return nil, ErrRiskUnavailable
	}
	if snap.Price <= 0 || capital <= 0 {
		return nil, ErrRiskUnavailable
	}

	price := snap.Price
	stop := price - s.cfg.StopLossATRMultiplier*snap.ATR
	take := price + s.cfg.TakeProfitATRMultiplier*snap.ATR
	if stop < 0 {
		stop = 0
	}

	perShareRisk := price - stop
	if perShareRisk <= 0 {
		return nil, ErrRiskUnavailable
	}

	riskAmount := capital * p.RiskPerTrade
	qty := int(math.Floor(riskAmount / perShareRisk))

	if maxNotional := capital * p.MaxPositionFrac; maxNotional > 0 {
		if limit := int(math.Floor(maxNotional / price)); qty > limit {
			qty = limit
		}
	}
	if affordable := int(math.Floor(capital / price)); qty > affordable {
		qty = affordable
	}
	if qty <= 0 {
		return nil, ErrRiskUnavailable
	}

	return &Metrics{
		StopLoss:     stop,
		TakeProfit:   take,
		PositionSize: qty,
		RiskAmount:   riskAmount,
	}, nil
}
