package providers

import (
	"context"

	"tradebot/internal/signal"
)

// Momentum votes on RSI: strong points at the extremes, a small drift vote
// inside the band. Abstains when the snapshot has no RSI.
type Momentum struct{}

func (Momentum) Name() string { return "momentum" }

func (Momentum) Evaluate(_ context.Context, sc signal.Context) (*signal.Contribution, error) {
	snap := sc.Snapshot
	if snap == nil || !snap.HasRSI {
		return nil, nil
	}
	rsi := snap.RSI
	switch {
	case rsi < 30:
		return &signal.Contribution{Source: "momentum", Score: 20, Rationale: "RSI Oversold"}, nil
	case rsi > 70:
		return &signal.Contribution{Source: "momentum", Score: -20, Rationale: "RSI Overbought"}, nil
	case rsi > 50:
		return &signal.Contribution{Source: "momentum", Score: 5, Rationale: "RSI Uptrend"}, nil
	default:
		return &signal.Contribution{Source: "momentum", Score: -5, Rationale: "RSI Downtrend"}, nil
	}
}
