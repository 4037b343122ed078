package providers

import (
	"context"

	"tradebot/internal/signal"
)

// Regime is the optional reweighting pass: one extra bounded vote when the
// moving averages and price line up in a clear trend. It never replaces the
// additive base score.
type Regime struct{}

func (Regime) Name() string { return "regime" }

func (Regime) Reweight(_ context.Context, sc signal.Context, _ int) *signal.Contribution {
	snap := sc.Snapshot
	if snap == nil || !snap.HasSMA20 || !snap.HasSMA50 || snap.Price <= 0 {
		return nil
	}
	if snap.Price > snap.SMA20 && snap.SMA20 > snap.SMA50 {
		return &signal.Contribution{Source: "regime", Score: 10, Rationale: "Regime Trending Bull"}
	}
	if snap.Price < snap.SMA20 && snap.SMA20 < snap.SMA50 {
		return &signal.Contribution{Source: "regime", Score: -10, Rationale: "Regime Trending Bear"}
	}
	return nil
}
