package providers

import (
	"context"

	"tradebot/internal/signal"
)

// Trend votes on price relative to the 20-period SMA.
type Trend struct{}

func (Trend) Name() string { return "trend" }

func (Trend) Evaluate(_ context.Context, sc signal.Context) (*signal.Contribution, error) {
	snap := sc.Snapshot
	if snap == nil || !snap.HasSMA20 || snap.Price <= 0 {
		return nil, nil
	}
	if snap.Price > snap.SMA20 {
		return &signal.Contribution{Source: "trend", Score: 10, Rationale: "Price > SMA20"}, nil
	}
	return &signal.Contribution{Source: "trend", Score: -10, Rationale: "Price < SMA20"}, nil
}
