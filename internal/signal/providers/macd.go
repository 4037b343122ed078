package providers

import (
	"context"

	"tradebot/internal/signal"
)

// MACDCross votes on the MACD line relative to its signal line.
type MACDCross struct{}

func (MACDCross) Name() string { return "macd" }

func (MACDCross) Evaluate(_ context.Context, sc signal.Context) (*signal.Contribution, error) {
	snap := sc.Snapshot
	if snap == nil || !snap.HasMACD {
		return nil, nil
	}
	if snap.MACD > snap.MACDSignal {
		return &signal.Contribution{Source: "macd", Score: 15, Rationale: "MACD > Signal"}, nil
	}
	return &signal.Contribution{Source: "macd", Score: -15, Rationale: "MACD < Signal"}, nil
}
