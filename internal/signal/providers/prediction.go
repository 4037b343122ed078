package providers

import (
	"context"
	"math"

	"tradebot/internal/signal"
)

// Prediction is the output of an external price predictor. FromModel marks a
// genuine model forecast; a technical extrapolation fallback carries reduced
// weight.
type Prediction struct {
	Current   float64
	Predicted float64
	ChangePct float64
	FromModel bool
}

// PredictionSource is the boundary to the external predictor. Returning
// (nil, nil) means no forecast is available for the symbol.
type PredictionSource interface {
	Predict(ctx context.Context, symbol string) (*Prediction, error)
}

const strongMoveThresholdPct = 2.0

// Forecast converts an external prediction into a bounded vote: ±30 for a
// strong predicted move, ±15 otherwise, scaled to 70% when the prediction is
// only a technical fallback.
type Forecast struct {
	Source PredictionSource
}

func (Forecast) Name() string { return "prediction" }

func (f Forecast) Evaluate(ctx context.Context, sc signal.Context) (*signal.Contribution, error) {
	if f.Source == nil {
		return nil, nil
	}
	pred, err := f.Source.Predict(ctx, sc.Symbol)
	if err != nil {
		return nil, err
	}
	if pred == nil || pred.ChangePct == 0 {
		return nil, nil
	}
	base := 15
	if math.Abs(pred.ChangePct) > strongMoveThresholdPct {
		base = 30
	}
	if !pred.FromModel {
		base = int(float64(base) * 0.7)
	}
	conf := math.Abs(pred.ChangePct) / 10
	if pred.ChangePct > 0 {
		return &signal.Contribution{Source: "prediction", Score: base, Rationale: "Forecast Bullish", Confidence: conf}, nil
	}
	return &signal.Contribution{Source: "prediction", Score: -base, Rationale: "Forecast Bearish", Confidence: conf}, nil
}
