package providers

import (
	"context"

	"tradebot/internal/signal"
)

// MacroIndicators is the external macroeconomic context: FX spread between
// parallel and official rates, and annualized inflation.
type MacroIndicators struct {
	FXSpreadPct   float64
	HasFXSpread   bool
	InflationRate float64
	HasInflation  bool
}

type MacroSource interface {
	Indicators(ctx context.Context) (*MacroIndicators, error)
}

const macroBound = 15

// MacroContext nudges the score by the macro backdrop, bounded to ±15.
type MacroContext struct {
	Source MacroSource
}

func (MacroContext) Name() string { return "macro" }

func (m MacroContext) Evaluate(ctx context.Context, sc signal.Context) (*signal.Contribution, error) {
	if m.Source == nil {
		return nil, nil
	}
	ind, err := m.Source.Indicators(ctx)
	if err != nil {
		return nil, err
	}
	if ind == nil {
		return nil, nil
	}
	score := 0
	if ind.HasFXSpread {
		switch {
		case ind.FXSpreadPct > 30:
			score -= 10
		case ind.FXSpreadPct < 10:
			score += 5
		}
	}
	if ind.HasInflation {
		switch {
		case ind.InflationRate > 100:
			score -= 15
		case ind.InflationRate > 50:
			score -= 8
		case ind.InflationRate < 20:
			score += 5
		}
	}
	if score > macroBound {
		score = macroBound
	} else if score < -macroBound {
		score = -macroBound
	}
	if score == 0 {
		return nil, nil
	}
	label := "Macro Favorable"
	if score < 0 {
		label = "Macro Unfavorable"
	}
	return &signal.Contribution{Source: "macro", Score: score, Rationale: label}, nil
}
