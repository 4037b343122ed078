package bot

import (
	"context"

	"tradebot/internal/ledger"
	"tradebot/internal/logger"
	"tradebot/internal/strategy"
)

const (
	adaptiveMinSample = 5
	adaptiveWindow    = 20
	lowWinRate        = 0.4
	highWinRate       = 0.6
)

// External sources get their confidence weight nudged by the tuner;
// technical indicator votes stay at weight 1.
var tunedSources = []string{"prediction", "sentiment", "macro"}

// Tuner is the adaptive feedback loop: it reads recent settled outcomes and
// nudges thresholds and weights one bounded step at a time. All moves stay
// inside the hard bounds in the strategy package.
type Tuner struct {
	outcomes *ledger.Store
	params   strategy.Store
}

func NewTuner(outcomes *ledger.Store, params strategy.Store) *Tuner {
	return &Tuner{outcomes: outcomes, params: params}
}

// Adapt runs one adjustment pass. With too little data it does nothing.
func (t *Tuner) Adapt(ctx context.Context) error {
	recs, err := t.outcomes.RecentOutcomes(ctx, adaptiveWindow)
	if err != nil {
		return err
	}
	if len(recs) < adaptiveMinSample {
		logger.Debugf("adaptive pass skipped: %d settled trades, need %d", len(recs), adaptiveMinSample)
		return nil
	}

	wins := 0
	for _, r := range recs {
		if r.NetPnL != nil && *r.NetPnL > 0 {
			wins++
		}
	}
	winRate := float64(wins) / float64(len(recs))

	p, err := t.params.Load()
	if err != nil {
		return err
	}
	before := p

	switch {
	case winRate < lowWinRate:
		// Losing more than winning: demand stronger signals and trust the
		// external sources less.
		p.BuyThreshold += strategy.ThresholdStep
		p.SellThreshold -= strategy.ThresholdStep
		t.nudgeWeights(&p, -strategy.WeightStep)
	case winRate > highWinRate:
		p.BuyThreshold -= strategy.ThresholdStep
		p.SellThreshold += strategy.ThresholdStep
		t.nudgeWeights(&p, +strategy.WeightStep)
	default:
		logger.Debugf("adaptive pass: win rate %.2f inside neutral band, no change", winRate)
		return nil
	}

	p = p.Clamp()
	if err := t.params.Save(p); err != nil {
		return err
	}
	logger.Infof("adaptive pass: win rate %.2f over %d trades, thresholds %d/%d -> %d/%d",
		winRate, len(recs), before.BuyThreshold, before.SellThreshold, p.BuyThreshold, p.SellThreshold)
	return nil
}

func (t *Tuner) nudgeWeights(p *strategy.Parameters, delta float64) {
	if p.Weights == nil {
		p.Weights = map[string]float64{}
	}
	for _, src := range tunedSources {
		w, ok := p.Weights[src]
		if !ok {
			w = 1
		}
		p.Weights[src] = w + delta
	}
}
