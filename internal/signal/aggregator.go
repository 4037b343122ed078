package signal

import (
	"context"
	"fmt"
	"math"
	"time"

	"tradebot/internal/logger"
)

// Aggregator runs every registered provider and sums the votes. Scoring is
// purely additive: no cross-provider tie-breaks, so the factor lists read as
// a complete audit of how the composite was reached.
type Aggregator struct {
	registry   *Registry
	reweighter Reweighter
	now        func() time.Time
}

func NewAggregator(registry *Registry) *Aggregator {
	return &Aggregator{registry: registry, now: time.Now}
}

// WithReweighter installs the optional post-pass adjustment.
func (a *Aggregator) WithReweighter(r Reweighter) *Aggregator {
	a.reweighter = r
	return a
}

// Aggregate evaluates all providers for one symbol. Provider failures (error
// or panic) are logged and treated as absent contributions.
func (a *Aggregator) Aggregate(ctx context.Context, sc Context) Result {
	res := Result{Symbol: sc.Symbol, Timestamp: a.now()}
	sum := 0
	succeeded := 0
	for _, p := range a.registry.Providers() {
		contrib, err := a.safeEvaluate(ctx, p, sc)
		if err != nil {
			logger.Warnf("provider %s failed for %s: %v", p.Name(), sc.Symbol, err)
			continue
		}
		succeeded++
		if contrib == nil {
			continue
		}
		contrib.Score = scaleScore(contrib.Score, sc.Params.Weight(p.Name()))
		if contrib.Score == 0 {
			continue
		}
		res.Contributions = append(res.Contributions, *contrib)
		sum += contrib.Score
		a.recordFactor(&res, *contrib)
	}
	if succeeded == 0 {
		res.NoData = true
		return res
	}
	if a.reweighter != nil {
		if extra := a.reweighter.Reweight(ctx, sc, clampComposite(sum)); extra != nil && extra.Score != 0 {
			res.Contributions = append(res.Contributions, *extra)
			sum += extra.Score
			a.recordFactor(&res, *extra)
		}
	}
	res.Composite = clampComposite(sum)
	return res
}

func (a *Aggregator) safeEvaluate(ctx context.Context, p Provider, sc Context) (contrib *Contribution, err error) {
	defer func() {
		if r := recover(); r != nil {
			contrib = nil
			err = fmt.Errorf("provider panic: %v", r)
		}
	}()
	return p.Evaluate(ctx, sc)
}

func (a *Aggregator) recordFactor(res *Result, c Contribution) {
	label := c.Rationale
	if label == "" {
		label = c.Source
	}
	if c.Score > 0 {
		res.BuyFactors = append(res.BuyFactors, fmt.Sprintf("%s (+%d)", label, c.Score))
	} else {
		res.SellFactors = append(res.SellFactors, fmt.Sprintf("%s (%d)", label, c.Score))
	}
}

func scaleScore(score int, weight float64) int {
	if weight == 1 {
		return score
	}
	return int(math.Round(float64(score) * weight))
}

func clampComposite(v int) int {
	if v < MinComposite {
		return MinComposite
	}
	if v > MaxComposite {
		return MaxComposite
	}
	return v
}
