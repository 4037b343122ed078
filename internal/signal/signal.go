package signal

import (
	"context"
	"time"

	"tradebot/internal/analysis"
	"tradebot/internal/strategy"
)

// Composite scores are clamped to this range. The weighted-voting model is
// nominally ±100; a clamp keeps any one runaway provider from dominating.
const (
	MinComposite = -100
	MaxComposite = 100
)

// Contribution is one provider's signed vote for a symbol in one cycle.
type Contribution struct {
	Source     string
	Score      int
	Rationale  string
	Confidence float64
}

// Context carries everything a provider may consult. Snapshot can be nil when
// technical analysis failed; providers must treat missing inputs as "no vote".
type Context struct {
	Symbol   string
	Price    float64
	Snapshot *analysis.Snapshot
	Params   strategy.Parameters
}

// Provider turns market context into an optional contribution. Returning
// (nil, nil) means the provider abstains. Errors and panics are absorbed by
// the Aggregator; a broken provider never fails the cycle.
type Provider interface {
	Name() string
	Evaluate(ctx context.Context, sc Context) (*Contribution, error)
}

// Reweighter may add one further bounded contribution after the additive
// pass (regime-aware adjustment). It never replaces the additive base.
type Reweighter interface {
	Name() string
	Reweight(ctx context.Context, sc Context, composite int) *Contribution
}

// Result is the aggregated view handed to the decision module. Buy and sell
// factor strings are kept verbatim for audit and operator notifications.
type Result struct {
	Symbol        string
	Timestamp     time.Time
	Contributions []Contribution
	Composite     int
	BuyFactors    []string
	SellFactors   []string
	NoData        bool
}
