package strategy

// Parameters are the live decision knobs. They are persisted outside the main
// config because the adaptive feedback loop rewrites them; everything else in
// the system treats them as read-only and re-loads them fresh each cycle.
type Parameters struct {
	BuyThreshold     int                `yaml:"buy_threshold"`
	SellThreshold    int                `yaml:"sell_threshold"`
	ConfidenceMargin int                `yaml:"confidence_margin"`
	RiskPerTrade     float64            `yaml:"risk_per_trade"`
	MaxPositionFrac  float64            `yaml:"max_position_fraction"`
	Weights          map[string]float64 `yaml:"weights"`
}

// Hard bounds for adaptive adjustment. A nudge may move a threshold by at
// most ThresholdStep per adaptation pass and never past these limits.
const (
	MinBuyThreshold  = 15
	MaxBuyThreshold  = 60
	MinSellThreshold = -60
	MaxSellThreshold = -15
	ThresholdStep    = 2

	MinWeight  = 0.5
	MaxWeight  = 1.5
	WeightStep = 0.05
)

func Defaults() Parameters {
	return Parameters{
		BuyThreshold:     30,
		SellThreshold:    -30,
		ConfidenceMargin: 25,
		RiskPerTrade:     0.02,
		MaxPositionFrac:  0.10,
		Weights:          map[string]float64{},
	}
}

// Weight returns the confidence weight for a provider, defaulting to 1.
func (p Parameters) Weight(source string) float64 {
	if w, ok := p.Weights[source]; ok && w > 0 {
		return clampFloat(w, MinWeight, MaxWeight)
	}
	return 1
}

// Clamp forces every field back inside its hard bounds. Store.Save applies it
// so a corrupt or hand-edited file can never push the bot outside the rails.
func (p Parameters) Clamp() Parameters {
	p.BuyThreshold = clampInt(p.BuyThreshold, MinBuyThreshold, MaxBuyThreshold)
	p.SellThreshold = clampInt(p.SellThreshold, MinSellThreshold, MaxSellThreshold)
	if p.ConfidenceMargin <= 0 {
		p.ConfidenceMargin = Defaults().ConfidenceMargin
	}
	if p.RiskPerTrade <= 0 || p.RiskPerTrade > 0.10 {
		p.RiskPerTrade = Defaults().RiskPerTrade
	}
	if p.MaxPositionFrac <= 0 || p.MaxPositionFrac > 0.5 {
		p.MaxPositionFrac = Defaults().MaxPositionFrac
	}
	if p.Weights == nil {
		p.Weights = map[string]float64{}
	}
	for k, w := range p.Weights {
		p.Weights[k] = clampFloat(w, MinWeight, MaxWeight)
	}
	return p
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
