package position

// TrailingConfig holds the activation and trail distances in percent of the
// entry price.
type TrailingConfig struct {
	ActivationPct float64
	TrailPct      float64
}

// UpdateTrailing folds a new price observation into the trailing state. The
// stop only ever moves up: an unfavorable observation leaves it untouched.
// Returns true when the trailing stop is hit.
func UpdateTrailing(pos *Position, price float64, cfg TrailingConfig) bool {
	if pos.AvgPrice <= 0 || price <= 0 {
		return false
	}

	if !pos.Trailing.Active {
		gainPct := (price - pos.AvgPrice) / pos.AvgPrice * 100
		if gainPct < cfg.ActivationPct {
			return false
		}
		pos.Trailing.Active = true
		pos.Trailing.HighWater = price
		pos.Trailing.Stop = price * (1 - cfg.TrailPct/100)
		return false
	}

	if price > pos.Trailing.HighWater {
		pos.Trailing.HighWater = price
		if stop := price * (1 - cfg.TrailPct/100); stop > pos.Trailing.Stop {
			pos.Trailing.Stop = stop
		}
	}
	return price <= pos.Trailing.Stop
}
