package decision

import "tradebot/internal/strategy"

// Action is the trade direction decided for a cycle.
type Action string

const (
	Buy  Action = "BUY"
	Sell Action = "SELL"
	Hold Action = "HOLD"
)

// Tier grades how far past its threshold a score landed.
type Tier string

const (
	High   Tier = "HIGH"
	Medium Tier = "MEDIUM"
	Low    Tier = "LOW"
)

// Decide maps a composite score onto an action and confidence tier.
// Thresholds are inclusive: score == BuyThreshold is a BUY. HIGH requires the
// score to clear the threshold by at least the confidence margin.
func Decide(score int, p strategy.Parameters) (Action, Tier) {
	switch {
	case score >= p.BuyThreshold:
		if score >= p.BuyThreshold+p.ConfidenceMargin {
			return Buy, High
		}
		return Buy, Medium
	case score <= p.SellThreshold:
		if score <= p.SellThreshold-p.ConfidenceMargin {
			return Sell, High
		}
		return Sell, Medium
	default:
		return Hold, Low
	}
}
