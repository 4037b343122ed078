package risk

import (
	"fmt"

	"github.com/shopspring/decimal"

	"tradebot/internal/config"
)

// Model prices the broker commission for one side of a trade. Implementations
// must be pure so paper fills and live settlement agree.
type Model interface {
	Commission(symbol string, price float64, quantity int, side string) decimal.Decimal
}

// FixedRate is the brokerage schedule: a per-side fraction of notional with a
// floor, rounded half-up to cents.
type FixedRate struct {
	rate    decimal.Decimal
	minimum decimal.Decimal
}

func NewFixedRate(cfg config.CommissionConfig) *FixedRate {
	return &FixedRate{
		rate:    decimal.NewFromFloat(cfg.Rate),
		minimum: decimal.NewFromFloat(cfg.Minimum),
	}
}

func (f *FixedRate) Commission(_ string, price float64, quantity int, _ string) decimal.Decimal {
	notional := decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(quantity)))
	c := notional.Mul(f.rate).Round(2)
	if c.LessThan(f.minimum) {
		return f.minimum
	}
	return c
}

// RoundTrip is the full cost of opening and closing a position at the given
// prices: buy-side plus sell-side commission.
func RoundTrip(m Model, symbol string, buyPrice, sellPrice float64, quantity int) decimal.Decimal {
	buy := m.Commission(symbol, buyPrice, quantity, "BUY")
	sell := m.Commission(symbol, sellPrice, quantity, "SELL")
	return buy.Add(sell)
}

// minNetProfitPct is the net-of-costs return below which an entry is flagged
// as barely worth the round trip.
const minNetProfitPct = 0.5

// Profitability is the pre-trade cost check for a planned entry/exit pair.
type Profitability struct {
	GrossPnL decimal.Decimal
	Cost     decimal.Decimal
	NetPnL   decimal.Decimal
	Viable   bool
	Advisory string
}

// CheckProfitability evaluates whether a planned trade survives its own
// round-trip cost. Only a strictly negative net is a hard block; a zero or
// thin positive net passes with an advisory note.
func CheckProfitability(m Model, symbol string, entry, target float64, quantity int) Profitability {
	gross := decimal.NewFromFloat(target - entry).Mul(decimal.NewFromInt(int64(quantity))).Round(2)
	cost := RoundTrip(m, symbol, entry, target, quantity)
	net := gross.Sub(cost)

	p := Profitability{GrossPnL: gross, Cost: cost, NetPnL: net}
	if net.IsNegative() {
		p.Viable = false
		p.Advisory = fmt.Sprintf("round-trip cost %s exceeds gross %s", cost.StringFixed(2), gross.StringFixed(2))
		return p
	}
	p.Viable = true
	notional := decimal.NewFromFloat(entry).Mul(decimal.NewFromInt(int64(quantity)))
	if notional.IsPositive() {
		netPct, _ := net.Div(notional).Mul(decimal.NewFromInt(100)).Float64()
		if netPct < minNetProfitPct {
			p.Advisory = fmt.Sprintf("net edge %.2f%% is below %.1f%% after costs", netPct, minNetProfitPct)
		}
	}
	return p
}
