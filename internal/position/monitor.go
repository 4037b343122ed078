package position

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"tradebot/internal/logger"
)

// Quoter fetches the current price for one symbol.
type Quoter interface {
	Quote(ctx context.Context, symbol string) (float64, error)
}

// Exiter submits a protective exit. The monitor never talks to the broker
// directly; synthetic SELLs flow through the same execution path as decided
// ones.
type Exiter interface {
	Exit(ctx context.Context, pos Position, price float64, reason string) error
}

// VolatilitySource supplies an ATR for positions that carry no explicit stop.
type VolatilitySource interface {
	ATR(ctx context.Context, symbol string) (float64, bool)
}

// Monitor walks open positions each cycle and fires protective exits. Checks
// run in priority order: take-profit, stop-loss, ATR-derived fallback stop,
// then trailing. One symbol's failure never blocks the others.
type Monitor struct {
	book       *Book
	quoter     Quoter
	exiter     Exiter
	volatility VolatilitySource
	trailing   TrailingConfig
	stopMult   float64
}

func NewMonitor(book *Book, quoter Quoter, exiter Exiter, trailing TrailingConfig, stopMult float64) *Monitor {
	return &Monitor{
		book:     book,
		quoter:   quoter,
		exiter:   exiter,
		trailing: trailing,
		stopMult: stopMult,
	}
}

// WithVolatility enables the ATR fallback stop.
func (m *Monitor) WithVolatility(v VolatilitySource) *Monitor {
	m.volatility = v
	return m
}

// Check polls every open position once. Errors are logged per symbol and
// never abort the sweep.
func (m *Monitor) Check(ctx context.Context) {
	positions := m.book.List()
	if len(positions) == 0 {
		return
	}

	g := new(errgroup.Group)
	g.SetLimit(4)
	for _, pos := range positions {
		pos := pos
		g.Go(func() error {
			if err := m.checkOne(ctx, pos); err != nil {
				logger.Warnf("position check %s failed: %v", pos.Symbol, err)
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (m *Monitor) checkOne(ctx context.Context, pos Position) error {
	price, err := m.quoter.Quote(ctx, pos.Symbol)
	if err != nil {
		return fmt.Errorf("quote: %w", err)
	}
	if price <= 0 {
		return fmt.Errorf("bad price %.4f", price)
	}

	if pos.TakeProfit > 0 && price >= pos.TakeProfit {
		return m.exiter.Exit(ctx, pos, price, "take profit")
	}
	if pos.StopLoss > 0 && price <= pos.StopLoss {
		return m.exiter.Exit(ctx, pos, price, "stop loss")
	}
	if pos.StopLoss <= 0 && m.volatility != nil {
		if atr, ok := m.volatility.ATR(ctx, pos.Symbol); ok && atr > 0 {
			if fallback := pos.AvgPrice - m.stopMult*atr; price <= fallback {
				return m.exiter.Exit(ctx, pos, price, "volatility stop")
			}
		}
	}

	hit := false
	m.book.Update(pos.Symbol, func(p *Position) {
		hit = UpdateTrailing(p, price, m.trailing)
	})
	if hit {
		if latest, ok := m.book.Get(pos.Symbol); ok {
			return m.exiter.Exit(ctx, latest, price, "trailing stop")
		}
	}
	return nil
}
