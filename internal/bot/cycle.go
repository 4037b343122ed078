package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tradebot/internal/analysis"
	"tradebot/internal/decision"
	"tradebot/internal/executor"
	"tradebot/internal/ledger"
	"tradebot/internal/logger"
	"tradebot/internal/risk"
	"tradebot/internal/signal"
	"tradebot/internal/strategy"
)

const historyDays = 90

// runCycle is one guarded analysis pass. If the previous cycle is still in
// flight the tick is skipped entirely: no ledger writes, no notifications.
// A panic anywhere in the pass is converted into a cycle failure; the
// scheduler keeps running and the lock is always released.
func (b *Bot) runCycle(ctx context.Context) (err error) {
	if !b.state.TryBeginCycle() {
		logger.Warnf("cycle still running, tick skipped (%d total skips)", b.state.SkippedTicks())
		return nil
	}
	defer b.state.EndCycle()
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("cycle panicked: %v", r)
			err = fmt.Errorf("cycle panic: %v", r)
		}
	}()

	cfg := b.cfg.Snapshot()
	params, err := b.params.Load()
	if err != nil {
		logger.Warnf("strategy params load failed, using defaults: %v", err)
		params = strategy.Defaults()
	}

	// Protective exits come first so a crash mid-cycle can never mean an
	// unwatched position traded after its stop.
	b.monitor.Check(ctx)

	sessionFilter := decision.NewSessionFilter(cfg.Session)
	entryFilter := decision.NewEntryFilter(cfg.Entry)

	failures := 0
	for _, symbol := range cfg.Trading.Symbols {
		if err := b.analyzeSymbol(ctx, symbol, params, sessionFilter, entryFilter); err != nil {
			failures++
			logger.Errorf("analysis failed for %s: %v", symbol, err)
		}
	}

	if err := b.snapshots.Save(ctx, b.book.List()); err != nil {
		logger.Warnf("position snapshot failed: %v", err)
	}

	if n := len(cfg.Trading.Symbols); n > 0 && failures == n {
		return fmt.Errorf("all %d symbols failed", n)
	}
	return nil
}

func (b *Bot) analyzeSymbol(ctx context.Context, symbol string, params strategy.Parameters,
	sessionFilter *decision.SessionFilter, entryFilter *decision.EntryFilter) error {

	res, snap, err := b.evaluate(ctx, symbol, params)
	if err != nil {
		return err
	}
	if res.NoData {
		logger.Warnf("%s: every provider failed, holding", symbol)
		return nil
	}

	action, tier := decision.Decide(res.Composite, params)
	logger.Infof("%s: score %d -> %s/%s", symbol, res.Composite, action, tier)

	// Both decided directions pass through the filters; only the protective
	// monitor exits bypass them.
	if action == decision.Buy || action == decision.Sell {
		if ok, reason := sessionFilter.Allow(time.Now()); !ok {
			logger.Infof("%s: %s downgraded to HOLD (%s)", symbol, action, reason)
			return nil
		}
		if ok, reason := entryFilter.Check(snap); !ok {
			logger.Infof("%s: %s downgraded to HOLD (%s)", symbol, action, reason)
			return nil
		}
	}

	switch action {
	case decision.Buy:
		return b.enter(ctx, symbol, res, snap, params)
	case decision.Sell:
		return b.exitSignal(ctx, symbol, snap)
	default:
		return nil
	}
}

// evaluate builds the technical snapshot and aggregates provider votes.
func (b *Bot) evaluate(ctx context.Context, symbol string, params strategy.Parameters) (signal.Result, *analysis.Snapshot, error) {
	candles, err := b.history.History(ctx, symbol, historyDays)
	if err != nil {
		return signal.Result{}, nil, fmt.Errorf("history: %w", err)
	}
	snap, err := analysis.Compute(symbol, candles)
	if err != nil {
		return signal.Result{}, nil, fmt.Errorf("indicators: %w", err)
	}
	res := b.aggregator.Aggregate(ctx, signal.Context{
		Symbol:   symbol,
		Price:    snap.Price,
		Snapshot: snap,
		Params:   params,
	})
	return res, snap, nil
}

func (b *Bot) enter(ctx context.Context, symbol string, res signal.Result, snap *analysis.Snapshot,
	params strategy.Parameters) error {

	metrics, err := b.sizer.Size(snap, b.Capital(), params)
	if err != nil {
		logger.Infof("%s: not sized (%v)", symbol, err)
		return nil
	}

	check := risk.CheckProfitability(b.commission, symbol, snap.Price, metrics.TakeProfit, metrics.PositionSize)
	if !check.Viable {
		logger.Infof("%s: entry blocked, %s", symbol, check.Advisory)
		return nil
	}
	if check.Advisory != "" {
		logger.Warnf("%s: %s", symbol, check.Advisory)
	}

	rec, err := b.exec.Execute(ctx, executor.Request{
		Symbol:     symbol,
		Side:       ledger.SideBuy,
		Quantity:   metrics.PositionSize,
		Price:      snap.Price,
		StopLoss:   metrics.StopLoss,
		TakeProfit: metrics.TakeProfit,
	})
	if err != nil {
		return err
	}
	if rec.Status == ledger.StatusFilled {
		logger.Infof("%s: BUY filled, factors: %s", symbol, strings.Join(res.BuyFactors, ", "))
	}
	return nil
}

func (b *Bot) exitSignal(ctx context.Context, symbol string, snap *analysis.Snapshot) error {
	pos, ok := b.book.Get(symbol)
	if !ok {
		logger.Debugf("%s: sell signal with no open position", symbol)
		return nil
	}
	_, err := b.exec.Execute(ctx, executor.Request{
		Symbol:   symbol,
		Side:     ledger.SideSell,
		Quantity: pos.Quantity,
		Price:    snap.Price,
		Reason:   "signal",
	})
	return err
}
