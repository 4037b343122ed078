package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tradebot/internal/ledger"
	"tradebot/internal/logger"
	"tradebot/internal/position"
)

// refreshBalance pulls the available balance from the broker and caches it
// for sizing and risk checks.
func (b *Bot) refreshBalance(ctx context.Context) {
	balance, err := b.gw.AvailableBalance(ctx)
	if err != nil {
		logger.Warnf("balance refresh failed: %v", err)
		return
	}
	b.balanceMu.Lock()
	prev := b.balance
	b.balance = balance
	b.balanceMu.Unlock()
	if prev != balance {
		b.pushf("balance updated: %.2f → %.2f", prev, balance)
	}
	logger.Debugf("balance refreshed: %.2f", balance)
}

// resyncPortfolio reconciles the in-memory book against the broker account.
// Live mode only: in paper mode the book is the source of truth.
func (b *Bot) resyncPortfolio(ctx context.Context) {
	if b.cfg.Snapshot().Trading.Paper() {
		return
	}
	holdings, err := b.gw.Holdings(ctx)
	if err != nil {
		logger.Warnf("portfolio resync failed: %v", err)
		return
	}

	// Keep protective levels for symbols the book already tracks; positions
	// only the broker knows about come in with no stop and rely on the
	// monitor's volatility fallback.
	var merged []position.Position
	for _, h := range holdings {
		if h.Quantity <= 0 {
			continue
		}
		pos := position.Position{
			Symbol:   h.Symbol,
			Quantity: h.Quantity,
			AvgPrice: h.AvgPrice,
			OpenedAt: time.Now(),
		}
		if known, ok := b.book.Get(h.Symbol); ok {
			pos.StopLoss = known.StopLoss
			pos.TakeProfit = known.TakeProfit
			pos.Trailing = known.Trailing
			pos.OpenedAt = known.OpenedAt
		}
		merged = append(merged, pos)
	}
	b.book.Replace(merged)
	logger.Infof("portfolio resynced: %d holdings", len(merged))
}

// refreshPnL logs the unrealized P&L of every open position.
func (b *Bot) refreshPnL(ctx context.Context) {
	positions := b.book.List()
	if len(positions) == 0 {
		return
	}
	var total float64
	var lines []string
	for _, pos := range positions {
		price, err := b.gw.Quote(ctx, pos.Symbol)
		if err != nil {
			logger.Warnf("P&L quote for %s failed: %v", pos.Symbol, err)
			continue
		}
		unrealized := (price - pos.AvgPrice) * float64(pos.Quantity)
		total += unrealized
		lines = append(lines, fmt.Sprintf("%s %d@%.2f now %.2f: %+.2f",
			pos.Symbol, pos.Quantity, pos.AvgPrice, price, unrealized))
	}
	logger.Infof("unrealized P&L %+.2f | %s", total, strings.Join(lines, " | "))
}

// maybeDailyReport pushes the end-of-day summary once per day at the
// configured hour.
func (b *Bot) maybeDailyReport(ctx context.Context) {
	now := time.Now()
	cfg := b.cfg.Snapshot()
	if now.Hour() != cfg.Scheduler.DailyReportHour {
		return
	}
	today := now.Format("2006-01-02")
	if b.lastReportDay == today {
		return
	}
	b.lastReportDay = today

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	recs, err := b.ledgerDB.DayRecords(ctx, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		logger.Warnf("daily report query failed: %v", err)
		return
	}

	var filled, blocked, failed int
	var realized float64
	for _, r := range recs {
		switch r.Status {
		case ledger.StatusFilled:
			filled++
			if r.NetPnL != nil {
				realized += *r.NetPnL
			}
		case ledger.StatusBlocked, ledger.StatusPaused:
			blocked++
		case ledger.StatusFailed:
			failed++
		}
	}

	b.pushf("*Daily report %s*\nfilled %d / blocked %d / failed %d\nrealized P&L %+.2f\nopen positions %d\nskipped ticks %d",
		today, filled, blocked, failed, realized, b.book.Len(), b.state.SkippedTicks())
}
