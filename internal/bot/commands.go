package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tradebot/internal/decision"
	"tradebot/internal/logger"
	"tradebot/internal/notifier"
	"tradebot/internal/strategy"
)

// Bot implements notifier.CommandHandler: on-demand operator commands run
// against the same pipeline as scheduled cycles but never execute trades.

// Analyze runs a read-only analysis of one symbol. It takes the same cycle
// guard as the scheduler so it never races an in-flight cycle.
func (b *Bot) Analyze(ctx context.Context, symbol string) string {
	if !b.state.TryBeginManual() {
		return "analysis cycle in flight, try again in a moment"
	}
	defer b.state.EndManual()

	params, err := b.params.Load()
	if err != nil {
		params = strategy.Defaults()
	}
	res, snap, err := b.evaluate(ctx, symbol, params)
	if err != nil {
		return fmt.Sprintf("analysis of %s failed: %v", symbol, err)
	}
	if res.NoData {
		return fmt.Sprintf("%s: no provider produced data", symbol)
	}
	action, tier := decision.Decide(res.Composite, params)

	var sb strings.Builder
	fmt.Fprintf(&sb, "*%s* @ %.2f\nscore %d -> %s (%s)\n", symbol, snap.Price, res.Composite, action, tier)
	if len(res.BuyFactors) > 0 {
		fmt.Fprintf(&sb, "bullish: %s\n", strings.Join(res.BuyFactors, ", "))
	}
	if len(res.SellFactors) > 0 {
		fmt.Fprintf(&sb, "bearish: %s\n", strings.Join(res.SellFactors, ", "))
	}
	return strings.TrimSpace(sb.String())
}

// Status reports the runtime state.
func (b *Bot) Status() string {
	cfg := b.cfg.Snapshot()
	paused := "running"
	if b.state.Paused() {
		paused = "paused"
	}
	last := "never"
	if t := b.state.LastRunAt(); !t.IsZero() {
		last = t.Format("15:04:05")
	}
	return fmt.Sprintf("*Status*: %s\nmode %s, %d symbols\nlast cycle %s, %d skipped ticks\nopen positions %d\nbalance %.2f\ndaily P&L %+.2f",
		paused, cfg.Trading.Mode, len(cfg.Trading.Symbols), last,
		b.state.SkippedTicks(), b.book.Len(), b.Capital(), b.riskMgr.DailyPnL())
}

func (b *Bot) Pause() string {
	b.state.Pause()
	logger.Infof("paused by operator command")
	return "trading paused"
}

func (b *Bot) Resume() string {
	b.state.Resume()
	logger.Infof("resumed by operator command")
	return "trading resumed"
}

func (b *Bot) Silence(d time.Duration) string {
	until := time.Now().Add(d)
	b.state.SilenceUntil(until)
	return fmt.Sprintf("notifications silenced until %s", until.Format("15:04"))
}

// SilencedNotifier suppresses pushes while the state's silence window is
// active. Command replies bypass it by holding the inner notifier directly.
type SilencedNotifier struct {
	Inner notifier.Notifier
	State *State
}

func (s SilencedNotifier) Push(text string) error {
	if s.State.Silenced(time.Now()) {
		return nil
	}
	return s.Inner.Push(text)
}
