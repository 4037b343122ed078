package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tradebot/internal/config"
	"tradebot/internal/control"
	"tradebot/internal/executor"
	"tradebot/internal/gateway"
	"tradebot/internal/ledger"
	"tradebot/internal/logger"
	"tradebot/internal/market"
	"tradebot/internal/notifier"
	"tradebot/internal/position"
	"tradebot/internal/risk"
	"tradebot/internal/signal"
	"tradebot/internal/strategy"
)

const controlPollInterval = 5 * time.Second

// Bot is the top-level control loop. It owns the tick scheduling, the control
// surface, the maintenance timers and the per-cycle pipeline; everything else
// is injected.
type Bot struct {
	cfg        *config.Manager
	params     strategy.Store
	history    market.HistorySource
	aggregator *signal.Aggregator
	sizer      *risk.Sizer
	commission risk.Model
	riskMgr    *risk.Manager
	exec       *executor.Executor
	monitor    *position.Monitor
	book       *position.Book
	snapshots  *position.SnapshotStore
	ledgerDB   *ledger.Store
	gw         gateway.Gateway
	notify     notifier.Notifier
	controls   control.Source
	tuner      *Tuner
	state      *State

	consecFailures int
	lastReportDay  string

	balanceMu sync.Mutex
	balance   float64
}

// Deps bundles the collaborators the Bot needs.
type Deps struct {
	Config     *config.Manager
	Params     strategy.Store
	History    market.HistorySource
	Aggregator *signal.Aggregator
	Sizer      *risk.Sizer
	Commission risk.Model
	RiskMgr    *risk.Manager
	Executor   *executor.Executor
	Monitor    *position.Monitor
	Book       *position.Book
	Snapshots  *position.SnapshotStore
	Ledger     *ledger.Store
	Gateway    gateway.Gateway
	Notifier   notifier.Notifier
	Controls   control.Source
	Tuner      *Tuner
	State      *State
}

func New(d Deps) *Bot {
	b := &Bot{
		cfg:        d.Config,
		params:     d.Params,
		history:    d.History,
		aggregator: d.Aggregator,
		sizer:      d.Sizer,
		commission: d.Commission,
		riskMgr:    d.RiskMgr,
		exec:       d.Executor,
		monitor:    d.Monitor,
		book:       d.Book,
		snapshots:  d.Snapshots,
		ledgerDB:   d.Ledger,
		gw:         d.Gateway,
		notify:     d.Notifier,
		controls:   d.Controls,
		tuner:      d.Tuner,
		state:      d.State,
	}
	b.balance = d.Config.Snapshot().Trading.InitialCapital
	return b
}

// Capital returns the last known available balance.
func (b *Bot) Capital() float64 {
	b.balanceMu.Lock()
	defer b.balanceMu.Unlock()
	return b.balance
}

// Run drives the bot until the context is canceled, a stop signal arrives, or
// the consecutive-failure ceiling is hit. It restores persisted positions
// before the first tick and drains cleanly on the way out.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.restorePositions(ctx); err != nil {
		logger.Warnf("position restore failed: %v", err)
	}

	cfg := b.cfg.Snapshot()
	cycleTicker := time.NewTicker(cfg.Scheduler.Interval())
	defer cycleTicker.Stop()
	controlTicker := time.NewTicker(controlPollInterval)
	defer controlTicker.Stop()
	balanceTicker := time.NewTicker(minutes(cfg.Scheduler.BalanceRefreshMinutes, 60))
	defer balanceTicker.Stop()
	portfolioTicker := time.NewTicker(minutes(cfg.Scheduler.PortfolioSyncMinutes, 360))
	defer portfolioTicker.Stop()
	pnlTicker := time.NewTicker(minutes(cfg.Scheduler.PnLRefreshMinutes, 30))
	defer pnlTicker.Stop()
	adaptiveTicker := time.NewTicker(minutes(cfg.Scheduler.AdaptiveMinutes, 720))
	defer adaptiveTicker.Stop()
	reportTicker := time.NewTicker(time.Minute)
	defer reportTicker.Stop()

	logger.Infof("bot started: mode=%s symbols=%v interval=%s",
		cfg.Trading.Mode, cfg.Trading.Symbols, cfg.Scheduler.Interval())

	// One immediate cycle so a restart doesn't wait a full interval.
	b.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return b.shutdown(context.Background(), "context canceled")
		case <-cycleTicker.C:
			b.tick(ctx)
			if max := b.cfg.Snapshot().Scheduler.MaxConsecutiveFailures; max > 0 && b.consecFailures >= max {
				b.pushf("bot stopping: %d consecutive cycle failures", b.consecFailures)
				return b.shutdown(context.Background(), "consecutive failure ceiling")
			}
		case <-controlTicker.C:
			if stop := b.pollControls(); stop {
				return b.shutdown(context.Background(), "stop signal")
			}
		case <-balanceTicker.C:
			b.refreshBalance(ctx)
		case <-portfolioTicker.C:
			b.resyncPortfolio(ctx)
		case <-pnlTicker.C:
			b.refreshPnL(ctx)
		case <-adaptiveTicker.C:
			if err := b.tuner.Adapt(ctx); err != nil {
				logger.Warnf("adaptive pass failed: %v", err)
			}
		case <-reportTicker.C:
			b.maybeDailyReport(ctx)
		}
	}
}

// tick runs one guarded cycle and tracks the failure streak.
func (b *Bot) tick(ctx context.Context) {
	if err := b.runCycle(ctx); err != nil {
		b.consecFailures++
		logger.Errorf("cycle failed (%d in a row): %v", b.consecFailures, err)
		return
	}
	b.consecFailures = 0
}

// pollControls consumes pending control signals. Returns true on stop.
func (b *Bot) pollControls() bool {
	signals, err := b.controls.Poll()
	if err != nil {
		logger.Warnf("control poll failed: %v", err)
		return false
	}
	for _, sig := range signals {
		logger.Infof("control signal: %s", sig.Command)
		switch sig.Command {
		case control.Stop:
			return true
		case control.Restart:
			b.consecFailures = 0
			b.state.Resume()
			b.pushf("bot restarted: counters reset, trading resumed")
		case control.Pause:
			b.state.Pause()
			b.pushf("trading paused")
		case control.Resume:
			b.state.Resume()
			b.pushf("trading resumed")
		case control.Silence:
			b.state.SilenceUntil(sig.Until)
			logger.Infof("notifications silenced until %s", sig.Until.Format(time.RFC3339))
		}
	}
	return false
}

// shutdown persists the open-position snapshot and waits for an in-flight
// cycle to drain.
func (b *Bot) shutdown(ctx context.Context, reason string) error {
	logger.Infof("shutting down: %s", reason)

	// Block until any running cycle finishes, then hold the lock so no new
	// cycle can start while we persist.
	b.state.cycleMu.Lock()
	defer b.state.cycleMu.Unlock()

	if err := b.snapshots.Save(ctx, b.book.List()); err != nil {
		logger.Errorf("final position snapshot failed: %v", err)
		return fmt.Errorf("persist positions: %w", err)
	}
	logger.Infof("bot stopped: %d positions persisted, %d skipped ticks", b.book.Len(), b.state.SkippedTicks())
	return nil
}

func (b *Bot) restorePositions(ctx context.Context) error {
	positions, err := b.snapshots.Load(ctx)
	if err != nil {
		return err
	}
	if len(positions) == 0 {
		return nil
	}
	b.book.Replace(positions)
	logger.Infof("restored %d open positions", len(positions))
	return nil
}

// pushf sends an operator notification unless silenced.
func (b *Bot) pushf(format string, args ...any) {
	if b.state.Silenced(time.Now()) {
		return
	}
	if err := b.notify.Push(fmt.Sprintf(format, args...)); err != nil {
		logger.Warnf("notification failed: %v", err)
	}
}

func minutes(n, fallback int) time.Duration {
	if n <= 0 {
		n = fallback
	}
	return time.Duration(n) * time.Minute
}
