package app

import (
	"context"
	"fmt"

	"tradebot/internal/analysis"
	"tradebot/internal/bot"
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
	"tradebot/internal/signal/providers"
	"tradebot/internal/strategy"
)

// App owns construction and lifetime of every component. Wiring lives here so
// the bot package stays testable with hand-built dependencies.
type App struct {
	cfgMgr    *config.Manager
	bot       *bot.Bot
	listener  *notifier.CommandListener
	ledgerDB  *ledger.Store
	snapshots *position.SnapshotStore
}

func NewApp(cfgMgr *config.Manager) (*App, error) {
	cfg := cfgMgr.Snapshot()

	ledgerDB, err := ledger.NewStore(cfg.Store.LedgerPath)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	writer := ledger.NewWriter(ledgerDB, ledger.NewBackup(cfg.Store.BackupPath))

	snapshots, err := position.OpenSnapshotStore(cfg.Store.PortfolioPath)
	if err != nil {
		ledgerDB.Close()
		return nil, fmt.Errorf("open portfolio store: %w", err)
	}

	params, err := strategy.NewFileStore(cfg.Store.ParamsPath)
	if err != nil {
		ledgerDB.Close()
		snapshots.Close()
		return nil, err
	}

	gw, history, err := buildGateway(cfg)
	if err != nil {
		ledgerDB.Close()
		snapshots.Close()
		return nil, err
	}

	var push notifier.Notifier = notifier.Nop{}
	if cfg.Notify.Telegram.Enabled {
		push = notifier.NewTelegram(cfg.Notify.Telegram)
	}

	state := bot.NewState()
	silenced := bot.SilencedNotifier{Inner: push, State: state}

	registry := signal.NewRegistry()
	for _, p := range []signal.Provider{
		providers.Forecast{},
		providers.Momentum{},
		providers.MACDCross{},
		providers.Trend{},
		providers.Mood{},
		providers.MacroContext{},
	} {
		if err := registry.Register(p); err != nil {
			ledgerDB.Close()
			snapshots.Close()
			return nil, err
		}
	}
	aggregator := signal.NewAggregator(registry).WithReweighter(providers.Regime{})

	riskMgr := risk.NewManager(cfg.Risk)
	commission := risk.NewFixedRate(cfg.Commission)
	book := position.NewBook()

	var theBot *bot.Bot
	exec := executor.New(cfg.Trading.Paper(), gw, writer, ledgerDB, riskMgr, commission,
		book, silenced, state.Paused, func() float64 { return theBot.Capital() })

	monitor := position.NewMonitor(book, gw, exec,
		position.TrailingConfig{ActivationPct: cfg.Risk.TrailActivationPct, TrailPct: cfg.Risk.TrailPct},
		cfg.Risk.StopLossATRMultiplier).
		WithVolatility(atrSource{history: history})

	theBot = bot.New(bot.Deps{
		Config:     cfgMgr,
		Params:     params,
		History:    history,
		Aggregator: aggregator,
		Sizer:      risk.NewSizer(cfg.Risk),
		Commission: commission,
		RiskMgr:    riskMgr,
		Executor:   exec,
		Monitor:    monitor,
		Book:       book,
		Snapshots:  snapshots,
		Ledger:     ledgerDB,
		Gateway:    gw,
		Notifier:   silenced,
		Controls:   control.NewFileSentinel(cfg.Control.Dir),
		Tuner:      bot.NewTuner(ledgerDB, params),
		State:      state,
	})

	app := &App{
		cfgMgr:    cfgMgr,
		bot:       theBot,
		ledgerDB:  ledgerDB,
		snapshots: snapshots,
	}
	if cfg.Notify.Telegram.Enabled {
		app.listener = notifier.NewCommandListener(cfg.Notify.Telegram, push, theBot)
	}
	return app, nil
}

// buildGateway returns the broker gateway and candle source for the mode.
// Market data always comes from the broker API; paper mode only swaps the
// execution side for the simulator.
func buildGateway(cfg config.Config) (gateway.Gateway, market.HistorySource, error) {
	if cfg.Gateway.BaseURL == "" {
		return nil, nil, fmt.Errorf("gateway.base_url is required as the market data source")
	}
	client, err := gateway.NewClient(cfg.Gateway)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Trading.Paper() {
		// Real quotes and history, simulated fills.
		return paperOverlay{Paper: gateway.NewPaper(cfg.Trading.InitialCapital), live: client}, client, nil
	}
	return client, client, nil
}

// atrSource derives an ATR from recent candles for positions restored without
// an explicit stop.
type atrSource struct {
	history market.HistorySource
}

func (s atrSource) ATR(ctx context.Context, symbol string) (float64, bool) {
	candles, err := s.history.History(ctx, symbol, 30)
	if err != nil {
		return 0, false
	}
	snap, err := analysis.Compute(symbol, candles)
	if err != nil || snap == nil || !snap.HasATR {
		return 0, false
	}
	return snap.ATR, true
}

// paperOverlay simulates fills and balances while delegating market data and
// tradability to the real broker.
type paperOverlay struct {
	*gateway.Paper
	live *gateway.Client
}

func (p paperOverlay) Quote(ctx context.Context, symbol string) (float64, error) {
	return p.live.Quote(ctx, symbol)
}

func (p paperOverlay) Tradeable(ctx context.Context, symbol string) (bool, error) {
	return p.live.Tradeable(ctx, symbol)
}

// Run starts the config watcher, the command listener and the bot loop, and
// blocks until the bot exits.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := a.cfgMgr.Watch(ctx); err != nil {
		logger.Warnf("config watch unavailable: %v", err)
	}
	if a.listener != nil {
		go a.listener.Run(ctx)
	}

	err := a.bot.Run(ctx)

	if cerr := a.snapshots.Close(); cerr != nil {
		logger.Warnf("closing portfolio store: %v", cerr)
	}
	if cerr := a.ledgerDB.Close(); cerr != nil {
		logger.Warnf("closing ledger: %v", cerr)
	}
	return err
}
