package bot

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradebot/internal/config"
	"tradebot/internal/control"
	"tradebot/internal/executor"
	"tradebot/internal/gateway"
	"tradebot/internal/ledger"
	"tradebot/internal/market"
	"tradebot/internal/position"
	"tradebot/internal/risk"
	"tradebot/internal/signal"
	"tradebot/internal/strategy"
)

type countingNotifier struct {
	mu    sync.Mutex
	texts []string
}

func (n *countingNotifier) Push(text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.texts = append(n.texts, text)
	return nil
}

func (n *countingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.texts)
}

// flatHistory serves synthetic daily candles around a base price.
type flatHistory struct{ base float64 }

func (h flatHistory) History(_ context.Context, _ string, days int) ([]market.Candle, error) {
	if days < 60 {
		days = 60
	}
	candles := make([]market.Candle, days)
	start := time.Now().AddDate(0, 0, -days)
	for i := range candles {
		drift := float64(i) * 0.2
		candles[i] = market.Candle{
			OpenTime:  start.AddDate(0, 0, i),
			CloseTime: start.AddDate(0, 0, i+1),
			Open:      h.base + drift,
			High:      h.base + drift + 2,
			Low:       h.base + drift - 2,
			Close:     h.base + drift + 1,
			Volume:    1000 + float64(i%7)*50,
		}
	}
	return candles, nil
}

// fixedProvider always votes the same score.
type fixedProvider struct {
	name  string
	score int
}

func (p fixedProvider) Name() string { return p.name }

func (p fixedProvider) Evaluate(context.Context, signal.Context) (*signal.Contribution, error) {
	return &signal.Contribution{Source: p.name, Score: p.score, Rationale: "Fixed"}, nil
}

type botHarness struct {
	bot      *Bot
	store    *ledger.Store
	notifier *countingNotifier
	gw       *gateway.Paper
	book     *position.Book
}

func writeTestConfig(t *testing.T, dir, extra string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	data := []byte(`
trading:
  mode: paper
  symbols: [GGAL]
  initial_capital: 10000
store:
  ledger_path: ` + filepath.Join(dir, "ledger.db") + `
` + extra)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func newBotHarness(t *testing.T, score int) *botHarness {
	return newBotHarnessConfig(t, score, "")
}

func newBotHarnessConfig(t *testing.T, score int, extra string) *botHarness {
	t.Helper()
	dir := t.TempDir()

	mgr, err := config.NewManager(writeTestConfig(t, dir, extra))
	require.NoError(t, err)

	store, err := ledger.NewStore(filepath.Join(dir, "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	snapshots, err := position.OpenSnapshotStore(filepath.Join(dir, "portfolio.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = snapshots.Close() })

	params, err := strategy.NewFileStore(filepath.Join(dir, "params.yaml"))
	require.NoError(t, err)

	registry := signal.NewRegistry()
	require.NoError(t, registry.Register(fixedProvider{name: "fixed", score: score}))

	cfg := mgr.Snapshot()
	gw := gateway.NewPaper(cfg.Trading.InitialCapital)
	gw.SetQuote("GGAL", 100)
	book := position.NewBook()
	notify := &countingNotifier{}
	state := NewState()
	riskMgr := risk.NewManager(cfg.Risk)
	commission := risk.NewFixedRate(config.CommissionConfig{Rate: 0.001})

	var capitalFn func() float64
	exec := executor.New(true, gw, ledger.NewWriter(store, nil), store, riskMgr, commission,
		book, SilencedNotifier{Inner: notify, State: state},
		state.Paused, func() float64 { return capitalFn() })

	monitor := position.NewMonitor(book, gw, exec,
		position.TrailingConfig{ActivationPct: cfg.Risk.TrailActivationPct, TrailPct: cfg.Risk.TrailPct},
		cfg.Risk.StopLossATRMultiplier)

	b := New(Deps{
		Config:     mgr,
		Params:     params,
		History:    flatHistory{base: 100},
		Aggregator: signal.NewAggregator(registry),
		Sizer:      risk.NewSizer(cfg.Risk),
		Commission: commission,
		RiskMgr:    riskMgr,
		Executor:   exec,
		Monitor:    monitor,
		Book:       book,
		Snapshots:  snapshots,
		Ledger:     store,
		Gateway:    gw,
		Notifier:   SilencedNotifier{Inner: notify, State: state},
		Controls:   nopControls{},
		Tuner:      NewTuner(store, params),
		State:      state,
	})
	capitalFn = b.Capital
	return &botHarness{bot: b, store: store, notifier: notify, gw: gw, book: book}
}

type nopControls struct{}

func (nopControls) Poll() ([]control.Signal, error) { return nil, nil }

func (h *botHarness) ledgerCount(t *testing.T) int {
	t.Helper()
	n := 0
	require.NoError(t, h.store.ScanBackward(context.Background(), "GGAL", func(*ledger.Record) error {
		n++
		return nil
	}))
	return n
}

func TestCycleBuysOnStrongSignal(t *testing.T) {
	h := newBotHarness(t, 60)
	require.NoError(t, h.bot.runCycle(context.Background()))

	assert.Equal(t, 1, h.ledgerCount(t), "one FILLED BUY recorded")
	pos, ok := h.book.Get("GGAL")
	require.True(t, ok)
	assert.Positive(t, pos.Quantity)
	assert.Positive(t, pos.StopLoss)
	assert.Equal(t, 1, h.notifier.count(), "fill notification sent")
}

func TestCycleHoldsOnWeakSignal(t *testing.T) {
	h := newBotHarness(t, 10)
	require.NoError(t, h.bot.runCycle(context.Background()))

	assert.Zero(t, h.ledgerCount(t))
	assert.Zero(t, h.book.Len())
	assert.Zero(t, h.notifier.count())
}

func TestSkippedTickWritesNothing(t *testing.T) {
	h := newBotHarness(t, 60)

	// Simulate an in-flight cycle by holding the lock.
	require.True(t, h.bot.state.TryBeginCycle())
	defer h.bot.state.EndCycle()

	require.NoError(t, h.bot.runCycle(context.Background()))

	assert.Equal(t, 1, h.bot.state.SkippedTicks())
	assert.Zero(t, h.ledgerCount(t), "skipped tick must write nothing")
	assert.Zero(t, h.notifier.count(), "skipped tick must notify nothing")
}

func TestSilenceSuppressesNotifications(t *testing.T) {
	h := newBotHarness(t, 60)
	h.bot.state.SilenceUntil(time.Now().Add(time.Hour))

	require.NoError(t, h.bot.runCycle(context.Background()))
	assert.Equal(t, 1, h.ledgerCount(t), "trading continues while silenced")
	assert.Zero(t, h.notifier.count())
}

func TestPausedCycleRecordsPaused(t *testing.T) {
	h := newBotHarness(t, 60)
	h.bot.state.Pause()

	require.NoError(t, h.bot.runCycle(context.Background()))

	var statuses []ledger.Status
	require.NoError(t, h.store.ScanBackward(context.Background(), "GGAL", func(r *ledger.Record) error {
		statuses = append(statuses, r.Status)
		return nil
	}))
	require.Len(t, statuses, 1)
	assert.Equal(t, ledger.StatusPaused, statuses[0])
	assert.Zero(t, h.book.Len())
}

func TestSellSignalRespectsFilters(t *testing.T) {
	// With the entry filter disabled the decided SELL closes the position.
	h := newBotHarnessConfig(t, -60, "")
	h.book.Add("GGAL", 5, 100, 90, 150)
	require.NoError(t, h.bot.runCycle(context.Background()))
	assert.Equal(t, 1, h.ledgerCount(t), "unfiltered sell signal executes")
	assert.Zero(t, h.book.Len())

	// An impossible volume band downgrades the same SELL to HOLD.
	h = newBotHarnessConfig(t, -60, `
entry:
  enabled: true
  min_volume_ratio: 1000
`)
	h.book.Add("GGAL", 5, 100, 90, 150)
	require.NoError(t, h.bot.runCycle(context.Background()))
	assert.Zero(t, h.ledgerCount(t), "filtered sell signal must not trade")
	assert.Equal(t, 1, h.book.Len(), "position stays open")
}

type panicHistory struct{}

func (panicHistory) History(context.Context, string, int) ([]market.Candle, error) {
	panic("candle feed corrupted")
}

func TestCyclePanicIsContained(t *testing.T) {
	h := newBotHarness(t, 60)
	h.bot.history = panicHistory{}

	err := h.bot.runCycle(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic")

	// The guard must be released so the next tick can run.
	h.bot.history = flatHistory{base: 100}
	require.NoError(t, h.bot.runCycle(context.Background()))
}

func TestAnalyzeRespectsCycleGuard(t *testing.T) {
	h := newBotHarness(t, 60)

	require.True(t, h.bot.state.TryBeginCycle())
	out := h.bot.Analyze(context.Background(), "GGAL")
	assert.Contains(t, out, "in flight")
	h.bot.state.EndCycle()

	out = h.bot.Analyze(context.Background(), "GGAL")
	assert.Contains(t, out, "BUY")
	assert.Zero(t, h.ledgerCount(t))
}

func TestStatusCommand(t *testing.T) {
	h := newBotHarness(t, 10)
	out := h.bot.Status()
	assert.Contains(t, out, "running")
	assert.Contains(t, out, "paper")

	h.bot.Pause()
	assert.Contains(t, h.bot.Status(), "paused")
}

func TestAnalyzeCommandReadOnly(t *testing.T) {
	h := newBotHarness(t, 60)
	out := h.bot.Analyze(context.Background(), "GGAL")
	assert.Contains(t, out, "GGAL")
	assert.Contains(t, out, "BUY")
	assert.Zero(t, h.ledgerCount(t), "analyze must not trade")
}
