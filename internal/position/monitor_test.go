package position

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubQuoter struct {
	mu     sync.Mutex
	quotes map[string]float64
	errs   map[string]error
}

func (q *stubQuoter) Quote(_ context.Context, symbol string) (float64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if err := q.errs[symbol]; err != nil {
		return 0, err
	}
	return q.quotes[symbol], nil
}

type recordingExiter struct {
	mu    sync.Mutex
	exits map[string]string
}

func newRecordingExiter() *recordingExiter {
	return &recordingExiter{exits: make(map[string]string)}
}

func (e *recordingExiter) Exit(_ context.Context, pos Position, _ float64, reason string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.exits[pos.Symbol] = reason
	return nil
}

func newTestMonitor(book *Book, q *stubQuoter, e *recordingExiter) *Monitor {
	return NewMonitor(book, q, e, TrailingConfig{ActivationPct: 3, TrailPct: 5}, 1.5)
}

func TestMonitorTakeProfit(t *testing.T) {
	book := NewBook()
	book.Add("GGAL", 10, 100, 95, 120)
	q := &stubQuoter{quotes: map[string]float64{"GGAL": 121}}
	e := newRecordingExiter()

	newTestMonitor(book, q, e).Check(context.Background())
	assert.Equal(t, "take profit", e.exits["GGAL"])
}

func TestMonitorStopLoss(t *testing.T) {
	book := NewBook()
	book.Add("GGAL", 10, 100, 95, 120)
	q := &stubQuoter{quotes: map[string]float64{"GGAL": 94}}
	e := newRecordingExiter()

	newTestMonitor(book, q, e).Check(context.Background())
	assert.Equal(t, "stop loss", e.exits["GGAL"])
}

func TestMonitorTakeProfitBeatsStop(t *testing.T) {
	// Degenerate levels where both would fire: take profit wins.
	book := NewBook()
	book.Add("GGAL", 10, 100, 110, 105)
	q := &stubQuoter{quotes: map[string]float64{"GGAL": 107}}
	e := newRecordingExiter()

	newTestMonitor(book, q, e).Check(context.Background())
	assert.Equal(t, "take profit", e.exits["GGAL"])
}

type stubVolatility struct{ atr float64 }

func (v stubVolatility) ATR(context.Context, string) (float64, bool) { return v.atr, v.atr > 0 }

func TestMonitorVolatilityFallback(t *testing.T) {
	book := NewBook()
	book.Add("GGAL", 10, 100, 0, 0) // no explicit stop
	q := &stubQuoter{quotes: map[string]float64{"GGAL": 94}}
	e := newRecordingExiter()

	m := newTestMonitor(book, q, e).WithVolatility(stubVolatility{atr: 4}) // stop at 94
	m.Check(context.Background())
	assert.Equal(t, "volatility stop", e.exits["GGAL"])
}

func TestMonitorTrailingAcrossChecks(t *testing.T) {
	book := NewBook()
	book.Add("GGAL", 10, 100, 50, 200)
	q := &stubQuoter{quotes: map[string]float64{"GGAL": 110}}
	e := newRecordingExiter()
	m := newTestMonitor(book, q, e)

	m.Check(context.Background())
	assert.Empty(t, e.exits, "activation check does not exit")

	pos, ok := book.Get("GGAL")
	require.True(t, ok)
	assert.True(t, pos.Trailing.Active)

	q.mu.Lock()
	q.quotes["GGAL"] = 104 // below 110*0.95
	q.mu.Unlock()
	m.Check(context.Background())
	assert.Equal(t, "trailing stop", e.exits["GGAL"])
}

func TestMonitorSymbolIsolation(t *testing.T) {
	book := NewBook()
	book.Add("GGAL", 10, 100, 95, 120)
	book.Add("PAMP", 10, 100, 95, 120)
	q := &stubQuoter{
		quotes: map[string]float64{"PAMP": 121},
		errs:   map[string]error{"GGAL": errors.New("quote feed down")},
	}
	e := newRecordingExiter()

	newTestMonitor(book, q, e).Check(context.Background())
	assert.Equal(t, "take profit", e.exits["PAMP"], "one failing symbol must not block the rest")
	_, hasGGAL := e.exits["GGAL"]
	assert.False(t, hasGGAL)
}
