package risk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"tradebot/internal/config"
)

func managerCfg() config.RiskConfig {
	return config.RiskConfig{
		MaxDailyTrades:       2,
		MaxDailyLossPct:      0.02,
		MaxConsecutiveLosses: 3,
	}
}

func TestManagerTradeCap(t *testing.T) {
	m := NewManager(managerCfg())

	ok, _ := m.Allow(10000)
	assert.True(t, ok)
	m.RecordTrade()
	m.RecordTrade()

	ok, reason := m.Allow(10000)
	assert.False(t, ok)
	assert.Contains(t, reason, "trade cap")
}

func TestManagerLossCap(t *testing.T) {
	m := NewManager(managerCfg())

	m.RecordOutcome(-150)
	ok, _ := m.Allow(10000)
	assert.True(t, ok)

	m.RecordOutcome(-60) // total -210 against a 200 cap
	ok, reason := m.Allow(10000)
	assert.False(t, ok)
	assert.Contains(t, reason, "loss cap")
}

func TestManagerConsecutiveLosses(t *testing.T) {
	m := NewManager(managerCfg())

	m.RecordOutcome(-1)
	m.RecordOutcome(-1)
	ok, _ := m.Allow(1e9)
	assert.True(t, ok)

	m.RecordOutcome(-1)
	ok, reason := m.Allow(1e9)
	assert.False(t, ok)
	assert.Contains(t, reason, "consecutive")

	// A win resets the streak.
	m.RecordOutcome(5)
	ok, _ = m.Allow(1e9)
	assert.True(t, ok)
}

func TestManagerDailyReset(t *testing.T) {
	m := NewManager(managerCfg())
	day := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return day }

	m.RecordTrade()
	m.RecordTrade()
	m.RecordOutcome(-500)
	ok, _ := m.Allow(10000)
	assert.False(t, ok)

	day = day.AddDate(0, 0, 1)
	ok, _ = m.Allow(10000)
	assert.True(t, ok)
	assert.Zero(t, m.DailyPnL())
}
