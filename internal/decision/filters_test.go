package decision

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"tradebot/internal/analysis"
	"tradebot/internal/config"
)

func sessionCfg() config.SessionConfig {
	return config.SessionConfig{Enabled: true, Start: "11:00", End: "17:00", SkipWeekends: true}
}

func TestSessionFilterWindow(t *testing.T) {
	f := NewSessionFilter(sessionCfg())

	// Monday inside the window.
	ok, _ := f.Allow(time.Date(2025, 6, 2, 12, 30, 0, 0, time.Local))
	assert.True(t, ok)

	// Boundaries are inclusive.
	ok, _ = f.Allow(time.Date(2025, 6, 2, 11, 0, 0, 0, time.Local))
	assert.True(t, ok)
	ok, _ = f.Allow(time.Date(2025, 6, 2, 17, 0, 0, 0, time.Local))
	assert.True(t, ok)

	ok, reason := f.Allow(time.Date(2025, 6, 2, 10, 59, 0, 0, time.Local))
	assert.False(t, ok)
	assert.Contains(t, reason, "session")

	ok, _ = f.Allow(time.Date(2025, 6, 2, 17, 1, 0, 0, time.Local))
	assert.False(t, ok)
}

func TestSessionFilterWeekend(t *testing.T) {
	f := NewSessionFilter(sessionCfg())
	ok, reason := f.Allow(time.Date(2025, 6, 7, 12, 0, 0, 0, time.Local)) // Saturday
	assert.False(t, ok)
	assert.Equal(t, "weekend", reason)
}

func TestSessionFilterDisabled(t *testing.T) {
	cfg := sessionCfg()
	cfg.Enabled = false
	f := NewSessionFilter(cfg)
	ok, _ := f.Allow(time.Date(2025, 6, 7, 3, 0, 0, 0, time.Local))
	assert.True(t, ok)
}

func entryCfg() config.EntryConfig {
	return config.EntryConfig{
		Enabled:             true,
		MinRSI:              30,
		MaxRSI:              70,
		MinVolumeRatio:      1.0,
		RequireTrendConfirm: true,
		MinATRPct:           0.5,
		MaxATRPct:           5.0,
	}
}

func healthySnapshot() *analysis.Snapshot {
	return &analysis.Snapshot{
		Symbol: "GGAL", Price: 100,
		RSI: 55, HasRSI: true,
		SMA20: 95, HasSMA20: true,
		ATR: 2, HasATR: true,
		VolumeRatio: 1.4, HasVolumeRatio: true,
	}
}

func TestEntryFilterPass(t *testing.T) {
	f := NewEntryFilter(entryCfg())
	ok, reason := f.Check(healthySnapshot())
	assert.True(t, ok, reason)
}

func TestEntryFilterRSIBand(t *testing.T) {
	f := NewEntryFilter(entryCfg())

	snap := healthySnapshot()
	snap.RSI = 75
	ok, reason := f.Check(snap)
	assert.False(t, ok)
	assert.Contains(t, reason, "RSI")

	snap.RSI = 25
	ok, _ = f.Check(snap)
	assert.False(t, ok)
}

func TestEntryFilterVolume(t *testing.T) {
	f := NewEntryFilter(entryCfg())
	snap := healthySnapshot()
	snap.VolumeRatio = 0.6
	ok, reason := f.Check(snap)
	assert.False(t, ok)
	assert.Contains(t, reason, "volume")
}

func TestEntryFilterTrend(t *testing.T) {
	f := NewEntryFilter(entryCfg())
	snap := healthySnapshot()
	snap.SMA20 = 110
	ok, reason := f.Check(snap)
	assert.False(t, ok)
	assert.Contains(t, reason, "SMA20")
}

func TestEntryFilterATRBand(t *testing.T) {
	f := NewEntryFilter(entryCfg())

	snap := healthySnapshot()
	snap.ATR = 0.2 // 0.2% of price
	ok, _ := f.Check(snap)
	assert.False(t, ok)

	snap.ATR = 8 // 8%
	ok, _ = f.Check(snap)
	assert.False(t, ok)
}

func TestEntryFilterMissingDataPasses(t *testing.T) {
	f := NewEntryFilter(entryCfg())

	ok, _ := f.Check(nil)
	assert.True(t, ok, "no snapshot never blocks")

	// Only price known: every band passes by default.
	ok, _ = f.Check(&analysis.Snapshot{Symbol: "GGAL", Price: 100})
	assert.True(t, ok)
}
