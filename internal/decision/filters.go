package decision

import (
	"fmt"
	"time"

	"tradebot/internal/analysis"
	"tradebot/internal/config"
)

// SessionFilter downgrades decided BUY and SELL signals outside the
// configured local-time window. Protective exits from the position monitor
// are not routed through it.
type SessionFilter struct {
	cfg config.SessionConfig
}

func NewSessionFilter(cfg config.SessionConfig) *SessionFilter {
	return &SessionFilter{cfg: cfg}
}

// Allow reports whether a decided trade at t falls inside the window. The
// window is inclusive on both ends; a malformed config falls open rather than
// silently blocking all trading.
func (f *SessionFilter) Allow(t time.Time) (bool, string) {
	if !f.cfg.Enabled {
		return true, ""
	}
	if f.cfg.SkipWeekends {
		switch t.Weekday() {
		case time.Saturday, time.Sunday:
			return false, "weekend"
		}
	}
	sh, sm, err := config.ParseClock(f.cfg.Start)
	if err != nil {
		return true, ""
	}
	eh, em, err := config.ParseClock(f.cfg.End)
	if err != nil {
		return true, ""
	}
	minutes := t.Hour()*60 + t.Minute()
	start := sh*60 + sm
	end := eh*60 + em
	if minutes < start || minutes > end {
		return false, fmt.Sprintf("outside session %s-%s", f.cfg.Start, f.cfg.End)
	}
	return true, ""
}

// EntryFilter is the quality gate applied to decided signals after
// thresholding.
// Each check passes by default when its indicator is absent: missing data
// downgrades nothing, it only removes the ability to veto.
type EntryFilter struct {
	cfg config.EntryConfig
}

func NewEntryFilter(cfg config.EntryConfig) *EntryFilter {
	return &EntryFilter{cfg: cfg}
}

// Check returns false with a reason when the snapshot fails any enabled band.
// A nil snapshot passes: the filter never blocks on missing context.
func (f *EntryFilter) Check(snap *analysis.Snapshot) (bool, string) {
	if !f.cfg.Enabled || snap == nil {
		return true, ""
	}
	if snap.HasRSI {
		if snap.RSI < f.cfg.MinRSI {
			return false, fmt.Sprintf("RSI %.1f below entry band %.0f", snap.RSI, f.cfg.MinRSI)
		}
		if snap.RSI > f.cfg.MaxRSI {
			return false, fmt.Sprintf("RSI %.1f above entry band %.0f", snap.RSI, f.cfg.MaxRSI)
		}
	}
	if snap.HasVolumeRatio && snap.VolumeRatio < f.cfg.MinVolumeRatio {
		return false, fmt.Sprintf("volume ratio %.2f below %.2f", snap.VolumeRatio, f.cfg.MinVolumeRatio)
	}
	if f.cfg.RequireTrendConfirm && snap.HasSMA20 && snap.Price < snap.SMA20 {
		return false, fmt.Sprintf("price %.2f below SMA20 %.2f", snap.Price, snap.SMA20)
	}
	if snap.HasATR && snap.Price > 0 {
		pct := snap.ATRPct()
		if pct < f.cfg.MinATRPct {
			return false, fmt.Sprintf("ATR %.2f%% below volatility floor %.2f%%", pct, f.cfg.MinATRPct)
		}
		if pct > f.cfg.MaxATRPct {
			return false, fmt.Sprintf("ATR %.2f%% above volatility ceiling %.2f%%", pct, f.cfg.MaxATRPct)
		}
	}
	return true, ""
}
