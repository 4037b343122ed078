package risk

import (
	"fmt"
	"sync"
	"time"

	"tradebot/internal/config"
)

// Manager enforces the daily circuit breakers: trade count, realized loss as
// a fraction of capital, and consecutive losing trades. Counters reset at
// local midnight; the consecutive-loss streak resets on any winning trade.
type Manager struct {
	cfg config.RiskConfig
	now func() time.Time

	mu           sync.Mutex
	day          string
	trades       int
	realizedPnL  float64
	consecLosses int
}

func NewManager(cfg config.RiskConfig) *Manager {
	return &Manager{cfg: cfg, now: time.Now}
}

// Allow reports whether a new trade may be opened given today's counters.
func (m *Manager) Allow(capital float64) (bool, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rollover()

	if m.cfg.MaxDailyTrades > 0 && m.trades >= m.cfg.MaxDailyTrades {
		return false, fmt.Sprintf("daily trade cap reached (%d)", m.cfg.MaxDailyTrades)
	}
	if m.cfg.MaxDailyLossPct > 0 && capital > 0 {
		maxLoss := capital * m.cfg.MaxDailyLossPct
		if -m.realizedPnL >= maxLoss {
			return false, fmt.Sprintf("daily loss cap reached (%.2f of %.2f)", -m.realizedPnL, maxLoss)
		}
	}
	if m.cfg.MaxConsecutiveLosses > 0 && m.consecLosses >= m.cfg.MaxConsecutiveLosses {
		return false, fmt.Sprintf("%d consecutive losses", m.consecLosses)
	}
	return true, ""
}

// RecordTrade counts an opened trade against the daily cap.
func (m *Manager) RecordTrade() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rollover()
	m.trades++
}

// RecordOutcome folds a realized net P&L into today's counters.
func (m *Manager) RecordOutcome(netPnL float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rollover()
	m.realizedPnL += netPnL
	if netPnL < 0 {
		m.consecLosses++
	} else {
		m.consecLosses = 0
	}
}

// DailyPnL returns today's realized net P&L.
func (m *Manager) DailyPnL() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rollover()
	return m.realizedPnL
}

func (m *Manager) rollover() {
	today := m.now().Format("2006-01-02")
	if m.day != today {
		m.day = today
		m.trades = 0
		m.realizedPnL = 0
		m.consecLosses = 0
	}
}
