package config

import "time"

// Config is the main configuration carrier for the bot. All values are
// hot-reloadable: callers take a Snapshot from the Manager at the start of
// every cycle instead of holding a Config for process lifetime.
type Config struct {
	App        AppConfig        `toml:"app"`
	Trading    TradingConfig    `toml:"trading"`
	Risk       RiskConfig       `toml:"risk"`
	Session    SessionConfig    `toml:"session"`
	Entry      EntryConfig      `toml:"entry"`
	Commission CommissionConfig `toml:"commission"`
	Scheduler  SchedulerConfig  `toml:"scheduler"`
	Gateway    GatewayConfig    `toml:"gateway"`
	Notify     NotifyConfig     `toml:"notify"`
	Store      StoreConfig      `toml:"store"`
	Control    ControlConfig    `toml:"control"`
}

type AppConfig struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`
	LogPath  string `toml:"log_path"`
}

// TradingConfig selects paper vs live execution and the symbol universe.
type TradingConfig struct {
	Mode           string   `toml:"mode"` // "paper" | "live"
	Symbols        []string `toml:"symbols"`
	InitialCapital float64  `toml:"initial_capital"`
}

func (t TradingConfig) Paper() bool { return t.Mode != "live" }

type RiskConfig struct {
	StopLossATRMultiplier   float64 `toml:"stop_loss_atr_multiplier"`
	TakeProfitATRMultiplier float64 `toml:"take_profit_atr_multiplier"`
	MaxDailyTrades          int     `toml:"max_daily_trades"`
	MaxDailyLossPct         float64 `toml:"max_daily_loss_pct"`
	MaxConsecutiveLosses    int     `toml:"max_consecutive_losses"`
	TrailActivationPct      float64 `toml:"trail_activation_pct"`
	TrailPct                float64 `toml:"trail_pct"`
}

// SessionConfig bounds entries to a local-time trading window.
type SessionConfig struct {
	Enabled      bool   `toml:"enabled"`
	Start        string `toml:"start"` // "11:00"
	End          string `toml:"end"`   // "17:00"
	SkipWeekends bool   `toml:"skip_weekends"`
}

// EntryConfig holds the entry-quality filter bands.
type EntryConfig struct {
	Enabled             bool    `toml:"enabled"`
	MinRSI              float64 `toml:"min_rsi"`
	MaxRSI              float64 `toml:"max_rsi"`
	MinVolumeRatio      float64 `toml:"min_volume_ratio"`
	RequireTrendConfirm bool    `toml:"require_trend_confirmation"`
	MinATRPct           float64 `toml:"min_atr_pct"`
	MaxATRPct           float64 `toml:"max_atr_pct"`
}

type CommissionConfig struct {
	Rate    float64 `toml:"rate"`    // per-side fraction, e.g. 0.006
	Minimum float64 `toml:"minimum"` // per-side floor in account currency
}

type SchedulerConfig struct {
	IntervalMinutes        int `toml:"interval_minutes"`
	MaxConsecutiveFailures int `toml:"max_consecutive_failures"`
	BalanceRefreshMinutes  int `toml:"balance_refresh_minutes"`
	PortfolioSyncMinutes   int `toml:"portfolio_sync_minutes"`
	PnLRefreshMinutes      int `toml:"pnl_refresh_minutes"`
	AdaptiveMinutes        int `toml:"adaptive_minutes"`
	DailyReportHour        int `toml:"daily_report_hour"`
}

func (s SchedulerConfig) Interval() time.Duration {
	return time.Duration(s.IntervalMinutes) * time.Minute
}

type GatewayConfig struct {
	BaseURL        string `toml:"base_url"`
	Token          string `toml:"token"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

func (g GatewayConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutSeconds) * time.Second
}

type NotifyConfig struct {
	Telegram TelegramConfig `toml:"telegram"`
}

type TelegramConfig struct {
	Enabled  bool   `toml:"enabled"`
	BotToken string `toml:"bot_token"`
	ChatID   string `toml:"chat_id"`
}

type StoreConfig struct {
	LedgerPath    string `toml:"ledger_path"`
	BackupPath    string `toml:"backup_path"`
	ParamsPath    string `toml:"params_path"`
	PortfolioPath string `toml:"portfolio_path"`
}

// ControlConfig points at the sentinel directory polled by the scheduler.
type ControlConfig struct {
	Dir string `toml:"dir"`
}
