package config

const (
	defaultAppEnv           = "dev"
	defaultAppLogLevel      = "info"
	defaultTradingMode      = "paper"
	defaultInitialCapital   = 100000
	defaultStopATRMult      = 1.5
	defaultTakeATRMult      = 4.0
	defaultMaxDailyTrades   = 10
	defaultMaxDailyLossPct  = 0.02
	defaultMaxConsecLosses  = 3
	defaultTrailActivation  = 3.0
	defaultTrailPct         = 5.0
	defaultSessionStart     = "11:00"
	defaultSessionEnd       = "17:00"
	defaultMinRSI           = 30
	defaultMaxRSI           = 70
	defaultMinVolumeRatio   = 1.0
	defaultMinATRPct        = 0.5
	defaultMaxATRPct        = 5.0
	defaultCommissionRate   = 0.006
	defaultCommissionMin    = 50
	defaultIntervalMinutes  = 60
	defaultMaxConsecFail    = 10
	defaultBalanceRefresh   = 60
	defaultPortfolioSync    = 360
	defaultPnLRefresh       = 30
	defaultAdaptiveMinutes  = 720
	defaultDailyReportHour  = 23
	defaultGatewayTimeout   = 15
	defaultLedgerPath       = "data/ledger.db"
	defaultBackupPath       = "data/ledger.backup.jsonl"
	defaultParamsPath       = "data/strategy_params.yaml"
	defaultPortfolioPath    = "data/portfolio.db"
	defaultControlDir       = "data/control"
)

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = defaultAppEnv
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = defaultAppLogLevel
	}
	if c.Trading.Mode == "" {
		c.Trading.Mode = defaultTradingMode
	}
	if c.Trading.InitialCapital <= 0 {
		c.Trading.InitialCapital = defaultInitialCapital
	}
	if c.Risk.StopLossATRMultiplier <= 0 {
		c.Risk.StopLossATRMultiplier = defaultStopATRMult
	}
	if c.Risk.TakeProfitATRMultiplier <= 0 {
		c.Risk.TakeProfitATRMultiplier = defaultTakeATRMult
	}
	if c.Risk.MaxDailyTrades <= 0 {
		c.Risk.MaxDailyTrades = defaultMaxDailyTrades
	}
	if c.Risk.MaxDailyLossPct <= 0 {
		c.Risk.MaxDailyLossPct = defaultMaxDailyLossPct
	}
	if c.Risk.MaxConsecutiveLosses <= 0 {
		c.Risk.MaxConsecutiveLosses = defaultMaxConsecLosses
	}
	if c.Risk.TrailActivationPct <= 0 {
		c.Risk.TrailActivationPct = defaultTrailActivation
	}
	if c.Risk.TrailPct <= 0 {
		c.Risk.TrailPct = defaultTrailPct
	}
	if c.Session.Start == "" {
		c.Session.Start = defaultSessionStart
	}
	if c.Session.End == "" {
		c.Session.End = defaultSessionEnd
	}
	if c.Entry.MinRSI <= 0 {
		c.Entry.MinRSI = defaultMinRSI
	}
	if c.Entry.MaxRSI <= 0 {
		c.Entry.MaxRSI = defaultMaxRSI
	}
	if c.Entry.MinVolumeRatio <= 0 {
		c.Entry.MinVolumeRatio = defaultMinVolumeRatio
	}
	if c.Entry.MinATRPct <= 0 {
		c.Entry.MinATRPct = defaultMinATRPct
	}
	if c.Entry.MaxATRPct <= 0 {
		c.Entry.MaxATRPct = defaultMaxATRPct
	}
	if c.Commission.Rate <= 0 {
		c.Commission.Rate = defaultCommissionRate
	}
	if c.Commission.Minimum <= 0 {
		c.Commission.Minimum = defaultCommissionMin
	}
	if c.Scheduler.IntervalMinutes <= 0 {
		c.Scheduler.IntervalMinutes = defaultIntervalMinutes
	}
	if c.Scheduler.MaxConsecutiveFailures <= 0 {
		c.Scheduler.MaxConsecutiveFailures = defaultMaxConsecFail
	}
	if c.Scheduler.BalanceRefreshMinutes <= 0 {
		c.Scheduler.BalanceRefreshMinutes = defaultBalanceRefresh
	}
	if c.Scheduler.PortfolioSyncMinutes <= 0 {
		c.Scheduler.PortfolioSyncMinutes = defaultPortfolioSync
	}
	if c.Scheduler.PnLRefreshMinutes <= 0 {
		c.Scheduler.PnLRefreshMinutes = defaultPnLRefresh
	}
	if c.Scheduler.AdaptiveMinutes <= 0 {
		c.Scheduler.AdaptiveMinutes = defaultAdaptiveMinutes
	}
	if c.Scheduler.DailyReportHour <= 0 {
		c.Scheduler.DailyReportHour = defaultDailyReportHour
	}
	if c.Gateway.TimeoutSeconds <= 0 {
		c.Gateway.TimeoutSeconds = defaultGatewayTimeout
	}
	if c.Store.LedgerPath == "" {
		c.Store.LedgerPath = defaultLedgerPath
	}
	if c.Store.BackupPath == "" {
		c.Store.BackupPath = defaultBackupPath
	}
	if c.Store.ParamsPath == "" {
		c.Store.ParamsPath = defaultParamsPath
	}
	if c.Store.PortfolioPath == "" {
		c.Store.PortfolioPath = defaultPortfolioPath
	}
	if c.Control.Dir == "" {
		c.Control.Dir = defaultControlDir
	}
}
