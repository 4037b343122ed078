package config

import (
	"fmt"
	"strconv"
	"strings"
)

func validate(c *Config) error {
	if err := c.Trading.validate(); err != nil {
		return err
	}
	if err := c.Risk.validate(); err != nil {
		return err
	}
	if err := c.Session.validate(); err != nil {
		return err
	}
	if err := c.Gateway.validate(c.Trading); err != nil {
		return err
	}
	if err := c.Notify.validate(); err != nil {
		return err
	}
	return nil
}

func (t TradingConfig) validate() error {
	switch t.Mode {
	case "paper", "live":
	default:
		return fmt.Errorf("trading.mode must be \"paper\" or \"live\", got %q", t.Mode)
	}
	if len(t.Symbols) == 0 {
		return fmt.Errorf("trading.symbols requires at least one symbol")
	}
	for _, s := range t.Symbols {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("trading.symbols contains an empty entry")
		}
	}
	return nil
}

func (r RiskConfig) validate() error {
	if r.TakeProfitATRMultiplier <= r.StopLossATRMultiplier {
		return fmt.Errorf("risk.take_profit_atr_multiplier must exceed stop_loss_atr_multiplier")
	}
	if r.MaxDailyLossPct >= 1 {
		return fmt.Errorf("risk.max_daily_loss_pct must be a fraction < 1")
	}
	return nil
}

func (s SessionConfig) validate() error {
	if !s.Enabled {
		return nil
	}
	for _, v := range []string{s.Start, s.End} {
		if _, _, err := ParseClock(v); err != nil {
			return fmt.Errorf("session window %q: %w", v, err)
		}
	}
	return nil
}

func (g GatewayConfig) validate(t TradingConfig) error {
	if t.Mode == "live" && strings.TrimSpace(g.BaseURL) == "" {
		return fmt.Errorf("gateway.base_url is required in live mode")
	}
	return nil
}

func (n NotifyConfig) validate() error {
	tg := n.Telegram
	if tg.Enabled && (strings.TrimSpace(tg.BotToken) == "" || strings.TrimSpace(tg.ChatID) == "") {
		return fmt.Errorf("notify.telegram requires bot_token and chat_id when enabled")
	}
	return nil
}

// ParseClock parses "HH:MM" into hour and minute.
func ParseClock(v string) (int, int, error) {
	parts := strings.SplitN(strings.TrimSpace(v), ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected HH:MM")
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, 0, fmt.Errorf("invalid hour %q", parts[0])
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, 0, fmt.Errorf("invalid minute %q", parts[1])
	}
	return h, m, nil
}
