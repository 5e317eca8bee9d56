package config

import (
	"errors"
	"fmt"
	"time"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}

	if c.Exchange.BaseURL == "" {
		return errors.New("exchange.base_url is required")
	}
	if c.Exchange.APIKey == "" {
		return errors.New("exchange.api_key is required")
	}
	if c.Exchange.APISecret == "" {
		return errors.New("exchange.api_secret is required")
	}
	if c.Exchange.Retries() < 0 {
		return errors.New("exchange.max_retries must be >= 0")
	}

	if err := c.Trading.validate(); err != nil {
		return err
	}

	if c.Signals.BuyMessage == "" || c.Signals.SellMessage == "" {
		return errors.New("signals.buy_message and signals.sell_message are required")
	}
	if c.Signals.BuyMessage == c.Signals.SellMessage {
		return errors.New("signals.buy_message and signals.sell_message must differ")
	}

	if c.Poller.IsEnabled() && c.Poller.Interval < time.Second {
		return fmt.Errorf("poller.interval must be >= 1s, got %s", c.Poller.Interval)
	}

	switch c.State.Backend {
	case "postgres":
		if err := c.Database.validate("database"); err != nil {
			return err
		}
	case "memory":
	default:
		return fmt.Errorf("state.backend must be postgres or memory, got %q", c.State.Backend)
	}
	if c.State.RecordID < 1 {
		return errors.New("state.record_id must be >= 1")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if budget := c.Trading.TransitionBudget(); c.Server.WriteTimeout < budget {
		return fmt.Errorf("server.write_timeout (%s) must cover a full transition (%s at call_timeout %s)",
			c.Server.WriteTimeout, budget, c.Trading.CallTimeout)
	}

	return nil
}

func (t *TradingConfig) validate() error {
	if t.Symbol == "" {
		return errors.New("trading.symbol is required")
	}
	if t.QuoteAsset == "" {
		return errors.New("trading.quote_asset is required")
	}
	if t.Leverage < 1 || t.Leverage > 125 {
		return fmt.Errorf("trading.leverage must be between 1 and 125, got %d", t.Leverage)
	}
	if t.MarginType != "ISOLATED" && t.MarginType != "CROSSED" {
		return fmt.Errorf("trading.margin_type must be ISOLATED or CROSSED, got %q", t.MarginType)
	}
	if t.Utilization <= 0 || t.Utilization > 1 {
		return fmt.Errorf("trading.utilization must be in (0, 1], got %v", t.Utilization)
	}
	if t.StopFraction <= 0 || t.StopFraction >= 1 {
		return fmt.Errorf("trading.stop_fraction must be in (0, 1), got %v", t.StopFraction)
	}
	if t.TakeProfitFraction <= 0 || t.TakeProfitFraction >= 1 {
		return fmt.Errorf("trading.take_profit_fraction must be in (0, 1), got %v", t.TakeProfitFraction)
	}
	if t.Precision() < 0 {
		return errors.New("trading.price_precision must be >= 0")
	}
	if t.WorkingType != "MARK_PRICE" && t.WorkingType != "CONTRACT_PRICE" {
		return fmt.Errorf("trading.working_type must be MARK_PRICE or CONTRACT_PRICE, got %q", t.WorkingType)
	}
	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
