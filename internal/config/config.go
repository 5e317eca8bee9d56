package config

import "time"

// Config is the root configuration for a flipper instance.
type Config struct {
	Instance InstanceConfig `yaml:"instance"`
	Exchange ExchangeConfig `yaml:"exchange"`
	Trading  TradingConfig  `yaml:"trading"`
	Signals  SignalsConfig  `yaml:"signals"`
	Poller   PollerConfig   `yaml:"poller"`
	State    StateConfig    `yaml:"state"`
	Database DBConfig       `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// InstanceConfig identifies this flipper.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// ExchangeConfig holds futures REST API settings.
type ExchangeConfig struct {
	BaseURL      string        `yaml:"base_url"`
	APIKey       string        `yaml:"api_key"`    // sent as X-MBX-APIKEY
	APISecret    string        `yaml:"api_secret"` // HMAC key, never logged
	RecvWindow   time.Duration `yaml:"recv_window"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxRetries   *int          `yaml:"max_retries"` // public reads only; 0 disables retries
	RetryBackoff time.Duration `yaml:"retry_backoff"`
}

// Retries returns max_retries, or the default when unset.
func (e ExchangeConfig) Retries() int {
	if e.MaxRetries == nil {
		return DefaultMaxRetries
	}
	return *e.MaxRetries
}

// TradingConfig describes the single tracked symbol and how positions are sized.
type TradingConfig struct {
	Symbol             string        `yaml:"symbol"`
	QuoteAsset         string        `yaml:"quote_asset"`
	Leverage           int           `yaml:"leverage"`
	MarginType         string        `yaml:"margin_type"`
	Utilization        float64       `yaml:"utilization"`          // fraction of margin used per entry
	StopFraction       float64       `yaml:"stop_fraction"`        // stop distance from entry
	TakeProfitFraction float64       `yaml:"take_profit_fraction"` // target distance from entry
	PricePrecision     *int32        `yaml:"price_precision"`      // decimals for trigger prices; 0 is whole units
	WorkingType        string        `yaml:"working_type"`
	CallTimeout        time.Duration `yaml:"call_timeout"` // per exchange call
}

// Precision returns price_precision, or the default when unset.
func (t TradingConfig) Precision() int32 {
	if t.PricePrecision == nil {
		return DefaultPricePrecision
	}
	return *t.PricePrecision
}

// TransitionBudget is the longest a transition can take: every sequential
// exchange call running to call_timeout, plus the state write after it.
func (t TradingConfig) TransitionBudget() time.Duration {
	return TransitionCalls*t.CallTimeout + StateWriteTimeout
}

// SignalsConfig maps inbound webhook messages to signals.
type SignalsConfig struct {
	BuyMessage  string `yaml:"buy_message"`
	SellMessage string `yaml:"sell_message"`
}

// PollerConfig controls the background position poller.
type PollerConfig struct {
	Enabled  *bool         `yaml:"enabled"` // default true
	Interval time.Duration `yaml:"interval"`
	Timeout  time.Duration `yaml:"timeout"`
}

// IsEnabled reports whether the poller should run.
func (p PollerConfig) IsEnabled() bool {
	return p.Enabled == nil || *p.Enabled
}

// StateConfig selects where the last accepted signal is kept.
type StateConfig struct {
	Backend  string `yaml:"backend"` // postgres or memory
	RecordID int    `yaml:"record_id"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// ServerConfig holds the webhook listener settings.
type ServerConfig struct {
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"` // default: trading transition budget + 10s
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig holds log settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}
