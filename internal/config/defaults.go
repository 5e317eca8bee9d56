package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultBaseURL            = "https://fapi.binance.com"
	DefaultRecvWindow         = 5 * time.Second
	DefaultAPITimeout         = 10 * time.Second
	DefaultMaxRetries         = 3
	DefaultRetryBackoff       = 500 * time.Millisecond
	DefaultSymbol             = "SOLUSDT"
	DefaultQuoteAsset         = "USDT"
	DefaultLeverage           = 5
	DefaultMarginType         = "ISOLATED"
	DefaultUtilization        = 0.95
	DefaultStopFraction       = 0.20
	DefaultTakeProfitFraction = 0.005
	DefaultPricePrecision     = 2
	DefaultWorkingType        = "MARK_PRICE"
	DefaultCallTimeout        = 10 * time.Second
	DefaultBuyMessage         = "SuperTrend Buy!"
	DefaultSellMessage        = "SuperTrend Sell!"
	DefaultPollerInterval     = time.Minute
	DefaultPollerTimeout      = 10 * time.Second
	DefaultStateBackend       = "postgres"
	DefaultRecordID           = 1
	DefaultDBPort             = 5432
	DefaultDBSSLMode          = "prefer"
	DefaultMaxConns           = 4
	DefaultMinConns           = 1
	DefaultServerPort         = 3000
	DefaultReadTimeout        = 5 * time.Second
	DefaultMetricsPath        = "/metrics"
	DefaultLogLevel           = "info"
)

const (
	// TransitionCalls is the number of exchange calls a transition makes
	// in sequence, each under its own call_timeout.
	TransitionCalls = 9

	// StateWriteTimeout bounds the journal and last-signal writes that
	// follow a transition.
	StateWriteTimeout = 15 * time.Second

	// writeTimeoutSlack is added to the transition budget for the default
	// server write timeout.
	writeTimeoutSlack = 10 * time.Second
)

func (c *Config) applyDefaults() {
	// Exchange defaults
	if c.Exchange.BaseURL == "" {
		c.Exchange.BaseURL = DefaultBaseURL
	}
	if c.Exchange.RecvWindow == 0 {
		c.Exchange.RecvWindow = DefaultRecvWindow
	}
	if c.Exchange.Timeout == 0 {
		c.Exchange.Timeout = DefaultAPITimeout
	}
	if c.Exchange.MaxRetries == nil {
		retries := DefaultMaxRetries
		c.Exchange.MaxRetries = &retries
	}
	if c.Exchange.RetryBackoff == 0 {
		c.Exchange.RetryBackoff = DefaultRetryBackoff
	}

	// Trading defaults
	if c.Trading.Symbol == "" {
		c.Trading.Symbol = DefaultSymbol
	}
	if c.Trading.QuoteAsset == "" {
		c.Trading.QuoteAsset = DefaultQuoteAsset
	}
	if c.Trading.Leverage == 0 {
		c.Trading.Leverage = DefaultLeverage
	}
	if c.Trading.MarginType == "" {
		c.Trading.MarginType = DefaultMarginType
	}
	if c.Trading.Utilization == 0 {
		c.Trading.Utilization = DefaultUtilization
	}
	if c.Trading.StopFraction == 0 {
		c.Trading.StopFraction = DefaultStopFraction
	}
	if c.Trading.TakeProfitFraction == 0 {
		c.Trading.TakeProfitFraction = DefaultTakeProfitFraction
	}
	if c.Trading.PricePrecision == nil {
		precision := int32(DefaultPricePrecision)
		c.Trading.PricePrecision = &precision
	}
	if c.Trading.WorkingType == "" {
		c.Trading.WorkingType = DefaultWorkingType
	}
	if c.Trading.CallTimeout == 0 {
		c.Trading.CallTimeout = DefaultCallTimeout
	}

	// Signal defaults
	if c.Signals.BuyMessage == "" {
		c.Signals.BuyMessage = DefaultBuyMessage
	}
	if c.Signals.SellMessage == "" {
		c.Signals.SellMessage = DefaultSellMessage
	}

	if c.Poller.Interval == 0 {
		c.Poller.Interval = DefaultPollerInterval
	}
	if c.Poller.Timeout == 0 {
		c.Poller.Timeout = DefaultPollerTimeout
	}

	// State defaults
	if c.State.Backend == "" {
		c.State.Backend = DefaultStateBackend
	}
	if c.State.RecordID == 0 {
		c.State.RecordID = DefaultRecordID
	}

	applyDBDefaults(&c.Database)

	// Server defaults
	if c.Server.Port == 0 {
		c.Server.Port = DefaultServerPort
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = DefaultReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = c.Trading.TransitionBudget() + writeTimeoutSlack
	}

	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
