package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	yaml := `
instance:
  id: sol-flipper
exchange:
  base_url: https://testnet.binancefuture.com
  api_key: key
  api_secret: secret
trading:
  symbol: BTCUSDT
  leverage: 3
database:
  host: localhost
  port: 5432
  name: flipper
  user: flipper
  password: flipper
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Instance.ID != "sol-flipper" {
		t.Errorf("Instance.ID = %q, want %q", cfg.Instance.ID, "sol-flipper")
	}
	if cfg.Exchange.BaseURL != "https://testnet.binancefuture.com" {
		t.Errorf("Exchange.BaseURL = %q, want %q", cfg.Exchange.BaseURL, "https://testnet.binancefuture.com")
	}
	if cfg.Trading.Symbol != "BTCUSDT" {
		t.Errorf("Trading.Symbol = %q, want %q", cfg.Trading.Symbol, "BTCUSDT")
	}
	if cfg.Trading.Leverage != 3 {
		t.Errorf("Trading.Leverage = %d, want %d", cfg.Trading.Leverage, 3)
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_API_SECRET", "s3cr3t")
	t.Setenv("TEST_DB_PASSWORD", "secret123")

	yaml := `
instance:
  id: sol-flipper
exchange:
  api_key: key
  api_secret: ${TEST_API_SECRET}
database:
  host: localhost
  name: flipper
  user: flipper
  password: ${TEST_DB_PASSWORD}
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Exchange.APISecret != "s3cr3t" {
		t.Errorf("Exchange.APISecret = %q, want %q", cfg.Exchange.APISecret, "s3cr3t")
	}
	if cfg.Database.Password != "secret123" {
		t.Errorf("Database.Password = %q, want %q", cfg.Database.Password, "secret123")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	yaml := `
instance:
  id: sol-flipper
exchange:
  api_key: key
  api_secret: secret
state:
  backend: memory
`
	path := writeTempFile(t, yaml)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	if cfg.Exchange.BaseURL != DefaultBaseURL {
		t.Errorf("Exchange.BaseURL = %q, want default %q", cfg.Exchange.BaseURL, DefaultBaseURL)
	}
	if cfg.Trading.Symbol != DefaultSymbol {
		t.Errorf("Trading.Symbol = %q, want default %q", cfg.Trading.Symbol, DefaultSymbol)
	}
	if cfg.Trading.Leverage != DefaultLeverage {
		t.Errorf("Trading.Leverage = %d, want default %d", cfg.Trading.Leverage, DefaultLeverage)
	}
	if cfg.Trading.Utilization != DefaultUtilization {
		t.Errorf("Trading.Utilization = %v, want default %v", cfg.Trading.Utilization, DefaultUtilization)
	}
	if cfg.Trading.StopFraction != DefaultStopFraction {
		t.Errorf("Trading.StopFraction = %v, want default %v", cfg.Trading.StopFraction, DefaultStopFraction)
	}
	if cfg.Trading.TakeProfitFraction != DefaultTakeProfitFraction {
		t.Errorf("Trading.TakeProfitFraction = %v, want default %v", cfg.Trading.TakeProfitFraction, DefaultTakeProfitFraction)
	}
	if cfg.Trading.CallTimeout != DefaultCallTimeout {
		t.Errorf("Trading.CallTimeout = %v, want default %v", cfg.Trading.CallTimeout, DefaultCallTimeout)
	}
	if cfg.Trading.Precision() != DefaultPricePrecision {
		t.Errorf("Trading.Precision() = %d, want default %d", cfg.Trading.Precision(), DefaultPricePrecision)
	}
	if cfg.Exchange.Retries() != DefaultMaxRetries {
		t.Errorf("Exchange.Retries() = %d, want default %d", cfg.Exchange.Retries(), DefaultMaxRetries)
	}
	if want := 9*DefaultCallTimeout + StateWriteTimeout + 10*time.Second; cfg.Server.WriteTimeout != want {
		t.Errorf("Server.WriteTimeout = %v, want %v", cfg.Server.WriteTimeout, want)
	}
	if cfg.Signals.BuyMessage != "SuperTrend Buy!" {
		t.Errorf("Signals.BuyMessage = %q, want %q", cfg.Signals.BuyMessage, "SuperTrend Buy!")
	}
	if cfg.Server.Port != DefaultServerPort {
		t.Errorf("Server.Port = %d, want default %d", cfg.Server.Port, DefaultServerPort)
	}
	if !cfg.Poller.IsEnabled() || cfg.Poller.Interval != DefaultPollerInterval {
		t.Errorf("Poller = %+v, want enabled with interval %v", cfg.Poller, DefaultPollerInterval)
	}
	if cfg.State.RecordID != DefaultRecordID {
		t.Errorf("State.RecordID = %d, want default %d", cfg.State.RecordID, DefaultRecordID)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() after defaults: %v", err)
	}
}

func TestLoadWithDefaults_ExplicitZeros(t *testing.T) {
	yaml := `
instance:
  id: sol-flipper
exchange:
  api_key: key
  api_secret: secret
  max_retries: 0
trading:
  price_precision: 0
  call_timeout: 2s
state:
  backend: memory
`
	path := writeTempFile(t, yaml)

	cfg, err := LoadAndValidate(path)
	if err != nil {
		t.Fatalf("LoadAndValidate failed: %v", err)
	}
	if cfg.Trading.Precision() != 0 {
		t.Errorf("Trading.Precision() = %d, want 0", cfg.Trading.Precision())
	}
	if cfg.Exchange.Retries() != 0 {
		t.Errorf("Exchange.Retries() = %d, want 0", cfg.Exchange.Retries())
	}
	if want := 9*2*time.Second + StateWriteTimeout + 10*time.Second; cfg.Server.WriteTimeout != want {
		t.Errorf("Server.WriteTimeout = %v, want %v derived from call_timeout", cfg.Server.WriteTimeout, want)
	}
}

func TestLoadAndValidate_Invalid(t *testing.T) {
	yaml := `
instance:
  id: sol-flipper
exchange:
  api_key: key
  api_secret: secret
trading:
  leverage: 200
state:
  backend: memory
`
	path := writeTempFile(t, yaml)

	if _, err := LoadAndValidate(path); err == nil {
		t.Fatal("LoadAndValidate() expected error for leverage 200, got nil")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("Load() expected error for missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing instance id",
			mutate:  func(c *Config) { c.Instance.ID = "" },
			wantErr: "instance.id is required",
		},
		{
			name:    "missing api key",
			mutate:  func(c *Config) { c.Exchange.APIKey = "" },
			wantErr: "exchange.api_key is required",
		},
		{
			name:    "missing api secret",
			mutate:  func(c *Config) { c.Exchange.APISecret = "" },
			wantErr: "exchange.api_secret is required",
		},
		{
			name:    "leverage out of range",
			mutate:  func(c *Config) { c.Trading.Leverage = 0 },
			wantErr: "trading.leverage must be between 1 and 125, got 0",
		},
		{
			name:    "bad margin type",
			mutate:  func(c *Config) { c.Trading.MarginType = "PORTFOLIO" },
			wantErr: `trading.margin_type must be ISOLATED or CROSSED, got "PORTFOLIO"`,
		},
		{
			name:    "utilization above one",
			mutate:  func(c *Config) { c.Trading.Utilization = 1.5 },
			wantErr: "trading.utilization must be in (0, 1], got 1.5",
		},
		{
			name:    "stop fraction of one",
			mutate:  func(c *Config) { c.Trading.StopFraction = 1 },
			wantErr: "trading.stop_fraction must be in (0, 1), got 1",
		},
		{
			name:    "same buy and sell message",
			mutate:  func(c *Config) { c.Signals.SellMessage = c.Signals.BuyMessage },
			wantErr: "signals.buy_message and signals.sell_message must differ",
		},
		{
			name:    "poller interval too short",
			mutate:  func(c *Config) { c.Poller.Interval = 100 * time.Millisecond },
			wantErr: "poller.interval must be >= 1s, got 100ms",
		},
		{
			name: "disabled poller skips interval check",
			mutate: func(c *Config) {
				disabled := false
				c.Poller = PollerConfig{Enabled: &disabled}
			},
			wantErr: "",
		},
		{
			name:    "unknown backend",
			mutate:  func(c *Config) { c.State.Backend = "redis" },
			wantErr: `state.backend must be postgres or memory, got "redis"`,
		},
		{
			name:    "missing database password",
			mutate:  func(c *Config) { c.Database.Password = "" },
			wantErr: "database.password is required",
		},
		{
			name: "min_conns exceeds max_conns",
			mutate: func(c *Config) {
				c.Database.MaxConns = 2
				c.Database.MinConns = 5
			},
			wantErr: "database.min_conns (5) cannot exceed max_conns (2)",
		},
		{
			name: "memory backend ignores database",
			mutate: func(c *Config) {
				c.State.Backend = "memory"
				c.Database = DBConfig{}
			},
			wantErr: "",
		},
		{
			name:    "write timeout shorter than a transition",
			mutate:  func(c *Config) { c.Server.WriteTimeout = 60 * time.Second },
			wantErr: "server.write_timeout (1m0s) must cover a full transition (1m45s at call_timeout 10s)",
		},
		{
			name: "negative price precision",
			mutate: func(c *Config) {
				precision := int32(-1)
				c.Trading.PricePrecision = &precision
			},
			wantErr: "trading.price_precision must be >= 0",
		},
		{
			name: "zero price precision and retries",
			mutate: func(c *Config) {
				precision, retries := int32(0), 0
				c.Trading.PricePrecision = &precision
				c.Exchange.MaxRetries = &retries
			},
			wantErr: "",
		},
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
			} else {
				if err == nil {
					t.Errorf("Validate() expected error containing %q, got nil", tt.wantErr)
				} else if err.Error() != tt.wantErr {
					t.Errorf("Validate() error = %q, want %q", err.Error(), tt.wantErr)
				}
			}
		})
	}
}

func validConfig() Config {
	precision := int32(2)
	return Config{
		Instance: InstanceConfig{ID: "test"},
		Exchange: ExchangeConfig{
			BaseURL:   DefaultBaseURL,
			APIKey:    "key",
			APISecret: "secret",
			Timeout:   10 * time.Second,
		},
		Trading: TradingConfig{
			Symbol:             "SOLUSDT",
			QuoteAsset:         "USDT",
			Leverage:           5,
			MarginType:         "ISOLATED",
			Utilization:        0.95,
			StopFraction:       0.2,
			TakeProfitFraction: 0.005,
			PricePrecision:     &precision,
			WorkingType:        "MARK_PRICE",
			CallTimeout:        10 * time.Second,
		},
		Signals: SignalsConfig{BuyMessage: "SuperTrend Buy!", SellMessage: "SuperTrend Sell!"},
		Poller:  PollerConfig{Interval: time.Minute, Timeout: 10 * time.Second},
		State:   StateConfig{Backend: "postgres", RecordID: 1},
		Database: DBConfig{
			Host: "localhost", Name: "db", User: "user", Password: "pass", MaxConns: 4, MinConns: 1,
		},
		Server: ServerConfig{Port: 3000, WriteTimeout: 2 * time.Minute},
	}
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestExampleConfig(t *testing.T) {
	t.Setenv("FLIPPER_API_KEY", "key")
	t.Setenv("FLIPPER_API_SECRET", "secret")
	t.Setenv("FLIPPER_DB_PASSWORD", "pass")

	cfg, err := LoadAndValidate(filepath.Join("..", "..", "configs", "flipper.example.yaml"))
	if err != nil {
		t.Fatalf("example config invalid: %v", err)
	}
	if cfg.Trading.Symbol != DefaultSymbol || cfg.Poller.Interval != time.Minute {
		t.Errorf("example config = %+v", cfg.Trading)
	}
}
