package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rickgao/futures-flipper/internal/config"
	"github.com/rickgao/futures-flipper/internal/metrics"
	"github.com/rickgao/futures-flipper/internal/model"
)

// PositionSource reads the net position for a symbol.
type PositionSource interface {
	GetPosition(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// SignalSource provides the last accepted signal for context in logs.
type SignalSource interface {
	LastSignal() model.Signal
}

// Config holds poller configuration.
type Config struct {
	Symbol   string
	Interval time.Duration // Poll interval (default: 1m)
	Timeout  time.Duration // Per-request timeout (default: 10s)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(symbol string) Config {
	return Config{
		Symbol:   symbol,
		Interval: config.DefaultPollerInterval,
		Timeout:  config.DefaultPollerTimeout,
	}
}

// Poller periodically fetches the exchange position.
type Poller struct {
	cfg     Config
	source  PositionSource
	signals SignalSource
	logger  *slog.Logger

	mu       sync.RWMutex
	position decimal.Decimal
	polledAt time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Poller. signals may be nil.
func New(cfg Config, source PositionSource, signals SignalSource, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		cfg:     cfg,
		source:  source,
		signals: signals,
		logger:  logger,
	}
}

// Start begins the polling loop.
func (p *Poller) Start(ctx context.Context) error {
	p.ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go p.run()

	p.logger.Info("position poller started",
		"symbol", p.cfg.Symbol,
		"interval", p.cfg.Interval,
	)

	return nil
}

// Stop gracefully shuts down the poller.
func (p *Poller) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("position poller stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Position returns the last polled position and when it was read. The time
// is zero before the first successful poll.
func (p *Poller) Position() (decimal.Decimal, time.Time) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.position, p.polledAt
}

// run is the main polling loop.
func (p *Poller) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	// Poll immediately on start.
	p.poll()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.poll()
		}
	}
}

// poll fetches the position once and records it.
func (p *Poller) poll() {
	ctx, cancel := context.WithTimeout(p.ctx, p.cfg.Timeout)
	defer cancel()

	amt, err := p.source.GetPosition(ctx, p.cfg.Symbol)
	if err != nil {
		if p.ctx.Err() != nil {
			return
		}
		metrics.PositionPollErrors.Inc()
		p.logger.Warn("failed to poll position", "symbol", p.cfg.Symbol, "err", err)
		return
	}

	metrics.PositionAmount.WithLabelValues(p.cfg.Symbol).Set(amt.InexactFloat64())

	p.mu.Lock()
	prev, first := p.position, p.polledAt.IsZero()
	p.position = amt
	p.polledAt = time.Now()
	p.mu.Unlock()

	if first || prev.Equal(amt) {
		return
	}

	last := model.SignalNone
	if p.signals != nil {
		last = p.signals.LastSignal()
	}

	if amt.IsZero() {
		p.logger.Info("position closed on exchange",
			"symbol", p.cfg.Symbol,
			"previous", prev,
			"last_signal", last,
		)
		return
	}
	p.logger.Info("position changed",
		"symbol", p.cfg.Symbol,
		"previous", prev,
		"current", amt,
		"last_signal", last,
	)
}
