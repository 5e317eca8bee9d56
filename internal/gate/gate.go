// Package gate decides which inbound signals reach the transition engine.
//
// The gate holds the last accepted signal, seeded from the store at startup.
// A signal equal to it is a no-op. A new signal runs one transition and is
// recorded only after the transition and the store write both succeed.
// At most one signal is handled at a time; others are rejected with ErrBusy.
package gate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/rickgao/futures-flipper/internal/config"
	"github.com/rickgao/futures-flipper/internal/metrics"
	"github.com/rickgao/futures-flipper/internal/model"
	"github.com/rickgao/futures-flipper/internal/transition"
)

// ErrBusy is returned when a signal arrives while another is being handled.
var ErrBusy = errors.New("signal handling already in progress")

// saveTimeout bounds the store write that follows a completed transition.
const saveTimeout = 10 * time.Second

// Outcome classifies a handled signal.
type Outcome string

const (
	OutcomeApplied   Outcome = "applied"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeIgnored   Outcome = "ignored"
)

// Store persists the last accepted signal.
type Store interface {
	LoadLastSignal(ctx context.Context) (model.Signal, error)
	SaveLastSignal(ctx context.Context, s model.Signal) error
}

// Engine runs a transition.
type Engine interface {
	TransitionTo(ctx context.Context, dir model.Direction) (*transition.Result, error)
}

// Messages maps raw webhook text to signals.
type Messages struct {
	Buy  string
	Sell string
}

// MessagesFromConfig builds Messages from config.
func MessagesFromConfig(sc config.SignalsConfig) Messages {
	return Messages{Buy: sc.BuyMessage, Sell: sc.SellMessage}
}

// Parse returns the signal for raw, or SignalNone when raw matches neither
// message. Surrounding whitespace is ignored; case is not.
func (m Messages) Parse(raw string) model.Signal {
	switch strings.TrimSpace(raw) {
	case m.Buy:
		return model.SignalBuy
	case m.Sell:
		return model.SignalSell
	}
	return model.SignalNone
}

// Gate serializes signal handling and suppresses repeats.
type Gate struct {
	store    Store
	engine   Engine
	messages Messages
	logger   *slog.Logger

	lane *semaphore.Weighted

	mu   sync.RWMutex
	last model.Signal
}

// Option configures a Gate.
type Option func(*Gate)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gate) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// New loads the persisted signal and returns a ready Gate.
func New(ctx context.Context, store Store, engine Engine, messages Messages, opts ...Option) (*Gate, error) {
	g := &Gate{
		store:    store,
		engine:   engine,
		messages: messages,
		logger:   slog.Default(),
		lane:     semaphore.NewWeighted(1),
	}
	for _, opt := range opts {
		opt(g)
	}

	last, err := store.LoadLastSignal(ctx)
	if err != nil {
		return nil, fmt.Errorf("load last signal: %w", err)
	}
	g.last = last
	metrics.SetAcceptedSignal(last.String())

	g.logger.Info("gate ready", "last_signal", last)
	return g, nil
}

// LastSignal returns the last accepted signal.
func (g *Gate) LastSignal() model.Signal {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.last
}

// HandleSignal classifies raw and, for a new signal, runs a transition and
// records it. The call blocks until the transition completes or fails.
func (g *Gate) HandleSignal(ctx context.Context, raw string) (Outcome, error) {
	sig := g.messages.Parse(raw)
	if sig == model.SignalNone {
		g.logger.Info("unrecognized signal ignored", "message", raw)
		metrics.SignalsTotal.WithLabelValues(sig.String(), string(OutcomeIgnored)).Inc()
		return OutcomeIgnored, nil
	}

	if !g.lane.TryAcquire(1) {
		g.logger.Warn("signal rejected: busy", "signal", sig)
		metrics.SignalsTotal.WithLabelValues(sig.String(), "busy").Inc()
		return "", ErrBusy
	}
	defer g.lane.Release(1)

	current := g.LastSignal()
	if sig == current {
		g.logger.Info("duplicate signal suppressed", "signal", sig)
		metrics.SignalsTotal.WithLabelValues(sig.String(), string(OutcomeDuplicate)).Inc()
		return OutcomeDuplicate, nil
	}

	dir, err := sig.Direction()
	if err != nil {
		return "", err
	}

	g.logger.Info("signal accepted", "signal", sig, "previous", current, "direction", dir)

	if _, err := g.engine.TransitionTo(ctx, dir); err != nil {
		metrics.SignalsTotal.WithLabelValues(sig.String(), "failed").Inc()
		return "", fmt.Errorf("apply %s: %w", sig, err)
	}

	// The exchange has flipped; record it even if the caller has gone away.
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
	defer cancel()
	if err := g.store.SaveLastSignal(saveCtx, sig); err != nil {
		g.logger.Error("transition applied but signal not saved", "signal", sig, "error", err)
		metrics.SignalsTotal.WithLabelValues(sig.String(), "failed").Inc()
		return "", fmt.Errorf("save %s: %w", sig, err)
	}

	g.mu.Lock()
	g.last = sig
	g.mu.Unlock()
	metrics.SetAcceptedSignal(sig.String())
	metrics.SignalsTotal.WithLabelValues(sig.String(), string(OutcomeApplied)).Inc()

	return OutcomeApplied, nil
}
