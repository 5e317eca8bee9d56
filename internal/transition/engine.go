package transition

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rickgao/futures-flipper/internal/calc"
	"github.com/rickgao/futures-flipper/internal/config"
	"github.com/rickgao/futures-flipper/internal/exchange"
	"github.com/rickgao/futures-flipper/internal/metrics"
	"github.com/rickgao/futures-flipper/internal/model"
)

// State is a step of a transition.
type State string

const (
	StateIdle       State = "idle"
	StatePreparing  State = "preparing"
	StateFlattening State = "flattening"
	StateEntering   State = "entering"
	StateProtecting State = "protecting"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

// Error is a fatal transition failure. State is the step that failed.
type Error struct {
	ID    uuid.UUID
	State State
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("transition failed in %s: %v", e.State, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Exchange is the part of the exchange client a transition needs.
type Exchange interface {
	SetLeverageAndMargin(ctx context.Context, symbol string, leverage int, marginType string) error
	CancelAllOpenOrders(ctx context.Context, symbol string) error
	CloseAnyOpenPosition(ctx context.Context, symbol string) (decimal.Decimal, error)
	GetBalance(ctx context.Context, asset string) (decimal.Decimal, error)
	GetMarkPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
	GetSymbolStepSize(ctx context.Context, symbol string) (decimal.Decimal, error)
	PlaceOrder(ctx context.Context, intent model.OrderIntent) (*exchange.OrderResponse, error)
}

// Journal records transition progress so a crash mid-flip is visible on the
// next start.
type Journal interface {
	BeginTransition(ctx context.Context, id uuid.UUID, direction model.Direction) error
	UpdateTransition(ctx context.Context, id uuid.UUID, state string) error
	FinishTransition(ctx context.Context, id uuid.UUID, state string, errMsg string) error
}

// Params holds the sizing and protection settings for the tracked symbol.
type Params struct {
	Symbol             string
	QuoteAsset         string
	Leverage           int
	MarginType         string
	Utilization        decimal.Decimal
	StopFraction       decimal.Decimal
	TakeProfitFraction decimal.Decimal
	PricePrecision     int32
	WorkingType        model.WorkingType
	CallTimeout        time.Duration
}

// ParamsFromConfig converts trading config into engine params.
func ParamsFromConfig(tc config.TradingConfig) Params {
	return Params{
		Symbol:             tc.Symbol,
		QuoteAsset:         tc.QuoteAsset,
		Leverage:           tc.Leverage,
		MarginType:         tc.MarginType,
		Utilization:        decimal.NewFromFloat(tc.Utilization),
		StopFraction:       decimal.NewFromFloat(tc.StopFraction),
		TakeProfitFraction: decimal.NewFromFloat(tc.TakeProfitFraction),
		PricePrecision:     tc.Precision(),
		WorkingType:        model.WorkingType(tc.WorkingType),
		CallTimeout:        tc.CallTimeout,
	}
}

// Result describes a completed transition.
type Result struct {
	ID              uuid.UUID
	Direction       model.Direction
	Closed          decimal.Decimal // signed position flattened before entry
	Quantity        decimal.Decimal
	EntryPrice      decimal.Decimal // price the quantity and triggers were computed from
	StopPrice       decimal.Decimal
	TakeProfitPrice decimal.Decimal
	Duration        time.Duration
}

// Engine runs transitions against one exchange account. It does not
// serialize callers; the gate does.
type Engine struct {
	exchange Exchange
	params   Params
	journal  Journal
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithJournal records each transition in j.
func WithJournal(j Journal) Option {
	return func(e *Engine) {
		e.journal = j
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an Engine.
func New(ex Exchange, params Params, opts ...Option) *Engine {
	e := &Engine{
		exchange: ex,
		params:   params,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// run tracks one transition.
type run struct {
	id    uuid.UUID
	dir   model.Direction
	state State
	res   Result
}

// TransitionTo replaces the current exposure with a fresh position in dir.
// Errors are *Error values naming the failed state.
func (e *Engine) TransitionTo(ctx context.Context, dir model.Direction) (*Result, error) {
	if !dir.Valid() {
		return nil, fmt.Errorf("invalid direction %q", dir)
	}

	r := &run{id: uuid.New(), dir: dir, state: StateIdle}
	r.res.ID = r.id
	r.res.Direction = dir
	start := time.Now()

	logger := e.logger.With("transition_id", r.id, "direction", dir, "symbol", e.params.Symbol)
	logger.Info("transition started")

	if e.journal != nil {
		if err := e.journal.BeginTransition(ctx, r.id, dir); err != nil {
			return nil, e.fail(ctx, logger, r, start, fmt.Errorf("journal begin: %w", err))
		}
	}

	steps := []struct {
		state State
		fn    func(context.Context, *run) error
	}{
		{StatePreparing, e.prepare},
		{StateFlattening, e.flatten},
		{StateEntering, e.enter},
		{StateProtecting, e.protect},
	}

	for _, step := range steps {
		e.advance(ctx, logger, r, step.state)
		if err := step.fn(ctx, r); err != nil {
			return nil, e.fail(ctx, logger, r, start, err)
		}
	}

	e.advance(ctx, logger, r, StateDone)
	r.res.Duration = time.Since(start)
	e.finish(ctx, logger, r.id, StateDone, "")

	metrics.TransitionsTotal.WithLabelValues(string(dir), "ok").Inc()
	metrics.TransitionDuration.WithLabelValues(string(dir)).Observe(r.res.Duration.Seconds())

	logger.Info("transition complete",
		"closed", r.res.Closed,
		"quantity", r.res.Quantity,
		"entry_price", r.res.EntryPrice,
		"stop_price", r.res.StopPrice,
		"take_profit_price", r.res.TakeProfitPrice,
		"duration", r.res.Duration,
	)
	res := r.res
	return &res, nil
}

func (e *Engine) prepare(ctx context.Context, r *run) error {
	p := e.params
	err := e.call(ctx, func(ctx context.Context) error {
		return e.exchange.SetLeverageAndMargin(ctx, p.Symbol, p.Leverage, p.MarginType)
	})
	if err != nil {
		return err
	}

	return e.call(ctx, func(ctx context.Context) error {
		return e.exchange.CancelAllOpenOrders(ctx, p.Symbol)
	})
}

func (e *Engine) flatten(ctx context.Context, r *run) error {
	return e.call(ctx, func(ctx context.Context) error {
		closed, err := e.exchange.CloseAnyOpenPosition(ctx, e.params.Symbol)
		r.res.Closed = closed
		return err
	})
}

func (e *Engine) enter(ctx context.Context, r *run) error {
	p := e.params

	var balance, price, step decimal.Decimal
	err := e.call(ctx, func(ctx context.Context) (err error) {
		balance, err = e.exchange.GetBalance(ctx, p.QuoteAsset)
		return err
	})
	if err != nil {
		return err
	}
	err = e.call(ctx, func(ctx context.Context) (err error) {
		price, err = e.exchange.GetMarkPrice(ctx, p.Symbol)
		return err
	})
	if err != nil {
		return err
	}
	err = e.call(ctx, func(ctx context.Context) (err error) {
		step, err = e.exchange.GetSymbolStepSize(ctx, p.Symbol)
		return err
	})
	if err != nil {
		return err
	}

	prec, err := calc.DerivePrecision(step)
	if err != nil {
		return err
	}
	qty, err := calc.EntryQuantity(balance, p.Leverage, price, p.Utilization, prec)
	if err != nil {
		return err
	}
	r.res.EntryPrice = price
	r.res.Quantity = qty

	return e.call(ctx, func(ctx context.Context) error {
		_, err := e.exchange.PlaceOrder(ctx, model.OrderIntent{
			Symbol:   p.Symbol,
			Side:     r.dir.EntrySide(),
			Type:     model.OrderMarket,
			Quantity: qty,
		})
		return err
	})
}

// protect prices both triggers from the pre-entry price.
func (e *Engine) protect(ctx context.Context, r *run) error {
	p := e.params

	stop, err := calc.StopPrice(r.dir, r.res.EntryPrice, p.StopFraction, p.PricePrecision)
	if err != nil {
		return err
	}
	target, err := calc.TakeProfitPrice(r.dir, r.res.EntryPrice, p.TakeProfitFraction, p.PricePrecision)
	if err != nil {
		return err
	}
	r.res.StopPrice = stop
	r.res.TakeProfitPrice = target

	for _, o := range []struct {
		typ   model.OrderType
		price decimal.Decimal
	}{
		{model.OrderStopMarket, stop},
		{model.OrderTakeProfitMarket, target},
	} {
		err := e.call(ctx, func(ctx context.Context) error {
			_, err := e.exchange.PlaceOrder(ctx, model.OrderIntent{
				Symbol:        p.Symbol,
				Side:          r.dir.ExitSide(),
				Type:          o.typ,
				StopPrice:     o.price,
				ClosePosition: true,
				WorkingType:   p.WorkingType,
			})
			return err
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// call runs fn under the per-call timeout.
func (e *Engine) call(ctx context.Context, fn func(context.Context) error) error {
	if e.params.CallTimeout <= 0 {
		return fn(ctx)
	}
	callCtx, cancel := context.WithTimeout(ctx, e.params.CallTimeout)
	defer cancel()
	return fn(callCtx)
}

func (e *Engine) advance(ctx context.Context, logger *slog.Logger, r *run, s State) {
	r.state = s
	logger.Debug("transition state", "state", s)
	if e.journal == nil {
		return
	}
	if err := e.journal.UpdateTransition(ctx, r.id, string(s)); err != nil {
		logger.Warn("journal update failed", "state", s, "error", err)
	}
}

func (e *Engine) fail(ctx context.Context, logger *slog.Logger, r *run, start time.Time, err error) error {
	failed := r.state
	r.state = StateFailed

	metrics.TransitionsTotal.WithLabelValues(string(r.dir), string(failed)).Inc()
	metrics.TransitionDuration.WithLabelValues(string(r.dir)).Observe(time.Since(start).Seconds())

	var insufficient *calc.InsufficientBalanceError
	if errors.As(err, &insufficient) {
		logger.Error("transition aborted: insufficient balance",
			"state", failed,
			"balance", insufficient.Balance,
			"price", insufficient.Price,
		)
	} else {
		logger.Error("transition failed", "state", failed, "error", err)
	}

	e.finish(ctx, logger, r.id, failed, err.Error())
	return &Error{ID: r.id, State: failed, Err: err}
}

// finish closes the journal entry with the last state reached. It ignores
// ctx cancellation so a timed-out transition is still recorded.
func (e *Engine) finish(ctx context.Context, logger *slog.Logger, id uuid.UUID, s State, errMsg string) {
	if e.journal == nil {
		return
	}
	jctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := e.journal.FinishTransition(jctx, id, string(s), errMsg); err != nil {
		logger.Warn("journal finish failed", "error", err)
	}
}
