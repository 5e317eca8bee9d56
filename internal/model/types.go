package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------
// Signals
// -----------------------------------------------------------------------------

// Signal is the canonical form of an inbound directional message.
// The zero value means no signal has been accepted yet.
type Signal string

const (
	SignalNone Signal = ""
	SignalBuy  Signal = "buy"
	SignalSell Signal = "sell"
)

// Valid reports whether s is a recognized, persistable signal.
func (s Signal) Valid() bool {
	return s == SignalBuy || s == SignalSell
}

// Direction returns the exposure a signal asks for.
func (s Signal) Direction() (Direction, error) {
	switch s {
	case SignalBuy:
		return Long, nil
	case SignalSell:
		return Short, nil
	default:
		return "", fmt.Errorf("signal %q has no direction", string(s))
	}
}

// String returns "none" for the zero value so it reads well in logs.
func (s Signal) String() string {
	if s == SignalNone {
		return "none"
	}
	return string(s)
}

// ParseSignal converts a persisted value back into a Signal.
// Empty input maps to SignalNone.
func ParseSignal(v string) (Signal, error) {
	switch Signal(v) {
	case SignalNone, SignalBuy, SignalSell:
		return Signal(v), nil
	default:
		return SignalNone, fmt.Errorf("unknown signal %q", v)
	}
}

// -----------------------------------------------------------------------------
// Directions and sides
// -----------------------------------------------------------------------------

// Direction is the exposure requested from the transition engine.
type Direction string

const (
	Long  Direction = "long"
	Short Direction = "short"
)

// Valid reports whether d is long or short.
func (d Direction) Valid() bool {
	return d == Long || d == Short
}

// EntrySide is the order side that opens exposure in direction d.
func (d Direction) EntrySide() Side {
	if d == Short {
		return SideSell
	}
	return SideBuy
}

// ExitSide is the order side that closes exposure in direction d.
func (d Direction) ExitSide() Side {
	return d.EntrySide().Opposite()
}

// Side is the exchange order side.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// OrderType is the exchange order type.
type OrderType string

const (
	OrderMarket           OrderType = "MARKET"
	OrderStopMarket       OrderType = "STOP_MARKET"
	OrderTakeProfitMarket OrderType = "TAKE_PROFIT_MARKET"
)

// WorkingType selects the price a trigger order is evaluated against.
type WorkingType string

const (
	WorkingMarkPrice     WorkingType = "MARK_PRICE"
	WorkingContractPrice WorkingType = "CONTRACT_PRICE"
)

// -----------------------------------------------------------------------------
// Orders
// -----------------------------------------------------------------------------

// OrderIntent describes one order to submit. It is never persisted.
type OrderIntent struct {
	ClientOrderID string
	Symbol        string
	Side          Side
	Type          OrderType

	// Quantity is set for market orders; trigger orders close the whole
	// position and leave it zero.
	Quantity decimal.Decimal

	// StopPrice is the trigger price for STOP_MARKET and TAKE_PROFIT_MARKET.
	StopPrice     decimal.Decimal
	ClosePosition bool
	ReduceOnly    bool
	WorkingType   WorkingType
}

// IsTrigger reports whether the order waits for a stop price.
func (o OrderIntent) IsTrigger() bool {
	return o.Type == OrderStopMarket || o.Type == OrderTakeProfitMarket
}

// Validate checks that the intent is internally consistent before it is sent.
func (o OrderIntent) Validate() error {
	if o.Symbol == "" {
		return fmt.Errorf("order symbol is required")
	}
	if o.Side != SideBuy && o.Side != SideSell {
		return fmt.Errorf("invalid order side %q", o.Side)
	}
	switch o.Type {
	case OrderMarket:
		if !o.Quantity.IsPositive() {
			return fmt.Errorf("market order quantity must be > 0, got %s", o.Quantity)
		}
	case OrderStopMarket, OrderTakeProfitMarket:
		if !o.StopPrice.IsPositive() {
			return fmt.Errorf("%s stop price must be > 0, got %s", o.Type, o.StopPrice)
		}
		if !o.ClosePosition && !o.Quantity.IsPositive() {
			return fmt.Errorf("%s needs a quantity or closePosition", o.Type)
		}
	default:
		return fmt.Errorf("unsupported order type %q", o.Type)
	}
	return nil
}
