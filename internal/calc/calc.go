// Package calc derives order quantities and trigger prices.
//
// All functions are pure. Quantities follow the exchange step size; trigger
// prices use a fixed price precision.
package calc

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/rickgao/futures-flipper/internal/model"
)

// InsufficientBalanceError means the computed entry quantity rounded to zero
// or below.
type InsufficientBalanceError struct {
	Balance  decimal.Decimal
	Price    decimal.Decimal
	Quantity decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: %s at price %s yields quantity %s",
		e.Balance, e.Price, e.Quantity)
}

// DerivePrecision returns the number of decimal places implied by a step
// size, round(-log10(step)). The step must be a positive power of ten.
func DerivePrecision(step decimal.Decimal) (int32, error) {
	if !step.IsPositive() {
		return 0, fmt.Errorf("step size must be positive, got %s", step)
	}

	prec := int32(math.Round(-math.Log10(step.InexactFloat64())))
	if !decimal.New(1, -prec).Equal(step) {
		return 0, fmt.Errorf("step size %s is not a power of ten", step)
	}
	return prec, nil
}

// EntryQuantity returns round(balance * leverage * utilization / price, precision).
func EntryQuantity(balance decimal.Decimal, leverage int, price, utilization decimal.Decimal, precision int32) (decimal.Decimal, error) {
	if !price.IsPositive() {
		return decimal.Zero, fmt.Errorf("price must be positive, got %s", price)
	}

	qty := balance.
		Mul(decimal.NewFromInt(int64(leverage))).
		Mul(utilization).
		Div(price).
		Round(precision)

	if !qty.IsPositive() {
		return decimal.Zero, &InsufficientBalanceError{Balance: balance, Price: price, Quantity: qty}
	}
	return qty, nil
}

// StopPrice is the protective stop for an entry at entry: below it for long,
// above it for short.
func StopPrice(dir model.Direction, entry, fraction decimal.Decimal, precision int32) (decimal.Decimal, error) {
	switch dir {
	case model.Long:
		return entry.Mul(decimal.NewFromInt(1).Sub(fraction)).Round(precision), nil
	case model.Short:
		return entry.Mul(decimal.NewFromInt(1).Add(fraction)).Round(precision), nil
	}
	return decimal.Zero, fmt.Errorf("invalid direction %q", dir)
}

// TakeProfitPrice is the target for an entry at entry: above it for long,
// below it for short.
func TakeProfitPrice(dir model.Direction, entry, fraction decimal.Decimal, precision int32) (decimal.Decimal, error) {
	switch dir {
	case model.Long:
		return entry.Mul(decimal.NewFromInt(1).Add(fraction)).Round(precision), nil
	case model.Short:
		return entry.Mul(decimal.NewFromInt(1).Sub(fraction)).Round(precision), nil
	}
	return decimal.Zero, fmt.Errorf("invalid direction %q", dir)
}
