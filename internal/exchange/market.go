package exchange

import (
	"context"
	"fmt"
	"net/url"

	"github.com/shopspring/decimal"
)

// GetMarkPrice returns the latest traded price for symbol. It is an
// unauthenticated call.
func (c *Client) GetMarkPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	query := url.Values{}
	query.Set("symbol", symbol)

	var resp TickerPrice
	if err := c.get(ctx, "/fapi/v1/ticker/price", query, &resp); err != nil {
		return decimal.Zero, fmt.Errorf("get price %s: %w", symbol, err)
	}
	if !resp.Price.IsPositive() {
		return decimal.Zero, &DataNotFoundError{What: "price for " + symbol}
	}

	return resp.Price, nil
}

// GetSymbolInfo fetches trading rules for symbol.
func (c *Client) GetSymbolInfo(ctx context.Context, symbol string) (*SymbolInfo, error) {
	var resp ExchangeInfoResponse
	if err := c.get(ctx, "/fapi/v1/exchangeInfo", nil, &resp); err != nil {
		return nil, fmt.Errorf("get exchange info: %w", err)
	}

	for i := range resp.Symbols {
		if resp.Symbols[i].Symbol == symbol {
			return &resp.Symbols[i], nil
		}
	}

	return nil, &DataNotFoundError{What: "symbol " + symbol}
}

// GetSymbolStepSize returns the LOT_SIZE step size for symbol.
func (c *Client) GetSymbolStepSize(ctx context.Context, symbol string) (decimal.Decimal, error) {
	info, err := c.GetSymbolInfo(ctx, symbol)
	if err != nil {
		return decimal.Zero, err
	}

	for _, f := range info.Filters {
		if f.FilterType != "LOT_SIZE" {
			continue
		}
		step, err := decimal.NewFromString(f.StepSize)
		if err != nil {
			return decimal.Zero, fmt.Errorf("parse step size %q: %w", f.StepSize, err)
		}
		if !step.IsPositive() {
			return decimal.Zero, fmt.Errorf("invalid step size %s for %s", step, symbol)
		}
		return step, nil
	}

	return decimal.Zero, &DataNotFoundError{What: "LOT_SIZE filter for " + symbol}
}
