package exchange

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"
)

// GetBalance returns the available balance of asset (e.g. USDT).
func (c *Client) GetBalance(ctx context.Context, asset string) (decimal.Decimal, error) {
	var balances []BalanceEntry
	if err := c.signedCall(ctx, http.MethodGet, "/fapi/v2/balance", nil, &balances); err != nil {
		return decimal.Zero, fmt.Errorf("get balance: %w", err)
	}

	for _, b := range balances {
		if b.Asset == asset {
			return b.AvailableBalance, nil
		}
	}

	return decimal.Zero, &DataNotFoundError{What: "balance for asset " + asset}
}

// GetPosition returns the signed net position amount for symbol: positive
// is long, negative is short, zero is flat or unknown symbol.
func (c *Client) GetPosition(ctx context.Context, symbol string) (decimal.Decimal, error) {
	query := url.Values{}
	query.Set("symbol", symbol)

	var positions []PositionRisk
	if err := c.signedCall(ctx, http.MethodGet, "/fapi/v2/positionRisk", query, &positions); err != nil {
		return decimal.Zero, fmt.Errorf("get position %s: %w", symbol, err)
	}

	amt := decimal.Zero
	for _, p := range positions {
		if p.Symbol == symbol {
			amt = amt.Add(p.PositionAmt)
		}
	}
	return amt, nil
}
