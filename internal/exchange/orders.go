package exchange

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rickgao/futures-flipper/internal/model"
)

// CancelAllOpenOrders cancels every open order on symbol. Errors are always
// returned: stale protective orders must not survive silently.
func (c *Client) CancelAllOpenOrders(ctx context.Context, symbol string) error {
	query := url.Values{}
	query.Set("symbol", symbol)

	if err := c.signedCall(ctx, http.MethodDelete, "/fapi/v1/allOpenOrders", query, nil); err != nil {
		return fmt.Errorf("cancel open orders %s: %w", symbol, err)
	}
	return nil
}

// PlaceOrder submits intent. A client order id is generated when the intent
// has none.
func (c *Client) PlaceOrder(ctx context.Context, intent model.OrderIntent) (*OrderResponse, error) {
	if intent.ClientOrderID == "" {
		intent.ClientOrderID = uuid.NewString()
	}
	if err := intent.Validate(); err != nil {
		return nil, fmt.Errorf("invalid order: %w", err)
	}

	var resp OrderResponse
	if err := c.signedCall(ctx, http.MethodPost, "/fapi/v1/order", orderParams(intent), &resp); err != nil {
		return nil, fmt.Errorf("place %s %s order: %w", intent.Side, intent.Type, err)
	}

	c.logger.Info("order placed",
		"symbol", intent.Symbol,
		"side", intent.Side,
		"type", intent.Type,
		"quantity", intent.Quantity,
		"stop_price", intent.StopPrice,
		"order_id", resp.OrderID,
		"client_order_id", intent.ClientOrderID,
	)
	return &resp, nil
}

// CloseAnyOpenPosition flattens symbol with one opposing market order and
// returns the amount that was closed (signed, as it was before closing).
// It is a no-op when already flat.
func (c *Client) CloseAnyOpenPosition(ctx context.Context, symbol string) (decimal.Decimal, error) {
	amt, err := c.GetPosition(ctx, symbol)
	if err != nil {
		return decimal.Zero, err
	}
	if amt.IsZero() {
		return decimal.Zero, nil
	}

	side := model.SideSell
	if amt.IsNegative() {
		side = model.SideBuy
	}

	_, err = c.PlaceOrder(ctx, model.OrderIntent{
		Symbol:     symbol,
		Side:       side,
		Type:       model.OrderMarket,
		Quantity:   amt.Abs(),
		ReduceOnly: true,
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("close position %s: %w", symbol, err)
	}
	return amt, nil
}

func orderParams(o model.OrderIntent) url.Values {
	q := url.Values{}
	q.Set("symbol", o.Symbol)
	q.Set("side", string(o.Side))
	q.Set("type", string(o.Type))
	q.Set("newClientOrderId", o.ClientOrderID)

	if !o.ClosePosition && o.Quantity.IsPositive() {
		q.Set("quantity", o.Quantity.String())
	}
	if o.ReduceOnly && !o.ClosePosition {
		q.Set("reduceOnly", "true")
	}
	if o.IsTrigger() {
		q.Set("stopPrice", o.StopPrice.String())
		q.Set("timeInForce", "GTC")
		if o.WorkingType != "" {
			q.Set("workingType", string(o.WorkingType))
		}
	}
	if o.ClosePosition {
		q.Set("closePosition", "true")
	}
	return q
}
