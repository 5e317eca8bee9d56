package exchange

import "github.com/shopspring/decimal"

// BalanceEntry from GET /fapi/v2/balance
type BalanceEntry struct {
	Asset            string          `json:"asset"`
	Balance          decimal.Decimal `json:"balance"`
	AvailableBalance decimal.Decimal `json:"availableBalance"`
}

// PositionRisk from GET /fapi/v2/positionRisk
type PositionRisk struct {
	Symbol       string          `json:"symbol"`
	PositionAmt  decimal.Decimal `json:"positionAmt"`
	EntryPrice   decimal.Decimal `json:"entryPrice"`
	MarkPrice    decimal.Decimal `json:"markPrice"`
	Leverage     string          `json:"leverage"`
	MarginType   string          `json:"marginType"`
	PositionSide string          `json:"positionSide"`
}

// TickerPrice from GET /fapi/v1/ticker/price
type TickerPrice struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
	Time   int64           `json:"time"`
}

// ExchangeInfoResponse from GET /fapi/v1/exchangeInfo
type ExchangeInfoResponse struct {
	Symbols []SymbolInfo `json:"symbols"`
}

// SymbolInfo is one entry of ExchangeInfoResponse.
type SymbolInfo struct {
	Symbol            string         `json:"symbol"`
	Status            string         `json:"status"`
	QuoteAsset        string         `json:"quoteAsset"`
	PricePrecision    int            `json:"pricePrecision"`
	QuantityPrecision int            `json:"quantityPrecision"`
	Filters           []SymbolFilter `json:"filters"`
}

// SymbolFilter is a trading rule. Only the fields used here are decoded.
type SymbolFilter struct {
	FilterType string `json:"filterType"`
	StepSize   string `json:"stepSize"`
	MinQty     string `json:"minQty"`
	TickSize   string `json:"tickSize"`
}

// OrderResponse from POST /fapi/v1/order
type OrderResponse struct {
	OrderID       int64           `json:"orderId"`
	ClientOrderID string          `json:"clientOrderId"`
	Symbol        string          `json:"symbol"`
	Status        string          `json:"status"`
	Side          string          `json:"side"`
	Type          string          `json:"type"`
	OrigQty       decimal.Decimal `json:"origQty"`
	StopPrice     decimal.Decimal `json:"stopPrice"`
	ClosePosition bool            `json:"closePosition"`
	UpdateTime    int64           `json:"updateTime"`
}
