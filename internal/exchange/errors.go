package exchange

import (
	"errors"
	"fmt"
)

// Exchange error codes that mean "the setting already has this value".
const (
	CodeNoNeedToChangeMarginType   = -4046
	CodeNoNeedToChangePositionSide = -4059
)

// Exchange error codes that refuse a settings change while the symbol still
// has open orders or exposure.
const (
	CodeMarginTypeOpenOrders     = -4047
	CodeMarginTypeOpenPosition   = -4048
	CodeLeverageReductionBlocked = -4161
)

// TransportError means the request never produced an HTTP response.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("exchange transport error %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ExchangeError is a non-2xx response. Code and Message come from the
// exchange's {"code":..,"msg":..} payload when present.
type ExchangeError struct {
	StatusCode int
	Code       int
	Message    string
	Body       []byte
}

func (e *ExchangeError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("exchange api error %d (code %d): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("exchange api error %d: %s", e.StatusCode, e.Message)
}

// IsRetryable returns true if the error should trigger a retry.
func (e *ExchangeError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}

// DataNotFoundError means a response lacked an expected asset, symbol or filter.
type DataNotFoundError struct {
	What string
}

func (e *DataNotFoundError) Error() string {
	return e.What + " not found in exchange response"
}

// IsAlreadySet reports whether err is the exchange refusing a settings
// change because the requested value is already in effect.
func IsAlreadySet(err error) bool {
	var apiErr *ExchangeError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.Code {
	case CodeNoNeedToChangeMarginType, CodeNoNeedToChangePositionSide:
		return true
	}
	return false
}

// IsBlockedByExposure reports whether err is the exchange refusing a
// settings change because orders or a position are still open.
func IsBlockedByExposure(err error) bool {
	var apiErr *ExchangeError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.Code {
	case CodeMarginTypeOpenOrders, CodeMarginTypeOpenPosition, CodeLeverageReductionBlocked:
		return true
	}
	return false
}
