package exchange

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// SetLeverageAndMargin sets leverage and margin type for symbol. Refusals
// that mean "already set" are logged at Info. Refusals caused by open
// orders or an open position are logged at Warn and the current settings
// stay in effect. Anything else is returned.
func (c *Client) SetLeverageAndMargin(ctx context.Context, symbol string, leverage int, marginType string) error {
	query := url.Values{}
	query.Set("symbol", symbol)
	query.Set("leverage", strconv.Itoa(leverage))
	err := c.signedCall(ctx, http.MethodPost, "/fapi/v1/leverage", query, nil)
	if err := c.tolerateSettingError(err, "leverage", symbol, "leverage", leverage); err != nil {
		return fmt.Errorf("set leverage %s: %w", symbol, err)
	}

	query = url.Values{}
	query.Set("symbol", symbol)
	query.Set("marginType", marginType)
	err = c.signedCall(ctx, http.MethodPost, "/fapi/v1/marginType", query, nil)
	if err := c.tolerateSettingError(err, "margin type", symbol, "margin_type", marginType); err != nil {
		return fmt.Errorf("set margin type %s: %w", symbol, err)
	}

	return nil
}

// tolerateSettingError drops the settings refusals that leave the account
// usable and returns everything else.
func (c *Client) tolerateSettingError(err error, setting, symbol, key string, value any) error {
	switch {
	case err == nil:
		return nil
	case IsAlreadySet(err):
		c.logger.Info(setting+" already set", "symbol", symbol, key, value)
		return nil
	case IsBlockedByExposure(err):
		c.logger.Warn(setting+" unchanged while orders or a position are open",
			"symbol", symbol, key, value, "error", err)
		return nil
	}
	return err
}
