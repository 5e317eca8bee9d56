package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"time"

	"github.com/rickgao/futures-flipper/internal/metrics"
	"github.com/rickgao/futures-flipper/internal/version"
)

// doRequest performs one HTTP round trip. rawQuery is sent verbatim so a
// signature computed over it stays valid.
func (c *Client) doRequest(ctx context.Context, method, path, rawQuery string, headers map[string]string) ([]byte, error) {
	fullURL := c.baseURL + path
	if rawQuery != "" {
		fullURL += "?" + rawQuery
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveExchangeRequest(method, path, 0, time.Since(start))
		return nil, &TransportError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()
	metrics.ObserveExchangeRequest(method, path, resp.StatusCode, time.Since(start))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Method: method, Path: path, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &ExchangeError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Body:       body,
		}
		var payload struct {
			Code int    `json:"code"`
			Msg  string `json:"msg"`
		}
		if json.Unmarshal(body, &payload) == nil && payload.Msg != "" {
			apiErr.Code = payload.Code
			apiErr.Message = payload.Msg
		}
		return nil, apiErr
	}

	return body, nil
}

// doWithRetry performs a request with exponential backoff retry. Only used
// for unauthenticated reads, which are idempotent.
func (c *Client) doWithRetry(ctx context.Context, method, path string, query url.Values) ([]byte, error) {
	var lastErr error
	backoff := c.retryBackoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// Add jitter: backoff * (0.5 to 1.5)
			jitter := backoff/2 + time.Duration(rand.Int64N(int64(backoff)+1))
			c.logger.Debug("retrying request",
				"attempt", attempt,
				"backoff", jitter,
				"path", path,
			)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(jitter):
			}

			backoff *= 2
		}

		body, err := c.doRequest(ctx, method, path, query.Encode(), nil)
		if err == nil {
			return body, nil
		}

		lastErr = err

		if !isRetryable(err) || ctx.Err() != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

func isRetryable(err error) bool {
	var apiErr *ExchangeError
	if errors.As(err, &apiErr) {
		return apiErr.IsRetryable()
	}
	var tErr *TransportError
	return errors.As(err, &tErr)
}

// get performs an unauthenticated GET with retries.
func (c *Client) get(ctx context.Context, path string, query url.Values, result any) error {
	body, err := c.doWithRetry(ctx, http.MethodGet, path, query)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}

	return nil
}

// signedCall signs params and performs one authenticated request. result may
// be nil when the body is not needed.
func (c *Client) signedCall(ctx context.Context, method, path string, params url.Values, result any) error {
	if c.creds == nil {
		return errors.New("signed call without credentials")
	}

	body, err := c.doRequest(ctx, method, path, c.creds.SignQuery(params), c.creds.Headers())
	if err != nil {
		return err
	}

	if result == nil {
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}

	return nil
}
