// Package auth signs futures REST requests with HMAC-SHA256.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/url"
	"strconv"
	"time"
)

// APIKeyHeader carries the API key on every authenticated request.
const APIKeyHeader = "X-MBX-APIKEY"

// Credentials holds the API key and secret for signing requests.
type Credentials struct {
	APIKey     string
	secret     []byte
	recvWindow time.Duration

	// now is replaced in tests.
	now func() time.Time
}

// NewCredentials builds signing credentials. recvWindow of zero omits the
// recvWindow parameter and leaves the exchange default in place.
func NewCredentials(apiKey, apiSecret string, recvWindow time.Duration) (*Credentials, error) {
	if apiKey == "" {
		return nil, errors.New("API key is required")
	}
	if apiSecret == "" {
		return nil, errors.New("API secret is required")
	}
	return &Credentials{
		APIKey:     apiKey,
		secret:     []byte(apiSecret),
		recvWindow: recvWindow,
		now:        time.Now,
	}, nil
}

// SignQuery adds timestamp (and recvWindow) to params, signs the canonical
// encoding and returns the final query string with the signature appended.
// params is not modified.
func (c *Credentials) SignQuery(params url.Values) string {
	q := url.Values{}
	for k, vs := range params {
		q[k] = append([]string(nil), vs...)
	}
	q.Set("timestamp", strconv.FormatInt(c.now().UnixMilli(), 10))
	if c.recvWindow > 0 {
		q.Set("recvWindow", strconv.FormatInt(c.recvWindow.Milliseconds(), 10))
	}

	// Encode sorts keys, so the signed string is exactly what goes on the wire.
	canonical := q.Encode()
	return canonical + "&signature=" + c.Sign(canonical)
}

// Sign returns the lowercase hex HMAC-SHA256 of payload.
func (c *Credentials) Sign(payload string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// Headers returns the headers attached to authenticated requests.
func (c *Credentials) Headers() map[string]string {
	return map[string]string{APIKeyHeader: c.APIKey}
}
