// Package exchange is the REST client for the USDⓈ-M futures exchange.
//
// REST endpoints:
//   - Production: https://fapi.binance.com
//   - Testnet: https://testnet.binancefuture.com
//
// Authenticated calls append timestamp, recvWindow and an HMAC-SHA256
// signature to the query string and carry the X-MBX-APIKEY header. Signed
// calls are never retried; unauthenticated reads retry on 429/5xx.
package exchange
