// Package api provides the signed, rate-limited Kalshi REST client.
//
// REST endpoints:
//   - Production: https://api.elections.kalshi.com/trade-api/v2
//   - Demo: https://demo-api.kalshi.co/trade-api/v2
//
// Every request is signed over timestamp + METHOD + path (no query string)
// and spaced at least MinInterval after the previous one completed.
// Non-2xx responses surface as *HTTPError and are never retried here.
package api
