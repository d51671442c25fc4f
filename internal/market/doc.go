// Package market keeps the in-memory Board of streamed tickers.
//
// The Board:
//   - Is fed by the stream client
//   - Returns copies, never shared references
//   - Backs the /debug/tickers endpoint and the health report
package market
