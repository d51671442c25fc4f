// Package strategy implements the trading strategies and the loop that drives them.
//
// Strategies:
//   - fair_value: lognormal fair value quoting on a strike series (KXBTCD)
//   - crossing: buy both sides of liquid books whose best bids sum to <= 95
//   - inventory: keep one market's net position flat with a spread premium
//   - sweep: buy heavy favourites on markets closing within a horizon
//
// The Runner is the only recovery boundary: a failed cycle is logged and
// retried after RetryInterval.
package strategy
