package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------
// Market Data
// -----------------------------------------------------------------------------

// MarketSnapshot is the per-cycle view of a binary market.
type MarketSnapshot struct {
	Ticker      string          // e.g. "KXBTCD-25FEB1517-T99999.99"
	EventTicker string          // Parent event
	Status      string          // open, unopened, closed, settled, ...
	Strike      decimal.Decimal // Floor strike of the underlying; zero if the market has none
	Expiration  time.Time       // UTC expiration instant
	CloseTime   time.Time       // UTC close instant

	// Prices in cents (0-100)
	YesBid int // Best YES bid
	YesAsk int // Best YES ask
	NoBid  int // Best NO bid
	NoAsk  int // Best NO ask

	Volume    int64 // Total volume
	Volume24h int64 // 24-hour volume
}

// HasStrike reports whether the market carries a usable strike.
func (m MarketSnapshot) HasStrike() bool {
	return m.Strike.IsPositive()
}

// PriceLevel is a single resting level: price in cents and contract count.
type PriceLevel struct {
	Price int
	Size  int
}

// OrderBook holds the resting bids on both sides of a market.
// Each side is ordered best first.
type OrderBook struct {
	Ticker string
	Yes    []PriceLevel
	No     []PriceLevel
}

// BestYes returns the best YES bid in cents and whether one exists.
func (b OrderBook) BestYes() (int, bool) {
	if len(b.Yes) == 0 {
		return 0, false
	}
	return b.Yes[0].Price, true
}

// BestNo returns the best NO bid in cents and whether one exists.
func (b OrderBook) BestNo() (int, bool) {
	if len(b.No) == 0 {
		return 0, false
	}
	return b.No[0].Price, true
}

// -----------------------------------------------------------------------------
// Portfolio
// -----------------------------------------------------------------------------

// Position is the signed net contract count on a market (yes - no).
type Position struct {
	Ticker   string
	Position int
}

// Balance is the available account balance in cents.
type Balance struct {
	Balance int64
}

// ExchangeStatus reports whether the exchange accepts trading.
type ExchangeStatus struct {
	ExchangeActive bool
	TradingActive  bool
}

// -----------------------------------------------------------------------------
// Quoting and Orders
// -----------------------------------------------------------------------------

// Quote is a bid/ask pair in cents. Bid <= Ask always holds.
type Quote struct {
	Bid int
	Ask int
}

// Action is the order direction.
type Action string

const (
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
)

// Side selects the YES or NO contract.
type Side string

const (
	SideYes Side = "yes"
	SideNo  Side = "no"
)

// OrderType is limit or market.
type OrderType string

const (
	OrderTypeLimit  OrderType = "limit"
	OrderTypeMarket OrderType = "market"
)

// OrderRequest is a single order to submit. ClientOrderID is assigned by the
// submitter; a request is consumed exactly once.
type OrderRequest struct {
	ClientOrderID    string
	Ticker           string
	Action           Action
	Side             Side
	Type             OrderType
	Price            int           // Cents, on the side's own scale
	Count            int           // Number of contracts
	ExpirationOffset time.Duration // 0 = good till cancelled
}

// Validate checks the request before it reaches the wire.
func (r OrderRequest) Validate() error {
	if r.Ticker == "" {
		return fmt.Errorf("order: ticker is required")
	}
	switch r.Action {
	case ActionBuy, ActionSell:
	default:
		return fmt.Errorf("order %s: unknown action %q", r.Ticker, r.Action)
	}
	switch r.Side {
	case SideYes, SideNo:
	default:
		return fmt.Errorf("order %s: unknown side %q", r.Ticker, r.Side)
	}
	switch r.Type {
	case OrderTypeLimit, OrderTypeMarket:
	default:
		return fmt.Errorf("order %s: unknown type %q", r.Ticker, r.Type)
	}
	if r.Count < 1 {
		return fmt.Errorf("order %s: count must be >= 1, got %d", r.Ticker, r.Count)
	}
	switch {
	case r.Type == OrderTypeLimit && (r.Price < 1 || r.Price > 99):
		return fmt.Errorf("order %s: limit price must be between 1 and 99 cents, got %d", r.Ticker, r.Price)
	case r.Type == OrderTypeMarket && (r.Price < 0 || r.Price > 99):
		// A market order's price is an optional cap; 0 means none.
		return fmt.Errorf("order %s: market price cap must be between 0 and 99 cents, got %d", r.Ticker, r.Price)
	}
	if r.ExpirationOffset < 0 {
		return fmt.Errorf("order %s: negative expiration offset %s", r.Ticker, r.ExpirationOffset)
	}
	return nil
}

// OrderAck is the exchange acknowledgement of a created order.
type OrderAck struct {
	OrderID       string
	ClientOrderID string
	Ticker        string
	Status        string // resting, executed, canceled, ...
}

// -----------------------------------------------------------------------------
// Streaming
// -----------------------------------------------------------------------------

// Ticker is a pushed top-of-book update for one market.
type Ticker struct {
	Ticker     string
	YesBid     int // Cents
	YesAsk     int // Cents
	LastPrice  int // Cents
	Volume     int64
	ReceivedAt time.Time
}
