package api

import "github.com/shopspring/decimal"

// ExchangeStatusResponse from GET /exchange/status
type ExchangeStatusResponse struct {
	ExchangeActive      bool   `json:"exchange_active"`
	TradingActive       bool   `json:"trading_active"`
	EstimatedResumeTime string `json:"exchange_estimated_resume_time,omitempty"`
}

// MarketsResponse from GET /markets
type MarketsResponse struct {
	Markets []APIMarket `json:"markets"`
	Cursor  string      `json:"cursor"`
}

// APIMarket represents a market from the Kalshi API.
type APIMarket struct {
	Ticker      string `json:"ticker"`
	EventTicker string `json:"event_ticker"`
	Title       string `json:"title"`
	Status      string `json:"status"`
	MarketType  string `json:"market_type"`

	// Strikes
	StrikeType  string              `json:"strike_type"`
	FloorStrike decimal.NullDecimal `json:"floor_strike"`
	CapStrike   decimal.NullDecimal `json:"cap_strike"`

	// Prices in cents
	YesBid    int `json:"yes_bid"`
	YesAsk    int `json:"yes_ask"`
	NoBid     int `json:"no_bid"`
	NoAsk     int `json:"no_ask"`
	LastPrice int `json:"last_price"`

	// Prices as strings (sub-penny)
	YesBidDollars string `json:"yes_bid_dollars"`
	YesAskDollars string `json:"yes_ask_dollars"`
	NoBidDollars  string `json:"no_bid_dollars"`
	NoAskDollars  string `json:"no_ask_dollars"`

	// Volume
	Volume       int64 `json:"volume"`
	Volume24h    int64 `json:"volume_24h"`
	OpenInterest int64 `json:"open_interest"`

	// Timestamps (ISO 8601)
	OpenTime       string `json:"open_time"`
	CloseTime      string `json:"close_time"`
	ExpirationTime string `json:"expiration_time"`
}

// OrderbookResponse from GET /markets/{ticker}/orderbook
type OrderbookResponse struct {
	Orderbook APIOrderbook `json:"orderbook"`
}

// APIOrderbook represents the orderbook from the Kalshi API.
type APIOrderbook struct {
	// Levels as [price_cents, quantity] pairs
	Yes [][]int `json:"yes"`
	No  [][]int `json:"no"`
}

// PositionsResponse from GET /portfolio/positions
type PositionsResponse struct {
	MarketPositions []APIMarketPosition `json:"market_positions"`
	EventPositions  []APIEventPosition  `json:"event_positions"`
	Cursor          string              `json:"cursor"`
}

// APIMarketPosition is a per-market position.
type APIMarketPosition struct {
	Ticker             string `json:"ticker"`
	Position           int    `json:"position"` // Net contracts, negative = NO
	MarketExposure     int64  `json:"market_exposure"`
	RealizedPnl        int64  `json:"realized_pnl"`
	TotalTraded        int64  `json:"total_traded"`
	RestingOrdersCount int    `json:"resting_orders_count"`
}

// APIEventPosition is a per-event aggregate position.
type APIEventPosition struct {
	EventTicker   string `json:"event_ticker"`
	EventExposure int64  `json:"event_exposure"`
	RealizedPnl   int64  `json:"realized_pnl"`
	TotalCost     int64  `json:"total_cost"`
}

// BalanceResponse from GET /portfolio/balance
type BalanceResponse struct {
	Balance int64 `json:"balance"` // Cents
}

// CreateOrderRequest is the POST /portfolio/orders body. At most one of
// YesPrice/NoPrice is set, chosen by Side; uncapped market orders carry neither.
type CreateOrderRequest struct {
	Action        string `json:"action"`
	ClientOrderID string `json:"client_order_id"`
	Count         int    `json:"count"`
	Side          string `json:"side"`
	Ticker        string `json:"ticker"`
	Type          string `json:"type"`
	ExpirationTS  *int64 `json:"expiration_ts,omitempty"`
	YesPrice      *int   `json:"yes_price,omitempty"`
	NoPrice       *int   `json:"no_price,omitempty"`
}

// OrderResponse wraps a single order returned by create/cancel.
type OrderResponse struct {
	Order APIOrder `json:"order"`
}

// CancelOrderResponse from DELETE /portfolio/orders/{order_id}
type CancelOrderResponse struct {
	Order     APIOrder `json:"order"`
	ReducedBy int      `json:"reduced_by"`
}

// APIOrder represents an order from the Kalshi API.
type APIOrder struct {
	OrderID       string `json:"order_id"`
	ClientOrderID string `json:"client_order_id"`
	Ticker        string `json:"ticker"`
	Status        string `json:"status"`
	Action        string `json:"action"`
	Side          string `json:"side"`
	Type          string `json:"type"`
	YesPrice      int    `json:"yes_price"`
	NoPrice       int    `json:"no_price"`
}

// GetMarketsOptions configures a GetMarkets request. Zero values are omitted.
type GetMarketsOptions struct {
	Limit        int
	Cursor       string
	EventTicker  string
	SeriesTicker string
	Tickers      []string
	Status       string
	MinCloseTS   int64
	MaxCloseTS   int64
}

// GetPositionsOptions configures a GetPositions request. Zero values are omitted.
type GetPositionsOptions struct {
	Limit            int
	Cursor           string
	Ticker           string
	EventTicker      string
	CountFilter      string
	SettlementStatus string
}
