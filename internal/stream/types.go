package stream

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/rickgao/kalshi-mm/internal/model"
)

// Errors
var (
	ErrNotConnected = errors.New("stream not connected")
	ErrNoURL        = errors.New("stream URL is required")
)

// EventType classifies a stream event.
type EventType string

const (
	EventTicker     EventType = "ticker"
	EventSubscribed EventType = "subscribed"
	EventError      EventType = "error"
	EventClosed     EventType = "closed"
)

// Event is one decoded push from the exchange, or a disconnect notice.
type Event struct {
	Type       EventType
	Ticker     *model.Ticker // EventTicker only
	SID        int64         // Subscription id
	Channel    string        // EventSubscribed only
	Code       int           // Server error code, or WebSocket close code for EventClosed
	Reason     string
	ReceivedAt time.Time
}

// Config configures a Client.
type Config struct {
	URL                string // Full WebSocket URL, e.g. wss://demo-api.kalshi.co/trade-api/ws/v2
	Channels           []string
	MarketTickers      []string // Empty subscribes to every market on the channels
	ReconnectBaseDelay time.Duration
	ReconnectMaxDelay  time.Duration
	PingInterval       time.Duration
	ReadTimeout        time.Duration // 0 = no read deadline
	WriteTimeout       time.Duration
	BufferSize         int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Channels:           []string{"ticker"},
		ReconnectBaseDelay: 1 * time.Second,
		ReconnectMaxDelay:  60 * time.Second,
		PingInterval:       15 * time.Second,
		ReadTimeout:        30 * time.Second,
		WriteTimeout:       5 * time.Second,
		BufferSize:         1000,
	}
}

// Wire types

type command struct {
	ID     int64           `json:"id"`
	Cmd    string          `json:"cmd"`
	Params subscribeParams `json:"params"`
}

type subscribeParams struct {
	Channels      []string `json:"channels"`
	MarketTickers []string `json:"market_tickers,omitempty"`
}

type envelope struct {
	ID   int64           `json:"id"`
	Type string          `json:"type"`
	SID  int64           `json:"sid"`
	Msg  json.RawMessage `json:"msg"`
}

type subscribedWire struct {
	Channel string `json:"channel"`
	SID     int64  `json:"sid"`
}

type errorWire struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// tickerWire carries both the integer cent fields and their dollar string
// counterparts; whichever is set wins.
type tickerWire struct {
	MarketTicker  string `json:"market_ticker"`
	Price         int    `json:"price"`
	YesBid        int    `json:"yes_bid"`
	YesAsk        int    `json:"yes_ask"`
	PriceDollars  string `json:"price_dollars"`
	YesBidDollars string `json:"yes_bid_dollars"`
	YesAskDollars string `json:"yes_ask_dollars"`
	Volume        int64  `json:"volume"`
	Ts            int64  `json:"ts"`
}
