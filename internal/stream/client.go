package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rickgao/kalshi-mm/internal/api"
	"github.com/rickgao/kalshi-mm/internal/model"
)

// Signer produces the authentication headers for the WebSocket handshake.
// *auth.Credentials implements it.
type Signer interface {
	SignWebSocket() (map[string]string, error)
}

// Observer is notified of every emitted event.
type Observer interface {
	ObserveStreamEvent(eventType string)
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithObserver sets the event observer.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// WithDialer replaces the WebSocket dialer.
func WithDialer(d *websocket.Dialer) Option {
	return func(c *Client) {
		c.dialer = d
	}
}

// Client is a reconnecting ticker subscription.
type Client struct {
	cfg      Config
	signer   Signer
	logger   *slog.Logger
	observer Observer
	dialer   *websocket.Dialer

	events    chan Event
	nextID    atomic.Int64
	connected atomic.Bool

	writeMu sync.Mutex
	conn    *websocket.Conn
}

// NewClient creates a stream client. signer may be nil for unauthenticated
// endpoints.
func NewClient(cfg Config, signer Signer, opts ...Option) *Client {
	def := DefaultConfig()
	if len(cfg.Channels) == 0 {
		cfg.Channels = def.Channels
	}
	if cfg.ReconnectBaseDelay <= 0 {
		cfg.ReconnectBaseDelay = def.ReconnectBaseDelay
	}
	if cfg.ReconnectMaxDelay < cfg.ReconnectBaseDelay {
		cfg.ReconnectMaxDelay = cfg.ReconnectBaseDelay
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = def.BufferSize
	}

	c := &Client{
		cfg:    cfg,
		signer: signer,
		logger: slog.Default(),
		dialer: &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.events = make(chan Event, cfg.BufferSize)
	return c
}

// Events returns the event channel. It is closed when Run returns.
func (c *Client) Events() <-chan Event {
	return c.events
}

// Connected reports whether a session is currently open.
func (c *Client) Connected() bool {
	return c.connected.Load()
}

// Run connects, subscribes and reads until ctx is cancelled, reconnecting
// with exponential backoff after every failure. It returns nil on
// cancellation.
func (c *Client) Run(ctx context.Context) error {
	defer close(c.events)

	if c.cfg.URL == "" {
		return ErrNoURL
	}

	wait := c.cfg.ReconnectBaseDelay
	for {
		subscribed, err := c.session(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if subscribed {
			wait = c.cfg.ReconnectBaseDelay
		}

		c.logger.Warn("stream disconnected",
			"error", err,
			"retry_in", wait,
		)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(wait):
		}

		wait *= 2
		if wait > c.cfg.ReconnectMaxDelay {
			wait = c.cfg.ReconnectMaxDelay
		}
	}
}

// session runs one connection to completion. subscribed reports whether the
// server confirmed at least one subscription.
func (c *Client) session(ctx context.Context) (subscribed bool, err error) {
	header, err := c.handshakeHeader()
	if err != nil {
		return false, err
	}

	conn, _, err := c.dialer.DialContext(ctx, c.cfg.URL, header)
	if err != nil {
		return false, fmt.Errorf("dial stream: %w", err)
	}

	c.writeMu.Lock()
	c.conn = conn
	c.writeMu.Unlock()
	c.connected.Store(true)
	defer func() {
		c.connected.Store(false)
		c.writeMu.Lock()
		c.conn = nil
		c.writeMu.Unlock()
		conn.Close()
	}()

	c.logger.Info("stream connected", "url", c.cfg.URL)

	c.extendDeadline(conn)
	conn.SetPingHandler(func(data string) error {
		c.extendDeadline(conn)
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(time.Second))
	})
	conn.SetPongHandler(func(string) error {
		c.extendDeadline(conn)
		return nil
	})

	if err := c.Subscribe(c.cfg.Channels, c.cfg.MarketTickers); err != nil {
		c.emit(closedEvent(err, time.Now()))
		return false, err
	}

	done := make(chan struct{})
	defer close(done)
	go c.heartbeat(conn, done)
	go func() {
		select {
		case <-ctx.Done():
			conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second),
			)
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		receivedAt := time.Now()
		if err != nil {
			if ctx.Err() != nil {
				return subscribed, ctx.Err()
			}
			c.emit(closedEvent(err, receivedAt))
			return subscribed, err
		}
		c.extendDeadline(conn)

		ev, ok, derr := decode(data, receivedAt)
		if derr != nil {
			c.logger.Debug("undecodable stream message", "error", derr)
			continue
		}
		if !ok {
			continue
		}
		if ev.Type == EventSubscribed {
			subscribed = true
			c.logger.Info("stream subscribed", "channel", ev.Channel, "sid", ev.SID)
		}
		if ev.Type == EventError {
			c.logger.Warn("stream error", "code", ev.Code, "reason", ev.Reason)
		}
		c.emit(ev)
	}
}

// Subscribe sends a subscribe command on the open connection.
func (c *Client) Subscribe(channels, marketTickers []string) error {
	cmd := command{
		ID:  c.nextID.Add(1),
		Cmd: "subscribe",
		Params: subscribeParams{
			Channels:      channels,
			MarketTickers: marketTickers,
		},
	}
	data, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("encode subscribe: %w", err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.conn == nil {
		return ErrNotConnected
	}
	c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("send subscribe: %w", err)
	}
	return nil
}

func (c *Client) handshakeHeader() (http.Header, error) {
	header := http.Header{}
	header.Set("Accept", "application/json")
	if c.signer == nil {
		c.logger.Warn("connecting without authentication")
		return header, nil
	}

	signed, err := c.signer.SignWebSocket()
	if err != nil {
		return nil, fmt.Errorf("sign stream handshake: %w", err)
	}
	for k, v := range signed {
		header.Set(k, v)
	}
	return header, nil
}

// heartbeat pings the server until done is closed.
func (c *Client) heartbeat(conn *websocket.Conn, done <-chan struct{}) {
	if c.cfg.PingInterval <= 0 {
		return
	}
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			deadline := time.Now().Add(c.cfg.WriteTimeout)
			if err := conn.WriteControl(websocket.PingMessage, []byte("keepalive"), deadline); err != nil {
				c.logger.Debug("failed to send ping", "error", err)
			}
		}
	}
}

func (c *Client) extendDeadline(conn *websocket.Conn) {
	if c.cfg.ReadTimeout > 0 {
		conn.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout))
	}
}

// emit never blocks the read loop; a full buffer drops the event.
func (c *Client) emit(ev Event) {
	if c.observer != nil {
		c.observer.ObserveStreamEvent(string(ev.Type))
	}
	select {
	case c.events <- ev:
	default:
		c.logger.Warn("event buffer full, dropping event", "type", ev.Type)
	}
}

func closedEvent(err error, at time.Time) Event {
	ev := Event{
		Type:       EventClosed,
		Code:       websocket.CloseAbnormalClosure,
		Reason:     err.Error(),
		ReceivedAt: at,
	}
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		ev.Code = ce.Code
		ev.Reason = ce.Text
	}
	return ev
}

// decode turns one frame into an Event. ok is false for message types the
// client does not surface.
func decode(data []byte, receivedAt time.Time) (ev Event, ok bool, err error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Event{}, false, err
	}

	ev = Event{SID: env.SID, ReceivedAt: receivedAt}

	switch env.Type {
	case "ticker", "ticker_v2":
		var w tickerWire
		if err := json.Unmarshal(env.Msg, &w); err != nil {
			return Event{}, false, fmt.Errorf("decode ticker: %w", err)
		}
		ev.Type = EventTicker
		ev.Ticker = &model.Ticker{
			Ticker:     w.MarketTicker,
			YesBid:     cents(w.YesBid, w.YesBidDollars),
			YesAsk:     cents(w.YesAsk, w.YesAskDollars),
			LastPrice:  cents(w.Price, w.PriceDollars),
			Volume:     w.Volume,
			ReceivedAt: receivedAt,
		}
		return ev, true, nil

	case "subscribed":
		var w subscribedWire
		if err := json.Unmarshal(env.Msg, &w); err != nil {
			return Event{}, false, fmt.Errorf("decode subscribed: %w", err)
		}
		ev.Type = EventSubscribed
		ev.Channel = w.Channel
		if w.SID != 0 {
			ev.SID = w.SID
		}
		return ev, true, nil

	case "error":
		var w errorWire
		if err := json.Unmarshal(env.Msg, &w); err != nil {
			return Event{}, false, fmt.Errorf("decode error: %w", err)
		}
		ev.Type = EventError
		ev.Code = w.Code
		ev.Reason = w.Msg
		return ev, true, nil
	}

	return Event{}, false, nil
}

func cents(c int, dollars string) int {
	if c != 0 {
		return c
	}
	return api.DollarsToCents(dollars)
}
