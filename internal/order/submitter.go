// Package order submits validated orders to the exchange.
package order

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/kalshi-mm/internal/api"
	"github.com/rickgao/kalshi-mm/internal/model"
)

// DefaultIDPrefix prefixes generated client order ids.
const DefaultIDPrefix = "mm"

// Poster creates orders on the exchange. *api.Client implements it.
type Poster interface {
	CreateOrder(ctx context.Context, req api.CreateOrderRequest) (*api.APIOrder, error)
}

// IDGenerator yields client order ids.
type IDGenerator func() string

// UUIDGenerator returns ids of the form "<prefix>-<uuid v4>".
func UUIDGenerator(prefix string) IDGenerator {
	return func() string {
		return prefix + "-" + uuid.NewString()
	}
}

// Observer is notified of every submission outcome.
type Observer interface {
	ObserveOrder(side model.Side, err error)
}

// Submitter stamps, validates and posts orders. It never retries.
type Submitter struct {
	poster   Poster
	newID    IDGenerator
	logger   *slog.Logger
	observer Observer
	now      func() time.Time
}

// Option configures a Submitter.
type Option func(*Submitter)

// WithIDGenerator replaces the client order id generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Submitter) {
		s.newID = g
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Submitter) {
		s.logger = logger
	}
}

// WithObserver registers a submission observer (metrics).
func WithObserver(o Observer) Option {
	return func(s *Submitter) {
		s.observer = o
	}
}

// WithClock overrides the time source used for expiration timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Submitter) {
		s.now = now
	}
}

// NewSubmitter creates a Submitter posting through p.
func NewSubmitter(p Poster, opts ...Option) *Submitter {
	s := &Submitter{
		poster: p,
		newID:  UUIDGenerator(DefaultIDPrefix),
		logger: slog.Default(),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Submit validates req, assigns it a fresh client order id and posts it.
// A ClientOrderID already set on req is overwritten. Rejections come back as
// *api.OrderRejected.
func (s *Submitter) Submit(ctx context.Context, req model.OrderRequest) (*model.OrderAck, error) {
	req.ClientOrderID = s.newID()

	if err := req.Validate(); err != nil {
		s.observe(req.Side, err)
		return nil, fmt.Errorf("submit: %w", err)
	}

	payload := api.NewCreateOrderRequest(req, s.now())

	order, err := s.poster.CreateOrder(ctx, payload)
	s.observe(req.Side, err)
	if err != nil {
		s.logger.Warn("order not accepted",
			"ticker", req.Ticker,
			"side", req.Side,
			"price", req.Price,
			"client_order_id", req.ClientOrderID,
			"error", err,
		)
		return nil, err
	}

	ack := order.ToAck()
	if ack.ClientOrderID == "" {
		ack.ClientOrderID = req.ClientOrderID
	}

	s.logger.Info("order placed",
		"ticker", req.Ticker,
		"side", req.Side,
		"price", req.Price,
		"count", req.Count,
		"order_id", ack.OrderID,
		"status", ack.Status,
	)

	return &ack, nil
}

func (s *Submitter) observe(side model.Side, err error) {
	if s.observer != nil {
		s.observer.ObserveOrder(side, err)
	}
}
