package strategy

import (
	"context"
	"fmt"
	"time"

	"github.com/rickgao/kalshi-mm/internal/api"
	"github.com/rickgao/kalshi-mm/internal/journal"
	"github.com/rickgao/kalshi-mm/internal/model"
)

// InventoryConfig tunes the inventory strategy.
type InventoryConfig struct {
	Ticker     string
	MinSpread  int // Skip a flat book tighter than this
	MaxSum     int // Open both sides only while best yes + best no < MaxSum
	OrderCount int
	Expiration time.Duration
}

// Inventory provides liquidity on a single market and leans against its
// own net position.
type Inventory struct {
	cfg  InventoryConfig
	deps Deps
}

// NewInventory creates the inventory strategy.
func NewInventory(cfg InventoryConfig, deps Deps) *Inventory {
	return &Inventory{cfg: cfg, deps: deps.withDefaults()}
}

// Name implements Strategy.
func (s *Inventory) Name() string { return "inventory" }

// Cycle implements Strategy.
func (s *Inventory) Cycle(ctx context.Context) (CycleStats, error) {
	stats := CycleStats{Markets: 1}

	position, err := s.netPosition(ctx)
	if err != nil {
		return stats, err
	}

	book, err := s.deps.Data.OrderBook(ctx, s.cfg.Ticker, 1)
	if err != nil {
		return stats, fmt.Errorf("order book %s: %w", s.cfg.Ticker, err)
	}

	orders, outcome := s.decide(book, position)
	s.deps.Recorder.ObserveDecision(outcome)

	s.deps.Logger.Info("inventory check",
		"ticker", s.cfg.Ticker,
		"position", position,
		"outcome", outcome,
		"orders", len(orders),
	)

	if len(orders) == 0 {
		stats.Skipped++
		return stats, nil
	}

	sides, err := s.deps.submitAll(ctx, orders, &stats)

	bestYes, _ := book.BestYes()
	bestNo, _ := book.BestNo()
	s.deps.record(ctx, journal.Entry{
		Time:     s.deps.Now(),
		Strategy: s.Name(),
		Ticker:   s.cfg.Ticker,
		Bid:      bestYes,
		Ask:      100 - bestNo,
		Outcome:  outcome,
		Sides:    sides,
	})

	return stats, err
}

func (s *Inventory) netPosition(ctx context.Context) (int, error) {
	positions, err := s.deps.Data.Positions(ctx, api.GetPositionsOptions{Ticker: s.cfg.Ticker})
	if err != nil {
		return 0, fmt.Errorf("positions %s: %w", s.cfg.Ticker, err)
	}
	for _, p := range positions {
		if p.Ticker == s.cfg.Ticker {
			return p.Position, nil
		}
	}
	return 0, nil
}

// decide applies the inventory rules:
//   - spread = 100 - (best yes + best no); premium = floor(spread/2) - 1
//   - flat and spread < MinSpread: nothing
//   - flat and sum < MaxSum: bid both sides at best + premium
//   - long yes: bid no; long no: bid yes
func (s *Inventory) decide(book model.OrderBook, position int) ([]model.OrderRequest, string) {
	bestYes, okYes := book.BestYes()
	bestNo, okNo := book.BestNo()
	if !okYes || !okNo {
		return nil, "empty_book"
	}

	sum := bestYes + bestNo
	spread := 100 - sum
	if spread < s.cfg.MinSpread && position == 0 {
		return nil, "tight_spread"
	}

	premium := floorDiv(spread, 2) - 1

	var orders []model.OrderRequest
	switch {
	case position == 0 && sum < s.cfg.MaxSum:
		orders = append(orders,
			s.order(model.SideYes, bestYes+premium),
			s.order(model.SideNo, bestNo+premium),
		)
	case position > 0:
		orders = append(orders, s.order(model.SideNo, bestNo+premium))
	case position < 0:
		orders = append(orders, s.order(model.SideYes, bestYes+premium))
	default:
		return nil, "no_edge"
	}

	return orders, "quote"
}

func (s *Inventory) order(side model.Side, price int) model.OrderRequest {
	return model.OrderRequest{
		Ticker:           s.cfg.Ticker,
		Action:           model.ActionBuy,
		Side:             side,
		Type:             model.OrderTypeLimit,
		Price:            price,
		Count:            s.cfg.OrderCount,
		ExpirationOffset: s.cfg.Expiration,
	}
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
