package strategy

import (
	"context"
	"fmt"
	"time"

	"github.com/rickgao/kalshi-mm/internal/api"
	"github.com/rickgao/kalshi-mm/internal/journal"
	"github.com/rickgao/kalshi-mm/internal/model"
)

// CrossingConfig tunes the crossing strategy.
type CrossingConfig struct {
	VolumeThreshold int64 // Only markets with more total volume are inspected
	MaxSum          int   // Trade when best yes + best no <= MaxSum
	Improve         int   // Cents added to each best bid
	Depth           int   // Order book depth to request
	OrderCount      int
	Expiration      time.Duration
}

// Crossing scans liquid markets and bids both sides when the two best bids
// leave enough room below 100.
type Crossing struct {
	cfg  CrossingConfig
	deps Deps
}

// NewCrossing creates the crossing strategy.
func NewCrossing(cfg CrossingConfig, deps Deps) *Crossing {
	return &Crossing{cfg: cfg, deps: deps.withDefaults()}
}

// Name implements Strategy.
func (s *Crossing) Name() string { return "crossing" }

// Cycle implements Strategy.
func (s *Crossing) Cycle(ctx context.Context) (CycleStats, error) {
	var stats CycleStats

	markets, err := s.deps.listMarkets(ctx, s.Name(), api.GetMarketsOptions{Status: "open"})
	if err != nil {
		return stats, fmt.Errorf("list markets: %w", err)
	}

	for _, m := range markets {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}
		stats.Markets++

		if m.Volume <= s.cfg.VolumeThreshold {
			stats.Skipped++
			s.deps.Recorder.ObserveDecision("volume")
			continue
		}

		book, err := s.deps.Data.OrderBook(ctx, m.Ticker, s.cfg.Depth)
		if err != nil {
			return stats, fmt.Errorf("order book %s: %w", m.Ticker, err)
		}

		orders, outcome := s.decide(book)
		s.deps.Recorder.ObserveDecision(outcome)
		if len(orders) == 0 {
			stats.Skipped++
			continue
		}

		s.deps.Logger.Info("book crossable",
			"ticker", m.Ticker,
			"yes_price", orders[0].Price,
			"no_price", orders[1].Price,
		)

		sides, err := s.deps.submitAll(ctx, orders, &stats)
		s.deps.record(ctx, journal.Entry{
			Time:     s.deps.Now(),
			Strategy: s.Name(),
			Ticker:   m.Ticker,
			Bid:      orders[0].Price,
			Ask:      100 - orders[1].Price,
			Outcome:  outcome,
			Sides:    sides,
		})
		if err != nil {
			return stats, err
		}
	}

	return stats, nil
}

// decide returns a yes and a no order at best + Improve when the best bids
// sum to at most MaxSum.
func (s *Crossing) decide(book model.OrderBook) ([]model.OrderRequest, string) {
	bestYes, okYes := book.BestYes()
	bestNo, okNo := book.BestNo()
	if !okYes || !okNo {
		return nil, "empty_book"
	}
	if bestYes+bestNo > s.cfg.MaxSum {
		return nil, "no_edge"
	}

	yesPrice := bestYes + s.cfg.Improve
	noPrice := bestNo + s.cfg.Improve
	if yesPrice > 99 || noPrice > 99 {
		return nil, "no_edge"
	}

	return []model.OrderRequest{
		s.order(book.Ticker, model.SideYes, yesPrice),
		s.order(book.Ticker, model.SideNo, noPrice),
	}, "quote"
}

func (s *Crossing) order(ticker string, side model.Side, price int) model.OrderRequest {
	return model.OrderRequest{
		Ticker:           ticker,
		Action:           model.ActionBuy,
		Side:             side,
		Type:             model.OrderTypeLimit,
		Price:            price,
		Count:            s.cfg.OrderCount,
		ExpirationOffset: s.cfg.Expiration,
	}
}
