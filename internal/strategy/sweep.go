package strategy

import (
	"context"
	"fmt"
	"time"

	"github.com/rickgao/kalshi-mm/internal/api"
	"github.com/rickgao/kalshi-mm/internal/journal"
	"github.com/rickgao/kalshi-mm/internal/model"
)

// SweepConfig tunes the sweep strategy.
type SweepConfig struct {
	PriceThreshold  int           // Minimum yes ask in cents
	VolumeThreshold int64         // 24h volume must exceed this
	Horizon         time.Duration // Markets closing within now+Horizon
	OrderCount      int
	Expiration      time.Duration
}

// Sweep buys YES at the ask on heavy favourites that close soon.
type Sweep struct {
	cfg  SweepConfig
	deps Deps
}

// NewSweep creates the sweep strategy.
func NewSweep(cfg SweepConfig, deps Deps) *Sweep {
	return &Sweep{cfg: cfg, deps: deps.withDefaults()}
}

// Name implements Strategy.
func (s *Sweep) Name() string { return "sweep" }

// Cycle implements Strategy.
func (s *Sweep) Cycle(ctx context.Context) (CycleStats, error) {
	var stats CycleStats

	now := s.deps.Now()
	markets, err := s.deps.listMarkets(ctx, s.Name(), api.GetMarketsOptions{
		MinCloseTS: now.Unix(),
		MaxCloseTS: now.Add(s.cfg.Horizon).Unix(),
	})
	if err != nil {
		return stats, fmt.Errorf("list closing markets: %w", err)
	}

	for _, m := range markets {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}
		stats.Markets++

		if !s.eligible(m) {
			stats.Skipped++
			continue
		}
		s.deps.Recorder.ObserveDecision("quote")

		orders := []model.OrderRequest{{
			Ticker:           m.Ticker,
			Action:           model.ActionBuy,
			Side:             model.SideYes,
			Type:             model.OrderTypeLimit,
			Price:            m.YesAsk,
			Count:            s.cfg.OrderCount,
			ExpirationOffset: s.cfg.Expiration,
		}}

		sides, err := s.deps.submitAll(ctx, orders, &stats)
		s.deps.record(ctx, journal.Entry{
			Time:     now,
			Strategy: s.Name(),
			Ticker:   m.Ticker,
			Bid:      m.YesBid,
			Ask:      m.YesAsk,
			Outcome:  "quote",
			Sides:    sides,
		})
		if err != nil {
			return stats, err
		}
	}

	s.deps.Logger.Info("sweep complete",
		"markets", stats.Markets,
		"submitted", stats.Submitted,
	)
	return stats, nil
}

// eligible reports whether m is a liquid favourite with a buyable ask.
func (s *Sweep) eligible(m model.MarketSnapshot) bool {
	return m.YesAsk >= s.cfg.PriceThreshold &&
		m.YesAsk <= 99 &&
		m.Volume24h > s.cfg.VolumeThreshold
}
