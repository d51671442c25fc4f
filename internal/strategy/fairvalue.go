package strategy

import (
	"context"
	"fmt"

	"github.com/rickgao/kalshi-mm/internal/api"
	"github.com/rickgao/kalshi-mm/internal/journal"
	"github.com/rickgao/kalshi-mm/internal/pricing"
	"github.com/rickgao/kalshi-mm/internal/quote"
)

// FairValueConfig tunes the fair value quoter.
type FairValueConfig struct {
	SeriesTicker      string
	ImpliedVolPercent float64
	RiskFreeRate      float64
	Quote             quote.Params
}

// FairValue prices every open market of a strike series against the spot
// price and quotes around the result.
type FairValue struct {
	cfg  FairValueConfig
	spot SpotSource
	deps Deps
}

// NewFairValue creates the fair value strategy.
func NewFairValue(cfg FairValueConfig, spot SpotSource, deps Deps) *FairValue {
	return &FairValue{cfg: cfg, spot: spot, deps: deps.withDefaults()}
}

// Name implements Strategy.
func (s *FairValue) Name() string { return "fair_value" }

// Cycle implements Strategy.
func (s *FairValue) Cycle(ctx context.Context) (CycleStats, error) {
	var stats CycleStats
	log := s.deps.Logger

	spot, err := s.spot.Spot(ctx)
	if err != nil {
		return stats, fmt.Errorf("fetch spot: %w", err)
	}

	markets, err := s.deps.listMarkets(ctx, s.Name(), api.GetMarketsOptions{
		SeriesTicker: s.cfg.SeriesTicker,
		Status:       "open",
	})
	if err != nil {
		return stats, fmt.Errorf("list %s markets: %w", s.cfg.SeriesTicker, err)
	}

	log.Debug("fair value cycle", "spot", spot, "markets", len(markets))

	listed := make([]string, 0, len(markets))
	for _, m := range markets {
		listed = append(listed, m.Ticker)
	}
	s.deps.Recorder.RetainFairValues(listed)

	for _, m := range markets {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}
		stats.Markets++

		if !m.HasStrike() {
			stats.Skipped++
			s.deps.Recorder.ObserveDecision("no_strike")
			continue
		}

		now := s.deps.Now()
		strike := m.Strike.InexactFloat64()
		hours := pricing.TimeToExpiry(m.Expiration, now)
		fair := pricing.FairValue(spot, strike, hours, s.cfg.ImpliedVolPercent, s.cfg.RiskFreeRate)
		s.deps.Recorder.ObserveFairValue(m.Ticker, fair)

		d := quote.Decide(m, fair, s.cfg.Quote)
		s.deps.Recorder.ObserveDecision(d.Outcome())

		if d.Skipped() {
			stats.Skipped++
			log.Debug("market skipped",
				"ticker", m.Ticker,
				"reason", d.Skip,
				"volume_24h", m.Volume24h,
				"fair", fair,
			)
		}

		sides, err := s.deps.submitAll(ctx, d.Orders, &stats)

		s.deps.record(ctx, journal.Entry{
			Time:     now,
			Strategy: s.Name(),
			Ticker:   m.Ticker,
			Spot:     spot,
			Strike:   strike,
			Hours:    hours,
			Fair:     fair,
			Bid:      d.Quote.Bid,
			Ask:      d.Quote.Ask,
			Outcome:  d.Outcome(),
			Sides:    sides,
		})

		if err != nil {
			return stats, err
		}
	}

	return stats, nil
}
