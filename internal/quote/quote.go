// Package quote turns a fair probability into a two-sided cent quote and
// decides which orders, if any, a market deserves.
package quote

import (
	"math"
	"time"

	"github.com/rickgao/kalshi-mm/internal/model"
)

// Defaults for Params.
const (
	DefaultSpread          = 0.03
	DefaultVolumeThreshold = 1000
	DefaultMinFair         = 0.10
	DefaultMaxFair         = 0.90
	DefaultOrderCount      = 1
)

const (
	probEpsilon  = 1e-4
	centEpsilon  = 1e-9
	centsPerUnit = 100
)

// NewQuote centres a spread s on probability p and converts both edges to
// cents. The bid floors and the ask ceils, so Bid <= Ask and neither edge
// crosses p. A negative spread is treated as zero.
func NewQuote(p, s float64) model.Quote {
	p = clamp(p, probEpsilon, 1-probEpsilon)
	if s < 0 || math.IsNaN(s) {
		s = 0
	}

	bid := clamp(p-s/2, 0, 1)
	ask := clamp(p+s/2, 0, 1)

	return model.Quote{
		Bid: int(math.Floor(bid*centsPerUnit + centEpsilon)),
		Ask: int(math.Ceil(ask*centsPerUnit - centEpsilon)),
	}
}

func clamp(x, lo, hi float64) float64 {
	if math.IsNaN(x) {
		return lo
	}
	return math.Max(lo, math.Min(hi, x))
}

// Params tunes Decide.
type Params struct {
	Spread          float64
	VolumeThreshold int64 // Markets trading more than this in 24h are left alone
	MinFair         float64
	MaxFair         float64
	OrderCount      int
	Expiration      time.Duration // Resting lifetime of each order
}

// DefaultParams returns the stock parameters with the given order lifetime.
func DefaultParams(expiration time.Duration) Params {
	return Params{
		Spread:          DefaultSpread,
		VolumeThreshold: DefaultVolumeThreshold,
		MinFair:         DefaultMinFair,
		MaxFair:         DefaultMaxFair,
		OrderCount:      DefaultOrderCount,
		Expiration:      expiration,
	}
}

// SkipReason says why a market produced no quote.
type SkipReason string

const (
	SkipNone      SkipReason = ""
	SkipVolume    SkipReason = "volume"
	SkipFairRange SkipReason = "fair_out_of_range"
)

// Decision is the outcome of evaluating one market.
type Decision struct {
	Skip   SkipReason
	Quote  model.Quote
	Orders []model.OrderRequest
}

// Skipped reports whether the market was filtered before quoting.
func (d Decision) Skipped() bool {
	return d.Skip != SkipNone
}

// Outcome labels the decision for metrics and logs.
func (d Decision) Outcome() string {
	switch {
	case d.Skipped():
		return string(d.Skip)
	case len(d.Orders) == 0:
		return "no_edge"
	default:
		return "quote"
	}
}

// Decide applies the quoting rules to one market:
//   - skip when 24h volume exceeds the threshold
//   - skip when fair lies outside the open band (MinFair, MaxFair)
//   - buy YES at the bid when the market's YES bid is below it
//   - buy NO at the ask when the market's NO bid is above it
func Decide(m model.MarketSnapshot, fair float64, p Params) Decision {
	if m.Volume24h > p.VolumeThreshold {
		return Decision{Skip: SkipVolume}
	}
	if fair <= p.MinFair || fair >= p.MaxFair || math.IsNaN(fair) {
		return Decision{Skip: SkipFairRange}
	}

	q := NewQuote(fair, p.Spread)
	d := Decision{Quote: q}

	count := p.OrderCount
	if count < 1 {
		count = DefaultOrderCount
	}

	order := func(side model.Side, price int) model.OrderRequest {
		return model.OrderRequest{
			Ticker:           m.Ticker,
			Action:           model.ActionBuy,
			Side:             side,
			Type:             model.OrderTypeLimit,
			Price:            price,
			Count:            count,
			ExpirationOffset: p.Expiration,
		}
	}

	if m.YesBid < q.Bid {
		d.Orders = append(d.Orders, order(model.SideYes, q.Bid))
	}
	if m.NoBid > q.Ask {
		d.Orders = append(d.Orders, order(model.SideNo, q.Ask))
	}

	return d
}
