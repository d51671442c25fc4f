package strategy

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/rickgao/kalshi-mm/internal/api"
	"github.com/rickgao/kalshi-mm/internal/journal"
	"github.com/rickgao/kalshi-mm/internal/model"
)

// Strategy evaluates markets and submits orders once per cycle.
type Strategy interface {
	Name() string
	Cycle(ctx context.Context) (CycleStats, error)
}

// CycleStats summarizes one cycle.
type CycleStats struct {
	Markets   int // Markets evaluated
	Skipped   int // Markets filtered before quoting
	Submitted int // Orders accepted by the exchange
	Rejected  int // Orders refused or failed
}

// MarketData is the read side of the exchange. *api.Client implements it.
type MarketData interface {
	Markets(ctx context.Context, opts api.GetMarketsOptions) ([]model.MarketSnapshot, error)
	OrderBook(ctx context.Context, ticker string, depth int) (model.OrderBook, error)
	Positions(ctx context.Context, opts api.GetPositionsOptions) ([]model.Position, error)
}

// OrderSubmitter places orders. *order.Submitter implements it.
type OrderSubmitter interface {
	Submit(ctx context.Context, req model.OrderRequest) (*model.OrderAck, error)
}

// SpotSource yields the underlying's spot price. *pricefeed.Feed implements it.
type SpotSource interface {
	Spot(ctx context.Context) (float64, error)
}

// Recorder receives strategy metrics. *metrics.Recorder implements it.
type Recorder interface {
	ObserveCycle(strategy, result string, elapsed time.Duration)
	ObserveDecision(outcome string)
	ObserveFairValue(ticker string, fair float64)
	RetainFairValues(tickers []string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveCycle(string, string, time.Duration) {}
func (nopRecorder) ObserveDecision(string)                     {}
func (nopRecorder) ObserveFairValue(string, float64)           {}
func (nopRecorder) RetainFairValues([]string)                  {}

// Deps are the collaborators shared by every strategy.
type Deps struct {
	Data     MarketData
	Orders   OrderSubmitter
	Journal  journal.Journal
	Recorder Recorder
	Logger   *slog.Logger
	Now      func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Journal == nil {
		d.Journal = journal.Nop{}
	}
	if d.Recorder == nil {
		d.Recorder = nopRecorder{}
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

// listMarkets fetches markets, treating a broken cursor chain as an empty
// listing for this cycle.
func (d Deps) listMarkets(ctx context.Context, strategy string, opts api.GetMarketsOptions) ([]model.MarketSnapshot, error) {
	markets, err := d.Data.Markets(ctx, opts)
	if err != nil {
		var perr *api.PaginationProtocolError
		if errors.As(err, &perr) {
			d.Logger.Warn("market listing aborted",
				"strategy", strategy,
				"endpoint", perr.Endpoint,
				"page", perr.Page,
				"error", err,
			)
			return nil, nil
		}
		return nil, err
	}
	return markets, nil
}

// submitAll posts orders in order. A refused order is logged and counted;
// the remaining orders are still attempted. Only a cancelled context stops
// the loop early.
func (d Deps) submitAll(ctx context.Context, orders []model.OrderRequest, stats *CycleStats) (sides []string, err error) {
	for _, o := range orders {
		if _, err := d.Orders.Submit(ctx, o); err != nil {
			if ctx.Err() != nil {
				return sides, ctx.Err()
			}
			stats.Rejected++
			continue
		}
		stats.Submitted++
		sides = append(sides, string(o.Side))
	}
	return sides, nil
}

// record writes a journal entry, logging rather than failing on error.
func (d Deps) record(ctx context.Context, e journal.Entry) {
	if err := d.Journal.Record(ctx, e); err != nil {
		d.Logger.Warn("journal write failed", "ticker", e.Ticker, "error", err)
	}
}
