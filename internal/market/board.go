package market

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/rickgao/kalshi-mm/internal/model"
	"github.com/rickgao/kalshi-mm/internal/stream"
)

// Board holds the latest streamed ticker per market.
type Board struct {
	mu sync.RWMutex

	// Latest ticker indexed by market ticker.
	tickers map[string]model.Ticker

	lastEventAt time.Time
	disconnects int
}

// NewBoard creates an empty Board.
func NewBoard() *Board {
	return &Board{
		tickers: make(map[string]model.Ticker),
	}
}

// Apply stores t as the latest value for its market. Older updates than the
// stored one are ignored.
func (b *Board) Apply(t model.Ticker) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if cur, ok := b.tickers[t.Ticker]; ok && t.ReceivedAt.Before(cur.ReceivedAt) {
		return
	}
	b.tickers[t.Ticker] = t
	b.lastEventAt = t.ReceivedAt
}

// Get returns the latest ticker for a market.
func (b *Board) Get(ticker string) (model.Ticker, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	t, ok := b.tickers[ticker]
	return t, ok
}

// Snapshot returns a copy of every ticker, ordered by market.
func (b *Board) Snapshot() []model.Ticker {
	b.mu.RLock()
	result := make([]model.Ticker, 0, len(b.tickers))
	for _, t := range b.tickers {
		result = append(result, t)
	}
	b.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		return result[i].Ticker < result[j].Ticker
	})
	return result
}

// Len returns the number of markets on the board.
func (b *Board) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.tickers)
}

// Stats reports when the last ticker arrived and how many stream drops have
// been seen.
func (b *Board) Stats() (lastEventAt time.Time, disconnects int) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastEventAt, b.disconnects
}

// Consume applies stream events until the channel closes or ctx is done.
func (b *Board) Consume(ctx context.Context, events <-chan stream.Event, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch ev.Type {
			case stream.EventTicker:
				if ev.Ticker != nil {
					b.Apply(*ev.Ticker)
				}
			case stream.EventClosed:
				b.mu.Lock()
				b.disconnects++
				b.mu.Unlock()
				logger.Warn("stream closed", "code", ev.Code, "reason", ev.Reason)
			}
		}
	}
}

// Handler serves the board as JSON.
func (b *Board) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		type row struct {
			Ticker     string    `json:"ticker"`
			YesBid     int       `json:"yes_bid"`
			YesAsk     int       `json:"yes_ask"`
			LastPrice  int       `json:"last_price"`
			Volume     int64     `json:"volume"`
			ReceivedAt time.Time `json:"received_at"`
		}

		snap := b.Snapshot()
		rows := make([]row, 0, len(snap))
		for _, t := range snap {
			rows = append(rows, row{
				Ticker:     t.Ticker,
				YesBid:     t.YesBid,
				YesAsk:     t.YesAsk,
				LastPrice:  t.LastPrice,
				Volume:     t.Volume,
				ReceivedAt: t.ReceivedAt,
			})
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(rows)
	})
}
