package strategy

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rickgao/kalshi-mm/internal/api"
	"github.com/rickgao/kalshi-mm/internal/journal"
	"github.com/rickgao/kalshi-mm/internal/model"
	"github.com/rickgao/kalshi-mm/internal/quote"
)

var testNow = time.Date(2025, 2, 15, 12, 0, 0, 0, time.UTC)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeData struct {
	markets    []model.MarketSnapshot
	marketsErr error
	books      map[string]model.OrderBook
	positions  []model.Position
	lastOpts   api.GetMarketsOptions
	bookDepths []int
}

func (f *fakeData) Markets(ctx context.Context, opts api.GetMarketsOptions) ([]model.MarketSnapshot, error) {
	f.lastOpts = opts
	return f.markets, f.marketsErr
}

func (f *fakeData) OrderBook(ctx context.Context, ticker string, depth int) (model.OrderBook, error) {
	f.bookDepths = append(f.bookDepths, depth)
	book, ok := f.books[ticker]
	if !ok {
		return model.OrderBook{Ticker: ticker}, nil
	}
	book.Ticker = ticker
	return book, nil
}

func (f *fakeData) Positions(ctx context.Context, opts api.GetPositionsOptions) ([]model.Position, error) {
	return f.positions, nil
}

type fakeSubmitter struct {
	orders []model.OrderRequest
	reject map[string]bool
}

func (f *fakeSubmitter) Submit(ctx context.Context, req model.OrderRequest) (*model.OrderAck, error) {
	f.orders = append(f.orders, req)
	if f.reject[req.Ticker] {
		return nil, &api.OrderRejected{StatusCode: 400, Ticker: req.Ticker}
	}
	return &model.OrderAck{OrderID: "ord", Ticker: req.Ticker, Status: "resting"}, nil
}

type fakeSpot struct {
	price float64
	err   error
}

func (f fakeSpot) Spot(ctx context.Context) (float64, error) { return f.price, f.err }

type memJournal struct {
	journal.Nop
	mu      sync.Mutex
	entries []journal.Entry
	flushes int
}

func (m *memJournal) Record(ctx context.Context, e journal.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

func (m *memJournal) Flush(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flushes++
	return nil
}

func btcMarket(ticker, strike string, yesBid, noBid int, vol int64) model.MarketSnapshot {
	m := model.MarketSnapshot{
		Ticker:     ticker,
		Expiration: testNow.Add(24 * time.Hour),
		YesBid:     yesBid,
		NoBid:      noBid,
		Volume24h:  vol,
	}
	if strike != "" {
		m.Strike = decimal.RequireFromString(strike)
	}
	return m
}

func newDeps(data *fakeData, sub *fakeSubmitter, j journal.Journal) Deps {
	return Deps{
		Data:    data,
		Orders:  sub,
		Journal: j,
		Logger:  quietLogger(),
		Now:     func() time.Time { return testNow },
	}
}

func fairValueConfig() FairValueConfig {
	return FairValueConfig{
		SeriesTicker:      "KXBTCD",
		ImpliedVolPercent: 52,
		Quote:             quote.DefaultParams(10 * time.Second),
	}
}

func TestFairValue_Cycle(t *testing.T) {
	data := &fakeData{markets: []model.MarketSnapshot{
		btcMarket("KXBTCD-T99000", "99000", 55, 30, 100),
		btcMarket("KXBTCD-HOT", "99000", 55, 30, 1500),
		btcMarket("KXBTCD-NOSTRIKE", "", 55, 30, 0),
		btcMarket("KXBTCD-T90000", "90000", 50, 50, 0), // deep in the money
	}}
	sub := &fakeSubmitter{}
	j := &memJournal{}

	s := NewFairValue(fairValueConfig(), fakeSpot{price: 100000}, newDeps(data, sub, j))
	stats, err := s.Cycle(context.Background())
	if err != nil {
		t.Fatalf("Cycle: %v", err)
	}

	if data.lastOpts.SeriesTicker != "KXBTCD" || data.lastOpts.Status != "open" {
		t.Errorf("market query = %+v", data.lastOpts)
	}
	if stats.Markets != 4 || stats.Skipped != 3 || stats.Submitted != 1 {
		t.Errorf("stats = %+v, want 4 markets, 3 skipped, 1 submitted", stats)
	}

	if len(sub.orders) != 1 {
		t.Fatalf("orders = %+v, want 1", sub.orders)
	}
	o := sub.orders[0]
	if o.Ticker != "KXBTCD-T99000" || o.Side != model.SideYes || o.Price != 62 {
		t.Errorf("order = %+v, want buy yes at 62 on KXBTCD-T99000", o)
	}
	if o.ExpirationOffset != 10*time.Second || o.Type != model.OrderTypeLimit {
		t.Errorf("order = %+v", o)
	}

	// The no-strike market never reaches pricing, so only three entries.
	if len(j.entries) != 3 {
		t.Fatalf("journal entries = %d, want 3", len(j.entries))
	}
	e := j.entries[0]
	if e.Bid != 62 || e.Ask != 66 || e.Hours != 24 || e.Outcome != "quote" || len(e.Sides) != 1 {
		t.Errorf("entry = %+v", e)
	}
	if j.entries[1].Outcome != string(quote.SkipVolume) {
		t.Errorf("entry[1].Outcome = %q", j.entries[1].Outcome)
	}
}

type fairRecorder struct {
	nopRecorder
	fair     map[string]float64
	retained []string
}

func (r *fairRecorder) ObserveFairValue(ticker string, fair float64) {
	if r.fair == nil {
		r.fair = make(map[string]float64)
	}
	r.fair[ticker] = fair
}

func (r *fairRecorder) RetainFairValues(tickers []string) {
	r.retained = tickers
}

func TestFairValue_RetainsListedMarkets(t *testing.T) {
	data := &fakeData{markets: []model.MarketSnapshot{
		btcMarket("KXBTCD-T99000", "99000", 55, 30, 100),
		btcMarket("KXBTCD-NOSTRIKE", "", 55, 30, 0),
	}}
	rec := &fairRecorder{}
	deps := newDeps(data, &fakeSubmitter{}, nil)
	deps.Recorder = rec

	s := NewFairValue(fairValueConfig(), fakeSpot{price: 100000}, deps)
	if _, err := s.Cycle(context.Background()); err != nil {
		t.Fatalf("Cycle: %v", err)
	}

	if len(rec.retained) != 2 || rec.retained[0] != "KXBTCD-T99000" || rec.retained[1] != "KXBTCD-NOSTRIKE" {
		t.Errorf("retained = %v, want both listed markets", rec.retained)
	}
	if _, ok := rec.fair["KXBTCD-T99000"]; !ok || len(rec.fair) != 1 {
		t.Errorf("fair values = %v, want only KXBTCD-T99000", rec.fair)
	}
}

func TestFairValue_RejectedOrderDoesNotStopCycle(t *testing.T) {
	data := &fakeData{markets: []model.MarketSnapshot{
		btcMarket("REJECT-ME", "99000", 10, 0, 0),
		btcMarket("ACCEPT-ME", "99000", 10, 0, 0),
	}}
	sub := &fakeSubmitter{reject: map[string]bool{"REJECT-ME": true}}

	s := NewFairValue(fairValueConfig(), fakeSpot{price: 100000}, newDeps(data, sub, nil))
	stats, err := s.Cycle(context.Background())
	if err != nil {
		t.Fatalf("Cycle: %v", err)
	}
	if stats.Rejected != 1 || stats.Submitted != 1 {
		t.Errorf("stats = %+v, want 1 rejected, 1 submitted", stats)
	}
}

func TestFairValue_PaginationErrorIsEmptyListing(t *testing.T) {
	data := &fakeData{marketsErr: &api.PaginationProtocolError{
		Endpoint: "/markets",
		Cursor:   "stuck",
		Page:     2,
		Err:      api.ErrPaginationLoop,
	}}
	sub := &fakeSubmitter{}

	s := NewFairValue(fairValueConfig(), fakeSpot{price: 100000}, newDeps(data, sub, nil))
	stats, err := s.Cycle(context.Background())
	if err != nil {
		t.Fatalf("Cycle: %v", err)
	}
	if stats.Markets != 0 || len(sub.orders) != 0 {
		t.Errorf("stats = %+v, orders = %d", stats, len(sub.orders))
	}
}

func TestFairValue_Errors(t *testing.T) {
	t.Run("spot failure", func(t *testing.T) {
		s := NewFairValue(fairValueConfig(), fakeSpot{err: errors.New("binance down")}, newDeps(&fakeData{}, &fakeSubmitter{}, nil))
		if _, err := s.Cycle(context.Background()); err == nil {
			t.Error("Cycle succeeded without spot price")
		}
	})

	t.Run("listing failure", func(t *testing.T) {
		data := &fakeData{marketsErr: &api.HTTPError{StatusCode: 500}}
		s := NewFairValue(fairValueConfig(), fakeSpot{price: 1}, newDeps(data, &fakeSubmitter{}, nil))
		_, err := s.Cycle(context.Background())
		var httpErr *api.HTTPError
		if !errors.As(err, &httpErr) {
			t.Errorf("err = %v, want wrapped *api.HTTPError", err)
		}
	})
}

func TestCrossing_Cycle(t *testing.T) {
	data := &fakeData{
		markets: []model.MarketSnapshot{
			{Ticker: "LIQUID", Volume: 2000},
			{Ticker: "THIN", Volume: 500},
			{Ticker: "TIGHT", Volume: 5000},
			{Ticker: "EMPTY", Volume: 5000},
		},
		books: map[string]model.OrderBook{
			"LIQUID": {Yes: []model.PriceLevel{{Price: 40, Size: 10}}, No: []model.PriceLevel{{Price: 50, Size: 4}}},
			"TIGHT":  {Yes: []model.PriceLevel{{Price: 50, Size: 10}}, No: []model.PriceLevel{{Price: 48, Size: 4}}},
		},
	}
	sub := &fakeSubmitter{}

	cfg := CrossingConfig{VolumeThreshold: 1000, MaxSum: 95, Improve: 5, Depth: 1, OrderCount: 1}
	stats, err := NewCrossing(cfg, newDeps(data, sub, nil)).Cycle(context.Background())
	if err != nil {
		t.Fatalf("Cycle: %v", err)
	}

	if stats.Markets != 4 || stats.Skipped != 3 || stats.Submitted != 2 {
		t.Errorf("stats = %+v", stats)
	}
	if len(sub.orders) != 2 {
		t.Fatalf("orders = %+v", sub.orders)
	}
	if sub.orders[0].Side != model.SideYes || sub.orders[0].Price != 45 {
		t.Errorf("yes order = %+v, want 45", sub.orders[0])
	}
	if sub.orders[1].Side != model.SideNo || sub.orders[1].Price != 55 {
		t.Errorf("no order = %+v, want 55", sub.orders[1])
	}
	for _, d := range data.bookDepths {
		if d != 1 {
			t.Errorf("book depth = %d, want 1", d)
		}
	}
	if len(data.bookDepths) != 3 {
		t.Errorf("book fetches = %d, want 3 (thin market skipped)", len(data.bookDepths))
	}
}

func TestInventory_Decide(t *testing.T) {
	s := NewInventory(InventoryConfig{Ticker: "KXGREENLAND", MinSpread: 5, MaxSum: 97, OrderCount: 1}, Deps{})

	book := func(yes, no int) model.OrderBook {
		return model.OrderBook{
			Ticker: "KXGREENLAND",
			Yes:    []model.PriceLevel{{Price: yes, Size: 1}},
			No:     []model.PriceLevel{{Price: no, Size: 1}},
		}
	}

	type want struct {
		side  model.Side
		price int
	}

	tests := []struct {
		name     string
		book     model.OrderBook
		position int
		outcome  string
		orders   []want
	}{
		{"flat wide book quotes both", book(40, 50), 0, "quote", []want{{model.SideYes, 44}, {model.SideNo, 54}}},
		{"flat tight book skipped", book(48, 49), 0, "tight_spread", nil},
		{"long yes buys no", book(48, 49), 2, "quote", []want{{model.SideNo, 49}}},
		{"long no buys yes", book(48, 49), -1, "quote", []want{{model.SideYes, 48}}},
		{"long yes wide book", book(30, 50), 3, "quote", []want{{model.SideNo, 59}}},
		{"odd spread floors premium", book(40, 51), 0, "quote", []want{{model.SideYes, 43}, {model.SideNo, 54}}},
		{"empty side", model.OrderBook{Yes: []model.PriceLevel{{Price: 40}}}, 0, "empty_book", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders, outcome := s.decide(tt.book, tt.position)
			if outcome != tt.outcome {
				t.Errorf("outcome = %q, want %q", outcome, tt.outcome)
			}
			if len(orders) != len(tt.orders) {
				t.Fatalf("orders = %+v, want %+v", orders, tt.orders)
			}
			for i, w := range tt.orders {
				if orders[i].Side != w.side || orders[i].Price != w.price {
					t.Errorf("orders[%d] = %s@%d, want %s@%d", i, orders[i].Side, orders[i].Price, w.side, w.price)
				}
			}
		})
	}
}

func TestInventory_CycleUsesPosition(t *testing.T) {
	data := &fakeData{
		positions: []model.Position{{Ticker: "OTHER", Position: 9}, {Ticker: "KXGREENLAND", Position: -2}},
		books: map[string]model.OrderBook{
			"KXGREENLAND": {Yes: []model.PriceLevel{{Price: 30}}, No: []model.PriceLevel{{Price: 60}}},
		},
	}
	sub := &fakeSubmitter{}
	j := &memJournal{}

	s := NewInventory(InventoryConfig{Ticker: "KXGREENLAND", MinSpread: 5, MaxSum: 97, OrderCount: 1, Expiration: 30 * time.Second}, newDeps(data, sub, j))
	stats, err := s.Cycle(context.Background())
	if err != nil {
		t.Fatalf("Cycle: %v", err)
	}

	if stats.Submitted != 1 || len(sub.orders) != 1 {
		t.Fatalf("stats = %+v, orders = %+v", stats, sub.orders)
	}
	// spread 10, premium 4, short position buys yes
	if o := sub.orders[0]; o.Side != model.SideYes || o.Price != 34 || o.ExpirationOffset != 30*time.Second {
		t.Errorf("order = %+v", o)
	}
	if len(j.entries) != 1 {
		t.Errorf("journal entries = %d, want 1", len(j.entries))
	}
}

func TestSweep_Cycle(t *testing.T) {
	data := &fakeData{markets: []model.MarketSnapshot{
		{Ticker: "FAV", YesBid: 91, YesAsk: 93, Volume24h: 500},
		{Ticker: "CHEAP", YesAsk: 60, Volume24h: 500},
		{Ticker: "QUIET", YesAsk: 95, Volume24h: 100},
		{Ticker: "DONE", YesAsk: 100, Volume24h: 900},
	}}
	sub := &fakeSubmitter{}

	cfg := SweepConfig{PriceThreshold: 90, VolumeThreshold: 100, Horizon: 24 * time.Hour, OrderCount: 1}
	stats, err := NewSweep(cfg, newDeps(data, sub, nil)).Cycle(context.Background())
	if err != nil {
		t.Fatalf("Cycle: %v", err)
	}

	if data.lastOpts.MinCloseTS != testNow.Unix() || data.lastOpts.MaxCloseTS != testNow.Add(24*time.Hour).Unix() {
		t.Errorf("close window = %d..%d", data.lastOpts.MinCloseTS, data.lastOpts.MaxCloseTS)
	}
	if stats.Markets != 4 || stats.Skipped != 3 || stats.Submitted != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if len(sub.orders) != 1 || sub.orders[0].Ticker != "FAV" || sub.orders[0].Price != 93 || sub.orders[0].Side != model.SideYes {
		t.Errorf("orders = %+v", sub.orders)
	}
}

func TestFloorDiv(t *testing.T) {
	tests := []struct{ a, b, want int }{
		{7, 2, 3},
		{6, 2, 3},
		{-1, 2, -1},
		{-4, 2, -2},
		{0, 2, 0},
	}
	for _, tt := range tests {
		if got := floorDiv(tt.a, tt.b); got != tt.want {
			t.Errorf("floorDiv(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
