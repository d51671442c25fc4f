package api

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rickgao/kalshi-mm/internal/model"
)

func TestDollarsToCents(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"0.52", 52},
		{"0.5250", 53},
		{"0.5249", 52},
		{"0.00", 0},
		{"1.00", 100},
		{"0.01", 1},
		{"", 0},
		{"invalid", 0},
		{"  0.52  ", 52},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := DollarsToCents(tt.input)
			if got != tt.want {
				t.Errorf("DollarsToCents(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	if got := ParseTimestamp(""); !got.IsZero() {
		t.Errorf("ParseTimestamp(\"\") = %v, want zero", got)
	}
	if got := ParseTimestamp("invalid"); !got.IsZero() {
		t.Errorf("ParseTimestamp(\"invalid\") = %v, want zero", got)
	}

	got := ParseTimestamp("2024-01-15T12:30:45Z")
	want := time.Date(2024, 1, 15, 12, 30, 45, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("ParseTimestamp(RFC3339) = %v, want %v", got, want)
	}

	got = ParseTimestamp("2024-01-15T07:30:45-05:00")
	if !got.Equal(want) || got.Location() != time.UTC {
		t.Errorf("ParseTimestamp(offset) = %v, want %v in UTC", got, want)
	}

	got = ParseTimestamp("2024-01-15T12:30:45")
	if !got.Equal(want) {
		t.Errorf("ParseTimestamp(no zone) = %v, want %v", got, want)
	}
}

func TestAPIMarketToModel(t *testing.T) {
	raw := `{
		"ticker": "KXBTCD-25FEB1517-T99999.99",
		"event_ticker": "KXBTCD-25FEB1517",
		"status": "active",
		"strike_type": "greater",
		"floor_strike": 99999.99,
		"yes_bid": 61,
		"yes_ask": 0,
		"yes_ask_dollars": "0.6500",
		"no_bid": 35,
		"no_ask": 39,
		"volume": 5000,
		"volume_24h": 420,
		"close_time": "2025-02-15T22:00:00Z",
		"expiration_time": "2025-02-15T22:00:00Z"
	}`

	var m APIMarket
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	got := m.ToModel()

	if got.Ticker != "KXBTCD-25FEB1517-T99999.99" {
		t.Errorf("Ticker = %q", got.Ticker)
	}
	if got.EventTicker != "KXBTCD-25FEB1517" {
		t.Errorf("EventTicker = %q", got.EventTicker)
	}
	if !got.Strike.Equal(decimal.RequireFromString("99999.99")) {
		t.Errorf("Strike = %s, want 99999.99", got.Strike)
	}
	if got.YesBid != 61 {
		t.Errorf("YesBid = %d, want 61", got.YesBid)
	}
	if got.YesAsk != 65 {
		t.Errorf("YesAsk = %d, want 65 (from dollars)", got.YesAsk)
	}
	if got.NoBid != 35 || got.NoAsk != 39 {
		t.Errorf("NoBid/NoAsk = %d/%d, want 35/39", got.NoBid, got.NoAsk)
	}
	if got.Volume != 5000 || got.Volume24h != 420 {
		t.Errorf("Volume/Volume24h = %d/%d, want 5000/420", got.Volume, got.Volume24h)
	}
	wantExp := time.Date(2025, 2, 15, 22, 0, 0, 0, time.UTC)
	if !got.Expiration.Equal(wantExp) {
		t.Errorf("Expiration = %v, want %v", got.Expiration, wantExp)
	}
	if !got.HasStrike() {
		t.Error("HasStrike() = false, want true")
	}
}

func TestAPIMarketToModel_NoStrike(t *testing.T) {
	var m APIMarket
	if err := json.Unmarshal([]byte(`{"ticker":"KXGREENLAND-29","floor_strike":null}`), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	got := m.ToModel()
	if got.HasStrike() {
		t.Errorf("HasStrike() = true for null strike (Strike = %s)", got.Strike)
	}
}

func TestOrderbookResponseToModel(t *testing.T) {
	resp := OrderbookResponse{
		Orderbook: APIOrderbook{
			Yes: [][]int{{45, 100}, {44, 200}},
			No:  [][]int{{50, 10}, {7}},
		},
	}

	book := resp.ToModel("TICKER")

	if book.Ticker != "TICKER" {
		t.Errorf("Ticker = %q", book.Ticker)
	}
	if len(book.Yes) != 2 {
		t.Fatalf("len(Yes) = %d, want 2", len(book.Yes))
	}
	if book.Yes[1] != (model.PriceLevel{Price: 44, Size: 200}) {
		t.Errorf("Yes[1] = %+v", book.Yes[1])
	}
	if len(book.No) != 1 {
		t.Errorf("len(No) = %d, want 1 (malformed level dropped)", len(book.No))
	}

	empty := (&OrderbookResponse{}).ToModel("EMPTY")
	if _, ok := empty.BestYes(); ok {
		t.Error("BestYes() on empty book reported a price")
	}
}

func TestNewCreateOrderRequest(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	t.Run("yes side sets yes_price only", func(t *testing.T) {
		req := model.OrderRequest{
			ClientOrderID:    "mm-1",
			Ticker:           "T",
			Action:           model.ActionBuy,
			Side:             model.SideYes,
			Type:             model.OrderTypeLimit,
			Price:            62,
			Count:            1,
			ExpirationOffset: 30 * time.Second,
		}

		out := NewCreateOrderRequest(req, now)

		if out.YesPrice == nil || *out.YesPrice != 62 {
			t.Errorf("YesPrice = %v, want 62", out.YesPrice)
		}
		if out.NoPrice != nil {
			t.Errorf("NoPrice = %d, want nil", *out.NoPrice)
		}
		if out.ExpirationTS == nil || *out.ExpirationTS != 1_700_000_030 {
			t.Errorf("ExpirationTS = %v, want 1700000030", out.ExpirationTS)
		}

		data, err := json.Marshal(out)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var fields map[string]any
		if err := json.Unmarshal(data, &fields); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if _, ok := fields["no_price"]; ok {
			t.Errorf("payload carries no_price: %s", data)
		}
		if fields["type"] != "limit" || fields["action"] != "buy" || fields["side"] != "yes" {
			t.Errorf("payload = %s", data)
		}
	})

	t.Run("no side sets no_price only", func(t *testing.T) {
		req := model.OrderRequest{
			Ticker: "T",
			Action: model.ActionBuy,
			Side:   model.SideNo,
			Type:   model.OrderTypeLimit,
			Price:  66,
			Count:  1,
		}

		out := NewCreateOrderRequest(req, now)

		if out.NoPrice == nil || *out.NoPrice != 66 {
			t.Errorf("NoPrice = %v, want 66", out.NoPrice)
		}
		if out.YesPrice != nil {
			t.Errorf("YesPrice = %d, want nil", *out.YesPrice)
		}
		if out.ExpirationTS != nil {
			t.Errorf("ExpirationTS = %d, want nil for zero offset", *out.ExpirationTS)
		}
	})

	t.Run("market order without cap omits prices", func(t *testing.T) {
		req := model.OrderRequest{
			Ticker: "T",
			Action: model.ActionBuy,
			Side:   model.SideYes,
			Type:   model.OrderTypeMarket,
			Count:  1,
		}

		out := NewCreateOrderRequest(req, now)

		if out.YesPrice != nil || out.NoPrice != nil {
			t.Errorf("prices = %v/%v, want both nil", out.YesPrice, out.NoPrice)
		}
		if out.Type != "market" {
			t.Errorf("Type = %q, want market", out.Type)
		}
	})
}
