package quote

import (
	"testing"
	"time"

	"github.com/rickgao/kalshi-mm/internal/model"
)

func TestNewQuote(t *testing.T) {
	tests := []struct {
		name string
		p, s float64
		bid  int
		ask  int
	}{
		{"reference", 0.62, 0.03, 60, 64},
		{"fair from pricing", 0.6389462803, 0.03, 62, 66},
		{"exact cents", 0.50, 0.02, 49, 51},
		{"zero spread", 0.555, 0, 55, 56},
		{"negative spread", 0.50, -0.2, 50, 50},
		{"low edge clamps", 0.001, 0.1, 0, 6},
		{"high edge clamps", 0.999, 0.1, 94, 100},
		{"p below zero", -1, 0.02, 0, 2},
		{"p above one", 2, 0.02, 98, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewQuote(tt.p, tt.s)
			if q.Bid != tt.bid || q.Ask != tt.ask {
				t.Errorf("NewQuote(%v, %v) = %d/%d, want %d/%d", tt.p, tt.s, q.Bid, q.Ask, tt.bid, tt.ask)
			}
		})
	}
}

func TestNewQuote_Bounds(t *testing.T) {
	for p := 0.0; p <= 1.0; p += 0.0037 {
		for _, s := range []float64{0, 0.01, 0.03, 0.25, 1.5} {
			q := NewQuote(p, s)
			if q.Bid < 0 || q.Ask > 100 || q.Bid > q.Ask {
				t.Fatalf("NewQuote(%v, %v) = %d/%d violates 0 <= bid <= ask <= 100", p, s, q.Bid, q.Ask)
			}
		}
	}
}

func market(yesBid, noBid int, vol int64) model.MarketSnapshot {
	return model.MarketSnapshot{
		Ticker:    "KXBTCD-25FEB1517-T99000",
		YesBid:    yesBid,
		NoBid:     noBid,
		Volume24h: vol,
	}
}

func TestDecide_Skips(t *testing.T) {
	params := DefaultParams(10 * time.Second)

	tests := []struct {
		name string
		m    model.MarketSnapshot
		fair float64
		want SkipReason
	}{
		{"heavy volume", market(50, 50, 1500), 0.62, SkipVolume},
		{"fair too high", market(50, 50, 10), 0.95, SkipFairRange},
		{"fair too low", market(50, 50, 10), 0.05, SkipFairRange},
		{"fair on lower edge", market(50, 50, 10), 0.10, SkipFairRange},
		{"fair on upper edge", market(50, 50, 10), 0.90, SkipFairRange},
		{"volume at threshold", market(50, 50, 1000), 0.62, SkipNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Decide(tt.m, tt.fair, params)
			if d.Skip != tt.want {
				t.Errorf("Skip = %q, want %q", d.Skip, tt.want)
			}
			if d.Skipped() && len(d.Orders) != 0 {
				t.Errorf("skipped decision carries %d orders", len(d.Orders))
			}
		})
	}
}

func TestDecide_Orders(t *testing.T) {
	params := DefaultParams(10 * time.Second)

	t.Run("yes bid below our bid buys yes at bid", func(t *testing.T) {
		d := Decide(market(55, 30, 100), 0.62, params)

		if d.Quote != (model.Quote{Bid: 60, Ask: 64}) {
			t.Fatalf("Quote = %+v", d.Quote)
		}
		if len(d.Orders) != 1 {
			t.Fatalf("len(Orders) = %d, want 1", len(d.Orders))
		}
		o := d.Orders[0]
		if o.Side != model.SideYes || o.Price != 60 || o.Action != model.ActionBuy || o.Type != model.OrderTypeLimit {
			t.Errorf("order = %+v", o)
		}
		if o.Count != 1 || o.ExpirationOffset != 10*time.Second {
			t.Errorf("count/expiry = %d/%v", o.Count, o.ExpirationOffset)
		}
		if d.Outcome() != "quote" {
			t.Errorf("Outcome() = %q", d.Outcome())
		}
	})

	t.Run("no bid above our ask buys no at ask", func(t *testing.T) {
		d := Decide(market(61, 70, 100), 0.62, params)

		if len(d.Orders) != 1 {
			t.Fatalf("len(Orders) = %d, want 1", len(d.Orders))
		}
		o := d.Orders[0]
		if o.Side != model.SideNo || o.Price != 64 {
			t.Errorf("order = %+v, want buy no at 64", o)
		}
	})

	t.Run("both sides", func(t *testing.T) {
		d := Decide(market(40, 80, 0), 0.62, params)
		if len(d.Orders) != 2 {
			t.Fatalf("len(Orders) = %d, want 2", len(d.Orders))
		}
		if d.Orders[0].Side != model.SideYes || d.Orders[1].Side != model.SideNo {
			t.Errorf("sides = %s,%s", d.Orders[0].Side, d.Orders[1].Side)
		}
	})

	t.Run("no edge", func(t *testing.T) {
		d := Decide(market(60, 30, 0), 0.62, params)
		if len(d.Orders) != 0 || d.Skipped() {
			t.Errorf("decision = %+v, want quote with no orders", d)
		}
		if d.Outcome() != "no_edge" {
			t.Errorf("Outcome() = %q", d.Outcome())
		}
	})

	t.Run("order count floor", func(t *testing.T) {
		p := params
		p.OrderCount = 0
		d := Decide(market(10, 0, 0), 0.62, p)
		if len(d.Orders) != 1 || d.Orders[0].Count != 1 {
			t.Errorf("orders = %+v", d.Orders)
		}
	})
}
