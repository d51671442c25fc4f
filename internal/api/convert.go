package api

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rickgao/kalshi-mm/internal/model"
)

var hundred = decimal.NewFromInt(100)

// DollarsToCents converts a dollar string to whole cents, rounding half up.
// "0.52" -> 52, "0.5250" -> 53. Returns 0 for empty or invalid input.
func DollarsToCents(dollars string) int {
	dollars = strings.TrimSpace(dollars)
	if dollars == "" {
		return 0
	}

	d, err := decimal.NewFromString(dollars)
	if err != nil {
		return 0
	}

	return int(d.Mul(hundred).Round(0).IntPart())
}

// centsOr prefers the integer cents field and falls back to the dollar string.
func centsOr(cents int, dollars string) int {
	if cents != 0 {
		return cents
	}
	return DollarsToCents(dollars)
}

// ParseTimestamp parses an ISO 8601 timestamp into UTC.
// Returns the zero time for empty or invalid input.
func ParseTimestamp(iso string) time.Time {
	if iso == "" {
		return time.Time{}
	}

	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		// Try without timezone
		t, err = time.Parse("2006-01-02T15:04:05", iso)
		if err != nil {
			return time.Time{}
		}
	}

	return t.UTC()
}

// ToModel converts an APIMarket to model.MarketSnapshot.
func (m *APIMarket) ToModel() model.MarketSnapshot {
	var strike decimal.Decimal
	if m.FloorStrike.Valid {
		strike = m.FloorStrike.Decimal
	}

	return model.MarketSnapshot{
		Ticker:      m.Ticker,
		EventTicker: m.EventTicker,
		Status:      m.Status,
		Strike:      strike,
		Expiration:  ParseTimestamp(m.ExpirationTime),
		CloseTime:   ParseTimestamp(m.CloseTime),
		YesBid:      centsOr(m.YesBid, m.YesBidDollars),
		YesAsk:      centsOr(m.YesAsk, m.YesAskDollars),
		NoBid:       centsOr(m.NoBid, m.NoBidDollars),
		NoAsk:       centsOr(m.NoAsk, m.NoAskDollars),
		Volume:      m.Volume,
		Volume24h:   m.Volume24h,
	}
}

// ToModel converts an OrderbookResponse to model.OrderBook.
// Malformed levels (fewer than two values) are dropped.
func (o *OrderbookResponse) ToModel(ticker string) model.OrderBook {
	return model.OrderBook{
		Ticker: ticker,
		Yes:    toLevels(o.Orderbook.Yes),
		No:     toLevels(o.Orderbook.No),
	}
}

func toLevels(raw [][]int) []model.PriceLevel {
	levels := make([]model.PriceLevel, 0, len(raw))
	for _, level := range raw {
		if len(level) >= 2 {
			levels = append(levels, model.PriceLevel{
				Price: level[0],
				Size:  level[1],
			})
		}
	}
	return levels
}

// ToModel converts an APIMarketPosition to model.Position.
func (p *APIMarketPosition) ToModel() model.Position {
	return model.Position{
		Ticker:   p.Ticker,
		Position: p.Position,
	}
}

// ToAck converts an APIOrder to model.OrderAck.
func (o *APIOrder) ToAck() model.OrderAck {
	return model.OrderAck{
		OrderID:       o.OrderID,
		ClientOrderID: o.ClientOrderID,
		Ticker:        o.Ticker,
		Status:        o.Status,
	}
}

// NewCreateOrderRequest builds the wire payload for req. A non-zero
// expiration offset becomes an absolute Unix-seconds deadline from now.
func NewCreateOrderRequest(req model.OrderRequest, now time.Time) CreateOrderRequest {
	out := CreateOrderRequest{
		Action:        string(req.Action),
		ClientOrderID: req.ClientOrderID,
		Count:         req.Count,
		Side:          string(req.Side),
		Ticker:        req.Ticker,
		Type:          string(req.Type),
	}

	if req.ExpirationOffset > 0 {
		ts := now.Add(req.ExpirationOffset).Unix()
		out.ExpirationTS = &ts
	}

	if req.Type == model.OrderTypeMarket && req.Price == 0 {
		return out
	}
	price := req.Price
	if req.Side == model.SideYes {
		out.YesPrice = &price
	} else {
		out.NoPrice = &price
	}

	return out
}
