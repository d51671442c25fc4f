package api

import (
	"context"

	"github.com/rickgao/kalshi-mm/internal/model"
)

// The methods below return model types and are what strategies consume.

// Markets lists every market matching opts.
func (c *Client) Markets(ctx context.Context, opts GetMarketsOptions) ([]model.MarketSnapshot, error) {
	raw, err := c.GetAllMarkets(ctx, opts)
	if err != nil {
		return nil, err
	}

	markets := make([]model.MarketSnapshot, 0, len(raw))
	for i := range raw {
		markets = append(markets, raw[i].ToModel())
	}
	return markets, nil
}

// OrderBook fetches one market's book at the given depth.
func (c *Client) OrderBook(ctx context.Context, ticker string, depth int) (model.OrderBook, error) {
	resp, err := c.GetOrderbook(ctx, ticker, depth)
	if err != nil {
		return model.OrderBook{}, err
	}
	return resp.ToModel(ticker), nil
}

// Positions lists every market position matching opts.
func (c *Client) Positions(ctx context.Context, opts GetPositionsOptions) ([]model.Position, error) {
	raw, err := c.GetAllPositions(ctx, opts)
	if err != nil {
		return nil, err
	}

	positions := make([]model.Position, 0, len(raw))
	for i := range raw {
		positions = append(positions, raw[i].ToModel())
	}
	return positions, nil
}

// Balance fetches the available balance.
func (c *Client) Balance(ctx context.Context) (model.Balance, error) {
	resp, err := c.GetBalance(ctx)
	if err != nil {
		return model.Balance{}, err
	}
	return model.Balance{Balance: resp.Balance}, nil
}

// ExchangeStatus fetches the exchange status.
func (c *Client) ExchangeStatus(ctx context.Context) (model.ExchangeStatus, error) {
	resp, err := c.GetExchangeStatus(ctx)
	if err != nil {
		return model.ExchangeStatus{}, err
	}
	return model.ExchangeStatus{
		ExchangeActive: resp.ExchangeActive,
		TradingActive:  resp.TradingActive,
	}, nil
}
