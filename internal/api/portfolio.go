package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// GetPositions fetches a page of portfolio positions.
func (c *Client) GetPositions(ctx context.Context, opts GetPositionsOptions) (*PositionsResponse, error) {
	query := url.Values{}

	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Cursor != "" {
		query.Set("cursor", opts.Cursor)
	}
	if opts.Ticker != "" {
		query.Set("ticker", opts.Ticker)
	}
	if opts.EventTicker != "" {
		query.Set("event_ticker", opts.EventTicker)
	}
	if opts.CountFilter != "" {
		query.Set("count_filter", opts.CountFilter)
	}
	if opts.SettlementStatus != "" {
		query.Set("settlement_status", opts.SettlementStatus)
	}

	var resp PositionsResponse
	if err := c.get(ctx, "/portfolio/positions", query, &resp); err != nil {
		return nil, fmt.Errorf("get positions: %w", err)
	}

	return &resp, nil
}

// GetAllPositions fetches every market position matching opts.
func (c *Client) GetAllPositions(ctx context.Context, opts GetPositionsOptions) ([]APIMarketPosition, error) {
	return paginate(ctx, "/portfolio/positions", opts.Cursor, c.maxPages, func(ctx context.Context, cursor string) ([]APIMarketPosition, string, error) {
		opts.Cursor = cursor
		resp, err := c.GetPositions(ctx, opts)
		if err != nil {
			return nil, "", err
		}
		return resp.MarketPositions, resp.Cursor, nil
	})
}

// GetBalance fetches the available balance.
func (c *Client) GetBalance(ctx context.Context) (*BalanceResponse, error) {
	var resp BalanceResponse
	if err := c.get(ctx, "/portfolio/balance", nil, &resp); err != nil {
		return nil, fmt.Errorf("get balance: %w", err)
	}
	return &resp, nil
}
