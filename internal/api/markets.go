package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// GetMarkets fetches a page of markets.
func (c *Client) GetMarkets(ctx context.Context, opts GetMarketsOptions) (*MarketsResponse, error) {
	query := url.Values{}

	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Cursor != "" {
		query.Set("cursor", opts.Cursor)
	}
	if opts.EventTicker != "" {
		query.Set("event_ticker", opts.EventTicker)
	}
	if opts.SeriesTicker != "" {
		query.Set("series_ticker", opts.SeriesTicker)
	}
	if len(opts.Tickers) > 0 {
		query.Set("tickers", strings.Join(opts.Tickers, ","))
	}
	if opts.Status != "" {
		query.Set("status", opts.Status)
	}
	if opts.MinCloseTS > 0 {
		query.Set("min_close_ts", strconv.FormatInt(opts.MinCloseTS, 10))
	}
	if opts.MaxCloseTS > 0 {
		query.Set("max_close_ts", strconv.FormatInt(opts.MaxCloseTS, 10))
	}

	var resp MarketsResponse
	if err := c.get(ctx, "/markets", query, &resp); err != nil {
		return nil, fmt.Errorf("get markets: %w", err)
	}

	return &resp, nil
}

// GetAllMarkets fetches all markets matching opts by following cursors.
// opts.Cursor is used as the starting cursor.
func (c *Client) GetAllMarkets(ctx context.Context, opts GetMarketsOptions) ([]APIMarket, error) {
	if opts.Limit == 0 {
		opts.Limit = 1000 // Max page size
	}

	return paginate(ctx, "/markets", opts.Cursor, c.maxPages, func(ctx context.Context, cursor string) ([]APIMarket, string, error) {
		opts.Cursor = cursor
		resp, err := c.GetMarkets(ctx, opts)
		if err != nil {
			return nil, "", err
		}
		return resp.Markets, resp.Cursor, nil
	})
}

// GetOrderbook fetches the orderbook for a market. depth <= 0 returns all levels.
func (c *Client) GetOrderbook(ctx context.Context, ticker string, depth int) (*OrderbookResponse, error) {
	query := url.Values{}
	if depth > 0 {
		query.Set("depth", strconv.Itoa(depth))
	}

	var resp OrderbookResponse
	if err := c.get(ctx, "/markets/"+url.PathEscape(ticker)+"/orderbook", query, &resp); err != nil {
		return nil, fmt.Errorf("get orderbook %s: %w", ticker, err)
	}

	return &resp, nil
}

// paginate follows cursors until the exchange returns an empty one. A cursor
// that was already seen, or more than maxPages pages, is a protocol error.
func paginate[T any](
	ctx context.Context,
	endpoint string,
	cursor string,
	maxPages int,
	fetch func(ctx context.Context, cursor string) ([]T, string, error),
) ([]T, error) {
	var all []T
	seen := make(map[string]struct{})
	if cursor != "" {
		seen[cursor] = struct{}{}
	}

	for page := 1; ; page++ {
		if maxPages > 0 && page > maxPages {
			return nil, &PaginationProtocolError{Endpoint: endpoint, Cursor: cursor, Page: page, Err: ErrTooManyPages}
		}

		items, next, err := fetch(ctx, cursor)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)

		if next == "" {
			return all, nil
		}
		if _, dup := seen[next]; dup {
			return nil, &PaginationProtocolError{Endpoint: endpoint, Cursor: next, Page: page, Err: ErrPaginationLoop}
		}
		seen[next] = struct{}{}
		cursor = next
	}
}
