package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// CreateOrder posts an order. Anything but 201 Created is reported as
// *OrderRejected; the call is never retried.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*APIOrder, error) {
	status, body, err := c.doRequest(ctx, http.MethodPost, "/portfolio/orders", nil, req)
	if err != nil {
		var httpErr *HTTPError
		if errors.As(err, &httpErr) {
			return nil, &OrderRejected{StatusCode: httpErr.StatusCode, Body: httpErr.Body, Ticker: req.Ticker}
		}
		return nil, fmt.Errorf("create order %s: %w", req.Ticker, err)
	}
	if status != http.StatusCreated {
		return nil, &OrderRejected{StatusCode: status, Body: body, Ticker: req.Ticker}
	}

	var resp OrderResponse
	if err := decode(body, &resp); err != nil {
		return nil, fmt.Errorf("create order %s: %w", req.Ticker, err)
	}
	return &resp.Order, nil
}

// CancelOrder cancels a resting order by exchange order id.
func (c *Client) CancelOrder(ctx context.Context, orderID string) (*CancelOrderResponse, error) {
	var resp CancelOrderResponse
	if err := c.delete(ctx, "/portfolio/orders/"+url.PathEscape(orderID), &resp); err != nil {
		return nil, fmt.Errorf("cancel order %s: %w", orderID, err)
	}
	return &resp, nil
}
