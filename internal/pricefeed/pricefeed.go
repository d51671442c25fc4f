// Package pricefeed reads the spot price of the underlying from a public
// HTTP ticker endpoint.
package pricefeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rickgao/kalshi-mm/internal/version"
)

// Defaults for a Feed.
const (
	DefaultURL     = "https://api.binance.com/api/v3/ticker/price?symbol=BTCUSDT"
	DefaultField   = "price"
	DefaultTimeout = 10 * time.Second
)

// ErrNoPrice means the response did not carry a usable price.
var ErrNoPrice = errors.New("no price in response")

// Feed fetches one spot price per call.
type Feed struct {
	url        string
	field      string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Feed.
type Option func(*Feed)

// WithField selects the JSON field holding the price, e.g. "indexPrice".
func WithField(field string) Option {
	return func(f *Feed) {
		if field != "" {
			f.field = field
		}
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Feed) {
		f.httpClient.Timeout = d
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(f *Feed) {
		f.httpClient = hc
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Feed) {
		f.logger = logger
	}
}

// New creates a Feed for url. An empty url uses DefaultURL.
func New(url string, opts ...Option) *Feed {
	if url == "" {
		url = DefaultURL
	}

	f := &Feed{
		url:   url,
		field: DefaultField,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Spot fetches the current price. The field may be a JSON string or number.
func (f *Feed) Spot(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch spot: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("read spot: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("fetch spot: status %d", resp.StatusCode)
	}

	price, err := parsePrice(body, f.field)
	if err != nil {
		return 0, fmt.Errorf("parse spot: %w", err)
	}

	f.logger.Debug("spot fetched", "price", price)
	return price, nil
}

func parsePrice(body []byte, field string) (float64, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return 0, err
	}

	raw, ok := fields[field]
	if !ok {
		return 0, fmt.Errorf("%w: field %q missing", ErrNoPrice, field)
	}

	// decimal.Decimal accepts both quoted and bare numbers.
	var d decimal.Decimal
	if err := d.UnmarshalJSON(raw); err != nil {
		return 0, fmt.Errorf("%w: field %q: %v", ErrNoPrice, field, err)
	}
	if !d.IsPositive() {
		return 0, fmt.Errorf("%w: field %q is %s", ErrNoPrice, field, d)
	}

	return d.InexactFloat64(), nil
}
