package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/rickgao/kalshi-mm/internal/auth"
)

// Defaults for a new Client.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMinInterval = 100 * time.Millisecond
	DefaultMaxPages    = 1000
)

// RequestObserver is notified after every completed HTTP exchange.
// status is 0 when no response was received.
type RequestObserver interface {
	ObserveRequest(method string, status int, elapsed time.Duration)
}

// Client provides signed, rate-limited access to the Kalshi REST API.
// All calls made through one Client share a single spacer.
type Client struct {
	baseURL    string
	creds      *auth.Credentials
	httpClient *http.Client
	logger     *slog.Logger
	observer   RequestObserver

	spacer   *spacer
	maxPages int
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a new REST API client. baseURL includes the API prefix,
// e.g. https://demo-api.kalshi.co/trade-api/v2. creds may be nil for
// unauthenticated reads.
func NewClient(baseURL string, creds *auth.Credentials, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		creds:   creds,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger:   slog.Default(),
		spacer:   newSpacer(DefaultMinInterval),
		maxPages: DefaultMaxPages,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithMinInterval sets the minimum spacing between the end of one call and
// the start of the next.
func WithMinInterval(d time.Duration) ClientOption {
	return func(c *Client) {
		c.spacer = newSpacer(d)
	}
}

// WithMaxPages caps how many pages a pagination loop may fetch.
func WithMaxPages(n int) ClientOption {
	return func(c *Client) {
		c.maxPages = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithObserver registers a request observer (metrics).
func WithObserver(o RequestObserver) ClientOption {
	return func(c *Client) {
		c.observer = o
	}
}

// BaseURL returns the REST base URL the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}
