package config

import "time"

// Config is the root configuration for a market maker instance.
type Config struct {
	Environment string            `yaml:"environment"` // demo | prod
	Credentials CredentialsConfig `yaml:"credentials"`
	API         APIConfig         `yaml:"api"`
	Strategy    StrategyConfig    `yaml:"strategy"`
	PriceFeed   PriceFeedConfig   `yaml:"price_feed"`
	Stream      StreamConfig      `yaml:"stream"`
	Journal     JournalConfig     `yaml:"journal"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Log         LogConfig         `yaml:"log"`
}

// CredentialsConfig locates the API key pair.
type CredentialsConfig struct {
	KeyID          string `yaml:"key_id"`           // API key ID (for KALSHI-ACCESS-KEY header)
	PrivateKeyPath string `yaml:"private_key_path"` // Path to RSA private key PEM file, ~ expanded
}

// APIConfig holds Kalshi API settings. Empty URLs follow Environment.
type APIConfig struct {
	RestURL     string        `yaml:"rest_url"`
	WSURL       string        `yaml:"ws_url"`
	Timeout     time.Duration `yaml:"timeout"`
	MinInterval time.Duration `yaml:"min_interval"`
	MaxPages    int           `yaml:"max_pages"`
}

// StrategyConfig selects and tunes the trading strategy.
type StrategyConfig struct {
	Name            string        `yaml:"name"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	RetryInterval   time.Duration `yaml:"retry_interval"` // Sleep after a failed cycle; 0 = refresh_interval

	FairValue FairValueConfig `yaml:"fair_value"`
	Crossing  CrossingConfig  `yaml:"crossing"`
	Inventory InventoryConfig `yaml:"inventory"`
	Sweep     SweepConfig     `yaml:"sweep"`
}

// FairValueConfig tunes the lognormal fair value quoter.
type FairValueConfig struct {
	SeriesTicker      string  `yaml:"series_ticker"`
	ImpliedVolPercent float64 `yaml:"implied_vol_percent"`
	RiskFreeRate      float64 `yaml:"risk_free_rate"`
	Spread            float64 `yaml:"spread"`
	VolumeThreshold   int64   `yaml:"volume_threshold"`
	MinFair           float64 `yaml:"min_fair"`
	MaxFair           float64 `yaml:"max_fair"`
	OrderCount        int     `yaml:"order_count"`
}

// CrossingConfig tunes the book crossing strategy.
type CrossingConfig struct {
	VolumeThreshold int64 `yaml:"volume_threshold"`
	MaxSum          int   `yaml:"max_sum"`
	Improve         int   `yaml:"improve"`
	Depth           int   `yaml:"depth"`
	OrderCount      int   `yaml:"order_count"`
}

// InventoryConfig tunes the single market inventory balancer.
type InventoryConfig struct {
	Ticker     string `yaml:"ticker"`
	MinSpread  int    `yaml:"min_spread"`
	MaxSum     int    `yaml:"max_sum"`
	OrderCount int    `yaml:"order_count"`
}

// SweepConfig tunes the near-expiry favourite sweep.
type SweepConfig struct {
	PriceThreshold  int           `yaml:"price_threshold"`
	VolumeThreshold int64         `yaml:"volume_threshold"`
	Horizon         time.Duration `yaml:"horizon"`
	OrderCount      int           `yaml:"order_count"`
}

// PriceFeedConfig locates the spot price of the underlying.
type PriceFeedConfig struct {
	URL     string        `yaml:"url"`
	Field   string        `yaml:"field"`
	Timeout time.Duration `yaml:"timeout"`
}

// StreamConfig holds WebSocket ticker stream settings.
type StreamConfig struct {
	Enabled            bool          `yaml:"enabled"`
	Channels           []string      `yaml:"channels"`
	MarketTickers      []string      `yaml:"market_tickers"`
	ReconnectBaseDelay time.Duration `yaml:"reconnect_base_delay"`
	ReconnectMaxDelay  time.Duration `yaml:"reconnect_max_delay"`
	PingInterval       time.Duration `yaml:"ping_interval"`
	ReadTimeout        time.Duration `yaml:"read_timeout"`
}

// JournalConfig selects where quote decisions are recorded.
type JournalConfig struct {
	Driver   string   `yaml:"driver"` // "" | jsonl | postgres
	Path     string   `yaml:"path"`
	Database DBConfig `yaml:"database"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Port int    `yaml:"port"`
	Path string `yaml:"path"`
}

// LogConfig holds slog handler settings.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}
