package config

import "time"

// Environment names.
const (
	EnvDemo = "demo"
	EnvProd = "prod"
)

// Endpoints pairs the REST and WebSocket base URLs of one environment.
type Endpoints struct {
	RestURL string
	WSURL   string
}

// Environments maps each environment to its fixed endpoints.
var Environments = map[string]Endpoints{
	EnvDemo: {
		RestURL: "https://demo-api.kalshi.co/trade-api/v2",
		WSURL:   "wss://demo-api.kalshi.co",
	},
	EnvProd: {
		RestURL: "https://api.elections.kalshi.com/trade-api/v2",
		WSURL:   "wss://api.elections.kalshi.com",
	},
}

// Strategy names.
const (
	StrategyFairValue = "fair_value"
	StrategyCrossing  = "crossing"
	StrategyInventory = "inventory"
	StrategySweep     = "sweep"
)

// Journal drivers.
const (
	JournalNone     = ""
	JournalJSONL    = "jsonl"
	JournalPostgres = "postgres"
)

// Default values for optional configuration fields.
const (
	DefaultEnvironment        = EnvDemo
	DefaultAPITimeout         = 30 * time.Second
	DefaultMinInterval        = 100 * time.Millisecond
	DefaultMaxPages           = 1000
	DefaultStrategy           = StrategyFairValue
	DefaultRefreshInterval    = 10 * time.Second
	DefaultSeriesTicker       = "KXBTCD"
	DefaultImpliedVolPercent  = 52
	DefaultSpread             = 0.03
	DefaultFairVolume         = 1000
	DefaultMinFair            = 0.10
	DefaultMaxFair            = 0.90
	DefaultOrderCount         = 1
	DefaultCrossingVolume     = 1000
	DefaultCrossingMaxSum     = 95
	DefaultCrossingImprove    = 5
	DefaultCrossingDepth      = 1
	DefaultInventoryTicker    = "KXGREENLAND"
	DefaultInventoryMinSpread = 5
	DefaultInventoryMaxSum    = 97
	DefaultSweepPrice         = 90
	DefaultSweepVolume        = 100
	DefaultSweepHorizon       = 24 * time.Hour
	DefaultPriceFeedURL       = "https://api.binance.com/api/v3/ticker/price?symbol=BTCUSDT"
	DefaultPriceField         = "price"
	DefaultPriceFeedTimeout   = 10 * time.Second
	DefaultStreamChannel      = "ticker"
	DefaultReconnectBaseDelay = 1 * time.Second
	DefaultReconnectMaxDelay  = 60 * time.Second
	DefaultPingInterval       = 15 * time.Second
	DefaultReadTimeout        = 30 * time.Second
	DefaultJournalPath        = "data/quotes.jsonl"
	DefaultDBPort             = 5432
	DefaultDBSSLMode          = "prefer"
	DefaultMaxConns           = 4
	DefaultMinConns           = 1
	DefaultMetricsPort        = 9090
	DefaultMetricsPath        = "/metrics"
	DefaultLogLevel           = "info"
	DefaultLogFormat          = "text"
)

func (c *Config) applyDefaults() {
	if c.Environment == "" {
		c.Environment = DefaultEnvironment
	}

	// API defaults follow the environment
	if ep, ok := Environments[c.Environment]; ok {
		if c.API.RestURL == "" {
			c.API.RestURL = ep.RestURL
		}
		if c.API.WSURL == "" {
			c.API.WSURL = ep.WSURL
		}
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.API.MinInterval == 0 {
		c.API.MinInterval = DefaultMinInterval
	}
	if c.API.MaxPages == 0 {
		c.API.MaxPages = DefaultMaxPages
	}

	c.Strategy.applyDefaults()

	// Price feed defaults
	if c.PriceFeed.URL == "" {
		c.PriceFeed.URL = DefaultPriceFeedURL
	}
	if c.PriceFeed.Field == "" {
		c.PriceFeed.Field = DefaultPriceField
	}
	if c.PriceFeed.Timeout == 0 {
		c.PriceFeed.Timeout = DefaultPriceFeedTimeout
	}

	// Stream defaults
	if len(c.Stream.Channels) == 0 {
		c.Stream.Channels = []string{DefaultStreamChannel}
	}
	if c.Stream.ReconnectBaseDelay == 0 {
		c.Stream.ReconnectBaseDelay = DefaultReconnectBaseDelay
	}
	if c.Stream.ReconnectMaxDelay == 0 {
		c.Stream.ReconnectMaxDelay = DefaultReconnectMaxDelay
	}
	if c.Stream.PingInterval == 0 {
		c.Stream.PingInterval = DefaultPingInterval
	}
	if c.Stream.ReadTimeout == 0 {
		c.Stream.ReadTimeout = DefaultReadTimeout
	}

	// Journal defaults
	if c.Journal.Driver == JournalJSONL && c.Journal.Path == "" {
		c.Journal.Path = DefaultJournalPath
	}
	if c.Journal.Driver == JournalPostgres {
		applyDBDefaults(&c.Journal.Database)
	}

	// Metrics defaults
	if c.Metrics.Port == 0 {
		c.Metrics.Port = DefaultMetricsPort
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}

	// Log defaults
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}

// newConfig returns a Config preset with the defaults whose zero value is a
// legitimate setting. YAML decodes over them, so an explicit 0 survives.
func newConfig() Config {
	return Config{
		Strategy: StrategyConfig{
			FairValue: FairValueConfig{
				Spread:  DefaultSpread,
				MinFair: DefaultMinFair,
			},
		},
	}
}

func (s *StrategyConfig) applyDefaults() {
	if s.Name == "" {
		s.Name = DefaultStrategy
	}
	if s.RefreshInterval == 0 {
		s.RefreshInterval = DefaultRefreshInterval
	}
	if s.RetryInterval == 0 {
		s.RetryInterval = s.RefreshInterval
	}

	fv := &s.FairValue
	if fv.SeriesTicker == "" {
		fv.SeriesTicker = DefaultSeriesTicker
	}
	if fv.ImpliedVolPercent == 0 {
		fv.ImpliedVolPercent = DefaultImpliedVolPercent
	}
	if fv.VolumeThreshold == 0 {
		fv.VolumeThreshold = DefaultFairVolume
	}
	if fv.MaxFair == 0 {
		fv.MaxFair = DefaultMaxFair
	}
	if fv.OrderCount == 0 {
		fv.OrderCount = DefaultOrderCount
	}

	cr := &s.Crossing
	if cr.VolumeThreshold == 0 {
		cr.VolumeThreshold = DefaultCrossingVolume
	}
	if cr.MaxSum == 0 {
		cr.MaxSum = DefaultCrossingMaxSum
	}
	if cr.Improve == 0 {
		cr.Improve = DefaultCrossingImprove
	}
	if cr.Depth == 0 {
		cr.Depth = DefaultCrossingDepth
	}
	if cr.OrderCount == 0 {
		cr.OrderCount = DefaultOrderCount
	}

	inv := &s.Inventory
	if inv.Ticker == "" {
		inv.Ticker = DefaultInventoryTicker
	}
	if inv.MinSpread == 0 {
		inv.MinSpread = DefaultInventoryMinSpread
	}
	if inv.MaxSum == 0 {
		inv.MaxSum = DefaultInventoryMaxSum
	}
	if inv.OrderCount == 0 {
		inv.OrderCount = DefaultOrderCount
	}

	sw := &s.Sweep
	if sw.PriceThreshold == 0 {
		sw.PriceThreshold = DefaultSweepPrice
	}
	if sw.VolumeThreshold == 0 {
		sw.VolumeThreshold = DefaultSweepVolume
	}
	if sw.Horizon == 0 {
		sw.Horizon = DefaultSweepHorizon
	}
	if sw.OrderCount == 0 {
		sw.OrderCount = DefaultOrderCount
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
