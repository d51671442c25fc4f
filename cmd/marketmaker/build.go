package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/rickgao/kalshi-mm/internal/auth"
	"github.com/rickgao/kalshi-mm/internal/config"
	"github.com/rickgao/kalshi-mm/internal/database"
	"github.com/rickgao/kalshi-mm/internal/journal"
	"github.com/rickgao/kalshi-mm/internal/quote"
	"github.com/rickgao/kalshi-mm/internal/strategy"
	"github.com/rickgao/kalshi-mm/internal/stream"
)

// newLogger builds the process logger from config.
func newLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// buildStrategy selects the configured strategy. Orders from every strategy
// expire after one refresh interval.
func buildStrategy(cfg config.StrategyConfig, spot strategy.SpotSource, deps strategy.Deps) (strategy.Strategy, error) {
	expiration := cfg.RefreshInterval

	switch cfg.Name {
	case config.StrategyFairValue:
		fv := cfg.FairValue
		return strategy.NewFairValue(strategy.FairValueConfig{
			SeriesTicker:      fv.SeriesTicker,
			ImpliedVolPercent: fv.ImpliedVolPercent,
			RiskFreeRate:      fv.RiskFreeRate,
			Quote: quote.Params{
				Spread:          fv.Spread,
				VolumeThreshold: fv.VolumeThreshold,
				MinFair:         fv.MinFair,
				MaxFair:         fv.MaxFair,
				OrderCount:      fv.OrderCount,
				Expiration:      expiration,
			},
		}, spot, deps), nil

	case config.StrategyCrossing:
		c := cfg.Crossing
		return strategy.NewCrossing(strategy.CrossingConfig{
			VolumeThreshold: c.VolumeThreshold,
			MaxSum:          c.MaxSum,
			Improve:         c.Improve,
			Depth:           c.Depth,
			OrderCount:      c.OrderCount,
			Expiration:      expiration,
		}, deps), nil

	case config.StrategyInventory:
		inv := cfg.Inventory
		return strategy.NewInventory(strategy.InventoryConfig{
			Ticker:     inv.Ticker,
			MinSpread:  inv.MinSpread,
			MaxSum:     inv.MaxSum,
			OrderCount: inv.OrderCount,
			Expiration: expiration,
		}, deps), nil

	case config.StrategySweep:
		sw := cfg.Sweep
		return strategy.NewSweep(strategy.SweepConfig{
			PriceThreshold:  sw.PriceThreshold,
			VolumeThreshold: sw.VolumeThreshold,
			Horizon:         sw.Horizon,
			OrderCount:      sw.OrderCount,
			Expiration:      expiration,
		}, deps), nil
	}

	return nil, fmt.Errorf("unknown strategy %q", cfg.Name)
}

// openJournal opens the configured sink. The returned journal owns any
// database pool it created. A sink that cannot be opened degrades to
// journal.Nop; only an unknown driver is an error.
func openJournal(ctx context.Context, cfg config.JournalConfig, logger *slog.Logger) (journal.Journal, error) {
	unavailable := func(err error) journal.Journal {
		logger.Warn("journal unavailable, quoting without it", "driver", cfg.Driver, "error", err)
		return journal.Nop{}
	}

	switch cfg.Driver {
	case config.JournalNone:
		return journal.Nop{}, nil

	case config.JournalJSONL:
		j, err := journal.NewJSONL(cfg.Path)
		if err != nil {
			return unavailable(fmt.Errorf("open jsonl journal: %w", err)), nil
		}
		logger.Info("journal enabled", "driver", cfg.Driver, "path", cfg.Path)
		return j, nil

	case config.JournalPostgres:
		pool, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			return unavailable(err), nil
		}
		j := journal.NewPostgres(pool, journal.DefaultBatchSize, logger)
		if err := j.EnsureSchema(ctx); err != nil {
			pool.Close()
			return unavailable(fmt.Errorf("ensure journal schema: %w", err)), nil
		}
		logger.Info("journal enabled",
			"driver", cfg.Driver,
			"host", cfg.Database.Host,
			"database", cfg.Database.Name,
		)
		return &poolJournal{Postgres: j, close: pool.Close}, nil
	}

	return nil, fmt.Errorf("unknown journal driver %q", cfg.Driver)
}

// poolJournal closes the pool after the journal.
type poolJournal struct {
	*journal.Postgres
	close func()
}

func (p *poolJournal) Close() error {
	err := p.Postgres.Close()
	p.close()
	return err
}

// streamConfig maps config onto the stream client.
func streamConfig(api config.APIConfig, cfg config.StreamConfig) stream.Config {
	sc := stream.DefaultConfig()
	sc.URL = strings.TrimRight(api.WSURL, "/") + auth.WebSocketPath
	sc.Channels = cfg.Channels
	sc.MarketTickers = cfg.MarketTickers
	sc.ReconnectBaseDelay = cfg.ReconnectBaseDelay
	sc.ReconnectMaxDelay = cfg.ReconnectMaxDelay
	sc.PingInterval = cfg.PingInterval
	sc.ReadTimeout = cfg.ReadTimeout
	return sc
}
