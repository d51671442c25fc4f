// marketmaker runs one quoting strategy against the Kalshi exchange.
// Usage: marketmaker --config configs/marketmaker.yaml [--env .env]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rickgao/kalshi-mm/internal/api"
	"github.com/rickgao/kalshi-mm/internal/auth"
	"github.com/rickgao/kalshi-mm/internal/config"
	"github.com/rickgao/kalshi-mm/internal/market"
	"github.com/rickgao/kalshi-mm/internal/metrics"
	"github.com/rickgao/kalshi-mm/internal/order"
	"github.com/rickgao/kalshi-mm/internal/pricefeed"
	"github.com/rickgao/kalshi-mm/internal/strategy"
	"github.com/rickgao/kalshi-mm/internal/stream"
	"github.com/rickgao/kalshi-mm/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/marketmaker.yaml", "path to config file")
	envPath := flag.String("env", ".env", "path to dotenv file (ignored if missing)")
	flag.Parse()

	if err := config.LoadDotEnv(*envPath); err != nil {
		fmt.Fprintf(os.Stderr, "load %s: %v\n", *envPath, err)
		os.Exit(1)
	}

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Log, os.Stdout)
	slog.SetDefault(logger)

	logger.Info("starting marketmaker",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
		"environment", cfg.Environment,
		"strategy", cfg.Strategy.Name,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("marketmaker failed", "error", err)
		os.Exit(1)
	}

	logger.Info("marketmaker stopped")
}

// run trades until ctx is cancelled. Only credential and signer failures are
// returned; telemetry failures are logged and trading continues.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	// Credentials are the only fatal startup dependency.
	creds, err := auth.LoadCredentials(cfg.Credentials.KeyID, cfg.Credentials.PrivateKeyPath)
	if err != nil {
		return fmt.Errorf("load credentials: %w", err)
	}
	if err := creds.Probe(); err != nil {
		return fmt.Errorf("probe signer: %w", err)
	}
	logger.Info("credentials loaded", "key_id", creds.KeyID)

	recorder := metrics.NewRecorder()

	client := api.NewClient(cfg.API.RestURL, creds,
		api.WithLogger(logger),
		api.WithTimeout(cfg.API.Timeout),
		api.WithMinInterval(cfg.API.MinInterval),
		api.WithMaxPages(cfg.API.MaxPages),
		api.WithObserver(recorder),
	)

	status, err := client.ExchangeStatus(ctx)
	if err != nil {
		logger.Warn("exchange status unavailable", "error", err)
	} else {
		logger.Info("exchange status",
			"exchange_active", status.ExchangeActive,
			"trading_active", status.TradingActive,
		)
	}

	j, err := openJournal(ctx, cfg.Journal, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := j.Close(); err != nil {
			logger.Warn("journal close failed", "error", err)
		}
	}()

	submitter := order.NewSubmitter(client,
		order.WithLogger(logger),
		order.WithObserver(recorder),
	)

	feed := pricefeed.New(cfg.PriceFeed.URL,
		pricefeed.WithField(cfg.PriceFeed.Field),
		pricefeed.WithTimeout(cfg.PriceFeed.Timeout),
		pricefeed.WithLogger(logger),
	)

	strat, err := buildStrategy(cfg.Strategy, feed, strategy.Deps{
		Data:     client,
		Orders:   submitter,
		Journal:  j,
		Recorder: recorder,
		Logger:   logger.With("strategy", cfg.Strategy.Name),
	})
	if err != nil {
		return err
	}

	runner := strategy.NewRunner(strategy.RunnerConfig{
		RefreshInterval: cfg.Strategy.RefreshInterval,
		RetryInterval:   cfg.Strategy.RetryInterval,
	}, strat, j, recorder, logger)

	var board *market.Board
	if cfg.Stream.Enabled {
		board = market.NewBoard()
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler:           newMux(cfg.Metrics.Path, recorder.Handler(), client, runner, j, board),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return runner.Run(gctx)
	})

	if board != nil {
		sc := stream.NewClient(streamConfig(cfg.API, cfg.Stream), creds,
			stream.WithLogger(logger.With("component", "stream")),
			stream.WithObserver(recorder),
		)
		g.Go(func() error {
			return sc.Run(gctx)
		})
		g.Go(func() error {
			return board.Consume(gctx, sc.Events(), logger)
		})
	}

	g.Go(func() error {
		logger.Info("starting http server",
			"port", cfg.Metrics.Port,
			"metrics_path", cfg.Metrics.Path,
		)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed, continuing without metrics and health",
				"port", cfg.Metrics.Port,
				"error", err,
			)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down...", "cause", context.Cause(gctx))
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
