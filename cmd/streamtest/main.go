// streamtest connects to the Kalshi WebSocket and prints decoded events.
// Usage: go run ./cmd/streamtest --config configs/marketmaker.yaml [--tickers A,B]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rickgao/kalshi-mm/internal/auth"
	"github.com/rickgao/kalshi-mm/internal/config"
	"github.com/rickgao/kalshi-mm/internal/market"
	"github.com/rickgao/kalshi-mm/internal/stream"
)

func main() {
	configPath := flag.String("config", "configs/marketmaker.yaml", "path to config file")
	envPath := flag.String("env", ".env", "path to dotenv file (ignored if missing)")
	tickers := flag.String("tickers", "", "comma separated market tickers (default: stream.market_tickers)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	if err := config.LoadDotEnv(*envPath); err != nil {
		logger.Error("failed to load dotenv", "error", err)
		os.Exit(1)
	}
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	creds, err := auth.LoadCredentials(cfg.Credentials.KeyID, cfg.Credentials.PrivateKeyPath)
	if err != nil {
		logger.Error("failed to load credentials", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

	sc := stream.DefaultConfig()
	sc.URL = strings.TrimRight(cfg.API.WSURL, "/") + auth.WebSocketPath
	sc.Channels = cfg.Stream.Channels
	sc.MarketTickers = cfg.Stream.MarketTickers
	if *tickers != "" {
		sc.MarketTickers = strings.Split(*tickers, ",")
	}

	client := stream.NewClient(sc, creds, stream.WithLogger(logger))
	board := market.NewBoard()

	go client.Run(ctx)

	// Stats printer
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				last, _ := board.Stats()
				logger.Info("stats",
					"connected", client.Connected(),
					"markets", board.Len(),
					"last_event_at", last,
				)
			}
		}
	}()

	logger.Info("streaming started - press Ctrl+C to stop", "url", sc.URL, "channels", sc.Channels)

	for ev := range client.Events() {
		switch ev.Type {
		case stream.EventTicker:
			board.Apply(*ev.Ticker)
			fmt.Printf("[TICKER] ticker=%s bid=%d ask=%d last=%d vol=%d\n",
				ev.Ticker.Ticker, ev.Ticker.YesBid, ev.Ticker.YesAsk, ev.Ticker.LastPrice, ev.Ticker.Volume)
		case stream.EventSubscribed:
			fmt.Printf("[SUBSCRIBED] channel=%s sid=%d\n", ev.Channel, ev.SID)
		case stream.EventError:
			fmt.Printf("[ERROR] code=%d reason=%s\n", ev.Code, ev.Reason)
		case stream.EventClosed:
			fmt.Printf("[CLOSED] code=%d reason=%s\n", ev.Code, ev.Reason)
		}
	}

	logger.Info("shutdown complete")
}
