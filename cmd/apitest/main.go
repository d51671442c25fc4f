// apitest runs a signed smoke test against the configured Kalshi environment.
// Usage: go run ./cmd/apitest --config configs/marketmaker.yaml [--ticker T] [--cancel ORDER_ID]
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/rickgao/kalshi-mm/internal/api"
	"github.com/rickgao/kalshi-mm/internal/auth"
	"github.com/rickgao/kalshi-mm/internal/config"
)

func main() {
	configPath := flag.String("config", "configs/marketmaker.yaml", "path to config file")
	envPath := flag.String("env", ".env", "path to dotenv file (ignored if missing)")
	ticker := flag.String("ticker", "", "market for the order book test (default: first listed market)")
	cancelID := flag.String("cancel", "", "order id to cancel")
	flag.Parse()

	if err := config.LoadDotEnv(*envPath); err != nil {
		log.Fatalf("load %s: %v", *envPath, err)
	}
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	creds, err := auth.LoadCredentials(cfg.Credentials.KeyID, cfg.Credentials.PrivateKeyPath)
	if err != nil {
		log.Fatalf("load credentials: %v", err)
	}
	if err := creds.Probe(); err != nil {
		log.Fatalf("probe signer: %v", err)
	}

	client := api.NewClient(cfg.API.RestURL, creds,
		api.WithTimeout(cfg.API.Timeout),
		api.WithMinInterval(cfg.API.MinInterval),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	fmt.Printf("Environment: %s (%s)\n", cfg.Environment, client.BaseURL())

	// Test 1: Exchange Status
	fmt.Println("\n=== Testing Exchange Status ===")
	status, err := client.ExchangeStatus(ctx)
	if err != nil {
		log.Fatalf("ExchangeStatus failed: %v", err)
	}
	fmt.Printf("Exchange Active: %v\n", status.ExchangeActive)
	fmt.Printf("Trading Active: %v\n", status.TradingActive)

	// Test 2: Balance
	fmt.Println("\n=== Testing Balance ===")
	balance, err := client.Balance(ctx)
	if err != nil {
		log.Fatalf("Balance failed: %v", err)
	}
	fmt.Printf("Balance: %d cents\n", balance.Balance)

	// Test 3: Positions
	fmt.Println("\n=== Testing Positions ===")
	positions, err := client.Positions(ctx, api.GetPositionsOptions{})
	if err != nil {
		log.Fatalf("Positions failed: %v", err)
	}
	fmt.Printf("Open positions: %d\n", len(positions))
	for i, p := range positions {
		if i >= 5 {
			break
		}
		fmt.Printf("  %s: %+d\n", p.Ticker, p.Position)
	}

	// Test 4: One page of markets
	fmt.Println("\n=== Testing GetMarkets ===")
	page, err := client.GetMarkets(ctx, api.GetMarketsOptions{Limit: 5, Status: "open"})
	if err != nil {
		log.Fatalf("GetMarkets failed: %v", err)
	}
	fmt.Printf("Fetched %d markets (cursor: %q)\n", len(page.Markets), page.Cursor)
	for i := range page.Markets {
		m := page.Markets[i].ToModel()
		fmt.Printf("  %d. %s yes %d/%d vol24h %d\n", i+1, m.Ticker, m.YesBid, m.YesAsk, m.Volume24h)
	}

	// Test 5: Order book
	bookTicker := *ticker
	if bookTicker == "" && len(page.Markets) > 0 {
		bookTicker = page.Markets[0].Ticker
	}
	if bookTicker != "" {
		fmt.Printf("\n=== Testing OrderBook (%s) ===\n", bookTicker)
		book, err := client.OrderBook(ctx, bookTicker, 5)
		if err != nil {
			log.Fatalf("OrderBook failed: %v", err)
		}
		fmt.Printf("YES levels: %d, NO levels: %d\n", len(book.Yes), len(book.No))
		if p, ok := book.BestYes(); ok {
			fmt.Printf("Best YES bid: %d cents\n", p)
		}
		if p, ok := book.BestNo(); ok {
			fmt.Printf("Best NO bid: %d cents\n", p)
		}
	}

	// Test 6: Cancel (optional)
	if *cancelID != "" {
		fmt.Printf("\n=== Testing CancelOrder (%s) ===\n", *cancelID)
		resp, err := client.CancelOrder(ctx, *cancelID)
		if err != nil {
			log.Fatalf("CancelOrder failed: %v", err)
		}
		fmt.Printf("Status: %s, reduced by: %d\n", resp.Order.Status, resp.ReducedBy)
	}

	fmt.Println("\n=== All API tests passed! ===")
}
