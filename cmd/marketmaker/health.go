package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rickgao/kalshi-mm/internal/journal"
	"github.com/rickgao/kalshi-mm/internal/market"
	"github.com/rickgao/kalshi-mm/internal/model"
	"github.com/rickgao/kalshi-mm/internal/strategy"
)

type exchangeStatusSource interface {
	ExchangeStatus(ctx context.Context) (model.ExchangeStatus, error)
}

type cycleSource interface {
	LastCycle() (time.Time, string)
}

// newMux wires the metrics, health and debug endpoints.
func newMux(metricsPath string, metrics http.Handler, exchange exchangeStatusSource, runner cycleSource, j journal.Journal, board *market.Board) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle(metricsPath, metrics)
	mux.Handle("/health", healthHandler(exchange, runner, j, board))
	if board != nil {
		mux.Handle("/debug/tickers", board.Handler())
	}
	return mux
}

// healthHandler reports "healthy", "degraded" (exchange closed or last cycle
// failed) or "unhealthy" (exchange or journal unreachable).
func healthHandler(exchange exchangeStatusSource, runner cycleSource, j journal.Journal, board *market.Board) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := struct {
			Status     string         `json:"status"`
			Components map[string]any `json:"components"`
		}{
			Status:     "healthy",
			Components: make(map[string]any),
		}

		// Check exchange
		status, err := exchange.ExchangeStatus(ctx)
		if err != nil {
			health.Status = "unhealthy"
			health.Components["exchange"] = map[string]string{
				"status": "unreachable",
				"error":  err.Error(),
			}
		} else {
			health.Components["exchange"] = map[string]bool{
				"exchange_active": status.ExchangeActive,
				"trading_active":  status.TradingActive,
			}
			if !status.TradingActive && health.Status == "healthy" {
				health.Status = "degraded"
			}
		}

		// Check journal
		if err := j.Ping(ctx); err != nil {
			health.Status = "unhealthy"
			health.Components["journal"] = map[string]string{
				"status": "disconnected",
				"error":  err.Error(),
			}
		} else {
			health.Components["journal"] = "ok"
		}

		// Last strategy cycle
		at, result := runner.LastCycle()
		health.Components["strategy"] = map[string]any{
			"last_cycle": at,
			"result":     result,
		}
		if result == strategy.ResultError && health.Status == "healthy" {
			health.Status = "degraded"
		}

		if board != nil {
			last, drops := board.Stats()
			health.Components["stream"] = map[string]any{
				"markets":       board.Len(),
				"last_event_at": last,
				"disconnects":   drops,
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	})
}
