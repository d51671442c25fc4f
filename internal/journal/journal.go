// Package journal records every priced market as append-only telemetry.
//
// Sinks:
//   - JSONL file (one object per line, flushed per record)
//   - PostgreSQL/TimescaleDB table quote_journal (COPY per flush)
//   - Nop
//
// The journal is never read back by the agent.
package journal

import (
	"context"
	"time"
)

// Entry is one evaluated market.
type Entry struct {
	Time     time.Time `json:"ts"`
	Strategy string    `json:"strategy"`
	Ticker   string    `json:"ticker"`
	Spot     float64   `json:"spot,omitempty"`
	Strike   float64   `json:"strike,omitempty"`
	Hours    float64   `json:"hours,omitempty"`
	Fair     float64   `json:"fair,omitempty"`
	Bid      int       `json:"bid"`
	Ask      int       `json:"ask"`
	Outcome  string    `json:"outcome"`
	Sides    []string  `json:"sides,omitempty"` // Sides whose orders were accepted
}

// Journal accepts entries. Implementations are safe for concurrent use.
type Journal interface {
	Record(ctx context.Context, e Entry) error
	Flush(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

// Nop discards everything.
type Nop struct{}

func (Nop) Record(context.Context, Entry) error { return nil }
func (Nop) Flush(context.Context) error         { return nil }
func (Nop) Ping(context.Context) error          { return nil }
func (Nop) Close() error                        { return nil }
