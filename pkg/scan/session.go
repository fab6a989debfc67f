package scan

import (
	"time"

	"github.com/rs/xid"
)

// Config holds the per-scan tunables.
type Config struct {
	Limit       int
	MaxLatency  time.Duration // zero disables the ceiling
	Concurrency int
	Timeout     time.Duration
}

// Session is the process-scoped state of one scan invocation, from sampling
// start to coordinator completion.
type Session struct {
	ID         string
	Config     Config
	Aggregator *Aggregator
	StartedAt  time.Time
}

// NewSession creates a session with a fresh identifier and an empty
// aggregator configured from cfg.
func NewSession(cfg Config) *Session {
	return &Session{
		ID:         xid.New().String(),
		Config:     cfg,
		Aggregator: NewAggregator(cfg.MaxLatency),
		StartedAt:  time.Now(),
	}
}
