package core

import (
	"time"

	"golang.org/x/time/rate"
)

// RateLimit configures the per-session message budget: at most Messages
// sends per Interval, with bursts up to the full budget.
type RateLimit struct {
	Messages int
	Interval time.Duration
}

// MessageLimiter tracks one session's message budget with a token bucket.
// It exists from connection creation, before any login.
type MessageLimiter struct {
	lim *rate.Limiter
}

// NewMessageLimiter builds a limiter for the given budget. A non-positive
// message count disables limiting.
func NewMessageLimiter(cfg RateLimit) *MessageLimiter {
	if cfg.Messages <= 0 {
		return &MessageLimiter{lim: rate.NewLimiter(rate.Inf, 0)}
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Second
	}
	limit := rate.Limit(float64(cfg.Messages) / interval.Seconds())
	return &MessageLimiter{lim: rate.NewLimiter(limit, cfg.Messages)}
}

// Allow records a send attempt and reports whether it is within budget.
func (m *MessageLimiter) Allow() bool {
	return m.lim.Allow()
}
