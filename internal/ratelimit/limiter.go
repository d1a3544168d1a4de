package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// DefaultPerMinute is the Enrichment Agent's default external AI call
// budget.
const DefaultPerMinute = 10

// Limiter caps the rate of external AI calls. One instance is shared by
// all concurrent executions of a given agent.
type Limiter struct {
	limiter *rate.Limiter
}

// New builds a Limiter allowing perMinute calls per minute, with a burst of
// one so the first call never has to wait.
func New(perMinute int) *Limiter {
	if perMinute <= 0 {
		perMinute = DefaultPerMinute
	}
	interval := time.Minute / time.Duration(perMinute)
	return &Limiter{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait blocks until a call slot is available or ctx is cancelled.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}
