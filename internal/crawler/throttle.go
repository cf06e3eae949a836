package crawler

import (
	"context"
	"math/rand/v2"
	"time"

	"golang.org/x/time/rate"
)

// Throttle enforces a minimum interval between requests and adds a random
// jitter on top. It is safe for concurrent use, so workers sharing one
// Throttle keep the same request rate as a single worker.
type Throttle struct {
	limiter *rate.Limiter
	jitter  time.Duration
}

// NewThrottle returns a throttle allowing one request per minDelay, each
// delayed by a further random duration in [0, jitter). Zero values disable
// the respective part.
func NewThrottle(minDelay, jitter time.Duration) *Throttle {
	limit := rate.Inf
	if minDelay > 0 {
		limit = rate.Every(minDelay)
	}
	return &Throttle{
		limiter: rate.NewLimiter(limit, 1),
		jitter:  max(jitter, 0),
	}
}

// Wait blocks until the next request may be sent. A nil Throttle never
// blocks.
func (t *Throttle) Wait(ctx context.Context) error {
	if t == nil {
		return ctx.Err()
	}
	if err := t.limiter.Wait(ctx); err != nil {
		return err
	}
	if t.jitter <= 0 {
		return nil
	}
	return sleep(ctx, rand.N(t.jitter)) //nolint:gosec // jitter does not need a CSPRNG
}
