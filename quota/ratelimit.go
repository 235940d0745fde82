package quota

import (
	"context"
	"sync"
	"time"

	"github.com/fwojciec/sitepush"
	"golang.org/x/time/rate"
)

var _ sitepush.RateLimiter = (*ProjectLimiter)(nil)

// DefaultPublishPerMinute is the Indexing API's default publish quota per
// project. Every notification counts, including each part of a batch.
const DefaultPublishPerMinute = 600

// DefaultBurst lets a project send a few notifications back to back before
// pacing starts.
const DefaultBurst = 1

// ProjectLimiter paces notifications against the per-minute publish quota
// of each Google Cloud project. Credentials sharing a project share a
// bucket; different projects never wait on each other.
type ProjectLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*rate.Limiter
	perMinute int
	burst     int
}

// NewProjectLimiter returns a limiter allowing perMinute notifications per
// project with the given burst. A non-positive perMinute selects
// DefaultPublishPerMinute and a burst below one selects DefaultBurst.
func NewProjectLimiter(perMinute, burst int) *ProjectLimiter {
	if perMinute <= 0 {
		perMinute = DefaultPublishPerMinute
	}
	if burst < 1 {
		burst = DefaultBurst
	}
	return &ProjectLimiter{
		limiters:  make(map[string]*rate.Limiter),
		perMinute: perMinute,
		burst:     burst,
	}
}

// Wait blocks until the project's quota allows n more notifications.
// Requests larger than the burst are paced in burst-sized steps.
func (p *ProjectLimiter) Wait(ctx context.Context, project string, n int) error {
	limiter := p.limiter(project)
	for n > 0 {
		step := min(n, limiter.Burst())
		if err := limiter.WaitN(ctx, step); err != nil {
			return err
		}
		n -= step
	}
	return nil
}

func (p *ProjectLimiter) limiter(project string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	limiter, ok := p.limiters[project]
	if !ok {
		every := time.Minute / time.Duration(p.perMinute)
		limiter = rate.NewLimiter(rate.Every(every), p.burst)
		p.limiters[project] = limiter
	}
	return limiter
}
