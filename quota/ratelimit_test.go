package quota_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/sitepush"
	"github.com/fwojciec/sitepush/quota"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectLimiter(t *testing.T) {
	t.Parallel()

	t.Run("implements sitepush.RateLimiter interface", func(t *testing.T) {
		t.Parallel()
		var _ sitepush.RateLimiter = quota.NewProjectLimiter(quota.DefaultPublishPerMinute, quota.DefaultBurst)
	})

	t.Run("allows immediate notification when under quota", func(t *testing.T) {
		t.Parallel()

		limiter := quota.NewProjectLimiter(600, 1)

		start := time.Now()
		err := limiter.Wait(context.Background(), "project-a", 1)
		elapsed := time.Since(start)

		require.NoError(t, err)
		assert.Less(t, elapsed, 50*time.Millisecond, "first notification should be immediate")
	})

	t.Run("paces the default publish quota", func(t *testing.T) {
		t.Parallel()

		// 600 per minute leaves 100ms between notifications.
		limiter := quota.NewProjectLimiter(0, 0)

		require.NoError(t, limiter.Wait(context.Background(), "project-a", 1))

		start := time.Now()
		err := limiter.Wait(context.Background(), "project-a", 1)
		elapsed := time.Since(start)

		require.NoError(t, err)
		assert.GreaterOrEqual(t, elapsed, 80*time.Millisecond, "should wait for the quota")
	})

	t.Run("spends the burst before pacing", func(t *testing.T) {
		t.Parallel()

		limiter := quota.NewProjectLimiter(600, 3)

		start := time.Now()
		for range 3 {
			require.NoError(t, limiter.Wait(context.Background(), "project-a", 1))
		}
		assert.Less(t, time.Since(start), 50*time.Millisecond, "burst should pass without waiting")

		start = time.Now()
		require.NoError(t, limiter.Wait(context.Background(), "project-a", 1))
		assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
	})

	t.Run("counts every part of a batch", func(t *testing.T) {
		t.Parallel()

		// 1200 per minute leaves 50ms per notification.
		limiter := quota.NewProjectLimiter(1200, 2)

		start := time.Now()
		err := limiter.Wait(context.Background(), "project-a", 5)
		elapsed := time.Since(start)

		// Two pass on the burst, the other three are paced.
		require.NoError(t, err)
		assert.GreaterOrEqual(t, elapsed, 120*time.Millisecond)
	})

	t.Run("treats zero notifications as free", func(t *testing.T) {
		t.Parallel()

		limiter := quota.NewProjectLimiter(1, 1)
		require.NoError(t, limiter.Wait(context.Background(), "project-a", 1))

		start := time.Now()
		err := limiter.Wait(context.Background(), "project-a", 0)

		require.NoError(t, err)
		assert.Less(t, time.Since(start), 50*time.Millisecond)
	})

	t.Run("different projects have independent quotas", func(t *testing.T) {
		t.Parallel()

		limiter := quota.NewProjectLimiter(600, 1)

		require.NoError(t, limiter.Wait(context.Background(), "project-a", 1))

		start := time.Now()
		err := limiter.Wait(context.Background(), "project-b", 1)
		elapsed := time.Since(start)

		require.NoError(t, err)
		assert.Less(t, elapsed, 50*time.Millisecond, "different project should not wait")
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		limiter := quota.NewProjectLimiter(60, 1)

		require.NoError(t, limiter.Wait(context.Background(), "project-a", 1))

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		err := limiter.Wait(ctx, "project-a", 1)
		assert.Error(t, err, "should fail when context times out")
	})

	t.Run("concurrent waits all complete", func(t *testing.T) {
		t.Parallel()

		limiter := quota.NewProjectLimiter(6000, 1)

		var wg sync.WaitGroup
		var completed atomic.Int32
		for range 5 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if limiter.Wait(context.Background(), "project-a", 1) == nil {
					completed.Add(1)
				}
			}()
		}

		wg.Wait()
		assert.Equal(t, int32(5), completed.Load())
	})
}
