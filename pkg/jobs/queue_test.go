package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueRejectsBeforeStart(t *testing.T) {
	queue := NewQueue("exports", func(context.Context, Job) error { return nil }, QueueConfig{})

	err := queue.Enqueue(Job{ID: "job-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "queue exports not started")
}

func TestQueueProcessesJobs(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	queue := NewQueue("analytics", func(_ context.Context, job Job) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, job.ID)
		return nil
	}, QueueConfig{Workers: 2})

	queue.Start(context.Background())
	defer queue.Stop()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, queue.Enqueue(Job{ID: id, Type: "search"}))
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 3
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{"a", "b", "c"}, seen)
}

func TestQueueSetsEnqueuedTime(t *testing.T) {
	var enqueued atomic.Value
	queue := NewQueue("analytics", func(_ context.Context, job Job) error {
		enqueued.Store(job.Enqueued)
		return nil
	}, QueueConfig{})

	queue.Start(context.Background())
	defer queue.Stop()

	require.NoError(t, queue.Enqueue(Job{ID: "job-1"}))
	require.Eventually(t, func() bool {
		return enqueued.Load() != nil
	}, time.Second, 5*time.Millisecond)

	at, ok := enqueued.Load().(time.Time)
	require.True(t, ok)
	assert.False(t, at.IsZero())
}

func TestQueueRetriesFailedJobs(t *testing.T) {
	var attempts atomic.Int32
	queue := NewQueue("analytics", func(_ context.Context, job Job) error {
		if attempts.Add(1) == 1 {
			return errors.New("transient failure")
		}
		return nil
	}, QueueConfig{MaxRetries: 2, RetryDelay: 5 * time.Millisecond})

	queue.Start(context.Background())
	defer queue.Stop()

	require.NoError(t, queue.Enqueue(Job{ID: "job-1"}))
	require.Eventually(t, func() bool {
		return attempts.Load() == 2
	}, time.Second, 5*time.Millisecond)
}

func TestQueueDropsJobAfterMaxRetries(t *testing.T) {
	var attempts atomic.Int32
	queue := NewQueue("analytics", func(context.Context, Job) error {
		attempts.Add(1)
		return errors.New("permanent failure")
	}, QueueConfig{MaxRetries: 1, RetryDelay: 5 * time.Millisecond})

	queue.Start(context.Background())
	defer queue.Stop()

	require.NoError(t, queue.Enqueue(Job{ID: "job-1"}))
	require.Eventually(t, func() bool {
		return attempts.Load() == 2
	}, time.Second, 5*time.Millisecond)

	// the retry budget is spent, the job must not come back again
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(2), attempts.Load())
}

func TestQueueStopPreventsEnqueue(t *testing.T) {
	queue := NewQueue("analytics", func(context.Context, Job) error { return nil }, QueueConfig{})
	queue.Start(context.Background())
	queue.Stop()

	err := queue.Enqueue(Job{ID: "job-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stopped")
}

func TestQueueStartIsIdempotent(t *testing.T) {
	var handled atomic.Int32
	queue := NewQueue("analytics", func(context.Context, Job) error {
		handled.Add(1)
		return nil
	}, QueueConfig{})

	queue.Start(context.Background())
	queue.Start(context.Background())
	defer queue.Stop()

	require.NoError(t, queue.Enqueue(Job{ID: "job-1"}))
	require.Eventually(t, func() bool {
		return handled.Load() == 1
	}, time.Second, 5*time.Millisecond)
}
