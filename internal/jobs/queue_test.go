package jobs

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidpoint/vidpoint/internal/source"
)

func TestQueue_Submit_DeduplicatesInFlight(t *testing.T) {
	q := NewQueue(1)
	defer q.Stop()

	release := make(chan struct{})
	started := make(chan struct{})
	q.Start(func(_ context.Context, _ Task) error {
		close(started)
		<-release
		return nil
	})

	require.True(t, q.Submit(testVideoID, "https://youtu.be/abcdefghijk"))
	<-started

	// Same video while running is rejected; a different one is accepted.
	assert.False(t, q.Submit(testVideoID, "https://youtu.be/abcdefghijk"))
	assert.True(t, q.Submit(source.VideoID("other-video"), "https://youtu.be/other-video"))

	close(release)
}

func TestQueue_Submit_AllowsResubmitAfterCompletion(t *testing.T) {
	q := NewQueue(1)
	defer q.Stop()

	var runs atomic.Int32
	q.Start(func(_ context.Context, _ Task) error {
		runs.Add(1)
		return nil
	})

	require.True(t, q.Submit(testVideoID, "url"))
	require.Eventually(t, func() bool {
		return runs.Load() == 1
	}, time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		return q.Submit(testVideoID, "url")
	}, time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		return runs.Load() == 2
	}, time.Second, 10*time.Millisecond)
}

func TestQueue_Workers_ProcessConcurrently(t *testing.T) {
	q := NewQueue(4)
	defer q.Stop()

	var mu sync.Mutex
	seen := make(map[source.VideoID]bool)
	q.Start(func(_ context.Context, task Task) error {
		mu.Lock()
		seen[task.VideoID] = true
		mu.Unlock()
		return nil
	})

	ids := []source.VideoID{"aaaaaaaaaaa", "bbbbbbbbbbb", "ccccccccccc", "ddddddddddd"}
	for _, id := range ids {
		require.True(t, q.Submit(id, "url"))
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == len(ids)
	}, time.Second, 10*time.Millisecond)
}

func TestQueue_ExecutorErrorReleasesVideo(t *testing.T) {
	q := NewQueue(1)
	defer q.Stop()

	var runs atomic.Int32
	q.Start(func(_ context.Context, _ Task) error {
		runs.Add(1)
		return assert.AnError
	})

	require.True(t, q.Submit(testVideoID, "url"))
	require.Eventually(t, func() bool {
		return runs.Load() == 1
	}, time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		return q.Submit(testVideoID, "url")
	}, time.Second, 10*time.Millisecond)
}
