package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestQueue_RunsAndDrainsJobs(t *testing.T) {
	q := NewQueue(Config{Workers: 3, QueueSize: 16}, zap.NewNop(), nil)
	q.Start(context.Background())

	var ran atomic.Int32
	for i := 0; i < 10; i++ {
		require.NoError(t, q.Enqueue(Job{Name: "count", Run: func(context.Context) error {
			ran.Add(1)
			return nil
		}}))
	}

	require.NoError(t, q.Close(context.Background()))
	assert.Equal(t, int32(10), ran.Load())
}

func TestQueue_DropsWhenFull(t *testing.T) {
	q := NewQueue(Config{Workers: 1, QueueSize: 1}, zap.NewNop(), nil)
	release := make(chan struct{})
	started := make(chan struct{})
	q.Start(context.Background())

	require.NoError(t, q.Enqueue(Job{Name: "block", Run: func(context.Context) error {
		close(started)
		<-release
		return nil
	}}))
	<-started
	require.NoError(t, q.Enqueue(Job{Name: "buffered", Run: func(context.Context) error { return nil }}))

	err := q.Enqueue(Job{Name: "overflow", Run: func(context.Context) error { return nil }})
	assert.ErrorIs(t, err, ErrQueueFull)

	close(release)
	require.NoError(t, q.Close(context.Background()))
}

func TestQueue_JobTimeout(t *testing.T) {
	q := NewQueue(Config{Workers: 1, QueueSize: 1, JobTimeout: 20 * time.Millisecond}, zap.NewNop(), nil)
	q.Start(context.Background())

	result := make(chan error, 1)
	require.NoError(t, q.Enqueue(Job{Name: "slow", Run: func(ctx context.Context) error {
		<-ctx.Done()
		result <- ctx.Err()
		return ctx.Err()
	}}))

	select {
	case err := <-result:
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(2 * time.Second):
		t.Fatal("job was not cancelled")
	}
	require.NoError(t, q.Close(context.Background()))
}

func TestQueue_EnqueueAfterClose(t *testing.T) {
	q := NewQueue(Config{Workers: 1, QueueSize: 4}, zap.NewNop(), nil)
	q.Start(context.Background())
	require.NoError(t, q.Close(context.Background()))

	err := q.Enqueue(Job{Name: "late", Run: func(context.Context) error { return nil }})
	assert.ErrorIs(t, err, ErrQueueClosed)
	assert.NoError(t, q.Close(context.Background()))
}

func TestQueue_PanicIsContained(t *testing.T) {
	q := NewQueue(Config{Workers: 1, QueueSize: 4}, zap.NewNop(), nil)
	q.Start(context.Background())

	var after atomic.Bool
	require.NoError(t, q.Enqueue(Job{Name: "panic", Run: func(context.Context) error { panic("boom") }}))
	require.NoError(t, q.Enqueue(Job{Name: "after", Run: func(context.Context) error { after.Store(true); return nil }}))

	require.NoError(t, q.Close(context.Background()))
	assert.True(t, after.Load())
}
