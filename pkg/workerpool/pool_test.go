package workerpool

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/huynhanx03/go-fairqueue/pkg/settings"
)

func newTestPool(t *testing.T, workers int) *Pool {
	t.Helper()
	p := New(settings.Pool{Workers: workers, DrainInterval: 1}, zaptest.NewLogger(t))
	p.Start(context.Background())
	t.Cleanup(func() { _ = p.Shutdown(context.Background()) })
	return p
}

func TestPool_RunsAllTasks(t *testing.T) {
	const total = 1000
	p := newTestPool(t, 4)

	seen := make([]atomic.Int32, total)
	for i := 0; i < total; i++ {
		id := i
		require.NoError(t, p.Submit(func(ctx context.Context) error {
			seen[id].Add(1)
			return nil
		}))
	}

	require.NoError(t, p.Shutdown(context.Background()))

	for id := range seen {
		require.Equal(t, int32(1), seen[id].Load(), "task %d", id)
	}
	s := p.Stats()
	assert.Equal(t, uint64(total), s.Processed)
	assert.Zero(t, s.Failed)
	assert.Equal(t, uint64(total), s.Queue.Visited)
}

func TestPool_SingleWorkerKeepsSubmissionOrder(t *testing.T) {
	p := newTestPool(t, 1)

	var mu sync.Mutex
	var order []int
	for i := 0; i < 50; i++ {
		id := i
		require.NoError(t, p.Submit(func(ctx context.Context) error {
			mu.Lock()
			order = append(order, id)
			mu.Unlock()
			return nil
		}))
	}
	require.NoError(t, p.Shutdown(context.Background()))

	require.Len(t, order, 50)
	for i, id := range order {
		assert.Equal(t, i, id)
	}
}

func TestPool_FailuresAndPanicsAreCounted(t *testing.T) {
	p := newTestPool(t, 2)

	require.NoError(t, p.Submit(func(ctx context.Context) error { return errors.New("boom") }))
	require.NoError(t, p.Submit(func(ctx context.Context) error { panic("kaboom") }))
	require.NoError(t, p.Submit(nil))
	require.NoError(t, p.Submit(func(ctx context.Context) error { return nil }))

	require.NoError(t, p.Shutdown(context.Background()))

	s := p.Stats()
	assert.Equal(t, uint64(3), s.Failed)
	assert.Equal(t, uint64(1), s.Processed)
}

func TestPool_IdleWorkersParkInQueue(t *testing.T) {
	p := newTestPool(t, 3)

	require.Eventually(t, func() bool { return p.Queue().Waiting() == 3 }, 2*time.Second, time.Millisecond)

	done := make(chan struct{})
	require.NoError(t, p.Submit(func(ctx context.Context) error {
		close(done)
		return nil
	}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task was not picked up by a parked worker")
	}
}

func TestPool_SubmitStates(t *testing.T) {
	p := New(settings.Pool{Workers: 1}, nil)
	noop := func(ctx context.Context) error { return nil }

	assert.True(t, errors.Is(p.Submit(noop), ErrNotStarted))

	p.Start(context.Background())
	assert.NoError(t, p.Submit(noop))

	require.NoError(t, p.Shutdown(context.Background()))
	assert.True(t, errors.Is(p.Submit(noop), ErrClosed))

	// Shutdown is idempotent.
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestPool_GracefulShutdownKeepsTaskContext(t *testing.T) {
	p := newTestPool(t, 1)

	started := make(chan struct{})
	saw := make(chan error, 1)
	require.NoError(t, p.Submit(func(ctx context.Context) error {
		close(started)
		select {
		case <-ctx.Done():
			saw <- ctx.Err()
		case <-time.After(100 * time.Millisecond):
			saw <- nil
		}
		return nil
	}))
	<-started

	require.NoError(t, p.Shutdown(context.Background()))

	select {
	case err := <-saw:
		assert.NoError(t, err, "running task was cancelled by a graceful shutdown")
	default:
		t.Fatal("Shutdown returned before the running task finished")
	}
	assert.Equal(t, uint64(1), p.Stats().Processed)
	assert.False(t, p.Queue().IsActive())
}

func TestPool_ShutdownTimeoutDropsQueuedTasks(t *testing.T) {
	p := newTestPool(t, 1)

	release := make(chan struct{})
	require.NoError(t, p.Submit(func(ctx context.Context) error {
		<-release
		return nil
	}))
	for i := 0; i < 5; i++ {
		require.NoError(t, p.Submit(func(ctx context.Context) error { return nil }))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- p.Shutdown(ctx) }()

	// Let the drain deadline pass before the blocking task finishes.
	time.Sleep(50 * time.Millisecond)
	close(release)

	err := <-errCh
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, uint64(1), p.Stats().Processed)
}

func TestPool_ParentCancelStopsWorkers(t *testing.T) {
	p := New(settings.Pool{Workers: 2, DrainInterval: 1}, zaptest.NewLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)

	require.Eventually(t, func() bool { return p.Queue().Waiting() == 2 }, 2*time.Second, time.Millisecond)
	cancel()

	require.Eventually(t, func() bool { return !p.q.IsActive() }, 2*time.Second, time.Millisecond)
	assert.Zero(t, p.Queue().Waiting())
	assert.NoError(t, p.Shutdown(context.Background()))
}
