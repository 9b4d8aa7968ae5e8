package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mearah/craftbom/internal/bom"
)

func TestPoolExecutesTask(t *testing.T) {
	pool := NewPool(2, 4)
	pool.Start()
	defer pool.Stop()

	want := &bom.Totals{Base: map[int]int{1: 6}}
	task := pool.Submit(func(ctx context.Context) (*bom.Totals, error) {
		return want, nil
	})

	totals, err := task.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, totals)
	assert.True(t, task.Finished())
}

func TestPoolPropagatesError(t *testing.T) {
	pool := NewPool(1, 1)
	pool.Start()
	defer pool.Stop()

	wantErr := errors.New("resolution failed")
	task := pool.Submit(func(ctx context.Context) (*bom.Totals, error) {
		return nil, wantErr
	})

	totals, err := task.Wait(context.Background())
	assert.ErrorIs(t, err, wantErr)
	assert.Nil(t, totals)
}

func TestPoolGetRemovesFinishedTask(t *testing.T) {
	pool := NewPool(1, 1)
	pool.Start()
	defer pool.Stop()

	task := pool.Submit(func(ctx context.Context) (*bom.Totals, error) {
		return &bom.Totals{}, nil
	})

	_, err := task.Wait(context.Background())
	require.NoError(t, err)

	got, ok := pool.Get(task.ID)
	require.True(t, ok)
	assert.Equal(t, task, got)

	// Finished tasks are handed over exactly once
	_, ok = pool.Get(task.ID)
	assert.False(t, ok)
}

func TestPoolGetRunningTask(t *testing.T) {
	pool := NewPool(1, 1)
	pool.Start()
	defer pool.Stop()

	release := make(chan struct{})
	task := pool.Submit(func(ctx context.Context) (*bom.Totals, error) {
		<-release
		return &bom.Totals{}, nil
	})

	got, ok := pool.Get(task.ID)
	require.True(t, ok)
	assert.False(t, got.Finished())

	// Still registered while running
	_, ok = pool.Get(task.ID)
	assert.True(t, ok)

	close(release)
	_, err := task.Wait(context.Background())
	require.NoError(t, err)
}

func TestPoolUnknownTask(t *testing.T) {
	pool := NewPool(1, 1)
	pool.Start()
	defer pool.Stop()

	task := pool.Submit(func(ctx context.Context) (*bom.Totals, error) {
		return &bom.Totals{}, nil
	})
	_, err := task.Wait(context.Background())
	require.NoError(t, err)

	_, ok := pool.Get(uuid.New())
	assert.False(t, ok)
}

func TestWaitHonorsContext(t *testing.T) {
	pool := NewPool(1, 1)
	pool.Start()
	defer pool.Stop()

	release := make(chan struct{})
	defer close(release)
	task := pool.Submit(func(ctx context.Context) (*bom.Totals, error) {
		<-release
		return &bom.Totals{}, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := task.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPoolStopWaitsForInFlight(t *testing.T) {
	pool := NewPool(2, 8)
	pool.Start()

	var completed atomic.Int32
	for i := 0; i < 5; i++ {
		pool.Submit(func(ctx context.Context) (*bom.Totals, error) {
			time.Sleep(5 * time.Millisecond)
			completed.Add(1)
			return &bom.Totals{}, nil
		})
	}

	// Give the workers a chance to pick tasks up before stopping
	time.Sleep(20 * time.Millisecond)
	pool.Stop()

	assert.GreaterOrEqual(t, completed.Load(), int32(1))
}

func TestPoolStopFailsQueuedTasks(t *testing.T) {
	// No workers running, so the submitted task sits in the queue until Stop
	pool := NewPool(1, 4)

	task := pool.Submit(func(ctx context.Context) (*bom.Totals, error) {
		return &bom.Totals{}, nil
	})

	pool.Stop()

	require.True(t, task.Finished(), "a queued task must not stay pending after shutdown")
	totals, err := task.Wait(context.Background())
	assert.ErrorIs(t, err, ErrPoolStopped)
	assert.Nil(t, totals)
}
