package worker

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

type funcJob struct {
	name string
	fn   func(context.Context) error
}

func (j *funcJob) Name() string                  { return j.name }
func (j *funcJob) Run(ctx context.Context) error { return j.fn(ctx) }

func TestPoolRunsSubmittedJobs(t *testing.T) {
	pool := NewPool(3, 10)
	pool.Start(context.Background())

	var count atomic.Int32
	for i := 0; i < 10; i++ {
		err := pool.Submit(&funcJob{name: "count", fn: func(context.Context) error {
			count.Add(1)
			return nil
		}})
		require.NoError(t, err)
	}

	pool.Stop()
	assert.Equal(t, int32(10), count.Load())
}

func TestPoolSurvivesFailingAndPanickingJobs(t *testing.T) {
	pool := NewPool(1, 4)
	pool.Start(context.Background())

	var ran atomic.Bool
	require.NoError(t, pool.Submit(&funcJob{name: "fail", fn: func(context.Context) error {
		return errors.New("boom")
	}}))
	require.NoError(t, pool.Submit(&funcJob{name: "panic", fn: func(context.Context) error {
		panic("boom")
	}}))
	require.NoError(t, pool.Submit(&funcJob{name: "ok", fn: func(context.Context) error {
		ran.Store(true)
		return nil
	}}))

	pool.Stop()
	assert.True(t, ran.Load(), "worker should keep going after a failing job")
}

func TestPoolSubmitDoesNotBlockWhenFull(t *testing.T) {
	pool := NewPool(1, 1)
	release := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once
	blocker := &funcJob{name: "block", fn: func(context.Context) error {
		once.Do(func() { close(started) })
		<-release
		return nil
	}}

	pool.Start(context.Background())
	require.NoError(t, pool.Submit(blocker))
	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("worker never picked up the first job")
	}

	require.NoError(t, pool.Submit(blocker), "one slot is free in the queue")
	assert.ErrorIs(t, pool.Submit(blocker), ErrQueueFull)
	assert.Equal(t, 1, pool.QueueSize())

	close(release)
	pool.Stop()
}

func TestPoolSubmitAfterStop(t *testing.T) {
	pool := NewPool(1, 1)
	pool.Start(context.Background())
	pool.Stop()
	pool.Stop()

	err := pool.Submit(&funcJob{name: "late", fn: func(context.Context) error { return nil }})
	assert.ErrorIs(t, err, ErrPoolClosed)
}

func TestNewPoolDefaults(t *testing.T) {
	pool := NewPool(0, -1)
	assert.Equal(t, 2, pool.workers)
	assert.Equal(t, 64, pool.queue)
}
