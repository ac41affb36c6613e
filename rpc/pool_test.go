package rpc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPool(t *testing.T) {
	p := newWorkerPool(0)
	require.NoError(t, p.acquire(context.Background()))
	assert.Equal(t, int64(1), p.active.Load())

	// a waiting caller that leaves is dropped
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, p.acquire(ctx), context.DeadlineExceeded)
	assert.Equal(t, int64(0), p.waiting.Load())

	acquired := make(chan struct{})
	go func() {
		_ = p.acquire(context.Background())
		close(acquired)
	}()
	require.Eventually(t, func() bool {
		return p.waiting.Load() == 1
	}, time.Second, time.Millisecond)
	p.release()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("waiting caller was not admitted")
	}
	assert.Equal(t, int64(1), p.active.Load())
	p.release()
	assert.Equal(t, int64(0), p.active.Load())
}
