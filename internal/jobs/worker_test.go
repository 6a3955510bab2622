package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWorker_ShutdownWaitsForAsyncJobs(t *testing.T) {
	w := NewWorker(2)

	var finished int32
	w.EnqueueAsync(func(ctx context.Context) error {
		time.Sleep(50 * time.Millisecond)
		atomic.StoreInt32(&finished, 1)
		return nil
	})

	w.Shutdown()

	assert.Equal(t, int32(1), atomic.LoadInt32(&finished),
		"shutdown must not return while an async job is still running")
}

func TestWorker_StatsCountFailures(t *testing.T) {
	w := NewWorker(1)

	done := make(chan struct{})
	w.EnqueueAsync(func(ctx context.Context) error {
		defer close(done)
		return errors.New("boom")
	})

	<-done
	w.Shutdown()

	stats := w.GetStats()
	assert.Equal(t, int64(1), stats.FinishedJobs)
	assert.Equal(t, int64(1), stats.FailedJobs)
	assert.Equal(t, 0, stats.ActiveJobs)
}

func TestWorker_EnqueueProcessesJob(t *testing.T) {
	w := NewWorker(1)

	done := make(chan struct{})
	w.Enqueue(func(ctx context.Context) error {
		close(done)
		return nil
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("queued job never ran")
	}
	w.Shutdown()
}
