package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerRunsJobs(t *testing.T) {
	var sweeps, panics atomic.Int32
	s, err := New(
		Job{Name: "sweep", Interval: 10 * time.Millisecond, Run: func(context.Context) { sweeps.Add(1) }},
		Job{Name: "flaky", Interval: 10 * time.Millisecond, Run: func(context.Context) {
			panics.Add(1)
			panic("boom")
		}},
		Job{Name: "disabled", Interval: 0, Run: func(context.Context) { t.Error("disabled job ran") }},
	)
	require.NoError(t, err)
	s.Start()

	assert.Eventually(t, func() bool {
		return sweeps.Load() >= 3 && panics.Load() >= 3
	}, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, s.Shutdown())
}

func TestShutdownCancelsJobContext(t *testing.T) {
	var once atomic.Bool
	started := make(chan struct{})
	stopped := make(chan struct{})
	s, err := New(Job{Name: "long", Interval: 5 * time.Millisecond, Run: func(ctx context.Context) {
		if !once.CompareAndSwap(false, true) {
			return
		}
		close(started)
		<-ctx.Done()
		close(stopped)
	}})
	require.NoError(t, err)
	s.Start()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("job never started")
	}
	require.NoError(t, s.Shutdown())
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("job context not cancelled")
	}
}
