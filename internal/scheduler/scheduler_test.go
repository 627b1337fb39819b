package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type countingWarmer struct {
	calls atomic.Int32
	err   error
}

func (w *countingWarmer) WarmGlobalRanking(context.Context) error {
	w.calls.Add(1)
	return w.err
}

func TestSchedulerRefreshesRankingOnStart(t *testing.T) {
	warmer := &countingWarmer{}
	sched, err := New(warmer, time.Hour, zerolog.Nop())
	require.NoError(t, err)

	sched.Start()
	require.Eventually(t, func() bool { return warmer.calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, sched.Shutdown())
}

func TestSchedulerKeepsRunningAfterFailure(t *testing.T) {
	warmer := &countingWarmer{err: errors.New("redis down")}
	sched, err := New(warmer, 50*time.Millisecond, zerolog.Nop())
	require.NoError(t, err)

	sched.Start()
	require.Eventually(t, func() bool { return warmer.calls.Load() >= 2 }, 3*time.Second, 10*time.Millisecond)
	require.NoError(t, sched.Shutdown())
}
