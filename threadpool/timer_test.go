// File: threadpool/timer_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package threadpool

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-pool/api"
	"github.com/momentics/hioload-pool/fake"
)

func TestTimer_ReschedulesUntilCallbackReturnsFalse(t *testing.T) {
	p := New(1)
	defer p.Close()
	require.NoError(t, p.Start(nil, api.PolicyAllCore))

	var fired atomic.Int32
	tm, err := p.Schedule(5*time.Millisecond, func() bool {
		return fired.Add(1) < 4 // continue three times, stop on the fourth
	}, api.RoundRobin)
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return tm.Stopped() }, waitTimeout, waitTick)
	assert.EqualValues(t, 4, fired.Load(), "true x3 then false must yield exactly 4 invocations")

	// Inert afterwards: no further firings.
	time.Sleep(30 * time.Millisecond)
	assert.EqualValues(t, 4, fired.Load())
}

func TestTimer_CancelBeforeFirstFiring(t *testing.T) {
	p := New(1)
	defer p.Close()
	require.NoError(t, p.Start(nil, api.PolicyAllCore))

	var fired atomic.Int32
	tm, err := p.Schedule(50*time.Millisecond, func() bool {
		fired.Add(1)
		return true
	}, api.RoundRobin)
	require.NoError(t, err)

	tm.Cancel()
	tm.Cancel() // idempotent
	assert.True(t, tm.Stopped())

	time.Sleep(120 * time.Millisecond)
	assert.EqualValues(t, 0, fired.Load(), "a timer cancelled before its first firing never invokes the callback")
}

func TestTimer_PoolStopCancelsPendingTimers(t *testing.T) {
	p := New(1)
	require.NoError(t, p.Start(nil, api.PolicyAllCore))

	var fired atomic.Int32
	tm, err := p.Schedule(time.Hour, func() bool {
		fired.Add(1)
		return true
	}, api.RoundRobin)
	require.NoError(t, err)

	p.Stop()
	assert.True(t, tm.Stopped(), "shutdown must settle pending timers as cancelled")
	assert.EqualValues(t, 0, fired.Load())
}

func TestTimer_ScheduleFuncAlwaysRearms(t *testing.T) {
	p := New(1)
	defer p.Close()
	require.NoError(t, p.Start(nil, api.PolicyAllCore))

	var fired atomic.Int32
	tm, err := p.ScheduleFunc(5*time.Millisecond, func() { fired.Add(1) }, api.RoundRobin)
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return fired.Load() >= 3 }, waitTimeout, waitTick,
		"a void callable always reports continue")

	tm.Cancel()
	after := fired.Load()
	time.Sleep(50 * time.Millisecond)
	// One firing may already be in flight at cancellation time.
	assert.LessOrEqual(t, fired.Load(), after+1)
	assert.True(t, tm.Stopped())
}

func TestTimer_NonPositiveDelay(t *testing.T) {
	p := New(1)
	_, err := p.Schedule(0, func() bool { return false }, api.RoundRobin)
	assert.ErrorIs(t, err, api.ErrNonPositiveDelay)
	_, err = p.Schedule(-time.Second, func() bool { return false }, api.RoundRobin)
	assert.ErrorIs(t, err, api.ErrNonPositiveDelay)
}

func TestTimer_SelectorError(t *testing.T) {
	p := New(1)
	_, err := p.Schedule(time.Millisecond, func() bool { return false }, api.ServiceIndex(3))
	assert.ErrorIs(t, err, api.ErrServiceIndexRange)
}

// The fake service drives the reschedule state machine deterministically,
// one firing at a time.
func TestTimer_RearmStateMachine(t *testing.T) {
	svc := fake.NewService()
	p := NewWithService(1, svc)

	fired := 0
	tm, err := p.Schedule(10*time.Millisecond, func() bool {
		fired++
		return fired < 4
	}, api.ServiceIndex(0))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		pending := svc.Pending()
		require.Len(t, pending, 1, "exactly one wait pending between firings")
		pending[0].Fire()
		assert.Equal(t, i+1, fired)
		assert.False(t, tm.Stopped())
	}

	pending := svc.Pending()
	require.Len(t, pending, 1)
	pending[0].Fire()
	assert.Equal(t, 4, fired)
	assert.True(t, tm.Stopped())
	assert.Empty(t, svc.Pending(), "a stopped timer must not re-arm")
}

func TestTimer_FakeCancelDeliversSilently(t *testing.T) {
	svc := fake.NewService()
	p := NewWithService(1, svc)

	fired := 0
	tm, err := p.Schedule(10*time.Millisecond, func() bool {
		fired++
		return true
	}, api.ServiceIndex(0))
	require.NoError(t, err)

	pending := svc.Pending()
	require.Len(t, pending, 1)
	assert.True(t, pending[0].Cancel())
	assert.True(t, tm.Stopped())
	assert.Equal(t, 0, fired)
	assert.Empty(t, svc.Pending())
}
