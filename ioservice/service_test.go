// File: ioservice/service_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package ioservice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-pool/api"
)

func TestRun_DrainsQueueInFIFOOrder(t *testing.T) {
	svc := New("test")
	var order []int
	for i := 0; i < 5; i++ {
		i := i
		svc.Post(func() { order = append(order, i) })
	}

	require.NoError(t, svc.Run())
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestRun_ReturnsImmediatelyWithoutWork(t *testing.T) {
	svc := New("test")
	done := make(chan error, 1)
	go func() { done <- svc.Run() }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return on an idle service without work tokens")
	}
}

func TestRun_OnStoppedService(t *testing.T) {
	svc := New("test")
	svc.Stop()
	assert.ErrorIs(t, svc.Run(), api.ErrServiceStopped)
}

func TestPost_AfterStopIsDropped(t *testing.T) {
	svc := New("test")
	svc.Stop()
	svc.Post(func() { t.Error("dropped callable must not run") })
	assert.Equal(t, int64(0), svc.Stats()["posted"])
}

func TestWorkToken_KeepsLoopAlive(t *testing.T) {
	svc := New("test")
	token := svc.RetainWork()

	done := make(chan error, 1)
	go func() { done <- svc.Run() }()

	// The loop must stay parked while the token is held.
	select {
	case <-done:
		t.Fatal("Run returned while a work token was outstanding")
	case <-time.After(50 * time.Millisecond):
	}

	ran := make(chan struct{})
	svc.Post(func() { close(ran) })
	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("posted callable did not run")
	}

	token.Release()
	token.Release() // idempotent
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after token release")
	}
}

func TestDispatch_InlineInsideLoop(t *testing.T) {
	svc := New("test")
	var order []string
	svc.Post(func() {
		order = append(order, "outer-begin")
		assert.True(t, svc.Running())
		svc.Dispatch(func() { order = append(order, "inner") })
		order = append(order, "outer-end")
	})

	require.NoError(t, svc.Run())
	assert.Equal(t, []string{"outer-begin", "inner", "outer-end"}, order)
	assert.False(t, svc.Running())
}

func TestDispatch_OutsideLoopPosts(t *testing.T) {
	svc := New("test")
	ran := false
	svc.Dispatch(func() { ran = true })
	assert.False(t, ran, "Dispatch outside the loop must enqueue, not run inline")

	require.NoError(t, svc.Run())
	assert.True(t, ran)
}

func TestScheduleWait_Fires(t *testing.T) {
	svc := New("test")
	token := svc.RetainWork()
	done := make(chan error, 1)
	go func() { done <- svc.Run() }()

	fired := make(chan error, 1)
	svc.ScheduleWait(10*time.Millisecond, func(err error) { fired <- err })

	select {
	case err := <-fired:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("wait did not fire")
	}

	token.Release()
	require.NoError(t, <-done)
}

func TestScheduleWait_CancelDeliversErrWaitCanceled(t *testing.T) {
	svc := New("test")
	fired := make(chan error, 1)
	w := svc.ScheduleWait(time.Hour, func(err error) { fired <- err })

	done := make(chan error, 1)
	go func() { done <- svc.Run() }()

	assert.True(t, w.Cancel())
	assert.False(t, w.Cancel(), "second Cancel must report not pending")

	select {
	case err := <-fired:
		assert.ErrorIs(t, err, api.ErrWaitCanceled)
	case <-time.After(time.Second):
		t.Fatal("cancellation completion did not run")
	}
	require.NoError(t, <-done)
}

func TestStop_CancelsPendingWaits(t *testing.T) {
	svc := New("test")
	fired := make(chan error, 1)
	svc.ScheduleWait(time.Hour, func(err error) { fired <- err })

	done := make(chan error, 1)
	go func() { done <- svc.Run() }()

	svc.Stop()
	svc.Stop() // idempotent

	select {
	case err := <-fired:
		assert.ErrorIs(t, err, api.ErrWaitCanceled)
	case <-time.After(time.Second):
		t.Fatal("stop did not cancel the pending wait")
	}
	require.NoError(t, <-done)
}

func TestScheduleWait_OnStoppedServiceIsStillborn(t *testing.T) {
	svc := New("test")
	svc.Stop()
	w := svc.ScheduleWait(time.Millisecond, func(err error) {
		t.Error("stillborn wait must never invoke its completion")
	})
	assert.False(t, w.Cancel())
	time.Sleep(20 * time.Millisecond)
}

func TestRun_RecoversCallablePanics(t *testing.T) {
	svc := New("test")
	ran := false
	svc.Post(func() { panic("boom") })
	svc.Post(func() { ran = true })

	require.NoError(t, svc.Run())
	assert.True(t, ran, "loop must survive a panicking callable")

	stats := svc.Stats()
	assert.Equal(t, int64(1), stats["panics"])
	assert.Equal(t, int64(2), stats["executed"])
}

func TestStats_Counters(t *testing.T) {
	svc := New("test")
	svc.Post(func() {})
	svc.Post(func() {})

	stats := svc.Stats()
	assert.Equal(t, int64(2), stats["posted"])
	assert.Equal(t, int64(2), stats["pending"])
	assert.Equal(t, int64(0), stats["executed"])

	require.NoError(t, svc.Run())
	stats = svc.Stats()
	assert.Equal(t, int64(2), stats["executed"])
	assert.Equal(t, int64(0), stats["pending"])
}

func TestStop_PendingWorkRunsToCompletion(t *testing.T) {
	svc := New("test")
	var ran int
	for i := 0; i < 10; i++ {
		svc.Post(func() { ran++ })
	}
	svc.Stop()

	// Stop rejects new posts but the queue drains before Run returns.
	require.NoError(t, svc.Run())
	assert.Equal(t, 10, ran)
}
