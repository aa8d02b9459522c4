// File: ioservice/wait.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Cancellable delayed-wait primitive. A pending wait holds one unit of
// outstanding work, so an armed timer keeps the loop alive exactly like
// a keep-alive token.

package ioservice

import (
	"sync/atomic"
	"time"

	"github.com/momentics/hioload-pool/api"
)

var _ api.Waiter = (*waiter)(nil)

// waiter is one pending delayed wait. Expiry and cancellation race on
// the done flag; whichever wins delivers the single completion.
type waiter struct {
	svc   *Service
	fn    func(error)
	timer *time.Timer
	done  atomic.Bool
}

// ScheduleWait arms a wait of duration d. When d elapses the completion
// fn(nil) is posted to the queue; a cancelled wait posts
// fn(api.ErrWaitCanceled) instead. On a stopped service the wait is
// stillborn: already cancelled, fn never invoked.
func (s *Service) ScheduleWait(d time.Duration, fn func(err error)) api.Waiter {
	w := &waiter{svc: s, fn: fn}
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		w.done.Store(true)
		return w
	}
	s.work++
	s.waiters[w] = struct{}{}
	s.mu.Unlock()
	w.timer = time.AfterFunc(d, w.expire)
	return w
}

// expire fires on the time.AfterFunc goroutine when the delay elapses.
func (w *waiter) expire() {
	if !w.done.CompareAndSwap(false, true) {
		return
	}
	w.svc.completeWait(w, nil)
}

// Cancel aborts the wait, reporting whether it was still pending.
func (w *waiter) Cancel() bool {
	if !w.done.CompareAndSwap(false, true) {
		return false
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.svc.completeWait(w, api.ErrWaitCanceled)
	return true
}

// completeWait posts the single completion for w and arranges for its
// work unit to be released once the completion has run.
func (s *Service) completeWait(w *waiter, err error) {
	s.mu.Lock()
	delete(s.waiters, w)
	if s.stopped {
		// The loop is exiting or gone; the queue no longer accepts
		// work. A wait outliving Stop counts as cancelled by shutdown.
		s.work--
		s.mu.Unlock()
		w.fn(api.ErrWaitCanceled)
		return
	}
	s.tasks.Add(func() {
		defer s.releaseWork()
		w.fn(err)
	})
	atomic.AddInt64(&s.posted, 1)
	s.mu.Unlock()
	s.cond.Signal()
}
