// File: threadpool/timer.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Self-rescheduling timer built on the service delayed-wait primitive.
// Re-arming is iterative: the completion handler mutates timer state and
// arms the next wait, so stack depth stays bounded no matter how many
// times the timer fires, and cancellation is a flag check between
// iterations.

package threadpool

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/momentics/hioload-pool/api"
)

var _ api.Timer = (*timer)(nil)

// timer is one pending, reschedulable delayed invocation bound to a
// single service. All firings of one timer stay on that service.
type timer struct {
	svc   api.Service
	delay time.Duration
	fn    func() bool

	mu      sync.Mutex
	waiter  api.Waiter
	stopped bool
}

// Schedule resolves sel once, arms a timer firing after delay and
// returns its handle. When fn returns true the timer re-arms itself for
// another delay interval on the same service, indefinitely; false stops
// it. Cancellation (explicit or by pool shutdown) stops the timer
// silently without invoking fn.
func (p *Pool) Schedule(delay time.Duration, fn func() bool, sel api.Selector) (api.Timer, error) {
	if delay <= 0 {
		return nil, fmt.Errorf("%w: %v", api.ErrNonPositiveDelay, delay)
	}
	svc, err := p.Service(sel)
	if err != nil {
		return nil, err
	}
	t := &timer{svc: svc, delay: delay, fn: fn}
	t.arm()
	return t, nil
}

// ScheduleFunc schedules a void callable, which always re-arms: the
// timer fires every delay until cancelled or the pool shuts down.
func (p *Pool) ScheduleFunc(delay time.Duration, fn func(), sel api.Selector) (api.Timer, error) {
	return p.Schedule(delay, func() bool {
		fn()
		return true
	}, sel)
}

// arm starts the next wait unless the timer has been stopped meanwhile.
func (t *timer) arm() {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	t.waiter = t.svc.ScheduleWait(t.delay, t.fire)
	t.mu.Unlock()
}

// fire is the wait completion. It runs on the bound service's loop.
func (t *timer) fire(err error) {
	if err != nil {
		if errors.Is(err, api.ErrWaitCanceled) {
			t.markStopped()
			return
		}
		// Unexpected reactor failure is never masked.
		panic(fmt.Errorf("hioload-pool: timer wait failed: %w", err))
	}
	// A cancel can land between wait expiry and this completion running.
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	t.mu.Unlock()
	if t.fn() {
		t.arm()
		return
	}
	t.markStopped()
}

func (t *timer) markStopped() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
}

// Cancel stops the timer. Cancelled before its first firing, the
// callback is never invoked. Idempotent.
func (t *timer) Cancel() {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	t.stopped = true
	w := t.waiter
	t.mu.Unlock()
	if w != nil {
		w.Cancel()
	}
}

// Stopped reports whether the timer is inert.
func (t *timer) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}
