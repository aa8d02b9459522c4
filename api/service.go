// File: api/service.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Defines the abstract interface for event-loop services ("reactors")
// the pool dispatches work onto. The pool treats a Service as a black
// box: an object that accepts callables and runs them on whichever
// goroutine is currently executing its loop.

package api

import "time"

// Service is the event-loop contract required by the pool.
//
// A Service owns one FIFO run queue. Callables submitted via Post run on
// whichever goroutine is executing Run at the time; with a single runner
// they execute strictly in submission order.
type Service interface {
	// Post enqueues fn for asynchronous execution. It never blocks the
	// caller. Posts to a stopped service are dropped.
	Post(fn func())

	// Dispatch runs fn inline when the calling goroutine is currently
	// executing this service's Run loop, and otherwise behaves like Post.
	Dispatch(fn func())

	// Run drains the queue on the calling goroutine. It returns once the
	// queue is empty and no work tokens are outstanding, or after Stop.
	// Multiple goroutines may call Run concurrently; they cooperate on
	// the same queue.
	Run() error

	// Running reports whether the calling goroutine is currently inside
	// this service's Run loop.
	Running() bool

	// RetainWork returns a keep-alive token. While any token is
	// unreleased, Run does not return on an empty queue.
	RetainWork() WorkToken

	// ScheduleWait arms a cancellable delayed wait. After d elapses the
	// service posts fn(nil) to its queue; a cancelled wait posts
	// fn(ErrWaitCanceled) instead. A pending wait counts as outstanding
	// work and keeps the loop alive until the completion has run.
	ScheduleWait(d time.Duration, fn func(err error)) Waiter

	// Stop cancels pending waits, rejects further posts and lets every
	// Run caller return once the queue drains. Idempotent.
	Stop()
}

// WorkToken is a keep-alive handle for a Service run loop.
type WorkToken interface {
	// Release drops the token. Idempotent.
	Release()
}

// Waiter is the handle of one pending delayed wait.
type Waiter interface {
	// Cancel aborts the wait. It reports whether the wait was still
	// pending; the completion callback then receives ErrWaitCanceled.
	// Idempotent.
	Cancel() bool
}

// Timer is a reschedulable delayed-execution handle bound to one Service.
// It is returned by the pool's Schedule operations and re-arms itself
// after each firing for as long as the user callback reports "continue".
type Timer interface {
	// Cancel stops the timer. A timer cancelled before its first firing
	// never invokes the callback. Idempotent.
	Cancel()

	// Stopped reports whether the timer is inert: cancelled, or its
	// callback returned false.
	Stopped() bool
}
