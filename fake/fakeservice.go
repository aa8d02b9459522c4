// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package fake provides test doubles for the hioload-pool contracts.
package fake

import (
	"sync"
	"time"

	"github.com/momentics/hioload-pool/api"
)

// Service is an api.Service double that executes Post and Dispatch
// inline on the calling goroutine and holds scheduled waits until the
// test fires or cancels them. It never spawns goroutines.
type Service struct {
	mu       sync.Mutex
	posts    int
	inline   int
	waits    []*Wait
	retained int
}

var _ api.Service = (*Service)(nil)

// Wait is one pending fake wait, fired or cancelled by the test.
type Wait struct {
	Delay time.Duration
	fn    func(error)
	done  bool
	mu    *sync.Mutex
}

// NewService creates an inline-executing fake.
func NewService() *Service { return &Service{} }

// Post runs fn immediately on the caller.
func (s *Service) Post(fn func()) {
	s.mu.Lock()
	s.posts++
	s.mu.Unlock()
	fn()
}

// Dispatch runs fn immediately on the caller.
func (s *Service) Dispatch(fn func()) {
	s.mu.Lock()
	s.inline++
	s.mu.Unlock()
	fn()
}

// Run returns immediately; the fake has no loop.
func (s *Service) Run() error { return nil }

// Running always reports true so Dispatch stays inline at every layer.
func (s *Service) Running() bool { return true }

// RetainWork records the token; Release is a no-op beyond bookkeeping.
func (s *Service) RetainWork() api.WorkToken {
	s.mu.Lock()
	s.retained++
	s.mu.Unlock()
	return fakeToken{}
}

// ScheduleWait records the wait for manual firing.
func (s *Service) ScheduleWait(d time.Duration, fn func(err error)) api.Waiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	w := &Wait{Delay: d, fn: fn, mu: &s.mu}
	s.waits = append(s.waits, w)
	return w
}

// Stop cancels every pending wait.
func (s *Service) Stop() {
	for _, w := range s.Pending() {
		w.Cancel()
	}
}

// Pending returns the waits not yet fired or cancelled.
func (s *Service) Pending() []*Wait {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Wait, 0, len(s.waits))
	for _, w := range s.waits {
		if !w.done {
			out = append(out, w)
		}
	}
	return out
}

// Posts returns the number of Post calls observed.
func (s *Service) Posts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.posts
}

// Dispatches returns the number of Dispatch calls observed.
func (s *Service) Dispatches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inline
}

// Fire completes the wait successfully, invoking its callback inline.
func (w *Wait) Fire() {
	w.mu.Lock()
	if w.done {
		w.mu.Unlock()
		return
	}
	w.done = true
	fn := w.fn
	w.mu.Unlock()
	fn(nil)
}

// Cancel completes the wait with api.ErrWaitCanceled.
func (w *Wait) Cancel() bool {
	w.mu.Lock()
	if w.done {
		w.mu.Unlock()
		return false
	}
	w.done = true
	fn := w.fn
	w.mu.Unlock()
	fn(api.ErrWaitCanceled)
	return true
}

type fakeToken struct{}

func (fakeToken) Release() {}
