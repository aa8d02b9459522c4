// File: ioservice/service.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Event-loop service implementation. The run queue is a plain FIFO;
// runners park on a condition variable when idle instead of spinning, so
// an idle pool costs no CPU.

package ioservice

import (
	"log"
	"sync"
	"sync/atomic"

	"github.com/eapache/queue"

	"github.com/momentics/hioload-pool/api"
	"github.com/momentics/hioload-pool/internal/gid"
)

// Ensure compile-time interface compliance.
var _ api.Service = (*Service)(nil)

// Service is a single-queue event loop implementing api.Service.
type Service struct {
	name string

	mu      sync.Mutex
	cond    *sync.Cond
	tasks   *queue.Queue
	work    int               // outstanding keep-alive tokens and pending waits
	runners map[int64]int     // goroutine id -> Run nesting depth
	waiters map[*waiter]struct{}
	stopped bool

	posted   int64
	executed int64
	panics   int64
}

// New creates an idle service. It executes nothing until a goroutine
// calls Run.
func New(name string) *Service {
	s := &Service{
		name:    name,
		tasks:   queue.New(),
		runners: make(map[int64]int),
		waiters: make(map[*waiter]struct{}),
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Name returns the service name.
func (s *Service) Name() string { return s.name }

// Post enqueues fn for asynchronous execution. Never blocks. Posts to a
// stopped service are dropped.
func (s *Service) Post(fn func()) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.tasks.Add(fn)
	atomic.AddInt64(&s.posted, 1)
	s.mu.Unlock()
	s.cond.Signal()
}

// Dispatch runs fn inline when the caller is already inside this
// service's Run loop, avoiding a queue hop. Otherwise it posts. Inline
// execution can reenter arbitrarily deep call stacks.
func (s *Service) Dispatch(fn func()) {
	if s.Running() {
		s.invoke(fn)
		return
	}
	s.Post(fn)
}

// Running reports whether the calling goroutine is inside Run.
func (s *Service) Running() bool {
	id := gid.ID()
	s.mu.Lock()
	_, ok := s.runners[id]
	s.mu.Unlock()
	return ok
}

// Run drains the queue on the calling goroutine. It returns nil once the
// queue is empty and no work is outstanding, or after Stop lets the
// queue drain. Calling Run on an already-stopped, drained service
// returns ErrServiceStopped.
func (s *Service) Run() error {
	s.mu.Lock()
	if s.stopped && s.tasks.Length() == 0 {
		s.mu.Unlock()
		return api.ErrServiceStopped
	}
	id := gid.ID()
	s.runners[id]++
	for {
		for s.tasks.Length() == 0 {
			if s.stopped || s.work == 0 {
				s.exitRunner(id)
				s.mu.Unlock()
				return nil
			}
			s.cond.Wait()
		}
		fn := s.tasks.Remove().(func())
		s.mu.Unlock()
		s.invoke(fn)
		s.mu.Lock()
	}
}

// exitRunner deregisters one Run nesting level. Caller holds mu.
func (s *Service) exitRunner(id int64) {
	s.runners[id]--
	if s.runners[id] == 0 {
		delete(s.runners, id)
	}
}

// invoke executes one callable, keeping the loop alive across panics in
// user code.
func (s *Service) invoke(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			atomic.AddInt64(&s.panics, 1)
			log.Printf("hioload-pool: service %q: recovered panic in callable: %v", s.name, r)
		}
		atomic.AddInt64(&s.executed, 1)
	}()
	fn()
}

// RetainWork returns a keep-alive token preventing Run from returning
// while the queue is idle.
func (s *Service) RetainWork() api.WorkToken {
	s.mu.Lock()
	s.work++
	s.mu.Unlock()
	return &workToken{svc: s}
}

// releaseWork drops one unit of outstanding work and wakes parked
// runners when none remains.
func (s *Service) releaseWork() {
	s.mu.Lock()
	s.work--
	wake := s.work == 0
	s.mu.Unlock()
	if wake {
		s.cond.Broadcast()
	}
}

// Stop cancels all pending waits, rejects further posts and lets every
// runner return once the queue drains. Pending queued work still runs to
// completion. Idempotent.
func (s *Service) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	pending := make([]*waiter, 0, len(s.waiters))
	for w := range s.waiters {
		pending = append(pending, w)
	}
	s.mu.Unlock()

	// Cancellations enqueue their completions ahead of the stop mark, so
	// timer handles settle during the final drain.
	for _, w := range pending {
		w.Cancel()
	}

	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
	s.cond.Broadcast()
}

// Stats returns basic service metrics.
func (s *Service) Stats() map[string]int64 {
	s.mu.Lock()
	pending := int64(s.tasks.Length())
	s.mu.Unlock()
	return map[string]int64{
		"posted":   atomic.LoadInt64(&s.posted),
		"executed": atomic.LoadInt64(&s.executed),
		"panics":   atomic.LoadInt64(&s.panics),
		"pending":  pending,
	}
}

// workToken implements api.WorkToken.
type workToken struct {
	svc  *Service
	once sync.Once
}

// Release drops the token. Idempotent.
func (t *workToken) Release() {
	t.once.Do(t.svc.releaseWork)
}
