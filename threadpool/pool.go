// File: threadpool/pool.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Pool lifecycle and dispatch resolution. A Pool is created, started
// exactly once and stopped exactly once; a stopped pool cannot be
// restarted, which keeps worker and queue identity simple. A Pool must
// not be copied after first use.

package threadpool

import (
	"fmt"
	"log"
	"math/rand"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/momentics/hioload-pool/affinity"
	"github.com/momentics/hioload-pool/api"
	"github.com/momentics/hioload-pool/internal/gid"
	"github.com/momentics/hioload-pool/ioservice"
)

// Pool states. Transitions are Created -> Running -> Stopped only.
const (
	stateCreated = iota
	stateRunning
	stateStopped
)

// Pool owns a fixed set of worker goroutines draining a fixed set of
// event-loop services.
type Pool struct {
	name       string
	nbWorkers  int
	nbServices int
	pin        bool

	services []api.Service
	owned    []*ioservice.Service // nil entries never occur; empty in borrowed mode
	tokens   []api.WorkToken      // one per owned service while running

	mu          sync.RWMutex
	state       int
	assignments []int         // worker index -> service index, fixed at Start
	workerIDs   map[int64]int // goroutine id -> worker index
	pickers     []*Picker     // arena, one lazily created slot per worker

	fallbackMu sync.Mutex
	fallback   *Picker

	cursor         atomic.Uint64
	runningWorkers atomic.Int32
	wg             sync.WaitGroup
}

// New creates a pool owning its services (one by default, more via
// WithServices). Workers below 1 are clamped to 1.
func New(workers int, opts ...Option) *Pool {
	if workers < 1 {
		workers = 1
	}
	p := &Pool{
		name:       "pool",
		nbWorkers:  workers,
		nbServices: 1,
		workerIDs:  make(map[int64]int),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.owned = make([]*ioservice.Service, p.nbServices)
	p.services = make([]api.Service, p.nbServices)
	for i := range p.owned {
		svc := ioservice.New(fmt.Sprintf("%s/%d", p.name, i))
		p.owned[i] = svc
		p.services[i] = svc
	}
	p.fallback = NewPicker(p.nbServices, time.Now().UnixNano())
	return p
}

// NewWithService creates a pool draining one externally owned service.
// The pool manages no keep-alive token for it and never stops it; the
// service's lifetime belongs to the caller.
func NewWithService(workers int, svc api.Service, opts ...Option) *Pool {
	if workers < 1 {
		workers = 1
	}
	p := &Pool{
		name:       "pool",
		nbWorkers:  workers,
		nbServices: 1,
		workerIDs:  make(map[int64]int),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.nbServices = 1
	p.services = []api.Service{svc}
	p.fallback = NewPicker(1, time.Now().UnixNano())
	return p
}

// Name returns the pool name.
func (p *Pool) Name() string { return p.name }

// Workers returns the configured worker count.
func (p *Pool) Workers() int { return p.nbWorkers }

// NumServices returns the configured service count.
func (p *Pool) NumServices() int { return p.nbServices }

// Start retains a keep-alive token per owned service, computes the
// worker-to-service assignment from policy and spawns the workers. Each
// worker registers itself, runs initFn if non-nil, then enters its
// assigned service's run loop. A second Start, including after Stop,
// returns api.ErrPoolAlreadyRunning.
func (p *Pool) Start(initFn func(), policy api.DispatchPolicy) error {
	p.mu.Lock()
	if p.state != stateCreated {
		p.mu.Unlock()
		return api.ErrPoolAlreadyRunning
	}
	p.state = stateRunning

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	p.assignments = make([]int, p.nbWorkers)
	for i := range p.assignments {
		p.assignments[i] = AssignService(i, p.nbWorkers, p.nbServices, policy, rng)
	}
	p.pickers = make([]*Picker, p.nbWorkers)
	for _, svc := range p.owned {
		p.tokens = append(p.tokens, svc.RetainWork())
	}
	p.mu.Unlock()

	for i := 0; i < p.nbWorkers; i++ {
		p.wg.Add(1)
		go p.runWorker(i, initFn, policy)
	}
	return nil
}

// runWorker is the body of worker idx: register, init, drain, deregister.
func (p *Pool) runWorker(idx int, initFn func(), policy api.DispatchPolicy) {
	defer p.wg.Done()

	if p.pin && policy == api.PolicyPerCore {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		cpu := idx % runtime.NumCPU()
		if err := affinity.Pin(cpu); err != nil {
			log.Printf("hioload-pool: %s: worker %d: pin to cpu %d: %v", p.name, idx, cpu, err)
		} else {
			defer affinity.Unpin()
		}
	}

	id := gid.ID()
	p.mu.Lock()
	p.workerIDs[id] = idx
	p.mu.Unlock()
	p.runningWorkers.Add(1)
	defer func() {
		p.runningWorkers.Add(-1)
		p.mu.Lock()
		delete(p.workerIDs, id)
		p.mu.Unlock()
	}()

	// A panic escaping initFn or the run loop is fatal for this worker:
	// it is logged and the worker is not restarted.
	defer func() {
		if r := recover(); r != nil {
			log.Printf("hioload-pool: %s: worker %d: fatal: %v", p.name, idx, r)
		}
	}()

	if initFn != nil {
		initFn()
	}
	svc := p.services[p.assignments[idx]]
	if err := svc.Run(); err != nil {
		log.Printf("hioload-pool: %s: worker %d: run loop: %v", p.name, idx, err)
	}
}

// Stop releases all keep-alive tokens, stops owned services (cancelling
// their pending waits) and joins every worker. Queued work runs to
// completion before the corresponding loop exits. Idempotent; calling
// Stop on a pool that is not running is a no-op.
//
// In borrowed-service mode Stop does not touch the external service:
// the join completes once its owner lets the run loop return.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.state != stateRunning {
		p.mu.Unlock()
		return
	}
	p.state = stateStopped
	tokens := p.tokens
	p.tokens = nil
	p.mu.Unlock()

	for _, t := range tokens {
		t.Release()
	}
	for _, svc := range p.owned {
		svc.Stop()
	}
	p.wg.Wait()
}

// Close stops the pool if still running. Safe to defer at construction.
func (p *Pool) Close() {
	p.Stop()
}

// RunningInPool reports whether the calling goroutine is one of this
// pool's workers.
func (p *Pool) RunningInPool() bool {
	id := gid.ID()
	p.mu.RLock()
	_, ok := p.workerIDs[id]
	p.mu.RUnlock()
	return ok
}

// RunningWorkers returns the number of workers currently inside their
// run loop bodies.
func (p *Pool) RunningWorkers() int {
	return int(p.runningWorkers.Load())
}

// Assignments returns a copy of the worker-to-service mapping computed
// at Start, or nil before Start.
func (p *Pool) Assignments() []int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.assignments == nil {
		return nil
	}
	out := make([]int, len(p.assignments))
	copy(out, p.assignments)
	return out
}

// Service resolves a selector to a concrete service. Explicit indexes
// are bounds-checked; api.CurrentService is valid only from a worker.
func (p *Pool) Service(sel api.Selector) (api.Service, error) {
	switch sel.Kind() {
	case api.KindIndex:
		i := sel.Index()
		if i < 0 || i >= p.nbServices {
			return nil, fmt.Errorf("%w: %d of %d", api.ErrServiceIndexRange, i, p.nbServices)
		}
		return p.services[i], nil
	case api.KindRoundRobin:
		idx := (p.cursor.Add(1) - 1) % uint64(p.nbServices)
		return p.services[idx], nil
	case api.KindRandom:
		return p.services[p.pickRandom()], nil
	case api.KindCurrent:
		return p.CurrentService()
	default:
		return nil, fmt.Errorf("%w: unknown selector kind %d", api.ErrServiceIndexRange, sel.Kind())
	}
}

// CurrentService returns the service whose run loop the calling worker
// is executing, or api.ErrNotInPool from any other goroutine.
func (p *Pool) CurrentService() (api.Service, error) {
	id := gid.ID()
	p.mu.RLock()
	idx, ok := p.workerIDs[id]
	var svcIdx int
	if ok {
		svcIdx = p.assignments[idx]
	}
	p.mu.RUnlock()
	if !ok {
		return nil, api.ErrNotInPool
	}
	return p.services[svcIdx], nil
}

// pickRandom consults the calling worker's arena Picker, creating it on
// first use. Non-worker callers share the fallback picker.
func (p *Pool) pickRandom() int {
	id := gid.ID()
	p.mu.RLock()
	idx, ok := p.workerIDs[id]
	p.mu.RUnlock()
	if !ok {
		p.fallbackMu.Lock()
		defer p.fallbackMu.Unlock()
		return p.fallback.Pick()
	}
	// The arena slot is touched only by its own worker; no lock needed.
	pk := p.pickers[idx]
	if pk == nil {
		pk = NewPicker(p.nbServices, time.Now().UnixNano()+int64(idx))
		p.pickers[idx] = pk
	}
	return pk.Pick()
}

// Post resolves sel and enqueues fn for asynchronous execution on the
// target service. Never blocks the caller.
func (p *Pool) Post(fn func(), sel api.Selector) error {
	svc, err := p.Service(sel)
	if err != nil {
		return err
	}
	svc.Post(fn)
	return nil
}

// Dispatch resolves sel and runs fn inline when the caller is already
// on the target service's loop, otherwise enqueues it like Post.
func (p *Pool) Dispatch(fn func(), sel api.Selector) error {
	svc, err := p.Service(sel)
	if err != nil {
		return err
	}
	svc.Dispatch(fn)
	return nil
}

// PostAll enqueues fn once per worker, to each worker's assigned
// service. Under api.PolicyAllCore that is one queue receiving the
// callable Workers() times: broadcast-to-workers, not per service.
func (p *Pool) PostAll(fn func()) error {
	p.mu.RLock()
	running := p.state == stateRunning
	assignments := p.assignments
	p.mu.RUnlock()
	if !running {
		return api.ErrPoolNotRunning
	}
	for _, svcIdx := range assignments {
		p.services[svcIdx].Post(fn)
	}
	return nil
}

// DispatchAll broadcasts like PostAll. It deliberately posts rather
// than dispatches: an inline broadcast could run on the calling worker
// ahead of its siblings, which is never what a broadcast wants.
func (p *Pool) DispatchAll(fn func()) error {
	return p.PostAll(fn)
}

// Stats returns basic pool metrics.
func (p *Pool) Stats() map[string]int64 {
	return map[string]int64{
		"workers":         int64(p.nbWorkers),
		"services":        int64(p.nbServices),
		"running_workers": int64(p.runningWorkers.Load()),
		"round_robin":     int64(p.cursor.Load()),
	}
}
