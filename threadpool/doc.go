// Package threadpool
// Author: momentics <momentics@gmail.com>
//
// Managed worker pool fronting one or more event-loop services. A Pool
// owns a fixed set of worker goroutines and a fixed set of services,
// binds each worker's run loop to one service according to a dispatch
// policy at Start, and resolves per-call selectors (explicit index,
// round robin, random, current service) when submitting work.
// See pool.go for lifecycle, policy.go for worker placement and
// timer.go for the self-rescheduling timer.
package threadpool
