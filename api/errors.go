// File: api/errors.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Common error values used across the library.

package api

import "errors"

var (
	// ErrPoolAlreadyRunning indicates Start was called on a pool that is
	// running or has already been stopped. A pool is not restartable.
	ErrPoolAlreadyRunning = errors.New("pool is already running or stopped")

	// ErrPoolNotRunning indicates an operation that needs live workers
	// was called before Start or after Stop.
	ErrPoolNotRunning = errors.New("pool is not running")

	// ErrServiceIndexRange indicates an explicit selector index outside
	// [0, serviceCount).
	ErrServiceIndexRange = errors.New("service index out of range")

	// ErrNotInPool indicates CurrentService was resolved from a goroutine
	// that is not one of the pool's workers.
	ErrNotInPool = errors.New("caller is not a pool worker")

	// ErrServiceStopped indicates Run was called on a stopped service.
	ErrServiceStopped = errors.New("service is stopped")

	// ErrWaitCanceled is delivered to a wait completion whose wait was
	// cancelled, either explicitly or by shutdown. Expected and silent.
	ErrWaitCanceled = errors.New("wait canceled")

	// ErrNonPositiveDelay indicates Schedule was called with a delay <= 0.
	ErrNonPositiveDelay = errors.New("delay must be positive")
)
