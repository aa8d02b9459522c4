// File: affinity/affinity.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral API for CPU affinity. Platform-specific implementations
// are located in separate files (affinity_linux.go, affinity_stub.go)
// guarded by build tags.

package affinity

import "errors"

// ErrNotSupported indicates CPU affinity is unavailable on this platform.
var ErrNotSupported = errors.New("affinity: not supported on this platform")

// Pin binds the calling OS thread to a single logical CPU. The caller
// must hold runtime.LockOSThread for the binding to stay meaningful.
func Pin(cpuID int) error {
	return pinPlatform(cpuID)
}

// Unpin restores the calling OS thread's affinity to all CPUs.
func Unpin() error {
	return unpinPlatform()
}
