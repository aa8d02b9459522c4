//go:build !linux

// File: affinity/affinity_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub for platforms without an affinity implementation.

package affinity

func pinPlatform(cpuID int) error { return ErrNotSupported }

func unpinPlatform() error { return ErrNotSupported }
