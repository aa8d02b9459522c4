// File: internal/gid/gid.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Goroutine identity. Go exposes no goroutine-local storage, so run-loop
// membership is tracked in explicit maps keyed by the id parsed from the
// runtime.Stack header. The header format ("goroutine N [state]:") has
// been stable across every Go release to date.

package gid

import "runtime"

// ID returns the id of the calling goroutine.
func ID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	// Skip the "goroutine " prefix, then read digits up to the space.
	const prefix = len("goroutine ")
	var id int64
	for i := prefix; i < n; i++ {
		c := buf[i]
		if c < '0' || c > '9' {
			break
		}
		id = id*10 + int64(c-'0')
	}
	return id
}
