// File: threadpool/options.go
// Package threadpool defines functional options for Pool construction.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package threadpool

// Option customizes pool construction.
type Option func(*Pool)

// WithName sets the pool name used in service names and log messages.
func WithName(name string) Option {
	return func(p *Pool) {
		p.name = name
	}
}

// WithServices sets the number of internally owned services. Values
// below 1 are clamped to 1. Ignored when a service is borrowed.
func WithServices(n int) Option {
	return func(p *Pool) {
		if n < 1 {
			n = 1
		}
		p.nbServices = n
	}
}

// WithPinning enables per-worker OS thread pinning under
// api.PolicyPerCore: worker i locks its OS thread and binds it to CPU
// i mod NumCPU. No effect on platforms without affinity support.
func WithPinning(enabled bool) Option {
	return func(p *Pool) {
		p.pin = enabled
	}
}
