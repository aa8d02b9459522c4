// File: threadpool/picker.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Uniform-random service picker. Each worker owns one Picker in an
// arena slot indexed by worker id, so the random-selection hot path
// never contends across workers. Callers outside the pool share a
// single mutex-guarded fallback instance.

package threadpool

import "math/rand"

// Picker returns one index in [0, n) per call, uniformly at random.
type Picker struct {
	n   int
	rng *rand.Rand
}

// NewPicker creates a picker over n services with its own seeded source.
func NewPicker(n int, seed int64) *Picker {
	return &Picker{n: n, rng: rand.New(rand.NewSource(seed))}
}

// Pick returns a uniformly random service index.
func (p *Picker) Pick() int {
	if p.n <= 1 {
		return 0
	}
	return p.rng.Intn(p.n)
}
