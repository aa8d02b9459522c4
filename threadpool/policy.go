// File: threadpool/policy.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Dispatch-policy worker placement, expressed as a pure function so the
// mapping is testable without spawning workers.

package threadpool

import (
	"math/rand"

	"github.com/momentics/hioload-pool/api"
)

// AssignService maps worker workerIdx of workerCount to a service index
// in [0, serviceCount) according to policy. rng is consulted only by
// api.PolicyRandom and may be nil otherwise.
func AssignService(workerIdx, workerCount, serviceCount int, policy api.DispatchPolicy, rng *rand.Rand) int {
	if serviceCount <= 1 {
		return 0
	}
	switch policy {
	case api.PolicyPerCore:
		return workerIdx % serviceCount
	case api.PolicyAllCore:
		return 0
	default:
		return rng.Intn(serviceCount)
	}
}
