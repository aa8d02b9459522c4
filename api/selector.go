// File: api/selector.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Service selector and dispatch-policy definitions.

package api

// SelectorKind discriminates the selector variants.
type SelectorKind int

const (
	// KindRoundRobin distributes selections over all services through a
	// shared atomic cursor. The zero selector value resolves this way.
	KindRoundRobin SelectorKind = iota

	// KindIndex targets one service by explicit index.
	KindIndex

	// KindRandom picks a uniformly random service per call.
	KindRandom

	// KindCurrent targets the service whose loop the calling worker is
	// executing. Valid only from inside the pool.
	KindCurrent
)

// Selector names the target service of a Post, Dispatch or Schedule call.
// The zero value selects round robin.
type Selector struct {
	kind  SelectorKind
	index int
}

// Predefined selectors for the non-indexed strategies.
var (
	RoundRobin     = Selector{kind: KindRoundRobin}
	RandomService  = Selector{kind: KindRandom}
	CurrentService = Selector{kind: KindCurrent}
)

// ServiceIndex selects the service at index i.
func ServiceIndex(i int) Selector {
	return Selector{kind: KindIndex, index: i}
}

// Kind returns the selector variant.
func (s Selector) Kind() SelectorKind { return s.kind }

// Index returns the explicit service index. Meaningful only for KindIndex.
func (s Selector) Index() int { return s.index }

// DispatchPolicy decides, once at Start, which service each worker's run
// loop serves. It is independent of per-call selector resolution.
type DispatchPolicy int

const (
	// PolicyRandom assigns every worker a uniformly random service,
	// independently, with no balancing guarantee.
	PolicyRandom DispatchPolicy = iota

	// PolicyPerCore assigns workers round-robin over services, worker i
	// serving service i mod serviceCount.
	PolicyPerCore

	// PolicyAllCore assigns every worker to the first service, so the
	// whole pool drains one queue cooperatively.
	PolicyAllCore
)

// String returns the policy name.
func (p DispatchPolicy) String() string {
	switch p {
	case PolicyRandom:
		return "Random"
	case PolicyPerCore:
		return "PerCore"
	case PolicyAllCore:
		return "AllCore"
	default:
		return "Unknown"
	}
}
