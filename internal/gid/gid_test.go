// File: internal/gid/gid_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package gid

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID_StableWithinGoroutine(t *testing.T) {
	first := ID()
	require.Greater(t, first, int64(0))
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, ID())
	}
}

func TestID_DistinctAcrossGoroutines(t *testing.T) {
	const n = 32
	ids := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- ID()
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool)
	for id := range ids {
		require.Greater(t, id, int64(0))
		assert.False(t, seen[id], "goroutine id %d observed twice", id)
		seen[id] = true
	}
	assert.NotContains(t, seen, ID())
}
