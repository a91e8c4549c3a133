package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListPool_ReusesCapacity(t *testing.T) {
	t.Parallel()
	lp := NewListPool[int]()

	s := lp.Lease()
	require.Empty(t, *s)
	*s = append(*s, 1, 2, 3)
	lp.Release(s)

	s2 := lp.Lease()
	assert.Empty(t, *s2, "leased slice is always zero length")
	lp.Release(s2)
}

func TestListPool_ReleaseNil(t *testing.T) {
	t.Parallel()
	lp := NewListPool[int]()
	lp.Release(nil) // no-op
}

func TestListPool_Close(t *testing.T) {
	t.Parallel()
	lp := NewListPool[string]()

	s := lp.Lease()
	lp.Close()
	lp.Close() // idempotent

	// Still safe to release and lease after retirement.
	lp.Release(s)
	s2 := lp.Lease()
	assert.Empty(t, *s2)
}

func TestSetPool_LeaseIsEmpty(t *testing.T) {
	t.Parallel()
	sp := NewSetPool[string]()

	m := sp.Lease()
	m["a"] = struct{}{}
	m["b"] = struct{}{}
	sp.Release(m)

	m2 := sp.Lease()
	assert.Empty(t, m2)
	sp.Release(m2)
}

func TestSetPool_Close(t *testing.T) {
	t.Parallel()
	sp := NewSetPool[int]()

	m := sp.Lease()
	sp.Close()
	sp.Release(m)

	m2 := sp.Lease()
	assert.Empty(t, m2)
	assert.NotNil(t, m2)
}
