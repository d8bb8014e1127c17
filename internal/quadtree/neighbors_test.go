package quadtree

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type collectingVisitor struct {
	seen []uint32
}

func (v *collectingVisitor) Visit(entry uint32, x, y, distance float64) error {
	v.seen = append(v.seen, entry)
	return nil
}

func assertVisitEqual(t *testing.T, store *NeighborsStore[uint32], x, y, radius float64, want []uint32) {
	t.Helper()
	v := &collectingVisitor{}
	require.NoError(t, store.VisitRadius(v, x, y, radius))
	sort.Slice(v.seen, func(i, j int) bool { return v.seen[i] < v.seen[j] })
	sort.Slice(want, func(i, j int) bool { return want[i] < want[j] })
	assert.Equal(t, want, v.seen)
}

func TestNeighborsStoreSimple(t *testing.T) {
	store := NewNeighborsStore[uint32](1, 2)
	assertVisitEqual(t, store, 0, 0, 1, []uint32{})

	require.NoError(t, store.Insert(0, 0, 0))
	assertVisitEqual(t, store, 0, 0, 1, []uint32{0})

	require.NoError(t, store.Insert(1, 2, 2))
	assertVisitEqual(t, store, 0, 0, 1, []uint32{0})
	assertVisitEqual(t, store, 2, 2, 1, []uint32{1})
	assertVisitEqual(t, store, 1, 1, 2, []uint32{0, 1})
	assertVisitEqual(t, store, 1, 1, 1, []uint32{})
}

func TestNeighborsStoreOutOfBounds(t *testing.T) {
	store := NewNeighborsStore[uint32](1, 2)
	err := store.Insert(0, -1, -1)
	require.Error(t, err)
	assert.ErrorIs(t, err, errCoordsOutOfBounds)

	err = store.Insert(1, 5, 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, errCoordsOutOfBounds)

	assertVisitEqual(t, store, 0, 0, 10, []uint32{})
}

func TestNeighborsStoreMaxDepthRespected(t *testing.T) {
	store := NewNeighborsStore[uint32](1, 1)
	require.NoError(t, store.Insert(0, 0, 0))
	// Both land in the same leaf; load factor is exceeded but max depth
	// forbids further splitting, so this must not panic or error.
	require.NoError(t, store.Insert(1, 0, 0))
}

func TestNeighborsStoreFindNearest(t *testing.T) {
	store := NewNeighborsStore[uint32](1, 2)
	require.NoError(t, store.Insert(0, 0, 0))
	require.NoError(t, store.Insert(1, 3, 0))
	require.NoError(t, store.Insert(2, 0, 3))

	got, ok := store.FindNearest(0, 0)
	require.True(t, ok)
	assert.Equal(t, uint32(0), got)

	got, ok = store.FindNearest(3, 0)
	require.True(t, ok)
	assert.Equal(t, uint32(1), got)

	got, ok = store.FindNearest(0, 3)
	require.True(t, ok)
	assert.Equal(t, uint32(2), got)

	got, ok = store.FindNearest(1, 1)
	require.True(t, ok)
	assert.Equal(t, uint32(0), got)

	got, ok = store.FindNearest(1, 4)
	require.True(t, ok)
	assert.Equal(t, uint32(2), got)
}

func TestNeighborsStoreFindNearestK(t *testing.T) {
	store := NewNeighborsStore[uint32](1, 2)
	require.NoError(t, store.Insert(0, 0, 0))
	require.NoError(t, store.Insert(1, 3, 0))
	require.NoError(t, store.Insert(2, 0, 2))

	assert.Equal(t, []uint32{}, store.FindNearestK(0, 0, 0))
	assert.Equal(t, []uint32{0, 2, 1}, store.FindNearestK(0, 0, 3))
	assert.Equal(t, []uint32{0, 2}, store.FindNearestK(0, 0, 2))
}
