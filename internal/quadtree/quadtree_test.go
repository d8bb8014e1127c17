package quadtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuadtreeCreate(t *testing.T) {
	qt := New[struct{}, int](42, 0)
	leaf, err := qt.Leaf(RootAddress())
	require.NoError(t, err)
	assert.Equal(t, 42, *leaf)
}

func TestQuadtreeModify(t *testing.T) {
	qt := New[struct{}, int](42, 0)
	leaf, err := qt.Leaf(RootAddress())
	require.NoError(t, err)
	*leaf = 43
	again, err := qt.Leaf(RootAddress())
	require.NoError(t, err)
	assert.Equal(t, 43, *again)
}

func TestQuadtreeSplit(t *testing.T) {
	qt := New[string, int](0, 1)
	err := qt.Split(RootAddress(), "root", NewQuadMap(1, 2, 3, 4))
	require.NoError(t, err)

	branch, err := qt.Branch(RootAddress())
	require.NoError(t, err)
	assert.Equal(t, "root", *branch)

	for q, want := range map[Quadrant]int{NW: 1, NE: 2, SW: 3, SE: 4} {
		leaf, err := qt.Leaf(NewAddress([]Quadrant{q}))
		require.NoError(t, err)
		assert.Equal(t, want, *leaf)
	}
}

func TestQuadtreeMaxDepthExceeded(t *testing.T) {
	qt := New[int, int](0, 0)
	err := qt.Split(RootAddress(), 0, NewQuadMap(0, 0, 0, 0))
	require.Error(t, err)
	assert.ErrorIs(t, err, errMaxDepthExceeded)
}

func TestQuadtreeGetAddress(t *testing.T) {
	qt := New[int, int](0, 2)

	addr, err := qt.GetAddress(0, 0)
	require.NoError(t, err)
	assert.Equal(t, RootAddress(), addr)

	require.NoError(t, qt.Split(RootAddress(), 0, NewQuadMap(1, 2, 3, 4)))

	addr, err = qt.GetAddress(0, 0)
	require.NoError(t, err)
	assert.Equal(t, []Quadrant{NW}, addr.Path())

	addr, err = qt.GetAddress(2, 0)
	require.NoError(t, err)
	assert.Equal(t, []Quadrant{NE}, addr.Path())

	addr, err = qt.GetAddress(0, 2)
	require.NoError(t, err)
	assert.Equal(t, []Quadrant{SW}, addr.Path())

	addr, err = qt.GetAddress(2, 2)
	require.NoError(t, err)
	assert.Equal(t, []Quadrant{SE}, addr.Path())

	_, err = qt.GetAddress(4, 4)
	require.Error(t, err)
	assert.ErrorIs(t, err, errCoordsOutOfBounds)

	require.NoError(t, qt.Split(NewAddress([]Quadrant{SE}), 5, NewQuadMap(6, 7, 8, 9)))
	addr, err = qt.GetAddress(3, 2)
	require.NoError(t, err)
	assert.Equal(t, []Quadrant{SE, NE}, addr.Path())
}

type seenEntry[T any] struct {
	data T
	vd   VisitData
}

type seenVisitor[B, L any] struct {
	branches []seenEntry[B]
	leaves   []seenEntry[L]
}

func (v *seenVisitor[B, L]) VisitBranchPre(branch *B, data VisitData) (bool, error) {
	v.branches = append(v.branches, seenEntry[B]{data: *branch, vd: data})
	return true, nil
}

func (v *seenVisitor[B, L]) VisitLeaf(leaf *L, data VisitData) error {
	v.leaves = append(v.leaves, seenEntry[L]{data: *leaf, vd: data})
	return nil
}

func (v *seenVisitor[B, L]) VisitBranchPost(branch *B, data VisitData) error {
	return nil
}

func TestQuadtreeVisitSingleLeaf(t *testing.T) {
	qt := New[int, int](0, 0)
	visitor := &seenVisitor[int, int]{}
	require.NoError(t, qt.Visit(visitor))

	assert.Empty(t, visitor.branches)
	require.Len(t, visitor.leaves, 1)
	assert.Equal(t, 0, visitor.leaves[0].data)
	assert.Equal(t, uint64(1), visitor.leaves[0].vd.Width)
}

func TestQuadtreeVisitOneSplit(t *testing.T) {
	qt := New[int, int](0, 1)
	require.NoError(t, qt.Split(RootAddress(), 0, NewQuadMap(1, 2, 3, 4)))

	visitor := &seenVisitor[int, int]{}
	require.NoError(t, qt.Visit(visitor))

	require.Len(t, visitor.branches, 1)
	assert.Equal(t, 0, visitor.branches[0].data)
	assert.Equal(t, uint64(2), visitor.branches[0].vd.Width)

	require.Len(t, visitor.leaves, 4)
	byQuadrant := map[Quadrant]int{}
	for _, l := range visitor.leaves {
		byQuadrant[l.vd.Address.At(0)] = l.data
	}
	assert.Equal(t, map[Quadrant]int{NW: 1, NE: 2, SW: 3, SE: 4}, byQuadrant)
}

func TestQuadtreeVisitBranchPreStopsDescent(t *testing.T) {
	qt := New[int, int](0, 1)
	require.NoError(t, qt.Split(RootAddress(), 0, NewQuadMap(1, 2, 3, 4)))

	visitor := &stoppingVisitor[int, int]{}
	require.NoError(t, qt.Visit(visitor))
	// branch_post still runs even though descent was skipped.
	assert.Equal(t, 1, visitor.postCount)
	assert.Empty(t, visitor.leaves)
}

type stoppingVisitor[B, L any] struct {
	postCount int
	leaves    []L
}

func (v *stoppingVisitor[B, L]) VisitBranchPre(branch *B, data VisitData) (bool, error) {
	return false, nil
}

func (v *stoppingVisitor[B, L]) VisitLeaf(leaf *L, data VisitData) error {
	v.leaves = append(v.leaves, *leaf)
	return nil
}

func (v *stoppingVisitor[B, L]) VisitBranchPost(branch *B, data VisitData) error {
	v.postCount++
	return nil
}

type sumFolder struct{}

func (sumFolder) FoldLeaf(leaf *int, data VisitData) (int, error) {
	return *leaf, nil
}

func (sumFolder) FoldBranch(branch *int, children QuadMap[int], data VisitData) (int, error) {
	total := *branch
	for _, q := range Quadrants {
		total += children.Get(q)
	}
	return total, nil
}

func TestQuadtreeFold(t *testing.T) {
	qt := New[int, int](0, 1)
	require.NoError(t, qt.Split(RootAddress(), 100, NewQuadMap(1, 2, 3, 4)))

	total, err := Fold[int, int, int](qt, sumFolder{})
	require.NoError(t, err)
	assert.Equal(t, 110, total)
}

func TestQuadtreeVisitRectExcludesOutOfBounds(t *testing.T) {
	qt := New[int, int](0, 1)
	require.NoError(t, qt.Split(RootAddress(), 0, NewQuadMap(1, 2, 3, 4)))

	visitor := &seenVisitor[int, int]{}
	require.NoError(t, qt.VisitRect(visitor, RectXYWH(0, 0, 1, 1)))

	require.Len(t, visitor.leaves, 1)
	assert.Equal(t, 1, visitor.leaves[0].data)
}
