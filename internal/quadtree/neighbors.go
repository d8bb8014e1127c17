package quadtree

import (
	"fmt"
	"math"
	"sort"
)

func errOutOfBoundsF(x, y float64) error {
	return fmt.Errorf("%w: %v, %v", errCoordsOutOfBounds, x, y)
}

// Entry pairs a stored value with the continuous-space position it was
// inserted at.
type Entry[T any] struct {
	X, Y float64
	Data T
}

// NeighborsStore is a spatial index backed by a quadtree: leaves hold a
// slice of entries and split automatically once they exceed loadFactor,
// down to the tree's max depth.
type NeighborsStore[T any] struct {
	qtree      *Quadtree[struct{}, []Entry[T]]
	loadFactor uint32
	entries    []Entry[T]
}

// NewNeighborsStore creates an empty store over a 2^maxDepth square,
// splitting any leaf once it holds more than loadFactor entries.
func NewNeighborsStore[T any](loadFactor, maxDepth uint32) *NeighborsStore[T] {
	return &NeighborsStore[T]{
		qtree:      New[struct{}, []Entry[T]](nil, maxDepth),
		loadFactor: loadFactor,
	}
}

// Count returns the number of entries inserted.
func (s *NeighborsStore[T]) Count() int {
	return len(s.entries)
}

// Entries returns every inserted entry. The caller must not mutate it.
func (s *NeighborsStore[T]) Entries() []Entry[T] {
	return s.entries
}

// Insert adds data at continuous-space position (x, y).
func (s *NeighborsStore[T]) Insert(data T, x, y float64) error {
	width := float64(s.qtree.Width())
	if x < 0 || x > width || y < 0 || y > width {
		return errOutOfBoundsF(x, y)
	}
	vd, err := s.qtree.VisitData(uint64(x), uint64(y))
	if err != nil {
		return err
	}
	entry := Entry[T]{X: x, Y: y, Data: data}
	leaf, err := s.qtree.Leaf(vd.Address)
	if err != nil {
		return err
	}
	*leaf = append(*leaf, entry)
	if err := s.splitIfNeeded(vd); err != nil {
		return err
	}
	s.entries = append(s.entries, entry)
	return nil
}

func (s *NeighborsStore[T]) splitIfNeeded(vd VisitData) error {
	maxDepth := s.qtree.MaxDepth()
	leaf, err := s.qtree.Leaf(vd.Address)
	if err != nil {
		return err
	}
	if uint32(len(*leaf)) <= s.loadFactor || vd.Depth >= maxDepth {
		return nil
	}

	entries := *leaf
	var quads QuadMap[[]Entry[T]]
	for _, e := range entries {
		q, err := vd.QuadrantForCoords(uint64(e.X), uint64(e.Y))
		if err != nil {
			return err
		}
		quads.Set(q, append(quads.Get(q), e))
	}
	if err := s.qtree.Split(vd.Address, struct{}{}, quads); err != nil {
		return err
	}
	// If overflow landed entirely within one quadrant, that child may
	// still be over the load factor; recurse to split it too.
	for _, q := range Quadrants {
		if err := s.splitIfNeeded(vd.Child(q)); err != nil {
			return err
		}
	}
	return nil
}

// NeighborsVisitor receives entries found within a radius search, each
// with its distance from the search center.
type NeighborsVisitor[T any] interface {
	Visit(entry T, x, y, distance float64) error
}

// AllNeighborsVisitor receives every (base, other) pair found while
// sweeping a per-entry radius over the whole store.
type AllNeighborsVisitor[T any] interface {
	Visit(base, entry T, distance float64) error
}

// VisitRadius calls v for every entry within radius of (x, y).
func (s *NeighborsStore[T]) VisitRadius(v NeighborsVisitor[T], x, y, radius float64) error {
	inner := &radiusVisitor[T]{x: x, y: y, radius: radius, visitor: v}
	r := math.Ceil(radius)
	bounds := RectCorners(
		clampCoord(x-r),
		clampCoord(y-r),
		clampCoord(math.Ceil(x+r)),
		clampCoord(math.Ceil(y+r)),
	)
	return s.qtree.VisitRect(inner, bounds)
}

func clampCoord(f float64) uint64 {
	if f <= 0 {
		return 0
	}
	return uint64(math.Floor(f))
}

// VisitAll calls v for every entry in the store, regardless of distance
// from (x, y).
func (s *NeighborsStore[T]) VisitAll(v NeighborsVisitor[T], x, y float64) error {
	return s.VisitRadius(v, x, y, math.MaxFloat64)
}

// VisitAllRadius sweeps every stored entry as a base point, calling v
// with every other entry found within radius(base).
func (s *NeighborsStore[T]) VisitAllRadius(v AllNeighborsVisitor[T], radius func(T) float64) error {
	for _, base := range s.entries {
		adapter := &baseRadiusAdapter[T]{visitor: v, base: base.Data}
		if err := s.VisitRadius(adapter, base.X, base.Y, radius(base.Data)); err != nil {
			return err
		}
	}
	return nil
}

// FindNearestK returns up to k entries nearest to (x, y), closest first.
// It searches an expanding radius starting at width/100 (minimum 1),
// doubling until enough candidates are found or the whole store has been
// covered.
func (s *NeighborsStore[T]) FindNearestK(x, y float64, k int) []T {
	radius := float64(s.qtree.Width() / 100)
	if radius < 1 {
		radius = 1
	}
	for {
		collector := &nearestCollector[T]{}
		_ = s.VisitRadius(collector, x, y, radius)
		sort.Slice(collector.items, func(i, j int) bool {
			return collector.items[i].dist < collector.items[j].dist
		})
		if len(collector.items) >= k {
			return collector.take(k)
		}
		if radius >= float64(s.qtree.Width()) {
			return collector.take(len(collector.items))
		}
		radius *= 2
	}
}

// FindNearest returns the single nearest entry to (x, y), if any exist.
func (s *NeighborsStore[T]) FindNearest(x, y float64) (T, bool) {
	res := s.FindNearestK(x, y, 1)
	if len(res) == 0 {
		var zero T
		return zero, false
	}
	return res[0], true
}

type radiusVisitor[T any] struct {
	x, y, radius float64
	visitor      NeighborsVisitor[T]
}

func (v *radiusVisitor[T]) VisitBranchPre(branch *struct{}, data VisitData) (bool, error) {
	return true, nil
}

func (v *radiusVisitor[T]) VisitLeaf(leaf *[]Entry[T], data VisitData) error {
	for _, e := range *leaf {
		dx, dy := e.X-v.x, e.Y-v.y
		dist := math.Sqrt(dx*dx + dy*dy)
		if dist <= v.radius {
			if err := v.visitor.Visit(e.Data, e.X, e.Y, dist); err != nil {
				return err
			}
		}
	}
	return nil
}

func (v *radiusVisitor[T]) VisitBranchPost(branch *struct{}, data VisitData) error {
	return nil
}

type baseRadiusAdapter[T any] struct {
	visitor AllNeighborsVisitor[T]
	base    T
}

func (a *baseRadiusAdapter[T]) Visit(entry T, x, y, distance float64) error {
	return a.visitor.Visit(a.base, entry, distance)
}

type nearestItem[T any] struct {
	dist float64
	data T
}

type nearestCollector[T any] struct {
	items []nearestItem[T]
}

func (c *nearestCollector[T]) Visit(entry T, x, y, distance float64) error {
	c.items = append(c.items, nearestItem[T]{dist: distance, data: entry})
	return nil
}

func (c *nearestCollector[T]) take(k int) []T {
	if k > len(c.items) {
		k = len(c.items)
	}
	out := make([]T, k)
	for i := 0; i < k; i++ {
		out[i] = c.items[i].data
	}
	return out
}
