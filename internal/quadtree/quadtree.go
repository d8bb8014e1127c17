package quadtree

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by tree navigation. Use errors.Is to test for
// them; the coordinate/depth-carrying variants wrap one of these via
// fmt.Errorf so the dynamic values stay in the message without losing the
// sentinel identity.
var (
	ErrExpectedBranch    = errors.New("quadtree: expected branch, got leaf")
	ErrExpectedLeaf      = errors.New("quadtree: expected leaf, got branch")
	errMaxDepthExceeded  = errors.New("quadtree: max depth exceeded")
	errCoordsOutOfBounds = errors.New("quadtree: coordinates out of bounds")
)

func errDepthExceeded(maxDepth uint32) error {
	return fmt.Errorf("%w: %d", errMaxDepthExceeded, maxDepth)
}

func errOutOfBounds(x, y uint64) error {
	return fmt.Errorf("%w: %d, %d", errCoordsOutOfBounds, x, y)
}

// VisitData carries the position a traversal has reached: the address
// from the root, its depth, and the tile-grid rectangle it covers.
type VisitData struct {
	Address Address
	Depth   uint32
	X, Y    uint64
	Width   uint64
}

// InBounds reports whether this node's region intersects bounds.
func (d VisitData) InBounds(bounds Rect) bool {
	return d.X < bounds.MaxX && d.X+d.Width > bounds.MinX &&
		d.Y < bounds.MaxY && d.Y+d.Width > bounds.MinY
}

// Bounds returns this node's own tile-grid rectangle.
func (d VisitData) Bounds() Rect {
	return RectXYWH(d.X, d.Y, d.Width, d.Width)
}

// Child returns the VisitData of the given quadrant below this node.
func (d VisitData) Child(q Quadrant) VisitData {
	x := d.X
	if q == NE || q == SE {
		x += d.Width / 2
	}
	y := d.Y
	if q == SW || q == SE {
		y += d.Width / 2
	}
	return VisitData{
		Address: d.Address.Child(q),
		Depth:   d.Depth + 1,
		X:       x,
		Y:       y,
		Width:   d.Width / 2,
	}
}

// QuadrantForCoords returns which of this node's four children contains
// (x, y), or an error if the point falls outside this node's region.
func (d VisitData) QuadrantForCoords(x, y uint64) (Quadrant, error) {
	if x < d.X || x > d.X+d.Width || y < d.Y || y > d.Y+d.Width {
		return 0, errOutOfBounds(x, y)
	}
	right := x >= d.X+d.Width/2
	bottom := y >= d.Y+d.Width/2
	return QuadrantFromSides(right, bottom), nil
}

// Visitor walks a Quadtree top-down. VisitBranchPre returning false skips
// descending into that branch's children, but VisitBranchPost still runs
// for it. Leaves are visited exactly once with no gating.
type Visitor[B, L any] interface {
	VisitBranchPre(branch *B, data VisitData) (bool, error)
	VisitLeaf(leaf *L, data VisitData) error
	VisitBranchPost(branch *B, data VisitData) error
}

// Folder aggregates a Quadtree bottom-up: leaves fold to a T directly,
// branches fold from their four already-folded children.
type Folder[B, L, T any] interface {
	FoldLeaf(leaf *L, data VisitData) (T, error)
	FoldBranch(branch *B, children QuadMap[T], data VisitData) (T, error)
}

type node[B, L any] struct {
	isBranch bool
	branch   B
	leaf     L
	children QuadMap[*node[B, L]]

	depth      int
	childCount int
	childDepth int
}

func newLeaf[B, L any](data L, depth int) *node[B, L] {
	return &node[B, L]{leaf: data, depth: depth}
}

func (n *node[B, L]) get(q Quadrant) (*node[B, L], error) {
	if !n.isBranch {
		return nil, ErrExpectedBranch
	}
	return n.children.Get(q), nil
}

func (n *node[B, L]) visit(v Visitor[B, L], data VisitData) error {
	if !n.isBranch {
		return v.VisitLeaf(&n.leaf, data)
	}
	cont, err := v.VisitBranchPre(&n.branch, data)
	if err != nil {
		return err
	}
	if cont {
		for _, q := range Quadrants {
			if err := n.children.Get(q).visit(v, data.Child(q)); err != nil {
				return err
			}
		}
	}
	return v.VisitBranchPost(&n.branch, data)
}

func foldNode[B, L, T any](n *node[B, L], f Folder[B, L, T], data VisitData) (T, error) {
	if !n.isBranch {
		return f.FoldLeaf(&n.leaf, data)
	}
	var children QuadMap[T]
	for _, q := range Quadrants {
		val, err := foldNode(n.children.Get(q), f, data.Child(q))
		if err != nil {
			var zero T
			return zero, err
		}
		children.Set(q, val)
	}
	return f.FoldBranch(&n.branch, children, data)
}

// Quadtree is a region quadtree over a square grid of side Width, split
// lazily down to MaxDepth. B is the data carried by branch nodes, L the
// data carried by leaves.
type Quadtree[B, L any] struct {
	root     *node[B, L]
	maxDepth uint32
	width    uint64
}

// New creates a single-leaf Quadtree covering a 2^maxDepth square grid.
func New[B, L any](data L, maxDepth uint32) *Quadtree[B, L] {
	return &Quadtree[B, L]{
		root:     newLeaf[B, L](data, 0),
		maxDepth: maxDepth,
		width:    uint64(1) << maxDepth,
	}
}

// Width returns the grid side length at full expansion (2^MaxDepth).
func (q *Quadtree[B, L]) Width() uint64 {
	return q.width
}

// MaxDepth returns the deepest a node below the root may split to.
func (q *Quadtree[B, L]) MaxDepth() uint32 {
	return q.maxDepth
}

func (q *Quadtree[B, L]) get(address Address) (*node[B, L], error) {
	n := q.root
	for i := 0; i < address.Depth(); i++ {
		next, err := n.get(address.At(i))
		if err != nil {
			return nil, err
		}
		n = next
	}
	return n, nil
}

// Branch returns a pointer to the branch data at address, for either
// reading or in-place mutation.
func (q *Quadtree[B, L]) Branch(address Address) (*B, error) {
	n, err := q.get(address)
	if err != nil {
		return nil, err
	}
	if !n.isBranch {
		return nil, ErrExpectedBranch
	}
	return &n.branch, nil
}

// Leaf returns a pointer to the leaf data at address, for either reading
// or in-place mutation.
func (q *Quadtree[B, L]) Leaf(address Address) (*L, error) {
	n, err := q.get(address)
	if err != nil {
		return nil, err
	}
	if n.isBranch {
		return nil, ErrExpectedLeaf
	}
	return &n.leaf, nil
}

// Split turns the leaf at address into a branch carrying data, with
// childData supplying the four new leaves below it.
func (q *Quadtree[B, L]) Split(address Address, data B, childData QuadMap[L]) error {
	newDepth := address.Depth() + 1
	if newDepth > int(q.maxDepth) {
		return errDepthExceeded(q.maxDepth)
	}

	existing, err := q.get(address)
	if err != nil {
		return err
	}
	if existing.isBranch {
		return ErrExpectedLeaf
	}

	existing.isBranch = true
	existing.branch = data
	existing.children = MapQuadMap(childData, func(l L) *node[B, L] {
		return newLeaf[B, L](l, newDepth)
	})
	existing.childCount = 4
	existing.childDepth = 1

	n := q.root
	for i := 0; i < address.Depth(); i++ {
		n.childCount += 3
		if d := newDepth - i; d > n.childDepth {
			n.childDepth = d
		}
		next, err := n.get(address.At(i))
		if err != nil {
			return err
		}
		n = next
	}
	return nil
}

func (q *Quadtree[B, L]) rootVisitData() VisitData {
	return VisitData{Width: q.width}
}

// VisitData locates the leaf covering grid coordinate (x, y).
func (q *Quadtree[B, L]) VisitData(x, y uint64) (VisitData, error) {
	if x >= q.width || y >= q.width {
		return VisitData{}, errOutOfBounds(x, y)
	}
	n := q.root
	minX, maxX, minY, maxY := uint64(0), q.width, uint64(0), q.width
	var path []Quadrant
	for depth := uint32(0); depth <= q.maxDepth; depth++ {
		if !n.isBranch {
			return VisitData{
				Address: NewAddress(path),
				Depth:   uint32(len(path)),
				X:       minX,
				Y:       minY,
				Width:   maxX - minX,
			}, nil
		}
		centerX := (maxX + minX) / 2
		centerY := (maxY + minY) / 2
		right := x >= centerX
		bottom := y >= centerY
		if right {
			minX = centerX
		} else {
			maxX = centerX
		}
		if bottom {
			minY = centerY
		} else {
			maxY = centerY
		}
		quadrant := QuadrantFromSides(right, bottom)
		path = append(path, quadrant)
		n = n.children.Get(quadrant)
	}
	panic("quadtree: node nested deeper than max depth")
}

// GetAddress locates the address of the leaf covering (x, y).
func (q *Quadtree[B, L]) GetAddress(x, y uint64) (Address, error) {
	vd, err := q.VisitData(x, y)
	if err != nil {
		return Address{}, err
	}
	return vd.Address, nil
}

// Visit walks the whole tree top-down with v.
func (q *Quadtree[B, L]) Visit(v Visitor[B, L]) error {
	return q.root.visit(v, q.rootVisitData())
}

// VisitRect walks only the nodes whose region intersects bounds.
func (q *Quadtree[B, L]) VisitRect(v Visitor[B, L], bounds Rect) error {
	return q.Visit(&rectVisitor[B, L]{bounds: bounds, inner: v})
}

// Fold aggregates the whole tree bottom-up with f.
func Fold[B, L, T any](q *Quadtree[B, L], f Folder[B, L, T]) (T, error) {
	return foldNode(q.root, f, q.rootVisitData())
}

type rectVisitor[B, L any] struct {
	bounds Rect
	inner  Visitor[B, L]
}

func (r *rectVisitor[B, L]) VisitBranchPre(branch *B, data VisitData) (bool, error) {
	cont, err := r.inner.VisitBranchPre(branch, data)
	if err != nil || !cont {
		return false, err
	}
	return data.InBounds(r.bounds), nil
}

func (r *rectVisitor[B, L]) VisitLeaf(leaf *L, data VisitData) error {
	if data.InBounds(r.bounds) {
		return r.inner.VisitLeaf(leaf, data)
	}
	return nil
}

func (r *rectVisitor[B, L]) VisitBranchPost(branch *B, data VisitData) error {
	return r.inner.VisitBranchPost(branch, data)
}
