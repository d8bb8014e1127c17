package quadtree

import "encoding/json"

// maxAddressDepth bounds how many quadrant steps an Address can encode.
// Fixed-size storage (rather than a backing slice) keeps Address
// comparable, so it can be used directly as a map key and with == —
// both load-bearing throughout the network and routing packages (keying
// per-station timing maps, congestion counters, and visited sets).
const maxAddressDepth = 32

// Address identifies a node in a quadtree as the path of quadrants taken
// from the root. An empty Address refers to the root itself.
type Address struct {
	path  [maxAddressDepth]Quadrant
	depth int
}

// NewAddress wraps a quadrant path as an Address. Panics if path is
// longer than maxAddressDepth; every quadtree in this module runs at a
// far shallower depth than that bound. A zero length path normalizes to
// the same zero value RootAddress returns.
func NewAddress(path []Quadrant) Address {
	if len(path) > maxAddressDepth {
		panic("quadtree: address path deeper than maxAddressDepth")
	}
	var a Address
	copy(a.path[:], path)
	a.depth = len(path)
	return a
}

// RootAddress is the address of the tree's root node.
func RootAddress() Address {
	return Address{}
}

// Depth returns the number of quadrant steps from the root to this
// address.
func (a Address) Depth() int {
	return a.depth
}

// At returns the quadrant taken at the given step, where step 0 is the
// first step away from the root. It panics if index is out of range,
// matching the teacher's bounds-checked indexing convention elsewhere in
// this module.
func (a Address) At(index int) Quadrant {
	if index < 0 || index >= a.depth {
		panic("quadtree: address index out of range")
	}
	return a.path[index]
}

// Has reports whether index names an interior step of this address,
// excluding the root (index 0) and anything at or past the leaf depth.
func (a Address) Has(index int) bool {
	return index > 0 && index < a.Depth()
}

// Child returns the address of the given quadrant below this one.
func (a Address) Child(q Quadrant) Address {
	if a.depth >= maxAddressDepth {
		panic("quadtree: address path deeper than maxAddressDepth")
	}
	child := a
	child.path[a.depth] = q
	child.depth = a.depth + 1
	return child
}

// Path returns the address's quadrant path as a freshly allocated slice;
// mutating it does not affect the Address.
func (a Address) Path() []Quadrant {
	out := make([]Quadrant, a.depth)
	copy(out, a.path[:a.depth])
	return out
}

// MarshalJSON encodes an Address as its quadrant path, since the fixed
// backing array is an implementation detail (comparability for map
// keys) rather than part of the wire shape.
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Path())
}

// UnmarshalJSON decodes an Address from a quadrant path.
func (a *Address) UnmarshalJSON(data []byte) error {
	var path []Quadrant
	if err := json.Unmarshal(data, &path); err != nil {
		return err
	}
	*a = NewAddress(path)
	return nil
}

// FromXY computes the address of the maxDepth-deep cell containing (x, y)
// in a tree spanning [0, 2^maxDepth) on each axis, by successively
// bisecting the grid from the most significant bit down.
func FromXY(x, y uint64, maxDepth uint32) Address {
	if maxDepth > maxAddressDepth {
		panic("quadtree: maxDepth deeper than maxAddressDepth")
	}
	var a Address
	for depth := uint32(0); depth < maxDepth; depth++ {
		bit := maxDepth - 1 - depth
		right := (x>>bit)&1 == 1
		bottom := (y>>bit)&1 == 1
		a.path[depth] = QuadrantFromSides(right, bottom)
	}
	a.depth = int(maxDepth)
	return a
}

// ToXY is the inverse of FromXY: it reconstructs the coordinates of this
// address's cell corner by setting one bit per path step, most significant
// first. Steps beyond the address's own depth (up to maxDepth) leave the
// corresponding bits zero, matching the corner of the deepest known cell.
func (a Address) ToXY(maxDepth uint32) (x, y uint64) {
	for depth := 0; depth < a.Depth() && uint32(depth) < maxDepth; depth++ {
		bit := maxDepth - 1 - uint32(depth)
		switch a.path[depth] {
		case NE:
			x |= 1 << bit
		case SW:
			y |= 1 << bit
		case SE:
			x |= 1 << bit
			y |= 1 << bit
		}
	}
	return x, y
}
