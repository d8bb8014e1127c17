// Package network implements the generic arena-based transport network
// shared by metro lines and highways: junctions and segments keyed by
// opaque handles, a spline-based travel timing model, and the staged
// change-set discipline that lets edits land without disturbing routes
// already in flight.
package network

import (
	"fmt"
	"math"
)

// JunctionHandle opaquely identifies a junction within one Network.
type JunctionHandle uint64

func (h JunctionHandle) String() string { return fmt.Sprintf("junction#%d", uint64(h)) }

// SegmentHandle opaquely identifies a segment within one Network.
type SegmentHandle uint64

func (h SegmentHandle) String() string { return fmt.Sprintf("segment#%d", uint64(h)) }

// Point is a 2D position in tile-grid space (pre tile-size scaling).
type Point struct {
	X, Y float64
}

// Distance returns the Euclidean distance between two points.
func (p Point) Distance(q Point) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return math.Sqrt(dx*dx + dy*dy)
}
