package network

import (
	"gonum.org/v1/gonum/interp"

	"metrosim/internal/quadtree"
)

// Segment is a transport network edge: a highway stretch or a metro
// line hop between two junctions. T carries mode-specific data
// (HighwaySegmentData, RailwaySegmentData, ...).
type Segment[T any] struct {
	ID     SegmentHandle
	Data   T
	Bounds quadtree.Rect

	keys      []Point
	positionX interp.PiecewiseLinear
	positionY interp.PiecewiseLinear
	length    float64

	start, end JunctionHandle
	state      ChangeState
}

func newSegment[T any](id SegmentHandle, data T, start, end JunctionHandle) *Segment[T] {
	return &Segment[T]{ID: id, Data: data, start: start, end: end, state: Active()}
}

// Keys returns the polyline this segment traces, in order from its
// start junction to its end junction.
func (s *Segment[T]) Keys() []Point { return s.keys }

// Length is the total cumulative distance along the segment's polyline,
// in tile-grid units (before tile-size scaling).
func (s *Segment[T]) Length() float64 { return s.length }

func (s *Segment[T]) StartJunction() JunctionHandle { return s.start }
func (s *Segment[T]) EndJunction() JunctionHandle   { return s.end }

// ChangeState returns the segment's current position in the staged-edit lifecycle.
func (s *Segment[T]) ChangeState() ChangeState { return s.state }

// SetKeys fixes the segment's geometry, rebuilding the distance-indexed
// position spline and the bounding rect that visit_rect traversals test
// against.
func (s *Segment[T]) SetKeys(keys []Point) {
	s.keys = keys
	if len(keys) == 0 {
		s.positionX = interp.PiecewiseLinear{}
		s.positionY = interp.PiecewiseLinear{}
		s.length = 0
		return
	}

	distances := make([]float64, len(keys))
	xs := make([]float64, len(keys))
	ys := make([]float64, len(keys))
	t := 0.0
	minX, minY, maxX, maxY := keys[0].X, keys[0].Y, keys[0].X, keys[0].Y
	for i, k := range keys {
		if i > 0 {
			t += k.Distance(keys[i-1])
		}
		distances[i] = t
		xs[i] = k.X
		ys[i] = k.Y
		if k.X < minX {
			minX = k.X
		}
		if k.X > maxX {
			maxX = k.X
		}
		if k.Y < minY {
			minY = k.Y
		}
		if k.Y > maxY {
			maxY = k.Y
		}
	}

	s.length = t
	s.Bounds = quadtree.RectCorners(uint64(minX), uint64(minY), uint64(maxX), uint64(maxY))

	if len(keys) == 1 {
		// PiecewiseLinear requires at least two distinct x values; a
		// single-key segment has zero length and needs no interpolation.
		s.positionX = interp.PiecewiseLinear{}
		s.positionY = interp.PiecewiseLinear{}
		return
	}

	var px, py interp.PiecewiseLinear
	if err := px.Fit(distances, xs); err != nil {
		panic("network: segment geometry fit failed: " + err.Error())
	}
	if err := py.Fit(distances, ys); err != nil {
		panic("network: segment geometry fit failed: " + err.Error())
	}
	s.positionX = px
	s.positionY = py
}

// PositionAt interpolates a point along the segment's polyline at
// cumulative distance d, clamped to [0, Length()].
func (s *Segment[T]) PositionAt(d float64) Point {
	if len(s.keys) == 0 {
		return Point{}
	}
	if len(s.keys) == 1 || s.length == 0 {
		return s.keys[0]
	}
	if d < 0 {
		d = 0
	}
	if d > s.length {
		d = s.length
	}
	return Point{X: s.positionX.Predict(d), Y: s.positionY.Predict(d)}
}
