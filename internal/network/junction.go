package network

import "metrosim/internal/quadtree"

// Junction is a transport network node: a highway interchange, metro
// station, or mode-transition point. T carries mode-specific data
// (HighwayJunctionData, RailwayJunctionData, ...).
type Junction[T any] struct {
	ID       JunctionHandle
	Data     T
	Location Point

	incoming []SegmentHandle
	outgoing []SegmentHandle
	state    ChangeState
}

func newJunction[T any](id JunctionHandle, location Point, data T) *Junction[T] {
	return &Junction[T]{ID: id, Data: data, Location: location, state: Active()}
}

// IncomingSegments returns the segments terminating at this junction.
func (j *Junction[T]) IncomingSegments() []SegmentHandle { return j.incoming }

// OutgoingSegments returns the segments originating at this junction.
func (j *Junction[T]) OutgoingSegments() []SegmentHandle { return j.outgoing }

// ChangeState returns the junction's current position in the staged-edit lifecycle.
func (j *Junction[T]) ChangeState() ChangeState { return j.state }

func (j *Junction[T]) addIncoming(id SegmentHandle) { j.incoming = append(j.incoming, id) }
func (j *Junction[T]) addOutgoing(id SegmentHandle) { j.outgoing = append(j.outgoing, id) }

func (j *Junction[T]) removeIncoming(id SegmentHandle) {
	j.incoming = removeHandle(j.incoming, id)
}

func (j *Junction[T]) removeOutgoing(id SegmentHandle) {
	j.outgoing = removeHandle(j.outgoing, id)
}

func removeHandle(handles []SegmentHandle, target SegmentHandle) []SegmentHandle {
	out := handles[:0]
	for _, h := range handles {
		if h != target {
			out = append(out, h)
		}
	}
	return out
}

func containsHandle(handles []SegmentHandle, target SegmentHandle) bool {
	for _, h := range handles {
		if h == target {
			return true
		}
	}
	return false
}

// Address projects this junction's location onto the shared quadtree at
// the given max depth, for spatial lookups against the routing network.
func (j *Junction[T]) Address(maxDepth uint32) quadtree.Address {
	return quadtree.FromXY(uint64(j.Location.X), uint64(j.Location.Y), maxDepth)
}
