package network

import "fmt"

// NetworkChangeSet holds the junctions and segments staged for creation
// or removal since the last apply_change_set / clear_change_set.
type NetworkChangeSet struct {
	junctions changeSet[JunctionHandle]
	segments  changeSet[SegmentHandle]
}

func newNetworkChangeSet() NetworkChangeSet {
	return NetworkChangeSet{junctions: newChangeSet[JunctionHandle](), segments: newChangeSet[SegmentHandle]()}
}

// Network is an arena of junctions and segments connected by opaque
// handles, generic over per-mode junction data J and segment data S.
// Shared by metro lines and highways.
type Network[J, S any] struct {
	junctions map[JunctionHandle]*Junction[J]
	segments  map[SegmentHandle]*Segment[S]

	junctionCounter uint64
	segmentCounter  uint64

	changeSet NetworkChangeSet
}

// New creates an empty network.
func New[J, S any]() *Network[J, S] {
	return &Network[J, S]{
		junctions: make(map[JunctionHandle]*Junction[J]),
		segments:  make(map[SegmentHandle]*Segment[S]),
		changeSet: newNetworkChangeSet(),
	}
}

// Junction looks up a junction by handle. Panics on an invalid handle,
// matching the arena's expectation that handles are never held past the
// grace period of their removal.
func (n *Network[J, S]) Junction(id JunctionHandle) *Junction[J] {
	j, ok := n.junctions[id]
	if !ok {
		panic(fmt.Sprintf("network: invalid junction handle %v", id))
	}
	return j
}

// Segment looks up a segment by handle. Panics on an invalid handle.
func (n *Network[J, S]) Segment(id SegmentHandle) *Segment[S] {
	s, ok := n.segments[id]
	if !ok {
		panic(fmt.Sprintf("network: invalid segment handle %v", id))
	}
	return s
}

// Junctions returns every junction in the arena, active and staged alike.
func (n *Network[J, S]) Junctions() map[JunctionHandle]*Junction[J] { return n.junctions }

// Segments returns every segment in the arena, active and staged alike.
func (n *Network[J, S]) Segments() map[SegmentHandle]*Segment[S] { return n.segments }

// AddJunction allocates a new Active junction at location with the given
// data and returns its handle.
func (n *Network[J, S]) AddJunction(location Point, data J) JunctionHandle {
	id := JunctionHandle(n.junctionCounter)
	n.junctionCounter++
	n.junctions[id] = newJunction(id, location, data)
	return id
}

// AddSegment allocates a new Active segment between two junctions,
// wiring the reciprocal incoming/outgoing invariant on both endpoints.
func (n *Network[J, S]) AddSegment(data S, start, end JunctionHandle, keys []Point) SegmentHandle {
	id := SegmentHandle(n.segmentCounter)
	n.segmentCounter++

	n.Junction(start).addOutgoing(id)
	n.Junction(end).addIncoming(id)

	segment := newSegment(id, data, start, end)
	if keys != nil {
		segment.SetKeys(keys)
	}
	n.segments[id] = segment
	return id
}

// IncomingSegments returns the segments backing a junction's incoming list.
func (n *Network[J, S]) IncomingSegments(j *Junction[J]) []*Segment[S] {
	out := make([]*Segment[S], 0, len(j.incoming))
	for _, id := range j.incoming {
		out = append(out, n.Segment(id))
	}
	return out
}

// OutgoingSegments returns the segments backing a junction's outgoing list.
func (n *Network[J, S]) OutgoingSegments(j *Junction[J]) []*Segment[S] {
	out := make([]*Segment[S], 0, len(j.outgoing))
	for _, id := range j.outgoing {
		out = append(out, n.Segment(id))
	}
	return out
}

func (n *Network[J, S]) removeJunction(id JunctionHandle) { delete(n.junctions, id) }
func (n *Network[J, S]) removeSegment(id SegmentHandle) {
	seg, ok := n.segments[id]
	if !ok {
		return
	}
	if start, ok := n.junctions[seg.start]; ok {
		start.removeOutgoing(id)
	}
	if end, ok := n.junctions[seg.end]; ok {
		end.removeIncoming(id)
	}
	delete(n.segments, id)
}

// Validate panics if the reciprocal invariant is violated anywhere in
// the arena: every junction's incoming/outgoing segment lists must agree
// with those segments' own start/end junctions, and vice versa. Not
// performant; intended for tests.
func (n *Network[J, S]) Validate() {
	issues := 0
	for _, junction := range n.junctions {
		for _, id := range junction.incoming {
			if seg, ok := n.segments[id]; !ok || seg.end != junction.ID {
				issues++
			}
		}
		for _, id := range junction.outgoing {
			if seg, ok := n.segments[id]; !ok || seg.start != junction.ID {
				issues++
			}
		}
	}
	for _, segment := range n.segments {
		if start, ok := n.junctions[segment.start]; !ok || !containsHandle(start.outgoing, segment.ID) {
			issues++
		}
		if end, ok := n.junctions[segment.end]; !ok || !containsHandle(end.incoming, segment.ID) {
			issues++
		}
	}
	if issues > 0 {
		panic(fmt.Sprintf("network: found %d reciprocal-invariant violations", issues))
	}
}

// EditJunction stages id for mutation: if it is Active, it is forked
// into a StagedActive clone (the original becomes StagedTombstone) and
// every adjacent segment that is itself staged-active is re-pointed at
// the clone, preserving the reciprocal invariant without disturbing
// routes still referencing the original. Returns the handle to mutate
// (the clone if one was made, id otherwise).
func (n *Network[J, S]) EditJunction(id JunctionHandle, cloneData func(J) J) JunctionHandle {
	original := n.Junction(id)
	if !original.state.IsStagedActive() {
		panic("network: cannot edit a junction staged for removal")
	}
	if _, alreadyStaged := n.changeSet.junctions.created[id]; alreadyStaged {
		return id
	}
	if original.state.kind == stateStagedActive {
		// already a fresh clone from this change set round
		return id
	}

	clone := &Junction[J]{
		ID:       JunctionHandle(n.junctionCounter),
		Data:     cloneData(original.Data),
		Location: original.Location,
		state:    stagedActive(),
	}
	n.junctionCounter++
	n.junctions[clone.ID] = clone
	n.changeSet.junctions.created[clone.ID] = struct{}{}
	n.changeSet.junctions.removed[id] = struct{}{}
	original.state = stagedTombstone()

	for _, segID := range append([]SegmentHandle(nil), original.incoming...) {
		seg := n.Segment(segID)
		if !seg.state.IsStagedActive() {
			continue
		}
		original.removeIncoming(segID)
		clone.addIncoming(segID)
		seg.end = clone.ID
	}
	for _, segID := range append([]SegmentHandle(nil), original.outgoing...) {
		seg := n.Segment(segID)
		if !seg.state.IsStagedActive() {
			continue
		}
		original.removeOutgoing(segID)
		clone.addOutgoing(segID)
		seg.start = clone.ID
	}

	return clone.ID
}

// EditSegment stages id for mutation, forking an Active segment into a
// StagedActive clone the same way EditJunction does for junctions.
// Returns the handle to mutate.
func (n *Network[J, S]) EditSegment(id SegmentHandle, cloneData func(S) S) SegmentHandle {
	original := n.Segment(id)
	if !original.state.IsStagedActive() {
		panic("network: cannot edit a segment staged for removal")
	}
	if original.state.kind == stateStagedActive {
		return id
	}

	clone := &Segment[S]{
		ID:     SegmentHandle(n.segmentCounter),
		Data:   cloneData(original.Data),
		Bounds: original.Bounds,
		start:  original.start,
		end:    original.end,
		state:  stagedActive(),
	}
	clone.SetKeys(append([]Point(nil), original.keys...))
	n.segmentCounter++
	n.segments[clone.ID] = clone
	n.changeSet.segments.created[clone.ID] = struct{}{}
	n.changeSet.segments.removed[id] = struct{}{}
	original.state = stagedTombstone()

	n.Junction(original.start).removeOutgoing(id)
	n.Junction(original.start).addOutgoing(clone.ID)
	n.Junction(original.end).removeIncoming(id)
	n.Junction(original.end).addIncoming(clone.ID)

	return clone.ID
}

// ApplyChangeSet promotes every staged edit since the last apply/clear:
// StagedActive items become Active, StagedTombstone items become
// Tombstone with a two-day grace countdown.
func (n *Network[J, S]) ApplyChangeSet() {
	for id := range n.changeSet.junctions.created {
		n.junctions[id].state = Active()
	}
	for id := range n.changeSet.junctions.removed {
		n.junctions[id].state = tombstone(TombstoneGraceDays)
	}
	for id := range n.changeSet.segments.created {
		n.segments[id].state = Active()
	}
	for id := range n.changeSet.segments.removed {
		n.segments[id].state = tombstone(TombstoneGraceDays)
	}
	n.changeSet = newNetworkChangeSet()
}

// ClearChangeSet reverts every staged edit since the last apply/clear,
// discarding the clones and restoring the originals to Active.
func (n *Network[J, S]) ClearChangeSet() {
	for id := range n.changeSet.segments.created {
		n.removeSegment(id)
	}
	for id := range n.changeSet.segments.removed {
		n.segments[id].state = Active()
	}
	for id := range n.changeSet.junctions.created {
		n.removeJunction(id)
	}
	for id := range n.changeSet.junctions.removed {
		n.junctions[id].state = Active()
	}
	n.changeSet = newNetworkChangeSet()
}

// AdvanceTombstones decrements every Tombstone's grace countdown by one
// (intended to run once per simulated day) and removes whichever hit
// zero, returning nothing: removal is immediate since both arena maps
// are internal to this Network.
func (n *Network[J, S]) AdvanceTombstones() {
	var expiredSegments []SegmentHandle
	for id, seg := range n.segments {
		if seg.state.kind == stateTombstone {
			seg.state.countdown--
			if seg.state.countdown == 0 {
				expiredSegments = append(expiredSegments, id)
			}
		}
	}
	for _, id := range expiredSegments {
		n.removeSegment(id)
	}

	var expiredJunctions []JunctionHandle
	for id, j := range n.junctions {
		if j.state.kind == stateTombstone {
			j.state.countdown--
			if j.state.countdown == 0 {
				expiredJunctions = append(expiredJunctions, id)
			}
		}
	}
	for _, id := range expiredJunctions {
		n.removeJunction(id)
	}
}
