package network

import (
	"fmt"

	"metrosim/internal/quadtree"
)

// OrientedSegment is a segment traversed in a particular direction
// along a metro line: forward means start-to-end as the underlying
// Network segment records it, false means the reverse.
type OrientedSegment struct {
	Segment SegmentHandle
	Forward bool
}

// StartJunction returns the junction this oriented segment departs from.
func (o OrientedSegment) StartJunction(railways *Railways) JunctionHandle {
	seg := railways.Segment(o.Segment)
	if o.Forward {
		return seg.StartJunction()
	}
	return seg.EndJunction()
}

// EndJunction returns the junction this oriented segment arrives at.
func (o OrientedSegment) EndJunction(railways *Railways) JunctionHandle {
	seg := railways.Segment(o.Segment)
	if o.Forward {
		return seg.EndJunction()
	}
	return seg.StartJunction()
}

// RailwayJunctionData is the per-junction payload of a metro network:
// an optional station at this junction.
type RailwayJunctionData struct {
	Station *Station
}

// Station names a metro stop and its quadtree address.
type Station struct {
	Name    string
	Address quadtree.Address
}

// RailwaySegmentData is the per-segment payload of a metro network.
type RailwaySegmentData struct {
	SpeedLimit *uint32
}

// MetroLine is an ordered, oriented traversal of railway segments
// forming one service.
type MetroLine struct {
	Name     string
	Schedule FixedFrequencySchedule
	SpeedLimit uint32

	segments []OrientedSegment
}

// Segments returns the line's oriented segment sequence.
func (m *MetroLine) Segments() []OrientedSegment { return m.segments }

// NewMetroLine orients an unordered run of connected railway segments
// into a traversable MetroLine, inserting a dead-end turnaround
// duplicate whenever the line reverses back on itself (a branch that
// dead-ends and must be retraced). Panics if segments do not form a
// single connected chain.
func NewMetroLine(name string, schedule FixedFrequencySchedule, speedLimit uint32, segments []SegmentHandle, railways *Railways) *MetroLine {
	return &MetroLine{
		Name:       name,
		Schedule:   schedule,
		SpeedLimit: speedLimit,
		segments:   orientSegments(segments, railways),
	}
}

func orientSegments(segments []SegmentHandle, railways *Railways) []OrientedSegment {
	var oriented []OrientedSegment

	if len(segments) < 2 {
		if len(segments) == 1 {
			oriented = append(oriented, OrientedSegment{Segment: segments[0], Forward: true})
		}
		return oriented
	}

	first := railways.Segment(segments[0])
	second := railways.Segment(segments[1])

	var forward bool
	switch {
	case first.EndJunction() == second.StartJunction() || first.EndJunction() == second.EndJunction():
		forward = true
	case first.StartJunction() == second.StartJunction() || first.StartJunction() == second.EndJunction():
		forward = false
	default:
		panic("network: gap in metro line while orienting the first segment")
	}

	prev := OrientedSegment{Segment: segments[0], Forward: forward}
	oriented = append(oriented, prev)

	for _, id := range segments[1:] {
		seg := railways.Segment(id)
		prevEnd := prev.EndJunction(railways)
		prevStart := prev.StartJunction(railways)

		var fwd bool
		switch {
		case seg.StartJunction() == prevEnd:
			fwd = true
		case seg.EndJunction() == prevEnd:
			fwd = false
		case seg.StartJunction() == prevStart:
			oriented = append(oriented, OrientedSegment{Segment: prev.Segment, Forward: !prev.Forward})
			fwd = true
		case seg.EndJunction() == prevStart:
			oriented = append(oriented, OrientedSegment{Segment: prev.Segment, Forward: !prev.Forward})
			fwd = false
		default:
			panic(fmt.Sprintf("network: gap in metro line between segment %v and %v", prev.Segment, id))
		}

		next := OrientedSegment{Segment: id, Forward: fwd}
		oriented = append(oriented, next)
		prev = next
	}

	return oriented
}
