package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrientSegmentsStraightChain(t *testing.T) {
	r := NewRailways()
	a := r.AddJunction(Point{X: 0, Y: 0}, RailwayJunctionData{})
	b := r.AddJunction(Point{X: 1, Y: 0}, RailwayJunctionData{})
	c := r.AddJunction(Point{X: 2, Y: 0}, RailwayJunctionData{})

	ab := r.AddSegment(RailwaySegmentData{}, a, b, nil)
	bc := r.AddSegment(RailwaySegmentData{}, b, c, nil)

	line := NewMetroLine("Red", FixedFrequencySchedule{PeriodSeconds: 600}, 30, []SegmentHandle{ab, bc}, r)

	require.Len(t, line.Segments(), 2)
	assert.Equal(t, OrientedSegment{Segment: ab, Forward: true}, line.Segments()[0])
	assert.Equal(t, OrientedSegment{Segment: bc, Forward: true}, line.Segments()[1])
}

func TestOrientSegmentsInsertsDeadEndTurnaround(t *testing.T) {
	r := NewRailways()
	a := r.AddJunction(Point{X: 0, Y: 0}, RailwayJunctionData{})
	b := r.AddJunction(Point{X: 1, Y: 0}, RailwayJunctionData{})
	c := r.AddJunction(Point{X: 2, Y: 0}, RailwayJunctionData{})
	d := r.AddJunction(Point{X: 1, Y: 1}, RailwayJunctionData{})

	ab := r.AddSegment(RailwaySegmentData{}, a, b, nil)
	bc := r.AddSegment(RailwaySegmentData{}, b, c, nil)
	// bd shares junction b with bc's start rather than continuing from c,
	// forcing a turnaround back across bc before branching to d.
	bd := r.AddSegment(RailwaySegmentData{}, b, d, nil)

	line := NewMetroLine("Blue", FixedFrequencySchedule{PeriodSeconds: 600}, 30, []SegmentHandle{ab, bc, bd}, r)

	require.Len(t, line.Segments(), 4)
	assert.Equal(t, OrientedSegment{Segment: ab, Forward: true}, line.Segments()[0])
	assert.Equal(t, OrientedSegment{Segment: bc, Forward: true}, line.Segments()[1])
	assert.Equal(t, OrientedSegment{Segment: bc, Forward: false}, line.Segments()[2])
	assert.Equal(t, OrientedSegment{Segment: bd, Forward: true}, line.Segments()[3])
}

func TestOrientSegmentsSingle(t *testing.T) {
	r := NewRailways()
	a := r.AddJunction(Point{X: 0, Y: 0}, RailwayJunctionData{})
	b := r.AddJunction(Point{X: 1, Y: 0}, RailwayJunctionData{})
	ab := r.AddSegment(RailwaySegmentData{}, a, b, nil)

	line := NewMetroLine("Green", FixedFrequencySchedule{PeriodSeconds: 600}, 30, []SegmentHandle{ab}, r)

	require.Len(t, line.Segments(), 1)
	assert.Equal(t, OrientedSegment{Segment: ab, Forward: true}, line.Segments()[0])
}
