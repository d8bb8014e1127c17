package worldstate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"metrosim/internal/quadtree"
)

func TestIncrementDecrementHighwayBalanced(t *testing.T) {
	s := New()
	s.IncrementHighway(7)
	s.IncrementHighway(7)
	assert.Equal(t, uint64(2), s.HighwayTravelers(7))
	s.DecrementHighway(7)
	assert.Equal(t, uint64(1), s.HighwayTravelers(7))
}

func TestDecrementBelowZeroPanics(t *testing.T) {
	s := New()
	assert.Panics(t, func() { s.DecrementHighway(1) })
}

func TestMetroSegmentKeyedByLineAndAddresses(t *testing.T) {
	s := New()
	a := quadtree.NewAddress([]quadtree.Quadrant{quadtree.NW})
	b := quadtree.NewAddress([]quadtree.Quadrant{quadtree.SE})

	s.IncrementMetro(1, a, b)
	assert.Equal(t, uint64(1), s.MetroTravelers(1, a, b))
	assert.Equal(t, uint64(0), s.MetroTravelers(2, a, b))
	assert.Equal(t, uint64(0), s.MetroTravelers(1, b, a))
}

func TestCellForPosition(t *testing.T) {
	assert.Equal(t, LocalRoadCell{X: 0, Y: 0}, CellForPosition(0, 0, 500))
	assert.Equal(t, LocalRoadCell{X: 1, Y: 0}, CellForPosition(500, 10, 500))
	assert.Equal(t, LocalRoadCell{X: -1, Y: 0}, CellForPosition(-1, 10, 500))
}
