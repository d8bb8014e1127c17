// Package worldstate tracks live congestion counters for every edge
// family the routing graph can charge a time cost against, plus a
// rolling history of those counters used to predict future congestion.
package worldstate

import (
	"fmt"
	"math"

	"metrosim/internal/quadtree"
)

// MetroSegmentKey identifies one directed hop of a metro line between two
// station addresses.
type MetroSegmentKey struct {
	Line        uint64
	Start, Stop quadtree.Address
}

// LocalRoadCell identifies one cell of the downsampled local-road
// congestion grid.
type LocalRoadCell struct {
	X, Y int64
}

// CellForPosition maps a continuous-space position to the local-road
// grid cell it falls in, given the cell's side length in meters.
func CellForPosition(x, y, cellSizeMeters float64) LocalRoadCell {
	return LocalRoadCell{
		X: int64(math.Floor(x / cellSizeMeters)),
		Y: int64(math.Floor(y / cellSizeMeters)),
	}
}

// Reader is satisfied by both a live State and a History Predictor,
// letting edge cost computation stay agnostic to whether it is reading
// ground truth or a forecast.
type Reader interface {
	HighwayTravelers(segment uint64) uint64
	MetroTravelers(line uint64, start, stop quadtree.Address) uint64
	LocalRoadTravelers(cell LocalRoadCell) uint64
	ParkingOccupancy(addr quadtree.Address) uint64
}

// State holds the live traveler/occupancy counters for every congestable
// edge family. Increment and decrement calls must stay balanced over the
// lifetime of each route: every begin_route increment has a matching
// finish_route, abort_route, or teleport_home decrement.
type State struct {
	highwaySegments map[uint64]uint64
	metroSegments   map[MetroSegmentKey]uint64
	localRoadCells  map[LocalRoadCell]uint64
	parkingTiles    map[quadtree.Address]uint64
}

var _ Reader = (*State)(nil)

// New creates an empty live world state.
func New() *State {
	return &State{
		highwaySegments: make(map[uint64]uint64),
		metroSegments:   make(map[MetroSegmentKey]uint64),
		localRoadCells:  make(map[LocalRoadCell]uint64),
		parkingTiles:    make(map[quadtree.Address]uint64),
	}
}

func (s *State) HighwayTravelers(segment uint64) uint64 {
	return s.highwaySegments[segment]
}

func (s *State) MetroTravelers(line uint64, start, stop quadtree.Address) uint64 {
	return s.metroSegments[MetroSegmentKey{Line: line, Start: start, Stop: stop}]
}

func (s *State) LocalRoadTravelers(cell LocalRoadCell) uint64 {
	return s.localRoadCells[cell]
}

func (s *State) ParkingOccupancy(addr quadtree.Address) uint64 {
	return s.parkingTiles[addr]
}

func (s *State) IncrementHighway(segment uint64) {
	s.highwaySegments[segment]++
}

// DecrementHighway panics if the segment's counter is already zero,
// matching the balanced-increment/decrement invariant: a decrement with
// no matching increment is a programming error, not a runtime condition
// to recover from.
func (s *State) DecrementHighway(segment uint64) {
	if s.highwaySegments[segment] == 0 {
		panic(fmt.Sprintf("worldstate: decrement of highway segment %d below zero", segment))
	}
	s.highwaySegments[segment]--
}

func (s *State) IncrementMetro(line uint64, start, stop quadtree.Address) {
	s.metroSegments[MetroSegmentKey{Line: line, Start: start, Stop: stop}]++
}

func (s *State) DecrementMetro(line uint64, start, stop quadtree.Address) {
	key := MetroSegmentKey{Line: line, Start: start, Stop: stop}
	if s.metroSegments[key] == 0 {
		panic(fmt.Sprintf("worldstate: decrement of metro segment %v below zero", key))
	}
	s.metroSegments[key]--
}

func (s *State) IncrementLocalRoad(cell LocalRoadCell) {
	s.localRoadCells[cell]++
}

func (s *State) DecrementLocalRoad(cell LocalRoadCell) {
	if s.localRoadCells[cell] == 0 {
		panic(fmt.Sprintf("worldstate: decrement of local road cell %v below zero", cell))
	}
	s.localRoadCells[cell]--
}

func (s *State) IncrementParking(addr quadtree.Address) {
	s.parkingTiles[addr]++
}

func (s *State) DecrementParking(addr quadtree.Address) {
	if s.parkingTiles[addr] == 0 {
		panic(fmt.Sprintf("worldstate: decrement of parking at %v below zero", addr))
	}
	s.parkingTiles[addr]--
}

// HighwaySegments returns every highway segment counter held, including
// ones decremented back to zero.
func (s *State) HighwaySegments() map[uint64]uint64 {
	return s.highwaySegments
}

// MetroSegments returns every metro segment counter held, including ones
// decremented back to zero.
func (s *State) MetroSegments() map[MetroSegmentKey]uint64 {
	return s.metroSegments
}
