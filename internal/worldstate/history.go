package worldstate

import (
	"fmt"
	"math"

	"metrosim/internal/quadtree"
)

// ObservationWeight is the running-estimate weight given to each new
// congestion observation folded into a history slot.
const ObservationWeight = 0.3

// History is a ring buffer of congestion snapshots spanning one
// simulated day, used to predict future congestion from past
// observations at the same time of day.
type History struct {
	snapshots []*State
	period    uint64
}

// NewHistory creates a history with numSnapshots empty slots evenly
// spaced across periodSeconds (typically 86400, one day).
func NewHistory(numSnapshots int, periodSeconds uint64) *History {
	snapshots := make([]*State, numSnapshots)
	for i := range snapshots {
		snapshots[i] = New()
	}
	return &History{
		snapshots: snapshots,
		period:    periodSeconds / uint64(numSnapshots),
	}
}

// NumSnapshots returns the number of ring-buffer slots.
func (h *History) NumSnapshots() int {
	return len(h.snapshots)
}

// SnapshotPeriod returns the number of seconds between slots.
func (h *History) SnapshotPeriod() uint64 {
	return h.period
}

func updatePrior(prior, observation uint64) uint64 {
	return uint64(float64(prior)*(1-ObservationWeight) + float64(observation)*ObservationWeight)
}

// TakeSnapshot folds live into the history slot for currentTime, nudging
// each counter's running estimate toward the live observation by
// ObservationWeight. currentTime must be an exact multiple of
// SnapshotPeriod; this is the boundary at which UpdateTraffic triggers
// this call.
func (h *History) TakeSnapshot(live *State, currentTime uint64) {
	if currentTime%h.period != 0 {
		panic(fmt.Sprintf("worldstate: snapshot taken at non-boundary time %d (period %d)", currentTime, h.period))
	}
	index := int((currentTime / h.period) % uint64(len(h.snapshots)))
	slot := h.snapshots[index]

	for segment, observation := range live.highwaySegments {
		slot.highwaySegments[segment] = updatePrior(slot.highwaySegments[segment], observation)
	}
	for key, observation := range live.metroSegments {
		slot.metroSegments[key] = updatePrior(slot.metroSegments[key], observation)
	}
	for cell, observation := range live.localRoadCells {
		slot.localRoadCells[cell] = updatePrior(slot.localRoadCells[cell], observation)
	}
	for addr, observation := range live.parkingTiles {
		slot.parkingTiles[addr] = updatePrior(slot.parkingTiles[addr], observation)
	}
}

// CurrentSnapshotIndex returns the ring-buffer slot nearest predictionTime,
// rounding to the slot at or before it, or to the slot strictly after it.
func (h *History) CurrentSnapshotIndex(predictionTime uint64, roundForward bool) int {
	offset := uint64(0)
	if roundForward {
		offset = 1
	}
	periods := float64(predictionTime+offset) / float64(h.period)
	var rounded float64
	if roundForward {
		rounded = math.Ceil(periods)
	} else {
		rounded = math.Floor(periods)
	}
	return int(uint64(rounded) % uint64(len(h.snapshots)))
}

// Predictor is a Reader that answers with linearly interpolated
// congestion between the two history slots surrounding predictionTime.
type Predictor struct {
	history        *History
	predictionTime uint64
}

var _ Reader = (*Predictor)(nil)

// Predictor returns a Reader forecasting congestion at predictionTime.
func (h *History) Predictor(predictionTime uint64) *Predictor {
	return &Predictor{history: h, predictionTime: predictionTime}
}

func (p *Predictor) interpolate(measure func(*State) uint64) uint64 {
	h := p.history
	before := h.snapshots[h.CurrentSnapshotIndex(p.predictionTime, false)]
	after := h.snapshots[h.CurrentSnapshotIndex(p.predictionTime, true)]
	fraction := float64(p.predictionTime%h.period) / float64(h.period)
	return uint64(float64(measure(before))*(1-fraction) + float64(measure(after))*fraction)
}

func (p *Predictor) HighwayTravelers(segment uint64) uint64 {
	return p.interpolate(func(s *State) uint64 { return s.HighwayTravelers(segment) })
}

func (p *Predictor) MetroTravelers(line uint64, start, stop quadtree.Address) uint64 {
	return p.interpolate(func(s *State) uint64 { return s.MetroTravelers(line, start, stop) })
}

func (p *Predictor) LocalRoadTravelers(cell LocalRoadCell) uint64 {
	return p.interpolate(func(s *State) uint64 { return s.LocalRoadTravelers(cell) })
}

func (p *Predictor) ParkingOccupancy(addr quadtree.Address) uint64 {
	return p.interpolate(func(s *State) uint64 { return s.ParkingOccupancy(addr) })
}
