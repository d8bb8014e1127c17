package routegraph

import (
	"math"

	"metrosim/internal/config"
)

// congestedTravelFactor scales base travel time given how many travelers
// are using a facility against its critical capacity: linear below
// capacity, exponential beyond it. Shared by the highway and local-road
// congestion models, which differ only in how capacity is computed.
func congestedTravelFactor(capacity, travelers float64) float64 {
	if travelers <= capacity {
		return 1.0 + (travelers/capacity)*(config.LinearCongestionFactor-1.0)
	}
	excess := (travelers - capacity) / capacity
	return config.LinearCongestionFactor + math.Pow(2.0, excess)*config.ExponentialCongestionFactor
}

// congestedTravelTime applies congestedTravelFactor to a base travel time
// and clamps the result to MaxCongestedTime and a 1 second floor.
func congestedTravelTime(baseTime, capacity, travelers float64) float64 {
	t := baseTime * congestedTravelFactor(capacity, travelers)
	if t > config.MaxCongestedTime {
		t = config.MaxCongestedTime
	}
	if t < 1.0 {
		t = 1.0
	}
	return t
}

// isJammed reports whether traveler count has passed the jam threshold
// for a facility of the given capacity.
func isJammed(capacity, travelers float64) bool {
	return travelers > capacity*config.JamFactor
}

// highwayCriticalCapacity is the traveler count at which a highway
// segment's congestion factor crosses from linear to exponential.
func highwayCriticalCapacity(length, speedLimit float64, lanes uint32, peoplePerSim uint32) float64 {
	return length * speedLimit * float64(lanes) / float64(peoplePerSim) * config.HighwayCriticalCapacityFactor
}

// localRoadCriticalCapacity is the analogous capacity for one cell of the
// downsampled local-road congestion grid, derived from cell area rather
// than a segment's own length/speed/lanes.
func localRoadCriticalCapacity(cellAreaMeters2 float64, peoplePerSim uint32) float64 {
	return cellAreaMeters2 / float64(peoplePerSim) * config.LocalRoadCriticalCapacityFactor
}
