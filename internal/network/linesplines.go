package network

import (
	"gonum.org/v1/gonum/interp"

	"metrosim/internal/quadtree"
)

// LineSplines is the timing and position model for an entire metro line,
// built by concatenating its oriented segments' geometry into one
// continuous polyline and running the spline timing pipeline over it as
// a single trip (rather than per segment), matching how a train actually
// runs the line start to end without stopping to re-accelerate from rest
// at every junction along the way.
type LineSplines struct {
	// TotalTime is the time, in seconds, to traverse the whole line.
	TotalTime float64
	// Length is the total geometric length of the line, in meters.
	Length float64

	distTime  interp.PiecewiseLinear // time -> distance
	positionX interp.PiecewiseLinear // distance -> x
	positionY interp.PiecewiseLinear // distance -> y

	// TimeMap gives the cumulative time offset into the line's single
	// trip at which each station along it is reached.
	TimeMap map[quadtree.Address]float64
	// DistMap is the analogous cumulative geometric distance offset.
	DistMap map[quadtree.Address]float64
}

// Splines builds the line's timing and position model. tileSize scales
// the line's raw key coordinates into meters; maxAcceleration bounds
// speed changes, matching TimingConfig's field of the same name.
func (m *MetroLine) Splines(railways *Railways, tileSize, maxAcceleration float64) *LineSplines {
	var keys []Point
	stationDist := make(map[quadtree.Address]float64)

	appendStation := func(j JunctionHandle, dist float64) {
		if station := railways.Junction(j).Data.Station; station != nil {
			if _, seen := stationDist[station.Address]; !seen {
				stationDist[station.Address] = dist
			}
		}
	}

	cumulative := 0.0
	for i, os := range m.segments {
		seg := railways.Segment(os.Segment)
		segKeys := append([]Point(nil), seg.Keys()...)
		if !os.Forward {
			for l, r := 0, len(segKeys)-1; l < r; l, r = l+1, r-1 {
				segKeys[l], segKeys[r] = segKeys[r], segKeys[l]
			}
		}

		if i == 0 {
			keys = append(keys, segKeys...)
			appendStation(os.StartJunction(railways), 0)
		} else if len(segKeys) > 0 {
			keys = append(keys, segKeys[1:]...)
		}

		for j := 1; j < len(segKeys); j++ {
			cumulative += segKeys[j].Distance(segKeys[j-1]) * tileSize
			if j == len(segKeys)-1 {
				appendStation(os.EndJunction(railways), cumulative)
			}
		}
	}

	if len(keys) < 2 {
		return &LineSplines{TimeMap: map[quadtree.Address]float64{}, DistMap: stationDist}
	}

	config := TimingConfig{TileSize: tileSize, MaxSpeed: float64(m.SpeedLimit), MaxAcceleration: maxAcceleration}
	speedKeys := SpeedKeys(keys, config)
	distTime, totalTime, err := DistSpline(speedKeys)
	if err != nil {
		panic("network: metro line spline fit failed: " + err.Error())
	}

	distances := make([]float64, len(keys))
	xs := make([]float64, len(keys))
	ys := make([]float64, len(keys))
	d := 0.0
	for i, k := range keys {
		if i > 0 {
			d += k.Distance(keys[i-1]) * tileSize
		}
		distances[i] = d
		xs[i] = k.X
		ys[i] = k.Y
	}

	var px, py interp.PiecewiseLinear
	if len(keys) >= 2 {
		if err := px.Fit(distances, xs); err != nil {
			panic("network: metro line position fit failed: " + err.Error())
		}
		if err := py.Fit(distances, ys); err != nil {
			panic("network: metro line position fit failed: " + err.Error())
		}
	}

	timeMap := make(map[quadtree.Address]float64, len(stationDist))
	for addr, dist := range stationDist {
		timeMap[addr] = timeAtDistance(distTime, dist)
	}

	length := 0.0
	if len(distances) > 0 {
		length = distances[len(distances)-1]
	}

	return &LineSplines{
		TotalTime: totalTime,
		Length:    length,
		distTime:  distTime,
		positionX: px,
		positionY: py,
		TimeMap:   timeMap,
		DistMap:   stationDist,
	}
}

// timeAtDistance inverts the time->distance spline by binary-searching
// its fitted domain; distTime.Predict interpolates time->distance, so we
// scan for the time whose predicted distance matches target within the
// spline's own resolution instead of relying on a closed-form inverse.
func timeAtDistance(distTime interp.PiecewiseLinear, target float64) float64 {
	lo, hi := 0.0, target
	// distance is monotonically non-decreasing in time and bounded above
	// by a line whose total time is at least its total distance divided
	// by any plausible top speed; widen hi until it brackets target.
	for i := 0; i < 64 && distTime.Predict(hi) < target; i++ {
		hi = hi*2 + 1
	}
	for i := 0; i < 40; i++ {
		mid := (lo + hi) / 2
		if distTime.Predict(mid) < target {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}

// PositionAtTime returns the line's position at the given cumulative time
// offset into its single trip, clamped to [0, TotalTime].
func (s *LineSplines) PositionAtTime(t float64) Point {
	if t < 0 {
		t = 0
	}
	if t > s.TotalTime {
		t = s.TotalTime
	}
	dist := s.distTime.Predict(t)
	if dist < 0 {
		dist = 0
	}
	if dist > s.Length {
		dist = s.Length
	}
	return Point{X: s.positionX.Predict(dist), Y: s.positionY.Predict(dist)}
}
