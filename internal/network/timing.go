package network

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/interp"
)

// TimingConfig parameterizes the speed-bound envelope computed for a
// segment's polyline.
type TimingConfig struct {
	TileSize        float64
	MaxSpeed        float64
	MaxAcceleration float64
	StartSpeed      float64
	EndSpeed        float64
}

// SqrtPair is a speed bound in speed-distance space: a sqrt envelope
// diverging from speed B at distance T, bounded by acceleration A.
//
//	f(d) = sqrt(B^2 + |2*A*(d-T)|)
type SqrtPair struct {
	T float64 // distance marker of center
	B float64 // speed bound
	A float64 // max acceleration
}

func (p SqrtPair) eval(d float64) float64 {
	return math.Sqrt(p.B*p.B + math.Abs(2*p.A*(p.T-d)))
}

type sqrtPairIntersection struct {
	t, b float64
}

// intersection returns the point in speed-distance space where two
// envelopes meet, or false if they never do.
func (p SqrtPair) intersection(other SqrtPair) (sqrtPairIntersection, bool) {
	l, r := p, other
	if l.T > r.T {
		l, r = r, l
	}

	lComp := 2*l.A*l.T - l.B*l.B
	rComp := 2*r.A*r.T + r.B*r.B
	t := (lComp + rComp) / (2 * (l.A + r.A))

	if t >= l.T && t <= r.T {
		return sqrtPairIntersection{t: t, b: p.eval(t)}, true
	}
	return sqrtPairIntersection{}, false
}

// intersectBound returns the distance range over which this envelope is
// at or below the given speed bound.
func (p SqrtPair) intersectBound(bound float64) (lo, hi float64, ok bool) {
	if bound < p.B {
		return 0, 0, false
	}
	d := (bound*bound - p.B*p.B) / (2 * p.A)
	return p.T - d, p.T + d, true
}

func (p SqrtPair) travelTime(d float64) float64 {
	return math.Abs(d-p.T) / ((p.eval(d) + p.B) / 2)
}

// compare orders two envelopes by their speed bound B when they never
// cross (one strictly dominates the other everywhere); ordered is false
// when they intersect, meaning neither dominates.
func (p SqrtPair) compare(other SqrtPair) (cmp int, ordered bool) {
	if _, crosses := p.intersection(other); crosses {
		return 0, false
	}
	switch {
	case p.B < other.B:
		return -1, true
	case p.B > other.B:
		return 1, true
	default:
		return 0, true
	}
}

// SpeedBounds converts a segment's polyline into one speed-bound
// envelope per key, approximating cornering speed from the turn angle
// at each interior key: top_speed = max_speed * (1 - |sin(turn angle)|).
func SpeedBounds(keys []Point, config TimingConfig) []SqrtPair {
	bounds := make([]SqrtPair, 0, len(keys)+1)
	t := 0.0

	bounds = append(bounds, SqrtPair{T: t, B: config.StartSpeed, A: config.MaxAcceleration})

	for i := 1; i+1 < len(keys); i++ {
		prev, key, next := keys[i-1], keys[i], keys[i+1]
		t += key.Distance(prev) * config.TileSize

		v1 := Point{X: key.X - prev.X, Y: key.Y - prev.Y}
		v2 := Point{X: next.X - key.X, Y: next.Y - key.Y}
		topSpeed := config.MaxSpeed * (1 - math.Abs(math.Sin(turnAngle(v1, v2))))
		if topSpeed <= 0 {
			panic(fmt.Sprintf("network: 90-degree turn leaves no cornering speed at key %d", i))
		}

		bounds = append(bounds, SqrtPair{T: t, B: topSpeed, A: config.MaxAcceleration})
	}

	if len(keys) >= 2 {
		last, secondToLast := keys[len(keys)-1], keys[len(keys)-2]
		t += last.Distance(secondToLast) * config.TileSize
	}
	bounds = append(bounds, SqrtPair{T: t, B: config.EndSpeed, A: config.MaxAcceleration})

	return bounds
}

// turnAngle returns the unsigned angle in [0, pi] between two direction
// vectors. Zero-length vectors (duplicate keys) are treated as straight.
func turnAngle(v1, v2 Point) float64 {
	n1 := math.Hypot(v1.X, v1.Y)
	n2 := math.Hypot(v2.X, v2.Y)
	if n1 == 0 || n2 == 0 {
		return 0
	}
	cos := (v1.X*v2.X + v1.Y*v2.Y) / (n1 * n2)
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos)
}

// sqrtPairMinima reduces a sequence of envelopes sorted by T to its
// pointwise minimum, in O(n): each entry is pushed and popped at most
// once off a monotonic stack.
func sqrtPairMinima(input []SqrtPair) []SqrtPair {
	var minima []SqrtPair
	for _, pair := range input {
		if len(minima) == 0 {
			minima = append(minima, pair)
			continue
		}
		last := minima[len(minima)-1]
		cmp, ordered := last.compare(pair)
		switch {
		case !ordered:
			minima = append(minima, pair)
		case cmp < 0:
			// last dominates everywhere; discard pair
		case cmp > 0:
			for len(minima) > 0 {
				top := minima[len(minima)-1]
				c, ord := top.compare(pair)
				if ord && c > 0 {
					minima = minima[:len(minima)-1]
					continue
				}
				break
			}
			minima = append(minima, pair)
		default:
			// equal, keep existing
		}
	}
	return minima
}

// SpeedKey is a point in speed-vs-time space.
type SpeedKey struct {
	T, V float64
}

// timeRectify converts the minimal speed-distance envelope into a
// speed-time curve, clamping against config.MaxSpeed wherever an
// intersection between consecutive envelopes would exceed it.
func timeRectify(minima []SqrtPair, config TimingConfig) []SpeedKey {
	var keys []SpeedKey
	t := 0.0

	if len(minima) == 0 {
		return keys
	}
	keys = append(keys, SpeedKey{T: t, V: minima[0].B})

	for i := 0; i+1 < len(minima); i++ {
		left, right := minima[i], minima[i+1]
		inter, ok := left.intersection(right)
		if !ok {
			panic("network: two consecutive envelopes in minimal bound have no intersection")
		}

		if inter.b > config.MaxSpeed {
			_, lInt, _ := left.intersectBound(config.MaxSpeed)
			rInt, _, _ := right.intersectBound(config.MaxSpeed)
			t += left.travelTime(lInt)
			keys = append(keys, SpeedKey{T: t, V: config.MaxSpeed})
			t += (rInt - lInt) / config.MaxSpeed
			keys = append(keys, SpeedKey{T: t, V: config.MaxSpeed})
			t += right.travelTime(rInt)
			keys = append(keys, SpeedKey{T: t, V: right.B})
		} else {
			if left.T != inter.t {
				t += left.travelTime(inter.t)
			}
			keys = append(keys, SpeedKey{T: t, V: inter.b})
			if right.T != inter.t {
				t += right.travelTime(inter.t)
			}
			keys = append(keys, SpeedKey{T: t, V: right.B})
		}
	}

	return keys
}

// distanceSpline integrates a speed-time curve into a distance-time
// curve by trapezoidal accumulation between consecutive speed keys.
func distanceSpline(speedKeys []SpeedKey) ([]float64, []float64) {
	var times, distances []float64
	d := 0.0
	for i := 0; i+1 < len(speedKeys); i++ {
		left, right := speedKeys[i], speedKeys[i+1]
		times = append(times, left.T)
		distances = append(distances, d)

		avgSpeed := (left.V + right.V) / 2
		d += avgSpeed * (right.T - left.T)
	}
	if len(speedKeys) > 0 {
		last := speedKeys[len(speedKeys)-1]
		times = append(times, last.T)
		distances = append(distances, d)
	}
	return times, distances
}

// SpeedKeys runs the full speed-bound -> minima -> time-rectify
// pipeline for a segment's polyline.
func SpeedKeys(keys []Point, config TimingConfig) []SpeedKey {
	bounds := SpeedBounds(keys, config)
	minima := sqrtPairMinima(bounds)
	return timeRectify(minima, config)
}

// DistSpline fits a distance-vs-time interpolant from a speed-time
// curve, plus the total travel time (the curve's last time key).
func DistSpline(speedKeys []SpeedKey) (spline interp.PiecewiseLinear, totalTime float64, err error) {
	times, distances := distanceSpline(speedKeys)
	if len(times) < 2 {
		return interp.PiecewiseLinear{}, 0, nil
	}
	if err := spline.Fit(times, distances); err != nil {
		return interp.PiecewiseLinear{}, 0, err
	}
	return spline, times[len(times)-1], nil
}
