package routegraph

import (
	"fmt"

	"metrosim/internal/network"
	"metrosim/internal/quadtree"
	"metrosim/internal/worldstate"
)

// edgeKind tags which variant of Edge a given edge is.
type edgeKind int8

const (
	edgeMetroSegment edgeKind = iota
	edgeMetroEmbark
	edgeMetroDisembark
	edgeHighway
	edgeHighwayRamp
	edgeModeSegment
	edgeModeTransition
)

// Edge is the closed set of hop kinds in the routing graph. Capacity
// fields are precomputed at construction time from the static network
// geometry they derive from, so pricing an edge at query time only needs
// the live traveler counts, not the underlying segment data.
type Edge struct {
	Kind edgeKind

	// MetroSegment
	MetroLine   uint64
	MetroTime   float64
	Start, Stop quadtree.Address

	// MetroEmbark, MetroDisembark (MetroLine and Station shared with above)
	Station network.Station

	// Highway
	HighwaySegment   uint64
	HighwayName      string
	HighwayRefs      []string
	HighwayTime      float64
	HighwayCapacity  float64

	// HighwayRamp
	RampPosition network.Point

	// ModeSegment
	Mode              Mode
	Distance          float64
	SegStart, SegStop network.Point

	// ModeTransition
	From, To  Mode
	TransAddr quadtree.Address
}

func metroSegmentEdge(line uint64, timeCost float64, start, stop quadtree.Address) Edge {
	return Edge{Kind: edgeMetroSegment, MetroLine: line, MetroTime: timeCost, Start: start, Stop: stop}
}

func metroEmbarkEdge(line uint64, station network.Station) Edge {
	return Edge{Kind: edgeMetroEmbark, MetroLine: line, Station: station}
}

func metroDisembarkEdge(line uint64, station network.Station) Edge {
	return Edge{Kind: edgeMetroDisembark, MetroLine: line, Station: station}
}

// highwayEdge builds a Highway edge, precomputing its critical capacity
// from the segment's length, speed limit and lane count (falling back to
// config defaults for unset values, the caller's responsibility).
func highwayEdge(segment uint64, data network.HighwaySegmentData, lengthMeters float64, peoplePerSim uint32) Edge {
	timeCost := lengthMeters / float64(data.SpeedLimit)
	return Edge{
		Kind:            edgeHighway,
		HighwaySegment:  segment,
		HighwayName:     data.Name,
		HighwayRefs:     data.Refs,
		HighwayTime:     timeCost,
		HighwayCapacity: highwayCriticalCapacity(lengthMeters, float64(data.SpeedLimit), data.Lanes, peoplePerSim),
	}
}

func highwayRampEdge(position network.Point) Edge {
	return Edge{Kind: edgeHighwayRamp, RampPosition: position}
}

func modeSegmentEdge(mode Mode, start, stop network.Point) Edge {
	return Edge{Kind: edgeModeSegment, Mode: mode, Distance: start.Distance(stop), SegStart: start, SegStop: stop}
}

func modeTransitionEdge(from, to Mode, addr quadtree.Address) Edge {
	return Edge{Kind: edgeModeTransition, From: from, To: to, TransAddr: addr}
}

// costContext bundles the state an edge needs to price itself: the
// prevailing traffic counters, the metro lines and their timing splines
// (for schedule and exact-wait lookups), and the local-road grid scale.
type costContext struct {
	World             worldstate.Reader
	MetroLines        map[uint64]*network.MetroLine
	Splines           map[uint64]*network.LineSplines
	Highways          *network.Highways
	CellSize          float64
	LocalRoadCapacity float64
	MaxDepth          uint32
}

// rampTime is the fixed cost of entering or leaving a highway, in
// seconds.
const rampTime = 30.0

// BaseCost is the idealized travel time across this edge, ignoring
// congestion.
func (e Edge) BaseCost(ctx costContext) float64 {
	var cost float64
	switch e.Kind {
	case edgeMetroSegment:
		cost = e.MetroTime
	case edgeMetroEmbark:
		cost = ctx.MetroLines[e.MetroLine].Schedule.ExpectedWait()
	case edgeMetroDisembark:
		cost = 0
	case edgeHighway:
		cost = e.HighwayTime
	case edgeHighwayRamp:
		cost = rampTime
	case edgeModeSegment:
		cost = e.Distance / e.Mode.LinearSpeed()
	case edgeModeTransition:
		cost = 0
	}
	return maxFloat(cost, 1.0)
}

// Cost is the congestion-aware travel time across this edge. currentTime,
// if present, gives an exact metro departure wait instead of the
// schedule's expected wait.
func (e Edge) Cost(ctx costContext, currentTime *float64) float64 {
	var cost float64
	switch e.Kind {
	case edgeMetroSegment:
		cost = e.MetroTime
	case edgeMetroEmbark:
		cost = e.embarkCost(ctx, currentTime)
	case edgeMetroDisembark:
		cost = 0
	case edgeHighway:
		travelers := float64(ctx.World.HighwayTravelers(e.HighwaySegment))
		cost = congestedTravelTime(e.HighwayTime, e.HighwayCapacity, travelers)
	case edgeHighwayRamp:
		cost = rampTime
	case edgeModeSegment:
		base := e.Distance / e.Mode.LinearSpeed()
		if e.Mode == Driving {
			travelers := float64(ctx.World.LocalRoadTravelers(e.localRoadCell(ctx)))
			cost = congestedTravelTime(base, ctx.LocalRoadCapacity, travelers)
		} else {
			cost = base
		}
	case edgeModeTransition:
		cost = 0
	}
	return maxFloat(cost, 1.0)
}

func (e Edge) localRoadCell(ctx costContext) worldstate.LocalRoadCell {
	midX := (e.SegStart.X + e.SegStop.X) / 2
	midY := (e.SegStart.Y + e.SegStop.Y) / 2
	return worldstate.CellForPosition(midX, midY, ctx.CellSize)
}

func (e Edge) embarkCost(ctx costContext, currentTime *float64) float64 {
	line := ctx.MetroLines[e.MetroLine]
	if currentTime == nil {
		return line.Schedule.ExpectedWait()
	}
	stationTime := ctx.Splines[e.MetroLine].TimeMap[e.Station.Address]
	departure := float64(line.Schedule.NextDeparture(uint64(*currentTime-stationTime))) + stationTime
	if departure <= *currentTime {
		panic(fmt.Sprintf("routegraph: metro departure %v not after current time %v", departure, *currentTime))
	}
	return departure - *currentTime
}

// IsJammed reports whether this edge's facility has passed its jam
// threshold, per the same capacity model Cost uses.
func (e Edge) IsJammed(ctx costContext) bool {
	switch e.Kind {
	case edgeHighway:
		travelers := float64(ctx.World.HighwayTravelers(e.HighwaySegment))
		return isJammed(e.HighwayCapacity, travelers)
	case edgeModeSegment:
		if e.Mode != Driving {
			return false
		}
		travelers := float64(ctx.World.LocalRoadTravelers(e.localRoadCell(ctx)))
		return isJammed(ctx.LocalRoadCapacity, travelers)
	default:
		return false
	}
}

// InterpolatePosition returns this edge's position at the given fraction
// of its traversal, for animating an agent mid-hop. pred and succ are the
// edge's endpoint nodes, used by variants with no geometry of their own.
func (e Edge) InterpolatePosition(ctx costContext, pred, succ Node, fraction float64) network.Point {
	switch e.Kind {
	case edgeMetroSegment:
		splines := ctx.Splines[e.MetroLine]
		startT, stopT := splines.TimeMap[e.Start], splines.TimeMap[e.Stop]
		return splines.PositionAtTime(startT + fraction*(stopT-startT))
	case edgeHighway:
		seg := ctx.Highways.Segment(e.HighwaySegment)
		return seg.PositionAt(fraction * seg.Length())
	case edgeModeSegment:
		return network.Point{
			X: e.SegStart.X + fraction*(e.SegStop.X-e.SegStart.X),
			Y: e.SegStart.Y + fraction*(e.SegStop.Y-e.SegStart.Y),
		}
	default:
		return pred.Location(ctx.MaxDepth)
	}
}

// ModeTransition returns the destination mode if this edge changes the
// mode of travel.
func (e Edge) ModeTransition() (Mode, bool) {
	if e.Kind == edgeModeTransition {
		return e.To, true
	}
	return 0, false
}

// ModeTransitionPair returns both ends of a mode change plus the address
// it happens at, for the agent state machine's parking adjustment logic
// (which needs to know which way the transition runs, not just the
// destination).
func (e Edge) ModeTransitionPair() (from, to Mode, addr quadtree.Address, ok bool) {
	if e.Kind != edgeModeTransition {
		return 0, 0, quadtree.Address{}, false
	}
	return e.From, e.To, e.TransAddr, true
}

// IncrementCounters increments the world-state counter family this edge
// belongs to, if any. Metro embark/disembark, highway ramp, and
// mode-transition edges have no congestion counter of their own; parking
// occupancy is tracked separately by the agent state machine rather than
// through a generic edge dispatch, since it is keyed on an address an
// agent leaves a car at, not on an edge traversed.
func (e Edge) IncrementCounters(ws *worldstate.State, ctx costContext) {
	switch e.Kind {
	case edgeHighway:
		ws.IncrementHighway(e.HighwaySegment)
	case edgeMetroSegment:
		ws.IncrementMetro(e.MetroLine, e.Start, e.Stop)
	case edgeModeSegment:
		if e.Mode == Driving {
			ws.IncrementLocalRoad(e.localRoadCell(ctx))
		}
	}
}

// DecrementCounters is IncrementCounters's balanced inverse, called when
// an agent finishes occupying this edge.
func (e Edge) DecrementCounters(ws *worldstate.State, ctx costContext) {
	switch e.Kind {
	case edgeHighway:
		ws.DecrementHighway(e.HighwaySegment)
	case edgeMetroSegment:
		ws.DecrementMetro(e.MetroLine, e.Start, e.Stop)
	case edgeModeSegment:
		if e.Mode == Driving {
			ws.DecrementLocalRoad(e.localRoadCell(ctx))
		}
	}
}

func (e Edge) String() string {
	switch e.Kind {
	case edgeMetroSegment:
		return fmt.Sprintf("metro:%d:%.2f", e.MetroLine, e.MetroTime)
	case edgeMetroEmbark:
		return fmt.Sprintf("embark:%d:%s", e.MetroLine, e.Station.Name)
	case edgeMetroDisembark:
		return fmt.Sprintf("disembark:%d:%s", e.MetroLine, e.Station.Name)
	case edgeHighway:
		return fmt.Sprintf("highway:%d:%s:%.2f", e.HighwaySegment, e.HighwayName, e.HighwayTime)
	case edgeHighwayRamp:
		return "ramp"
	case edgeModeSegment:
		return fmt.Sprintf("%s:%.2fm:%.2fs", e.Mode, e.Distance, e.Distance/e.Mode.LinearSpeed())
	case edgeModeTransition:
		return fmt.Sprintf("%s->%s", e.From, e.To)
	default:
		return "invalid"
	}
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
