package agent

import (
	"math"

	"metrosim/internal/quadtree"
	"metrosim/internal/routegraph"
	"metrosim/internal/worldstate"
)

// RouteType distinguishes the two daily commute legs an agent's
// route_lengths estimate is tracked per.
type RouteType int8

const (
	CommuteToWork RouteType = iota
	CommuteFromWork
)

func (r RouteType) String() string {
	if r == CommuteToWork {
		return "CommuteToWork"
	}
	return "CommuteFromWork"
}

// routePhaseKind tags which variant of RoutePhase is populated.
type routePhaseKind int8

const (
	phaseInProgress routePhaseKind = iota
	phaseFinished
)

// RoutePhase is a closed variant: InProgress carries the edge an agent
// currently occupies and how far into it they are; Finished carries the
// accumulated total travel time.
type RoutePhase struct {
	Kind routePhaseKind

	// InProgress
	CurrentEdge      uint32
	CurrentEdgeStart float64
	CurrentEdgeTotal float64
	CurrentMode      routegraph.Mode

	// Finished
	TotalTime float64
}

// jamWait is how long an agent idles on its current edge before
// retrying a jammed next edge, in seconds.
const jamWait = 300.0

// RouteState is the Route variant of AgentState: an in-progress or just-
// completed traversal of a planned route.
type RouteState struct {
	AgentID   AgentID
	Route     routegraph.Route
	StartTime uint64
	RouteType RouteType
	Phase     RoutePhase
	ParkedCar *quadtree.Address
}

// newRouteState begins following route at startTime, charging the first
// edge's congestion counter and adjusting parking if the first edge is a
// mode transition. An empty route (no edges at all) starts Finished.
func newRouteState(id AgentID, route routegraph.Route, startTime uint64, routeType RouteType, router *routegraph.Router, ws *worldstate.State, parkedCar *quadtree.Address) RouteState {
	if len(route.Nodes) != len(route.Edges)+1 {
		panic("agent: route nodes/edges length mismatch")
	}

	rs := RouteState{AgentID: id, Route: route, StartTime: startTime, RouteType: routeType, ParkedCar: parkedCar}

	if len(route.Edges) == 0 {
		rs.Phase = RoutePhase{Kind: phaseFinished, TotalTime: 0}
		return rs
	}

	first := route.Edges[0]
	router.IncrementEdge(ws, first)

	startMode := first.Mode
	if to, ok := first.ModeTransition(); ok {
		startMode = to
	}

	rs.Phase = RoutePhase{
		Kind:             phaseInProgress,
		CurrentEdge:      0,
		CurrentEdgeStart: 0,
		CurrentEdgeTotal: router.CurrentEdgeCost(first, float64(startTime)),
		CurrentMode:      startMode,
	}
	handleParking(&rs.ParkedCar, first)
	return rs
}

// handleParking applies the walking<->driving parking adjustment for a
// mode-transition edge: un-park when starting to drive, park when
// stopping to walk. Non-transition edges leave parking untouched.
func handleParking(parkedCar **quadtree.Address, edge routegraph.Edge) {
	from, to, addr, ok := edge.ModeTransitionPair()
	if !ok {
		return
	}
	switch {
	case from == routegraph.Walking && to == routegraph.Driving:
		if *parkedCar == nil {
			panic("agent: un-parking with no parked car")
		}
		*parkedCar = nil
	case from == routegraph.Driving && to == routegraph.Walking:
		if *parkedCar != nil {
			panic("agent: parking while already parked")
		}
		a := addr
		*parkedCar = &a
	}
}

// advance moves the agent off its current edge and onto the next one, or
// into the Finished phase if the current edge was the last. If the next
// edge is jammed, the finished edge's counter is un-decremented and a
// flat jamWait is added to the current edge's total instead of moving.
func (rs *RouteState) advance(router *routegraph.Router, ws *worldstate.State) {
	if rs.Phase.Kind != phaseInProgress {
		panic("agent: cannot advance a finished route")
	}

	oldEdge := rs.Route.Edges[rs.Phase.CurrentEdge]
	router.DecrementEdge(ws, oldEdge)

	nextIndex := rs.Phase.CurrentEdge + 1
	if int(nextIndex) == len(rs.Route.Edges) {
		rs.Phase = RoutePhase{Kind: phaseFinished, TotalTime: rs.Phase.CurrentEdgeStart + rs.Phase.CurrentEdgeTotal}
		return
	}

	nextEdge := rs.Route.Edges[nextIndex]
	if router.EdgeJammed(nextEdge) {
		router.IncrementEdge(ws, oldEdge)
		rs.Phase.CurrentEdgeTotal += jamWait
		return
	}

	router.IncrementEdge(ws, nextEdge)
	handleParking(&rs.ParkedCar, nextEdge)

	startTime := rs.Phase.CurrentEdgeStart + rs.Phase.CurrentEdgeTotal
	cost := router.CurrentEdgeCost(nextEdge, math.Floor(startTime))
	if cost < 0 {
		panic("agent: negative edge cost")
	}

	nextMode := rs.Phase.CurrentMode
	if to, ok := nextEdge.ModeTransition(); ok {
		nextMode = to
	}

	rs.Phase = RoutePhase{
		Kind:             phaseInProgress,
		CurrentEdge:      nextIndex,
		CurrentEdgeStart: startTime,
		CurrentEdgeTotal: cost,
		CurrentMode:      nextMode,
	}
}

// nextTrigger returns the simulated time AgentRouteAdvance should next
// fire at, or nil once the route is Finished.
func (rs *RouteState) nextTrigger() *uint64 {
	if rs.Phase.Kind == phaseFinished {
		return nil
	}
	extra := uint64(math.Ceil(rs.Phase.CurrentEdgeStart + rs.Phase.CurrentEdgeTotal))
	t := rs.StartTime + extra
	return &t
}

// Finished reports whether the route has reached its Finished phase.
func (rs *RouteState) Finished() bool {
	return rs.Phase.Kind == phaseFinished
}
