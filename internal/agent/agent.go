package agent

import (
	"metrosim/internal/quadtree"
	"metrosim/internal/routegraph"
	"metrosim/internal/worldstate"
)

// AgentID identifies a resident uniquely across the simulation.
type AgentID uint64

// stateKind tags which variant of AgentState is populated.
type stateKind int8

const (
	stateTile stateKind = iota
	stateRoute
	stateUnknown
)

// AgentState is a closed variant: an agent is either sitting at a tile
// address, mid-route, or Unknown after an aborted route, until it begins
// a new route or is teleported home.
type AgentState struct {
	Kind  stateKind
	Tile  quadtree.Address
	Route RouteState
}

func tileState(addr quadtree.Address) AgentState {
	return AgentState{Kind: stateTile, Tile: addr}
}

func routeState(rs RouteState) AgentState {
	return AgentState{Kind: stateRoute, Route: rs}
}

func unknownState() AgentState {
	return AgentState{Kind: stateUnknown}
}

// teleportHomeDuration is the fixed travel time recorded for the
// CommuteFromWork estimate whenever an agent is teleported home rather
// than walked through a planned route.
const teleportHomeDuration = 14400.0

// Agent is a single resident: their demographic data, their current
// location/route state, a top-level parked-car address (meaningful only
// while the agent is not mid-route with the car in hand), their housing
// and workplace addresses, and the most recently recorded length of each
// commute leg.
type Agent struct {
	ID           AgentID                `json:"id"`
	Data         AgentData              `json:"data"`
	State        AgentState             `json:"state"`
	ParkedCar    *quadtree.Address      `json:"parked_car,omitempty"`
	Housing      quadtree.Address       `json:"housing"`
	Workplace    *quadtree.Address      `json:"workplace,omitempty"`
	RouteLengths map[RouteType]float64 `json:"route_lengths"`
}

// NewAgent creates a resident at their housing address, with no car, no
// workplace yet, and no commute history.
func NewAgent(id AgentID, data AgentData, housing quadtree.Address) *Agent {
	return &Agent{
		ID:           id,
		Data:         data,
		State:        tileState(housing),
		Housing:      housing,
		RouteLengths: make(map[RouteType]float64),
	}
}

// effectiveParkedCar is the car address governing owns_car/handleParking
// decisions: the route state's if the agent is routing, else the
// top-level field.
func (a *Agent) effectiveParkedCar() *quadtree.Address {
	if a.State.Kind == stateRoute {
		return a.State.Route.ParkedCar
	}
	return a.ParkedCar
}

// OwnsCar reports whether this agent currently has a car available to
// them, either parked somewhere or with them mid-drive.
func (a *Agent) OwnsCar() bool {
	if a.effectiveParkedCar() != nil {
		return true
	}
	return a.State.Kind == stateRoute &&
		a.State.Route.Phase.Kind == phaseInProgress &&
		a.State.Route.Phase.CurrentMode == routegraph.Driving
}

// Location returns the agent's tile address and true if they are
// currently settled at a tile (not mid-route).
func (a *Agent) Location() (quadtree.Address, bool) {
	if a.State.Kind != stateTile {
		return quadtree.Address{}, false
	}
	return a.State.Tile, true
}

// IsRouting reports whether the agent is currently following a route.
func (a *Agent) IsRouting() bool {
	return a.State.Kind == stateRoute
}

// RouteInProgress returns the agent's route state and true if they are
// currently mid-route (whether or not that route has reached its
// Finished phase).
func (a *Agent) RouteInProgress() (*RouteState, bool) {
	if a.State.Kind != stateRoute {
		return nil, false
	}
	return &a.State.Route, true
}

// AverageCommuteLength returns the most recently recorded length for the
// given leg, or 0 if it has never been recorded.
func (a *Agent) AverageCommuteLength(rt RouteType) float64 {
	return a.RouteLengths[rt]
}

// AverageRoundTripCommute is the mean of the agent's two recorded commute
// legs (to and from work), the figure workplace happiness is scored
// against rather than either leg alone.
func (a *Agent) AverageRoundTripCommute() float64 {
	return (a.AverageCommuteLength(CommuteToWork) + a.AverageCommuteLength(CommuteFromWork)) / 2.0
}

// WorkplaceHappinessScore scores this agent's average round-trip commute
// against their tolerance. Callers deciding whether to act on it must
// still check a.Workplace != nil themselves: an agent with no job has no
// meaningful happiness score, but a freshly hired agent with no commute
// history yet defaults to a score of 1.0 (fully happy) rather than the
// "no data" the original model represents with a nil workplace.
func (a *Agent) WorkplaceHappinessScore() float64 {
	return a.Data.ExpectedWorkplaceHappiness(a.AverageRoundTripCommute())
}

// BeginRoute starts the agent following route at startTime, requiring
// the agent not to be mid-route (at a Tile, or Unknown after an aborted
// route; panics otherwise, mirroring the original's assertion that an
// agent cannot begin a second route while mid-route). Charges the
// route's first edge against ws.
func (a *Agent) BeginRoute(route routegraph.Route, startTime uint64, routeType RouteType, router *routegraph.Router, ws *worldstate.State) {
	if a.State.Kind == stateRoute {
		panic("agent: cannot begin route while mid-route")
	}
	rs := newRouteState(a.ID, route, startTime, routeType, router, ws, a.ParkedCar)
	a.State = routeState(rs)
}

// Advance steps the agent's current route forward one edge, re-pricing
// against the live world state. Panics if the agent is not mid-route.
func (a *Agent) Advance(router *routegraph.Router, ws *worldstate.State) {
	if a.State.Kind != stateRoute {
		panic("agent: cannot advance, not in a route state")
	}
	a.State.Route.advance(router, ws)
}

// NextTrigger returns the simulated time AgentRouteAdvance should next
// fire for this agent, or nil if not mid-route or the route already
// finished.
func (a *Agent) NextTrigger() *uint64 {
	if a.State.Kind != stateRoute {
		return nil
	}
	return a.State.Route.nextTrigger()
}

// FinishRoute completes a finished route, moving the agent to the
// route's destination tile, adopting the route state's parked-car, and
// recording the route's total travel time as the new estimate for its
// leg. Panics if the route has not reached its Finished phase, matching
// the original model's invariant that finish_route is only ever called
// once advance has driven the route to completion.
func (a *Agent) FinishRoute() {
	if a.State.Kind != stateRoute || a.State.Route.Phase.Kind != phaseFinished {
		panic("agent not in finished route state")
	}
	rs := a.State.Route
	a.ParkedCar = rs.ParkedCar
	a.RouteLengths[rs.RouteType] = rs.Phase.TotalTime
	a.State = tileState(rs.Route.End())
}

// AbortRoute ends an in-progress or finished route early, decrementing
// whichever edge the agent currently occupies (InProgress only) and
// recording the elapsed time so far against the route's leg estimate.
// If the agent is driving, the car is teleported to the route's end and
// parked there; a walking agent keeps whatever parking the route state
// holds. Leaves the agent in Unknown state until BeginRoute or
// TeleportHome places it again.
func (a *Agent) AbortRoute(router *routegraph.Router, ws *worldstate.State) {
	if a.State.Kind != stateRoute {
		panic("agent not in in-progress route state")
	}
	rs := &a.State.Route

	switch rs.Phase.Kind {
	case phaseInProgress:
		if rs.ParkedCar == nil && rs.Phase.CurrentMode == routegraph.Driving {
			end := rs.Route.End()
			ws.IncrementParking(end)
			rs.ParkedCar = &end
		}
		router.DecrementEdge(ws, rs.Route.Edges[rs.Phase.CurrentEdge])
		a.RouteLengths[rs.RouteType] = rs.Phase.CurrentEdgeStart + rs.Phase.CurrentEdgeTotal
		a.ParkedCar = rs.ParkedCar
	case phaseFinished:
		a.ParkedCar = rs.ParkedCar
	}

	a.State = unknownState()
}

// TeleportHome moves the agent directly to their housing address,
// bypassing route following entirely. Only valid from a Tile or Unknown
// state (panics from mid-route, matching the original's assertion that
// abort_route must be called first). Parks the car at home and records
// the fixed teleportHomeDuration as the new CommuteFromWork estimate.
func (a *Agent) TeleportHome(ws *worldstate.State) {
	if a.State.Kind == stateRoute {
		panic("agent: cannot teleport home while mid-route")
	}
	if a.ParkedCar != nil {
		ws.DecrementParking(*a.ParkedCar)
	}
	home := a.Housing
	a.ParkedCar = &home
	ws.IncrementParking(home)
	a.State = tileState(home)
	a.RouteLengths[CommuteFromWork] = teleportHomeDuration
}
