package routegraph

import (
	"metrosim/internal/config"
	"metrosim/internal/network"
	"metrosim/internal/quadtree"
	"metrosim/internal/worldstate"
)

// CarConfigKind distinguishes the three ways a route query can relate to
// a personal car.
type CarConfigKind int8

const (
	// NoCar means the whole route is on foot.
	NoCar CarConfigKind = iota
	// StartWithCar means the traveler already has the car at the start
	// address.
	StartWithCar
	// CollectParkedCar means the traveler must first walk to a parked
	// car elsewhere, then drive from there.
	CollectParkedCar
)

// CarConfig selects one of the three car-availability shapes a route
// query supports.
type CarConfig struct {
	Kind       CarConfigKind
	ParkedAddr quadtree.Address // meaningful only when Kind == CollectParkedCar
}

// QueryInput names a route's endpoints and car availability.
type QueryInput struct {
	Start, End quadtree.Address
	Car        CarConfig
}

// maxRouteSeconds is the longest a single route query result may take;
// anything slower is treated the same as no route at all.
const maxRouteSeconds = 4 * 3600

// Route is a fully assembled path: Nodes always has one more entry than
// Edges, with a synthetic Endpoint node prepended and appended around
// whatever path the contraction hierarchy found.
type Route struct {
	Nodes []Node
	Edges []Edge
	Cost  float64
}

// Router bundles a prepared hierarchy with the base graph and cost
// context it was built from, the unit a route query runs against.
type Router struct {
	Graph     *Graph
	Hierarchy *Hierarchy
	Cost      costContext
	TileSize  float64
}

// Start returns the address a route begins at.
func (r Route) Start() quadtree.Address {
	return r.Nodes[0].Address()
}

// End returns the address a route ends at.
func (r Route) End() quadtree.Address {
	return r.Nodes[len(r.Nodes)-1].Address()
}

// CurrentEdgeCost re-prices edges[index] against the live world state at
// startTime, the same live-cost computation assembleRoute used when the
// route was planned. The agent state machine calls this on advance to
// recompute each edge's duration at the time it is actually entered,
// rather than trusting the value baked in at planning time.
func (r *Router) CurrentEdgeCost(edge Edge, startTime float64) float64 {
	return edge.Cost(r.Cost, &startTime)
}

// EdgeJammed reports whether edge is currently jammed, per the same
// congestion predicate Query uses to price it.
func (r *Router) EdgeJammed(edge Edge) bool {
	return edge.IsJammed(r.Cost)
}

// IncrementEdge/DecrementEdge apply an edge's congestion counter change
// to ws, dispatching by edge kind.
func (r *Router) IncrementEdge(ws *worldstate.State, edge Edge) { edge.IncrementCounters(ws, r.Cost) }
func (r *Router) DecrementEdge(ws *worldstate.State, edge Edge) { edge.DecrementCounters(ws, r.Cost) }

// NewCostContext builds the cost context a Weigher or Router prices
// edges against: the static per-line splines and network data from a
// built base graph plus this input, and the given world reader for live
// traveler counts (actual live state, or a history.Predictor for a
// future time). The local-road grid's critical capacity is derived once
// here from its fixed block size and the input's people-per-sim scale,
// the same way a highway segment's capacity is baked into its Edge at
// construction time.
func NewCostContext(base *BaseGraph, in BaseGraphInput, world worldstate.Reader) costContext {
	cellArea := config.LocalZoneBlockSize * config.LocalZoneBlockSize
	return costContext{
		World:             world,
		MetroLines:        in.MetroLines,
		Splines:           base.Splines,
		Highways:          in.Highways,
		CellSize:          config.LocalZoneBlockSize,
		LocalRoadCapacity: localRoadCriticalCapacity(cellArea, in.PeoplePerSim),
		MaxDepth:          in.MaxDepth,
	}
}

// BaseWeigher returns a Weigher pricing every edge by its idealized,
// congestion-free cost, the weighting contraction hierarchy preparation
// runs against (the periodic re-prepare keeps the node order fixed here
// and only rebuilds shortcuts under predicted weights).
func BaseWeigher(ctx costContext) Weigher {
	return func(e Edge) float64 { return e.BaseCost(ctx) }
}

// NewRouter assembles a Router from a built base graph and a prepared
// hierarchy over it, pricing edges against world.
func NewRouter(base *BaseGraph, hierarchy *Hierarchy, in BaseGraphInput, world worldstate.Reader) *Router {
	return &Router{
		Graph:     base.Graph,
		Hierarchy: hierarchy,
		TileSize:  in.TileSize,
		Cost:      NewCostContext(base, in, world),
	}
}

// Clone returns a shallow copy of this Router sharing the same graph and
// hierarchy but pricing against a different world reader. Used to give
// each planner-pool worker its own live-vs-predicted view without
// duplicating the (potentially large) graph and hierarchy themselves.
func (r *Router) Clone(world worldstate.Reader) *Router {
	clone := *r
	clone.Cost.World = world
	return &clone
}

type modePair struct{ start, end Mode }

func candidateModePairs(car CarConfig) []modePair {
	switch car.Kind {
	case StartWithCar:
		return []modePair{{Driving, Walking}, {Driving, Driving}}
	default:
		return []modePair{{Walking, Walking}}
	}
}

// Query runs the full route-selection algorithm: candidate (start, end)
// mode pairs (or, for CollectParkedCar, two joined subroutes), nearest-
// terminal snapping, a hierarchy query per candidate, and total cost
// assembly from in-graph cost plus the Euclidean stub legs. now, if
// given, lets metro embark edges compute an exact wait instead of the
// schedule's expected wait.
func (r *Router) Query(in QueryInput, now *float64) (Route, bool) {
	if in.Car.Kind == CollectParkedCar {
		return r.queryComposite(in, now)
	}
	return r.querySimple(in.Start, in.End, candidateModePairs(in.Car), now)
}

func (r *Router) queryComposite(in QueryInput, now *float64) (Route, bool) {
	leg1, ok := r.querySimple(in.Start, in.Car.ParkedAddr, []modePair{{Walking, Walking}}, now)
	if !ok {
		return Route{}, false
	}

	var midNow *float64
	if now != nil {
		t := *now + leg1.Cost
		midNow = &t
	}

	leg2, ok := r.querySimple(in.Car.ParkedAddr, in.End, candidateModePairs(CarConfig{Kind: StartWithCar}), midNow)
	if !ok {
		return Route{}, false
	}

	total := leg1.Cost + leg2.Cost
	if total > maxRouteSeconds {
		return Route{}, false
	}

	// leg1's appended Endpoint and leg2's prepended Endpoint are both the
	// parking address; splice them into one shared node.
	nodes := append(append([]Node(nil), leg1.Nodes[:len(leg1.Nodes)-1]...), leg2.Nodes...)
	edges := append(append([]Edge(nil), leg1.Edges...), leg2.Edges...)

	return Route{Nodes: nodes, Edges: edges, Cost: total}, true
}

func (r *Router) querySimple(start, end quadtree.Address, pairs []modePair, now *float64) (Route, bool) {
	startX, startY := start.ToXY(r.Graph.maxDepth)
	endX, endY := end.ToXY(r.Graph.maxDepth)
	startRaw := network.Point{X: float64(startX), Y: float64(startY)}
	endRaw := network.Point{X: float64(endX), Y: float64(endY)}

	var best Route
	found := false

	for _, pair := range pairs {
		startNode, ok := r.Graph.NearestTerminal(pair.start, startRaw.X, startRaw.Y)
		if !ok {
			continue
		}
		endNode, ok := r.Graph.NearestTerminal(pair.end, endRaw.X, endRaw.Y)
		if !ok {
			continue
		}

		path, ok := r.Hierarchy.Query(startNode, endNode)
		if !ok {
			continue
		}

		route := r.assembleRoute(path, start, end, startNode, endNode, pair, now)
		if !found || route.Cost < best.Cost {
			best = route
			found = true
		}
	}

	if !found || best.Cost > maxRouteSeconds {
		return Route{}, false
	}
	return best, true
}

// assembleRoute walks the hierarchy's unpacked steps recomputing each
// edge's cost against the live (or predicted) world state at the
// projected time it would be traversed, then prepends and appends the
// Euclidean stub legs connecting the query's literal addresses to the
// nearest terminals the hierarchy actually routed between.
func (r *Router) assembleRoute(path PathResult, start, end quadtree.Address, startNode, endNode NodeID, pair modePair, now *float64) Route {
	startPos := addrPosition(start, r.Graph.maxDepth, r.TileSize)
	endPos := addrPosition(end, r.Graph.maxDepth, r.TileSize)
	firstPos := scaledLocation(r.Graph, startNode, r.TileSize)
	lastPos := scaledLocation(r.Graph, endNode, r.TileSize)

	startStub := modeSegmentEdge(pair.start, startPos, firstPos)
	endStub := modeSegmentEdge(pair.end, lastPos, endPos)

	nodes := []Node{endpointNode(start), r.Graph.Node(startNode)}
	edges := []Edge{startStub}

	var tp *float64
	if now != nil {
		v := *now
		tp = &v
	}

	total := 0.0
	advance := func(e Edge) {
		c := e.Cost(r.Cost, tp)
		total += c
		if tp != nil {
			*tp += c
		}
	}

	advance(startStub)
	for _, step := range path.Steps {
		advance(step.Edge)
		edges = append(edges, step.Edge)
		nodes = append(nodes, r.Graph.Node(step.To))
	}
	advance(endStub)
	edges = append(edges, endStub)
	nodes = append(nodes, endpointNode(end))

	return Route{Nodes: nodes, Edges: edges, Cost: total}
}

func addrPosition(addr quadtree.Address, maxDepth uint32, tileSize float64) network.Point {
	x, y := addr.ToXY(maxDepth)
	return network.Point{X: float64(x) * tileSize, Y: float64(y) * tileSize}
}
