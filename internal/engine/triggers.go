package engine

import (
	"math"
	"math/rand/v2"

	"metrosim/internal/agent"
	"metrosim/internal/config"
	"metrosim/internal/fields"
	"metrosim/internal/quadtree"
	"metrosim/internal/routegraph"
	"metrosim/internal/routepool"
	"metrosim/internal/tile"
	"metrosim/internal/trigger"
)

// EngineTrigger is the one behavior every concrete trigger this package
// schedules implements: a trigger.Trigger with somewhere to actually
// apply itself against a live Engine.
type EngineTrigger interface {
	trigger.Trigger
	Fire(e *Engine, now uint64) error
}

// workplaceVacancyThreshold bounds how many candidate vacant workplaces
// AgentLifeDecisions samples from on each job search.
const workplaceVacancyThreshold = 100

// updateFieldsTrigger recomputes every derived field over the whole
// world (population, demand, land value), then reschedules itself one
// simulated day later.
type updateFieldsTrigger struct{}

func (updateFieldsTrigger) Kind() trigger.Kind { return trigger.KindUpdateFields }

func (t updateFieldsTrigger) Fire(e *Engine, now uint64) error {
	if err := fields.UpdateFields(e.World, fields.ComputationData{Agents: e.Agents}, e.Config); err != nil {
		return err
	}
	e.Queue.Push(t, now+86400)
	return nil
}

// updateCollectTilesTrigger refreshes the engine's cached housing and
// vacant-workplace address lists, then reschedules itself one simulated
// hour later.
type updateCollectTilesTrigger struct{}

func (updateCollectTilesTrigger) Kind() trigger.Kind { return trigger.KindUpdateCollectTiles }

func (t updateCollectTilesTrigger) Fire(e *Engine, now uint64) error {
	if err := e.updateCollectTiles(); err != nil {
		return err
	}
	e.Queue.Push(t, now+3600)
	return nil
}

type collectTilesVisitor struct {
	housing []quadtree.Address
	vacant  []quadtree.Address
}

func (v *collectTilesVisitor) VisitBranchPre(_ *fields.BranchData, _ quadtree.VisitData) (bool, error) {
	return true, nil
}

func (v *collectTilesVisitor) VisitBranchPost(_ *fields.BranchData, _ quadtree.VisitData) error {
	return nil
}

func (v *collectTilesVisitor) VisitLeaf(leaf *fields.LeafData, data quadtree.VisitData) error {
	switch leaf.Tile.Kind {
	case tile.Housing:
		v.housing = append(v.housing, data.Address)
	case tile.Workplace:
		if leaf.Tile.Vacancy() > 0 {
			v.vacant = append(v.vacant, data.Address)
		}
	}
	return nil
}

func (e *Engine) updateCollectTiles() error {
	v := &collectTilesVisitor{}
	if err := e.World.Visit(v); err != nil {
		return err
	}
	e.CollectTiles = CollectTiles{Housing: v.housing, VacantWorkplaces: v.vacant}
	return nil
}

// updateTrafficTrigger reprepares the contraction hierarchy against a
// near-future congestion prediction, then reschedules itself one
// simulated hour later.
type updateTrafficTrigger struct{}

func (updateTrafficTrigger) Kind() trigger.Kind { return trigger.KindUpdateTraffic }

func (t updateTrafficTrigger) Fire(e *Engine, now uint64) error {
	if err := e.UpdateRouteWeights(now, 3600); err != nil {
		return err
	}
	e.Queue.Push(t, now+3600)
	return nil
}

// UpdateRouteWeights takes a snapshot of the live world state into
// history, then re-prepares the routing graph against a predicted
// congestion state at currentTime+horizonSeconds, keeping the existing
// contraction order and rebuilding its shortcuts. Takes the
// write lock: every in-flight query against the old router keeps
// running against its own snapshot, but new queries block until the
// swap completes.
func (e *Engine) UpdateRouteWeights(currentTime, horizonSeconds uint64) error {
	e.History.TakeSnapshot(e.WorldState, currentTime)
	predictor := e.History.Predictor(currentTime + horizonSeconds)

	e.mu.Lock()
	defer e.mu.Unlock()

	ctx := routegraph.NewCostContext(e.baseGraph, e.graphInput, predictor)
	var weigher routegraph.Weigher = func(edge routegraph.Edge) float64 { return edge.Cost(ctx, nil) }

	e.hierarchy = routegraph.RePrepare(e.baseGraph.Graph, weigher, e.hierarchy.Order())
	e.router = routegraph.NewRouter(e.baseGraph, e.hierarchy, e.graphInput, e.WorldState)
	return nil
}

// QueryRoute runs a route query synchronously against the engine's
// current router.
func (e *Engine) QueryRoute(in routegraph.QueryInput, now *float64) (routegraph.Route, bool) {
	return e.currentRouter().Query(in, now)
}

// QueryRouteAsync submits a route query to the planner pool, returning
// immediately with a channel the result will arrive on.
func (e *Engine) QueryRouteAsync(in routegraph.QueryInput, now *float64) <-chan routepool.Result {
	return e.Pool.QueryAsync(e.currentRouter(), in, now)
}

// agentPlanCommuteToWorkTrigger fires once a day per agent: aborts
// whatever route that agent might still be mid-way through, kicks off
// an async query for a fresh home-to-work route if the agent currently
// has a job, and always reschedules itself a day later regardless.
type agentPlanCommuteToWorkTrigger struct {
	Agent agent.AgentID `json:"agent"`
}

func (agentPlanCommuteToWorkTrigger) Kind() trigger.Kind { return trigger.KindAgentPlanCommuteToWork }

func (t agentPlanCommuteToWorkTrigger) Fire(e *Engine, now uint64) error {
	a, ok := e.Agents[t.Agent]
	if ok {
		if a.IsRouting() {
			a.AbortRoute(e.currentRouter(), e.WorldState)
		}
		if a.Workplace != nil {
			car := routegraph.CarConfig{Kind: routegraph.NoCar}
			if a.ParkedCar != nil {
				car = routegraph.CarConfig{Kind: routegraph.StartWithCar}
			}
			input := routegraph.QueryInput{Start: a.Housing, End: *a.Workplace, Car: car}
			nowF := float64(now)
			receiver := e.QueryRouteAsync(input, &nowF)
			e.Queue.Push(agentRouteStartTrigger{Agent: t.Agent, RouteType: agent.CommuteToWork, Input: input, Receiver: receiver}, now+uint64(config.RouteAsyncDeadline))
			e.Queue.Push(agentPlanCommuteHomeTrigger{Agent: t.Agent}, now+8*3600)
		}
	}
	e.Queue.Push(t, now+86400)
	return nil
}

// agentPlanCommuteHomeTrigger fires once per workday per employed agent:
// aborts whatever route is still in progress and kicks off an async
// query for a fresh work-to-home route. Does not reschedule itself;
// agentPlanCommuteToWorkTrigger schedules the next day's pair.
type agentPlanCommuteHomeTrigger struct {
	Agent agent.AgentID `json:"agent"`
}

func (agentPlanCommuteHomeTrigger) Kind() trigger.Kind { return trigger.KindAgentPlanCommuteHome }

func (t agentPlanCommuteHomeTrigger) Fire(e *Engine, now uint64) error {
	a, ok := e.Agents[t.Agent]
	if !ok {
		return nil
	}
	if a.IsRouting() {
		a.AbortRoute(e.currentRouter(), e.WorldState)
	}
	if a.Workplace == nil {
		return nil
	}

	car := routegraph.CarConfig{Kind: routegraph.NoCar}
	if a.ParkedCar != nil {
		car = routegraph.CarConfig{Kind: routegraph.CollectParkedCar, ParkedAddr: *a.ParkedCar}
	}
	input := routegraph.QueryInput{Start: *a.Workplace, End: a.Housing, Car: car}
	nowF := float64(now)
	receiver := e.QueryRouteAsync(input, &nowF)
	e.Queue.Push(agentRouteStartTrigger{Agent: t.Agent, RouteType: agent.CommuteFromWork, Input: input, Receiver: receiver}, now+uint64(config.RouteAsyncDeadline))
	return nil
}

// agentRouteStartTrigger collects an asynchronously planned route and
// starts the agent following it. Receiver is never persisted: reloaded
// from a dump, it falls back to a synchronous query against the input
// it was scheduled with.
type agentRouteStartTrigger struct {
	Agent     agent.AgentID           `json:"agent"`
	RouteType agent.RouteType         `json:"route_type"`
	Input     routegraph.QueryInput   `json:"input"`
	Receiver  <-chan routepool.Result `json:"-"`
}

func (agentRouteStartTrigger) Kind() trigger.Kind { return trigger.KindAgentRouteStart }

func (t agentRouteStartTrigger) Fire(e *Engine, now uint64) error {
	a, ok := e.Agents[t.Agent]
	if !ok {
		return nil
	}

	var route routegraph.Route
	var found bool
	if t.Receiver != nil {
		result := <-t.Receiver
		route, found = result.Route, result.Found
	} else {
		route, found = e.QueryRoute(t.Input, nil)
	}

	if found {
		a.BeginRoute(route, now, t.RouteType, e.currentRouter(), e.WorldState)
		if next := a.NextTrigger(); next != nil {
			e.Queue.Push(agentRouteAdvanceTrigger{Agent: t.Agent}, *next)
		}
		return nil
	}

	if t.RouteType == agent.CommuteFromWork {
		a.TeleportHome(e.WorldState)
	}
	return nil
}

// agentRouteAdvanceTrigger steps an agent's in-progress route one edge
// forward, rescheduling itself at the time the route's next edge (or
// jam retry) is due, or finishing the route once there is none.
type agentRouteAdvanceTrigger struct {
	Agent agent.AgentID `json:"agent"`
}

func (agentRouteAdvanceTrigger) Kind() trigger.Kind { return trigger.KindAgentRouteAdvance }

func (t agentRouteAdvanceTrigger) Fire(e *Engine, now uint64) error {
	a, ok := e.Agents[t.Agent]
	if !ok {
		return nil
	}
	if !a.IsRouting() {
		return nil
	}
	a.Advance(e.currentRouter(), e.WorldState)
	if next := a.NextTrigger(); next != nil {
		e.Queue.Push(t, *next)
		return nil
	}
	a.FinishRoute()
	return nil
}

// agentLifeDecisionsTrigger fires once every two simulated days per
// agent: quits an unhappy job, then (whether just-quit or still jobless)
// samples the cached vacant-workplace list for a closer opening within
// tolerance, then reschedules itself.
type agentLifeDecisionsTrigger struct {
	Agent agent.AgentID `json:"agent"`
}

func (agentLifeDecisionsTrigger) Kind() trigger.Kind { return trigger.KindAgentLifeDecisions }

func (t agentLifeDecisionsTrigger) Fire(e *Engine, now uint64) error {
	a, ok := e.Agents[t.Agent]
	if !ok {
		return nil
	}

	if a.Workplace != nil && a.WorkplaceHappinessScore() < 0.1 {
		if leaf, err := e.World.Leaf(*a.Workplace); err == nil {
			_ = leaf.Tile.RemoveAgent(tile.AgentID(a.ID))
		}
		a.Workplace = nil
	}

	if a.Workplace == nil {
		e.maybeFindNewJob(a)
	}

	e.Queue.Push(t, now+2*86400)
	return nil
}

// maybeFindNewJob samples up to workplaceVacancyThreshold cached vacant
// workplace addresses, re-checks each one's live vacancy (the cache can
// be up to an hour stale), and hires the agent into the nearest
// candidate still within their commute tolerance.
func (e *Engine) maybeFindNewJob(a *agent.Agent) {
	candidates := sampleAddresses(e.Rand, e.CollectTiles.VacantWorkplaces, workplaceVacancyThreshold)
	tileSize := float64(e.Config.MinTileSize)
	hx, hy := a.Housing.ToXY(e.Config.MaxDepth)

	var best quadtree.Address
	bestDistSq := math.MaxFloat64
	found := false

	for _, addr := range candidates {
		leaf, err := e.World.Leaf(addr)
		if err != nil || leaf.Tile.Kind != tile.Workplace || leaf.Tile.Vacancy() == 0 {
			continue
		}
		ax, ay := addr.ToXY(e.Config.MaxDepth)
		dx := (float64(ax) - float64(hx)) * tileSize
		dy := (float64(ay) - float64(hy)) * tileSize
		distSq := dx*dx + dy*dy
		if distSq < bestDistSq {
			bestDistSq = distSq
			best = addr
			found = true
		}
	}
	if !found {
		return
	}
	if math.Sqrt(bestDistSq) >= a.Data.CommuteLengthTolerance()/10.0 {
		return
	}

	leaf, err := e.World.Leaf(best)
	if err != nil {
		return
	}
	if err := leaf.Tile.AddAgent(tile.AgentID(a.ID)); err != nil {
		return
	}
	a.Workplace = &best
}

// sampleAddresses draws up to n addresses from pool without replacement,
// using reservoir sampling (Algorithm R) so every address has an equal
// chance regardless of pool size.
func sampleAddresses(rng *rand.Rand, pool []quadtree.Address, n int) []quadtree.Address {
	if len(pool) <= n {
		out := make([]quadtree.Address, len(pool))
		copy(out, pool)
		return out
	}
	reservoir := make([]quadtree.Address, n)
	copy(reservoir, pool[:n])
	for i := n; i < len(pool); i++ {
		if j := rng.IntN(i + 1); j < n {
			reservoir[j] = pool[i]
		}
	}
	return reservoir
}

// workplaceDecisionsTrigger fires every two simulated days: sites new
// workplaces in proportion to unmet raw workplace demand at the world
// root, then reschedules itself.
type workplaceDecisionsTrigger struct{}

func (workplaceDecisionsTrigger) Kind() trigger.Kind { return trigger.KindWorkplaceDecisions }

// newWorkplacesPerDemandUnit is how many raw demand units each new
// workplace siting is worth; lower values grow the city faster.
const newWorkplacesPerDemandUnit = 100

func (t workplaceDecisionsTrigger) Fire(e *Engine, now uint64) error {
	root, err := e.World.Branch(quadtree.RootAddress())
	if err == nil {
		newWorkplaces := root.Fields.RawDemand.RawWorkplaceDemand.Total / newWorkplacesPerDemandUnit
		sampler := fields.NewDemandSampler(e.World)
		for i := uint64(0); i < newWorkplaces; i++ {
			addr, ok := sampler.Sample(e.Rand)
			if !ok {
				break
			}
			if err := e.InsertTile(addr, tile.NewWorkplace(1)); err != nil {
				break
			}
		}
	}
	e.Queue.Push(t, now+2*86400)
	return nil
}
