// Package engine ties the tile world, transport networks, live
// congestion, and per-agent state machines together into one advancing
// simulation: a trigger queue drives everything that happens, and every
// concrete trigger this package defines is the only code that is ever
// allowed to mutate the Engine it was scheduled against.
package engine

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"metrosim/internal/agent"
	"metrosim/internal/config"
	"metrosim/internal/fields"
	"metrosim/internal/network"
	"metrosim/internal/quadtree"
	"metrosim/internal/routegraph"
	"metrosim/internal/routepool"
	"metrosim/internal/tile"
	"metrosim/internal/trigger"
	"metrosim/internal/worldstate"
)

// defaultPlaybackRate is how many simulated seconds elapse per real
// second while unpaused (5 simulated minutes per real second).
const defaultPlaybackRate = 300

// defaultEngineStartTime is the simulated epoch a fresh Engine's clock
// starts from: 2020-01-01T00:00:00Z.
const defaultEngineStartTime = 1577836800

// TimeState is the simulation clock: how fast it runs, whether it is
// currently advancing at all, and the wall it's counting from.
type TimeState struct {
	CurrentTime     uint64 `json:"current_time"`
	PlaybackRate    uint64 `json:"playback_rate"`
	Paused          bool   `json:"paused"`
	EngineStartTime uint64 `json:"engine_start_time"`
	// TargetTime is the time Update tries to catch the simulation up to
	// whenever it is paused; a paused engine still single-steps forward
	// to TargetTime if one has been set ahead of CurrentTime.
	TargetTime uint64 `json:"target_time"`
}

// NewTimeState returns a fresh, paused clock at its default rate and
// epoch.
func NewTimeState() TimeState {
	return TimeState{PlaybackRate: defaultPlaybackRate, Paused: true, EngineStartTime: defaultEngineStartTime}
}

// CollectTiles is the cached result of the most recent hourly tile
// sweep: every Housing address, and every Workplace address with at
// least one open seat. AgentLifeDecisions samples from it rather than
// walking the whole world on every single decision.
type CollectTiles struct {
	Housing          []quadtree.Address
	VacantWorkplaces []quadtree.Address
}

// Engine is one running simulation: the tile world and its derived
// fields, the static transport networks, live and historical congestion,
// the routing graph built from all of that, the resident roster, and the
// trigger queue driving it all forward.
type Engine struct {
	// mu guards graphInput/baseGraph/hierarchy/router: QueryRoute and
	// QueryRouteAsync take the read lock to read the current router,
	// UpdateRouteWeights takes the write lock to replace it, mirroring a
	// reader/writer split over a shared graph.
	mu sync.RWMutex

	Config config.Config

	World      *fields.World
	Railways   *network.Railways
	Highways   *network.Highways
	MetroLines map[uint64]*network.MetroLine

	WorldState *worldstate.State
	History    *worldstate.History

	graphInput routegraph.BaseGraphInput
	baseGraph  *routegraph.BaseGraph
	hierarchy  *routegraph.Hierarchy
	router     *routegraph.Router

	Time TimeState

	Agents      map[agent.AgentID]*agent.Agent
	nextAgentID agent.AgentID

	Queue *trigger.Queue

	Pool *routepool.Pool
	Rand *rand.Rand

	CollectTiles CollectTiles
}

// New assembles a fresh Engine over an already-populated world and
// transport networks: builds the initial routing graph, starts the
// route-planning worker pool, and seeds the PRNG. Call InitTriggerQueue
// once the initial agent roster has been added with AddAgent.
func New(cfg config.Config, world *fields.World, railways *network.Railways, highways *network.Highways, metroLines map[uint64]*network.MetroLine, seed1, seed2 uint64, poolSize int) (*Engine, error) {
	e := &Engine{
		Config:     cfg,
		World:      world,
		Railways:   railways,
		Highways:   highways,
		MetroLines: metroLines,
		WorldState: worldstate.New(),
		History:    worldstate.NewHistory(config.WorldStateHistorySnapshots, 86400),
		Time:       NewTimeState(),
		Agents:     make(map[agent.AgentID]*agent.Agent),
		Queue:      trigger.NewQueue(),
		Pool:       routepool.New(poolSize),
		Rand:       rand.New(rand.NewPCG(seed1, seed2)),
	}
	if err := e.rebuildRouter(); err != nil {
		return nil, err
	}
	if err := e.updateCollectTiles(); err != nil {
		return nil, err
	}
	return e, nil
}

// Close stops the route-planning worker pool. The Engine itself is not
// usable afterward.
func (e *Engine) Close() {
	e.Pool.Close()
}

func buildGraphInput(cfg config.Config, railways *network.Railways, highways *network.Highways, metroLines map[uint64]*network.MetroLine) routegraph.BaseGraphInput {
	return routegraph.BaseGraphInput{
		Railways:            railways,
		Highways:            highways,
		MetroLines:          metroLines,
		TileSize:            float64(cfg.MinTileSize),
		MaxAcceleration:     config.MaxAcceleration,
		PeoplePerSim:        cfg.PeoplePerSim,
		MaxDepth:            cfg.MaxDepth,
		DefaultHighwaySpeed: uint32(config.DefaultSpeed),
		DefaultHighwayLanes: uint32(config.DefaultLanes),
	}
}

// rebuildRouter builds the routing graph and a from-scratch contraction
// hierarchy over it, then assembles a Router pricing against the live
// world state. Runs once at construction and once after Load, since the
// hierarchy itself is never persisted (see DESIGN.md).
func (e *Engine) rebuildRouter() error {
	e.graphInput = buildGraphInput(e.Config, e.Railways, e.Highways, e.MetroLines)
	e.baseGraph = routegraph.BuildBase(e.graphInput)
	baseCtx := routegraph.NewCostContext(e.baseGraph, e.graphInput, e.WorldState)
	e.hierarchy = routegraph.Prepare(e.baseGraph.Graph, routegraph.BaseWeigher(baseCtx))
	e.router = routegraph.NewRouter(e.baseGraph, e.hierarchy, e.graphInput, e.WorldState)
	return nil
}

// currentRouter returns the Engine's router under a read lock, the
// snapshot a trigger should price its queries and edge counter updates
// against for the remainder of its own Fire call.
func (e *Engine) currentRouter() *routegraph.Router {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.router
}

// NextAgentID allocates and returns the next unused agent ID.
func (e *Engine) NextAgentID() agent.AgentID {
	id := e.nextAgentID
	e.nextAgentID++
	return id
}

// AddAgent lists a into its housing (and, if set, workplace) tile and
// then into the roster. Fails without partially applying if either tile
// has no room, mirroring the original's capacity assertion at agent
// creation time.
func (e *Engine) AddAgent(a *agent.Agent) error {
	housingLeaf, err := e.World.Leaf(a.Housing)
	if err != nil {
		return fmt.Errorf("engine: add agent %d: housing %v: %w", a.ID, a.Housing, err)
	}
	if housingLeaf.Tile.Kind != tile.Housing {
		return fmt.Errorf("engine: add agent %d: housing %v is a %s tile, not Housing", a.ID, a.Housing, housingLeaf.Tile.Kind)
	}
	var workLeaf *fields.LeafData
	if a.Workplace != nil {
		workLeaf, err = e.World.Leaf(*a.Workplace)
		if err != nil {
			return fmt.Errorf("engine: add agent %d: workplace %v: %w", a.ID, *a.Workplace, err)
		}
		if workLeaf.Tile.Kind != tile.Workplace {
			return fmt.Errorf("engine: add agent %d: workplace %v is a %s tile, not Workplace", a.ID, *a.Workplace, workLeaf.Tile.Kind)
		}
		if workLeaf.Tile.Vacancy() == 0 {
			return fmt.Errorf("engine: add agent %d: workplace %v has no vacancy", a.ID, *a.Workplace)
		}
	}
	if housingLeaf.Tile.Vacancy() == 0 {
		return fmt.Errorf("engine: add agent %d: housing %v has no vacancy", a.ID, a.Housing)
	}

	if err := housingLeaf.Tile.AddAgent(tile.AgentID(a.ID)); err != nil {
		return fmt.Errorf("engine: add agent %d: %w", a.ID, err)
	}
	if workLeaf != nil {
		if err := workLeaf.Tile.AddAgent(tile.AgentID(a.ID)); err != nil {
			housingLeaf.Tile.RemoveAgent(tile.AgentID(a.ID))
			return fmt.Errorf("engine: add agent %d: %w", a.ID, err)
		}
	}

	e.Agents[a.ID] = a
	if a.ID >= e.nextAgentID {
		e.nextAgentID = a.ID + 1
	}
	return nil
}

// PatchTile re-points every agent listed on the tile at addr to have
// addr as their housing/workplace address, used after a tile is
// inserted or replaced out from under whatever agents were already
// listed on it.
func (e *Engine) PatchTile(addr quadtree.Address) error {
	leaf, err := e.World.Leaf(addr)
	if err != nil {
		return err
	}
	switch leaf.Tile.Kind {
	case tile.Housing:
		for _, id := range leaf.Tile.Agents {
			if a, ok := e.Agents[agent.AgentID(id)]; ok {
				a.Housing = addr
			}
		}
	case tile.Workplace:
		for _, id := range leaf.Tile.Agents {
			if a, ok := e.Agents[agent.AgentID(id)]; ok {
				a.Workplace = &addr
			}
		}
	}
	return nil
}

// InsertTile replaces the tile at addr and re-patches whatever agents
// end up listed there afterward.
func (e *Engine) InsertTile(addr quadtree.Address, t tile.Tile) error {
	leaf, err := e.World.Leaf(addr)
	if err != nil {
		return err
	}
	leaf.Tile = t
	return e.PatchTile(addr)
}

// InitTriggerQueue seeds the queue's initial triggers: the daily/hourly/
// traffic update cycle, one life-decision and one commute-planning
// trigger per agent already on the roster, and the workplace-siting
// cycle. A no-op once the clock has moved past zero or the queue already
// holds triggers, so calling it again never double-seeds it.
func (e *Engine) InitTriggerQueue() {
	if e.Time.CurrentTime != 0 || e.Queue.Len() > 0 {
		return
	}

	e.Queue.Push(updateFieldsTrigger{}, 0)
	e.Queue.Push(updateCollectTilesTrigger{}, 0)
	e.Queue.Push(updateTrafficTrigger{}, 0)

	ids := make([]agent.AgentID, 0, len(e.Agents))
	for id := range e.Agents {
		ids = append(ids, id)
	}
	sortAgentIDs(ids)
	for _, id := range ids {
		e.Queue.Push(agentLifeDecisionsTrigger{Agent: id}, 0)
		e.Queue.Push(agentPlanCommuteToWorkTrigger{Agent: id}, 8*3600)
	}

	e.Queue.Push(workplaceDecisionsTrigger{}, 0)
}

func sortAgentIDs(ids []agent.AgentID) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
}

// Update advances the simulation clock by whatever time step the
// playback rate, target time, and pause state dictate, draining every
// trigger due within that window. timeBudgetSeconds bounds how much real
// wall-clock time this single call may spend draining: if the budget
// runs out before every due trigger has fired, CurrentTime is left at
// the last trigger actually fired rather than jumped to the window's
// end, so a later call picks up the remaining backlog instead of
// silently skipping it.
func (e *Engine) Update(elapsedSeconds, timeBudgetSeconds float64) error {
	rateStep := uint64(float64(e.Time.PlaybackRate) * elapsedSeconds)

	var targetStep uint64
	if e.Time.TargetTime > e.Time.CurrentTime {
		targetStep = e.Time.TargetTime - e.Time.CurrentTime
	}

	var timeStep uint64
	if e.Time.Paused {
		timeStep = targetStep
	} else {
		timeStep = rateStep
		if targetStep > timeStep {
			timeStep = targetStep
		}
		if timeStep < 1 {
			timeStep = 1
		}
	}
	if timeStep == 0 {
		return nil
	}

	target := e.Time.CurrentTime + timeStep
	deadline := time.Now().Add(time.Duration(timeBudgetSeconds * float64(time.Second)))

	drained := false
	for {
		tr, firedTime, ok := e.Queue.Step(target)
		if !ok {
			drained = true
			break
		}
		et, isEngineTrigger := tr.(EngineTrigger)
		if !isEngineTrigger {
			return fmt.Errorf("engine: trigger queue holds a non-engine trigger of kind %v", tr.Kind())
		}
		if err := et.Fire(e, firedTime); err != nil {
			return fmt.Errorf("engine: firing %v trigger: %w", tr.Kind(), err)
		}
		if timeBudgetSeconds > 0 && time.Now().After(deadline) {
			break
		}
	}
	if drained {
		e.Queue.Advance(target)
	}
	e.Time.CurrentTime = e.Queue.CurrentTime()
	return nil
}
