package engine

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"

	"metrosim/internal/agent"
	"metrosim/internal/config"
	"metrosim/internal/fields"
	"metrosim/internal/network"
	"metrosim/internal/routepool"
	"metrosim/internal/trigger"
	"metrosim/internal/worldstate"
)

// triggerWire is a tagged-union encoding of one concrete EngineTrigger:
// Kind picks which concrete type Data decodes into.
type triggerWire struct {
	Kind trigger.Kind    `json:"kind"`
	Data json.RawMessage `json:"data"`
}

type triggerEntryWire struct {
	Time    uint64      `json:"time"`
	Trigger triggerWire `json:"trigger"`
}

func encodeTrigger(t trigger.Trigger) (triggerWire, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return triggerWire{}, fmt.Errorf("engine: encoding %v trigger: %w", t.Kind(), err)
	}
	return triggerWire{Kind: t.Kind(), Data: data}, nil
}

func decodeTrigger(w triggerWire) (trigger.Trigger, error) {
	switch w.Kind {
	case trigger.KindUpdateFields:
		var t updateFieldsTrigger
		return t, json.Unmarshal(w.Data, &t)
	case trigger.KindUpdateCollectTiles:
		var t updateCollectTilesTrigger
		return t, json.Unmarshal(w.Data, &t)
	case trigger.KindUpdateTraffic:
		var t updateTrafficTrigger
		return t, json.Unmarshal(w.Data, &t)
	case trigger.KindAgentPlanCommuteToWork:
		var t agentPlanCommuteToWorkTrigger
		return t, json.Unmarshal(w.Data, &t)
	case trigger.KindAgentPlanCommuteHome:
		var t agentPlanCommuteHomeTrigger
		return t, json.Unmarshal(w.Data, &t)
	case trigger.KindAgentRouteStart:
		var t agentRouteStartTrigger
		if err := json.Unmarshal(w.Data, &t); err != nil {
			return nil, err
		}
		// Receiver is never persisted; Fire falls back to a synchronous
		// query against the input it was scheduled with.
		t.Receiver = nil
		return t, nil
	case trigger.KindAgentRouteAdvance:
		var t agentRouteAdvanceTrigger
		return t, json.Unmarshal(w.Data, &t)
	case trigger.KindAgentLifeDecisions:
		var t agentLifeDecisionsTrigger
		return t, json.Unmarshal(w.Data, &t)
	case trigger.KindWorkplaceDecisions:
		var t workplaceDecisionsTrigger
		return t, json.Unmarshal(w.Data, &t)
	default:
		return nil, fmt.Errorf("engine: unknown trigger kind %v in dump", w.Kind)
	}
}

// engineWire is the whole Engine's wire shape. The routing graph, the
// worker pool, and the PRNG are never persisted: the graph is rebuilt
// fresh from Config/Railways/Highways/MetroLines on load (see
// rebuildRouter), the pool is recreated at whatever size the loading
// caller asks for, and the PRNG is reseeded rather than resumed.
type engineWire struct {
	Config           config.Config              `json:"config"`
	World            *worldWire                 `json:"world"`
	Railways         *network.Railways          `json:"railways"`
	Highways         *network.Highways          `json:"highways"`
	MetroLines       map[uint64]*network.MetroLine `json:"metro_lines"`
	WorldState       *worldstate.State          `json:"world_state"`
	History          *worldstate.History        `json:"history"`
	Time             TimeState                  `json:"time"`
	Agents           map[agent.AgentID]*agent.Agent `json:"agents"`
	NextAgentID      agent.AgentID              `json:"next_agent_id"`
	TriggerQueueTime uint64                     `json:"trigger_queue_time"`
	TriggerQueue     []triggerEntryWire         `json:"trigger_queue"`
}

// Dump serializes the whole Engine to JSON.
func (e *Engine) Dump() ([]byte, error) {
	wireWorld, err := dumpWorld(e.World)
	if err != nil {
		return nil, fmt.Errorf("engine: dumping world: %w", err)
	}

	entries := e.Queue.Entries()
	wireEntries := make([]triggerEntryWire, 0, len(entries))
	for _, en := range entries {
		w, err := encodeTrigger(en.Trigger)
		if err != nil {
			return nil, err
		}
		wireEntries = append(wireEntries, triggerEntryWire{Time: en.Time, Trigger: w})
	}

	out := engineWire{
		Config:           e.Config,
		World:            wireWorld,
		Railways:         e.Railways,
		Highways:         e.Highways,
		MetroLines:       e.MetroLines,
		WorldState:       e.WorldState,
		History:          e.History,
		Time:             e.Time,
		Agents:           e.Agents,
		NextAgentID:      e.nextAgentID,
		TriggerQueueTime: e.Queue.CurrentTime(),
		TriggerQueue:     wireEntries,
	}
	return json.MarshalIndent(out, "", "  ")
}

// DumpFile serializes the Engine and writes it to path.
func (e *Engine) DumpFile(path string) error {
	data, err := e.Dump()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Load rebuilds an Engine from a Dump produced by this same version of
// the simulation, starting a fresh route-planning pool of poolSize
// workers and a freshly seeded PRNG (seed1, seed2).
func Load(data []byte, poolSize int, seed1, seed2 uint64) (*Engine, error) {
	var in engineWire
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("engine: decoding dump: %w", err)
	}

	world, err := loadWorld(in.World, in.Config.MaxDepth)
	if err != nil {
		return nil, fmt.Errorf("engine: rebuilding world: %w", err)
	}

	e := &Engine{
		Config:      in.Config,
		World:       world,
		Railways:    in.Railways,
		Highways:    in.Highways,
		MetroLines:  in.MetroLines,
		WorldState:  in.WorldState,
		History:     in.History,
		Time:        in.Time,
		Agents:      in.Agents,
		nextAgentID: in.NextAgentID,
		Queue:       trigger.NewQueue(),
		Pool:        routepool.New(poolSize),
		Rand:        rand.New(rand.NewPCG(seed1, seed2)),
	}
	if e.Agents == nil {
		e.Agents = make(map[agent.AgentID]*agent.Agent)
	}

	if err := e.rebuildRouter(); err != nil {
		return nil, err
	}

	entries := make([]trigger.Entry, 0, len(in.TriggerQueue))
	for _, w := range in.TriggerQueue {
		t, err := decodeTrigger(w.Trigger)
		if err != nil {
			return nil, fmt.Errorf("engine: decoding trigger queue: %w", err)
		}
		entries = append(entries, trigger.Entry{Trigger: t, Time: w.Time})
	}
	e.Queue = trigger.NewQueueFromEntries(in.TriggerQueueTime, entries)

	if err := e.updateCollectTiles(); err != nil {
		return nil, err
	}
	if err := fields.UpdateFields(e.World, fields.ComputationData{Agents: e.Agents}, e.Config); err != nil {
		return nil, fmt.Errorf("engine: recomputing fields: %w", err)
	}

	return e, nil
}

// LoadFile reads and rebuilds an Engine from path.
func LoadFile(path string, poolSize int, seed1, seed2 uint64) (*Engine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Load(data, poolSize, seed1, seed2)
}
