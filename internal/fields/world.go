// Package fields implements the derived per-node quantities layered on
// top of the tile quadtree: population and employment aggregation,
// land value and construction cost (each with a raw, per-tile value and
// a Gaussian-blurred neighborhood value), and the workplace demand
// signal new workplaces are sited from.
package fields

import (
	"metrosim/internal/agent"
	"metrosim/internal/quadtree"
	"metrosim/internal/tile"
)

// LeafData is what every leaf of the world quadtree carries: the tile
// occupying that address, plus its derived Fields.
type LeafData struct {
	Tile   tile.Tile  `json:"tile"`
	Fields FieldsState `json:"-"`
}

// BranchData is what every branch carries: just the Fields aggregated
// from its four children (a branch has no tile of its own).
type BranchData struct {
	Fields FieldsState `json:"-"`
}

// World is the tile quadtree the whole simulation is built on: tiles at
// the leaves, derived Fields at every node. Fields are never persisted;
// UpdateFields recomputes them fully on every run, including right after
// a fresh load.
type World = quadtree.Quadtree[BranchData, LeafData]

// NewWorld creates a world covering a 2^maxDepth tile grid, starting as
// a single empty leaf.
func NewWorld(maxDepth uint32) *World {
	return quadtree.New[BranchData, LeafData](LeafData{Tile: tile.NewEmpty()}, maxDepth)
}

// ComputationData is the read-only context every leaf/branch field
// computation runs against: the full agent roster, needed to look up
// workplace happiness and commute length for the residents and workers
// listed on a tile.
type ComputationData struct {
	Agents map[agent.AgentID]*agent.Agent
}

func (d ComputationData) agent(id agent.AgentID) *agent.Agent {
	a, ok := d.Agents[id]
	if !ok {
		panic("fields: missing agent")
	}
	return a
}
