// Package consistency cross-checks the agent roster against the tile
// data it's supposed to agree with: every agent's housing/workplace
// address actually has a leaf of the right kind that lists them back,
// and no tile lists the same agent twice.
package consistency

import (
	"fmt"

	"metrosim/internal/agent"
	"metrosim/internal/fields"
	"metrosim/internal/quadtree"
	"metrosim/internal/tile"
)

// Check panics, with as useful a message as it can assemble, at the
// first inconsistency it finds between world and agents. This is
// expensive (a full tree walk plus two lookups per agent); it exists for
// debugging and tests, or to run immediately before a panic that's
// already happening anyway, not for the hot path.
func Check(world *fields.World, agents map[agent.AgentID]*agent.Agent) {
	locations := &locationVisitor{
		housing:    make(map[agent.AgentID]quadtree.Address),
		workplaces: make(map[agent.AgentID]quadtree.Address),
	}
	if err := world.Visit(locations); err != nil {
		panic(fmt.Sprintf("consistency: failed to walk world: %v", err))
	}

	for id, a := range agents {
		if a.ID != id {
			panic(fmt.Sprintf("consistency: agent %d does not match its own ID field %d", id, a.ID))
		}

		housing, err := world.Leaf(a.Housing)
		if err != nil {
			panic(fmt.Sprintf("consistency: missing housing leaf at %v for agent %d (visitor found housing at %v): %v",
				a.Housing, id, locations.housing[id], err))
		}
		if housing.Tile.Kind != tile.Housing {
			panic(fmt.Sprintf("consistency: agent %d's housing %v is a %s tile, not Housing", id, a.Housing, housing.Tile.Kind))
		}
		if !housing.Tile.HasAgent(tile.AgentID(id)) {
			panic(fmt.Sprintf("consistency: agent %d says %v is housing, but that tile only lists %v (visitor found housing at %v)",
				id, a.Housing, housing.Tile.Agents, locations.housing[id]))
		}

		if a.Workplace == nil {
			continue
		}
		workplace, err := world.Leaf(*a.Workplace)
		if err != nil {
			panic(fmt.Sprintf("consistency: missing workplace leaf at %v for agent %d (visitor found workplace at %v): %v",
				*a.Workplace, id, locations.workplaces[id], err))
		}
		if workplace.Tile.Kind != tile.Workplace {
			panic(fmt.Sprintf("consistency: agent %d's workplace %v is a %s tile, not Workplace", id, *a.Workplace, workplace.Tile.Kind))
		}
		if !workplace.Tile.HasAgent(tile.AgentID(id)) {
			panic(fmt.Sprintf("consistency: agent %d says %v is their workplace, but that tile only lists %v (visitor found workplace at %v)",
				id, *a.Workplace, workplace.Tile.Agents, locations.workplaces[id]))
		}
	}
}

// locationVisitor walks every leaf once, recording which address each
// listed agent's tile claims to be their housing/workplace, and panics
// immediately if the same agent is double-listed by two tiles.
type locationVisitor struct {
	housing    map[agent.AgentID]quadtree.Address
	workplaces map[agent.AgentID]quadtree.Address
}

func (v *locationVisitor) VisitBranchPre(_ *fields.BranchData, _ quadtree.VisitData) (bool, error) {
	return true, nil
}

func (v *locationVisitor) VisitLeaf(leaf *fields.LeafData, data quadtree.VisitData) error {
	switch leaf.Tile.Kind {
	case tile.Housing:
		for _, id := range leaf.Tile.Agents {
			aid := agent.AgentID(id)
			if existing, ok := v.housing[aid]; ok {
				panic(fmt.Sprintf("consistency: two tiles list agent %d as housing: %v and %v", aid, existing, data.Address))
			}
			v.housing[aid] = data.Address
		}
	case tile.Workplace:
		for _, id := range leaf.Tile.Agents {
			aid := agent.AgentID(id)
			if existing, ok := v.workplaces[aid]; ok {
				panic(fmt.Sprintf("consistency: two tiles list agent %d as workplace: %v and %v", aid, existing, data.Address))
			}
			v.workplaces[aid] = data.Address
		}
	}
	return nil
}

func (v *locationVisitor) VisitBranchPost(_ *fields.BranchData, _ quadtree.VisitData) error {
	return nil
}
