package consistency_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metrosim/internal/agent"
	"metrosim/internal/consistency"
	"metrosim/internal/fields"
	"metrosim/internal/quadtree"
	"metrosim/internal/tile"
)

func newAgent(id agent.AgentID, housing quadtree.Address) *agent.Agent {
	data := agent.AgentData{Birthday: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC), YearsOfEducation: 16}
	return agent.NewAgent(id, data, housing)
}

func TestCheckPassesForConsistentState(t *testing.T) {
	world := fields.NewWorld(0)
	addr := quadtree.RootAddress()
	leaf, err := world.Leaf(addr)
	require.NoError(t, err)
	ht := tile.NewHousing(2)
	require.NoError(t, ht.AddAgent(tile.AgentID(1)))
	leaf.Tile = ht

	a := newAgent(1, addr)
	agents := map[agent.AgentID]*agent.Agent{1: a}

	assert.NotPanics(t, func() { consistency.Check(world, agents) })
}

func TestCheckPanicsWhenTileDoesNotListAgent(t *testing.T) {
	world := fields.NewWorld(0)
	addr := quadtree.RootAddress()
	leaf, err := world.Leaf(addr)
	require.NoError(t, err)
	leaf.Tile = tile.NewHousing(2) // no agents listed

	a := newAgent(1, addr)
	agents := map[agent.AgentID]*agent.Agent{1: a}

	assert.Panics(t, func() { consistency.Check(world, agents) })
}

func TestCheckPanicsWhenHousingAddressIsWrongKind(t *testing.T) {
	world := fields.NewWorld(0)
	addr := quadtree.RootAddress()
	leaf, err := world.Leaf(addr)
	require.NoError(t, err)
	leaf.Tile = tile.NewEmpty()

	a := newAgent(1, addr)
	agents := map[agent.AgentID]*agent.Agent{1: a}

	assert.Panics(t, func() { consistency.Check(world, agents) })
}
