package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metrosim/internal/agent"
	"metrosim/internal/config"
	"metrosim/internal/quadtree"
	"metrosim/internal/tile"
)

func testConfig() config.Config {
	return config.Config{MaxDepth: 2, MinTileSize: 50, PeoplePerSim: 1}
}

func TestUpdateFieldsIsIdempotent(t *testing.T) {
	cfg := testConfig()
	world := NewWorld(cfg.MaxDepth)

	housingAddr := quadtree.RootAddress()
	leaf, err := world.Leaf(housingAddr)
	require.NoError(t, err)
	ht := tile.NewHousing(4)
	require.NoError(t, ht.AddAgent(tile.AgentID(1)))
	leaf.Tile = ht

	a := newTestAgent(t, 1, housingAddr)
	extra := ComputationData{Agents: map[agent.AgentID]*agent.Agent{1: a}}

	require.NoError(t, UpdateFields(world, extra, cfg))
	first, err := world.Leaf(housingAddr)
	require.NoError(t, err)
	firstFields := first.Fields

	require.NoError(t, UpdateFields(world, extra, cfg))
	second, err := world.Leaf(housingAddr)
	require.NoError(t, err)

	assert.Equal(t, firstFields, second.Fields)
}

func TestUpdateFieldsPopulatesRootLeaf(t *testing.T) {
	cfg := testConfig()
	world := NewWorld(cfg.MaxDepth)

	addr := quadtree.RootAddress()
	leaf, err := world.Leaf(addr)
	require.NoError(t, err)
	leaf.Tile = tile.NewHousing(4)

	extra := ComputationData{Agents: map[agent.AgentID]*agent.Agent{}}
	require.NoError(t, UpdateFields(world, extra, cfg))

	got, err := world.Leaf(addr)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), got.Fields.Population.Housing.Total)
}
