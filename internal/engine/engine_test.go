package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"metrosim/internal/agent"
	"metrosim/internal/config"
	"metrosim/internal/engine"
	"metrosim/internal/fields"
	"metrosim/internal/network"
	"metrosim/internal/quadtree"
	"metrosim/internal/tile"
)

const testMaxDepth = 1

func testCfg() config.Config {
	return config.Config{MaxDepth: testMaxDepth, MinTileSize: 10, PeoplePerSim: 1}
}

// buildWorld splits the root into its four quadrants, placing a Housing
// tile in NW, a Workplace tile in NE, and leaving SW/SE Empty.
func buildWorld(t *testing.T) (*fields.World, quadtree.Address, quadtree.Address) {
	t.Helper()
	world := fields.NewWorld(testMaxDepth)
	childData := quadtree.NewQuadMap(
		fields.LeafData{Tile: tile.NewHousing(2)},
		fields.LeafData{Tile: tile.NewWorkplace(2)},
		fields.LeafData{Tile: tile.NewEmpty()},
		fields.LeafData{Tile: tile.NewEmpty()},
	)
	require.NoError(t, world.Split(quadtree.RootAddress(), fields.BranchData{}, childData))
	housing := quadtree.RootAddress().Child(quadtree.NW)
	workplace := quadtree.RootAddress().Child(quadtree.NE)
	return world, housing, workplace
}

func buildEngine(t *testing.T) (*engine.Engine, quadtree.Address, quadtree.Address) {
	t.Helper()
	world, housing, workplace := buildWorld(t)
	e, err := engine.New(testCfg(), world, network.NewRailways(), network.NewHighways(), map[uint64]*network.MetroLine{}, 1, 2, 1)
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e, housing, workplace
}

func TestAddAgentListsHousingAndWorkplace(t *testing.T) {
	e, housing, workplace := buildEngine(t)

	a := agent.NewAgent(e.NextAgentID(), agent.AgentData{Birthday: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC), YearsOfEducation: 16}, housing)
	a.Workplace = &workplace
	require.NoError(t, e.AddAgent(a))

	housingLeaf, err := e.World.Leaf(housing)
	require.NoError(t, err)
	require.True(t, housingLeaf.Tile.HasAgent(tile.AgentID(a.ID)))

	workLeaf, err := e.World.Leaf(workplace)
	require.NoError(t, err)
	require.True(t, workLeaf.Tile.HasAgent(tile.AgentID(a.ID)))
}

func TestAddAgentRejectsFullWorkplace(t *testing.T) {
	e, housing, workplace := buildEngine(t)
	leaf, err := e.World.Leaf(workplace)
	require.NoError(t, err)
	leaf.Tile = tile.NewWorkplace(0)

	a := agent.NewAgent(e.NextAgentID(), agent.AgentData{}, housing)
	a.Workplace = &workplace
	require.Error(t, e.AddAgent(a))
}

func TestPatchTileRepointsListedAgents(t *testing.T) {
	e, housing, _ := buildEngine(t)
	a := agent.NewAgent(e.NextAgentID(), agent.AgentData{}, housing)
	require.NoError(t, e.AddAgent(a))

	otherHousing := quadtree.RootAddress().Child(quadtree.SW)
	require.NoError(t, e.InsertTile(otherHousing, tile.NewHousing(2)))

	destLeaf, err := e.World.Leaf(otherHousing)
	require.NoError(t, err)
	require.NoError(t, destLeaf.Tile.AddAgent(tile.AgentID(a.ID)))
	require.NoError(t, e.PatchTile(otherHousing))

	require.Equal(t, otherHousing, a.Housing)
}

func TestInitTriggerQueueIsIdempotent(t *testing.T) {
	e, housing, _ := buildEngine(t)
	a := agent.NewAgent(e.NextAgentID(), agent.AgentData{}, housing)
	require.NoError(t, e.AddAgent(a))

	e.InitTriggerQueue()
	firstLen := e.Queue.Len()
	require.Greater(t, firstLen, 0)

	e.InitTriggerQueue()
	require.Equal(t, firstLen, e.Queue.Len())
}

func TestUpdateDrainsDueTriggersAndAdvancesClock(t *testing.T) {
	e, _, _ := buildEngine(t)
	e.InitTriggerQueue()

	e.Time.Paused = false
	e.Time.PlaybackRate = 7200
	require.NoError(t, e.Update(1.0, 5.0))

	require.Equal(t, uint64(7200), e.Time.CurrentTime)
	require.Greater(t, e.Queue.Len(), 0)
}

func TestDumpLoadRoundTripsWorldAndAgents(t *testing.T) {
	e, housing, workplace := buildEngine(t)
	a := agent.NewAgent(e.NextAgentID(), agent.AgentData{YearsOfEducation: 12}, housing)
	a.Workplace = &workplace
	require.NoError(t, e.AddAgent(a))
	e.InitTriggerQueue()

	data, err := e.Dump()
	require.NoError(t, err)

	loaded, err := engine.Load(data, 1, 3, 4)
	require.NoError(t, err)
	t.Cleanup(loaded.Close)

	require.Len(t, loaded.Agents, 1)
	loadedAgent := loaded.Agents[a.ID]
	require.NotNil(t, loadedAgent)
	require.Equal(t, housing, loadedAgent.Housing)
	require.NotNil(t, loadedAgent.Workplace)
	require.Equal(t, workplace, *loadedAgent.Workplace)

	housingLeaf, err := loaded.World.Leaf(housing)
	require.NoError(t, err)
	require.Equal(t, tile.Housing, housingLeaf.Tile.Kind)
	require.True(t, housingLeaf.Tile.HasAgent(tile.AgentID(a.ID)))

	require.Equal(t, e.Queue.Len(), loaded.Queue.Len())
}
