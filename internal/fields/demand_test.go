package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metrosim/internal/agent"
	"metrosim/internal/quadtree"
	"metrosim/internal/tile"
)

func TestComputeRawDemandLeafCountsUnemployedResidentsOnly(t *testing.T) {
	housing := quadtree.FromXY(0, 0, 8)
	work := quadtree.FromXY(4, 4, 8)

	employed := newTestAgent(t, 1, housing)
	employed.Workplace = &work
	unemployed := newTestAgent(t, 2, housing)

	extra := ComputationData{Agents: map[agent.AgentID]*agent.Agent{1: employed, 2: unemployed}}
	ht := tile.NewHousing(5)
	require.NoError(t, ht.AddAgent(tile.AgentID(1)))
	require.NoError(t, ht.AddAgent(tile.AgentID(2)))

	got := computeRawDemandLeaf(ht, 2, extra)
	assert.Equal(t, uint64(1), got.RawWorkplaceDemand.Total)
	assert.Equal(t, uint64(4), got.RawWorkplaceDemand.Area)
}

func TestComputeRawDemandLeafNonHousingIsZero(t *testing.T) {
	got := computeRawDemandLeaf(tile.NewEmpty(), 4, ComputationData{Agents: map[agent.AgentID]*agent.Agent{}})
	assert.Equal(t, uint64(0), got.RawWorkplaceDemand.Total)
}

func TestComputeRawDemandBranchSums(t *testing.T) {
	children := [4]SimpleDensity{
		{Total: 1, Area: 1},
		{Total: 2, Area: 1},
		{Total: 0, Area: 1},
		{Total: 3, Area: 1},
	}
	got := computeRawDemandBranch(children)
	assert.Equal(t, uint64(6), got.RawWorkplaceDemand.Total)
	assert.Equal(t, uint64(4), got.RawWorkplaceDemand.Area)
}
