package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metrosim/internal/agent"
	"metrosim/internal/quadtree"
	"metrosim/internal/tile"
)

func TestJobSaturationNoJobs(t *testing.T) {
	var e Employment
	assert.Equal(t, 1.0, e.JobSaturation())
	assert.Equal(t, 0.0, e.JobVacancy())
	assert.Equal(t, uint64(0), e.UnfilledJobs())
}

func TestComputeEmploymentLeafCountsWorkersAndJobs(t *testing.T) {
	housing := quadtree.FromXY(0, 0, 8)
	work := quadtree.FromXY(4, 4, 8)

	a1 := newTestAgent(t, 1, housing)
	a1.Workplace = &work
	a1.RouteLengths[agent.CommuteFromWork] = 900

	extra := ComputationData{Agents: map[agent.AgentID]*agent.Agent{1: a1}}
	wt := tile.NewWorkplace(3)
	require.NoError(t, wt.AddAgent(tile.AgentID(1)))

	got := computeEmploymentLeaf(wt, 2, extra)
	assert.Equal(t, uint64(1), got.Workers.Total)
	assert.Equal(t, uint64(3), got.Jobs.Total)
	assert.Equal(t, uint64(2), got.UnfilledJobs())
	assert.Equal(t, uint64(1), got.WorkplaceHappiness.Count)
	assert.Equal(t, uint64(1), got.CommuteDuration.Count)
}

func TestComputeEmploymentLeafNonWorkplaceIsEmpty(t *testing.T) {
	got := computeEmploymentLeaf(tile.NewEmpty(), 4, ComputationData{Agents: map[agent.AgentID]*agent.Agent{}})
	assert.Equal(t, uint64(0), got.Workers.Total)
	assert.Equal(t, uint64(0), got.Jobs.Total)
}
