package fields

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metrosim/internal/agent"
	"metrosim/internal/quadtree"
	"metrosim/internal/tile"
)

func newTestAgent(t *testing.T, id agent.AgentID, housing quadtree.Address) *agent.Agent {
	t.Helper()
	data := agent.AgentData{Birthday: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC), YearsOfEducation: 16}
	return agent.NewAgent(id, data, housing)
}

func TestHousingSaturationNoHousing(t *testing.T) {
	var p Population
	assert.Equal(t, 1.0, p.HousingSaturation())
	assert.Equal(t, 0.0, p.HousingVacancy())
	assert.Equal(t, uint64(0), p.EmptyHousing())
}

func TestEmploymentRateNoResidents(t *testing.T) {
	var p Population
	assert.Equal(t, 1.0, p.EmploymentRate())
}

func TestComputePopulationLeafNonHousingIsEmpty(t *testing.T) {
	got := computePopulationLeaf(tile.NewWater(), 4, ComputationData{Agents: map[agent.AgentID]*agent.Agent{}})
	assert.Equal(t, uint64(0), got.People.Total)
	assert.Equal(t, uint64(0), got.Housing.Total)
}

func TestComputePopulationLeafCountsEmployedAndUnemployed(t *testing.T) {
	housing := quadtree.FromXY(0, 0, 8)
	work := quadtree.FromXY(4, 4, 8)

	a1 := newTestAgent(t, 1, housing)
	a1.Workplace = &work
	a1.RouteLengths[agent.CommuteToWork] = 600

	a2 := newTestAgent(t, 2, housing)

	extra := ComputationData{Agents: map[agent.AgentID]*agent.Agent{1: a1, 2: a2}}
	ht := tile.NewHousing(5)
	require.NoError(t, ht.AddAgent(tile.AgentID(1)))
	require.NoError(t, ht.AddAgent(tile.AgentID(2)))

	got := computePopulationLeaf(ht, 4, extra)
	assert.Equal(t, uint64(2), got.People.Total)
	assert.Equal(t, uint64(5), got.Housing.Total)
	assert.Equal(t, uint64(1), got.EmployedPeople)
	assert.Equal(t, uint64(1), got.WorkplaceHappiness.Count)
	assert.Equal(t, uint64(2), got.CarOwnership.Count)
}
