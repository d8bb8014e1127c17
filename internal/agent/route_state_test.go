package agent_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metrosim/internal/agent"
	"metrosim/internal/worldstate"
)

func TestRouteTypeString(t *testing.T) {
	assert.Equal(t, "CommuteToWork", agent.CommuteToWork.String())
	assert.Equal(t, "CommuteFromWork", agent.CommuteFromWork.String())
}

func TestNextTriggerAdvancesMonotonically(t *testing.T) {
	bg, in, addrA, addrB, _, _ := buildFixture(t)
	ws := worldstate.New()
	router := buildRouter(t, bg, in, ws)

	route, ok := router.Query(walkQuery(addrA, addrB), nil)
	require.True(t, ok)

	a := agent.NewAgent(1, agent.AgentData{}, addrA)
	a.BeginRoute(route, 0, agent.CommuteToWork, router, ws)

	prev := uint64(0)
	for {
		next := a.NextTrigger()
		if next == nil {
			break
		}
		assert.GreaterOrEqual(t, *next, prev)
		prev = *next
		a.Advance(router, ws)
	}

	rs, ok := a.RouteInProgress()
	require.True(t, ok)
	assert.True(t, rs.Finished())
}
