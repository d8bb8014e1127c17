package routegraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metrosim/internal/network"
	"metrosim/internal/quadtree"
	"metrosim/internal/worldstate"
)

func TestCandidateModePairsNoCar(t *testing.T) {
	pairs := candidateModePairs(CarConfig{Kind: NoCar})
	assert.Equal(t, []modePair{{Walking, Walking}}, pairs)
}

func TestCandidateModePairsStartWithCar(t *testing.T) {
	pairs := candidateModePairs(CarConfig{Kind: StartWithCar})
	assert.Equal(t, []modePair{{Driving, Walking}, {Driving, Driving}}, pairs)
}

// twoNodeRouter builds the smallest possible walking-only router: two
// terminal nodes joined by a bidirectional ModeSegment edge, positioned
// distanceRaw tile-grid units apart and scaled to meters by tileSize.
func twoNodeRouter(t *testing.T, distanceRaw, tileSize float64) (*Router, quadtree.Address, quadtree.Address) {
	t.Helper()
	const maxDepth = 20

	g := newGraph(maxDepth)
	addrA := quadtree.FromXY(0, 0, maxDepth)
	addrB := quadtree.FromXY(uint64(distanceRaw), 0, maxDepth)

	a := g.AddNode(endpointNode(addrA))
	b := g.AddNode(endpointNode(addrB))
	g.AddTerminal(Walking, a)
	g.AddTerminal(Walking, b)

	posA := network.Point{X: 0, Y: 0}
	posB := network.Point{X: distanceRaw * tileSize, Y: 0}
	g.AddEdge(a, b, modeSegmentEdge(Walking, posA, posB))
	g.AddEdge(b, a, modeSegmentEdge(Walking, posB, posA))

	h := Prepare(g, baseWeigher(costContext{}))

	return &Router{Graph: g, Hierarchy: h, Cost: costContext{}, TileSize: tileSize}, addrA, addrB
}

func TestRouterQueryShortRouteSucceeds(t *testing.T) {
	r, start, end := twoNodeRouter(t, 100, 1)
	route, ok := r.Query(QueryInput{Start: start, End: end, Car: CarConfig{Kind: NoCar}}, nil)
	require.True(t, ok)
	// the query's literal addresses coincide exactly with the graph's two
	// terminals, so each zero-distance stub floors to the 1-second minimum
	// edge cost on top of the in-graph leg.
	want := 100.0/Walking.LinearSpeed() + 2.0
	assert.InDelta(t, want, route.Cost, 1e-6)
}

func TestRouterQueryRejectsRoutesOverFourHours(t *testing.T) {
	// 1000 raw units * tileSize 50 = 50,000m; at walking speed 1.5 m/s
	// that is well over the 4-hour (14400s) cutoff.
	r, start, end := twoNodeRouter(t, 1000, 50)
	_, ok := r.Query(QueryInput{Start: start, End: end, Car: CarConfig{Kind: NoCar}}, nil)
	assert.False(t, ok)
}

func TestRouterQueryCompositeJoinsLegsAtParkedAddr(t *testing.T) {
	const maxDepth = 20
	g := newGraph(maxDepth)

	home := quadtree.FromXY(0, 0, maxDepth)
	parked := quadtree.FromXY(50, 0, maxDepth)
	work := quadtree.FromXY(100, 0, maxDepth)

	homeNode := g.AddNode(endpointNode(home))
	parkedNode := g.AddNode(endpointNode(parked))
	workNode := g.AddNode(endpointNode(work))
	g.AddTerminal(Walking, homeNode)
	g.AddTerminal(Walking, parkedNode)
	g.AddTerminal(Driving, parkedNode)
	g.AddTerminal(Driving, workNode)

	homePos := network.Point{X: 0, Y: 0}
	parkedPos := network.Point{X: 50, Y: 0}
	workPos := network.Point{X: 100, Y: 0}

	g.AddEdge(homeNode, parkedNode, modeSegmentEdge(Walking, homePos, parkedPos))
	g.AddEdge(parkedNode, homeNode, modeSegmentEdge(Walking, parkedPos, homePos))
	g.AddEdge(parkedNode, workNode, modeSegmentEdge(Driving, parkedPos, workPos))
	g.AddEdge(workNode, parkedNode, modeSegmentEdge(Driving, workPos, parkedPos))

	h := Prepare(g, baseWeigher(costContext{}))
	ctx := costContext{World: worldstate.New(), LocalRoadCapacity: 1000, CellSize: 500}
	r := &Router{Graph: g, Hierarchy: h, Cost: ctx, TileSize: 1}

	route, ok := r.Query(QueryInput{
		Start: home,
		End:   work,
		Car:   CarConfig{Kind: CollectParkedCar, ParkedAddr: parked},
	}, nil)
	require.True(t, ok)

	// each leg's query address coincides with its nearest terminal, so
	// both legs contribute two floored 1-second stubs on top of their
	// in-graph edge; the Driving,Driving candidate for leg two beats
	// Driving,Walking (which collapses to a same-node hierarchy query
	// plus one long walking stub) on cost and is selected.
	wantWalk := 50.0 / Walking.LinearSpeed()
	wantDrive := 50.0 / Driving.LinearSpeed()
	assert.InDelta(t, wantWalk+wantDrive+4.0, route.Cost, 1e-6)
}
