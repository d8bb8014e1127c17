package routegraph

import (
	"container/heap"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metrosim/internal/network"
	"metrosim/internal/quadtree"
)

// plainDijkstra is a reference shortest-path implementation independent
// of the contraction hierarchy machinery, used to check Hierarchy.Query
// against ground truth on small fixture graphs.
func plainDijkstra(g *Graph, weigh Weigher, src, dst NodeID) (float64, bool) {
	n := g.NodeCount()
	dist := make([]float64, n)
	for i := range dist {
		dist[i] = infinity
	}
	dist[src] = 0

	pq := &dijkstraQueue{{node: src, dist: 0}}
	visited := make([]bool, n)
	for pq.Len() > 0 {
		top := heap.Pop(pq).(dijkstraEntry)
		if visited[top.node] {
			continue
		}
		visited[top.node] = true
		if top.node == dst {
			return top.dist, true
		}
		for _, a := range g.Out(top.node) {
			nd := top.dist + weigh(a.Edge)
			if nd < dist[a.To] {
				dist[a.To] = nd
				heap.Push(pq, dijkstraEntry{node: a.To, dist: nd})
			}
		}
	}
	if dist[dst] >= infinity {
		return 0, false
	}
	return dist[dst], true
}

// lineGraph builds a simple chain 0 -> 1 -> ... -> n-1 plus a handful of
// cross edges, each priced by its ModeSegment Euclidean distance over
// walking speed, a convenient non-uniform weight for exercising
// contraction's shortcut logic.
func lineGraph(t *testing.T) *Graph {
	t.Helper()
	g := newGraph(10)
	for i := 0; i < 8; i++ {
		g.AddNode(endpointNode(quadtree.FromXY(uint64(i), 0, 10)))
	}
	connect := func(a, b int) {
		from, to := NodeID(a), NodeID(b)
		start := pointAt(a)
		stop := pointAt(b)
		g.AddEdge(from, to, modeSegmentEdge(Walking, start, stop))
		g.AddEdge(to, from, modeSegmentEdge(Walking, stop, start))
	}
	for i := 0; i < 7; i++ {
		connect(i, i+1)
	}
	// a couple of shortcuts/cross edges so contraction has real work to do
	connect(0, 3)
	connect(2, 6)
	connect(4, 7)
	return g
}

func pointAt(i int) network.Point { return network.Point{X: float64(i) * 100, Y: 0} }

func baseWeigher(ctx costContext) Weigher {
	return func(e Edge) float64 { return e.BaseCost(ctx) }
}

func TestHierarchyQueryMatchesPlainDijkstra(t *testing.T) {
	g := lineGraph(t)
	ctx := costContext{}
	weigh := baseWeigher(ctx)

	h := Prepare(g, weigh)

	for src := 0; src < g.NodeCount(); src++ {
		for dst := 0; dst < g.NodeCount(); dst++ {
			if src == dst {
				continue
			}
			want, ok := plainDijkstra(g, weigh, NodeID(src), NodeID(dst))
			require.True(t, ok, "src=%d dst=%d", src, dst)

			got, found := h.Query(NodeID(src), NodeID(dst))
			require.True(t, found, "src=%d dst=%d", src, dst)
			assert.InDelta(t, want, got.Cost, 1e-6, "src=%d dst=%d", src, dst)
		}
	}
}

func TestHierarchyQuerySameNodeIsZero(t *testing.T) {
	g := lineGraph(t)
	h := Prepare(g, baseWeigher(costContext{}))
	got, ok := h.Query(0, 0)
	require.True(t, ok)
	assert.Equal(t, 0.0, got.Cost)
}

func TestHierarchyQueryUnpacksToRealEdges(t *testing.T) {
	g := lineGraph(t)
	h := Prepare(g, baseWeigher(costContext{}))

	res, ok := h.Query(0, 7)
	require.True(t, ok)
	require.NotEmpty(t, res.Steps)

	for i, step := range res.Steps {
		if i == 0 {
			assert.Equal(t, NodeID(0), step.From)
		} else {
			assert.Equal(t, res.Steps[i-1].To, step.From)
		}
	}
	assert.Equal(t, NodeID(7), res.Steps[len(res.Steps)-1].To)
}

func TestRePrepareReusesOrder(t *testing.T) {
	g := lineGraph(t)
	h1 := Prepare(g, baseWeigher(costContext{}))
	order := h1.Order()

	h2 := RePrepare(g, baseWeigher(costContext{}), order)
	assert.Equal(t, order, h2.Order())

	got1, _ := h1.Query(0, 7)
	got2, _ := h2.Query(0, 7)
	assert.InDelta(t, got1.Cost, got2.Cost, 1e-6)
}
