package routegraph

import "container/heap"

// maxShortcutsPerNode bounds how many shortcuts a single contraction may
// introduce before priority ordering stops: the node that would exceed it
// and every node still queued are then contracted in index order at the
// top of the hierarchy. The simulation's graphs are city
// scale rather than continental, so this mostly just protects against a
// pathological, near-complete local mesh.
const maxShortcutsPerNode = 64

// chArc is one directed hop in the contracted overlay. Middle is -1 for
// an edge that already existed in the base graph, in which case Edge
// carries a copy of it directly; otherwise Middle names the node this
// shortcut was contracted through, letting a query unpack it back into
// the two arcs it replaces.
type chArc struct {
	To     NodeID
	Weight float64
	Middle int
	Edge   Edge
}

// Hierarchy is a prepared contraction hierarchy over a Graph: every node
// ranked by contraction order, plus forward and backward "upward" overlay
// graphs (edges that only ever go from a lower-ranked to a higher-ranked
// node) used for a meet-in-the-middle bidirectional query.
type Hierarchy struct {
	order []NodeID // order[i] is the i'th node contracted; order's position is also its rank
	rank  []int    // rank[v] is v's index in order

	fwd [][]chArc // upward edges leaving each node in the original direction
	bwd [][]chArc // upward edges leaving each node in the reversed direction
}

// Weigher prices a base-graph edge for contraction; the caller supplies
// base cost for the initial prepare and congestion-aware cost for a
// weight-refresh re-prepare.
type Weigher func(Edge) float64

// Prepare contracts the graph from scratch, computing a fresh node
// ordering by the edge-difference heuristic.
func Prepare(g *Graph, weigh Weigher) *Hierarchy {
	return contract(g, weigh, nil)
}

// RePrepare rebuilds the hierarchy's shortcuts using a previously stored
// node ordering, skipping the (expensive) priority-driven order search.
// This is what a periodic weight refresh uses: the topology hasn't
// changed, only edge costs have.
func RePrepare(g *Graph, weigh Weigher, order []NodeID) *Hierarchy {
	return contract(g, weigh, order)
}

// Order returns the hierarchy's node contraction order, for a later
// RePrepare call.
func (h *Hierarchy) Order() []NodeID { return h.order }

type mutableArc struct {
	to     NodeID
	weight float64
	middle int
	edge   Edge
}

func contract(g *Graph, weigh Weigher, fixedOrder []NodeID) *Hierarchy {
	n := g.NodeCount()

	outAdj := make([][]mutableArc, n)
	inAdj := make([][]mutableArc, n)
	for u := 0; u < n; u++ {
		for _, a := range g.Out(NodeID(u)) {
			w := weigh(a.Edge)
			outAdj[u] = append(outAdj[u], mutableArc{to: a.To, weight: w, middle: -1, edge: a.Edge})
			inAdj[a.To] = append(inAdj[a.To], mutableArc{to: NodeID(u), weight: w, middle: -1, edge: a.Edge})
		}
	}

	contracted := make([]bool, n)
	rank := make([]int, n)
	order := make([]NodeID, 0, n)

	ws := newWitnessState(n)

	contractOne := func(node NodeID) {
		shortcuts := findShortcuts(ws, outAdj, inAdj, node, contracted)
		contracted[node] = true
		rank[node] = len(order)
		order = append(order, node)
		for _, sc := range shortcuts {
			outAdj[sc.from] = append(outAdj[sc.from], mutableArc{to: sc.to, weight: sc.weight, middle: int(node)})
			inAdj[sc.to] = append(inAdj[sc.to], mutableArc{to: sc.from, weight: sc.weight, middle: int(node)})
		}
	}

	if fixedOrder != nil {
		for _, node := range fixedOrder {
			contractOne(node)
		}
	} else {
		contractedNeighbors := make([]int, n)
		level := make([]int, n)

		pq := make(priorityQueue, n)
		for i := 0; i < n; i++ {
			pq[i] = &pqEntry{node: NodeID(i), priority: computePriority(outAdj, inAdj, NodeID(i), contracted)}
		}
		heap.Init(&pq)

		for pq.Len() > 0 {
			entry := heap.Pop(&pq).(*pqEntry)
			node := entry.node
			if contracted[node] {
				continue
			}

			fresh := computePriority(outAdj, inAdj, node, contracted) + 2*contractedNeighbors[node] + level[node]
			if pq.Len() > 0 && fresh > pq[0].priority {
				entry.priority = fresh
				heap.Push(&pq, entry)
				continue
			}

			shortcuts := findShortcuts(ws, outAdj, inAdj, node, contracted)
			if len(shortcuts) > maxShortcutsPerNode {
				// stop priority ordering: node and everything left in the
				// queue are contracted afterwards in index order, at the top.
				break
			}

			contracted[node] = true
			rank[node] = len(order)
			order = append(order, node)
			for _, sc := range shortcuts {
				outAdj[sc.from] = append(outAdj[sc.from], mutableArc{to: sc.to, weight: sc.weight, middle: int(node)})
				inAdj[sc.to] = append(inAdj[sc.to], mutableArc{to: sc.from, weight: sc.weight, middle: int(node)})
			}

			for _, e := range outAdj[node] {
				if !contracted[e.to] {
					contractedNeighbors[e.to]++
					if level[node]+1 > level[e.to] {
						level[e.to] = level[node] + 1
					}
				}
			}
			for _, e := range inAdj[node] {
				if !contracted[e.to] {
					contractedNeighbors[e.to]++
					if level[node]+1 > level[e.to] {
						level[e.to] = level[node] + 1
					}
				}
			}
		}

		for i := 0; i < n; i++ {
			if !contracted[NodeID(i)] {
				contractOne(NodeID(i))
			}
		}
	}

	fwd := make([][]chArc, n)
	bwd := make([][]chArc, n)
	for u := 0; u < n; u++ {
		for _, e := range outAdj[u] {
			if rank[u] < rank[e.to] {
				fwd[u] = append(fwd[u], chArc{To: e.to, Weight: e.weight, Middle: e.middle, Edge: e.edge})
			}
		}
		for _, e := range inAdj[u] {
			if rank[u] < rank[e.to] {
				bwd[u] = append(bwd[u], chArc{To: e.to, Weight: e.weight, Middle: e.middle, Edge: e.edge})
			}
		}
	}

	return &Hierarchy{order: order, rank: rank, fwd: fwd, bwd: bwd}
}

type shortcut struct {
	from, to NodeID
	weight   float64
}

// findShortcuts runs a batch witness search: one bounded Dijkstra per
// active incoming neighbor (rather than one per incoming/outgoing pair),
// then checks every active outgoing neighbor against that single search.
func findShortcuts(ws *witnessState, outAdj, inAdj [][]mutableArc, node NodeID, contracted []bool) []shortcut {
	var incoming, outgoing []mutableArc
	for _, e := range inAdj[node] {
		if !contracted[e.to] {
			incoming = append(incoming, e)
		}
	}
	for _, e := range outAdj[node] {
		if !contracted[e.to] {
			outgoing = append(outgoing, e)
		}
	}
	if len(incoming) == 0 || len(outgoing) == 0 {
		return nil
	}

	var shortcuts []shortcut
	for _, in := range incoming {
		maxOut := 0.0
		for _, out := range outgoing {
			if out.to != in.to && out.weight > maxOut {
				maxOut = out.weight
			}
		}
		if maxOut == 0 {
			continue
		}
		maxWeight := in.weight + maxOut

		ws.run(outAdj, in.to, node, maxWeight, contracted)

		for _, out := range outgoing {
			if out.to == in.to {
				continue
			}
			scWeight := in.weight + out.weight
			if ws.dist[out.to] > scWeight {
				shortcuts = append(shortcuts, shortcut{from: in.to, to: out.to, weight: scWeight})
			}
		}
	}
	return shortcuts
}

// computePriority is the edge-difference contraction heuristic: nodes
// whose removal would add the fewest net edges contract first.
func computePriority(outAdj, inAdj [][]mutableArc, node NodeID, contracted []bool) int {
	activeIn, activeOut := 0, 0
	for _, e := range inAdj[node] {
		if !contracted[e.to] {
			activeIn++
		}
	}
	for _, e := range outAdj[node] {
		if !contracted[e.to] {
			activeOut++
		}
	}
	return activeIn*activeOut - (activeIn + activeOut)
}

// witnessState is reusable scratch space for the bounded Dijkstra run
// inside findShortcuts, avoiding an allocation per incoming neighbor.
type witnessState struct {
	dist    []float64
	visited []bool
	touched []NodeID
}

func newWitnessState(n int) *witnessState {
	dist := make([]float64, n)
	for i := range dist {
		dist[i] = infinity
	}
	return &witnessState{dist: dist, visited: make([]bool, n)}
}

const infinity = 1e18

// run computes shortest distances from src, ignoring the node being
// contracted (avoid), stopping once the frontier's minimum distance
// exceeds limit. Only entries in ws.touched from the previous run are
// reset, keeping each call's overhead proportional to what it visits.
func (ws *witnessState) run(outAdj [][]mutableArc, src, avoid NodeID, limit float64, contracted []bool) {
	for _, v := range ws.touched {
		ws.dist[v] = infinity
		ws.visited[v] = false
	}
	ws.touched = ws.touched[:0]

	ws.dist[src] = 0
	ws.touched = append(ws.touched, src)

	pq := &dijkstraQueue{{node: src, dist: 0}}
	for pq.Len() > 0 {
		top := heap.Pop(pq).(dijkstraEntry)
		if top.dist > limit {
			break
		}
		if ws.visited[top.node] || top.node == avoid {
			continue
		}
		ws.visited[top.node] = true

		for _, e := range outAdj[top.node] {
			if e.to == avoid || contracted[e.to] {
				continue
			}
			nd := top.dist + e.weight
			if nd < ws.dist[e.to] {
				if ws.dist[e.to] == infinity {
					ws.touched = append(ws.touched, e.to)
				}
				ws.dist[e.to] = nd
				heap.Push(pq, dijkstraEntry{node: e.to, dist: nd})
			}
		}
	}
}

type dijkstraEntry struct {
	node NodeID
	dist float64
}

type dijkstraQueue []dijkstraEntry

func (q dijkstraQueue) Len() int            { return len(q) }
func (q dijkstraQueue) Less(i, j int) bool  { return q[i].dist < q[j].dist }
func (q dijkstraQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *dijkstraQueue) Push(x interface{}) { *q = append(*q, x.(dijkstraEntry)) }
func (q *dijkstraQueue) Pop() interface{} {
	old := *q
	n := len(old)
	e := old[n-1]
	*q = old[:n-1]
	return e
}

type pqEntry struct {
	node     NodeID
	priority int
}

type priorityQueue []*pqEntry

func (pq priorityQueue) Len() int            { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool  { return pq[i].priority < pq[j].priority }
func (pq priorityQueue) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue) Push(x interface{}) { *pq = append(*pq, x.(*pqEntry)) }
func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	e := old[n-1]
	*pq = old[:n-1]
	return e
}
