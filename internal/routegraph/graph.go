// Package routegraph builds the directed weighted graph agents route
// across: metro stations and stops, highway junctions and ramps, parking,
// and the Delaunay-inferred walking/biking/driving mesh between them. It
// also prepares and queries a contraction hierarchy over that graph.
package routegraph

import "metrosim/internal/quadtree"

// arc is one directed hop out of a node.
type arc struct {
	To   NodeID
	Edge Edge
}

// Graph is the base routing graph: a directed multigraph whose nodes and
// edges are the closed Node/Edge variant sets.
type Graph struct {
	nodes []Node
	out   [][]arc
	in    [][]arc

	// terminals indexes each mode's terminal nodes by position, for
	// nearest-node snapping when assembling a route query.
	terminals map[Mode]*quadtree.NeighborsStore[NodeID]

	maxDepth uint32
}

func newGraph(maxDepth uint32) *Graph {
	g := &Graph{
		terminals: make(map[Mode]*quadtree.NeighborsStore[NodeID]),
		maxDepth:  maxDepth,
	}
	for _, m := range []Mode{Walking, Biking, Driving} {
		g.terminals[m] = quadtree.NewNeighborsStore[NodeID](8, maxDepth)
	}
	return g
}

// AddNode appends a node and returns its id.
func (g *Graph) AddNode(n Node) NodeID {
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, n)
	g.out = append(g.out, nil)
	g.in = append(g.in, nil)
	return id
}

// AddEdge adds a directed edge from -> to.
func (g *Graph) AddEdge(from, to NodeID, e Edge) {
	g.out[from] = append(g.out[from], arc{To: to, Edge: e})
	g.in[to] = append(g.in[to], arc{To: from, Edge: e})
}

// AddTerminal registers a node as a terminal for the given mode's
// nearest-node index, at its continuous-space position.
func (g *Graph) AddTerminal(mode Mode, id NodeID) {
	loc := g.nodes[id].Location(g.maxDepth)
	if err := g.terminals[mode].Insert(id, loc.X, loc.Y); err != nil {
		panic("routegraph: terminal index insert failed: " + err.Error())
	}
}

// Node returns the node stored at id.
func (g *Graph) Node(id NodeID) Node { return g.nodes[id] }

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// Out returns the directed edges leaving id.
func (g *Graph) Out(id NodeID) []arc { return g.out[id] }

// In returns the directed edges arriving at id.
func (g *Graph) In(id NodeID) []arc { return g.in[id] }

// NearestTerminal finds the closest registered terminal of the given
// mode to a continuous-space position.
func (g *Graph) NearestTerminal(mode Mode, x, y float64) (NodeID, bool) {
	return g.terminals[mode].FindNearest(x, y)
}
