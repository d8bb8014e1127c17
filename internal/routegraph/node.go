package routegraph

import (
	"fmt"

	"metrosim/internal/network"
	"metrosim/internal/quadtree"
)

// NodeID identifies a node within a single Graph.
type NodeID int

// nodeKind tags which variant of Node a given node is.
type nodeKind int8

const (
	nodeMetroStation nodeKind = iota
	nodeMetroStop
	nodeHighwayJunction
	nodeHighwayRamp
	nodeParking
	nodeEndpoint
)

// Node is the closed set of vertex kinds in the routing graph. Only the
// fields meaningful to its kind are populated; Kind tags which those are.
type Node struct {
	Kind nodeKind

	// MetroStation, MetroStop
	Station network.Station
	// MetroStop
	MetroLine uint64

	// HighwayJunction, HighwayRamp
	Junction network.JunctionHandle
	Position network.Point

	// Parking, Endpoint, and the address-carrying cases above
	Addr quadtree.Address
}

func metroStationNode(station network.Station) Node {
	return Node{Kind: nodeMetroStation, Station: station, Addr: station.Address}
}

func metroStopNode(station network.Station, line uint64) Node {
	return Node{Kind: nodeMetroStop, Station: station, MetroLine: line, Addr: station.Address}
}

func highwayJunctionNode(junction network.JunctionHandle, position network.Point, addr quadtree.Address) Node {
	return Node{Kind: nodeHighwayJunction, Junction: junction, Position: position, Addr: addr}
}

func highwayRampNode(junction network.JunctionHandle, position network.Point, addr quadtree.Address) Node {
	return Node{Kind: nodeHighwayRamp, Junction: junction, Position: position, Addr: addr}
}

func parkingNode(addr quadtree.Address) Node {
	return Node{Kind: nodeParking, Addr: addr}
}

func endpointNode(addr quadtree.Address) Node {
	return Node{Kind: nodeEndpoint, Addr: addr}
}

// Address returns the quadtree address this node sits at.
func (n Node) Address() quadtree.Address {
	return n.Addr
}

// Location returns the node's continuous-space position. For
// address-carrying variants this is the corner of the addressed cell;
// HighwayJunction and HighwayRamp carry an exact surveyed position.
func (n Node) Location(maxDepth uint32) network.Point {
	switch n.Kind {
	case nodeHighwayJunction, nodeHighwayRamp:
		return n.Position
	default:
		x, y := n.Addr.ToXY(maxDepth)
		return network.Point{X: float64(x), Y: float64(y)}
	}
}

func (n Node) String() string {
	switch n.Kind {
	case nodeMetroStation:
		return fmt.Sprintf("station:%s", n.Station.Name)
	case nodeMetroStop:
		return fmt.Sprintf("stop:%d:%s", n.MetroLine, n.Station.Name)
	case nodeHighwayJunction:
		return fmt.Sprintf("junction:(%.1f, %.1f)", n.Position.X, n.Position.Y)
	case nodeHighwayRamp:
		return fmt.Sprintf("ramp:(%.1f, %.1f)", n.Position.X, n.Position.Y)
	case nodeParking:
		return "parking"
	case nodeEndpoint:
		return "endpoint"
	default:
		return "invalid"
	}
}
