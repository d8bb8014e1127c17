package agent_test

import (
	"testing"

	"metrosim/internal/network"
	"metrosim/internal/quadtree"
	"metrosim/internal/routegraph"
	"metrosim/internal/worldstate"
)

const testMaxDepth = 20

func testAddr(x, y uint64) quadtree.Address { return quadtree.FromXY(x, y, testMaxDepth) }

// buildFixture assembles a tiny network: two metro stations 500m apart
// (within walking's bridge radius, so a Delaunay walking edge bridges
// them directly) plus two highway ramp junctions joined by one segment
// (so a driving route between them crosses exactly one jammable Highway
// edge). Mirrors the routegraph package's own basegraph_test.go fixture
// style.
func buildFixture(t *testing.T) (*routegraph.BaseGraph, routegraph.BaseGraphInput, quadtree.Address, quadtree.Address, quadtree.Address, quadtree.Address) {
	t.Helper()

	railways := network.NewRailways()
	addrA := testAddr(0, 0)
	addrB := testAddr(500, 0)
	jA := railways.AddJunction(network.Point{X: 0, Y: 0}, network.RailwayJunctionData{Station: &network.Station{Name: "A", Address: addrA}})
	jB := railways.AddJunction(network.Point{X: 500, Y: 0}, network.RailwayJunctionData{Station: &network.Station{Name: "B", Address: addrB}})
	railways.AddSegment(network.RailwaySegmentData{}, jA, jB, []network.Point{{X: 0, Y: 0}, {X: 500, Y: 0}})

	highways := network.NewHighways()
	onRamp, offRamp := network.OnRamp, network.OffRamp
	h1 := highways.AddJunction(network.Point{X: 2000, Y: 2000}, network.HighwayJunctionData{Ramp: &onRamp})
	h2 := highways.AddJunction(network.Point{X: 2100, Y: 2000}, network.HighwayJunctionData{Ramp: &offRamp})
	highways.AddSegment(network.HighwaySegmentData{Name: "test", SpeedLimit: 27, Lanes: 2}, h1, h2, []network.Point{{X: 2000, Y: 2000}, {X: 2100, Y: 2000}})
	addrH1 := testAddr(2000, 2000)
	addrH2 := testAddr(2100, 2000)

	in := routegraph.BaseGraphInput{
		Railways:            railways,
		Highways:            highways,
		MetroLines:          map[uint64]*network.MetroLine{},
		TileSize:            1,
		MaxAcceleration:     1.5,
		PeoplePerSim:        1,
		MaxDepth:            testMaxDepth,
		DefaultHighwaySpeed: 27,
		DefaultHighwayLanes: 2,
	}
	bg := routegraph.BuildBase(in)
	return bg, in, addrA, addrB, addrH1, addrH2
}

func buildRouter(t *testing.T, bg *routegraph.BaseGraph, in routegraph.BaseGraphInput, world worldstate.Reader) *routegraph.Router {
	t.Helper()
	ctx := routegraph.NewCostContext(bg, in, world)
	h := routegraph.Prepare(bg.Graph, routegraph.BaseWeigher(ctx))
	return routegraph.NewRouter(bg, h, in, world)
}
