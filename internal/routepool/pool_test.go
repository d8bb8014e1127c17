package routepool_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metrosim/internal/network"
	"metrosim/internal/quadtree"
	"metrosim/internal/routegraph"
	"metrosim/internal/routepool"
	"metrosim/internal/worldstate"
)

const testMaxDepth = 20

func testAddr(x, y uint64) quadtree.Address { return quadtree.FromXY(x, y, testMaxDepth) }

// buildRouter assembles the smallest possible walking route: two metro
// stations joined by a rail segment, close enough that a Delaunay
// walking edge bridges them directly. Mirrors the agent package's own
// route fixture (internal/agent/fixture_test.go).
func buildRouter(t *testing.T) (router *routegraph.Router, start, end quadtree.Address) {
	t.Helper()

	railways := network.NewRailways()
	addrA := testAddr(0, 0)
	addrB := testAddr(500, 0)
	jA := railways.AddJunction(network.Point{X: 0, Y: 0}, network.RailwayJunctionData{Station: &network.Station{Name: "A", Address: addrA}})
	jB := railways.AddJunction(network.Point{X: 500, Y: 0}, network.RailwayJunctionData{Station: &network.Station{Name: "B", Address: addrB}})
	railways.AddSegment(network.RailwaySegmentData{}, jA, jB, []network.Point{{X: 0, Y: 0}, {X: 500, Y: 0}})

	in := routegraph.BaseGraphInput{
		Railways:     railways,
		Highways:     network.NewHighways(),
		MetroLines:   map[uint64]*network.MetroLine{},
		TileSize:     1,
		PeoplePerSim: 1,
		MaxDepth:     testMaxDepth,
	}
	bg := routegraph.BuildBase(in)
	ws := worldstate.New()
	ctx := routegraph.NewCostContext(bg, in, ws)
	h := routegraph.Prepare(bg.Graph, routegraph.BaseWeigher(ctx))
	router = routegraph.NewRouter(bg, h, in, ws)
	return router, addrA, addrB
}

func TestPoolQueryAsyncDeliversResult(t *testing.T) {
	router, start, end := buildRouter(t)
	pool := routepool.New(2)
	defer pool.Close()

	result := pool.QueryAsync(router, routegraph.QueryInput{
		Start: start,
		End:   end,
		Car:   routegraph.CarConfig{Kind: routegraph.NoCar},
	}, nil)

	select {
	case got := <-result:
		assert.True(t, got.Found)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for pool result")
	}
}

func TestPoolRunsManyQueriesConcurrently(t *testing.T) {
	router, start, end := buildRouter(t)
	pool := routepool.New(4)
	defer pool.Close()

	channels := make([]<-chan routepool.Result, 0, 10)
	for i := 0; i < 10; i++ {
		channels = append(channels, pool.QueryAsync(router, routegraph.QueryInput{
			Start: start,
			End:   end,
			Car:   routegraph.CarConfig{Kind: routegraph.NoCar},
		}, nil))
	}

	for _, ch := range channels {
		select {
		case got := <-ch:
			require.True(t, got.Found)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for pool result")
		}
	}
}
