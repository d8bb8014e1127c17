package routegraph

import (
	"sort"

	"metrosim/internal/network"
	"metrosim/internal/quadtree"
)

// BaseGraphInput is everything base graph construction needs: the static
// transport networks, the metro service timetables keyed by a caller-
// chosen line id (the same id Edge.MetroLine and costContext.MetroLines/
// Splines are keyed by), and the physical scale constants.
type BaseGraphInput struct {
	Railways   *network.Railways
	Highways   *network.Highways
	MetroLines map[uint64]*network.MetroLine

	TileSize        float64
	MaxAcceleration float64
	PeoplePerSim    uint32
	MaxDepth        uint32

	DefaultHighwaySpeed uint32
	DefaultHighwayLanes uint32
}

// BaseGraph is a freshly built routing graph plus the per-line splines
// computed along the way, which a costContext needs for embark-cost and
// mid-edge position lookups.
type BaseGraph struct {
	Graph   *Graph
	Splines map[uint64]*network.LineSplines
}

type stationEntry struct {
	ID      NodeID
	Station network.Station
}

// BuildBase constructs the base routing graph in the deterministic
// seven-step order: metro station/parking pairs, metro stops and
// segments, highway junctions and ramps, highway segments, and per-mode
// Delaunay inference edges. Preparing a contraction hierarchy over the
// result is the caller's job (Prepare), since it is also what a periodic
// weight refresh re-runs without rebuilding the graph itself.
func BuildBase(in BaseGraphInput) *BaseGraph {
	g := newGraph(in.MaxDepth)
	splines := make(map[uint64]*network.LineSplines, len(in.MetroLines))

	stations := buildMetroStations(g, in)
	buildMetroLines(g, in, stations, splines)

	inner, outer := buildHighwayJunctions(g, in)
	buildHighwaySegments(g, in, inner)

	buildInferenceEdges(g, stations, outer, in.TileSize)

	return &BaseGraph{Graph: g, Splines: splines}
}

// scaledLocation returns a node's position in meters rather than raw
// tile-grid coordinates, for edges whose cost depends on physical
// distance.
func scaledLocation(g *Graph, id NodeID, tileSize float64) network.Point {
	loc := g.Node(id).Location(g.maxDepth)
	return network.Point{X: loc.X * tileSize, Y: loc.Y * tileSize}
}

// buildMetroStations allocates a MetroStation node and a walking/driving
// Parking pair for every distinct station address in the railway
// network, wiring the zero-distance walk between the station and its
// walking-side parking node and the park/unpark ModeTransition between
// the parking pair. The station is registered as a walking terminal.
func buildMetroStations(g *Graph, in BaseGraphInput) map[quadtree.Address]stationEntry {
	stations := make(map[quadtree.Address]stationEntry)

	var handles []network.JunctionHandle
	for h, j := range in.Railways.Junctions() {
		if j.Data.Station != nil {
			handles = append(handles, h)
		}
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })

	for _, h := range handles {
		station := *in.Railways.Junction(h).Data.Station
		if _, seen := stations[station.Address]; seen {
			continue
		}

		stationID := g.AddNode(metroStationNode(station))
		parkWalk := g.AddNode(parkingNode(station.Address))
		parkDrive := g.AddNode(parkingNode(station.Address))

		stationPos := scaledLocation(g, stationID, in.TileSize)
		g.AddEdge(stationID, parkWalk, modeSegmentEdge(Walking, stationPos, stationPos))
		g.AddEdge(parkWalk, stationID, modeSegmentEdge(Walking, stationPos, stationPos))

		g.AddEdge(parkDrive, parkWalk, modeTransitionEdge(Driving, Walking, station.Address))
		g.AddEdge(parkWalk, parkDrive, modeTransitionEdge(Walking, Driving, station.Address))

		g.AddTerminal(Walking, stationID)

		stations[station.Address] = stationEntry{ID: stationID, Station: station}
	}

	return stations
}

// buildMetroLines allocates one MetroStop node per station a line
// visits, links it to the shared MetroStation node by embark/disembark
// edges, and chains consecutive stops with MetroSegment edges timed from
// the line's splines.
func buildMetroLines(g *Graph, in BaseGraphInput, stations map[quadtree.Address]stationEntry, splines map[uint64]*network.LineSplines) {
	var lineIDs []uint64
	for id := range in.MetroLines {
		lineIDs = append(lineIDs, id)
	}
	sort.Slice(lineIDs, func(i, j int) bool { return lineIDs[i] < lineIDs[j] })

	for _, lineID := range lineIDs {
		line := in.MetroLines[lineID]
		ls := line.Splines(in.Railways, in.TileSize, in.MaxAcceleration)
		splines[lineID] = ls

		addrs := lineStationVisitOrder(line, in.Railways)

		var prevStopID NodeID
		var prevTime float64
		havePrev := false

		for _, addr := range addrs {
			entry, ok := stations[addr]
			if !ok {
				continue
			}

			stopID := g.AddNode(metroStopNode(entry.Station, lineID))
			g.AddEdge(entry.ID, stopID, metroEmbarkEdge(lineID, entry.Station))
			g.AddEdge(stopID, entry.ID, metroDisembarkEdge(lineID, entry.Station))

			stopTime := ls.TimeMap[addr]
			if havePrev {
				g.AddEdge(prevStopID, stopID, metroSegmentEdge(lineID, stopTime-prevTime, addrs[0], addr))
			}
			prevStopID = stopID
			prevTime = stopTime
			havePrev = true
		}
	}
}

// lineStationVisitOrder walks a line's oriented segment chain and
// returns the address of every station junction it passes through, in
// travel order, each listed once at its first occurrence.
func lineStationVisitOrder(line *network.MetroLine, railways *network.Railways) []quadtree.Address {
	var addrs []quadtree.Address
	seen := make(map[quadtree.Address]bool)

	add := func(j network.JunctionHandle) {
		station := railways.Junction(j).Data.Station
		if station == nil || seen[station.Address] {
			return
		}
		seen[station.Address] = true
		addrs = append(addrs, station.Address)
	}

	segs := line.Segments()
	for i, os := range segs {
		if i == 0 {
			add(os.StartJunction(railways))
		}
		add(os.EndJunction(railways))
	}
	return addrs
}

// buildHighwayJunctions allocates a HighwayJunction node for every
// junction in the highway network; ramp junctions also get an outer node
// linked by a HighwayRamp edge, oriented by on-ramp vs off-ramp, and
// registered as a driving terminal.
func buildHighwayJunctions(g *Graph, in BaseGraphInput) (inner, outer map[network.JunctionHandle]NodeID) {
	inner = make(map[network.JunctionHandle]NodeID)
	outer = make(map[network.JunctionHandle]NodeID)

	var handles []network.JunctionHandle
	for h := range in.Highways.Junctions() {
		handles = append(handles, h)
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })

	for _, h := range handles {
		j := in.Highways.Junction(h)
		addr := j.Address(in.MaxDepth)
		innerID := g.AddNode(highwayJunctionNode(h, j.Location, addr))
		inner[h] = innerID

		if j.Data.Ramp == nil {
			continue
		}

		outerID := g.AddNode(highwayRampNode(h, j.Location, addr))
		outer[h] = outerID

		rampPos := scaledLocation(g, innerID, in.TileSize)
		if *j.Data.Ramp == network.OnRamp {
			g.AddEdge(outerID, innerID, highwayRampEdge(rampPos))
		} else {
			g.AddEdge(innerID, outerID, highwayRampEdge(rampPos))
		}

		g.AddTerminal(Driving, outerID)
	}

	return inner, outer
}

// buildHighwaySegments adds a directed Highway edge between every
// segment's endpoint junction nodes, falling back to the configured
// default speed/lane count for segments with no known value.
func buildHighwaySegments(g *Graph, in BaseGraphInput, inner map[network.JunctionHandle]NodeID) {
	var handles []network.SegmentHandle
	for h := range in.Highways.Segments() {
		handles = append(handles, h)
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })

	for _, h := range handles {
		seg := in.Highways.Segment(h)
		data := seg.Data
		if data.SpeedLimit == 0 {
			data.SpeedLimit = in.DefaultHighwaySpeed
		}
		if data.Lanes == 0 {
			data.Lanes = in.DefaultHighwayLanes
		}

		lengthMeters := seg.Length() * in.TileSize
		from := inner[seg.StartJunction()]
		to := inner[seg.EndJunction()]
		g.AddEdge(from, to, highwayEdge(uint64(h), data, lengthMeters, in.PeoplePerSim))
	}
}

// buildInferenceEdges runs a Delaunay triangulation over each mode's
// terminal points (in raw tile-grid coordinates) and adds bidirectional
// ModeSegment edges for every triangulation edge whose physical length
// is shorter than that mode's bridge radius. Biking has no terminal
// producer of its own in the base graph's deterministic steps, so it
// shares the walking terminal set: anywhere a pedestrian can start or
// end, a bike can too.
func buildInferenceEdges(g *Graph, stations map[quadtree.Address]stationEntry, outer map[network.JunctionHandle]NodeID, tileSize float64) {
	var stationIDs []NodeID
	for _, entry := range stations {
		stationIDs = append(stationIDs, entry.ID)
	}
	sort.Slice(stationIDs, func(i, j int) bool { return stationIDs[i] < stationIDs[j] })
	var walkPoints []delaunayPoint
	for _, id := range stationIDs {
		loc := g.Node(id).Location(g.maxDepth)
		walkPoints = append(walkPoints, delaunayPoint{X: loc.X, Y: loc.Y, ID: id})
	}

	var driveIDs []NodeID
	for _, id := range outer {
		driveIDs = append(driveIDs, id)
	}
	sort.Slice(driveIDs, func(i, j int) bool { return driveIDs[i] < driveIDs[j] })
	var drivePoints []delaunayPoint
	for _, id := range driveIDs {
		loc := g.Node(id).Location(g.maxDepth)
		drivePoints = append(drivePoints, delaunayPoint{X: loc.X, Y: loc.Y, ID: id})
	}

	addInferenceEdges(g, Walking, walkPoints, tileSize)
	addInferenceEdges(g, Biking, walkPoints, tileSize)
	addInferenceEdges(g, Driving, drivePoints, tileSize)
}

func addInferenceEdges(g *Graph, mode Mode, points []delaunayPoint, tileSize float64) {
	byID := make(map[NodeID]delaunayPoint, len(points))
	for _, p := range points {
		byID[p.ID] = p
	}

	for _, e := range delaunayTriangulate(points) {
		a, b := byID[e.A], byID[e.B]
		pa := network.Point{X: a.X * tileSize, Y: a.Y * tileSize}
		pb := network.Point{X: b.X * tileSize, Y: b.Y * tileSize}
		if pa.Distance(pb) >= mode.BridgeRadius() {
			continue
		}
		g.AddEdge(a.ID, b.ID, modeSegmentEdge(mode, pa, pb))
		g.AddEdge(b.ID, a.ID, modeSegmentEdge(mode, pb, pa))
	}
}
