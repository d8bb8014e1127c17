package worldstate

import (
	"encoding/json"

	"metrosim/internal/quadtree"
)

// stateEntries is State's wire shape: encoding/json cannot key a map on a
// struct (MetroSegmentKey, LocalRoadCell, quadtree.Address all are), so
// each counter family round-trips as a flat slice of key/value pairs
// instead, matching the "{state, world_state, ...}" persistence shape
// spec.md names without inventing a stand-in string key encoding for
// quadtree.Address.
type stateEntries struct {
	HighwaySegments []highwayEntry `json:"highway_segments"`
	MetroSegments   []metroEntry   `json:"metro_segments"`
	LocalRoadCells  []localEntry   `json:"local_road_cells"`
	ParkingTiles    []parkingEntry `json:"parking_tiles"`
}

type highwayEntry struct {
	Segment uint64 `json:"segment"`
	Count   uint64 `json:"count"`
}

type metroEntry struct {
	Key   MetroSegmentKey `json:"key"`
	Count uint64          `json:"count"`
}

type localEntry struct {
	Cell  LocalRoadCell `json:"cell"`
	Count uint64        `json:"count"`
}

type parkingEntry struct {
	Addr  quadtree.Address `json:"addr"`
	Count uint64           `json:"count"`
}

// MarshalJSON encodes every counter entry held, including ones
// decremented back to zero, as a flat entry list.
func (s *State) MarshalJSON() ([]byte, error) {
	out := stateEntries{}
	for seg, n := range s.highwaySegments {
		out.HighwaySegments = append(out.HighwaySegments, highwayEntry{Segment: seg, Count: n})
	}
	for key, n := range s.metroSegments {
		out.MetroSegments = append(out.MetroSegments, metroEntry{Key: key, Count: n})
	}
	for cell, n := range s.localRoadCells {
		out.LocalRoadCells = append(out.LocalRoadCells, localEntry{Cell: cell, Count: n})
	}
	for addr, n := range s.parkingTiles {
		out.ParkingTiles = append(out.ParkingTiles, parkingEntry{Addr: addr, Count: n})
	}
	return json.Marshal(out)
}

// UnmarshalJSON rebuilds the counter maps from the flat entry lists.
func (s *State) UnmarshalJSON(data []byte) error {
	var in stateEntries
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*s = *New()
	for _, e := range in.HighwaySegments {
		s.highwaySegments[e.Segment] = e.Count
	}
	for _, e := range in.MetroSegments {
		s.metroSegments[e.Key] = e.Count
	}
	for _, e := range in.LocalRoadCells {
		s.localRoadCells[e.Cell] = e.Count
	}
	for _, e := range in.ParkingTiles {
		s.parkingTiles[e.Addr] = e.Count
	}
	return nil
}

// historyWire is History's wire shape: the ring buffer's snapshots plus
// enough to reconstruct NewHistory's period without re-deriving it from
// a numSnapshots/periodSeconds pair that rounding could make lossy.
type historyWire struct {
	Snapshots []*State `json:"snapshots"`
	Period    uint64   `json:"period"`
}

func (h *History) MarshalJSON() ([]byte, error) {
	return json.Marshal(historyWire{Snapshots: h.snapshots, Period: h.period})
}

func (h *History) UnmarshalJSON(data []byte) error {
	var in historyWire
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	h.snapshots = in.Snapshots
	h.period = in.Period
	return nil
}
