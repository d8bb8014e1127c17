package network

import (
	"encoding/json"
	"sort"
)

// junctionWire and segmentWire are the wire shapes AddJunction/AddSegment
// replay from. Only Active items are ever live in this simulation (no
// trigger ever stages a network edit), so change-set state and the
// derived incoming/outgoing adjacency are rebuilt by the replay itself
// rather than round-tripped.
type junctionWire[J any] struct {
	Location Point `json:"location"`
	Data     J     `json:"data"`
}

type segmentWire[S any] struct {
	Data  S       `json:"data"`
	Start uint64  `json:"start"`
	End   uint64  `json:"end"`
	Keys  []Point `json:"keys"`
}

type networkWire[J, S any] struct {
	Junctions []junctionWire[J] `json:"junctions"`
	Segments  []segmentWire[S]  `json:"segments"`
}

// MarshalJSON encodes a Network as the ordered junction/segment lists
// AddJunction/AddSegment were originally called with, relying on both
// counters only ever incrementing (no network edit ever removes or
// renumbers a handle in this simulation) so that replaying them back in
// ID order reproduces the exact same handles.
func (n *Network[J, S]) MarshalJSON() ([]byte, error) {
	var junctionIDs []JunctionHandle
	for id := range n.junctions {
		junctionIDs = append(junctionIDs, id)
	}
	sort.Slice(junctionIDs, func(i, j int) bool { return junctionIDs[i] < junctionIDs[j] })

	out := networkWire[J, S]{}
	for _, id := range junctionIDs {
		j := n.junctions[id]
		out.Junctions = append(out.Junctions, junctionWire[J]{Location: j.Location, Data: j.Data})
	}

	var segmentIDs []SegmentHandle
	for id := range n.segments {
		segmentIDs = append(segmentIDs, id)
	}
	sort.Slice(segmentIDs, func(i, j int) bool { return segmentIDs[i] < segmentIDs[j] })

	for _, id := range segmentIDs {
		s := n.segments[id]
		out.Segments = append(out.Segments, segmentWire[S]{
			Data:  s.Data,
			Start: uint64(s.start),
			End:   uint64(s.end),
			Keys:  s.keys,
		})
	}

	return json.Marshal(out)
}

// UnmarshalJSON rebuilds a Network by replaying AddJunction/AddSegment in
// the wire list's order.
func (n *Network[J, S]) UnmarshalJSON(data []byte) error {
	var in networkWire[J, S]
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	*n = *New[J, S]()
	for _, jw := range in.Junctions {
		n.AddJunction(jw.Location, jw.Data)
	}
	for _, sw := range in.Segments {
		n.AddSegment(sw.Data, JunctionHandle(sw.Start), JunctionHandle(sw.End), sw.Keys)
	}
	return nil
}

// metroLineWire is MetroLine's wire shape: its oriented segment chain is
// unexported only to keep callers from mutating it out from under
// Segments(), not because it needs deriving on reload.
type metroLineWire struct {
	Name       string                  `json:"name"`
	Schedule   FixedFrequencySchedule  `json:"schedule"`
	SpeedLimit uint32                  `json:"speed_limit"`
	Segments   []OrientedSegment       `json:"segments"`
}

func (m *MetroLine) MarshalJSON() ([]byte, error) {
	return json.Marshal(metroLineWire{Name: m.Name, Schedule: m.Schedule, SpeedLimit: m.SpeedLimit, Segments: m.segments})
}

func (m *MetroLine) UnmarshalJSON(data []byte) error {
	var in metroLineWire
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	m.Name = in.Name
	m.Schedule = in.Schedule
	m.SpeedLimit = in.SpeedLimit
	m.segments = in.Segments
	return nil
}
