// Package tile defines the plain-data tile contract consumed by the
// quadtree, fields pass, and agent state machine. It deliberately carries
// no behavior beyond invariant-preserving agent bookkeeping: map file
// I/O, rendering, and dataset preprocessing are out of scope here.
package tile

import "errors"

// AgentID identifies an agent without pulling in the agent package,
// keeping tile a leaf dependency.
type AgentID uint64

// Kind tags which variant a Tile carries.
type Kind int8

const (
	Empty Kind = iota
	Water
	Housing
	Workplace
	MetroStation
)

func (k Kind) String() string {
	switch k {
	case Empty:
		return "Empty"
	case Water:
		return "Water"
	case Housing:
		return "Housing"
	case Workplace:
		return "Workplace"
	case MetroStation:
		return "MetroStation"
	default:
		return "invalid"
	}
}

var (
	ErrNotResidential     = errors.New("tile: not a Housing or Workplace tile")
	ErrTileFull           = errors.New("tile: agent count already at density")
	ErrAgentAlreadyListed = errors.New("tile: agent already listed on this tile")
	ErrAgentNotListed     = errors.New("tile: agent not listed on this tile")
)

// Tile is a closed-set tagged variant: which fields are meaningful is
// determined entirely by Kind.
type Tile struct {
	Kind Kind

	// Density and Agents apply to Housing and Workplace only.
	Density uint32
	Agents  []AgentID

	// StationName applies to MetroStation only.
	StationName string
}

func NewEmpty() Tile { return Tile{Kind: Empty} }
func NewWater() Tile { return Tile{Kind: Water} }

func NewHousing(density uint32) Tile {
	return Tile{Kind: Housing, Density: density}
}

func NewWorkplace(density uint32) Tile {
	return Tile{Kind: Workplace, Density: density}
}

func NewMetroStation(name string) Tile {
	return Tile{Kind: MetroStation, StationName: name}
}

// IsResidential reports whether this tile carries an agents list at all.
func (t *Tile) IsResidential() bool {
	return t.Kind == Housing || t.Kind == Workplace
}

// HasAgent reports whether id is listed on this tile.
func (t *Tile) HasAgent(id AgentID) bool {
	for _, a := range t.Agents {
		if a == id {
			return true
		}
	}
	return false
}

// AddAgent lists id on this tile, enforcing that Housing/Workplace tiles
// never carry more agents than their density and never list the same
// agent twice.
func (t *Tile) AddAgent(id AgentID) error {
	if !t.IsResidential() {
		return ErrNotResidential
	}
	if t.HasAgent(id) {
		return ErrAgentAlreadyListed
	}
	if uint32(len(t.Agents)) >= t.Density {
		return ErrTileFull
	}
	t.Agents = append(t.Agents, id)
	return nil
}

// RemoveAgent unlists id from this tile.
func (t *Tile) RemoveAgent(id AgentID) error {
	if !t.IsResidential() {
		return ErrNotResidential
	}
	for i, a := range t.Agents {
		if a == id {
			t.Agents = append(t.Agents[:i], t.Agents[i+1:]...)
			return nil
		}
	}
	return ErrAgentNotListed
}

// Vacancy reports how many more agents this tile can hold.
func (t *Tile) Vacancy() uint32 {
	if !t.IsResidential() {
		return 0
	}
	if uint32(len(t.Agents)) >= t.Density {
		return 0
	}
	return t.Density - uint32(len(t.Agents))
}
