// Package config loads the simulation's TOML configuration and exposes
// the derived physical constants the rest of the engine is built around.
package config

import (
	"fmt"
	"math"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Config is the user-editable subset of simulation parameters, loaded
// from a TOML file.
type Config struct {
	// MaxDepth bounds how many times the quadtree may split below its
	// root; the fully expanded grid is 2^MaxDepth tiles wide.
	MaxDepth uint32 `toml:"max_depth"`
	// MinTileSize is the number of meters represented by one smallest
	// tile.
	MinTileSize uint32 `toml:"min_tile_size"`
	// PeoplePerSim is how many real people one simulated agent stands
	// in for, used to scale congestion capacity.
	PeoplePerSim uint32 `toml:"people_per_sim"`
}

// Default physical constants, grounded on the original highway and local
// road traffic models. These are not user-configurable in the TOML file;
// they are properties of the simulation's traffic model, not the map.
const (
	// DefaultSpeed is used for highway segments with no known speed
	// limit, in meters per second (~60 mph).
	DefaultSpeed = 27.0
	// DefaultLanes is used for highway segments with no known lane
	// count, per direction.
	DefaultLanes = 2.0

	// HighwayCriticalCapacityFactor is the number of cars that can pass
	// through a 1m stretch at 1m/s before congestion passes the
	// critical threshold where a significant slowdown begins.
	HighwayCriticalCapacityFactor = 0.04
	// LocalRoadCriticalCapacityFactor is the equivalent factor for the
	// local-road grid, which is coarser and uses area rather than a
	// segment's length/speed/lanes.
	LocalRoadCriticalCapacityFactor = 0.05

	// JamFactor is the multiple of critical capacity at which a
	// highway segment is considered at a standstill.
	JamFactor = 4.0
	// LinearCongestionFactor is how much slower travel is at exactly
	// critical capacity compared to an empty road (1.1 means 10%
	// slower).
	LinearCongestionFactor = 1.1
	// ExponentialCongestionFactor controls how much worse travel gets
	// beyond critical capacity (3.22 means roughly 7.5x slower at twice
	// critical capacity).
	ExponentialCongestionFactor = 3.22
	// MaxCongestedTime bounds any single edge's congested travel time,
	// in seconds (10 hours).
	MaxCongestedTime = 3600.0 * 10.0

	// RampTime is the fixed cost of entering or leaving a highway, in
	// seconds.
	RampTime = 30.0
	// StationTime is the fixed cost of a metro embark/disembark stop,
	// in seconds.
	StationTime = 30.0
	// MaxAcceleration bounds vehicle speed-up/slow-down, in m/s^2.
	MaxAcceleration = 1.5

	// LocalZoneBlockSize is the width of one local-road congestion grid
	// cell, in meters.
	LocalZoneBlockSize = 500.0

	// ObservationWeight is the running-estimate weight given to each
	// new congestion observation folded into history.
	ObservationWeight = 0.3
	// WorldStateHistorySnapshots is the number of ring-buffer slots
	// kept, spanning one simulated day.
	WorldStateHistorySnapshots = 48

	// RouteAsyncDeadline is how long the scheduler waits for an
	// asynchronously planned route before falling back to a blocking
	// join, in simulated seconds.
	RouteAsyncDeadline = 5.0
)

// Load reads and parses a TOML configuration file.
func Load(path string) (Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "loading config from %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadString parses TOML configuration from an in-memory string, used by
// tests and by callers that already have config contents loaded.
func LoadString(data string) (Config, error) {
	var cfg Config
	if _, err := toml.Decode(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "decoding config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations that would produce a degenerate
// simulation (zero-width grid, zero-size tiles, nobody simulated).
func (c Config) Validate() error {
	if c.MaxDepth == 0 {
		return errors.New("config: max_depth must be at least 1")
	}
	if c.MinTileSize == 0 {
		return errors.New("config: min_tile_size must be positive")
	}
	if c.PeoplePerSim == 0 {
		return errors.New("config: people_per_sim must be positive")
	}
	return nil
}

// GridWidth returns the fully expanded quadtree's side length, in tiles.
func (c Config) GridWidth() uint64 {
	return uint64(1) << c.MaxDepth
}

// EvenDownsample returns the smallest power of two downsample factor d
// such that min_tile_size * d is at least blockSizeMeters, matching the
// local-road congestion grid's resolution.
func (c Config) EvenDownsample(blockSizeMeters float64) uint32 {
	target := blockSizeMeters / float64(c.MinTileSize)
	if target <= 1 {
		return 1
	}
	return uint32(math.Pow(2, math.Ceil(math.Log2(target))))
}

// String renders the config for logging.
func (c Config) String() string {
	return fmt.Sprintf("Config{max_depth=%d, min_tile_size=%d, people_per_sim=%d}",
		c.MaxDepth, c.MinTileSize, c.PeoplePerSim)
}
