package main

import (
	"fmt"
	"math/rand/v2"
	"time"

	"metrosim/internal/agent"
	"metrosim/internal/config"
	"metrosim/internal/engine"
	"metrosim/internal/fields"
	"metrosim/internal/network"
	"metrosim/internal/quadtree"
	"metrosim/internal/tile"
)

// bootstrapParams is everything needed to synthesize a fresh city when
// no state dump exists yet for run to load. There is no real-world
// transport network or dataset ingestion here (out of scope, same as
// internal/tile's own "map file I/O... out of scope" note) — just a
// random tile grid and a randomly housed resident roster, enough to
// exercise the full simulation loop end to end.
type bootstrapParams struct {
	Config           config.Config
	AgentCount       int
	HousingDensity   uint32
	WorkplaceDensity uint32
	Seed1, Seed2     uint64
	PoolSize         int
}

func bootstrapEngine(p bootstrapParams) (*engine.Engine, error) {
	world := fields.NewWorld(p.Config.MaxDepth)
	rng := rand.New(rand.NewPCG(p.Seed1, p.Seed2))
	if err := generateTiles(world, quadtree.RootAddress(), 0, p.Config.MaxDepth, p.HousingDensity, p.WorkplaceDensity, rng); err != nil {
		return nil, fmt.Errorf("metrosim: generating world: %w", err)
	}

	e, err := engine.New(p.Config, world, network.NewRailways(), network.NewHighways(), map[uint64]*network.MetroLine{}, p.Seed1, p.Seed2, p.PoolSize)
	if err != nil {
		return nil, err
	}

	if err := seedAgents(e, p.AgentCount, rng); err != nil {
		return nil, err
	}
	e.InitTriggerQueue()
	return e, nil
}

// generateTiles recursively splits every node down to maxDepth, drawing
// each leaf's tile kind from a fixed weighting: mostly empty lots, a
// healthy minority of housing and workplace blocks, and a thin
// sprinkling of water.
func generateTiles(world *fields.World, addr quadtree.Address, depth, maxDepth uint32, housingDensity, workplaceDensity uint32, rng *rand.Rand) error {
	if depth == maxDepth {
		leaf, err := world.Leaf(addr)
		if err != nil {
			return err
		}
		leaf.Tile = drawTile(rng, housingDensity, workplaceDensity)
		return nil
	}

	childData := quadtree.NewQuadMap(
		fields.LeafData{Tile: tile.NewEmpty()},
		fields.LeafData{Tile: tile.NewEmpty()},
		fields.LeafData{Tile: tile.NewEmpty()},
		fields.LeafData{Tile: tile.NewEmpty()},
	)
	if err := world.Split(addr, fields.BranchData{}, childData); err != nil {
		return err
	}
	for _, q := range quadtree.Quadrants {
		if err := generateTiles(world, addr.Child(q), depth+1, maxDepth, housingDensity, workplaceDensity, rng); err != nil {
			return err
		}
	}
	return nil
}

func drawTile(rng *rand.Rand, housingDensity, workplaceDensity uint32) tile.Tile {
	switch draw := rng.Float64(); {
	case draw < 0.35:
		return tile.NewHousing(housingDensity)
	case draw < 0.55:
		return tile.NewWorkplace(workplaceDensity)
	case draw < 0.58:
		return tile.NewWater()
	default:
		return tile.NewEmpty()
	}
}

// seedAgents makes count placement draws over Housing tiles; a draw that
// lands on a full tile is skipped, so fewer than count residents may be
// placed. Each is left without a workplace: AgentLifeDecisions
// finds them one within the first couple of simulated days.
func seedAgents(e *engine.Engine, count int, rng *rand.Rand) error {
	housing := e.CollectTiles.Housing
	if len(housing) == 0 {
		return fmt.Errorf("metrosim: generated world has no housing tiles")
	}
	for i := 0; i < count; i++ {
		addr := housing[rng.IntN(len(housing))]
		leaf, err := e.World.Leaf(addr)
		if err != nil {
			return err
		}
		if leaf.Tile.Vacancy() == 0 {
			continue
		}
		birthYear := 1945 + rng.IntN(65)
		data := agent.AgentData{
			Birthday:         time.Date(birthYear, time.Month(1+rng.IntN(12)), 1+rng.IntN(28), 0, 0, 0, 0, time.UTC),
			YearsOfEducation: uint32(8 + rng.IntN(16)),
		}
		a := agent.NewAgent(e.NextAgentID(), data, addr)
		if err := e.AddAgent(a); err != nil {
			return err
		}
	}
	return nil
}
