package fields

import (
	"metrosim/internal/quadtree"
	"metrosim/internal/tile"
)

// Rand is the minimal randomness DemandSampler needs, narrow enough that
// callers can pass a *rand.Rand (or any other source) without this
// package importing math/rand itself.
type Rand interface {
	Float64() float64
}

// DemandSampler draws a siting address for a new workplace, weighted by
// each Empty leaf's blurred workplace demand. It walks the live world
// rather than a separately cached snapshot: UpdateFields always runs
// immediately before WorkplaceDecisions, so the tree's Demand values are
// already current.
type DemandSampler struct {
	world *World
}

// NewDemandSampler builds a sampler over world's current Demand fields.
func NewDemandSampler(world *World) *DemandSampler {
	return &DemandSampler{world: world}
}

type weightedAddress struct {
	address quadtree.Address
	weight  float64
}

// Sample draws one address, with probability proportional to each
// candidate leaf's demand weight (blurred workplace demand value times
// leaf area). Only Empty leaves are eligible: a workplace can't be sited
// on top of existing housing, another workplace, water, or a station.
// Sample reports ok=false when no leaf carries any positive weight.
func (s *DemandSampler) Sample(rng Rand) (addr quadtree.Address, ok bool) {
	var candidates []weightedAddress
	var total float64

	collector := &demandCollector{}
	if err := s.world.Visit(collector); err != nil {
		return quadtree.Address{}, false
	}
	candidates = collector.candidates
	for _, c := range candidates {
		total += c.weight
	}
	if total <= 0 {
		return quadtree.Address{}, false
	}

	draw := rng.Float64() * total
	for _, c := range candidates {
		draw -= c.weight
		if draw <= 0 {
			return c.address, true
		}
	}
	return candidates[len(candidates)-1].address, true
}

type demandCollector struct {
	candidates []weightedAddress
}

func (c *demandCollector) VisitBranchPre(_ *BranchData, _ quadtree.VisitData) (bool, error) {
	return true, nil
}

func (c *demandCollector) VisitLeaf(leaf *LeafData, data quadtree.VisitData) error {
	if leaf.Tile.Kind != tile.Empty {
		return nil
	}
	weight := leaf.Fields.Demand.WorkplaceDemand.Value * float64(data.Width*data.Width)
	if weight <= 0 {
		return nil
	}
	c.candidates = append(c.candidates, weightedAddress{address: data.Address, weight: weight})
	return nil
}

func (c *demandCollector) VisitBranchPost(_ *BranchData, _ quadtree.VisitData) error {
	return nil
}
