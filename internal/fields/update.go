package fields

import (
	"metrosim/internal/config"
	"metrosim/internal/quadtree"
)

// FieldsState is the full set of derived quantities carried at every
// node of a World: population and employment aggregates, raw and
// blurred land value/construction cost, and raw and blurred workplace
// demand. Fields are never persisted; UpdateFields recomputes the
// entire tree from the tile data and agent roster every time it runs.
type FieldsState struct {
	Population   Population   `json:"population"`
	Employment   Employment   `json:"employment"`
	RawLandValue RawLandValue `json:"raw_land_value"`
	LandValue    LandValue    `json:"land_value"`
	RawDemand    RawDemand    `json:"raw_demand"`
	Demand       Demand       `json:"demand"`
}

// landValueBlurRadius and constructionCostBlurRadius are the Gaussian
// blur radii, in meters, UpdateFields smooths raw land value and
// construction cost over.
const (
	landValueBlurRadius       = 800.0
	constructionCostBlurRadius = 300.0

	// workplaceDemandBlurRadius smooths raw workplace demand over a
	// radius between the two above: demand for a new workplace should
	// draw from a wider catchment than a single construction site, but
	// narrower than city-wide land value trends.
	workplaceDemandBlurRadius = 550.0

	// fieldBlockSize is the width of the downsampled grid a blur
	// operates on, in meters; chosen for blur performance independent
	// of any one radius.
	fieldBlockSize = 200.0
)

// fieldPass distinguishes the two fold passes UpdateFields runs.
type fieldPass int8

const (
	passFirst fieldPass = iota
	passSecond
)

// foldResult is what every node folds to: whether this node's fields
// changed relative to before this UpdateFields run, plus its resulting
// FieldsState (so a branch's fold can read its children's values
// without a second tree walk).
type foldResult struct {
	changed bool
	fields  FieldsState
}

// snapshotEntry is the pre-blur (land value, demand) pair captured for
// a leaf during the first fold pass, diffed against the post-blur
// values in the second pass to seed each leaf's changed flag.
type snapshotEntry struct {
	landValue LandValue
	demand    Demand
}

// updateFold implements quadtree.Folder across both of UpdateFields'
// passes, switching behavior on pass.
type updateFold struct {
	extra    ComputationData
	pass     fieldPass
	snapshot map[quadtree.Address]snapshotEntry
}

func (f *updateFold) FoldLeaf(leaf *LeafData, data quadtree.VisitData) (foldResult, error) {
	switch f.pass {
	case passFirst:
		f.snapshot[data.Address] = snapshotEntry{
			landValue: leaf.Fields.LandValue,
			demand:    leaf.Fields.Demand,
		}
		leaf.Fields.Population = computePopulationLeaf(leaf.Tile, data.Width, f.extra)
		leaf.Fields.Employment = computeEmploymentLeaf(leaf.Tile, data.Width, f.extra)
		leaf.Fields.RawLandValue = computeRawLandValueLeaf(leaf.Tile)
		leaf.Fields.RawDemand = computeRawDemandLeaf(leaf.Tile, data.Width, f.extra)
		return foldResult{changed: true, fields: leaf.Fields}, nil
	default: // passSecond
		prev := f.snapshot[data.Address]
		changed := prev.landValue != leaf.Fields.LandValue || prev.demand != leaf.Fields.Demand
		return foldResult{changed: changed, fields: leaf.Fields}, nil
	}
}

func (f *updateFold) FoldBranch(branch *BranchData, children quadtree.QuadMap[foldResult], data quadtree.VisitData) (foldResult, error) {
	changed := false
	for _, q := range quadtree.Quadrants {
		if children.Get(q).changed {
			changed = true
		}
	}

	if changed {
		switch f.pass {
		case passFirst:
			branch.Fields.Population = computePopulationBranch(children)
			branch.Fields.Employment = computeEmploymentBranch(children)
			branch.Fields.RawLandValue = computeRawLandValueBranch(landValueChildren(children))
			branch.Fields.RawDemand = computeRawDemandBranch(demandChildren(children))
		default: // passSecond
			branch.Fields.LandValue = aggregateLandValue(children)
			branch.Fields.Demand = aggregateDemand(children)
		}
	}

	return foldResult{changed: changed, fields: branch.Fields}, nil
}

func landValueChildren(children quadtree.QuadMap[foldResult]) [4]RawLandValue {
	var out [4]RawLandValue
	for i, q := range quadtree.Quadrants {
		out[i] = children.Get(q).fields.RawLandValue
	}
	return out
}

func demandChildren(children quadtree.QuadMap[foldResult]) [4]SimpleDensity {
	var out [4]SimpleDensity
	for i, q := range quadtree.Quadrants {
		out[i] = children.Get(q).fields.RawDemand.RawWorkplaceDemand
	}
	return out
}

func aggregateLandValue(children quadtree.QuadMap[foldResult]) LandValue {
	var out LandValue
	for _, q := range quadtree.Quadrants {
		lv := children.Get(q).fields.LandValue
		out.LandValue = out.LandValue.Add(lv.LandValue)
		out.ConstructionCost = out.ConstructionCost.Add(lv.ConstructionCost)
	}
	return out
}

func aggregateDemand(children quadtree.QuadMap[foldResult]) Demand {
	var out Demand
	for _, q := range quadtree.Quadrants {
		out.WorkplaceDemand = out.WorkplaceDemand.Add(children.Get(q).fields.Demand.WorkplaceDemand)
	}
	return out
}

// UpdateFields recomputes every node's FieldsState from scratch: a first
// fold pass over tile/agent data, a Gaussian blur of the raw land value,
// construction cost, and workplace demand layers, and a second fold pass
// that aggregates the now-blurred leaf values up through the branches.
// Running this twice in a row with no changes to tiles or agents between
// leaves every field bit-identical (idempotent).
func UpdateFields(world *World, extra ComputationData, cfg config.Config) error {
	fold := &updateFold{extra: extra, snapshot: make(map[quadtree.Address]snapshotEntry)}

	fold.pass = passFirst
	if _, err := quadtree.Fold[BranchData, LeafData, foldResult](world, fold); err != nil {
		return err
	}

	if err := blurLandValue(world, cfg); err != nil {
		return err
	}
	if err := blurWorkplaceDemand(world, cfg); err != nil {
		return err
	}

	fold.pass = passSecond
	if _, err := quadtree.Fold[BranchData, LeafData, foldResult](world, fold); err != nil {
		return err
	}

	return nil
}
