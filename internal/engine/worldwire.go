package engine

import (
	"metrosim/internal/fields"
	"metrosim/internal/quadtree"
	"metrosim/internal/tile"
)

// worldWire is a tile quadtree folded into a plain struct tree: nil
// Children means a leaf carrying Tile, a non-nil Children means a
// branch (which carries no tile of its own). Derived Fields are never
// persisted; UpdateFields recomputes them fully after every load, same
// as a freshly built world.
type worldWire struct {
	Tile     tile.Tile      `json:"tile,omitempty"`
	Children *[4]*worldWire `json:"children,omitempty"`
}

type worldFolder struct{}

func (worldFolder) FoldLeaf(leaf *fields.LeafData, _ quadtree.VisitData) (*worldWire, error) {
	return &worldWire{Tile: leaf.Tile}, nil
}

func (worldFolder) FoldBranch(_ *fields.BranchData, children quadtree.QuadMap[*worldWire], _ quadtree.VisitData) (*worldWire, error) {
	var kids [4]*worldWire
	for i, q := range quadtree.Quadrants {
		kids[i] = children.Get(q)
	}
	return &worldWire{Children: &kids}, nil
}

// dumpWorld folds world into its wire tree.
func dumpWorld(world *fields.World) (*worldWire, error) {
	return quadtree.Fold[fields.BranchData, fields.LeafData, *worldWire](world, worldFolder{})
}

// loadWorld rebuilds a world of the given max depth from a wire tree,
// splitting and setting each leaf in the same order the original was
// built in.
func loadWorld(w *worldWire, maxDepth uint32) (*fields.World, error) {
	world := fields.NewWorld(maxDepth)
	if err := buildWorldNode(world, quadtree.RootAddress(), w); err != nil {
		return nil, err
	}
	return world, nil
}

func buildWorldNode(world *fields.World, addr quadtree.Address, w *worldWire) error {
	if w.Children == nil {
		leaf, err := world.Leaf(addr)
		if err != nil {
			return err
		}
		leaf.Tile = w.Tile
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
	for i, q := range quadtree.Quadrants {
		if err := buildWorldNode(world, addr.Child(q), w.Children[i]); err != nil {
			return err
		}
	}
	return nil
}
