package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metrosim/internal/quadtree"
	"metrosim/internal/tile"
)

type constRand struct{ value float64 }

func (r constRand) Float64() float64 { return r.value }

func TestDemandSamplerNoCandidatesWhenNoEmptyTiles(t *testing.T) {
	world := NewWorld(0)
	leaf, err := world.Leaf(quadtree.RootAddress())
	require.NoError(t, err)
	leaf.Tile = tile.NewHousing(1)
	leaf.Fields.Demand.WorkplaceDemand = WeightedAverage{Value: 5, Count: 1}

	s := NewDemandSampler(world)
	_, ok := s.Sample(constRand{value: 0.5})
	assert.False(t, ok)
}

func TestDemandSamplerPicksOnlyPositiveWeightEmptyLeaf(t *testing.T) {
	world := NewWorld(0)
	leaf, err := world.Leaf(quadtree.RootAddress())
	require.NoError(t, err)
	leaf.Tile = tile.NewEmpty()
	leaf.Fields.Demand.WorkplaceDemand = WeightedAverage{Value: 3, Count: 1}

	s := NewDemandSampler(world)
	addr, ok := s.Sample(constRand{value: 0.1})
	require.True(t, ok)
	assert.Equal(t, quadtree.RootAddress(), addr)
}
