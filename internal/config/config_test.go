package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadStringValid(t *testing.T) {
	cfg, err := LoadString(`
max_depth = 10
min_tile_size = 50
people_per_sim = 10
`)
	require.NoError(t, err)
	assert.Equal(t, uint32(10), cfg.MaxDepth)
	assert.Equal(t, uint64(1024), cfg.GridWidth())
}

func TestLoadStringRejectsZeroFields(t *testing.T) {
	_, err := LoadString(`
max_depth = 0
min_tile_size = 50
people_per_sim = 10
`)
	assert.Error(t, err)
}

func TestEvenDownsample(t *testing.T) {
	cfg := Config{MaxDepth: 10, MinTileSize: 100, PeoplePerSim: 1}
	// block size 500m over 100m tiles wants downsample >= 5, rounded up
	// to the nearest power of two: 8.
	assert.Equal(t, uint32(8), cfg.EvenDownsample(LocalZoneBlockSize))

	exact := Config{MaxDepth: 10, MinTileSize: 125, PeoplePerSim: 1}
	// 500 / 125 == 4 exactly, already a power of two.
	assert.Equal(t, uint32(4), exact.EvenDownsample(LocalZoneBlockSize))
}
