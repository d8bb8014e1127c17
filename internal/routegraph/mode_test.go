package routegraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModeLinearSpeedOrdering(t *testing.T) {
	assert.Less(t, Walking.LinearSpeed(), Biking.LinearSpeed())
	assert.Less(t, Biking.LinearSpeed(), Driving.LinearSpeed())
}

func TestModeBridgeRadiusValues(t *testing.T) {
	assert.Equal(t, 800.0, Walking.BridgeRadius())
	assert.Equal(t, 3200.0, Biking.BridgeRadius())
	assert.Equal(t, 1000.0, Driving.BridgeRadius())
}

func TestModeUnknownLinearSpeedPanicsStringInvalid(t *testing.T) {
	var m Mode = 99
	assert.Panics(t, func() { m.LinearSpeed() })
	assert.Equal(t, "invalid", m.String())
}
