package worldstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryPeriodSplitsDayEvenly(t *testing.T) {
	h := NewHistory(48, 86400)
	assert.Equal(t, uint64(1800), h.SnapshotPeriod())
	assert.Equal(t, 48, h.NumSnapshots())
}

func TestTakeSnapshotRequiresExactBoundary(t *testing.T) {
	h := NewHistory(2, 100)
	live := New()
	live.IncrementHighway(1)
	assert.Panics(t, func() { h.TakeSnapshot(live, 17) })
	assert.NotPanics(t, func() { h.TakeSnapshot(live, 50) })
}

func TestTakeSnapshotConvergesTowardObservation(t *testing.T) {
	h := NewHistory(2, 100)
	live := New()
	for i := 0; i < 4; i++ {
		live.highwaySegments[1] = 0
		for j := 0; j < 10; j++ {
			live.IncrementHighway(1)
		}
		h.TakeSnapshot(live, 50)
	}
	// after repeated observations of 10, the running estimate should be
	// close to (not necessarily exactly) 10.
	got := h.snapshots[1].HighwayTravelers(1)
	assert.Greater(t, got, uint64(5))
	assert.LessOrEqual(t, got, uint64(10))
}

func TestPredictorInterpolatesBetweenSlots(t *testing.T) {
	h := NewHistory(2, 100)
	live := New()
	for i := 0; i < 20; i++ {
		live.highwaySegments[1] = 0
		for j := 0; j < 10; j++ {
			live.IncrementHighway(1)
		}
		h.TakeSnapshot(live, 0)
		live.highwaySegments[1] = 0
		for j := 0; j < 20; j++ {
			live.IncrementHighway(1)
		}
		h.TakeSnapshot(live, 50)
	}

	predictor := h.Predictor(25)
	got := predictor.HighwayTravelers(1)
	require.Greater(t, got, uint64(9))
	require.Less(t, got, uint64(21))
}
