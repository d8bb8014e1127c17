package trigger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metrosim/internal/trigger"
)

func TestStepOrdersByTimeThenKind(t *testing.T) {
	q := trigger.NewQueue()
	q.Push(trigger.DoublingTrigger{}, 5)
	q.Push(trigger.DummyTrigger{}, 5)
	q.Push(trigger.DummyTrigger{}, 1)

	tr, time, ok := q.Step(10)
	require.True(t, ok)
	assert.Equal(t, uint64(1), time)
	assert.Equal(t, trigger.KindDummy, tr.Kind())

	tr, time, ok = q.Step(10)
	require.True(t, ok)
	assert.Equal(t, uint64(5), time)
	assert.Equal(t, trigger.KindDummy, tr.Kind(), "DummyTrigger sorts before DoublingTrigger at equal time")

	tr, time, ok = q.Step(10)
	require.True(t, ok)
	assert.Equal(t, uint64(5), time)
	assert.Equal(t, trigger.KindDoubling, tr.Kind())

	_, _, ok = q.Step(10)
	assert.False(t, ok)
}

func TestStepStopsAtTargetTime(t *testing.T) {
	q := trigger.NewQueue()
	q.Push(trigger.DummyTrigger{}, 100)

	_, _, ok := q.Step(50)
	assert.False(t, ok, "trigger scheduled after the target time must not fire yet")

	q.Advance(50)
	assert.Equal(t, uint64(50), q.CurrentTime())
	assert.Equal(t, 1, q.Len())
}

func TestPushBeforeCurrentTimePanics(t *testing.T) {
	q := trigger.NewQueue()
	q.Advance(10)
	assert.Panics(t, func() { q.Push(trigger.DummyTrigger{}, 5) })
}

// TestDoublingTriggerReachesSixtyFour drives a single DoublingTrigger
// through six ticks, draining every entry due at each tick before
// advancing, and asserts the population doubles every step: 1, 2, 4,
// 8, 16, 32, 64.
func TestDoublingTriggerReachesSixtyFour(t *testing.T) {
	q := trigger.NewQueue()
	q.Push(trigger.DoublingTrigger{}, 0)

	want := 1
	for tick := uint64(0); tick <= 6; tick++ {
		count := 0
		for {
			tr, time, ok := q.Step(tick)
			if !ok {
				break
			}
			require.Equal(t, tick, time)
			dt := tr.(trigger.DoublingTrigger)
			count++
			dt.Fire(q, time)
		}
		q.Advance(tick)
		if tick == 0 {
			assert.Equal(t, 1, count)
		} else {
			assert.Equal(t, want, count)
		}
		want *= 2
	}
}
