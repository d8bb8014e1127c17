package trigger

// DummyTrigger is a minimal recurring trigger used to exercise the
// queue: it reschedules itself one tick later every time it fires.
type DummyTrigger struct{}

func (DummyTrigger) Kind() Kind { return KindDummy }

// Fire re-pushes the dummy trigger for the next tick.
func (d DummyTrigger) Fire(q *Queue, time uint64) {
	q.Push(d, time+1)
}

// DoublingTrigger pushes two copies of itself one tick later each time
// it fires, doubling the number of pending doubling triggers per tick.
// Used to exercise exponential queue growth.
type DoublingTrigger struct{}

func (DoublingTrigger) Kind() Kind { return KindDoubling }

// Fire re-pushes two copies of the doubling trigger for the next tick.
func (d DoublingTrigger) Fire(q *Queue, time uint64) {
	q.Push(d, time+1)
	q.Push(d, time+1)
}
