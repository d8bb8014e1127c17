// Package trigger implements the simulation's event scheduler: a
// time-ordered queue of Trigger values that fire at or before a target
// time, each free to reschedule itself or push new triggers as part of
// its own execution.
package trigger

import (
	"container/heap"
	"fmt"
)

// Kind tags which concrete Trigger a queue entry carries, used only to
// break time ties deterministically. Order matches the declaration
// order triggers are introduced in; it carries no other meaning.
type Kind int8

const (
	KindUpdateFields Kind = iota
	KindUpdateCollectTiles
	KindUpdateTraffic
	KindAgentPlanCommuteToWork
	KindAgentPlanCommuteHome
	KindAgentRouteStart
	KindAgentRouteAdvance
	KindAgentLifeDecisions
	KindWorkplaceDecisions
	KindDummy
	KindDoubling
)

func (k Kind) String() string {
	switch k {
	case KindUpdateFields:
		return "UpdateFields"
	case KindUpdateCollectTiles:
		return "UpdateCollectTiles"
	case KindUpdateTraffic:
		return "UpdateTraffic"
	case KindAgentPlanCommuteToWork:
		return "AgentPlanCommuteToWork"
	case KindAgentPlanCommuteHome:
		return "AgentPlanCommuteHome"
	case KindAgentRouteStart:
		return "AgentRouteStart"
	case KindAgentRouteAdvance:
		return "AgentRouteAdvance"
	case KindAgentLifeDecisions:
		return "AgentLifeDecisions"
	case KindWorkplaceDecisions:
		return "WorkplaceDecisions"
	case KindDummy:
		return "DummyTrigger"
	case KindDoubling:
		return "DoublingTrigger"
	default:
		return fmt.Sprintf("Kind(%d)", int8(k))
	}
}

// Trigger is anything that can sit in a Queue. Concrete triggers live
// in whichever package owns the state they touch; the queue only ever
// needs to know a trigger's tie-break Kind to keep pop order
// deterministic across runs.
type Trigger interface {
	Kind() Kind
}

// entry is one scheduled (trigger, time) pair.
type entry struct {
	trigger Trigger
	time    uint64
}

// minHeap orders entries by time ascending, tie-broken by Kind
// ascending, so container/heap's root is always the next trigger to
// fire.
type minHeap []entry

func (h minHeap) Len() int { return len(h) }
func (h minHeap) Less(i, j int) bool {
	if h[i].time != h[j].time {
		return h[i].time < h[j].time
	}
	return h[i].trigger.Kind() < h[j].trigger.Kind()
}
func (h minHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *minHeap) Push(x any)   { *h = append(*h, x.(entry)) }
func (h *minHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// Queue is a time-ordered event queue. The zero value is not usable;
// construct with NewQueue.
type Queue struct {
	heap        minHeap
	currentTime uint64
}

// NewQueue returns an empty queue with its clock at 0.
func NewQueue() *Queue {
	return &Queue{heap: minHeap{}}
}

// CurrentTime is the queue's own clock: the time of the most recently
// popped entry, or the most recent Advance target once draining
// completes.
func (q *Queue) CurrentTime() uint64 {
	return q.currentTime
}

// Len is the number of triggers still pending.
func (q *Queue) Len() int {
	return q.heap.Len()
}

// Push schedules trigger to fire at time, which must not precede the
// queue's current time.
func (q *Queue) Push(t Trigger, time uint64) {
	if time < q.currentTime {
		panic("trigger: cannot schedule a trigger before the queue's current time")
	}
	heap.Push(&q.heap, entry{trigger: t, time: time})
}

// PushRelative schedules trigger to fire delta after the queue's
// current time.
func (q *Queue) PushRelative(t Trigger, delta uint64) {
	q.Push(t, q.currentTime+delta)
}

// Step pops the next trigger due at or before targetTime, if any,
// moving the queue's clock to that entry's own time first so a trigger
// executing sees the time it actually fired at. Returns ok=false once
// nothing is due by targetTime; the caller is expected to execute the
// returned trigger (which may push new entries, including a
// re-trigger of itself) before calling Step again, repeating until it
// returns false, then call Advance to settle the clock at targetTime.
func (q *Queue) Step(targetTime uint64) (Trigger, uint64, bool) {
	if targetTime < q.currentTime {
		panic("trigger: cannot advance to a time before the queue's current time")
	}
	if q.heap.Len() == 0 || q.heap[0].time > targetTime {
		return nil, 0, false
	}
	e := heap.Pop(&q.heap).(entry)
	if e.time < q.currentTime {
		panic("trigger: popped entry precedes queue's current time")
	}
	q.currentTime = e.time
	return e.trigger, e.time, true
}

// Advance settles the queue's clock at targetTime once the caller has
// drained every due trigger via Step. Mirrors the original's final
// current_time = time assignment once the pop loop runs dry, needed
// because targetTime may be later than the last popped entry's time.
func (q *Queue) Advance(targetTime uint64) {
	if targetTime < q.currentTime {
		panic("trigger: cannot advance to a time before the queue's current time")
	}
	q.currentTime = targetTime
}

// Entry is one pending (Trigger, time) pair, exported only so a caller
// that owns concrete Trigger implementations can serialize a whole
// queue without this package needing to know anything about them.
type Entry struct {
	Trigger Trigger
	Time    uint64
}

// Entries returns every pending entry in arbitrary order (not popped, so
// the queue itself is left untouched). A caller persisting a Queue
// should encode each entry in whatever wire format its own concrete
// Trigger types support, then rebuild with NewQueueFromEntries.
func (q *Queue) Entries() []Entry {
	out := make([]Entry, len(q.heap))
	for i, e := range q.heap {
		out[i] = Entry{Trigger: e.trigger, Time: e.time}
	}
	return out
}

// NewQueueFromEntries rebuilds a queue at the given clock with exactly
// the given entries pending, none of which may precede currentTime.
func NewQueueFromEntries(currentTime uint64, entries []Entry) *Queue {
	q := NewQueue()
	q.currentTime = currentTime
	for _, e := range entries {
		q.Push(e.Trigger, e.Time)
	}
	return q
}
