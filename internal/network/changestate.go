package network

// ChangeState marks where an item sits in the staged-edit lifecycle.
// Active items back the live routing graph; StagedActive/StagedTombstone
// pairs exist only between a write and the next apply_change_set; a
// Tombstone is kept around for a grace period so routes already in
// flight across it are not invalidated mid-travel.
type ChangeState struct {
	kind      changeKind
	countdown uint32
}

type changeKind uint8

const (
	stateActive changeKind = iota
	stateStagedActive
	stateStagedTombstone
	stateTombstone
)

// TombstoneGraceDays is the number of simulated days a removed item is
// kept as a Tombstone before being dropped entirely. A route may cross
// from one day into the next but never spans more than one full day, so
// two days of grace is enough to guarantee no route ever references a
// removed item.
const TombstoneGraceDays = 2

// Active is the steady-state: in use, no staged edits pending.
func Active() ChangeState { return ChangeState{kind: stateActive} }

func stagedActive() ChangeState  { return ChangeState{kind: stateStagedActive} }
func stagedTombstone() ChangeState { return ChangeState{kind: stateStagedTombstone} }
func tombstone(countdown uint32) ChangeState {
	return ChangeState{kind: stateTombstone, countdown: countdown}
}

// IsActive reports whether this item should be used to construct the
// active base graph.
func (c ChangeState) IsActive() bool {
	return c.kind == stateActive || c.kind == stateStagedTombstone
}

// IsStagedChange reports whether this item is part of a pending change set.
func (c ChangeState) IsStagedChange() bool {
	return c.kind == stateStagedActive || c.kind == stateStagedTombstone
}

// IsStagedActive reports whether this item will be active once the
// pending change set is applied.
func (c ChangeState) IsStagedActive() bool {
	return c.kind == stateActive || c.kind == stateStagedActive
}

func (c ChangeState) IsTombstone() bool { return c.kind == stateTombstone }

// changeSet tracks items staged for creation or removal, keyed by handle.
type changeSet[T comparable] struct {
	created map[T]struct{}
	removed map[T]struct{}
}

func newChangeSet[T comparable]() changeSet[T] {
	return changeSet[T]{created: make(map[T]struct{}), removed: make(map[T]struct{})}
}

// Created returns every handle staged for creation.
func (c *changeSet[T]) Created() []T {
	out := make([]T, 0, len(c.created))
	for id := range c.created {
		out = append(out, id)
	}
	return out
}

// Removed returns every handle staged for removal.
func (c *changeSet[T]) Removed() []T {
	out := make([]T, 0, len(c.removed))
	for id := range c.removed {
		out = append(out, id)
	}
	return out
}
