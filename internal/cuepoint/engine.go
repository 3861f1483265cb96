package cuepoint

import (
	"math"
	"slices"
	"sort"
)

// Engine answers "which items are active at time t" for a fixed item list,
// either as a full snapshot or as a delta against the previous query.
//
// An Engine is owned by a single caller; it does no locking.
type Engine[T Timed] struct {
	items     []T
	events    []changeEvent[T]
	threshold float64
	cursor    cursor
}

// New builds the engine index. The input slice is copied and never mutated.
func New[T Timed](items []T, opts ...Option) *Engine[T] {
	o := options{reasonableSeekThreshold: DefaultReasonableSeekThreshold}
	for _, opt := range opts {
		opt(&o)
	}

	e := &Engine[T]{
		items:     slices.Clone(items),
		threshold: o.reasonableSeekThreshold,
	}
	e.events = prepareEvents(e.items)
	return e
}

func prepareEvents[T Timed](items []T) []changeEvent[T] {
	events := make([]changeEvent[T], 0, len(items)*2)
	for _, item := range items {
		if start, ok := item.CueStart(); ok && start >= 0 {
			events = append(events, changeEvent[T]{time: start, typ: eventShow, item: item})
		}
		if end, ok := item.CueEnd(); ok && end >= 0 {
			events = append(events, changeEvent[T]{time: end, typ: eventHide, item: item})
		}
	}
	// Show is appended before Hide for each item; a stable sort keeps that
	// order for equal timestamps.
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].time < events[j].time
	})
	return events
}

// Cuepoints returns a copy of the items the engine was built with.
func (e *Engine[T]) Cuepoints() []T {
	return slices.Clone(e.items)
}

// ReasonableSeekThreshold returns the effective seek threshold.
func (e *Engine[T]) ReasonableSeekThreshold() float64 {
	return e.threshold
}

// UpdateTime advances the playback head to now.
//
// The first query, a forced query and a detected seek yield a snapshot.
// Regular playback yields a delta, which is empty when no boundary was
// crossed. An engine without events always yields an empty snapshot.
func (e *Engine[T]) UpdateTime(now float64, forceSnapshot bool, filter Filter[T]) Update[T] {
	if len(e.events) == 0 {
		e.cursor.started = true
		return Update[T]{Kind: KindSnapshot, Snapshot: []T{}}
	}

	first := !e.cursor.started
	backward := !first && now < e.cursor.lastTime
	userSeeked := !first && (backward || now > e.cursor.nextTime+e.threshold)
	pending := first || backward || now >= e.cursor.nextTime

	if !pending && !forceSnapshot {
		return Update[T]{Kind: KindDelta, Show: []T{}, Hide: []T{}}
	}

	index := e.closestIndex(now)

	var update Update[T]
	if first || forceSnapshot || userSeeked {
		update = Update[T]{
			Kind:     KindSnapshot,
			Snapshot: applyFilter(e.snapshotAt(index), filter),
		}
	} else {
		show, hide := e.deltaBetween(e.cursor.lastIndex, index)
		update = Update[T]{
			Kind: KindDelta,
			Show: applyFilter(show, filter),
			Hide: applyFilter(hide, filter),
		}
	}

	e.moveCursor(index)
	return update
}

// Snapshot returns the items active at t without touching the playback head.
func (e *Engine[T]) Snapshot(t float64) []T {
	if len(e.events) == 0 {
		return []T{}
	}
	return e.snapshotAt(e.closestIndex(t))
}

func (e *Engine[T]) moveCursor(index int) {
	last := len(e.events) - 1
	switch {
	case index < 0:
		e.cursor.lastTime = math.Inf(-1)
		e.cursor.nextTime = e.events[0].time
	case index >= last:
		e.cursor.lastTime = e.events[last].time
		e.cursor.nextTime = e.events[last].time
	default:
		e.cursor.lastTime = e.events[index].time
		e.cursor.nextTime = e.events[index+1].time
	}
	e.cursor.lastIndex = index
	e.cursor.started = true
}

// snapshotAt replays events [0, index]. A show adds an absent item, a hide
// removes a present one; items keep the order in which they were shown.
func (e *Engine[T]) snapshotAt(index int) []T {
	shownAt := make(map[T]int)
	for i := 0; i <= index && i < len(e.events); i++ {
		ev := e.events[i]
		switch ev.typ {
		case eventShow:
			if _, ok := shownAt[ev.item]; !ok {
				shownAt[ev.item] = i
			}
		case eventHide:
			delete(shownAt, ev.item)
		}
	}

	ret := make([]T, 0, len(shownAt))
	for item := range shownAt {
		ret = append(ret, item)
	}
	sort.Slice(ret, func(i, j int) bool {
		return shownAt[ret[i]] < shownAt[ret[j]]
	})
	return ret
}

// deltaBetween replays events (from, to]. The last event seen for an item
// decides whether it is shown or hidden, which matches snapshot replay.
func (e *Engine[T]) deltaBetween(from, to int) (show, hide []T) {
	show = []T{}
	hide = []T{}
	if to <= from {
		return show, hide
	}

	lastSeen := make(map[T]int, to-from)
	for i := from + 1; i <= to; i++ {
		lastSeen[e.events[i].item] = i
	}
	for i := from + 1; i <= to; i++ {
		ev := e.events[i]
		if lastSeen[ev.item] != i {
			continue
		}
		if ev.typ == eventShow {
			show = append(show, ev.item)
		} else {
			hide = append(hide, ev.item)
		}
	}
	return show, hide
}

// closestIndex returns the index of the last event with time <= t, walking
// forward over events sharing that timestamp. It returns -1 when t precedes
// every event (or is NaN).
func (e *Engine[T]) closestIndex(t float64) int {
	lo, hi := 0, len(e.events)-1
	found := -1
	for lo <= hi {
		mid := lo + (hi-lo)/2
		if e.events[mid].time <= t {
			found = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	if found < 0 {
		return -1
	}
	for found+1 < len(e.events) && e.events[found+1].time == e.events[found].time {
		found++
	}
	return found
}

func applyFilter[T any](items []T, filter Filter[T]) []T {
	if filter == nil {
		return items
	}
	ret := make([]T, 0, len(items))
	for _, item := range items {
		if filter(item) {
			ret = append(ret, item)
		}
	}
	return ret
}
