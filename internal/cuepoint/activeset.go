package cuepoint

import "slices"

// ActiveSet folds engine updates into the set of currently active items.
// Items keep the order in which they became active.
type ActiveSet[T comparable] struct {
	order []T
	index map[T]struct{}
}

func NewActiveSet[T comparable]() *ActiveSet[T] {
	return &ActiveSet[T]{index: make(map[T]struct{})}
}

// Apply replaces the set on a snapshot and patches it on a delta.
// It reports whether the set changed.
func (s *ActiveSet[T]) Apply(u Update[T]) bool {
	if u.Kind == KindSnapshot {
		changed := !s.equals(u.Snapshot)
		s.Reset()
		for _, item := range u.Snapshot {
			s.add(item)
		}
		return changed
	}

	changed := false
	for _, item := range u.Hide {
		if _, ok := s.index[item]; ok {
			delete(s.index, item)
			s.order = slices.DeleteFunc(s.order, func(v T) bool { return v == item })
			changed = true
		}
	}
	for _, item := range u.Show {
		if s.add(item) {
			changed = true
		}
	}
	return changed
}

func (s *ActiveSet[T]) Reset() {
	s.order = nil
	s.index = make(map[T]struct{})
}

func (s *ActiveSet[T]) Contains(item T) bool {
	_, ok := s.index[item]
	return ok
}

func (s *ActiveSet[T]) Len() int {
	return len(s.order)
}

// Items returns a copy of the active items.
func (s *ActiveSet[T]) Items() []T {
	return slices.Clone(s.order)
}

func (s *ActiveSet[T]) add(item T) bool {
	if _, ok := s.index[item]; ok {
		return false
	}
	s.index[item] = struct{}{}
	s.order = append(s.order, item)
	return true
}

func (s *ActiveSet[T]) equals(items []T) bool {
	if len(items) != len(s.order) {
		return false
	}
	for _, item := range items {
		if _, ok := s.index[item]; !ok {
			return false
		}
	}
	return true
}
