// Package component holds the dense, per-type component storage: a packed
// array of values plus the forward (entity index -> slot) and back
// (slot -> entity ID) indices that make lookup, insertion and removal O(1).
package component

import "github.com/cuemby/ecs/pkg/entity"

// Storage is the dense packed array for one component type T, with O(1)
// forward/back indexing. The zero value is ready to use.
type Storage[T any] struct {
	data    []T
	back    []entity.ID
	forward []int32 // entity index -> slot, or -1 if absent
}

// Size returns the number of components currently stored.
func (s *Storage[T]) Size() int {
	return len(s.data)
}

// Empty reports whether the storage holds no components.
func (s *Storage[T]) Empty() bool {
	return len(s.data) == 0
}

// PushBack appends a component value for id. The caller must ensure id does
// not already have a component in this storage (checked via the entity
// bitmask one layer up); violating this is a programming error.
func (s *Storage[T]) PushBack(id entity.ID, v T) {
	idx := id.Index()
	if uint32(len(s.forward)) <= idx {
		grown := make([]int32, idx+1)
		copy(grown, s.forward)
		for i := len(s.forward); i < len(grown); i++ {
			grown[i] = -1
		}
		s.forward = grown
	}

	slot := int32(len(s.data))
	s.data = append(s.data, v)
	s.back = append(s.back, id)
	s.forward[idx] = slot
}

// Get returns a pointer to id's component, or nil if id is out of range or
// has no component of this type.
func (s *Storage[T]) Get(id entity.ID) *T {
	idx := id.Index()
	if idx >= uint32(len(s.forward)) {
		return nil
	}
	slot := s.forward[idx]
	if slot < 0 {
		return nil
	}
	return &s.data[slot]
}

// Erase removes id's component via swap-and-pop, if present. It is a no-op
// if id is out of range or has no component of this type. Does not
// preserve relative slot order.
func (s *Storage[T]) Erase(id entity.ID) {
	idx := id.Index()
	if idx >= uint32(len(s.forward)) {
		return
	}
	slot := s.forward[idx]
	if slot < 0 {
		return
	}

	lastSlot := int32(len(s.data)) - 1
	if slot != lastSlot {
		s.data[slot] = s.data[lastSlot]
		s.back[slot] = s.back[lastSlot]
		movedIdx := s.back[slot].Index()
		s.forward[movedIdx] = slot
	}

	s.data = s.data[:lastSlot]
	s.back = s.back[:lastSlot]
	s.forward[idx] = -1
}

// Optimize permutes the storage in place so that slot order follows entity
// index order: iterating components in slot order then visits entities in
// ascending index order, maximizing cache locality during process updates.
// O(n) over entity indices. Calling Optimize twice in a row is idempotent.
func (s *Storage[T]) Optimize() {
	var writeCursor uint32
	maxEntityIndex := uint32(len(s.forward))
	for entityIdx := uint32(0); entityIdx < maxEntityIndex; entityIdx++ {
		srcSlot := s.forward[entityIdx]
		if srcSlot < 0 {
			continue
		}

		srcEntityIdx := s.back[writeCursor].Index()
		if entityIdx == srcEntityIdx {
			writeCursor++
			continue
		}

		s.data[srcSlot], s.data[writeCursor] = s.data[writeCursor], s.data[srcSlot]
		s.forward[srcEntityIdx], s.forward[entityIdx] = s.forward[entityIdx], s.forward[srcEntityIdx]
		s.back[writeCursor], s.back[srcSlot] = s.back[srcSlot], s.back[writeCursor]

		writeCursor++
	}
}
