// Package store implements a generational slot store: an arena with O(1)
// insert, remove and lookup keyed by (index, generation). Removing a slot
// bumps its generation, so keys held past a removal read as absent instead
// of aliasing whatever occupies the slot next.
//
// The store supports two-phase allocation: Reserve hands out a stable key
// before the value exists, Fill populates it later. Mutually-referential
// records (an operation and the values it produces) are built this way.
package store

import (
	"errors"
	"fmt"
	"iter"
)

var (
	ErrNotReserved   = errors.New("store: key is not a pending reservation")
	ErrStaleKey      = errors.New("store: stale key")
	ErrAlreadyFilled = errors.New("store: slot already filled")
)

// Key addresses one slot of a Store. The zero Key is never returned by a
// Store and is always absent.
type Key struct {
	index      uint32
	generation uint32
}

// Index returns the slot index. Only meaningful for keys obtained from the
// store that is being queried.
func (k Key) Index() int { return int(k.index) }

func (k Key) String() string {
	return fmt.Sprintf("%d#%d", k.index, k.generation)
}

// IsZero reports whether k is the (always absent) zero key.
func (k Key) IsZero() bool { return k.generation == 0 }

type slotState uint8

const (
	slotFree slotState = iota
	slotReserved
	slotOccupied
)

// slot is a tagged variant: occupied carries a value, free carries the index
// of the next free slot (or -1). generation is bumped on every release so
// stale keys miss.
type slot[T any] struct {
	value      T
	generation uint32
	nextFree   int32
	state      slotState
}

// Store is a generational arena of T. The zero value is ready to use.
// A Store is owned by a single goroutine; it performs no locking.
type Store[T any] struct {
	slots    []slot[T]
	freeHead int32 // -1 when no free slot
	count    int
	init     bool
}

func (s *Store[T]) lazyInit() {
	if !s.init {
		s.freeHead = -1
		s.init = true
	}
}

// Len returns the number of occupied slots. Reserved-but-unfilled slots do
// not count.
func (s *Store[T]) Len() int { return s.count }

// Insert stores v and returns its key.
func (s *Store[T]) Insert(v T) Key {
	k := s.Reserve()
	s.slots[k.index].value = v
	s.slots[k.index].state = slotOccupied
	s.count++
	return k
}

// Reserve allocates an empty slot and returns its key. The key is stable and
// may be embedded in other records before the value exists; Get reports it
// absent until Fill is called. Release cancels the reservation.
func (s *Store[T]) Reserve() Key {
	s.lazyInit()
	if s.freeHead >= 0 {
		idx := s.freeHead
		sl := &s.slots[idx]
		s.freeHead = sl.nextFree
		sl.state = slotReserved
		return Key{index: uint32(idx), generation: sl.generation}
	}
	s.slots = append(s.slots, slot[T]{generation: 1, state: slotReserved})
	return Key{index: uint32(len(s.slots) - 1), generation: 1}
}

// Fill populates a reserved slot. It fails on stale keys, on slots that were
// never reserved and on slots already filled.
func (s *Store[T]) Fill(k Key, v T) error {
	sl, ok := s.at(k)
	if !ok {
		return fmt.Errorf("%w: %v", ErrStaleKey, k)
	}
	switch sl.state {
	case slotOccupied:
		return fmt.Errorf("%w: %v", ErrAlreadyFilled, k)
	case slotFree:
		return fmt.Errorf("%w: %v", ErrNotReserved, k)
	}
	sl.value = v
	sl.state = slotOccupied
	s.count++
	return nil
}

// Release cancels an unfilled reservation, returning the slot to the free
// list and invalidating the key.
func (s *Store[T]) Release(k Key) error {
	sl, ok := s.at(k)
	if !ok || sl.state != slotReserved {
		return fmt.Errorf("%w: %v", ErrNotReserved, k)
	}
	s.free(k.index, sl)
	return nil
}

// Get returns a pointer to the value at k, or false if k is absent, stale or
// an unfilled reservation. The pointer is invalidated by any Insert or
// Reserve (the backing array may grow); don't hold it across mutations.
func (s *Store[T]) Get(k Key) (*T, bool) {
	sl, ok := s.at(k)
	if !ok || sl.state != slotOccupied {
		return nil, false
	}
	return &sl.value, true
}

// Contains reports whether k addresses a live value.
func (s *Store[T]) Contains(k Key) bool {
	sl, ok := s.at(k)
	return ok && sl.state == slotOccupied
}

// Remove deletes the value at k and returns it. Stale or absent keys return
// false and leave the store untouched.
func (s *Store[T]) Remove(k Key) (T, bool) {
	var zero T
	sl, ok := s.at(k)
	if !ok || sl.state != slotOccupied {
		return zero, false
	}
	v := sl.value
	sl.value = zero
	s.count--
	s.free(k.index, sl)
	return v, true
}

// All iterates over (key, value) pairs in slot order, which is insertion
// order as long as no slot has been recycled.
func (s *Store[T]) All() iter.Seq2[Key, *T] {
	return func(yield func(Key, *T) bool) {
		for i := range s.slots {
			sl := &s.slots[i]
			if sl.state != slotOccupied {
				continue
			}
			if !yield(Key{index: uint32(i), generation: sl.generation}, &sl.value) {
				return
			}
		}
	}
}

// Keys returns the keys of all live values in slot order.
func (s *Store[T]) Keys() []Key {
	keys := make([]Key, 0, s.count)
	for k := range s.All() {
		keys = append(keys, k)
	}
	return keys
}

// Retain removes every value for which keep returns false.
func (s *Store[T]) Retain(keep func(Key, *T) bool) {
	for i := range s.slots {
		sl := &s.slots[i]
		if sl.state != slotOccupied {
			continue
		}
		k := Key{index: uint32(i), generation: sl.generation}
		if !keep(k, &sl.value) {
			s.Remove(k)
		}
	}
}

func (s *Store[T]) at(k Key) (*slot[T], bool) {
	if k.IsZero() || int(k.index) >= len(s.slots) {
		return nil, false
	}
	sl := &s.slots[k.index]
	if sl.generation != k.generation {
		return nil, false
	}
	return sl, true
}

func (s *Store[T]) free(idx uint32, sl *slot[T]) {
	sl.generation++ // stale keys must miss from now on
	sl.state = slotFree
	sl.nextFree = s.freeHead
	s.freeHead = int32(idx)
}
