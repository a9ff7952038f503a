package testbackend

import (
	"sync"
)

// Store is a thread-safe in-memory collection keyed by sequential integer
// ids, listed in insertion order.
type Store[T any] struct {
	mu      sync.RWMutex
	items   map[int]T
	order   []int
	counter int
}

func NewStore[T any]() *Store[T] {
	return &Store[T]{items: map[int]T{}}
}

// NextID reserves the next id. Ids start at 1 and are never reused.
func (s *Store[T]) NextID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counter++
	return s.counter
}

// Set stores item under id, keeping the original position when id exists.
func (s *Store[T]) Set(id int, item T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[id]; !exists {
		s.order = append(s.order, id)
	}
	s.items[id] = item
}

func (s *Store[T]) Get(id int) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	return item, ok
}

// Delete removes id and reports whether it existed.
func (s *Store[T]) Delete(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[id]; !exists {
		return false
	}
	delete(s.items, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *Store[T]) List() []T {
	return s.Filter(func(int, T) bool { return true })
}

// Filter returns the items matching predicate in insertion order.
func (s *Store[T]) Filter(predicate func(id int, item T) bool) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := []T{}
	for _, id := range s.order {
		if predicate(id, s.items[id]) {
			result = append(result, s.items[id])
		}
	}
	return result
}

func (s *Store[T]) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *Store[T]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = map[int]T{}
	s.order = nil
	s.counter = 0
}
