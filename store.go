package brick

import (
	"reflect"
	"sort"
	"sync"
)

// Owner is anything that keeps a Store, typically a screen, a request scope
// or a long lived session. Generated accessors take an Owner as first
// argument.
type Owner interface {
	Store() *Store
}

// Store keeps values by key for the lifetime of its Owner.
type Store struct {
	mu      sync.Mutex
	entries map[string]any
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{entries: make(map[string]any)}
}

// Store makes *Store an Owner of itself.
func (s *Store) Store() *Store { return s }

// Get returns the value stored under key.
func (s *Store) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.entries[key]
	return v, ok
}

// Put stores v under key. A previous value under the same key is cleared.
func (s *Store) Put(key string, v any) {
	s.mu.Lock()
	if s.entries == nil {
		s.entries = make(map[string]any)
	}
	old, ok := s.entries[key]
	s.entries[key] = v
	s.mu.Unlock()

	if ok && !sameValue(old, v) {
		clearValue(old)
	}
}

// Keys returns the stored keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clear drops every value and runs their OnCleared hooks.
func (s *Store) Clear() {
	s.mu.Lock()
	entries := s.entries
	s.entries = make(map[string]any)
	s.mu.Unlock()

	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		clearValue(entries[k])
	}
}

func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == b
	}
	if reflect.TypeOf(a) != reflect.TypeOf(b) || !reflect.TypeOf(a).Comparable() {
		return false
	}
	return a == b
}

func clearValue(v any) {
	if c, ok := v.(clearable); ok {
		c.viewModel().clear()
	}
}
