// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package uniform

import (
	"maps"
	"sort"
	"sync"
)

// Values is an immutable-by-convention snapshot of uniform values.
type Values map[string]Value

// Keys returns the keys in sorted order.
func (vs Values) Keys() []string {
	keys := make([]string, 0, len(vs))
	for k := range vs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Store holds named uniform values. It is safe for concurrent use: the UI
// side sets values while the render side snapshots them for each draw.
//
// Values persist across start/stop of the animation and are cleared only on
// full teardown.
type Store struct {
	mu     sync.RWMutex
	values map[string]Value
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{values: make(map[string]Value)}
}

// Set stores v under key, overwriting any previous value. Invalid values and
// empty keys are ignored.
func (s *Store) Set(key string, v Value) {
	if key == "" || !v.IsValid() {
		return
	}
	s.mu.Lock()
	s.values[key] = v
	s.mu.Unlock()
}

// SetAll stores every entry of vs.
func (s *Store) SetAll(vs Values) {
	s.mu.Lock()
	for k, v := range vs {
		if k != "" && v.IsValid() {
			s.values[k] = v
		}
	}
	s.mu.Unlock()
}

// Get returns the value stored under key.
func (s *Store) Get(key string) (Value, bool) {
	s.mu.RLock()
	v, ok := s.values[key]
	s.mu.RUnlock()
	return v, ok
}

// Delete removes key.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	delete(s.values, key)
	s.mu.Unlock()
}

// Len returns the number of stored values.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

// Snapshot returns a copy of the current values. The copy has room for
// extra pipeline-managed entries.
func (s *Store) Snapshot() Values {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(Values, len(s.values)+3)
	maps.Copy(out, s.values)
	return out
}

// Clear removes all values.
func (s *Store) Clear() {
	s.mu.Lock()
	clear(s.values)
	s.mu.Unlock()
}
