// Package config provides typed, hot-reloadable configuration for lspeasy
// servers: TOML or YAML files, an atomically swapped Store and an
// fsnotify-based Watcher.
package config

import (
	"sync"
	"sync/atomic"
)

// Store holds the current value of a config struct. Reads never lock.
type Store[T any] struct {
	value atomic.Pointer[T]

	mu        sync.Mutex
	listeners []func(old, next *T)
}

// NewStore creates a store holding initial.
func NewStore[T any](initial *T) *Store[T] {
	s := &Store[T]{}
	s.value.Store(initial)
	return s
}

// Get returns the current value. Callers must not modify it.
func (s *Store[T]) Get() *T {
	return s.value.Load()
}

// Swap replaces the value, runs the listeners on the calling goroutine and
// returns the previous value.
func (s *Store[T]) Swap(next *T) *T {
	old := s.value.Swap(next)

	s.mu.Lock()
	listeners := make([]func(old, next *T), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(old, next)
	}
	return old
}

// OnChange registers fn to run after every Swap.
func (s *Store[T]) OnChange(fn func(old, next *T)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}
