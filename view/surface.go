package view

import (
	"maps"
	"sync"
)

// Surface receives rendered fragments. Commit is only called when a
// fragment's output actually changed.
type Surface interface {
	Commit(fragment, output string) error
}

// SurfaceFunc adapts a function to Surface.
type SurfaceFunc func(fragment, output string) error

func (f SurfaceFunc) Commit(fragment, output string) error {
	return f(fragment, output)
}

// MemorySurface keeps the last committed output of every fragment. It is
// safe to read from other goroutines while a host loop commits to it.
type MemorySurface struct {
	mu        sync.RWMutex
	fragments map[string]string
	commits   map[string]int
}

func NewMemorySurface() *MemorySurface {
	return &MemorySurface{
		fragments: map[string]string{},
		commits:   map[string]int{},
	}
}

func (m *MemorySurface) Commit(fragment, output string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fragments[fragment] = output
	m.commits[fragment]++
	return nil
}

// Fragment returns the last output committed for fragment.
func (m *MemorySurface) Fragment(fragment string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out, ok := m.fragments[fragment]
	return out, ok
}

// Commits returns how many times fragment was committed.
func (m *MemorySurface) Commits(fragment string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.commits[fragment]
}

// Snapshot copies every fragment's current output.
func (m *MemorySurface) Snapshot() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.fragments)
}
