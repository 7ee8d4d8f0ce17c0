package sequencer

import (
	"sort"
	"sync"
)

// Position is a point a sound is played at
type Position struct {
	World   string
	X, Y, Z float64
}

// Listener is a destination that can hear a session
type Listener interface {
	ID() string
	Online() bool
	// Location returns where the listener is, if known
	Location() (Position, bool)
	// PlaySound emits one sound. loc is nil when no position applies.
	PlaySound(loc *Position, patch string, volume, pitch float32) error
}

// Listeners is a set of listeners shared between a session and whoever
// manages membership. Safe for concurrent use.
type Listeners struct {
	mu  sync.Mutex
	set map[string]Listener
}

// NewListeners creates a set with the given members
func NewListeners(ls ...Listener) *Listeners {
	s := &Listeners{set: make(map[string]Listener, len(ls))}
	for _, l := range ls {
		s.set[l.ID()] = l
	}
	return s
}

// Add inserts a listener, replacing any with the same ID.
// Returns false if it replaced an existing one.
func (s *Listeners) Add(l Listener) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.set[l.ID()]
	s.set[l.ID()] = l
	return !exists
}

// Remove deletes a listener by ID
func (s *Listeners) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.set[id]; !ok {
		return false
	}
	delete(s.set, id)
	return true
}

// Contains reports whether a listener is in the set
func (s *Listeners) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.set[id]
	return ok
}

// Len returns the number of listeners
func (s *Listeners) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.set)
}

// Snapshot returns a point-in-time copy ordered by ID
func (s *Listeners) Snapshot() []Listener {
	s.mu.Lock()
	out := make([]Listener, 0, len(s.set))
	for _, l := range s.set {
		out = append(out, l)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}
