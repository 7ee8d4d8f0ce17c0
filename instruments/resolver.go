package instruments

import (
	"sync"
)

// Resolver hands out the current mapping table. Readers get a consistent
// snapshot; reloads replace the whole table under one lock.
type Resolver struct {
	mu    sync.RWMutex
	table *Table
}

// NewResolver creates a resolver. A nil table means DefaultTable.
func NewResolver(t *Table) *Resolver {
	if t == nil {
		t = DefaultTable()
	}
	return &Resolver{table: t}
}

// Table returns the current table
func (r *Resolver) Table() *Table {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.table
}

// Swap replaces the table and returns the previous one
func (r *Resolver) Swap(t *Table) *Table {
	if t == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.table
	r.table = t
	return prev
}

// Instrument looks up a program in the current table
func (r *Resolver) Instrument(program int) (*Instrument, bool) {
	return r.Table().Instrument(program)
}

// Default returns the current fallback instrument
func (r *Resolver) Default() *Instrument {
	return r.Table().Default()
}

// Drum looks up a percussion key in the current table
func (r *Resolver) Drum(key int) (Entry, bool) {
	return r.Table().Drum(key)
}
