package instruments

import (
	"sort"
)

// Entry is a playable patch and its volume scale (1.0 = 100%)
type Entry struct {
	Patch       string
	VolumeScale float32
}

// OctaveRange is an inclusive octave span an entry is defined for
type OctaveRange struct {
	From int
	To   int
}

// Contains reports whether octave falls inside the range
func (r OctaveRange) Contains(octave int) bool {
	return octave >= r.From && octave <= r.To
}

// Overlaps reports whether two ranges share any octave
func (r OctaveRange) Overlaps(o OctaveRange) bool {
	return r.From <= o.To && o.From <= r.To
}

// Instrument maps octave ranges to entries. Immutable once built.
type Instrument struct {
	ranges  []OctaveRange
	entries []Entry
}

// NewInstrument builds an instrument from range definitions
func NewInstrument(defs map[OctaveRange]Entry) *Instrument {
	ranges := make([]OctaveRange, 0, len(defs))
	for r := range defs {
		ranges = append(ranges, r)
	}
	sort.Slice(ranges, func(i, j int) bool {
		if ranges[i].From != ranges[j].From {
			return ranges[i].From < ranges[j].From
		}
		return ranges[i].To < ranges[j].To
	})

	inst := &Instrument{
		ranges:  ranges,
		entries: make([]Entry, len(ranges)),
	}
	for i, r := range ranges {
		inst.entries[i] = defs[r]
	}
	return inst
}

// Lookup returns the entry covering octave and the octave its range starts at
func (i *Instrument) Lookup(octave int) (Entry, int, bool) {
	if i == nil {
		return Entry{}, 0, false
	}
	for idx, r := range i.ranges {
		if r.Contains(octave) {
			return i.entries[idx], r.From, true
		}
	}
	return Entry{}, 0, false
}

// Ranges returns the octave ranges in ascending order
func (i *Instrument) Ranges() []OctaveRange {
	if i == nil {
		return nil
	}
	out := make([]OctaveRange, len(i.ranges))
	copy(out, i.ranges)
	return out
}
