package parser

import (
	"strings"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
)

// OctaveFilter is a set of flags rewriting melodic octaves into the target band
type OctaveFilter uint8

const (
	FilterMoveToMin OctaveFilter = 1 << iota
	FilterNormalize
	FilterModulo
	FilterCut

	FilterNone OctaveFilter = 0
)

// Target band for filtered octaves
const (
	BandMin = 0
	BandMax = 1
)

var filterNames = []struct {
	name string
	flag OctaveFilter
}{
	{"movetomin", FilterMoveToMin},
	{"normalize", FilterNormalize},
	{"modulo", FilterModulo},
	{"cut", FilterCut},
}

// ParseOctaveFilter builds a filter from names such as "normalize" or "cut".
// "none" and empty names are ignored.
func ParseOctaveFilter(names []string) (OctaveFilter, error) {
	var f OctaveFilter
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" || name == "none" {
			continue
		}
		found := false
		for _, fn := range filterNames {
			if fn.name == name {
				f |= fn.flag
				found = true
				break
			}
		}
		if !found {
			return FilterNone, fault.New("unknown octave filter "+raw,
				ftag.With(ftag.InvalidArgument),
				fmsg.WithDesc("unknown octave filter", "Unknown octave filter: "+raw))
		}
	}
	return f, nil
}

// Has reports whether a flag is set
func (f OctaveFilter) Has(flag OctaveFilter) bool {
	return f&flag != 0
}

func (f OctaveFilter) String() string {
	if f == FilterNone {
		return "none"
	}
	var parts []string
	for _, fn := range filterNames {
		if f.Has(fn.flag) {
			parts = append(parts, fn.name)
		}
	}
	return strings.Join(parts, ",")
}

// Apply rewrites the octaves of one track's notes. It returns false when the
// track has out-of-band notes and Cut is not set; such a track is dropped
// entirely. FilterNone leaves the notes untouched.
func (f OctaveFilter) Apply(notes []Note) ([]Note, bool) {
	if f == FilterNone || len(notes) == 0 {
		return notes, true
	}

	lo, hi, ok := octaveBounds(notes)
	if !ok {
		return notes, true
	}
	span := hi - lo

	out := make([]Note, 0, len(notes))
	for _, n := range notes {
		if n.Drum {
			out = append(out, n)
			continue
		}

		switch {
		case f.Has(FilterNormalize):
			if span == 0 {
				n.Octave = BandMin
			} else {
				n.Octave = (BandMax-BandMin)*(n.Octave-lo)/span + BandMin
			}
		case f.Has(FilterMoveToMin):
			n.Octave -= lo
		}
		if f.Has(FilterModulo) {
			n.Octave = wrapOctave(n.Octave)
		}

		if n.Octave < BandMin || n.Octave > BandMax {
			if f.Has(FilterCut) {
				continue
			}
			return nil, false
		}
		out = append(out, n)
	}
	return out, true
}

func octaveBounds(notes []Note) (lo, hi int, ok bool) {
	for _, n := range notes {
		if n.Drum {
			continue
		}
		if !ok {
			lo, hi, ok = n.Octave, n.Octave, true
			continue
		}
		lo = min(lo, n.Octave)
		hi = max(hi, n.Octave)
	}
	return lo, hi, ok
}

func wrapOctave(octave int) int {
	width := BandMax - BandMin + 1
	m := (octave - BandMin) % width
	if m < 0 {
		m += width
	}
	return m + BandMin
}
