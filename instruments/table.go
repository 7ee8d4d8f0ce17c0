package instruments

// Table is a complete, immutable instrument and drum mapping.
// Replace it as a whole through Resolver.Swap; never edit one in place.
type Table struct {
	instruments map[int]*Instrument
	def         *Instrument
	drums       map[int]Entry
	defaultDrum *Entry
}

// NewTable builds a table. def is used for channels without a program change.
func NewTable(instruments map[int]*Instrument, def *Instrument, drums map[int]Entry, defaultDrum *Entry) *Table {
	t := &Table{
		instruments: make(map[int]*Instrument, len(instruments)),
		def:         def,
		drums:       make(map[int]Entry, len(drums)),
	}
	for id, inst := range instruments {
		t.instruments[id] = inst
	}
	for key, e := range drums {
		t.drums[key] = e
	}
	if defaultDrum != nil {
		d := *defaultDrum
		t.defaultDrum = &d
	}
	return t
}

// Instrument returns the instrument mapped to a program number
func (t *Table) Instrument(program int) (*Instrument, bool) {
	inst, ok := t.instruments[program]
	return inst, ok
}

// Default returns the fallback instrument
func (t *Table) Default() *Instrument {
	return t.def
}

// Drum returns the entry for a percussion key, falling back to the default drum
func (t *Table) Drum(key int) (Entry, bool) {
	if e, ok := t.drums[key]; ok {
		return e, true
	}
	if t.defaultDrum != nil {
		return *t.defaultDrum, true
	}
	return Entry{}, false
}

// Programs returns how many programs are mapped
func (t *Table) Programs() int {
	return len(t.instruments)
}

// Drums returns how many percussion keys are mapped
func (t *Table) Drums() int {
	return len(t.drums)
}

// WithDrums returns a copy of t using another table's drum mapping
func (t *Table) WithDrums(other *Table) *Table {
	return NewTable(t.instruments, t.def, other.drums, other.defaultDrum)
}
