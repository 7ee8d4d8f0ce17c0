package midi

import (
	"gitlab.com/gomidi/midi/v2/smf"
)

// EventKind is the subset of SMF events the player cares about
type EventKind uint8

const (
	KindOther EventKind = iota
	KindNoteOn
	KindNoteOff
	KindProgramChange
	KindControlChange
	KindTempo
)

func (k EventKind) String() string {
	switch k {
	case KindNoteOn:
		return "note-on"
	case KindNoteOff:
		return "note-off"
	case KindProgramChange:
		return "program"
	case KindControlChange:
		return "control"
	case KindTempo:
		return "tempo"
	}
	return "other"
}

// ControllerVolume is the channel master volume controller number
const ControllerVolume uint8 = 0x07

// NumChannels is the number of MIDI channels
const NumChannels = 16

// Event is a decoded track event at an absolute tick position
type Event struct {
	Tick    uint64
	Kind    EventKind
	Channel uint8
	Data1   uint8 // key, program or controller
	Data2   uint8 // velocity or controller value

	// Tempo carries the new tempo for KindTempo events (zero = invalid)
	Tempo Tempo
}

// DecodeTrack converts one SMF track into absolute-tick events, in file order
func DecodeTrack(tr smf.Track) []Event {
	events := make([]Event, 0, len(tr))
	var tick uint64
	for _, ev := range tr {
		tick += uint64(ev.Delta)
		e, ok := decodeMessage(ev.Message)
		if !ok {
			continue
		}
		e.Tick = tick
		events = append(events, e)
	}
	return events
}

func decodeMessage(msg smf.Message) (Event, bool) {
	var ch, d1, d2 uint8
	var bpm float64

	switch {
	case msg.GetMetaTempo(&bpm):
		return Event{Kind: KindTempo, Tempo: TempoFromBPM(bpm)}, true
	case msg.GetNoteOn(&ch, &d1, &d2):
		return Event{Kind: KindNoteOn, Channel: ch, Data1: d1, Data2: d2}, true
	case msg.GetNoteOff(&ch, &d1, &d2):
		return Event{Kind: KindNoteOff, Channel: ch, Data1: d1, Data2: d2}, true
	case msg.GetProgramChange(&ch, &d1):
		return Event{Kind: KindProgramChange, Channel: ch, Data1: d1}, true
	case msg.GetControlChange(&ch, &d1, &d2):
		return Event{Kind: KindControlChange, Channel: ch, Data1: d1, Data2: d2}, true
	}
	return Event{}, false
}
