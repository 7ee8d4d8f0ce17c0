package parser

import (
	"go-midiplayer/instruments"
	"go-midiplayer/midi"
	"go-midiplayer/track"
)

// Note is a resolved note before the octave filter and pitch conversion
type Note struct {
	Millis int64
	Entry  instruments.Entry
	Octave int // rebased onto the entry's start octave
	Key    int // semitone within the octave
	Drum   bool
	Volume float32 // velocity * master volume, 0..1
}

// Event converts the note into its playable form. Notes whose pitch falls
// outside the target range are rejected.
func (n Note) Event() (track.NoteEvent, bool) {
	pitch := float32(1.0)
	if !n.Drum {
		pitch = track.PitchRatio(n.Key, n.Octave)
	}
	if !track.Playable(pitch) {
		return track.NoteEvent{}, false
	}
	return track.NoteEvent{
		Millis: n.Millis,
		Patch:  n.Entry.Patch,
		Pitch:  pitch,
		Volume: track.Volume(n.Volume, n.Entry.VolumeScale),
	}, true
}

// Extractor walks tracks in file order. Tempo and channel state carry over
// from one track to the next.
type Extractor struct {
	resolution uint16
	tempo      midi.Tempo
	channels   *Channels
	table      *instruments.Table
	drums      [midi.NumChannels]bool
}

// NewExtractor creates an extractor for one file
func NewExtractor(table *instruments.Table, resolution uint16, drumChannels []uint8) *Extractor {
	x := &Extractor{
		resolution: resolution,
		channels:   NewChannels(table),
		table:      table,
	}
	for _, ch := range drumChannels {
		if int(ch) < midi.NumChannels {
			x.drums[ch] = true
		}
	}
	return x
}

// Tempo returns the tempo in effect after the tracks walked so far
func (x *Extractor) Tempo() midi.Tempo {
	return x.tempo
}

// Channels exposes the channel state
func (x *Extractor) Channels() *Channels {
	return x.channels
}

// Track extracts the notes of one track
func (x *Extractor) Track(events []midi.Event) []Note {
	var notes []Note

	for _, ev := range events {
		// Time is computed with the tempo in effect before this event
		millis := midi.Millis(ev.Tick, x.resolution, x.tempo)

		switch ev.Kind {
		case midi.KindTempo:
			x.tempo = ev.Tempo
		case midi.KindProgramChange:
			x.channels.SetProgram(ev.Channel, ev.Data1)
		case midi.KindControlChange:
			if ev.Data1 == midi.ControllerVolume {
				x.channels.SetVolume(ev.Channel, ev.Data2)
			}
		case midi.KindNoteOn:
			if ev.Data2 == 0 || millis < 0 {
				continue
			}
			if n, ok := x.resolve(ev, millis); ok {
				notes = append(notes, n)
			}
		}
	}
	return notes
}

func (x *Extractor) resolve(ev midi.Event, millis int64) (Note, bool) {
	volume := x.channels.Volume(ev.Channel, ev.Data2)
	key := int(ev.Data1)

	if int(ev.Channel) < midi.NumChannels && x.drums[ev.Channel] {
		entry, ok := x.table.Drum(key)
		if !ok {
			return Note{}, false
		}
		return Note{Millis: millis, Entry: entry, Drum: true, Volume: volume}, true
	}

	octave := key/12 - 1
	inst := x.channels.Instrument(ev.Channel)
	entry, start, ok := inst.Lookup(octave)
	if !ok {
		return Note{}, false
	}
	return Note{
		Millis: millis,
		Entry:  entry,
		Octave: octave - start,
		Key:    key % 12,
		Volume: volume,
	}, true
}
