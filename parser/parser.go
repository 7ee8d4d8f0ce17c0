package parser

import (
	"go-midiplayer/debug"
	"go-midiplayer/instruments"
	"go-midiplayer/midi"
	"go-midiplayer/track"
)

// DefaultDrumChannels are the zero-based channels treated as percussion
var DefaultDrumChannels = []uint8{9, 10}

// Parser converts MIDI files into playable tracks
type Parser struct {
	Resolver     *instruments.Resolver
	DrumChannels []uint8
	Filter       OctaveFilter
}

// New creates a parser with the default drum channels and no octave filter.
// A nil resolver uses the built-in table.
func New(resolver *instruments.Resolver) *Parser {
	if resolver == nil {
		resolver = instruments.NewResolver(nil)
	}
	return &Parser{
		Resolver:     resolver,
		DrumChannels: append([]uint8(nil), DefaultDrumChannels...),
	}
}

// ParseFile reads and parses a MIDI file from disk
func (p *Parser) ParseFile(path string) (track.Track, error) {
	song, err := midi.LoadFile(path)
	if err != nil {
		return nil, err
	}
	debug.Log("parser", "loaded %s: %d tracks, %d events", path, len(song.Tracks), song.EventCount())
	return p.ParseSong(song), nil
}

// Parse parses an in-memory MIDI file
func (p *Parser) Parse(data []byte) (track.Track, error) {
	song, err := midi.Load(data)
	if err != nil {
		return nil, err
	}
	return p.ParseSong(song), nil
}

// ParseSong turns decoded events into frames. An empty result is valid.
func (p *Parser) ParseSong(song *midi.Song) track.Track {
	table := p.Resolver.Table()
	x := NewExtractor(table, song.Resolution, p.DrumChannels)

	var events []track.NoteEvent
	dropped := 0
	for i, tr := range song.Tracks {
		notes := x.Track(tr)
		if len(notes) == 0 {
			continue
		}

		filtered, ok := p.Filter.Apply(notes)
		if !ok {
			debug.Log("parser", "track %d rejected by octave filter %s", i, p.Filter)
			continue
		}

		for _, n := range filtered {
			ev, ok := n.Event()
			if !ok {
				dropped++
				continue
			}
			events = append(events, ev)
		}
	}

	frames := track.Aggregate(events)
	debug.Log("parser", "%d notes -> %d frames (%d out of range), %dms",
		len(events), len(frames), dropped, frames.Duration())
	return frames
}
