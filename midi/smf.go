package midi

import (
	"bytes"
	"os"

	"go-midiplayer/debug"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"gitlab.com/gomidi/midi/v2/smf"
)

// Song is a decoded PPQ file: resolution plus one event list per track
type Song struct {
	Resolution uint16
	Tracks     [][]Event
}

// LoadFile reads and decodes a MIDI file from disk
func LoadFile(path string) (*Song, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fault.Wrap(err,
			ftag.With(KindIO),
			fmsg.WithDesc("read midi file", "Unable to read the MIDI file"))
	}
	return Load(data)
}

// Load decodes an in-memory MIDI file
func Load(data []byte) (song *Song, err error) {
	if err := checkDivision(data); err != nil {
		return nil, err
	}

	// the smf reader panics on some malformed streams
	defer func() {
		if r := recover(); r != nil {
			debug.Log("midi", "decoder panic: %v", r)
			song, err = nil, fault.New("midi decoder panic",
				ftag.With(KindFormat),
				fmsg.WithDesc("decode midi file", "Invalid or corrupted MIDI file"))
		}
	}()

	file, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, fault.Wrap(err,
			ftag.With(KindFormat),
			fmsg.WithDesc("decode midi file", "Invalid or corrupted MIDI file"))
	}

	resolution, err := Resolution(file.TimeFormat)
	if err != nil {
		return nil, err
	}

	song = &Song{
		Resolution: resolution,
		Tracks:     make([][]Event, 0, len(file.Tracks)),
	}
	for _, tr := range file.Tracks {
		song.Tracks = append(song.Tracks, DecodeTrack(tr))
	}
	return song, nil
}

// EventCount returns the number of decoded events across all tracks
func (s *Song) EventCount() int {
	n := 0
	for _, tr := range s.Tracks {
		n += len(tr)
	}
	return n
}

// checkDivision rejects SMPTE time division from the MThd header before
// decoding, since the smf reader only handles metric ticks
func checkDivision(data []byte) error {
	if len(data) < 14 || string(data[:4]) != "MThd" {
		return nil
	}
	if data[12]&0x80 == 0 {
		return nil
	}
	_, err := Resolution(smf.TimeCode{
		FramesPerSecond: uint8(-int8(data[12])),
		SubFrames:       data[13],
	})
	return err
}
