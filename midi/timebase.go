package midi

import (
	"fmt"
	"math"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"gitlab.com/gomidi/midi/v2/smf"
)

// Indeterminate is returned by Millis while no tempo has been established
const Indeterminate int64 = -1

// Tempo is the tempo in effect while walking a file.
// The zero value means no tempo event has been seen yet.
type Tempo struct {
	MicrosPerQuarter float64
}

// TempoFromBPM converts beats per minute to a Tempo (invalid input yields the zero Tempo)
func TempoFromBPM(bpm float64) Tempo {
	if bpm <= 0 || math.IsInf(bpm, 0) || math.IsNaN(bpm) {
		return Tempo{}
	}
	return Tempo{MicrosPerQuarter: 60_000_000 / bpm}
}

// Known reports whether the tempo can be used for time conversion
func (t Tempo) Known() bool {
	return t.MicrosPerQuarter > 0
}

// BPM returns beats per minute, or 0 when unknown
func (t Tempo) BPM() float64 {
	if !t.Known() {
		return 0
	}
	return 60_000_000 / t.MicrosPerQuarter
}

// Millis converts an absolute tick position to milliseconds using a single tempo.
func Millis(tick uint64, resolution uint16, tempo Tempo) int64 {
	if !tempo.Known() || resolution == 0 {
		return Indeterminate
	}
	return int64(float64(tick) * 60000 / float64(resolution) / tempo.BPM())
}

// Resolution returns ticks per quarter note, rejecting SMPTE time formats
func Resolution(tf smf.TimeFormat) (uint16, error) {
	switch f := tf.(type) {
	case smf.MetricTicks:
		return uint16(f), nil
	case nil:
		return 0, fault.New("missing time format",
			ftag.With(KindFormat),
			fmsg.WithDesc("missing time format", "Invalid or corrupted MIDI file"))
	}
	name := DivisionName(tf)
	return 0, fault.New("unsupported division type "+name,
		ftag.With(KindFormat),
		fmsg.WithDesc("unsupported division", "Unsupported DivisionType "+name))
}

// DivisionName names a time format the way users know it
func DivisionName(tf smf.TimeFormat) string {
	switch f := tf.(type) {
	case smf.MetricTicks:
		return "PPQ"
	case smf.TimeCode:
		switch f.FramesPerSecond {
		case 24:
			return "SMPTE, 24 frames per second"
		case 25:
			return "SMPTE, 25 frames per second"
		case 29:
			return "SMPTE, 29.97 frames per second"
		case 30:
			return "SMPTE, 30 frames per second"
		}
		return fmt.Sprintf("SMPTE, %d frames per second", f.FramesPerSecond)
	}
	return fmt.Sprintf("(%v)", tf)
}
