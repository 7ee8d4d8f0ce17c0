package track

import "math"

// HeadroomScale is applied after clamping velocity * scale to [0,1]
const HeadroomScale float32 = 3.0

// MaxPitch is the highest pitch ratio the target can play
const MaxPitch float32 = 2.0

// NoteEvent is one sound due at an absolute time
type NoteEvent struct {
	Millis int64
	Patch  string
	Pitch  float32 // 0..2, 1.0 = unshifted
	Volume float32 // 0..3
}

// Same reports whether two notes sound identical (volume is ignored)
func (n NoteEvent) Same(o NoteEvent) bool {
	return n.Patch == o.Patch && n.Pitch == o.Pitch
}

// Frame is a group of notes fired together after waiting Wait ms from the previous frame
type Frame struct {
	Wait  int64
	Notes []NoteEvent
}

// Track is the playable unit: frames in ascending time order. Immutable once built.
type Track []Frame

// Duration returns the total time from the first frame to the last, in ms
func (t Track) Duration() int64 {
	var total int64
	for _, f := range t {
		total += f.Wait
	}
	return total
}

// NoteCount returns the number of notes across all frames
func (t Track) NoteCount() int {
	n := 0
	for _, f := range t {
		n += len(f.Notes)
	}
	return n
}

// PitchRatio maps a note within an octave onto the 2-octave pitch range
func PitchRatio(note, octave int) float32 {
	return float32(math.Pow(2, float64(note+12*(octave%2)-12)/12.0))
}

// Volume combines a normalized channel volume with an instrument scale.
// The product is clamped to [0,1] before the headroom scale is applied.
func Volume(channelVolume, scale float32) float32 {
	if scale < 0 {
		scale = 0
	}
	v := channelVolume * scale
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return v * HeadroomScale
}

// Playable reports whether the pitch is inside the target's range
func Playable(pitch float32) bool {
	return pitch >= 0 && pitch <= MaxPitch
}
