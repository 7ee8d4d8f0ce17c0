package parser

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"go-midiplayer/instruments"
	"go-midiplayer/midi"
	"go-midiplayer/track"
)

func buildFile(t *testing.T, tracks ...smf.Track) []byte {
	t.Helper()
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(480)
	for _, tr := range tracks {
		tr.Close(0)
		require.NoError(t, s.Add(tr))
	}
	var buf bytes.Buffer
	_, err := s.WriteTo(&buf)
	require.NoError(t, err)
	return buf.Bytes()
}

func parse(t *testing.T, p *Parser, tracks ...smf.Track) track.Track {
	t.Helper()
	frames, err := p.Parse(buildFile(t, tracks...))
	require.NoError(t, err)
	return frames
}

func times(frames track.Track) []int64 {
	var out []int64
	var at int64
	for _, f := range frames {
		at += f.Wait
		out = append(out, at)
	}
	return out
}

func TestParseHalfSecondAt120BPM(t *testing.T) {
	var tr smf.Track
	tr.Add(0, smf.MetaTempo(120))
	tr.Add(0, gomidi.NoteOn(0, 60, 127))
	tr.Add(480, gomidi.NoteOn(0, 62, 127))

	frames := parse(t, New(nil), tr)
	require.Len(t, frames, 2)
	assert.Equal(t, int64(0), frames[0].Wait)
	assert.Equal(t, int64(500), frames[1].Wait)

	// key 60 is octave 4, rebased onto the 4-5 harp range
	n := frames[0].Notes[0]
	assert.Equal(t, instruments.DefaultPatch, n.Patch)
	assert.InDelta(t, 0.5, n.Pitch, 1e-6)
	assert.InDelta(t, 3.0, n.Volume, 1e-6)
}

func TestParseDropsNotesBeforeFirstTempo(t *testing.T) {
	var tr smf.Track
	tr.Add(0, gomidi.NoteOn(0, 60, 100))
	tr.Add(0, smf.MetaTempo(120))
	tr.Add(480, gomidi.NoteOn(0, 64, 100))

	frames := parse(t, New(nil), tr)
	require.Len(t, frames, 1)
	require.Len(t, frames[0].Notes, 1)
	assert.InDelta(t, track.PitchRatio(4, 0), frames[0].Notes[0].Pitch, 1e-6)
}

func TestParseNoTempoIsEmpty(t *testing.T) {
	var tr smf.Track
	tr.Add(0, gomidi.NoteOn(0, 60, 100))
	tr.Add(480, gomidi.NoteOn(0, 64, 100))

	frames := parse(t, New(nil), tr)
	assert.Empty(t, frames)
}

func TestParseTempoAppliesAfterEvent(t *testing.T) {
	var tr smf.Track
	tr.Add(0, smf.MetaTempo(120))
	tr.Add(960, gomidi.NoteOn(0, 60, 100)) // 120 bpm: 1000ms
	tr.Add(0, smf.MetaTempo(60))
	tr.Add(0, gomidi.NoteOn(0, 62, 100)) // 60 bpm: 2000ms

	frames := parse(t, New(nil), tr)
	require.Len(t, frames, 2)
	assert.Equal(t, []int64{0, 1000}, times(frames))
}

func TestParseTempoCarriesAcrossTracks(t *testing.T) {
	var conductor smf.Track
	conductor.Add(0, smf.MetaTempo(60))

	var melody smf.Track
	melody.Add(0, gomidi.NoteOn(0, 60, 100))
	melody.Add(480, gomidi.NoteOn(0, 60, 100))

	frames := parse(t, New(nil), conductor, melody)
	require.Len(t, frames, 2)
	assert.Equal(t, int64(1000), frames[1].Wait)
}

func TestParseTimestampsAscend(t *testing.T) {
	var a, b smf.Track
	a.Add(0, smf.MetaTempo(100))
	for i := 0; i < 8; i++ {
		a.Add(240, gomidi.NoteOn(0, uint8(48+i), 90))
	}
	b.Add(100, gomidi.NoteOn(1, 72, 90))
	b.Add(333, gomidi.NoteOn(1, 74, 90))
	b.Add(17, gomidi.NoteOn(1, 76, 90))

	frames := parse(t, New(nil), a, b)
	require.NotEmpty(t, frames)
	assert.Equal(t, int64(0), frames[0].Wait)
	for _, f := range frames[1:] {
		assert.Greater(t, f.Wait, int64(0))
		assert.NotEmpty(t, f.Notes)
	}
}

func TestParseIsDeterministic(t *testing.T) {
	var tr smf.Track
	tr.Add(0, smf.MetaTempo(133))
	tr.Add(0, gomidi.NoteOn(0, 60, 100))
	tr.Add(0, gomidi.NoteOn(1, 67, 80))
	tr.Add(0, gomidi.NoteOn(9, 38, 127))
	tr.Add(57, gomidi.NoteOn(2, 71, 50))
	data := buildFile(t, tr)

	p := New(nil)
	first, err := p.Parse(data)
	require.NoError(t, err)
	second, err := p.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestParseDedupsAcrossChannels(t *testing.T) {
	var tr smf.Track
	tr.Add(0, smf.MetaTempo(120))
	tr.Add(0, gomidi.NoteOn(0, 60, 100))
	tr.Add(0, gomidi.NoteOn(1, 60, 20))

	frames := parse(t, New(nil), tr)
	require.Len(t, frames, 1)
	require.Len(t, frames[0].Notes, 1)
	assert.InDelta(t, track.Volume(100.0/127.0, 1), frames[0].Notes[0].Volume, 1e-6)
}

func TestParseDropsZeroVelocity(t *testing.T) {
	var tr smf.Track
	tr.Add(0, smf.MetaTempo(120))
	tr.Add(0, gomidi.NoteOn(0, 60, 0))
	tr.Add(10, gomidi.NoteOff(0, 60))

	frames := parse(t, New(nil), tr)
	assert.Empty(t, frames)
}

func TestParseDrumChannels(t *testing.T) {
	var tr smf.Track
	tr.Add(0, smf.MetaTempo(120))
	tr.Add(0, gomidi.NoteOn(9, 36, 127))
	tr.Add(0, gomidi.NoteOn(10, 38, 127))
	tr.Add(0, gomidi.NoteOn(9, 100, 127)) // not in the kit

	frames := parse(t, New(nil), tr)
	require.Len(t, frames, 1)
	require.Len(t, frames[0].Notes, 2)
	assert.Equal(t, "note.bd", frames[0].Notes[0].Patch)
	assert.Equal(t, "note.snare", frames[0].Notes[1].Patch)
	for _, n := range frames[0].Notes {
		assert.Equal(t, float32(1.0), n.Pitch)
	}
}

func TestParseCustomDrumChannels(t *testing.T) {
	var tr smf.Track
	tr.Add(0, smf.MetaTempo(120))
	tr.Add(0, gomidi.NoteOn(9, 36, 127))

	p := New(nil)
	p.DrumChannels = []uint8{3}
	frames := parse(t, p, tr)
	require.Len(t, frames, 1)
	assert.Equal(t, instruments.DefaultPatch, frames[0].Notes[0].Patch)
}

func TestParseMasterVolume(t *testing.T) {
	var tr smf.Track
	tr.Add(0, smf.MetaTempo(120))
	tr.Add(0, gomidi.ControlChange(0, midi.ControllerVolume, 64))
	tr.Add(0, gomidi.NoteOn(0, 60, 127))
	tr.Add(0, gomidi.NoteOn(1, 62, 127))

	frames := parse(t, New(nil), tr)
	require.Len(t, frames, 1)
	require.Len(t, frames[0].Notes, 2)
	assert.InDelta(t, 64.0/127.0*3, frames[0].Notes[0].Volume, 1e-5)
	assert.InDelta(t, 3.0, frames[0].Notes[1].Volume, 1e-5)
}

const programMap = `D  note.harp   100%  0-1 2-3 4-5 6-7 8-9
5  note.pling  50%   3-6
`

func TestParseProgramChanges(t *testing.T) {
	insts, def, err := instruments.ParseInstrumentMap(strings.NewReader(programMap))
	require.NoError(t, err)
	resolver := instruments.NewResolver(instruments.NewTable(insts, def, nil, nil))

	var tr smf.Track
	tr.Add(0, smf.MetaTempo(120))
	tr.Add(0, gomidi.ProgramChange(0, 5))
	tr.Add(0, gomidi.ProgramChange(1, 99)) // unmapped
	tr.Add(0, gomidi.NoteOn(0, 72, 127))   // octave 5 -> pling, rebased to 2
	tr.Add(0, gomidi.NoteOn(1, 72, 127))   // dropped
	tr.Add(0, gomidi.NoteOn(2, 72, 127))   // default instrument

	frames := parse(t, New(resolver), tr)
	require.Len(t, frames, 1)
	require.Len(t, frames[0].Notes, 2)

	pling := frames[0].Notes[0]
	assert.Equal(t, "note.pling", pling.Patch)
	assert.InDelta(t, track.PitchRatio(0, 2), pling.Pitch, 1e-6)
	assert.InDelta(t, 1.5, pling.Volume, 1e-6)

	harp := frames[0].Notes[1]
	assert.Equal(t, "note.harp", harp.Patch)
	assert.InDelta(t, track.PitchRatio(0, 1), harp.Pitch, 1e-6)
}

func TestParseUsesResolverSnapshot(t *testing.T) {
	var tr smf.Track
	tr.Add(0, smf.MetaTempo(120))
	tr.Add(0, gomidi.NoteOn(0, 60, 127))
	data := buildFile(t, tr)

	resolver := instruments.NewResolver(nil)
	p := New(resolver)

	before, err := p.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, instruments.DefaultPatch, before[0].Notes[0].Patch)

	insts, def, err := instruments.ParseInstrumentMap(strings.NewReader("D note.flute 100% 0-11\n0 note.flute 100% 0-11\n"))
	require.NoError(t, err)
	resolver.Swap(instruments.NewTable(insts, def, nil, nil))

	after, err := p.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "note.flute", after[0].Notes[0].Patch)
}

func TestParseOctaveFilterRejectsTrack(t *testing.T) {
	insts, def, err := instruments.ParseInstrumentMap(strings.NewReader("D note.harp 100% 0-9\n0 note.harp 100% 0-9\n"))
	require.NoError(t, err)
	resolver := instruments.NewResolver(instruments.NewTable(insts, def, nil, nil))

	var tr smf.Track
	tr.Add(0, smf.MetaTempo(120))
	tr.Add(0, gomidi.NoteOn(0, 24, 100)) // octave 1
	tr.Add(0, gomidi.NoteOn(0, 60, 100)) // octave 4

	p := New(resolver)
	assert.Len(t, parse(t, p, tr)[0].Notes, 2)

	p.Filter = FilterCut
	assert.Len(t, parse(t, p, tr)[0].Notes, 1)

	p.Filter = FilterModulo
	assert.Len(t, parse(t, p, tr)[0].Notes, 2)

	// octave 4 moves to 3, outside the band
	p.Filter = FilterMoveToMin
	assert.Empty(t, parse(t, p, tr))

	p.Filter = FilterNormalize
	frames := parse(t, p, tr)
	require.Len(t, frames[0].Notes, 2)
	assert.InDelta(t, track.PitchRatio(0, 0), frames[0].Notes[0].Pitch, 1e-6)
	assert.InDelta(t, track.PitchRatio(0, 1), frames[0].Notes[1].Pitch, 1e-6)
}

func TestParseCorruptFile(t *testing.T) {
	_, err := New(nil).Parse([]byte("MThd garbage"))
	require.Error(t, err)
	assert.True(t, midi.IsFormat(err))
}

func TestParseFileMissing(t *testing.T) {
	_, err := New(nil).ParseFile(t.TempDir() + "/nope.mid")
	require.Error(t, err)
	assert.True(t, midi.IsIO(err))
}
