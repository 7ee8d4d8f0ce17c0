package midi

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

func buildFile(t *testing.T, resolution uint16, tracks ...smf.Track) []byte {
	t.Helper()
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(resolution)
	for _, tr := range tracks {
		tr.Close(0)
		require.NoError(t, s.Add(tr))
	}
	var buf bytes.Buffer
	_, err := s.WriteTo(&buf)
	require.NoError(t, err)
	return buf.Bytes()
}

func TestMillis(t *testing.T) {
	tempo := TempoFromBPM(120)
	assert.Equal(t, int64(500), Millis(480, 480, tempo))
	assert.Equal(t, int64(0), Millis(0, 480, tempo))
	assert.Equal(t, int64(1000), Millis(480, 480, TempoFromBPM(60)))

	// truncated, not rounded
	assert.Equal(t, int64(1), Millis(1, 480, tempo))
}

func TestMillisIndeterminate(t *testing.T) {
	assert.Equal(t, Indeterminate, Millis(480, 480, Tempo{}))
	assert.Equal(t, Indeterminate, Millis(480, 0, TempoFromBPM(120)))
	assert.False(t, TempoFromBPM(0).Known())
	assert.False(t, TempoFromBPM(-3).Known())
}

func TestTempo(t *testing.T) {
	tempo := TempoFromBPM(120)
	assert.True(t, tempo.Known())
	assert.InDelta(t, 500000, tempo.MicrosPerQuarter, 1e-6)
	assert.InDelta(t, 120, tempo.BPM(), 1e-9)
	assert.Equal(t, 0.0, Tempo{}.BPM())
}

func TestResolution(t *testing.T) {
	res, err := Resolution(smf.MetricTicks(96))
	require.NoError(t, err)
	assert.Equal(t, uint16(96), res)

	_, err = Resolution(smf.TimeCode{FramesPerSecond: 25, SubFrames: 40})
	require.Error(t, err)
	assert.True(t, IsFormat(err))
	assert.Equal(t, "Unsupported DivisionType SMPTE, 25 frames per second", Issue(err))

	_, err = Resolution(nil)
	assert.True(t, IsFormat(err))
}

func TestLoadSMPTE(t *testing.T) {
	data := []byte{
		'M', 'T', 'h', 'd', 0, 0, 0, 6,
		0, 0, // format 0
		0, 1, // one track
		0xE7, 0x28, // -25 fps, 40 subframes
		'M', 'T', 'r', 'k', 0, 0, 0, 4,
		0x00, 0xFF, 0x2F, 0x00,
	}
	var err error
	require.NotPanics(t, func() { _, err = Load(data) })
	require.Error(t, err)
	assert.True(t, IsFormat(err))
	assert.False(t, IsIO(err))
	assert.Equal(t, "Unsupported DivisionType SMPTE, 25 frames per second", Issue(err))
}

func TestLoadDamagedFiles(t *testing.T) {
	var tr smf.Track
	tr.Add(0, smf.MetaTempo(120))
	tr.Add(0, gomidi.ProgramChange(0, 3))
	for i := 0; i < 20; i++ {
		tr.Add(120, gomidi.NoteOn(0, uint8(48+i), 100))
		tr.Add(60, gomidi.NoteOff(0, uint8(48+i)))
	}
	valid := buildFile(t, 480, tr)

	var inputs [][]byte
	for n := 0; n < len(valid); n++ {
		inputs = append(inputs, valid[:n])
	}
	for i := 14; i < len(valid); i++ {
		for _, b := range []byte{0x00, 0x03, 0x7F, 0x80, 0xC0, 0xFF} {
			mutated := append([]byte(nil), valid...)
			mutated[i] = b
			if i+2 < len(mutated) {
				mutated[i+2] ^= b
			}
			inputs = append(inputs, mutated)
		}
	}

	for _, data := range inputs {
		var err error
		require.NotPanics(t, func() { _, err = Load(data) }, "input % x", data)
		if err != nil {
			assert.True(t, IsFormat(err), "input % x: %v", data, err)
		}
	}
}

func TestLoadCorrupt(t *testing.T) {
	_, err := Load([]byte("definitely not a midi file"))
	require.Error(t, err)
	assert.True(t, IsFormat(err))
	assert.Equal(t, "Invalid or corrupted MIDI file", Issue(err))
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.mid"))
	require.Error(t, err)
	assert.True(t, IsIO(err))
	assert.False(t, IsFormat(err))
	assert.Equal(t, "Unable to read the MIDI file", Issue(err))
}

func TestLoadDecodesAbsoluteTicks(t *testing.T) {
	var tr smf.Track
	tr.Add(0, smf.MetaTempo(120))
	tr.Add(0, gomidi.ProgramChange(2, 33))
	tr.Add(240, gomidi.ControlChange(2, ControllerVolume, 64))
	tr.Add(240, gomidi.NoteOn(2, 60, 100))
	tr.Add(120, gomidi.NoteOff(2, 60))

	song, err := Load(buildFile(t, 480, tr))
	require.NoError(t, err)
	assert.Equal(t, uint16(480), song.Resolution)
	require.Len(t, song.Tracks, 1)

	events := song.Tracks[0]
	require.Len(t, events, 5)
	assert.Equal(t, 5, song.EventCount())

	assert.Equal(t, KindTempo, events[0].Kind)
	assert.InDelta(t, 120, events[0].Tempo.BPM(), 1e-6)

	assert.Equal(t, KindProgramChange, events[1].Kind)
	assert.Equal(t, uint8(2), events[1].Channel)
	assert.Equal(t, uint8(33), events[1].Data1)

	assert.Equal(t, KindControlChange, events[2].Kind)
	assert.Equal(t, uint64(240), events[2].Tick)
	assert.Equal(t, uint8(64), events[2].Data2)

	assert.Equal(t, KindNoteOn, events[3].Kind)
	assert.Equal(t, uint64(480), events[3].Tick)
	assert.Equal(t, uint8(60), events[3].Data1)
	assert.Equal(t, uint8(100), events[3].Data2)

	assert.Equal(t, KindNoteOff, events[4].Kind)
	assert.Equal(t, uint64(600), events[4].Tick)
}

func TestLoadEmptyTrack(t *testing.T) {
	song, err := Load(buildFile(t, 96, smf.Track{}))
	require.NoError(t, err)
	require.Len(t, song.Tracks, 1)
	assert.Empty(t, song.Tracks[0])
}
