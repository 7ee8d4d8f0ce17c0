package track

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateOrdersAndConvertsToWaits(t *testing.T) {
	notes := []NoteEvent{
		{Millis: 700, Patch: "c", Pitch: 1},
		{Millis: 200, Patch: "a", Pitch: 1},
		{Millis: 450, Patch: "b", Pitch: 1},
		{Millis: 200, Patch: "a", Pitch: 0.5},
	}
	frames := Aggregate(notes)
	require.Len(t, frames, 3)

	assert.Equal(t, int64(0), frames[0].Wait)
	assert.Equal(t, int64(250), frames[1].Wait)
	assert.Equal(t, int64(250), frames[2].Wait)
	assert.Len(t, frames[0].Notes, 2)
	assert.Equal(t, int64(500), frames.Duration())
	assert.Equal(t, 4, frames.NoteCount())
}

func TestAggregateDedupIgnoresVolume(t *testing.T) {
	notes := []NoteEvent{
		{Millis: 10, Patch: "note.harp", Pitch: 1, Volume: 0.5},
		{Millis: 10, Patch: "note.harp", Pitch: 1, Volume: 2.5},
		{Millis: 10, Patch: "note.bass", Pitch: 1, Volume: 1},
	}
	frames := Aggregate(notes)
	require.Len(t, frames, 1)
	require.Len(t, frames[0].Notes, 2)

	// first occurrence wins
	assert.Equal(t, float32(0.5), frames[0].Notes[0].Volume)
	assert.Equal(t, "note.bass", frames[0].Notes[1].Patch)
}

func TestAggregateEmpty(t *testing.T) {
	frames := Aggregate(nil)
	assert.NotNil(t, frames)
	assert.Empty(t, frames)
	assert.Equal(t, int64(0), frames.Duration())
}

func TestPitchRatio(t *testing.T) {
	// Even octaves sit an octave below unity, odd octaves start at unity
	assert.InDelta(t, 0.5, PitchRatio(0, 0), 1e-6)
	assert.InDelta(t, 1.0, PitchRatio(0, 1), 1e-6)
	assert.InDelta(t, 1.0, PitchRatio(0, 3), 1e-6)
	assert.InDelta(t, 1.887749, PitchRatio(11, 1), 1e-5)
	assert.InDelta(t, 0.707107, PitchRatio(6, 4), 1e-5)

	// negative octaves wrap below the range
	assert.InDelta(t, 0.25, PitchRatio(0, -1), 1e-6)
}

func TestVolumeClampsBeforeHeadroom(t *testing.T) {
	assert.InDelta(t, 3.0, Volume(1, 1.5), 1e-6)
	assert.InDelta(t, 1.5, Volume(0.5, 1), 1e-6)
	assert.InDelta(t, 0.0, Volume(0.5, -1), 1e-6)
	assert.InDelta(t, 2.4, Volume(1, 0.8), 1e-6)
}

func TestPlayable(t *testing.T) {
	assert.True(t, Playable(0))
	assert.True(t, Playable(2))
	assert.False(t, Playable(2.01))
	assert.False(t, Playable(-0.1))
}
