package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-midiplayer/output"
	"go-midiplayer/sequencer"
	"go-midiplayer/track"
)

func newTestModel() (Model, *sequencer.Player) {
	player := sequencer.NewPlayer(sequencer.NewTickClock(sequencer.DefaultTickLength))
	listeners := sequencer.NewListeners(output.NewConsole("console", nil))
	return NewModel(player, listeners, nil, nil), player
}

func TestViewIdle(t *testing.T) {
	m, _ := newTestModel()
	view := m.View()
	assert.Contains(t, view, "0 playing")
	assert.Contains(t, view, "nothing playing")
	assert.Contains(t, view, "console")
}

func TestViewShowsSessions(t *testing.T) {
	m, player := newTestModel()
	frames := track.Track{{Wait: 0, Notes: []track.NoteEvent{{Patch: "note.harp", Pitch: 1, Volume: 1}}}}
	player.Play(sequencer.NewSession("a", "song.mid", frames, true, m.Listeners))

	view := m.View()
	assert.Contains(t, view, "1 playing")
	assert.Contains(t, view, "song.mid")
	assert.Contains(t, view, "frame 0/1")
}

func TestKeys(t *testing.T) {
	m, player := newTestModel()
	frames := track.Track{{Wait: 0}, {Wait: 500}}
	player.Play(sequencer.NewSession("a", "", frames, false, nil))

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("l")})
	m = next.(Model)
	require.Len(t, player.Status(), 1)
	assert.True(t, player.Status()[0].Looping)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	m = next.(Model)
	assert.Equal(t, 0, player.Active())
	assert.Contains(t, m.View(), "stopped")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
