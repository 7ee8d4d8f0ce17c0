package widgets

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestFormatMillis(t *testing.T) {
	assert.Equal(t, "0:00.0", FormatMillis(0))
	assert.Equal(t, "0:00.5", FormatMillis(500))
	assert.Equal(t, "1:05.2", FormatMillis(65250))
	assert.Equal(t, "0:00.0", FormatMillis(-10))
}

func TestBarWidth(t *testing.T) {
	b := Bar{Width: 10, Full: '#', Empty: '.'}
	assert.Equal(t, 10, lipgloss.Width(b.Render(0.5)))
	assert.Equal(t, 10, lipgloss.Width(b.Render(2)))
	assert.Equal(t, "", Bar{}.Render(1))
}
