package output

import (
	"fmt"
	"io"
	"sync"

	"go-midiplayer/debug"
	"go-midiplayer/sequencer"
)

// Console prints every sound it is asked to play. Used for headless runs.
type Console struct {
	id  string
	w   io.Writer
	loc *sequencer.Position

	mu    sync.Mutex
	count int
}

// NewConsole creates a console destination writing to w (nil logs only)
func NewConsole(id string, w io.Writer) *Console {
	return &Console{id: id, w: w}
}

// SetLocation gives the console a fixed position
func (c *Console) SetLocation(p sequencer.Position) {
	c.loc = &p
}

func (c *Console) ID() string { return c.id }

func (c *Console) Online() bool { return true }

func (c *Console) Location() (sequencer.Position, bool) {
	if c.loc == nil {
		return sequencer.Position{}, false
	}
	return *c.loc, true
}

func (c *Console) PlaySound(loc *sequencer.Position, patch string, volume, pitch float32) error {
	c.mu.Lock()
	c.count++
	n := c.count
	c.mu.Unlock()

	line := formatSound(patch, volume, pitch, loc)
	debug.Log("console", "#%d %s", n, line)
	if c.w == nil {
		return nil
	}
	_, err := fmt.Fprintln(c.w, line)
	return err
}

// Count returns the number of sounds played
func (c *Console) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

func formatSound(patch string, volume, pitch float32, loc *sequencer.Position) string {
	s := fmt.Sprintf("%-12s vol=%.2f pitch=%.3f", patch, volume, pitch)
	if loc != nil {
		s += fmt.Sprintf(" @ %s(%.1f, %.1f, %.1f)", loc.World, loc.X, loc.Y, loc.Z)
	}
	return s
}
