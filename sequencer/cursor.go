package sequencer

import "go-midiplayer/track"

// DefaultLoopPause is the silence inserted between loop iterations, in ms
const DefaultLoopPause int64 = 1000

// Cursor is the playback position within an immutable track.
// It is advanced by exactly one clock and is not safe for concurrent use.
type Cursor struct {
	frames    track.Track
	offsets   []int64 // absolute time of each frame
	pos       int
	wait      int64 // ms until frames[pos] is due
	looping   bool
	finished  bool
	loopPause int64
}

// NewCursor creates a cursor positioned at the first frame
func NewCursor(t track.Track, looping bool) *Cursor {
	c := &Cursor{
		frames:    t,
		offsets:   make([]int64, len(t)),
		looping:   looping,
		loopPause: DefaultLoopPause,
	}
	var at int64
	for i, f := range t {
		at += f.Wait
		c.offsets[i] = at
	}
	c.Rewind()
	return c
}

// SetLoopPause changes the pause added when the track wraps around
func (c *Cursor) SetLoopPause(ms int64) {
	if ms < 0 {
		ms = 0
	}
	c.loopPause = ms
}

// SetLooping toggles looping; a finished cursor stays finished
func (c *Cursor) SetLooping(looping bool) {
	c.looping = looping
}

// Rewind resets to the first frame without re-parsing
func (c *Cursor) Rewind() {
	c.pos = 0
	c.finished = len(c.frames) == 0
	c.wait = 0
	if !c.finished {
		c.wait = c.frames[0].Wait
	}
}

// Tick advances by delta ms and fires every frame that is due within
// threshold ms. Frames are never skipped: several may fire in one tick.
// Returns the number of frames fired.
func (c *Cursor) Tick(delta, threshold int64, fire func(track.NoteEvent)) int {
	if c.finished {
		return 0
	}

	c.wait -= delta
	fired := 0
	for c.wait <= threshold && !c.finished {
		for _, n := range c.frames[c.pos].Notes {
			fire(n)
		}
		fired++
		c.pos++

		switch {
		case c.pos < len(c.frames):
			c.wait += c.frames[c.pos].Wait
		case c.looping:
			c.pos = 0
			c.wait += c.loopPause
			// one pass per tick, even with a zero pause
			return fired
		default:
			c.finished = true
		}
	}
	return fired
}

// Finished reports whether the last frame fired on a non-looping cursor
func (c *Cursor) Finished() bool { return c.finished }

// Position returns the index of the next frame to fire
func (c *Cursor) Position() int { return c.pos }

// Wait returns the ms remaining until the next frame
func (c *Cursor) Wait() int64 { return c.wait }

// Len returns the number of frames
func (c *Cursor) Len() int { return len(c.frames) }

// Looping reports whether the cursor wraps at the end
func (c *Cursor) Looping() bool { return c.looping }

// Duration returns the track length in ms
func (c *Cursor) Duration() int64 {
	if len(c.offsets) == 0 {
		return 0
	}
	return c.offsets[len(c.offsets)-1]
}

// Elapsed returns the approximate playback time within the current pass, in ms
func (c *Cursor) Elapsed() int64 {
	if c.finished {
		return c.Duration()
	}
	if len(c.offsets) == 0 {
		return 0
	}
	e := c.offsets[c.pos] - c.wait
	return max(0, min(e, c.Duration()))
}
