package sequencer

import (
	"sync"

	"go-midiplayer/debug"
	"go-midiplayer/track"
)

// Session is one track playing to a set of listeners
type Session struct {
	ID   string
	Name string

	mu          sync.Mutex
	cursor      *Cursor
	listeners   *Listeners
	location    *Position // shared location when not per-listener
	perListener bool
	last        int64 // clock time of the previous advance, ms
	started     bool
	fired       int
	failed      int
}

// SessionStatus is a point-in-time view of a session for display
type SessionStatus struct {
	ID        string
	Name      string
	Position  int
	Frames    int
	Wait      int64
	Elapsed   int64
	Duration  int64
	Looping   bool
	Finished  bool
	Listeners int
	Fired     int
	Failed    int
}

// NewSession creates a session. A nil listener set creates an empty one.
func NewSession(id, name string, t track.Track, looping bool, listeners *Listeners) *Session {
	if listeners == nil {
		listeners = NewListeners()
	}
	return &Session{
		ID:        id,
		Name:      name,
		cursor:    NewCursor(t, looping),
		listeners: listeners,
	}
}

// Listeners returns the session's listener set
func (s *Session) Listeners() *Listeners {
	return s.listeners
}

// SetLocation sets the shared location every listener hears the session at
func (s *Session) SetLocation(p Position) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.location = &p
}

// SetPerListener makes each sound play at its listener's own location
func (s *Session) SetPerListener(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.perListener = on
}

// SetLoopPause changes the pause between loop iterations
func (s *Session) SetLoopPause(ms int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor.SetLoopPause(ms)
}

// SetLooping toggles looping
func (s *Session) SetLooping(looping bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor.SetLooping(looping)
}

// Rewind restarts the session from the first frame
func (s *Session) Rewind() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor.Rewind()
}

// Finished reports whether the session has nothing left to play
func (s *Session) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor.Finished()
}

// Wait returns ms until the next frame is due
func (s *Session) Wait() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor.Wait()
}

// start anchors the session's timeline at clock time now (ms)
func (s *Session) start(now int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = now
	s.started = true
}

// Advance moves the session to clock time now (ms) and fires due frames.
// The first call only records the start time.
func (s *Session) Advance(now, threshold int64) int {
	// One snapshot per tick; membership changes apply next tick
	targets := s.listeners.Snapshot()

	s.mu.Lock()
	delta := now - s.last
	if !s.started {
		delta = 0
		s.started = true
	}
	s.last = now

	var due []track.NoteEvent
	frames := s.cursor.Tick(delta, threshold, func(n track.NoteEvent) {
		due = append(due, n)
	})
	shared, perListener := s.location, s.perListener
	s.mu.Unlock()

	if len(due) == 0 {
		return frames
	}

	fired, failed := 0, 0
	for _, n := range due {
		if n.Volume <= 0 {
			continue
		}
		for _, l := range targets {
			if !l.Online() {
				continue
			}
			loc := shared
			if perListener {
				loc = nil
				if p, ok := l.Location(); ok {
					loc = &p
				}
			}
			if err := l.PlaySound(loc, n.Patch, n.Volume, n.Pitch); err != nil {
				failed++
				debug.LogEvery(50, "session", "%s: play %s for %s failed: %v", s.ID, n.Patch, l.ID(), err)
				continue
			}
			fired++
		}
	}

	s.mu.Lock()
	s.fired += fired
	s.failed += failed
	s.mu.Unlock()
	return frames
}

// Status returns a snapshot for display
func (s *Session) Status() SessionStatus {
	n := s.listeners.Len()
	s.mu.Lock()
	defer s.mu.Unlock()
	return SessionStatus{
		ID:        s.ID,
		Name:      s.Name,
		Position:  s.cursor.Position(),
		Frames:    s.cursor.Len(),
		Wait:      s.cursor.Wait(),
		Elapsed:   s.cursor.Elapsed(),
		Duration:  s.cursor.Duration(),
		Looping:   s.cursor.Looping(),
		Finished:  s.cursor.Finished(),
		Listeners: n,
		Fired:     s.fired,
		Failed:    s.failed,
	}
}
