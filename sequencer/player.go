package sequencer

import (
	"math"
	"sync"

	"go-midiplayer/debug"
)

// Player advances all active sessions from a single clock.
// It re-arms itself once per run, timed to the earliest due frame.
type Player struct {
	clock     Clock
	tickMs    int64
	threshold int64

	mu       sync.Mutex
	sessions map[string]*Session
	order    []string
	gen      uint64 // invalidates superseded callbacks
	armed    bool

	// Notify UI of updates
	UpdateChan chan struct{}
}

// NewPlayer creates a player driven by clock
func NewPlayer(clock Clock) *Player {
	tickMs := clock.TickLength().Milliseconds()
	if tickMs <= 0 {
		tickMs = 1
	}
	return &Player{
		clock:      clock,
		tickMs:     tickMs,
		threshold:  tickMs / 2,
		sessions:   make(map[string]*Session),
		UpdateChan: make(chan struct{}, 1),
	}
}

// Threshold returns the coalescing window in ms (half a tick)
func (p *Player) Threshold() int64 {
	return p.threshold
}

// Play starts a session, replacing any active session with the same ID
func (p *Player) Play(s *Session) {
	s.start(p.nowMillis())

	p.mu.Lock()
	if _, ok := p.sessions[s.ID]; !ok {
		p.order = append(p.order, s.ID)
	}
	p.sessions[s.ID] = s
	g := p.rearm()
	p.mu.Unlock()

	debug.Log("player", "play %s (%d frames)", s.ID, s.cursor.Len())
	p.clock.ScheduleTick(1, func() { p.run(g) })
	p.notifyUpdate()
}

// Stop removes a session. Returns false if it was not playing.
func (p *Player) Stop(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.removeLocked(id) {
		return false
	}
	debug.Log("player", "stop %s", id)
	p.notifyUpdate()
	return true
}

// StopAll removes every session
func (p *Player) StopAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sessions = make(map[string]*Session)
	p.order = nil
	p.armed = false
	p.gen++
	p.notifyUpdate()
}

// Active returns the number of playing sessions
func (p *Player) Active() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sessions)
}

// Session returns an active session by ID
func (p *Player) Session(id string) (*Session, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.sessions[id]
	return s, ok
}

// Status returns a snapshot of every active session, in start order
func (p *Player) Status() []SessionStatus {
	out := make([]SessionStatus, 0)
	for _, s := range p.active() {
		out = append(out, s.Status())
	}
	return out
}

func (p *Player) active() []*Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*Session, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, p.sessions[id])
	}
	return out
}

// rearm starts a new callback generation; caller holds p.mu
func (p *Player) rearm() uint64 {
	p.gen++
	p.armed = true
	return p.gen
}

func (p *Player) removeLocked(id string) bool {
	if _, ok := p.sessions[id]; !ok {
		return false
	}
	delete(p.sessions, id)
	for i, o := range p.order {
		if o == id {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
	if len(p.sessions) == 0 {
		p.armed = false
		p.gen++
	}
	return true
}

// run is one clock callback
func (p *Player) run(gen uint64) {
	p.mu.Lock()
	stale := gen != p.gen || !p.armed
	p.mu.Unlock()
	if stale {
		return
	}

	now := p.nowMillis()
	sessions := p.active()

	fired := 0
	next := int64(math.MaxInt64)
	var done []*Session
	for _, s := range sessions {
		fired += s.Advance(now, p.threshold)
		if s.Finished() {
			done = append(done, s)
			continue
		}
		next = min(next, s.Wait())
	}

	p.mu.Lock()
	if gen != p.gen {
		// Play or Stop ran meanwhile and owns the schedule now
		p.mu.Unlock()
		if fired > 0 || len(done) > 0 {
			p.notifyUpdate()
		}
		return
	}
	for _, s := range done {
		if cur, ok := p.sessions[s.ID]; ok && cur == s {
			p.removeLocked(s.ID)
			debug.Log("player", "finished %s", s.ID)
		}
	}
	if len(p.sessions) == 0 {
		p.armed = false
		p.mu.Unlock()
		p.notifyUpdate()
		return
	}
	g := p.rearm()
	p.mu.Unlock()

	p.clock.ScheduleTick(p.ticksUntil(next), func() { p.run(g) })
	if fired > 0 || len(done) > 0 {
		p.notifyUpdate()
	}
}

// ticksUntil converts a remaining wait into a tick delay, at least one tick
func (p *Player) ticksUntil(wait int64) uint32 {
	due := wait - p.threshold
	if due <= 0 {
		return 1
	}
	ticks := (due + p.tickMs - 1) / p.tickMs
	if ticks > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(ticks)
}

func (p *Player) nowMillis() int64 {
	return p.clock.Now().Milliseconds()
}

// notifyUpdate signals the UI without blocking
func (p *Player) notifyUpdate() {
	select {
	case p.UpdateChan <- struct{}{}:
	default:
	}
}
