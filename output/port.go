package output

import (
	"math"
	"sync"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/ftag"
	gomidi "gitlab.com/gomidi/midi/v2"

	"go-midiplayer/debug"
	"go-midiplayer/midi"
	"go-midiplayer/sequencer"
)

// GM percussion channel (zero-based)
const DrumChannel uint8 = 9

// DefaultNoteLength is how long each note is held before its note-off
const DefaultNoteLength = 100 * time.Millisecond

// DefaultDrumKeys maps the built-in drum patches back to GM keys
var DefaultDrumKeys = map[string]uint8{
	"note.bd":    36,
	"note.snare": 38,
	"note.hat":   42,
}

// PortOptions configures a MIDI port destination
type PortOptions struct {
	Channel    uint8            // zero-based melodic channel
	Center     uint8            // key played at pitch 1.0
	Programs   map[string]uint8 // patch -> program number
	DrumKeys   map[string]uint8 // patch -> key on the drum channel
	NoteLength time.Duration
}

// Port plays sounds on a MIDI output port
type Port struct {
	name  string
	opts  PortOptions
	ports *midi.PortManager

	mu      sync.Mutex
	send    func(gomidi.Message) error
	program int // last program sent, -1 = none
	pending map[noteKey]*time.Timer
}

type noteKey struct {
	channel, key uint8
}

// NewPort creates a destination for the named port. The port is opened
// lazily and goes offline when the port manager stops seeing it.
func NewPort(name string, ports *midi.PortManager, opts PortOptions) *Port {
	if opts.Center == 0 {
		opts.Center = 60
	}
	if opts.NoteLength <= 0 {
		opts.NoteLength = DefaultNoteLength
	}
	if opts.DrumKeys == nil {
		opts.DrumKeys = DefaultDrumKeys
	}
	return &Port{
		name:    name,
		opts:    opts,
		ports:   ports,
		program: -1,
		pending: make(map[noteKey]*time.Timer),
	}
}

// NewPortWithSender creates a destination around an already open sender
func NewPortWithSender(name string, send func(gomidi.Message) error, opts PortOptions) *Port {
	p := NewPort(name, nil, opts)
	p.send = send
	return p
}

func (p *Port) ID() string { return "port:" + p.name }

func (p *Port) Online() bool {
	if p.ports != nil {
		return p.ports.Online(p.name)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.send != nil
}

func (p *Port) Location() (sequencer.Position, bool) {
	return sequencer.Position{}, false
}

// Disconnect drops the open sender; the next sound reopens the port
func (p *Port) Disconnect() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ports != nil {
		p.send = nil
	}
	p.program = -1
}

func (p *Port) PlaySound(_ *sequencer.Position, patch string, volume, pitch float32) error {
	send, err := p.sender()
	if err != nil {
		return err
	}

	ch, key := p.opts.Channel, PitchKey(p.opts.Center, pitch)
	if drumKey, ok := p.opts.DrumKeys[patch]; ok {
		ch, key = DrumChannel, drumKey
	} else if prog, ok := p.opts.Programs[patch]; ok {
		if err := p.selectProgram(send, prog); err != nil {
			return err
		}
	}

	if err := send(gomidi.NoteOn(ch, key, Velocity(volume))); err != nil {
		return err
	}
	p.scheduleNoteOff(send, ch, key)
	return nil
}

// scheduleNoteOff releases the key after NoteLength. A retrigger of the same
// key replaces the pending note-off so the new note is held in full.
func (p *Port) scheduleNoteOff(send func(gomidi.Message) error, ch, key uint8) {
	k := noteKey{ch, key}

	p.mu.Lock()
	defer p.mu.Unlock()
	if prev, ok := p.pending[k]; ok {
		prev.Stop()
	}

	var timer *time.Timer
	timer = time.AfterFunc(p.opts.NoteLength, func() {
		p.mu.Lock()
		if p.pending[k] != timer {
			p.mu.Unlock()
			return
		}
		delete(p.pending, k)
		p.mu.Unlock()

		if err := send(gomidi.NoteOff(ch, key)); err != nil {
			debug.Log("port", "%s: note off failed: %v", p.name, err)
		}
	})
	p.pending[k] = timer
}

func (p *Port) sender() (func(gomidi.Message) error, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.send != nil {
		return p.send, nil
	}
	if p.ports == nil {
		return nil, fault.New("port "+p.name+" is closed", ftag.With(ftag.NotFound))
	}
	send, err := p.ports.Open(p.name)
	if err != nil {
		return nil, err
	}
	debug.Log("port", "opened %s", p.name)
	p.send = send
	return send, nil
}

func (p *Port) selectProgram(send func(gomidi.Message) error, prog uint8) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.program == int(prog) {
		return nil
	}
	if err := send(gomidi.ProgramChange(p.opts.Channel, prog)); err != nil {
		return err
	}
	p.program = int(prog)
	return nil
}

// PitchKey maps a pitch ratio onto a MIDI key around center
func PitchKey(center uint8, pitch float32) uint8 {
	if pitch <= 0 {
		return clampKey(int(center) - 24)
	}
	semis := math.Round(12 * math.Log2(float64(pitch)))
	return clampKey(int(center) + int(semis))
}

// Velocity maps a 0..3 volume onto a MIDI velocity
func Velocity(volume float32) uint8 {
	v := int(math.Round(float64(volume) / 3 * 127))
	return uint8(max(1, min(127, v)))
}

func clampKey(k int) uint8 {
	return uint8(max(0, min(127, k)))
}

// HandleEvent disconnects the destination when its port disappears
func (p *Port) HandleEvent(evt midi.PortEvent) {
	if evt.Type != midi.PortDisconnected || evt.Name != p.name {
		return
	}
	debug.Log("port", "%s went away", p.name)
	p.Disconnect()
}

// WatchPorts forwards port events to destinations. It returns when events is
// closed.
func WatchPorts(events <-chan midi.PortEvent, ports ...*Port) {
	for evt := range events {
		for _, p := range ports {
			p.HandleEvent(evt)
		}
	}
}
