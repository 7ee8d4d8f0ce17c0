package midi

import (
	"context"
	"slices"
	"sync"
	"time"

	"go-midiplayer/debug"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// PortEvent is emitted when an output port appears or disappears
type PortEvent struct {
	Type PortEventType
	Name string
}

type PortEventType int

const (
	PortConnected PortEventType = iota
	PortDisconnected
)

// PortManager tracks MIDI output ports with hot-plug detection
type PortManager struct {
	ports    map[string]drivers.Out
	mu       sync.RWMutex
	events   chan PortEvent
	pollRate time.Duration

	// listPorts is swapped in tests
	listPorts func() []drivers.Out
}

// NewPortManager creates a new port manager
func NewPortManager() *PortManager {
	return &PortManager{
		ports:    make(map[string]drivers.Out),
		events:   make(chan PortEvent, 16),
		pollRate: time.Second,
		listPorts: func() []drivers.Out {
			return gomidi.GetOutPorts()
		},
	}
}

// Events returns a channel of port connect/disconnect events
func (pm *PortManager) Events() <-chan PortEvent {
	return pm.events
}

// Names returns a sorted snapshot of connected port names
func (pm *PortManager) Names() []string {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	names := make([]string, 0, len(pm.ports))
	for name := range pm.ports {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Online reports whether the named port is currently present
func (pm *PortManager) Online(name string) bool {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	_, ok := pm.ports[name]
	return ok
}

// Open returns a sender for the named port
func (pm *PortManager) Open(name string) (func(gomidi.Message) error, error) {
	pm.mu.RLock()
	port, ok := pm.ports[name]
	pm.mu.RUnlock()

	if !ok {
		// Not scanned yet - look it up directly
		for _, p := range pm.listPorts() {
			if p.String() == name {
				port = p
				ok = true
				break
			}
		}
	}
	if !ok {
		return nil, fault.New("no such output port "+name,
			ftag.With(ftag.NotFound),
			fmsg.WithDesc("port not found", "MIDI output port \""+name+"\" not found"))
	}

	send, err := gomidi.SendTo(port)
	if err != nil {
		return nil, fault.Wrap(err, fmsg.With("open output port "+name))
	}
	return send, nil
}

// Run starts the polling loop (blocking - run in goroutine)
func (pm *PortManager) Run(ctx context.Context) {
	ticker := time.NewTicker(pm.pollRate)
	defer ticker.Stop()

	// Initial scan
	pm.Scan()

	for {
		select {
		case <-ctx.Done():
			close(pm.events)
			return
		case <-ticker.C:
			pm.Scan()
		}
	}
}

// Scan refreshes the port list once and emits change events
func (pm *PortManager) Scan() {
	ch := make(chan []drivers.Out, 1)
	go func() {
		ch <- pm.listPorts()
	}()

	// CoreMIDI can hang - skip this scan on timeout
	var outPorts []drivers.Out
	select {
	case outPorts = <-ch:
	case <-time.After(3 * time.Second):
		debug.Log("ports", "port scan timed out")
		return
	}

	seen := make(map[string]drivers.Out, len(outPorts))
	for _, p := range outPorts {
		seen[p.String()] = p
	}

	var changes []PortEvent

	pm.mu.Lock()
	for name, p := range seen {
		if _, exists := pm.ports[name]; !exists {
			pm.ports[name] = p
			changes = append(changes, PortEvent{Type: PortConnected, Name: name})
		}
	}
	for name := range pm.ports {
		if _, ok := seen[name]; !ok {
			delete(pm.ports, name)
			changes = append(changes, PortEvent{Type: PortDisconnected, Name: name})
		}
	}
	pm.mu.Unlock()

	for _, evt := range changes {
		debug.Log("ports", "port %q changed: %d", evt.Name, evt.Type)
		select {
		case pm.events <- evt:
		default:
			// Drop if nobody is listening
		}
	}
}
