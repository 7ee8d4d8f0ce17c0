package parser

import (
	"go-midiplayer/instruments"
	"go-midiplayer/midi"
)

// DefaultMasterVolume is the channel volume before any CC7 is seen
const DefaultMasterVolume uint8 = 127

// ChannelState is the instrument and master volume assigned to one channel
type ChannelState struct {
	Channel      uint8
	Instrument   *instruments.Instrument // nil after a change to an unmapped program
	HasProgram   bool
	MasterVolume uint8
}

// Channels tracks all 16 channels for the duration of one parse
type Channels struct {
	table  *instruments.Table
	states [midi.NumChannels]ChannelState
}

// NewChannels creates channel state backed by a mapping table snapshot
func NewChannels(table *instruments.Table) *Channels {
	c := &Channels{table: table}
	for i := range c.states {
		c.states[i] = ChannelState{
			Channel:      uint8(i),
			MasterVolume: DefaultMasterVolume,
		}
	}
	return c
}

// SetProgram assigns the instrument for a program change
func (c *Channels) SetProgram(ch, program uint8) {
	if int(ch) >= midi.NumChannels {
		return
	}
	inst, _ := c.table.Instrument(int(program))
	c.states[ch] = ChannelState{
		Channel:      ch,
		Instrument:   inst,
		HasProgram:   true,
		MasterVolume: c.states[ch].MasterVolume,
	}
}

// SetVolume records a master volume change
func (c *Channels) SetVolume(ch, volume uint8) {
	if int(ch) >= midi.NumChannels {
		return
	}
	st := c.states[ch]
	st.MasterVolume = volume
	c.states[ch] = st
}

// Instrument returns the channel's instrument; channels without a program
// change use the table default
func (c *Channels) Instrument(ch uint8) *instruments.Instrument {
	if int(ch) >= midi.NumChannels {
		return nil
	}
	st := c.states[ch]
	if !st.HasProgram {
		return c.table.Default()
	}
	return st.Instrument
}

// Volume combines master volume and velocity into 0..1
func (c *Channels) Volume(ch, velocity uint8) float32 {
	master := DefaultMasterVolume
	if int(ch) < midi.NumChannels {
		master = c.states[ch].MasterVolume
	}
	return float32(master) / 127.0 * float32(velocity) / 127.0
}

// State returns a copy of one channel's state
func (c *Channels) State(ch uint8) ChannelState {
	return c.states[ch%midi.NumChannels]
}
