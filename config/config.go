package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
)

// MapConfig points at optional instrument and drum map files
type MapConfig struct {
	Instruments string `json:"instruments,omitempty"`
	Drums       string `json:"drums,omitempty"`
}

// PlaybackConfig controls the playback clock and parsing
type PlaybackConfig struct {
	TicksPerSecond int      `json:"ticksPerSecond,omitempty"`
	LoopPauseMs    int64    `json:"loopPauseMs,omitempty"`
	DrumChannels   []int    `json:"drumChannels,omitempty"` // zero-based
	OctaveFilter   []string `json:"octaveFilter,omitempty"`
	Loop           bool     `json:"loop,omitempty"`
}

// LocationConfig is a fixed position for listeners
type LocationConfig struct {
	World       string  `json:"world,omitempty"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Z           float64 `json:"z"`
	PerListener bool    `json:"perListener,omitempty"`
}

// PortOutputConfig defines the MIDI output port destination
type PortOutputConfig struct {
	PortName   string           `json:"portName,omitempty"`
	Channel    int              `json:"channel,omitempty"` // 1-16
	Center     int              `json:"center,omitempty"`
	NoteLength int              `json:"noteLengthMs,omitempty"`
	Programs   map[string]uint8 `json:"programs,omitempty"`
}

// OSCConfig defines the OSC destination
type OSCConfig struct {
	Target  string `json:"target,omitempty"` // host:port
	Address string `json:"address,omitempty"`
}

// UIConfig stores UI preferences
type UIConfig struct {
	Palette string `json:"palette,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	Maps     MapConfig        `json:"maps,omitempty"`
	Playback PlaybackConfig   `json:"playback,omitempty"`
	Location *LocationConfig  `json:"location,omitempty"`
	Port     PortOutputConfig `json:"port,omitempty"`
	OSC      OSCConfig        `json:"osc,omitempty"`
	UI       UIConfig         `json:"ui,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Playback: PlaybackConfig{
			TicksPerSecond: 20,
			LoopPauseMs:    1000,
			DrumChannels:   []int{9, 10},
		},
		Port: PortOutputConfig{
			Channel: 1,
			Center:  60,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-midiplayer"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from the default path, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path. Missing files yield defaults and
// missing fields keep their default values.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fault.Wrap(err, fmsg.WithDesc("read config", "Unable to read config file "+path))
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fault.Wrap(err, fmsg.WithDesc("parse config", "Invalid config file "+path))
	}

	return cfg, nil
}

// Save writes the config to the default path
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path, creating its directory
func (c *Config) SaveTo(path string) error {
	// Create directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fault.Wrap(err, fmsg.With("create config dir"))
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fault.Wrap(err, fmsg.With("encode config"))
	}

	return os.WriteFile(path, data, 0644)
}

// TickLength returns the playback clock period
func (c *Config) TickLength() time.Duration {
	tps := c.Playback.TicksPerSecond
	if tps <= 0 {
		tps = 20
	}
	return time.Second / time.Duration(tps)
}

// LoopPause returns the pause between loop iterations in ms
func (c *Config) LoopPause() int64 {
	if c.Playback.LoopPauseMs < 0 {
		return 0
	}
	return c.Playback.LoopPauseMs
}

// DrumChannels returns the configured drum channels, dropping invalid ones
func (c *Config) DrumChannels() []uint8 {
	var out []uint8
	for _, ch := range c.Playback.DrumChannels {
		if ch >= 0 && ch < 16 {
			out = append(out, uint8(ch))
		}
	}
	return out
}

// OutputChannel returns the zero-based MIDI channel for the port destination
func (c *Config) OutputChannel() uint8 {
	ch := c.Port.Channel
	if ch < 1 || ch > 16 {
		ch = 1
	}
	return uint8(ch - 1)
}

// NoteLength returns how long the port destination holds each note
func (c *Config) NoteLength() time.Duration {
	return time.Duration(c.Port.NoteLength) * time.Millisecond
}
