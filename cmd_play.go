package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"go-midiplayer/config"
	"go-midiplayer/debug"
	"go-midiplayer/instruments"
	"go-midiplayer/midi"
	"go-midiplayer/output"
	"go-midiplayer/parser"
	"go-midiplayer/sequencer"
	"go-midiplayer/theme"
	"go-midiplayer/track"
	"go-midiplayer/tui"
)

var playFlags struct {
	loop   bool
	port   string
	osc    string
	filter []string
	tui    bool
}

var playCmd = &cobra.Command{
	Use:   "play FILE...",
	Short: "Play one or more MIDI files",
	Long: `Play parses each file into frames and plays them together. Sounds go
to the MIDI port and OSC target given by flags or config; with neither
configured they are printed to stdout.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPlay,
}

func init() {
	f := playCmd.Flags()
	f.BoolVar(&playFlags.loop, "loop", false, "Loop playback")
	f.StringVar(&playFlags.port, "port", "", "MIDI output port name")
	f.StringVar(&playFlags.osc, "osc", "", "OSC target host:port")
	f.StringSliceVar(&playFlags.filter, "filter", nil,
		"Octave filter flags: moveToMin, normalize, modulo, cut")
	f.BoolVar(&playFlags.tui, "tui", false, "Show the now-playing view")
}

// newParser builds a parser from config maps and the octave filter names
func newParser(cfg *config.Config, filterNames []string) (*parser.Parser, error) {
	table, err := instruments.LoadTable(cfg.Maps.Instruments, cfg.Maps.Drums)
	if err != nil {
		return nil, err
	}
	if len(filterNames) == 0 {
		filterNames = cfg.Playback.OctaveFilter
	}
	filter, err := parser.ParseOctaveFilter(filterNames)
	if err != nil {
		return nil, err
	}

	p := parser.New(instruments.NewResolver(table))
	p.DrumChannels = cfg.DrumChannels()
	p.Filter = filter
	return p, nil
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	p, err := newParser(cfg, playFlags.filter)
	if err != nil {
		return err
	}

	tracks := make([]track.Track, len(args))
	for i, path := range args {
		t, err := p.ParseFile(path)
		if err != nil {
			return err
		}
		if len(t) == 0 {
			fmt.Fprintf(os.Stderr, "%s: no playable notes\n", path)
		}
		tracks[i] = t
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out, err := buildListeners(ctx, cfg)
	if err != nil {
		return err
	}
	listeners := out.listeners

	clock := sequencer.NewTickClock(cfg.TickLength())
	go clock.Run(ctx)

	player := sequencer.NewPlayer(clock)
	looping := playFlags.loop || cfg.Playback.Loop
	for i, t := range tracks {
		s := sequencer.NewSession(fmt.Sprintf("%d", i+1), filepath.Base(args[i]), t, looping, listeners)
		s.SetLoopPause(cfg.LoopPause())
		if loc := cfg.Location; loc != nil {
			s.SetLocation(sequencer.Position{World: loc.World, X: loc.X, Y: loc.Y, Z: loc.Z})
			s.SetPerListener(loc.PerListener)
		}
		player.Play(s)
		debug.Log("play", "session %s: %s (%d frames, %dms)", s.ID, s.Name, len(t), t.Duration())
	}

	if playFlags.tui {
		th := theme.New(theme.Load(cfg.UI.Palette))
		m := tui.NewModel(player, listeners, out.ports, th)
		if out.port != nil {
			m.OnPort = out.port.HandleEvent
		}
		prog := tea.NewProgram(m, tea.WithAltScreen())
		_, err := prog.Run()
		player.StopAll()
		return err
	}

	if out.port != nil {
		go output.WatchPorts(out.ports.Events(), out.port)
	}
	for player.Active() > 0 {
		select {
		case <-ctx.Done():
			player.StopAll()
			return nil
		case <-player.UpdateChan:
		}
	}
	return nil
}

type destinations struct {
	listeners *sequencer.Listeners
	ports     *midi.PortManager // nil unless a port is configured
	port      *output.Port
}

// buildListeners creates the configured destinations. A port manager is only
// started when a MIDI port is requested.
func buildListeners(ctx context.Context, cfg *config.Config) (destinations, error) {
	out := destinations{listeners: sequencer.NewListeners()}
	listeners := out.listeners

	portName := playFlags.port
	if portName == "" {
		portName = cfg.Port.PortName
	}
	if portName != "" {
		out.ports = midi.NewPortManager()
		out.ports.Scan()
		go out.ports.Run(ctx)

		port := output.NewPort(portName, out.ports, output.PortOptions{
			Channel:    cfg.OutputChannel(),
			Center:     uint8(cfg.Port.Center),
			Programs:   cfg.Port.Programs,
			NoteLength: cfg.NoteLength(),
		})
		if !port.Online() {
			fmt.Fprintf(os.Stderr, "port %q not found, waiting for it\n", portName)
		}
		listeners.Add(port)
		out.port = port
	}

	target := playFlags.osc
	if target == "" {
		target = cfg.OSC.Target
	}
	if target != "" {
		o, err := output.NewOSC(target)
		if err != nil {
			return out, err
		}
		if cfg.OSC.Address != "" {
			o.SetAddress(cfg.OSC.Address)
		}
		listeners.Add(o)
	}

	if listeners.Len() == 0 {
		var w io.Writer = os.Stdout
		if playFlags.tui {
			w = nil
		}
		console := output.NewConsole("console", w)
		if loc := cfg.Location; loc != nil {
			console.SetLocation(sequencer.Position{World: loc.World, X: loc.X, Y: loc.Y, Z: loc.Z})
		}
		listeners.Add(console)
	}
	return out, nil
}
