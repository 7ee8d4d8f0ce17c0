package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"go-midiplayer/midi"
	"go-midiplayer/track"
	"go-midiplayer/widgets"
)

var framesFilter []string

var framesCmd = &cobra.Command{
	Use:   "frames FILE",
	Short: "Print the frames parsed from a MIDI file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		p, err := newParser(cfg, framesFilter)
		if err != nil {
			return err
		}
		t, err := p.ParseFile(args[0])
		if err != nil {
			return err
		}
		printFrames(cmd.OutOrStdout(), t)
		return nil
	},
}

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List MIDI output ports",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		pm := midi.NewPortManager()
		pm.Scan()
		names := pm.Names()
		if len(names) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No MIDI output ports found")
			return
		}
		for _, name := range names {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
	},
}

func init() {
	framesCmd.Flags().StringSliceVar(&framesFilter, "filter", nil,
		"Octave filter flags: moveToMin, normalize, modulo, cut")
}

func printFrames(w io.Writer, t track.Track) {
	var at int64
	for i, f := range t {
		at += f.Wait
		fmt.Fprintf(w, "%4d  +%-6d %s\n", i, f.Wait, widgets.FormatMillis(at))
		for _, n := range f.Notes {
			fmt.Fprintf(w, "        %-14s pitch=%.3f vol=%.2f\n", n.Patch, n.Pitch, n.Volume)
		}
	}
	fmt.Fprintf(w, "%d frames, %d notes, %s\n", len(t), t.NoteCount(), widgets.FormatMillis(t.Duration()))
}
