package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"go-midiplayer/midi"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "list":
		listPorts()
	case "dump":
		if len(os.Args) < 3 {
			usage()
			os.Exit(2)
		}
		if err := dumpFile(os.Args[2]); err != nil {
			fmt.Println("Error:", midi.Issue(err))
			os.Exit(1)
		}
	case "poll":
		pollPorts()
	default:
		usage()
	}
}

func usage() {
	fmt.Println("MIDI inspection tools")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list       - List all MIDI ports")
	fmt.Println("  dump FILE  - Print the decoded events of a MIDI file")
	fmt.Println("  poll       - Watch output ports come and go")
}

func listPorts() {
	fmt.Println("=== MIDI Input Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	type result struct {
		ins  []string
		outs []string
	}
	ch := make(chan result, 1)
	go func() {
		var r result
		for _, p := range gomidi.GetInPorts() {
			r.ins = append(r.ins, p.String())
		}
		for _, p := range gomidi.GetOutPorts() {
			r.outs = append(r.outs, p.String())
		}
		ch <- r
	}()

	select {
	case r := <-ch:
		for i, name := range r.ins {
			fmt.Printf("  %d: %s\n", i, name)
		}
		fmt.Println("\n=== MIDI Output Ports ===")
		for i, name := range r.outs {
			fmt.Printf("  %d: %s\n", i, name)
		}
	case <-time.After(3 * time.Second):
		fmt.Println("\nTIMEOUT! The MIDI driver did not answer.")
	}
}

func dumpFile(path string) error {
	song, err := midi.LoadFile(path)
	if err != nil {
		return err
	}

	fmt.Printf("%s: %d ticks per quarter, %d tracks, %d events\n",
		path, song.Resolution, len(song.Tracks), song.EventCount())

	for i, events := range song.Tracks {
		fmt.Printf("\n--- track %d (%d events) ---\n", i, len(events))
		for _, e := range events {
			switch e.Kind {
			case midi.KindTempo:
				fmt.Printf("%8d  %-9s %.2f bpm\n", e.Tick, e.Kind, e.Tempo.BPM())
			case midi.KindProgramChange:
				fmt.Printf("%8d  %-9s ch=%-2d program=%d\n", e.Tick, e.Kind, e.Channel, e.Data1)
			default:
				fmt.Printf("%8d  %-9s ch=%-2d %3d %3d\n", e.Tick, e.Kind, e.Channel, e.Data1, e.Data2)
			}
		}
	}
	return nil
}

func pollPorts() {
	fmt.Println("Polling for output port changes every second. Ctrl+C to exit.")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	pm := midi.NewPortManager()
	go pm.Run(ctx)

	for evt := range pm.Events() {
		state := "connected"
		if evt.Type == midi.PortDisconnected {
			state = "disconnected"
		}
		fmt.Printf("[%s] %s: %s\n", time.Now().Format("15:04:05"), state, evt.Name)
	}
}
