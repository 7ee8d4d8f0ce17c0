package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"go-midiplayer/config"
	"go-midiplayer/debug"
	"go-midiplayer/midi"
)

// Command-line configuration
var flags struct {
	config  string
	log     string
	verbose bool
}

var rootCmd = &cobra.Command{
	Use:   "go-midiplayer",
	Short: "Play MIDI files as sound frames",
	Long: `go-midiplayer converts Standard MIDI Files into frames of sounds and
plays them in real time to one or more destinations: the console, a MIDI
output port, or an OSC target.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		switch {
		case flags.log != "":
			return debug.Enable(flags.log)
		case flags.verbose:
			debug.SetOutput(os.Stderr)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		debug.Disable()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flags.config, "config", "c", "",
		"Config file (default ~/.config/go-midiplayer/config.json)")
	rootCmd.PersistentFlags().StringVarP(&flags.log, "log", "l", "",
		"Write debug logs to the specified file (empty disables)")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false,
		"Write debug logs to stderr")

	rootCmd.AddCommand(playCmd, framesCmd, portsCmd)
}

// loadConfig reads --config, or the default config file
func loadConfig() (*config.Config, error) {
	if flags.config != "" {
		return config.LoadFrom(flags.config)
	}
	return config.Load()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", midi.Issue(err))
		os.Exit(1)
	}
}
