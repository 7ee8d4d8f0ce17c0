package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	charmlog "github.com/charmbracelet/log"
)

var (
	file    *os.File
	mu      sync.Mutex
	logger  *charmlog.Logger
	enabled bool
)

// DefaultPath returns ~/.config/go-midiplayer/debug.log
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "go-midiplayer", "debug.log")
}

// Enable starts debug logging to path (DefaultPath when empty)
func Enable(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if enabled {
		return nil
	}
	if path == "" {
		path = DefaultPath()
	}

	// Ensure directory exists
	os.MkdirAll(filepath.Dir(path), 0755)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	file = f
	logger = newLogger(f)
	enabled = true

	// Write directly (can't call Log - we hold the mutex)
	logger.Info("=== Debug logging started ===", "category", "debug")
	return nil
}

// SetOutput logs to w instead of a file (nil disables)
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	closeFile()
	if w == nil {
		logger = nil
		enabled = false
		return
	}
	logger = newLogger(w)
	enabled = true
}

// Disable stops debug logging
func Disable() {
	mu.Lock()
	defer mu.Unlock()

	closeFile()
	logger = nil
	enabled = false
}

// Enabled reports whether logging is active
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// Log writes a message to the debug log
func Log(category, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()

	if !enabled || logger == nil {
		return
	}

	logger.Debug(fmt.Sprintf(format, args...), "category", category)
}

// Warn writes a warning regardless of the debug level
func Warn(category, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()

	if !enabled || logger == nil {
		return
	}

	logger.Warn(fmt.Sprintf(format, args...), "category", category)
}

// LogEvery logs only every N calls (use for high-frequency events)
var counters = make(map[string]int)

func LogEvery(n int, category, format string, args ...any) {
	mu.Lock()
	key := category + format
	counters[key]++
	count := counters[key]
	mu.Unlock()

	if count%n == 0 {
		Log(category, format+" (every %d, count=%d)", append(args, n, count)...)
	}
}

func newLogger(w io.Writer) *charmlog.Logger {
	l := charmlog.NewWithOptions(w, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.000",
		Prefix:          "midiplayer",
	})
	l.SetLevel(charmlog.DebugLevel)
	return l
}

func closeFile() {
	if file != nil {
		file.Sync()
		file.Close()
		file = nil
	}
}
