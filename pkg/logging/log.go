package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var output = &switchWriter{out: os.Stderr}

// switchWriter lets the progress display take over log output while it owns the
// terminal without replacing the global logger under running goroutines.
type switchWriter struct {
	mu  sync.Mutex
	out io.Writer
}

func (w *switchWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.out.Write(p)
}

func (w *switchWriter) set(out io.Writer) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.out = out
}

func SetupLogger() {
	// TODO: Make color configurable? Disabled so we don't have to deal with ANSI escape codes in our logoutput
	console := zerolog.ConsoleWriter{Out: output, TimeFormat: time.RFC3339, NoColor: true}
	console.FormatLevel = func(i interface{}) string {
		return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
	}
	console.FormatMessage = func(i interface{}) string {
		return fmt.Sprintf("[ %s ]", i)
	}
	log.Logger = zerolog.New(console).With().Timestamp().Logger()
}

// SetOutput redirects formatted log lines to out. A nil writer restores stderr.
func SetOutput(out io.Writer) {
	if out == nil {
		out = os.Stderr
	}
	output.set(out)
}

func GetLogger() zerolog.Logger {
	return log.Logger
}
