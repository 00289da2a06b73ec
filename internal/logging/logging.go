// Package logging builds the diagnostic logger shared by the chat client and
// the session loop. Conversation records never go through it.
package logging

import (
	"io"
	"os"

	log "github.com/sirupsen/logrus"
)

// DebugLogFile receives diagnostics while the full-screen UI owns the terminal.
const DebugLogFile = "debug.log"

// New returns a logger writing to w. Only warnings and errors are emitted
// unless debug is set.
func New(w io.Writer, debug bool) *log.Logger {
	l := log.New()
	l.SetOutput(w)
	l.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})
	l.SetLevel(log.WarnLevel)
	if debug {
		l.SetLevel(log.DebugLevel)
	}
	return l
}

// ToFile opens path for appending and returns a logger writing to it along
// with the file, which the caller closes.
func ToFile(path string, debug bool) (*log.Logger, *os.File, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	l := New(f, debug)
	l.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
		DisableColors: true,
	})
	return l, f, nil
}

// Discard returns a logger that drops everything, for tests and callers that
// do not care about diagnostics.
func Discard() *log.Logger {
	l := log.New()
	l.SetOutput(io.Discard)
	return l
}
