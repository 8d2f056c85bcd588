// internal/common/logger/logger.go
// Structured logging setup shared by the client and the dev backend

package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Component names attached to every log line
const (
	ComponentClient    = "client"
	ComponentDevServer = "devserver"
)

// Options controls where and how much we log
type Options struct {
	Level     string
	File      string // empty means console
	Component string
}

// New builds a logger. When File is set, lines are appended there as JSON
// (the terminal UI owns stdout); otherwise a console writer on stderr is used.
// The returned closer releases the file, if any.
func New(opts Options) (zerolog.Logger, io.Closer, error) {
	zerolog.TimeFieldFormat = time.RFC3339

	level, err := zerolog.ParseLevel(opts.Level)
	if err != nil || opts.Level == "" {
		level = zerolog.InfoLevel
	}

	var (
		out    io.Writer
		closer io.Closer = nopCloser{}
	)
	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), closer, fmt.Errorf("open log file: %w", err)
		}
		out, closer = f, f
	} else {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}

	l := zerolog.New(out).
		Level(level).
		With().
		Str("component", opts.Component).
		Timestamp().
		Logger()

	return l, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
