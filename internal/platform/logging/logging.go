// Package logging builds the process-wide zerolog logger. Development runs
// get a human-readable console writer; every other environment emits JSON.
// When a log file is configured, output is duplicated into a size-rotated
// file.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls logger construction.
type Options struct {
	Dev   bool
	Level string
	File  string
}

// New returns a timestamped logger and a close func that flushes the file
// sink, if any. Unknown levels fall back to info.
func New(opts Options) (zerolog.Logger, func() error) {
	var console io.Writer = os.Stdout
	if opts.Dev {
		console = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	out := console
	closer := func() error { return nil }
	if opts.File != "" {
		file := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    5,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		}
		out = zerolog.MultiLevelWriter(console, file)
		closer = file.Close
	}

	level, err := zerolog.ParseLevel(opts.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger(), closer
}
