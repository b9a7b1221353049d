// Package logger holds the process-wide zerolog logger.
//
// Call Init once in main, then Get anywhere else.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Options controls the logger built by Init.
type Options struct {
	// Level is one of trace, debug, info, warn, error. Unknown values mean info.
	Level string
	// Pretty switches to the coloured console writer for local runs.
	Pretty bool
	// Output defaults to os.Stdout.
	Output io.Writer
	// Service is attached to every line.
	Service string
}

var (
	instance    zerolog.Logger
	once        sync.Once
	initialized bool
)

// Init builds the logger. Only the first call has any effect.
func Init(opts Options) zerolog.Logger {
	once.Do(func() {
		zerolog.TimeFieldFormat = time.RFC3339Nano

		out := opts.Output
		if out == nil {
			out = os.Stdout
		}
		if opts.Pretty {
			out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
		}

		lvl := ParseLevel(opts.Level)
		zerolog.SetGlobalLevel(lvl)

		ctx := zerolog.New(out).Level(lvl).With().Timestamp()
		if opts.Service != "" {
			ctx = ctx.Str("service", opts.Service)
		}
		instance = ctx.Logger()
		initialized = true
	})
	return instance
}

// Get returns the logger built by Init. It panics when Init was never called.
func Get() zerolog.Logger {
	if !initialized {
		panic("logger: Get() called before Init()")
	}
	return instance
}

// Reset forgets the current logger. Tests only.
func Reset() {
	once = sync.Once{}
	instance = zerolog.Logger{}
	initialized = false
}

// ParseLevel maps a level name to a zerolog.Level, defaulting to info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
