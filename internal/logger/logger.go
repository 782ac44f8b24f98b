// Package logger builds the zerolog logger tree used across the bot. Every
// component receives a child logger tagged with its context name.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ContextField is the field holding a logger's context tag.
const ContextField = "context"

// Options configures New.
type Options struct {
	// Level is a zerolog level name. Empty means debug when Debug is set and
	// info otherwise.
	Level string
	Debug bool
	// File, when set, receives JSON records rotated by lumberjack.
	File string
	// Console defaults to os.Stderr.
	Console io.Writer
	NoColor bool
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New returns the root logger and a closer for the file sink.
func New(opts Options) (zerolog.Logger, io.Closer, error) {
	level, err := resolveLevel(opts.Level, opts.Debug)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, err
	}

	out := opts.Console
	if out == nil {
		out = os.Stderr
	}
	writers := []io.Writer{newConsoleWriter(out, opts.NoColor)}

	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		}
		writers = append(writers, rotator)
		closer = rotator
	}

	l := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Logger()
	return l, closer, nil
}

// Child returns l tagged with name. It is meant to be called on the root
// logger; tags do not stack.
func Child(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str(ContextField, name).Logger()
}

func resolveLevel(name string, debug bool) (zerolog.Level, error) {
	if strings.TrimSpace(name) == "" {
		if debug {
			return zerolog.DebugLevel, nil
		}
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(strings.ToLower(name))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", name, err)
	}
	return level, nil
}

// newConsoleWriter renders "(context): message" and hides the context field.
func newConsoleWriter(out io.Writer, noColor bool) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:           out,
		NoColor:       noColor,
		TimeFormat:    time.TimeOnly,
		FieldsExclude: []string{ContextField},
		FormatPrepare: func(evt map[string]interface{}) error {
			if ctx, ok := evt[ContextField].(string); ok && ctx != "" {
				evt[zerolog.MessageFieldName] = fmt.Sprintf("(%s): %v", ctx, evt[zerolog.MessageFieldName])
			}
			return nil
		},
	}
}
