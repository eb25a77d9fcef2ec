// Package logging provides the leveled, prefixed logger used by the
// builder and demo host, in the same SetOutput/SetLevel shape the
// graph engine's processing code was modeled on, backed by zerolog so
// rebuild and fault diagnostics are structured rather than formatted
// strings.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Level mirrors zerolog's level scale under names that match the
// engine's own vocabulary (a suspended node is a Warn, not an Error:
// the engine keeps running).
type Level int8

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelOff
)

func (l Level) zerolog() zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelInfo:
		return zerolog.InfoLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.Disabled
	}
}

// Logger wraps a zerolog.Logger with the component prefix convention
// used across the engine (e.g. "builder", "engine", "graphhost").
type Logger struct {
	component string
	zl        zerolog.Logger
}

// New returns a logger writing console-formatted output to w, tagged
// with component.
func New(w io.Writer, component string, level Level) *Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zl := zerolog.New(zerolog.ConsoleWriter{Out: w}).
		With().
		Timestamp().
		Str("component", component).
		Logger().
		Level(level.zerolog())
	return &Logger{component: component, zl: zl}
}

var defaultLogger = New(os.Stderr, "graphengine", LevelInfo)

// Default returns the package-wide logger, used by code that has no
// reason to carry its own Logger value (e.g. package-level helpers).
func Default() *Logger { return defaultLogger }

// SetOutput redirects where this logger writes.
func (l *Logger) SetOutput(w io.Writer) {
	l.zl = l.zl.Output(zerolog.ConsoleWriter{Out: w})
}

// SetLevel changes the minimum level this logger emits.
func (l *Logger) SetLevel(level Level) {
	l.zl = l.zl.Level(level.zerolog())
}

// With returns a child logger carrying an additional structured field,
// for tagging a line with e.g. a node id or rebuild correlation id.
func (l *Logger) With(key string, value interface{}) *Logger {
	return &Logger{component: l.component, zl: l.zl.With().Interface(key, value).Logger()}
}

func (l *Logger) Debug(msg string) { l.zl.Debug().Msg(msg) }
func (l *Logger) Info(msg string)  { l.zl.Info().Msg(msg) }
func (l *Logger) Warn(msg string)  { l.zl.Warn().Msg(msg) }
func (l *Logger) Error(err error, msg string) {
	l.zl.Error().Err(err).Msg(msg)
}

// RebuildStarted logs the start of an async graph rebuild, correlated
// by id so a host can trace it through to RebuildSwapped.
func (l *Logger) RebuildStarted(id string) {
	l.zl.Info().Str("rebuild_id", id).Msg("rebuild started")
}

// RebuildSwapped logs a rebuild's plan being installed.
func (l *Logger) RebuildSwapped(id string, ops, audioBuffers, midiBuffers int) {
	l.zl.Info().
		Str("rebuild_id", id).
		Int("ops", ops).
		Int("audio_buffers", audioBuffers).
		Int("midi_buffers", midiBuffers).
		Msg("rebuild swapped")
}

// RebuildFailed logs a rebuild that could not be compiled; the
// previous plan remains in effect.
func (l *Logger) RebuildFailed(id string, err error) {
	l.zl.Error().Str("rebuild_id", id).Err(err).Msg("rebuild failed")
}

// NodeFault logs a node being suspended after a render-time panic.
func (l *Logger) NodeFault(nodeID uint32, reason interface{}) {
	l.zl.Warn().Uint32("node_id", nodeID).Interface("reason", reason).Msg("node suspended after fault")
}
