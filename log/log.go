// Package log provides the logging interface used across draftkit.
//
// The interactive wizard owns the terminal, so loggers are usually pointed
// at a file. Use [Noop] to disable logging entirely.
package log

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Kv is a helper type for structured logging key-value pairs.
type Kv = map[string]any

// Logger is the logger used by every draftkit package.
type Logger interface {
	Infof(format string, args ...any)
	Warningf(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
	WithValues(values Kv) Logger
}

// Noop is a logger that discards all log output.
var Noop Logger = noop{}

type noop struct{}

func (noop) Infof(string, ...any)    {}
func (noop) Warningf(string, ...any) {}
func (noop) Errorf(string, ...any)   {}
func (noop) Debugf(string, ...any)   {}
func (n noop) WithValues(Kv) Logger  { return n }

type logger struct {
	*logrus.Entry
}

// NewLogrus returns a Logger backed by a logrus entry.
func NewLogrus(l *logrus.Entry) Logger {
	return logger{Entry: l}
}

func (l logger) WithValues(values Kv) Logger {
	return NewLogrus(l.Entry.WithFields(logrus.Fields(values)))
}

// Options configures a logrus-backed logger built by New.
type Options struct {
	// Out is where log lines are written.
	Out io.Writer
	// Debug enables debug level.
	Debug bool
	// JSON switches to the JSON formatter.
	JSON bool
	// Color forces colored text output (terminals only).
	Color bool
}

// New builds a logrus-backed Logger from opts.
func New(opts Options) Logger {
	l := logrus.New()
	l.Out = opts.Out
	if opts.Debug {
		l.SetLevel(logrus.DebugLevel)
	}
	if opts.JSON {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			ForceColors:   opts.Color,
			DisableColors: !opts.Color,
			FullTimestamp: true,
		})
	}
	return NewLogrus(logrus.NewEntry(l))
}
