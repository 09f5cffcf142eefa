// Package diag defines the structured diagnostics events emitted by the
// entry state machine and the sinks that consume them.
//
// Sinks are fire-and-forget: Record returns nothing and must never panic or
// block meaningfully, because a diagnostics failure must not affect text
// entry. Sinks that can fail internally (storage, I/O) log and continue.
package diag

import (
	"fmt"
	"strings"

	"entrytrack/internal/logging"
)

// Event is a diagnostics event. It is a closed set: the variants below are
// the only implementations.
type Event interface {
	isEvent()
}

// AutoCorrection reports that an autocorrection was silently applied.
type AutoCorrection struct {
	// Typed is the word as the user typed it.
	Typed string

	// Corrected is the word after correction.
	Corrected string

	// Separator is the character code that triggered the correction.
	Separator rune
}

// CorrectionCancelled reports that a backspace reverted the most recent
// autocorrection.
type CorrectionCancelled struct{}

// SeparatorKeystroke reports a keystroke classified as a separator.
type SeparatorKeystroke struct{}

// CharKeystroke reports an ordinary character keystroke.
type CharKeystroke struct{}

// Trace is a verbose per-operation trace: the operation name, its arguments,
// and the machine state after and before the operation.
type Trace struct {
	Op       string
	Args     []Arg
	State    string
	Previous string
}

// Arg is a single named trace argument.
type Arg struct {
	Name  string
	Value string
}

func (AutoCorrection) isEvent()      {}
func (CorrectionCancelled) isEvent() {}
func (SeparatorKeystroke) isEvent()  {}
func (CharKeystroke) isEvent()       {}
func (Trace) isEvent()               {}

// String formats a trace in the compact form used by log output.
func (t Trace) String() string {
	var sb strings.Builder
	sb.WriteString(t.Op)
	sb.WriteByte(':')
	for _, a := range t.Args {
		sb.WriteByte(' ')
		sb.WriteString(a.Name)
		sb.WriteByte('=')
		sb.WriteString(a.Value)
	}
	sb.WriteString(" state=")
	sb.WriteString(t.State)
	sb.WriteString(" previous=")
	sb.WriteString(t.Previous)
	return sb.String()
}

// Sink receives diagnostics events.
type Sink interface {
	Record(ev Event)
}

// NopSink discards all events.
type NopSink struct{}

// Record implements Sink.
func (NopSink) Record(Event) {}

// LogSink writes events to a logger.
type LogSink struct {
	log *logging.Logger
}

// NewLogSink creates a sink writing to the given logger, or the package
// default logger if nil.
func NewLogSink(log *logging.Logger) *LogSink {
	if log == nil {
		log = logging.Default()
	}
	return &LogSink{log: log.WithComponent("diag")}
}

// Record implements Sink.
func (s *LogSink) Record(ev Event) {
	switch e := ev.(type) {
	case AutoCorrection:
		s.log.Info("auto-correction applied",
			"typed", e.Typed,
			"corrected", e.Corrected,
			"separator", fmt.Sprintf("%q", e.Separator),
		)
	case CorrectionCancelled:
		s.log.Info("auto-correction cancelled")
	case SeparatorKeystroke:
		s.log.Debug("keystroke", "kind", "separator")
	case CharKeystroke:
		s.log.Debug("keystroke", "kind", "char")
	case Trace:
		s.log.Debug(e.String())
	}
}

// MultiSink fans events out to several sinks in order.
type MultiSink []Sink

// Record implements Sink.
func (m MultiSink) Record(ev Event) {
	for _, s := range m {
		if s != nil {
			s.Record(ev)
		}
	}
}
