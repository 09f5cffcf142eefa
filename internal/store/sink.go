package store

import (
	"entrytrack/internal/diag"
	"entrytrack/internal/logging"
)

// Sink adapts a Store to the diagnostics sink interface. Storage failures
// are logged and swallowed: diagnostics must never affect text entry.
//
// Keystroke events are batched in memory and flushed every flushEvery
// events (and on Flush) to keep the hot path off the database.
type Sink struct {
	store     *Store
	sessionID string
	log       *logging.Logger

	flushEvery int64
	pendingSep int64
	pendingChr int64
}

// NewSink creates a sink recording into the given store under sessionID.
func NewSink(s *Store, sessionID string, log *logging.Logger) *Sink {
	if log == nil {
		log = logging.Default()
	}
	return &Sink{
		store:      s,
		sessionID:  sessionID,
		log:        log.WithComponent("store"),
		flushEvery: 64,
	}
}

// Record implements diag.Sink.
func (s *Sink) Record(ev diag.Event) {
	switch e := ev.(type) {
	case diag.AutoCorrection:
		if _, err := s.store.RecordCorrection(s.sessionID, e.Typed, e.Corrected, e.Separator); err != nil {
			s.log.Warn("record correction", "error", err)
		}
	case diag.CorrectionCancelled:
		if err := s.store.MarkCancelled(s.sessionID); err != nil {
			s.log.Warn("mark cancelled", "error", err)
		}
	case diag.CharKeystroke:
		s.pendingChr++
		s.maybeFlush()
	case diag.SeparatorKeystroke:
		s.pendingSep++
		s.maybeFlush()
	case diag.Trace:
		// traces go to logs, not storage
	}
}

func (s *Sink) maybeFlush() {
	if s.pendingChr+s.pendingSep >= s.flushEvery {
		s.Flush()
	}
}

// Flush writes any batched keystroke counts to the store.
func (s *Sink) Flush() {
	if s.pendingChr > 0 {
		if err := s.store.IncrementKeystroke(KindChar, s.pendingChr); err != nil {
			s.log.Warn("flush char count", "error", err)
		} else {
			s.pendingChr = 0
		}
	}
	if s.pendingSep > 0 {
		if err := s.store.IncrementKeystroke(KindSeparator, s.pendingSep); err != nil {
			s.log.Warn("flush separator count", "error", err)
		} else {
			s.pendingSep = 0
		}
	}
}
