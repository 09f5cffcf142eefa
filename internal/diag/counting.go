package diag

import "sync"

// Counts holds aggregate event counters.
type Counts struct {
	CharKeystrokes       uint64 `json:"char_keystrokes"`
	SeparatorKeystrokes  uint64 `json:"separator_keystrokes"`
	AutoCorrections      uint64 `json:"auto_corrections"`
	CorrectionsCancelled uint64 `json:"corrections_cancelled"`
}

// CountingSink aggregates event counts in memory. Useful for status
// reporting and tests.
type CountingSink struct {
	mu     sync.Mutex
	counts Counts
}

// NewCountingSink creates an empty counting sink.
func NewCountingSink() *CountingSink {
	return &CountingSink{}
}

// Record implements Sink.
func (s *CountingSink) Record(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev.(type) {
	case CharKeystroke:
		s.counts.CharKeystrokes++
	case SeparatorKeystroke:
		s.counts.SeparatorKeystrokes++
	case AutoCorrection:
		s.counts.AutoCorrections++
	case CorrectionCancelled:
		s.counts.CorrectionsCancelled++
	case Trace:
		// traces are not counted
	}
}

// Counts returns a snapshot of the counters.
func (s *CountingSink) Counts() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts
}

// Reset clears all counters.
func (s *CountingSink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts = Counts{}
}
