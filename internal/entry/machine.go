// Package entry implements the entry state machine: a tracker of the editing
// context of text being composed, driven by discrete input events.
//
// An autocorrection engine reports each user action (character typed,
// suggestion accepted, backspace, reset) to a Machine and queries its state
// to decide whether to offer, apply, or revert corrections.
//
// A Machine expects a single logical caller: events must arrive as one
// strictly ordered sequential stream. Concurrent calls without external
// serialization are out of contract.
package entry

import (
	"fmt"

	"entrytrack/internal/diag"
	"entrytrack/internal/key"
	"entrytrack/internal/logging"
)

// Recorder receives every typed character with its touch coordinates. It is
// the rolling recent-input history queried by suggestion logic elsewhere.
type Recorder interface {
	Push(ch rune, x, y int)
}

// Options configures a Machine. All fields are optional.
type Options struct {
	// Recorder receives every typed character. Nil disables recording.
	Recorder Recorder

	// Sink receives diagnostics events. Nil discards them.
	Sink diag.Sink

	// Verbose enables a per-operation trace event on the sink.
	Verbose bool

	// Log receives warnings about unexpected call sequences. Nil uses the
	// package default logger.
	Log *logging.Logger
}

// Machine tracks the editing context of a single stream of input events.
// One Machine corresponds to one editing session (one text field); create a
// fresh one per session rather than sharing.
type Machine struct {
	current  State
	previous State

	recorder Recorder
	sink     diag.Sink
	verbose  bool
	log      *logging.Logger
}

// NewMachine creates a machine in the Unknown state.
func NewMachine(opts Options) *Machine {
	sink := opts.Sink
	if sink == nil {
		sink = diag.NopSink{}
	}
	log := opts.Log
	if log == nil {
		log = logging.Default()
	}
	return &Machine{
		current:  Unknown,
		previous: Unknown,
		recorder: opts.Recorder,
		sink:     sink,
		verbose:  opts.Verbose,
		log:      log.WithComponent("entry"),
	}
}

// setState is the sole mutator of the state pair.
func (m *Machine) setState(newState State) {
	m.previous = m.current
	m.current = newState
}

// Current returns the current state.
func (m *Machine) Current() State {
	return m.current
}

// Previous returns the state held immediately before the last transition.
// Only meaningful together with Current, for diagnostics.
func (m *Machine) Previous() State {
	return m.previous
}

// StateName returns the canonical name of the current state.
func (m *Machine) StateName() string {
	return m.current.String()
}

// IsUndoCommit reports whether the last autocorrection is being reverted.
func (m *Machine) IsUndoCommit() bool {
	return m.current == UndoCommit
}

// TypedCharacter reports that the user typed ch at touch coordinates (x, y).
// isSeparator is the caller's classification of ch as a word delimiter;
// space is recognized here via key.CodeSpace.
//
// The character is always recorded and a keystroke event is always emitted,
// regardless of the transition taken.
func (m *Machine) TypedCharacter(ch rune, isSeparator bool, x, y int) {
	isSpace := ch == key.CodeSpace

	switch m.current {
	case InWord:
		if isSpace || isSeparator {
			m.setState(Start)
		}
		// An ordinary character keeps us in the word.

	case AcceptedDefault, SpaceAfterPicked, PunctuationAfterAccepted:
		switch {
		case isSpace:
			m.setState(SpaceAfterAccepted)
		case isSeparator:
			// Swap: the separator replaces the one that committed the word.
			m.setState(PunctuationAfterAccepted)
		default:
			m.setState(InWord)
		}

	case PickedSuggestion:
		switch {
		case isSpace:
			m.setState(SpaceAfterPicked)
		case isSeparator:
			// Swap
			m.setState(PunctuationAfterAccepted)
		default:
			m.setState(InWord)
		}

	case Start, Unknown, SpaceAfterAccepted:
		if isSpace || isSeparator {
			m.setState(Start)
		} else {
			m.setState(InWord)
		}

	case UndoCommit:
		if isSpace || isSeparator {
			m.setState(Start)
		} else {
			m.setState(InWord)
		}
	}

	if m.recorder != nil {
		m.recorder.Push(ch, x, y)
	}
	if isSeparator {
		m.sink.Record(diag.SeparatorKeystroke{})
	} else {
		m.sink.Record(diag.CharKeystroke{})
	}
	m.trace("typedCharacter",
		diag.Arg{Name: "char", Value: fmt.Sprintf("%q", ch)},
		diag.Arg{Name: "isSeparator", Value: fmt.Sprintf("%t", isSeparator)},
	)
}

// AcceptedDefault reports that an autocorrection was applied automatically:
// typed was replaced by actual when the user typed separator. No-op when
// typed is empty.
func (m *Machine) AcceptedDefault(typed, actual string, separator rune) {
	if typed == "" {
		return
	}
	m.setState(AcceptedDefault)
	m.sink.Record(diag.AutoCorrection{Typed: typed, Corrected: actual, Separator: separator})
	m.trace("acceptedDefault",
		diag.Arg{Name: "typedWord", Value: typed},
		diag.Arg{Name: "actualWord", Value: actual},
	)
}

// BackToAcceptedDefault restores the AcceptedDefault state after one of its
// sub-states (entered by the keystroke following an acceptance) has finished
// processing. From any other state, or when typed is empty, it does nothing.
func (m *Machine) BackToAcceptedDefault(typed string) {
	if typed == "" {
		return
	}
	switch m.current {
	case SpaceAfterAccepted, PunctuationAfterAccepted, InWord:
		m.setState(AcceptedDefault)
	default:
		// Not a refinement of AcceptedDefault; leave the state alone.
	}
	m.trace("backToAcceptedDefault",
		diag.Arg{Name: "typedWord", Value: typed},
	)
}

// AcceptedTyped reports that the user committed the word exactly as typed.
// Downstream this is treated the same as picking a suggestion.
func (m *Machine) AcceptedTyped(typed string) {
	m.setState(PickedSuggestion)
	m.trace("acceptedTyped",
		diag.Arg{Name: "typedWord", Value: typed},
	)
}

// AcceptedSuggestion reports that the user explicitly selected an offered
// suggestion.
func (m *Machine) AcceptedSuggestion(typed, actual string) {
	m.setState(PickedSuggestion)
	m.trace("acceptedSuggestion",
		diag.Arg{Name: "typedWord", Value: typed},
		diag.Arg{Name: "actualWord", Value: actual},
	)
}

// Backspace reports a backspace keystroke. The first backspace immediately
// after a silent autocorrection undoes that correction (UndoCommit) instead
// of deleting a character; a second backspace lands in InWord.
//
// From any other state the machine does not transition. In particular,
// backspacing past the start of a word leaves the state at InWord even
// though no word remains; callers must not rely on Backspace to detect word
// boundaries.
func (m *Machine) Backspace() {
	switch m.current {
	case AcceptedDefault:
		m.setState(UndoCommit)
		m.sink.Record(diag.CorrectionCancelled{})
	case UndoCommit:
		m.setState(InWord)
	default:
		// No transition: deletion within a word is not tracked.
	}
	m.trace("backspace")
}

// RestartSuggestions reports that the caller decided the word under or
// before the cursor is editable again. The transition to InWord always
// proceeds; arriving here from Unknown or AcceptedDefault is unexpected and
// is logged as a warning.
func (m *Machine) RestartSuggestions() {
	if m.current == Unknown || m.current == AcceptedDefault {
		m.log.Warn("strange state change", "from", m.current.String())
	}
	m.setState(InWord)
	m.trace("restartSuggestions")
}

// Reset marks the beginning of a fresh editing session (cursor moved, field
// changed).
func (m *Machine) Reset() {
	m.setState(Start)
	m.trace("reset")
}

// trace emits a verbose operation trace when enabled.
func (m *Machine) trace(op string, args ...diag.Arg) {
	if !m.verbose {
		return
	}
	m.sink.Record(diag.Trace{
		Op:       op,
		Args:     args,
		State:    m.current.String(),
		Previous: m.previous.String(),
	})
}
