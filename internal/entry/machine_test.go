package entry

import (
	"testing"

	"entrytrack/internal/diag"
)

// =============================================================================
// Helpers
// =============================================================================

type recordedKey struct {
	ch   rune
	x, y int
}

type fakeRecorder struct {
	pushed []recordedKey
}

func (r *fakeRecorder) Push(ch rune, x, y int) {
	r.pushed = append(r.pushed, recordedKey{ch, x, y})
}

func newTestMachine() *Machine {
	return NewMachine(Options{})
}

// forceState drives the machine into the given state using only public
// operations, so tests exercise reachable sequences rather than poking
// fields.
func forceState(t *testing.T, m *Machine, s State) {
	t.Helper()

	switch s {
	case Unknown:
		// Fresh machines start here; nothing to do.
		if m.Current() != Unknown {
			t.Fatalf("cannot return to UNKNOWN from %s", m.Current())
		}
	case Start:
		m.Reset()
	case InWord:
		m.Reset()
		m.TypedCharacter('a', false, 0, 0)
	case AcceptedDefault:
		m.AcceptedDefault("teh", "the", ' ')
	case PickedSuggestion:
		m.AcceptedSuggestion("cat", "cat")
	case PunctuationAfterAccepted:
		m.AcceptedDefault("teh", "the", ',')
		m.TypedCharacter(',', true, 0, 0)
	case SpaceAfterAccepted:
		m.AcceptedDefault("teh", "the", ' ')
		m.TypedCharacter(' ', false, 0, 0)
	case SpaceAfterPicked:
		m.AcceptedSuggestion("cat", "cat")
		m.TypedCharacter(' ', false, 0, 0)
	case UndoCommit:
		m.AcceptedDefault("teh", "the", ' ')
		m.Backspace()
	}

	if m.Current() != s {
		t.Fatalf("forceState: wanted %s, got %s", s, m.Current())
	}
}

var allStates = []State{
	Unknown, Start, InWord, AcceptedDefault, PickedSuggestion,
	PunctuationAfterAccepted, SpaceAfterAccepted, SpaceAfterPicked,
	UndoCommit,
}

// =============================================================================
// Construction
// =============================================================================

func TestNewMachineStartsUnknown(t *testing.T) {
	m := newTestMachine()

	if m.Current() != Unknown {
		t.Errorf("current = %s, want UNKNOWN", m.Current())
	}
	if m.Previous() != Unknown {
		t.Errorf("previous = %s, want UNKNOWN", m.Previous())
	}
}

func TestPreviousTracksLastTransition(t *testing.T) {
	m := newTestMachine()

	m.Reset()
	if m.Previous() != Unknown {
		t.Errorf("previous = %s, want UNKNOWN", m.Previous())
	}

	m.TypedCharacter('a', false, 0, 0)
	if m.Previous() != Start {
		t.Errorf("previous = %s, want START", m.Previous())
	}
	if m.Current() != InWord {
		t.Errorf("current = %s, want IN_WORD", m.Current())
	}
}

// =============================================================================
// TypedCharacter transition table
// =============================================================================

func TestTypedCharacterTable(t *testing.T) {
	// input kinds exercised against every state
	type input struct {
		name        string
		ch          rune
		isSeparator bool
	}
	inputs := []input{
		{"space", ' ', false},
		{"separator", ',', true},
		{"ordinary", 'a', false},
	}

	// want[state] = {space, separator, ordinary}
	want := map[State][3]State{
		Unknown:                  {Start, Start, InWord},
		Start:                    {Start, Start, InWord},
		InWord:                   {Start, Start, InWord},
		AcceptedDefault:          {SpaceAfterAccepted, PunctuationAfterAccepted, InWord},
		PickedSuggestion:         {SpaceAfterPicked, PunctuationAfterAccepted, InWord},
		PunctuationAfterAccepted: {SpaceAfterAccepted, PunctuationAfterAccepted, InWord},
		SpaceAfterAccepted:       {Start, Start, InWord},
		SpaceAfterPicked:         {SpaceAfterAccepted, PunctuationAfterAccepted, InWord},
		UndoCommit:               {Start, Start, InWord},
	}

	for _, from := range allStates {
		for i, in := range inputs {
			t.Run(from.String()+"/"+in.name, func(t *testing.T) {
				m := newTestMachine()
				forceState(t, m, from)

				m.TypedCharacter(in.ch, in.isSeparator, 0, 0)

				if got := m.Current(); got != want[from][i] {
					t.Errorf("%s + %s -> %s, want %s", from, in.name, got, want[from][i])
				}
				// The stay-in-word case performs no transition, so the
				// previous state is untouched.
				if !(from == InWord && in.name == "ordinary") {
					if got := m.Previous(); got != from {
						t.Errorf("previous = %s, want %s", got, from)
					}
				}
			})
		}
	}
}

func TestTypedCharacterAlwaysRecords(t *testing.T) {
	rec := &fakeRecorder{}
	m := NewMachine(Options{Recorder: rec})

	m.Reset()
	m.TypedCharacter('h', false, 10, 20)
	m.TypedCharacter('i', false, 11, 20)
	m.TypedCharacter(' ', false, 12, 20)

	if len(rec.pushed) != 3 {
		t.Fatalf("recorded %d keystrokes, want 3", len(rec.pushed))
	}
	if rec.pushed[0] != (recordedKey{'h', 10, 20}) {
		t.Errorf("first entry = %+v", rec.pushed[0])
	}
	if rec.pushed[2].ch != ' ' {
		t.Errorf("third entry char = %q, want space", rec.pushed[2].ch)
	}
}

func TestTypedCharacterKeystrokeEvents(t *testing.T) {
	sink := diag.NewCountingSink()
	m := NewMachine(Options{Sink: sink})

	m.Reset()
	m.TypedCharacter('a', false, 0, 0)
	m.TypedCharacter(',', true, 0, 0)
	m.TypedCharacter('b', false, 0, 0)

	counts := sink.Counts()
	if counts.CharKeystrokes != 2 {
		t.Errorf("char keystrokes = %d, want 2", counts.CharKeystrokes)
	}
	if counts.SeparatorKeystrokes != 1 {
		t.Errorf("separator keystrokes = %d, want 1", counts.SeparatorKeystrokes)
	}
}

// =============================================================================
// Acceptance operations
// =============================================================================

func TestAcceptedDefault(t *testing.T) {
	sink := diag.NewCountingSink()
	m := NewMachine(Options{Sink: sink})

	m.AcceptedDefault("teh", "the", ',')

	if m.Current() != AcceptedDefault {
		t.Errorf("current = %s, want ACCEPTED_DEFAULT", m.Current())
	}
	if sink.Counts().AutoCorrections != 1 {
		t.Error("auto-correction event not recorded")
	}
}

func TestAcceptedDefaultEmptyWordIsNoop(t *testing.T) {
	sink := diag.NewCountingSink()
	m := NewMachine(Options{Sink: sink})
	m.Reset()

	m.AcceptedDefault("", "the", ' ')

	if m.Current() != Start {
		t.Errorf("current = %s, want START (no transition)", m.Current())
	}
	if sink.Counts().AutoCorrections != 0 {
		t.Error("no event should be recorded for an empty word")
	}
}

func TestAcceptedTypedAndSuggestionFromEveryState(t *testing.T) {
	for _, from := range allStates {
		m := newTestMachine()
		forceState(t, m, from)
		m.AcceptedTyped("cat")
		if m.Current() != PickedSuggestion {
			t.Errorf("acceptedTyped from %s: current = %s, want PICKED_SUGGESTION", from, m.Current())
		}

		m = newTestMachine()
		forceState(t, m, from)
		m.AcceptedSuggestion("cat", "cat")
		if m.Current() != PickedSuggestion {
			t.Errorf("acceptedSuggestion from %s: current = %s, want PICKED_SUGGESTION", from, m.Current())
		}
	}
}

// =============================================================================
// BackToAcceptedDefault
// =============================================================================

func TestBackToAcceptedDefault(t *testing.T) {
	restorable := map[State]bool{
		SpaceAfterAccepted:       true,
		PunctuationAfterAccepted: true,
		InWord:                   true,
	}

	for _, from := range allStates {
		m := newTestMachine()
		forceState(t, m, from)

		m.BackToAcceptedDefault("the")

		want := from
		if restorable[from] {
			want = AcceptedDefault
		}
		if m.Current() != want {
			t.Errorf("from %s: current = %s, want %s", from, m.Current(), want)
		}
	}
}

func TestBackToAcceptedDefaultEmptyWordIsNoop(t *testing.T) {
	m := newTestMachine()
	forceState(t, m, SpaceAfterAccepted)

	m.BackToAcceptedDefault("")

	if m.Current() != SpaceAfterAccepted {
		t.Errorf("current = %s, want SPACE_AFTER_ACCEPTED", m.Current())
	}
}

// =============================================================================
// Backspace
// =============================================================================

func TestBackspaceUndoSequence(t *testing.T) {
	sink := diag.NewCountingSink()
	m := NewMachine(Options{Sink: sink})

	m.AcceptedDefault("teh", "the", ' ')

	m.Backspace()
	if m.Current() != UndoCommit {
		t.Fatalf("after first backspace: %s, want UNDO_COMMIT", m.Current())
	}
	if !m.IsUndoCommit() {
		t.Error("IsUndoCommit should be true in UNDO_COMMIT")
	}
	if sink.Counts().CorrectionsCancelled != 1 {
		t.Error("cancellation event not recorded")
	}

	m.Backspace()
	if m.Current() != InWord {
		t.Fatalf("after second backspace: %s, want IN_WORD", m.Current())
	}
}

func TestBackspaceRepeatStaysInWord(t *testing.T) {
	// Backspacing past the start of the word never leaves IN_WORD. This is
	// long-standing behavior that callers depend on; see Backspace docs.
	m := newTestMachine()
	m.AcceptedDefault("teh", "the", ' ')
	m.Backspace()
	m.Backspace()

	for i := 0; i < 5; i++ {
		m.Backspace()
		if m.Current() != InWord {
			t.Fatalf("backspace %d: current = %s, want IN_WORD", i+3, m.Current())
		}
	}
}

func TestBackspaceNoTransitionElsewhere(t *testing.T) {
	for _, from := range allStates {
		if from == AcceptedDefault || from == UndoCommit {
			continue
		}
		m := newTestMachine()
		forceState(t, m, from)

		m.Backspace()

		if m.Current() != from {
			t.Errorf("from %s: current = %s, want no transition", from, m.Current())
		}
	}
}

// =============================================================================
// RestartSuggestions and Reset
// =============================================================================

func TestRestartSuggestionsAlwaysInWord(t *testing.T) {
	for _, from := range allStates {
		m := newTestMachine()
		forceState(t, m, from)

		// Unexpected origins (UNKNOWN, ACCEPTED_DEFAULT) warn but still
		// transition.
		m.RestartSuggestions()

		if m.Current() != InWord {
			t.Errorf("from %s: current = %s, want IN_WORD", from, m.Current())
		}
	}
}

func TestResetIdempotent(t *testing.T) {
	m := newTestMachine()

	m.Reset()
	m.Reset()

	if m.Current() != Start {
		t.Errorf("current = %s, want START", m.Current())
	}
	if m.Previous() != Start {
		t.Errorf("previous = %s, want START", m.Previous())
	}
}

// =============================================================================
// IsUndoCommit
// =============================================================================

func TestIsUndoCommitOnlyInUndoCommit(t *testing.T) {
	for _, s := range allStates {
		m := newTestMachine()
		forceState(t, m, s)

		if got, want := m.IsUndoCommit(), s == UndoCommit; got != want {
			t.Errorf("in %s: IsUndoCommit = %t, want %t", s, got, want)
		}
	}
}

// =============================================================================
// Sequences
// =============================================================================

func TestTypingSequence(t *testing.T) {
	m := newTestMachine()

	m.Reset()
	if m.Current() != Start {
		t.Fatalf("after reset: %s", m.Current())
	}

	steps := []struct {
		ch   rune
		want State
	}{
		{'h', InWord},
		{'i', InWord},
		{' ', Start},
	}
	for _, step := range steps {
		m.TypedCharacter(step.ch, false, 0, 0)
		if m.Current() != step.want {
			t.Fatalf("after %q: %s, want %s", step.ch, m.Current(), step.want)
		}
	}
}

func TestAutocorrectThenSpace(t *testing.T) {
	m := newTestMachine()

	m.AcceptedDefault("teh", "the", ',')
	if m.Current() != AcceptedDefault {
		t.Fatalf("current = %s, want ACCEPTED_DEFAULT", m.Current())
	}

	m.TypedCharacter(' ', false, 0, 0)
	if m.Current() != SpaceAfterAccepted {
		t.Fatalf("current = %s, want SPACE_AFTER_ACCEPTED", m.Current())
	}

	m.BackToAcceptedDefault("the")
	if m.Current() != AcceptedDefault {
		t.Fatalf("current = %s, want ACCEPTED_DEFAULT after restore", m.Current())
	}
}

// =============================================================================
// Verbose tracing
// =============================================================================

type captureSink struct {
	events []diag.Event
}

func (s *captureSink) Record(ev diag.Event) {
	s.events = append(s.events, ev)
}

func TestVerboseTraceEmitted(t *testing.T) {
	sink := &captureSink{}
	m := NewMachine(Options{Sink: sink, Verbose: true})

	m.Reset()
	m.TypedCharacter('a', false, 3, 4)

	var traces []diag.Trace
	for _, ev := range sink.events {
		if tr, ok := ev.(diag.Trace); ok {
			traces = append(traces, tr)
		}
	}
	if len(traces) != 2 {
		t.Fatalf("got %d traces, want 2", len(traces))
	}

	if traces[0].Op != "reset" {
		t.Errorf("first trace op = %q", traces[0].Op)
	}
	tr := traces[1]
	if tr.Op != "typedCharacter" {
		t.Errorf("second trace op = %q", tr.Op)
	}
	if tr.State != "IN_WORD" || tr.Previous != "START" {
		t.Errorf("trace states = %s/%s, want IN_WORD/START", tr.State, tr.Previous)
	}
	if len(tr.Args) != 2 || tr.Args[0].Name != "char" {
		t.Errorf("trace args = %+v", tr.Args)
	}
}

func TestNoTraceWhenNotVerbose(t *testing.T) {
	sink := &captureSink{}
	m := NewMachine(Options{Sink: sink})

	m.Reset()
	m.TypedCharacter('a', false, 0, 0)

	for _, ev := range sink.events {
		if _, ok := ev.(diag.Trace); ok {
			t.Fatal("trace emitted with Verbose disabled")
		}
	}
}
