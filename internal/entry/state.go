package entry

// State is the editing context of the text currently being composed. It is
// a closed enumeration: the machine never produces a value outside this set.
type State int

const (
	// Unknown is the initial state before any event has been reported.
	Unknown State = iota

	// Start means the cursor is at a word boundary with nothing typed yet.
	Start

	// InWord means the user is in the middle of typing a word.
	InWord

	// AcceptedDefault means an autocorrection was just silently applied.
	AcceptedDefault

	// PickedSuggestion means the user explicitly chose a suggestion.
	PickedSuggestion

	// PunctuationAfterAccepted means a separator followed an acceptance.
	PunctuationAfterAccepted

	// SpaceAfterAccepted means a space followed an acceptance.
	SpaceAfterAccepted

	// SpaceAfterPicked means a space followed a picked suggestion.
	SpaceAfterPicked

	// UndoCommit means a backspace is reverting the last autocorrection.
	UndoCommit
)

// String returns the canonical state name.
func (s State) String() string {
	switch s {
	case Start:
		return "START"
	case InWord:
		return "IN_WORD"
	case AcceptedDefault:
		return "ACCEPTED_DEFAULT"
	case PickedSuggestion:
		return "PICKED_SUGGESTION"
	case PunctuationAfterAccepted:
		return "PUNCTUATION_AFTER_ACCEPTED"
	case SpaceAfterAccepted:
		return "SPACE_AFTER_ACCEPTED"
	case SpaceAfterPicked:
		return "SPACE_AFTER_PICKED"
	case UndoCommit:
		return "UNDO_COMMIT"
	default:
		return "UNKNOWN"
	}
}
