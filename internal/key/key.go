// Package key defines keyboard code constants and character classification
// shared by the entry state machine and its callers.
//
// Only the space code is authoritative here: separator-vs-ordinary
// classification is supplied by the caller per event, because what counts as
// a word delimiter depends on locale and layout, which this module does not
// model.
package key

// Character codes shared with the keyboard layout.
const (
	CodeSpace  rune = ' '
	CodeEnter  rune = '\n'
	CodeTab    rune = '\t'
	CodeDelete rune = -5
)

// Class is the classification of a typed character.
type Class int

const (
	// ClassOrdinary is a regular word-building character.
	ClassOrdinary Class = iota
	// ClassSpace is the space character.
	ClassSpace
	// ClassSeparator is a caller-designated word delimiter.
	ClassSeparator
)

// String returns a human-readable class name.
func (c Class) String() string {
	switch c {
	case ClassOrdinary:
		return "ordinary"
	case ClassSpace:
		return "space"
	case ClassSeparator:
		return "separator"
	default:
		return "unknown"
	}
}

// Classify maps a character and its caller-supplied separator flag to a
// Class. Space takes precedence over the separator flag.
func Classify(ch rune, isSeparator bool) Class {
	if ch == CodeSpace {
		return ClassSpace
	}
	if isSeparator {
		return ClassSeparator
	}
	return ClassOrdinary
}
