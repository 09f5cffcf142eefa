// Package recent provides a bounded rolling buffer of recently typed
// characters and their touch coordinates.
//
// The entry state machine pushes every typed character here; suggestion
// logic elsewhere reads the buffer back to reconstruct the word being
// composed. When the buffer is full the oldest entry is overwritten.
package recent

import "sync"

// DefaultCapacity is the number of entries retained when none is configured.
const DefaultCapacity = 20

// Entry is a single recorded keystroke.
type Entry struct {
	Char rune
	X    int
	Y    int
}

// Buffer is a fixed-capacity ring of keystrokes.
type Buffer struct {
	mu      sync.Mutex
	entries []Entry
	start   int
	length  int
}

// NewBuffer creates a buffer with the given capacity. Nonpositive capacities
// fall back to DefaultCapacity.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{entries: make([]Entry, capacity)}
}

// Capacity returns the fixed capacity of the buffer.
func (b *Buffer) Capacity() int {
	return len(b.entries)
}

// Len returns the number of entries currently held.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.length
}

// Push appends a keystroke, overwriting the oldest entry when full.
func (b *Buffer) Push(ch rune, x, y int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := (b.start + b.length) % len(b.entries)
	b.entries[idx] = Entry{Char: ch, X: x, Y: y}
	if b.length < len(b.entries) {
		b.length++
	} else {
		b.start = (b.start + 1) % len(b.entries)
	}
}

// Pop removes and returns the most recent entry. ok is false if the buffer
// is empty.
func (b *Buffer) Pop() (e Entry, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.length == 0 {
		return Entry{}, false
	}
	b.length--
	idx := (b.start + b.length) % len(b.entries)
	return b.entries[idx], true
}

// LastChar returns the most recently pushed character, or 0 if empty.
func (b *Buffer) LastChar() rune {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.length == 0 {
		return 0
	}
	idx := (b.start + b.length - 1) % len(b.entries)
	return b.entries[idx].Char
}

// LastString returns up to n of the most recent characters, oldest first.
func (b *Buffer) LastString(n int) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if n > b.length {
		n = b.length
	}
	if n <= 0 {
		return ""
	}
	out := make([]rune, n)
	for i := 0; i < n; i++ {
		idx := (b.start + b.length - n + i) % len(b.entries)
		out[i] = b.entries[idx].Char
	}
	return string(out)
}

// LastWord returns the trailing run of characters for which isSeparator
// reports false, oldest first. The word ends at the newest entry and starts
// after the most recent separator (or at the oldest retained entry).
func (b *Buffer) LastWord(isSeparator func(rune) bool) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := 0
	for n < b.length {
		idx := (b.start + b.length - 1 - n) % len(b.entries)
		if isSeparator != nil && isSeparator(b.entries[idx].Char) {
			break
		}
		n++
	}
	if n == 0 {
		return ""
	}
	out := make([]rune, n)
	for i := 0; i < n; i++ {
		idx := (b.start + b.length - n + i) % len(b.entries)
		out[i] = b.entries[idx].Char
	}
	return string(out)
}

// Reset discards all entries.
func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.start = 0
	b.length = 0
}
