// Package textline mirrors what the user has typed since the last commit so
// that word prediction has context to work with.
package textline

import "unicode"

// Line is an editable line of text with a cursor. Cursor positions count
// runes, not bytes.
//
// Once the cursor is moved outside the known text the line becomes invalid:
// the user has navigated somewhere the keyboard never saw, and its copy of
// the text no longer matches the application's.
type Line struct {
	text   []rune
	cursor int
	valid  bool
}

// New returns an empty, valid line.
func New() *Line {
	l := &Line{}
	l.Reset()
	return l
}

// Reset clears the text and restores validity.
func (l *Line) Reset() {
	l.text = l.text[:0]
	l.cursor = 0
	l.valid = true
}

// IsEmpty reports whether no text is known.
func (l *Line) IsEmpty() bool {
	return len(l.text) == 0
}

// IsValid reports whether the cursor stayed within the known text.
func (l *Line) IsValid() bool {
	return l.valid
}

// Insert adds s at the cursor and moves the cursor past it.
func (l *Line) Insert(s string) {
	rs := []rune(s)
	if len(rs) == 0 {
		return
	}
	text := make([]rune, 0, len(l.text)+len(rs))
	text = append(text, l.text[:l.cursor]...)
	text = append(text, rs...)
	text = append(text, l.text[l.cursor:]...)
	l.text = text
	l.MoveCursor(len(rs))
}

// DeleteLeft removes up to n runes before the cursor. Deleting past the
// start invalidates the line.
func (l *Line) DeleteLeft(n int) {
	start := l.cursor - n
	if start < 0 {
		start = 0
	}
	l.text = append(l.text[:start], l.text[l.cursor:]...)
	l.MoveCursor(-n)
}

// DeleteRight removes up to n runes after the cursor.
func (l *Line) DeleteRight(n int) {
	end := l.cursor + n
	if end > len(l.text) {
		end = len(l.text)
	}
	l.text = append(l.text[:l.cursor], l.text[end:]...)
}

// MoveCursor moves the cursor by n runes, clamping it to the text and
// marking the line invalid if it had to clamp.
func (l *Line) MoveCursor(n int) {
	l.cursor += n
	if l.cursor < 0 {
		l.cursor = 0
		l.valid = false
	}
	if l.cursor > len(l.text) {
		l.cursor = len(l.text)
		l.valid = false
	}
}

// Context returns the text before the cursor.
func (l *Line) Context() string {
	return string(l.text[:l.cursor])
}

// String returns the whole line.
func (l *Line) String() string {
	return string(l.text)
}

// Cursor returns the cursor position in runes.
func (l *Line) Cursor() int {
	return l.cursor
}

// IsPrintable reports whether s is a single character that would show up in
// the text. Tab counts, newline does not.
func IsPrintable(s string) bool {
	rs := []rune(s)
	if len(rs) != 1 {
		return false
	}
	r := rs[0]
	if r == '\t' {
		return true
	}
	return unicode.IsGraphic(r)
}
