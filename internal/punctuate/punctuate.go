// Package punctuate implements auto-punctuation around predicted words.
//
// Accepting a word choice types the word followed by a space. If the next
// key typed is punctuation, that space is taken back and re-added after the
// punctuation mark. Sentence-ending marks additionally ask for the next
// letter to be capitalized.
package punctuate

import "strings"

// Control characters understood by the keyboard's string injection.
const (
	Backspace  = "\b"
	Capitalize = "\x0e"
)

const (
	clauseMarks   = ",:;"
	sentenceMarks = ".?!"
)

// Punctuator tracks whether the last thing typed was an accepted word plus
// an automatically added space.
type Punctuator struct {
	endOfWord  bool
	spaceAdded bool
	prefix     string
	suffix     string
}

// New returns a reset punctuator.
func New() *Punctuator {
	return &Punctuator{}
}

// Reset forgets all pending state.
func (p *Punctuator) Reset() {
	*p = Punctuator{}
}

// SetEndOfWord marks that a complete word was just inserted.
func (p *Punctuator) SetEndOfWord() {
	p.endOfWord = true
}

// BuildPrefix returns what to type before char: a backspace that takes back
// the automatic space when char is punctuation. The matching suffix is
// returned by the following BuildSuffix call.
func (p *Punctuator) BuildPrefix(char string) string {
	p.prefix = ""
	p.suffix = ""
	if p.spaceAdded && len(char) == 1 {
		switch {
		case strings.Contains(clauseMarks, char):
			p.prefix = Backspace
			p.suffix = " "
		case strings.Contains(sentenceMarks, char):
			p.prefix = Backspace
			p.suffix = " " + Capitalize
		}
	}
	p.spaceAdded = false
	return p.prefix
}

// BuildSuffix returns what to type after the key that was just released.
func (p *Punctuator) BuildSuffix() string {
	if p.endOfWord {
		p.endOfWord = false
		p.spaceAdded = true
		return " "
	}
	s := p.suffix
	p.suffix = ""
	return s
}
