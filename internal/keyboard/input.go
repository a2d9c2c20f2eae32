package keyboard

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dshills/osk/internal/input/key"
	"github.com/dshills/osk/internal/predict"
	"github.com/dshills/osk/internal/punctuate"
	"github.com/dshills/osk/internal/textline"
)

// Layout groups that only show while word prediction is enabled.
var predictionGroups = map[string]bool{
	"inputline": true,
	"wordlist":  true,
	"word":      true,
	"wpbutton":  true,
}

const inputLineID = "inputline"

// typesText reports whether the key types its label as text.
func typesText(sk *Key) bool {
	return sk.Action == ActionKeycode || sk.Action == ActionChar
}

// trackInput mirrors a key press in the input line and reports whether the
// line should be committed. Word, macro and script text is tracked by
// PressKeyString instead.
func (k *Keyboard) trackInput(sk *Key) bool {
	if k.current().Prediction.StealthMode {
		return true
	}
	if !k.predicting {
		return false
	}

	id := strings.ToUpper(sk.ID)
	char := sk.Label()
	if utf8.RuneCountInString(char) > 1 {
		char = ""
	}

	end := false
	switch {
	case sk.Action == ActionWord, sk.Action == ActionModifier, sk.Action == ActionButton:
		// Words, modifiers and buttons don't interrupt the word being typed.

	case sk.Action == ActionKeysym:
		if id == "ESC" {
			k.line.Reset()
		}
		end = true

	case sk.Action == ActionKeypressName:
		switch id {
		case "DELE":
			k.line.DeleteRight(1)
		case "LEFT":
			k.line.MoveCursor(-1)
		case "RGHT":
			k.line.MoveCursor(1)
		default:
			end = true
		}

	case typesText(sk):
		switch id {
		case "RTRN":
			char = "\n"
		case "SPCE":
			char = " "
		case "TAB":
			char = "\t"
		}
		if sk.Action == ActionChar && sk.Char != "" {
			char = sk.Char
		}
		switch {
		case id == "BKSP":
			k.line.DeleteLeft(1)
		case !textline.IsPrintable(char):
			end = true
		case k.mods.Count(key.ModCtrl) > 0:
			end = true
		default:
			k.line.Insert(char)
		}

	default:
		end = true
	}

	if !k.line.IsValid() {
		end = true
	}
	return end
}

// CommitInputLine learns the words of the input line, if auto-learn is on,
// and starts a new line.
func (k *Keyboard) CommitInputLine() {
	p := k.current().Prediction
	if k.predicting && p.AutoLearn && !p.StealthMode && !k.line.IsEmpty() {
		if err := k.predictor.LearnText(k.line.String(), true); err != nil {
			k.log.Warn("learning input line", "error", err)
		}
	}
	k.punctuator.Reset()
	k.line.Reset()
	k.wordChoices = nil
	k.wordInfos = nil
}

// FindWordChoices refreshes the predictions for the input line.
func (k *Keyboard) FindWordChoices() {
	k.wordChoices = nil
	if !k.predicting {
		return
	}
	k.wordChoices = k.predictor.Predict(k.line.Context())
	k.wordInfos = k.predictor.WordInfos(k.line.String())
}

// WordInfos annotates the words of the input line.
func (k *Keyboard) WordInfos() []predict.WordInfo {
	return k.wordInfos
}

// MatchRemainder returns the part of word choice i that hasn't been typed
// yet. A choice that doesn't extend the typed prefix, as typo-tolerant
// matches may not, replaces the prefix: it is deleted with backspaces
// first.
func (k *Keyboard) MatchRemainder(i int) (string, error) {
	if i < 0 || i >= len(k.wordChoices) {
		return "", fmt.Errorf("%w: %d", ErrNoWordChoice, i)
	}
	choice := k.wordChoices[i]
	prefix := predict.LastContextToken(k.line.Context())
	n := utf8.RuneCountInString(prefix)

	rs := []rune(choice)
	if len(rs) >= n && strings.EqualFold(string(rs[:n]), prefix) {
		return string(rs[n:]), nil
	}
	return strings.Repeat(punctuate.Backspace, n) + choice, nil
}

func (k *Keyboard) sendPunctuationPrefix(sk *Key) {
	if !k.current().Prediction.AutoPunctuation || !typesText(sk) {
		return
	}
	char := sk.Char
	if char == "" {
		char = sk.Label()
	}
	k.PressKeyString(k.punctuator.BuildPrefix(char))
}

// EnableWordPrediction shows or hides the prediction keys. Prediction
// stays off without a predictor.
func (k *Keyboard) EnableWordPrediction(enable bool) {
	k.predicting = enable && k.predictor != nil
	if !k.predicting {
		k.wordChoices = nil
		k.wordInfos = nil
		k.line.Reset()
	}
	if k.layout != nil {
		for _, sk := range k.layout.Keys() {
			if predictionGroups[sk.Group] {
				sk.Visible = k.predicting
			}
		}
	}
	k.redraw()
}

// WordPrediction reports whether word prediction is active.
func (k *Keyboard) WordPrediction() bool {
	return k.predicting
}

func (k *Keyboard) updateInputLine() {
	if !k.predicting {
		return
	}
	text := k.line.String()
	for _, sk := range k.FindKeys(inputLineID) {
		visible := text != ""
		if sk.Visible == visible && sk.Labels[LabelBase] == text {
			continue
		}
		sk.Visible = visible
		sk.Labels = [numLabels]string{LabelBase: text}
		sk.LabelIndex = LabelBase
		k.redraw(sk)
	}
}

func (k *Keyboard) updateWordKeys() {
	if !k.predicting {
		return
	}
	for _, sk := range k.layout.Keys() {
		if sk.Action != ActionWord {
			continue
		}
		label := ""
		if sk.Word >= 0 && sk.Word < len(k.wordChoices) {
			label = k.wordChoices[sk.Word]
		}
		sensitive := label != ""
		if sk.Labels[LabelBase] == label && sk.Sensitive == sensitive {
			continue
		}
		sk.Labels = [numLabels]string{LabelBase: label}
		sk.LabelIndex = LabelBase
		sk.Sensitive = sensitive
		k.redraw(sk)
	}
}
