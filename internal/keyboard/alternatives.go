package keyboard

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// builtinAlternatives lists accented and related characters offered on long
// press, keyed by the lower case base character.
var builtinAlternatives = map[rune][]string{
	'a':  {"à", "á", "â", "ä", "æ", "ã", "å", "ā"},
	'c':  {"ç", "ć", "č"},
	'd':  {"ď", "ð"},
	'e':  {"è", "é", "ê", "ë", "ē", "ė", "ę", "ě"},
	'g':  {"ğ"},
	'i':  {"î", "ï", "í", "ī", "į", "ì", "ı"},
	'l':  {"ł", "ľ"},
	'n':  {"ñ", "ń", "ň"},
	'o':  {"ô", "ö", "ò", "ó", "œ", "ø", "ō", "õ"},
	'r':  {"ř"},
	's':  {"ß", "ś", "š", "ş"},
	't':  {"ť", "þ"},
	'u':  {"û", "ü", "ù", "ú", "ū", "ů"},
	'y':  {"ÿ", "ý"},
	'z':  {"ž", "ź", "ż"},
	'0':  {"°", "∅"},
	'1':  {"¹", "½", "⅓", "¼"},
	'2':  {"²", "⅔"},
	'3':  {"³", "¾"},
	'-':  {"–", "—", "·"},
	'?':  {"¿"},
	'!':  {"¡"},
	'$':  {"€", "£", "¥", "¢"},
	'\'': {"‘", "’", "‚"},
	'"':  {"“", "”", "„", "«", "»"},
}

// alternativesFor returns what a long press on the key offers. Alternatives
// set by the layout win over the built-in table.
func (k *Keyboard) alternativesFor(sk *Key) []string {
	if len(sk.Alternatives) > 0 {
		return sk.Alternatives
	}
	if !typesText(sk) {
		return nil
	}
	char := sk.Char
	if char == "" {
		char = sk.Label()
	}
	return builtinAlternativesFor(char)
}

func builtinAlternativesFor(char string) []string {
	r, size := utf8.DecodeRuneInString(char)
	if r == utf8.RuneError || size != len(char) {
		return nil
	}
	alts := builtinAlternatives[unicode.ToLower(r)]
	if len(alts) == 0 || !unicode.IsUpper(r) {
		return alts
	}
	upper := make([]string, 0, len(alts))
	for _, a := range alts {
		if u := strings.ToUpper(a); utf8.RuneCountInString(u) == 1 {
			upper = append(upper, u)
		}
	}
	return upper
}
