// Package predict suggests word completions and learns from what the user
// types. Learned words and word pairs live in a SQLite database.
package predict

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sahilm/fuzzy"

	"github.com/dshills/osk/internal/logging"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

const schema = `
CREATE TABLE IF NOT EXISTS words (
    word        TEXT PRIMARY KEY,
    count       INTEGER NOT NULL,
    last_used   INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS bigrams (
    prev        TEXT NOT NULL,
    word        TEXT NOT NULL,
    count       INTEGER NOT NULL,
    PRIMARY KEY (prev, word)
);

CREATE INDEX IF NOT EXISTS idx_words_count ON words(count DESC);
`

// bigramWeight scales how much a word following the previous word counts
// compared with its overall frequency.
const bigramWeight = 10

// fuzzyPool is how many frequent words are searched for typo-tolerant
// matches when prefix matches run short.
const fuzzyPool = 2000

// ErrClosed is returned after Close.
var ErrClosed = errors.New("predictor closed")

// WordInfo describes one word of the input line.
type WordInfo struct {
	Start, End int // rune offsets
	Exists     bool
	Partial    bool // a prefix of a known word
}

// Predictor suggests completions for the word being typed.
type Predictor struct {
	db         *sql.DB
	log        *logging.Logger
	maxChoices int
}

// Open opens or creates the word database at path.
func Open(path string, maxChoices int, log *logging.Logger) (*Predictor, error) {
	dsn := MemoryPath
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		dsn = path + "?_journal_mode=WAL"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if path == MemoryPath {
		// each connection would get its own empty database
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	if maxChoices <= 0 {
		maxChoices = 8
	}
	return &Predictor{
		db:         db,
		log:        logging.OrDefault(log).WithComponent("predict"),
		maxChoices: maxChoices,
	}, nil
}

// Close closes the database.
func (p *Predictor) Close() error {
	if p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	return err
}

// Predict returns up to maxChoices completions for the last word of
// context. Prefix matches come first, ordered by frequency and by how often
// they followed the previous word; typo-tolerant matches fill the rest.
func (p *Predictor) Predict(context string) []string {
	if p.db == nil {
		return nil
	}
	tokens := tokenize(context)
	prefix := LastContextToken(context)
	prev := ""
	if n := len(tokens); n > 0 {
		if prefix != "" && n > 1 {
			prev = tokens[n-2].text
		} else if prefix == "" {
			prev = tokens[n-1].text
		}
	}

	choices, err := p.prefixMatches(prefix, prev)
	if err != nil {
		p.log.Warn("prefix query failed", "error", err)
		return nil
	}
	if len(choices) < p.maxChoices && utf8.RuneCountInString(prefix) >= 2 {
		extra, err := p.fuzzyMatches(prefix, choices)
		if err != nil {
			p.log.Warn("fuzzy query failed", "error", err)
		}
		choices = append(choices, extra...)
	}
	if len(choices) > p.maxChoices {
		choices = choices[:p.maxChoices]
	}
	if isCapitalized(prefix) {
		for i, c := range choices {
			choices[i] = capitalize(c)
		}
	}
	return choices
}

func (p *Predictor) prefixMatches(prefix, prev string) ([]string, error) {
	rows, err := p.db.Query(`
		SELECT w.word, w.count + ? * COALESCE(b.count, 0) AS score
		FROM words w
		LEFT JOIN bigrams b ON b.prev = ? AND b.word = w.word
		WHERE w.word LIKE ? ESCAPE '\' AND w.word <> ?
		ORDER BY score DESC, w.last_used DESC, w.word
		LIMIT ?`,
		bigramWeight, strings.ToLower(prev), likePrefix(strings.ToLower(prefix)), strings.ToLower(prefix), p.maxChoices,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var word string
		var score int64
		if err := rows.Scan(&word, &score); err != nil {
			return nil, err
		}
		out = append(out, word)
	}
	return out, rows.Err()
}

func (p *Predictor) fuzzyMatches(prefix string, have []string) ([]string, error) {
	rows, err := p.db.Query(`SELECT word FROM words ORDER BY count DESC LIMIT ?`, fuzzyPool)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pool []string
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, err
		}
		pool = append(pool, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(have))
	for _, w := range have {
		seen[w] = true
	}
	lower := strings.ToLower(prefix)
	var out []string
	for _, m := range fuzzy.Find(lower, pool) {
		if seen[m.Str] || m.Str == lower {
			continue
		}
		out = append(out, m.Str)
		if len(have)+len(out) >= p.maxChoices {
			break
		}
	}
	return out, nil
}

// WordInfos annotates each word of line.
func (p *Predictor) WordInfos(line string) []WordInfo {
	tokens := tokenize(line)
	infos := make([]WordInfo, 0, len(tokens))
	for _, t := range tokens {
		info := WordInfo{Start: t.start, End: t.end}
		if p.db != nil {
			w := strings.ToLower(t.text)
			var n int
			if err := p.db.QueryRow(`SELECT COUNT(*) FROM words WHERE word = ?`, w).Scan(&n); err == nil {
				info.Exists = n > 0
			}
			if !info.Exists {
				if err := p.db.QueryRow(`SELECT COUNT(*) FROM words WHERE word LIKE ? ESCAPE '\'`, likePrefix(w)).Scan(&n); err == nil {
					info.Partial = n > 0
				}
			}
		}
		infos = append(infos, info)
	}
	return infos
}

// LearnText records the words of text and the pairs they form. Unless
// allowNew is set only words already known are counted.
func (p *Predictor) LearnText(text string, allowNew bool) error {
	if p.db == nil {
		return ErrClosed
	}
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return nil
	}
	tx, err := p.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	prev := ""
	for _, t := range tokens {
		w := strings.ToLower(t.text)
		if !allowNew {
			var n int
			if err := tx.QueryRow(`SELECT COUNT(*) FROM words WHERE word = ?`, w).Scan(&n); err != nil {
				return fmt.Errorf("lookup %q: %w", w, err)
			}
			if n == 0 {
				prev = ""
				continue
			}
		}
		if _, err := tx.Exec(`
			INSERT INTO words (word, count, last_used) VALUES (?, 1, ?)
			ON CONFLICT(word) DO UPDATE SET count = count + 1, last_used = excluded.last_used`,
			w, now); err != nil {
			return fmt.Errorf("learn %q: %w", w, err)
		}
		if prev != "" {
			if _, err := tx.Exec(`
				INSERT INTO bigrams (prev, word, count) VALUES (?, ?, 1)
				ON CONFLICT(prev, word) DO UPDATE SET count = count + 1`,
				prev, w); err != nil {
				return fmt.Errorf("learn pair %q %q: %w", prev, w, err)
			}
		}
		prev = w
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	p.log.Debug("learned text", "words", len(tokens))
	return nil
}

// WordCount returns how often word was learned.
func (p *Predictor) WordCount(word string) (int, error) {
	if p.db == nil {
		return 0, ErrClosed
	}
	var n int
	err := p.db.QueryRow(`SELECT count FROM words WHERE word = ?`, strings.ToLower(word)).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return n, err
}

// LastContextToken returns the partial word at the end of context, or ""
// when context ends in a separator.
func LastContextToken(context string) string {
	end := len(context)
	start := end
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(context[:start])
		if !isWordRune(r) {
			break
		}
		start -= size
	}
	return context[start:end]
}

type token struct {
	text       string
	start, end int
}

func tokenize(s string) []token {
	var out []token
	inWord := false
	var b strings.Builder
	start, pos := 0, 0
	for _, r := range s {
		if isWordRune(r) {
			if !inWord {
				inWord = true
				start = pos
				b.Reset()
			}
			b.WriteRune(r)
		} else if inWord {
			inWord = false
			out = append(out, token{text: b.String(), start: start, end: pos})
		}
		pos++
	}
	if inWord {
		out = append(out, token{text: b.String(), start: start, end: pos})
	}
	return out
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'' || r == '-'
}

func likePrefix(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s) + "%"
}

func isCapitalized(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
