// Package dictionary recognises entries of a phrase dictionary (colour names,
// brands and the like) inside free text. Entries and queries are tokenised
// with the same tokenizer and rendered as "[tok1] [tok2] ..." so that a
// multi-word entry can only match on whole-token boundaries. Matching runs an
// Aho-Corasick automaton over that rendering.
package dictionary

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/nlp/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/pkg/errors"
)

// Matcher is read-only after construction and safe for concurrent use.
type Matcher struct {
	tok     *tokenizer.Tokenizer
	ac      *automaton
	entries []string // raw entry per automaton pattern
	phrases []string // tokens of each entry joined by one space
	keys    map[string]int
}

// New builds a Matcher from in-memory entries. Blank entries and entries
// starting with '#' are skipped.
func New(tok *tokenizer.Tokenizer, entries []string) (*Matcher, error) {
	if tok == nil {
		tok = tokenizer.Default
	}
	m := &Matcher{
		tok:  tok,
		ac:   newAutomaton(),
		keys: make(map[string]int),
	}
	for _, raw := range entries {
		raw = strings.TrimRightFunc(raw, isSpace)
		if strings.TrimSpace(raw) == "" || strings.HasPrefix(strings.TrimSpace(raw), "#") {
			continue
		}
		tokens := tok.Text(raw)
		if len(tokens) == 0 {
			slog.Debug("dictionary entry has no tokens", "entry", raw)
			continue
		}
		key := Render(tokens)
		if _, dup := m.keys[key]; dup {
			continue
		}
		m.keys[key] = m.ac.add(key)
		m.entries = append(m.entries, raw)
		m.phrases = append(m.phrases, strings.Join(tokens, " "))
	}
	if len(m.entries) == 0 {
		return nil, fmt.Errorf("%w: no usable entries", apperrors.ErrDictionaryLoad)
	}
	m.ac.build()
	return m, nil
}

// FromReader builds a Matcher from one-entry-per-line text.
func FromReader(tok *tokenizer.Tokenizer, r io.Reader) (*Matcher, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrDictionaryLoad, err)
	}
	return New(tok, lines)
}

// Load reads every dictionary file and builds one Matcher over their union.
func Load(tok *tokenizer.Tokenizer, paths ...string) (*Matcher, error) {
	lines, err := ReadEntries(paths...)
	if err != nil {
		return nil, err
	}
	m, err := New(tok, lines)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", strings.Join(paths, ", "), err)
	}
	slog.Info("dictionary loaded", "files", len(paths), "entries", m.Len())
	return m, nil
}

// ReadEntries returns the raw lines of every file in order. Comment and
// blank lines are kept; New drops them.
func ReadEntries(paths ...string) ([]string, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no dictionary files given", apperrors.ErrDictionaryLoad)
	}
	var lines []string
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("%w: opening %s: %v", apperrors.ErrDictionaryLoad, path, err)
		}
		fileLines, err := readLines(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: reading %s: %v", apperrors.ErrDictionaryLoad, path, err)
		}
		lines = append(lines, fileLines...)
	}
	return lines, nil
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}

// Render turns tokens into the bracketed form the automaton runs over.
func Render(tokens []string) string {
	var b strings.Builder
	for i, t := range tokens {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteByte('[')
		b.WriteString(t)
		b.WriteByte(']')
	}
	return b.String()
}

// Len returns the number of distinct entries.
func (m *Matcher) Len() int {
	return len(m.entries)
}

// Contains reports whether any entry occurs in text. Null text never matches.
func (m *Matcher) Contains(text *string) bool {
	if text == nil {
		return false
	}
	found := false
	m.ac.scan(m.render(*text), func(hit) bool {
		found = true
		return false
	})
	return found
}

// Count returns the number of possibly overlapping matches. ok is false for
// null text, which keeps "no text" distinct from "no match".
func (m *Matcher) Count(text *string) (n int, ok bool) {
	if text == nil {
		return 0, false
	}
	m.ac.scan(m.render(*text), func(hit) bool {
		n++
		return true
	})
	return n, true
}

// Matches returns the raw entries found, ordered by where each match ends.
func (m *Matcher) Matches(text *string) []string {
	if text == nil {
		return []string{}
	}
	result := make([]string, 0)
	m.ac.scan(m.render(*text), func(h hit) bool {
		result = append(result, m.entries[h.pattern])
		return true
	})
	return result
}

// MatchTokens runs over text that was already tokenised with the matcher's
// tokenizer and returns the normalised phrase of every match, ordered by
// where each match ends.
func (m *Matcher) MatchTokens(tokens []string) []string {
	result := make([]string, 0)
	if len(tokens) == 0 {
		return result
	}
	m.ac.scan(Render(tokens), func(h hit) bool {
		result = append(result, m.phrases[h.pattern])
		return true
	})
	return result
}

// Replace substitutes repl for every matched span of the bracketed
// rendering of text. Matches are consumed left to right; a match that starts
// inside an already substituted span is skipped. Null text stays null.
func (m *Matcher) Replace(text *string, repl string) *string {
	if text == nil {
		return nil
	}
	rendered := m.render(*text)
	var b strings.Builder
	lastConsumed := 0
	m.ac.scan(rendered, func(h hit) bool {
		if h.start < lastConsumed {
			return true
		}
		b.WriteString(rendered[lastConsumed:h.start])
		b.WriteString(repl)
		lastConsumed = h.end
		return true
	})
	b.WriteString(rendered[lastConsumed:])
	out := b.String()
	return &out
}

func (m *Matcher) render(text string) string {
	return Render(m.tok.Text(text))
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n'
}
