// Package tokenizer turns free product text into normalised word tokens. Text
// is NFC-normalised, split into sentences, word-tokenised with Penn Treebank
// conventions, and each raw token is passed through a Processor that filters
// punctuation and stop-words and lower-cases the survivors.
package tokenizer

import (
	"strings"
	"unicode"

	"github.com/kljensen/snowball/english"
	"golang.org/x/text/unicode/norm"

	apperrors "github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/pkg/errors"
)

// Processor normalises a single raw token. Returning false drops the token.
type Processor func(raw string) (string, bool)

// Tokenizer is immutable once built and safe for concurrent use.
type Tokenizer struct {
	process Processor
}

// Option configures a Tokenizer.
type Option func(*Tokenizer)

// WithProcessor replaces the default token processor.
func WithProcessor(p Processor) Option {
	return func(t *Tokenizer) { t.process = p }
}

// WithStemming applies the Snowball English stemmer after the default
// filtering.
func WithStemming() Option {
	return WithProcessor(StemmingProcessor)
}

// New returns a Tokenizer using DefaultProcessor unless overridden.
func New(opts ...Option) *Tokenizer {
	t := &Tokenizer{process: DefaultProcessor}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Default is the process-wide tokenizer used when no other is configured.
var Default = New()

// Tokenize is Default.Tokenize.
func Tokenize(v any) ([]string, error) {
	return Default.Tokenize(v)
}

// Tokenize accepts a string, a *string or nil. Null input yields a nil slice
// and no error; blank text yields an empty slice. Any other kind is ErrInvalidInputKind.
func (t *Tokenizer) Tokenize(v any) ([]string, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case string:
		return t.Text(x), nil
	case *string:
		if x == nil {
			return nil, nil
		}
		return t.Text(*x), nil
	default:
		return nil, apperrors.InvalidKind("tokenize", v)
	}
}

// Text tokenises s. Blank text, or text whose tokens are all filtered out,
// returns an empty, non-nil slice.
func (t *Tokenizer) Text(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	s = norm.NFC.String(s)
	result := make([]string, 0, 8)
	for _, sent := range SplitSentences(s) {
		for _, raw := range TreebankWords(sent) {
			if tok, ok := t.process(raw); ok {
				result = append(result, tok)
			}
		}
	}
	return result
}

// DefaultProcessor drops tokens without a letter or digit, lower-cases the
// rest and drops stop-words.
func DefaultProcessor(raw string) (string, bool) {
	if !hasAlnum(raw) {
		return "", false
	}
	tok := strings.ToLower(raw)
	if IsStopWord(tok) {
		return "", false
	}
	return tok, true
}

// StemmingProcessor is DefaultProcessor followed by Snowball stemming.
func StemmingProcessor(raw string) (string, bool) {
	tok, ok := DefaultProcessor(raw)
	if !ok {
		return "", false
	}
	if stemmed := english.Stem(tok, false); stemmed != "" {
		tok = stemmed
	}
	return tok, true
}

func hasAlnum(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
