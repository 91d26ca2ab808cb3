// Package colours exposes the built-in colour dictionary.
package colours

import (
	_ "embed"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/nlp/dictionary"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/nlp/tokenizer"
)

//go:embed colours.txt
var source string

// Entries returns the raw dictionary lines, comments and blanks removed.
func Entries() []string {
	var out []string
	for _, line := range strings.Split(source, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}

// Matcher builds a dictionary matcher over every built-in entry, compound
// colours included, plus extra. Comment and blank lines in extra are ignored.
func Matcher(tok *tokenizer.Tokenizer, extra ...string) (*dictionary.Matcher, error) {
	return dictionary.New(tok, append(Entries(), extra...))
}
