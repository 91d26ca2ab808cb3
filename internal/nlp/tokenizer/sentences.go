package tokenizer

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// abbreviations never end a sentence even when followed by a capitalised
// word. Matching is case-insensitive on the text before the period.
var abbreviations = map[string]struct{}{
	"mr": {}, "mrs": {}, "ms": {}, "dr": {}, "prof": {}, "sr": {}, "jr": {},
	"st": {}, "mt": {}, "co": {}, "corp": {}, "inc": {}, "ltd": {}, "llc": {},
	"vs": {}, "etc": {}, "approx": {}, "no": {}, "nos": {}, "vol": {},
	"fig": {}, "ft": {}, "in": {}, "oz": {}, "lb": {}, "lbs": {}, "qty": {},
	"jan": {}, "feb": {}, "mar": {}, "apr": {}, "jun": {}, "jul": {},
	"aug": {}, "sep": {}, "sept": {}, "oct": {}, "nov": {}, "dec": {},
	"e.g": {}, "i.e": {}, "u.s": {}, "u.k": {},
}

// SplitSentences segments text on ., ! and ? boundaries. A terminator ends a
// sentence only when it is followed by whitespace and the next word does not
// start in lower case. Periods after known abbreviations, single-letter
// initials and ellipses followed by lower case do not split.
func SplitSentences(text string) []string {
	var sentences []string
	start := 0
	n := len(text)
	i := 0
	for i < n {
		c := text[i]
		if c != '.' && c != '!' && c != '?' {
			i++
			continue
		}
		end := i + 1
		for end < n && (text[end] == '.' || text[end] == '!' || text[end] == '?') {
			end++
		}
		for end < n && strings.IndexByte(`"')]}`, text[end]) >= 0 {
			end++
		}
		if end >= n {
			break
		}
		next, _ := utf8.DecodeRuneInString(text[end:])
		if !unicode.IsSpace(next) {
			i = end
			continue
		}
		j := end
		for j < n {
			r, size := utf8.DecodeRuneInString(text[j:])
			if !unicode.IsSpace(r) {
				break
			}
			j += size
		}
		if j >= n {
			break
		}
		following, _ := utf8.DecodeRuneInString(text[j:])
		if unicode.IsLower(following) || (c == '.' && endsWithAbbreviation(text[start:i])) {
			i = end
			continue
		}
		if s := strings.TrimSpace(text[start:end]); s != "" {
			sentences = append(sentences, s)
		}
		start = j
		i = j
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func endsWithAbbreviation(prefix string) bool {
	k := len(prefix)
	for k > 0 {
		r, size := utf8.DecodeLastRuneInString(prefix[:k])
		if unicode.IsSpace(r) || strings.ContainsRune(`"'([{`, r) {
			break
		}
		k -= size
	}
	word := strings.ToLower(prefix[k:])
	if word == "" {
		return false
	}
	if utf8.RuneCountInString(word) == 1 {
		r, _ := utf8.DecodeRuneInString(word)
		return unicode.IsLetter(r)
	}
	_, ok := abbreviations[word]
	return ok
}
