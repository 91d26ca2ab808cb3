package tokenizer

import (
	"regexp"
	"strings"
)

type rewrite struct {
	re   *regexp.Regexp
	repl string
}

func rw(pattern, repl string) rewrite {
	return rewrite{re: regexp.MustCompile(pattern), repl: repl}
}

// Rules follow the Penn Treebank conventions: quotes become “ and ”,
// punctuation is split off, a sentence-final period is separated and clitics
// are split from their host word.
var (
	startingQuotes = []rewrite{
		rw(`^"`, "``"),
		rw("(``)", " $1 "),
		rw(`([ (\[{<])("|'')`, "$1 `` "),
	}
	punctuation = []rewrite{
		rw(`([:,])([^\d])`, " $1 $2"),
		rw(`([:,])$`, " $1 "),
		rw(`\.\.\.`, " ... "),
		rw(`[;@#$%&]`, " $0 "),
		rw(`([^.])(\.)([\])}>"']*)\s*$`, "$1 $2$3 "),
		rw(`[?!]`, " $0 "),
		rw(`([^'])' `, "$1 ' "),
	}
	parensBrackets = rw(`[\][(){}<>]`, " $0 ")
	doubleDashes   = rw(`--`, " -- ")
	endingQuotes   = []rewrite{
		rw(`"`, " '' "),
		rw(`(\S)('')`, "$1 $2 "),
		rw(`([^' ])('[sS]|'[mM]|'[dD]|') `, "$1 $2 "),
		rw(`([^' ])('ll|'LL|'re|'RE|'ve|'VE|n't|N'T) `, "$1 $2 "),
	}
	contractions = []rewrite{
		rw(`(?i)\b(can)(not)\b`, " $1 $2 "),
		rw(`(?i)\b(d)('ye)\b`, " $1 $2 "),
		rw(`(?i)\b(gim)(me)\b`, " $1 $2 "),
		rw(`(?i)\b(gon)(na)\b`, " $1 $2 "),
		rw(`(?i)\b(got)(ta)\b`, " $1 $2 "),
		rw(`(?i)\b(lem)(me)\b`, " $1 $2 "),
		rw(`(?i)\b(mor)('n)\b`, " $1 $2 "),
		rw(`(?i)\b(wan)(na)\s`, " $1 $2 "),
		rw(`(?i) ('t)(is)\b`, " $1 $2 "),
		rw(`(?i) ('t)(was)\b`, " $1 $2 "),
	}
)

// TreebankWords splits one sentence into raw word tokens.
func TreebankWords(sentence string) []string {
	text := sentence
	for _, r := range startingQuotes {
		text = r.re.ReplaceAllString(text, r.repl)
	}
	for _, r := range punctuation {
		text = r.re.ReplaceAllString(text, r.repl)
	}
	text = parensBrackets.re.ReplaceAllString(text, parensBrackets.repl)
	text = doubleDashes.re.ReplaceAllString(text, doubleDashes.repl)

	text = " " + text + " "
	for _, r := range endingQuotes {
		text = r.re.ReplaceAllString(text, r.repl)
	}
	for _, r := range contractions {
		text = r.re.ReplaceAllString(text, r.repl)
	}
	return strings.Fields(text)
}
