package features

import (
	"math"
	"unicode/utf8"

	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/item"
)

// Jaccard returns |a ∩ b| / |a ∪ b|, or 0 when both sets are empty.
func Jaccard(a, b item.Set) float64 {
	inter := a.IntersectLen(b)
	union := a.Len() + b.Len() - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// Levenshtein is the edit distance between a and b counted in runes.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) < len(rb) {
		ra, rb = rb, ra
	}
	if len(rb) == 0 {
		return len(ra)
	}
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i, ca := range ra {
		curr[0] = i + 1
		for j, cb := range rb {
			cost := 1
			if ca == cb {
				cost = 0
			}
			curr[j+1] = min(prev[j+1]+1, curr[j]+1, prev[j]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// ContainsSubseq reports whether sub occurs as a contiguous run inside seq.
// An empty sub is always contained.
func ContainsSubseq(seq, sub []string) bool {
	if len(sub) > len(seq) {
		return false
	}
outer:
	for i := 0; i+len(sub) <= len(seq); i++ {
		for j, tok := range sub {
			if seq[i+j] != tok {
				continue outer
			}
		}
		return true
	}
	return false
}

// Cosine returns the cosine similarity of a and b, or 0 when either norm is 0.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func ratio(num, denom float64) float64 {
	if denom == 0 {
		return 0
	}
	return num / denom
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }

func equalTokens(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
