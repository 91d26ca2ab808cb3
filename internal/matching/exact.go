package matching

import (
	"strings"

	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/item"
)

// Verdict is the outcome of a rule-based comparison.
type Verdict int

const (
	Unknown Verdict = iota
	Yes
	No
)

func (v Verdict) String() string {
	switch v {
	case Yes:
		return "yes"
	case No:
		return "no"
	default:
		return "unknown"
	}
}

// ExactSpecMatcher is a rule baseline: two items match when every configured
// spec key has the same raw value on both sides.
type ExactSpecMatcher struct {
	keys []string
}

func NewExactSpecMatcher(keys ...string) *ExactSpecMatcher {
	norm := make([]string, len(keys))
	for i, k := range keys {
		norm[i] = strings.ToLower(strings.TrimSpace(k))
	}
	return &ExactSpecMatcher{keys: norm}
}

// Match returns Unknown as soon as a key is missing or empty on either side,
// No on the first differing value and Yes otherwise.
func (m *ExactSpecMatcher) Match(a, b *item.Item) Verdict {
	for _, k := range m.keys {
		av := a.Specs[k]
		if av == "" {
			return Unknown
		}
		bv := b.Specs[k]
		if bv == "" {
			return Unknown
		}
		if av != bv {
			return No
		}
	}
	return Yes
}
