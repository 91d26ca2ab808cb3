// Package item defines the product/query record compared by the matcher.
// Raw fields are fixed at construction. Derived fields are filled in by the
// preprocess package exactly once and are read-only afterwards.
package item

import (
	"sort"
)

// Item is a catalog product or an incoming query.
type Item struct {
	ID          string
	Title       *string
	Specs       map[string]string
	Description *string
	GalleryURL  string
	PictureURL  []string
	Source      string

	// Derived. nil means "not computed" or "source field absent".
	TitleTokens       []string
	DescriptionTokens []string
	SpecTokens        map[string][]string
	ColourSet         Set
	NumeralSet        Set
	TitleVector       []float64
	OOVTokens         []string
}

// New builds an item from already parsed specifics. A nil specs map is
// stored as empty.
func New(title *string, specs map[string]string, description *string) *Item {
	if specs == nil {
		specs = map[string]string{}
	}
	return &Item{
		Title:       title,
		Specs:       specs,
		Description: description,
	}
}

// Text returns a pointer to s, or nil when s is empty. It is a convenience for
// building items from optional string fields.
func Text(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// TitleString returns the title or "" when absent.
func (it *Item) TitleString() string {
	if it.Title == nil {
		return ""
	}
	return *it.Title
}

// DescriptionString returns the description or "" when absent.
func (it *Item) DescriptionString() string {
	if it.Description == nil {
		return ""
	}
	return *it.Description
}

// Set is an unordered token set.
type Set map[string]struct{}

// NewSet collects the given tokens.
func NewSet(tokens ...string) Set {
	s := make(Set, len(tokens))
	for _, t := range tokens {
		s[t] = struct{}{}
	}
	return s
}

func (s Set) Add(tok string) { s[tok] = struct{}{} }

func (s Set) Has(tok string) bool {
	_, ok := s[tok]
	return ok
}

func (s Set) Len() int { return len(s) }

// Equal reports whether both sets hold the same tokens.
func (s Set) Equal(o Set) bool {
	if len(s) != len(o) {
		return false
	}
	for t := range s {
		if _, ok := o[t]; !ok {
			return false
		}
	}
	return true
}

// IntersectLen counts tokens present in both sets.
func (s Set) IntersectLen(o Set) int {
	small, big := s, o
	if len(small) > len(big) {
		small, big = big, small
	}
	n := 0
	for t := range small {
		if _, ok := big[t]; ok {
			n++
		}
	}
	return n
}

// Sorted returns the tokens in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
