// Package features turns a pair of preprocessed items into a fixed-length
// numeric vector. Extractors are registered in a Pipeline whose order defines
// the layout of every vector it produces.
package features

import (
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/item"
	apperrors "github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/pkg/errors"
)

// Extractor compares two items. Extract always returns exactly Width values.
type Extractor interface {
	Name() string
	Width() int
	Extract(a, b *item.Item) ([]float64, error)
}

// subNamer is implemented by extractors that label each of their values.
type subNamer interface {
	SubNames() []string
}

// Field selects a derived item field for a two-argument extractor.
type Field int

const (
	TitleTokens Field = iota
	DescriptionTokens
	SpecTokens
	ColourSet
	NumeralSet
)

func (f Field) String() string {
	switch f {
	case TitleTokens:
		return "title_tokens"
	case DescriptionTokens:
		return "description_tokens"
	case SpecTokens:
		return "spec_tokens"
	case ColourSet:
		return "colour_set"
	case NumeralSet:
		return "numeral_set"
	default:
		return fmt.Sprintf("field(%d)", int(f))
	}
}

// value returns the field of it, or false when the field was never derived.
func (f Field) value(it *item.Item) (any, bool) {
	switch f {
	case TitleTokens:
		return it.TitleTokens, it.TitleTokens != nil
	case DescriptionTokens:
		return it.DescriptionTokens, it.DescriptionTokens != nil
	case SpecTokens:
		return it.SpecTokens, it.SpecTokens != nil
	case ColourSet:
		return it.ColourSet, it.ColourSet != nil
	case NumeralSet:
		return it.NumeralSet, it.NumeralSet != nil
	default:
		return nil, false
	}
}

// twoArg holds what every field-comparing extractor shares: its name, the
// field read from each side and the value reported when a side is missing.
type twoArg struct {
	name        string
	left, right Field
	noneResult  float64
}

func (t *twoArg) Name() string { return t.name }

func (t *twoArg) String() string {
	return fmt.Sprintf("%s(%s, %s)", t.name, t.left, t.right)
}

// SetNoneResult changes the value reported when either field is missing.
func (t *twoArg) SetNoneResult(v float64) { t.noneResult = v }

func (t *twoArg) operands(a, b *item.Item) (any, any, bool) {
	x, ok := t.left.value(a)
	if !ok {
		return nil, nil, false
	}
	y, ok := t.right.value(b)
	if !ok {
		return nil, nil, false
	}
	return x, y, true
}

func (t *twoArg) none(width int) []float64 {
	out := make([]float64, width)
	if t.noneResult != 0 {
		for i := range out {
			out[i] = t.noneResult
		}
	}
	return out
}

func asTokens(where string, v any) ([]string, error) {
	if toks, ok := v.([]string); ok {
		return toks, nil
	}
	return nil, apperrors.InvalidKind(where, v)
}

func asSpec(where string, v any) (map[string][]string, error) {
	if m, ok := v.(map[string][]string); ok {
		return m, nil
	}
	return nil, apperrors.InvalidKind(where, v)
}

// asSet accepts a set or a token list.
func asSet(where string, v any) (item.Set, error) {
	switch s := v.(type) {
	case item.Set:
		return s, nil
	case []string:
		return item.NewSet(s...), nil
	default:
		return nil, apperrors.InvalidKind(where, v)
	}
}

func scalar(v float64) []float64 { return []float64{v} }
