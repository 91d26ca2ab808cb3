package features

import (
	"sort"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/item"
	apperrors "github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/pkg/errors"
)

func specOperands(where string, x, y any) (map[string][]string, map[string][]string, error) {
	xm, err := asSpec(where, x)
	if err != nil {
		return nil, nil, err
	}
	ym, err := asSpec(where, y)
	if err != nil {
		return nil, nil, err
	}
	return xm, ym, nil
}

// smallerFirst orders two spec maps so that the smaller one is iterated.
func smallerFirst(x, y map[string][]string) (map[string][]string, map[string][]string) {
	if len(x) <= len(y) {
		return x, y
	}
	return y, x
}

func maxKeys(x, y map[string][]string) float64 {
	return float64(max(len(x), len(y)))
}

func exactlyShared(x, y map[string][]string) int {
	small, big := smallerFirst(x, y)
	n := 0
	for k, sv := range small {
		if bv, ok := big[k]; ok && equalTokens(sv, bv) {
			n++
		}
	}
	return n
}

func jaccardShared(x, y map[string][]string) float64 {
	small, big := smallerFirst(x, y)
	sum := 0.0
	for k, sv := range small {
		bv := big[k]
		if len(bv) == 0 {
			continue
		}
		sum += Jaccard(item.NewSet(sv...), item.NewSet(bv...))
	}
	return sum
}

// SpecOverlap counts spec keys whose values agree. Exact compares token
// lists for equality, otherwise the Jaccard index of the values is summed.
// With Part set the result is divided by the larger key count.
type SpecOverlap struct {
	twoArg
	Exact bool
	Part  bool
}

func NewExactlySharedSpecNum(name string, left, right Field) *SpecOverlap {
	return &SpecOverlap{twoArg: twoArg{name: name, left: left, right: right}, Exact: true}
}

func NewExactlySharedSpecPart(name string, left, right Field) *SpecOverlap {
	return &SpecOverlap{twoArg: twoArg{name: name, left: left, right: right}, Exact: true, Part: true}
}

func NewJaccardSharedSpecNum(name string, left, right Field) *SpecOverlap {
	return &SpecOverlap{twoArg: twoArg{name: name, left: left, right: right}}
}

func NewJaccardSharedSpecPart(name string, left, right Field) *SpecOverlap {
	return &SpecOverlap{twoArg: twoArg{name: name, left: left, right: right}, Part: true}
}

func (e *SpecOverlap) Width() int { return 1 }

func (e *SpecOverlap) Extract(a, b *item.Item) ([]float64, error) {
	x, y, ok := e.operands(a, b)
	if !ok {
		return e.none(1), nil
	}
	xm, ym, err := specOperands(e.name, x, y)
	if err != nil {
		return nil, err
	}
	var v float64
	if e.Exact {
		v = float64(exactlyShared(xm, ym))
	} else {
		v = jaccardShared(xm, ym)
	}
	if e.Part {
		v = ratio(v, maxKeys(xm, ym))
	}
	return scalar(v), nil
}

var parsedSpecNames = []string{
	"shared_keys_num",
	"shared_keys_part",
	"unshared_keys_num",
	"unshared_keys_part",
	"shared_exactly_num",
	"shared_exactly_part",
	"conflicting_exactly_num",
	"conflicting_exactly_part",
	"shared_jaccard_sum",
	"shared_jaccard_part",
	"conflicting_jaccard_sum",
	"conflicting_jaccard_part",
	"shared_leven_sum",
	"shared_leven_part",
}

// ParsedSpec compares two spec maps in one pass and reports key overlap,
// exact and Jaccard value agreement, and the Levenshtein distance of the
// joined values of shared keys.
type ParsedSpec struct{ twoArg }

func NewParsedSpec(name string, left, right Field) *ParsedSpec {
	return &ParsedSpec{twoArg{name: name, left: left, right: right}}
}

func (e *ParsedSpec) Width() int { return len(parsedSpecNames) }

func (e *ParsedSpec) SubNames() []string { return parsedSpecNames }

func (e *ParsedSpec) Extract(a, b *item.Item) ([]float64, error) {
	x, y, ok := e.operands(a, b)
	if !ok {
		return e.none(e.Width()), nil
	}
	xm, ym, err := specOperands(e.name, x, y)
	if err != nil {
		return nil, err
	}
	return compareSpecs(xm, ym), nil
}

func compareSpecs(x, y map[string][]string) []float64 {
	out := make([]float64, len(parsedSpecNames))
	maxKeyNum := maxKeys(x, y)
	if maxKeyNum == 0 {
		return out
	}

	shared := 0
	for k := range x {
		if _, ok := y[k]; ok {
			shared++
		}
	}
	unshared := len(x) + len(y) - 2*shared
	out[0] = float64(shared)
	out[1] = float64(shared) / maxKeyNum
	out[2] = float64(unshared)
	out[3] = float64(unshared) / maxKeyNum
	if shared == 0 {
		return out
	}

	var exact, levSum, maxChars int
	jacSum := 0.0
	for k, xv := range x {
		yv, ok := y[k]
		if !ok || (len(xv) == 0 && len(yv) == 0) {
			continue
		}
		if equalTokens(xv, yv) {
			exact++
		}
		jacSum += Jaccard(item.NewSet(xv...), item.NewSet(yv...))
		xj, yj := strings.Join(xv, " "), strings.Join(yv, " ")
		levSum += Levenshtein(xj, yj)
		maxChars += max(runeLen(xj), runeLen(yj))
	}

	n := float64(shared)
	conflicting := shared - exact
	out[4] = float64(exact)
	out[5] = float64(exact) / n
	out[6] = float64(conflicting)
	out[7] = float64(conflicting) / n
	out[8] = jacSum
	out[9] = jacSum / n
	out[10] = n - jacSum
	out[11] = (n - jacSum) / n
	out[12] = float64(levSum)
	out[13] = ratio(float64(levSum), float64(maxChars))
	return out
}

// SpecValInText counts spec values that appear as a contiguous token run in
// the text on the other side. Exactly one of the two fields must be a spec
// map and the other a token list.
type SpecValInText struct{ twoArg }

func NewSpecValInText(name string, left, right Field) *SpecValInText {
	return &SpecValInText{twoArg{name: name, left: left, right: right}}
}

func (e *SpecValInText) Width() int { return 1 }

func (e *SpecValInText) Extract(a, b *item.Item) ([]float64, error) {
	x, y, ok := e.operands(a, b)
	if !ok {
		return e.none(1), nil
	}
	var (
		text []string
		spec map[string][]string
	)
	switch xv := x.(type) {
	case []string:
		m, isMap := y.(map[string][]string)
		if !isMap {
			return nil, apperrors.InvalidKind(e.name, y)
		}
		text, spec = xv, m
	case map[string][]string:
		t, isList := y.([]string)
		if !isList {
			return nil, apperrors.InvalidKind(e.name, y)
		}
		text, spec = t, xv
	default:
		return nil, apperrors.InvalidKind(e.name, x)
	}
	n := 0
	for _, val := range spec {
		if ContainsSubseq(text, val) {
			n++
		}
	}
	return scalar(float64(n)), nil
}

var naValues = map[string]struct{}{"na": {}, "apply": {}, "none": {}}

// IsNA reports whether a tokenized attribute value carries no information.
func IsNA(tokens []string) bool {
	if len(tokens) == 0 {
		return true
	}
	if len(tokens) != 1 {
		return false
	}
	_, ok := naValues[tokens[0]]
	return ok
}

// AttributeSimilarity compares one named attribute of two spec maps.
// Normalize may reject a value, in which case the attribute contributes 0.
type AttributeSimilarity interface {
	Normalize(tokens []string) (string, bool)
	Compare(a, b string) float64
}

// ExactString scores +1 for identical joined values and -1 otherwise.
type ExactString struct{}

func (ExactString) Normalize(tokens []string) (string, bool) {
	return strings.Join(tokens, " "), true
}

func (ExactString) Compare(a, b string) float64 {
	if a == b {
		return 1
	}
	return -1
}

// DefaultAttributes are the attributes compared by the default pipeline.
func DefaultAttributes() map[string]AttributeSimilarity {
	return map[string]AttributeSimilarity{
		"brand":             ExactString{},
		"model":             ExactString{},
		"mpn":               ExactString{},
		"upc":               ExactString{},
		"network":           ExactString{},
		"publisher":         ExactString{},
		"carrier":           ExactString{},
		"card manufacturer": ExactString{},
		"year":              ExactString{},
		"platform":          ExactString{},
	}
}

// AttributeComparison emits one value per attribute, in sorted name order.
type AttributeComparison struct {
	twoArg
	attrs map[string]AttributeSimilarity
	names []string
}

func NewAttributeComparison(name string, left, right Field, attrs map[string]AttributeSimilarity) *AttributeComparison {
	names := make([]string, 0, len(attrs))
	for k := range attrs {
		names = append(names, k)
	}
	sort.Strings(names)
	return &AttributeComparison{
		twoArg: twoArg{name: name, left: left, right: right},
		attrs:  attrs,
		names:  names,
	}
}

func (e *AttributeComparison) Width() int { return len(e.names) }

func (e *AttributeComparison) SubNames() []string { return e.names }

func (e *AttributeComparison) Extract(a, b *item.Item) ([]float64, error) {
	x, y, ok := e.operands(a, b)
	if !ok {
		return e.none(e.Width()), nil
	}
	xm, ym, err := specOperands(e.name, x, y)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(e.names))
	for i, attr := range e.names {
		xv, xok := xm[attr]
		yv, yok := ym[attr]
		if !xok || !yok || IsNA(xv) || IsNA(yv) {
			continue
		}
		sim := e.attrs[attr]
		xn, xok := sim.Normalize(xv)
		yn, yok := sim.Normalize(yv)
		if !xok || !yok {
			continue
		}
		out[i] = sim.Compare(xn, yn)
	}
	return out, nil
}
