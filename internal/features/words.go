package features

import (
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/item"
)

// SharedWordNum counts distinct tokens present on both sides.
type SharedWordNum struct{ twoArg }

func NewSharedWordNum(name string, left, right Field) *SharedWordNum {
	return &SharedWordNum{twoArg{name: name, left: left, right: right}}
}

func (e *SharedWordNum) Width() int { return 1 }

func (e *SharedWordNum) Extract(a, b *item.Item) ([]float64, error) {
	x, y, ok := e.operands(a, b)
	if !ok {
		return e.none(1), nil
	}
	xs, ys, err := tokenSets(e.name, x, y)
	if err != nil {
		return nil, err
	}
	return scalar(float64(xs.IntersectLen(ys))), nil
}

// WordJaccard is the Jaccard index of both sides' token sets.
type WordJaccard struct{ twoArg }

func NewWordJaccard(name string, left, right Field) *WordJaccard {
	return &WordJaccard{twoArg{name: name, left: left, right: right}}
}

func (e *WordJaccard) Width() int { return 1 }

func (e *WordJaccard) Extract(a, b *item.Item) ([]float64, error) {
	x, y, ok := e.operands(a, b)
	if !ok {
		return e.none(1), nil
	}
	xs, ys, err := tokenSets(e.name, x, y)
	if err != nil {
		return nil, err
	}
	return scalar(Jaccard(xs, ys)), nil
}

// tokenSets requires both operands to be token lists.
func tokenSets(where string, x, y any) (item.Set, item.Set, error) {
	xt, err := asTokens(where, x)
	if err != nil {
		return nil, nil, err
	}
	yt, err := asTokens(where, y)
	if err != nil {
		return nil, nil, err
	}
	return item.NewSet(xt...), item.NewSet(yt...), nil
}

// SetMismatch is 0 when either set is empty, 1 when the sets are equal and
// -1 otherwise.
type SetMismatch struct{ twoArg }

func NewSetMismatch(name string, left, right Field) *SetMismatch {
	return &SetMismatch{twoArg{name: name, left: left, right: right}}
}

func (e *SetMismatch) Width() int { return 1 }

func (e *SetMismatch) Extract(a, b *item.Item) ([]float64, error) {
	x, y, ok := e.operands(a, b)
	if !ok {
		return e.none(1), nil
	}
	xs, err := asSet(e.name, x)
	if err != nil {
		return nil, err
	}
	ys, err := asSet(e.name, y)
	if err != nil {
		return nil, err
	}
	switch {
	case xs.Len() == 0 || ys.Len() == 0:
		return scalar(0), nil
	case xs.Equal(ys):
		return scalar(1), nil
	default:
		return scalar(-1), nil
	}
}

// SetJaccard is the Jaccard index of two set fields.
type SetJaccard struct{ twoArg }

func NewSetJaccard(name string, left, right Field) *SetJaccard {
	return &SetJaccard{twoArg{name: name, left: left, right: right}}
}

func (e *SetJaccard) Width() int { return 1 }

func (e *SetJaccard) Extract(a, b *item.Item) ([]float64, error) {
	x, y, ok := e.operands(a, b)
	if !ok {
		return e.none(1), nil
	}
	xs, err := asSet(e.name, x)
	if err != nil {
		return nil, err
	}
	ys, err := asSet(e.name, y)
	if err != nil {
		return nil, err
	}
	return scalar(Jaccard(xs, ys)), nil
}
