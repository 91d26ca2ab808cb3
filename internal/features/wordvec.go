package features

import (
	"fmt"
	"strconv"

	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/item"
)

// WVCosine is the cosine similarity of the two title vectors. Items without
// a title vector score 0.
type WVCosine struct{ name string }

func NewWVCosine(name string) *WVCosine { return &WVCosine{name: name} }

func (e *WVCosine) Name() string { return e.name }
func (e *WVCosine) Width() int   { return 1 }

func (e *WVCosine) Extract(a, b *item.Item) ([]float64, error) {
	if a.TitleVector == nil || b.TitleVector == nil {
		return scalar(0), nil
	}
	return scalar(Cosine(a.TitleVector, b.TitleVector)), nil
}

// WVPerDimDiff emits a-b for every dimension of the title vectors.
type WVPerDimDiff struct {
	name string
	dim  int
}

func NewWVPerDimDiff(name string, dim int) *WVPerDimDiff {
	return &WVPerDimDiff{name: name, dim: dim}
}

func (e *WVPerDimDiff) Name() string { return e.name }
func (e *WVPerDimDiff) Width() int   { return e.dim }

func (e *WVPerDimDiff) SubNames() []string {
	names := make([]string, e.dim)
	for i := range names {
		names[i] = strconv.Itoa(i)
	}
	return names
}

func (e *WVPerDimDiff) Extract(a, b *item.Item) ([]float64, error) {
	out := make([]float64, e.dim)
	if a.TitleVector == nil || b.TitleVector == nil {
		return out, nil
	}
	if len(a.TitleVector) != e.dim || len(b.TitleVector) != e.dim {
		return nil, fmt.Errorf("%s: title vectors have %d and %d dimensions, want %d",
			e.name, len(a.TitleVector), len(b.TitleVector), e.dim)
	}
	for i := range out {
		out[i] = a.TitleVector[i] - b.TitleVector[i]
	}
	return out, nil
}

// OOVJaccard is the Jaccard index of the out-of-vocabulary title tokens, 0
// when either side has none.
type OOVJaccard struct{ name string }

func NewOOVJaccard(name string) *OOVJaccard { return &OOVJaccard{name: name} }

func (e *OOVJaccard) Name() string { return e.name }
func (e *OOVJaccard) Width() int   { return 1 }

func (e *OOVJaccard) Extract(a, b *item.Item) ([]float64, error) {
	if len(a.OOVTokens) == 0 || len(b.OOVTokens) == 0 {
		return scalar(0), nil
	}
	return scalar(Jaccard(item.NewSet(a.OOVTokens...), item.NewSet(b.OOVTokens...))), nil
}
