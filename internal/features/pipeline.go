package features

import (
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/item"
)

// Pair is one comparison: a catalog item against a query item.
type Pair struct {
	Catalog *item.Item
	Query   *item.Item
}

// Pipeline runs an ordered set of extractors and concatenates their output.
// It is immutable and safe for concurrent use.
type Pipeline struct {
	extractors []Extractor
	width      int
}

func New(extractors ...Extractor) *Pipeline {
	p := &Pipeline{extractors: extractors}
	for _, e := range extractors {
		p.width += e.Width()
	}
	return p
}

// Default is the product matching layout. The first argument of every
// extractor is the catalog item.
func Default() *Pipeline {
	return New(
		NewSharedWordNum("title_shared_word_num", TitleTokens, TitleTokens),
		NewWordJaccard("title_word_jaccard", TitleTokens, TitleTokens),
		NewParsedSpec("parsed_spec", SpecTokens, SpecTokens),
		NewSpecValInText("item_spec_vals_in_product_title", TitleTokens, SpecTokens),
		NewSpecValInText("item_spec_vals_in_product_description", DescriptionTokens, SpecTokens),
		NewSpecValInText("prod_spec_vals_in_item_title", SpecTokens, TitleTokens),
		NewSetMismatch("title_colours_match", ColourSet, ColourSet),
		NewSetJaccard("numal_jaccard", NumeralSet, NumeralSet),
		NewAttributeComparison("attr_sim", SpecTokens, SpecTokens, DefaultAttributes()),
	)
}

// WithWordVectors returns a copy of p extended by the title embedding
// extractors for vectors of the given dimension.
func (p *Pipeline) WithWordVectors(dim int) *Pipeline {
	ext := make([]Extractor, 0, len(p.extractors)+3)
	ext = append(ext, p.extractors...)
	ext = append(ext,
		NewWVCosine("title_ft_cosine"),
		NewWVPerDimDiff("title_ft_diff", dim),
		NewOOVJaccard("title_ooft_jaccard"),
	)
	return New(ext...)
}

func (p *Pipeline) Width() int { return p.width }

func (p *Pipeline) Extractors() []Extractor { return p.extractors }

// Names lists one label per vector position.
func (p *Pipeline) Names() []string {
	names := make([]string, 0, p.width)
	for _, e := range p.extractors {
		if sn, ok := e.(subNamer); ok {
			for _, s := range sn.SubNames() {
				names = append(names, e.Name()+"."+s)
			}
			continue
		}
		if e.Width() == 1 {
			names = append(names, e.Name())
			continue
		}
		for i := 0; i < e.Width(); i++ {
			names = append(names, fmt.Sprintf("%s.%d", e.Name(), i))
		}
	}
	return names
}

// Vector computes the features of one pair.
func (p *Pipeline) Vector(catalogItem, query *item.Item) ([]float64, error) {
	out := make([]float64, 0, p.width)
	for _, e := range p.extractors {
		vals, err := e.Extract(catalogItem, query)
		if err != nil {
			return nil, fmt.Errorf("extractor %s: %w", e.Name(), err)
		}
		if len(vals) != e.Width() {
			return nil, fmt.Errorf("extractor %s returned %d values, want %d", e.Name(), len(vals), e.Width())
		}
		out = append(out, vals...)
	}
	return out, nil
}

// Transform computes one row per pair.
func (p *Pipeline) Transform(pairs []Pair) ([][]float64, error) {
	rows := make([][]float64, len(pairs))
	for i, pair := range pairs {
		row, err := p.Vector(pair.Catalog, pair.Query)
		if err != nil {
			return nil, fmt.Errorf("pair %d: %w", i, err)
		}
		rows[i] = row
	}
	return rows, nil
}
