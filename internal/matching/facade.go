// Package matching ranks catalog products against a query item. A Facade
// owns one preprocessed catalog together with the feature pipeline and the
// classifier used to score pairs.
package matching

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/classifier"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/features"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/item"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/preprocess"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/specs"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/pkg/tracing"
)

const (
	DefaultMinProb = 0.7
	DefaultTopN    = 10
)

// Query is the caller-supplied description of the item to match.
type Query struct {
	Title       string            `json:"Title"`
	Specs       map[string]string `json:"ItemSpecifics,omitempty"`
	Description *string           `json:"Description,omitempty"`
}

// Match is one ranked catalog product.
type Match struct {
	ItemID           string            `json:"ItemID"`
	Title            *string           `json:"Title"`
	Specs            map[string]string `json:"Specs"`
	Description      *string           `json:"Description"`
	MatchProbability float64           `json:"MatchProbability"`
	GalleryURL       string            `json:"GalleryURL"`
	PictureURL       []string          `json:"PictureURL"`
}

type Option func(*Facade)

// WithWorkers sets the number of goroutines used for catalog preprocessing
// and per-request scoring. n < 1 means runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(f *Facade) {
		if n >= 1 {
			f.workers = n
		}
	}
}

type Facade struct {
	catalog *catalog.Catalog
	prep    *preprocess.Preprocessor
	pipe    *features.Pipeline
	clf     classifier.Classifier
	workers int
	logger  *slog.Logger
}

// New preprocesses every catalog item and returns a ready Facade.
func New(
	ctx context.Context,
	cat *catalog.Catalog,
	prep *preprocess.Preprocessor,
	pipe *features.Pipeline,
	clf classifier.Classifier,
	opts ...Option,
) (*Facade, error) {
	f := &Facade{
		catalog: cat,
		prep:    prep,
		pipe:    pipe,
		clf:     clf,
		workers: runtime.NumCPU(),
		logger:  slog.Default().With("component", "matching", "catalog", cat.Name()),
	}
	for _, opt := range opts {
		opt(f)
	}
	if err := prep.PreprocessAll(ctx, cat.Items(), f.workers); err != nil {
		return nil, fmt.Errorf("preprocessing catalog %s: %w", cat.Name(), err)
	}
	return f, nil
}

func (f *Facade) Catalog() *catalog.Catalog { return f.catalog }

// ClassifyPairs scores arbitrary pairs. Items are preprocessed first; items
// that already carry derived fields are left as they are.
func (f *Facade) ClassifyPairs(ctx context.Context, pairs []features.Pair) ([]float64, error) {
	if len(pairs) == 0 {
		return []float64{}, nil
	}
	for _, p := range pairs {
		f.prep.Preprocess(p.Catalog)
		f.prep.Preprocess(p.Query)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := f.pipe.Transform(pairs)
	if err != nil {
		return nil, fmt.Errorf("computing features: %w", err)
	}
	probs, err := f.clf.PredictProba(rows)
	if err != nil {
		return nil, fmt.Errorf("classifying pairs: %w", err)
	}
	if len(probs) != len(rows) {
		return nil, fmt.Errorf("classifier returned %d probabilities for %d pairs", len(probs), len(rows))
	}
	return probs, nil
}

// TopMatches returns at most topN catalog products whose match probability
// is at least minProb, best first. Equal scores keep catalog order.
func (f *Facade) TopMatches(ctx context.Context, q Query, minProb float64, topN int) ([]Match, error) {
	if topN < 1 || f.catalog.Len() == 0 {
		return []Match{}, nil
	}
	start := time.Now()

	querySpecs, err := specs.Parse(q.Specs)
	if err != nil {
		return nil, err
	}
	_, span := tracing.StartChildSpan(ctx, "preprocess-query")
	query := item.New(&q.Title, querySpecs, q.Description)
	f.prep.Preprocess(query)
	span.End()

	_, span = tracing.StartChildSpan(ctx, "score-catalog")
	scores, err := f.score(ctx, query)
	span.SetAttr("pairs", len(scores))
	span.End()
	if err != nil {
		return nil, err
	}

	_, span = tracing.StartChildSpan(ctx, "select-top")
	top := selectTop(scores, minProb, topN)
	span.SetAttr("selected", len(top))
	span.End()

	items := f.catalog.Items()
	out := make([]Match, len(top))
	for i, c := range top {
		out[i] = toMatch(items[c.index], c.score)
	}
	f.logger.Debug("top matches computed",
		"pairs", len(scores),
		"returned", len(out),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

// score computes the match probability of every catalog item against q.
// The catalog is split into one contiguous partition per worker and each
// partition writes to its own range of the result.
func (f *Facade) score(ctx context.Context, q *item.Item) ([]float64, error) {
	items := f.catalog.Items()
	scores := make([]float64, len(items))
	workers := min(f.workers, len(items))
	chunk := (len(items) + workers - 1) / workers

	var g errgroup.Group
	for lo := 0; lo < len(items); lo += chunk {
		hi := min(lo+chunk, len(items))
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rows := make([][]float64, hi-lo)
			for i, it := range items[lo:hi] {
				row, err := f.pipe.Vector(it, q)
				if err != nil {
					return fmt.Errorf("features for catalog item %d: %w", lo+i, err)
				}
				rows[i] = row
			}
			probs, err := f.clf.PredictProba(rows)
			if err != nil {
				return fmt.Errorf("classifying partition %d-%d: %w", lo, hi, err)
			}
			if len(probs) != len(rows) {
				return fmt.Errorf("classifier returned %d probabilities for %d pairs", len(probs), len(rows))
			}
			copy(scores[lo:hi], probs)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return scores, nil
}

func toMatch(it *item.Item, score float64) Match {
	return Match{
		ItemID:           it.ID,
		Title:            it.Title,
		Specs:            it.Specs,
		Description:      it.Description,
		MatchProbability: score,
		GalleryURL:       it.GalleryURL,
		PictureURL:       it.PictureURL,
	}
}
