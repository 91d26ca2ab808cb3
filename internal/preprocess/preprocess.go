// Package preprocess fills the derived fields of items: tokens, spec tokens,
// colour and numeral sets and, when a word-vector model is configured, the
// title embedding.
package preprocess

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"
	"unicode"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/embedding"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/item"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/nlp/colours"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/nlp/dictionary"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/nlp/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/specs"
)

const progressEvery = 1000

// Preprocessor is immutable and safe for concurrent use, as long as no two
// goroutines preprocess the same item.
type Preprocessor struct {
	tok     *tokenizer.Tokenizer
	colours *dictionary.Matcher
	vectors embedding.Model
	logger  *slog.Logger

	extraColours []string
}

type Option func(*Preprocessor)

// WithExtraColours adds dictionary entries to the built-in colour names.
// Multi-word entries are matched as whole phrases.
func WithExtraColours(entries []string) Option {
	return func(p *Preprocessor) { p.extraColours = entries }
}

// WithWordVectors enables the title embedding step.
func WithWordVectors(m embedding.Model) Option {
	return func(p *Preprocessor) { p.vectors = m }
}

func New(tok *tokenizer.Tokenizer, opts ...Option) *Preprocessor {
	if tok == nil {
		tok = tokenizer.Default
	}
	p := &Preprocessor{
		tok:    tok,
		logger: slog.Default().With("component", "preprocess"),
	}
	for _, opt := range opts {
		opt(p)
	}
	m, err := colours.Matcher(tok, p.extraColours...)
	if err != nil {
		// Only reachable when no entry survives tokenisation, which the
		// built-in list rules out for any tokenizer that keeps plain words.
		panic(fmt.Sprintf("preprocess: building colour matcher: %v", err))
	}
	p.colours = m
	return p
}

func (p *Preprocessor) Tokenizer() *tokenizer.Tokenizer { return p.tok }

// WordVectors returns the configured model, or nil.
func (p *Preprocessor) WordVectors() embedding.Model { return p.vectors }

// Preprocess computes every missing derived field of it. Fields already set
// are left untouched, so calling it twice is a no-op.
func (p *Preprocessor) Preprocess(it *item.Item) {
	if it.TitleTokens == nil && it.Title != nil {
		it.TitleTokens = p.tok.Text(*it.Title)
	}
	if it.DescriptionTokens == nil && it.Description != nil {
		it.DescriptionTokens = p.tok.Text(*it.Description)
	}
	if it.SpecTokens == nil && it.Specs != nil {
		it.SpecTokens = specs.TokenizeValues(p.tok, it.Specs)
	}
	if it.ColourSet == nil && it.TitleTokens != nil {
		it.ColourSet = item.NewSet(p.colours.MatchTokens(it.TitleTokens)...)
	}
	if it.NumeralSet == nil {
		it.NumeralSet = numerals(it)
	}
	if p.vectors != nil && it.TitleVector == nil && it.TitleTokens != nil {
		it.TitleVector, it.OOVTokens = embedding.Mean(p.vectors, it.TitleTokens)
	}
}

func numerals(it *item.Item) item.Set {
	set := make(item.Set)
	add := func(tokens []string) {
		for _, t := range tokens {
			if hasDigit(t) {
				set.Add(t)
			}
		}
	}
	add(it.TitleTokens)
	add(it.DescriptionTokens)
	for _, v := range it.SpecTokens {
		add(v)
	}
	return set
}

func hasDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// PreprocessAll runs Preprocess over items with a fixed pool of workers, each
// owning one contiguous chunk. workers < 1 means runtime.NumCPU().
func (p *Preprocessor) PreprocessAll(ctx context.Context, items []*item.Item, workers int) error {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	if workers > len(items) {
		workers = len(items)
	}
	if workers == 0 {
		return nil
	}
	start := time.Now()
	var done atomic.Int64
	total := len(items)
	chunk := (total + workers - 1) / workers

	g, ctx := errgroup.WithContext(ctx)
	for lo := 0; lo < total; lo += chunk {
		hi := min(lo+chunk, total)
		part := items[lo:hi]
		g.Go(func() error {
			for i, it := range part {
				if i%256 == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				p.Preprocess(it)
				if n := done.Add(1); n%progressEvery == 0 {
					p.logger.Info("preprocessing progress", "done", n, "total", total)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	p.logger.Info("preprocessing complete",
		"items", total,
		"workers", workers,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
