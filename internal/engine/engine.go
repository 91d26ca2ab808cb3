// Package engine assembles the matching stack from configuration: tokenizer,
// preprocessor, feature pipeline, classifier and the per-category registry.
// The matcher service and pmctl share it.
package engine

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/classifier"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/embedding"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/features"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/matching"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/nlp/dictionary"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/nlp/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/preprocess"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/pkg/metrics"
)

type Engine struct {
	Tokenizer  *tokenizer.Tokenizer
	Prep       *preprocess.Preprocessor
	Pipeline   *features.Pipeline
	Classifier classifier.Classifier
	Workers    int
}

// New builds the text stack from cfg. The classifier is loaded only when
// cfg.Model.WeightsPath is set; callers that score pairs must check.
func New(cfg *config.Config) (*Engine, error) {
	var tokOpts []tokenizer.Option
	if cfg.NLP.Stemming {
		tokOpts = append(tokOpts, tokenizer.WithStemming())
	}
	tok := tokenizer.New(tokOpts...)

	var prepOpts []preprocess.Option
	if len(cfg.NLP.DictionaryPaths) > 0 {
		entries, err := dictionary.ReadEntries(cfg.NLP.DictionaryPaths...)
		if err != nil {
			return nil, err
		}
		prepOpts = append(prepOpts, preprocess.WithExtraColours(entries))
	}

	pipe := features.Default()
	if cfg.Model.WordVectorsPath != "" {
		vectors, err := embedding.LoadText(cfg.Model.WordVectorsPath)
		if err != nil {
			return nil, fmt.Errorf("loading word vectors: %w", err)
		}
		prepOpts = append(prepOpts, preprocess.WithWordVectors(vectors))
		pipe = pipe.WithWordVectors(vectors.Dim())
	}

	e := &Engine{
		Tokenizer: tok,
		Prep:      preprocess.New(tok, prepOpts...),
		Pipeline:  pipe,
		Workers:   cfg.Matching.Workers,
	}
	if cfg.Model.WeightsPath != "" {
		clf, err := classifier.LoadLogistic(cfg.Model.WeightsPath)
		if err != nil {
			return nil, err
		}
		if err := clf.CheckFeatures(pipe.Names()); err != nil {
			return nil, fmt.Errorf("classifier %s does not fit the feature pipeline: %w", cfg.Model.WeightsPath, err)
		}
		e.Classifier = clf
	}
	return e, nil
}

// Loader picks the catalog loader for cfg.Catalog.Source. db is only used
// by the postgres source.
func Loader(cfg config.CatalogConfig, db *sql.DB) (matching.Loader, error) {
	switch cfg.Source {
	case config.SourceJSON:
		return matching.JSONDirLoader(cfg.Dir), nil
	case config.SourceTabular:
		dir := cfg.TabularDir
		if dir == "" {
			dir = cfg.Dir
		}
		return matching.TabularLoader(dir), nil
	case config.SourcePostgres:
		if db == nil {
			return nil, fmt.Errorf("catalog source postgres needs a database connection")
		}
		return matching.PostgresLoader(db), nil
	default:
		return nil, fmt.Errorf("unknown catalog source %q", cfg.Source)
	}
}

// CategoriesPath is where the category list lives for cfg.
func CategoriesPath(cfg config.CatalogConfig) string {
	name := cfg.CategoriesFile
	if name == "" {
		name = catalog.CategoriesFile
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(cfg.Dir, name)
}

// Registry loads every category with load and prepares a facade for each.
// m may be nil.
func (e *Engine) Registry(ctx context.Context, cats []catalog.Category, load matching.Loader, m *metrics.Metrics) (*matching.Registry, error) {
	if e.Classifier == nil {
		return nil, fmt.Errorf("no classifier configured: set model.weightsPath")
	}
	build := func(ctx context.Context, cat *catalog.Catalog) (*matching.Facade, error) {
		start := time.Now()
		f, err := matching.New(ctx, cat, e.Prep, e.Pipeline, e.Classifier, matching.WithWorkers(e.Workers))
		if err != nil {
			return nil, err
		}
		if m != nil {
			m.PreprocessDuration.WithLabelValues(cat.Name()).Observe(time.Since(start).Seconds())
			m.CatalogItems.WithLabelValues(cat.Name()).Set(float64(cat.Len()))
		}
		slog.Info("category ready", "category", cat.Name(), "items", cat.Len(), "duration_ms", time.Since(start).Milliseconds())
		return f, nil
	}
	return matching.BuildRegistry(ctx, cats, load, build)
}
