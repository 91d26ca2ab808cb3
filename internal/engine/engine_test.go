package engine

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/internal/matching"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/pkg/metrics"
)

func writeWeights(t *testing.T, n int) string {
	t.Helper()
	w := make([]string, n)
	for i := range w {
		w[i] = "0"
	}
	path := filepath.Join(t.TempDir(), "model.yaml")
	body := "bias: 0\nweights: [" + strings.Join(w, ", ") + "]\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestNew(t *testing.T) {
	cfg := config.Default()
	e, err := New(cfg)
	require.NoError(t, err)
	assert.Nil(t, e.Classifier)
	assert.Equal(t, 31, e.Pipeline.Width())

	cfg.Model.WeightsPath = writeWeights(t, 31)
	e, err = New(cfg)
	require.NoError(t, err)
	assert.NotNil(t, e.Classifier)

	cfg.Model.WeightsPath = writeWeights(t, 5)
	_, err = New(cfg)
	assert.Error(t, err)
}

func TestNewExtraColours(t *testing.T) {
	dict := filepath.Join(t.TempDir(), "colours.txt")
	require.NoError(t, os.WriteFile(dict, []byte("# extra\nmidnight\n"), 0o644))
	cfg := config.Default()
	cfg.NLP.DictionaryPaths = []string{dict}
	_, err := New(cfg)
	require.NoError(t, err)

	cfg.NLP.DictionaryPaths = []string{filepath.Join(t.TempDir(), "missing.txt")}
	_, err = New(cfg)
	assert.Error(t, err)
}

func TestLoader(t *testing.T) {
	cfg := config.Default().Catalog
	_, err := Loader(cfg, nil)
	require.NoError(t, err)

	cfg.Source = config.SourcePostgres
	_, err = Loader(cfg, nil)
	assert.Error(t, err)

	cfg.Source = "ftp"
	_, err = Loader(cfg, nil)
	assert.Error(t, err)
}

func TestCategoriesPath(t *testing.T) {
	assert.Equal(t, filepath.Join("data", "product-db.json"), CategoriesPath(config.CatalogConfig{Dir: "data"}))
	assert.Equal(t, "/etc/pm/cats.json", CategoriesPath(config.CatalogConfig{Dir: "data", CategoriesFile: "/etc/pm/cats.json"}))
}

func TestRegistry(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "phones"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "phones", "item-1.json"),
		[]byte(`{"ItemID": "1", "Title": "Apple iPhone 6s"}`), 0o644))

	cfg := config.Default()
	cfg.Catalog.Dir = root
	cfg.Model.WeightsPath = writeWeights(t, 31)
	e, err := New(cfg)
	require.NoError(t, err)

	load, err := Loader(cfg.Catalog, nil)
	require.NoError(t, err)
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	reg, err := e.Registry(context.Background(), []catalog.Category{{ID: "phones", Label: "Cell Phones"}}, load, m)
	require.NoError(t, err)

	f, err := reg.Get("phones")
	require.NoError(t, err)
	got, err := f.TopMatches(context.Background(), matching.Query{Title: "iphone"}, 0.5, 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.InDelta(t, 0.5, got[0].MatchProbability, 1e-9)
}

func TestBundledModelFitsPipeline(t *testing.T) {
	cfg := config.Default()
	cfg.Model.WeightsPath = filepath.Join("..", "..", "models", "logistic.yaml")
	e, err := New(cfg)
	require.NoError(t, err)
	require.NotNil(t, e.Classifier)
}
