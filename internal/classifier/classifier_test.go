package classifier

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeModel(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLogistic(t *testing.T) {
	m := &Logistic{Bias: 0, Weights: []float64{1, -1}}
	got, err := m.PredictProba([][]float64{{0, 0}, {2, 2}, {10, 0}})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, got[0], 1e-9)
	assert.InDelta(t, 0.5, got[1], 1e-9)
	assert.Greater(t, got[2], 0.99)

	_, err = m.PredictProba([][]float64{{1}})
	assert.Error(t, err)
}

func TestLoadLogistic(t *testing.T) {
	path := writeModel(t, "bias: -1.5\nweights: [0.5, 2]\nfeatures: [a, b]\n")
	m, err := LoadLogistic(path)
	require.NoError(t, err)
	assert.Equal(t, -1.5, m.Bias)
	assert.Equal(t, []float64{0.5, 2}, m.Weights)

	assert.NoError(t, m.CheckFeatures([]string{"a", "b"}))
	assert.Error(t, m.CheckFeatures([]string{"a", "c"}))
	assert.Error(t, m.CheckFeatures([]string{"a"}))
}

func TestLoadLogisticErrors(t *testing.T) {
	tests := map[string]string{
		"no weights":     "bias: 1\n",
		"names mismatch": "weights: [1, 2]\nfeatures: [a]\n",
		"bad yaml":       "weights: [1, \n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadLogistic(writeModel(t, body))
			assert.Error(t, err)
		})
	}
	_, err := LoadLogistic(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestFunc(t *testing.T) {
	var c Classifier = Func(func(rows [][]float64) ([]float64, error) {
		out := make([]float64, len(rows))
		for i := range rows {
			out[i] = rows[i][0]
		}
		return out, nil
	})
	got, err := c.PredictProba([][]float64{{0.3}, {0.8}})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.3, 0.8}, got)
}
