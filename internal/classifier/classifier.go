// Package classifier turns feature vectors into match probabilities.
package classifier

import (
	"fmt"
	"log/slog"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Classifier scores feature rows. The result has one probability per row.
type Classifier interface {
	PredictProba(rows [][]float64) ([]float64, error)
}

// Func adapts a plain function to Classifier.
type Func func(rows [][]float64) ([]float64, error)

func (f Func) PredictProba(rows [][]float64) ([]float64, error) { return f(rows) }

// Logistic is a fitted logistic regression: sigmoid(bias + w·x).
type Logistic struct {
	Bias     float64   `yaml:"bias"`
	Weights  []float64 `yaml:"weights"`
	Features []string  `yaml:"features"`
}

// LoadLogistic reads model weights from a YAML file.
func LoadLogistic(path string) (*Logistic, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading classifier %s: %w", path, err)
	}
	var m Logistic
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing classifier %s: %w", path, err)
	}
	if len(m.Weights) == 0 {
		return nil, fmt.Errorf("classifier %s has no weights", path)
	}
	if len(m.Features) > 0 && len(m.Features) != len(m.Weights) {
		return nil, fmt.Errorf("classifier %s: %d feature names for %d weights", path, len(m.Features), len(m.Weights))
	}
	slog.Info("classifier loaded", "path", path, "weights", len(m.Weights))
	return &m, nil
}

// CheckFeatures verifies the model was fitted on the given feature layout.
// Models saved without feature names are only checked for width.
func (m *Logistic) CheckFeatures(names []string) error {
	if len(names) != len(m.Weights) {
		return fmt.Errorf("classifier expects %d features, pipeline produces %d", len(m.Weights), len(names))
	}
	for i, n := range m.Features {
		if names[i] != n {
			return fmt.Errorf("feature %d is %q, classifier was fitted on %q", i, names[i], n)
		}
	}
	return nil
}

func (m *Logistic) PredictProba(rows [][]float64) ([]float64, error) {
	out := make([]float64, len(rows))
	for i, row := range rows {
		if len(row) != len(m.Weights) {
			return nil, fmt.Errorf("row %d has %d features, want %d", i, len(row), len(m.Weights))
		}
		z := m.Bias
		for j, x := range row {
			z += m.Weights[j] * x
		}
		out[i] = 1 / (1 + math.Exp(-z))
	}
	return out, nil
}
