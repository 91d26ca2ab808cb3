// Package embedding provides word-vector lookups for the optional title
// embedding features.
package embedding

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Model maps tokens to fixed-dimension vectors.
type Model interface {
	Dim() int
	Vector(token string) ([]float64, bool)
}

// Table is an in-memory Model.
type Table struct {
	dim     int
	vectors map[string][]float64
}

// NewTable builds a Table. Every vector must have length dim.
func NewTable(dim int, vectors map[string][]float64) (*Table, error) {
	for tok, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("vector for %q has %d dimensions, want %d", tok, len(v), dim)
		}
	}
	return &Table{dim: dim, vectors: vectors}, nil
}

func (t *Table) Dim() int { return t.dim }

func (t *Table) Vector(token string) ([]float64, bool) {
	v, ok := t.vectors[token]
	return v, ok
}

func (t *Table) Len() int { return len(t.vectors) }

// LoadText reads the fastText/word2vec text format: a "count dim" header
// followed by one "token v1 v2 ..." line per word.
func LoadText(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening word vectors %s: %w", path, err)
	}
	defer f.Close()
	t, err := ReadText(f)
	if err != nil {
		return nil, fmt.Errorf("reading word vectors %s: %w", path, err)
	}
	slog.Info("word vectors loaded", "path", path, "words", t.Len(), "dim", t.Dim())
	return t, nil
}

// ReadText parses the text format from r.
func ReadText(r io.Reader) (*Table, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("missing header")
	}
	header := strings.Fields(sc.Text())
	if len(header) != 2 {
		return nil, fmt.Errorf("malformed header %q", sc.Text())
	}
	count, err := strconv.Atoi(header[0])
	if err != nil {
		return nil, fmt.Errorf("malformed word count: %w", err)
	}
	dim, err := strconv.Atoi(header[1])
	if err != nil || dim <= 0 {
		return nil, fmt.Errorf("malformed dimension %q", header[1])
	}
	vectors := make(map[string][]float64, count)
	line := 1
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != dim+1 {
			return nil, fmt.Errorf("line %d: got %d values, want %d", line, len(fields)-1, dim)
		}
		vec := make([]float64, dim)
		for i, s := range fields[1:] {
			if vec[i], err = strconv.ParseFloat(s, 64); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
		}
		vectors[fields[0]] = vec
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return &Table{dim: dim, vectors: vectors}, nil
}

// Mean averages the vectors of in-vocabulary tokens and returns the tokens
// that were not found. With no known token the result is the zero vector.
func Mean(m Model, tokens []string) ([]float64, []string) {
	sum := make([]float64, m.Dim())
	oov := make([]string, 0)
	known := 0
	for _, tok := range tokens {
		v, ok := m.Vector(tok)
		if !ok {
			oov = append(oov, tok)
			continue
		}
		for i := range sum {
			sum[i] += v[i]
		}
		known++
	}
	if known > 0 {
		for i := range sum {
			sum[i] /= float64(known)
		}
	}
	return sum, oov
}
