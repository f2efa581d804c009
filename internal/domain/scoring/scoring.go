// Package scoring computes pairwise similarity scores between names.
package scoring

import (
	"context"
	"fmt"

	"github.com/okian/starchart/internal/domain/strdist"
)

// Metric maps two strings to a similarity in [0, 1].
type Metric func(a, b string) float64

// Option applies a configuration option to the NameScorer.
type Option func(*NameScorer)

// WithMetric replaces the similarity function.
func WithMetric(m Metric) Option {
	return func(s *NameScorer) {
		if m != nil {
			s.metric = m
		}
	}
}

// Scorer computes similarity between names.
type Scorer interface {
	// Score returns the similarity of a and b.
	Score(a, b string) float64
	// Matrix returns the symmetric similarity matrix of names, honoring ctx
	// for cancellation.
	Matrix(ctx context.Context, names []string) ([][]float64, error)
}

// NameScorer implements Scorer with normalized Damerau–Levenshtein
// similarity by default.
type NameScorer struct {
	metric Metric
}

// NewNameScorer creates a scorer with configuration options.
func NewNameScorer(opts ...Option) *NameScorer {
	s := &NameScorer{metric: strdist.Similarity}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score returns the similarity of a and b.
func (s *NameScorer) Score(a, b string) float64 {
	return s.metric(a, b)
}

// Matrix fills S[i][j] = Score(names[i], names[j]) with S[i][i] = 1. Only the
// upper triangle is computed.
func (s *NameScorer) Matrix(ctx context.Context, names []string) ([][]float64, error) {
	n := len(names)
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
		m[i][i] = 1
	}
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled: %w", err)
		}
		for j := i + 1; j < n; j++ {
			v := s.Score(names[i], names[j])
			m[i][j] = v
			m[j][i] = v
		}
	}
	return m, nil
}

// Comparisons is the number of metric evaluations Matrix performs for n names.
func Comparisons(n int) int {
	return n * (n - 1) / 2
}
