// Package embedding reduces standardized feature rows to a low-dimensional
// space that keeps each row's nearest neighbors close.
//
// The reducer follows the uniform manifold approximation approach: a fuzzy
// kNN graph is built in the input space and a layout is optimized so that a
// smooth low-dimensional kernel reproduces its memberships.
package embedding

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/okian/starchart/internal/neighbors"
	"github.com/okian/starchart/pkg/logger"
	"github.com/okian/starchart/pkg/metrics"
)

// Defaults for the reducer.
const (
	DefaultDim          = 15
	DefaultNeighbors    = 15
	DefaultMinDist      = 0.1
	DefaultSeed         = 42
	DefaultNegativeRate = 5

	spread          = 1.0
	largeInputRows  = 10000
	smallInputEpoch = 500
	largeInputEpoch = 200
)

// Reducer embeds rows of a matrix. It is safe to reuse; every call starts
// from the configured seed.
type Reducer struct {
	dim          int
	neighbors    int
	minDist      float64
	seed         int64
	epochs       int
	negativeRate int
	a, b         float64 // kernel curve for minDist
	searcher     *neighbors.Searcher
	logger       logger.Logger
}

// NewReducer creates a reducer with the default configuration.
func NewReducer(opts ...Option) *Reducer {
	r := &Reducer{
		dim:          DefaultDim,
		neighbors:    DefaultNeighbors,
		minDist:      DefaultMinDist,
		seed:         DefaultSeed,
		negativeRate: DefaultNegativeRate,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.a, r.b = FitCurve(spread, r.minDist)
	if r.searcher == nil {
		r.searcher = neighbors.NewSearcher()
	}
	if r.logger == nil {
		r.logger = logger.Get().Named("embedding")
	}
	return r
}

// FitTransform embeds every row of data. Row i of the result corresponds to
// row i of data. data should already be standardized.
func (r *Reducer) FitTransform(ctx context.Context, data mat.Matrix) (*mat.Dense, error) {
	n, _ := data.Dims()
	if n == 0 {
		return &mat.Dense{}, nil
	}
	out := mat.NewDense(n, r.dim, nil)
	if n == 1 {
		return out, nil
	}

	start := time.Now()
	knn, err := r.searcher.Search(ctx, data, r.neighbors-1)
	if err != nil {
		return nil, fmt.Errorf("embedding: %w", err)
	}

	epochs := r.epochs
	if epochs == 0 {
		epochs = smallInputEpoch
		if n > largeInputRows {
			epochs = largeInputEpoch
		}
	}

	rho, sigma := smoothDistances(knn, r.neighbors)
	edges := prune(fuzzyGraph(knn, rho, sigma), epochs)
	a, b := r.a, r.b

	rng := rand.New(rand.NewSource(r.seed)) //nolint:gosec // reproducible layout, not security
	l := newLayout(n, r.dim, edges, a, b, r.negativeRate, rng)
	if err := l.optimize(ctx, epochs); err != nil {
		return nil, fmt.Errorf("embedding: %w", err)
	}
	metrics.RecordEmbeddingEpochs(epochs)

	for i, row := range l.emb {
		out.SetRow(i, row)
	}

	r.logger.Debug(ctx, "embedding finished",
		logger.Int("rows", n),
		logger.Int("edges", len(edges)),
		logger.Int("epochs", epochs),
		logger.Float64("a", a),
		logger.Float64("b", b),
		logger.Duration("elapsed", time.Since(start)),
	)
	return out, nil
}
