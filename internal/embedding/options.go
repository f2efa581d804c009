package embedding

import (
	"github.com/okian/starchart/internal/neighbors"
	"github.com/okian/starchart/pkg/logger"
)

// Option applies a configuration option to the Reducer.
type Option func(*Reducer)

// WithDim sets the output dimension.
func WithDim(dim int) Option {
	return func(r *Reducer) {
		if dim > 0 {
			r.dim = dim
		}
	}
}

// WithNeighbors sets the neighborhood size, counting the point itself.
func WithNeighbors(k int) Option {
	return func(r *Reducer) {
		if k > 1 {
			r.neighbors = k
		}
	}
}

// WithMinDist sets how tightly points may pack in the output.
func WithMinDist(d float64) Option {
	return func(r *Reducer) {
		if d >= 0 {
			r.minDist = d
		}
	}
}

// WithSeed fixes the random source used for initialization and sampling.
func WithSeed(seed int64) Option {
	return func(r *Reducer) {
		r.seed = seed
	}
}

// WithEpochs overrides the number of optimization epochs. Zero picks a
// default from the row count.
func WithEpochs(n int) Option {
	return func(r *Reducer) {
		if n >= 0 {
			r.epochs = n
		}
	}
}

// WithNegativeRate sets how many repulsive samples are drawn per attractive one.
func WithNegativeRate(n int) Option {
	return func(r *Reducer) {
		if n >= 0 {
			r.negativeRate = n
		}
	}
}

// WithSearcher sets the neighbor searcher.
func WithSearcher(s *neighbors.Searcher) Option {
	return func(r *Reducer) {
		if s != nil {
			r.searcher = s
		}
	}
}

// WithLogger sets a custom logger for the reducer.
func WithLogger(lg logger.Logger) Option {
	return func(r *Reducer) {
		if lg != nil {
			r.logger = lg
		}
	}
}
