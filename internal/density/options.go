package density

import (
	"github.com/okian/starchart/internal/neighbors"
	"github.com/okian/starchart/pkg/logger"
)

// Option applies a configuration option to the Clusterer.
type Option func(*Clusterer)

// WithMinClusterSize sets the smallest group reported as a cluster.
func WithMinClusterSize(n int) Option {
	return func(c *Clusterer) {
		if n >= minimumClusterSize {
			c.minClusterSize = n
		}
	}
}

// WithMinSamples sets the neighborhood, counting the point itself, used for
// core distances. Defaults to the minimum cluster size.
func WithMinSamples(n int) Option {
	return func(c *Clusterer) {
		if n > 0 {
			c.minSamples = n
		}
	}
}

// WithSearcher sets the neighbor searcher used for core distances.
func WithSearcher(s *neighbors.Searcher) Option {
	return func(c *Clusterer) {
		if s != nil {
			c.searcher = s
		}
	}
}

// WithLogger sets a custom logger for the clusterer.
func WithLogger(lg logger.Logger) Option {
	return func(c *Clusterer) {
		if lg != nil {
			c.logger = lg
		}
	}
}
