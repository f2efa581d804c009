package rounds

import (
	"github.com/okian/starchart/internal/features"
	"github.com/okian/starchart/pkg/logger"
)

// Option applies a configuration option to the Orchestrator.
type Option func(*Orchestrator)

// WithReducer sets the embedding used by the density rounds.
func WithReducer(r Reducer) Option {
	return func(o *Orchestrator) {
		if r != nil {
			o.reducer = r
		}
	}
}

// WithClustererFactory sets how a density clusterer is built for a given
// minimum cluster size.
func WithClustererFactory(f ClustererFactory) Option {
	return func(o *Orchestrator) {
		if f != nil {
			o.newClusterer = f
		}
	}
}

// WithNameGrouper sets the engine of the name round.
func WithNameGrouper(g NameGrouper) Option {
	return func(o *Orchestrator) {
		if g != nil {
			o.names = g
		}
	}
}

// WithNameWorkers sets how many clusters are name-grouped concurrently.
// Values below 1 use one worker per CPU.
func WithNameWorkers(n int) Option {
	return func(o *Orchestrator) {
		o.nameWorkers = n
	}
}

// WithGalaxyMinClusterSize sets the minimum galaxy size.
func WithGalaxyMinClusterSize(n int) Option {
	return func(o *Orchestrator) {
		if n > 1 {
			o.galaxies.MinClusterSize = n
		}
	}
}

// WithClusterMinClusterSize sets the minimum cluster size inside a galaxy.
func WithClusterMinClusterSize(n int) Option {
	return func(o *Orchestrator) {
		if n > 1 {
			o.clusters.MinClusterSize = n
		}
	}
}

// WithGalaxyColumns replaces the features embedded by the galaxy round.
func WithGalaxyColumns(cols []features.Column) Option {
	return func(o *Orchestrator) {
		if len(cols) > 0 {
			o.galaxies.Columns = cols
		}
	}
}

// WithClusterColumns replaces the features embedded by the cluster round.
func WithClusterColumns(cols []features.Column) Option {
	return func(o *Orchestrator) {
		if len(cols) > 0 {
			o.clusters.Columns = cols
		}
	}
}

// WithSmallGalaxyThreshold sets the row count below which a galaxy becomes
// a single cluster without re-clustering.
func WithSmallGalaxyThreshold(n int) Option {
	return func(o *Orchestrator) {
		if n >= 0 {
			o.smallGalaxy = n
		}
	}
}

// WithNameField selects the goal name the name round compares.
func WithNameField(field string) Option {
	return func(o *Orchestrator) {
		if field != "" {
			o.nameField = field
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(lg logger.Logger) Option {
	return func(o *Orchestrator) {
		if lg != nil {
			o.logger = lg
		}
	}
}
