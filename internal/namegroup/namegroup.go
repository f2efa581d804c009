// Package namegroup splits a cluster's rows into solar systems by greedy
// name similarity.
//
// Distinct names are scanned in first-appearance order. Each unassigned name
// anchors a group that absorbs every still-unassigned name whose similarity to
// the anchor reaches the threshold. Groups of two or more names are kept;
// lone names go to a single miscellaneous group emitted last.
package namegroup

import (
	"context"
	"fmt"

	"github.com/okian/starchart/internal/domain/dedupe"
	"github.com/okian/starchart/internal/domain/scoring"
	"github.com/okian/starchart/pkg/logger"
	"github.com/okian/starchart/pkg/metrics"
)

// DefaultThreshold is the minimum similarity for two names to share a group.
const DefaultThreshold = 0.4

// Group is one set of names that will become a solar system.
type Group struct {
	Names []string
	Misc  bool
}

// Result lists groups in creation order with the miscellaneous group, if
// any, last.
type Result struct {
	Groups []Group
	names  *dedupe.Ordered
	group  []int // by first-appearance position
}

func (r *Result) add(unique []string, members []int, misc bool) {
	names := make([]string, len(members))
	for k, pos := range members {
		names[k] = unique[pos]
		r.group[pos] = len(r.Groups)
	}
	r.Groups = append(r.Groups, Group{Names: names, Misc: misc})
}

// GroupOf returns the index in Groups holding name.
func (r *Result) GroupOf(name string) (int, bool) {
	if r.names == nil {
		return 0, false
	}
	pos, ok := r.names.Position(name)
	if !ok {
		return 0, false
	}
	return r.group[pos], true
}

// Option applies a configuration option to the Agglomerator.
type Option func(*Agglomerator)

// WithThreshold sets the similarity threshold.
func WithThreshold(t float64) Option {
	return func(a *Agglomerator) {
		if t >= 0 && t <= 1 {
			a.threshold = t
		}
	}
}

// WithScorer sets the name scorer.
func WithScorer(s scoring.Scorer) Option {
	return func(a *Agglomerator) {
		if s != nil {
			a.scorer = s
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(lg logger.Logger) Option {
	return func(a *Agglomerator) {
		if lg != nil {
			a.logger = lg
		}
	}
}

// Agglomerator groups names within one parent cluster.
type Agglomerator struct {
	threshold float64
	scorer    scoring.Scorer
	logger    logger.Logger
}

// NewAgglomerator creates an agglomerator with the default threshold and
// Damerau–Levenshtein similarity.
func NewAgglomerator(opts ...Option) *Agglomerator {
	a := &Agglomerator{threshold: DefaultThreshold}
	for _, opt := range opts {
		opt(a)
	}
	if a.scorer == nil {
		a.scorer = scoring.NewNameScorer()
	}
	if a.logger == nil {
		a.logger = logger.Get().Named("namegroup")
	}
	return a
}

// Group partitions the distinct values of names, given in row order.
func (a *Agglomerator) Group(ctx context.Context, names []string) (*Result, error) {
	seen := dedupe.FromSlice(ctx, names)
	unique := seen.Keys()
	sim, err := a.scorer.Matrix(ctx, unique)
	if err != nil {
		return nil, fmt.Errorf("name similarity: %w", err)
	}
	metrics.RecordNameComparisons(scoring.Comparisons(len(unique)))

	res := &Result{names: seen, group: make([]int, len(unique))}
	assigned := make([]bool, len(unique))
	var misc []int

	for i := range unique {
		if assigned[i] {
			continue
		}
		members := []int{i}
		assigned[i] = true
		for j := i + 1; j < len(unique); j++ {
			if !assigned[j] && sim[i][j] >= a.threshold {
				members = append(members, j)
				assigned[j] = true
			}
		}
		if len(members) == 1 {
			misc = append(misc, i)
			continue
		}
		res.add(unique, members, false)
	}

	if len(misc) > 0 {
		res.add(unique, misc, true)
	}

	a.logger.Debug(ctx, "names grouped",
		logger.Int("names", len(unique)),
		logger.Int("groups", len(res.Groups)),
		logger.Int("misc", len(misc)),
	)
	return res, nil
}
