// Package density groups embedded rows with hierarchical density-based
// clustering (HDBSCAN) and folds noise into a sink label.
package density

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/okian/starchart/internal/neighbors"
	"github.com/okian/starchart/pkg/logger"
)

// Noise marks rows that belong to no cluster.
const Noise = -1

// Sink is the label noise rows are folded into.
const Sink = 0

const (
	minimumClusterSize    = 2
	defaultMinClusterSize = 5
	condensedRootSentinel = -1
)

// Result is the outcome of one clustering pass. Labels are indexed by input
// row; clusters are numbered 0..Clusters-1 in condensed-tree order.
type Result struct {
	Labels   []int
	Clusters int
	Noise    int
}

// Folded returns a copy of the labels with every noise row moved to Sink.
func (r *Result) Folded() []int {
	out := make([]int, len(r.Labels))
	for i, l := range r.Labels {
		if l == Noise {
			l = Sink
		}
		out[i] = l
	}
	return out
}

// Clusterer runs HDBSCAN with excess-of-mass cluster selection.
type Clusterer struct {
	minClusterSize int
	minSamples     int
	searcher       *neighbors.Searcher
	logger         logger.Logger
}

// NewClusterer creates a clusterer.
func NewClusterer(opts ...Option) *Clusterer {
	c := &Clusterer{minClusterSize: defaultMinClusterSize}
	for _, opt := range opts {
		opt(c)
	}
	if c.minSamples == 0 {
		c.minSamples = c.minClusterSize
	}
	if c.searcher == nil {
		c.searcher = neighbors.NewSearcher()
	}
	if c.logger == nil {
		c.logger = logger.Get().Named("density")
	}
	return c
}

// Cluster labels every row of data.
func (c *Clusterer) Cluster(ctx context.Context, data mat.Matrix) (*Result, error) {
	n, _ := data.Dims()
	res := &Result{Labels: make([]int, n)}
	for i := range res.Labels {
		res.Labels[i] = Noise
	}
	res.Noise = n
	if n < c.minClusterSize || n < 2 {
		return res, nil
	}

	start := time.Now()
	core, err := c.coreDistances(ctx, data)
	if err != nil {
		return nil, err
	}
	rows := matrixRows(data)
	edges, err := mutualReachabilityMST(ctx, rows, core)
	if err != nil {
		return nil, fmt.Errorf("density: %w", err)
	}

	tree := condense(buildLinkage(n, edges), c.minClusterSize)
	selected := selectClusters(tree, n)
	res.Labels, res.Clusters = label(tree, n, selected)

	res.Noise = 0
	for _, l := range res.Labels {
		if l == Noise {
			res.Noise++
		}
	}

	c.logger.Debug(ctx, "density clustering finished",
		logger.Int("rows", n),
		logger.Int("clusters", res.Clusters),
		logger.Int("noise", res.Noise),
		logger.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}

// coreDistances is the distance to the minSamples-th nearest row, the row
// itself counting as the first.
func (c *Clusterer) coreDistances(ctx context.Context, data mat.Matrix) ([]float64, error) {
	n, _ := data.Dims()
	core := make([]float64, n)
	k := c.minSamples - 1
	if k == 0 {
		return core, nil
	}
	g, err := c.searcher.Search(ctx, data, k)
	if err != nil {
		return nil, fmt.Errorf("density: %w", err)
	}
	for i, ds := range g.Distances {
		if len(ds) > 0 {
			core[i] = ds[len(ds)-1]
		}
	}
	return core, nil
}

// selectClusters applies excess-of-mass selection. The root is never
// selected, so a single dominant blob yields no clusters.
func selectClusters(tree []condensedRow, root int) map[int]bool {
	stab := stability(tree, root)
	children := map[int][]int{}
	for _, r := range tree {
		if r.childSize > 1 {
			children[r.parent] = append(children[r.parent], r.child)
		}
	}

	nodes := make([]int, 0, len(stab))
	for c := range stab {
		if c != root {
			nodes = append(nodes, c)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(nodes)))

	selected := make(map[int]bool, len(nodes))
	for _, c := range nodes {
		selected[c] = true
	}
	for _, c := range nodes {
		var sub float64
		for _, child := range children[c] {
			sub += stab[child]
		}
		if sub > stab[c] {
			selected[c] = false
			stab[c] = sub
			continue
		}
		stack := append([]int(nil), children[c]...)
		for len(stack) > 0 {
			x := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			selected[x] = false
			stack = append(stack, children[x]...)
		}
	}
	return selected
}

// label assigns each point the dense id of its nearest selected ancestor.
// Points whose chain reaches the root are noise.
func label(tree []condensedRow, root int, selected map[int]bool) ([]int, int) {
	var chosen []int
	for c, ok := range selected {
		if ok {
			chosen = append(chosen, c)
		}
	}
	sort.Ints(chosen)
	dense := make(map[int]int, len(chosen))
	for i, c := range chosen {
		dense[c] = i
	}

	parentOf := map[int]int{root: condensedRootSentinel}
	for _, r := range tree {
		parentOf[r.child] = r.parent
	}

	labels := make([]int, root)
	for p := 0; p < root; p++ {
		labels[p] = Noise
		for c := parentOf[p]; c != condensedRootSentinel && c != root; c = parentOf[c] {
			if selected[c] {
				labels[p] = dense[c]
				break
			}
		}
	}
	return labels, len(chosen)
}

func matrixRows(m mat.Matrix) [][]float64 {
	r, _ := m.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = mat.Row(nil, i, m)
	}
	return out
}
