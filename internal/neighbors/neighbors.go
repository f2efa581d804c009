// Package neighbors implements exact k-nearest-neighbor search over the rows
// of a dense matrix.
package neighbors

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const defaultChunkSize = 64

// Graph holds, for every row, its k nearest other rows in ascending distance.
// Equal distances are ordered by row index.
type Graph struct {
	K         int
	Indices   [][]int
	Distances [][]float64
}

// Len returns the number of rows in the graph.
func (g *Graph) Len() int { return len(g.Indices) }

// Searcher runs brute-force Euclidean kNN in parallel.
type Searcher struct {
	workers int
	chunk   int
}

// NewSearcher creates a Searcher with one worker per CPU by default.
func NewSearcher(opts ...Option) *Searcher {
	s := &Searcher{
		workers: runtime.NumCPU(),
		chunk:   defaultChunkSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search returns the k nearest neighbors of every row of data, excluding the
// row itself. When fewer than k other rows exist, every other row is returned.
func (s *Searcher) Search(ctx context.Context, data mat.Matrix, k int) (*Graph, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidK, k)
	}
	rows := denseRows(data)
	n := len(rows)
	if k > n-1 {
		k = max(n-1, 0)
	}

	g := &Graph{
		K:         k,
		Indices:   make([][]int, n),
		Distances: make([][]float64, n),
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(s.workers)
	for lo := 0; lo < n; lo += s.chunk {
		lo, hi := lo, min(lo+s.chunk, n)
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for i := lo; i < hi; i++ {
				g.Indices[i], g.Distances[i] = nearest(rows, i, k)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("neighbor search: %w", err)
	}
	return g, nil
}

// nearest keeps a sorted window of the k best candidates for row i.
func nearest(rows [][]float64, i, k int) ([]int, []float64) {
	idx := make([]int, 0, k)
	dist := make([]float64, 0, k)
	if k == 0 {
		return idx, dist
	}
	for j := range rows {
		if j == i {
			continue
		}
		d := floats.Distance(rows[i], rows[j], 2)
		if len(idx) == k && d >= dist[k-1] {
			// j arrives in ascending order, so an equal distance never displaces
			// a smaller index.
			continue
		}
		pos := len(idx)
		for pos > 0 && dist[pos-1] > d {
			pos--
		}
		if len(idx) < k {
			idx = append(idx, 0)
			dist = append(dist, 0)
		}
		copy(idx[pos+1:], idx[pos:len(idx)-1])
		copy(dist[pos+1:], dist[pos:len(dist)-1])
		idx[pos] = j
		dist[pos] = d
	}
	return idx, dist
}

// denseRows exposes each matrix row as a slice without copying when possible.
func denseRows(m mat.Matrix) [][]float64 {
	r, c := m.Dims()
	out := make([][]float64, r)
	if raw, ok := m.(mat.RawMatrixer); ok {
		b := raw.RawMatrix()
		for i := 0; i < r; i++ {
			out[i] = b.Data[i*b.Stride : i*b.Stride+c]
		}
		return out
	}
	for i := 0; i < r; i++ {
		out[i] = mat.Row(nil, i, m)
	}
	return out
}
