package embedding

import (
	"context"
	"math"
	"math/rand"
)

const (
	gradientClip     = 4.0
	repulsion        = 1.0
	initialAlpha     = 1.0
	repulsionEpsilon = 0.001
	initRange        = 10.0
)

// layout holds the optimization state for one run of stochastic gradient
// descent over the fuzzy graph.
type layout struct {
	emb  [][]float64
	a, b float64
	rng  *rand.Rand

	edges           []edge
	epochsPerSample []float64
	nextSample      []float64
	epochsPerNeg    []float64
	nextNeg         []float64
}

func newLayout(n, dim int, edges []edge, a, b float64, negativeRate int, rng *rand.Rand) *layout {
	l := &layout{
		emb:             make([][]float64, n),
		a:               a,
		b:               b,
		rng:             rng,
		edges:           edges,
		epochsPerSample: make([]float64, len(edges)),
		nextSample:      make([]float64, len(edges)),
		epochsPerNeg:    make([]float64, len(edges)),
		nextNeg:         make([]float64, len(edges)),
	}
	for i := range l.emb {
		l.emb[i] = make([]float64, dim)
		for d := range l.emb[i] {
			l.emb[i][d] = rng.Float64()*2*initRange - initRange
		}
	}

	var maxW float64
	for _, e := range edges {
		maxW = math.Max(maxW, e.weight)
	}
	for i, e := range edges {
		l.epochsPerSample[i] = maxW / e.weight
		l.nextSample[i] = l.epochsPerSample[i]
		if negativeRate > 0 {
			l.epochsPerNeg[i] = l.epochsPerSample[i] / float64(negativeRate)
		} else {
			l.epochsPerNeg[i] = math.Inf(1)
		}
		l.nextNeg[i] = l.epochsPerNeg[i]
	}
	return l
}

// optimize runs epochs of SGD with a linearly decaying learning rate.
// The context is checked between epochs.
func (l *layout) optimize(ctx context.Context, epochs int) error {
	alpha := initialAlpha
	for epoch := 0; epoch < epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		l.epoch(float64(epoch), alpha)
		alpha = initialAlpha * (1 - float64(epoch)/float64(epochs))
	}
	return nil
}

func (l *layout) epoch(n, alpha float64) {
	nRows := len(l.emb)
	for i, e := range l.edges {
		if l.nextSample[i] > n {
			continue
		}
		cur, other := l.emb[e.head], l.emb[e.tail]

		coeff := l.attractCoeff(sqDist(cur, other))
		for d := range cur {
			g := coeff * (cur[d] - other[d])
			if g > gradientClip {
				g = gradientClip
			} else if g < -gradientClip {
				g = -gradientClip
			}
			cur[d] += g * alpha
			other[d] -= g * alpha
		}
		l.nextSample[i] += l.epochsPerSample[i]

		negs := int((n - l.nextNeg[i]) / l.epochsPerNeg[i])
		for p := 0; p < negs; p++ {
			k := l.rng.Intn(nRows)
			if k == e.head {
				continue
			}
			neg := l.emb[k]
			coeff := l.repelCoeff(sqDist(cur, neg))
			for d := range cur {
				g := gradientClip
				if coeff > 0 {
					g = coeff * (cur[d] - neg[d])
					if g > gradientClip {
						g = gradientClip
					} else if g < -gradientClip {
						g = -gradientClip
					}
				}
				cur[d] += g * alpha
			}
		}
		if negs > 0 {
			l.nextNeg[i] += float64(negs) * l.epochsPerNeg[i]
		}
	}
}

// attractCoeff is the gradient coefficient pulling an edge's endpoints
// together. dist2^b is computed once; dist2^(b-1) is derived from it.
func (l *layout) attractCoeff(dist2 float64) float64 {
	if dist2 <= 0 {
		return 0
	}
	p := math.Pow(dist2, l.b)
	return -2 * l.a * l.b * (p / dist2) / (l.a*p + 1)
}

// repelCoeff is the gradient coefficient pushing a negative sample away.
func (l *layout) repelCoeff(dist2 float64) float64 {
	if dist2 <= 0 {
		return 0
	}
	return 2 * repulsion * l.b / ((repulsionEpsilon + dist2) * (l.a*math.Pow(dist2, l.b) + 1))
}

func sqDist(a, b []float64) float64 {
	var s float64
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return s
}
