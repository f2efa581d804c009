package embedding

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

const curveSamples = 300

// Curve parameters for min_dist 0.1 and spread 1, used when fitting fails.
const (
	fallbackA = 1.577
	fallbackB = 0.895
)

// FitCurve finds a, b such that 1/(1+a·x^(2b)) approximates the offset
// exponential that is 1 below minDist and decays with spread above it.
func FitCurve(spread, minDist float64) (a, b float64) {
	xs := make([]float64, curveSamples)
	floats.Span(xs, 0, spread*3)
	ys := make([]float64, curveSamples)
	for i, x := range xs {
		if x < minDist {
			ys[i] = 1
		} else {
			ys[i] = math.Exp(-(x - minDist) / spread)
		}
	}

	problem := optimize.Problem{
		Func: func(p []float64) float64 {
			var sum float64
			for i, x := range xs {
				r := 1/(1+p[0]*math.Pow(x, 2*p[1])) - ys[i]
				sum += r * r
			}
			return sum
		},
	}
	res, err := optimize.Minimize(problem, []float64{1, 1}, nil, &optimize.NelderMead{})
	if err != nil || res == nil {
		return fallbackA, fallbackB
	}
	a, b = res.X[0], res.X[1]
	if !(a > 0) || !(b > 0) || math.IsInf(a, 0) || math.IsInf(b, 0) {
		return fallbackA, fallbackB
	}
	return a, b
}
