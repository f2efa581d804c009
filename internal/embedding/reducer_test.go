package embedding

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"gonum.org/v1/gonum/mat"

	"github.com/okian/starchart/internal/neighbors"
	"github.com/okian/starchart/pkg/logger"
)

func init() {
	_ = logger.Init()
}

// blobs returns n rows per center, jittered around each center.
func blobs(seed int64, n int, centers ...[]float64) *mat.Dense {
	rng := rand.New(rand.NewSource(seed))
	dim := len(centers[0])
	m := mat.NewDense(n*len(centers), dim, nil)
	for c, center := range centers {
		for i := 0; i < n; i++ {
			for d := 0; d < dim; d++ {
				m.Set(c*n+i, d, center[d]+rng.NormFloat64()*0.5)
			}
		}
	}
	return m
}

func TestFitCurve(t *testing.T) {
	Convey("Given the default min distance", t, func() {
		a, b := FitCurve(1, 0.1)

		Convey("Then the fitted kernel matches the reference parameters", func() {
			So(a, ShouldAlmostEqual, 1.577, 0.05)
			So(b, ShouldAlmostEqual, 0.895, 0.05)
		})

		Convey("Then a reducer fits its curve once at construction", func() {
			r := NewReducer()
			So(r.a, ShouldEqual, a)
			So(r.b, ShouldEqual, b)
		})
	})

	Convey("Given a larger min distance", t, func() {
		a, b := FitCurve(1, 0.5)
		So(a, ShouldBeGreaterThan, 0)
		So(b, ShouldBeGreaterThan, 0)
		So(a, ShouldBeLessThan, 1.577)
	})
}

func TestSmoothDistances(t *testing.T) {
	Convey("Given a neighbor graph", t, func() {
		data := mat.NewDense(6, 1, []float64{0, 0, 1, 2.5, 4, 8})
		g, err := neighbors.NewSearcher().Search(context.Background(), data, 3)
		So(err, ShouldBeNil)
		rho, sigma := smoothDistances(g, 4)

		Convey("Then rho is the nearest non-zero distance", func() {
			So(rho[0], ShouldEqual, 1)
			So(rho[2], ShouldEqual, 1)
			So(rho[5], ShouldEqual, 4)
		})

		Convey("Then memberships sum to log2(k)", func() {
			for i := range sigma {
				So(sigma[i], ShouldBeGreaterThan, 0)
				var sum float64
				for _, d := range g.Distances[i] {
					sum += membership(d, rho[i], sigma[i])
				}
				So(sum, ShouldAlmostEqual, 2, 1e-3)
			}
		})

		Convey("Then the fuzzy graph is symmetric with weights in (0, 1]", func() {
			edges := fuzzyGraph(g, rho, sigma)
			w := map[[2]int]float64{}
			for _, e := range edges {
				So(e.weight, ShouldBeGreaterThan, 0)
				So(e.weight, ShouldBeLessThanOrEqualTo, 1)
				w[[2]int{e.head, e.tail}] = e.weight
			}
			for k, v := range w {
				So(w[[2]int{k[1], k[0]}], ShouldEqual, v)
			}
		})
	})
}

func TestFitTransform(t *testing.T) {
	ctx := context.Background()

	Convey("Given degenerate inputs", t, func() {
		r := NewReducer(WithDim(3))

		Convey("Then no rows yields an empty matrix", func() {
			out, err := r.FitTransform(ctx, &mat.Dense{})
			So(err, ShouldBeNil)
			So(out.IsEmpty(), ShouldBeTrue)
		})

		Convey("Then a single row sits at the origin", func() {
			out, err := r.FitTransform(ctx, mat.NewDense(1, 2, []float64{5, 5}))
			So(err, ShouldBeNil)
			So(mat.Row(nil, 0, out), ShouldResemble, []float64{0, 0, 0})
		})

		Convey("Then identical rows still embed", func() {
			out, err := r.FitTransform(ctx, mat.NewDense(4, 2, nil))
			So(err, ShouldBeNil)
			rows, cols := out.Dims()
			So(rows, ShouldEqual, 4)
			So(cols, ShouldEqual, 3)
			for _, v := range out.RawMatrix().Data {
				So(math.IsNaN(v), ShouldBeFalse)
			}
		})
	})

	Convey("Given two well separated blobs", t, func() {
		data := blobs(1, 40, []float64{0, 0, 0}, []float64{30, 30, 30})
		r := NewReducer(WithDim(2), WithEpochs(200))
		out, err := r.FitTransform(ctx, data)
		So(err, ShouldBeNil)

		Convey("Then every row keeps a nearest neighbor from its own blob", func() {
			g, err := neighbors.NewSearcher().Search(ctx, out, 1)
			So(err, ShouldBeNil)
			same := 0
			for i := 0; i < 80; i++ {
				if (i < 40) == (g.Indices[i][0] < 40) {
					same++
				}
			}
			So(same, ShouldBeGreaterThanOrEqualTo, 76)
		})

		Convey("Then a second run with the same seed is identical", func() {
			again, err := r.FitTransform(ctx, data)
			So(err, ShouldBeNil)
			So(mat.Equal(out, again), ShouldBeTrue)
		})

		Convey("Then a different seed moves the layout", func() {
			other, err := NewReducer(WithDim(2), WithEpochs(200), WithSeed(7)).FitTransform(ctx, data)
			So(err, ShouldBeNil)
			So(mat.Equal(out, other), ShouldBeFalse)
		})
	})

	Convey("Given a canceled context", t, func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := NewReducer().FitTransform(cctx, blobs(2, 10, []float64{0, 0}))
		So(errors.Is(err, context.Canceled), ShouldBeTrue)
	})
}

func TestLayoutCoefficients(t *testing.T) {
	Convey("Given the fitted curve for min_dist 0.1", t, func() {
		a, b := FitCurve(1, DefaultMinDist)
		l := &layout{a: a, b: b}

		Convey("Then the gradient coefficients match the closed forms", func() {
			for _, d2 := range []float64{1e-6, 0.01, 0.5, 1, 3, 42, 1e4} {
				attract := -2 * a * b * math.Pow(d2, b-1) / (a*math.Pow(d2, b) + 1)
				repel := 2 * repulsion * b / ((repulsionEpsilon + d2) * (a*math.Pow(d2, b) + 1))
				So(l.attractCoeff(d2), ShouldAlmostEqual, attract, 1e-9*math.Max(1, math.Abs(attract)))
				So(l.repelCoeff(d2), ShouldAlmostEqual, repel, 1e-9*math.Max(1, math.Abs(repel)))
			}
		})

		Convey("Then coincident points exert no force", func() {
			So(l.attractCoeff(0), ShouldEqual, 0)
			So(l.repelCoeff(0), ShouldEqual, 0)
		})
	})
}

func BenchmarkFitTransform(b *testing.B) {
	ctx := context.Background()
	data := blobs(3, 100, []float64{0, 0, 0}, []float64{10, 10, 10}, []float64{-10, 5, 0})
	r := NewReducer(WithDim(2))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := r.FitTransform(ctx, data); err != nil {
			b.Fatal(err)
		}
	}
}
