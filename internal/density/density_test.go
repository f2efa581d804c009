package density

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"gonum.org/v1/gonum/mat"

	"github.com/okian/starchart/pkg/logger"
)

func init() {
	_ = logger.Init()
}

// lattice places side×side points at unit spacing around each origin.
func lattice(side int, origins ...[2]float64) *mat.Dense {
	m := mat.NewDense(side*side*len(origins), 2, nil)
	r := 0
	for _, o := range origins {
		for i := 0; i < side; i++ {
			for j := 0; j < side; j++ {
				m.Set(r, 0, o[0]+float64(i))
				m.Set(r, 1, o[1]+float64(j))
				r++
			}
		}
	}
	return m
}

func TestCluster(t *testing.T) {
	ctx := context.Background()

	Convey("Given three separated groups", t, func() {
		data := lattice(6, [2]float64{0, 0}, [2]float64{40, 0}, [2]float64{0, 40})
		res, err := NewClusterer(WithMinClusterSize(8)).Cluster(ctx, data)
		So(err, ShouldBeNil)

		Convey("Then three clusters are found", func() {
			So(res.Clusters, ShouldEqual, 3)
			So(res.Labels, ShouldHaveLength, 108)
		})

		Convey("Then each group maps to a single label", func() {
			seen := map[int]bool{}
			for g := 0; g < 3; g++ {
				counts := map[int]int{}
				for i := g * 36; i < (g+1)*36; i++ {
					counts[res.Labels[i]]++
				}
				best, bestN := Noise, 0
				for l, c := range counts {
					if l != Noise && c > bestN {
						best, bestN = l, c
					}
				}
				So(best, ShouldNotEqual, Noise)
				So(bestN, ShouldBeGreaterThanOrEqualTo, 30)
				So(seen[best], ShouldBeFalse)
				seen[best] = true
			}
		})

		Convey("Then labels are dense", func() {
			for _, l := range res.Labels {
				So(l, ShouldBeBetweenOrEqual, Noise, res.Clusters-1)
			}
		})

		Convey("Then a second run is identical", func() {
			again, err := NewClusterer(WithMinClusterSize(8)).Cluster(ctx, data)
			So(err, ShouldBeNil)
			So(again.Labels, ShouldResemble, res.Labels)
		})
	})

	Convey("Given a group and a distant outlier", t, func() {
		base := lattice(5, [2]float64{0, 0}, [2]float64{30, 30})
		data := mat.NewDense(51, 2, nil)
		data.Slice(0, 50, 0, 2).(*mat.Dense).Copy(base)
		data.Set(50, 0, 500)
		data.Set(50, 1, 500)
		res, err := NewClusterer(WithMinClusterSize(6)).Cluster(ctx, data)
		So(err, ShouldBeNil)

		Convey("Then the outlier is noise", func() {
			So(res.Labels[50], ShouldEqual, Noise)
			So(res.Noise, ShouldBeGreaterThanOrEqualTo, 1)
		})

		Convey("Then folding moves noise to the sink", func() {
			folded := res.Folded()
			So(folded[50], ShouldEqual, Sink)
			for _, l := range folded {
				So(l, ShouldBeGreaterThanOrEqualTo, 0)
			}
			So(res.Labels[50], ShouldEqual, Noise)
		})
	})

	Convey("Given identical rows", t, func() {
		res, err := NewClusterer(WithMinClusterSize(5)).Cluster(ctx, mat.NewDense(20, 3, nil))
		So(err, ShouldBeNil)

		Convey("Then no cluster forms and every row is noise", func() {
			So(res.Clusters, ShouldEqual, 0)
			So(res.Noise, ShouldEqual, 20)
		})
	})

	Convey("Given fewer rows than the minimum cluster size", t, func() {
		res, err := NewClusterer(WithMinClusterSize(10)).Cluster(ctx, lattice(2, [2]float64{0, 0}))
		So(err, ShouldBeNil)
		So(res.Clusters, ShouldEqual, 0)
		So(res.Folded(), ShouldResemble, []int{0, 0, 0, 0})
	})

	Convey("Given no rows", t, func() {
		res, err := NewClusterer().Cluster(ctx, &mat.Dense{})
		So(err, ShouldBeNil)
		So(res.Labels, ShouldBeEmpty)
	})

	Convey("Given a canceled context", t, func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := NewClusterer(WithMinClusterSize(4)).Cluster(cctx, lattice(4, [2]float64{0, 0}))
		So(errors.Is(err, context.Canceled), ShouldBeTrue)
	})
}

func TestSelectClusters(t *testing.T) {
	Convey("Given a condensed tree whose children outlive the parent", t, func() {
		// root 4 splits into clusters 5 and 6 at lambda 1; points leave late.
		tree := []condensedRow{
			{parent: 4, child: 5, lambda: 1, childSize: 2},
			{parent: 4, child: 6, lambda: 1, childSize: 2},
			{parent: 5, child: 0, lambda: 10, childSize: 1},
			{parent: 5, child: 1, lambda: 10, childSize: 1},
			{parent: 6, child: 2, lambda: 10, childSize: 1},
			{parent: 6, child: 3, lambda: 10, childSize: 1},
		}
		selected := selectClusters(tree, 4)
		So(selected[5], ShouldBeTrue)
		So(selected[6], ShouldBeTrue)
		So(selected[4], ShouldBeFalse)

		labels, k := label(tree, 4, selected)
		So(k, ShouldEqual, 2)
		So(labels, ShouldResemble, []int{0, 0, 1, 1})
	})
}
