package strdist_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/okian/starchart/internal/domain/strdist"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDamerauLevenshtein(t *testing.T) {
	Convey("Given reference vectors", t, func() {
		So(strdist.DamerauLevenshtein("a", ""), ShouldEqual, 1)
		So(strdist.DamerauLevenshtein("", "abc"), ShouldEqual, 3)
		So(strdist.DamerauLevenshtein("", ""), ShouldEqual, 0)
		So(strdist.DamerauLevenshtein("ca", "abc"), ShouldEqual, 2)
		So(strdist.DamerauLevenshtein("Connor McDavid", "Conor McDavid"), ShouldEqual, 1)
		So(strdist.DamerauLevenshtein("ab", "ba"), ShouldEqual, 1)
		So(strdist.DamerauLevenshtein("kitten", "sitting"), ShouldEqual, 3)
		So(strdist.DamerauLevenshtein("A. Smith", "A Smith"), ShouldEqual, 1)
		So(strdist.DamerauLevenshtein("Juuse Saros", "Juuse Saros"), ShouldEqual, 0)
	})

	Convey("Given multibyte names", t, func() {
		Convey("Then runes are counted, not bytes", func() {
			So(strdist.DamerauLevenshtein("Jiří", "Jiri"), ShouldEqual, 2)
			So(strdist.DamerauLevenshtein("Šimon", "Simon"), ShouldEqual, 1)
		})
	})

	Convey("Given random short strings", t, func() {
		rng := rand.New(rand.NewSource(7))
		word := func() string {
			n := rng.Intn(7)
			b := make([]byte, n)
			for i := range b {
				b[i] = "abcd"[rng.Intn(4)]
			}
			return string(b)
		}

		Convey("Then the metric properties hold", func() {
			for i := 0; i < 300; i++ {
				a, b, c := word(), word(), word()
				ab := strdist.DamerauLevenshtein(a, b)
				So(strdist.DamerauLevenshtein(a, a), ShouldEqual, 0)
				So(ab, ShouldEqual, strdist.DamerauLevenshtein(b, a))
				So(ab, ShouldBeGreaterThanOrEqualTo, 0)
				So(ab, ShouldBeLessThanOrEqualTo, int(math.Max(float64(len(a)), float64(len(b)))))
				So(strdist.DamerauLevenshtein(a, c), ShouldBeLessThanOrEqualTo, ab+strdist.DamerauLevenshtein(b, c))
			}
		})
	})
}

func TestSimilarity(t *testing.T) {
	Convey("Given near-identical names", t, func() {
		s := strdist.Similarity("Connor McDavid", "Conor McDavid")
		So(s, ShouldAlmostEqual, 1-1.0/14, 1e-9)
		So(s, ShouldBeGreaterThanOrEqualTo, 0.4)
	})

	Convey("Given identical and empty strings", t, func() {
		So(strdist.Similarity("Empty Net", "Empty Net"), ShouldEqual, 1)
		So(strdist.Similarity("", ""), ShouldEqual, 1)
		So(strdist.Similarity("abc", ""), ShouldEqual, 0)
	})

	Convey("Given unrelated names", t, func() {
		So(strdist.Similarity("A. Smith", "Z. Other"), ShouldBeLessThan, 0.4)
		So(strdist.Similarity("A Smith", "Z. Other"), ShouldBeLessThan, 0.4)
	})
}
