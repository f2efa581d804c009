// Package features turns goal attributes into numeric matrices for the
// embedding rounds.
package features

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/okian/starchart/internal/domain/model"
)

// Unknown is the category assigned to missing categorical values.
const Unknown = "unknown"

// ErrUnknownColumn is returned by Lookup for unsupported names.
var ErrUnknownColumn = errors.New("unknown feature column")

// Kind tells the encoder how to treat a column.
type Kind int

// Column kinds.
const (
	Categorical Kind = iota
	Numeric
)

// Column reads one feature from a goal. Categorical columns use Text; an
// empty string is missing. Numeric columns use Number; NaN is missing.
type Column struct {
	Name   string
	Kind   Kind
	Text   func(*model.Goal) string
	Number func(*model.Goal) float64
}

func categorical(name string, f func(*model.Goal) string) Column {
	return Column{Name: name, Kind: Categorical, Text: f}
}

func numeric(name string, f func(*model.Goal) float64) Column {
	return Column{Name: name, Kind: Numeric, Number: f}
}

// Known feature columns.
var (
	ShotZone      = categorical("shot_zone", func(g *model.Goal) string { return g.ShotZone })
	ShotType      = categorical("shot_type", func(g *model.Goal) string { return g.ShotType })
	Situation     = categorical("situation", func(g *model.Goal) string { return g.Situation })
	GameTime      = numeric("game_time", func(g *model.Goal) float64 { return float64(g.GameTime) })
	TeamScore     = numeric("team_score", func(g *model.Goal) float64 { return float64(g.TeamScore) })
	OpponentScore = numeric("opponent_score", func(g *model.Goal) float64 { return float64(g.OpponentScore) })
	ScoreDiff     = numeric("score_diff", func(g *model.Goal) float64 { return float64(g.ScoreDiff) })
	PeriodTime    = numeric("period_time", func(g *model.Goal) float64 { return g.PeriodTime })
	SeasonDay     = numeric("season_day", func(g *model.Goal) float64 { return float64(g.SeasonDay) })
	X             = numeric("x", func(g *model.Goal) float64 { return g.X })
	Y             = numeric("y", func(g *model.Goal) float64 { return g.Y })
)

var registry = map[string]Column{} //nolint:gochecknoglobals // static lookup

func init() {
	for _, c := range []Column{
		ShotZone, ShotType, Situation, GameTime, TeamScore, OpponentScore,
		ScoreDiff, PeriodTime, SeasonDay, X, Y,
	} {
		registry[c.Name] = c
	}
}

// Lookup returns the column registered under name.
func Lookup(name string) (Column, error) {
	c, ok := registry[name]
	if !ok {
		return Column{}, fmt.Errorf("%w: %s", ErrUnknownColumn, name)
	}
	return c, nil
}

// Encode builds a len(rows)×len(cols) matrix from goals[rows[i]]. Category
// codes and medians are learned from the selected rows only.
func Encode(goals []model.Goal, rows []int, cols []Column) *mat.Dense {
	if len(rows) == 0 || len(cols) == 0 {
		return &mat.Dense{}
	}
	m := mat.NewDense(len(rows), len(cols), nil)
	vals := make([]float64, len(rows))
	for j, c := range cols {
		switch c.Kind {
		case Categorical:
			labels := make([]string, len(rows))
			for i, r := range rows {
				labels[i] = c.Text(&goals[r])
			}
			LabelEncode(labels, vals)
		default:
			for i, r := range rows {
				vals[i] = c.Number(&goals[r])
			}
			ImputeMedian(vals)
		}
		m.SetCol(j, vals)
	}
	return m
}

// LabelEncode writes a dense integer code for each label into dst. Codes
// follow the sorted order of the distinct labels; missing labels become
// Unknown and receive a code like any other value.
func LabelEncode(labels []string, dst []float64) map[string]int {
	seen := map[string]struct{}{}
	for i, l := range labels {
		if l == "" {
			labels[i] = Unknown
		}
		seen[labels[i]] = struct{}{}
	}
	classes := make([]string, 0, len(seen))
	for l := range seen {
		classes = append(classes, l)
	}
	sort.Strings(classes)
	codes := make(map[string]int, len(classes))
	for i, l := range classes {
		codes[l] = i
	}
	for i, l := range labels {
		dst[i] = float64(codes[l])
	}
	return codes
}

// ImputeMedian replaces NaN entries with the median of the others. A column
// with no values at all becomes zeros.
func ImputeMedian(vals []float64) {
	present := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) {
			present = append(present, v)
		}
	}
	if len(present) == len(vals) {
		return
	}
	fill := Median(present)
	for i, v := range vals {
		if math.IsNaN(v) {
			vals[i] = fill
		}
	}
}

// Median of vals, averaging the middle pair for even lengths. Zero for an
// empty slice. vals is reordered.
func Median(vals []float64) float64 {
	n := len(vals)
	if n == 0 {
		return 0
	}
	sort.Float64s(vals)
	if n%2 == 1 {
		return vals[n/2]
	}
	return (vals[n/2-1] + vals[n/2]) / 2
}

// Standardize rescales every column in place to mean 0 and population
// standard deviation 1. Constant columns become 0.
func Standardize(m *mat.Dense) {
	if m.IsEmpty() {
		return
	}
	r, c := m.Dims()
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, m)
		mean, variance := stat.PopMeanVariance(col, nil)
		sd := math.Sqrt(variance)
		for i := range col {
			if sd == 0 {
				col[i] = 0
			} else {
				col[i] = (col[i] - mean) / sd
			}
		}
		m.SetCol(j, col)
	}
}
