package hierarchy

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/starchart/internal/domain/fault"
	"github.com/okian/starchart/internal/domain/model"
	"github.com/okian/starchart/internal/table"
)

func TestAssemble(t *testing.T) {
	Convey("Given a solar system holding rows 17, 42 and 100", t, func() {
		const n = 120
		l := Labels{
			Galaxy:      make([]int, n),
			Cluster:     make([]int, n),
			SolarSystem: make([]int, n),
		}
		for i := 0; i < n; i++ {
			l.SolarSystem[i] = 1
		}
		for _, i := range []int{17, 42, 100} {
			l.SolarSystem[i] = 7
		}
		out, err := Assemble(l)
		So(err, ShouldBeNil)
		So(out, ShouldHaveLength, n)

		Convey("Then they are star_0, star_1 and star_2 in input order", func() {
			So(out[17].Level3, ShouldEqual, "star_0")
			So(out[42].Level3, ShouldEqual, "star_1")
			So(out[100].Level3, ShouldEqual, "star_2")
			for _, i := range []int{17, 42, 100} {
				So(out[i].ClusterSize, ShouldEqual, 3)
			}
		})

		Convey("Then the other solar system is numbered without gaps", func() {
			seen := map[int]bool{}
			for i, a := range out {
				if a.SolarSystem == 1 {
					So(a.ClusterSize, ShouldEqual, n-3)
					So(seen[a.Star], ShouldBeFalse)
					seen[a.Star] = true
				}
				So(a.GoalIndex, ShouldEqual, i)
			}
			for s := 0; s < n-3; s++ {
				So(seen[s], ShouldBeTrue)
			}
		})
	})

	Convey("Given three levels of labels", t, func() {
		out, err := Assemble(Labels{
			Galaxy:      []int{0, 0, 1},
			Cluster:     []int{3, 3, 4},
			SolarSystem: []int{10, 10, 11},
		})
		So(err, ShouldBeNil)

		Convey("Then names and paths are composed exactly", func() {
			So(out[1], ShouldResemble, model.Assignment{
				GoalIndex:     1,
				Galaxy:        0,
				Cluster:       3,
				SolarSystem:   10,
				Star:          1,
				ClusterSize:   2,
				Level0:        "galaxy_0",
				Level1:        "cluster_3",
				Level2:        "solar system_10",
				Level3:        "star_1",
				HierarchyPath: "root.galaxy_0.cluster_3.solar system_10.star_1",
			})
			So(out[2].HierarchyPath, ShouldEqual, "root.galaxy_1.cluster_4.solar system_11.star_0")
		})
	})

	Convey("Given inconsistent labels", t, func() {
		Convey("When lengths differ", func() {
			_, err := Assemble(Labels{Galaxy: []int{0}, Cluster: []int{0, 1}, SolarSystem: []int{0}})
			So(errors.Is(err, ErrLengthMismatch), ShouldBeTrue)
		})

		Convey("When a cluster spans two galaxies", func() {
			_, err := Assemble(Labels{Galaxy: []int{0, 1}, Cluster: []int{5, 5}, SolarSystem: []int{0, 1}})
			So(errors.Is(err, ErrNotATree), ShouldBeTrue)
		})

		Convey("When a solar system spans two clusters", func() {
			_, err := Assemble(Labels{Galaxy: []int{0, 0}, Cluster: []int{5, 6}, SolarSystem: []int{2, 2}})
			So(errors.Is(err, ErrNotATree), ShouldBeTrue)
		})
	})

	Convey("Given no rows", t, func() {
		out, err := Assemble(Labels{})
		So(err, ShouldBeNil)
		So(out, ShouldBeEmpty)
	})
}

func sampleGoal() model.Goal {
	return model.Goal{
		TeamID:                10,
		PlayerID:              "8478402",
		PlayerName:            "Connor McDavid",
		Goalie:                "",
		GoalieName:            model.EmptyNet,
		TeamName:              "Oilers",
		HomeTeam:              22,
		URL:                   "https://example.invalid/g/1",
		HomeTeamDefendingSide: "left",
		Period:                3,
		Time:                  "19:05",
		SituationCode:         1551,
		Situation:             "5v5",
		X:                     60.5,
		Y:                     math.NaN(),
		ShotType:              "Wrist Shot",
		ShotZone:              "Slot",
		TeamScore:             2,
		OpponentScore:         3,
		ScoreDiff:             -1,
		GameDate:              time.Date(2023, time.November, 2, 0, 0, 0, 0, time.UTC),
		Month:                 11,
		Day:                   2,
		SeasonDay:             33,
		TimeMinutes:           19,
		TimeSeconds:           5,
		PeriodTime:            19.25,
		GameTime:              1,
	}
}

func TestRows(t *testing.T) {
	Convey("Given one assembled goal", t, func() {
		goals := []model.Goal{sampleGoal()}
		as, err := Assemble(Labels{Galaxy: []int{2}, Cluster: []int{0}, SolarSystem: []int{4}})
		So(err, ShouldBeNil)
		rows, err := Rows(goals, as)
		So(err, ShouldBeNil)

		Convey("Then the record follows the header", func() {
			h := Header()
			So(h, ShouldHaveLength, 36)
			So(h[0], ShouldEqual, "team_id")
			So(h[26], ShouldEqual, "home_team")
			So(h[27], ShouldEqual, "goal_index")
			So(h[35], ShouldEqual, "level_3_cluster")
			So(rows[0], ShouldHaveLength, len(h))

			get := func(col string) string {
				for i, name := range h {
					if name == col {
						return rows[0][i]
					}
				}
				return "?"
			}
			So(get("x"), ShouldEqual, "60.5")
			So(get("y"), ShouldEqual, "")
			So(get("period_time"), ShouldEqual, "19.25")
			So(get("game_date"), ShouldEqual, "2023-11-02")
			So(get("goalie_name"), ShouldEqual, "Empty Net")
			So(get("hierarchy_level"), ShouldEqual, "3")
			So(get("deepest_cluster"), ShouldEqual, "root.galaxy_2.cluster_0.solar system_4.star_0")
			So(get("hierarchy_path"), ShouldEqual, get("deepest_cluster"))
			So(get("cluster_size"), ShouldEqual, "1")
		})
	})

	Convey("Given mismatched inputs", t, func() {
		_, err := Rows([]model.Goal{sampleGoal()}, nil)
		So(errors.Is(err, ErrLengthMismatch), ShouldBeTrue)
	})
}

func TestWriteFile(t *testing.T) {
	Convey("Given a writable directory", t, func() {
		path := filepath.Join(t.TempDir(), "star_chart.csv")
		goals := []model.Goal{sampleGoal(), sampleGoal()}
		as, err := Assemble(Labels{Galaxy: []int{0, 0}, Cluster: []int{0, 0}, SolarSystem: []int{0, 0}})
		So(err, ShouldBeNil)
		So(WriteFile(path, goals, as), ShouldBeNil)

		Convey("Then the table reads back with every column", func() {
			tbl, err := table.ReadFile(path, Header()...)
			So(err, ShouldBeNil)
			So(tbl.Len(), ShouldEqual, 2)
			So(tbl.Get(1, "level_3_cluster"), ShouldEqual, "star_1")
			So(tbl.Get(1, "cluster_size"), ShouldEqual, "2")
		})
	})

	Convey("Given a missing directory", t, func() {
		path := filepath.Join(t.TempDir(), "absent", "out.csv")
		err := WriteFile(path, nil, nil)

		Convey("Then a WriteError is returned and nothing is created", func() {
			So(errors.Is(err, fault.ErrWrite), ShouldBeTrue)
			_, statErr := os.Stat(path)
			So(os.IsNotExist(statErr), ShouldBeTrue)
		})
	})
}
