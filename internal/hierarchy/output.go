package hierarchy

import (
	"fmt"
	"math"
	"strconv"

	"github.com/okian/starchart/internal/domain/fault"
	"github.com/okian/starchart/internal/domain/model"
	"github.com/okian/starchart/internal/table"
)

// DateLayout is how game_date is written.
const DateLayout = "2006-01-02"

// AttributeColumns are the cleaned goal attributes, in output order.
var AttributeColumns = []string{ //nolint:gochecknoglobals // fixed output schema
	"team_id", "player_id", "period", "time", "situation", "situation_code", "x", "y", "url",
	"shot_type", "goalie", "home_team_defending_side", "score_diff", "shot_zone", "team_score",
	"opponent_score", "game_date", "team_name", "player_name", "goalie_name", "time_minutes",
	"time_seconds", "period_time", "month", "day", "season_day", "home_team",
}

// AssignmentColumns follow the attributes.
var AssignmentColumns = []string{ //nolint:gochecknoglobals // fixed output schema
	"goal_index", "deepest_cluster", "hierarchy_level", "hierarchy_path", "cluster_size",
	"level_0_cluster", "level_1_cluster", "level_2_cluster", "level_3_cluster",
}

// Header returns the full output header.
func Header() []string {
	h := make([]string, 0, len(AttributeColumns)+len(AssignmentColumns))
	h = append(h, AttributeColumns...)
	return append(h, AssignmentColumns...)
}

// Rows renders goals and their assignments as output records. assignments[i]
// must belong to goals[i].
func Rows(goals []model.Goal, assignments []model.Assignment) ([][]string, error) {
	if len(goals) != len(assignments) {
		return nil, fmt.Errorf("%w: goals=%d assignments=%d", ErrLengthMismatch, len(goals), len(assignments))
	}
	rows := make([][]string, len(goals))
	for i := range goals {
		rows[i] = record(&goals[i], &assignments[i])
	}
	return rows, nil
}

// WriteFile renders and writes the output table to path.
func WriteFile(path string, goals []model.Goal, assignments []model.Assignment) error {
	rows, err := Rows(goals, assignments)
	if err != nil {
		return fault.Write(path, err)
	}
	if err := table.WriteFile(path, Header(), rows); err != nil {
		return fault.Write(path, err)
	}
	return nil
}

func record(g *model.Goal, a *model.Assignment) []string {
	itoa := strconv.Itoa
	return []string{
		itoa(g.TeamID),
		g.PlayerID,
		itoa(g.Period),
		g.Time,
		g.Situation,
		itoa(g.SituationCode),
		formatFloat(g.X),
		formatFloat(g.Y),
		g.URL,
		g.ShotType,
		g.Goalie,
		g.HomeTeamDefendingSide,
		itoa(g.ScoreDiff),
		g.ShotZone,
		itoa(g.TeamScore),
		itoa(g.OpponentScore),
		g.GameDate.Format(DateLayout),
		g.TeamName,
		g.PlayerName,
		g.GoalieName,
		itoa(g.TimeMinutes),
		itoa(g.TimeSeconds),
		formatFloat(g.PeriodTime),
		itoa(g.Month),
		itoa(g.Day),
		itoa(g.SeasonDay),
		itoa(g.HomeTeam),

		itoa(a.GoalIndex),
		a.HierarchyPath,
		itoa(model.HierarchyLevel),
		a.HierarchyPath,
		itoa(a.ClusterSize),
		a.Level0,
		a.Level1,
		a.Level2,
		a.Level3,
	}
}

// formatFloat writes the shortest round-trip form; missing values are empty.
func formatFloat(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
