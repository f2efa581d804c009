// Package ingest loads the raw goal table and derives the features every
// clustering round reads.
package ingest

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/okian/starchart/internal/domain/fault"
	"github.com/okian/starchart/internal/domain/model"
	"github.com/okian/starchart/internal/domain/rink"
	"github.com/okian/starchart/internal/domain/situation"
	"github.com/okian/starchart/internal/table"
	"github.com/okian/starchart/pkg/logger"
)

// Input column names.
const (
	ColTeamID                = "team_id"
	ColPlayerID              = "player_id"
	ColPlayerName            = "player_name"
	ColGoalie                = "goalie"
	ColGoalieName            = "goalie_name"
	ColPeriod                = "period"
	ColTime                  = "time"
	ColSituationCode         = "situation_code"
	ColX                     = "x"
	ColY                     = "y"
	ColURL                   = "url"
	ColShotType              = "shot_type"
	ColHomeTeam              = "home_team"
	ColTeamScore             = "team_score"
	ColOpponentScore         = "opponent_score"
	ColGameDate              = "game_date"
	ColTeamName              = "team_name"
	ColHomeTeamDefendingSide = "home_team_defending_side"
)

// RequiredColumns lists every column the loader needs.
var RequiredColumns = []string{ //nolint:gochecknoglobals // fixed schema
	ColTeamID, ColPlayerID, ColPlayerName, ColGoalie, ColGoalieName, ColPeriod, ColTime,
	ColSituationCode, ColX, ColY, ColURL, ColShotType, ColHomeTeam, ColTeamScore,
	ColOpponentScore, ColGameDate, ColTeamName, ColHomeTeamDefendingSide,
}

// Drop reasons reported in Stats and metrics.
const (
	DropMissingShotType = "missing_shot_type"
	DropBeforeMinDate   = "before_min_date"
)

const periodMinutes = 20

var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05"} //nolint:gochecknoglobals // accepted layouts

// Stats summarizes one load.
type Stats struct {
	Read    int
	Kept    int
	Dropped map[string]int
}

// Option applies a configuration option to the Loader.
type Option func(*Loader)

// WithMinDate sets the inclusive lower bound on game_date.
func WithMinDate(t time.Time) Option {
	return func(l *Loader) {
		l.minDate = t
	}
}

// WithLogger sets a custom logger for the loader.
func WithLogger(lg logger.Logger) Option {
	return func(l *Loader) {
		if lg != nil {
			l.logger = lg
		}
	}
}

// Loader turns raw goal rows into cleaned goals.
type Loader struct {
	minDate time.Time
	logger  logger.Logger
}

// NewLoader creates a loader. The default min date is 2023-10-09.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		minDate: time.Date(2023, time.October, 9, 0, 0, 0, 0, time.UTC),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = logger.Get().Named("ingest")
	}
	return l
}

// LoadFile reads path and normalizes it.
func (l *Loader) LoadFile(ctx context.Context, path string) ([]model.Goal, Stats, error) {
	tbl, err := table.ReadFile(path)
	if err != nil {
		return nil, Stats{}, fault.Ingest(path, err)
	}
	return l.Normalize(ctx, tbl)
}

// Normalize cleans tbl in row order. Rows without a shot type or played
// before the min date are dropped; every other row becomes one Goal whose
// Index is its position among the survivors.
func (l *Loader) Normalize(ctx context.Context, tbl *table.Table) ([]model.Goal, Stats, error) {
	for _, col := range RequiredColumns {
		if !tbl.Has(col) {
			return nil, Stats{}, fault.Ingest(col, table.ErrMissingColumn)
		}
	}

	stats := Stats{Read: tbl.Len(), Dropped: map[string]int{}}
	goals := make([]model.Goal, 0, tbl.Len())

	for i := 0; i < tbl.Len(); i++ {
		rawShot := tbl.Get(i, ColShotType)
		if rawShot == "" {
			stats.Dropped[DropMissingShotType]++
			continue
		}
		shot, ok := CanonicalShotType(rawShot)
		if !ok {
			return nil, stats, fault.Config("shot_type="+rawShot, ErrUnknownShotType)
		}

		date, err := parseDate(tbl.Get(i, ColGameDate))
		if err != nil {
			return nil, stats, fault.Ingest(fmt.Sprintf("%s row %d", ColGameDate, i+1), err)
		}
		if date.Before(l.minDate) {
			stats.Dropped[DropBeforeMinDate]++
			continue
		}

		g, err := l.derive(tbl, i, shot, date)
		if err != nil {
			return nil, stats, err
		}
		g.Index = len(goals)
		goals = append(goals, g)
	}

	stats.Kept = len(goals)
	if len(goals) == 0 {
		return nil, stats, fault.EmptyInput("min_date=" + l.minDate.Format("2006-01-02"))
	}

	l.logger.Info(ctx, "goal table normalized",
		logger.Int("read", stats.Read),
		logger.Int("kept", stats.Kept),
		logger.Int("dropped_missing_shot_type", stats.Dropped[DropMissingShotType]),
		logger.Int("dropped_before_min_date", stats.Dropped[DropBeforeMinDate]),
	)
	return goals, stats, nil
}

func (l *Loader) derive(tbl *table.Table, i int, shot string, date time.Time) (model.Goal, error) {
	g := model.Goal{
		PlayerID:              tbl.Get(i, ColPlayerID),
		PlayerName:            tbl.Get(i, ColPlayerName),
		Goalie:                tbl.Get(i, ColGoalie),
		GoalieName:            tbl.Get(i, ColGoalieName),
		TeamName:              tbl.Get(i, ColTeamName),
		URL:                   tbl.Get(i, ColURL),
		HomeTeamDefendingSide: tbl.Get(i, ColHomeTeamDefendingSide),
		Time:                  tbl.Get(i, ColTime),
		ShotType:              shot,
		GameDate:              date,
		Month:                 int(date.Month()),
		Day:                   date.Day(),
		SeasonDay:             SeasonDay(date),
	}

	var err error
	ints := []struct {
		col string
		dst *int
	}{
		{ColTeamID, &g.TeamID},
		{ColHomeTeam, &g.HomeTeam},
		{ColPeriod, &g.Period},
		{ColTeamScore, &g.TeamScore},
		{ColOpponentScore, &g.OpponentScore},
	}
	for _, f := range ints {
		if *f.dst, err = parseInt(tbl.Get(i, f.col)); err != nil {
			return g, fault.Ingest(fmt.Sprintf("%s row %d", f.col, i+1), err)
		}
	}

	x := parseFloatOrNaN(tbl.Get(i, ColX))
	y := parseFloatOrNaN(tbl.Get(i, ColY))
	g.X, g.Y = rink.Reflect(x, y)
	g.ShotZone = rink.Classify(g.X, g.Y)

	if g.TimeMinutes, g.TimeSeconds, err = parseClock(g.Time); err != nil {
		return g, fault.Ingest(fmt.Sprintf("%s row %d", ColTime, i+1), err)
	}
	g.PeriodTime = float64(g.TimeMinutes) + float64(g.TimeSeconds)/60
	g.GameTime = int(math.Floor((g.PeriodTime + periodMinutes*float64(g.Period)) / 60))

	// The feed's team_score already counts this goal.
	g.TeamScore--
	g.ScoreDiff = g.TeamScore - g.OpponentScore

	rawCode := tbl.Get(i, ColSituationCode)
	code, err := parseInt(rawCode)
	if err != nil {
		return g, fault.Ingest(fmt.Sprintf("%s row %d", ColSituationCode, i+1), err)
	}
	if g.SituationCode, err = situation.Flatten(code); err != nil {
		return g, fault.Config("situation_code="+rawCode, err)
	}
	if g.Situation, err = situation.Decode(g.SituationCode, g.TeamID, g.HomeTeam); err != nil {
		return g, fault.Config("situation_code="+rawCode, err)
	}

	if g.GoalieName == "" {
		g.GoalieName = model.EmptyNet
	}
	return g, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrBadDate, s)
}

// parseInt accepts integral floats ("1551.0") as written by dataframe exports.
func parseInt(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %q", ErrBadNumber, s)
	}
	return int(f), nil
}

func parseFloatOrNaN(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

func parseClock(s string) (int, int, error) {
	mm, ss, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadClock, s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadClock, s)
	}
	sec, err := strconv.Atoi(ss)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadClock, s)
	}
	return m, sec, nil
}
