// Package model contains domain models passed between layers.
package model

import "time"

// Sentinel goalie name used when no goaltender was in net.
const EmptyNet = "Empty Net"

// Goal is one scored goal after cleaning. Pass-through columns keep their
// raw text so the output table reproduces them untouched.
type Goal struct {
	// Index is the row's position in the post-filter table.
	Index int

	TeamID     int
	PlayerID   string
	PlayerName string
	Goalie     string
	GoalieName string
	TeamName   string
	HomeTeam   int
	URL        string

	HomeTeamDefendingSide string

	Period int
	Time   string // "MM:SS" within the period

	SituationCode int    // flattened 4-digit code
	Situation     string // "NvM" from the scoring team's side

	X, Y     float64 // reflected so every goal attacks +x
	ShotType string  // canonical vocabulary
	ShotZone string

	TeamScore     int // before the goal
	OpponentScore int
	ScoreDiff     int

	GameDate  time.Time
	Month     int
	Day       int
	SeasonDay int

	TimeMinutes int
	TimeSeconds int
	PeriodTime  float64 // minutes since the period started
	GameTime    int
}

// Name returns the value of a supported name field.
func (g *Goal) Name(field string) string {
	if field == "player_name" {
		return g.PlayerName
	}
	return g.GoalieName
}
