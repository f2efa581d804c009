package ingest

import "time"

// seasonStartMonth opens every season on the first of the month.
const seasonStartMonth = time.October

// SeasonAnchor returns October 1 of the season d belongs to: the same year
// from October on, the previous year before that.
func SeasonAnchor(d time.Time) time.Time {
	year := d.Year()
	if d.Month() < seasonStartMonth {
		year--
	}
	return time.Date(year, seasonStartMonth, 1, 0, 0, 0, 0, time.UTC)
}

// SeasonDay is the 1-based day of d within its season, clamped to at least 1.
func SeasonDay(d time.Time) int {
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	n := int(day.Sub(SeasonAnchor(day)).Hours()/24) + 1
	if n < 1 {
		return 1
	}
	return n
}
