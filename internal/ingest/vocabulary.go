package ingest

import "strings"

// Canonical shot types.
const (
	ShotBackhand    = "Backhand"
	ShotTipIn       = "Tip-In"
	ShotSlap        = "Slap Shot"
	ShotWrist       = "Wrist Shot"
	ShotSnap        = "Snap Shot"
	ShotWrapAround  = "Wrap Around"
	ShotDeflected   = "Deflected"
	ShotBat         = "Bat"
	ShotPoke        = "Poke"
	ShotBetweenLegs = "Between Legs"
	ShotCradle      = "Cradle"
)

// shotTypes maps lowercase feed values and canonical spellings onto the
// canonical vocabulary.
var shotTypes = map[string]string{ //nolint:gochecknoglobals // fixed vocabulary
	"backhand":     ShotBackhand,
	"tip-in":       ShotTipIn,
	"slap":         ShotSlap,
	"slap shot":    ShotSlap,
	"wrist":        ShotWrist,
	"wrist shot":   ShotWrist,
	"snap":         ShotSnap,
	"snap shot":    ShotSnap,
	"wrap-around":  ShotWrapAround,
	"wrap around":  ShotWrapAround,
	"deflected":    ShotDeflected,
	"bat":          ShotBat,
	"poke":         ShotPoke,
	"between-legs": ShotBetweenLegs,
	"between legs": ShotBetweenLegs,
	"cradle":       ShotCradle,
}

// CanonicalShotType returns the canonical spelling of raw.
func CanonicalShotType(raw string) (string, bool) {
	s, ok := shotTypes[strings.ToLower(strings.TrimSpace(raw))]
	return s, ok
}
