// Package situation decodes NHL strength codes into "NvM" strings.
//
// A code is four digits: away goalie, away skaters, home skaters, home
// goalie. Leading-zero codes (away net empty) arrive as three digits.
package situation

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrUnknownCode is returned for codes outside the flattening table.
var ErrUnknownCode = errors.New("unknown situation code")

// ErrMalformedCode is returned when a code is not three or four digits.
var ErrMalformedCode = errors.New("malformed situation code")

// Canonical lists the codes every input code flattens onto.
var Canonical = []int{1551, 1451, 1541, 1441, 1431, 1651, 1561, 1331, 1351, 1531, 1341, 1641, 1461, 1011} //nolint:gochecknoglobals // fixed vocabulary

// flatten maps raw codes onto Canonical. Three-digit codes have the away net
// empty; codes ending in 0 have the home net empty. Both collapse onto the
// matching full-strength code with the extra attacker folded in.
var flatten = map[int]int{ //nolint:gochecknoglobals // fixed vocabulary
	// canonical
	1551: 1551, 1451: 1451, 1541: 1541, 1441: 1441, 1431: 1431, 1651: 1651, 1561: 1561,
	1331: 1331, 1351: 1351, 1531: 1531, 1341: 1341, 1641: 1641, 1461: 1461, 1011: 1011,

	// away goalie pulled
	651: 1651, 641: 1641, 551: 1551, 541: 1541, 451: 1451, 441: 1441, 431: 1431,
	531: 1531, 351: 1351, 341: 1341, 331: 1331, 561: 1561, 461: 1461,

	// home goalie pulled
	1560: 1561, 1460: 1461, 1550: 1551, 1450: 1451, 1540: 1541, 1440: 1441,
	1430: 1431, 1530: 1531, 1350: 1351, 1340: 1341, 1330: 1331, 1650: 1651, 1640: 1641,

	// penalty shots and shootout attempts
	101: 1011, 1010: 1011, 10: 1011,
}

// Flatten returns the canonical code for raw.
func Flatten(raw int) (int, error) {
	c, ok := flatten[raw]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnknownCode, raw)
	}
	return c, nil
}

// Decode turns a (flattened) code into a strength string from the scoring
// team's point of view. "0v1" is rewritten to "1v0".
func Decode(code, scoringTeam, homeTeam int) (string, error) {
	s := strconv.Itoa(code)

	var away, home byte
	switch len(s) {
	case 4:
		away, home = s[1], s[2]
	case 3:
		away, home = s[0], s[1]
	default:
		return "", fmt.Errorf("%w: %d", ErrMalformedCode, code)
	}

	var out string
	if scoringTeam == homeTeam {
		out = string([]byte{home, 'v', away})
	} else {
		out = string([]byte{away, 'v', home})
	}
	if out == "0v1" {
		out = "1v0"
	}
	return out, nil
}
