// Package rink classifies goal locations into named offensive-zone regions.
//
// Coordinates are in feet with the origin at center ice. Goals are expected
// to be reflected onto the +x half before classification; anything outside
// the offensive-zone rectangle is NotInOZ.
package rink

import "github.com/paulmach/orb"

// Zone names.
const (
	RightPoint         = "Right Point"
	LeftPoint          = "Left Point"
	Point              = "Point"
	LeftFaceoffCircle  = "Left Faceoff Circle"
	RightFaceoffCircle = "Right Faceoff Circle"
	Slot               = "Slot"
	BehindNet          = "Behind Net"
	NotInOZ            = "Not In OZ"
)

// Rink landmarks.
const (
	BlueLineX  = 25.0
	GoalLineX  = 89.0
	EndBoardsX = 100.0
	HalfWidth  = 42.5

	pointDepthX   = 55.0 // point region spans blue line to here
	pointSideY    = 14.0 // |y| beyond which the point is left or right
	slotHalfWidth = 10.0 // slot spans -10 <= y < 10 below the goal line
)

// Region is a named half-open rectangle: Min inclusive, Max exclusive.
type Region struct {
	Name  string
	Bound orb.Bound
}

// Contains reports whether p lies in [Min, Max) on both axes. orb.Bound.Contains
// is closed on both ends, which would put shared edges in two regions.
func (r Region) Contains(p orb.Point) bool {
	return p.X() >= r.Bound.Min.X() && p.X() < r.Bound.Max.X() &&
		p.Y() >= r.Bound.Min.Y() && p.Y() < r.Bound.Max.Y()
}

// OffensiveZone bounds every region below.
var OffensiveZone = Region{ //nolint:gochecknoglobals // fixed rink geometry
	Name:  "Offensive Zone",
	Bound: orb.Bound{Min: orb.Point{BlueLineX, -HalfWidth}, Max: orb.Point{EndBoardsX, HalfWidth}},
}

// Regions tile OffensiveZone without overlap. Negative y is the shooter's
// right when facing the attacked net.
var Regions = []Region{ //nolint:gochecknoglobals // fixed rink geometry
	{RightPoint, orb.Bound{Min: orb.Point{BlueLineX, -HalfWidth}, Max: orb.Point{pointDepthX, -pointSideY}}},
	{Point, orb.Bound{Min: orb.Point{BlueLineX, -pointSideY}, Max: orb.Point{pointDepthX, pointSideY}}},
	{LeftPoint, orb.Bound{Min: orb.Point{BlueLineX, pointSideY}, Max: orb.Point{pointDepthX, HalfWidth}}},
	{RightFaceoffCircle, orb.Bound{Min: orb.Point{pointDepthX, -HalfWidth}, Max: orb.Point{GoalLineX, -slotHalfWidth}}},
	{Slot, orb.Bound{Min: orb.Point{pointDepthX, -slotHalfWidth}, Max: orb.Point{GoalLineX, slotHalfWidth}}},
	{LeftFaceoffCircle, orb.Bound{Min: orb.Point{pointDepthX, slotHalfWidth}, Max: orb.Point{GoalLineX, HalfWidth}}},
	{BehindNet, orb.Bound{Min: orb.Point{GoalLineX, -HalfWidth}, Max: orb.Point{EndBoardsX, HalfWidth}}},
}

// Classify maps a reflected (x, y) to its zone name. It is total: NaN or
// out-of-zone coordinates return NotInOZ.
func Classify(x, y float64) string {
	p := orb.Point{x, y}
	// The closed outer test lets the far edges through; no half-open region
	// claims them, so they still end as NotInOZ.
	if !OffensiveZone.Bound.Contains(p) {
		return NotInOZ
	}
	for _, r := range Regions {
		if r.Contains(p) {
			return r.Name
		}
	}
	return NotInOZ
}

// Reflect moves a goal onto the +x half. Only strictly negative x is
// reflected; x == 0 stays put.
func Reflect(x, y float64) (float64, float64) {
	if x < 0 {
		return -x, -y
	}
	return x, y
}
