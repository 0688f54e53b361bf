// Package field converts between yard lines and stadium coordinates.
//
// Midfield sits at X=0. Red defends the goal at negative X and attacks toward
// positive X; Blue is the mirror image.
package field

import (
	"fmt"
	"math"

	"github.com/riskibarqy/haxfootball-room/internal/domain/team"
)

const (
	// YardLength is the width of one yard in stadium units.
	YardLength = 15.0
	// HalfYards is the number of yards from a goal line to midfield.
	HalfYards = 50
)

type Position struct {
	X float64
	Y float64
}

// Midfield is the 50 yard line.
var Midfield = Position{}

// PositionOfTeamYard maps "the red 35" style references onto the field.
func PositionOfTeamYard(yard int, half team.ID) Position {
	fromMid := float64(HalfYards-yard) * YardLength
	if half == team.Red {
		return Position{X: -fromMid}
	}
	return Position{X: fromMid}
}

// YardLine is the inverse of PositionOfTeamYard. The 50 reports Spectators as
// its half since it belongs to neither team.
func YardLine(pos Position) (int, team.ID) {
	fromMid := int(math.Round(math.Abs(pos.X) / YardLength))
	if fromMid > HalfYards {
		fromMid = HalfYards
	}
	yard := HalfYards - fromMid
	switch {
	case yard == HalfYards:
		return yard, team.Spectators
	case pos.X < 0:
		return yard, team.Red
	default:
		return yard, team.Blue
	}
}

// Direction is +1 when offense attacks positive X, -1 otherwise.
func Direction(offense team.ID) float64 {
	if offense == team.Blue {
		return -1
	}
	return 1
}

// Advance moves pos the given number of yards toward the offense's target
// goal. Negative yards move it back.
func Advance(pos Position, yards int, offense team.ID) Position {
	return Position{X: pos.X + float64(yards)*YardLength*Direction(offense), Y: pos.Y}
}

// YardsBetween is how far `to` lies past `from` from the offense's view.
func YardsBetween(from, to Position, offense team.ID) int {
	return int(math.Round((to.X - from.X) * Direction(offense) / YardLength))
}

// YardsToGoal is the distance from pos to the goal line the offense attacks.
func YardsToGoal(pos Position, offense team.ID) int {
	goal := Position{X: float64(HalfYards) * YardLength * Direction(offense)}
	return YardsBetween(pos, goal, offense)
}

// Describe prints a position the way the room announces it, e.g. "RED 35".
func Describe(pos Position) string {
	yard, half := YardLine(pos)
	if half == team.Spectators {
		return fmt.Sprintf("%d", yard)
	}
	return fmt.Sprintf("%s %d", half, yard)
}
