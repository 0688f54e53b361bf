package down

import (
	"fmt"

	"github.com/riskibarqy/haxfootball-room/internal/domain/field"
	"github.com/riskibarqy/haxfootball-room/internal/domain/team"
)

const (
	MinDown       = 1
	MaxDown       = 4
	MinYardsToGet = 1
	MaxYardsToGet = 99

	DefaultYardsToGet = 10
)

// State is down and distance for the current possession series. Setters do
// not clamp; the command layer enforces ranges before calling them.
type State struct {
	los        field.Position
	losSet     bool
	down       int
	yardsToGet int
}

func New() *State {
	s := &State{}
	s.HardReset()
	return s
}

// HardReset returns to 1st & 10 at midfield.
func (s *State) HardReset() {
	s.los = field.Midfield
	s.losSet = true
	s.down = MinDown
	s.yardsToGet = DefaultYardsToGet
}

func (s *State) LineOfScrimmage() (field.Position, bool) {
	return s.los, s.losSet
}

func (s *State) Down() int { return s.down }

func (s *State) YardsToGet() int { return s.yardsToGet }

func (s *State) SetLineOfScrimmage(pos field.Position) {
	s.los = pos
	s.losSet = true
}

// ClearLineOfScrimmage is used after scores, when the next play must be a
// kickoff rather than a snap.
func (s *State) ClearLineOfScrimmage() {
	s.losSet = false
}

func (s *State) SetDown(d int) { s.down = d }

func (s *State) SetYardsToGet(yards int) { s.yardsToGet = yards }

// NewSeries starts 1st & 10 at spot, or 1st & goal inside the ten.
func (s *State) NewSeries(spot field.Position, offense team.ID) {
	s.SetLineOfScrimmage(spot)
	s.down = MinDown
	s.yardsToGet = DefaultYardsToGet
	if toGoal := field.YardsToGoal(spot, offense); toGoal < s.yardsToGet {
		s.yardsToGet = max(toGoal, MinYardsToGet)
	}
}

// FirstDownMarker is where the offense must reach for a new set of downs.
func (s *State) FirstDownMarker(offense team.ID) field.Position {
	return field.Advance(s.los, s.yardsToGet, offense)
}

type Result struct {
	Spot            field.Position
	FirstDown       bool
	TurnoverOnDowns bool
}

// Advance applies a gain (or loss) by the offense. On a turnover on downs
// the state is left at the dead spot for the caller to hand over possession.
func (s *State) Advance(yards int, offense team.ID) Result {
	spot := field.Advance(s.los, yards, offense)
	if yards >= s.yardsToGet {
		s.NewSeries(spot, offense)
		return Result{Spot: spot, FirstDown: true}
	}

	remaining := min(s.yardsToGet-yards, MaxYardsToGet)
	if s.down >= MaxDown {
		s.SetLineOfScrimmage(spot)
		return Result{Spot: spot, TurnoverOnDowns: true}
	}

	s.SetLineOfScrimmage(spot)
	s.down++
	s.yardsToGet = remaining
	return Result{Spot: spot}
}

// Markers is what the engine needs to paint the field after a play.
type Markers struct {
	Ball      field.Position
	LOS       field.Position
	FirstDown field.Position
	Visible   bool
}

func (s *State) Markers(offense team.ID) Markers {
	return Markers{
		Ball:      s.los,
		LOS:       s.los,
		FirstDown: s.FirstDownMarker(offense),
		Visible:   s.losSet,
	}
}

// String renders "2nd & 7 at RED 35".
func (s *State) String(offense team.ID) string {
	if !s.losSet {
		return fmt.Sprintf("%s & %s | waiting for kickoff", ordinal(s.down), distance(s, offense))
	}
	return fmt.Sprintf("%s & %s at %s", ordinal(s.down), distance(s, offense), field.Describe(s.los))
}

func distance(s *State, offense team.ID) string {
	if s.losSet && field.YardsToGoal(s.los, offense) <= s.yardsToGet {
		return "Goal"
	}
	return fmt.Sprintf("%d", s.yardsToGet)
}

func ordinal(d int) string {
	switch d {
	case 1:
		return "1st"
	case 2:
		return "2nd"
	case 3:
		return "3rd"
	default:
		return fmt.Sprintf("%dth", d)
	}
}
