package game

import (
	"github.com/riskibarqy/haxfootball-room/internal/domain/field"
	"github.com/riskibarqy/haxfootball-room/internal/domain/play"
	"github.com/riskibarqy/haxfootball-room/internal/domain/team"
)

const (
	TouchdownPoints = 7
	SafetyPoints    = 2
	// TouchbackYard is where a kickoff return without an end spot is placed.
	TouchbackYard = 25
)

// Resolution summarises what a finished play did to the game.
type Resolution struct {
	Kind            play.Kind
	ScoringTeam     team.ID
	Points          int
	Touchdown       bool
	Safety          bool
	FirstDown       bool
	TurnoverOnDowns bool
	Turnover        bool
	Offense         team.ID
	OffenseChanged  bool
}

// ResolvePlay applies the engine's report of the active play: stats, score,
// possession and the next down. The play is ended afterwards. After any score
// the line of scrimmage is cleared and the scoring team kicks off.
func (g *State) ResolvePlay(o play.Outcome) (Resolution, error) {
	p := g.active
	if p == nil {
		return Resolution{}, ErrNoActivePlay
	}
	offense := g.offense
	defense, err := g.DefenseTeamID()
	if err != nil {
		return Resolution{}, err
	}

	g.stats.Record(p.Kind(), o, g.statKey)

	res := Resolution{Kind: p.Kind(), Turnover: o.Turnover}
	next := offense

	switch p.Kind() {
	case play.KindKickOff:
		// the receiving team is the defense at kick time
		next = defense
		if o.Touchdown {
			g.award(&res, defense, TouchdownPoints)
			res.Touchdown = true
			break
		}
		spot := field.PositionOfTeamYard(TouchbackYard, defense)
		if o.EndSpot != nil {
			spot = *o.EndSpot
		}
		g.down.NewSeries(spot, defense)

	case play.KindPunt:
		next = defense
		if o.Touchdown {
			g.award(&res, defense, TouchdownPoints)
			res.Touchdown = true
			break
		}
		g.down.NewSeries(g.spotAfter(o, offense), defense)

	default:
		switch {
		case o.Safety:
			g.award(&res, defense, SafetyPoints)
			res.Safety = true
		case o.Turnover && o.Touchdown:
			next = defense
			g.award(&res, defense, TouchdownPoints)
			res.Touchdown = true
		case o.Turnover:
			next = defense
			g.down.NewSeries(g.spotAfter(o, offense), defense)
		case o.Touchdown:
			g.award(&res, offense, TouchdownPoints)
			res.Touchdown = true
		default:
			los, _ := g.down.LineOfScrimmage()
			yards := field.YardsBetween(los, g.spotAfter(o, offense), offense)
			adv := g.down.Advance(yards, offense)
			res.FirstDown = adv.FirstDown
			res.TurnoverOnDowns = adv.TurnoverOnDowns
			if adv.TurnoverOnDowns {
				next = defense
				g.down.NewSeries(adv.Spot, defense)
			}
		}
	}

	if res.Points > 0 {
		g.down.ClearLineOfScrimmage()
	}
	if next != offense {
		if err := g.SetOffense(next); err != nil {
			return Resolution{}, err
		}
		res.OffenseChanged = true
	}
	res.Offense = g.offense

	g.logger.Info("play resolved",
		"kind", string(res.Kind),
		"points", res.Points,
		"offense", res.Offense.String(),
		"down", g.down.String(g.offense),
	)
	g.EndPlay()
	return res, nil
}

// award credits points but never past MaxScore. The resolution still reports
// the nominal points so the scoring play is announced and reset as usual.
func (g *State) award(res *Resolution, t team.ID, points int) {
	credited := min(points, max(g.maxScore-g.score.Of(t), 0))
	if credited < points {
		g.logger.Warn("score capped",
			"team", t.String(),
			"points", points,
			"credited", credited,
			"max_score", g.maxScore,
		)
	}
	// t comes from DefenseTeamID or the checked offense, both playable
	_ = g.AddScore(t, credited)
	res.ScoringTeam = t
	res.Points = points
}

func (g *State) spotAfter(o play.Outcome, offense team.ID) field.Position {
	if o.EndSpot != nil {
		return *o.EndSpot
	}
	los, _ := g.down.LineOfScrimmage()
	return field.Advance(los, o.Yards, offense)
}
