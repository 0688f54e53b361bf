package game

import (
	"errors"
	"testing"

	"github.com/riskibarqy/haxfootball-room/internal/domain/field"
	"github.com/riskibarqy/haxfootball-room/internal/domain/play"
	"github.com/riskibarqy/haxfootball-room/internal/domain/team"
)

func spot(yard int, half team.ID) *field.Position {
	p := field.PositionOfTeamYard(yard, half)
	return &p
}

func TestResolvePlay_NoActivePlay(t *testing.T) {
	g, _ := newTestGame(t)

	if _, err := g.ResolvePlay(play.Outcome{Yards: 5}); !errors.Is(err, ErrNoActivePlay) {
		t.Fatalf("expected ErrNoActivePlay, got %v", err)
	}
}

func TestResolvePlay_KickOff(t *testing.T) {
	t.Run("touchback", func(t *testing.T) {
		g, _ := newTestGame(t)
		if err := g.StartPlay(play.NewKickOff(0), nil); err != nil {
			t.Fatalf("kickoff: %v", err)
		}

		res, err := g.ResolvePlay(play.Outcome{})
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if !res.OffenseChanged || res.Offense != team.Blue {
			t.Fatalf("receiving team must take over, got %+v", res)
		}
		if got := g.Down().String(team.Blue); got != "1st & 10 at BLUE 25" {
			t.Fatalf("unexpected down %q", got)
		}
		if _, ok := g.ActivePlay(); ok {
			t.Fatalf("play must be ended after resolve")
		}
	})

	t.Run("return touchdown", func(t *testing.T) {
		g, _ := newTestGame(t)
		if err := g.StartPlay(play.NewKickOff(0), nil); err != nil {
			t.Fatalf("kickoff: %v", err)
		}

		res, err := g.ResolvePlay(play.Outcome{Touchdown: true, ReturnerID: blueLB.ID, ReturnYards: 100})
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if res.ScoringTeam != team.Blue || res.Points != TouchdownPoints {
			t.Fatalf("unexpected resolution %+v", res)
		}
		if g.Score().Blue != 7 {
			t.Fatalf("expected blue 7, got %+v", g.Score())
		}
		if _, set := g.Down().LineOfScrimmage(); set {
			t.Fatalf("los must be cleared after a score")
		}
	})
}

func TestResolvePlay_Snap(t *testing.T) {
	tests := []struct {
		name        string
		kind        play.Kind
		outcome     play.Outcome
		wantOffense team.ID
		wantScore   Score
		wantDown    string
		wantLOS     bool
	}{
		{
			name:        "short gain",
			kind:        play.KindRun,
			outcome:     play.Outcome{Yards: 4, BallcarrierID: redQB.ID},
			wantOffense: team.Red,
			wantDown:    "2nd & 6 at RED 24",
			wantLOS:     true,
		},
		{
			name:        "first down by end spot",
			kind:        play.KindPass,
			outcome:     play.Outcome{Completed: true, EndSpot: spot(35, team.Red)},
			wantOffense: team.Red,
			wantDown:    "1st & 10 at RED 35",
			wantLOS:     true,
		},
		{
			name:        "touchdown",
			kind:        play.KindRun,
			outcome:     play.Outcome{Touchdown: true, Yards: 80},
			wantOffense: team.Red,
			wantScore:   Score{Red: 7},
		},
		{
			name:        "safety",
			kind:        play.KindRun,
			outcome:     play.Outcome{Safety: true, Yards: -20},
			wantOffense: team.Red,
			wantScore:   Score{Blue: 2},
		},
		{
			name:        "interception",
			kind:        play.KindPass,
			outcome:     play.Outcome{Turnover: true, EndSpot: spot(40, team.Red)},
			wantOffense: team.Blue,
			wantDown:    "1st & 10 at RED 40",
			wantLOS:     true,
		},
		{
			name:        "pick six",
			kind:        play.KindPass,
			outcome:     play.Outcome{Turnover: true, Touchdown: true},
			wantOffense: team.Blue,
			wantScore:   Score{Blue: 7},
		},
		{
			name:        "punt",
			kind:        play.KindPunt,
			outcome:     play.Outcome{Yards: 45, KickerID: redQB.ID},
			wantOffense: team.Blue,
			wantDown:    "1st & 10 at BLUE 35",
			wantLOS:     true,
		},
		{
			name:        "punt return touchdown",
			kind:        play.KindPunt,
			outcome:     play.Outcome{Touchdown: true},
			wantOffense: team.Blue,
			wantScore:   Score{Blue: 7},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _ := newTestGame(t)
			g.Down().NewSeries(field.PositionOfTeamYard(20, team.Red), team.Red)

			p, _ := play.New(tt.kind, 0)
			qb := redQB
			if err := g.StartPlay(p, &qb); err != nil {
				t.Fatalf("start: %v", err)
			}

			res, err := g.ResolvePlay(tt.outcome)
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if res.Offense != tt.wantOffense || g.OffenseTeamID() != tt.wantOffense {
				t.Fatalf("expected offense %s, got %s", tt.wantOffense, g.OffenseTeamID())
			}
			if g.Score() != tt.wantScore {
				t.Fatalf("expected score %+v, got %+v", tt.wantScore, g.Score())
			}
			if _, set := g.Down().LineOfScrimmage(); set != tt.wantLOS {
				t.Fatalf("expected los set=%v", tt.wantLOS)
			}
			if tt.wantDown != "" {
				if got := g.Down().String(g.OffenseTeamID()); got != tt.wantDown {
					t.Fatalf("expected down %q, got %q", tt.wantDown, got)
				}
			}
			if g.SnapAllowed() {
				t.Fatalf("resolve must start the snap cooldown")
			}
		})
	}
}

func TestResolvePlay_ScoreCappedAtMax(t *testing.T) {
	tests := []struct {
		name       string
		start      int
		wantRed    int
		wantPoints int
	}{
		{name: "room to spare", start: 90, wantRed: 97, wantPoints: TouchdownPoints},
		{name: "clamped", start: 98, wantRed: DefaultMaxScore, wantPoints: TouchdownPoints},
		{name: "already at max", start: DefaultMaxScore, wantRed: DefaultMaxScore, wantPoints: TouchdownPoints},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _ := newTestGame(t)
			if err := g.SetScore(team.Red, tt.start); err != nil {
				t.Fatalf("set score: %v", err)
			}
			g.Down().NewSeries(field.PositionOfTeamYard(20, team.Red), team.Red)
			qb := redQB
			if err := g.StartPlay(play.NewRun(), &qb); err != nil {
				t.Fatalf("start: %v", err)
			}

			res, err := g.ResolvePlay(play.Outcome{Touchdown: true, Yards: 80})
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if g.Score().Red != tt.wantRed {
				t.Fatalf("expected red %d, got %d", tt.wantRed, g.Score().Red)
			}
			if !res.Touchdown || res.Points != tt.wantPoints {
				t.Fatalf("unexpected resolution %+v", res)
			}
			if _, set := g.Down().LineOfScrimmage(); set {
				t.Fatalf("scoring play must clear the line of scrimmage")
			}
		})
	}
}

func TestResolvePlay_TurnoverOnDowns(t *testing.T) {
	g, c := newTestGame(t)
	g.Down().NewSeries(field.PositionOfTeamYard(30, team.Red), team.Red)
	g.Down().SetDown(4)
	g.Down().SetYardsToGet(3)

	qb := redQB
	if err := g.StartPlay(play.NewRun(), &qb); err != nil {
		t.Fatalf("start: %v", err)
	}
	res, err := g.ResolvePlay(play.Outcome{Yards: 1, BallcarrierID: redQB.ID})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !res.TurnoverOnDowns || g.OffenseTeamID() != team.Blue {
		t.Fatalf("expected turnover on downs, got %+v", res)
	}
	if got := g.Down().String(team.Blue); got != "1st & 10 at RED 31" {
		t.Fatalf("unexpected down %q", got)
	}

	c.Advance(DefaultSnapCooldown)
	if !g.SnapAllowed() {
		t.Fatalf("cooldown should expire")
	}
}

func TestResolvePlay_RecordsStats(t *testing.T) {
	g, _ := newTestGame(t)
	qb := redQB
	if err := g.StartPlay(play.NewRun(), &qb); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := g.ResolvePlay(play.Outcome{Yards: 6, BallcarrierID: redQB.ID, TacklerID: blueLB.ID}); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	line, ok := g.Stats().Get(redQB.StatKey())
	if !ok || line.RushAttempts != 1 || line.RushYards != 6 {
		t.Fatalf("unexpected rusher line %+v", line)
	}
	tackle, ok := g.Stats().Get(blueLB.StatKey())
	if !ok || tackle.Tackles != 1 {
		t.Fatalf("unexpected tackler line %+v", tackle)
	}
}
