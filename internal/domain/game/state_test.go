package game

import (
	"errors"
	"testing"
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/haxfootball-room/internal/domain/field"
	"github.com/riskibarqy/haxfootball-room/internal/domain/play"
	"github.com/riskibarqy/haxfootball-room/internal/domain/roster"
	"github.com/riskibarqy/haxfootball-room/internal/domain/team"
	"github.com/riskibarqy/haxfootball-room/internal/platform/clock"
	"github.com/riskibarqy/haxfootball-room/internal/platform/logging"
)

type fixedElapsed time.Duration

func (f fixedElapsed) Elapsed() time.Duration { return time.Duration(f) }

type panickyPlay struct {
	play.Play
}

func (p panickyPlay) CleanUp() {
	p.Play.CleanUp()
	panic("cleanup exploded")
}

var (
	redQB  = roster.Player{ID: 1, Name: "redqb", Team: team.Red}
	blueLB = roster.Player{ID: 2, Name: "bluelb", Team: team.Blue}
)

func newTestGame(t *testing.T) (*State, *clock.Manual) {
	t.Helper()

	players := roster.NewRegistry()
	for _, p := range []roster.Player{redQB, blueLB} {
		if err := players.Add(p); err != nil {
			t.Fatalf("add player: %v", err)
		}
	}
	c := clock.NewManual(time.Date(2026, 10, 18, 20, 0, 0, 0, time.UTC))
	g := New(Options{
		ID:           "game-1",
		Players:      players,
		Clock:        c,
		Elapsed:      fixedElapsed(125 * time.Second),
		SnapCooldown: 2 * time.Second,
		Logger:       logging.NewNop(),
	})
	return g, c
}

func TestNew_Defaults(t *testing.T) {
	g, _ := newTestGame(t)

	if g.OffenseTeamID() != team.Red {
		t.Fatalf("expected red offense, got %s", g.OffenseTeamID())
	}
	if g.Phase() != PhaseActive {
		t.Fatalf("expected active phase, got %s", g.Phase())
	}
	if !g.SnapAllowed() {
		t.Fatalf("fresh game must allow snaps")
	}
	if _, ok := g.ActivePlay(); ok {
		t.Fatalf("fresh game has no active play")
	}
	if got := g.ScoreboardSummary(); got != "🟥 0 - 0 🟦" {
		t.Fatalf("unexpected scoreboard %q", got)
	}
	if got := g.CurrentClock(); got != "02:05" {
		t.Fatalf("unexpected clock %q", got)
	}
}

func TestDefenseTeamID(t *testing.T) {
	g, _ := newTestGame(t)

	for _, tt := range []struct {
		offense team.ID
		defense team.ID
	}{
		{team.Red, team.Blue},
		{team.Blue, team.Red},
	} {
		if err := g.SetOffense(tt.offense); err != nil {
			t.Fatalf("set offense: %v", err)
		}
		got, err := g.DefenseTeamID()
		if err != nil || got != tt.defense {
			t.Fatalf("offense %s: expected defense %s, got %s (%v)", tt.offense, tt.defense, got, err)
		}
	}

	g.offense = team.Spectators
	_, err := g.DefenseTeamID()
	if err == nil || !crerr.HasAssertionFailure(err) {
		t.Fatalf("expected assertion failure for corrupted offense, got %v", err)
	}
}

func TestSetOffense_RejectsSpectators(t *testing.T) {
	g, _ := newTestGame(t)

	if err := g.SetOffense(team.Spectators); !errors.Is(err, ErrInvalidTeam) {
		t.Fatalf("expected ErrInvalidTeam, got %v", err)
	}
	if g.OffenseTeamID() != team.Red {
		t.Fatalf("offense must be unchanged")
	}
}

func TestSwapOffense_RefreshesRecorder(t *testing.T) {
	g, _ := newTestGame(t)

	var changed []team.ID
	g.hooks.OffenseChanged = func(o team.ID) { changed = append(changed, o) }

	if !g.Recorder().OnOffense(redQB.ID) {
		t.Fatalf("red qb should be on offense initially")
	}
	got, err := g.SwapOffense()
	if err != nil {
		t.Fatalf("swap: %v", err)
	}
	if got != team.Blue {
		t.Fatalf("expected blue offense, got %s", got)
	}
	if !g.Recorder().OnOffense(blueLB.ID) || g.Recorder().OnOffense(redQB.ID) {
		t.Fatalf("recorder not refreshed after swap")
	}
	if len(changed) != 1 || changed[0] != team.Blue {
		t.Fatalf("expected one offense change hook, got %v", changed)
	}
}

func TestScore(t *testing.T) {
	g, _ := newTestGame(t)

	if err := g.SetScore(team.Red, 14); err != nil {
		t.Fatalf("set red: %v", err)
	}
	if err := g.SetScore(team.Blue, 3); err != nil {
		t.Fatalf("set blue: %v", err)
	}
	if err := g.AddScore(team.Blue, 7); err != nil {
		t.Fatalf("add blue: %v", err)
	}
	if err := g.SetScore(team.Spectators, 1); !errors.Is(err, ErrInvalidTeam) {
		t.Fatalf("expected ErrInvalidTeam, got %v", err)
	}

	if s := g.Score(); s.Red != 14 || s.Blue != 10 {
		t.Fatalf("unexpected score %+v", s)
	}
	if got := g.ScoreboardSummary(); got != "🟥 14 - 10 🟦" {
		t.Fatalf("unexpected scoreboard %q", got)
	}
}

func TestAddScore_OrderIndependent(t *testing.T) {
	type step struct {
		team  team.ID
		delta int
	}
	red := func(d int) step { return step{team.Red, d} }
	blue := func(d int) step { return step{team.Blue, d} }

	tests := []struct {
		name  string
		steps []step
	}{
		{name: "red then blue", steps: []step{red(3), red(7), red(4), blue(2), blue(7)}},
		{name: "blue then red", steps: []step{blue(2), blue(7), red(3), red(7), red(4)}},
		{name: "interleaved", steps: []step{red(3), blue(2), red(7), blue(7), red(4)}},
		{name: "reversed", steps: []step{blue(7), red(4), blue(2), red(7), red(3)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _ := newTestGame(t)
			for _, st := range tt.steps {
				if err := g.AddScore(st.team, st.delta); err != nil {
					t.Fatalf("add score: %v", err)
				}
			}
			if s := g.Score(); s.Red != 14 || s.Blue != 9 {
				t.Fatalf("unexpected score %+v", s)
			}
		})
	}
}

func TestSetScore_Bounds(t *testing.T) {
	g, _ := newTestGame(t)

	for _, value := range []int{0, g.MaxScore()} {
		if err := g.SetScore(team.Red, value); err != nil {
			t.Fatalf("set red %d: %v", value, err)
		}
		if got := g.Score().Red; got != value {
			t.Fatalf("expected red %d, got %d", value, got)
		}
	}
	if g.MaxScore() != DefaultMaxScore {
		t.Fatalf("unexpected max score %d", g.MaxScore())
	}
}

func TestFormatClock(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "00:00"},
		{59 * time.Second, "00:59"},
		{61*time.Second + 900*time.Millisecond, "01:01"},
		{10 * time.Minute, "10:00"},
		{-time.Second, "00:00"},
	}
	for _, tt := range tests {
		if got := FormatClock(tt.in); got != tt.want {
			t.Fatalf("FormatClock(%s): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestStartPlay_AtMostOneActive(t *testing.T) {
	g, _ := newTestGame(t)
	qb := redQB

	first := play.NewRun()
	if err := g.StartPlay(first, &qb); err != nil {
		t.Fatalf("start first: %v", err)
	}
	if g.Phase() != PhaseRunning || first.Stage() != play.StageRunning {
		t.Fatalf("expected running play, phase=%s stage=%s", g.Phase(), first.Stage())
	}

	err := g.StartPlay(play.NewPass(), &qb)
	var pve *PlayValidationError
	if !errors.As(err, &pve) || !errors.Is(err, ErrPlayInProgress) {
		t.Fatalf("expected play-in-progress validation error, got %v", err)
	}
	if active, _ := g.ActivePlay(); active != first {
		t.Fatalf("active play must be unchanged")
	}
}

func TestStartPlay_ValidationFailureLeavesStateUntouched(t *testing.T) {
	g, _ := newTestGame(t)
	lb := blueLB

	err := g.StartPlay(play.NewRun(), &lb)
	var pve *PlayValidationError
	if !errors.As(err, &pve) {
		t.Fatalf("expected PlayValidationError, got %v", err)
	}
	if pve.Reason != play.ErrNotOnOffense.Error() {
		t.Fatalf("reason must be forwarded untouched, got %q", pve.Reason)
	}
	if _, ok := g.ActivePlay(); ok {
		t.Fatalf("no play should be active")
	}
	if g.Phase() != PhaseActive {
		t.Fatalf("expected active phase, got %s", g.Phase())
	}
}

func TestSnapCooldown(t *testing.T) {
	g, c := newTestGame(t)
	qb := redQB

	if err := g.StartPlay(play.NewRun(), &qb); err != nil {
		t.Fatalf("start: %v", err)
	}
	g.EndPlay()

	if g.SnapAllowed() {
		t.Fatalf("snap must be blocked right after a play")
	}
	if err := g.StartPlay(play.NewPass(), &qb); !errors.Is(err, ErrSnapCooldown) {
		t.Fatalf("expected cooldown error, got %v", err)
	}

	c.Advance(time.Second)

	// kickoffs ignore the snap cooldown
	if err := g.StartPlay(play.NewKickOff(0), nil); err != nil {
		t.Fatalf("kickoff during cooldown: %v", err)
	}
	g.EndPlay()

	c.Advance(time.Second)
	if g.SnapAllowed() {
		t.Fatalf("second EndPlay extended the cooldown; snaps must still be blocked")
	}
	if got := g.CooldownRemaining(); got != time.Second {
		t.Fatalf("expected 1s remaining, got %s", got)
	}

	c.Advance(time.Second)
	if !g.SnapAllowed() {
		t.Fatalf("snap must be allowed once the cooldown expires")
	}
	if err := g.StartPlay(play.NewPass(), &qb); err != nil {
		t.Fatalf("start after cooldown: %v", err)
	}
}

func TestEndPlay_IdempotentAndSafe(t *testing.T) {
	g, c := newTestGame(t)

	g.EndPlay()
	if c.Pending() != 0 {
		t.Fatalf("EndPlay with no play must not schedule a cooldown")
	}

	qb := redQB
	p := panickyPlay{Play: play.NewRun()}
	if err := g.StartPlay(p, &qb); err != nil {
		t.Fatalf("start: %v", err)
	}
	g.EndPlay()
	g.EndPlay()

	if _, ok := g.ActivePlay(); ok {
		t.Fatalf("active play must be cleared even when cleanup panics")
	}
	if g.Phase() != PhaseActive {
		t.Fatalf("expected active phase, got %s", g.Phase())
	}
}

func TestEnd_IsTerminal(t *testing.T) {
	g, _ := newTestGame(t)
	qb := redQB

	if err := g.StartPlay(play.NewRun(), &qb); err != nil {
		t.Fatalf("start: %v", err)
	}
	g.End()

	if _, ok := g.ActivePlay(); ok {
		t.Fatalf("End must clean up the running play")
	}
	if g.Phase() != PhaseEnded {
		t.Fatalf("expected ended phase, got %s", g.Phase())
	}
	err := g.StartPlay(play.NewKickOff(0), nil)
	if !errors.Is(err, ErrGameEnded) {
		t.Fatalf("expected ErrGameEnded, got %v", err)
	}
}

func TestHooks(t *testing.T) {
	g, _ := newTestGame(t)

	var events []string
	g.hooks = Hooks{
		PlayStarted: func(p play.Play) { events = append(events, "start:"+string(p.Kind())) },
		PlayEnded:   func(p play.Play) { events = append(events, "end:"+string(p.Kind())) },
	}

	if err := g.StartPlay(play.NewKickOff(0), nil); err != nil {
		t.Fatalf("kickoff: %v", err)
	}
	g.EndPlay()

	if len(events) != 2 || events[0] != "start:kickoff" || events[1] != "end:kickoff" {
		t.Fatalf("unexpected hook events %v", events)
	}
}

func TestSituation(t *testing.T) {
	g, _ := newTestGame(t)
	g.Down().NewSeries(field.PositionOfTeamYard(20, team.Red), team.Red)

	s := g.Situation()
	if s.Offense != team.Red || !s.LOSSet || s.Down != 1 || s.YardsToGet != 10 {
		t.Fatalf("unexpected situation %+v", s)
	}
	if s.Elapsed != 125*time.Second {
		t.Fatalf("unexpected elapsed %s", s.Elapsed)
	}
}
