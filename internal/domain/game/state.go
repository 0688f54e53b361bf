// Package game owns the authoritative state of one game: score, possession,
// down and distance and the single active play.
package game

import (
	"errors"
	"fmt"
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/haxfootball-room/internal/domain/down"
	"github.com/riskibarqy/haxfootball-room/internal/domain/play"
	"github.com/riskibarqy/haxfootball-room/internal/domain/roster"
	"github.com/riskibarqy/haxfootball-room/internal/domain/stats"
	"github.com/riskibarqy/haxfootball-room/internal/domain/team"
	"github.com/riskibarqy/haxfootball-room/internal/platform/clock"
	"github.com/riskibarqy/haxfootball-room/internal/platform/logging"
)

const (
	DefaultSnapCooldown = 2 * time.Second
	DefaultMaxScore     = 100
)

var (
	ErrPlayInProgress = errors.New("a play is already running")
	ErrSnapCooldown   = errors.New("snap cooldown is active")
	ErrNoActivePlay   = errors.New("no play is running")
	ErrGameEnded      = errors.New("game has ended")
	ErrInvalidTeam    = errors.New("team must be red or blue")
)

// PlayValidationError carries the reason a play was refused, untouched, back
// to whoever tried to start it.
type PlayValidationError struct {
	Kind   play.Kind
	Reason string
	Err    error
}

func (e *PlayValidationError) Error() string {
	return e.Reason
}

func (e *PlayValidationError) Unwrap() error {
	return e.Err
}

type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseActive  Phase = "game_active"
	PhasePending Phase = "play_pending"
	PhaseRunning Phase = "play_running"
	PhaseEnded   Phase = "game_ended"
)

// ElapsedSource reads the engine's game clock. The game never owns time.
type ElapsedSource interface {
	Elapsed() time.Duration
}

// Hooks let the room push side effects to the engine without the game
// knowing about it. Every hook is optional.
type Hooks struct {
	PlayStarted    func(p play.Play)
	PlayEnded      func(p play.Play)
	OffenseChanged func(offense team.ID)
}

type Options struct {
	ID           string
	Players      *roster.Registry
	Clock        clock.Clock
	Elapsed      ElapsedSource
	SnapCooldown time.Duration
	MaxScore     int
	Logger       *logging.Logger
	Hooks        Hooks
}

type Score struct {
	Red  int
	Blue int
}

func (s Score) Of(t team.ID) int {
	if t == team.Blue {
		return s.Blue
	}
	return s.Red
}

type State struct {
	id      string
	score   Score
	offense team.ID
	active  play.Play
	phase   Phase

	canSnap       bool
	cooldownUntil time.Time
	cooldown      time.Duration
	maxScore      int

	down     *down.State
	recorder *roster.Recorder
	stats    *stats.Aggregator
	players  *roster.Registry

	clock   clock.Clock
	elapsed ElapsedSource
	logger  *logging.Logger
	hooks   Hooks
}

func New(opts Options) *State {
	if opts.Players == nil {
		opts.Players = roster.NewRegistry()
	}
	if opts.Clock == nil {
		opts.Clock = clock.NewSystem(nil)
	}
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	if opts.SnapCooldown < 0 {
		opts.SnapCooldown = 0
	}
	if opts.MaxScore <= 0 {
		opts.MaxScore = DefaultMaxScore
	}

	g := &State{
		id:       opts.ID,
		offense:  team.Red,
		phase:    PhaseActive,
		canSnap:  true,
		cooldown: opts.SnapCooldown,
		maxScore: opts.MaxScore,
		down:     down.New(),
		recorder: roster.NewRecorder(),
		stats:    stats.NewAggregator(),
		players:  opts.Players,
		clock:    opts.Clock,
		elapsed:  opts.Elapsed,
		logger:   opts.Logger.With("game_id", opts.ID),
		hooks:    opts.Hooks,
	}
	g.recorder.Refresh(g.players, g.offense)
	return g
}

func (g *State) ID() string { return g.id }

func (g *State) Phase() Phase { return g.phase }

func (g *State) Score() Score { return g.score }

func (g *State) MaxScore() int { return g.maxScore }

func (g *State) Down() *down.State { return g.down }

func (g *State) Stats() *stats.Aggregator { return g.stats }

func (g *State) Recorder() *roster.Recorder { return g.recorder }

func (g *State) OffenseTeamID() team.ID { return g.offense }

func (g *State) ActivePlay() (play.Play, bool) {
	return g.active, g.active != nil
}

// DefenseTeamID derives the defense from the offense. A stored offense that is
// not red or blue is a programming error, reported as an assertion failure.
func (g *State) DefenseTeamID() (team.ID, error) {
	defense, err := g.offense.Opponent()
	if err != nil {
		return team.Spectators, crerr.AssertionFailedf("offense team id is corrupted: %d", int(g.offense))
	}
	return defense, nil
}

func (g *State) SetOffense(t team.ID) error {
	if !t.Playable() {
		return fmt.Errorf("%w: %d", ErrInvalidTeam, int(t))
	}
	changed := g.offense != t
	g.offense = t
	g.UpdateStaticPlayers()
	if changed && g.hooks.OffenseChanged != nil {
		g.hooks.OffenseChanged(t)
	}
	return nil
}

// SwapOffense hands possession to the defense and refreshes the snap lists.
func (g *State) SwapOffense() (team.ID, error) {
	defense, err := g.DefenseTeamID()
	if err != nil {
		return team.Spectators, err
	}
	if err := g.SetOffense(defense); err != nil {
		return team.Spectators, err
	}
	g.logger.Info("offense swapped", "offense", g.offense.String())
	return g.offense, nil
}

// UpdateStaticPlayers re-captures who lines up on each side of the ball.
func (g *State) UpdateStaticPlayers() {
	g.recorder.Refresh(g.players, g.offense)
}

// SetScore is for administrative correction. Range checks against MaxScore
// belong to the caller.
func (g *State) SetScore(t team.ID, value int) error {
	switch t {
	case team.Red:
		g.score.Red = value
	case team.Blue:
		g.score.Blue = value
	default:
		return fmt.Errorf("%w: %d", ErrInvalidTeam, int(t))
	}
	return nil
}

// AddScore applies live score changes from play results and engine events.
// Callers check the delta against MaxScore.
func (g *State) AddScore(t team.ID, delta int) error {
	switch t {
	case team.Red:
		g.score.Red += delta
	case team.Blue:
		g.score.Blue += delta
	default:
		return fmt.Errorf("%w: %d", ErrInvalidTeam, int(t))
	}
	return nil
}

// SnapAllowed is false while the post-play cooldown is running.
func (g *State) SnapAllowed() bool { return g.canSnap }

// CooldownRemaining is zero when snaps are allowed.
func (g *State) CooldownRemaining() time.Duration {
	if g.canSnap {
		return 0
	}
	remaining := g.cooldownUntil.Sub(g.clock.Now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (g *State) Situation() play.Situation {
	los, set := g.down.LineOfScrimmage()
	return play.Situation{
		Offense:         g.offense,
		LineOfScrimmage: los,
		LOSSet:          set,
		Down:            g.down.Down(),
		YardsToGet:      g.down.YardsToGet(),
		Elapsed:         g.Elapsed(),
	}
}

// StartPlay validates p against the current state and, when it passes, runs
// prepare then run before returning. A failed start leaves state untouched.
func (g *State) StartPlay(p play.Play, by *roster.Player) error {
	if p == nil {
		return crerr.AssertionFailedf("start play called with nil play")
	}
	if g.phase == PhaseEnded {
		return &PlayValidationError{Kind: p.Kind(), Reason: "the game has ended", Err: ErrGameEnded}
	}
	if g.active != nil {
		return &PlayValidationError{Kind: p.Kind(), Reason: "a play is already running", Err: ErrPlayInProgress}
	}
	if p.Kind().IsSnap() && !g.canSnap {
		return ErrSnapCooldown
	}
	if err := p.Validate(g.Situation(), by); err != nil {
		return &PlayValidationError{Kind: p.Kind(), Reason: err.Error(), Err: err}
	}

	g.active = p
	g.phase = PhasePending
	p.Prepare()
	g.phase = PhaseRunning
	p.Run()

	g.logger.Info("play started", "kind", string(p.Kind()), "offense", g.offense.String())
	if g.hooks.PlayStarted != nil {
		g.hooks.PlayStarted(p)
	}
	return nil
}

// EndPlay cleans up the active play and starts the snap cooldown. It is a
// no-op when nothing is running and never panics, even when the play ended
// before it fully started.
func (g *State) EndPlay() {
	p := g.active
	if p == nil {
		return
	}

	g.cleanUp(p)
	g.active = nil
	if g.phase != PhaseEnded {
		g.phase = PhaseActive
	}
	g.startSnapCooldown()

	g.logger.Info("play ended", "kind", string(p.Kind()))
	if g.hooks.PlayEnded != nil {
		g.hooks.PlayEnded(p)
	}
}

func (g *State) cleanUp(p play.Play) {
	defer func() {
		if rec := recover(); rec != nil {
			g.logger.Error("invariant violation", "reason", "play cleanup panicked", "kind", string(p.Kind()), "panic", fmt.Sprint(rec))
		}
	}()
	p.CleanUp()
}

func (g *State) startSnapCooldown() {
	if g.cooldown <= 0 {
		return
	}
	g.canSnap = false
	g.cooldownUntil = g.clock.Now().Add(g.cooldown)
	g.clock.AfterFunc(g.cooldown, g.expireSnapCooldown)
}

// expireSnapCooldown may fire for an older cooldown; it only reopens snaps
// once the latest expiry has passed.
func (g *State) expireSnapCooldown() {
	if g.clock.Now().Before(g.cooldownUntil) {
		return
	}
	g.canSnap = true
}

// End makes the game terminal. Any running play is cleaned up first.
func (g *State) End() {
	g.EndPlay()
	g.phase = PhaseEnded
}

func (g *State) Elapsed() time.Duration {
	if g.elapsed == nil {
		return 0
	}
	return g.elapsed.Elapsed()
}

// CurrentClock renders the engine clock as mm:ss.
func (g *State) CurrentClock() string {
	return FormatClock(g.Elapsed())
}

func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// ScoreboardSummary has no side effects.
func (g *State) ScoreboardSummary() string {
	return fmt.Sprintf("%s %d - %d %s", team.Red.Icon(), g.score.Red, g.score.Blue, team.Blue.Icon())
}

func (g *State) statKey(playerID int) (string, bool) {
	p, ok := g.players.Get(playerID)
	if !ok {
		return "", false
	}
	return p.StatKey(), true
}
