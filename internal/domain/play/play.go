// Package play defines the closed set of plays a game can run. Every variant
// moves through the same lifecycle: validated, prepared, running, cleaned up.
package play

import (
	"errors"
	"time"

	"github.com/riskibarqy/haxfootball-room/internal/domain/field"
	"github.com/riskibarqy/haxfootball-room/internal/domain/roster"
	"github.com/riskibarqy/haxfootball-room/internal/domain/team"
)

var (
	ErrPlayerRequired = errors.New("a player must start this play")
	ErrNotOnOffense   = errors.New("you must be on offense to start this play")
	ErrLOSNotSet      = errors.New("line of scrimmage must be set")
	ErrNoOffense      = errors.New("no team is on offense")
	ErrAlreadyUsed    = errors.New("play has already been started")
)

type Kind string

const (
	KindKickOff Kind = "kickoff"
	KindRun     Kind = "run"
	KindPass    Kind = "pass"
	KindPunt    Kind = "punt"
)

// IsSnap reports whether the play begins from the line of scrimmage. Snap
// plays are subject to the snap cooldown.
func (k Kind) IsSnap() bool {
	switch k {
	case KindRun, KindPass, KindPunt:
		return true
	default:
		return false
	}
}

type Stage int

const (
	StageNew Stage = iota
	StageValidated
	StagePrepared
	StageRunning
	StageCleanedUp
)

func (s Stage) String() string {
	switch s {
	case StageNew:
		return "new"
	case StageValidated:
		return "validated"
	case StagePrepared:
		return "prepared"
	case StageRunning:
		return "running"
	case StageCleanedUp:
		return "cleaned_up"
	default:
		return "unknown"
	}
}

// Situation is the read-only slice of game state a play validates against.
type Situation struct {
	Offense         team.ID
	LineOfScrimmage field.Position
	LOSSet          bool
	Down            int
	YardsToGet      int
	Elapsed         time.Duration
}

// Play is implemented only by the variants in this package.
type Play interface {
	Kind() Kind
	Stage() Stage
	// Validate checks the play against the current situation and the player
	// who triggered it. by is nil for plays the room starts on its own.
	Validate(s Situation, by *roster.Player) error
	Prepare()
	Run()
	// CleanUp is idempotent and safe on a play that never ran.
	CleanUp()
	// StartedBy is the triggering player, if any.
	StartedBy() (roster.Player, bool)
	// Spot is where the ball was placed for the play.
	Spot() field.Position

	sealed()
}

type lifecycle struct {
	stage   Stage
	by      *roster.Player
	offense team.ID
	spot    field.Position
}

func (l *lifecycle) Stage() Stage { return l.stage }

func (l *lifecycle) StartedBy() (roster.Player, bool) {
	if l.by == nil {
		return roster.Player{}, false
	}
	return *l.by, true
}

func (l *lifecycle) Spot() field.Position { return l.spot }

func (l *lifecycle) markValidated(s Situation, by *roster.Player) {
	l.stage = StageValidated
	l.offense = s.Offense
	l.spot = s.LineOfScrimmage
	if by != nil {
		cp := *by
		l.by = &cp
	}
}

func (l *lifecycle) Prepare() {
	if l.stage == StageValidated {
		l.stage = StagePrepared
	}
}

func (l *lifecycle) Run() {
	if l.stage == StagePrepared {
		l.stage = StageRunning
	}
}

func (l *lifecycle) CleanUp() {
	if l.stage == StageCleanedUp {
		return
	}
	l.stage = StageCleanedUp
	l.by = nil
}

func (l *lifecycle) sealed() {}

// snap holds the rules every line-of-scrimmage play shares.
type snap struct {
	lifecycle
}

func (p *snap) validateSnap(s Situation, by *roster.Player) error {
	if p.stage != StageNew {
		return ErrAlreadyUsed
	}
	if !s.Offense.Playable() {
		return ErrNoOffense
	}
	if by == nil {
		return ErrPlayerRequired
	}
	if by.Team != s.Offense {
		return ErrNotOnOffense
	}
	if !s.LOSSet {
		return ErrLOSNotSet
	}
	p.markValidated(s, by)
	return nil
}
