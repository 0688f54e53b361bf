package play

import (
	"time"

	"github.com/riskibarqy/haxfootball-room/internal/domain/roster"
	"github.com/riskibarqy/haxfootball-room/internal/domain/team"
)

// KickOff starts a half or follows a score. The kicking team is whoever is
// on offense when it is validated.
type KickOff struct {
	lifecycle
	startTime time.Duration
}

// NewKickOff builds a kickoff that begins at the given game time. A fresh
// game always kicks off at 0.
func NewKickOff(startTime time.Duration) *KickOff {
	return &KickOff{startTime: startTime}
}

func (p *KickOff) Kind() Kind { return KindKickOff }

func (p *KickOff) StartTime() time.Duration { return p.startTime }

// KickingTeam is valid once the kickoff has been validated.
func (p *KickOff) KickingTeam() team.ID { return p.offense }

func (p *KickOff) Validate(s Situation, by *roster.Player) error {
	if p.stage != StageNew {
		return ErrAlreadyUsed
	}
	if !s.Offense.Playable() {
		return ErrNoOffense
	}
	p.markValidated(s, by)
	return nil
}

type Run struct{ snap }

func NewRun() *Run { return &Run{} }

func (p *Run) Kind() Kind { return KindRun }

func (p *Run) Validate(s Situation, by *roster.Player) error { return p.validateSnap(s, by) }

type Pass struct{ snap }

func NewPass() *Pass { return &Pass{} }

func (p *Pass) Kind() Kind { return KindPass }

func (p *Pass) Validate(s Situation, by *roster.Player) error { return p.validateSnap(s, by) }

type Punt struct{ snap }

func NewPunt() *Punt { return &Punt{} }

func (p *Punt) Kind() Kind { return KindPunt }

func (p *Punt) Validate(s Situation, by *roster.Player) error { return p.validateSnap(s, by) }

// New builds a fresh play of the given kind; kickoffs start at startTime.
func New(kind Kind, startTime time.Duration) (Play, bool) {
	switch kind {
	case KindKickOff:
		return NewKickOff(startTime), true
	case KindRun:
		return NewRun(), true
	case KindPass:
		return NewPass(), true
	case KindPunt:
		return NewPunt(), true
	default:
		return nil, false
	}
}
