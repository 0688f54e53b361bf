package stats

import (
	"fmt"
	"strings"

	"github.com/riskibarqy/haxfootball-room/internal/domain/play"
)

// Line holds one player's counters for the current game.
type Line struct {
	RushAttempts   int
	RushYards      int
	PassAttempts   int
	Completions    int
	PassYards      int
	Receptions     int
	ReceivingYards int
	Touchdowns     int
	Tackles        int
	Interceptions  int
	Punts          int
	KickReturns    int
	ReturnYards    int
}

// String is the multi-line block the stats command replies with.
func (l Line) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Rushing: %d att, %d yds\n", l.RushAttempts, l.RushYards)
	fmt.Fprintf(&b, "Passing: %d/%d, %d yds\n", l.Completions, l.PassAttempts, l.PassYards)
	fmt.Fprintf(&b, "Receiving: %d rec, %d yds\n", l.Receptions, l.ReceivingYards)
	fmt.Fprintf(&b, "Returns: %d, %d yds | Punts: %d\n", l.KickReturns, l.ReturnYards, l.Punts)
	fmt.Fprintf(&b, "TD: %d | Tackles: %d | INT: %d", l.Touchdowns, l.Tackles, l.Interceptions)
	return b.String()
}

// KeyResolver maps a room id to a stat key. ok=false skips the player.
type KeyResolver func(playerID int) (key string, ok bool)

// Aggregator accumulates in-memory counters keyed by player stat key.
type Aggregator struct {
	lines map[string]*Line
}

func NewAggregator() *Aggregator {
	return &Aggregator{lines: make(map[string]*Line)}
}

func (a *Aggregator) Get(key string) (Line, bool) {
	l, ok := a.lines[key]
	if !ok {
		return Line{}, false
	}
	return *l, true
}

func (a *Aggregator) Len() int {
	return len(a.lines)
}

func (a *Aggregator) update(resolve KeyResolver, playerID int, fn func(*Line)) {
	if playerID == 0 || resolve == nil {
		return
	}
	key, ok := resolve(playerID)
	if !ok || key == "" {
		return
	}
	l, exists := a.lines[key]
	if !exists {
		l = &Line{}
		a.lines[key] = l
	}
	fn(l)
}

// Record credits the players involved in a finished play.
func (a *Aggregator) Record(kind play.Kind, o play.Outcome, resolve KeyResolver) {
	switch kind {
	case play.KindRun:
		a.update(resolve, o.BallcarrierID, func(l *Line) {
			l.RushAttempts++
			l.RushYards += o.Yards
			if o.Touchdown && !o.Turnover {
				l.Touchdowns++
			}
		})
	case play.KindPass:
		a.update(resolve, o.PasserID, func(l *Line) {
			l.PassAttempts++
			if o.Completed {
				l.Completions++
				l.PassYards += o.Yards
			}
		})
		if o.Completed {
			a.update(resolve, o.ReceiverID, func(l *Line) {
				l.Receptions++
				l.ReceivingYards += o.Yards
				if o.Touchdown && !o.Turnover {
					l.Touchdowns++
				}
			})
		}
		if o.Turnover {
			a.update(resolve, o.DefenderID, func(l *Line) {
				l.Interceptions++
				if o.Touchdown {
					l.Touchdowns++
				}
			})
		}
	case play.KindPunt, play.KindKickOff:
		if kind == play.KindPunt {
			a.update(resolve, o.KickerID, func(l *Line) { l.Punts++ })
		}
		a.update(resolve, o.ReturnerID, func(l *Line) {
			l.KickReturns++
			l.ReturnYards += o.ReturnYards
			if o.Touchdown {
				l.Touchdowns++
			}
		})
	}

	a.update(resolve, o.TacklerID, func(l *Line) { l.Tackles++ })
}
