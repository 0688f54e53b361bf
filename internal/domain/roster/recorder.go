package roster

import "github.com/riskibarqy/haxfootball-room/internal/domain/team"

// Recorder keeps the offense/defense lists captured for the next snap. The
// lists are replaced wholesale on every refresh, never patched.
type Recorder struct {
	offense []Player
	defense []Player
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Refresh(registry *Registry, offense team.ID) {
	defense, err := offense.Opponent()
	if err != nil || registry == nil {
		r.offense, r.defense = nil, nil
		return
	}
	r.offense = registry.ByTeam(offense)
	r.defense = registry.ByTeam(defense)
}

func (r *Recorder) Offense() []Player {
	return append([]Player(nil), r.offense...)
}

func (r *Recorder) Defense() []Player {
	return append([]Player(nil), r.defense...)
}

// OnOffense reports whether the player was on offense at the last refresh.
func (r *Recorder) OnOffense(id int) bool {
	for _, p := range r.offense {
		if p.ID == id {
			return true
		}
	}
	return false
}
