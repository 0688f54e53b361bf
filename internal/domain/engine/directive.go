// Package engine describes what the room asks of the physics host. The host
// owns positions and the ball; the room only sends directives.
package engine

import (
	"context"

	"github.com/riskibarqy/haxfootball-room/internal/domain/down"
)

type Name string

const (
	StartGame   Name = "start_game"
	StopGame    Name = "stop_game"
	StartPlay   Name = "start_play"
	EndPlay     Name = "end_play"
	SetMarkers  Name = "set_markers"
	SetPlayers  Name = "set_players"
	ReleaseBall Name = "release_ball"
	SwapTeams   Name = "swap_teams"
	SetTeam     Name = "set_team"
	SetAdmin    Name = "set_admin"
)

type Markers struct {
	BallX      float64 `json:"ballX"`
	LOSX       float64 `json:"losX"`
	FirstDownX float64 `json:"firstDownX"`
	Visible    bool    `json:"visible"`
}

func MarkersFrom(m down.Markers) *Markers {
	return &Markers{
		BallX:      m.Ball.X,
		LOSX:       m.LOS.X,
		FirstDownX: m.FirstDown.X,
		Visible:    m.Visible,
	}
}

type Directive struct {
	Name     Name     `json:"name"`
	GameID   string   `json:"gameId,omitempty"`
	Play     string   `json:"play,omitempty"`
	Offense  string   `json:"offense,omitempty"`
	PlayerID int      `json:"playerId,omitempty"`
	Team     string   `json:"team,omitempty"`
	Admin    bool     `json:"admin,omitempty"`
	Markers  *Markers `json:"markers,omitempty"`
	// OffenseIDs and DefenseIDs are the static lineups for set_players.
	OffenseIDs []int `json:"offenseIds,omitempty"`
	DefenseIDs []int `json:"defenseIds,omitempty"`
}

// Port delivers directives to the host. Delivery is best effort.
type Port interface {
	Send(ctx context.Context, d Directive) error
}
