package team

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotPlayable = errors.New("team is not playable")
	ErrUnknownSide = errors.New("unknown team side")
)

// ID mirrors the room host's team numbering.
type ID int

const (
	Spectators ID = 0
	Red        ID = 1
	Blue       ID = 2
)

// Playable reports whether the id is one of the two teams that can take the field.
func (id ID) Playable() bool {
	return id == Red || id == Blue
}

// Opponent returns the other playable team.
func (id ID) Opponent() (ID, error) {
	switch id {
	case Red:
		return Blue, nil
	case Blue:
		return Red, nil
	default:
		return Spectators, fmt.Errorf("%w: %d", ErrNotPlayable, int(id))
	}
}

func (id ID) String() string {
	switch id {
	case Red:
		return "RED"
	case Blue:
		return "BLUE"
	case Spectators:
		return "SPECTATORS"
	default:
		return fmt.Sprintf("TEAM(%d)", int(id))
	}
}

// Icon is the square the scoreboard prints next to a team.
func (id ID) Icon() string {
	switch id {
	case Red:
		return "🟥"
	case Blue:
		return "🟦"
	default:
		return "⬜"
	}
}

// SideTokens are the literal tokens chat commands accept for a team.
var SideTokens = []string{"blue", "b", "red", "r"}

// ParseSide resolves a chat token such as "r" or "BLUE".
func ParseSide(token string) (ID, error) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "red", "r":
		return Red, nil
	case "blue", "b":
		return Blue, nil
	default:
		return Spectators, fmt.Errorf("%w: %q", ErrUnknownSide, token)
	}
}
