package roster

import (
	"fmt"
	"strings"

	"github.com/riskibarqy/haxfootball-room/internal/domain/team"
)

const shortNameLength = 12

// Player is a connected room member as the command layer sees them.
type Player struct {
	ID         int
	Name       string
	Auth       string
	Team       team.ID
	AdminLevel int
	Muted      bool
}

func (p Player) Validate() error {
	if p.ID <= 0 {
		return fmt.Errorf("player id must be greater than zero")
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("player name is required")
	}
	if p.AdminLevel < 0 {
		return fmt.Errorf("player admin level cannot be negative")
	}
	switch p.Team {
	case team.Spectators, team.Red, team.Blue:
	default:
		return fmt.Errorf("invalid player team: %d", int(p.Team))
	}
	return nil
}

// ShortName trims long nicknames for announcements.
func (p Player) ShortName() string {
	runes := []rune(p.Name)
	if len(runes) <= shortNameLength {
		return p.Name
	}
	return string(runes[:shortNameLength])
}

// StatKey identifies the player in the stat aggregator. Auth survives
// reconnects; guests without auth fall back to their room id.
func (p Player) StatKey() string {
	if p.Auth != "" {
		return p.Auth
	}
	return fmt.Sprintf("id:%d", p.ID)
}
