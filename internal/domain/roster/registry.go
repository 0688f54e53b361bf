package roster

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/riskibarqy/haxfootball-room/internal/domain/team"
)

var (
	ErrPlayerNotFound  = errors.New("player not found")
	ErrAmbiguousPlayer = errors.New("player reference is ambiguous")
	ErrDuplicatePlayer = errors.New("player already registered")
)

// Registry tracks connected players. It is owned by the room session and only
// touched from the session loop.
type Registry struct {
	players map[int]Player
}

func NewRegistry() *Registry {
	return &Registry{players: make(map[int]Player)}
}

func (r *Registry) Add(p Player) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if _, exists := r.players[p.ID]; exists {
		return fmt.Errorf("%w: id=%d", ErrDuplicatePlayer, p.ID)
	}
	r.players[p.ID] = p
	return nil
}

func (r *Registry) Remove(id int) (Player, bool) {
	p, ok := r.players[id]
	if ok {
		delete(r.players, id)
	}
	return p, ok
}

func (r *Registry) Get(id int) (Player, bool) {
	p, ok := r.players[id]
	return p, ok
}

func (r *Registry) Update(id int, mutate func(*Player)) (Player, error) {
	p, ok := r.players[id]
	if !ok {
		return Player{}, fmt.Errorf("%w: id=%d", ErrPlayerNotFound, id)
	}
	mutate(&p)
	if err := p.Validate(); err != nil {
		return Player{}, err
	}
	p.ID = id
	r.players[id] = p
	return p, nil
}

func (r *Registry) SetTeam(id int, t team.ID) (Player, error) {
	return r.Update(id, func(p *Player) { p.Team = t })
}

// All returns players ordered by id so output is stable.
func (r *Registry) All() []Player {
	out := make([]Player, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *Registry) ByTeam(t team.ID) []Player {
	out := make([]Player, 0)
	for _, p := range r.All() {
		if p.Team == t {
			out = append(out, p)
		}
	}
	return out
}

func (r *Registry) Len() int {
	return len(r.players)
}

// Resolve turns a free-form chat reference into a player. "#3" selects by
// room id; anything else matches names case-insensitively, preferring an exact
// match over a unique prefix.
func (r *Registry) Resolve(ref string) (Player, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Player{}, fmt.Errorf("%w: empty reference", ErrPlayerNotFound)
	}

	if strings.HasPrefix(ref, "#") {
		id, err := strconv.Atoi(strings.TrimPrefix(ref, "#"))
		if err != nil {
			return Player{}, fmt.Errorf("%w: %s", ErrPlayerNotFound, ref)
		}
		p, ok := r.players[id]
		if !ok {
			return Player{}, fmt.Errorf("%w: %s", ErrPlayerNotFound, ref)
		}
		return p, nil
	}

	needle := strings.ToLower(ref)
	var prefixed []Player
	for _, p := range r.All() {
		name := strings.ToLower(p.Name)
		if name == needle {
			return p, nil
		}
		if strings.HasPrefix(name, needle) {
			prefixed = append(prefixed, p)
		}
	}

	switch len(prefixed) {
	case 0:
		return Player{}, fmt.Errorf("%w: %s", ErrPlayerNotFound, ref)
	case 1:
		return prefixed[0], nil
	default:
		return Player{}, fmt.Errorf("%w: %s matches %d players", ErrAmbiguousPlayer, ref, len(prefixed))
	}
}
