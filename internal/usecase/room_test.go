package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/haxfootball-room/internal/domain/chat"
	"github.com/riskibarqy/haxfootball-room/internal/domain/engine"
	"github.com/riskibarqy/haxfootball-room/internal/domain/game"
	"github.com/riskibarqy/haxfootball-room/internal/domain/roster"
	"github.com/riskibarqy/haxfootball-room/internal/domain/team"
	"github.com/riskibarqy/haxfootball-room/internal/platform/clock"
	"github.com/riskibarqy/haxfootball-room/internal/platform/id"
	"github.com/riskibarqy/haxfootball-room/internal/platform/logging"
)

var (
	coach  = roster.Player{ID: 1, Name: "coach", Auth: "auth-coach", Team: team.Red, AdminLevel: 1}
	rookie = roster.Player{ID: 2, Name: "rookie", Auth: "auth-rookie", Team: team.Blue}
	quiet  = roster.Player{ID: 3, Name: "quiet", Team: team.Red, AdminLevel: 1, Muted: true}
)

type testRoom struct {
	session    *Session
	dispatcher *Dispatcher
	clock      *clock.Manual
	messages   []chat.Message
	directives []engine.Directive
}

func newTestRoom(t *testing.T, players ...roster.Player) *testRoom {
	t.Helper()

	room := &testRoom{clock: clock.NewManual(time.Date(2026, 10, 18, 20, 0, 0, 0, time.UTC))}
	registry := roster.NewRegistry()
	for _, p := range players {
		if err := registry.Add(p); err != nil {
			t.Fatalf("add player %d: %v", p.ID, err)
		}
	}

	room.session = NewSession(SessionOptions{
		Players: registry,
		Chat: chat.SinkFunc(func(_ context.Context, msg chat.Message) error {
			room.messages = append(room.messages, msg)
			return nil
		}),
		Engine:       engineFunc(func(d engine.Directive) { room.directives = append(room.directives, d) }),
		Clock:        room.clock,
		IDs:          id.NewSequence("game"),
		SnapCooldown: game.DefaultSnapCooldown,
		Logger:       logging.NewNop(),
	})

	catalogue, err := NewCatalogue(CatalogueOptions{Prefix: "!", MaxScore: 100, CoinFlip: func() bool { return true }})
	if err != nil {
		t.Fatalf("new catalogue: %v", err)
	}
	room.dispatcher = NewDispatcher(room.session, catalogue.Registry(), catalogue.Prefix(), logging.NewNop())
	return room
}

// startIdleGame starts a game, ends the opening kickoff and waits out the
// snap cooldown so commands run between plays.
func (r *testRoom) startIdleGame(t *testing.T) *game.State {
	t.Helper()

	g, err := r.session.StartNewGame(context.Background())
	if err != nil {
		t.Fatalf("start game: %v", err)
	}
	g.EndPlay()
	r.clock.Advance(game.DefaultSnapCooldown)
	r.reset()
	return g
}

func (r *testRoom) say(author roster.Player, text string) DispatchResult {
	return r.dispatcher.Dispatch(context.Background(), author, text)
}

func (r *testRoom) reset() {
	r.messages = nil
	r.directives = nil
}

func (r *testRoom) replies(to int) []string {
	var out []string
	for _, m := range r.messages {
		if m.Kind == chat.KindReply && m.To == to {
			out = append(out, m.Text)
		}
	}
	return out
}

func (r *testRoom) announcements() []string {
	var out []string
	for _, m := range r.messages {
		if m.Kind == chat.KindAnnounce {
			out = append(out, m.Text)
		}
	}
	return out
}

type engineFunc func(d engine.Directive)

func (f engineFunc) Send(_ context.Context, d engine.Directive) error {
	f(d)
	return nil
}
