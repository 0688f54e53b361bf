package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/haxfootball-room/internal/domain/chat"
	"github.com/riskibarqy/haxfootball-room/internal/domain/command"
	"github.com/riskibarqy/haxfootball-room/internal/domain/engine"
	"github.com/riskibarqy/haxfootball-room/internal/domain/game"
	"github.com/riskibarqy/haxfootball-room/internal/domain/play"
	"github.com/riskibarqy/haxfootball-room/internal/domain/roster"
	"github.com/riskibarqy/haxfootball-room/internal/domain/team"
	"github.com/riskibarqy/haxfootball-room/internal/platform/clock"
	"github.com/riskibarqy/haxfootball-room/internal/platform/id"
	"github.com/riskibarqy/haxfootball-room/internal/platform/logging"
)

const defaultInboxSize = 256

var ErrSessionStopped = errors.New("room session is not running")

type SessionOptions struct {
	Players      *roster.Registry
	Chat         chat.Sink
	Engine       engine.Port
	Clock        clock.Clock
	IDs          id.Generator
	SnapCooldown time.Duration
	MaxScore     int
	InboxSize    int
	Logger       *logging.Logger
}

// Session is the room. It owns the roster, the current game and the bot
// switch. All state is touched from one goroutine: Run drains the inbox and
// everything else reaches the state through Do or Post. Methods that read or
// mutate state directly must only be called on that goroutine.
type Session struct {
	players  *roster.Registry
	game     *game.State
	botOn    bool
	elapsed  time.Duration
	cooldown time.Duration
	maxScore int

	chat   chat.Sink
	engine engine.Port
	clock  clock.Clock
	ids    id.Generator
	logger *logging.Logger

	inbox   chan func()
	stopped chan struct{}
}

func NewSession(opts SessionOptions) *Session {
	if opts.Players == nil {
		opts.Players = roster.NewRegistry()
	}
	if opts.IDs == nil {
		opts.IDs = id.NewRandomGenerator("game")
	}
	if opts.InboxSize <= 0 {
		opts.InboxSize = defaultInboxSize
	}
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}

	s := &Session{
		players:  opts.Players,
		botOn:    true,
		cooldown: opts.SnapCooldown,
		maxScore: opts.MaxScore,
		chat:     opts.Chat,
		engine:   opts.Engine,
		ids:      opts.IDs,
		logger:   opts.Logger.Named("session"),
		inbox:    make(chan func(), opts.InboxSize),
		stopped:  make(chan struct{}),
	}
	s.clock = opts.Clock
	if s.clock == nil {
		s.clock = clock.NewSystem(s.Post)
	}
	return s
}

// Run processes queued work in arrival order until ctx is done.
func (s *Session) Run(ctx context.Context) error {
	defer close(s.stopped)
	s.logger.Info("room session started")
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("room session stopped")
			return ctx.Err()
		case fn := <-s.inbox:
			s.runSafely(fn)
		}
	}
}

func (s *Session) runSafely(fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("invariant violation", "reason", "session task panicked", "panic", fmt.Sprint(rec))
		}
	}()
	fn()
}

// Do runs fn on the session loop and waits for its result.
func (s *Session) Do(ctx context.Context, fn func() error) error {
	done := make(chan error, 1)
	task := func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- crerr.AssertionFailedf("session task panicked: %v", rec)
			}
		}()
		done <- fn()
	}

	select {
	case s.inbox <- task:
	case <-s.stopped:
		return ErrSessionStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-done:
		return err
	case <-s.stopped:
		return ErrSessionStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Post queues fn without waiting. Work posted after the loop stops is dropped.
func (s *Session) Post(fn func()) {
	select {
	case s.inbox <- fn:
	case <-s.stopped:
	}
}

func (s *Session) Players() *roster.Registry { return s.players }

func (s *Session) Clock() clock.Clock { return s.clock }

// Game returns the running game, if any.
func (s *Session) Game() (*game.State, bool) {
	return s.game, s.game != nil
}

func (s *Session) Phase() game.Phase {
	if s.game == nil {
		return game.PhaseIdle
	}
	return s.game.Phase()
}

// Elapsed is the last game time reported by the engine.
func (s *Session) Elapsed() time.Duration { return s.elapsed }

func (s *Session) SetElapsed(d time.Duration) { s.elapsed = d }

func (s *Session) BotOn() bool { return s.botOn }

func (s *Session) SetBot(on bool) {
	s.botOn = on
	s.logger.Info("bot toggled", "on", on)
}

func (s *Session) Gate() command.Gate {
	gate := command.Gate{}
	if s.game != nil && s.game.Phase() != game.PhaseEnded {
		gate.GameActive = true
		_, gate.PlayRunning = s.game.ActivePlay()
	}
	return gate
}

// StartNewGame replaces any current game with a fresh one and kicks off at
// time zero.
func (s *Session) StartNewGame(ctx context.Context) (*game.State, error) {
	if s.game != nil {
		s.game.End()
	}

	gameID, err := s.ids.NewID()
	if err != nil {
		return nil, fmt.Errorf("new game id: %w", err)
	}
	s.elapsed = 0
	g := game.New(game.Options{
		ID:           gameID,
		Players:      s.players,
		Clock:        s.clock,
		Elapsed:      s,
		SnapCooldown: s.cooldown,
		MaxScore:     s.maxScore,
		Logger:       s.logger,
		Hooks:        s.gameHooks(),
	})
	s.game = g

	if err := g.StartPlay(play.NewKickOff(0), nil); err != nil {
		return nil, fmt.Errorf("start kickoff: %w", err)
	}
	s.logger.InfoContext(ctx, "game started", "game_id", gameID)
	return g, nil
}

// EndGame makes the current game terminal and returns the room to idle.
func (s *Session) EndGame(ctx context.Context) (game.Score, bool) {
	g := s.game
	if g == nil {
		return game.Score{}, false
	}
	g.End()
	s.game = nil
	s.logger.InfoContext(ctx, "game ended", "game_id", g.ID(), "red", g.Score().Red, "blue", g.Score().Blue)
	return g.Score(), true
}

func (s *Session) gameHooks() game.Hooks {
	return game.Hooks{
		PlayStarted: func(p play.Play) {
			s.direct(context.Background(), engine.Directive{Name: engine.StartPlay, Play: string(p.Kind()), Offense: s.offenseName()})
		},
		PlayEnded: func(p play.Play) {
			s.direct(context.Background(), engine.Directive{Name: engine.EndPlay, Play: string(p.Kind())})
			s.sendMarkers(context.Background())
		},
		OffenseChanged: func(team.ID) {
			s.sendLineups(context.Background())
		},
	}
}

func (s *Session) offenseName() string {
	if s.game == nil {
		return ""
	}
	return s.game.OffenseTeamID().String()
}

func (s *Session) reply(ctx context.Context, to int, text string) {
	s.say(ctx, chat.Reply(to, text))
}

func (s *Session) announce(ctx context.Context, text string) {
	s.say(ctx, chat.Announce(text))
}

// say never fails the caller; delivery problems are the transport's concern.
func (s *Session) say(ctx context.Context, msg chat.Message) {
	if s.chat == nil {
		return
	}
	if err := s.chat.Send(ctx, msg); err != nil {
		s.logger.WarnContext(ctx, "chat delivery failed", "kind", string(msg.Kind), "to", msg.To, "error", err)
	}
}

func (s *Session) direct(ctx context.Context, d engine.Directive) {
	if s.engine == nil {
		return
	}
	if s.game != nil && d.GameID == "" {
		d.GameID = s.game.ID()
	}
	if err := s.engine.Send(ctx, d); err != nil {
		s.logger.WarnContext(ctx, "engine directive failed", "directive", string(d.Name), "error", err)
	}
}

func (s *Session) sendMarkers(ctx context.Context) {
	if s.game == nil {
		return
	}
	markers := s.game.Down().Markers(s.game.OffenseTeamID())
	s.direct(ctx, engine.Directive{Name: engine.SetMarkers, Markers: engine.MarkersFrom(markers)})
}

func (s *Session) sendLineups(ctx context.Context) {
	if s.game == nil {
		return
	}
	rec := s.game.Recorder()
	s.direct(ctx, engine.Directive{
		Name:       engine.SetPlayers,
		Offense:    s.game.OffenseTeamID().String(),
		OffenseIDs: playerIDs(rec.Offense()),
		DefenseIDs: playerIDs(rec.Defense()),
	})
}

func (s *Session) sendScoreboard(ctx context.Context) {
	if s.game == nil {
		return
	}
	s.announce(ctx, s.game.ScoreboardSummary())
}

func (s *Session) sendDownAndDistance(ctx context.Context) {
	if s.game == nil {
		return
	}
	s.announce(ctx, s.game.Down().String(s.game.OffenseTeamID()))
}

func playerIDs(players []roster.Player) []int {
	out := make([]int, 0, len(players))
	for _, p := range players {
		out = append(out, p.ID)
	}
	return out
}
