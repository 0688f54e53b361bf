package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/riskibarqy/haxfootball-room/internal/domain/command"
	"github.com/riskibarqy/haxfootball-room/internal/domain/engine"
	"github.com/riskibarqy/haxfootball-room/internal/domain/game"
	"github.com/riskibarqy/haxfootball-room/internal/domain/play"
	"github.com/riskibarqy/haxfootball-room/internal/domain/roster"
	"github.com/riskibarqy/haxfootball-room/internal/domain/team"
	"github.com/riskibarqy/haxfootball-room/internal/platform/logging"
)

type ScoreDelta struct {
	Team   team.ID
	Amount int
}

type TickInput struct {
	Elapsed    time.Duration
	ScoreDelta *ScoreDelta
}

type PlayerPatch struct {
	Team       *team.ID
	AdminLevel *int
	Muted      *bool
}

// StateSnapshot is a read-only copy of the room for the host and operators.
type StateSnapshot struct {
	Phase       game.Phase
	BotOn       bool
	GameID      string
	Score       game.Score
	Offense     string
	Down        int
	YardsToGet  int
	DownText    string
	LOSSet      bool
	ActivePlay  string
	SnapAllowed bool
	Clock       string
	Players     []roster.Player
}

// EngineService applies events from the physics host. Every method hops onto
// the session loop so engine events and commands never interleave.
type EngineService struct {
	session *Session
	logger  *logging.Logger
}

func NewEngineService(session *Session, logger *logging.Logger) *EngineService {
	if logger == nil {
		logger = logging.Default()
	}
	return &EngineService{session: session, logger: logger.Named("engine")}
}

// Tick records the engine clock and applies an optional live score change.
func (s *EngineService) Tick(ctx context.Context, in TickInput) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.EngineService.Tick")
	defer span.End()

	if in.Elapsed < 0 {
		return fmt.Errorf("%w: elapsed must be >= 0", ErrInvalidInput)
	}
	if in.ScoreDelta != nil {
		if !in.ScoreDelta.Team.Playable() {
			return fmt.Errorf("%w: score delta team must be red or blue", ErrInvalidInput)
		}
		if in.ScoreDelta.Amount < 0 {
			return fmt.Errorf("%w: score delta must be >= 0", ErrInvalidInput)
		}
	}

	return s.session.Do(ctx, func() error {
		if in.ScoreDelta == nil || in.ScoreDelta.Amount == 0 {
			s.session.SetElapsed(in.Elapsed)
			return nil
		}
		g, ok := s.session.Game()
		if !ok {
			return ErrNoGame
		}
		delta := in.ScoreDelta
		if current := g.Score().Of(delta.Team); current+delta.Amount > g.MaxScore() {
			return fmt.Errorf("%w: %s score %d + %d exceeds max %d", ErrInvalidInput, delta.Team, current, delta.Amount, g.MaxScore())
		}
		s.session.SetElapsed(in.Elapsed)
		if err := g.AddScore(delta.Team, delta.Amount); err != nil {
			return fmt.Errorf("add score: %w", err)
		}
		s.session.sendScoreboard(ctx)
		return nil
	})
}

// PlayEnded resolves the active play with the engine's outcome.
func (s *EngineService) PlayEnded(ctx context.Context, outcome play.Outcome) (game.Resolution, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EngineService.PlayEnded")
	defer span.End()

	var res game.Resolution
	err := s.session.Do(ctx, func() error {
		g, ok := s.session.Game()
		if !ok {
			return ErrNoGame
		}
		resolved, err := g.ResolvePlay(outcome)
		if err != nil {
			return fmt.Errorf("resolve play: %w", err)
		}
		res = resolved
		s.announceResolution(ctx, resolved)
		return nil
	})
	return res, err
}

func (s *EngineService) announceResolution(ctx context.Context, res game.Resolution) {
	switch {
	case res.Safety:
		s.session.announce(ctx, fmt.Sprintf("SAFETY! %s %s", res.ScoringTeam.Icon(), res.ScoringTeam))
		s.session.sendScoreboard(ctx)
	case res.Touchdown:
		s.session.announce(ctx, fmt.Sprintf("TOUCHDOWN %s %s!", res.ScoringTeam.Icon(), res.ScoringTeam))
		s.session.sendScoreboard(ctx)
	case res.TurnoverOnDowns:
		s.session.announce(ctx, fmt.Sprintf("Turnover on downs, %s ball", res.Offense))
		s.session.sendDownAndDistance(ctx)
	case res.OffenseChanged:
		s.session.announce(ctx, fmt.Sprintf("%s ball", res.Offense))
		s.session.sendDownAndDistance(ctx)
	case res.FirstDown:
		s.session.announce(ctx, "FIRST DOWN!")
		s.session.sendDownAndDistance(ctx)
	default:
		s.session.sendDownAndDistance(ctx)
	}
}

// GameStarted opens a new game when the host starts a match.
func (s *EngineService) GameStarted(ctx context.Context) (string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EngineService.GameStarted")
	defer span.End()

	var gameID string
	err := s.session.Do(ctx, func() error {
		g, err := s.session.StartNewGame(ctx)
		if err != nil {
			return err
		}
		gameID = g.ID()
		s.session.sendLineups(ctx)
		s.session.sendScoreboard(ctx)
		return nil
	})
	return gameID, err
}

// GameStopped ends the current game; stopping an idle room is a no-op.
func (s *EngineService) GameStopped(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.EngineService.GameStopped")
	defer span.End()

	return s.session.Do(ctx, func() error {
		score, ended := s.session.EndGame(ctx)
		if !ended {
			return nil
		}
		s.session.announce(ctx, fmt.Sprintf("Final: %s %d - %d %s", team.Red.Icon(), score.Red, score.Blue, team.Blue.Icon()))
		return nil
	})
}

// PlayerJoined registers a player. With the bot on, joiners get admin and a
// team, and the first one starts the match.
func (s *EngineService) PlayerJoined(ctx context.Context, p roster.Player) (roster.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EngineService.PlayerJoined")
	defer span.End()

	if err := p.Validate(); err != nil {
		return roster.Player{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var joined roster.Player
	err := s.session.Do(ctx, func() error {
		players := s.session.Players()
		first := players.Len() == 0
		if s.session.BotOn() {
			p.AdminLevel = max(p.AdminLevel, command.LevelAdmin)
			p.Team = team.Blue
			if first {
				p.Team = team.Red
			}
		}
		if err := players.Add(p); err != nil {
			return fmt.Errorf("%w: %v", ErrConflict, err)
		}
		joined = p

		if s.session.BotOn() {
			s.session.direct(ctx, engine.Directive{Name: engine.SetAdmin, PlayerID: p.ID, Admin: true})
			s.session.direct(ctx, engine.Directive{Name: engine.SetTeam, PlayerID: p.ID, Team: p.Team.String()})
			if first {
				s.session.direct(ctx, engine.Directive{Name: engine.StartGame})
			}
		}
		s.refreshLineups(ctx)
		s.logger.InfoContext(ctx, "player joined", "player_id", p.ID, "team", p.Team.String())
		return nil
	})
	return joined, err
}

func (s *EngineService) PlayerLeft(ctx context.Context, playerID int) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.EngineService.PlayerLeft")
	defer span.End()

	return s.session.Do(ctx, func() error {
		if _, ok := s.session.Players().Remove(playerID); !ok {
			return fmt.Errorf("%w: player %d", ErrNotFound, playerID)
		}
		s.refreshLineups(ctx)
		s.logger.InfoContext(ctx, "player left", "player_id", playerID)
		return nil
	})
}

// PlayerUpdated applies team, admin or mute changes made on the host.
func (s *EngineService) PlayerUpdated(ctx context.Context, playerID int, patch PlayerPatch) (roster.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EngineService.PlayerUpdated")
	defer span.End()

	var updated roster.Player
	err := s.session.Do(ctx, func() error {
		p, err := s.session.Players().Update(playerID, func(p *roster.Player) {
			if patch.Team != nil {
				p.Team = *patch.Team
			}
			if patch.AdminLevel != nil {
				p.AdminLevel = *patch.AdminLevel
			}
			if patch.Muted != nil {
				p.Muted = *patch.Muted
			}
		})
		if err != nil {
			if errors.Is(err, roster.ErrPlayerNotFound) {
				return fmt.Errorf("%w: player %d", ErrNotFound, playerID)
			}
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		updated = p
		if patch.Team != nil {
			s.refreshLineups(ctx)
		}
		return nil
	})
	return updated, err
}

// refreshLineups re-captures the static lineups wholesale after a roster
// change, but never in the middle of a play.
func (s *EngineService) refreshLineups(ctx context.Context) {
	g, ok := s.session.Game()
	if !ok {
		return
	}
	if _, running := g.ActivePlay(); running {
		return
	}
	g.UpdateStaticPlayers()
	s.session.sendLineups(ctx)
}

// Snapshot copies the room state on the session loop.
func (s *EngineService) Snapshot(ctx context.Context) (StateSnapshot, error) {
	var snap StateSnapshot
	err := s.session.Do(ctx, func() error {
		snap = s.session.Snapshot()
		return nil
	})
	return snap, err
}

// Snapshot must run on the session loop.
func (s *Session) Snapshot() StateSnapshot {
	snap := StateSnapshot{
		Phase:   s.Phase(),
		BotOn:   s.botOn,
		Players: s.players.All(),
		Clock:   game.FormatClock(s.elapsed),
	}
	g, ok := s.Game()
	if !ok {
		return snap
	}
	d := g.Down()
	_, losSet := d.LineOfScrimmage()
	snap.GameID = g.ID()
	snap.Score = g.Score()
	snap.Offense = g.OffenseTeamID().String()
	snap.Down = d.Down()
	snap.YardsToGet = d.YardsToGet()
	snap.DownText = d.String(g.OffenseTeamID())
	snap.LOSSet = losSet
	snap.SnapAllowed = g.SnapAllowed()
	if p, running := g.ActivePlay(); running {
		snap.ActivePlay = string(p.Kind())
	}
	return snap
}
