package httpapi

import (
	"fmt"

	"github.com/riskibarqy/haxfootball-room/internal/domain/field"
	"github.com/riskibarqy/haxfootball-room/internal/domain/game"
	"github.com/riskibarqy/haxfootball-room/internal/domain/play"
	"github.com/riskibarqy/haxfootball-room/internal/domain/roster"
	"github.com/riskibarqy/haxfootball-room/internal/domain/team"
	"github.com/riskibarqy/haxfootball-room/internal/usecase"
)

const (
	gameActionStart = "start"
	gameActionStop  = "stop"
)

type chatRequest struct {
	PlayerID int    `json:"player_id" validate:"required,gt=0"`
	Text     string `json:"text" validate:"required,max=140"`
}

type joinPlayerRequest struct {
	ID         int     `json:"id" validate:"required,gt=0"`
	Name       string  `json:"name" validate:"required,max=25"`
	Auth       string  `json:"auth" validate:"omitempty,max=64"`
	Team       team.ID `json:"team" validate:"gte=0,lte=2"`
	AdminLevel int     `json:"admin_level" validate:"gte=0,lte=2"`
}

func (r joinPlayerRequest) toPlayer() roster.Player {
	return roster.Player{
		ID:         r.ID,
		Name:       r.Name,
		Auth:       r.Auth,
		Team:       r.Team,
		AdminLevel: r.AdminLevel,
	}
}

type updatePlayerRequest struct {
	Team       *team.ID `json:"team" validate:"omitempty,gte=0,lte=2"`
	AdminLevel *int     `json:"admin_level" validate:"omitempty,gte=0,lte=2"`
	Muted      *bool    `json:"muted"`
}

func (r updatePlayerRequest) toPatch() usecase.PlayerPatch {
	return usecase.PlayerPatch{Team: r.Team, AdminLevel: r.AdminLevel, Muted: r.Muted}
}

type scoreDeltaRequest struct {
	Team   team.ID `json:"team" validate:"oneof=1 2"`
	Amount int     `json:"amount" validate:"gte=0"`
}

type tickRequest struct {
	ElapsedMS  int64              `json:"elapsed_ms" validate:"gte=0,lte=86400000"`
	ScoreDelta *scoreDeltaRequest `json:"score_delta" validate:"omitempty"`
}

type playResultRequest struct {
	Yards       int      `json:"yards"`
	ReturnYards int      `json:"return_yards"`
	Completed   bool     `json:"completed"`
	Touchdown   bool     `json:"touchdown"`
	Turnover    bool     `json:"turnover"`
	Safety      bool     `json:"safety"`
	EndSpotX    *float64 `json:"end_spot_x"`

	BallcarrierID int `json:"ballcarrier_id" validate:"gte=0"`
	PasserID      int `json:"passer_id" validate:"gte=0"`
	ReceiverID    int `json:"receiver_id" validate:"gte=0"`
	KickerID      int `json:"kicker_id" validate:"gte=0"`
	ReturnerID    int `json:"returner_id" validate:"gte=0"`
	TacklerID     int `json:"tackler_id" validate:"gte=0"`
	DefenderID    int `json:"defender_id" validate:"gte=0"`
}

func (r playResultRequest) toOutcome() play.Outcome {
	o := play.Outcome{
		Yards:         r.Yards,
		ReturnYards:   r.ReturnYards,
		Completed:     r.Completed,
		Touchdown:     r.Touchdown,
		Turnover:      r.Turnover,
		Safety:        r.Safety,
		BallcarrierID: r.BallcarrierID,
		PasserID:      r.PasserID,
		ReceiverID:    r.ReceiverID,
		KickerID:      r.KickerID,
		ReturnerID:    r.ReturnerID,
		TacklerID:     r.TacklerID,
		DefenderID:    r.DefenderID,
	}
	if r.EndSpotX != nil {
		o.EndSpot = &field.Position{X: *r.EndSpotX}
	}
	return o
}

type gameRequest struct {
	Action string `json:"action" validate:"required,oneof=start stop"`
}

type dispatchErrorDTO struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type dispatchDTO struct {
	Handled bool              `json:"handled"`
	Command string            `json:"command,omitempty"`
	Error   *dispatchErrorDTO `json:"error,omitempty"`
}

func dispatchToDTO(r usecase.DispatchResult) dispatchDTO {
	out := dispatchDTO{Handled: r.Handled, Command: r.Command}
	if r.Error != nil {
		out.Error = &dispatchErrorDTO{Kind: string(r.Error.Kind), Message: r.Error.Message}
	}
	return out
}

type playerDTO struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Team       string `json:"team"`
	AdminLevel int    `json:"admin_level"`
	Muted      bool   `json:"muted"`
}

type scoreDTO struct {
	Red  int `json:"red"`
	Blue int `json:"blue"`
}

type stateDTO struct {
	Phase       string      `json:"phase"`
	BotOn       bool        `json:"bot_on"`
	GameID      string      `json:"game_id,omitempty"`
	Score       scoreDTO    `json:"score"`
	Offense     string      `json:"offense,omitempty"`
	Down        int         `json:"down,omitempty"`
	YardsToGet  int         `json:"yards_to_get,omitempty"`
	DownText    string      `json:"down_text,omitempty"`
	LOSSet      bool        `json:"los_set"`
	ActivePlay  string      `json:"active_play,omitempty"`
	SnapAllowed bool        `json:"snap_allowed"`
	Clock       string      `json:"clock"`
	Players     []playerDTO `json:"players"`
}

func snapshotToDTO(s usecase.StateSnapshot) stateDTO {
	players := make([]playerDTO, 0, len(s.Players))
	for _, p := range s.Players {
		players = append(players, playerToDTO(p))
	}
	return stateDTO{
		Phase:       string(s.Phase),
		BotOn:       s.BotOn,
		GameID:      s.GameID,
		Score:       scoreDTO{Red: s.Score.Red, Blue: s.Score.Blue},
		Offense:     s.Offense,
		Down:        s.Down,
		YardsToGet:  s.YardsToGet,
		DownText:    s.DownText,
		LOSSet:      s.LOSSet,
		ActivePlay:  s.ActivePlay,
		SnapAllowed: s.SnapAllowed,
		Clock:       s.Clock,
		Players:     players,
	}
}

type resolutionDTO struct {
	Kind            string `json:"kind"`
	ScoringTeam     string `json:"scoring_team,omitempty"`
	Points          int    `json:"points"`
	Touchdown       bool   `json:"touchdown"`
	Safety          bool   `json:"safety"`
	FirstDown       bool   `json:"first_down"`
	TurnoverOnDowns bool   `json:"turnover_on_downs"`
	Turnover        bool   `json:"turnover"`
	Offense         string `json:"offense"`
	OffenseChanged  bool   `json:"offense_changed"`
}

func resolutionToDTO(r game.Resolution) resolutionDTO {
	out := resolutionDTO{
		Kind:            string(r.Kind),
		Points:          r.Points,
		Touchdown:       r.Touchdown,
		Safety:          r.Safety,
		FirstDown:       r.FirstDown,
		TurnoverOnDowns: r.TurnoverOnDowns,
		Turnover:        r.Turnover,
		Offense:         r.Offense.String(),
		OffenseChanged:  r.OffenseChanged,
	}
	if r.ScoringTeam.Playable() {
		out.ScoringTeam = r.ScoringTeam.String()
	}
	return out
}

type commandDTO struct {
	Name        string   `json:"name"`
	Aliases     []string `json:"aliases,omitempty"`
	Description string   `json:"description"`
	MinLevel    int      `json:"min_admin_level"`
	Help        string   `json:"help"`
}

func commandToDTO(def *usecase.Definition, prefix string) commandDTO {
	return commandDTO{
		Name:        def.Name,
		Aliases:     def.Aliases,
		Description: def.Description,
		MinLevel:    def.Permission.MinAdminLevel,
		Help:        def.HelpLine(prefix),
	}
}

func invalidQuery(message string) error {
	return fmt.Errorf("%w: %s", usecase.ErrInvalidInput, message)
}
