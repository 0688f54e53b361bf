package httpapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/haxfootball-room/internal/domain/command"
	"github.com/riskibarqy/haxfootball-room/internal/domain/roster"
	"github.com/riskibarqy/haxfootball-room/internal/usecase"
)

func (h *Handler) PostChat(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PostChat")
	defer span.End()

	var req chatRequest
	if err := h.decodeJSON(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.dispatcher.HandleChat(ctx, req.PlayerID, req.Text)
	if err != nil {
		h.logger.WarnContext(ctx, "handle chat failed", "player_id", req.PlayerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, dispatchToDTO(result))
}

func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetState")
	defer span.End()

	snap, err := h.engine.Snapshot(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "room snapshot failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, snapshotToDTO(snap))
}

func (h *Handler) JoinPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.JoinPlayer")
	defer span.End()

	var req joinPlayerRequest
	if err := h.decodeJSON(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	joined, err := h.engine.PlayerJoined(ctx, req.toPlayer())
	if err != nil {
		h.logger.WarnContext(ctx, "player join failed", "player_id", req.ID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, playerToDTO(joined))
}

func (h *Handler) UpdatePlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdatePlayer")
	defer span.End()

	playerID, err := pathPlayerID(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req updatePlayerRequest
	if err := h.decodeJSON(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	updated, err := h.engine.PlayerUpdated(ctx, playerID, req.toPatch())
	if err != nil {
		h.logger.WarnContext(ctx, "player update failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playerToDTO(updated))
}

func (h *Handler) RemovePlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RemovePlayer")
	defer span.End()

	playerID, err := pathPlayerID(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.engine.PlayerLeft(ctx, playerID); err != nil {
		h.logger.WarnContext(ctx, "player leave failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Tick(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Tick")
	defer span.End()

	var req tickRequest
	if err := h.decodeJSON(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	in := usecase.TickInput{Elapsed: time.Duration(req.ElapsedMS) * time.Millisecond}
	if req.ScoreDelta != nil {
		in.ScoreDelta = &usecase.ScoreDelta{Team: req.ScoreDelta.Team, Amount: req.ScoreDelta.Amount}
	}
	if err := h.engine.Tick(ctx, in); err != nil {
		h.logger.WarnContext(ctx, "engine tick failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) PlayResult(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PlayResult")
	defer span.End()

	var req playResultRequest
	if err := h.decodeJSON(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	res, err := h.engine.PlayEnded(ctx, req.toOutcome())
	if err != nil {
		h.logger.WarnContext(ctx, "play result rejected", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, resolutionToDTO(res))
}

func (h *Handler) Game(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Game")
	defer span.End()

	var req gameRequest
	if err := h.decodeJSON(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	switch req.Action {
	case gameActionStart:
		gameID, err := h.engine.GameStarted(ctx)
		if err != nil {
			h.logger.ErrorContext(ctx, "start game failed", "error", err)
			writeError(ctx, w, err)
			return
		}
		writeSuccess(ctx, w, http.StatusCreated, map[string]string{"game_id": gameID})
	default:
		if err := h.engine.GameStopped(ctx); err != nil {
			h.logger.ErrorContext(ctx, "stop game failed", "error", err)
			writeError(ctx, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ListCommands returns the help lines visible at the given admin level.
func (h *Handler) ListCommands(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListCommands")
	defer span.End()

	level := command.LevelHost
	if raw := strings.TrimSpace(r.URL.Query().Get("level")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < command.LevelPlayer || parsed > command.LevelHost {
			writeError(ctx, w, invalidQuery("level must be 0, 1 or 2"))
			return
		}
		level = parsed
	}

	defs := h.catalogue.Registry().Accessible(level)
	items := make([]commandDTO, 0, len(defs))
	for _, def := range defs {
		items = append(items, commandToDTO(def, h.catalogue.Prefix()))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func playerToDTO(p roster.Player) playerDTO {
	return playerDTO{
		ID:         p.ID,
		Name:       p.Name,
		Team:       p.Team.String(),
		AdminLevel: p.AdminLevel,
		Muted:      p.Muted,
	}
}
