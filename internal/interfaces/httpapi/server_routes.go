package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerCatalogueRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/commands", handler.ListCommands)
}

// registerRoomRoutes are called by the room host and share its token.
func registerRoomRoutes(mux *http.ServeMux, handler *Handler, roomToken string) {
	room := func(h http.HandlerFunc) http.Handler {
		return RequireRoomToken(roomToken, h)
	}

	mux.Handle("POST /v1/room/chat", room(handler.PostChat))
	mux.Handle("GET /v1/room/state", room(handler.GetState))

	mux.Handle("POST /v1/room/players", room(handler.JoinPlayer))
	mux.Handle("PATCH /v1/room/players/{playerID}", room(handler.UpdatePlayer))
	mux.Handle("DELETE /v1/room/players/{playerID}", room(handler.RemovePlayer))

	mux.Handle("POST /v1/room/engine/tick", room(handler.Tick))
	mux.Handle("POST /v1/room/engine/play-result", room(handler.PlayResult))
	mux.Handle("POST /v1/room/engine/game", room(handler.Game))
}
