package app

import (
	"fmt"
	"net/http"

	"github.com/riskibarqy/haxfootball-room/internal/config"
	"github.com/riskibarqy/haxfootball-room/internal/domain/chat"
	"github.com/riskibarqy/haxfootball-room/internal/domain/engine"
	"github.com/riskibarqy/haxfootball-room/internal/infrastructure/memory"
	"github.com/riskibarqy/haxfootball-room/internal/infrastructure/roomhost"
	"github.com/riskibarqy/haxfootball-room/internal/interfaces/httpapi"
	"github.com/riskibarqy/haxfootball-room/internal/platform/logging"
	"github.com/riskibarqy/haxfootball-room/internal/platform/resilience"
	"github.com/riskibarqy/haxfootball-room/internal/usecase"
)

// Room is the wired service: the session loop to run and the HTTP server
// that feeds it.
type Room struct {
	Session *usecase.Session
	Server  *http.Server

	host *roomhost.Client
}

func NewRoom(cfg config.Config, logger *logging.Logger) (*Room, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	room := &Room{}
	chatSink, enginePort, err := room.outbound(cfg, logger)
	if err != nil {
		return nil, err
	}

	room.Session = usecase.NewSession(usecase.SessionOptions{
		Chat:         chatSink,
		Engine:       enginePort,
		SnapCooldown: cfg.RoomSnapCooldown,
		MaxScore:     cfg.RoomMaxScore,
		InboxSize:    cfg.RoomInboxSize,
		Logger:       logger,
	})

	catalogue, err := usecase.NewCatalogue(usecase.CatalogueOptions{
		Prefix:   cfg.RoomCommandPrefix,
		MaxScore: cfg.RoomMaxScore,
	})
	if err != nil {
		room.Close()
		return nil, fmt.Errorf("build command catalogue: %w", err)
	}

	dispatcher := usecase.NewDispatcher(room.Session, catalogue.Registry(), catalogue.Prefix(), logger)
	engineSvc := usecase.NewEngineService(room.Session, logger)

	handler := httpapi.NewHandler(dispatcher, engineSvc, catalogue, logger)
	router := httpapi.NewRouter(handler, logger, httpapi.RouterOptions{
		SwaggerEnabled:     cfg.SwaggerEnabled,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RoomToken:          cfg.RoomToken,
	})

	room.Server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return room, nil
}

// outbound picks where chat and engine directives go: the room host webhook,
// or in-memory logs when no host is configured.
func (r *Room) outbound(cfg config.Config, logger *logging.Logger) (chat.Sink, engine.Port, error) {
	if !cfg.RoomHostEnabled {
		logger.Info("room host delivery disabled, keeping room output in memory")
		return memory.NewChatLog(cfg.RoomChatLogLimit, logger), memory.NewEngineRecorder(cfg.RoomChatLogLimit, logger), nil
	}

	client, err := roomhost.NewClient(roomhost.Config{
		BaseURL:   cfg.RoomHostBaseURL,
		Token:     cfg.RoomHostToken,
		Timeout:   cfg.RoomHostTimeout,
		Workers:   cfg.RoomHostWorkers,
		QueueSize: cfg.RoomHostQueueSize,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.RoomHostCircuitEnabled,
			FailureThreshold: cfg.RoomHostCircuitFailureCount,
			OpenTimeout:      cfg.RoomHostCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.RoomHostCircuitHalfOpenMaxReq,
		},
	}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("build room host client: %w", err)
	}
	r.host = client

	logger.Info("room host delivery enabled",
		"base_url", cfg.RoomHostBaseURL,
		"workers", cfg.RoomHostWorkers,
		"circuit_enabled", cfg.RoomHostCircuitEnabled,
	)
	return client.Chat(), client.Engine(), nil
}

// Close flushes queued room host deliveries. Call it after the session and
// the server have stopped.
func (r *Room) Close() {
	if r.host != nil {
		r.host.Close()
	}
}
