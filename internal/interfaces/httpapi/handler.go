package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/riskibarqy/haxfootball-room/internal/platform/logging"
	"github.com/riskibarqy/haxfootball-room/internal/usecase"
)

type Handler struct {
	dispatcher *usecase.Dispatcher
	engine     *usecase.EngineService
	catalogue  *usecase.Catalogue
	logger     *logging.Logger
	validator  *validator.Validate
}

func NewHandler(
	dispatcher *usecase.Dispatcher,
	engine *usecase.EngineService,
	catalogue *usecase.Catalogue,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		dispatcher: dispatcher,
		engine:     engine,
		catalogue:  catalogue,
		logger:     logger.Named("httpapi"),
		validator:  validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeJSON reads a strict JSON body and validates it.
func (h *Handler) decodeJSON(ctx context.Context, r *http.Request, dst any) error {
	decoder := sonic.ConfigDefault.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return h.validateRequest(ctx, dst)
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func pathPlayerID(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.PathValue("playerID"))
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: player id must be a positive integer, got %q", usecase.ErrInvalidInput, raw)
	}
	return id, nil
}

const maxBodyBytes = 64 << 10
