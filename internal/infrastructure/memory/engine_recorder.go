package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/riskibarqy/haxfootball-room/internal/domain/engine"
	"github.com/riskibarqy/haxfootball-room/internal/platform/logging"
)

type EngineRecorder struct {
	mu     sync.RWMutex
	items  []engine.Directive
	limit  int
	logger *logging.Logger
}

func NewEngineRecorder(limit int, logger *logging.Logger) *EngineRecorder {
	if logger == nil {
		logger = logging.Default()
	}
	return &EngineRecorder{limit: limit, logger: logger.Named("engine")}
}

func (r *EngineRecorder) Send(ctx context.Context, d engine.Directive) error {
	r.mu.Lock()
	r.items = append(r.items, d)
	if r.limit > 0 && len(r.items) > r.limit {
		r.items = slices.Delete(r.items, 0, len(r.items)-r.limit)
	}
	r.mu.Unlock()

	r.logger.DebugContext(ctx, "engine directive", "directive", string(d.Name), "game_id", d.GameID)
	return nil
}

func (r *EngineRecorder) Directives() []engine.Directive {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.items)
}

// Last returns the most recent directive with the given name.
func (r *EngineRecorder) Last(name engine.Name) (engine.Directive, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := len(r.items) - 1; i >= 0; i-- {
		if r.items[i].Name == name {
			return r.items[i], true
		}
	}
	return engine.Directive{}, false
}
