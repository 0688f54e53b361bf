package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/riskibarqy/haxfootball-room/internal/domain/chat"
	"github.com/riskibarqy/haxfootball-room/internal/platform/logging"
)

// ChatLog keeps every room message in memory. It backs the room when no host
// webhook is configured and lets operators read back what the room said.
type ChatLog struct {
	mu     sync.RWMutex
	items  []chat.Message
	limit  int
	logger *logging.Logger
}

// NewChatLog keeps at most limit messages; limit <= 0 keeps everything.
func NewChatLog(limit int, logger *logging.Logger) *ChatLog {
	if logger == nil {
		logger = logging.Default()
	}
	return &ChatLog{limit: limit, logger: logger.Named("chat")}
}

func (l *ChatLog) Send(ctx context.Context, msg chat.Message) error {
	l.mu.Lock()
	l.items = append(l.items, msg)
	if l.limit > 0 && len(l.items) > l.limit {
		l.items = slices.Delete(l.items, 0, len(l.items)-l.limit)
	}
	l.mu.Unlock()

	l.logger.DebugContext(ctx, "room message", "kind", string(msg.Kind), "to", msg.To, "text", msg.Text)
	return nil
}

func (l *ChatLog) Messages() []chat.Message {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return slices.Clone(l.items)
}

func (l *ChatLog) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.items = nil
}
