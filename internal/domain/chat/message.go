// Package chat models what the room says back to players.
package chat

import "context"

type Kind string

const (
	// KindReply goes only to the player who ran the command.
	KindReply Kind = "reply"
	// KindAnnounce goes to everyone in the room.
	KindAnnounce Kind = "announce"
)

// Broadcast is the recipient id for announcements.
const Broadcast = 0

type Message struct {
	Kind Kind   `json:"kind"`
	To   int    `json:"to,omitempty"`
	Text string `json:"text"`
	// AutoSize lets the host shrink long multi-line replies.
	AutoSize bool `json:"autoSize,omitempty"`
}

func Reply(to int, text string) Message {
	return Message{Kind: KindReply, To: to, Text: text, AutoSize: true}
}

func Announce(text string) Message {
	return Message{Kind: KindAnnounce, To: Broadcast, Text: text}
}

// Sink delivers room messages. Implementations must not block the session
// loop for long; slow transports should queue.
type Sink interface {
	Send(ctx context.Context, msg Message) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, msg Message) error

func (f SinkFunc) Send(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}

// Fanout sends to every sink and returns the first error.
type Fanout []Sink

func (f Fanout) Send(ctx context.Context, msg Message) error {
	var first error
	for _, s := range f {
		if s == nil {
			continue
		}
		if err := s.Send(ctx, msg); err != nil && first == nil {
			first = err
		}
	}
	return first
}
