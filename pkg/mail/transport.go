package mail

import (
	"context"
	"log/slog"
	"slices"
	"sync"
)

// Transport delivers built messages.
type Transport interface {
	Send(ctx context.Context, msg *Message) error
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, msg *Message) error

// Send calls f.
func (f TransportFunc) Send(ctx context.Context, msg *Message) error { return f(ctx, msg) }

// LogTransport writes messages to a logger instead of sending them.
type LogTransport struct {
	logger *slog.Logger
}

// NewLogTransport creates a LogTransport.
func NewLogTransport(l *slog.Logger) *LogTransport {
	return &LogTransport{logger: l}
}

// Send logs msg.
func (t *LogTransport) Send(ctx context.Context, msg *Message) error {
	t.logger.InfoContext(ctx, "mail",
		slog.Any("to", msg.To),
		slog.Any("cc", msg.Cc),
		slog.Any("bcc", msg.Bcc),
		slog.String("from", msg.From),
		slog.String("subject", msg.Subject),
		slog.String("text", msg.Text),
	)
	return nil
}

// ArrayTransport keeps sent messages in memory.
type ArrayTransport struct {
	mu       sync.Mutex
	messages []*Message
}

// NewArrayTransport creates an empty ArrayTransport.
func NewArrayTransport() *ArrayTransport {
	return &ArrayTransport{}
}

// Send records msg.
func (t *ArrayTransport) Send(_ context.Context, msg *Message) error {
	t.mu.Lock()
	t.messages = append(t.messages, msg)
	t.mu.Unlock()
	return nil
}

// Messages returns the recorded messages.
func (t *ArrayTransport) Messages() []*Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.messages)
}

// Flush drops the recorded messages.
func (t *ArrayTransport) Flush() {
	t.mu.Lock()
	t.messages = nil
	t.mu.Unlock()
}
