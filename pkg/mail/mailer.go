package mail

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/BenRutlandWeb/atomic-framework/pkg/logger"
	"github.com/BenRutlandWeb/atomic-framework/pkg/view"
)

// SendingHook is applied to every message right before it reaches the
// transport. Listeners receive and return a *Message.
const SendingHook = "mail.sending"

// Views makes html views. *view.Factory satisfies it.
type Views interface {
	Make(name string, data any) (*view.View, error)
}

// Filters applies a named filter. *events.Filter satisfies it.
type Filters interface {
	Apply(hook string, params ...any) any
}

// Queuer defers delivery of a built message.
type Queuer interface {
	EnqueueMail(ctx context.Context, msg *Message) error
}

// Mailer builds mailables and hands them to a transport.
type Mailer struct {
	transport Transport
	views     Views
	markdown  *Markdown
	filters   Filters
	logger    *slog.Logger

	mu      sync.RWMutex
	queue   Queuer
	from    Address
	replyTo Address
	to      Address
}

// Option configures a Mailer.
type Option func(*Mailer)

// WithViews enables Builder.View.
func WithViews(v Views) Option {
	return func(m *Mailer) { m.views = v }
}

// WithMarkdown enables Builder.Markdown.
func WithMarkdown(md *Markdown) Option {
	return func(m *Mailer) { m.markdown = md }
}

// WithFilters applies the mail.sending filter before every send.
func WithFilters(f Filters) Option {
	return func(m *Mailer) { m.filters = f }
}

// WithQueue enables Queue.
func WithQueue(q Queuer) Option {
	return func(m *Mailer) { m.queue = q }
}

// WithLogger sets the mailer logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Mailer) {
		if l != nil {
			m.logger = l
		}
	}
}

// New creates a mailer sending through transport.
func New(transport Transport, opts ...Option) *Mailer {
	m := &Mailer{transport: transport, logger: logger.NewNope()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AlwaysFrom sets the sender of every message.
func (m *Mailer) AlwaysFrom(address string, name ...string) {
	m.mu.Lock()
	m.from = newAddress(address, name)
	m.mu.Unlock()
}

// AlwaysReplyTo sets the reply address of every message.
func (m *Mailer) AlwaysReplyTo(address string, name ...string) {
	m.mu.Lock()
	m.replyTo = newAddress(address, name)
	m.mu.Unlock()
}

// AlwaysTo delivers every message to address only, dropping cc and bcc.
// Useful in development.
func (m *Mailer) AlwaysTo(address string, name ...string) {
	m.mu.Lock()
	m.to = newAddress(address, name)
	m.mu.Unlock()
}

// SetQueue sets the queue used by Queue.
func (m *Mailer) SetQueue(q Queuer) {
	m.mu.Lock()
	m.queue = q
	m.mu.Unlock()
}

// To begins a message to addresses.
func (m *Mailer) To(addresses ...string) *PendingMail {
	return (&PendingMail{mailer: m}).To(addresses...)
}

// Cc begins a message copied to addresses.
func (m *Mailer) Cc(addresses ...string) *PendingMail {
	return (&PendingMail{mailer: m}).Cc(addresses...)
}

// Bcc begins a message blind copied to addresses.
func (m *Mailer) Bcc(addresses ...string) *PendingMail {
	return (&PendingMail{mailer: m}).Bcc(addresses...)
}

// Render builds the mailable and returns its HTML body.
func (m *Mailer) Render(ctx context.Context, mailable Mailable) (string, error) {
	b := newBuilder(ctx, m)
	mailable.Build(b)
	msg, err := b.Message()
	if err != nil {
		return "", err
	}
	return msg.HTML, nil
}

// Build turns the mailable into a message with the global addresses applied.
func (m *Mailer) Build(ctx context.Context, mailable Mailable) (*Message, error) {
	return m.build(ctx, mailable, nil)
}

// Send builds and delivers the mailable.
func (m *Mailer) Send(ctx context.Context, mailable Mailable) error {
	msg, err := m.Build(ctx, mailable)
	if err != nil {
		return err
	}
	return m.SendMessage(ctx, msg)
}

// Queue builds the mailable now and delivers it from the queue.
func (m *Mailer) Queue(ctx context.Context, mailable Mailable) error {
	msg, err := m.Build(ctx, mailable)
	if err != nil {
		return err
	}
	return m.QueueMessage(ctx, msg)
}

// QueueMessage enqueues an already built message.
func (m *Mailer) QueueMessage(ctx context.Context, msg *Message) error {
	m.mu.RLock()
	q := m.queue
	m.mu.RUnlock()
	if q == nil {
		return ErrNoQueue
	}
	return q.EnqueueMail(ctx, msg)
}

// SendMessage applies the mail.sending filter and delivers msg.
func (m *Mailer) SendMessage(ctx context.Context, msg *Message) error {
	if m.transport == nil {
		return ErrNoTransport
	}
	if m.filters != nil {
		if filtered, ok := m.filters.Apply(SendingHook, msg).(*Message); ok && filtered != nil {
			msg = filtered
		}
	}
	if err := msg.Validate(); err != nil {
		return err
	}

	if err := m.transport.Send(ctx, msg); err != nil {
		m.logger.ErrorContext(ctx, "failed to send mail",
			slog.String("subject", msg.Subject),
			slog.Any("error", err),
		)
		return errors.Join(ErrSendFailed, err)
	}
	m.logger.DebugContext(ctx, "mail sent", slog.String("subject", msg.Subject), slog.Int("recipients", len(msg.To)))
	return nil
}

func (m *Mailer) build(ctx context.Context, mailable Mailable, seed func(*Builder)) (*Message, error) {
	b := newBuilder(ctx, m)
	if seed != nil {
		seed(b)
	}
	mailable.Build(b)

	m.mu.RLock()
	from, replyTo, to := m.from, m.replyTo, m.to
	m.mu.RUnlock()

	if !from.IsZero() {
		b.From(from.Address, from.Name)
	}
	if !replyTo.IsZero() {
		b.ReplyTo(replyTo.Address, replyTo.Name)
	}
	if !to.IsZero() {
		b.UnsetRecipients().To(to.String())
	}

	msg, err := b.Message()
	if err != nil {
		return nil, err
	}
	if msg.HasHTML() && msg.Text == "" {
		msg.Text = TextFromHTML(msg.HTML)
	}
	return msg, nil
}

// DefaultEncoding is a mail.sending listener setting UTF-8 and base64.
func DefaultEncoding(msg *Message) *Message {
	if msg.Charset == "" {
		msg.Charset = "UTF-8"
	}
	if msg.Encoding == "" {
		msg.Encoding = "base64"
	}
	return msg
}
