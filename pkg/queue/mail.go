package queue

import (
	"context"

	"github.com/BenRutlandWeb/atomic-framework/pkg/mail"
)

// MailJob is the job name of queued mail.
const MailJob = "mail.send"

// MailQueue hands built messages to a queue.
type MailQueue struct {
	queue Queue
	opts  []DispatchOption
}

// NewMailQueue registers the mail job on q, sending through mailer, and
// returns the mail.Queuer to install on it.
func NewMailQueue(q Queue, mailer *mail.Mailer, opts ...DispatchOption) *MailQueue {
	Register(q, MailJob, func(ctx context.Context, msg *mail.Message) error {
		return mailer.SendMessage(ctx, msg)
	})
	return &MailQueue{queue: q, opts: opts}
}

// EnqueueMail dispatches msg.
func (m *MailQueue) EnqueueMail(ctx context.Context, msg *mail.Message) error {
	return m.queue.Dispatch(ctx, MailJob, msg, m.opts...)
}

var _ mail.Queuer = (*MailQueue)(nil)
