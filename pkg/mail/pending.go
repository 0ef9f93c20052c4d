package mail

import "context"

// PendingMail holds recipients until a mailable is sent.
type PendingMail struct {
	mailer *Mailer
	to     []string
	cc     []string
	bcc    []string
}

// To sets the recipients.
func (p *PendingMail) To(addresses ...string) *PendingMail {
	p.to = addresses
	return p
}

// Cc sets the carbon copy recipients.
func (p *PendingMail) Cc(addresses ...string) *PendingMail {
	p.cc = addresses
	return p
}

// Bcc sets the blind carbon copy recipients.
func (p *PendingMail) Bcc(addresses ...string) *PendingMail {
	p.bcc = addresses
	return p
}

// Send delivers the mailable to the pending recipients.
func (p *PendingMail) Send(ctx context.Context, mailable Mailable) error {
	msg, err := p.mailer.build(ctx, mailable, p.fill)
	if err != nil {
		return err
	}
	return p.mailer.SendMessage(ctx, msg)
}

// Queue enqueues the mailable for the pending recipients.
func (p *PendingMail) Queue(ctx context.Context, mailable Mailable) error {
	msg, err := p.mailer.build(ctx, mailable, p.fill)
	if err != nil {
		return err
	}
	return p.mailer.QueueMessage(ctx, msg)
}

func (p *PendingMail) fill(b *Builder) {
	b.To(p.to...).Cc(p.cc...).Bcc(p.bcc...)
}
