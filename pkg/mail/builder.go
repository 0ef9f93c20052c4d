package mail

import (
	"context"
	"errors"
	"maps"
)

// Mailable describes one kind of message. Build fills the builder; it is
// called once per send.
type Mailable interface {
	Build(m *Builder)
}

// MailableFunc adapts a function to Mailable.
type MailableFunc func(m *Builder)

// Build calls f.
func (f MailableFunc) Build(m *Builder) { f(m) }

// Builder accumulates a Message. Rendering failures are collected and
// reported when the message is taken.
type Builder struct {
	ctx    context.Context
	mailer *Mailer
	msg    Message
	err    error
}

func newBuilder(ctx context.Context, mailer *Mailer) *Builder {
	return &Builder{ctx: ctx, mailer: mailer}
}

// Context returns the context of the send.
func (b *Builder) Context() context.Context { return b.ctx }

// From sets the sender.
func (b *Builder) From(address string, name ...string) *Builder {
	b.msg.From = newAddress(address, name).String()
	return b
}

// ReplyTo sets the reply address.
func (b *Builder) ReplyTo(address string, name ...string) *Builder {
	b.msg.ReplyTo = newAddress(address, name).String()
	return b
}

// To adds recipients.
func (b *Builder) To(addresses ...string) *Builder {
	b.msg.To = append(b.msg.To, addresses...)
	return b
}

// Cc adds carbon copy recipients.
func (b *Builder) Cc(addresses ...string) *Builder {
	b.msg.Cc = append(b.msg.Cc, addresses...)
	return b
}

// Bcc adds blind carbon copy recipients.
func (b *Builder) Bcc(addresses ...string) *Builder {
	b.msg.Bcc = append(b.msg.Bcc, addresses...)
	return b
}

// UnsetRecipients clears to, cc and bcc.
func (b *Builder) UnsetRecipients() *Builder {
	b.msg.To, b.msg.Cc, b.msg.Bcc = nil, nil, nil
	return b
}

// Subject sets the subject.
func (b *Builder) Subject(subject string) *Builder {
	b.msg.Subject = subject
	return b
}

// HTML sets the HTML body.
func (b *Builder) HTML(body string) *Builder {
	b.msg.HTML = body
	return b
}

// Text sets the plain text body.
func (b *Builder) Text(body string) *Builder {
	b.msg.Text = body
	return b
}

// Header sets a custom header.
func (b *Builder) Header(key, value string) *Builder {
	if b.msg.Headers == nil {
		b.msg.Headers = make(map[string]string)
	}
	b.msg.Headers[key] = value
	return b
}

// Tag labels the message.
func (b *Builder) Tag(name string, value ...string) *Builder {
	if b.msg.Tags == nil {
		b.msg.Tags = make(Tags)
	}
	v := ""
	if len(value) > 0 {
		v = value[0]
	}
	b.msg.Tags[name] = v
	return b
}

// Attach adds an attachment.
func (b *Builder) Attach(a Attachment) *Builder {
	b.msg.Attachments = append(b.msg.Attachments, a)
	return b
}

// AttachData adds raw bytes as an attachment.
func (b *Builder) AttachData(filename, contentType string, content []byte) *Builder {
	return b.Attach(Attachment{Filename: filename, ContentType: contentType, Content: content})
}

// View renders the named html view as the HTML body.
func (b *Builder) View(name string, data any) *Builder {
	if b.mailer.views == nil {
		b.err = errors.Join(b.err, ErrNoViews)
		return b
	}
	v, err := b.mailer.views.Make(name, data)
	if err != nil {
		b.err = errors.Join(b.err, ErrRenderFailed, err)
		return b
	}
	html, err := v.HTML()
	if err != nil {
		b.err = errors.Join(b.err, ErrRenderFailed, err)
		return b
	}
	b.msg.HTML = string(html)
	return b
}

// Markdown renders the named markdown template. Its text becomes the plain
// text body, and its front matter subject is used unless one is already set.
func (b *Builder) Markdown(name string, data any) *Builder {
	if b.mailer.markdown == nil {
		b.err = errors.Join(b.err, ErrNoMarkdown)
		return b
	}
	out, err := b.mailer.markdown.Render(name, data)
	if err != nil {
		b.err = errors.Join(b.err, err)
		return b
	}
	b.msg.HTML, b.msg.Text = out.HTML, out.Text
	if b.msg.Subject == "" {
		b.msg.Subject = out.Subject
	}
	return b
}

// Message returns a copy of the accumulated message.
func (b *Builder) Message() (*Message, error) {
	if b.err != nil {
		return nil, b.err
	}
	msg := b.msg
	msg.Headers = maps.Clone(b.msg.Headers)
	msg.Tags = maps.Clone(b.msg.Tags)
	return &msg, nil
}

func newAddress(address string, name []string) Address {
	a := Address{Address: address}
	if len(name) > 0 {
		a.Name = name[0]
	}
	return a
}
