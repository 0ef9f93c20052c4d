// Package resend delivers mail through the Resend API.
package resend

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v3"

	"github.com/BenRutlandWeb/atomic-framework/pkg/mail"
)

// Config holds the Resend credentials and default sender. It decodes from
// the "mail.resend" config key.
type Config struct {
	APIKey string       `mapstructure:"api_key"`
	From   mail.Address `mapstructure:"from"`
}

// Transport implements mail.Transport.
type Transport struct {
	client *resend.Client
	from   string
}

// New creates a Resend transport.
func New(cfg Config) *Transport {
	return &Transport{
		client: resend.NewClient(cfg.APIKey),
		from:   cfg.From.String(),
	}
}

// Send implements mail.Transport.
func (t *Transport) Send(ctx context.Context, msg *mail.Message) error {
	_, err := t.client.Emails.SendWithContext(ctx, Request(msg, t.from))
	if err != nil {
		return fmt.Errorf("resend: %w", err)
	}
	return nil
}

// Request maps msg onto a Resend request, using from when the message has
// no sender.
func Request(msg *mail.Message, from string) *resend.SendEmailRequest {
	if msg.From != "" {
		from = msg.From
	}

	req := &resend.SendEmailRequest{
		From:    from,
		To:      msg.To,
		Cc:      msg.Cc,
		Bcc:     msg.Bcc,
		ReplyTo: msg.ReplyTo,
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
		Headers: msg.Headers,
	}

	for _, a := range msg.Attachments {
		req.Attachments = append(req.Attachments, &resend.Attachment{
			Filename:    a.Filename,
			Content:     a.Content,
			ContentType: a.ContentType,
			ContentId:   a.ContentID,
		})
	}
	for name, value := range msg.Tags {
		if value == "" {
			value = "true"
		}
		req.Tags = append(req.Tags, resend.Tag{Name: name, Value: value})
	}
	return req
}
