package mail

import (
	"github.com/BenRutlandWeb/atomic-framework/pkg/mail"
)

// ContactReceived is sent to the editor when the contact form is submitted.
type ContactReceived struct {
	Name    string
	Email   string
	Message string
}

// Build fills in the message.
func (m ContactReceived) Build(b *mail.Builder) {
	b.Subject("New message from "+m.Name).
		ReplyTo(m.Email, m.Name).
		View("mail.contact-received", m)
}
