package mail

import "fmt"

// Address is a mailbox with an optional display name.
type Address struct {
	Address string `json:"address" mapstructure:"address"`
	Name    string `json:"name,omitempty" mapstructure:"name"`
}

// String formats the address as "Name <address>" or the bare address.
func (a Address) String() string {
	if a.Name == "" {
		return a.Address
	}
	return fmt.Sprintf("%s <%s>", a.Name, a.Address)
}

// IsZero reports whether the address is empty.
func (a Address) IsZero() bool { return a.Address == "" }

// Tags label a message for providers that support them. An empty value is
// a presence-only tag.
type Tags map[string]string

// Message is a fully built email, handed to a Transport once.
type Message struct {
	Headers     map[string]string `json:"headers,omitempty"`
	Tags        Tags              `json:"tags,omitempty"`
	From        string            `json:"from,omitempty"`
	ReplyTo     string            `json:"reply_to,omitempty"`
	Subject     string            `json:"subject"`
	HTML        string            `json:"html,omitempty"`
	Text        string            `json:"text,omitempty"`
	Charset     string            `json:"charset,omitempty"`
	Encoding    string            `json:"encoding,omitempty"`
	To          []string          `json:"to"`
	Cc          []string          `json:"cc,omitempty"`
	Bcc         []string          `json:"bcc,omitempty"`
	Attachments []Attachment      `json:"attachments,omitempty"`
}

// HasHTML reports whether the message carries an HTML body.
func (m *Message) HasHTML() bool { return m.HTML != "" }

// Validate checks the fields every transport needs.
func (m *Message) Validate() error {
	switch {
	case len(m.To) == 0:
		return ErrNoRecipient
	case m.Subject == "":
		return ErrNoSubject
	case m.HTML == "" && m.Text == "":
		return ErrNoContent
	}
	return nil
}

// Attachment is a file sent with a message.
type Attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type,omitempty"`
	ContentID   string `json:"content_id,omitempty"`
	Content     []byte `json:"content"`
}
