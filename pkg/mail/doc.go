// Package mail composes and sends email.
//
// A Mailable fills a Builder; the Mailer applies its global addresses, runs
// the mail.sending filter and hands the Message to a Transport:
//
//	type Welcome struct{ Name string }
//
//	func (w Welcome) Build(m *mail.Builder) {
//		m.Markdown("emails.welcome", w)
//	}
//
//	mailer := mail.New(resend.New(cfg), mail.WithMarkdown(mail.NewMarkdown(emails)))
//	mailer.AlwaysFrom("team@example.com", "Team")
//	err := mailer.To("ann@example.com").Send(ctx, Welcome{Name: "Ann"})
//
// Markdown templates are text/template files with YAML front matter:
//
//	---
//	subject: Welcome {{.Name}}
//	---
//	Hello **{{.Name}}**!
//
//	[button:Get started](https://example.com/start)
//
// When a message has an HTML body and no text body, a plain text alternative
// is derived from the HTML.
package mail
