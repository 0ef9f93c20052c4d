package internal

import (
	"fmt"

	"github.com/BenRutlandWeb/atomic-framework/pkg/container"
	"github.com/BenRutlandWeb/atomic-framework/pkg/events"
	"github.com/BenRutlandWeb/atomic-framework/pkg/mail"
	"github.com/BenRutlandWeb/atomic-framework/pkg/mail/resend"
	"github.com/BenRutlandWeb/atomic-framework/pkg/view"
)

// MailConfig is the "mail" config section.
type MailConfig struct {
	Driver  string        `mapstructure:"driver"`
	From    mail.Address  `mapstructure:"from"`
	ReplyTo mail.Address  `mapstructure:"reply_to"`
	To      mail.Address  `mapstructure:"to"`
	Resend  resend.Config `mapstructure:"resend"`
}

// MailServiceProvider binds the mailer. The transport is chosen by
// mail.driver: "log" (default), "array" or "resend".
type MailServiceProvider struct {
	// Transport overrides the configured driver.
	Transport mail.Transport
}

func (p *MailServiceProvider) Register(app *Application) error {
	container.ProvideNamed(app.Container, ServiceMailer, func(container.Resolver) (*mail.Mailer, error) {
		var cfg MailConfig
		if err := app.Config().Unmarshal("mail", &cfg); err != nil {
			return nil, err
		}

		transport, err := p.transport(app, cfg)
		if err != nil {
			return nil, err
		}

		opts := []mail.Option{
			mail.WithFilters(events.NewFilter(app.Events())),
			mail.WithLogger(app.Logger()),
		}
		if views, err := container.MakeNamed[*view.Factory](app, ServiceView); err == nil {
			opts = append(opts, mail.WithViews(views))
		}
		if fsys := subFS(app, viewsPath(app)); fsys != nil {
			opts = append(opts, mail.WithMarkdown(mail.NewMarkdown(fsys)))
		}

		m := mail.New(transport, opts...)
		if cfg.From.Address != "" {
			m.AlwaysFrom(cfg.From.Address, cfg.From.Name)
		}
		if cfg.ReplyTo.Address != "" {
			m.AlwaysReplyTo(cfg.ReplyTo.Address, cfg.ReplyTo.Name)
		}
		if cfg.To.Address != "" {
			m.AlwaysTo(cfg.To.Address, cfg.To.Name)
		}
		return m, nil
	})
	return nil
}

func (p *MailServiceProvider) transport(app *Application, cfg MailConfig) (mail.Transport, error) {
	if p.Transport != nil {
		return p.Transport, nil
	}
	switch cfg.Driver {
	case "", "log":
		return mail.NewLogTransport(app.Logger()), nil
	case "array":
		return mail.NewArrayTransport(), nil
	case "resend":
		if cfg.Resend.From.Address == "" {
			cfg.Resend.From = cfg.From
		}
		return resend.New(cfg.Resend), nil
	default:
		return nil, fmt.Errorf("%w: mail [%s]", ErrUnknownDriver, cfg.Driver)
	}
}

// Boot sets the default charset and encoding of every outgoing message.
func (p *MailServiceProvider) Boot(app *Application) error {
	return events.NewFilter(app.Events()).Add(mail.SendingHook, mail.DefaultEncoding)
}
