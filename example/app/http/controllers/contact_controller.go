package controllers

import (
	"github.com/BenRutlandWeb/atomic-framework"
	"github.com/BenRutlandWeb/atomic-framework/example/app/mail"
	"github.com/BenRutlandWeb/atomic-framework/pkg/container"
	atomicmail "github.com/BenRutlandWeb/atomic-framework/pkg/mail"
	"github.com/BenRutlandWeb/atomic-framework/pkg/request"
)

// ContactController handles the contact form.
type ContactController struct {
	resolver container.Resolver
}

// NewContactController resolves the mailer lazily through r.
func NewContactController(r container.Resolver) *ContactController {
	return &ContactController{resolver: r}
}

// Submit queues a ContactReceived mail to the configured editor address.
func (c *ContactController) Submit(r *request.Request, _ request.Validated) (any, error) {
	mailer, err := container.MakeNamed[*atomicmail.Mailer](c.resolver, atomic.ServiceMailer)
	if err != nil {
		return nil, err
	}

	err = mailer.Queue(r.Context(), mail.ContactReceived{
		Name:    r.String("name"),
		Email:   r.String("email"),
		Message: r.String("message"),
	})
	if err != nil {
		return nil, err
	}
	return map[string]string{"message": "Thanks, we will be in touch."}, nil
}
