package requests

import (
	"github.com/BenRutlandWeb/atomic-framework/pkg/validation"
)

// ContactRequest validates the contact form.
type ContactRequest struct{}

func (ContactRequest) Rules() validation.Rules {
	return validation.Rules{
		"name":    "required",
		"email":   "required|email",
		"message": "required|between:10,2000",
	}
}

func (ContactRequest) Messages() validation.Messages {
	return validation.Messages{
		"message.between": "Keep the message between 10 and 2000 characters.",
	}
}
