package request

import "github.com/BenRutlandWeb/atomic-framework/pkg/validation"

// FormRequest declares the rules a request must satisfy before the action
// runs.
type FormRequest interface {
	Rules() validation.Rules
	Messages() validation.Messages
}

// Validated is the input that passed a FormRequest.
type Validated map[string]any

// ValidateForm validates r against form.
func ValidateForm(r *Request, form FormRequest) (Validated, error) {
	data, err := r.Validate(form.Rules(), form.Messages())
	if err != nil {
		return nil, err
	}
	return Validated(data), nil
}
