package routing_test

import "github.com/BenRutlandWeb/atomic-framework/pkg/validation"

type signupForm struct{}

func (signupForm) Rules() validation.Rules       { return validation.Rules{"email": "required|email"} }
func (signupForm) Messages() validation.Messages { return nil }

type validatorStub struct{}

func (validatorStub) Validate(src validation.Source, rules validation.Rules, messages validation.Messages) (map[string]any, error) {
	return validation.New().Validate(src, rules, messages)
}
