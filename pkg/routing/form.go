package routing

import "github.com/BenRutlandWeb/atomic-framework/pkg/request"

// Form validates the request against form before calling fn. A failed
// validation returns the *validation.Error to the exception handler.
//
//	router.Post("contact", routing.Form(ContactRequest{}, func(r *request.Request, data request.Validated) (any, error) {
//	    return sendContactMail(r.Context(), data)
//	}))
func Form[F request.FormRequest](form F, fn func(*request.Request, request.Validated) (any, error)) Action {
	return func(r *request.Request) (any, error) {
		data, err := request.ValidateForm(r, form)
		if err != nil {
			return nil, err
		}
		return fn(r, data)
	}
}
