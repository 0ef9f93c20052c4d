// Package validation checks request input against declarative rules.
//
// Rules are given per attribute, either as pipe-separated names with
// optional comma-separated arguments or as Rule values:
//
//	data, err := validation.Validate(req, validation.Rules{
//	    "email": "required|email",
//	    "age":   []any{"between:18,99", isAdult},
//	}, validation.Messages{
//	    "email.required": "We need your :attribute.",
//	})
//
// Required always runs. Other rules only run on values that are filled in;
// by default a falsy value (0, false, "0", "") skips them, which
// WithStrictPresence narrows to absent or blank values. Failures are returned
// as *Error, which renders as {"errors": {attribute: [messages]}} with status
// 422. Unknown rule names are ignored; malformed arguments fail with
// ErrInvalidRule.
package validation
