package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrInvalidRule is returned for rule definitions that cannot be parsed.
var ErrInvalidRule = errors.New("validation: invalid rule definition")

// FieldError is a single failed rule.
type FieldError struct {
	Field   string
	Rule    string
	Message string
}

// FieldErrors is the ordered list of failures.
type FieldErrors []FieldError

// Get returns the messages recorded for field.
func (fe FieldErrors) Get(field string) []string {
	var msgs []string
	for _, e := range fe {
		if e.Field == field {
			msgs = append(msgs, e.Message)
		}
	}
	return msgs
}

// Has reports whether field failed any rule.
func (fe FieldErrors) Has(field string) bool {
	for _, e := range fe {
		if e.Field == field {
			return true
		}
	}
	return false
}

// Bag groups the messages by attribute.
func (fe FieldErrors) Bag() Bag {
	bag := make(Bag, len(fe))
	for _, e := range fe {
		bag[e.Field] = append(bag[e.Field], e.Message)
	}
	return bag
}

// Bag maps an attribute to its messages, in rule order.
type Bag map[string][]string

// First returns the first message for field or "".
func (b Bag) First(field string) string {
	if msgs := b[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Error is returned by Validate when at least one rule fails.
type Error struct {
	Fields FieldErrors
}

func (e *Error) Error() string {
	switch n := len(e.Fields); n {
	case 0:
		return "validation failed"
	case 1:
		return "validation failed: " + e.Fields[0].Message
	default:
		return fmt.Sprintf("validation failed: %s (and %d more)", e.Fields[0].Message, n-1)
	}
}

// Bag returns the messages grouped by attribute.
func (e *Error) Bag() Bag {
	return e.Fields.Bag()
}

// StatusCode is the HTTP status a validation failure is reported with.
func (e *Error) StatusCode() int {
	return http.StatusUnprocessableEntity
}

// MarshalJSON renders {"errors": {attribute: [messages]}}.
func (e *Error) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]Bag{"errors": e.Bag()})
}

// IsValidationError reports whether err carries a validation failure.
func IsValidationError(err error) bool {
	var ve *Error
	return errors.As(err, &ve)
}

// ExtractFieldErrors returns the failures carried by err, or nil.
func ExtractFieldErrors(err error) FieldErrors {
	var ve *Error
	if errors.As(err, &ve) {
		return ve.Fields
	}
	return nil
}
