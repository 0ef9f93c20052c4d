package validation

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Rule decides whether a single attribute value passes.
type Rule interface {
	Passes(attribute string, value any) bool
	Message() string
}

// ImplicitRule is a rule that runs even when the value is empty.
type ImplicitRule interface {
	Rule
	Implicit() bool
}

// Named rules report the name used for custom message lookups.
type Named interface {
	Name() string
}

// Factory builds a rule from its string arguments (`between:1,5` → ["1","5"]).
type Factory func(args []string) (Rule, error)

// RequiredRule fails on empty values.
type RequiredRule struct{}

func (RequiredRule) Passes(_ string, value any) bool { return Truthy(value) }
func (RequiredRule) Message() string                 { return ":attribute is required" }
func (RequiredRule) Implicit() bool                  { return true }
func (RequiredRule) Name() string                    { return "required" }

var emails = validator.New()

// EmailRule accepts RFC 5322 addresses.
type EmailRule struct{}

func (EmailRule) Passes(_ string, value any) bool {
	s, ok := value.(string)
	if !ok {
		return false
	}
	return emails.Var(s, "required,email") == nil
}

func (EmailRule) Message() string { return ":attribute is not a valid email address" }
func (EmailRule) Name() string    { return "email" }

// BetweenRule accepts numbers (or numeric strings) in [Min, Max].
type BetweenRule struct {
	Min, Max int
}

func (r BetweenRule) Passes(_ string, value any) bool {
	n, ok := toFloat(value)
	if !ok {
		return false
	}
	return n >= float64(r.Min) && n <= float64(r.Max)
}

func (r BetweenRule) Message() string {
	return fmt.Sprintf(":attribute is not between %d and %d.", r.Min, r.Max)
}

func (BetweenRule) Name() string { return "between" }

// Func adapts a closure into a rule.
func Func(name, message string, passes func(attribute string, value any) bool) Rule {
	return funcRule{name: name, message: message, passes: passes}
}

type funcRule struct {
	name    string
	message string
	passes  func(string, any) bool
}

func (r funcRule) Passes(attribute string, value any) bool { return r.passes(attribute, value) }
func (r funcRule) Message() string                         { return r.message }
func (r funcRule) Name() string                            { return r.name }

func defaultRules() map[string]Factory {
	return map[string]Factory{
		"required": func([]string) (Rule, error) { return RequiredRule{}, nil },
		"email":    func([]string) (Rule, error) { return EmailRule{}, nil },
		"between": func(args []string) (Rule, error) {
			if len(args) != 2 {
				return nil, fmt.Errorf("%w: between expects 2 arguments, got %d", ErrInvalidRule, len(args))
			}
			lo, err1 := strconv.Atoi(strings.TrimSpace(args[0]))
			hi, err2 := strconv.Atoi(strings.TrimSpace(args[1]))
			if err1 != nil || err2 != nil {
				return nil, fmt.Errorf("%w: between expects integers, got %q", ErrInvalidRule, strings.Join(args, ","))
			}
			return BetweenRule{Min: lo, Max: hi}, nil
		},
	}
}

// Truthy reports whether v would count as a filled-in value: nil, false,
// zero numbers, "", "0" and empty collections are falsy.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != "" && x != "0"
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	}
	if n, ok := toFloat(v); ok {
		return n != 0
	}
	return true
}

// present reports whether v is set and non-empty; unlike Truthy, zero
// values such as 0, false and "0" count as present.
func present(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(x) != ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil && !math.IsNaN(f)
	case bool:
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}
