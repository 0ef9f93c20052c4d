package validation

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

// Source provides the data being validated.
type Source interface {
	All() map[string]any
}

// Data is a map-backed Source.
type Data map[string]any

// All returns the map itself.
func (d Data) All() map[string]any { return d }

// Rules maps an attribute to its rules. A value may be a pipe-separated
// string ("required|between:1,5"), a Rule, or a []any mixing both.
type Rules map[string]any

// Messages overrides rule messages, keyed "attribute.rule" or "rule".
type Messages map[string]string

// Validator checks data against rules. It is safe for concurrent use;
// every Validate call starts with an empty error list.
type Validator struct {
	mu             sync.RWMutex
	rules          map[string]Factory
	strictPresence bool
}

// Option configures a Validator.
type Option func(*Validator)

// WithStrictPresence makes non-implicit rules run on every present value,
// including 0, false and "0". By default they are skipped for falsy values.
func WithStrictPresence() Option {
	return func(v *Validator) {
		v.strictPresence = true
	}
}

// WithRule registers a named rule.
func WithRule(name string, f Factory) Option {
	return func(v *Validator) {
		v.rules[name] = f
	}
}

// New creates a validator with the built-in rules.
func New(opts ...Option) *Validator {
	v := &Validator{rules: defaultRules()}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Extend registers or replaces a named rule.
func (v *Validator) Extend(name string, f Factory) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.rules[name] = f
}

// HasRule reports whether name is registered.
func (v *Validator) HasRule(name string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	_, ok := v.rules[name]
	return ok
}

// Validate checks src against rules and returns the validated attributes that
// are present in src. Attributes are checked in sorted order.
func (v *Validator) Validate(src Source, rules Rules, messages Messages) (map[string]any, error) {
	data := map[string]any{}
	if src != nil {
		data = src.All()
	}

	var failures FieldErrors
	validated := make(map[string]any, len(rules))

	for _, attribute := range slices.Sorted(maps.Keys(rules)) {
		list, err := v.parse(rules[attribute])
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", attribute, err)
		}

		value, ok := data[attribute]
		if ok {
			validated[attribute] = value
		}

		for _, rule := range list {
			if !v.shouldRun(rule, value) || rule.Passes(attribute, value) {
				continue
			}
			failures = append(failures, failure(attribute, rule, messages))
		}
	}

	if len(failures) > 0 {
		return nil, &Error{Fields: failures}
	}
	return validated, nil
}

func (v *Validator) shouldRun(rule Rule, value any) bool {
	if implicit, ok := rule.(ImplicitRule); ok && implicit.Implicit() {
		return true
	}
	if v.strictPresence {
		return present(value)
	}
	return Truthy(value)
}

func (v *Validator) parse(def any) ([]Rule, error) {
	switch d := def.(type) {
	case nil:
		return nil, nil
	case Rule:
		return []Rule{d}, nil
	case string:
		var out []Rule
		for part := range strings.SplitSeq(d, "|") {
			r, err := v.fromString(part)
			if err != nil {
				return nil, err
			}
			if r != nil {
				out = append(out, r)
			}
		}
		return out, nil
	case []string:
		items := make([]any, len(d))
		for i, s := range d {
			items[i] = s
		}
		return v.parse(items)
	case []Rule:
		return d, nil
	case []any:
		var out []Rule
		for _, item := range d {
			rs, err := v.parse(item)
			if err != nil {
				return nil, err
			}
			out = append(out, rs...)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: unsupported rule type %T", ErrInvalidRule, def)
	}
}

// fromString resolves "name:arg1,arg2". Unknown names resolve to nil.
func (v *Validator) fromString(s string) (Rule, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	name, rawArgs, hasArgs := strings.Cut(s, ":")
	var args []string
	if hasArgs {
		args = strings.Split(rawArgs, ",")
	}

	v.mu.RLock()
	factory, ok := v.rules[name]
	v.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return factory(args)
}

func failure(attribute string, rule Rule, messages Messages) FieldError {
	name := ruleName(rule)
	msg := rule.Message()
	if custom, ok := messages[attribute+"."+name]; ok {
		msg = custom
	} else if custom, ok := messages[name]; ok {
		msg = custom
	}
	return FieldError{
		Field:   attribute,
		Rule:    name,
		Message: strings.ReplaceAll(msg, ":attribute", attribute),
	}
}

func ruleName(r Rule) string {
	if n, ok := r.(Named); ok {
		return n.Name()
	}
	name := fmt.Sprintf("%T", r)
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return strings.ToLower(strings.TrimPrefix(name, "*"))
}

var defaultValidator = New()

// Validate checks src with the package default validator.
func Validate(src Source, rules Rules, messages Messages) (map[string]any, error) {
	return defaultValidator.Validate(src, rules, messages)
}

// Extend registers a rule on the package default validator.
func Extend(name string, f Factory) {
	defaultValidator.Extend(name, f)
}
