package middlewares

import (
	"slices"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/BenRutlandWeb/atomic-framework/pkg/request"
	"github.com/BenRutlandWeb/atomic-framework/pkg/routing"
)

// Transformer rewrites a single input value. Key is the dotted path of the
// value, with list indexes included ("tags.0").
type Transformer func(key string, value any) any

// TransformsRequest applies fn to every input value of the request, walking
// into nested maps and lists.
func TransformsRequest(fn Transformer) routing.Middleware {
	return func(req *request.Request, next routing.Next) (any, error) {
		req.Transform(func(key string, value any) any {
			return walk(key, value, fn)
		})
		return next(req)
	}
}

func walk(key string, value any, fn Transformer) any {
	switch v := value.(type) {
	case map[string]any:
		for k, inner := range v {
			v[k] = walk(key+"."+k, inner, fn)
		}
		return v
	case []any:
		for i, inner := range v {
			v[i] = walk(key+"."+strconv.Itoa(i), inner, fn)
		}
		return v
	default:
		return fn(key, value)
	}
}

// DefaultTrimExcept are the fields TrimStrings never touches.
var DefaultTrimExcept = []string{"password", "password_confirmation", "current_password"}

// TrimStrings trims surrounding whitespace from string input, except for the
// given keys (DefaultTrimExcept when none are given).
func TrimStrings(except ...string) routing.Middleware {
	if len(except) == 0 {
		except = DefaultTrimExcept
	}
	return TransformsRequest(func(key string, value any) any {
		s, ok := value.(string)
		if !ok || slices.Contains(except, key) {
			return value
		}
		return strings.TrimSpace(s)
	})
}

// ConvertEmptyStringsToNull replaces "" input values with nil.
func ConvertEmptyStringsToNull() routing.Middleware {
	return TransformsRequest(func(_ string, value any) any {
		if s, ok := value.(string); ok && s == "" {
			return nil
		}
		return value
	})
}

// StripTags sanitises string input with policy, or strips every tag when
// policy is nil. Keys in except are left alone.
func StripTags(policy *bluemonday.Policy, except ...string) routing.Middleware {
	if policy == nil {
		policy = bluemonday.StrictPolicy()
	}
	return TransformsRequest(func(key string, value any) any {
		s, ok := value.(string)
		if !ok || slices.Contains(except, key) {
			return value
		}
		return policy.Sanitize(s)
	})
}

// BasicHTMLPolicy allows simple formatting (paragraphs, emphasis, lists,
// code and links) in user content.
func BasicHTMLPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowStandardURLs()
	p.AllowElements(
		"p", "br",
		"strong", "b", "em", "i",
		"ul", "ol", "li",
		"code", "pre", "blockquote",
	)
	p.AllowAttrs("href").OnElements("a")
	p.RequireNoFollowOnLinks(true)
	return p
}
