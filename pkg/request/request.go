package request

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"mime"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/BenRutlandWeb/atomic-framework/pkg/logger"
	"github.com/BenRutlandWeb/atomic-framework/pkg/validation"
)

const defaultMaxBodySize = 10 << 20

// Validator validates a request's input.
type Validator interface {
	Validate(src validation.Source, rules validation.Rules, messages validation.Messages) (map[string]any, error)
}

// Request wraps an inbound HTTP request with a mutable input bag.
//
// Input comes from the query string for GET and HEAD requests and from the
// body (JSON or form encoded) otherwise; that bag is the input source. All
// merges the query string under the input source.
type Request struct {
	r      *http.Request
	w      http.ResponseWriter
	logger *slog.Logger

	query  map[string]any
	body   map[string]any
	params map[string]string
	attrs  map[any]any

	userResolver  func(*Request) any
	routeResolver func() any
	validator     Validator
}

// Option configures a Request.
type Option func(*options)

type options struct {
	logger      *slog.Logger
	validator   Validator
	maxBodySize int64
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithValidator sets the validator used by Validate.
func WithValidator(v Validator) Option {
	return func(o *options) {
		o.validator = v
	}
}

// WithMaxBodySize limits how much of the body is read. Defaults to 10MB.
func WithMaxBodySize(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxBodySize = n
		}
	}
}

// New captures r. The body is read eagerly; a malformed JSON or form body
// fails with ErrMalformedBody.
func New(w http.ResponseWriter, r *http.Request, opts ...Option) (*Request, error) {
	o := options{logger: logger.NewNope(), maxBodySize: defaultMaxBodySize}
	for _, opt := range opts {
		opt(&o)
	}

	req := &Request{
		r:         r,
		w:         w,
		logger:    o.logger,
		query:     flatten(r.URL.Query()),
		body:      map[string]any{},
		params:    map[string]string{},
		attrs:     map[any]any{},
		validator: o.validator,
	}

	if r.Body != nil && r.Body != http.NoBody && !req.readsQuery() {
		body, err := parseBody(w, r, o.maxBodySize)
		if err != nil {
			return nil, errors.Join(ErrMalformedBody, err)
		}
		req.body = body
	}
	return req, nil
}

// FromHTTP is New for callers that cannot fail, such as tests. A malformed
// body leaves the input source empty.
func FromHTTP(w http.ResponseWriter, r *http.Request, opts ...Option) *Request {
	req, err := New(w, r, opts...)
	if err != nil {
		return &Request{
			r: r, w: w, logger: logger.NewNope(),
			query: flatten(r.URL.Query()), body: map[string]any{},
			params: map[string]string{}, attrs: map[any]any{},
		}
	}
	return req
}

func parseBody(w http.ResponseWriter, r *http.Request, limit int64) (map[string]any, error) {
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch {
	case mediaType == "application/json" || strings.HasSuffix(mediaType, "+json"):
		out := map[string]any{}
		if err := json.NewDecoder(r.Body).Decode(&out); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		return out, nil
	case mediaType == "multipart/form-data":
		if err := r.ParseMultipartForm(limit); err != nil {
			return nil, err
		}
		return flatten(r.PostForm), nil
	default:
		if err := r.ParseForm(); err != nil {
			return nil, err
		}
		return flatten(r.PostForm), nil
	}
}

// flatten keeps single values as strings and repeated ones as []any.
// Keys ending in [] are always lists, with the brackets stripped.
func flatten(values url.Values) map[string]any {
	out := make(map[string]any, len(values))
	for key, vals := range values {
		if name, isList := strings.CutSuffix(key, "[]"); isList {
			list := make([]any, len(vals))
			for i, v := range vals {
				list[i] = v
			}
			out[name] = list
			continue
		}
		switch len(vals) {
		case 0:
			out[key] = ""
		case 1:
			out[key] = vals[0]
		default:
			list := make([]any, len(vals))
			for i, v := range vals {
				list[i] = v
			}
			out[key] = list
		}
	}
	return out
}

func (r *Request) readsQuery() bool {
	return r.r.Method == http.MethodGet || r.r.Method == http.MethodHead
}

func (r *Request) source() map[string]any {
	if r.readsQuery() {
		return r.query
	}
	return r.body
}

// Request returns the underlying HTTP request.
func (r *Request) Request() *http.Request { return r.r }

// Response returns the response writer.
func (r *Request) Response() http.ResponseWriter { return r.w }

// SetResponse replaces the response writer, for middleware that wraps it.
func (r *Request) SetResponse(w http.ResponseWriter) { r.w = w }

// Context returns the request context.
func (r *Request) Context() context.Context { return r.r.Context() }

// WithContext replaces the request context.
func (r *Request) WithContext(ctx context.Context) {
	r.r = r.r.WithContext(ctx)
}

// Logger returns the request logger.
func (r *Request) Logger() *slog.Logger { return r.logger }

// Method returns the HTTP method.
func (r *Request) Method() string { return r.r.Method }

// IsMethod reports whether the method matches, case-insensitively.
func (r *Request) IsMethod(method string) bool {
	return strings.EqualFold(r.r.Method, method)
}

// All returns the query string merged with the input source.
// Input source values win.
func (r *Request) All() map[string]any {
	out := maps.Clone(r.query)
	maps.Copy(out, r.source())
	return out
}

// Only returns the given keys of All that are present.
func (r *Request) Only(keys ...string) map[string]any {
	all := r.All()
	out := make(map[string]any, len(keys))
	for _, k := range keys {
		if v, ok := all[k]; ok {
			out[k] = v
		}
	}
	return out
}

// Except returns All without the given keys.
func (r *Request) Except(keys ...string) map[string]any {
	all := r.All()
	for _, k := range keys {
		delete(all, k)
	}
	return all
}

// Keys returns the sorted keys of All.
func (r *Request) Keys() []string {
	return slices.Sorted(maps.Keys(r.All()))
}

// Input returns a value from All, or def when absent.
func (r *Request) Input(key string, def ...any) any {
	if v, ok := r.All()[key]; ok {
		return v
	}
	if len(def) > 0 {
		return def[0]
	}
	return nil
}

// String returns a value from All as a string.
func (r *Request) String(key string, def ...string) string {
	v, ok := r.All()[key]
	if !ok || v == nil {
		if len(def) > 0 {
			return def[0]
		}
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Has reports whether every key is present.
func (r *Request) Has(keys ...string) bool {
	all := r.All()
	for _, k := range keys {
		if _, ok := all[k]; !ok {
			return false
		}
	}
	return true
}

// Filled reports whether key is present and truthy.
func (r *Request) Filled(key string) bool {
	return validation.Truthy(r.Input(key))
}

// Merge adds input to the input source, overwriting existing keys.
func (r *Request) Merge(input map[string]any) *Request {
	maps.Copy(r.source(), input)
	return r
}

// Replace swaps the input source for input.
func (r *Request) Replace(input map[string]any) *Request {
	src := r.source()
	clear(src)
	maps.Copy(src, input)
	return r
}

// Transform rewrites every top-level input value, query string included.
func (r *Request) Transform(fn func(key string, value any) any) {
	for _, m := range []map[string]any{r.query, r.body} {
		for k, v := range m {
			m[k] = fn(k, v)
		}
	}
}

// Set writes a single input value.
func (r *Request) Set(key string, value any) {
	r.source()[key] = value
}

// Unset removes key from both the input source and the query.
func (r *Request) Unset(key string) {
	delete(r.source(), key)
	delete(r.query, key)
}

// Query returns a query string value.
func (r *Request) Query(key string, def ...string) string {
	if v, ok := r.query[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
		return fmt.Sprint(v)
	}
	if len(def) > 0 {
		return def[0]
	}
	return ""
}

// Param returns a route parameter.
func (r *Request) Param(name string) string {
	return r.params[name]
}

// Params returns a copy of the route parameters.
func (r *Request) Params() map[string]string {
	return maps.Clone(r.params)
}

// SetParams records route parameters and merges them into the input source.
// Empty optional parameters are skipped.
func (r *Request) SetParams(params map[string]string) {
	for k, v := range params {
		if v == "" {
			continue
		}
		r.params[k] = v
		r.source()[k] = v
	}
}

// Header returns a request header, or def when missing.
func (r *Request) Header(name string, def ...string) string {
	if v := r.r.Header.Get(name); v != "" {
		return v
	}
	if len(def) > 0 {
		return def[0]
	}
	return ""
}

// HasHeader reports whether the header was sent.
func (r *Request) HasHeader(name string) bool {
	_, ok := r.r.Header[http.CanonicalHeaderKey(name)]
	return ok
}

// Root returns scheme and host with no trailing slash.
func (r *Request) Root() string {
	scheme := "http"
	if r.r.TLS != nil || strings.EqualFold(r.r.Header.Get("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return strings.TrimRight(scheme+"://"+r.r.Host, "/")
}

// URL returns the request URL without the query string.
func (r *Request) URL() string {
	return r.Root() + r.r.URL.Path
}

// FullURL returns the request URL including the query string.
func (r *Request) FullURL() string {
	if q := r.r.URL.RawQuery; q != "" {
		return r.URL() + "?" + q
	}
	return r.URL()
}

// Path returns the request path.
func (r *Request) Path() string { return r.r.URL.Path }

// WantsJSON reports whether the client asked for a JSON response.
func (r *Request) WantsJSON() bool {
	return strings.Contains(r.r.Header.Get("Accept"), "json") ||
		r.r.Header.Get("X-Requested-With") == "XMLHttpRequest"
}

// Attribute returns a value stored with SetAttribute.
func (r *Request) Attribute(key any) any { return r.attrs[key] }

// SetAttribute stores a per-request value that is not part of the input.
func (r *Request) SetAttribute(key, value any) { r.attrs[key] = value }

// User returns the authenticated user, or nil.
func (r *Request) User() any {
	if r.userResolver == nil {
		return nil
	}
	return r.userResolver(r)
}

// SetUserResolver sets how User is resolved.
func (r *Request) SetUserResolver(fn func(*Request) any) { r.userResolver = fn }

// Route returns the matched route, or nil.
func (r *Request) Route() any {
	if r.routeResolver == nil {
		return nil
	}
	return r.routeResolver()
}

// SetRouteResolver sets how Route is resolved.
func (r *Request) SetRouteResolver(fn func() any) { r.routeResolver = fn }

// SetValidator sets the validator used by Validate.
func (r *Request) SetValidator(v Validator) { r.validator = v }

// Validate checks All against rules. Failures are *validation.Error.
func (r *Request) Validate(rules validation.Rules, messages validation.Messages) (map[string]any, error) {
	if r.validator == nil {
		return nil, ErrNoValidator
	}
	return r.validator.Validate(r, rules, messages)
}
