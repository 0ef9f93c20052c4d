package view

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"path"
	"strings"
	"sync"

	"github.com/a-h/templ"

	"github.com/BenRutlandWeb/atomic-framework/pkg/logger"
)

// CandidatesHook filters the candidate list passed to First.
const CandidatesHook = "view.candidates"

const defaultExtension = ".html"

// Filters applies a named filter. *events.Filter satisfies it.
type Filters interface {
	Apply(hook string, params ...any) any
}

// Factory loads html/template views from a filesystem.
// View names use dots as path separators: "emails.welcome" loads
// "emails/welcome.html".
type Factory struct {
	fsys      fs.FS
	ext       string
	partials  []string
	funcs     template.FuncMap
	filters   Filters
	logger    *slog.Logger
	cache     bool
	mu        sync.RWMutex
	templates map[string]*template.Template
}

// Option configures a Factory.
type Option func(*Factory)

// WithExtension sets the template file extension. Defaults to ".html".
func WithExtension(ext string) Option {
	return func(f *Factory) {
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		f.ext = ext
	}
}

// WithPartials parses the files matching the glob patterns into every view,
// making their {{define}} blocks available.
func WithPartials(patterns ...string) Option {
	return func(f *Factory) { f.partials = append(f.partials, patterns...) }
}

// WithFuncs adds template functions.
func WithFuncs(funcs template.FuncMap) Option {
	return func(f *Factory) {
		for k, v := range funcs {
			f.funcs[k] = v
		}
	}
}

// WithFilters routes First candidates through the view.candidates filter.
func WithFilters(filters Filters) Option {
	return func(f *Factory) { f.filters = filters }
}

// WithCache keeps parsed templates in memory. Enable in production.
func WithCache(enabled bool) Option {
	return func(f *Factory) { f.cache = enabled }
}

// WithLogger sets the factory logger.
func WithLogger(l *slog.Logger) Option {
	return func(f *Factory) {
		if l != nil {
			f.logger = l
		}
	}
}

// New creates a view factory over fsys.
func New(fsys fs.FS, opts ...Option) *Factory {
	f := &Factory{
		fsys:      fsys,
		ext:       defaultExtension,
		logger:    logger.NewNope(),
		templates: make(map[string]*template.Template),
	}
	f.funcs = template.FuncMap{
		"svg":          func(name string) template.HTML { return SVG(f.fsys, name) },
		"method_field": MethodField,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Make loads the named view and binds data to it.
func (f *Factory) Make(name string, data any) (*View, error) {
	tmpl, err := f.load(f.file(name))
	if err != nil {
		return nil, err
	}
	return &View{name: name, tmpl: tmpl, data: data}, nil
}

// First makes the first existing view among candidates. The candidate list
// passes through the view.candidates filter first.
func (f *Factory) First(candidates []string, data any) (*View, error) {
	candidates = f.candidates(candidates)
	for _, name := range candidates {
		if f.Exists(name) {
			return f.Make(name, data)
		}
	}
	return nil, errors.Join(ErrViewNotFound, errors.New(strings.Join(candidates, ", ")))
}

// Exists reports whether the named view file exists.
func (f *Factory) Exists(name string) bool {
	_, err := fs.Stat(f.fsys, f.file(name))
	return err == nil
}

// Render is Make followed by View.Render.
func (f *Factory) Render(ctx context.Context, w io.Writer, name string, data any) error {
	v, err := f.Make(name, data)
	if err != nil {
		return err
	}
	return v.Render(ctx, w)
}

// NormalizeName maps dotted view names to slash paths.
func NormalizeName(name string) string {
	return strings.ReplaceAll(strings.Trim(name, "."), ".", "/")
}

func (f *Factory) file(name string) string {
	return NormalizeName(name) + f.ext
}

func (f *Factory) candidates(in []string) []string {
	if f.filters == nil {
		return in
	}
	out, ok := f.filters.Apply(CandidatesHook, in).([]string)
	if !ok {
		f.logger.Warn("view candidates filter returned a non-list value")
		return in
	}
	return out
}

func (f *Factory) load(file string) (*template.Template, error) {
	if f.cache {
		f.mu.RLock()
		tmpl, ok := f.templates[file]
		f.mu.RUnlock()
		if ok {
			return tmpl, nil
		}
	}

	src, err := fs.ReadFile(f.fsys, file)
	if err != nil {
		return nil, errors.Join(ErrViewNotFound, err)
	}

	tmpl := template.New(path.Base(file)).Funcs(f.funcs)
	for _, pattern := range f.partials {
		matches, err := fs.Glob(f.fsys, pattern)
		if err != nil {
			return nil, errors.Join(ErrParse, err)
		}
		if len(matches) == 0 {
			continue
		}
		if tmpl, err = tmpl.ParseFS(f.fsys, matches...); err != nil {
			return nil, errors.Join(ErrParse, err)
		}
	}
	if tmpl, err = tmpl.Parse(string(src)); err != nil {
		return nil, errors.Join(ErrParse, err)
	}

	if f.cache {
		f.mu.Lock()
		f.templates[file] = tmpl
		f.mu.Unlock()
	}
	return tmpl, nil
}

// View is a template bound to its data. It satisfies templ.Component and the
// router's renderable response.
type View struct {
	name string
	tmpl *template.Template
	data any
}

var _ templ.Component = (*View)(nil)

// Name returns the dotted view name.
func (v *View) Name() string { return v.name }

// Render writes the view to w.
func (v *View) Render(_ context.Context, w io.Writer) error {
	if err := v.tmpl.ExecuteTemplate(w, v.tmpl.Name(), v.data); err != nil {
		return errors.Join(ErrRender, err)
	}
	return nil
}

// HTML renders the view into a string with leading whitespace trimmed.
func (v *View) HTML() (template.HTML, error) {
	var buf bytes.Buffer
	if err := v.Render(context.Background(), &buf); err != nil {
		return "", err
	}
	return template.HTML(strings.TrimLeft(buf.String(), " \t\r\n")), nil
}

// String renders the view, returning "" on failure.
func (v *View) String() string {
	html, _ := v.HTML()
	return string(html)
}

// Component renders a templ component into template.HTML so it can be
// embedded in html/template views.
func Component(ctx context.Context, c templ.Component) (template.HTML, error) {
	var buf bytes.Buffer
	if err := c.Render(ctx, &buf); err != nil {
		return "", errors.Join(ErrRender, err)
	}
	return template.HTML(buf.String()), nil
}
