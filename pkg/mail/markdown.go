package mail

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"
	"sync"
	texttemplate "text/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"gopkg.in/yaml.v3"
)

// Markdown renders markdown mail templates into a shared HTML layout.
//
// A template is a text/template markdown file with optional YAML front
// matter; a "subject" key there becomes the message subject and a "layout"
// key overrides the layout, an empty one disabling it. The layout is an
// html/template receiving .Content, .Subject and .Meta.
type Markdown struct {
	fsys   fs.FS
	layout string
	ext    string
	md     goldmark.Markdown

	mu        sync.RWMutex
	templates map[string]*markdownTemplate
	layouts   map[string]*template.Template
}

type markdownTemplate struct {
	meta map[string]any
	body *texttemplate.Template
}

// MarkdownOption configures Markdown.
type MarkdownOption func(*Markdown)

// WithLayout sets the default layout file. Defaults to "layouts/mail.html".
func WithLayout(name string) MarkdownOption {
	return func(m *Markdown) { m.layout = name }
}

// Rendered is the output of a markdown template.
type Rendered struct {
	Meta    map[string]any
	Subject string
	HTML    string
	Text    string
}

// NewMarkdown creates a renderer over fsys.
func NewMarkdown(fsys fs.FS, opts ...MarkdownOption) *Markdown {
	m := &Markdown{
		fsys:   fsys,
		layout: "layouts/mail.html",
		ext:    ".md",
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM, ButtonExtension()),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
		templates: make(map[string]*markdownTemplate),
		layouts:   make(map[string]*template.Template),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Render executes the dotted template name with data.
// The plain text part is the executed markdown before HTML conversion.
func (m *Markdown) Render(name string, data any) (*Rendered, error) {
	tmpl, err := m.template(strings.ReplaceAll(name, ".", "/") + m.ext)
	if err != nil {
		return nil, err
	}

	var text bytes.Buffer
	if err := tmpl.body.Execute(&text, data); err != nil {
		return nil, errors.Join(ErrRenderFailed, err)
	}

	var body bytes.Buffer
	if err := m.md.Convert(text.Bytes(), &body); err != nil {
		return nil, errors.Join(ErrRenderFailed, err)
	}

	subject, err := renderSubject(tmpl.meta, data)
	if err != nil {
		return nil, err
	}

	layoutName := m.layout
	if l, ok := tmpl.meta["layout"].(string); ok {
		layoutName = l
	}
	out := body.String()
	if layoutName != "" {
		layout, err := m.layoutTemplate(layoutName)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := layout.Execute(&buf, map[string]any{
			"Content": template.HTML(out),
			"Subject": subject,
			"Meta":    tmpl.meta,
		}); err != nil {
			return nil, errors.Join(ErrRenderFailed, err)
		}
		out = buf.String()
	}

	return &Rendered{
		Meta:    tmpl.meta,
		Subject: subject,
		HTML:    out,
		Text:    strings.TrimSpace(text.String()),
	}, nil
}

func renderSubject(meta map[string]any, data any) (string, error) {
	raw, _ := meta["subject"].(string)
	if raw == "" {
		return "", nil
	}
	tmpl, err := texttemplate.New("subject").Parse(raw)
	if err != nil {
		return "", errors.Join(ErrRenderFailed, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", errors.Join(ErrRenderFailed, err)
	}
	return buf.String(), nil
}

func (m *Markdown) template(file string) (*markdownTemplate, error) {
	m.mu.RLock()
	cached, ok := m.templates[file]
	m.mu.RUnlock()
	if ok {
		return cached, nil
	}

	content, err := fs.ReadFile(m.fsys, file)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplateNotFound, file, err)
	}
	meta, body, err := parseFrontMatter(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, file)
	}
	tmpl, err := texttemplate.New(path.Base(file)).Parse(body)
	if err != nil {
		return nil, errors.Join(ErrRenderFailed, err)
	}

	cached = &markdownTemplate{meta: meta, body: tmpl}
	m.mu.Lock()
	m.templates[file] = cached
	m.mu.Unlock()
	return cached, nil
}

func (m *Markdown) layoutTemplate(file string) (*template.Template, error) {
	m.mu.RLock()
	cached, ok := m.layouts[file]
	m.mu.RUnlock()
	if ok {
		return cached, nil
	}

	content, err := fs.ReadFile(m.fsys, file)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLayoutNotFound, file, err)
	}
	tmpl, err := template.New(path.Base(file)).Parse(string(content))
	if err != nil {
		return nil, errors.Join(ErrRenderFailed, err)
	}

	m.mu.Lock()
	m.layouts[file] = tmpl
	m.mu.Unlock()
	return tmpl, nil
}

// parseFrontMatter splits a leading "---" delimited YAML block from the body.
// Keys are lower-cased.
func parseFrontMatter(content []byte) (map[string]any, string, error) {
	const delim = "---"

	meta := map[string]any{}
	if !bytes.HasPrefix(content, []byte(delim)) {
		return meta, string(content), nil
	}

	rest := bytes.TrimLeft(content[len(delim):], "\r\n")
	var raw []byte
	if bytes.HasPrefix(rest, []byte(delim)) {
		rest = rest[len(delim):]
	} else {
		end := bytes.Index(rest, []byte("\n"+delim))
		if end == -1 {
			return nil, "", fmt.Errorf("%w: closing delimiter not found", ErrInvalidFrontMatter)
		}
		raw = rest[:end]
		rest = rest[end+1+len(delim):]
	}

	if len(bytes.TrimSpace(raw)) > 0 {
		var parsed map[string]any
		if err := yaml.Unmarshal(raw, &parsed); err != nil {
			return nil, "", errors.Join(ErrInvalidFrontMatter, err)
		}
		for k, v := range parsed {
			meta[strings.ToLower(k)] = v
		}
	}

	rest = bytes.TrimPrefix(rest, []byte("\r"))
	rest = bytes.TrimPrefix(rest, []byte("\n"))
	return meta, string(rest), nil
}
