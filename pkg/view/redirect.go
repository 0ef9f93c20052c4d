package view

import "strings"

// TemplateRedirect makes First look inside the views directory before the
// root: every candidate c becomes "{path}.c" followed by c.
type TemplateRedirect struct {
	path string
}

// NewTemplateRedirect creates a redirect for the dotted or slashed views path.
func NewTemplateRedirect(path string) *TemplateRedirect {
	return &TemplateRedirect{path: strings.Trim(strings.ReplaceAll(path, "/", "."), ".")}
}

// Filter expands the candidate list.
func (t *TemplateRedirect) Filter(candidates []string) []string {
	if t.path == "" {
		return candidates
	}
	out := make([]string, 0, len(candidates)*2)
	for _, c := range candidates {
		out = append(out, t.path+"."+c, c)
	}
	return out
}

// Registrar registers filters. *events.Filter satisfies it.
type Registrar interface {
	Add(hook string, filter any) error
}

// Register listens on the view.candidates filter.
func (t *TemplateRedirect) Register(r Registrar) error {
	return r.Add(CandidatesHook, t.Filter)
}
