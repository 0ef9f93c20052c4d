package console

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BenRutlandWeb/atomic-framework/pkg/str"
)

//go:embed stubs/*.stub
var stubs embed.FS

// Kind describes one make: generator.
type Kind struct {
	Name        string // command suffix: make:{Name}
	Description string
	Dir         string // target directory relative to the project root
}

// Kinds lists the generators in command order.
var Kinds = []Kind{
	{Name: "command", Description: "Make a console command", Dir: "app/console/commands"},
	{Name: "controller", Description: "Make a controller", Dir: "app/http/controllers"},
	{Name: "cpt", Description: "Make a custom post type", Dir: "app/cpts"},
	{Name: "event", Description: "Make an event", Dir: "app/events"},
	{Name: "listener", Description: "Make an event listener", Dir: "app/listeners"},
	{Name: "mail", Description: "Make a mailable", Dir: "app/mail"},
	{Name: "middleware", Description: "Make a middleware", Dir: "app/http/middleware"},
	{Name: "provider", Description: "Make a service provider", Dir: "app/providers"},
	{Name: "request", Description: "Make a form request", Dir: "app/http/requests"},
	{Name: "rule", Description: "Make a validation rule", Dir: "app/rules"},
	{Name: "shortcode", Description: "Make a shortcode", Dir: "app/shortcodes"},
	{Name: "subscriber", Description: "Make an event subscriber", Dir: "app/listeners"},
	{Name: "taxonomy", Description: "Make a taxonomy", Dir: "app/cpts/taxonomies"},
}

// KindByName returns the generator called name.
func KindByName(name string) (Kind, error) {
	for _, k := range Kinds {
		if k.Name == name {
			return k, nil
		}
	}
	return Kind{}, fmt.Errorf("%w: %s", ErrUnknownKind, name)
}

var segment = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_\-]*$`)

// Generator writes files from stubs into a project.
type Generator struct {
	root string
}

// NewGenerator creates a generator writing under root. Stubs found in
// {root}/stubs/{kind}.stub override the built-in ones.
func NewGenerator(root string) *Generator {
	return &Generator{root: root}
}

// Target is a resolved generator output.
type Target struct {
	Path    string
	Package string
	Class   string
	Name    string
	Tag     string
}

// Resolve maps name ("Admin/PostController") to its file and tokens.
// Directory segments nest below the kind's directory; the last one names the
// Go package.
func (g *Generator) Resolve(kind Kind, name string) (Target, error) {
	parts := strings.FieldsFunc(name, func(r rune) bool { return r == '/' || r == '\\' })
	if len(parts) == 0 {
		return Target{}, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	for _, p := range parts {
		if !segment.MatchString(p) {
			return Target{}, fmt.Errorf("%w: %q", ErrInvalidName, name)
		}
	}

	base := parts[len(parts)-1]
	dirs := []string{g.root, filepath.FromSlash(kind.Dir)}
	for _, p := range parts[:len(parts)-1] {
		dirs = append(dirs, str.Snake(p))
	}
	dir := filepath.Join(dirs...)

	return Target{
		Path:    filepath.Join(dir, str.Snake(base)+".go"),
		Package: packageName(filepath.Base(dir)),
		Class:   str.Studly(base),
		Name:    str.Kebab(base),
		Tag:     str.Snake(base),
	}, nil
}

// Generate renders the kind's stub for name. An existing file is kept and
// ErrAlreadyExists returned unless force is set. Extra replaces additional
// "{{ key }}" tokens.
func (g *Generator) Generate(kind Kind, name string, force bool, extra map[string]string) (string, error) {
	t, err := g.Resolve(kind, name)
	if err != nil {
		return "", err
	}
	if !force {
		if _, err := os.Stat(t.Path); err == nil {
			return t.Path, fmt.Errorf("%w: %s", ErrAlreadyExists, t.Path)
		}
	}

	stub, err := g.stub(kind)
	if err != nil {
		return "", err
	}

	pairs := []string{
		"{{ package }}", t.Package,
		"{{ class }}", t.Class,
		"{{ name }}", t.Name,
		"{{ tag }}", t.Tag,
	}
	for k, v := range extra {
		pairs = append(pairs, "{{ "+k+" }}", v)
	}
	out := strings.NewReplacer(pairs...).Replace(stub)

	if err := os.MkdirAll(filepath.Dir(t.Path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(t.Path, []byte(out), 0o644); err != nil {
		return "", err
	}
	return t.Path, nil
}

func (g *Generator) stub(kind Kind) (string, error) {
	file := kind.Name + ".stub"
	data, err := os.ReadFile(filepath.Join(g.root, "stubs", file))
	if err == nil {
		return string(data), nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}
	data, err = stubs.ReadFile("stubs/" + file)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrUnknownKind, kind.Name)
	}
	return string(data), nil
}

func packageName(dir string) string {
	return strings.ToLower(strings.NewReplacer("_", "", "-", "").Replace(dir))
}
