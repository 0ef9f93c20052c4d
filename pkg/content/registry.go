package content

import (
	"maps"
	"slices"
	"sync"
)

// PostType declares a custom content type and the taxonomies it uses.
type PostType struct {
	Name       string
	Options    map[string]any
	Taxonomies []Taxonomy
}

// Taxonomy declares a way of grouping content.
type Taxonomy struct {
	Name    string
	Options map[string]any
}

// RegisteredPostType is a post type known to the registry.
type RegisteredPostType struct {
	Name    string         `json:"name"`
	Labels  Labels         `json:"labels"`
	Options map[string]any `json:"options,omitempty"`
}

// RegisteredTaxonomy is a taxonomy known to the registry, attached to one or
// more post types.
type RegisteredTaxonomy struct {
	Name        string         `json:"name"`
	Labels      Labels         `json:"labels"`
	Options     map[string]any `json:"options,omitempty"`
	ObjectTypes []string       `json:"object_types"`
}

// Registry holds post types, taxonomies and shortcodes.
type Registry struct {
	mu         sync.RWMutex
	postTypes  map[string]*RegisteredPostType
	taxonomies map[string]*RegisteredTaxonomy
	shortcodes *Shortcodes
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		postTypes:  make(map[string]*RegisteredPostType),
		taxonomies: make(map[string]*RegisteredTaxonomy),
		shortcodes: NewShortcodes(),
	}
}

// RegisterPostType registers pt with generated labels, then its taxonomies.
// Labels given in Options["labels"] override generated ones.
func (r *Registry) RegisterPostType(pt PostType) (*RegisteredPostType, error) {
	if pt.Name == "" {
		return nil, ErrInvalidName
	}

	labels := PostTypeLabels(pt.Name)
	options := withoutLabels(pt.Options, labels)

	registered := &RegisteredPostType{Name: pt.Name, Labels: labels, Options: options}
	r.mu.Lock()
	r.postTypes[pt.Name] = registered
	r.mu.Unlock()

	for _, tax := range pt.Taxonomies {
		if _, err := r.RegisterTaxonomy(tax, pt.Name); err != nil {
			return nil, err
		}
	}
	return registered, nil
}

// RegisterTaxonomy registers tax for postType. An existing taxonomy is only
// attached to the post type; its labels and options are kept.
func (r *Registry) RegisterTaxonomy(tax Taxonomy, postType string) (*RegisteredTaxonomy, error) {
	if tax.Name == "" {
		return nil, ErrInvalidName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.taxonomies[tax.Name]; ok {
		if postType != "" && !slices.Contains(existing.ObjectTypes, postType) {
			existing.ObjectTypes = append(existing.ObjectTypes, postType)
		}
		return existing, nil
	}

	labels := TaxonomyLabels(tax.Name)
	registered := &RegisteredTaxonomy{
		Name:    tax.Name,
		Labels:  labels,
		Options: withoutLabels(tax.Options, labels),
	}
	if postType != "" {
		registered.ObjectTypes = []string{postType}
	}
	r.taxonomies[tax.Name] = registered
	return registered, nil
}

// PostType returns a registered post type.
func (r *Registry) PostType(name string) (*RegisteredPostType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pt, ok := r.postTypes[name]
	return pt, ok
}

// PostTypes returns the registered post types sorted by name.
func (r *Registry) PostTypes() []*RegisteredPostType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedValues(r.postTypes)
}

// Taxonomy returns a registered taxonomy.
func (r *Registry) Taxonomy(name string) (*RegisteredTaxonomy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tax, ok := r.taxonomies[name]
	return tax, ok
}

// TaxonomyExists reports whether name is registered.
func (r *Registry) TaxonomyExists(name string) bool {
	_, ok := r.Taxonomy(name)
	return ok
}

// Taxonomies returns the taxonomies, sorted by name. With a post type only
// the taxonomies attached to it are returned.
func (r *Registry) Taxonomies(postType ...string) []*RegisteredTaxonomy {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := sortedValues(r.taxonomies)
	if len(postType) == 0 {
		return all
	}
	return slices.DeleteFunc(all, func(t *RegisteredTaxonomy) bool {
		return !slices.Contains(t.ObjectTypes, postType[0])
	})
}

// Shortcodes returns the shortcode registry.
func (r *Registry) Shortcodes() *Shortcodes { return r.shortcodes }

// withoutLabels moves Options["labels"] overrides into labels and returns a
// copy of the remaining options.
func withoutLabels(options map[string]any, labels Labels) map[string]any {
	if len(options) == 0 {
		return nil
	}
	out := maps.Clone(options)
	switch custom := out["labels"].(type) {
	case map[string]string:
		maps.Copy(labels, custom)
	case map[string]any:
		for k, v := range custom {
			if s, ok := v.(string); ok {
				labels[k] = s
			}
		}
	}
	delete(out, "labels")
	return out
}

func sortedValues[T any](m map[string]*T) []*T {
	out := make([]*T, 0, len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		out = append(out, m[k])
	}
	return out
}
