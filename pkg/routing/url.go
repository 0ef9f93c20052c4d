package routing

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"maps"
	"net/url"
	"path"
	"regexp"
	"strings"
	"sync"

	"github.com/BenRutlandWeb/atomic-framework/pkg/request"
)

// URLConfig holds the base URL and the paths of the host surfaces.
type URLConfig struct {
	Home         string `mapstructure:"home"`
	RestPrefix   string `mapstructure:"rest_prefix"`
	AjaxPath     string `mapstructure:"ajax_path"`
	AdminPath    string `mapstructure:"admin_path"`
	ThemePath    string `mapstructure:"theme_path"`
	AssetRoot    string `mapstructure:"asset_url"`
	LoginPath    string `mapstructure:"login_path"`
	LogoutPath   string `mapstructure:"logout_path"`
	RegisterPath string `mapstructure:"register_path"`
}

func (c URLConfig) withDefaults() URLConfig {
	def := func(v *string, d string) {
		if *v == "" {
			*v = d
		}
	}
	def(&c.Home, "http://localhost:8080")
	def(&c.RestPrefix, "rest")
	def(&c.AjaxPath, "ajax")
	def(&c.AdminPath, "admin")
	def(&c.ThemePath, "theme")
	def(&c.LoginPath, "login")
	def(&c.LogoutPath, "logout")
	def(&c.RegisterPath, "register")
	c.Home = strings.TrimRight(c.Home, "/")
	return c
}

// URLGenerator builds URLs for named routes and the host surfaces.
type URLGenerator struct {
	routes     *RouteCollection
	ajaxRoutes *RouteCollection
	cfg        URLConfig
	manifestFS fs.FS

	manifestOnce sync.Once
	manifest     map[string]string
}

// URLOption configures a URLGenerator.
type URLOption func(*URLGenerator)

// WithManifestFS sets the filesystem the mix manifest is read from, usually
// the application base directory.
func WithManifestFS(fsys fs.FS) URLOption {
	return func(u *URLGenerator) {
		u.manifestFS = fsys
	}
}

// NewURLGenerator creates a generator over the REST and AJAX route collections.
func NewURLGenerator(routes, ajaxRoutes *RouteCollection, cfg URLConfig, opts ...URLOption) *URLGenerator {
	u := &URLGenerator{routes: routes, ajaxRoutes: ajaxRoutes, cfg: cfg.withDefaults()}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Current returns the request URL without the query string.
func (u *URLGenerator) Current(r *request.Request) string { return r.URL() }

// Full returns the request URL with the query string.
func (u *URLGenerator) Full(r *request.Request) string { return r.FullURL() }

// Previous returns the referring URL, or fallback, or the home URL.
func (u *URLGenerator) Previous(r *request.Request, fallback ...string) string {
	if ref := r.Header("Referer"); ref != "" {
		return ref
	}
	if len(fallback) > 0 && fallback[0] != "" {
		return fallback[0]
	}
	return u.Home()
}

// Route returns the URL of a named REST route. Parameters matching
// placeholders are substituted; the rest become the query string. Pass
// absolute=false for a path-only URL.
func (u *URLGenerator) Route(name string, params map[string]any, absolute ...bool) (string, error) {
	route := u.routes.GetByName(name)
	if route == nil {
		return "", fmt.Errorf("%w: [%s]", ErrRouteNotFound, name)
	}
	return u.ToRoute(route, params, absolute...), nil
}

// AjaxRoute is Route for the AJAX route collection.
func (u *URLGenerator) AjaxRoute(name string, params map[string]any, absolute ...bool) (string, error) {
	route := u.ajaxRoutes.GetByName(name)
	if route == nil {
		return "", fmt.Errorf("%w: [%s]", ErrRouteNotFound, name)
	}
	return u.ToRoute(route, params, absolute...), nil
}

// ToRoute builds the URL of route.
func (u *URLGenerator) ToRoute(route *Route, params map[string]any, absolute ...bool) string {
	link, rest := u.MergeParametersWithURL(route.URL(), params)
	link = addQueryArgs(link, rest)
	if len(absolute) > 0 && !absolute[0] {
		return makeRelative(link)
	}
	return link
}

var (
	placeholder         = regexp.MustCompile(`\{(\w+?)\??\}`)
	optionalPlaceholder = regexp.MustCompile(`/?\{\w+\?\}`)
)

// MergeParametersWithURL substitutes {param} and {param?} placeholders and
// returns the parameters that were not used. Optional placeholders without a
// value are removed. An "action" parameter is dropped when the URL already
// carries ?action=.
func (u *URLGenerator) MergeParametersWithURL(link string, params map[string]any) (string, map[string]any) {
	rest := maps.Clone(params)
	if rest == nil {
		rest = map[string]any{}
	}
	link = placeholder.ReplaceAllStringFunc(link, func(m string) string {
		key := placeholder.FindStringSubmatch(m)[1]
		v, ok := rest[key]
		if !ok {
			return m
		}
		delete(rest, key)
		return url.PathEscape(fmt.Sprint(v))
	})
	link = optionalPlaceholder.ReplaceAllString(link, "")
	if strings.Contains(link, "?action=") {
		delete(rest, "action")
	}
	return link, rest
}

// Asset returns the URL of a file under the asset root.
func (u *URLGenerator) Asset(p string) string {
	return u.Theme(strings.Trim(u.cfg.AssetRoot, "/") + "/" + strings.Trim(p, "/"))
}

// Mix returns the versioned URL of an asset listed in the mix manifest,
// falling back to Asset when there is no manifest or no entry.
func (u *URLGenerator) Mix(p string) string {
	key := "/" + strings.Trim(p, "/")
	if manifest, err := u.loadManifest(); err == nil {
		if versioned, ok := manifest[key]; ok {
			return u.Asset(versioned)
		}
	}
	return u.Asset(key)
}

func (u *URLGenerator) loadManifest() (map[string]string, error) {
	u.manifestOnce.Do(func() {
		if u.manifestFS == nil {
			return
		}
		name := path.Join(strings.Trim(u.cfg.AssetRoot, "/"), "mix-manifest.json")
		data, err := fs.ReadFile(u.manifestFS, name)
		if err != nil {
			return
		}
		m := map[string]string{}
		if json.Unmarshal(data, &m) == nil {
			u.manifest = m
		}
	})
	if u.manifest == nil {
		return nil, ErrManifestNotFound
	}
	return u.manifest, nil
}

var schemeLike = regexp.MustCompile(`^(#|//|https?://|(mailto|tel|sms):)`)

// IsValidURL reports whether p is an absolute URL or a link-like reference.
func (u *URLGenerator) IsValidURL(p string) bool {
	if schemeLike.MatchString(p) {
		return true
	}
	parsed, err := url.Parse(p)
	return err == nil && parsed.Scheme != "" && parsed.Host != ""
}

// Register returns the registration URL with an optional redirect target.
func (u *URLGenerator) Register(redirect ...string) string {
	return u.withRedirect(u.Home(u.cfg.RegisterPath), redirect)
}

// Login returns the login URL with an optional redirect target.
func (u *URLGenerator) Login(redirect ...string) string {
	return u.withRedirect(u.Home(u.cfg.LoginPath), redirect)
}

// Logout returns the logout URL with an optional redirect target.
func (u *URLGenerator) Logout(redirect ...string) string {
	return u.withRedirect(u.Home(u.cfg.LogoutPath), redirect)
}

func (u *URLGenerator) withRedirect(link string, redirect []string) string {
	if len(redirect) == 0 || redirect[0] == "" {
		return link
	}
	return addQueryArgs(link, map[string]any{"redirect_to": redirect[0]})
}

// Home returns the site URL joined with p.
func (u *URLGenerator) Home(p ...string) string {
	return join(u.cfg.Home, p)
}

// Admin returns the admin URL joined with p.
func (u *URLGenerator) Admin(p ...string) string {
	return join(u.Home(u.cfg.AdminPath), p)
}

// Ajax returns the AJAX endpoint URL, with ?action= when action is set.
func (u *URLGenerator) Ajax(action ...string) string {
	link := u.Home(u.cfg.AjaxPath)
	if len(action) > 0 && action[0] != "" {
		link += "?action=" + url.QueryEscape(action[0])
	}
	return link
}

// Rest returns the REST surface URL joined with p.
func (u *URLGenerator) Rest(p ...string) string {
	return join(u.Home(u.cfg.RestPrefix), p)
}

// Theme returns the static asset URL joined with p.
func (u *URLGenerator) Theme(p ...string) string {
	return join(u.Home(u.cfg.ThemePath), p)
}

// Redirect returns a redirect response to link.
func (u *URLGenerator) Redirect(link string, status ...int) Responder {
	return Redirect(link, status...)
}

// Config returns the generator configuration with defaults applied.
func (u *URLGenerator) Config() URLConfig { return u.cfg }

func join(base string, parts []string) string {
	for _, p := range parts {
		if p = strings.Trim(p, "/"); p != "" {
			base += "/" + p
		}
	}
	return base
}

func addQueryArgs(link string, params map[string]any) string {
	if len(params) == 0 {
		return link
	}
	values := url.Values{}
	for k, v := range params {
		switch vv := v.(type) {
		case []string:
			values[k] = vv
		case nil:
			values.Set(k, "")
		default:
			values.Set(k, fmt.Sprint(v))
		}
	}

	base, fragment, _ := strings.Cut(link, "#")
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	out := base + sep + values.Encode()
	if fragment != "" {
		out += "#" + fragment
	}
	return out
}

func makeRelative(link string) string {
	parsed, err := url.Parse(link)
	if err != nil || parsed.Host == "" {
		return link
	}
	rel := parsed.EscapedPath()
	if rel == "" {
		rel = "/"
	}
	if parsed.RawQuery != "" {
		rel += "?" + parsed.RawQuery
	}
	if parsed.Fragment != "" {
		rel += "#" + parsed.Fragment
	}
	return rel
}

