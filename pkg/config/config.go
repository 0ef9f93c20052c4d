package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides: app.name is read from ATOMIC_APP_NAME.
const EnvPrefix = "ATOMIC"

var supportedExts = []string{"yaml", "yml", "json", "toml"}

// Repository is the application configuration, addressed by dotted keys.
type Repository struct {
	v *viper.Viper
}

// New creates an empty repository with environment overrides enabled.
func New() *Repository {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return &Repository{v: v}
}

// FromMap creates a repository holding items, for tests and embedded defaults.
func FromMap(items map[string]any) *Repository {
	r := New()
	_ = r.v.MergeConfigMap(items)
	return r
}

// LoadDir reads every YAML, JSON and TOML file of fsys into the repository.
// A file's key is its path without extension, with directories becoming
// dotted prefixes: services/mail.yaml is loaded under "services.mail".
// Files are merged in path order. The "app" file is required.
func (r *Repository) LoadDir(fsys fs.FS) error {
	var files []string
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !slices.Contains(supportedExts, ext(p)) {
			return nil
		}
		files = append(files, p)
		return nil
	})
	if err != nil {
		return err
	}
	slices.Sort(files)

	hasApp := false
	for _, f := range files {
		key := keyFor(f)
		if key == "app" {
			hasApp = true
		}
		if err := r.loadFile(fsys, f, key); err != nil {
			return err
		}
	}
	if !hasApp {
		return ErrMissingAppConfig
	}
	return nil
}

func (r *Repository) loadFile(fsys fs.FS, name, key string) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return err
	}
	file := viper.New()
	file.SetConfigType(ext(name))
	if err := file.ReadConfig(bytes.NewReader(data)); err != nil {
		return errors.Join(ErrInvalidFile, fmt.Errorf("%s: %w", name, err))
	}
	return r.v.MergeConfigMap(nest(key, file.AllSettings()))
}

func ext(p string) string {
	return strings.TrimPrefix(path.Ext(p), ".")
}

func keyFor(p string) string {
	p = strings.TrimSuffix(p, path.Ext(p))
	return strings.ReplaceAll(strings.Trim(p, "/"), "/", ".")
}

func nest(key string, settings map[string]any) map[string]any {
	parts := strings.Split(key, ".")
	var out any = settings
	for i := len(parts) - 1; i >= 0; i-- {
		out = map[string]any{parts[i]: out}
	}
	return out.(map[string]any)
}

// Get returns the raw value at key, or nil.
func (r *Repository) Get(key string) any { return r.v.Get(key) }

// Has reports whether key is set, including defaults.
func (r *Repository) Has(key string) bool { return r.v.IsSet(key) }

// Set overrides key.
func (r *Repository) Set(key string, value any) { r.v.Set(key, value) }

// SetDefault sets the value used when key is not configured.
func (r *Repository) SetDefault(key string, value any) { r.v.SetDefault(key, value) }

// String returns key as a string, or def when unset.
func (r *Repository) String(key string, def ...string) string {
	if !r.v.IsSet(key) && len(def) > 0 {
		return def[0]
	}
	return r.v.GetString(key)
}

// Int returns key as an int, or def when unset.
func (r *Repository) Int(key string, def ...int) int {
	if !r.v.IsSet(key) && len(def) > 0 {
		return def[0]
	}
	return r.v.GetInt(key)
}

// Bool returns key as a bool, or def when unset.
func (r *Repository) Bool(key string, def ...bool) bool {
	if !r.v.IsSet(key) && len(def) > 0 {
		return def[0]
	}
	return r.v.GetBool(key)
}

// Float returns key as a float64, or def when unset.
func (r *Repository) Float(key string, def ...float64) float64 {
	if !r.v.IsSet(key) && len(def) > 0 {
		return def[0]
	}
	return r.v.GetFloat64(key)
}

// Duration returns key parsed as a duration ("1m30s"), or def when unset.
func (r *Repository) Duration(key string, def ...time.Duration) time.Duration {
	if !r.v.IsSet(key) && len(def) > 0 {
		return def[0]
	}
	return r.v.GetDuration(key)
}

// StringSlice returns key as a list of strings.
func (r *Repository) StringSlice(key string) []string { return r.v.GetStringSlice(key) }

// StringMap returns key as a map of strings.
func (r *Repository) StringMap(key string) map[string]string { return r.v.GetStringMapString(key) }

// Map returns the subtree at key.
func (r *Repository) Map(key string) map[string]any { return r.v.GetStringMap(key) }

// All returns every setting as a nested map.
func (r *Repository) All() map[string]any { return r.v.AllSettings() }

// Unmarshal decodes the subtree at key into out using mapstructure tags.
// An empty key decodes everything.
func (r *Repository) Unmarshal(key string, out any) error {
	var err error
	if key == "" {
		err = r.v.Unmarshal(out)
	} else {
		err = r.v.UnmarshalKey(key, out)
	}
	if err != nil {
		return errors.Join(ErrDecode, err)
	}
	return nil
}

// Viper exposes the underlying viper instance, for flag binding.
func (r *Repository) Viper() *viper.Viper { return r.v }
