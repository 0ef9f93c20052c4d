package content

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"
)

// ShortcodeHandler renders one shortcode occurrence.
type ShortcodeHandler func(ctx context.Context, sc *ShortcodeCall) (string, error)

// Shortcode is a [tag] placeholder replaced in content. Only attributes
// named in Defaults reach the handler.
type Shortcode struct {
	Tag      string
	Defaults map[string]string
	Handler  ShortcodeHandler
}

// ShortcodeCall is a parsed occurrence.
type ShortcodeCall struct {
	tag        string
	attributes map[string]string
	content    string
}

// Tag returns the shortcode tag.
func (c *ShortcodeCall) Tag() string { return c.tag }

// Attributes returns the defaults merged with the given attributes.
func (c *ShortcodeCall) Attributes() map[string]string { return maps.Clone(c.attributes) }

// Get returns one attribute.
func (c *ShortcodeCall) Get(key string) string { return c.attributes[key] }

// Content returns the enclosed content of [tag]...[/tag].
func (c *ShortcodeCall) Content() string { return c.content }

// Shortcodes is a registry of shortcodes.
type Shortcodes struct {
	mu      sync.RWMutex
	codes   map[string]Shortcode
	pattern *regexp.Regexp
}

// NewShortcodes creates an empty registry.
func NewShortcodes() *Shortcodes {
	return &Shortcodes{codes: make(map[string]Shortcode)}
}

// Add registers sc, replacing a shortcode with the same tag.
func (s *Shortcodes) Add(sc Shortcode) error {
	if sc.Tag == "" {
		return ErrInvalidName
	}
	s.mu.Lock()
	s.codes[sc.Tag] = sc
	s.pattern = nil
	s.mu.Unlock()
	return nil
}

// Remove unregisters tag.
func (s *Shortcodes) Remove(tag string) {
	s.mu.Lock()
	delete(s.codes, tag)
	s.pattern = nil
	s.mu.Unlock()
}

// Has reports whether tag is registered.
func (s *Shortcodes) Has(tag string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.codes[tag]
	return ok
}

// Tags returns the registered tags, sorted.
func (s *Shortcodes) Tags() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.codes))
}

// Do replaces every registered shortcode in text with its handler output.
// [[tag]] escapes a shortcode. Handler content is not expanded again; a
// handler may call Do itself for nested shortcodes.
func (s *Shortcodes) Do(ctx context.Context, text string) (string, error) {
	if !strings.Contains(text, "[") {
		return text, nil
	}
	re := s.compiled()
	if re == nil {
		return text, nil
	}

	var (
		out  strings.Builder
		errs error
		pos  int
	)
	for pos < len(text) {
		loc := re.FindStringSubmatchIndex(text[pos:])
		if loc == nil {
			break
		}
		for i := range loc {
			if loc[i] >= 0 {
				loc[i] += pos
			}
		}
		start, end := loc[0], loc[1]
		out.WriteString(text[pos:start])

		group := func(n int) string {
			if loc[2*n] < 0 {
				return ""
			}
			return text[loc[2*n]:loc[2*n+1]]
		}
		tag, rawAttrs, selfClosing := group(2), group(3), group(4) == "/"

		if group(1) == "[" && group(5) == "]" {
			out.WriteString(text[start+1 : end-1])
			pos = end
			continue
		}
		// Without both brackets the escape is not an escape; keep the stray one.
		if group(1) == "[" {
			out.WriteString("[")
		}

		var inner string
		if !selfClosing {
			closing := "[/" + tag + "]"
			if idx := strings.Index(text[end:], closing); idx >= 0 {
				inner = text[end : end+idx]
				end += idx + len(closing)
			}
		}

		rendered, err := s.call(ctx, tag, rawAttrs, inner)
		if err != nil {
			errs = errors.Join(errs, err)
		}
		out.WriteString(rendered)
		if group(5) == "]" {
			out.WriteString("]")
		}
		pos = end
	}
	out.WriteString(text[pos:])
	return out.String(), errs
}

func (s *Shortcodes) call(ctx context.Context, tag, rawAttrs, inner string) (string, error) {
	s.mu.RLock()
	sc, ok := s.codes[tag]
	s.mu.RUnlock()
	if !ok {
		return "", nil
	}
	if sc.Handler == nil {
		return "", fmt.Errorf("%w: [%s]", ErrMissingHandler, tag)
	}

	given := ParseAttributes(rawAttrs)
	attrs := make(map[string]string, len(sc.Defaults))
	for k, def := range sc.Defaults {
		if v, ok := given[k]; ok {
			attrs[k] = v
		} else {
			attrs[k] = def
		}
	}
	return sc.Handler(ctx, &ShortcodeCall{tag: tag, attributes: attrs, content: inner})
}

func (s *Shortcodes) compiled() *regexp.Regexp {
	s.mu.RLock()
	re := s.pattern
	n := len(s.codes)
	s.mu.RUnlock()
	if re != nil || n == 0 {
		return re
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pattern != nil || len(s.codes) == 0 {
		return s.pattern
	}
	tags := slices.Sorted(maps.Keys(s.codes))
	for i, t := range tags {
		tags[i] = regexp.QuoteMeta(t)
	}
	s.pattern = regexp.MustCompile(`\[(\[?)(` + strings.Join(tags, "|") + `)(\s[^\]]*?)?\s*(/)?\](\]?)`)
	return s.pattern
}

var attrPattern = regexp.MustCompile(`([\w-]+)\s*=\s*"([^"]*)"(?:\s|$)|([\w-]+)\s*=\s*'([^']*)'(?:\s|$)|([\w-]+)\s*=\s*([^\s'"]+)(?:\s|$)|"([^"]*)"(?:\s|$)|'([^']*)'(?:\s|$)|(\S+)(?:\s|$)`)

// ParseAttributes parses shortcode attributes. Names are lower cased;
// positional values get their index as key.
func ParseAttributes(raw string) map[string]string {
	attrs := map[string]string{}
	positional := 0
	for _, m := range attrPattern.FindAllStringSubmatch(strings.TrimSpace(raw)+" ", -1) {
		switch {
		case m[1] != "":
			attrs[strings.ToLower(m[1])] = m[2]
		case m[3] != "":
			attrs[strings.ToLower(m[3])] = m[4]
		case m[5] != "":
			attrs[strings.ToLower(m[5])] = m[6]
		default:
			v := m[7] + m[8] + m[9]
			attrs[strconv.Itoa(positional)] = v
			positional++
		}
	}
	return attrs
}
