// Package str has the string helpers used for labels, generated class
// names and hook tags.
package str

import (
	"strings"
	"unicode"

	"github.com/jinzhu/inflection"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Title converts "book_genre" and "book-genre" to "Book Genre".
func Title(s string) string {
	return cases.Title(language.English).String(strings.Join(Words(s), " "))
}

// Plural returns the plural form of the last word of s.
func Plural(s string) string {
	return inflection.Plural(s)
}

// Singular returns the singular form of the last word of s.
func Singular(s string) string {
	return inflection.Singular(s)
}

// Words splits s on spaces, dashes, underscores, dots and lower-to-upper
// case boundaries.
func Words(s string) []string {
	var (
		words []string
		cur   []rune
	)
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}
	rs := []rune(s)
	for i, r := range rs {
		switch {
		case r == ' ' || r == '-' || r == '_' || r == '.' || r == '/' || r == '\\':
			flush()
		case unicode.IsUpper(r) && i > 0 && len(cur) > 0 &&
			(unicode.IsLower(rs[i-1]) || unicode.IsDigit(rs[i-1]) ||
				(i+1 < len(rs) && unicode.IsLower(rs[i+1]))):
			flush()
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
	}
	flush()
	return words
}

// Snake converts "MakeCommand" to "make_command".
func Snake(s string) string {
	return joinLower(Words(s), "_")
}

// Kebab converts "MakeCommand" to "make-command".
func Kebab(s string) string {
	return joinLower(Words(s), "-")
}

// Studly converts "make_command" to "MakeCommand".
func Studly(s string) string {
	var b strings.Builder
	for _, w := range Words(s) {
		r := []rune(w)
		b.WriteString(strings.ToUpper(string(r[0])))
		b.WriteString(string(r[1:]))
	}
	return b.String()
}

// Camel converts "make_command" to "makeCommand".
func Camel(s string) string {
	st := []rune(Studly(s))
	if len(st) == 0 {
		return ""
	}
	return strings.ToLower(string(st[0])) + string(st[1:])
}

// Slug converts s to a lowercase ASCII slug, dropping diacritics:
// "Café & Bar" becomes "cafe-bar".
func Slug(s string, sep ...string) string {
	separator := "-"
	if len(sep) > 0 {
		separator = sep[0]
	}
	ascii, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err != nil {
		ascii = s
	}
	var parts []string
	var cur strings.Builder
	for _, r := range strings.ToLower(ascii) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			cur.WriteRune(r)
			continue
		}
		if cur.Len() > 0 {
			parts = append(parts, cur.String())
			cur.Reset()
		}
	}
	if cur.Len() > 0 {
		parts = append(parts, cur.String())
	}
	return strings.Join(parts, separator)
}

// After returns the part of s after the first occurrence of search, or s.
func After(s, search string) string {
	if search == "" {
		return s
	}
	if _, after, found := strings.Cut(s, search); found {
		return after
	}
	return s
}

// Limit truncates s to n runes, appending end when it was cut.
func Limit(s string, n int, end ...string) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	suffix := "..."
	if len(end) > 0 {
		suffix = end[0]
	}
	return strings.TrimRightFunc(string(r[:n]), unicode.IsSpace) + suffix
}

func joinLower(words []string, sep string) string {
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return strings.Join(words, sep)
}
