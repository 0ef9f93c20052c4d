package mail

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	textPolicy  = bluemonday.StrictPolicy()
	blockTags   = regexp.MustCompile(`(?i)<\s*(br|/p|/div|/h[1-6]|/li|/tr|/table)\s*/?>`)
	headSection = regexp.MustCompile(`(?is)<(head|style|script)\b[^>]*>.*?</(head|style|script)>`)
	blankLines  = regexp.MustCompile(`\n\s*\n+`)
)

// TextFromHTML derives a plain text alternative from an HTML body.
func TextFromHTML(body string) string {
	body = headSection.ReplaceAllString(body, "")
	body = blockTags.ReplaceAllStringFunc(body, func(tag string) string { return tag + "\n" })
	body = html.UnescapeString(textPolicy.Sanitize(body))

	lines := strings.Split(body, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return strings.TrimSpace(blankLines.ReplaceAllString(strings.Join(lines, "\n"), "\n\n"))
}
