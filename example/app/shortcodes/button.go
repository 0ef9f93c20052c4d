package shortcodes

import (
	"context"
	"fmt"
	"html"

	"github.com/BenRutlandWeb/atomic-framework/pkg/content"
)

// Button renders [button href="/shop"]Buy[/button].
func Button() content.Shortcode {
	return content.Shortcode{
		Tag:      "button",
		Defaults: map[string]string{"href": "#", "style": "primary"},
		Handler: func(_ context.Context, sc *content.ShortcodeCall) (string, error) {
			return fmt.Sprintf(`<a class="btn btn-%s" href="%s">%s</a>`,
				html.EscapeString(sc.Get("style")),
				html.EscapeString(sc.Get("href")),
				html.EscapeString(sc.Content()),
			), nil
		},
	}
}
