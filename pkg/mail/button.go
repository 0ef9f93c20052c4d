package mail

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// KindButton is the AST kind of a mail button.
var KindButton = ast.NewNodeKind("MailButton")

// Button is a call-to-action link written as [button:Label](url) or, with a
// color, [button.success:Label](url).
type Button struct {
	ast.BaseInline
	Color []byte
	Label []byte
	URL   []byte
}

// Kind implements ast.Node.
func (n *Button) Kind() ast.NodeKind { return KindButton }

// Dump implements ast.Node.
func (n *Button) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Color": string(n.Color),
		"Label": string(n.Label),
		"URL":   string(n.URL),
	}, nil)
}

var buttonPrefix = []byte("[button")

type buttonParser struct{}

func (buttonParser) Trigger() []byte { return []byte{'['} }

func (buttonParser) Parse(_ ast.Node, block text.Reader, _ parser.Context) ast.Node {
	line, _ := block.PeekLine()
	if !bytes.HasPrefix(line, buttonPrefix) {
		return nil
	}
	rest := line[len(buttonPrefix):]

	color := []byte("primary")
	if len(rest) > 0 && rest[0] == '.' {
		end := bytes.IndexByte(rest, ':')
		if end < 2 {
			return nil
		}
		color, rest = rest[1:end], rest[end:]
	}
	if len(rest) == 0 || rest[0] != ':' {
		return nil
	}

	labelEnd := bytes.IndexByte(rest, ']')
	if labelEnd == -1 || labelEnd+1 >= len(rest) || rest[labelEnd+1] != '(' {
		return nil
	}
	urlEnd := bytes.IndexByte(rest[labelEnd:], ')')
	if urlEnd == -1 {
		return nil
	}
	urlEnd += labelEnd

	consumed := len(line) - len(rest) + urlEnd + 1
	block.Advance(consumed)

	return &Button{
		Color: color,
		Label: rest[1:labelEnd],
		URL:   rest[labelEnd+2 : urlEnd],
	}
}

type buttonRenderer struct{}

func (buttonRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindButton, func(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		n := node.(*Button)
		_, _ = w.WriteString(`<a href="`)
		_, _ = w.Write(util.EscapeHTML(util.URLEscape(n.URL, false)))
		_, _ = w.WriteString(`" class="button button-`)
		_, _ = w.Write(util.EscapeHTML(n.Color))
		_, _ = w.WriteString(`" target="_blank" rel="noopener">`)
		_, _ = w.Write(util.EscapeHTML(n.Label))
		_, _ = w.WriteString(`</a>`)
		return ast.WalkContinue, nil
	})
}

type buttonExtension struct{}

func (buttonExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithInlineParsers(util.Prioritized(buttonParser{}, 50)))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(util.Prioritized(buttonRenderer{}, 50)))
}

// ButtonExtension renders [button:Label](url) as a styled link.
func ButtonExtension() goldmark.Extender { return buttonExtension{} }
