// Package markdown configures goldmark for content documents: GitHub
// flavored markdown, slug heading ids, and code blocks annotated with
// data attributes and inline highlights.
package markdown

import (
	"context"
	"io"

	"github.com/a-h/templ"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// New returns the goldmark instance used to parse and render content.
// Raw HTML is passed through since documents embed components as HTML blocks.
// Every node kind that can appear in a rendered tree must be registered,
// either here or by one of exts.
func New(exts ...goldmark.Extender) goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(append([]goldmark.Extender{extension.GFM}, exts...)...),
		goldmark.WithParserOptions(
			parser.WithASTTransformers(util.Prioritized(headingIDTransformer{}, 100)),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
			renderer.WithNodeRenderers(util.Prioritized(&codeBlockRenderer{}, 100)),
		),
	)
}

// Parse parses src into a document tree. Heading ids are unique within the document.
func Parse(md goldmark.Markdown, src []byte) ast.Node {
	pc := parser.NewContext(parser.WithIDs(NewIDs()))
	return md.Parser().Parse(text.NewReader(src), parser.WithContext(pc))
}

// Render writes tree as HTML.
func Render(md goldmark.Markdown, w io.Writer, src []byte, tree ast.Node) error {
	return md.Renderer().Render(w, src, tree)
}

// Component returns a templ component rendering tree.
func Component(md goldmark.Markdown, src []byte, tree ast.Node) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return Render(md, w, src, tree)
	})
}
