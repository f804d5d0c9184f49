package content

import (
	"github.com/yuin/goldmark/ast"

	"github.com/dheerajdev/folio/markdown"
)

// TOCEntry is one table-of-contents line. Depth is 1 for level-2 headings
// and 2 for level-3 headings.
type TOCEntry struct {
	Title string `json:"title"`
	Slug  string `json:"slug"`
	Depth int    `json:"depth"`
}

// TableOfContents lists the top-level level-2 and level-3 headings of tree
// in document order. Nested structures are not searched. The title is the
// heading's text content and the slug is its generated id, so links match
// the rendered anchors.
func TableOfContents(tree ast.Node, source []byte) []TOCEntry {
	toc := []TOCEntry{}
	for n := tree.FirstChild(); n != nil; n = n.NextSibling() {
		h, ok := n.(*ast.Heading)
		if !ok || (h.Level != 2 && h.Level != 3) {
			continue
		}
		title := markdown.HeadingText(h, source)
		slug := ""
		if v, ok := h.AttributeString("id"); ok {
			if id, ok := v.([]byte); ok {
				slug = string(id)
			}
		}
		if slug == "" {
			slug = markdown.Slugify(title)
		}
		toc = append(toc, TOCEntry{Title: title, Slug: slug, Depth: h.Level - 1})
	}
	return toc
}
