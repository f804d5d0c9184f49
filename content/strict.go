package content

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/yuin/goldmark/ast"
)

var htmlHeadingPattern = regexp.MustCompile(`(?i)^\s*<(h[1-6])[\s/>]`)

// CheckHeadings scans the top-level nodes of tree and returns a
// *StructuralError for the first heading whose level is not 2 or 3, or the
// first top-level HTML block opening an h1, h4, h5 or h6 element.
func CheckHeadings(tree ast.Node, source []byte) error {
	for n := tree.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			if node.Level != 2 && node.Level != 3 {
				return &StructuralError{Level: node.Level, Line: lineOf(node, source)}
			}
		case *ast.HTMLBlock:
			if node.Lines().Len() == 0 {
				continue
			}
			first := node.Lines().At(0)
			m := htmlHeadingPattern.FindSubmatch(first.Value(source))
			if m == nil {
				continue
			}
			switch tag := strings.ToLower(string(m[1])); tag {
			case "h1", "h4", "h5", "h6":
				return &StructuralError{Tag: tag, Line: lineOf(node, source)}
			}
		}
	}
	return nil
}

// lineOf returns the 1-based line a block starts on, or 0 when the block
// has no source lines.
func lineOf(n ast.Node, source []byte) int {
	if n.Lines().Len() == 0 {
		return 0
	}
	start := n.Lines().At(0).Start
	return bytes.Count(source[:start], []byte("\n")) + 1
}
