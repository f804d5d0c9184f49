package content

import (
	"encoding/json"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// LayoutRegistryPath is the well-known prefix layout components live under.
const LayoutRegistryPath = "@/contents-layouts/"

// LayoutLocation maps a layout name to its registry location.
func LayoutLocation(name string) string {
	return LayoutRegistryPath + name
}

var (
	KindLayoutImport = ast.NewNodeKind("LayoutImport")
	KindLayoutExport = ast.NewNodeKind("LayoutExport")
)

// LayoutImport references the layout component a document renders into.
// It is always the first top-level node of a decorated document.
type LayoutImport struct {
	ast.BaseBlock
	Name     string
	Location string
}

func (n *LayoutImport) Kind() ast.NodeKind {
	return KindLayoutImport
}

func (n *LayoutImport) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Name":     n.Name,
		"Location": n.Location,
	}, nil)
}

// LayoutExport wraps the document body in its layout, passing the
// resolved front matter and the table of contents. It is always the last
// top-level node of a decorated document.
type LayoutExport struct {
	ast.BaseBlock
	Name            string
	FrontMatter     map[string]any
	TableOfContents []TOCEntry
}

func (n *LayoutExport) Kind() ast.NodeKind {
	return KindLayoutExport
}

func (n *LayoutExport) Dump(source []byte, level int) {
	fm, _ := json.Marshal(n.FrontMatter)
	toc, _ := json.Marshal(n.TableOfContents)
	ast.DumpHelper(n, source, level, map[string]string{
		"Name":            n.Name,
		"FrontMatter":     string(fm),
		"TableOfContents": string(toc),
	}, nil)
}

// InjectLayout prepends a LayoutImport and appends a LayoutExport to tree.
// It does nothing when fm is nil.
func InjectLayout(tree ast.Node, fm *FrontMatter, toc []TOCEntry) {
	if fm == nil {
		return
	}
	imp := &LayoutImport{Name: fm.Layout, Location: LayoutLocation(fm.Layout)}
	if first := tree.FirstChild(); first != nil {
		tree.InsertBefore(tree, first, imp)
	} else {
		tree.AppendChild(tree, imp)
	}
	tree.AppendChild(tree, &LayoutExport{
		Name:            fm.Layout,
		FrontMatter:     fm.Props(),
		TableOfContents: append([]TOCEntry{}, toc...),
	})
}

// Layout returns the injected layout nodes of tree, or nils when the
// document was not decorated.
func Layout(tree ast.Node) (*LayoutImport, *LayoutExport) {
	imp, _ := tree.FirstChild().(*LayoutImport)
	exp, _ := tree.LastChild().(*LayoutExport)
	if imp == nil || exp == nil {
		return nil, nil
	}
	return imp, exp
}

// LayoutExtension registers renderers for the layout nodes so decorated
// trees can be rendered. The nodes produce no markup; the layout is
// applied around the rendered body instead.
var LayoutExtension goldmark.Extender = layoutExtension{}

type layoutExtension struct{}

func (layoutExtension) Extend(m goldmark.Markdown) {
	m.Renderer().AddOptions(renderer.WithNodeRenderers(util.Prioritized(layoutRenderer{}, 500)))
}

type layoutRenderer struct{}

func (layoutRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindLayoutImport, renderNothing)
	reg.Register(KindLayoutExport, renderNothing)
}

func renderNothing(util.BufWriter, []byte, ast.Node, bool) (ast.WalkStatus, error) {
	return ast.WalkSkipChildren, nil
}
