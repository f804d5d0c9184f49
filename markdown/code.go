package markdown

import (
	"bytes"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

var metaPattern = regexp.MustCompile(`\{([^{}]+)\}`)

// CodeMeta is the parsed info string of a fenced code block, e.g.
// "ts {title:app.ts} {inlineHighlight:useState|1,2|accent}".
type CodeMeta struct {
	Language   string
	Attributes map[string]string
	Highlights []InlineHighlight
}

// InlineHighlight wraps occurrences of Keyword in a highlight span.
// Selected holds 1-based occurrence indexes; empty selects every occurrence.
type InlineHighlight struct {
	Keyword   string
	Selected  []int
	ClassName string
}

// ParseCodeMeta parses the info string of a fenced code block.
func ParseCodeMeta(info string) CodeMeta {
	meta := CodeMeta{Attributes: make(map[string]string)}
	info = strings.TrimSpace(info)
	if info != "" && !strings.HasPrefix(info, "{") {
		lang, _, _ := strings.Cut(info, " ")
		meta.Language = lang
	}
	for _, m := range metaPattern.FindAllStringSubmatch(info, -1) {
		key, val, ok := strings.Cut(m[1], ":")
		key = strings.TrimSpace(key)
		if !ok || key == "" || !validAttrName(key) {
			continue
		}
		if strings.EqualFold(key, "inlineHighlight") {
			meta.Highlights = append(meta.Highlights, parseHighlight(val))
			continue
		}
		meta.Attributes[key] = strings.TrimSpace(val)
	}
	return meta
}

func parseHighlight(val string) InlineHighlight {
	parts := strings.Split(val, "|")
	hl := InlineHighlight{Keyword: strings.TrimSpace(parts[0])}
	if len(parts) > 1 && parts[1] != "0" {
		for _, s := range strings.Split(parts[1], ",") {
			if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil && n > 0 {
				hl.Selected = append(hl.Selected, n)
			}
		}
	}
	if len(parts) > 2 {
		hl.ClassName = strings.TrimSpace(parts[2])
	}
	return hl
}

func validAttrName(s string) bool {
	for _, r := range s {
		if !(r == '-' || r == '_' || r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r))) {
			return false
		}
	}
	return true
}

// apply wraps matching occurrences in escaped code. Only whole words match,
// never the name of an entity.
func (h InlineHighlight) apply(escaped []byte) []byte {
	if h.Keyword == "" {
		return escaped
	}
	kw := util.EscapeHTML([]byte(h.Keyword))
	var out bytes.Buffer
	idx := 0
	for {
		i := bytes.Index(escaped, kw)
		if i < 0 {
			out.Write(escaped)
			return out.Bytes()
		}
		end := i + len(kw)
		whole := (i == 0 || !isWordByte(escaped[i-1]) && escaped[i-1] != '&') &&
			(end == len(escaped) || !isWordByte(escaped[end]))
		out.Write(escaped[:i])
		if whole {
			idx++
		}
		if whole && h.selects(idx) {
			out.WriteString(`<span class="inline-highlight`)
			if h.ClassName != "" {
				out.WriteByte(' ')
				out.Write(util.EscapeHTML([]byte(h.ClassName)))
			}
			out.WriteString(`">`)
			out.Write(kw)
			out.WriteString("</span>")
		} else {
			out.Write(kw)
		}
		escaped = escaped[end:]
	}
}

func (h InlineHighlight) selects(idx int) bool {
	if len(h.Selected) == 0 {
		return true
	}
	for _, n := range h.Selected {
		if n == idx {
			return true
		}
	}
	return false
}

func isWordByte(b byte) bool {
	return b == '_' || b >= '0' && b <= '9' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}

type codeBlockRenderer struct{}

func (r *codeBlockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCodeBlock)
}

func (r *codeBlockRenderer) renderFencedCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.FencedCodeBlock)
	var info string
	if n.Info != nil {
		info = string(n.Info.Segment.Value(source))
	}
	meta := ParseCodeMeta(info)

	var code bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		code.Write(seg.Value(source))
	}
	body := util.EscapeHTML(code.Bytes())
	for _, hl := range meta.Highlights {
		body = hl.apply(body)
	}

	_, _ = w.WriteString("<pre")
	if meta.Language != "" {
		writeAttr(w, "class", "language-"+meta.Language)
		writeAttr(w, "data-language", meta.Language)
	}
	if lines.Len() > 0 {
		writeAttr(w, "data-lines", strconv.Itoa(lines.Len()))
	}
	keys := make([]string, 0, len(meta.Attributes))
	for k := range meta.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		writeAttr(w, "data-"+k, meta.Attributes[k])
	}
	_, _ = w.WriteString("><code")
	if meta.Language != "" {
		writeAttr(w, "class", "language-"+meta.Language)
	}
	_, _ = w.WriteString(">")
	_, _ = w.Write(body)
	_, _ = w.WriteString("</code></pre>\n")
	return ast.WalkSkipChildren, nil
}

func writeAttr(w util.BufWriter, name, value string) {
	_, _ = w.WriteString(" " + name + `="`)
	_, _ = w.Write(util.EscapeHTML([]byte(value)))
	_ = w.WriteByte('"')
}
