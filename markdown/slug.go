package markdown

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slugify converts a heading or title to a URL-safe slug.
// Accents are folded ("Café" becomes "cafe"), letters and digits are kept,
// and every other run of characters collapses into a single hyphen.
func Slugify(s string) string {
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(fold, s); err == nil {
		s = folded
	}
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	prev := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prev = false
		default:
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// headingIDs hands out unique heading ids for one document.
type headingIDs struct {
	seen map[string]struct{}
}

// NewIDs returns a parser.IDs that slugifies heading text and appends
// -1, -2, ... when a slug was already used in the same document.
func NewIDs() parser.IDs {
	return &headingIDs{seen: make(map[string]struct{})}
}

func (h *headingIDs) Generate(value []byte, kind ast.NodeKind) []byte {
	base := Slugify(string(value))
	if base == "" {
		base = "section"
		if kind != ast.KindHeading {
			base = "id"
		}
	}
	id := base
	for n := 1; ; n++ {
		if _, ok := h.seen[id]; !ok {
			break
		}
		id = base + "-" + strconv.Itoa(n)
	}
	h.seen[id] = struct{}{}
	return []byte(id)
}

func (h *headingIDs) Put(value []byte) {
	h.seen[string(value)] = struct{}{}
}
