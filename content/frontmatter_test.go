package content

import (
	"errors"
	"strings"
	"testing"

	"github.com/adrg/frontmatter"
)

func TestExtract(t *testing.T) {
	raw := []byte("---\ntitle: Hello\ntags: [a, b]\n---\n## Body\n")
	matter, body, err := Extract(raw)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if matter["title"] != "Hello" {
		t.Errorf("title = %v, want %q", matter["title"], "Hello")
	}
	tags, ok := matter["tags"].([]any)
	if !ok || len(tags) != 2 {
		t.Errorf("tags = %#v, want two items", matter["tags"])
	}
	if strings.TrimSpace(string(body)) != "## Body" {
		t.Errorf("body = %q, want %q", body, "## Body\n")
	}
}

func TestExtractMissingBlock(t *testing.T) {
	raw := []byte("## Just a body\n")
	matter, body, err := Extract(raw)
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if !errors.Is(err, frontmatter.ErrNotFound) {
		t.Errorf("expected ErrNotFound to be wrapped, got %v", err)
	}
	if matter != nil {
		t.Errorf("matter = %v, want nil", matter)
	}
	if string(body) != string(raw) {
		t.Errorf("body = %q, want input unchanged", body)
	}
}

func TestExtractMalformedBlock(t *testing.T) {
	_, _, err := Extract([]byte("---\ntitle: [unclosed\n---\nbody\n"))
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
}
