package content

import (
	"errors"
	"testing"

	"github.com/dheerajdev/folio/markdown"
)

func TestCheckHeadings(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		level int
		tag   string
		line  int
	}{
		{"allowed depths", "## Two\n\n### Three\n", 0, "", 0},
		{"level one", "intro\n\n# One\n", 1, "", 3},
		{"level four", "## Two\n\n#### Four\n", 4, "", 3},
		{"setext level one", "Title\n=====\n", 1, "", 1},
		{"html h1", "<h1>Title</h1>\n", 0, "h1", 1},
		{"html h5 upper case", "## ok\n\n<H5 class=\"x\">Title</H5>\n", 0, "h5", 3},
		{"html h2 allowed", "<h2>Title</h2>\n", 0, "", 0},
		{"nested heading ignored", "> # Quoted\n", 0, "", 0},
		{"first violation wins", "# One\n\n#### Four\n", 1, "", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := []byte(tt.src)
			err := CheckHeadings(markdown.Parse(markdown.New(), src), src)
			if tt.level == 0 && tt.tag == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var se *StructuralError
			if !errors.As(err, &se) {
				t.Fatalf("expected *StructuralError, got %v", err)
			}
			if se.Level != tt.level || se.Tag != tt.tag || se.Line != tt.line {
				t.Errorf("got %+v, want level=%d tag=%q line=%d", se, tt.level, tt.tag, tt.line)
			}
		})
	}
}

func TestStructuralErrorMessage(t *testing.T) {
	err := &StructuralError{Level: 4, Line: 12}
	want := "line 12: h4: Headings depths other than 2 or 3 are not allowed."
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
