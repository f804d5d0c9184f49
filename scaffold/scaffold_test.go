package scaffold

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestGenerate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "my-site")
	data := NewData(dir, time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC))
	var out bytes.Buffer

	if err := Generate(dir, data, &out); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	post, err := os.ReadFile(filepath.Join(dir, "contents", "blog", "hello-world.md"))
	if err != nil {
		t.Fatalf("read post: %v", err)
	}
	if !strings.Contains(string(post), `date: "2024-03-09"`) {
		t.Errorf("post front matter missing date:\n%s", post)
	}
	if _, err := os.Stat(filepath.Join(dir, "contents", "projects", "my-site.md")); err != nil {
		t.Errorf("project file not named after the site: %v", err)
	}
	cfg, err := os.ReadFile(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if !strings.Contains(string(cfg), "name: My Site") {
		t.Errorf("config missing site name:\n%s", cfg)
	}
	if !strings.Contains(out.String(), "created") {
		t.Errorf("expected created paths to be reported, got %q", out.String())
	}
}

func TestGenerateRefusesExistingDir(t *testing.T) {
	dir := t.TempDir()
	if err := Generate(dir, NewData(dir, time.Now()), &bytes.Buffer{}); err == nil {
		t.Fatal("expected error for existing directory")
	}
}

func TestToTitle(t *testing.T) {
	tests := map[string]string{
		"my-site": "My Site",
		"folio":   "Folio",
	}
	for in, want := range tests {
		if got := ToTitle(in); got != want {
			t.Errorf("ToTitle(%q) = %q, want %q", in, got, want)
		}
	}
}
