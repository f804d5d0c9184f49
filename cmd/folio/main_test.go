package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	buildOut, buildContent, checkContent = "dist", "", ""
	schemaLayout = "Post"

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "none.yaml")}, args...))
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestVersionCmd(t *testing.T) {
	original := version
	version = "test-1.0.0"
	defer func() { version = original }()

	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "folio version test-1.0.0")
}

func TestNewThenBuild(t *testing.T) {
	site := filepath.Join(t.TempDir(), "my-site")
	_, _, err := execute(t, "new", site)
	require.NoError(t, err)

	dist := filepath.Join(t.TempDir(), "dist")
	out, stderr, err := execute(t, "build", "--content", filepath.Join(site, "contents"), "--out", dist)
	require.NoError(t, err, stderr)
	assert.Contains(t, out, "Wrote 4 files")

	page, err := os.ReadFile(filepath.Join(dist, "blog", "hello-world", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(page), `<a href="#writing-posts">Writing posts</a>`)
	assert.Contains(t, string(page), `data-filename="main.go"`)
	assert.Contains(t, string(page), `<span class="inline-highlight fn">Println</span>`)

	_, err = os.Stat(filepath.Join(dist, "projects", "my-site", "index.html"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dist, "feed.xml"))
	assert.NoError(t, err)
}

func TestBuildFailsOnInvalidDocument(t *testing.T) {
	contents := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(contents, "ok.md"), []byte("---\ntitle: Ok\ndescription: fine\nlayout: Project\n---\n## Fine\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(contents, "deep.md"), []byte("---\ntitle: Deep\ndescription: bad\nlayout: Project\n---\n#### Too deep\n"), 0o644))

	dist := filepath.Join(t.TempDir(), "dist")
	_, stderr, err := execute(t, "build", "--content", contents, "--out", dist)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 document(s) failed")
	assert.Contains(t, stderr, "deep.md")
	assert.Contains(t, stderr, "Headings depths other than 2 or 3 are not allowed")

	_, err = os.Stat(filepath.Join(dist, "projects", "ok", "index.html"))
	assert.NoError(t, err, "valid documents are still written")
	_, err = os.Stat(filepath.Join(dist, "projects", "deep", "index.html"))
	assert.True(t, os.IsNotExist(err), "no output for a rejected document")
}

func TestCheckReportsValidationIssues(t *testing.T) {
	contents := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(contents, "post.md"), []byte("---\ntitle: Post\ndescription: d\ndate: 2024/01/01\nlang: en\ntags: [one]\ncategory: c\n---\nBody\n"), 0o644))

	out, stderr, err := execute(t, "check", "--content", contents)
	require.Error(t, err)
	assert.Contains(t, out, "0 document(s) ok, 1 failed")
	assert.Contains(t, stderr, "date")
	assert.Contains(t, stderr, "tags")
}

func TestSchemaCmd(t *testing.T) {
	out, _, err := execute(t, "schema", "--layout", "Post")
	require.NoError(t, err)
	assert.Contains(t, out, `"tags"`)
	assert.Contains(t, out, `"minItems": 2`)

	_, _, err = execute(t, "schema", "--layout", "Page")
	assert.Error(t, err)
}
