package folio

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dheerajdev/folio/engagement"
)

func newTestApp(t *testing.T, engagementOn bool) *App {
	t.Helper()
	root := t.TempDir()
	contents := filepath.Join(root, "contents")
	writeDoc(t, contents, "blog/hello.md", postDoc("Hello", "2024-02-01"))
	writeDoc(t, contents, "blog/second.md", postDoc("Second", "2024-03-01"))
	writeDoc(t, contents, "projects/folio.md", projectDoc)

	app := New(SiteConfig{
		Name:              "Dheeraj",
		URL:               "https://dheeraj.dev",
		ContentDir:        contents,
		DatabasePath:      filepath.Join(root, "data", "engagement.db"),
		EngagementEnabled: engagementOn,
		SessionSecret:     "test-secret",
	}, WithLogger(quietLogger()), WithStaticDir(filepath.Join(root, "public")))
	if err := app.Setup(); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	t.Cleanup(func() { app.Close() })
	return app
}

func get(app *App, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	app.Echo.ServeHTTP(rec, req)
	return rec
}

func TestIndexListsPostsAndProjects(t *testing.T) {
	app := newTestApp(t, false)
	rec := get(app, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	second := strings.Index(body, `href="/blog/second/"`)
	hello := strings.Index(body, `href="/blog/hello/"`)
	if second < 0 || hello < 0 || second > hello {
		t.Errorf("expected newest post first:\n%s", body)
	}
	if !strings.Contains(body, `href="/projects/folio/"`) {
		t.Errorf("expected project link:\n%s", body)
	}
	if !strings.Contains(body, "Notes · About Hello") {
		t.Errorf("expected title cased category:\n%s", body)
	}
}

func TestPostPage(t *testing.T) {
	app := newTestApp(t, false)
	rec := get(app, "/blog/hello/")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"<title>Hello | Dheeraj</title>",
		`<article class="post" lang="en">`,
		`<a href="#intro">Intro</a>`,
		`<h2 id="intro">Intro</h2>`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("missing %q in:\n%s", want, body)
		}
	}
}

func TestDocumentRouting(t *testing.T) {
	app := newTestApp(t, false)
	tests := []struct {
		path string
		code int
	}{
		{"/projects/folio/", http.StatusOK},
		{"/projects/hello/", http.StatusNotFound},
		{"/blog/folio/", http.StatusNotFound},
		{"/blog/missing/", http.StatusNotFound},
		{"/blog/hello", http.StatusMovedPermanently},
		{"/blog", http.StatusMovedPermanently},
		{"/nowhere/", http.StatusNotFound},
	}
	for _, tt := range tests {
		if rec := get(app, tt.path); rec.Code != tt.code {
			t.Errorf("GET %s = %d, want %d", tt.path, rec.Code, tt.code)
		}
	}
}

func TestFeed(t *testing.T) {
	app := newTestApp(t, false)
	rec := get(app, "/feed.xml")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/rss+xml") {
		t.Errorf("Content-Type = %q", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "<link>https://dheeraj.dev/blog/second/</link>") {
		t.Errorf("feed missing post link:\n%s", body)
	}
	if strings.Contains(body, "/projects/folio/") {
		t.Errorf("projects must not appear in the feed")
	}
}

func TestEngagementAPIMounted(t *testing.T) {
	app := newTestApp(t, true)

	req := httptest.NewRequest(http.MethodPost, "/api/content/hello/reactions",
		strings.NewReader(`{"contentType":"POST","contentTitle":"Hello","type":"THINKING","count":2}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	app.Echo.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Error("expected a request id header")
	}

	rec = get(app, "/api/content/hello")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if cc := rec.Header().Get("Cache-Control"); cc != "no-store" {
		t.Errorf("Cache-Control = %q, want no-store", cc)
	}
	var detail engagement.ContentDetail
	if err := json.Unmarshal(rec.Body.Bytes(), &detail); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if detail.Meta.ReactionsDetail.Thinking != 2 {
		t.Errorf("expected 2 thinking reactions, got %+v", detail.Meta)
	}
}

func TestEngagementDisabled(t *testing.T) {
	app := newTestApp(t, false)
	if rec := get(app, "/api/content/hello"); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 without engagement, got %d", rec.Code)
	}
}

func TestSetupRequiresSessionSecret(t *testing.T) {
	app := New(SiteConfig{
		EngagementEnabled: true,
		DatabasePath:      filepath.Join(t.TempDir(), "e.db"),
	}, WithLogger(quietLogger()))
	if err := app.Setup(); err == nil {
		t.Fatal("expected error without SessionSecret")
	}
}

func TestBuildWritesSite(t *testing.T) {
	app := newTestApp(t, false)
	writeDoc(t, app.Config.ContentDir, "blog/broken.md", "---\ntitle: Broken\ndescription: d\n---\n## A\n")
	out := filepath.Join(t.TempDir(), "dist")

	report, err := app.Build(context.Background(), out)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(report.Failures) != 1 || !strings.Contains(report.Failures[0].Error(), "broken.md") {
		t.Fatalf("expected broken.md to fail, got %v", report.Failures)
	}
	for _, rel := range []string{
		"index.html",
		"feed.xml",
		filepath.Join("blog", "hello", "index.html"),
		filepath.Join("blog", "second", "index.html"),
		filepath.Join("projects", "folio", "index.html"),
	} {
		if _, err := os.Stat(filepath.Join(out, rel)); err != nil {
			t.Errorf("expected %s: %v", rel, err)
		}
	}
	if _, err := os.Stat(filepath.Join(out, "blog", "broken")); !os.IsNotExist(err) {
		t.Errorf("rejected document must not be written")
	}
	if len(report.Written) != 5 {
		t.Errorf("expected 5 written files, got %v", report.Written)
	}
}
