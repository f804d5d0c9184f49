package folio

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/a-h/templ"

	"github.com/dheerajdev/folio/layouts"
)

// BuildReport lists what a static build wrote and which documents it
// rejected.
type BuildReport struct {
	Written  []string
	Failures []*DocumentError
}

// Build compiles every document and writes the site as static files under
// outDir. Rejected documents produce no output and are listed in the
// report; the rest of the site is still written.
func (a *App) Build(ctx context.Context, outDir string) (*BuildReport, error) {
	if err := a.Library.Reload(); err != nil {
		return nil, err
	}
	failures, err := a.Library.Errors()
	if err != nil {
		return nil, err
	}
	report := &BuildReport{Failures: failures}

	docs, err := a.Library.All()
	if err != nil {
		return nil, err
	}
	for _, doc := range docs {
		body, err := a.Library.Component(doc, a.Layouts)
		if err != nil {
			report.Failures = append(report.Failures, &DocumentError{Path: doc.Slug, Err: err})
			continue
		}
		page := layouts.Page(a.Config.Name, documentTitle(doc), body)
		rel := filepath.Join(strings.Trim(DocumentPath(doc), "/"), "index.html")
		if err := writeComponent(ctx, filepath.Join(outDir, rel), page); err != nil {
			return report, err
		}
		report.Written = append(report.Written, rel)
	}

	posts, err := a.Library.Posts()
	if err != nil {
		return report, err
	}
	projects, err := a.Library.Projects()
	if err != nil {
		return report, err
	}
	index := layouts.Page(a.Config.Name, a.Config.Name, layouts.Index(entries(posts), entries(projects)))
	if err := writeComponent(ctx, filepath.Join(outDir, "index.html"), index); err != nil {
		return report, err
	}
	report.Written = append(report.Written, "index.html")

	var feed bytes.Buffer
	if err := a.writeFeed(&feed, posts); err != nil {
		return report, fmt.Errorf("render feed: %w", err)
	}
	if err := writeFile(filepath.Join(outDir, "feed.xml"), feed.Bytes()); err != nil {
		return report, err
	}
	report.Written = append(report.Written, "feed.xml")
	return report, nil
}

func writeComponent(ctx context.Context, path string, cmp templ.Component) error {
	var buf bytes.Buffer
	if err := cmp.Render(ctx, &buf); err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}
	return writeFile(path, buf.Bytes())
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
