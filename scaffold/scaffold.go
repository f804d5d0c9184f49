// Package scaffold creates a new folio site: a config file and a content
// directory with one post and one project.
package scaffold

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Templates contains all scaffold template files.
// Files use Go text/template syntax and have a .tmpl suffix.
//
//go:embed all:templates
var Templates embed.FS

// Data holds the template variables passed to every scaffold template.
type Data struct {
	ProjectName string
	SiteName    string
	Date        string
}

// NewData derives the template data for a site created in dir on now.
func NewData(dir string, now time.Time) Data {
	name := filepath.Base(dir)
	return Data{
		ProjectName: name,
		SiteName:    ToTitle(name),
		Date:        now.Format("2006-01-02"),
	}
}

// Generate writes the site into dir, which must not exist yet. Every
// created path is reported to out.
func Generate(dir string, data Data, out io.Writer) error {
	if _, err := os.Stat(dir); err == nil {
		return fmt.Errorf("directory %q already exists", dir)
	}

	const root = "templates"
	return fs.WalkDir(Templates, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		outPath := strings.TrimSuffix(filepath.Join(dir, relPath), ".tmpl")
		if d.IsDir() {
			return os.MkdirAll(outPath, 0o755)
		}

		if filepath.Base(outPath) == "project.md" {
			outPath = filepath.Join(filepath.Dir(outPath), data.ProjectName+".md")
		}

		src, err := Templates.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		tmpl, err := template.New(filepath.Base(path)).Parse(string(src))
		if err != nil {
			return fmt.Errorf("parse template %s: %w", path, err)
		}
		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			return err
		}
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create %s: %w", outPath, err)
		}
		defer f.Close()

		if err := tmpl.Execute(f, data); err != nil {
			return fmt.Errorf("execute template %s: %w", path, err)
		}
		fmt.Fprintf(out, "  created %s\n", outPath)
		return nil
	})
}

// ToTitle converts a hyphenated or lowercase name to a title-case string.
// e.g. "my-site" -> "My Site"
func ToTitle(s string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(s, "-", " "))
}
