package folio

import (
	"net/url"
	"path"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dheerajdev/folio/content"
	"github.com/dheerajdev/folio/layouts"
)

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// DocumentPath returns the site path a document is served at.
func DocumentPath(doc *content.Document) string {
	switch layoutOf(doc) {
	case content.LayoutPost:
		return "/blog/" + doc.Slug + "/"
	case content.LayoutProject:
		return "/projects/" + doc.Slug + "/"
	}
	return "/" + doc.Slug + "/"
}

// entries converts documents into index entries. Categories are shown
// title cased in front of the description.
func entries(docs []*content.Document) []layouts.Entry {
	out := make([]layouts.Entry, 0, len(docs))
	titleCase := cases.Title(language.English)
	for _, doc := range docs {
		fm := doc.FrontMatter
		e := layouts.Entry{
			Title:       fm.Title,
			Description: fm.Description,
			Href:        DocumentPath(doc),
		}
		if p := fm.Post; p != nil {
			e.Date = p.Date
			e.Tags = p.Tags
			if p.Category != "" {
				e.Description = titleCase.String(p.Category) + " · " + e.Description
			}
		}
		out = append(out, e)
	}
	return out
}

func documentTitle(doc *content.Document) string {
	if doc.FrontMatter != nil {
		return doc.FrontMatter.Title
	}
	return doc.Slug
}
