package folio

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/a-h/templ"
	"github.com/benbjohnson/clock"
	"github.com/labstack/gommon/log"

	"github.com/dheerajdev/folio/content"
	"github.com/dheerajdev/folio/layouts"
	"github.com/dheerajdev/folio/markdown"
)

// ErrNotFound is returned when no document has the requested slug.
var ErrNotFound = errors.New("document not found")

// DocumentError records a document the pipeline rejected.
type DocumentError struct {
	Path string
	Err  error
}

func (e *DocumentError) Error() string {
	return e.Path + ": " + e.Err.Error()
}

func (e *DocumentError) Unwrap() error { return e.Err }

// Library is an in-memory cache of the compiled documents under a content
// directory. Documents are recompiled after the TTL expires or after
// Invalidate.
type Library struct {
	dir      string
	pipeline *content.Pipeline
	ttl      time.Duration
	clock    clock.Clock
	logger   *log.Logger

	mu       sync.RWMutex
	loaded   bool
	fetched  time.Time
	docs     map[string]*content.Document
	posts    []*content.Document
	projects []*content.Document
	failures []*DocumentError
}

// NewLibrary creates a library over the *.md and *.mdx files in dir.
func NewLibrary(dir string, pipeline *content.Pipeline, ttl time.Duration, logger *log.Logger) *Library {
	if logger == nil {
		logger = log.New("library")
	}
	return &Library{dir: dir, pipeline: pipeline, ttl: ttl, clock: clock.New(), logger: logger}
}

// Dir returns the content directory.
func (l *Library) Dir() string {
	return l.dir
}

func (l *Library) valid() bool {
	return l.loaded && l.clock.Since(l.fetched) < l.ttl
}

// Invalidate clears the cache so the next read recompiles every document.
func (l *Library) Invalidate() {
	l.mu.Lock()
	l.loaded = false
	l.mu.Unlock()
}

// Reload recompiles every document now.
func (l *Library) Reload() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loaded = false
	return l.load()
}

func (l *Library) load() error {
	if l.valid() {
		return nil
	}
	docs := make(map[string]*content.Document)
	var posts, projects []*content.Document
	var failures []*DocumentError

	err := filepath.WalkDir(l.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isContentFile(path) {
			return nil
		}
		rel, _ := filepath.Rel(l.dir, path)
		slug := strings.TrimSuffix(d.Name(), filepath.Ext(d.Name()))

		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", rel, err)
		}
		if _, dup := docs[slug]; dup {
			failures = append(failures, &DocumentError{Path: rel, Err: fmt.Errorf("duplicate slug %q", slug)})
			return nil
		}
		doc, err := l.pipeline.Process(slug, raw)
		if err != nil {
			failures = append(failures, &DocumentError{Path: rel, Err: err})
			return nil
		}
		if doc.ParseErr != nil {
			l.logger.Debugf("%s: no front matter: %v", rel, doc.ParseErr)
		}
		docs[slug] = doc
		switch layoutOf(doc) {
		case content.LayoutPost:
			posts = append(posts, doc)
		case content.LayoutProject:
			projects = append(projects, doc)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("load %s: %w", l.dir, err)
	}

	sort.SliceStable(posts, func(i, j int) bool {
		di, dj := posts[i].FrontMatter.Post.Date, posts[j].FrontMatter.Post.Date
		if di != dj {
			return di > dj
		}
		return posts[i].Slug < posts[j].Slug
	})
	sort.SliceStable(projects, func(i, j int) bool {
		return projects[i].Slug < projects[j].Slug
	})

	for _, f := range failures {
		l.logger.Errorf("Failed to compile %v", f)
	}
	l.docs, l.posts, l.projects, l.failures = docs, posts, projects, failures
	l.fetched = l.clock.Now()
	l.loaded = true
	return nil
}

// ensureLoaded tries a read lock first; it only takes the write lock when
// the cache needs a reload.
func (l *Library) ensureLoaded() error {
	l.mu.RLock()
	if l.valid() {
		l.mu.RUnlock()
		return nil
	}
	l.mu.RUnlock()

	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load()
}

func (l *Library) read(fn func()) error {
	if err := l.ensureLoaded(); err != nil {
		return err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	fn()
	return nil
}

// Posts returns the Post documents, newest first.
func (l *Library) Posts() ([]*content.Document, error) {
	var out []*content.Document
	err := l.read(func() { out = append(out, l.posts...) })
	return out, err
}

// Projects returns the Project documents ordered by slug.
func (l *Library) Projects() ([]*content.Document, error) {
	var out []*content.Document
	err := l.read(func() { out = append(out, l.projects...) })
	return out, err
}

// All returns every compiled document ordered by slug.
func (l *Library) All() ([]*content.Document, error) {
	var out []*content.Document
	err := l.read(func() {
		for _, doc := range l.docs {
			out = append(out, doc)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, err
}

// Get returns the document with the given slug.
func (l *Library) Get(slug string) (*content.Document, error) {
	var doc *content.Document
	if err := l.read(func() { doc = l.docs[slug] }); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrNotFound
	}
	return doc, nil
}

// Errors returns the documents rejected by the last compilation.
func (l *Library) Errors() ([]*DocumentError, error) {
	var out []*DocumentError
	err := l.read(func() { out = append(out, l.failures...) })
	return out, err
}

// Component renders doc inside the layout its front matter selects.
func (l *Library) Component(doc *content.Document, reg *layouts.Registry) (templ.Component, error) {
	body := markdown.Component(l.pipeline.Markdown(), doc.Source, doc.Tree)
	return reg.Wrap(doc.Tree, body)
}

func isContentFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".mdx":
		return true
	}
	return false
}

func layoutOf(doc *content.Document) string {
	if doc.FrontMatter == nil {
		return ""
	}
	return doc.FrontMatter.Layout
}
