// Package content turns raw documents into validated, layout-wrapped
// document trees.
//
// A document is a YAML front-matter block followed by a markdown body.
// The default pipeline validates the front matter, enforces the heading
// depth rule, builds the table of contents, and injects the layout nodes.
package content

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"

	"github.com/dheerajdev/folio/markdown"
)

// Document is one content document moving through the pipeline.
type Document struct {
	Slug string
	Raw  []byte

	// Source is the body after the front-matter block. Tree positions refer to it.
	Source   []byte
	BodyLine int
	Tree     ast.Node

	// Matter is the raw front-matter mapping; nil when the block was absent
	// or could not be parsed (see ParseErr).
	Matter      map[string]any
	ParseErr    error
	FrontMatter *FrontMatter
	TOC         []TOCEntry
}

// Stage is one step of the pipeline.
type Stage interface {
	Name() string
	Apply(doc *Document) error
}

type stageFunc struct {
	name string
	fn   func(*Document) error
}

func (s stageFunc) Name() string              { return s.name }
func (s stageFunc) Apply(doc *Document) error { return s.fn(doc) }

// NewStage adapts fn to a Stage.
func NewStage(name string, fn func(*Document) error) Stage {
	return stageFunc{name: name, fn: fn}
}

// FrontMatterStage validates the front matter. An absent or empty mapping
// leaves the document undecorated.
func FrontMatterStage() Stage {
	return NewStage("frontmatter", func(doc *Document) error {
		if len(doc.Matter) == 0 {
			return nil
		}
		fm, err := Validate(doc.Matter)
		if err != nil {
			return err
		}
		doc.FrontMatter = fm
		return nil
	})
}

// StrictStage enforces the heading depth rule.
func StrictStage() Stage {
	return NewStage("strict", func(doc *Document) error {
		err := CheckHeadings(doc.Tree, doc.Source)
		var se *StructuralError
		if errors.As(err, &se) && se.Line > 0 {
			se.Line += doc.BodyLine - 1
		}
		return err
	})
}

// TOCStage builds the table of contents.
func TOCStage() Stage {
	return NewStage("toc", func(doc *Document) error {
		doc.TOC = TableOfContents(doc.Tree, doc.Source)
		return nil
	})
}

// LayoutStage injects the layout nodes.
func LayoutStage() Stage {
	return NewStage("layout", func(doc *Document) error {
		InjectLayout(doc.Tree, doc.FrontMatter, doc.TOC)
		return nil
	})
}

// DefaultStages returns the stages in their required order.
func DefaultStages() []Stage {
	return []Stage{FrontMatterStage(), StrictStage(), TOCStage(), LayoutStage()}
}

// Pipeline parses documents and runs them through its stages in order.
type Pipeline struct {
	md     goldmark.Markdown
	stages []Stage
}

// NewPipeline creates a pipeline over md. Without stages it runs DefaultStages.
func NewPipeline(md goldmark.Markdown, stages ...Stage) *Pipeline {
	if len(stages) == 0 {
		stages = DefaultStages()
	}
	return &Pipeline{md: md, stages: stages}
}

// Markdown returns the goldmark instance documents are parsed with.
func (p *Pipeline) Markdown() goldmark.Markdown {
	return p.md
}

// Process runs raw through the pipeline. On error no document is returned;
// the error keeps its type for errors.As (*ValidationError, *StructuralError).
func (p *Pipeline) Process(slug string, raw []byte) (*Document, error) {
	doc := &Document{Slug: slug, Raw: raw, Source: raw, BodyLine: 1}

	matter, body, err := Extract(raw)
	var perr *ParseError
	switch {
	case err == nil:
		doc.Matter = matter
		doc.Source = body
		if bytes.HasSuffix(raw, body) {
			doc.BodyLine = bytes.Count(raw[:len(raw)-len(body)], []byte("\n")) + 1
		}
	case errors.As(err, &perr):
		doc.ParseErr = err
	default:
		return nil, fmt.Errorf("%s: %w", slug, err)
	}

	doc.Tree = markdown.Parse(p.md, doc.Source)
	for _, s := range p.stages {
		if err := s.Apply(doc); err != nil {
			return nil, fmt.Errorf("%s: stage %s: %w", slug, s.Name(), err)
		}
	}
	return doc, nil
}
