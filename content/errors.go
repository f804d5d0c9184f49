package content

import (
	"fmt"
	"strings"
)

// ParseError reports a missing or malformed front-matter block. It is not
// fatal: the document continues through the pipeline without metadata.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "parse front matter: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Issue is one violated front-matter constraint.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	return i.Path + ": " + i.Message
}

// ValidationError lists every front-matter constraint a document violates.
type ValidationError struct {
	Layout string
	Issues []Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		parts[i] = issue.String()
	}
	if e.Layout == "" {
		return "invalid front matter: " + strings.Join(parts, "; ")
	}
	return fmt.Sprintf("invalid %s front matter: %s", e.Layout, strings.Join(parts, "; "))
}

// Has reports whether any issue refers to path or to an element below it.
func (e *ValidationError) Has(path string) bool {
	for _, issue := range e.Issues {
		if issue.Path == path || strings.HasPrefix(issue.Path, path+".") {
			return true
		}
	}
	return false
}

const headingDepthMessage = "Headings depths other than 2 or 3 are not allowed."

// StructuralError reports the first heading that breaks the depth rule.
// Level is set for markdown headings, Tag for embedded HTML headings.
type StructuralError struct {
	Level int
	Tag   string
	Line  int
}

func (e *StructuralError) Error() string {
	what := fmt.Sprintf("h%d", e.Level)
	if e.Tag != "" {
		what = "<" + e.Tag + ">"
	}
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s: %s", e.Line, what, headingDepthMessage)
	}
	return what + ": " + headingDepthMessage
}
