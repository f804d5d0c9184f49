package content

import (
	"fmt"
	"net/url"
	"regexp"
	"time"
	"unicode/utf8"
)

// Layout names with a dedicated front-matter variant.
const (
	LayoutPost    = "Post"
	LayoutProject = "Project"
)

// Lang is the language a post is written in.
type Lang string

const (
	LangID Lang = "id"
	LangEN Lang = "en"
)

// ProjectType classifies a project page.
type ProjectType string

const ProjectPackage ProjectType = "package"

const (
	maxTitleLen       = 110
	maxDescriptionLen = 120
	minTags           = 2
	maxTags           = 5
)

var datePattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[012])-(0[1-9]|[12][0-9]|3[01])$`)

// Base holds the fields every layout shares.
type Base struct {
	Title       string `json:"title" jsonschema:"maxLength=110"`
	Description string `json:"description" jsonschema:"maxLength=120"`
	Caption     string `json:"caption,omitempty"`
	Layout      string `json:"layout,omitempty" jsonschema:"default=Post"`
}

// PostFields extends Base when layout is "Post".
type PostFields struct {
	Date     string   `json:"date" jsonschema:"pattern=^[0-9]{4}-(0[1-9]|1[012])-(0[1-9]|[12][0-9]|3[01])$"`
	Lang     Lang     `json:"lang" jsonschema:"enum=id,enum=en"`
	Tags     []string `json:"tags" jsonschema:"minItems=2,maxItems=5"`
	Category string   `json:"category"`
}

// ProjectFields extends Base when layout is "Project".
type ProjectFields struct {
	GithubURL string      `json:"githubUrl,omitempty" jsonschema:"format=uri"`
	NpmURL    string      `json:"npmUrl,omitempty" jsonschema:"format=uri"`
	Type      ProjectType `json:"type,omitempty" jsonschema:"enum=package,default=package"`
}

// FrontMatter is validated document metadata. At most one of Post and
// Project is set, selected by Layout; unknown layouts carry Base only.
type FrontMatter struct {
	Base
	Post    *PostFields
	Project *ProjectFields
}

// Props returns the metadata handed to the layout: every resolved field
// except the layout name itself.
func (fm *FrontMatter) Props() map[string]any {
	props := map[string]any{
		"title":       fm.Title,
		"description": fm.Description,
		"caption":     fm.Caption,
	}
	if p := fm.Post; p != nil {
		props["date"] = p.Date
		props["lang"] = string(p.Lang)
		props["tags"] = append([]string(nil), p.Tags...)
		props["category"] = p.Category
	}
	if p := fm.Project; p != nil {
		if p.GithubURL != "" {
			props["githubUrl"] = p.GithubURL
		}
		if p.NpmURL != "" {
			props["npmUrl"] = p.NpmURL
		}
		props["type"] = string(p.Type)
	}
	return props
}

// Validate checks a front-matter mapping against Base and then against the
// variant its layout selects. Unknown keys are ignored and values are never
// coerced.
func Validate(data map[string]any) (*FrontMatter, error) {
	var c checker
	fm := &FrontMatter{}
	fm.Title = c.requiredString(data, "title", maxTitleLen)
	fm.Description = c.requiredString(data, "description", maxDescriptionLen)
	fm.Caption = c.optionalString(data, "caption", "")
	fm.Layout = c.optionalString(data, "layout", LayoutPost)
	if len(c.issues) > 0 {
		return nil, &ValidationError{Issues: c.issues}
	}

	switch fm.Layout {
	case LayoutPost:
		fm.Post = c.post(data)
	case LayoutProject:
		fm.Project = c.project(data)
	}
	if len(c.issues) > 0 {
		return nil, &ValidationError{Layout: fm.Layout, Issues: c.issues}
	}
	return fm, nil
}

type checker struct {
	issues []Issue
}

func (c *checker) add(path, format string, args ...any) {
	c.issues = append(c.issues, Issue{Path: path, Message: fmt.Sprintf(format, args...)})
}

func (c *checker) requiredString(data map[string]any, key string, max int) string {
	v, ok := data[key]
	if !ok {
		c.add(key, "Required")
		return ""
	}
	return c.checkString(key, v, max)
}

func (c *checker) optionalString(data map[string]any, key, def string) string {
	v, ok := data[key]
	if !ok {
		return def
	}
	return c.checkString(key, v, 0)
}

func (c *checker) checkString(path string, v any, max int) string {
	s, ok := v.(string)
	if !ok {
		c.add(path, "Expected string, received %s", typeName(v))
		return ""
	}
	if max > 0 && utf8.RuneCountInString(s) > max {
		c.add(path, "String must contain at most %d character(s)", max)
	}
	return s
}

func (c *checker) post(data map[string]any) *PostFields {
	p := &PostFields{}

	switch v := data["date"].(type) {
	case nil:
		if _, ok := data["date"]; !ok {
			c.add("date", "Required")
		} else {
			c.add("date", "Expected string, received null")
		}
	case time.Time:
		// YAML decoders may type an unquoted date; keep its calendar day.
		p.Date = v.UTC().Format("2006-01-02")
	case string:
		if !datePattern.MatchString(v) {
			c.add("date", "Date format MUST be YYYY-MM-DD")
		}
		p.Date = v
	default:
		c.add("date", "Expected string, received %s", typeName(v))
	}

	switch v, ok := data["lang"]; {
	case !ok:
		c.add("lang", "Required")
	default:
		lang, isString := v.(string)
		switch {
		case !isString:
			c.add("lang", "Expected string, received %s", typeName(v))
		case Lang(lang) == LangID, Lang(lang) == LangEN:
			p.Lang = Lang(lang)
		default:
			c.add("lang", "Invalid enum value. Expected 'id' | 'en', received '%s'", lang)
		}
	}

	p.Tags = c.tags(data)
	p.Category = c.requiredString(data, "category", 0)
	return p
}

func (c *checker) tags(data map[string]any) []string {
	v, ok := data["tags"]
	if !ok {
		c.add("tags", "Required")
		return nil
	}
	items, ok := v.([]any)
	if !ok {
		c.add("tags", "Expected array, received %s", typeName(v))
		return nil
	}
	tags := make([]string, 0, len(items))
	for i, item := range items {
		tags = append(tags, c.checkString(fmt.Sprintf("tags.%d", i), item, 0))
	}
	switch {
	case len(items) < minTags:
		c.add("tags", "Array must contain at least %d element(s)", minTags)
	case len(items) > maxTags:
		c.add("tags", "Array must contain at most %d element(s)", maxTags)
	}
	return tags
}

func (c *checker) project(data map[string]any) *ProjectFields {
	p := &ProjectFields{Type: ProjectPackage}
	p.GithubURL = c.optionalURL(data, "githubUrl")
	p.NpmURL = c.optionalURL(data, "npmUrl")
	if t := c.optionalString(data, "type", string(ProjectPackage)); t != string(ProjectPackage) {
		if _, isString := data["type"].(string); isString {
			c.add("type", "Invalid enum value. Expected 'package', received '%s'", t)
		}
	}
	return p
}

func (c *checker) optionalURL(data map[string]any, key string) string {
	v, ok := data[key]
	if !ok {
		return ""
	}
	s := c.checkString(key, v, 0)
	if _, isString := v.(string); !isString {
		return ""
	}
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || (u.Host == "" && u.Opaque == "") {
		c.add(key, "Invalid url")
	}
	return s
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case int, int64, uint64, float64:
		return "number"
	case time.Time:
		return "date"
	case []any:
		return "array"
	default:
		return "object"
	}
}
