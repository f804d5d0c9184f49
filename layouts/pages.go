package layouts

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Entry is one listed document.
type Entry struct {
	Title       string
	Description string
	Date        string
	Tags        []string
	Href        string
}

// Page is the document shell every HTML response shares.
func Page(siteName, title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{ctx: ctx, w: w}
		h.raw(`<!DOCTYPE html><html><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<link rel="alternate" type="application/rss+xml" href="/feed.xml">`)
		h.raw(`<title>`)
		if title != "" && title != siteName {
			h.text(title)
			h.raw(` | `)
		}
		h.text(siteName)
		h.raw(`</title></head><body><main>`)
		h.render(body)
		h.raw(`</main></body></html>`)
		return h.err
	})
}

// Index lists posts and projects.
func Index(posts, projects []Entry) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{ctx: ctx, w: w}
		section(h, "posts", "Blog", posts)
		section(h, "projects", "Projects", projects)
		return h.err
	})
}

func section(h *htmlWriter, id, heading string, entries []Entry) {
	if len(entries) == 0 {
		return
	}
	h.raw(`<section id="`)
	h.text(id)
	h.raw(`"><h2>`)
	h.text(heading)
	h.raw(`</h2><ul>`)
	for _, e := range entries {
		h.raw(`<li><a href="`)
		h.text(e.Href)
		h.raw(`">`)
		h.text(e.Title)
		h.raw(`</a>`)
		if e.Date != "" {
			h.raw(` <time>`)
			h.text(e.Date)
			h.raw(`</time>`)
		}
		h.raw(`<p>`)
		h.text(e.Description)
		h.raw(`</p></li>`)
	}
	h.raw(`</ul></section>`)
}

// NotFound is the 404 page body.
func NotFound() templ.Component {
	return message("Not found", "The page you are looking for does not exist.")
}

// ServerError is the 500 page body.
func ServerError() templ.Component {
	return message("Something went wrong", "Please try again later.")
}

func message(title, text string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{ctx: ctx, w: w}
		h.raw(`<section class="message"><h2>`)
		h.text(title)
		h.raw(`</h2><p>`)
		h.text(text)
		h.raw(`</p></section>`)
		return h.err
	})
}
