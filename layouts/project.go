package layouts

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/dheerajdev/folio/content"
)

// Project renders a project page with its repository and package links.
func Project(fm map[string]any, toc []content.TOCEntry, children templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{ctx: ctx, w: w}
		h.raw(`<article class="project"><header><h1>`)
		h.text(str(fm, "title"))
		h.raw(`</h1><p class="description">`)
		h.text(str(fm, "description"))
		h.raw(`</p><ul class="links">`)
		link(h, str(fm, "githubUrl"), "GitHub")
		link(h, str(fm, "npmUrl"), "npm")
		h.raw(`</ul></header>`)
		tableOfContents(h, toc)
		h.raw(`<div class="prose">`)
		h.render(children)
		h.raw(`</div></article>`)
		return h.err
	})
}

func link(h *htmlWriter, href, label string) {
	if href == "" {
		return
	}
	h.raw(`<li><a rel="noopener noreferrer" target="_blank" href="`)
	h.text(string(templ.URL(href)))
	h.raw(`">`)
	h.text(label)
	h.raw(`</a></li>`)
}
