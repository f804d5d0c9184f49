package layouts

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/dheerajdev/folio/content"
)

// Post renders a blog article with its header and table of contents.
func Post(fm map[string]any, toc []content.TOCEntry, children templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{ctx: ctx, w: w}
		lang := str(fm, "lang")
		if lang == "" {
			lang = "en"
		}
		h.raw(`<article class="post" lang="`)
		h.text(lang)
		h.raw(`"><header><h1>`)
		h.text(str(fm, "title"))
		h.raw(`</h1>`)
		if caption := str(fm, "caption"); caption != "" {
			h.raw(`<p class="caption">`)
			h.text(caption)
			h.raw(`</p>`)
		}
		h.raw(`<p class="meta"><time datetime="`)
		h.text(str(fm, "date"))
		h.raw(`">`)
		h.text(str(fm, "date"))
		h.raw(`</time>`)
		if category := str(fm, "category"); category != "" {
			h.raw(` · <span class="category">`)
			h.text(category)
			h.raw(`</span>`)
		}
		h.raw(`</p>`)
		if tags := strs(fm, "tags"); len(tags) > 0 {
			h.raw(`<ul class="tags">`)
			for _, tag := range tags {
				h.raw(`<li>#`)
				h.text(strings.ToLower(tag))
				h.raw(`</li>`)
			}
			h.raw(`</ul>`)
		}
		h.raw(`</header>`)
		tableOfContents(h, toc)
		h.raw(`<div class="prose">`)
		h.render(children)
		h.raw(`</div></article>`)
		return h.err
	})
}

func tableOfContents(h *htmlWriter, toc []content.TOCEntry) {
	if len(toc) == 0 {
		return
	}
	h.raw(`<nav class="toc" aria-label="Table of contents"><ul>`)
	for _, entry := range toc {
		h.raw(`<li class="toc-depth-`)
		if entry.Depth == 2 {
			h.raw(`2`)
		} else {
			h.raw(`1`)
		}
		h.raw(`"><a href="#`)
		h.text(entry.Slug)
		h.raw(`">`)
		h.text(entry.Title)
		h.raw(`</a></li>`)
	}
	h.raw(`</ul></nav>`)
}
