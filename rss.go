package folio

import (
	"encoding/xml"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dheerajdev/folio/content"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Language    string    `xml:"language,omitempty"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	PubDate     string   `xml:"pubDate"`
	GUID        string   `xml:"guid"`
	Categories  []string `xml:"category"`
}

// writeFeed writes an RSS 2.0 feed of posts, which must be Post documents.
func (a *App) writeFeed(w io.Writer, posts []*content.Document) error {
	base := a.Config.URL
	items := make([]rssItem, 0, len(posts))
	for _, doc := range posts {
		fm := doc.FrontMatter
		pubDate := ""
		if t, err := time.Parse("2006-01-02", fm.Post.Date); err == nil {
			pubDate = t.Format(time.RFC1123Z)
		}
		postURL := BuildURL(base, "blog", doc.Slug)
		items = append(items, rssItem{
			Title:       fm.Title,
			Link:        postURL,
			Description: fm.Description,
			PubDate:     pubDate,
			GUID:        postURL,
			Categories:  fm.Post.Tags,
		})
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       a.Config.Name,
			Link:        base,
			Description: a.Config.Description,
			Items:       items,
		},
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	return enc.Encode(feed)
}

func (a *App) renderRSS(c echo.Context, posts []*content.Document) error {
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	return a.writeFeed(c.Response(), posts)
}
