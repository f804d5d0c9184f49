package folio

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dheerajdev/folio/content"
	"github.com/dheerajdev/folio/layouts"
)

func (a *App) handleIndex(c echo.Context) error {
	posts, err := a.Library.Posts()
	if err != nil {
		return err
	}
	projects, err := a.Library.Projects()
	if err != nil {
		return err
	}
	body := layouts.Index(entries(posts), entries(projects))
	return Render(c, layouts.Page(a.Config.Name, a.Config.Name, body))
}

func (a *App) handlePost(c echo.Context) error {
	return a.renderDocument(c, content.LayoutPost)
}

func (a *App) handleProject(c echo.Context) error {
	return a.renderDocument(c, content.LayoutProject)
}

// renderDocument serves the document named by the slug parameter when it
// uses the given layout.
func (a *App) renderDocument(c echo.Context, layout string) error {
	doc, err := a.Library.Get(c.Param("slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return RenderStatus(c, http.StatusNotFound, layouts.Page(a.Config.Name, "Not found", layouts.NotFound()))
		}
		return err
	}
	if layoutOf(doc) != layout {
		return RenderStatus(c, http.StatusNotFound, layouts.Page(a.Config.Name, "Not found", layouts.NotFound()))
	}
	body, err := a.Library.Component(doc, a.Layouts)
	if err != nil {
		return err
	}
	return Render(c, layouts.Page(a.Config.Name, documentTitle(doc), body))
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Library.Posts()
	if err != nil {
		return err
	}
	return a.renderRSS(c, posts)
}

func handleBlogRedirect(c echo.Context) error {
	return c.Redirect(http.StatusMovedPermanently, "/")
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, layouts.Page(a.Config.Name, "Not found", layouts.NotFound()))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, layouts.Page(a.Config.Name, "Error", layouts.ServerError()))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
