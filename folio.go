// Package folio serves and builds a personal site from a directory of
// markdown documents, with an engagement API (views, shares and reactions)
// backed by SQLite.
//
// Documents go through the content pipeline: front matter is validated,
// heading depths are enforced, a table of contents is built and the layout
// the front matter selects is injected. Documents that fail any stage are
// reported and never rendered.
package folio

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/dheerajdev/folio/content"
	"github.com/dheerajdev/folio/engagement"
	"github.com/dheerajdev/folio/layouts"
	"github.com/dheerajdev/folio/markdown"
)

// App is the central folio application. It wires together the content
// library, the layouts, the engagement store, handlers and middleware.
type App struct {
	Config     SiteConfig
	Echo       *echo.Echo
	Library    *Library
	Layouts    *layouts.Registry
	Engagement *engagement.Store

	logger       *log.Logger
	customRoutes []func(*App)
	staticDir    string
	ready        bool
}

// New creates a new folio App with the given configuration.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		staticDir: "public",
	}
	a.Echo.HideBanner = true

	for _, opt := range opts {
		opt(a)
	}

	if a.logger == nil {
		a.logger = log.New("folio")
	}
	a.Echo.Logger = a.logger
	if a.Layouts == nil {
		a.Layouts = layouts.Default()
	}
	pipeline := content.NewPipeline(markdown.New(content.LayoutExtension))
	a.Library = NewLibrary(cfg.ContentDir, pipeline, cfg.CacheTTL, a.logger)

	return a
}

// Logger returns the logger shared by the app components.
func (a *App) Logger() *log.Logger {
	return a.logger
}

// Setup opens the engagement store and registers middleware and routes.
// Start calls it; tests call it directly and serve a.Echo.
func (a *App) Setup() error {
	if a.ready {
		return nil
	}
	if a.Config.EngagementEnabled {
		if a.Config.SessionSecret == "" {
			return fmt.Errorf("folio: SessionSecret is required when engagement is enabled")
		}
		store, err := engagement.NewStore(a.Config.DatabasePath)
		if err != nil {
			return fmt.Errorf("folio: init engagement store: %w", err)
		}
		a.Engagement = store
	}

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	a.ready = true
	return nil
}

// Start sets the app up and serves until ctx is done, then shuts the
// server down gracefully.
func (a *App) Start(ctx context.Context) error {
	if err := a.Setup(); err != nil {
		return err
	}
	if err := a.Library.Reload(); err != nil {
		return fmt.Errorf("folio: %w", err)
	}

	if a.Config.Watch {
		go func() {
			if err := a.Library.Watch(ctx); err != nil {
				a.logger.Errorf("Content watcher stopped: %v", err)
			}
		}()
	}

	errc := make(chan error, 1)
	go func() {
		errc <- a.Echo.Start(a.Config.Addr)
	}()

	select {
	case err := <-errc:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		return a.Echo.Shutdown(context.Background())
	}
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/public", a.staticDir)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/", a.handleIndex)
	e.GET("/blog", handleBlogRedirect)
	e.GET("/blog/:slug/", a.handlePost)
	e.GET("/projects/:slug/", a.handleProject)

	if a.Engagement != nil {
		engagement.NewHandler(a.Engagement).RegisterRoutes(e.Group("/api"))
	}
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.Engagement != nil {
		return a.Engagement.Close()
	}
	return nil
}
