package engagement

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// Handler serves the engagement HTTP API.
type Handler struct {
	store        *Store
	writeLimiter *ipLimiter
}

// NewHandler creates a handler over store. Writes are limited to a burst
// of 30 per client IP, refilled at one per second.
func NewHandler(store *Store) *Handler {
	return &Handler{
		store:        store,
		writeLimiter: newIPLimiter(rate.Every(time.Second), 30, 10*time.Minute),
	}
}

// RegisterRoutes mounts the API on g (typically the "/api" group).
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/content", h.ListContent)
	g.GET("/content/new", h.NewContent)
	g.GET("/content/:slug", h.GetContent)
	g.POST("/content/:slug/views", h.RecordView, h.limitWrites)
	g.POST("/content/:slug/shares", h.RecordShare, h.limitWrites)
	g.POST("/content/:slug/reactions", h.RecordReaction, h.limitWrites)
	g.GET("/activity", h.RecentActivity)
}

func (h *Handler) limitWrites(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !h.writeLimiter.allow(c.RealIP()) {
			return c.NoContent(http.StatusTooManyRequests)
		}
		return next(c)
	}
}

// ViewRequest is the body of a view write.
type ViewRequest struct {
	ContentType  ContentType `json:"contentType"`
	ContentTitle string      `json:"contentTitle"`
}

// ShareRequest is the body of a share write.
type ShareRequest struct {
	ContentType  ContentType `json:"contentType"`
	ContentTitle string      `json:"contentTitle"`
	Type         ShareType   `json:"type"`
}

// ReactionRequest is the body of a batched reaction write.
type ReactionRequest struct {
	ContentType  ContentType  `json:"contentType"`
	ContentTitle string       `json:"contentTitle"`
	Type         ReactionType `json:"type"`
	Count        int          `json:"count"`
	Section      string       `json:"section,omitempty"`
}

// Input validation limits for write endpoints.
const (
	maxSlugLen     = 200
	maxTitleLen    = 200
	maxSectionLen  = 128
	maxActivity    = 50
	defaultWindow  = 24 * time.Hour
	newContentSpan = 8 * 24 * time.Hour
)

var slugPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

func validateContent(slug string, t ContentType, title string) error {
	if len(slug) > maxSlugLen || !slugPattern.MatchString(slug) {
		return fmt.Errorf("invalid slug")
	}
	if !t.Valid() {
		return fmt.Errorf("contentType must be POST or PROJECT")
	}
	if title == "" || len(title) > maxTitleLen {
		return fmt.Errorf("contentTitle must be 1-%d bytes", maxTitleLen)
	}
	return nil
}

func validateReaction(req *ReactionRequest) error {
	if !req.Type.Valid() {
		return fmt.Errorf("unknown reaction type %q", req.Type)
	}
	if req.Count < 1 || req.Count > MaxBatchCount {
		return fmt.Errorf("count must be between 1 and %d", MaxBatchCount)
	}
	if len(req.Section) > maxSectionLen {
		return fmt.Errorf("section exceeds maximum length of %d", maxSectionLen)
	}
	return nil
}

func badRequest(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
}

func internalError(c echo.Context) error {
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
}

// RecordView records a view of the content. Requests with DNT are
// acknowledged without recording.
func (h *Handler) RecordView(c echo.Context) error {
	if c.Request().Header.Get("DNT") == "1" {
		return c.NoContent(http.StatusNoContent)
	}
	var req ViewRequest
	if err := c.Bind(&req); err != nil {
		return c.String(http.StatusBadRequest, "Invalid request")
	}
	slug := c.Param("slug")
	if err := validateContent(slug, req.ContentType, req.ContentTitle); err != nil {
		return badRequest(c, err)
	}
	content := Content{Slug: slug, Type: req.ContentType, Title: req.ContentTitle}
	if err := h.store.RecordView(c.Request().Context(), content, h.sessionID(c)); err != nil {
		c.Logger().Errorf("Failed to record view: %v", err)
		return internalError(c)
	}
	return c.NoContent(http.StatusNoContent)
}

// RecordShare records a share of the content.
func (h *Handler) RecordShare(c echo.Context) error {
	var req ShareRequest
	if err := c.Bind(&req); err != nil {
		return c.String(http.StatusBadRequest, "Invalid request")
	}
	slug := c.Param("slug")
	if err := validateContent(slug, req.ContentType, req.ContentTitle); err != nil {
		return badRequest(c, err)
	}
	if !req.Type.Valid() {
		return badRequest(c, fmt.Errorf("unknown share type %q", req.Type))
	}
	content := Content{Slug: slug, Type: req.ContentType, Title: req.ContentTitle}
	if err := h.store.RecordShare(c.Request().Context(), content, req.Type, h.sessionID(c)); err != nil {
		c.Logger().Errorf("Failed to record share: %v", err)
		return internalError(c)
	}
	return c.NoContent(http.StatusNoContent)
}

// RecordReaction records a batch of reactions of one type.
func (h *Handler) RecordReaction(c echo.Context) error {
	var req ReactionRequest
	if err := c.Bind(&req); err != nil {
		return c.String(http.StatusBadRequest, "Invalid request")
	}
	slug := c.Param("slug")
	if err := validateContent(slug, req.ContentType, req.ContentTitle); err != nil {
		return badRequest(c, err)
	}
	if err := validateReaction(&req); err != nil {
		return badRequest(c, err)
	}
	content := Content{Slug: slug, Type: req.ContentType, Title: req.ContentTitle}
	reaction := Reaction{Type: req.Type, Count: req.Count, Section: req.Section, SessionID: h.sessionID(c)}
	if err := h.store.RecordReaction(c.Request().Context(), content, reaction); err != nil {
		if errors.Is(err, ErrInvalid) {
			return badRequest(c, err)
		}
		c.Logger().Errorf("Failed to record reaction: %v", err)
		return internalError(c)
	}
	return c.NoContent(http.StatusNoContent)
}

// GetContent returns the aggregate of a slug together with the calling
// session's share and the per-section breakdown.
func (h *Handler) GetContent(c echo.Context) error {
	slug := c.Param("slug")
	if len(slug) > maxSlugLen || !slugPattern.MatchString(slug) {
		return badRequest(c, fmt.Errorf("invalid slug"))
	}
	detail, err := h.store.ContentDetail(c.Request().Context(), slug, h.sessionID(c))
	if err != nil {
		c.Logger().Errorf("Failed to get content detail: %v", err)
		return internalError(c)
	}
	return c.JSON(http.StatusOK, detail)
}

// ListContent returns view and share totals keyed by slug.
func (h *Handler) ListContent(c echo.Context) error {
	all, err := h.store.AllContentMeta(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("Failed to list content meta: %v", err)
		return internalError(c)
	}
	return c.JSON(http.StatusOK, all)
}

// NewContent returns the newest post first seen in the last eight days.
func (h *Handler) NewContent(c echo.Context) error {
	refs, err := h.store.NewestContent(c.Request().Context(), ContentPost, newContentSpan, 1)
	if err != nil {
		c.Logger().Errorf("Failed to get new content: %v", err)
		return internalError(c)
	}
	return c.JSON(http.StatusOK, refs)
}

// RecentActivity returns recent reactions and shares. Query parameters:
// hours (default 24) and limit (default 5, at most 50).
func (h *Handler) RecentActivity(c echo.Context) error {
	window := defaultWindow
	if v := c.QueryParam("hours"); v != "" {
		hours, err := strconv.Atoi(v)
		if err != nil || hours < 1 || hours > 24*30 {
			return badRequest(c, fmt.Errorf("hours must be between 1 and %d", 24*30))
		}
		window = time.Duration(hours) * time.Hour
	}
	limit := 5
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxActivity {
			return badRequest(c, fmt.Errorf("limit must be between 1 and %d", maxActivity))
		}
		limit = n
	}
	activity, err := h.store.RecentActivity(c.Request().Context(), window, limit)
	if err != nil {
		c.Logger().Errorf("Failed to get recent activity: %v", err)
		return internalError(c)
	}
	return c.JSON(http.StatusOK, activity)
}
