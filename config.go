package folio

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	glog "github.com/labstack/gommon/log"
	"gopkg.in/yaml.v3"

	"github.com/dheerajdev/folio/layouts"
)

// SiteConfig holds all configuration for a folio site.
type SiteConfig struct {
	Name        string `yaml:"name"`        // Site name (default "folio")
	URL         string `yaml:"url"`         // Canonical URL (default "http://localhost:3000")
	Description string `yaml:"description"` // Site description for RSS
	Author      string `yaml:"author"`

	Addr         string `yaml:"addr"`          // Listen address (default ":3000")
	ContentDir   string `yaml:"content_dir"`   // Content documents root (default "contents")
	DatabasePath string `yaml:"database_path"` // Engagement SQLite path (default "data/engagement.db")

	EngagementEnabled bool   `yaml:"engagement_enabled"` // Serve the engagement API (LoadConfig default true)
	SessionSecret     string `yaml:"session_secret"`     // Required with engagement: session cookie secret
	CookieSecure      bool   `yaml:"cookie_secure"`      // Set true for HTTPS

	CacheTTL time.Duration `yaml:"cache_ttl"` // Compiled document cache TTL (default 5min)
	Watch    bool          `yaml:"watch"`     // Invalidate the cache when content files change
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "folio"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.ContentDir == "" {
		c.ContentDir = "contents"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/engagement.db"
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = 5 * time.Minute
	}
}

// LoadConfig reads a YAML config file and applies FOLIO_* environment
// overrides on top. An empty path or a missing file yields the defaults.
func LoadConfig(path string) (SiteConfig, error) {
	cfg := SiteConfig{EngagementEnabled: true}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return SiteConfig{}, fmt.Errorf("folio: read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return SiteConfig{}, fmt.Errorf("folio: parse config %s: %w", path, err)
			}
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return SiteConfig{}, err
	}
	cfg.setDefaults()
	return cfg, nil
}

func (c *SiteConfig) applyEnv() error {
	c.Name = EnvOr("FOLIO_NAME", c.Name)
	c.URL = EnvOr("FOLIO_URL", c.URL)
	c.Description = EnvOr("FOLIO_DESCRIPTION", c.Description)
	c.Author = EnvOr("FOLIO_AUTHOR", c.Author)
	c.Addr = EnvOr("FOLIO_ADDR", c.Addr)
	c.ContentDir = EnvOr("FOLIO_CONTENT_DIR", c.ContentDir)
	c.DatabasePath = EnvOr("FOLIO_DATABASE_PATH", c.DatabasePath)
	c.SessionSecret = EnvOr("FOLIO_SESSION_SECRET", c.SessionSecret)

	for key, dst := range map[string]*bool{
		"FOLIO_ENGAGEMENT":    &c.EngagementEnabled,
		"FOLIO_COOKIE_SECURE": &c.CookieSecure,
		"FOLIO_WATCH":         &c.Watch,
	} {
		if v := os.Getenv(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("folio: %s: %w", key, err)
			}
			*dst = b
		}
	}
	if v := os.Getenv("FOLIO_CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("folio: FOLIO_CACHE_TTL: %w", err)
		}
		c.CacheTTL = d
	}
	return nil
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("folio: required environment variable %s is not set", key)
	}
	return v
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App after the built-in routes are registered.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithLayouts replaces the default layout registry.
func WithLayouts(r *layouts.Registry) Option {
	return func(a *App) {
		a.Layouts = r
	}
}

// WithLogger sets the logger shared by the server, the library and the watcher.
func WithLogger(l *glog.Logger) Option {
	return func(a *App) {
		a.logger = l
	}
}
