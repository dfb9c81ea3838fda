package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	appLog "sbccweb/internal/log"
)

const (
	DefaultListen         = "127.0.0.1:8080"
	DefaultAPIURL         = "http://localhost:8000"
	DefaultTimezone       = "Asia/Manila"
	DefaultRefreshCron    = "*/15 * * * *"
	DefaultCacheTTL       = 30
	DefaultCalendarName   = "SBCC Events"
	DefaultFrontendOrigin = "http://localhost:5173"
)

// ServiceConfig describes a recurring worship service or meeting.
type ServiceConfig struct {
	Name string `yaml:"name" json:"name"`
	// RRule is an RFC 5545 recurrence rule evaluated in the configured
	// timezone, e.g. "FREQ=WEEKLY;BYDAY=SU;BYHOUR=9;BYMINUTE=0".
	RRule           string `yaml:"rrule" json:"rrule"`
	DurationMinutes int    `yaml:"duration_minutes" json:"duration_minutes"`
	Location        string `yaml:"location,omitempty" json:"location,omitempty"`
	// Start is the first date (YYYY-MM-DD, display timezone) the rule counts
	// from. It matters for INTERVAL and COUNT; a DTSTART in RRule wins.
	Start string `yaml:"start,omitempty" json:"start,omitempty"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the view server.
	Listen string `yaml:"listen" json:"listen"`

	// APIURL is the CMS base URL. It may be given with or without /api or
	// /api/public; the API client normalizes it.
	APIURL string `yaml:"api_url" json:"api_url"`

	// Timezone is the IANA timezone every displayed date is computed in
	// (e.g. "Asia/Manila").
	Timezone string `yaml:"timezone" json:"timezone"`

	// RefreshCron is a cron-style schedule (e.g. "*/15 * * * *") for
	// refreshing settings and dropping cached responses.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// CacheTTLSeconds bounds how long GET responses are served from cache.
	CacheTTLSeconds int `yaml:"cache_ttl_seconds" json:"cache_ttl_seconds"`

	// RedisURL, if set, moves the response cache to Redis.
	RedisURL string `yaml:"redis_url,omitempty" json:"redis_url,omitempty"`

	// AllowedOrigins lists front-end origins allowed by CORS.
	AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins"`

	// RequestTimeoutSeconds caps each CMS request. Zero means no client-side
	// timeout.
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds" json:"request_timeout_seconds"`

	// CalendarName is the title of the published iCalendar feed.
	CalendarName string `yaml:"calendar_name" json:"calendar_name"`

	// LogLevel is DEBUG, INFO or ERROR.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// Services are the recurring weekly services shown in the schedule.
	Services []ServiceConfig `yaml:"services" json:"services"`
}

func defaultServices() []ServiceConfig {
	return []ServiceConfig{
		{
			Name:            "Sunday Worship",
			RRule:           "FREQ=WEEKLY;BYDAY=SU;BYHOUR=9;BYMINUTE=0;BYSECOND=0",
			DurationMinutes: 120,
		},
	}
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:          DefaultListen,
		APIURL:          DefaultAPIURL,
		Timezone:        DefaultTimezone,
		RefreshCron:     DefaultRefreshCron,
		CacheTTLSeconds: DefaultCacheTTL,
		AllowedOrigins:  []string{DefaultFrontendOrigin},
		CalendarName:    DefaultCalendarName,
		LogLevel:        "INFO",
		Services:        defaultServices(),
	}
}

// Normalize fills in missing/zero values with defaults so that partially
// filled configs still behave correctly.
func (c *Config) Normalize() {
	c.Listen = strings.TrimSpace(c.Listen)
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	c.APIURL = strings.TrimSpace(c.APIURL)
	if c.APIURL == "" {
		c.APIURL = DefaultAPIURL
	}

	c.Timezone = strings.TrimSpace(c.Timezone)
	if c.Timezone == "" {
		c.Timezone = DefaultTimezone
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		// Never fall back to the host zone; display dates must not depend
		// on where the process runs.
		appLog.Error("unknown timezone; using default", err, "timezone", c.Timezone, "default", DefaultTimezone)
		c.Timezone = DefaultTimezone
	}

	if c.RefreshCron == "" {
		c.RefreshCron = DefaultRefreshCron
	}
	if c.CacheTTLSeconds < 0 {
		c.CacheTTLSeconds = 0
	}
	if c.RequestTimeoutSeconds < 0 {
		c.RequestTimeoutSeconds = 0
	}
	if c.AllowedOrigins == nil {
		c.AllowedOrigins = []string{DefaultFrontendOrigin}
	}
	if c.CalendarName == "" {
		c.CalendarName = DefaultCalendarName
	}
	if c.LogLevel == "" {
		c.LogLevel = "INFO"
	}
	if c.Services == nil {
		c.Services = defaultServices()
	}
	for i := range c.Services {
		if c.Services[i].DurationMinutes <= 0 {
			c.Services[i].DurationMinutes = 60
		}
	}
}

// ApplyEnv overrides fields from environment variables read through getenv.
// Both the plain names and the VITE_-prefixed names used by the front-end
// build are accepted; the plain name wins.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := firstEnv(getenv, "LISTEN"); v != "" {
		c.Listen = v
	}
	if v := firstEnv(getenv, "API_URL", "VITE_API_URL"); v != "" {
		c.APIURL = v
	}
	if v := firstEnv(getenv, "APP_TIMEZONE", "VITE_APP_TIMEZONE"); v != "" {
		c.Timezone = v
	}
	if v := firstEnv(getenv, "REDIS_URL"); v != "" {
		c.RedisURL = v
	}
	if v := firstEnv(getenv, "LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := firstEnv(getenv, "FRONTEND_URL"); v != "" {
		for _, o := range c.AllowedOrigins {
			if o == v {
				return
			}
		}
		c.AllowedOrigins = append(c.AllowedOrigins, v)
	}
}

func firstEnv(getenv func(string) string, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(getenv(k)); v != "" {
			return v
		}
	}
	return ""
}

// Location returns the resolved display timezone. Normalize guarantees the
// name loads; UTC is returned only if it is called on an unnormalized config.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// CacheTTL returns CacheTTLSeconds as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// RequestTimeout returns RequestTimeoutSeconds as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// Load reads the YAML file at path and normalizes it. A missing file is
// created from DefaultConfig; if that write fails the defaults are still
// returned alongside the error. Environment overrides are separate (ApplyEnv).
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg := DefaultConfig()
		return cfg, Save(path, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.Normalize()
	return &cfg, nil
}

// Save normalizes cfg and writes it to path with 0600 permissions. The file
// is replaced by rename, so readers never see a partial write.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}
	cfg.Normalize()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".sbccweb-config-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	_, werr := tmp.Write(data)
	if werr == nil {
		werr = tmp.Sync()
	}
	if cerr := tmp.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return fmt.Errorf("config: write %s: %w", path, werr)
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Save is a convenience method that delegates to the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
