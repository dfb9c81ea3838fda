package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"sbccweb/internal/api"
	"sbccweb/internal/cache"
	appLog "sbccweb/internal/log"
	"sbccweb/internal/model"
	"sbccweb/internal/schedule"
	"sbccweb/internal/settings"
	"sbccweb/internal/timefmt"
)

// ContentSource is the subset of the CMS client the server needs.
type ContentSource interface {
	ListAnnouncements(ctx context.Context, q api.AnnouncementQuery) ([]model.Announcement, error)
	ListEvents(ctx context.Context, q api.EventQuery) ([]model.Event, error)
	ListTeam(ctx context.Context) ([]model.TeamMember, error)
	SubmitPrayerRequest(ctx context.Context, pr model.PrayerRequest) (json.RawMessage, error)
}

// Deps are the collaborators a Server is built from. All are required except
// Schedule and Cache.
type Deps struct {
	Content        ContentSource
	Formatter      *timefmt.Formatter
	Settings       *settings.Provider
	Schedule       *schedule.Schedule
	Cache          cache.Cache
	AllowedOrigins []string
	CalendarName   string
}

// Server exposes display-ready JSON for the public website.
type Server struct {
	content      ContentSource
	fmt          *timefmt.Formatter
	settings     *settings.Provider
	schedule     *schedule.Schedule
	cache        cache.Cache
	calendarName string
	engine       *gin.Engine
}

// NewServer constructs a Server and registers its routes.
func NewServer(d Deps) *Server {
	c := d.Cache
	if c == nil {
		c = cache.NewMemory(0)
	}
	s := &Server{
		content:      d.Content,
		fmt:          d.Formatter,
		settings:     d.Settings,
		schedule:     d.Schedule,
		cache:        c,
		calendarName: d.CalendarName,
		engine:       gin.New(),
	}

	s.engine.Use(gin.Recovery(), requestID(), requestLogger())
	if len(d.AllowedOrigins) > 0 {
		s.engine.Use(cors.New(cors.Config{
			AllowOrigins: d.AllowedOrigins,
			AllowMethods: []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type", requestIDHeader},
			MaxAge:       12 * time.Hour,
		}))
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) registerRoutes() {
	s.engine.GET("/health", s.handleHealth)
	s.engine.GET("/events.ics", s.handleCalendar)

	g := s.engine.Group("/api")
	g.GET("/home", s.handleHome)
	g.GET("/settings", s.handleSettings)
	g.GET("/announcements", s.handleAnnouncements)
	g.GET("/events", s.handleEvents)
	g.GET("/team", s.handleTeam)
	g.GET("/schedule", s.handleSchedule)
	g.POST("/prayer-requests", s.handlePrayerRequest)
}

// Run serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// PurgeCache drops every cached response.
func (s *Server) PurgeCache(ctx context.Context) {
	s.cache.Purge(ctx)
}

// cached serves the JSON encoding of build() for the request URL, from the
// cache when a fresh copy exists. A build error goes to onErr and nothing is
// stored.
func (s *Server) cached(c *gin.Context, build func(ctx context.Context) (any, error), onErr func(error)) {
	ctx := c.Request.Context()
	key := c.Request.URL.Path + "?" + c.Request.URL.Query().Encode()

	if body, ok := s.cache.Get(ctx, key); ok {
		c.Header("X-Cache", "HIT")
		c.Data(http.StatusOK, "application/json; charset=utf-8", body)
		return
	}

	v, err := build(ctx)
	if err != nil {
		onErr(err)
		return
	}
	body, err := json.Marshal(v)
	if err != nil {
		appLog.Error("failed to encode response", err, "path", c.Request.URL.Path)
		writeError(c, http.StatusInternalServerError, "failed to encode response")
		return
	}
	if p, ok := v.(partial); !ok || p.complete() {
		s.cache.Set(ctx, key, body)
	}
	c.Header("X-Cache", "MISS")
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// partial is implemented by responses that may be served with missing
// sections; incomplete ones are not cached.
type partial interface {
	complete() bool
}

// upstreamFailure logs a CMS failure and answers 502.
func upstreamFailure(c *gin.Context, what string) func(error) {
	return func(err error) {
		kv := []any{"path", c.Request.URL.Path, "request_id", c.GetString(requestIDKey)}
		if apiErr, ok := api.AsError(err); ok {
			kv = append(kv, "status", apiErr.Status)
		}
		appLog.Error("cms request failed", err, kv...)
		writeError(c, http.StatusBadGateway, "failed to load "+what)
	}
}

func writeError(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}
