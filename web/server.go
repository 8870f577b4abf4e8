// Package web serves the formlingo UI: a server-rendered page driven by one
// Controller per browser session, plus a small JSON API.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/flosch/pongo2/v6"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ZaguanLabs/formlingo"
	"github.com/ZaguanLabs/formlingo/library"
	"github.com/ZaguanLabs/formlingo/session"
)

//go:embed templates/*.html static/*
var assets embed.FS

const (
	// SessionCookie names the cookie carrying the session id.
	SessionCookie = "formlingo_session"

	// DefaultMaxUpload caps uploads when Options.MaxUpload is unset.
	DefaultMaxUpload = 20 << 20

	// DefaultIdleTimeout evicts live sessions when Options.IdleTimeout is unset.
	DefaultIdleTimeout = 2 * time.Hour

	shutdownTimeout = 5 * time.Second
)

// Options configures a Server. Backend and Catalog are required.
type Options struct {
	Backend  formlingo.Backend
	Catalog  *library.Catalog
	Fetcher  formlingo.DocumentFetcher
	Sessions session.Store
	Previews formlingo.PreviewStore

	MaxUpload   int64
	IdleTimeout time.Duration

	// AllowedOrigins lists origins for the JSON API. Empty allows any origin.
	AllowedOrigins []string

	// RequestLogging enables gin's request logger.
	RequestLogging bool
	Logger         *log.Logger
}

// HealthChecker is implemented by backends that can report their availability.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Server holds the live sessions and the HTTP routes.
type Server struct {
	opts      Options
	pipeline  *formlingo.Pipeline
	templates *pongo2.TemplateSet
	engine    *gin.Engine
	logger    *log.Logger
	now       func() time.Time

	mu   sync.Mutex
	live map[string]*liveSession
}

// liveSession is a session's controller while it stays in memory. Snapshots
// in the session store let a session outlive eviction or a restart.
type liveSession struct {
	ctrl     *formlingo.Controller
	lastSeen time.Time
}

// New creates a server.
func New(opts Options) (*Server, error) {
	if opts.Backend == nil {
		return nil, errors.New("web: backend is required")
	}
	if opts.Catalog == nil {
		return nil, errors.New("web: catalog is required")
	}
	if opts.Sessions == nil {
		opts.Sessions = session.NewMemoryStore(DefaultIdleTimeout)
	}
	if opts.Previews == nil {
		opts.Previews = formlingo.NewMemoryPreviewStore()
	}
	if opts.MaxUpload <= 0 {
		opts.MaxUpload = DefaultMaxUpload
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = DefaultIdleTimeout
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	templatesFS, err := fs.Sub(assets, "templates")
	if err != nil {
		return nil, fmt.Errorf("web: templates: %w", err)
	}

	s := &Server{
		opts:      opts,
		pipeline:  formlingo.NewPipeline(opts.Catalog, opts.Fetcher),
		templates: pongo2.NewSet("formlingo", pongo2.NewFSLoader(templatesFS)),
		logger:    logger,
		now:       time.Now,
		live:      make(map[string]*liveSession),
	}
	s.engine = s.routes()
	return s, nil
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
// and releases every live session.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	sweep := time.NewTicker(time.Minute)
	defer sweep.Stop()

	for {
		select {
		case err := <-errCh:
			s.Close()
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-sweep.C:
			if n := s.Sweep(); n > 0 {
				s.logger.Printf("evicted %d idle session(s)", n)
			}
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			err := srv.Shutdown(shutdownCtx)
			cancel()
			s.Close()
			return err
		}
	}
}

// Sweep evicts live sessions idle longer than the idle timeout and returns
// how many were evicted. Their snapshots stay in the session store.
func (s *Server) Sweep() int {
	cutoff := s.now().Add(-s.opts.IdleTimeout)

	s.mu.Lock()
	var idle []*formlingo.Controller
	for id, ls := range s.live {
		if ls.lastSeen.Before(cutoff) && !ls.ctrl.State().Loading {
			idle = append(idle, ls.ctrl)
			delete(s.live, id)
		}
	}
	s.mu.Unlock()

	for _, c := range idle {
		c.Close()
	}
	return len(idle)
}

// Close releases every live session.
func (s *Server) Close() {
	s.mu.Lock()
	live := s.live
	s.live = make(map[string]*liveSession)
	s.mu.Unlock()

	for _, ls := range live {
		ls.ctrl.Close()
	}
}

// LiveSessions returns the number of sessions held in memory.
func (s *Server) LiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live)
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if s.opts.RequestLogging {
		r.Use(gin.Logger())
	}
	r.MaxMultipartMemory = s.opts.MaxUpload

	r.GET("/", s.handleIndex)
	r.POST("/mode", s.handleMode)
	r.POST("/file", s.handleFile)
	r.POST("/file/clear", s.handleClearFile)
	r.POST("/text", s.handleText)
	r.POST("/library", s.handleLibrary)
	r.POST("/language", s.handleLanguage)
	r.POST("/submit", s.handleSubmit)
	r.GET("/preview/:handle", s.handlePreview)
	r.GET("/result.html", s.handleResultDocument)
	r.GET("/healthz", s.handleHealth)
	r.GET("/static/style.css", s.handleStylesheet)
	r.GET("/static/app.js", s.handleScript)

	api := r.Group("/api")
	api.Use(s.corsMiddleware())
	{
		api.GET("/languages", s.handleLanguages)
		api.GET("/forms", s.handleForms)
		api.GET("/state", s.handleState)
	}

	return r
}

func (s *Server) corsMiddleware() gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: len(s.opts.AllowedOrigins) > 0,
		MaxAge:           12 * time.Hour,
	}
	if len(s.opts.AllowedOrigins) > 0 {
		cfg.AllowOrigins = s.opts.AllowedOrigins
	} else {
		cfg.AllowAllOrigins = true
	}
	return cors.New(cfg)
}
